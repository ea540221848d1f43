package funcli

import "github.com/vk/funcli/internal/clierr"

// Setup-time errors: programmer mistakes, surfaced at the registration or
// Run call site and never recovered.
var (
	ErrDuplicateMain        = clierr.ErrDuplicateMain
	ErrDuplicateSubcommand  = clierr.ErrDuplicateSubcommand
	ErrInvalidName          = clierr.ErrInvalidName
	ErrRegistryClosed       = clierr.ErrRegistryClosed
	ErrUnannotatedParameter = clierr.ErrUnannotatedParameter
	ErrUnsupportedType      = clierr.ErrUnsupportedType
	ErrBadHandler           = clierr.ErrBadHandler
	ErrEmptyRegistry        = clierr.ErrEmptyRegistry
)

// Invocation-time errors: user-input mistakes, recovered into a clean
// non-zero exit. Match them with errors.As.
type (
	MissingArgumentError    = clierr.MissingArgument
	ValidationError         = clierr.Validation
	UnexpectedArgumentError = clierr.UnexpectedArgument
	UnknownSubcommandError  = clierr.UnknownSubcommand

	// ExitError carries an explicit process exit code through Run.
	ExitError = clierr.Exit
)

// ExitCode maps an error returned by Run to a process exit status.
func ExitCode(err error) int {
	return clierr.ExitCode(err)
}
