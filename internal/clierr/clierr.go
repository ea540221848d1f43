// Package clierr defines the error taxonomy shared by the registration,
// binding, and dispatch layers.
//
// Setup errors are programmer mistakes and surface at the registration call
// site. Invocation errors are user-input mistakes and are translated into a
// usage message and a non-zero exit at the process boundary.
package clierr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Setup-time errors. These are fatal at registration, before any dispatch.
var (
	ErrDuplicateMain        = errors.New("a main command is already registered")
	ErrDuplicateSubcommand  = errors.New("subcommand name already registered")
	ErrInvalidName          = errors.New("invalid subcommand name")
	ErrRegistryClosed       = errors.New("registry is sealed; registration is not allowed after Run")
	ErrUnannotatedParameter = errors.New("exported argument field has no funcli tag")
	ErrUnsupportedType      = errors.New("argument field type is not supported")
	ErrBadHandler           = errors.New("handler does not match any supported signature")
	ErrEmptyRegistry        = errors.New("no commands registered")
)

// MissingArgument reports a required positional parameter that received no
// token.
type MissingArgument struct {
	Command string // empty for the main command
	Name    string
}

func (e *MissingArgument) Error() string {
	if e.Command == "" {
		return fmt.Sprintf("missing required argument %q", e.Name)
	}
	return fmt.Sprintf("%s: missing required argument %q", e.Command, e.Name)
}

// Validation reports a token that could not be coerced to the parameter's
// declared type.
type Validation struct {
	Command string
	Name    string
	Token   string
	Type    string
}

func (e *Validation) Error() string {
	return fmt.Sprintf("invalid value %q for argument %q: expected %s", e.Token, e.Name, e.Type)
}

// UnexpectedArgument reports a surplus positional token the command's
// parameters cannot absorb.
type UnexpectedArgument struct {
	Command string
	Token   string
}

func (e *UnexpectedArgument) Error() string {
	if e.Command == "" {
		return fmt.Sprintf("unexpected argument %q", e.Token)
	}
	return fmt.Sprintf("%s: unexpected argument %q", e.Command, e.Token)
}

// UnknownSubcommand reports a free token that names no registered subcommand.
// The handler it would have selected is never invoked.
type UnknownSubcommand struct {
	Name       string
	Suggestion string // closest registered name, empty when nothing is close
}

func (e *UnknownSubcommand) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown subcommand %q (did you mean %q?)", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("unknown subcommand %q", e.Name)
}

// Exit is an error that carries a specific process exit code.
type Exit struct {
	Code    int
	Message string
}

func (e *Exit) Error() string {
	return e.Message
}

// IsUsage reports whether err is a user-input error that should be rendered
// with the command's usage text.
func IsUsage(err error) bool {
	var ma *MissingArgument
	var va *Validation
	var ua *UnexpectedArgument
	var us *UnknownSubcommand
	return errors.As(err, &ma) || errors.As(err, &va) || errors.As(err, &ua) || errors.As(err, &us)
}

// ExitCode maps an error returned by Run to a process exit status: 0 for
// nil, an explicit Exit code when present, 2 for user-input errors, and 1
// for anything else (handler failures included).
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exit *Exit
	if errors.As(err, &exit) {
		return exit.Code
	}
	if IsUsage(err) {
		return 2
	}
	return 1
}
