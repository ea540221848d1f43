package funcli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vk/funcli/internal/bind"
	"github.com/vk/funcli/internal/clierr"
	"github.com/vk/funcli/internal/ctxlog"
	"github.com/vk/funcli/internal/dispatch"
	"github.com/vk/funcli/internal/registry"
)

// Option configures an App at construction time.
type Option func(*App)

// WithName sets the program name used in usage text. The default is the
// base name of the executable.
func WithName(name string) Option {
	return func(a *App) { a.name = name }
}

// WithOutput redirects handler output and usage text, conventionally stdout.
func WithOutput(w io.Writer) Option {
	return func(a *App) { a.out = w }
}

// WithErrOutput redirects error messages printed by Execute.
func WithErrOutput(w io.Writer) Option {
	return func(a *App) { a.errOut = w }
}

// WithLogger installs the logger carried through every invocation's context.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) { a.logger = logger }
}

// App owns one command registry and its lifecycle: construct, register,
// then Run, which seals the registry before any dispatch.
type App struct {
	name   string
	out    io.Writer
	errOut io.Writer
	logger *slog.Logger
	reg    *registry.Registry
}

// New creates an App with an empty registry.
func New(opts ...Option) *App {
	a := &App{
		name:   filepath.Base(os.Args[0]),
		out:    os.Stdout,
		errOut: os.Stderr,
		logger: slog.Default(),
		reg:    registry.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RegisterMain installs fn as the main command. Main runs on every
// invocation, before any subcommand, and its whole output precedes the
// subcommand's.
func (a *App) RegisterMain(fn any) error {
	return a.reg.RegisterMain(fn)
}

// RegisterSubcommand installs fn under name, dispatched when the first free
// token on the command line matches.
func (a *App) RegisterSubcommand(name string, fn any) error {
	return a.reg.RegisterSubcommand(name, fn)
}

// Run dispatches one invocation over the given tokens (without the program
// name). The first call seals the registry; later registration fails with
// ErrRegistryClosed. Returned errors are classified by ExitCode.
func (a *App) Run(ctx context.Context, args []string) error {
	a.reg.Seal()
	ctx = ctxlog.WithLogger(ctx, a.logger)

	d := dispatch.New(a.reg, a.name, a.out)
	err := d.Run(ctx, args)
	a.logger.Debug("Dispatch finished.", "state", d.State().String(), "err", err)
	return err
}

// Execute runs with the process arguments and maps the result to an exit
// status: 0 on success, 2 for user-input errors (with the usage text), 1
// for handler failures.
func (a *App) Execute(ctx context.Context) int {
	err := a.Run(ctx, os.Args[1:])
	if err == nil {
		return 0
	}
	fmt.Fprintln(a.errOut, "error:", err)
	code := clierr.ExitCode(err)
	if code == 2 {
		bind.ProgramUsage(a.errOut, a.name, a.reg)
	}
	return code
}
