// Package registry holds the registered commands for a single application
// instance: at most one main command plus uniquely named subcommands.
//
// The registry has an explicit lifecycle: populate it through the Register
// calls, then Seal it before dispatch. A sealed registry is read-only, which
// is the only concurrency guarantee dispatch needs.
package registry

import (
	"log/slog"
	"strings"

	"github.com/pkg/errors"

	"github.com/vk/funcli/internal/clierr"
	"github.com/vk/funcli/internal/sig"
)

// ReservedNames are subcommand names the dispatcher claims for itself.
var ReservedNames = map[string]struct{}{"help": {}}

// Command pairs a registered handler with its compiled signature. The
// registry owns the handler reference; it is never copied or mutated.
type Command struct {
	Name string // empty for the main command
	Sig  *sig.Signature
}

// Registry is the sealed collection of registered commands.
type Registry struct {
	main   *Command
	subs   map[string]*Command
	order  []string // registration order, kept for deterministic listings
	sealed bool
}

// New creates an empty, unsealed Registry.
func New() *Registry {
	return &Registry{subs: make(map[string]*Command)}
}

// RegisterMain compiles fn and installs it as the main command, which runs
// on every invocation before any subcommand.
func (r *Registry) RegisterMain(fn any) error {
	if r.sealed {
		return clierr.ErrRegistryClosed
	}
	if r.main != nil {
		return clierr.ErrDuplicateMain
	}
	s, err := sig.Introspect(fn)
	if err != nil {
		return errors.Wrap(err, "register main")
	}
	slog.Debug("Registering main command.", "params", len(s.Params), "streaming", s.Streaming())
	r.main = &Command{Sig: s}
	return nil
}

// RegisterSubcommand compiles fn and installs it under name.
func (r *Registry) RegisterSubcommand(name string, fn any) error {
	if r.sealed {
		return clierr.ErrRegistryClosed
	}
	if name == "" || strings.HasPrefix(name, "-") {
		return errors.Wrapf(clierr.ErrInvalidName, "%q", name)
	}
	if _, reserved := ReservedNames[name]; reserved {
		return errors.Wrapf(clierr.ErrInvalidName, "%q is reserved", name)
	}
	if _, exists := r.subs[name]; exists {
		return errors.Wrapf(clierr.ErrDuplicateSubcommand, "%q", name)
	}
	s, err := sig.Introspect(fn)
	if err != nil {
		return errors.Wrapf(err, "register subcommand %q", name)
	}
	slog.Debug("Registering subcommand.", "name", name, "params", len(s.Params), "streaming", s.Streaming())
	r.subs[name] = &Command{Name: name, Sig: s}
	r.order = append(r.order, name)
	return nil
}

// Seal marks the registry read-only. Registration after Seal fails with
// ErrRegistryClosed. Sealing twice is a no-op.
func (r *Registry) Seal() {
	r.sealed = true
}

// Sealed reports whether the registry has been sealed.
func (r *Registry) Sealed() bool { return r.sealed }

// Main returns the main command, or nil when none was registered.
func (r *Registry) Main() *Command { return r.main }

// Subcommand looks up a subcommand by name.
func (r *Registry) Subcommand(name string) (*Command, bool) {
	cmd, ok := r.subs[name]
	return cmd, ok
}

// SubcommandNames returns the registered names in registration order.
func (r *Registry) SubcommandNames() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Empty reports whether nothing has been registered at all.
func (r *Registry) Empty() bool {
	return r.main == nil && len(r.subs) == 0
}
