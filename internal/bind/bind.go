// Package bind maps raw command-line tokens onto a compiled signature,
// coercing each token to its parameter's declared type.
//
// Token splitting, flag-prefix grammar, and --flag=value handling are
// delegated to pflag; this package only decides which parameter a token
// feeds and what typed value it becomes. Binding is atomic: either every
// parameter of a command binds, or the partially filled input is discarded.
package bind

import (
	"context"
	"io"

	"github.com/spf13/pflag"

	"github.com/vk/funcli/internal/clierr"
	"github.com/vk/funcli/internal/ctxlog"
	"github.com/vk/funcli/internal/sig"
)

// NewFlagSet builds the pflag.FlagSet for one command. Every option is
// registered as a string-valued flag whose default is the raw tag text, so
// boolean options take an explicit value (--verbose true) rather than
// acting as toggles.
func NewFlagSet(name string, s *sig.Signature) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SortFlags = false
	fs.SetOutput(io.Discard)
	for _, p := range s.Params {
		if p.Positional() {
			continue
		}
		fs.String(p.Name, p.RawDefault, p.Help)
	}
	return fs
}

// Bind produces the command's bound arguments: a freshly constructed input
// struct with every parameter set. fs must already have parsed the
// command's tokens. cmdName is empty for the main command.
func Bind(ctx context.Context, cmdName string, s *sig.Signature, fs *pflag.FlagSet) (any, error) {
	input := s.NewInput()
	if input == nil {
		return nil, nil
	}
	logger := ctxlog.FromContext(ctx)

	positionals := fs.Args()
	next := 0
	for _, p := range s.Params {
		var token string
		switch {
		case p.Positional():
			if next >= len(positionals) {
				return nil, &clierr.MissingArgument{Command: cmdName, Name: p.Name}
			}
			token = positionals[next]
			next++
		default:
			flag := fs.Lookup(p.Name)
			if !flag.Changed {
				// Absent option: the pre-coerced default binds unchanged.
				if err := p.SetField(input, p.Default); err != nil {
					return nil, err
				}
				continue
			}
			token = flag.Value.String()
		}

		val, err := sig.Coerce(p, token)
		if err != nil {
			logger.Debug("Token coercion failed.", "command", cmdName, "param", p.Name, "token", token)
			return nil, &clierr.Validation{Command: cmdName, Name: p.Name, Token: token, Type: p.GoType.String()}
		}
		if err := p.SetField(input, val); err != nil {
			return nil, &clierr.Validation{Command: cmdName, Name: p.Name, Token: token, Type: p.GoType.String()}
		}
	}

	if next < len(positionals) {
		return nil, &clierr.UnexpectedArgument{Command: cmdName, Token: positionals[next]}
	}

	logger.Debug("Arguments bound.", "command", cmdName, "positionals", next)
	return input, nil
}
