// Package dispatch selects and sequences handler invocation from the raw
// token stream.
//
// The contract that matters here is ordering: the main command's entire
// output is drained before a selected subcommand's handler ever runs, so a
// global main can announce cross-cutting state ahead of subcommand work.
package dispatch

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/vk/funcli/internal/bind"
	"github.com/vk/funcli/internal/clierr"
	"github.com/vk/funcli/internal/ctxlog"
	"github.com/vk/funcli/internal/emit"
	"github.com/vk/funcli/internal/registry"
)

// State tracks dispatch progress, mostly for tests and debug logs.
type State int

const (
	AwaitingTokens State = iota
	MainBound
	SubcommandSelected
	Complete
	Failed
)

func (s State) String() string {
	switch s {
	case AwaitingTokens:
		return "awaiting-tokens"
	case MainBound:
		return "main-bound"
	case SubcommandSelected:
		return "subcommand-selected"
	case Complete:
		return "complete"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Dispatcher runs one invocation against a sealed registry.
type Dispatcher struct {
	reg   *registry.Registry
	prog  string
	out   io.Writer
	state State
}

// New creates a Dispatcher writing handler output and usage text to out.
func New(reg *registry.Registry, prog string, out io.Writer) *Dispatcher {
	return &Dispatcher{reg: reg, prog: prog, out: out}
}

// State returns the current dispatch state.
func (d *Dispatcher) State() State { return d.state }

// Run examines the token stream, binds main and (when selected) subcommand
// arguments, then invokes main and subcommand in that order, fully draining
// each result before moving on. Binder and lookup failures leave the
// dispatcher in the Failed state with no handler ever invoked.
func (d *Dispatcher) Run(ctx context.Context, tokens []string) error {
	logger := ctxlog.FromContext(ctx)

	if d.reg.Empty() {
		d.state = Failed
		return clierr.ErrEmptyRegistry
	}

	main := d.reg.Main()
	arity := 0
	if main != nil {
		for _, p := range main.Sig.Params {
			if p.Positional() {
				arity++
			}
		}
	}

	mainToks, subName, subToks := split(tokens, arity)
	logger.Debug("Token stream split.", "main", mainToks, "subcommand", subName, "rest", subToks)

	if subName == "help" {
		return d.help(subToks)
	}

	var sub *registry.Command
	if subName != "" {
		var ok bool
		if sub, ok = d.reg.Subcommand(subName); !ok {
			d.state = Failed
			return &clierr.UnknownSubcommand{
				Name:       subName,
				Suggestion: closestName(subName, d.reg.SubcommandNames()),
			}
		}
	}

	// Stage 1: bind main's arguments.
	var mainInput any
	var mainFS *pflag.FlagSet
	if main != nil {
		mainFS = bind.NewFlagSet(d.prog, main.Sig)
	} else {
		mainFS = pflag.NewFlagSet(d.prog, pflag.ContinueOnError)
		mainFS.SetOutput(io.Discard)
	}
	if err := mainFS.Parse(mainToks); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			bind.ProgramUsage(d.out, d.prog, d.reg)
			d.state = Complete
			return nil
		}
		d.state = Failed
		return &clierr.Exit{Code: 2, Message: err.Error()}
	}
	if main != nil {
		in, err := bind.Bind(ctx, "", main.Sig, mainFS)
		if err != nil {
			d.state = Failed
			return err
		}
		mainInput = in
	}
	d.state = MainBound

	// Stage 2: bind the selected subcommand's arguments.
	var subInput any
	if sub != nil {
		fs := bind.NewFlagSet(subName, sub.Sig)
		if err := fs.Parse(subToks); err != nil {
			if errors.Is(err, pflag.ErrHelp) {
				bind.CommandUsage(d.out, d.prog, subName, sub.Sig)
				d.state = Complete
				return nil
			}
			d.state = Failed
			return &clierr.Exit{Code: 2, Message: subName + ": " + err.Error()}
		}
		in, err := bind.Bind(ctx, subName, sub.Sig, fs)
		if err != nil {
			d.state = Failed
			return err
		}
		subInput = in
		d.state = SubcommandSelected
	}

	// Stage 3: invoke. Main drains fully before the subcommand starts.
	sink := emit.New(d.out)
	if main != nil {
		logger.Debug("Invoking main handler.")
		res, err := main.Sig.Call(ctx, mainInput)
		if err != nil {
			d.state = Failed
			return errors.Wrap(err, "main command")
		}
		if err := sink.Emit(ctx, res); err != nil {
			d.state = Failed
			return errors.Wrap(err, "main command")
		}
	}
	if sub != nil {
		logger.Debug("Invoking subcommand handler.", "name", subName)
		res, err := sub.Sig.Call(ctx, subInput)
		if err != nil {
			d.state = Failed
			return errors.Wrap(err, subName)
		}
		if err := sink.Emit(ctx, res); err != nil {
			d.state = Failed
			return errors.Wrap(err, subName)
		}
	}

	d.state = Complete
	return nil
}

// help implements the reserved help subcommand: program usage with no
// target, a single command's usage otherwise.
func (d *Dispatcher) help(args []string) error {
	if len(args) == 0 {
		bind.ProgramUsage(d.out, d.prog, d.reg)
		d.state = Complete
		return nil
	}
	name := args[0]
	cmd, ok := d.reg.Subcommand(name)
	if !ok {
		d.state = Failed
		return &clierr.UnknownSubcommand{
			Name:       name,
			Suggestion: closestName(name, d.reg.SubcommandNames()),
		}
	}
	bind.CommandUsage(d.out, d.prog, name, cmd.Sig)
	d.state = Complete
	return nil
}
