package bind

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/vk/funcli/internal/registry"
	"github.com/vk/funcli/internal/sig"
)

// Synopsis renders the one-line call pattern for a command: positionals as
// <name>, options as [--name value].
func Synopsis(name string, s *sig.Signature) string {
	var parts []string
	if name != "" {
		parts = append(parts, name)
	}
	for _, p := range s.Params {
		if p.Positional() {
			parts = append(parts, "<"+p.Name+">")
		} else {
			parts = append(parts, fmt.Sprintf("[--%s %s]", p.Name, p.GoType.String()))
		}
	}
	return strings.Join(parts, " ")
}

// ProgramUsage writes the top-level usage message: the main command's call
// pattern, its options, and the subcommand table.
func ProgramUsage(w io.Writer, prog string, reg *registry.Registry) {
	line := prog
	if main := reg.Main(); main != nil {
		if syn := Synopsis("", main.Sig); syn != "" {
			line += " " + syn
		}
	}
	if len(reg.SubcommandNames()) > 0 {
		line += " [command [args...]]"
	}
	fmt.Fprintf(w, "Usage:\n  %s\n", line)

	if main := reg.Main(); main != nil {
		writeOptions(w, main.Sig)
		writeArguments(w, main.Sig)
	}

	names := reg.SubcommandNames()
	if len(names) == 0 {
		return
	}
	fmt.Fprintln(w, "\nCommands:")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, name := range names {
		cmd, _ := reg.Subcommand(name)
		fmt.Fprintf(tw, "  %s\t%s\n", name, Synopsis(name, cmd.Sig))
	}
	fmt.Fprintf(tw, "  %s\t%s\n", "help", "help [command]")
	tw.Flush()
}

// CommandUsage writes the usage message for a single subcommand.
func CommandUsage(w io.Writer, prog, name string, s *sig.Signature) {
	fmt.Fprintf(w, "Usage:\n  %s %s\n", prog, Synopsis(name, s))
	writeOptions(w, s)
	writeArguments(w, s)
}

func writeOptions(w io.Writer, s *sig.Signature) {
	fs := NewFlagSet("", s)
	if !fs.HasFlags() {
		return
	}
	fmt.Fprintln(w, "\nOptions:")
	fmt.Fprint(w, fs.FlagUsages())
}

func writeArguments(w io.Writer, s *sig.Signature) {
	var positionals []sig.ParameterSpec
	for _, p := range s.Params {
		if p.Positional() {
			positionals = append(positionals, p)
		}
	}
	if len(positionals) == 0 {
		return
	}
	fmt.Fprintln(w, "\nArguments:")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, p := range positionals {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", p.Name, p.GoType.String(), p.Help)
	}
	tw.Flush()
}
