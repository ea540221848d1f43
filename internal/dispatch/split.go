package dispatch

import "strings"

// split partitions the raw token stream between the main command and an
// optional trailing subcommand. Flag tokens and their explicit values stay
// with the main segment; bare tokens fill main's positional slots in order;
// the first surplus bare token names a subcommand and everything after it
// belongs to that subcommand.
//
// Only the boundary is decided here. Flag grammar inside each segment is
// pflag's business.
func split(tokens []string, mainArity int) (mainToks []string, subName string, subToks []string) {
	positionals := 0
	terminated := false

	for i := 0; i < len(tokens); i++ {
		t := tokens[i]

		if !terminated && t == "--" {
			mainToks = append(mainToks, t)
			terminated = true
			continue
		}

		if !terminated && len(t) > 1 && strings.HasPrefix(t, "-") {
			mainToks = append(mainToks, t)
			// Every option takes an explicit value token unless it was
			// supplied inline as --name=value. Help flags take none.
			if !strings.Contains(t, "=") && !isHelpToken(t) && i+1 < len(tokens) {
				i++
				mainToks = append(mainToks, tokens[i])
			}
			continue
		}

		if positionals < mainArity {
			mainToks = append(mainToks, t)
			positionals++
			continue
		}

		subName = t
		subToks = tokens[i+1:]
		break
	}
	return mainToks, subName, subToks
}

func isHelpToken(t string) bool {
	return t == "-h" || t == "--help"
}
