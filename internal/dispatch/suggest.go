package dispatch

import "github.com/lithammer/fuzzysearch/fuzzy"

// closestName returns the registered name closest to target, or "" when
// nothing matches even loosely.
func closestName(target string, candidates []string) string {
	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) == 0 {
		return ""
	}
	best := ranks[0]
	for _, r := range ranks[1:] {
		if r.Distance < best.Distance {
			best = r
		}
	}
	return best.Target
}
