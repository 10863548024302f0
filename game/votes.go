package game

import "sort"

// CountVotes tallies target ids and returns the counts together with every
// target sharing the highest count, sorted for reproducible tie-breaks.
func CountVotes(votes []string) (counts map[string]int, leaders []string) {
	counts = make(map[string]int)
	for _, target := range votes {
		if target == "" {
			continue
		}
		counts[target]++
	}

	best := 0
	for target, n := range counts {
		switch {
		case n > best:
			best = n
			leaders = []string{target}
		case n == best:
			leaders = append(leaders, target)
		}
	}
	sort.Strings(leaders)
	return counts, leaders
}

// Eliminate picks the eliminated id among the leaders, breaking ties at random.
func Eliminate(leaders []string, rng Rand) string {
	switch len(leaders) {
	case 0:
		return ""
	case 1:
		return leaders[0]
	default:
		return leaders[rng.IntN(len(leaders))]
	}
}
