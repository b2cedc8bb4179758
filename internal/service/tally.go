package service

import "sort"

// TallyResult is the outcome of counting votes on a post.
type TallyResult struct {
	Winner      string
	WinnerVotes int
	Second      *string
}

// TallyVotes ranks candidates by vote count and returns the winner and
// runner-up. Ties break by candidate name ascending so repeated runs over the
// same ballot set always pick the same pair. Returns nil when no votes exist.
func TallyVotes(counts map[string]int) *TallyResult {
	if len(counts) == 0 {
		return nil
	}

	type entry struct {
		candidate string
		votes     int
	}
	ranked := make([]entry, 0, len(counts))
	for candidate, votes := range counts {
		if votes <= 0 {
			continue
		}
		ranked = append(ranked, entry{candidate: candidate, votes: votes})
	}
	if len(ranked) == 0 {
		return nil
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].votes != ranked[j].votes {
			return ranked[i].votes > ranked[j].votes
		}
		return ranked[i].candidate < ranked[j].candidate
	})

	result := &TallyResult{
		Winner:      ranked[0].candidate,
		WinnerVotes: ranked[0].votes,
	}
	if len(ranked) > 1 {
		second := ranked[1].candidate
		result.Second = &second
	}
	return result
}

// ClampInitialVotes bounds the winner's raw vote count into the configured
// capital range so a handful of flags on a lightly-voted duel cannot trigger
// arbitration by itself.
func ClampInitialVotes(votes, min, max int) int {
	if votes < min {
		return min
	}
	if votes > max {
		return max
	}
	return votes
}
