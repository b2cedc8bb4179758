package service

import "humbleop/internal/config"

// ArbitrationInput captures the counters the swap decision is made from.
type ArbitrationInput struct {
	InitialVotes int
	Likes        int
	Flags        int
	HasSecond    bool
}

// ArbitrationVerdict explains an arbitration decision.
type ArbitrationVerdict struct {
	Swap      bool
	MinFlags  float64
	FlagRatio float64
	NetScore  int
}

// Arbitrate decides whether community flags have overturned the standing
// winner. A swap requires a runner-up to promote, a flag count at or above
// the floor max(initial_votes*MinFlagsRatio, 5), and either a flag ratio
// above the threshold or a net score collapsed to at most
// initial_votes*NetScoreRatio.
func Arbitrate(in ArbitrationInput, rules config.DuelRules) ArbitrationVerdict {
	v := ArbitrationVerdict{}

	v.MinFlags = float64(in.InitialVotes) * rules.MinFlagsRatio
	if v.MinFlags < 5 {
		v.MinFlags = 5
	}

	total := in.InitialVotes + in.Likes + in.Flags
	if total > 0 {
		v.FlagRatio = float64(in.Flags) / float64(total)
	}

	v.NetScore = (in.InitialVotes + in.Likes) - in.Flags
	threshold := float64(in.InitialVotes) * rules.NetScoreRatio

	if !in.HasSecond {
		return v
	}
	if float64(in.Flags) < v.MinFlags {
		return v
	}
	if v.FlagRatio > rules.FlagRatioThreshold || float64(v.NetScore) <= threshold {
		v.Swap = true
	}
	return v
}
