package scoring

// TopQuartileThreshold is the percentile at or above which a round counts
// toward a streak.
const TopQuartileThreshold = 75.0

// RoundPercentile is one entry of a user's chronological percentile sequence.
type RoundPercentile struct {
	Round      int
	Percentile float64
}

// StreakSpan is the longest run of consecutive rounds at or above a
// percentile threshold. A zero Length means no qualifying round.
type StreakSpan struct {
	Length     int
	StartRound int
	EndRound   int
}

// LongestStreak scans the sequence once, resetting on any round below the
// threshold and keeping the best span only when a run is strictly longer.
func LongestStreak(sequence []RoundPercentile, threshold float64) StreakSpan {
	best := StreakSpan{}
	run := 0
	runStart := 0
	for i, entry := range sequence {
		if entry.Percentile < threshold {
			run = 0
			continue
		}
		if run == 0 {
			runStart = i
		}
		run++
		if run > best.Length {
			best = StreakSpan{
				Length:     run,
				StartRound: sequence[runStart].Round,
				EndRound:   entry.Round,
			}
		}
	}
	return best
}
