package scoring

import "github.com/ferguskeenan/prediction-league/internal/domain/outcome"

// MinUnicornGroupSize is the smallest comparison group in which a
// uniquely-correct pick earns a unicorn. Smaller groups never award one.
const MinUnicornGroupSize = 3

// RoundScore is the derived per-user per-round score. Provisional scores come
// from a live outcome feed and are discarded once real results exist; they are
// never merged with final scores.
type RoundScore struct {
	UserID      string
	Round       int
	Correct     int
	Unicorns    int
	Provisional bool
}

// CorrectCount counts fixtures where the pick matches the decided outcome.
// Fixtures without a decided outcome are excluded, not penalized.
func CorrectCount(picks map[int]outcome.Outcome, outcomes map[int]outcome.Outcome) int {
	count := 0
	for index, picked := range picks {
		if decided, ok := outcomes[index]; ok && decided == picked {
			count++
		}
	}
	return count
}

// UnicornCounts counts, per user, the fixtures where exactly one member of the
// comparison group picked the decided outcome. Groups below
// MinUnicornGroupSize yield no unicorns at all.
func UnicornCounts(groupPicks map[string]map[int]outcome.Outcome, outcomes map[int]outcome.Outcome) map[string]int {
	out := make(map[string]int, len(groupPicks))
	if len(groupPicks) < MinUnicornGroupSize {
		return out
	}

	for index, decided := range outcomes {
		soleCorrect := ""
		correctCount := 0
		for userID, picks := range groupPicks {
			if picked, ok := picks[index]; ok && picked == decided {
				correctCount++
				soleCorrect = userID
			}
		}
		if correctCount == 1 {
			out[soleCorrect]++
		}
	}
	return out
}
