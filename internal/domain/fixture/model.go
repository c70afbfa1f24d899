package fixture

import "time"

// Fixture is one scheduled match inside a round, addressed by index.
// A zero KickoffAt means the match has no confirmed kickoff yet.
type Fixture struct {
	Round      int
	Index      int
	HomeTeam   string
	AwayTeam   string
	KickoffAt  time.Time
	MatchRefID int64
}

// Indices returns the fixture-index set of a round's fixtures.
func Indices(items []Fixture) map[int]struct{} {
	out := make(map[int]struct{}, len(items))
	for _, item := range items {
		out[item.Index] = struct{}{}
	}
	return out
}

// Kickoffs collects the confirmed kickoff times, dropping unscheduled fixtures.
func Kickoffs(items []Fixture) []time.Time {
	out := make([]time.Time, 0, len(items))
	for _, item := range items {
		if item.KickoffAt.IsZero() {
			continue
		}
		out = append(out, item.KickoffAt)
	}
	return out
}
