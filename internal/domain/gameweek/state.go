package gameweek

import "time"

// State is the closed lifecycle of a round relative to kickoff and deadline.
// Every consumer reads the same value through Resolve instead of re-deriving
// it from timestamps inline.
type State string

const (
	StateUndefined      State = "UNDEFINED"
	StateOpen           State = "OPEN"
	StatePredicted      State = "PREDICTED"
	StateDeadlinePassed State = "DEADLINE_PASSED"
	StateLive           State = "LIVE"
	StateResultsFinal   State = "RESULTS_FINAL"
)

// DefaultDeadlineBuffer is how long before the round's first kickoff
// predictions lock.
const DefaultDeadlineBuffer = 75 * time.Minute

// Locked reports whether picks may no longer change in this state.
func (s State) Locked() bool {
	switch s {
	case StateDeadlinePassed, StateLive, StateResultsFinal:
		return true
	default:
		return false
	}
}

// Deadline computes the prediction deadline from the round's confirmed
// kickoffs. Zero kickoff times must be filtered out by the caller; a round
// with no confirmed kickoff has no deadline.
func Deadline(kickoffs []time.Time, buffer time.Duration) (time.Time, bool) {
	first, ok := firstKickoff(kickoffs)
	if !ok {
		return time.Time{}, false
	}
	return first.Add(-buffer), true
}

// Resolve derives the round state. fullyDecided means every fixture index in
// the round has a recorded result; picksComplete means the viewing user's pick
// set covers the round exactly. A round with no confirmed kickoff resolves
// StateUndefined rather than guessing open or live.
func Resolve(kickoffs []time.Time, now time.Time, buffer time.Duration, fullyDecided, picksComplete bool) State {
	first, ok := firstKickoff(kickoffs)
	if !ok {
		return StateUndefined
	}
	if fullyDecided {
		return StateResultsFinal
	}
	if !now.Before(first) {
		return StateLive
	}
	if !now.Before(first.Add(-buffer)) {
		return StateDeadlinePassed
	}
	if picksComplete {
		return StatePredicted
	}
	return StateOpen
}

func firstKickoff(kickoffs []time.Time) (time.Time, bool) {
	first := time.Time{}
	for _, at := range kickoffs {
		if at.IsZero() {
			continue
		}
		if first.IsZero() || at.Before(first) {
			first = at
		}
	}
	if first.IsZero() {
		return time.Time{}, false
	}
	return first, true
}
