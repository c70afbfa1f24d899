package gameweek

import (
	"testing"
	"time"
)

func TestResolveNoConfirmedKickoff(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	if got := Resolve(nil, now, DefaultDeadlineBuffer, false, false); got != StateUndefined {
		t.Fatalf("expected UNDEFINED for empty kickoffs, got %s", got)
	}
	unscheduled := []time.Time{{}, {}}
	if got := Resolve(unscheduled, now, DefaultDeadlineBuffer, false, true); got != StateUndefined {
		t.Fatalf("expected UNDEFINED for zero kickoffs, got %s", got)
	}
}

func TestResolveLifecycle(t *testing.T) {
	t.Parallel()

	kickoff := time.Date(2026, 8, 15, 15, 0, 0, 0, time.UTC)
	kickoffs := []time.Time{kickoff.Add(2 * time.Hour), kickoff}
	deadline := kickoff.Add(-DefaultDeadlineBuffer)

	cases := []struct {
		name          string
		now           time.Time
		fullyDecided  bool
		picksComplete bool
		want          State
	}{
		{"open before deadline", deadline.Add(-time.Minute), false, false, StateOpen},
		{"predicted before deadline", deadline.Add(-time.Minute), false, true, StatePredicted},
		{"locked exactly at deadline", deadline, false, true, StateDeadlinePassed},
		{"locked after deadline", deadline.Add(time.Second), false, false, StateDeadlinePassed},
		{"live at kickoff", kickoff, false, true, StateLive},
		{"live between matches", kickoff.Add(time.Hour), false, false, StateLive},
		{"final once decided", kickoff.Add(4 * time.Hour), true, true, StateResultsFinal},
		{"final wins over clock", deadline.Add(-time.Hour), true, false, StateResultsFinal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Resolve(kickoffs, tc.now, DefaultDeadlineBuffer, tc.fullyDecided, tc.picksComplete)
			if got != tc.want {
				t.Fatalf("want %s, got %s", tc.want, got)
			}
		})
	}
}

func TestDeadlineUsesEarliestKickoff(t *testing.T) {
	t.Parallel()

	early := time.Date(2026, 8, 15, 12, 30, 0, 0, time.UTC)
	kickoffs := []time.Time{early.Add(3 * time.Hour), early, early.Add(26 * time.Hour)}

	deadline, ok := Deadline(kickoffs, DefaultDeadlineBuffer)
	if !ok {
		t.Fatalf("expected a deadline")
	}
	if want := early.Add(-75 * time.Minute); !deadline.Equal(want) {
		t.Fatalf("want deadline %s, got %s", want, deadline)
	}

	if _, ok := Deadline(nil, DefaultDeadlineBuffer); ok {
		t.Fatalf("expected no deadline without kickoffs")
	}
}

func TestStateLocked(t *testing.T) {
	t.Parallel()

	locked := []State{StateDeadlinePassed, StateLive, StateResultsFinal}
	for _, s := range locked {
		if !s.Locked() {
			t.Fatalf("expected %s to be locked", s)
		}
	}
	open := []State{StateUndefined, StateOpen, StatePredicted}
	for _, s := range open {
		if s.Locked() {
			t.Fatalf("expected %s to be unlocked", s)
		}
	}
}
