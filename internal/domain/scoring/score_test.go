package scoring

import (
	"testing"

	"github.com/ferguskeenan/prediction-league/internal/domain/outcome"
)

func TestCorrectCountSkipsUndecided(t *testing.T) {
	t.Parallel()

	picks := map[int]outcome.Outcome{
		0: outcome.Home,
		1: outcome.Draw,
		2: outcome.Away,
		3: outcome.Home,
	}
	outcomes := map[int]outcome.Outcome{
		0: outcome.Home,
		1: outcome.Away,
		3: outcome.Home,
	}

	if got := CorrectCount(picks, outcomes); got != 2 {
		t.Fatalf("want 2 correct, got %d", got)
	}
	if got := CorrectCount(nil, outcomes); got != 0 {
		t.Fatalf("want 0 correct without picks, got %d", got)
	}
}

func TestUnicornCountsAwardsSoleCorrectPicker(t *testing.T) {
	t.Parallel()

	groupPicks := map[string]map[int]outcome.Outcome{
		"alice": {0: outcome.Home, 1: outcome.Draw},
		"bob":   {0: outcome.Away, 1: outcome.Draw},
		"carol": {0: outcome.Away, 1: outcome.Away},
	}
	outcomes := map[int]outcome.Outcome{
		0: outcome.Home, // only alice
		1: outcome.Draw, // alice and bob, no unicorn
	}

	got := UnicornCounts(groupPicks, outcomes)
	if got["alice"] != 1 {
		t.Fatalf("want 1 unicorn for alice, got %d", got["alice"])
	}
	if got["bob"] != 0 || got["carol"] != 0 {
		t.Fatalf("unexpected unicorns: %v", got)
	}
}

func TestUnicornCountsRequiresMinGroupSize(t *testing.T) {
	t.Parallel()

	groupPicks := map[string]map[int]outcome.Outcome{
		"alice": {0: outcome.Home},
		"bob":   {0: outcome.Away},
	}
	outcomes := map[int]outcome.Outcome{0: outcome.Home}

	if got := UnicornCounts(groupPicks, outcomes); len(got) != 0 {
		t.Fatalf("two-member group must never award unicorns, got %v", got)
	}
}

func TestUnicornCountsNobodyCorrect(t *testing.T) {
	t.Parallel()

	groupPicks := map[string]map[int]outcome.Outcome{
		"alice": {0: outcome.Home},
		"bob":   {0: outcome.Home},
		"carol": {},
	}
	outcomes := map[int]outcome.Outcome{0: outcome.Draw}

	if got := UnicornCounts(groupPicks, outcomes); len(got) != 0 {
		t.Fatalf("want no unicorns when nobody is correct, got %v", got)
	}
}
