package memory

import (
	"time"

	"github.com/ferguskeenan/prediction-league/internal/domain/fixture"
	"github.com/ferguskeenan/prediction-league/internal/domain/user"
)

// SeedFixtures is a two-round demo schedule for local runs.
func SeedFixtures() []fixture.Fixture {
	round1 := time.Date(2026, 8, 15, 15, 0, 0, 0, time.UTC)
	round2 := time.Date(2026, 8, 22, 15, 0, 0, 0, time.UTC)

	return []fixture.Fixture{
		{Round: 1, Index: 0, HomeTeam: "Arsenal", AwayTeam: "Chelsea", KickoffAt: round1, MatchRefID: 90101},
		{Round: 1, Index: 1, HomeTeam: "Liverpool", AwayTeam: "Manchester United", KickoffAt: round1.Add(2 * time.Hour), MatchRefID: 90102},
		{Round: 1, Index: 2, HomeTeam: "Everton", AwayTeam: "Tottenham", KickoffAt: round1.Add(26 * time.Hour), MatchRefID: 90103},
		{Round: 2, Index: 0, HomeTeam: "Chelsea", AwayTeam: "Liverpool", KickoffAt: round2, MatchRefID: 90201},
		{Round: 2, Index: 1, HomeTeam: "Manchester United", AwayTeam: "Everton", KickoffAt: round2.Add(2 * time.Hour), MatchRefID: 90202},
		{Round: 2, Index: 2, HomeTeam: "Tottenham", AwayTeam: "Arsenal", KickoffAt: round2.Add(26 * time.Hour), MatchRefID: 90203},
	}
}

// SeedProfiles are demo users for local runs.
func SeedProfiles() []user.Profile {
	return []user.Profile{
		{UserID: "demo-alice", DisplayName: "Alice"},
		{UserID: "demo-bob", DisplayName: "Bob"},
		{UserID: "demo-carol", DisplayName: "Carol"},
	}
}

// NewSeededStore is a store preloaded with the demo schedule and users.
func NewSeededStore() *Store {
	store := NewStore()
	for _, item := range SeedFixtures() {
		store.fixturesByRound[item.Round] = append(store.fixturesByRound[item.Round], item)
	}
	for _, profile := range SeedProfiles() {
		store.profiles[profile.UserID] = profile
	}
	return store
}
