package memory

import (
	"context"
	"sort"

	"github.com/ferguskeenan/prediction-league/internal/domain/fixture"
	"github.com/ferguskeenan/prediction-league/internal/domain/league"
	"github.com/ferguskeenan/prediction-league/internal/domain/pick"
	"github.com/ferguskeenan/prediction-league/internal/domain/result"
	"github.com/ferguskeenan/prediction-league/internal/domain/submission"
	"github.com/ferguskeenan/prediction-league/internal/domain/user"
)

type FixtureRepository struct {
	store *Store
}

func (r *FixtureRepository) ListByRound(_ context.Context, round int) ([]fixture.Fixture, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return cloneFixtures(r.store.fixturesByRound[round]), nil
}

func (r *FixtureRepository) ListRounds(_ context.Context) ([]int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rounds := make([]int, 0, len(r.store.fixturesByRound))
	for round := range r.store.fixturesByRound {
		rounds = append(rounds, round)
	}
	sort.Ints(rounds)
	return rounds, nil
}

func (r *FixtureRepository) UpsertFixtures(_ context.Context, items []fixture.Fixture) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, item := range items {
		round := r.store.fixturesByRound[item.Round]
		replaced := false
		for i := range round {
			if round[i].Index == item.Index {
				round[i] = item
				replaced = true
				break
			}
		}
		if !replaced {
			round = append(round, item)
			sort.Slice(round, func(i, j int) bool { return round[i].Index < round[j].Index })
		}
		r.store.fixturesByRound[item.Round] = round
	}
	return nil
}

type PickRepository struct {
	store *Store
}

func (r *PickRepository) Upsert(_ context.Context, item pick.Pick) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.picks[pickKey{userID: item.UserID, round: item.Round, fixtureIndex: item.FixtureIndex}] = item
	return nil
}

func (r *PickRepository) ListByUserAndRound(_ context.Context, userID string, round int) ([]pick.Pick, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]pick.Pick, 0)
	for key, item := range r.store.picks {
		if key.userID == userID && key.round == round {
			out = append(out, item)
		}
	}
	sortPicks(out)
	return out, nil
}

func (r *PickRepository) ListByRound(_ context.Context, round int) ([]pick.Pick, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.store.listPicksByRoundLocked(round), nil
}

type ResultRepository struct {
	store *Store
}

// Upsert keeps the first recorded result for a fixture; results are
// write-once.
func (r *ResultRepository) Upsert(_ context.Context, item result.Result) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := resultKey{round: item.Round, fixtureIndex: item.FixtureIndex}
	if _, exists := r.store.results[key]; exists {
		return nil
	}
	r.store.results[key] = item
	return nil
}

func (r *ResultRepository) ListByRound(_ context.Context, round int) ([]result.Result, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.store.listResultsByRoundLocked(round), nil
}

type SubmissionRepository struct {
	store *Store
}

func (r *SubmissionRepository) Get(_ context.Context, userID string, round int) (submission.Submission, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, exists := r.store.submissions[submissionKey{userID: userID, round: round}]
	return item, exists, nil
}

func (r *SubmissionRepository) Upsert(_ context.Context, item submission.Submission) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.submissions[submissionKey{userID: item.UserID, round: item.Round}] = item
	return nil
}

func (r *SubmissionRepository) Delete(_ context.Context, userID string, round int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	delete(r.store.submissions, submissionKey{userID: userID, round: round})
	return nil
}

func (r *SubmissionRepository) ListByRound(_ context.Context, round int) ([]submission.Submission, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.store.listSubmissionsByRoundLocked(round), nil
}

type LeagueRepository struct {
	store *Store
}

func (r *LeagueRepository) Create(_ context.Context, item league.League, owner league.Member) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.leagues[item.ID] = item
	r.store.membersByLeague[item.ID] = append(r.store.membersByLeague[item.ID], owner)
	return nil
}

func (r *LeagueRepository) GetByID(_ context.Context, leagueID string) (league.League, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, exists := r.store.leagues[leagueID]
	return item, exists, nil
}

func (r *LeagueRepository) GetByInviteCode(_ context.Context, inviteCode string) (league.League, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, item := range r.store.leagues {
		if item.InviteCode == inviteCode {
			return item, true, nil
		}
	}
	return league.League{}, false, nil
}

func (r *LeagueRepository) ListByUser(_ context.Context, userID string) ([]league.League, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]league.League, 0)
	for leagueID, members := range r.store.membersByLeague {
		for _, member := range members {
			if member.UserID == userID {
				out = append(out, r.store.leagues[leagueID])
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *LeagueRepository) ListMembers(_ context.Context, leagueID string) ([]league.Member, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	members := r.store.membersByLeague[leagueID]
	out := make([]league.Member, 0, len(members))
	out = append(out, members...)
	return out, nil
}

func (r *LeagueRepository) AddMember(_ context.Context, member league.Member) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.membersByLeague[member.LeagueID] {
		if existing.UserID == member.UserID {
			return nil
		}
	}
	r.store.membersByLeague[member.LeagueID] = append(r.store.membersByLeague[member.LeagueID], member)
	return nil
}

func (r *LeagueRepository) IsMember(_ context.Context, leagueID, userID string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, member := range r.store.membersByLeague[leagueID] {
		if member.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

type UserRepository struct {
	store *Store
}

func (r *UserRepository) UpsertProfile(_ context.Context, profile user.Profile) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.profiles[profile.UserID] = profile
	return nil
}

func (r *UserRepository) ListProfiles(_ context.Context, userIDs []string) ([]user.Profile, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]user.Profile, 0, len(userIDs))
	for _, userID := range userIDs {
		if profile, exists := r.store.profiles[userID]; exists {
			out = append(out, profile)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func cloneFixtures(items []fixture.Fixture) []fixture.Fixture {
	out := make([]fixture.Fixture, 0, len(items))
	out = append(out, items...)
	return out
}

func sortPicks(items []pick.Pick) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].UserID != items[j].UserID {
			return items[i].UserID < items[j].UserID
		}
		return items[i].FixtureIndex < items[j].FixtureIndex
	})
}
