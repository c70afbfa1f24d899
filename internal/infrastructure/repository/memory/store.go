package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/ferguskeenan/prediction-league/internal/domain/fixture"
	"github.com/ferguskeenan/prediction-league/internal/domain/league"
	"github.com/ferguskeenan/prediction-league/internal/domain/pick"
	"github.com/ferguskeenan/prediction-league/internal/domain/result"
	"github.com/ferguskeenan/prediction-league/internal/domain/submission"
	"github.com/ferguskeenan/prediction-league/internal/domain/user"
)

type pickKey struct {
	userID       string
	round        int
	fixtureIndex int
}

type resultKey struct {
	round        int
	fixtureIndex int
}

type submissionKey struct {
	userID string
	round  int
}

// Store holds every record behind one RWMutex. A single lock is the point:
// the snapshot source reads all four record types under one RLock, so a
// computation can never mix pick state from one instant with result state
// from another.
type Store struct {
	mu sync.RWMutex

	fixturesByRound map[int][]fixture.Fixture
	picks           map[pickKey]pick.Pick
	results         map[resultKey]result.Result
	submissions     map[submissionKey]submission.Submission
	leagues         map[string]league.League
	membersByLeague map[string][]league.Member
	profiles        map[string]user.Profile

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		fixturesByRound: make(map[int][]fixture.Fixture),
		picks:           make(map[pickKey]pick.Pick),
		results:         make(map[resultKey]result.Result),
		submissions:     make(map[submissionKey]submission.Submission),
		leagues:         make(map[string]league.League),
		membersByLeague: make(map[string][]league.Member),
		profiles:        make(map[string]user.Profile),
		now:             time.Now,
	}
}

func (s *Store) listPicksByRoundLocked(round int) []pick.Pick {
	out := make([]pick.Pick, 0)
	for key, item := range s.picks {
		if key.round == round {
			out = append(out, item)
		}
	}
	sortPicks(out)
	return out
}

func (s *Store) listResultsByRoundLocked(round int) []result.Result {
	out := make([]result.Result, 0)
	for key, item := range s.results {
		if key.round == round {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FixtureIndex < out[j].FixtureIndex })
	return out
}

func (s *Store) listSubmissionsByRoundLocked(round int) []submission.Submission {
	out := make([]submission.Submission, 0)
	for key, item := range s.submissions {
		if key.round == round {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// Fixtures returns the fixture repository view of the store.
func (s *Store) Fixtures() *FixtureRepository { return &FixtureRepository{store: s} }

// Picks returns the pick repository view of the store.
func (s *Store) Picks() *PickRepository { return &PickRepository{store: s} }

// Results returns the result repository view of the store.
func (s *Store) Results() *ResultRepository { return &ResultRepository{store: s} }

// Submissions returns the submission repository view of the store.
func (s *Store) Submissions() *SubmissionRepository { return &SubmissionRepository{store: s} }

// Leagues returns the league repository view of the store.
func (s *Store) Leagues() *LeagueRepository { return &LeagueRepository{store: s} }

// Users returns the user repository view of the store.
func (s *Store) Users() *UserRepository { return &UserRepository{store: s} }
