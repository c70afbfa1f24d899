package cache

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/ferguskeenan/prediction-league/internal/domain/fixture"
	"github.com/ferguskeenan/prediction-league/internal/domain/league"
	"github.com/ferguskeenan/prediction-league/internal/domain/user"
	basecache "github.com/ferguskeenan/prediction-league/internal/platform/cache"
)

// FixtureStore is a fixture repository that also accepts admin imports.
type FixtureStore interface {
	fixture.Repository
	UpsertFixtures(ctx context.Context, items []fixture.Fixture) error
}

// FixtureRepository caches fixture reads. The schedule changes only via admin
// import, so a short TTL keeps the hot round listings off the database.
type FixtureRepository struct {
	next  FixtureStore
	cache *basecache.Store
}

func NewFixtureRepository(next FixtureStore, cache *basecache.Store) *FixtureRepository {
	return &FixtureRepository{next: next, cache: cache}
}

func (r *FixtureRepository) ListByRound(ctx context.Context, round int) ([]fixture.Fixture, error) {
	key := "fixture:round:" + strconv.Itoa(round)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListByRound(ctx, round)
		if err != nil {
			return nil, err
		}
		return append([]fixture.Fixture(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]fixture.Fixture)
	return append([]fixture.Fixture(nil), items...), nil
}

func (r *FixtureRepository) ListRounds(ctx context.Context) ([]int, error) {
	v, err := r.cache.GetOrLoad(ctx, "fixture:rounds", func(ctx context.Context) (any, error) {
		rounds, err := r.next.ListRounds(ctx)
		if err != nil {
			return nil, err
		}
		sorted := append([]int(nil), rounds...)
		sort.Ints(sorted)
		return sorted, nil
	})
	if err != nil {
		return nil, err
	}

	rounds, _ := v.([]int)
	return append([]int(nil), rounds...), nil
}

func (r *FixtureRepository) UpsertFixtures(ctx context.Context, items []fixture.Fixture) error {
	if err := r.next.UpsertFixtures(ctx, items); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, "fixture:")
	return nil
}

// UserRepository caches profile lookups for ranking name tie-breaks.
type UserRepository struct {
	next  user.Repository
	cache *basecache.Store
}

func NewUserRepository(next user.Repository, cache *basecache.Store) *UserRepository {
	return &UserRepository{next: next, cache: cache}
}

func (r *UserRepository) UpsertProfile(ctx context.Context, profile user.Profile) error {
	if err := r.next.UpsertProfile(ctx, profile); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, "user:profiles:")
	return nil
}

func (r *UserRepository) ListProfiles(ctx context.Context, userIDs []string) ([]user.Profile, error) {
	sorted := append([]string(nil), userIDs...)
	sort.Strings(sorted)
	key := "user:profiles:" + strings.Join(sorted, ",")

	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListProfiles(ctx, userIDs)
		if err != nil {
			return nil, err
		}
		return append([]user.Profile(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]user.Profile)
	return append([]user.Profile(nil), items...), nil
}

// LeagueRepository caches league metadata reads and passes writes through,
// invalidating what they touch.
type LeagueRepository struct {
	next  league.Repository
	cache *basecache.Store
}

func NewLeagueRepository(next league.Repository, cache *basecache.Store) *LeagueRepository {
	return &LeagueRepository{next: next, cache: cache}
}

func (r *LeagueRepository) Create(ctx context.Context, item league.League, owner league.Member) error {
	if err := r.next.Create(ctx, item, owner); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, "league:")
	return nil
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	key := "league:id:" + leagueID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, leagueID)
		if err != nil {
			return nil, err
		}
		return cachedLeague{value: item, exists: exists}, nil
	})
	if err != nil {
		return league.League{}, false, err
	}

	cached, _ := v.(cachedLeague)
	return cached.value, cached.exists, nil
}

func (r *LeagueRepository) GetByInviteCode(ctx context.Context, inviteCode string) (league.League, bool, error) {
	key := "league:invite:" + inviteCode
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByInviteCode(ctx, inviteCode)
		if err != nil {
			return nil, err
		}
		return cachedLeague{value: item, exists: exists}, nil
	})
	if err != nil {
		return league.League{}, false, err
	}

	cached, _ := v.(cachedLeague)
	return cached.value, cached.exists, nil
}

func (r *LeagueRepository) ListByUser(ctx context.Context, userID string) ([]league.League, error) {
	return r.next.ListByUser(ctx, userID)
}

func (r *LeagueRepository) ListMembers(ctx context.Context, leagueID string) ([]league.Member, error) {
	key := "league:members:" + leagueID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListMembers(ctx, leagueID)
		if err != nil {
			return nil, err
		}
		return append([]league.Member(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]league.Member)
	return append([]league.Member(nil), items...), nil
}

func (r *LeagueRepository) AddMember(ctx context.Context, member league.Member) error {
	if err := r.next.AddMember(ctx, member); err != nil {
		return err
	}
	r.cache.Delete(ctx, "league:members:"+member.LeagueID)
	return nil
}

func (r *LeagueRepository) IsMember(ctx context.Context, leagueID, userID string) (bool, error) {
	return r.next.IsMember(ctx, leagueID, userID)
}

type cachedLeague struct {
	value  league.League
	exists bool
}
