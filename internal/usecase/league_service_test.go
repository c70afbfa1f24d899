package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ferguskeenan/prediction-league/internal/infrastructure/repository/memory"
	"github.com/ferguskeenan/prediction-league/internal/platform/id"
)

type sequentialIDGen struct {
	next int
}

var _ id.Generator = (*sequentialIDGen)(nil)

func (g *sequentialIDGen) NewID() (string, error) {
	g.next++
	return fmt.Sprintf("lg-%04d", g.next), nil
}

func (g *sequentialIDGen) NewInviteCode() (string, error) {
	return fmt.Sprintf("INVITE%02d", g.next), nil
}

func leagueForStore(store *memory.Store) *LeagueService {
	svc := NewLeagueService(store.Leagues(), &sequentialIDGen{})
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestLeagueService_Create_OwnerJoinsAsFirstMember(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.NewStore()
	svc := leagueForStore(store)

	created, err := svc.Create(ctx, "alice", "  Office League  ", nil)
	require.NoError(t, err)
	require.Equal(t, "Office League", created.Name)
	require.NotEmpty(t, created.InviteCode)

	mine, err := svc.ListMine(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, created.ID, mine[0].ID)

	members, err := svc.Members(ctx, created.ID, "alice")
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, "alice", members[0].UserID)
}

func TestLeagueService_Create_RejectsBadStartRoundOverride(t *testing.T) {
	t.Parallel()

	svc := leagueForStore(memory.NewStore())
	zero := 0
	_, err := svc.Create(context.Background(), "alice", "League", &zero)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestLeagueService_Join_UnknownInviteCode(t *testing.T) {
	t.Parallel()

	svc := leagueForStore(memory.NewStore())
	_, err := svc.Join(context.Background(), "bob", "NOSUCHCODE")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLeagueService_Join_RepeatJoinIsRejected(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.NewStore()
	svc := leagueForStore(store)

	created, err := svc.Create(ctx, "alice", "League", nil)
	require.NoError(t, err)

	joined, err := svc.Join(ctx, "bob", created.InviteCode)
	require.NoError(t, err)
	require.Equal(t, created.ID, joined.ID)

	_, err = svc.Join(ctx, "bob", created.InviteCode)
	require.ErrorIs(t, err, ErrAlreadyMember)
}

func TestLeagueService_Members_RequiresMembership(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.NewStore()
	svc := leagueForStore(store)

	created, err := svc.Create(ctx, "alice", "League", nil)
	require.NoError(t, err)

	_, err = svc.Members(ctx, created.ID, "mallory")
	require.ErrorIs(t, err, ErrUnauthorized)
}
