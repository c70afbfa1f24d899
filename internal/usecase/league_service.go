package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ferguskeenan/prediction-league/internal/domain/league"
	"github.com/ferguskeenan/prediction-league/internal/platform/id"
)

type LeagueService struct {
	leagueRepo league.Repository
	idGen      id.Generator
	now        func() time.Time
}

func NewLeagueService(leagueRepo league.Repository, idGen id.Generator) *LeagueService {
	return &LeagueService{
		leagueRepo: leagueRepo,
		idGen:      idGen,
		now:        time.Now,
	}
}

// Create makes a league owned by the caller, who joins as its first member.
// The optional start round override pins scoring eligibility instead of
// deriving it from the creation time.
func (s *LeagueService) Create(ctx context.Context, ownerUserID, name string, startRoundOverride *int) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.Create")
	defer span.End()

	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return league.League{}, fmt.Errorf("%w: owner user id is required", ErrInvalidInput)
	}
	if startRoundOverride != nil && *startRoundOverride <= 0 {
		return league.League{}, fmt.Errorf("%w: start round override must be greater than zero", ErrInvalidInput)
	}

	leagueID, err := s.idGen.NewID()
	if err != nil {
		return league.League{}, fmt.Errorf("generate league id: %w", err)
	}
	inviteCode, err := s.idGen.NewInviteCode()
	if err != nil {
		return league.League{}, fmt.Errorf("generate invite code: %w", err)
	}

	now := s.now().UTC()
	item := league.League{
		ID:                 leagueID,
		Name:               strings.TrimSpace(name),
		OwnerUserID:        ownerUserID,
		InviteCode:         inviteCode,
		CreatedAt:          now,
		StartRoundOverride: startRoundOverride,
	}
	if err := item.Validate(); err != nil {
		return league.League{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	owner := league.Member{LeagueID: leagueID, UserID: ownerUserID, JoinedAt: now}
	if err := s.leagueRepo.Create(ctx, item, owner); err != nil {
		return league.League{}, fmt.Errorf("create league: %w", err)
	}
	return item, nil
}

// Join adds the caller to the league behind the invite code.
func (s *LeagueService) Join(ctx context.Context, userID, inviteCode string) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.Join")
	defer span.End()

	userID = strings.TrimSpace(userID)
	inviteCode = strings.TrimSpace(inviteCode)
	if userID == "" {
		return league.League{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if inviteCode == "" {
		return league.League{}, fmt.Errorf("%w: invite code is required", ErrInvalidInput)
	}

	item, exists, err := s.leagueRepo.GetByInviteCode(ctx, inviteCode)
	if err != nil {
		return league.League{}, fmt.Errorf("get league by invite code: %w", err)
	}
	if !exists {
		return league.League{}, fmt.Errorf("%w: invite code", ErrNotFound)
	}

	alreadyMember, err := s.leagueRepo.IsMember(ctx, item.ID, userID)
	if err != nil {
		return league.League{}, fmt.Errorf("check membership: %w", err)
	}
	if alreadyMember {
		return league.League{}, fmt.Errorf("%w: league=%s", ErrAlreadyMember, item.ID)
	}

	if err := s.leagueRepo.AddMember(ctx, league.Member{
		LeagueID: item.ID,
		UserID:   userID,
		JoinedAt: s.now().UTC(),
	}); err != nil {
		return league.League{}, fmt.Errorf("add member: %w", err)
	}
	return item, nil
}

// ListMine returns the caller's leagues.
func (s *LeagueService) ListMine(ctx context.Context, userID string) ([]league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.ListMine")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	items, err := s.leagueRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list leagues by user: %w", err)
	}
	return items, nil
}

// Members returns the league's member set; callers must belong to it.
func (s *LeagueService) Members(ctx context.Context, leagueID, viewerID string) ([]league.Member, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.Members")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return nil, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	member, err := s.leagueRepo.IsMember(ctx, leagueID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}
	if !member {
		return nil, fmt.Errorf("%w: not a member of league %s", ErrUnauthorized, leagueID)
	}

	items, err := s.leagueRepo.ListMembers(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return items, nil
}
