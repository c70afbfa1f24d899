package league

import "context"

type Repository interface {
	Create(ctx context.Context, item League, owner Member) error
	GetByID(ctx context.Context, leagueID string) (League, bool, error)
	GetByInviteCode(ctx context.Context, inviteCode string) (League, bool, error)
	ListByUser(ctx context.Context, userID string) ([]League, error)
	ListMembers(ctx context.Context, leagueID string) ([]Member, error)
	AddMember(ctx context.Context, member Member) error
	IsMember(ctx context.Context, leagueID, userID string) (bool, error)
}
