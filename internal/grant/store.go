package grant

import "context"

// Store persists temporary access grants.
type Store interface {
	Create(ctx context.Context, g *Grant) error
	Get(ctx context.Context, grantID string) (*Grant, error)
	List(ctx context.Context) ([]*Grant, error)
	ListByUser(ctx context.Context, userID string) ([]*Grant, error)
}
