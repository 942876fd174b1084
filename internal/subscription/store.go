package subscription

import "context"

// Store persists subscription records, keyed by user ID.
type Store interface {
	Create(ctx context.Context, sub *Subscription) error
	Get(ctx context.Context, userID string) (*Subscription, error)
	Update(ctx context.Context, sub *Subscription) error
	List(ctx context.Context) ([]*Subscription, error)
}
