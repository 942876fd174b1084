package assess

import "context"

// Store caches assessments by content ID. Entries are replaced wholesale,
// never partially updated.
type Store interface {
	Put(ctx context.Context, a *Assessment) error
	Get(ctx context.Context, contentID string) (*Assessment, error)
	Count(ctx context.Context) (int, error)
}
