package token

import "context"

// Store persists access tokens, keyed by the token string itself.
//
// MarkUsed must be atomic per token: the usage-cap check and the counter
// increment happen under the same critical section so a max_uses=1 token
// cannot be redeemed twice by concurrent callers.
type Store interface {
	Create(ctx context.Context, tok *Token) error
	Get(ctx context.Context, tokenStr string) (*Token, error)
	MarkUsed(ctx context.Context, tokenStr string) (*Token, error)
	List(ctx context.Context) ([]*Token, error)
	ListByUser(ctx context.Context, userID string) ([]*Token, error)
}
