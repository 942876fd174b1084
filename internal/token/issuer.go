package token

import (
	"context"
	"fmt"
	"time"

	"github.com/mbd888/pressgate/internal/catalog"
)

// IssueRequest contains the parameters for issuing an access token.
type IssueRequest struct {
	UserID    string
	ContentID string
	Level     catalog.Level
	TTL       time.Duration
	MaxUses   int // 0 = unlimited

	// Optional payment linkage for pay-per-view tokens.
	PaymentToken string
	AmountPaid   float64
}

// Validation is the outcome of validating a token string.
type Validation struct {
	Valid  bool
	Token  *Token
	Reason Reason
}

// DefaultTTL is the token lifetime used when a request omits one.
const DefaultTTL = 24 * time.Hour

// Issuer issues and validates access tokens backed by a Store.
type Issuer struct {
	store Store
}

// NewIssuer creates a new token issuer.
func NewIssuer(store Store) *Issuer {
	return &Issuer{store: store}
}

// Store exposes the underlying store for statistics aggregation.
func (i *Issuer) Store() Store { return i.store }

// Issue generates a cryptographically random token bound to
// (user, content, level) and persists it.
func (i *Issuer) Issue(ctx context.Context, req IssueRequest) (*Token, error) {
	ttl := req.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	now := time.Now()
	t := &Token{
		Token:        NewTokenString(),
		UserID:       req.UserID,
		ContentID:    req.ContentID,
		Level:        req.Level,
		GrantedAt:    now,
		ExpiresAt:    now.Add(ttl),
		MaxUses:      req.MaxUses,
		PaymentToken: req.PaymentToken,
		AmountPaid:   req.AmountPaid,
		CreatedAt:    now,
	}

	if err := i.store.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("persist access token: %w", err)
	}

	tokensIssued.Inc()
	return t, nil
}

// Validate checks a token string and reports why it is or is not valid.
// Validation does not consume a use; call MarkUsed to redeem.
func (i *Issuer) Validate(ctx context.Context, tokenStr string) (*Validation, error) {
	t, err := i.store.Get(ctx, tokenStr)
	if err == ErrNotFound {
		return &Validation{Reason: ReasonNotFound}, nil
	}
	if err != nil {
		return nil, err
	}

	if time.Now().After(t.ExpiresAt) {
		return &Validation{Token: t, Reason: ReasonExpired}, nil
	}
	if t.MaxUses > 0 && t.UsageCount >= t.MaxUses {
		return &Validation{Token: t, Reason: ReasonUsageExceeded}, nil
	}
	return &Validation{Valid: true, Token: t, Reason: ReasonOK}, nil
}

// MarkUsed redeems one use of the token. The store guarantees the cap check
// and increment are atomic.
func (i *Issuer) MarkUsed(ctx context.Context, tokenStr string) (*Token, error) {
	t, err := i.store.MarkUsed(ctx, tokenStr)
	if err != nil {
		return nil, err
	}
	tokensRedeemed.Inc()
	return t, nil
}
