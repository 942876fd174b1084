// Package token issues and validates short-lived content access tokens.
//
// A token binds (user, content, level) to an expiry and an optional usage
// cap. It decouples "was access previously verified" from "is the
// subscription still active": holders can re-read content without re-running
// the full verification algorithm until the token expires.
package token

import (
	"errors"
	"time"

	"github.com/mbd888/pressgate/internal/catalog"
	"github.com/mbd888/pressgate/internal/idgen"
)

// Errors
var (
	ErrNotFound      = errors.New("token: not found")
	ErrUsageExceeded = errors.New("token: usage limit exceeded")
)

// Reason explains a validation outcome.
type Reason string

const (
	ReasonOK            Reason = "ok"
	ReasonNotFound      Reason = "not_found"
	ReasonExpired       Reason = "expired"
	ReasonUsageExceeded Reason = "usage_exceeded"
)

// Token is a time-limited access credential for a piece of content.
// Tokens are never deleted; they expire logically.
type Token struct {
	Token     string        `json:"token"`
	UserID    string        `json:"userId"`
	ContentID string        `json:"contentId"`
	Level     catalog.Level `json:"accessLevel"`

	GrantedAt time.Time `json:"grantedAt"`
	ExpiresAt time.Time `json:"expiresAt"`

	Used       bool       `json:"used"`
	UsedAt     *time.Time `json:"usedAt,omitempty"`
	UsageCount int        `json:"usageCount"`
	MaxUses    int        `json:"maxUses,omitempty"` // 0 = unlimited

	PaymentToken string  `json:"paymentToken,omitempty"`
	AmountPaid   float64 `json:"amountPaid,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// IsValid reports whether the token can still be redeemed.
func (t *Token) IsValid() bool {
	if time.Now().After(t.ExpiresAt) {
		return false
	}
	if t.MaxUses > 0 && t.UsageCount >= t.MaxUses {
		return false
	}
	return true
}

// NewTokenString generates an unguessable opaque token value.
func NewTokenString() string {
	return "tok_" + idgen.Hex(24)
}
