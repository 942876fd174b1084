// Package grant manages pay-per-view temporary access grants.
//
// A grant is an access right independent of subscription tier: the buyer
// presents a payment token, receives a time-bounded grant plus a companion
// access token, and redeems content through the same verification path as
// subscribers. Grants cannot be revoked before their natural expiry.
package grant

import (
	"errors"
	"time"

	"github.com/mbd888/pressgate/internal/catalog"
	"github.com/mbd888/pressgate/internal/idgen"
)

// Errors
var (
	ErrNotFound        = errors.New("grant: not found")
	ErrInvalidDuration = errors.New("grant: duration out of range")
)

// Duration bounds for a grant, in seconds.
const (
	MinDurationSeconds = 60
	MaxDurationSeconds = 86400
)

// Grant is a paid, time-bounded access right for one piece of content.
// Immutable after creation except access bookkeeping.
type Grant struct {
	GrantID   string        `json:"grantId"`
	UserID    string        `json:"userId"`
	ContentID string        `json:"contentId"`
	Level     catalog.Level `json:"accessLevel"`

	DurationSeconds int `json:"durationSeconds"`

	PaymentToken    string  `json:"paymentToken"`
	AmountPaid      float64 `json:"amountPaid"`
	PaymentVerified bool    `json:"paymentVerified"`

	GrantedAt time.Time `json:"grantedAt"`
	ExpiresAt time.Time `json:"expiresAt"`

	Accessed    bool `json:"accessed"`
	AccessCount int  `json:"accessCount"`
}

// IsValid reports whether the grant currently confers access.
func (g *Grant) IsValid() bool {
	return time.Now().Before(g.ExpiresAt) && g.PaymentVerified
}

// NewGrantID generates a random grant identifier.
func NewGrantID() string {
	return idgen.WithPrefix("grant_")
}
