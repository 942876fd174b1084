// Package subscription manages per-user subscription records and their
// lifecycle: creation against a catalogue plan, cancellation, activity and
// content-limit checks, and access bookkeeping.
package subscription

import (
	"errors"
	"time"

	"github.com/mbd888/pressgate/internal/catalog"
)

// Errors
var (
	ErrNotFound          = errors.New("subscription: not found")
	ErrAlreadySubscribed = errors.New("subscription: user already has an active subscription")
	ErrAlreadyCancelled  = errors.New("subscription: already cancelled")
)

// Status represents a subscription's lifecycle state.
type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
	StatusSuspended Status = "suspended"
)

// BillingPeriod selects the length of the subscription window.
type BillingPeriod string

const (
	BillingMonthly BillingPeriod = "monthly"
	BillingAnnual  BillingPeriod = "annual"
)

// Subscription is a user's subscription record. At most one exists per user.
type Subscription struct {
	UserID string       `json:"userId"`
	Tier   catalog.Tier `json:"tier"`
	PlanID string       `json:"planId"`
	Status Status       `json:"status"`

	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	RenewalDate *time.Time `json:"renewalDate,omitempty"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`

	ContentAccessedCount int        `json:"contentAccessedCount"`
	LastAccessDate       *time.Time `json:"lastAccessDate,omitempty"`

	PaymentMethod string `json:"paymentMethod,omitempty"`
	AutoRenew     bool   `json:"autoRenew"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsActive reports whether the subscription is currently usable.
func (s *Subscription) IsActive() bool {
	if s.Status != StatusActive {
		return false
	}
	if s.EndDate != nil && time.Now().After(*s.EndDate) {
		return false
	}
	return true
}

// HasLevel reports whether the subscription's tier includes a content level.
func (s *Subscription) HasLevel(level catalog.Level) bool {
	return catalog.TierHasLevel(s.Tier, level)
}

// CanAccessMore reports whether the plan's content limit permits another
// access. The Nth request that would exceed the limit is the one denied.
func (s *Subscription) CanAccessMore(plan *catalog.Plan) bool {
	if plan.Unlimited() {
		return true
	}
	return s.ContentAccessedCount < plan.ContentLimit
}
