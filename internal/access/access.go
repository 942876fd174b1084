// Package access implements content access verification: it resolves a user's
// subscription, checks tier and usage limits against the requested content
// level, and issues short-lived access tokens for granted requests.
package access

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mbd888/pressgate/internal/assess"
	"github.com/mbd888/pressgate/internal/catalog"
	"github.com/mbd888/pressgate/internal/grant"
	"github.com/mbd888/pressgate/internal/logging"
	"github.com/mbd888/pressgate/internal/subscription"
	"github.com/mbd888/pressgate/internal/syncutil"
	"github.com/mbd888/pressgate/internal/token"
	"github.com/mbd888/pressgate/internal/traces"
)

// Errors
var (
	ErrMissingUserID    = errors.New("access: user_id is required")
	ErrMissingContentID = errors.New("access: content_id is required")
)

// Denial reasons returned on a non-granted Decision.
const (
	ReasonSubscriptionInactive = "subscription_inactive"
	ReasonTierInsufficient     = "tier_insufficient"
	ReasonLimitReached         = "limit_reached"
)

// Request describes a single access verification attempt.
type Request struct {
	UserID      string
	ContentID   string
	Level       catalog.Level
	AccessToken string
}

// Decision is the outcome of verifying an access request. Granted decisions
// carry a fresh (or revalidated) access token; denials carry the reason plus
// upgrade and pay-per-view guidance.
type Decision struct {
	Granted   bool          `json:"granted"`
	UserID    string        `json:"userId"`
	ContentID string        `json:"contentId"`
	Level     catalog.Level `json:"level"`
	Tier      catalog.Tier  `json:"tier,omitempty"`
	ExpiresAt *time.Time    `json:"expiresAt,omitempty"`

	AccessToken string `json:"accessToken,omitempty"`

	DenialReason        string       `json:"denialReason,omitempty"`
	Message             string       `json:"message,omitempty"`
	UpgradeRequired     bool         `json:"upgradeRequired,omitempty"`
	RequiredTier        catalog.Tier `json:"requiredTier,omitempty"`
	PayPerViewAvailable bool         `json:"payPerViewAvailable,omitempty"`
	PayPerViewPrice     float64      `json:"payPerViewPrice,omitempty"`

	VerifiedAt time.Time `json:"verifiedAt"`
}

// Manager orchestrates subscription, token, and assessment state to answer
// access requests.
type Manager struct {
	subs     *subscription.Service
	issuer   *token.Issuer
	assessor *assess.Assessor
	grants   *grant.Manager

	// userLocks serializes the check-then-record window per user so that
	// concurrent requests cannot both pass a content limit check before
	// either records its access.
	userLocks syncutil.ShardedMutex

	tokenTTL time.Duration
	events   Emitter
}

// Emitter receives access decisions for fan-out (e.g. to WebSocket clients).
// Implementations must not block.
type Emitter interface {
	AccessDecided(d *Decision)
}

// NewManager creates an access manager.
func NewManager(subs *subscription.Service, issuer *token.Issuer, assessor *assess.Assessor) *Manager {
	return &Manager{subs: subs, issuer: issuer, assessor: assessor}
}

// WithTokenTTL overrides the lifetime of tokens issued on granted access.
func (m *Manager) WithTokenTTL(ttl time.Duration) *Manager {
	m.tokenTTL = ttl
	return m
}

// WithEmitter attaches an event emitter for access decisions.
func (m *Manager) WithEmitter(e Emitter) *Manager {
	m.events = e
	return m
}

// WithGrants attaches a temporary grant manager so its state is included in
// user and global statistics.
func (m *Manager) WithGrants(g *grant.Manager) *Manager {
	m.grants = g
	return m
}

// Verify checks whether userID may access contentID at the requested level.
//
// A valid access token bound to the same content short-circuits the
// subscription checks entirely; its remaining-use count is consumed here.
// Otherwise the user's subscription (defaulting to the free tier) is checked
// for status, tier coverage of the level, and remaining content allowance,
// and on success the access is recorded and a 24-hour token issued.
func (m *Manager) Verify(ctx context.Context, req Request) (_ *Decision, retErr error) {
	ctx, span := traces.StartSpan(ctx, "access.verify",
		traces.UserID(req.UserID),
		traces.ContentID(req.ContentID),
		traces.Level(string(req.Level)))
	defer func() { traces.EndSpan(span, retErr) }()

	start := time.Now()
	defer func() { verifyDuration.Observe(time.Since(start).Seconds()) }()

	if req.UserID == "" {
		return nil, ErrMissingUserID
	}
	if req.ContentID == "" {
		return nil, ErrMissingContentID
	}
	if req.Level == "" {
		req.Level = catalog.LevelPremium
	}
	lvl, err := catalog.ParseLevel(string(req.Level))
	if err != nil {
		return nil, err
	}
	req.Level = lvl

	if req.AccessToken != "" {
		if d := m.verifyByToken(ctx, req); d != nil {
			return m.decided(d), nil
		}
		// Invalid or mismatched token: fall through to subscription checks.
	}

	// Per-user critical section: limit check and access recording must not
	// interleave across concurrent requests for the same user.
	unlock := m.userLocks.Lock(req.UserID)
	defer unlock()

	sub, err := m.subs.GetOrDefault(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	if !sub.IsActive() {
		return m.decided(m.deny(ctx, req, sub, ReasonSubscriptionInactive,
			fmt.Sprintf("subscription status is %s", sub.Status),
			catalog.RequiredTier(req.Level))), nil
	}

	if !sub.HasLevel(req.Level) {
		return m.decided(m.deny(ctx, req, sub, ReasonTierInsufficient,
			fmt.Sprintf("%s tier does not include %s content", sub.Tier, req.Level),
			catalog.RequiredTier(req.Level))), nil
	}

	plan, err := catalog.GetPlan(sub.PlanID)
	if err == nil && !sub.CanAccessMore(plan) {
		// Only the free plan has a content limit, so the upgrade hint is
		// always premium regardless of the requested level.
		return m.decided(m.deny(ctx, req, sub, ReasonLimitReached,
			fmt.Sprintf("monthly content limit of %d reached", plan.ContentLimit),
			catalog.TierPremium)), nil
	}

	if err := m.subs.RecordAccess(ctx, sub); err != nil {
		return nil, err
	}

	tok, err := m.issuer.Issue(ctx, token.IssueRequest{
		UserID:    req.UserID,
		ContentID: req.ContentID,
		Level:     req.Level,
		TTL:       m.tokenTTL,
	})
	if err != nil {
		return nil, err
	}

	logging.L(ctx).Info("access granted",
		"user_id", req.UserID,
		"content_id", req.ContentID,
		"level", req.Level,
		"tier", sub.Tier)
	accessDecisions.WithLabelValues("granted", "").Inc()

	expires := tok.ExpiresAt
	return m.decided(&Decision{
		Granted:     true,
		UserID:      req.UserID,
		ContentID:   req.ContentID,
		Level:       req.Level,
		Tier:        sub.Tier,
		AccessToken: tok.Token,
		ExpiresAt:   &expires,
		VerifiedAt:  time.Now().UTC(),
	}), nil
}

// verifyByToken attempts the token fast path. It returns a granted Decision
// when the presented token is valid for the requested content, nil otherwise.
func (m *Manager) verifyByToken(ctx context.Context, req Request) *Decision {
	v, err := m.issuer.Validate(ctx, req.AccessToken)
	if err != nil || !v.Valid {
		return nil
	}
	if v.Token.ContentID != req.ContentID {
		return nil
	}
	tok, err := m.issuer.MarkUsed(ctx, req.AccessToken)
	if err != nil {
		// Lost a race to the last remaining use.
		return nil
	}

	logging.L(ctx).Info("access granted by token",
		"user_id", tok.UserID,
		"content_id", tok.ContentID,
		"level", tok.Level)
	accessDecisions.WithLabelValues("granted", "").Inc()

	expires := tok.ExpiresAt
	return &Decision{
		Granted:     true,
		UserID:      tok.UserID,
		ContentID:   tok.ContentID,
		Level:       tok.Level,
		AccessToken: tok.Token,
		ExpiresAt:   &expires,
		VerifiedAt:  time.Now().UTC(),
	}
}

// deny builds a denial Decision with upgrade and pay-per-view guidance.
func (m *Manager) deny(ctx context.Context, req Request, sub *subscription.Subscription, reason, message string, required catalog.Tier) *Decision {
	logging.L(ctx).Info("access denied",
		"user_id", req.UserID,
		"content_id", req.ContentID,
		"level", req.Level,
		"reason", reason)
	accessDecisions.WithLabelValues("denied", reason).Inc()

	return &Decision{
		Granted:             false,
		UserID:              req.UserID,
		ContentID:           req.ContentID,
		Level:               req.Level,
		Tier:                sub.Tier,
		DenialReason:        reason,
		Message:             message,
		UpgradeRequired:     true,
		RequiredTier:        required,
		PayPerViewAvailable: true,
		PayPerViewPrice:     m.assessor.PayPerViewPrice(ctx, req.ContentID),
		VerifiedAt:          time.Now().UTC(),
	}
}

func (m *Manager) decided(d *Decision) *Decision {
	if m.events != nil {
		m.events.AccessDecided(d)
	}
	return d
}
