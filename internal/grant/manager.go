package grant

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/mbd888/pressgate/internal/assess"
	"github.com/mbd888/pressgate/internal/catalog"
	"github.com/mbd888/pressgate/internal/logging"
	"github.com/mbd888/pressgate/internal/payments"
	"github.com/mbd888/pressgate/internal/token"
	"github.com/mbd888/pressgate/internal/traces"
)

// AccessAdvisor supplies cached content assessments so the manager can
// resolve a grant's access level without importing the assessor directly.
type AccessAdvisor interface {
	Cached(ctx context.Context, contentID string) (*assess.Assessment, error)
}

// TokenIssuer issues the companion access token for a grant.
type TokenIssuer interface {
	Issue(ctx context.Context, req token.IssueRequest) (*token.Token, error)
}

// Request contains the parameters for a pay-per-view purchase.
type Request struct {
	UserID          string  `json:"userId"`
	ContentID       string  `json:"contentId"`
	DurationSeconds int     `json:"durationSeconds"`
	PaymentToken    string  `json:"paymentToken"`
	AmountPaid      float64 `json:"amountPaid"`
}

// Manager implements pay-per-view grant business logic.
type Manager struct {
	store       Store
	verifier    payments.Verifier
	advisor     AccessAdvisor
	issuer      TokenIssuer
	minDuration int
	maxDuration int
}

// NewManager creates a new grant manager.
func NewManager(store Store, verifier payments.Verifier, advisor AccessAdvisor, issuer TokenIssuer) *Manager {
	return &Manager{
		store:       store,
		verifier:    verifier,
		advisor:     advisor,
		issuer:      issuer,
		minDuration: MinDurationSeconds,
		maxDuration: MaxDurationSeconds,
	}
}

// WithDurationBounds overrides the allowed grant duration range in seconds.
func (m *Manager) WithDurationBounds(minSecs, maxSecs int) *Manager {
	if minSecs > 0 && maxSecs >= minSecs {
		m.minDuration = minSecs
		m.maxDuration = maxSecs
	}
	return m
}

// Store exposes the underlying store for statistics aggregation.
func (m *Manager) Store() Store { return m.store }

// Grant purchases temporary access. Validation happens before any state is
// written; on success the grant carries payment_verified=true and a companion
// access token redeemable through the normal verification path.
//
// No check is made against the buyer's existing subscription: purchasing
// access to content one could already read is the buyer's call.
func (m *Manager) Grant(ctx context.Context, req Request) (_ *Grant, _ *token.Token, retErr error) {
	ctx, span := traces.StartSpan(ctx, "grant.Grant",
		traces.UserID(req.UserID),
		traces.ContentID(req.ContentID),
		attribute.Int("duration_seconds", req.DurationSeconds),
	)
	defer func() { traces.EndSpan(span, retErr) }()

	if req.DurationSeconds < m.minDuration || req.DurationSeconds > m.maxDuration {
		return nil, nil, fmt.Errorf("%w: %d seconds (allowed %d–%d)",
			ErrInvalidDuration, req.DurationSeconds, m.minDuration, m.maxDuration)
	}
	if err := m.verifier.Verify(ctx, req.PaymentToken, req.AmountPaid); err != nil {
		return nil, nil, err
	}

	// The grant's level follows the content's assessed recommendation,
	// defaulting to premium for unassessed content.
	level := catalog.LevelPremium
	if assessment, err := m.advisor.Cached(ctx, req.ContentID); err == nil {
		level = assessment.RecommendedLevel
	}

	duration := time.Duration(req.DurationSeconds) * time.Second
	now := time.Now()
	g := &Grant{
		GrantID:         NewGrantID(),
		UserID:          req.UserID,
		ContentID:       req.ContentID,
		Level:           level,
		DurationSeconds: req.DurationSeconds,
		PaymentToken:    req.PaymentToken,
		AmountPaid:      req.AmountPaid,
		PaymentVerified: true,
		GrantedAt:       now,
		ExpiresAt:       now.Add(duration),
	}

	if err := m.store.Create(ctx, g); err != nil {
		return nil, nil, fmt.Errorf("persist grant: %w", err)
	}

	tok, err := m.issuer.Issue(ctx, token.IssueRequest{
		UserID:       req.UserID,
		ContentID:    req.ContentID,
		Level:        level,
		TTL:          duration,
		PaymentToken: req.PaymentToken,
		AmountPaid:   req.AmountPaid,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("issue companion token: %w", err)
	}

	grantsIssued.Inc()
	grantRevenue.Add(req.AmountPaid)
	logging.L(ctx).Info("temporary access granted",
		"user_id", req.UserID, "content_id", req.ContentID,
		"level", level, "duration_seconds", req.DurationSeconds)
	return g, tok, nil
}

// Get returns a grant by ID.
func (m *Manager) Get(ctx context.Context, grantID string) (*Grant, error) {
	return m.store.Get(ctx, grantID)
}
