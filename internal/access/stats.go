package access

import (
	"context"
	"errors"
	"time"

	"github.com/mbd888/pressgate/internal/catalog"
	"github.com/mbd888/pressgate/internal/subscription"
	"github.com/mbd888/pressgate/internal/traces"
)

// UserStatistics summarizes one user's subscription and access activity.
type UserStatistics struct {
	UserID          string              `json:"userId"`
	Tier            catalog.Tier        `json:"tier"`
	Status          subscription.Status `json:"status"`
	ContentAccessed int                 `json:"contentAccessed"`
	ContentLimit    int                 `json:"contentLimit"`
	MemberSince     *time.Time          `json:"memberSince,omitempty"`
	ActiveTokens    int                 `json:"activeTokens"`
	TotalTokens     int                 `json:"totalTokens"`
	TemporaryGrants int                 `json:"temporaryGrants"`
	ActiveGrants    int                 `json:"activeGrants"`
	TotalSpent      float64             `json:"totalSpent"`
}

// GlobalStatistics summarizes service-wide state.
type GlobalStatistics struct {
	TotalUsers          int                  `json:"totalUsers"`
	ActiveSubscriptions int                  `json:"activeSubscriptions"`
	TierDistribution    map[catalog.Tier]int `json:"tierDistribution"`
	TokensIssued        int                  `json:"tokensIssued"`
	TokensValid         int                  `json:"tokensValid"`
	TemporaryGrants     int                  `json:"temporaryGrants"`
	ActiveGrants        int                  `json:"activeGrants"`
	GrantRevenue        float64              `json:"grantRevenue"`
	ContentAssessed     int                  `json:"contentAssessed"`
	GeneratedAt         time.Time            `json:"generatedAt"`
}

// UserStats returns statistics for a single user. Users without a stored
// subscription are reported on the free tier with zero usage.
func (m *Manager) UserStats(ctx context.Context, userID string) (_ *UserStatistics, retErr error) {
	ctx, span := traces.StartSpan(ctx, "access.user_stats", traces.UserID(userID))
	defer func() { traces.EndSpan(span, retErr) }()

	stats := &UserStatistics{
		UserID: userID,
		Tier:   catalog.TierFree,
		Status: subscription.StatusActive,
	}

	sub, err := m.subs.Get(ctx, userID)
	switch {
	case err == nil:
		stats.Tier = sub.Tier
		stats.Status = sub.Status
		stats.ContentAccessed = sub.ContentAccessedCount
		since := sub.StartDate
		stats.MemberSince = &since
		if plan, perr := catalog.GetPlan(sub.PlanID); perr == nil {
			stats.ContentLimit = plan.ContentLimit
		}
	case errors.Is(err, subscription.ErrNotFound):
		if plan, perr := catalog.GetPlan(catalog.PlanFree); perr == nil {
			stats.ContentLimit = plan.ContentLimit
		}
	default:
		return nil, err
	}

	tokens, err := m.issuer.Store().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats.TotalTokens = len(tokens)
	for _, t := range tokens {
		if t.IsValid() {
			stats.ActiveTokens++
		}
	}

	if m.grants != nil {
		grants, err := m.grants.Store().ListByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		stats.TemporaryGrants = len(grants)
		for _, g := range grants {
			if g.IsValid() {
				stats.ActiveGrants++
			}
			stats.TotalSpent += g.AmountPaid
		}
	}

	return stats, nil
}

// GlobalStats returns service-wide statistics across subscriptions, tokens,
// grants, and assessments.
func (m *Manager) GlobalStats(ctx context.Context) (_ *GlobalStatistics, retErr error) {
	ctx, span := traces.StartSpan(ctx, "access.global_stats")
	defer func() { traces.EndSpan(span, retErr) }()

	stats := &GlobalStatistics{
		TierDistribution: make(map[catalog.Tier]int),
		GeneratedAt:      time.Now().UTC(),
	}

	subs, err := m.subs.Store().List(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalUsers = len(subs)
	for _, s := range subs {
		stats.TierDistribution[s.Tier]++
		if s.IsActive() {
			stats.ActiveSubscriptions++
		}
	}

	tokens, err := m.issuer.Store().List(ctx)
	if err != nil {
		return nil, err
	}
	stats.TokensIssued = len(tokens)
	for _, t := range tokens {
		if t.IsValid() {
			stats.TokensValid++
		}
	}

	if m.grants != nil {
		grants, err := m.grants.Store().List(ctx)
		if err != nil {
			return nil, err
		}
		stats.TemporaryGrants = len(grants)
		for _, g := range grants {
			if g.IsValid() {
				stats.ActiveGrants++
			}
			if g.PaymentVerified {
				stats.GrantRevenue += g.AmountPaid
			}
		}
	}

	if m.assessor != nil {
		n, err := m.assessor.Store().Count(ctx)
		if err != nil {
			return nil, err
		}
		stats.ContentAssessed = n
	}

	return stats, nil
}
