package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/mbd888/pressgate/internal/catalog"
	"github.com/mbd888/pressgate/internal/logging"
	"github.com/mbd888/pressgate/internal/traces"
)

// Service implements subscription lifecycle business logic.
type Service struct {
	store Store
}

// NewService creates a new subscription service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Store exposes the underlying store for statistics aggregation.
func (s *Service) Store() Store { return s.store }

// Create subscribes a user to a catalogue plan. It fails with
// ErrAlreadySubscribed if the user already holds an active subscription;
// lapsed or cancelled records are replaced.
func (s *Service) Create(ctx context.Context, userID, planID, paymentMethod string, period BillingPeriod) (_ *Subscription, retErr error) {
	ctx, span := traces.StartSpan(ctx, "subscription.Create",
		traces.UserID(userID),
		attribute.String("plan_id", planID),
	)
	defer func() { traces.EndSpan(span, retErr) }()

	plan, err := catalog.GetPlan(planID)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.Get(ctx, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("look up existing subscription: %w", err)
	}
	if existing != nil && existing.IsActive() {
		return nil, fmt.Errorf("%w: %s", ErrAlreadySubscribed, existing.Tier)
	}

	window := 30 * 24 * time.Hour
	if period == BillingAnnual {
		window = 365 * 24 * time.Hour
	}

	now := time.Now()
	end := now.Add(window)
	sub := &Subscription{
		UserID:        userID,
		Tier:          plan.Tier,
		PlanID:        planID,
		Status:        StatusActive,
		StartDate:     now,
		EndDate:       &end,
		RenewalDate:   &end,
		PaymentMethod: paymentMethod,
		AutoRenew:     true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// A lapsed record is replaced in place; the store keys by user ID.
	if existing != nil {
		err = s.store.Update(ctx, sub)
	} else {
		err = s.store.Create(ctx, sub)
	}
	if err != nil {
		return nil, fmt.Errorf("persist subscription: %w", err)
	}

	subscriptionsCreated.WithLabelValues(string(plan.Tier)).Inc()
	logging.L(ctx).Info("subscription created",
		"user_id", userID, "tier", plan.Tier, "plan_id", planID)
	return sub, nil
}

// Cancel cancels a user's subscription. The record is kept for history;
// cancelling twice is an error, not a no-op.
func (s *Service) Cancel(ctx context.Context, userID string) (retErr error) {
	ctx, span := traces.StartSpan(ctx, "subscription.Cancel", traces.UserID(userID))
	defer func() { traces.EndSpan(span, retErr) }()

	sub, err := s.store.Get(ctx, userID)
	if err != nil {
		return err
	}
	if sub.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}

	now := time.Now()
	sub.Status = StatusCancelled
	sub.CancelledAt = &now
	sub.AutoRenew = false
	sub.UpdatedAt = now

	if err := s.store.Update(ctx, sub); err != nil {
		return fmt.Errorf("persist cancellation: %w", err)
	}

	subscriptionsCancelled.Inc()
	logging.L(ctx).Info("subscription cancelled", "user_id", userID, "tier", sub.Tier)
	return nil
}

// Get returns a user's subscription, or ErrNotFound.
func (s *Service) Get(ctx context.Context, userID string) (*Subscription, error) {
	return s.store.Get(ctx, userID)
}

// GetOrDefault returns the user's subscription, materializing a free-tier
// record on first sight so content-limit tracking has a place to live.
func (s *Service) GetOrDefault(ctx context.Context, userID string) (*Subscription, error) {
	sub, err := s.store.Get(ctx, userID)
	if err == nil {
		return sub, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	sub = &Subscription{
		UserID:    userID,
		Tier:      catalog.TierFree,
		PlanID:    catalog.PlanFree,
		Status:    StatusActive,
		StartDate: now,
		AutoRenew: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("materialize free-tier subscription: %w", err)
	}
	subscriptionsCreated.WithLabelValues(string(catalog.TierFree)).Inc()
	return sub, nil
}

// RecordAccess increments the content access counter and stamps the last
// access time. Callers enforcing a limit must hold the per-user lock across
// the limit check and this call.
func (s *Service) RecordAccess(ctx context.Context, sub *Subscription) error {
	now := time.Now()
	sub.ContentAccessedCount++
	sub.LastAccessDate = &now
	sub.UpdatedAt = now
	return s.store.Update(ctx, sub)
}
