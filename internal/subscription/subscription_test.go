package subscription

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbd888/pressgate/internal/catalog"
)

func TestMemoryStore_CRUD(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	sub := &Subscription{
		UserID:    "user_1",
		Tier:      catalog.TierPremium,
		PlanID:    catalog.PlanPremium,
		Status:    StatusActive,
		StartDate: time.Now(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	require.NoError(t, store.Create(ctx, sub))

	got, err := store.Get(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, catalog.TierPremium, got.Tier)

	got.ContentAccessedCount = 3
	require.NoError(t, store.Update(ctx, got))

	got2, _ := store.Get(ctx, "user_1")
	assert.Equal(t, 3, got2.ContentAccessedCount)

	subs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestMemoryStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Get(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.Update(ctx, &Subscription{UserID: "nobody"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore())

	sub, err := svc.Create(ctx, "user_1", catalog.PlanPremium, "card_123", BillingMonthly)
	require.NoError(t, err)
	assert.Equal(t, catalog.TierPremium, sub.Tier)
	assert.Equal(t, StatusActive, sub.Status)
	assert.True(t, sub.AutoRenew)
	require.NotNil(t, sub.EndDate)

	// 30-day window for monthly billing.
	window := sub.EndDate.Sub(sub.StartDate)
	assert.InDelta(t, (30 * 24 * time.Hour).Hours(), window.Hours(), 1)
}

func TestService_Create_AnnualWindow(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore())

	sub, err := svc.Create(ctx, "user_1", catalog.PlanEnterprise, "", BillingAnnual)
	require.NoError(t, err)
	require.NotNil(t, sub.EndDate)
	assert.InDelta(t, (365 * 24 * time.Hour).Hours(), sub.EndDate.Sub(sub.StartDate).Hours(), 1)
}

func TestService_Create_AlreadySubscribed(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore())

	_, err := svc.Create(ctx, "user_1", catalog.PlanPremium, "", BillingMonthly)
	require.NoError(t, err)

	_, err = svc.Create(ctx, "user_1", catalog.PlanEnterprise, "", BillingMonthly)
	assert.ErrorIs(t, err, ErrAlreadySubscribed)
}

func TestService_Create_ReplacesLapsed(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc := NewService(store)

	// Expired subscription: active status but end date in the past.
	past := time.Now().Add(-time.Hour)
	require.NoError(t, store.Create(ctx, &Subscription{
		UserID:    "user_1",
		Tier:      catalog.TierPremium,
		PlanID:    catalog.PlanPremium,
		Status:    StatusActive,
		StartDate: past.Add(-30 * 24 * time.Hour),
		EndDate:   &past,
	}))

	sub, err := svc.Create(ctx, "user_1", catalog.PlanEnterprise, "", BillingMonthly)
	require.NoError(t, err)
	assert.Equal(t, catalog.TierEnterprise, sub.Tier)
	assert.Equal(t, 0, sub.ContentAccessedCount)
}

func TestService_Create_UnknownPlan(t *testing.T) {
	svc := NewService(NewMemoryStore())
	_, err := svc.Create(context.Background(), "user_1", "plan_gold", "", BillingMonthly)
	assert.ErrorIs(t, err, catalog.ErrPlanNotFound)
}

func TestService_Cancel(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore())

	_, err := svc.Create(ctx, "user_1", catalog.PlanPremium, "", BillingMonthly)
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(ctx, "user_1"))

	sub, err := svc.Get(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, sub.Status)
	assert.False(t, sub.AutoRenew)
	require.NotNil(t, sub.CancelledAt)

	// Cancelling again fails and leaves the record unchanged.
	firstCancelledAt := *sub.CancelledAt
	err = svc.Cancel(ctx, "user_1")
	assert.ErrorIs(t, err, ErrAlreadyCancelled)

	sub2, _ := svc.Get(ctx, "user_1")
	assert.Equal(t, firstCancelledAt, *sub2.CancelledAt)
}

func TestService_Cancel_NotFound(t *testing.T) {
	svc := NewService(NewMemoryStore())
	err := svc.Cancel(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_GetOrDefault(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore())

	sub, err := svc.GetOrDefault(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, catalog.TierFree, sub.Tier)
	assert.Equal(t, catalog.PlanFree, sub.PlanID)
	assert.True(t, sub.IsActive())
	assert.Nil(t, sub.EndDate)

	// The free record is persisted, not recreated on each check.
	sub.ContentAccessedCount = 5
	require.NoError(t, svc.Store().Update(ctx, sub))

	again, err := svc.GetOrDefault(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, 5, again.ContentAccessedCount)
}

func TestSubscription_IsActive(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	assert.True(t, (&Subscription{Status: StatusActive}).IsActive())
	assert.True(t, (&Subscription{Status: StatusActive, EndDate: &future}).IsActive())
	assert.False(t, (&Subscription{Status: StatusActive, EndDate: &past}).IsActive())
	assert.False(t, (&Subscription{Status: StatusCancelled, EndDate: &future}).IsActive())
	assert.False(t, (&Subscription{Status: StatusSuspended}).IsActive())
	assert.False(t, (&Subscription{Status: StatusExpired}).IsActive())
}

func TestSubscription_CanAccessMore(t *testing.T) {
	freePlan, _ := catalog.GetPlan(catalog.PlanFree)
	premiumPlan, _ := catalog.GetPlan(catalog.PlanPremium)

	sub := &Subscription{ContentAccessedCount: 9}
	assert.True(t, sub.CanAccessMore(freePlan))

	sub.ContentAccessedCount = 10
	assert.False(t, sub.CanAccessMore(freePlan))

	// Unlimited plans never hit the limit.
	sub.ContentAccessedCount = 100000
	assert.True(t, sub.CanAccessMore(premiumPlan))
}

func TestService_RecordAccess(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore())

	sub, err := svc.GetOrDefault(ctx, "user_1")
	require.NoError(t, err)

	require.NoError(t, svc.RecordAccess(ctx, sub))
	require.NoError(t, svc.RecordAccess(ctx, sub))

	got, _ := svc.Get(ctx, "user_1")
	assert.Equal(t, 2, got.ContentAccessedCount)
	assert.NotNil(t, got.LastAccessDate)
}
