//go:build integration

package subscription

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbd888/pressgate/internal/catalog"
	"github.com/mbd888/pressgate/internal/testutil"
)

func setupPostgres(t *testing.T) (*PostgresStore, func()) {
	t.Helper()
	db, cleanup := testutil.PGTest(t)
	return NewPostgresStore(db), cleanup
}

func pgSub(userID string) *Subscription {
	now := time.Now().UTC().Truncate(time.Millisecond)
	renewal := now.AddDate(0, 1, 0)
	return &Subscription{
		UserID:        userID,
		Tier:          catalog.TierPremium,
		PlanID:        "plan_premium",
		Status:        StatusActive,
		StartDate:     now,
		RenewalDate:   &renewal,
		PaymentMethod: "pm_card",
		AutoRenew:     true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestPostgres_CreateAndGet(t *testing.T) {
	store, cleanup := setupPostgres(t)
	defer cleanup()
	ctx := context.Background()

	sub := pgSub("user_pg_1")
	require.NoError(t, store.Create(ctx, sub))

	got, err := store.Get(ctx, "user_pg_1")
	require.NoError(t, err)
	assert.Equal(t, catalog.TierPremium, got.Tier)
	assert.Equal(t, "plan_premium", got.PlanID)
	assert.Equal(t, StatusActive, got.Status)
	assert.True(t, got.AutoRenew)
	require.NotNil(t, got.RenewalDate)
	assert.WithinDuration(t, *sub.RenewalDate, *got.RenewalDate, time.Second)
}

func TestPostgres_Get_NotFound(t *testing.T) {
	store, cleanup := setupPostgres(t)
	defer cleanup()

	_, err := store.Get(context.Background(), "user_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgres_Create_Duplicate(t *testing.T) {
	store, cleanup := setupPostgres(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, pgSub("user_pg_dup")))
	err := store.Create(ctx, pgSub("user_pg_dup"))
	assert.ErrorIs(t, err, ErrAlreadySubscribed)
}

func TestPostgres_Update(t *testing.T) {
	store, cleanup := setupPostgres(t)
	defer cleanup()
	ctx := context.Background()

	sub := pgSub("user_pg_upd")
	require.NoError(t, store.Create(ctx, sub))

	now := time.Now().UTC()
	sub.Status = StatusCancelled
	sub.CancelledAt = &now
	sub.ContentAccessedCount = 7
	sub.LastAccessDate = &now
	sub.UpdatedAt = now
	require.NoError(t, store.Update(ctx, sub))

	got, err := store.Get(ctx, "user_pg_upd")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
	assert.Equal(t, 7, got.ContentAccessedCount)
	require.NotNil(t, got.CancelledAt)
}

func TestPostgres_Update_NotFound(t *testing.T) {
	store, cleanup := setupPostgres(t)
	defer cleanup()

	err := store.Update(context.Background(), pgSub("user_pg_ghost"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgres_List(t *testing.T) {
	store, cleanup := setupPostgres(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, pgSub("user_pg_a")))
	require.NoError(t, store.Create(ctx, pgSub("user_pg_b")))

	subs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, subs, 2)
}
