package token

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbd888/pressgate/internal/catalog"
)

func TestNewTokenString_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		s := NewTokenString()
		assert.False(t, seen[s], "token strings must not repeat")
		seen[s] = true
		assert.Contains(t, s, "tok_")
	}
}

func TestIssuer_IssueAndValidate(t *testing.T) {
	ctx := context.Background()
	issuer := NewIssuer(NewMemoryStore())

	tok, err := issuer.Issue(ctx, IssueRequest{
		UserID:    "user_1",
		ContentID: "c1",
		Level:     catalog.LevelPremium,
		TTL:       time.Hour,
	})
	require.NoError(t, err)
	assert.Equal(t, "c1", tok.ContentID)
	assert.True(t, tok.IsValid())

	v, err := issuer.Validate(ctx, tok.Token)
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.Equal(t, ReasonOK, v.Reason)
	assert.Equal(t, catalog.LevelPremium, v.Token.Level)
}

func TestIssuer_DefaultTTL(t *testing.T) {
	ctx := context.Background()
	issuer := NewIssuer(NewMemoryStore())

	tok, err := issuer.Issue(ctx, IssueRequest{UserID: "u", ContentID: "c", Level: catalog.LevelPublic})
	require.NoError(t, err)
	assert.InDelta(t, DefaultTTL.Hours(), tok.ExpiresAt.Sub(tok.GrantedAt).Hours(), 0.01)
}

func TestIssuer_Validate_NotFound(t *testing.T) {
	issuer := NewIssuer(NewMemoryStore())
	v, err := issuer.Validate(context.Background(), "tok_missing")
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Equal(t, ReasonNotFound, v.Reason)
	assert.Nil(t, v.Token)
}

func TestIssuer_Validate_Expired(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	issuer := NewIssuer(store)

	expired := &Token{
		Token:     NewTokenString(),
		UserID:    "u",
		ContentID: "c",
		Level:     catalog.LevelPublic,
		GrantedAt: time.Now().Add(-2 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, store.Create(ctx, expired))

	v, err := issuer.Validate(ctx, expired.Token)
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Equal(t, ReasonExpired, v.Reason)
	require.NotNil(t, v.Token)
}

func TestIssuer_SingleUseToken(t *testing.T) {
	ctx := context.Background()
	issuer := NewIssuer(NewMemoryStore())

	tok, err := issuer.Issue(ctx, IssueRequest{
		UserID:    "u",
		ContentID: "c",
		Level:     catalog.LevelPremium,
		TTL:       time.Hour,
		MaxUses:   1,
	})
	require.NoError(t, err)

	// First validate+redeem succeeds.
	v, err := issuer.Validate(ctx, tok.Token)
	require.NoError(t, err)
	assert.True(t, v.Valid)

	used, err := issuer.MarkUsed(ctx, tok.Token)
	require.NoError(t, err)
	assert.True(t, used.Used)
	assert.Equal(t, 1, used.UsageCount)
	assert.NotNil(t, used.UsedAt)

	// Second validate reports usage_exceeded.
	v, err = issuer.Validate(ctx, tok.Token)
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Equal(t, ReasonUsageExceeded, v.Reason)

	_, err = issuer.MarkUsed(ctx, tok.Token)
	assert.ErrorIs(t, err, ErrUsageExceeded)
}

func TestMarkUsed_ConcurrentSingleRedeem(t *testing.T) {
	ctx := context.Background()
	issuer := NewIssuer(NewMemoryStore())

	tok, err := issuer.Issue(ctx, IssueRequest{
		UserID:    "u",
		ContentID: "c",
		Level:     catalog.LevelPremium,
		TTL:       time.Hour,
		MaxUses:   1,
	})
	require.NoError(t, err)

	const attempts = 32
	var wg sync.WaitGroup
	successes := make(chan struct{}, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := issuer.MarkUsed(ctx, tok.Token); err == nil {
				successes <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(successes)

	count := 0
	for range successes {
		count++
	}
	assert.Equal(t, 1, count, "exactly one concurrent redemption may succeed")
}

func TestMarkUsed_NotFound(t *testing.T) {
	issuer := NewIssuer(NewMemoryStore())
	_, err := issuer.MarkUsed(context.Background(), "tok_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ListByUser(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for _, uid := range []string{"a", "a", "b"} {
		require.NoError(t, store.Create(ctx, &Token{
			Token:     NewTokenString(),
			UserID:    uid,
			ContentID: "c",
			Level:     catalog.LevelPublic,
			ExpiresAt: time.Now().Add(time.Hour),
		}))
	}

	tokens, err := store.ListByUser(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, tokens, 2)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
