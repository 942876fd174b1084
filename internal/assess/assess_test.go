package assess

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbd888/pressgate/internal/catalog"
)

func TestQualityScore(t *testing.T) {
	a := NewAssessor(NewMemoryStore())

	cases := []struct {
		name    string
		content Content
		trust   float64
		want    float64
	}{
		{
			name:    "fact checked triple sourced",
			content: Content{FactChecked: true, VerificationLevel: "triple-sourced"},
			trust:   7.0,
			want:    (7.0 + 9.0 + 9.5) / 3,
		},
		{
			name:    "unknown verification level scores as single sourced",
			content: Content{VerificationLevel: "rumor"},
			trust:   6.0,
			want:    (6.0 + 6.0 + 6.0) / 3,
		},
		{
			name:    "peer reviewed without fact check",
			content: Content{VerificationLevel: "peer-reviewed"},
			trust:   8.0,
			want:    (8.0 + 6.0 + 9.0) / 3,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, a.qualityScore(&tc.content, tc.trust), 0.001)
		})
	}
}

func TestDemandScore(t *testing.T) {
	a := NewAssessor(NewMemoryStore())

	assert.InDelta(t, 8.0, a.demandScore(&Content{Type: TypeBreakingNews}), 0.001)
	assert.InDelta(t, 7.0, a.demandScore(&Content{Type: TypeFeature}), 0.001)
	assert.InDelta(t, 6.0, a.demandScore(&Content{Type: TypeOpinion}), 0.001)
	assert.InDelta(t, 5.0, a.demandScore(&Content{Type: TypeArticle}), 0.001)

	// Engagement contribution is capped at 2.
	assert.InDelta(t, 7.0, a.demandScore(&Content{Type: TypeArticle, EngagementScore: 10}), 0.001)

	// Total is capped at 10.
	assert.InDelta(t, 10.0, a.demandScore(&Content{Type: TypeBreakingNews, EngagementScore: 10}), 0.001)
}

func TestExclusivityScore(t *testing.T) {
	a := NewAssessor(NewMemoryStore())

	assert.InDelta(t, 5.0, a.exclusivityScore(&Content{Type: TypeArticle}, 7.0), 0.001)
	assert.InDelta(t, 7.0, a.exclusivityScore(&Content{Type: TypeInterview}, 7.0), 0.001)
	assert.InDelta(t, 6.0, a.exclusivityScore(&Content{Type: TypeArticle}, 8.5), 0.001)
	assert.InDelta(t, 9.0, a.exclusivityScore(&Content{Type: TypeFeature}, 9.5), 0.001)
}

func TestAssess_TierThresholds(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name      string
		content   Content
		trust     float64
		wantTier  catalog.ValueTier
		wantLevel catalog.Level
		wantPrice float64
	}{
		{
			name: "exclusive",
			content: Content{
				ContentID: "c_excl", Type: TypeBreakingNews,
				FactChecked: true, VerificationLevel: "triple-sourced",
				EngagementScore: 10,
			},
			trust:     9.5,
			wantTier:  catalog.ValueExclusive,
			wantLevel: catalog.LevelEnterprise,
			wantPrice: 4.99,
		},
		{
			name: "premium",
			content: Content{
				ContentID: "c_prem", Type: TypeFeature,
				FactChecked: true, VerificationLevel: "double-sourced",
			},
			trust:     8.0,
			wantTier:  catalog.ValuePremium,
			wantLevel: catalog.LevelPremium,
			wantPrice: 2.99,
		},
		{
			name: "standard",
			content: Content{
				ContentID: "c_std", Type: TypeOpinion,
				VerificationLevel: "single-sourced",
			},
			trust:     8.0,
			wantTier:  catalog.ValueStandard,
			wantLevel: catalog.LevelRegistered,
			wantPrice: 0.99,
		},
		{
			name: "basic",
			content: Content{
				ContentID: "c_basic", Type: TypeArticle,
				VerificationLevel: "single-sourced",
			},
			trust:     6.0,
			wantTier:  catalog.ValueBasic,
			wantLevel: catalog.LevelPublic,
			wantPrice: 0,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assessor := NewAssessor(NewMemoryStore())
			result, err := assessor.Assess(ctx, &tc.content, tc.trust)
			require.NoError(t, err)
			assert.Equal(t, tc.wantTier, result.ValueTier)
			assert.Equal(t, tc.wantLevel, result.RecommendedLevel)
			assert.Equal(t, tc.wantPrice, result.RecommendedPrice)
		})
	}
}

func TestAssess_Predictions(t *testing.T) {
	ctx := context.Background()
	assessor := NewAssessor(NewMemoryStore())

	// Plain article, trust 5: demand 5, so views = 1000 * 1 * 1.
	result, err := assessor.Assess(ctx, &Content{ContentID: "c1", Type: TypeArticle, VerificationLevel: "single-sourced"}, 5.0)
	require.NoError(t, err)
	assert.Equal(t, 1000, result.PredictedViews)
	assert.LessOrEqual(t, result.PredictedEngagementRate, 0.95)
	assert.Equal(t, int(float64(result.PredictedViews)*result.PredictedEngagementRate*0.1), result.PredictedShares)
}

func TestAssess_FreshnessAndWordCount(t *testing.T) {
	ctx := context.Background()
	assessor := NewAssessor(NewMemoryStore())

	published := time.Now().Add(-10 * 24 * time.Hour)
	result, err := assessor.Assess(ctx, &Content{
		ContentID:   "c1",
		Type:        TypeArticle,
		Text:        "one two three four five",
		PublishDate: &published,
	}, 7.0)
	require.NoError(t, err)
	assert.Equal(t, 10, result.FreshnessDays)
	assert.Equal(t, 5, result.WordCount)

	// Explicit word count wins over derivation.
	result, err = assessor.Assess(ctx, &Content{ContentID: "c2", Text: "a b", WordCount: 900}, 7.0)
	require.NoError(t, err)
	assert.Equal(t, 900, result.WordCount)
}

func TestAssess_ContentFlags(t *testing.T) {
	ctx := context.Background()
	assessor := NewAssessor(NewMemoryStore())

	feature, err := assessor.Assess(ctx, &Content{ContentID: "f", Type: TypeFeature}, 7.0)
	require.NoError(t, err)
	assert.True(t, feature.IsInvestigative)
	assert.False(t, feature.IsBreakingNews)

	breaking, err := assessor.Assess(ctx, &Content{ContentID: "b", Type: TypeBreakingNews}, 7.0)
	require.NoError(t, err)
	assert.True(t, breaking.IsBreakingNews)
	assert.False(t, breaking.IsInvestigative)

	rich, err := assessor.Assess(ctx, &Content{ContentID: "m", Type: TypeArticle, HasMultimedia: true}, 7.0)
	require.NoError(t, err)
	assert.True(t, rich.HasMultimedia)
	assert.False(t, rich.IsInvestigative)
}

func TestMeanScore_Deterministic(t *testing.T) {
	a := &Assessment{QualityScore: 9.2, DemandScore: 8.5, ExclusivityScore: 9.0}
	assert.InDelta(t, 8.9, a.MeanScore(), 0.01)

	// Reproducible across calls.
	assert.Equal(t, a.MeanScore(), a.MeanScore())
}

func TestOverallScore_Weighted(t *testing.T) {
	a := &Assessment{
		QualityScore:            9.2,
		DemandScore:             8.5,
		ExclusivityScore:        9.0,
		FreshnessDays:           0,
		PredictedEngagementRate: 0.9,
	}
	// .30*9.2 + .25*8.5 + .20*9.0 + .15*10 + .10*9 = 9.085.
	assert.InDelta(t, 9.085, a.OverallScore(), 0.006)

	// Freshness decays to zero after 30 days.
	a.FreshnessDays = 45
	assert.InDelta(t, 7.585, a.OverallScore(), 0.006)
}

func TestCachedAndPrice(t *testing.T) {
	ctx := context.Background()
	assessor := NewAssessor(NewMemoryStore())

	_, err := assessor.Cached(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotAssessed)
	assert.Equal(t, DefaultPayPerViewPrice, assessor.PayPerViewPrice(ctx, "missing"))

	_, err = assessor.Assess(ctx, &Content{
		ContentID: "c1", Type: TypeFeature,
		FactChecked: true, VerificationLevel: "double-sourced",
	}, 8.0)
	require.NoError(t, err)

	cached, err := assessor.Cached(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2.99, assessor.PayPerViewPrice(ctx, "c1"))
	assert.Equal(t, catalog.LevelPremium, cached.RecommendedLevel)

	// Basic content prices at the default, not zero.
	_, err = assessor.Assess(ctx, &Content{ContentID: "c_free", Type: TypeArticle}, 5.0)
	require.NoError(t, err)
	assert.Equal(t, DefaultPayPerViewPrice, assessor.PayPerViewPrice(ctx, "c_free"))
}

func TestMemoryStore_Count(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, store.Put(ctx, &Assessment{ContentID: "a"}))
	require.NoError(t, store.Put(ctx, &Assessment{ContentID: "b"}))
	require.NoError(t, store.Put(ctx, &Assessment{ContentID: "a"})) // replace

	n, _ = store.Count(ctx)
	assert.Equal(t, 2, n)
}
