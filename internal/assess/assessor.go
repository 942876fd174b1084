package assess

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/mbd888/pressgate/internal/catalog"
	"github.com/mbd888/pressgate/internal/logging"
)

// DefaultPayPerViewPrice applies when content has no cached assessment.
const DefaultPayPerViewPrice = 1.99

// verificationScores maps editorial verification levels to quality factors.
// Unrecognised levels score as single-sourced.
var verificationScores = map[string]float64{
	"triple-sourced": 9.5,
	"peer-reviewed":  9.0,
	"double-sourced": 7.5,
	"single-sourced": 6.0,
}

// Assessor scores content and caches results per content ID.
type Assessor struct {
	store        Store
	defaultPrice float64
}

// NewAssessor creates an assessor backed by a cache store.
func NewAssessor(store Store) *Assessor {
	return &Assessor{store: store, defaultPrice: DefaultPayPerViewPrice}
}

// WithDefaultPrice overrides the fallback pay-per-view price.
func (a *Assessor) WithDefaultPrice(price float64) *Assessor {
	if price > 0 {
		a.defaultPrice = price
	}
	return a
}

// Store exposes the cache for statistics aggregation.
func (a *Assessor) Store() Store { return a.store }

// Assess scores a content item against a publisher trust score (0–10) and
// caches the result. Recomputation replaces the cache entry wholesale.
func (a *Assessor) Assess(ctx context.Context, c *Content, publisherTrust float64) (*Assessment, error) {
	quality := a.qualityScore(c, publisherTrust)
	demand := a.demandScore(c)
	exclusivity := a.exclusivityScore(c, publisherTrust)

	freshnessDays := 0
	if c.PublishDate != nil {
		if d := int(time.Since(*c.PublishDate).Hours() / 24); d > 0 {
			freshnessDays = d
		}
	}

	overall := (quality + demand + exclusivity) / 3

	var (
		valueTier catalog.ValueTier
		level     catalog.Level
		price     float64
	)
	switch {
	case overall >= 8.5:
		valueTier, level, price = catalog.ValueExclusive, catalog.LevelEnterprise, 4.99
	case overall >= 7.0:
		valueTier, level, price = catalog.ValuePremium, catalog.LevelPremium, 2.99
	case overall >= 5.5:
		valueTier, level, price = catalog.ValueStandard, catalog.LevelRegistered, 0.99
	default:
		valueTier, level, price = catalog.ValueBasic, catalog.LevelPublic, 0
	}

	engagementRate := math.Min((quality+demand)/20, 0.95)
	views := int(1000 * (demand / 5) * (publisherTrust / 5))
	shares := int(float64(views) * engagementRate * 0.1)

	result := &Assessment{
		ContentID:               c.ContentID,
		ValueTier:               valueTier,
		QualityScore:            round2(quality),
		DemandScore:             round2(demand),
		ExclusivityScore:        round2(exclusivity),
		FreshnessDays:           freshnessDays,
		WordCount:               deriveWordCount(c),
		HasMultimedia:           c.HasMultimedia,
		IsInvestigative:         c.Type == TypeFeature,
		IsBreakingNews:          c.Type == TypeBreakingNews,
		PredictedViews:          views,
		PredictedShares:         shares,
		PredictedEngagementRate: round3(engagementRate),
		RecommendedLevel:        level,
		RecommendedPrice:        price,
		AssessedAt:              time.Now(),
	}

	if err := a.store.Put(ctx, result); err != nil {
		return nil, fmt.Errorf("cache assessment: %w", err)
	}

	assessmentsTotal.WithLabelValues(string(valueTier)).Inc()
	logging.L(ctx).Info("content assessed",
		"content_id", c.ContentID, "value_tier", valueTier, "recommended_level", level)
	return result, nil
}

// Cached returns the cached assessment for a content ID, or ErrNotAssessed.
func (a *Assessor) Cached(ctx context.Context, contentID string) (*Assessment, error) {
	return a.store.Get(ctx, contentID)
}

// PayPerViewPrice returns the recommended price for content, falling back to
// the default when no assessment is cached or the assessed price is zero.
func (a *Assessor) PayPerViewPrice(ctx context.Context, contentID string) float64 {
	assessment, err := a.store.Get(ctx, contentID)
	if err != nil || assessment.RecommendedPrice == 0 {
		return a.defaultPrice
	}
	return assessment.RecommendedPrice
}

// qualityScore averages publisher trust, a fact-check factor, and the
// verification-level factor.
func (a *Assessor) qualityScore(c *Content, publisherTrust float64) float64 {
	factCheck := 6.0
	if c.FactChecked {
		factCheck = 9.0
	}

	verification, ok := verificationScores[c.VerificationLevel]
	if !ok {
		verification = 6.0
	}

	return (publisherTrust + factCheck + verification) / 3
}

// demandScore starts at a base of 5 and adds content-type and engagement
// bonuses, capped at 10.
func (a *Assessor) demandScore(c *Content) float64 {
	score := 5.0
	switch c.Type {
	case TypeBreakingNews:
		score += 3.0
	case TypeFeature:
		score += 2.0
	case TypeOpinion:
		score += 1.0
	}
	if c.EngagementScore > 0 {
		score += math.Min(c.EngagementScore/5, 2.0)
	}
	return math.Min(score, 10.0)
}

// exclusivityScore starts at a base of 5 with bonuses for investigative
// forms and high-trust publishers, capped at 10.
func (a *Assessor) exclusivityScore(c *Content, publisherTrust float64) float64 {
	score := 5.0
	if c.Type == TypeFeature || c.Type == TypeInterview {
		score += 2.0
	}
	switch {
	case publisherTrust >= 9.0:
		score += 2.0
	case publisherTrust >= 8.0:
		score += 1.0
	}
	return math.Min(score, 10.0)
}
