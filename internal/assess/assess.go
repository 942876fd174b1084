// Package assess scores content quality, demand, and exclusivity to
// recommend an access level and a pay-per-view price.
//
// Scoring is a pure function over the content item plus a publisher trust
// score supplied by an external reputation service; results are cached per
// content ID and recomputed only when a caller asks.
package assess

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/mbd888/pressgate/internal/catalog"
)

// Errors
var (
	ErrNotAssessed = errors.New("assess: content has not been assessed")
)

// ContentType categorises the editorial form of a content item.
type ContentType string

const (
	TypeArticle      ContentType = "article"
	TypeBlogPost     ContentType = "blog_post"
	TypeNewsReport   ContentType = "news_report"
	TypeOpinion      ContentType = "opinion"
	TypeReview       ContentType = "review"
	TypeInterview    ContentType = "interview"
	TypeFeature      ContentType = "feature"
	TypeBreakingNews ContentType = "breaking_news"
)

// Content is the slice of a content item the assessor consumes.
type Content struct {
	ContentID   string      `json:"contentId"`
	Type        ContentType `json:"contentType"`
	Text        string      `json:"text,omitempty"`
	PublishDate *time.Time  `json:"publishDate,omitempty"`

	// Editorial signals.
	FactChecked       bool   `json:"factChecked"`
	HasMultimedia     bool   `json:"hasMultimedia"`
	VerificationLevel string `json:"verificationLevel,omitempty"` // e.g. "triple-sourced"

	// Engagement metrics, when known.
	EngagementScore float64 `json:"engagementScore,omitempty"` // 0–10
	WordCount       int     `json:"wordCount,omitempty"`       // 0 = derive from Text
}

// Assessment is the cached result of scoring one content item.
type Assessment struct {
	ContentID string            `json:"contentId"`
	ValueTier catalog.ValueTier `json:"valueTier"`

	QualityScore     float64 `json:"qualityScore"`     // 0–10
	DemandScore      float64 `json:"demandScore"`      // 0–10
	ExclusivityScore float64 `json:"exclusivityScore"` // 0–10

	FreshnessDays   int  `json:"freshnessDays"`
	WordCount       int  `json:"wordCount"`
	HasMultimedia   bool `json:"hasMultimedia"`
	IsInvestigative bool `json:"isInvestigative"`
	IsBreakingNews  bool `json:"isBreakingNews"`

	PredictedViews          int     `json:"predictedViews"`
	PredictedShares         int     `json:"predictedShares"`
	PredictedEngagementRate float64 `json:"predictedEngagementRate"` // 0–1

	RecommendedLevel catalog.Level `json:"recommendedAccessLevel"`
	RecommendedPrice float64       `json:"recommendedPrice"`

	AssessedAt time.Time `json:"assessedAt"`
}

// OverallScore is the weighted 0–10 value score: quality .30, demand .25,
// exclusivity .20, freshness .15, engagement .10. Freshness decays from 10
// to 0 over 30 days.
func (a *Assessment) OverallScore() float64 {
	freshness := math.Max(0, 10-float64(a.FreshnessDays)/3)
	engagement := a.PredictedEngagementRate * 10

	score := a.QualityScore*0.30 +
		a.DemandScore*0.25 +
		a.ExclusivityScore*0.20 +
		freshness*0.15 +
		engagement*0.10
	return round2(score)
}

// MeanScore is the unweighted mean of quality, demand, and exclusivity.
// Tier and price thresholds are defined over this value.
func (a *Assessment) MeanScore() float64 {
	return (a.QualityScore + a.DemandScore + a.ExclusivityScore) / 3
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

func deriveWordCount(c *Content) int {
	if c.WordCount > 0 {
		return c.WordCount
	}
	if strings.TrimSpace(c.Text) == "" {
		return 0
	}
	return len(strings.Fields(c.Text))
}
