package assess

import (
	"context"
	"database/sql"

	"github.com/mbd888/pressgate/internal/catalog"
)

// PostgresStore persists assessments in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL-backed assessment cache.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the content_assessments table if it does not exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS content_assessments (
			content_id                 VARCHAR(128) PRIMARY KEY,
			value_tier                 VARCHAR(20) NOT NULL,
			quality_score              NUMERIC(4,2) NOT NULL,
			demand_score               NUMERIC(4,2) NOT NULL,
			exclusivity_score          NUMERIC(4,2) NOT NULL,
			freshness_days             INTEGER NOT NULL DEFAULT 0,
			word_count                 INTEGER NOT NULL DEFAULT 0,
			has_multimedia             BOOLEAN NOT NULL DEFAULT FALSE,
			is_investigative           BOOLEAN NOT NULL DEFAULT FALSE,
			is_breaking_news           BOOLEAN NOT NULL DEFAULT FALSE,
			predicted_views            INTEGER NOT NULL DEFAULT 0,
			predicted_shares           INTEGER NOT NULL DEFAULT 0,
			predicted_engagement_rate  NUMERIC(5,4) NOT NULL DEFAULT 0,
			recommended_level          VARCHAR(20) NOT NULL,
			recommended_price          NUMERIC(10,2) NOT NULL DEFAULT 0,
			assessed_at                TIMESTAMPTZ NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_content_assessments_tier ON content_assessments(value_tier);
	`)
	return err
}

const assessmentColumns = `content_id, value_tier, quality_score, demand_score, exclusivity_score,
	freshness_days, word_count, has_multimedia, is_investigative, is_breaking_news,
	predicted_views, predicted_shares, predicted_engagement_rate,
	recommended_level, recommended_price, assessed_at`

func (p *PostgresStore) Put(ctx context.Context, a *Assessment) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO content_assessments (`+assessmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (content_id) DO UPDATE SET
			value_tier = EXCLUDED.value_tier,
			quality_score = EXCLUDED.quality_score,
			demand_score = EXCLUDED.demand_score,
			exclusivity_score = EXCLUDED.exclusivity_score,
			freshness_days = EXCLUDED.freshness_days,
			word_count = EXCLUDED.word_count,
			has_multimedia = EXCLUDED.has_multimedia,
			is_investigative = EXCLUDED.is_investigative,
			is_breaking_news = EXCLUDED.is_breaking_news,
			predicted_views = EXCLUDED.predicted_views,
			predicted_shares = EXCLUDED.predicted_shares,
			predicted_engagement_rate = EXCLUDED.predicted_engagement_rate,
			recommended_level = EXCLUDED.recommended_level,
			recommended_price = EXCLUDED.recommended_price,
			assessed_at = EXCLUDED.assessed_at`,
		a.ContentID, string(a.ValueTier), a.QualityScore, a.DemandScore, a.ExclusivityScore,
		a.FreshnessDays, a.WordCount, a.HasMultimedia, a.IsInvestigative, a.IsBreakingNews,
		a.PredictedViews, a.PredictedShares, a.PredictedEngagementRate,
		string(a.RecommendedLevel), a.RecommendedPrice, a.AssessedAt,
	)
	return err
}

func (p *PostgresStore) Get(ctx context.Context, contentID string) (*Assessment, error) {
	var (
		a                Assessment
		valueTier, level string
	)
	err := p.db.QueryRowContext(ctx, `
		SELECT `+assessmentColumns+` FROM content_assessments WHERE content_id = $1`,
		contentID,
	).Scan(
		&a.ContentID, &valueTier, &a.QualityScore, &a.DemandScore, &a.ExclusivityScore,
		&a.FreshnessDays, &a.WordCount, &a.HasMultimedia, &a.IsInvestigative, &a.IsBreakingNews,
		&a.PredictedViews, &a.PredictedShares, &a.PredictedEngagementRate,
		&level, &a.RecommendedPrice, &a.AssessedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotAssessed
	}
	if err != nil {
		return nil, err
	}
	a.ValueTier = catalog.ValueTier(valueTier)
	a.RecommendedLevel = catalog.Level(level)
	return &a, nil
}

func (p *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM content_assessments`).Scan(&n)
	return n, err
}

var _ Store = (*PostgresStore)(nil)
