package grant

import (
	"context"
	"database/sql"

	"github.com/mbd888/pressgate/internal/catalog"
)

// PostgresStore persists grants in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL-backed grant store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the temporary_grants table if it does not exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS temporary_grants (
			grant_id          VARCHAR(64) PRIMARY KEY,
			user_id           VARCHAR(128) NOT NULL,
			content_id        VARCHAR(128) NOT NULL,
			access_level      VARCHAR(20) NOT NULL,
			duration_seconds  INTEGER NOT NULL,
			payment_token     VARCHAR(128) NOT NULL,
			amount_paid       NUMERIC(10,2) NOT NULL,
			payment_verified  BOOLEAN NOT NULL DEFAULT FALSE,
			granted_at        TIMESTAMPTZ NOT NULL,
			expires_at        TIMESTAMPTZ NOT NULL,
			accessed          BOOLEAN NOT NULL DEFAULT FALSE,
			access_count      INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_temporary_grants_user ON temporary_grants(user_id);
		CREATE INDEX IF NOT EXISTS idx_temporary_grants_expires ON temporary_grants(expires_at);
	`)
	return err
}

const grantColumns = `grant_id, user_id, content_id, access_level, duration_seconds,
	payment_token, amount_paid, payment_verified, granted_at, expires_at, accessed, access_count`

func (p *PostgresStore) Create(ctx context.Context, g *Grant) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO temporary_grants (`+grantColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		g.GrantID, g.UserID, g.ContentID, string(g.Level), g.DurationSeconds,
		g.PaymentToken, g.AmountPaid, g.PaymentVerified, g.GrantedAt, g.ExpiresAt,
		g.Accessed, g.AccessCount,
	)
	return err
}

func (p *PostgresStore) Get(ctx context.Context, grantID string) (*Grant, error) {
	return p.scan(p.db.QueryRowContext(ctx, `
		SELECT `+grantColumns+` FROM temporary_grants WHERE grant_id = $1`, grantID))
}

func (p *PostgresStore) List(ctx context.Context) ([]*Grant, error) {
	return p.query(ctx, `SELECT `+grantColumns+` FROM temporary_grants ORDER BY granted_at`)
}

func (p *PostgresStore) ListByUser(ctx context.Context, userID string) ([]*Grant, error) {
	return p.query(ctx, `
		SELECT `+grantColumns+` FROM temporary_grants WHERE user_id = $1 ORDER BY granted_at`, userID)
}

func (p *PostgresStore) query(ctx context.Context, q string, args ...any) ([]*Grant, error) {
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var grants []*Grant
	for rows.Next() {
		g, err := p.scan(rows)
		if err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (p *PostgresStore) scan(row rowScanner) (*Grant, error) {
	var (
		g     Grant
		level string
	)
	err := row.Scan(
		&g.GrantID, &g.UserID, &g.ContentID, &level, &g.DurationSeconds,
		&g.PaymentToken, &g.AmountPaid, &g.PaymentVerified, &g.GrantedAt, &g.ExpiresAt,
		&g.Accessed, &g.AccessCount,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	g.Level = catalog.Level(level)
	return &g, nil
}

var _ Store = (*PostgresStore)(nil)
