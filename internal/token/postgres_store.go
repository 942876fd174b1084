package token

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"

	"github.com/mbd888/pressgate/internal/catalog"
)

// PostgresStore persists access tokens in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL-backed token store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the access_tokens table if it does not exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS access_tokens (
			token          VARCHAR(80) PRIMARY KEY,
			user_id        VARCHAR(128) NOT NULL,
			content_id     VARCHAR(128) NOT NULL,
			access_level   VARCHAR(20) NOT NULL,
			granted_at     TIMESTAMPTZ NOT NULL,
			expires_at     TIMESTAMPTZ NOT NULL,
			used           BOOLEAN NOT NULL DEFAULT FALSE,
			used_at        TIMESTAMPTZ,
			usage_count    INTEGER NOT NULL DEFAULT 0,
			max_uses       INTEGER NOT NULL DEFAULT 0,
			payment_token  VARCHAR(128),
			amount_paid    NUMERIC(10,2) NOT NULL DEFAULT 0,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_access_tokens_user ON access_tokens(user_id);
		CREATE INDEX IF NOT EXISTS idx_access_tokens_expires ON access_tokens(expires_at);
	`)
	return err
}

const tokenColumns = `token, user_id, content_id, access_level, granted_at, expires_at,
	used, used_at, usage_count, max_uses, payment_token, amount_paid, created_at`

func (p *PostgresStore) Create(ctx context.Context, t *Token) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO access_tokens (`+tokenColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		t.Token, t.UserID, t.ContentID, string(t.Level), t.GrantedAt, t.ExpiresAt,
		t.Used, t.UsedAt, t.UsageCount, t.MaxUses, nullString(t.PaymentToken),
		t.AmountPaid, t.CreatedAt,
	)
	return err
}

func (p *PostgresStore) Get(ctx context.Context, tokenStr string) (*Token, error) {
	return p.scan(p.db.QueryRowContext(ctx, `
		SELECT `+tokenColumns+` FROM access_tokens WHERE token = $1`, tokenStr))
}

// MarkUsed increments usage_count only while under the cap; the WHERE clause
// is the compare half of the compare-and-increment.
func (p *PostgresStore) MarkUsed(ctx context.Context, tokenStr string) (*Token, error) {
	row := p.db.QueryRowContext(ctx, `
		UPDATE access_tokens
		SET used = TRUE, used_at = NOW(), usage_count = usage_count + 1
		WHERE token = $1 AND (max_uses = 0 OR usage_count < max_uses)
		RETURNING `+tokenColumns, tokenStr)

	t, err := p.scan(row)
	if err == ErrNotFound {
		// Distinguish a missing token from an exhausted one.
		if _, getErr := p.Get(ctx, tokenStr); getErr == nil {
			return nil, ErrUsageExceeded
		}
		return nil, ErrNotFound
	}
	return t, err
}

func (p *PostgresStore) List(ctx context.Context) ([]*Token, error) {
	return p.query(ctx, `SELECT `+tokenColumns+` FROM access_tokens ORDER BY created_at`)
}

func (p *PostgresStore) ListByUser(ctx context.Context, userID string) ([]*Token, error) {
	return p.query(ctx, `
		SELECT `+tokenColumns+` FROM access_tokens WHERE user_id = $1 ORDER BY created_at`, userID)
}

func (p *PostgresStore) query(ctx context.Context, q string, args ...any) ([]*Token, error) {
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tokens []*Token
	for rows.Next() {
		t, err := p.scan(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (p *PostgresStore) scan(row rowScanner) (*Token, error) {
	var (
		t            Token
		level        string
		paymentToken sql.NullString
	)
	err := row.Scan(
		&t.Token, &t.UserID, &t.ContentID, &level, &t.GrantedAt, &t.ExpiresAt,
		&t.Used, &t.UsedAt, &t.UsageCount, &t.MaxUses, &paymentToken,
		&t.AmountPaid, &t.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	t.Level = catalog.Level(level)
	t.PaymentToken = paymentToken.String
	return &t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ Store = (*PostgresStore)(nil)
