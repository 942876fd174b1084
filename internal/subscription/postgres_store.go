package subscription

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/mbd888/pressgate/internal/catalog"
)

// PostgresStore persists subscriptions in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL-backed subscription store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the subscriptions table if it does not exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS subscriptions (
			user_id                 VARCHAR(128) PRIMARY KEY,
			tier                    VARCHAR(20) NOT NULL,
			plan_id                 VARCHAR(64) NOT NULL,
			status                  VARCHAR(20) NOT NULL,
			start_date              TIMESTAMPTZ NOT NULL,
			end_date                TIMESTAMPTZ,
			renewal_date            TIMESTAMPTZ,
			cancelled_at            TIMESTAMPTZ,
			content_accessed_count  INTEGER NOT NULL DEFAULT 0,
			last_access_date        TIMESTAMPTZ,
			payment_method          VARCHAR(128),
			auto_renew              BOOLEAN NOT NULL DEFAULT FALSE,
			created_at              TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at              TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_subscriptions_status ON subscriptions(status);
		CREATE INDEX IF NOT EXISTS idx_subscriptions_tier ON subscriptions(tier);
	`)
	return err
}

const subscriptionColumns = `user_id, tier, plan_id, status, start_date, end_date, renewal_date,
	cancelled_at, content_accessed_count, last_access_date, payment_method, auto_renew,
	created_at, updated_at`

func (p *PostgresStore) Create(ctx context.Context, s *Subscription) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO subscriptions (`+subscriptionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		s.UserID, string(s.Tier), s.PlanID, string(s.Status), s.StartDate, s.EndDate,
		s.RenewalDate, s.CancelledAt, s.ContentAccessedCount, s.LastAccessDate,
		nullString(s.PaymentMethod), s.AutoRenew, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrAlreadySubscribed
		}
		return err
	}
	return nil
}

func (p *PostgresStore) Get(ctx context.Context, userID string) (*Subscription, error) {
	return p.scan(p.db.QueryRowContext(ctx, `
		SELECT `+subscriptionColumns+` FROM subscriptions WHERE user_id = $1`, userID))
}

func (p *PostgresStore) Update(ctx context.Context, s *Subscription) error {
	result, err := p.db.ExecContext(ctx, `
		UPDATE subscriptions SET tier = $1, plan_id = $2, status = $3, start_date = $4,
			end_date = $5, renewal_date = $6, cancelled_at = $7, content_accessed_count = $8,
			last_access_date = $9, payment_method = $10, auto_renew = $11, updated_at = $12
		WHERE user_id = $13`,
		string(s.Tier), s.PlanID, string(s.Status), s.StartDate, s.EndDate, s.RenewalDate,
		s.CancelledAt, s.ContentAccessedCount, s.LastAccessDate, nullString(s.PaymentMethod),
		s.AutoRenew, s.UpdatedAt, s.UserID,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStore) List(ctx context.Context) ([]*Subscription, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+subscriptionColumns+` FROM subscriptions ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var subs []*Subscription
	for rows.Next() {
		s, err := p.scan(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (p *PostgresStore) scan(row rowScanner) (*Subscription, error) {
	var (
		s             Subscription
		tier, status  string
		paymentMethod sql.NullString
	)
	err := row.Scan(
		&s.UserID, &tier, &s.PlanID, &status, &s.StartDate, &s.EndDate, &s.RenewalDate,
		&s.CancelledAt, &s.ContentAccessedCount, &s.LastAccessDate, &paymentMethod,
		&s.AutoRenew, &s.CreatedAt, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s.Tier = catalog.Tier(tier)
	s.Status = Status(status)
	s.PaymentMethod = paymentMethod.String
	return &s, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ Store = (*PostgresStore)(nil)
