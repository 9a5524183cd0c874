package billing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"domreg/pkg/domain"
	"domreg/pkg/platform/sentinel"
	"domreg/pkg/platform/tx"
)

// PostgresStore persists billing recurrences in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed recurrence store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the billing_recurrences table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS billing_recurrences (
			id               BIGSERIAL PRIMARY KEY,
			domain_repo_id   TEXT NOT NULL,
			price_behavior   TEXT NOT NULL,
			renewal_price    BIGINT,
			renewal_currency TEXT,
			created_at       TIMESTAMPTZ NOT NULL,
			closed_at        TIMESTAMPTZ
		)
	`)
	if err != nil {
		return fmt.Errorf("migrate billing_recurrences: %w", err)
	}
	return nil
}

const recurrenceColumns = `
	id, domain_repo_id, price_behavior, renewal_price, renewal_currency,
	created_at, closed_at
`

func (s *PostgresStore) Get(ctx context.Context, id int64) (*Recurrence, error) {
	q := tx.QuerierFrom(ctx, s.db)
	row := q.QueryRowContext(ctx,
		`SELECT `+recurrenceColumns+` FROM billing_recurrences WHERE id = $1`, id)

	r, err := scanRecurrence(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("recurrence %d: %w", id, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("get recurrence: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) Create(ctx context.Context, r *Recurrence) (*Recurrence, error) {
	if r == nil {
		return nil, fmt.Errorf("recurrence is required")
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return s.insert(ctx, r)
}

func (s *PostgresStore) Supersede(ctx context.Context, oldID int64, replacement *Recurrence, now time.Time) (*Recurrence, error) {
	if replacement == nil {
		return nil, fmt.Errorf("replacement recurrence is required")
	}
	if err := replacement.Validate(); err != nil {
		return nil, err
	}

	q := tx.QuerierFrom(ctx, s.db)
	res, err := q.ExecContext(ctx, `
		UPDATE billing_recurrences SET closed_at = $2
		WHERE id = $1 AND closed_at IS NULL
	`, oldID, now)
	if err != nil {
		return nil, fmt.Errorf("close recurrence: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("close recurrence: %w", err)
	}
	if affected == 0 {
		// Distinguish missing from already closed.
		if _, err := s.Get(ctx, oldID); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("recurrence %d: %w", oldID, sentinel.ErrSuperseded)
	}

	return s.insert(ctx, replacement)
}

func (s *PostgresStore) insert(ctx context.Context, r *Recurrence) (*Recurrence, error) {
	var price sql.NullInt64
	var currency sql.NullString
	if r.RenewalPrice != nil {
		price = sql.NullInt64{Int64: r.RenewalPrice.Amount, Valid: true}
		currency = sql.NullString{String: r.RenewalPrice.Currency, Valid: true}
	}

	q := tx.QuerierFrom(ctx, s.db)
	stored := r.Clone()
	err := q.QueryRowContext(ctx, `
		INSERT INTO billing_recurrences
			(domain_repo_id, price_behavior, renewal_price, renewal_currency, created_at, closed_at)
		VALUES ($1, $2, $3, $4, $5, NULL)
		RETURNING id
	`,
		r.DomainRepoID,
		string(r.PriceBehavior),
		price,
		currency,
		r.CreatedAt,
	).Scan(&stored.ID)
	if err != nil {
		return nil, fmt.Errorf("create recurrence: %w", err)
	}
	return &stored, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecurrence(row rowScanner) (*Recurrence, error) {
	var (
		r        Recurrence
		behavior string
		price    sql.NullInt64
		currency sql.NullString
		closedAt sql.NullTime
	)
	err := row.Scan(&r.ID, &r.DomainRepoID, &behavior, &price, &currency,
		&r.CreatedAt, &closedAt)
	if err != nil {
		return nil, err
	}
	r.PriceBehavior = RenewalPriceBehavior(behavior)
	if price.Valid {
		p := domain.NewMoney(currency.String, price.Int64)
		r.RenewalPrice = &p
	}
	if closedAt.Valid {
		t := closedAt.Time
		r.ClosedAt = &t
	}
	return &r, nil
}
