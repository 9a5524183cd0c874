package tld

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"domreg/pkg/domain"
	"domreg/pkg/platform/sentinel"
	"domreg/pkg/platform/tx"
)

// PostgresStore persists TLD configuration in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed TLD store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the tlds table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS tlds (
			name               TEXT PRIMARY KEY,
			default_token_keys TEXT[] NOT NULL DEFAULT '{}',
			premium_labels     TEXT[] NOT NULL DEFAULT '{}',
			currency           TEXT NOT NULL,
			create_cost        BIGINT NOT NULL,
			renew_cost         BIGINT NOT NULL,
			created_at         TIMESTAMPTZ NOT NULL,
			updated_at         TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("migrate tlds: %w", err)
	}
	return nil
}

const tldColumns = `
	name, default_token_keys, premium_labels, currency, create_cost,
	renew_cost, created_at, updated_at
`

func (s *PostgresStore) Get(ctx context.Context, name string) (*Tld, error) {
	q := tx.QuerierFrom(ctx, s.db)
	row := q.QueryRowContext(ctx, `SELECT `+tldColumns+` FROM tlds WHERE name = $1`, name)

	t, err := scanTld(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("tld %q: %w", name, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("get tld: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) Put(ctx context.Context, t *Tld) error {
	if t == nil {
		return fmt.Errorf("tld is required")
	}
	if err := t.Validate(); err != nil {
		return err
	}

	q := tx.QuerierFrom(ctx, s.db)
	_, err := q.ExecContext(ctx, `
		INSERT INTO tlds (`+tldColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (name) DO UPDATE SET
			default_token_keys = EXCLUDED.default_token_keys,
			premium_labels     = EXCLUDED.premium_labels,
			currency           = EXCLUDED.currency,
			create_cost        = EXCLUDED.create_cost,
			renew_cost         = EXCLUDED.renew_cost,
			updated_at         = EXCLUDED.updated_at
	`,
		t.Name,
		pq.Array(t.DefaultTokenKeys),
		pq.Array(t.PremiumLabels),
		t.Currency,
		t.CreateCost.Amount,
		t.RenewCost.Amount,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("put tld: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*Tld, error) {
	q := tx.QuerierFrom(ctx, s.db)
	rows, err := q.QueryContext(ctx, `SELECT `+tldColumns+` FROM tlds ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tlds: %w", err)
	}
	defer rows.Close()

	var out []*Tld
	for rows.Next() {
		t, err := scanTld(rows)
		if err != nil {
			return nil, fmt.Errorf("list tlds: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tlds: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTld(row rowScanner) (*Tld, error) {
	var (
		t              Tld
		defaults       pq.StringArray
		premiums       pq.StringArray
		createCost     int64
		renewCost      int64
		createdAt      time.Time
		updatedAt      time.Time
	)
	err := row.Scan(&t.Name, &defaults, &premiums, &t.Currency,
		&createCost, &renewCost, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	t.DefaultTokenKeys = []string(defaults)
	t.PremiumLabels = []string(premiums)
	t.CreateCost = domain.NewMoney(t.Currency, createCost)
	t.RenewCost = domain.NewMoney(t.Currency, renewCost)
	t.CreatedAt = createdAt
	t.UpdatedAt = updatedAt
	return &t, nil
}
