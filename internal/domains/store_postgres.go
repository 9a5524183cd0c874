package domains

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

// PostgresStore persists registered domains in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed domain store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the domains table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS domains (
			repo_id                 TEXT NOT NULL UNIQUE,
			name                    TEXT PRIMARY KEY,
			tld                     TEXT NOT NULL,
			registrar_id            TEXT NOT NULL,
			current_bulk_token      TEXT,
			autorenew_recurrence_id BIGINT NOT NULL,
			expiration_time         TIMESTAMPTZ NOT NULL,
			created_at              TIMESTAMPTZ NOT NULL,
			updated_at              TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("migrate domains: %w", err)
	}
	return nil
}

const domainColumns = `
	repo_id, name, tld, registrar_id, current_bulk_token,
	autorenew_recurrence_id, expiration_time, created_at, updated_at
`

func (s *PostgresStore) Get(ctx context.Context, name domain.DomainName) (*Domain, error) {
	q := tx.QuerierFrom(ctx, s.db)
	row := q.QueryRowContext(ctx,
		`SELECT `+domainColumns+` FROM domains WHERE name = $1`, name.String())

	d, err := scanDomain(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("domain %q: %w", name, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("get domain: %w", err)
	}
	return d, nil
}

func (s *PostgresStore) Put(ctx context.Context, d *Domain) error {
	if d == nil {
		return fmt.Errorf("domain is required")
	}
	if err := d.Validate(); err != nil {
		return err
	}

	var bulkToken sql.NullString
	if d.CurrentBulkToken != nil {
		bulkToken = sql.NullString{String: *d.CurrentBulkToken, Valid: true}
	}

	q := tx.QuerierFrom(ctx, s.db)
	_, err := q.ExecContext(ctx, `
		INSERT INTO domains (`+domainColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (name) DO UPDATE SET
			registrar_id            = EXCLUDED.registrar_id,
			current_bulk_token      = EXCLUDED.current_bulk_token,
			autorenew_recurrence_id = EXCLUDED.autorenew_recurrence_id,
			expiration_time         = EXCLUDED.expiration_time,
			updated_at              = EXCLUDED.updated_at
	`,
		d.RepoID,
		d.Name.String(),
		d.TLD,
		d.RegistrarID.String(),
		bulkToken,
		d.AutorenewRecurrenceID,
		d.ExpirationTime,
		d.CreatedAt,
		d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("put domain: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDomain(row rowScanner) (*Domain, error) {
	var (
		d         Domain
		name      string
		registrar string
		bulkToken sql.NullString
		expires   time.Time
		createdAt time.Time
		updatedAt time.Time
	)
	err := row.Scan(&d.RepoID, &name, &d.TLD, &registrar, &bulkToken,
		&d.AutorenewRecurrenceID, &expires, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	d.Name = domain.DomainName(name)
	d.RegistrarID = domain.RegistrarID(registrar)
	if bulkToken.Valid {
		d.CurrentBulkToken = &bulkToken.String
	}
	d.ExpirationTime = expires
	d.CreatedAt = createdAt
	d.UpdatedAt = updatedAt
	return &d, nil
}
