package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"domreg/internal/token/models"
	"domreg/pkg/domain"
	"domreg/pkg/platform/sentinel"
	"domreg/pkg/platform/tx"
)

// PostgresStore persists allocation tokens in PostgreSQL. This store is pure
// I/O; validation policy lives in the token service.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed token store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the allocation_tokens table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS allocation_tokens (
			token                 TEXT PRIMARY KEY,
			token_type            TEXT NOT NULL,
			behavior              TEXT NOT NULL,
			discount_fraction     DOUBLE PRECISION NOT NULL DEFAULT 0,
			discount_price        BIGINT,
			discount_currency     TEXT,
			discount_premiums     BOOLEAN NOT NULL DEFAULT FALSE,
			allowed_commands      TEXT[] NOT NULL DEFAULT '{}',
			allowed_tlds          TEXT[] NOT NULL DEFAULT '{}',
			allowed_registrar_ids TEXT[] NOT NULL DEFAULT '{}',
			domain_name           TEXT,
			status_schedule       JSONB NOT NULL,
			redemption_repo_id    TEXT,
			redemption_history_id BIGINT,
			created_at            TIMESTAMPTZ NOT NULL,
			updated_at            TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("migrate allocation_tokens: %w", err)
	}
	return nil
}

const tokenColumns = `
	token, token_type, behavior, discount_fraction, discount_price,
	discount_currency, discount_premiums, allowed_commands, allowed_tlds,
	allowed_registrar_ids, domain_name, status_schedule,
	redemption_repo_id, redemption_history_id, created_at, updated_at
`

func (s *PostgresStore) Get(ctx context.Context, key string) (*models.Token, error) {
	q := tx.QuerierFrom(ctx, s.db)
	row := q.QueryRowContext(ctx,
		`SELECT `+tokenColumns+` FROM allocation_tokens WHERE token = $1`, key)

	tok, err := scanToken(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("token %q: %w", key, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("get token: %w", err)
	}
	return tok, nil
}

func (s *PostgresStore) GetAll(ctx context.Context, keys []string) (map[string]*models.Token, error) {
	if len(keys) == 0 {
		return map[string]*models.Token{}, nil
	}
	q := tx.QuerierFrom(ctx, s.db)
	rows, err := q.QueryContext(ctx,
		`SELECT `+tokenColumns+` FROM allocation_tokens WHERE token = ANY($1)`,
		pq.Array(keys))
	if err != nil {
		return nil, fmt.Errorf("get all tokens: %w", err)
	}
	defer rows.Close()

	out := make(map[string]*models.Token, len(keys))
	for rows.Next() {
		tok, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("get all tokens: %w", err)
		}
		out[tok.Key] = tok
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get all tokens: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Put(ctx context.Context, token *models.Token) error {
	if token == nil {
		return fmt.Errorf("token is required")
	}
	if err := token.Validate(); err != nil {
		return err
	}

	schedule, err := json.Marshal(token.StatusSchedule.Transitions())
	if err != nil {
		return fmt.Errorf("marshal status schedule: %w", err)
	}

	var discountPrice sql.NullInt64
	var discountCurrency sql.NullString
	if token.DiscountPrice != nil {
		discountPrice = sql.NullInt64{Int64: token.DiscountPrice.Amount, Valid: true}
		discountCurrency = sql.NullString{String: token.DiscountPrice.Currency, Valid: true}
	}
	var redemptionRepoID sql.NullString
	var redemptionHistoryID sql.NullInt64
	if token.RedemptionHistoryID != nil {
		redemptionRepoID = sql.NullString{String: token.RedemptionHistoryID.RepoID, Valid: true}
		redemptionHistoryID = sql.NullInt64{Int64: token.RedemptionHistoryID.ID, Valid: true}
	}
	var domainName sql.NullString
	if token.DomainName != "" {
		domainName = sql.NullString{String: token.DomainName, Valid: true}
	}

	commands := make([]string, len(token.AllowedCommands))
	for i, c := range token.AllowedCommands {
		commands[i] = c.String()
	}
	registrars := make([]string, len(token.AllowedRegistrarIDs))
	for i, r := range token.AllowedRegistrarIDs {
		registrars[i] = r.String()
	}

	q := tx.QuerierFrom(ctx, s.db)
	_, err = q.ExecContext(ctx, `
		INSERT INTO allocation_tokens (`+tokenColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (token) DO UPDATE SET
			token_type            = EXCLUDED.token_type,
			behavior              = EXCLUDED.behavior,
			discount_fraction     = EXCLUDED.discount_fraction,
			discount_price        = EXCLUDED.discount_price,
			discount_currency     = EXCLUDED.discount_currency,
			discount_premiums     = EXCLUDED.discount_premiums,
			allowed_commands      = EXCLUDED.allowed_commands,
			allowed_tlds          = EXCLUDED.allowed_tlds,
			allowed_registrar_ids = EXCLUDED.allowed_registrar_ids,
			domain_name           = EXCLUDED.domain_name,
			status_schedule       = EXCLUDED.status_schedule,
			redemption_repo_id    = EXCLUDED.redemption_repo_id,
			redemption_history_id = EXCLUDED.redemption_history_id,
			updated_at            = EXCLUDED.updated_at
	`,
		token.Key,
		string(token.Type),
		string(token.Behavior),
		token.DiscountFraction,
		discountPrice,
		discountCurrency,
		token.DiscountPremiums,
		pq.Array(commands),
		pq.Array(token.AllowedTLDs),
		pq.Array(registrars),
		domainName,
		schedule,
		redemptionRepoID,
		redemptionHistoryID,
		token.CreatedAt,
		token.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("put token: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanToken(row rowScanner) (*models.Token, error) {
	var (
		tok                 models.Token
		typ, behavior       string
		discountPrice       sql.NullInt64
		discountCurrency    sql.NullString
		commands            pq.StringArray
		tlds                pq.StringArray
		registrars          pq.StringArray
		domainName          sql.NullString
		scheduleJSON        []byte
		redemptionRepoID    sql.NullString
		redemptionHistoryID sql.NullInt64
		createdAt           time.Time
		updatedAt           time.Time
	)
	err := row.Scan(
		&tok.Key, &typ, &behavior, &tok.DiscountFraction, &discountPrice,
		&discountCurrency, &tok.DiscountPremiums, &commands, &tlds,
		&registrars, &domainName, &scheduleJSON,
		&redemptionRepoID, &redemptionHistoryID, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	tok.Type = models.TokenType(typ)
	tok.Behavior = models.TokenBehavior(behavior)
	tok.CreatedAt = createdAt
	tok.UpdatedAt = updatedAt
	if discountPrice.Valid {
		price := domain.NewMoney(discountCurrency.String, discountPrice.Int64)
		tok.DiscountPrice = &price
	}
	if domainName.Valid {
		tok.DomainName = domainName.String
	}
	if redemptionRepoID.Valid {
		id := domain.NewHistoryEntryID(redemptionRepoID.String, redemptionHistoryID.Int64)
		tok.RedemptionHistoryID = &id
	}

	tok.AllowedCommands = make([]domain.CommandKind, len(commands))
	for i, c := range commands {
		tok.AllowedCommands[i] = domain.CommandKind(c)
	}
	tok.AllowedTLDs = []string(tlds)
	tok.AllowedRegistrarIDs = make([]domain.RegistrarID, len(registrars))
	for i, r := range registrars {
		tok.AllowedRegistrarIDs[i] = domain.RegistrarID(r)
	}

	var transitions []models.StatusTransition
	if err := json.Unmarshal(scheduleJSON, &transitions); err != nil {
		return nil, fmt.Errorf("unmarshal status schedule: %w", err)
	}
	schedule, err := models.NewStatusSchedule(transitions...)
	if err != nil {
		return nil, fmt.Errorf("rebuild status schedule: %w", err)
	}
	tok.StatusSchedule = schedule
	return &tok, nil
}
