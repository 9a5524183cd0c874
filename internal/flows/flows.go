// Package flows implements the domain command flows (create, renew,
// transfer) that consume allocation tokens. Each flow resolves the
// applicable token, enforces bulk pricing policy, prices the command, and
// commits the domain mutation together with the token redemption in a
// single transaction.
package flows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"domreg/internal/audit"
	"domreg/internal/billing"
	"domreg/internal/bulkpricing"
	"domreg/internal/domains"
	tldstore "domreg/internal/tld"
	tokensvc "domreg/internal/token/service"
	"domreg/pkg/domain"
	"domreg/pkg/epperr"
	"domreg/pkg/platform/sentinel"
	"domreg/pkg/platform/tx"
)

// Command-level failures outside token validation.
var (
	ErrUnknownTLD          = epperr.New(epperr.CodeParameterPolicy, "The TLD is not supported")
	ErrDomainExists        = epperr.New(epperr.CodeObjectExists, "The domain is already registered")
	ErrDomainNotFound      = epperr.New(epperr.CodeObjectNotFound, "The domain does not exist")
	ErrNotSponsoringClient = epperr.New(epperr.CodeAuthorizationError, "Registrar does not sponsor domain")
	ErrAlreadySponsored    = epperr.New(epperr.CodeParameterPolicy, "Domain already sponsored by you")
	ErrInvalidPeriod       = epperr.New(epperr.CodeParameterPolicy, "Period must be 1 to 10 years")
)

// Result reports what a command flow did.
type Result struct {
	Domain *domains.Domain
	// Price is the total charged for the command after token discounts.
	Price domain.Money
	// AppliedToken is the key of the token that applied, empty when none.
	AppliedToken string
	// Redeemed reports whether a single-use token was consumed.
	Redeemed bool
	// BulkPricingRemoved reports whether a bulk pricing arrangement was
	// detached.
	BulkPricingRemoved bool
	HistoryID          domain.HistoryEntryID
}

// Flows executes domain commands.
type Flows struct {
	runner      tx.Runner
	domains     domains.Store
	tlds        tldstore.Store
	recurrences billing.Store
	tokens      *tokensvc.Service
	bulk        *bulkpricing.Coordinator
	emitter     *audit.Emitter
	logger      *slog.Logger
	tracer      trace.Tracer
}

// Option configures Flows.
type Option func(*Flows)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Flows) {
		f.logger = logger
	}
}

// WithAuditEmitter enables audit event emission.
func WithAuditEmitter(emitter *audit.Emitter) Option {
	return func(f *Flows) {
		f.emitter = emitter
	}
}

// New constructs Flows.
func New(
	runner tx.Runner,
	domainStore domains.Store,
	tlds tldstore.Store,
	recurrences billing.Store,
	tokens *tokensvc.Service,
	bulk *bulkpricing.Coordinator,
	opts ...Option,
) *Flows {
	f := &Flows{
		runner:      runner,
		domains:     domainStore,
		tlds:        tlds,
		recurrences: recurrences,
		tokens:      tokens,
		bulk:        bulk,
		logger:      slog.Default(),
		tracer:      otel.Tracer("domreg/flows"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Flows) loadTLD(ctx context.Context, name domain.DomainName) (*tldstore.Tld, error) {
	t, err := f.tlds.Get(ctx, name.ParentTLD())
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, ErrUnknownTLD
		}
		return nil, fmt.Errorf("load tld %s: %w", name.ParentTLD(), err)
	}
	return t, nil
}

func validatePeriod(years int) error {
	if years < 1 || years > 10 {
		return ErrInvalidPeriod
	}
	return nil
}

// newRepoID mints a repository ID in the "XXXXXXXX-TLD" shape.
func newRepoID(tldName string) string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("%s-%s", raw[:8], strings.ToUpper(tldName))
}

func (f *Flows) emit(ctx context.Context, event audit.Event) {
	if f.emitter == nil {
		return
	}
	f.emitter.Emit(ctx, event)
}
