// Package bulkpricing coordinates bulk pricing arrangements on domains: it
// enforces the removal token requirement on explicit renew/transfer and
// detaches the arrangement when the removal token is supplied.
package bulkpricing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"domreg/internal/billing"
	"domreg/internal/domains"
	tokenmetrics "domreg/internal/token/metrics"
	"domreg/internal/token/models"
)

// Coordinator applies bulk pricing policy to domain commands.
type Coordinator struct {
	recurrences billing.Store
	logger      *slog.Logger
	metrics     *tokenmetrics.Metrics
	tracer      trace.Tracer
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *tokenmetrics.Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// New constructs a Coordinator.
func New(recurrences billing.Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		recurrences: recurrences,
		logger:      slog.Default(),
		tracer:      otel.Tracer("domreg/bulkpricing"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// VerifyBulkTokenAllowedOnDomain enforces mutual exclusion between a
// domain's bulk pricing state and the removal token: a bulk-priced domain
// requires the removal token on explicit renew/transfer, and the removal
// token is rejected on a domain with no bulk pricing. Both mismatches are
// hard errors; tok may be nil.
func VerifyBulkTokenAllowedOnDomain(dom *domains.Domain, tok *models.Token) error {
	hasRemovalToken := tok != nil && tok.Behavior == models.BehaviorRemoveBulkPricing
	if dom.HasBulkToken() && !hasRemovalToken {
		return models.ErrMissingRemovalToken
	}
	if !dom.HasBulkToken() && hasRemovalToken {
		return models.ErrRemovalTokenNotApplicable
	}
	return nil
}

// MaybeApplyRemovalToken detaches the bulk pricing arrangement from the
// domain when tok is the removal token, superseding the active autorenew
// recurrence with a default-priced revision and clearing the domain's bulk
// token reference. Any other token (or nil) returns the domain unchanged.
//
// The caller persists the returned domain in the same transaction that the
// recurrence writes ran in; VerifyBulkTokenAllowedOnDomain must have
// passed already.
func (c *Coordinator) MaybeApplyRemovalToken(ctx context.Context, dom *domains.Domain, tok *models.Token, now time.Time) (*domains.Domain, error) {
	if tok == nil || tok.Behavior != models.BehaviorRemoveBulkPricing {
		return dom, nil
	}

	ctx, span := c.tracer.Start(ctx, "bulkpricing.MaybeApplyRemovalToken",
		trace.WithAttributes(attribute.String("domain", dom.Name.String())))
	defer span.End()

	active, err := c.recurrences.Get(ctx, dom.AutorenewRecurrenceID)
	if err != nil {
		return nil, fmt.Errorf("load autorenew recurrence %d for %s: %w", dom.AutorenewRecurrenceID, dom.Name, err)
	}

	replacement := active.Superseding(now)
	created, err := c.recurrences.Supersede(ctx, active.ID, &replacement, now)
	if err != nil {
		return nil, fmt.Errorf("supersede autorenew recurrence %d for %s: %w", active.ID, dom.Name, err)
	}

	updated := dom.Clone()
	updated.CurrentBulkToken = nil
	updated.AutorenewRecurrenceID = created.ID
	updated.UpdatedAt = now

	c.logger.InfoContext(ctx, "bulk pricing removed from domain",
		"domain", dom.Name, "old_recurrence", active.ID, "new_recurrence", created.ID)
	if c.metrics != nil {
		c.metrics.IncrementBulkPricingRemovals()
	}
	return &updated, nil
}
