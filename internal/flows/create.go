package flows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"domreg/internal/audit"
	"domreg/internal/billing"
	"domreg/internal/bulkpricing"
	"domreg/internal/domains"
	"domreg/internal/token/models"
	"domreg/pkg/domain"
	"domreg/pkg/epperr"
	"domreg/pkg/platform/sentinel"
	"domreg/pkg/requestcontext"
)

// CreateRequest registers a new domain.
type CreateRequest struct {
	Name  string
	Years int
	// Token is the explicitly supplied allocation token, nil when the
	// request carried none.
	Token *string
}

// Create registers a domain for the authenticated registrar, applying the
// explicit or TLD-default allocation token. A bulk pricing token attaches
// the arrangement to the new domain; the removal token is rejected since a
// new domain has nothing to remove.
func (f *Flows) Create(ctx context.Context, req CreateRequest) (*Result, error) {
	ctx, span := f.tracer.Start(ctx, "flows.Create",
		trace.WithAttributes(attribute.String("domain", req.Name)))
	defer span.End()

	registrarID := requestcontext.RegistrarID(ctx)
	now := requestcontext.Now(ctx)

	name, err := domain.ParseDomainName(req.Name)
	if err != nil {
		return nil, epperr.Wrap(err, epperr.CodeParameterPolicy, "Invalid domain name")
	}
	if err := validatePeriod(req.Years); err != nil {
		return nil, err
	}

	if _, err := f.domains.Get(ctx, name); err == nil {
		return nil, ErrDomainExists
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, fmt.Errorf("check existing domain %s: %w", name, err)
	}

	t, err := f.loadTLD(ctx, name)
	if err != nil {
		return nil, err
	}

	tok, err := f.tokens.LoadFromExtensionOrDefault(ctx, registrarID, now, req.Token, t, name, domain.CommandCreate)
	if err != nil {
		f.emit(ctx, f.rejectionEvent(ctx, registrarID, domain.CommandCreate, name, req.Token, err))
		return nil, err
	}

	// A fresh domain carries no bulk pricing, so only the removal token can
	// trip the mutual exclusion check here.
	if err := bulkpricing.VerifyBulkTokenAllowedOnDomain(&domains.Domain{}, tok); err != nil {
		return nil, err
	}

	repoID := newRepoID(t.Name)
	historyID := domain.NewHistoryEntryID(repoID, now.UnixNano())
	price := commandPrice(t, domain.CommandCreate, req.Years, tok)

	result := &Result{Price: price, HistoryID: historyID}
	err = f.runner.RunInTx(ctx, func(ctx context.Context) error {
		recurrence, err := f.recurrences.Create(ctx, newAutorenewRecurrence(repoID, tok, now))
		if err != nil {
			return fmt.Errorf("create autorenew recurrence for %s: %w", name, err)
		}

		d := &domains.Domain{
			RepoID:                repoID,
			Name:                  name,
			TLD:                   t.Name,
			RegistrarID:           registrarID,
			AutorenewRecurrenceID: recurrence.ID,
			ExpirationTime:        now.AddDate(req.Years, 0, 0),
			CreatedAt:             now,
			UpdatedAt:             now,
		}
		if tok != nil && tok.Behavior == models.BehaviorBulkPricing {
			key := tok.Key
			d.CurrentBulkToken = &key
		}
		if err := f.domains.Put(ctx, d); err != nil {
			return fmt.Errorf("persist domain %s: %w", name, err)
		}
		result.Domain = d

		return f.consumeToken(ctx, result, tok, historyID)
	})
	if err != nil {
		return nil, err
	}

	f.logger.InfoContext(ctx, "domain created",
		"domain", name, "registrar", registrarID, "price", price, "token", result.AppliedToken)
	f.emitOutcome(ctx, registrarID, domain.CommandCreate, name, result)
	return result, nil
}

// newAutorenewRecurrence builds the initial billing recurrence for a
// domain. A bulk pricing token pins renewals to its specified price; if it
// carries none, renewals stay non-premium priced.
func newAutorenewRecurrence(repoID string, tok *models.Token, now time.Time) *billing.Recurrence {
	r := &billing.Recurrence{
		DomainRepoID:  repoID,
		PriceBehavior: billing.BehaviorDefault,
		CreatedAt:     now,
	}
	if tok != nil && tok.Behavior == models.BehaviorBulkPricing {
		if tok.DiscountPrice != nil {
			price := *tok.DiscountPrice
			r.PriceBehavior = billing.BehaviorSpecified
			r.RenewalPrice = &price
		} else {
			r.PriceBehavior = billing.BehaviorNonPremium
		}
	}
	return r
}

// consumeToken records the applied token on the result and, for single-use
// tokens, persists the redemption inside the ambient transaction.
func (f *Flows) consumeToken(ctx context.Context, result *Result, tok *models.Token, historyID domain.HistoryEntryID) error {
	if tok == nil {
		return nil
	}
	result.AppliedToken = tok.Key
	if !tok.Type.IsOneTimeUse() {
		return nil
	}
	if _, err := f.tokens.Redeem(ctx, tok, historyID); err != nil {
		return err
	}
	result.Redeemed = true
	return nil
}

func (f *Flows) rejectionEvent(ctx context.Context, registrarID domain.RegistrarID, command domain.CommandKind, name domain.DomainName, explicit *string, err error) audit.Event {
	key := ""
	if explicit != nil {
		key = *explicit
	}
	return audit.Event{
		Timestamp:   requestcontext.Now(ctx),
		RequestID:   requestcontext.RequestID(ctx),
		RegistrarID: registrarID,
		Command:     command,
		Domain:      name,
		TokenKey:    key,
		Outcome:     audit.OutcomeRejected,
		Detail:      err.Error(),
	}
}

func (f *Flows) emitOutcome(ctx context.Context, registrarID domain.RegistrarID, command domain.CommandKind, name domain.DomainName, result *Result) {
	outcome := audit.OutcomeNoToken
	switch {
	case result.Redeemed:
		outcome = audit.OutcomeRedeemed
	case result.AppliedToken != "":
		outcome = audit.OutcomeApplied
	}
	f.emit(ctx, audit.Event{
		Timestamp:   requestcontext.Now(ctx),
		RequestID:   requestcontext.RequestID(ctx),
		RegistrarID: registrarID,
		Command:     command,
		Domain:      name,
		TokenKey:    result.AppliedToken,
		Outcome:     outcome,
	})
	if result.BulkPricingRemoved {
		f.emit(ctx, audit.Event{
			Timestamp:   requestcontext.Now(ctx),
			RequestID:   requestcontext.RequestID(ctx),
			RegistrarID: registrarID,
			Command:     command,
			Domain:      name,
			TokenKey:    models.RemoveBulkPricingTokenKey,
			Outcome:     audit.OutcomeBulkRemoved,
		})
	}
}
