package flows

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"domreg/internal/bulkpricing"
	"domreg/internal/domains"
	"domreg/pkg/domain"
	"domreg/pkg/epperr"
	"domreg/pkg/platform/sentinel"
	"domreg/pkg/requestcontext"
)

// RenewRequest extends a domain registration.
type RenewRequest struct {
	Name  string
	Years int
	Token *string
}

// Renew extends the registration of a domain sponsored by the authenticated
// registrar. A bulk-priced domain can only be renewed explicitly when the
// removal token is supplied, which also detaches the arrangement.
func (f *Flows) Renew(ctx context.Context, req RenewRequest) (*Result, error) {
	ctx, span := f.tracer.Start(ctx, "flows.Renew",
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

	d, err := f.loadSponsoredDomain(ctx, name, registrarID)
	if err != nil {
		return nil, err
	}
	t, err := f.loadTLD(ctx, name)
	if err != nil {
		return nil, err
	}

	tok, err := f.tokens.LoadFromExtensionOrDefault(ctx, registrarID, now, req.Token, t, name, domain.CommandRenew)
	if err != nil {
		f.emit(ctx, f.rejectionEvent(ctx, registrarID, domain.CommandRenew, name, req.Token, err))
		return nil, err
	}
	if err := bulkpricing.VerifyBulkTokenAllowedOnDomain(d, tok); err != nil {
		f.emit(ctx, f.rejectionEvent(ctx, registrarID, domain.CommandRenew, name, req.Token, err))
		return nil, err
	}

	historyID := domain.NewHistoryEntryID(d.RepoID, now.UnixNano())
	price := commandPrice(t, domain.CommandRenew, req.Years, tok)

	result := &Result{Price: price, HistoryID: historyID}
	err = f.runner.RunInTx(ctx, func(ctx context.Context) error {
		updated, err := f.bulk.MaybeApplyRemovalToken(ctx, d, tok, now)
		if err != nil {
			return err
		}
		result.BulkPricingRemoved = updated != d

		renewed := updated.Clone()
		renewed.ExpirationTime = renewed.ExpirationTime.AddDate(req.Years, 0, 0)
		renewed.UpdatedAt = now
		if err := f.domains.Put(ctx, &renewed); err != nil {
			return fmt.Errorf("persist domain %s: %w", name, err)
		}
		result.Domain = &renewed

		return f.consumeToken(ctx, result, tok, historyID)
	})
	if err != nil {
		return nil, err
	}

	f.logger.InfoContext(ctx, "domain renewed",
		"domain", name, "registrar", registrarID, "years", req.Years,
		"price", price, "token", result.AppliedToken,
		"bulk_pricing_removed", result.BulkPricingRemoved)
	f.emitOutcome(ctx, registrarID, domain.CommandRenew, name, result)
	return result, nil
}

func (f *Flows) loadSponsoredDomain(ctx context.Context, name domain.DomainName, registrarID domain.RegistrarID) (*domains.Domain, error) {
	d, err := f.domains.Get(ctx, name)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, ErrDomainNotFound
		}
		return nil, fmt.Errorf("load domain %s: %w", name, err)
	}
	if d.RegistrarID != registrarID {
		return nil, ErrNotSponsoringClient
	}
	return d, nil
}
