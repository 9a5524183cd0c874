package flows

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"domreg/internal/bulkpricing"
	"domreg/pkg/domain"
	"domreg/pkg/epperr"
	"domreg/pkg/platform/sentinel"
	"domreg/pkg/requestcontext"
)

// TransferRequest moves a domain to the authenticated registrar. Transfers
// carry a mandatory one year extension.
type TransferRequest struct {
	Name  string
	Token *string
}

const transferExtensionYears = 1

// Transfer makes the authenticated registrar the new sponsor of a domain.
// Like renew, an explicit transfer of a bulk-priced domain requires the
// removal token.
func (f *Flows) Transfer(ctx context.Context, req TransferRequest) (*Result, error) {
	ctx, span := f.tracer.Start(ctx, "flows.Transfer",
		trace.WithAttributes(attribute.String("domain", req.Name)))
	defer span.End()

	registrarID := requestcontext.RegistrarID(ctx)
	now := requestcontext.Now(ctx)

	name, err := domain.ParseDomainName(req.Name)
	if err != nil {
		return nil, epperr.Wrap(err, epperr.CodeParameterPolicy, "Invalid domain name")
	}

	d, err := f.domains.Get(ctx, name)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, ErrDomainNotFound
		}
		return nil, fmt.Errorf("load domain %s: %w", name, err)
	}
	if d.RegistrarID == registrarID {
		return nil, ErrAlreadySponsored
	}

	t, err := f.loadTLD(ctx, name)
	if err != nil {
		return nil, err
	}

	tok, err := f.tokens.LoadFromExtensionOrDefault(ctx, registrarID, now, req.Token, t, name, domain.CommandTransfer)
	if err != nil {
		f.emit(ctx, f.rejectionEvent(ctx, registrarID, domain.CommandTransfer, name, req.Token, err))
		return nil, err
	}
	if err := bulkpricing.VerifyBulkTokenAllowedOnDomain(d, tok); err != nil {
		f.emit(ctx, f.rejectionEvent(ctx, registrarID, domain.CommandTransfer, name, req.Token, err))
		return nil, err
	}

	historyID := domain.NewHistoryEntryID(d.RepoID, now.UnixNano())
	price := commandPrice(t, domain.CommandTransfer, transferExtensionYears, tok)

	result := &Result{Price: price, HistoryID: historyID}
	err = f.runner.RunInTx(ctx, func(ctx context.Context) error {
		updated, err := f.bulk.MaybeApplyRemovalToken(ctx, d, tok, now)
		if err != nil {
			return err
		}
		result.BulkPricingRemoved = updated != d

		transferred := updated.Clone()
		transferred.RegistrarID = registrarID
		transferred.ExpirationTime = transferred.ExpirationTime.AddDate(transferExtensionYears, 0, 0)
		transferred.UpdatedAt = now
		if err := f.domains.Put(ctx, &transferred); err != nil {
			return fmt.Errorf("persist domain %s: %w", name, err)
		}
		result.Domain = &transferred

		return f.consumeToken(ctx, result, tok, historyID)
	})
	if err != nil {
		return nil, err
	}

	f.logger.InfoContext(ctx, "domain transferred",
		"domain", name, "registrar", registrarID, "price", price,
		"token", result.AppliedToken, "bulk_pricing_removed", result.BulkPricingRemoved)
	f.emitOutcome(ctx, registrarID, domain.CommandTransfer, name, result)
	return result, nil
}
