package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	tldstore "domreg/internal/tld"
	"domreg/internal/token/models"
	"domreg/pkg/domain"
	"domreg/pkg/epperr"
	"domreg/pkg/platform/sentinel"
)

// LoadFromExtension loads and validates the explicitly supplied token, if
// any. A nil extension returns (nil, nil). An empty or unknown token string
// fails with ErrNonexistentToken before any further validation; a known
// token failing request-scope validation fails with the specific reason.
// Both are hard client errors because the registrar named the token.
func (s *Service) LoadFromExtension(ctx context.Context, registrarID domain.RegistrarID, name domain.DomainName, now time.Time, explicit *string) (*models.Token, error) {
	if explicit == nil {
		return nil, nil
	}
	key := *explicit
	if key == "" {
		// The token string comes straight from the request; reject it
		// before attempting a store load.
		return nil, models.ErrNonexistentToken
	}

	// Reserved behavioral tokens resolve in memory and skip request-scope
	// validation; they carry behavior, not eligibility.
	if tok, ok := models.StaticTokenByKey(key); ok {
		return &tok, nil
	}

	tok, err := s.tokens.Get(ctx, key)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.incrementValidations("nonexistent")
			return nil, models.ErrNonexistentToken
		}
		return nil, fmt.Errorf("load token: %w", err)
	}

	if err := ValidateAgainstRequest(tok, registrarID, name, now); err != nil {
		s.incrementValidations("rejected")
		return nil, err
	}
	s.incrementValidations("accepted")
	return tok, nil
}

// LoadFromExtensionOrDefault resolves the token that applies to a domain
// command. The explicitly supplied token wins when it is valid for both the
// request and the domain policy; an explicit token that passes request
// validation but is inapplicable to this domain (wrong TLD, command kind,
// premium name) silently falls through to the TLD's default token list.
// Returns (nil, nil) when no token applies.
func (s *Service) LoadFromExtensionOrDefault(ctx context.Context, registrarID domain.RegistrarID, now time.Time, explicit *string, tld *tldstore.Tld, name domain.DomainName, command domain.CommandKind) (*models.Token, error) {
	ctx, span := s.tracer.Start(ctx, "token.LoadFromExtensionOrDefault",
		trace.WithAttributes(
			attribute.String("domain", name.String()),
			attribute.String("command", command.String()),
		))
	defer span.End()

	fromExtension, err := s.LoadFromExtension(ctx, registrarID, name, now, explicit)
	if err != nil {
		return nil, err
	}
	if fromExtension != nil {
		err := s.ValidateAgainstDomainPolicy(ctx, fromExtension, name, command, now)
		switch {
		case err == nil:
			return fromExtension, nil
		case epperr.IsClientError(err):
			// Inapplicable to this domain: scan the defaults instead.
		default:
			return nil, err
		}
	}
	return s.ResolveDefault(ctx, tld, name, command, registrarID, now)
}
