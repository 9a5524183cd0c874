package service

import (
	"context"
	"fmt"
	"time"

	tldstore "domreg/internal/tld"
	"domreg/internal/token/models"
	"domreg/pkg/domain"
	"domreg/pkg/epperr"
)

// ResolveDefault walks the TLD's ordered default token list and returns the
// first token that passes both validation phases, or (nil, nil) when the
// list is empty or exhausted. List position is the only ranking; a larger
// discount later in the list never beats an earlier valid token.
//
// Any validation failure just disqualifies the candidate: default tokens
// were not named by the registrar, so nothing here is a client error. A TLD
// referencing token keys that cannot be loaded is a configuration error and
// fails the command.
func (s *Service) ResolveDefault(ctx context.Context, tld *tldstore.Tld, name domain.DomainName, command domain.CommandKind, registrarID domain.RegistrarID, now time.Time) (*models.Token, error) {
	keys := tld.DefaultTokenKeys
	if len(keys) == 0 {
		return nil, nil
	}

	loaded, err := s.tokens.GetAll(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load default tokens for tld %s: %w", tld.Name, err)
	}
	for _, key := range keys {
		if _, ok := loaded[key]; !ok {
			s.logger.ErrorContext(ctx, "tld references unknown default token",
				"tld", tld.Name, "token", key)
			return nil, epperr.New(epperr.CodeInternal,
				fmt.Sprintf("tld %s references unknown default token %q", tld.Name, key))
		}
	}

	// Iterate the key list, not the map, to preserve the configured
	// ranking.
	for _, key := range keys {
		tok := loaded[key]
		if err := ValidateAgainstRequest(tok, registrarID, name, now); err != nil {
			continue
		}
		err := s.ValidateAgainstDomainPolicy(ctx, tok, name, command, now)
		switch {
		case err == nil:
			s.incrementDefaultResolutions("resolved")
			return tok, nil
		case epperr.IsClientError(err):
			continue
		default:
			return nil, err
		}
	}
	s.incrementDefaultResolutions("exhausted")
	return nil, nil
}
