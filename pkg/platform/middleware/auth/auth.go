// Package auth provides bearer token middleware. Authenticated requests
// carry the registrar ID in the request context; admin endpoints
// additionally require the admin claim.
package auth

import (
	"log/slog"
	"net/http"
	"strings"

	platformauth "domreg/internal/platform/auth"
	"domreg/pkg/domain"
	"domreg/pkg/requestcontext"
)

// TokenValidator validates a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (*platformauth.Claims, error)
}

// RequireRegistrar authenticates the request and stores the registrar ID in
// the context.
func RequireRegistrar(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware(validator, logger, false)
}

// RequireAdmin authenticates the request and additionally requires the
// admin claim.
func RequireAdmin(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware(validator, logger, true)
}

func middleware(validator TokenValidator, logger *slog.Logger, adminOnly bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access, missing bearer token",
					"request_id", requestcontext.RequestID(ctx))
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access, invalid token",
					"error", err, "request_id", requestcontext.RequestID(ctx))
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			registrarID, err := domain.ParseRegistrarID(claims.RegistrarID)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access, invalid registrar claim",
					"error", err, "request_id", requestcontext.RequestID(ctx))
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid registrar claim")
				return
			}

			if adminOnly && !claims.Admin {
				logger.WarnContext(ctx, "forbidden access, admin claim required",
					"registrar", registrarID, "request_id", requestcontext.RequestID(ctx))
				writeJSONError(w, http.StatusForbidden, "forbidden", "Admin access required")
				return
			}

			ctx = requestcontext.WithRegistrarID(ctx, registrarID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + errCode + `","error_description":"` + errDesc + `"}`))
}
