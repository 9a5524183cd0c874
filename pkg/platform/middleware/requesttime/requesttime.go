// Package requesttime pins one "now" per HTTP request so every policy
// comparison and timestamp within a command sees the same time.
package requesttime

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"domreg/pkg/requestcontext"
)

// Middleware captures the wall clock once at the start of the request and
// assigns a correlation ID, storing both in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())

		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx = requestcontext.WithRequestID(ctx, requestID)
		w.Header().Set("X-Request-Id", requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
