// Package httptransport is the thin HTTP layer over the domain services.
// Handlers decode, delegate, and translate errors; no business logic lives
// here.
package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authmw "domreg/pkg/platform/middleware/auth"
	"domreg/pkg/platform/middleware/requesttime"
)

// NewRouter wires all endpoints. Command endpoints require a registrar
// token; admin endpoints require the admin claim on top.
func NewRouter(commands *CommandHandler, admin *AdminHandler, validator authmw.TokenValidator) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(requesttime.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireRegistrar(validator, commands.logger))
		commands.Register(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAdmin(validator, admin.logger))
		admin.Register(r)
	})

	return r
}
