// Package service implements allocation token policy: validation of a token
// against a domain command, resolution of TLD default tokens, and
// redemption of single-use tokens.
//
// The service is read-only; the one mutation in this domain (marking a
// single-use token redeemed) is a pure function whose result the caller
// persists inside the command's own transaction.
package service

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	tokenmetrics "domreg/internal/token/metrics"
	"domreg/internal/pricing"
	"domreg/internal/token/store"
)

// Service evaluates allocation token policy for domain commands.
type Service struct {
	tokens  store.Store
	premium pricing.Checker
	logger  *slog.Logger
	metrics *tokenmetrics.Metrics
	tracer  trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *tokenmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(tokens store.Store, premium pricing.Checker, opts ...Option) *Service {
	s := &Service{
		tokens:  tokens,
		premium: premium,
		logger:  slog.Default(),
		tracer:  otel.Tracer("domreg/token"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) incrementValidations(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementValidations(outcome)
	}
}

func (s *Service) incrementDefaultResolutions(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementDefaultResolutions(outcome)
	}
}

func (s *Service) incrementRedemptions() {
	if s.metrics != nil {
		s.metrics.IncrementRedemptions()
	}
}
