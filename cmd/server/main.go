// Command server wires the registry token engine behind its HTTP API.
// Business logic lives in the internal packages; this file only assembles
// dependencies and owns the process lifecycle.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"domreg/internal/audit"
	"domreg/internal/billing"
	"domreg/internal/bulkpricing"
	"domreg/internal/domains"
	"domreg/internal/flows"
	platformauth "domreg/internal/platform/auth"
	"domreg/internal/platform/config"
	"domreg/internal/platform/httpserver"
	"domreg/internal/platform/logger"
	platformredis "domreg/internal/platform/redis"
	"domreg/internal/pricing"
	tldstore "domreg/internal/tld"
	tokenmetrics "domreg/internal/token/metrics"
	tokensvc "domreg/internal/token/service"
	tokenstore "domreg/internal/token/store"
	httptransport "domreg/internal/transport/http"
	"domreg/pkg/platform/tx"
)

const auditBufferSize = 256

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, runner, err := buildStores(ctx, cfg, log)
	if err != nil {
		return err
	}

	premium, err := buildPremiumChecker(cfg, stores.tlds, log)
	if err != nil {
		return err
	}

	emitter, err := buildAuditEmitter(ctx, cfg, log)
	if err != nil {
		return err
	}

	metrics := tokenmetrics.New()
	tokenService := tokensvc.New(stores.tokens, premium,
		tokensvc.WithLogger(log), tokensvc.WithMetrics(metrics))
	coordinator := bulkpricing.New(stores.recurrences,
		bulkpricing.WithLogger(log), bulkpricing.WithMetrics(metrics))
	flowService := flows.New(runner, stores.domains, stores.tlds, stores.recurrences,
		tokenService, coordinator,
		flows.WithLogger(log), flows.WithAuditEmitter(emitter))

	jwtService := platformauth.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer)
	router := httptransport.NewRouter(
		httptransport.NewCommandHandler(flowService, log),
		httptransport.NewAdminHandler(stores.tokens, stores.tlds, log),
		jwtService,
	)
	srv := httpserver.New(cfg.Addr, router)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting domreg server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		return emitter.Run(ctx)
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = group.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

type storeSet struct {
	tokens      tokenstore.Store
	tlds        tldstore.Store
	domains     domains.Store
	recurrences billing.Store
}

// buildStores selects postgres-backed stores when a database URL is
// configured, in-memory stores otherwise.
func buildStores(ctx context.Context, cfg config.Config, log *slog.Logger) (*storeSet, tx.Runner, error) {
	if cfg.PostgresURL == "" {
		log.Warn("no postgres URL configured, using in-memory stores")
		return &storeSet{
			tokens:      tokenstore.NewInMemory(),
			tlds:        tldstore.NewInMemory(),
			domains:     domains.NewInMemory(),
			recurrences: billing.NewInMemory(),
		}, tx.NoopRunner{}, nil
	}

	db, err := sql.Open("postgres", cfg.PostgresURL)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}

	tokens := tokenstore.NewPostgres(db)
	tlds := tldstore.NewPostgres(db)
	domainStore := domains.NewPostgres(db)
	recurrences := billing.NewPostgres(db)
	for _, migrate := range []func(context.Context) error{
		tokens.Migrate, tlds.Migrate, domainStore.Migrate, recurrences.Migrate,
	} {
		if err := migrate(ctx); err != nil {
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
	}

	return &storeSet{
		tokens:      tokens,
		tlds:        tlds,
		domains:     domainStore,
		recurrences: recurrences,
	}, tx.NewSQLRunner(db), nil
}

// buildPremiumChecker layers the Redis cache over the label-list checker
// when Redis is configured.
func buildPremiumChecker(cfg config.Config, tlds tldstore.Store, log *slog.Logger) (pricing.Checker, error) {
	base := pricing.NewLabelListChecker(tlds)

	client, err := platformredis.New(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if client == nil {
		return base, nil
	}
	log.Info("premium checks cached in redis", "ttl", cfg.PremiumCacheTTL)
	return pricing.NewCachedChecker(base, client.Client, cfg.PremiumCacheTTL, log), nil
}

// buildAuditEmitter publishes to Kafka when brokers are configured and
// collects in memory otherwise.
func buildAuditEmitter(ctx context.Context, cfg config.Config, log *slog.Logger) (*audit.Emitter, error) {
	if len(cfg.KafkaBrokers) == 0 {
		log.Warn("no kafka brokers configured, audit events stay in memory")
		return audit.NewEmitter(audit.NewMemoryPublisher(), auditBufferSize, log), nil
	}

	publisher, err := audit.NewKafkaPublisher(cfg.KafkaBrokers, cfg.AuditTopic)
	if err != nil {
		return nil, fmt.Errorf("connect kafka: %w", err)
	}
	if err := publisher.EnsureTopic(ctx, 3, 1); err != nil {
		return nil, err
	}
	log.Info("audit events published to kafka", "topic", cfg.AuditTopic)
	return audit.NewEmitter(publisher, auditBufferSize, log), nil
}
