package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	checkoutevents "github.com/vendormesh/checkout/internal/domains/checkout/adapters/events/kafka"
	checkouthttp "github.com/vendormesh/checkout/internal/domains/checkout/adapters/http"
	checkoutmemory "github.com/vendormesh/checkout/internal/domains/checkout/adapters/memory"
	checkoutobs "github.com/vendormesh/checkout/internal/domains/checkout/adapters/observability"
	checkoutpostgres "github.com/vendormesh/checkout/internal/domains/checkout/adapters/persistence/postgres"
	checkoutworkflows "github.com/vendormesh/checkout/internal/domains/checkout/adapters/workflows"
	"github.com/vendormesh/checkout/internal/domains/checkout/application"
	"github.com/vendormesh/checkout/internal/domains/checkout/ports"
	platformobservability "github.com/vendormesh/checkout/internal/platform/observability"
	platformpostgres "github.com/vendormesh/checkout/internal/platform/postgres"
)

// Run boots the checkout HTTP API with observability, repositories, event
// publishing, and durable settlement wired.
func Run(ctx context.Context) error {
	const serviceName = "checkout-api"
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	db, cleanupDB := connectPostgres(ctx, cfg, logger)
	defer cleanupDB()

	coreService := buildCheckoutService(cfg, db, logger)
	service := checkoutobs.New(
		coreService,
		checkoutobs.WithLogger(logger),
		checkoutobs.WithTracer(instruments.Tracer("internal.domains.checkout.application")),
		checkoutobs.WithMeter(instruments.Meter("internal.domains.checkout.application")),
	)

	var orchestrator ports.SettlementOrchestrator = checkoutworkflows.NewInlineSettlement(service)
	if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal unavailable, settling inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		orchestrator = checkoutworkflows.NewTemporalSettlement(temporalClient)
		logger.Info("Temporal settlement enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	router := gin.Default()
	router.Use(otelgin.Middleware(serviceName))
	checkouthttp.New(service, orchestrator).Register(router)

	addr := ":" + cfg.Port
	logger.Info("checkout API listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("checkout API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

func connectPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*gorm.DB, func()) {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory checkout adapters")
		return nil, func() {}
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to in-memory checkout adapters", slog.String("error", err.Error()))
		return nil, func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("failed to unwrap postgres connection, falling back to in-memory checkout adapters", slog.String("error", err.Error()))
		return nil, func() {}
	}
	logger.Info("checkout repositories configured with postgres")
	return db, func() { _ = sqlDB.Close() }
}

func buildCheckoutService(cfg Config, db *gorm.DB, logger *slog.Logger) *application.Service {
	var (
		shops     ports.ShopRepository
		directory ports.SellerDirectory
		orders    ports.OrderRepository
		sessions  ports.SessionStore
	)
	if db != nil {
		shopDir := checkoutpostgres.NewShopDirectory(db)
		shops, directory = shopDir, shopDir
		orders = checkoutpostgres.NewRepository(db)
		sessions = checkoutpostgres.NewSessionStore(db)
	} else {
		shopDir := checkoutmemory.NewShopDirectory()
		shops, directory = shopDir, shopDir
		orders = checkoutmemory.NewRepository()
		sessions = checkoutmemory.NewSessionStore()
	}

	var publisher ports.EventPublisher
	if kafkaPublisher := checkoutevents.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic); kafkaPublisher.Enabled() {
		publisher = kafkaPublisher
		logger.Info("kafka event publishing enabled", slog.String("brokers", cfg.KafkaBrokers))
	} else {
		logger.Warn("KAFKA_BROKERS not set, checkout events disabled")
	}

	opts := []application.ServiceOption{application.WithLogger(logger)}
	if cfg.SessionTTLMinutes > 0 {
		opts = append(opts, application.WithTTL(time.Duration(cfg.SessionTTLMinutes)*time.Minute))
	}
	return application.NewService(shops, directory, orders, sessions, publisher, opts...)
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(instruments.Logger),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}
