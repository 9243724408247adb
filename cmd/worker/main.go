package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/vendormesh/checkout/internal/app/api"
	checkoutevents "github.com/vendormesh/checkout/internal/domains/checkout/adapters/events/kafka"
	checkoutmemory "github.com/vendormesh/checkout/internal/domains/checkout/adapters/memory"
	checkoutpostgres "github.com/vendormesh/checkout/internal/domains/checkout/adapters/persistence/postgres"
	"github.com/vendormesh/checkout/internal/domains/checkout/application"
	"github.com/vendormesh/checkout/internal/domains/checkout/ports"
	platformobservability "github.com/vendormesh/checkout/internal/platform/observability"
	platformpostgres "github.com/vendormesh/checkout/internal/platform/postgres"
	checkoutactivities "github.com/vendormesh/checkout/internal/platform/temporal/activities/checkout"
	checkoutworkflows "github.com/vendormesh/checkout/internal/platform/temporal/workflows/checkout"
)

// The worker hosts the durable settlement workflow. It shares the application
// service wiring with the API so both settle through the same core.
func main() {
	ctx := context.Background()
	const serviceName = "checkout-worker"

	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	service, cleanup := buildService(ctx, cfg, logger)
	defer cleanup()

	temporalClient, err := connectTemporal(cfg, instruments)
	if err != nil {
		log.Fatalf("failed to connect to temporal: %v", err)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, checkoutworkflows.SettlementTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(checkoutworkflows.SettlementWorkflow, workflow.RegisterOptions{
		Name: checkoutworkflows.SettlementWorkflowName,
	})
	activities := checkoutactivities.NewActivities(service)
	w.RegisterActivityWithOptions(activities.SettleSession, activity.RegisterOptions{
		Name: checkoutworkflows.SettleSessionActivityName,
	})

	logger.Info("settlement worker starting", slog.String("taskQueue", checkoutworkflows.SettlementTaskQueue))
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("settlement worker exited: %v", err)
	}
}

func buildService(ctx context.Context, cfg api.Config, logger *slog.Logger) (ports.Service, func()) {
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
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
	return application.NewService(shops, directory, orders, sessions, publisher, opts...), cleanup
}

func connectTemporal(cfg api.Config, instruments *platformobservability.Instruments) (client.Client, error) {
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-worker")
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
