package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	checkoutpostgres "github.com/vendormesh/checkout/internal/domains/checkout/adapters/persistence/postgres"
	platformpostgres "github.com/vendormesh/checkout/internal/platform/postgres"
)

// The reaper removes checkout sessions whose TTL lapsed before payment
// confirmation, plus settled sessions past their usefulness. Run it from
// cron; the request path never blocks on cleanup.
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot reap sessions")
	}

	store := checkoutpostgres.NewSessionStore(db)
	reaped, err := store.PurgeExpired(ctx)
	if err != nil {
		log.Fatalf("failed to reap checkout sessions: %v", err)
	}
	log.Printf("session reap completed, removed %d sessions", reaped)
}
