//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/vendormesh/checkout/internal/domains/checkout/domain"
	"github.com/vendormesh/checkout/internal/domains/checkout/ports"
	"github.com/vendormesh/checkout/internal/platform/migrations"
)

func setupCheckoutPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("checkout_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = migrations.Run(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func integrationOrder(id domain.OrderIdentifier, sessionID string) *domain.Order {
	return &domain.Order{
		Identifier:    id,
		ShopID:        "shop-1",
		UserID:        "user-1",
		SessionID:     sessionID,
		Items:         []domain.CartItem{{ID: "item-1", Quantity: 2, UnitPriceCents: 1500, ShopID: "shop-1"}},
		SubtotalCents: 3000,
		CreatedAt:     time.Now().UTC(),
	}
}

func TestRepository_CreateAndUniqueness(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupCheckoutPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	err := repo.Create(ctx, integrationOrder("SABC-25-000001", "sess-1"))
	require.NoError(t, err)

	// The primary key is the reservation: a second insert with the same
	// identifier must surface the uniqueness conflict.
	err = repo.Create(ctx, integrationOrder("SABC-25-000001", "sess-2"))
	assert.ErrorIs(t, err, ports.ErrIdentifierTaken)

	fetched, err := repo.GetByIdentifier(ctx, "SABC-25-000001")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", fetched.SessionID)
	require.Len(t, fetched.Items, 1)
	assert.Equal(t, int64(1500), fetched.Items[0].UnitPriceCents)
}

func TestRepository_LatestSequence(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupCheckoutPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	_, ok, err := repo.LatestSequence(ctx, "ABC", 25)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Create(ctx, integrationOrder("SABC-25-000001", "sess-1")))
	require.NoError(t, repo.Create(ctx, integrationOrder("SABC-25-000002", "sess-1")))
	require.NoError(t, repo.Create(ctx, integrationOrder("SXYZ-25-000007", "sess-2")))

	seq, ok, err := repo.LatestSequence(ctx, "ABC", 25)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, seq)
}

func TestRepository_ListBySession(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupCheckoutPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, integrationOrder("SABC-25-000001", "sess-1")))
	require.NoError(t, repo.Create(ctx, integrationOrder("SXYZ-25-000001", "sess-1")))
	require.NoError(t, repo.Create(ctx, integrationOrder("SABC-25-000002", "sess-2")))

	orders, err := repo.ListBySession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}

func TestShopDirectory_Lookups(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupCheckoutPostgresContainer(t)
	defer cleanup()

	require.NoError(t, db.Create(&shopRecord{
		ID: "shop-1", Code: "ABC", Name: "Alpha", SellerID: "seller-1", PayoutDestinationID: "dest-1",
	}).Error)
	require.NoError(t, db.Create(&shopRecord{
		ID: "shop-2", Code: "XYZ", Name: "Beta", SellerID: "seller-2",
	}).Error)

	directory := NewShopDirectory(db)
	ctx := context.Background()

	shop, err := directory.GetByID(ctx, "shop-1")
	require.NoError(t, err)
	assert.Equal(t, "ABC", shop.Code)

	seller, err := directory.LookupPayoutDestination(ctx, "shop-1")
	require.NoError(t, err)
	assert.Equal(t, "dest-1", seller.PayoutDestinationID)

	_, err = directory.LookupPayoutDestination(ctx, "shop-2")
	assert.ErrorIs(t, err, ports.ErrNotFound)

	_, err = directory.GetByID(ctx, "shop-9")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestSessionStore_Lifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupCheckoutPostgresContainer(t)
	defer cleanup()

	store := NewSessionStore(db)
	ctx := context.Background()
	now := time.Now().UTC()

	session := &domain.CheckoutSession{
		ID:     "sess-1",
		UserID: "user-1",
		Cart: []domain.CartItem{
			{ID: "item-1", Quantity: 1, UnitPriceCents: 4000, ShopID: "shop-1", SelectedOptions: map[string]string{"size": "M"}},
		},
		Sellers:           []domain.SellerData{{ShopID: "shop-1", SellerID: "seller-1", PayoutDestinationID: "dest-1"}},
		PerShopSubtotal:   map[string]int64{"shop-1": 4000},
		GrandTotalCents:   4000,
		ShippingAddressID: "addr-1",
		Coupon:            &domain.Coupon{Code: "TEN", PercentOff: 10},
		Status:            domain.StatusOpen,
		CreatedAt:         now,
		ExpiresAt:         now.Add(30 * time.Minute),
	}
	require.NoError(t, store.Save(ctx, session))

	loaded, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, int64(4000), loaded.PerShopSubtotal["shop-1"])
	require.NotNil(t, loaded.Coupon)
	assert.Equal(t, "TEN", loaded.Coupon.Code)
	assert.Equal(t, "M", loaded.Cart[0].SelectedOptions["size"])

	require.NoError(t, store.AppendMintedIdentifier(ctx, "sess-1", "SABC-25-000001"))
	require.NoError(t, store.AppendMintedIdentifier(ctx, "sess-1", "SXYZ-25-000001"))
	assert.ErrorIs(t, store.AppendMintedIdentifier(ctx, "sess-9", "SABC-25-000001"), ports.ErrNotFound)

	loaded, err = store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, []domain.OrderIdentifier{"SABC-25-000001", "SXYZ-25-000001"}, loaded.MintedOrderIDs)

	require.NoError(t, store.MarkSettled(ctx, "sess-1"))
	// The settle transition is guarded on the open status, so a repeat is
	// reported as a missing open session.
	assert.ErrorIs(t, store.MarkSettled(ctx, "sess-1"), ports.ErrNotFound)

	purged, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, err = store.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}
