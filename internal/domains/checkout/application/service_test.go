package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendormesh/checkout/internal/domains/checkout/adapters/memory"
	"github.com/vendormesh/checkout/internal/domains/checkout/application"
	"github.com/vendormesh/checkout/internal/domains/checkout/domain"
	"github.com/vendormesh/checkout/internal/domains/checkout/ports"
)

// recordingPublisher captures emitted events for assertion. Emission is
// asynchronous, so readers poll via payloads().
type recordingPublisher struct {
	mu       sync.Mutex
	captured []any
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.captured = append(p.captured, payload)
	return nil
}

func (p *recordingPublisher) payloads() []any {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]any, len(p.captured))
	copy(out, p.captured)
	return out
}

// failingOrderRepo delegates to the in-memory repository but refuses writes
// for one shop, simulating a mid-settlement store failure.
type failingOrderRepo struct {
	ports.OrderRepository
	failShopID string
	failErr    error
}

func (f *failingOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	if order.ShopID == f.failShopID {
		return f.failErr
	}
	return f.OrderRepository.Create(ctx, order)
}

// fixture wires the service against in-memory adapters with a mutable fixed
// clock so tests control expiry deterministically.
type fixture struct {
	service  *application.Service
	sessions *memory.SessionStore
	events   *recordingPublisher
	now      time.Time
}

func newFixture(t *testing.T, opts ...application.ServiceOption) *fixture {
	t.Helper()
	return newFixtureWithOrders(t, memory.NewRepository(), opts...)
}

func newFixtureWithOrders(t *testing.T, orders ports.OrderRepository, opts ...application.ServiceOption) *fixture {
	t.Helper()

	directory := memory.NewShopDirectory()
	directory.AddShop(domain.Shop{ID: "shop-x", Code: "XRA", Name: "Xenon Radio", SellerID: "seller-x"}, "dest-x")
	directory.AddShop(domain.Shop{ID: "shop-y", Code: "YBK", Name: "Yonder Books", SellerID: "seller-y"}, "dest-y")

	f := &fixture{
		events: &recordingPublisher{},
		now:    time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC),
	}
	f.sessions = memory.NewSessionStore(memory.WithSessionStoreClock(func() time.Time { return f.now }))
	base := []application.ServiceOption{application.WithClock(func() time.Time { return f.now })}
	f.service = application.NewService(directory, directory, orders, f.sessions, f.events, append(base, opts...)...)
	return f
}

func twoShopInput() ports.BuildSessionInput {
	return ports.BuildSessionInput{
		UserID: "user-1",
		Cart: []domain.CartItem{
			{ID: "item-x", Quantity: 1, UnitPriceCents: 4000, ShopID: "shop-x"},
			{ID: "item-y", Quantity: 2, UnitPriceCents: 3000, ShopID: "shop-y"},
		},
		ShippingAddressID: "addr-1",
	}
}

func TestBuildCheckoutSession(t *testing.T) {
	f := newFixture(t)

	input := twoShopInput()
	input.Coupon = &domain.Coupon{Code: "TEN", PercentOff: 10, TargetItemID: "item-x"}

	session, err := f.service.BuildCheckoutSession(context.Background(), input)
	require.NoError(t, err)

	assert.NotEmpty(t, session.ID)
	assert.Equal(t, domain.StatusOpen, session.Status)
	assert.Equal(t, int64(3600), session.PerShopSubtotal["shop-x"])
	assert.Equal(t, int64(6000), session.PerShopSubtotal["shop-y"])
	assert.Equal(t, int64(9600), session.GrandTotalCents)
	assert.Equal(t, f.now.Add(application.DefaultSessionTTL), session.ExpiresAt)

	require.Len(t, session.Sellers, 2)
	assert.Equal(t, "dest-x", session.Sellers[0].PayoutDestinationID)

	stored, err := f.sessions.Get(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.GrandTotalCents, stored.GrandTotalCents)
}

func TestBuildCheckoutSession_EmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.BuildCheckoutSession(context.Background(), ports.BuildSessionInput{UserID: "user-1"})
	assert.ErrorIs(t, err, application.ErrValidation)
}

func TestBuildCheckoutSession_InvalidCoupon(t *testing.T) {
	f := newFixture(t)

	input := twoShopInput()
	input.Coupon = &domain.Coupon{Code: "BOTH", PercentOff: 10, AmountOffCents: 100}

	_, err := f.service.BuildCheckoutSession(context.Background(), input)
	assert.ErrorIs(t, err, application.ErrValidation)
}

func TestBuildCheckoutSession_UnknownPayoutDestination(t *testing.T) {
	f := newFixture(t)

	input := twoShopInput()
	input.Cart = append(input.Cart, domain.CartItem{ID: "item-z", Quantity: 1, UnitPriceCents: 100, ShopID: "shop-z"})

	_, err := f.service.BuildCheckoutSession(context.Background(), input)
	assert.ErrorIs(t, err, application.ErrNotFound)
}

func TestSettleCheckoutSession(t *testing.T) {
	f := newFixture(t)
	session := mustBuild(t, f, twoShopInput())

	orders, err := f.service.SettleCheckoutSession(context.Background(), session.ID, ports.PaymentConfirmation{
		PaymentID:   "pay-1",
		AmountCents: session.GrandTotalCents,
		Currency:    "USD",
	})
	require.NoError(t, err)
	require.Len(t, orders, 2)

	// Shops settle in sorted order; each shop's year sequence starts at 1.
	assert.Equal(t, domain.OrderIdentifier("SXRA-25-000001"), orders[0].Identifier)
	assert.Equal(t, domain.OrderIdentifier("SYBK-25-000001"), orders[1].Identifier)
	assert.Equal(t, int64(4000), orders[0].SubtotalCents)
	assert.Equal(t, int64(6000), orders[1].SubtotalCents)

	stored, err := f.sessions.Get(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSettled, stored.Status)
	assert.Equal(t, []domain.OrderIdentifier{"SXRA-25-000001", "SYBK-25-000001"}, stored.MintedOrderIDs)

	// One order.created per shop plus the session settled event, emitted
	// asynchronously after settlement returns.
	require.Eventually(t, func() bool {
		return len(f.events.payloads()) == 3
	}, time.Second, 10*time.Millisecond)

	var settled *ports.SessionSettledEvent
	for _, payload := range f.events.payloads() {
		if event, ok := payload.(ports.SessionSettledEvent); ok {
			settled = &event
		}
	}
	require.NotNil(t, settled)
	assert.ElementsMatch(t, []string{"SXRA-25-000001", "SYBK-25-000001"}, settled.OrderIDs)
}

func TestSettleCheckoutSession_SecondSessionContinuesSequence(t *testing.T) {
	f := newFixture(t)

	first := mustBuild(t, f, twoShopInput())
	_, err := f.service.SettleCheckoutSession(context.Background(), first.ID, ports.PaymentConfirmation{AmountCents: first.GrandTotalCents})
	require.NoError(t, err)

	second := mustBuild(t, f, twoShopInput())
	orders, err := f.service.SettleCheckoutSession(context.Background(), second.ID, ports.PaymentConfirmation{AmountCents: second.GrandTotalCents})
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, domain.OrderIdentifier("SXRA-25-000002"), orders[0].Identifier)
	assert.Equal(t, domain.OrderIdentifier("SYBK-25-000002"), orders[1].Identifier)
}

func TestSettleCheckoutSession_PaymentMismatch(t *testing.T) {
	f := newFixture(t)
	session := mustBuild(t, f, twoShopInput())

	orders, err := f.service.SettleCheckoutSession(context.Background(), session.ID, ports.PaymentConfirmation{
		AmountCents: session.GrandTotalCents - 1,
	})
	assert.ErrorIs(t, err, application.ErrPaymentMismatch)
	assert.Empty(t, orders)

	stored, err := f.sessions.Get(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOpen, stored.Status)
	assert.Empty(t, stored.MintedOrderIDs)
}

func TestSettleCheckoutSession_ExpiredSession(t *testing.T) {
	f := newFixture(t)
	session := mustBuild(t, f, twoShopInput())

	f.now = f.now.Add(application.DefaultSessionTTL + time.Second)
	orders, err := f.service.SettleCheckoutSession(context.Background(), session.ID, ports.PaymentConfirmation{
		AmountCents: session.GrandTotalCents,
	})
	assert.ErrorIs(t, err, application.ErrSessionExpired)
	assert.Empty(t, orders)
}

func TestSettleCheckoutSession_AlreadySettled(t *testing.T) {
	f := newFixture(t)
	session := mustBuild(t, f, twoShopInput())

	confirmation := ports.PaymentConfirmation{AmountCents: session.GrandTotalCents}
	_, err := f.service.SettleCheckoutSession(context.Background(), session.ID, confirmation)
	require.NoError(t, err)

	_, err = f.service.SettleCheckoutSession(context.Background(), session.ID, confirmation)
	assert.ErrorIs(t, err, application.ErrSessionSettled)
}

func TestSettleCheckoutSession_UnknownSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.SettleCheckoutSession(context.Background(), "no-such-session", ports.PaymentConfirmation{})
	assert.ErrorIs(t, err, application.ErrNotFound)
}

func TestSettleCheckoutSession_PartialFailureKeepsCommittedOrders(t *testing.T) {
	storeDown := errors.New("shop-y store unavailable")
	orders := &failingOrderRepo{
		OrderRepository: memory.NewRepository(),
		failShopID:      "shop-y",
		failErr:         storeDown,
	}
	f := newFixtureWithOrders(t, orders)
	session := mustBuild(t, f, twoShopInput())

	created, err := f.service.SettleCheckoutSession(context.Background(), session.ID, ports.PaymentConfirmation{
		AmountCents: session.GrandTotalCents,
	})

	var shopErr *application.ShopSettlementError
	require.ErrorAs(t, err, &shopErr)
	assert.Equal(t, "shop-y", shopErr.ShopID)
	assert.Equal(t, session.ID, shopErr.SessionID)
	assert.ErrorIs(t, err, storeDown)

	// The shop-x order committed before the failure and stays committed.
	require.Len(t, created, 1)
	assert.Equal(t, "shop-x", created[0].ShopID)

	stored, err := f.sessions.Get(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOpen, stored.Status)
	assert.Equal(t, []domain.OrderIdentifier{created[0].Identifier}, stored.MintedOrderIDs)
	assert.Empty(t, f.events.payloads())
}

func mustBuild(t *testing.T, f *fixture, input ports.BuildSessionInput) *domain.CheckoutSession {
	t.Helper()
	session, err := f.service.BuildCheckoutSession(context.Background(), input)
	require.NoError(t, err)
	return session
}
