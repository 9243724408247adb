package application

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vendormesh/checkout/internal/domains/checkout/domain"
	"github.com/vendormesh/checkout/internal/domains/checkout/ports"
)

// DefaultSessionTTL bounds how long an unconfirmed checkout session survives
// before the reaper removes it.
const DefaultSessionTTL = 30 * time.Minute

// SessionBuilder turns a flat cart into a persisted checkout session:
// it partitions items by seller, freezes payout routing, applies the coupon,
// and computes per-shop and grand totals. No identifiers are minted here;
// minting waits for payment confirmation so failed payments never burn
// sequence numbers.
type SessionBuilder struct {
	directory ports.SellerDirectory
	sessions  ports.SessionStore
	ttl       time.Duration
	clock     func() time.Time
	newID     func() string
}

// BuilderOption customizes session builder construction.
type BuilderOption func(*SessionBuilder)

// WithSessionTTL overrides the session expiry window.
func WithSessionTTL(ttl time.Duration) BuilderOption {
	return func(b *SessionBuilder) {
		if ttl > 0 {
			b.ttl = ttl
		}
	}
}

// WithBuilderClock overrides the time source for tests.
func WithBuilderClock(clock func() time.Time) BuilderOption {
	return func(b *SessionBuilder) {
		if clock != nil {
			b.clock = clock
		}
	}
}

// WithSessionIDGenerator overrides session id generation for tests.
func WithSessionIDGenerator(newID func() string) BuilderOption {
	return func(b *SessionBuilder) {
		if newID != nil {
			b.newID = newID
		}
	}
}

// NewSessionBuilder wires the builder with its collaborators.
func NewSessionBuilder(directory ports.SellerDirectory, sessions ports.SessionStore, opts ...BuilderOption) *SessionBuilder {
	b := &SessionBuilder{
		directory: directory,
		sessions:  sessions,
		ttl:       DefaultSessionTTL,
		clock:     time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build validates the cart, resolves sellers, applies the coupon, and
// persists a new open session. Validation and lookup failures reject the
// checkout before any write.
func (b *SessionBuilder) Build(ctx context.Context, input ports.BuildSessionInput) (*domain.CheckoutSession, error) {
	if err := domain.ValidateCart(input.Cart); err != nil {
		return nil, mapError(err)
	}
	if input.Coupon != nil {
		if err := input.Coupon.Validate(); err != nil {
			return nil, mapError(err)
		}
	}

	cart := make([]domain.CartItem, 0, len(input.Cart))
	for _, item := range input.Cart {
		cart = append(cart, item.Clone())
	}
	grouped := domain.GroupByShop(cart)

	sellers := make([]domain.SellerData, 0, len(grouped))
	for _, shopID := range domain.SortedShopIDs(grouped) {
		seller, err := b.directory.LookupPayoutDestination(ctx, shopID)
		if err != nil {
			return nil, mapError(err)
		}
		sellers = append(sellers, *seller)
	}

	subtotals := domain.ApplyCoupon(input.Coupon, grouped)
	var grandTotal int64
	for _, subtotal := range subtotals {
		grandTotal += subtotal
	}

	now := b.clock()
	session := &domain.CheckoutSession{
		ID:                b.newID(),
		UserID:            input.UserID,
		Cart:              cart,
		Sellers:           sellers,
		PerShopSubtotal:   subtotals,
		GrandTotalCents:   grandTotal,
		ShippingAddressID: input.ShippingAddressID,
		Coupon:            input.Coupon,
		Status:            domain.StatusOpen,
		CreatedAt:         now,
		ExpiresAt:         now.Add(b.ttl),
	}
	if err := b.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}
