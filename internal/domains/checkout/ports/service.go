package ports

import (
	"context"

	"github.com/vendormesh/checkout/internal/domains/checkout/domain"
)

// BuildSessionInput carries everything needed to open a checkout session for
// an authenticated principal.
type BuildSessionInput struct {
	UserID            string
	Cart              []domain.CartItem
	ShippingAddressID string
	Coupon            *domain.Coupon
}

// PaymentConfirmation is produced by the external payment capability once a
// charge succeeded. This context only consumes it.
type PaymentConfirmation struct {
	PaymentID   string
	AmountCents int64
	Currency    string
}

// Service exposes the checkout bounded context upward.
type Service interface {
	BuildCheckoutSession(ctx context.Context, input BuildSessionInput) (*domain.CheckoutSession, error)
	SettleCheckoutSession(ctx context.Context, sessionID string, confirmation PaymentConfirmation) ([]*domain.Order, error)
}
