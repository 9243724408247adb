package ports

import (
	"context"
	"errors"

	"github.com/vendormesh/checkout/internal/domains/checkout/domain"
)

var (
	// ErrNotFound signals a missing shop, session, or order.
	ErrNotFound = errors.New("checkout resource not found")
	// ErrIdentifierTaken signals a unique-constraint conflict on an order
	// identifier: a concurrent allocator won the race for the candidate.
	ErrIdentifierTaken = errors.New("order identifier already reserved")
)

// OrderRepository persists per-seller orders behind a unique constraint on
// the order identifier. Create is the reservation step of identifier
// allocation: the insert either claims the identifier or fails with
// ErrIdentifierTaken inside the same transaction.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByIdentifier(ctx context.Context, id domain.OrderIdentifier) (*domain.Order, error)
	// LatestSequence returns the sequence number of the most recently
	// created order whose identifier carries the shop/year prefix, or
	// ok=false when no such order exists or its suffix cannot be parsed.
	LatestSequence(ctx context.Context, shopCode string, year int) (seq int, ok bool, err error)
	ListBySession(ctx context.Context, sessionID string) ([]*domain.Order, error)
}

// ShopRepository reads shop configuration. Shops are owned elsewhere; this
// context never writes them.
type ShopRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Shop, error)
}
