package application

import (
	"context"
	"fmt"
	"time"

	"github.com/vendormesh/checkout/internal/domains/checkout/domain"
	"github.com/vendormesh/checkout/internal/domains/checkout/ports"
)

// Settlement converts a confirmed payment plus an open checkout session into
// one persisted order per seller. Shops settle sequentially and independently:
// a failure after some shops committed leaves those orders in place and is
// reported per shop for manual reconciliation. There is no compensating
// transaction across shops.
type Settlement struct {
	sessions  ports.SessionStore
	orders    ports.OrderRepository
	allocator *Allocator
	emitter   *EventEmitter
	clock     func() time.Time
}

// SettlementOption customizes settlement construction.
type SettlementOption func(*Settlement)

// WithSettlementClock overrides the time source for tests.
func WithSettlementClock(clock func() time.Time) SettlementOption {
	return func(s *Settlement) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewSettlement wires the settlement orchestrator.
func NewSettlement(sessions ports.SessionStore, orders ports.OrderRepository, allocator *Allocator, emitter *EventEmitter, opts ...SettlementOption) *Settlement {
	s := &Settlement{
		sessions:  sessions,
		orders:    orders,
		allocator: allocator,
		emitter:   emitter,
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Settle mints one order per shop in the session. It returns every order that
// committed, even when a later shop fails; callers inspect the returned
// ShopSettlementError to know where reconciliation must pick up.
func (s *Settlement) Settle(ctx context.Context, sessionID string, confirmation ports.PaymentConfirmation) ([]*domain.Order, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, mapError(err)
	}
	now := s.clock()
	if err := session.Settleable(now); err != nil {
		return nil, mapError(err)
	}
	if confirmation.AmountCents != session.GrandTotalCents {
		return nil, fmt.Errorf("%w: confirmed %d, session total %d",
			ErrPaymentMismatch, confirmation.AmountCents, session.GrandTotalCents)
	}

	var created []*domain.Order
	for _, shopID := range session.ShopIDs() {
		order := &domain.Order{
			ShopID:        shopID,
			UserID:        session.UserID,
			SessionID:     session.ID,
			Items:         session.ItemsForShop(shopID),
			SubtotalCents: session.PerShopSubtotal[shopID],
			CreatedAt:     now,
		}
		identifier, err := s.allocator.Allocate(ctx, shopID, func(ctx context.Context, candidate domain.OrderIdentifier) error {
			order.Identifier = candidate
			return s.orders.Create(ctx, order)
		})
		if err != nil {
			return created, &ShopSettlementError{SessionID: session.ID, ShopID: shopID, Err: err}
		}
		if err := s.sessions.AppendMintedIdentifier(ctx, session.ID, identifier); err != nil {
			return append(created, order), &ShopSettlementError{SessionID: session.ID, ShopID: shopID, Err: err}
		}
		session.MintedOrderIDs = append(session.MintedOrderIDs, identifier)
		created = append(created, order)
	}

	if err := s.sessions.MarkSettled(ctx, session.ID); err != nil {
		return created, mapError(err)
	}
	session.Status = domain.StatusSettled

	for _, order := range created {
		s.emitter.Emit(order.Identifier.String(), ports.OrderCreatedEvent{
			EventType:     "order.created",
			OrderID:       order.Identifier.String(),
			ShopID:        order.ShopID,
			UserID:        order.UserID,
			SessionID:     order.SessionID,
			SubtotalCents: order.SubtotalCents,
			OccurredAt:    now,
		})
	}
	orderIDs := make([]string, 0, len(created))
	for _, order := range created {
		orderIDs = append(orderIDs, order.Identifier.String())
	}
	s.emitter.Emit(session.ID, ports.SessionSettledEvent{
		EventType:       "checkout.settled",
		SessionID:       session.ID,
		UserID:          session.UserID,
		GrandTotalCents: session.GrandTotalCents,
		OrderIDs:        orderIDs,
		OccurredAt:      now,
	})

	return created, nil
}
