package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/vendormesh/checkout/internal/domains/checkout/domain"
	"github.com/vendormesh/checkout/internal/domains/checkout/ports"
)

// Service is the checkout facade combining the session builder and the
// settlement orchestrator behind the ports.Service contract.
type Service struct {
	builder    *SessionBuilder
	settlement *Settlement
}

// ServiceOption customizes service construction.
type ServiceOption func(*serviceConfig)

type serviceConfig struct {
	ttl    time.Duration
	clock  func() time.Time
	logger *slog.Logger
}

// WithTTL overrides the checkout session TTL.
func WithTTL(ttl time.Duration) ServiceOption {
	return func(c *serviceConfig) { c.ttl = ttl }
}

// WithClock overrides the time source across builder, allocator, and
// settlement so tests control years and expiry deterministically.
func WithClock(clock func() time.Time) ServiceOption {
	return func(c *serviceConfig) { c.clock = clock }
}

// WithLogger sets the logger used for swallowed event-emission failures.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(c *serviceConfig) { c.logger = logger }
}

// NewService wires the full checkout core from its port collaborators.
func NewService(
	shops ports.ShopRepository,
	directory ports.SellerDirectory,
	orders ports.OrderRepository,
	sessions ports.SessionStore,
	publisher ports.EventPublisher,
	opts ...ServiceOption,
) *Service {
	cfg := serviceConfig{ttl: DefaultSessionTTL, clock: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	allocator := NewAllocator(shops, orders, WithAllocatorClock(cfg.clock))
	emitter := NewEventEmitter(publisher, cfg.logger)
	return &Service{
		builder: NewSessionBuilder(directory, sessions,
			WithSessionTTL(cfg.ttl), WithBuilderClock(cfg.clock)),
		settlement: NewSettlement(sessions, orders, allocator, emitter,
			WithSettlementClock(cfg.clock)),
	}
}

// BuildCheckoutSession opens a new TTL-bound session for the cart.
func (s *Service) BuildCheckoutSession(ctx context.Context, input ports.BuildSessionInput) (*domain.CheckoutSession, error) {
	return s.builder.Build(ctx, input)
}

// SettleCheckoutSession converts a payment confirmation into per-seller orders.
func (s *Service) SettleCheckoutSession(ctx context.Context, sessionID string, confirmation ports.PaymentConfirmation) ([]*domain.Order, error) {
	return s.settlement.Settle(ctx, sessionID, confirmation)
}

var _ ports.Service = (*Service)(nil)
