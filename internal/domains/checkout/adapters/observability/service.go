package observability

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/vendormesh/checkout/internal/domains/checkout/application"
	"github.com/vendormesh/checkout/internal/domains/checkout/domain"
	"github.com/vendormesh/checkout/internal/domains/checkout/ports"
)

const tracerName = "github.com/vendormesh/checkout/internal/domains/checkout/adapters/observability/service"

// Service decorates the checkout service with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core checkout service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:  inner,
		tracer: nooptrace.NewTracerProvider().Tracer(tracerName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) BuildCheckoutSession(ctx context.Context, input ports.BuildSessionInput) (*domain.CheckoutSession, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.BuildCheckoutSession",
		trace.WithAttributes(
			attribute.String("checkout.user_id", input.UserID),
			attribute.Int("checkout.cart_size", len(input.Cart)),
		))
	defer span.End()

	session, err := s.inner.BuildCheckoutSession(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to build checkout session",
			slog.String("user.id", input.UserID))
	}
	span.SetAttributes(
		attribute.String("checkout.session_id", session.ID),
		attribute.Int("checkout.shop_count", len(session.PerShopSubtotal)),
	)
	s.metrics.recordSessionBuilt(ctx, len(session.PerShopSubtotal))
	s.logInfo(ctx, "checkout session built",
		slog.String("session.id", session.ID),
		slog.Int("shops", len(session.PerShopSubtotal)),
		slog.Int64("grand_total_cents", session.GrandTotalCents))
	return session, nil
}

func (s *Service) SettleCheckoutSession(ctx context.Context, sessionID string, confirmation ports.PaymentConfirmation) ([]*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.SettleCheckoutSession",
		trace.WithAttributes(
			attribute.String("checkout.session_id", sessionID),
			attribute.Int64("payment.amount_cents", confirmation.AmountCents),
		))
	defer span.End()

	orders, err := s.inner.SettleCheckoutSession(ctx, sessionID, confirmation)
	if err != nil {
		s.metrics.recordSettlement(ctx, settlementOutcome(err))
		var shopErr *application.ShopSettlementError
		if errors.As(err, &shopErr) {
			span.SetAttributes(attribute.String("checkout.failed_shop_id", shopErr.ShopID))
		}
		return orders, s.handleError(ctx, span, err, "settlement failed",
			slog.String("session.id", sessionID),
			slog.Int("orders.committed", len(orders)))
	}
	s.metrics.recordSettlement(ctx, "settled")
	s.logInfo(ctx, "checkout session settled",
		slog.String("session.id", sessionID),
		slog.Int("orders.created", len(orders)))
	return orders, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if s.logger != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	}
	return err
}

func settlementOutcome(err error) string {
	switch {
	case errors.Is(err, application.ErrSessionExpired):
		return "expired"
	case errors.Is(err, application.ErrPaymentMismatch):
		return "payment_mismatch"
	case errors.Is(err, application.ErrAllocationExhausted):
		return "allocation_exhausted"
	case errors.Is(err, application.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

type serviceMetrics struct {
	sessionsBuilt metric.Int64Counter
	settlements   metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	sessionsBuilt, _ := m.Int64Counter("checkout.service.sessions_built",
		metric.WithDescription("Number of checkout sessions built"))
	settlements, _ := m.Int64Counter("checkout.service.settlements",
		metric.WithDescription("Number of settlement attempts by outcome"))
	return serviceMetrics{sessionsBuilt: sessionsBuilt, settlements: settlements}
}

func (m serviceMetrics) recordSessionBuilt(ctx context.Context, shops int) {
	if m.sessionsBuilt != nil {
		m.sessionsBuilt.Add(ctx, 1, metric.WithAttributes(attribute.Int("checkout.shop_count", shops)))
	}
}

func (m serviceMetrics) recordSettlement(ctx context.Context, outcome string) {
	if m.settlements != nil {
		m.settlements.Add(ctx, 1, metric.WithAttributes(attribute.String("checkout.outcome", outcome)))
	}
}

var _ ports.Service = (*Service)(nil)
