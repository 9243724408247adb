package workflows

import (
	"context"
	"errors"
	"fmt"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/sdk/client"

	"github.com/vendormesh/checkout/internal/domains/checkout/domain"
	"github.com/vendormesh/checkout/internal/domains/checkout/ports"
	checkoutworkflows "github.com/vendormesh/checkout/internal/platform/temporal/workflows/checkout"
)

var (
	_ ports.SettlementOrchestrator = (*TemporalSettlement)(nil)
	_ ports.SettlementOrchestrator = (*InlineSettlement)(nil)
)

// TemporalSettlement runs settlement on a Temporal cluster. The workflow ID
// is derived from the session ID, so a duplicated payment confirmation
// attaches to the already-running settlement instead of starting a second one.
type TemporalSettlement struct {
	client    client.Client
	taskQueue string
}

// NewTemporalSettlement wires a Temporal client into the orchestrator.
func NewTemporalSettlement(c client.Client) *TemporalSettlement {
	return &TemporalSettlement{client: c, taskQueue: checkoutworkflows.SettlementTaskQueue}
}

// Settle starts (or joins) the settlement workflow for the session.
func (o *TemporalSettlement) Settle(ctx context.Context, sessionID string, confirmation ports.PaymentConfirmation) ([]*domain.Order, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal settlement not configured")
	}
	options := client.StartWorkflowOptions{
		ID:        fmt.Sprintf("checkout-settlement-%s", sessionID),
		TaskQueue: o.taskQueue,
	}
	input := checkoutworkflows.SettlementWorkflowInput{
		SessionID:    sessionID,
		Confirmation: confirmation,
		TraceID:      traceIDFromContext(ctx),
	}
	run, err := o.client.ExecuteWorkflow(ctx, options, checkoutworkflows.SettlementWorkflow, input)
	if err != nil {
		return nil, err
	}
	var result checkoutworkflows.SettlementResult
	if err := run.Get(ctx, &result); err != nil {
		return nil, err
	}
	return result.Orders, nil
}

// InlineSettlement executes settlement directly without Temporal, useful for
// tests or dev fallbacks.
type InlineSettlement struct {
	service ports.Service
}

// NewInlineSettlement wraps the checkout service for synchronous execution.
func NewInlineSettlement(service ports.Service) *InlineSettlement {
	return &InlineSettlement{service: service}
}

// Settle delegates to the application service without durable orchestration.
func (o *InlineSettlement) Settle(ctx context.Context, sessionID string, confirmation ports.PaymentConfirmation) ([]*domain.Order, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline settlement not configured")
	}
	return o.service.SettleCheckoutSession(ctx, sessionID, confirmation)
}

func traceIDFromContext(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if span == nil {
		return ""
	}
	spanCtx := span.SpanContext()
	if !spanCtx.IsValid() || !spanCtx.TraceID().IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
