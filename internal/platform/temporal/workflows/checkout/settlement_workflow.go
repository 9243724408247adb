package checkout

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/vendormesh/checkout/internal/domains/checkout/domain"
	"github.com/vendormesh/checkout/internal/domains/checkout/ports"
)

const (
	// SettlementWorkflowName is the public identifier for registering the workflow.
	SettlementWorkflowName = "checkout.workflows.Settlement"
	// SettlementTaskQueue is the queue consumed by the worker processing settlements.
	SettlementTaskQueue = "CHECKOUT_SETTLEMENT"
	// SettleSessionActivityName converts one confirmed session into per-seller orders.
	SettleSessionActivityName = "checkout.activities.SettleSession"
)

// SettlementWorkflowInput carries the confirmed payment for one session.
type SettlementWorkflowInput struct {
	SessionID    string
	Confirmation ports.PaymentConfirmation
	TraceID      string
}

// SettlementResult reports the orders minted for the session.
type SettlementResult struct {
	Orders []*domain.Order
}

// SettlementWorkflow runs settlement as a single activity. The activity is
// never retried automatically: cross-shop settlement is not atomic, so a
// partial failure needs manual reconciliation rather than a blind re-run.
func SettlementWorkflow(ctx workflow.Context, input SettlementWorkflowInput) (*SettlementResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("SettlementWorkflow started", withTraceID(input.TraceID, "sessionId", input.SessionID)...)

	options := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	var result SettlementResult
	if err := workflow.ExecuteActivity(ctx, SettleSessionActivityName, input).Get(ctx, &result); err != nil {
		logger.Error("SettlementWorkflow failed", withTraceID(input.TraceID, "sessionId", input.SessionID, "error", err)...)
		return nil, err
	}
	logger.Info("SettlementWorkflow completed", withTraceID(input.TraceID, "sessionId", input.SessionID, "orders", len(result.Orders))...)
	return &result, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
