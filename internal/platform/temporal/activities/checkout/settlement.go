package checkout

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/vendormesh/checkout/internal/domains/checkout/application"
	"github.com/vendormesh/checkout/internal/domains/checkout/ports"
	checkoutworkflows "github.com/vendormesh/checkout/internal/platform/temporal/workflows/checkout"
)

// Activities groups activities operating on the checkout bounded context.
type Activities struct {
	service ports.Service
}

// NewActivities wires the checkout service into the Temporal activities bundle.
func NewActivities(service ports.Service) *Activities {
	return &Activities{service: service}
}

// SettleSession runs settlement for one confirmed session. Terminal checkout
// failures are marked non-retryable so the workflow surfaces them instead of
// re-running a non-idempotent settlement.
func (a *Activities) SettleSession(ctx context.Context, input checkoutworkflows.SettlementWorkflowInput) (*checkoutworkflows.SettlementResult, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("settle session activity not initialized", "sessionId", input.SessionID)
		return nil, errors.New("settle session activity not initialized")
	}
	logger.Info("SettleSession activity started", "sessionId", input.SessionID)
	orders, err := a.service.SettleCheckoutSession(ctx, input.SessionID, input.Confirmation)
	if err != nil {
		logger.Error("SettleSession activity failed", "sessionId", input.SessionID, "error", err)
		if isTerminalCheckoutError(err) {
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), "CheckoutSettlementFailed", err)
		}
		return nil, err
	}
	logger.Info("SettleSession activity completed", "sessionId", input.SessionID, "orders", len(orders))
	return &checkoutworkflows.SettlementResult{Orders: orders}, nil
}

func isTerminalCheckoutError(err error) bool {
	return errors.Is(err, application.ErrValidation) ||
		errors.Is(err, application.ErrNotFound) ||
		errors.Is(err, application.ErrSessionExpired) ||
		errors.Is(err, application.ErrSessionSettled) ||
		errors.Is(err, application.ErrPaymentMismatch) ||
		errors.Is(err, application.ErrAllocationExhausted)
}
