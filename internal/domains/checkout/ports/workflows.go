package ports

import (
	"context"

	"github.com/vendormesh/checkout/internal/domains/checkout/domain"
)

// SettlementOrchestrator runs settlement either inline or on a durable
// workflow engine. Implementations must preserve the per-shop failure
// semantics of the underlying service: committed sibling orders stay
// committed when a later shop fails.
type SettlementOrchestrator interface {
	Settle(ctx context.Context, sessionID string, confirmation PaymentConfirmation) ([]*domain.Order, error)
}
