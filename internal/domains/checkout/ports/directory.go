package ports

import (
	"context"

	"github.com/vendormesh/checkout/internal/domains/checkout/domain"
)

// SellerDirectory resolves where a shop's share of a settlement should be
// paid out. A shop without a configured destination must not reach checkout,
// so lookups fail with ErrNotFound rather than returning a partial record.
type SellerDirectory interface {
	LookupPayoutDestination(ctx context.Context, shopID string) (*domain.SellerData, error)
}
