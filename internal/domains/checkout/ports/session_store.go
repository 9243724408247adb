package ports

import (
	"context"

	"github.com/vendormesh/checkout/internal/domains/checkout/domain"
)

// SessionStore persists TTL-bound checkout sessions between checkout
// initiation and settlement.
type SessionStore interface {
	Save(ctx context.Context, session *domain.CheckoutSession) error
	Get(ctx context.Context, id string) (*domain.CheckoutSession, error)
	// AppendMintedIdentifier records one allocated order identifier on the
	// session after the matching order committed.
	AppendMintedIdentifier(ctx context.Context, sessionID string, id domain.OrderIdentifier) error
	MarkSettled(ctx context.Context, sessionID string) error
	// PurgeExpired removes sessions past their TTL plus settled sessions,
	// returning how many were reaped. Used by housekeeping, not request paths.
	PurgeExpired(ctx context.Context) (int64, error)
}
