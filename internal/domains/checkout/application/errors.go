package application

import (
	"errors"
	"fmt"

	"github.com/vendormesh/checkout/internal/domains/checkout/domain"
	"github.com/vendormesh/checkout/internal/domains/checkout/ports"
)

var (
	// ErrValidation signals bad input shape, rejected before any write.
	ErrValidation = errors.New("checkout validation failed")
	// ErrNotFound signals a missing shop, seller, or session.
	ErrNotFound = errors.New("checkout resource not found")
	// ErrSessionExpired means the session TTL lapsed; the caller must
	// rebuild the session and restart checkout.
	ErrSessionExpired = errors.New("checkout session expired")
	// ErrSessionSettled rejects settlement of an already terminal session.
	ErrSessionSettled = errors.New("checkout session already settled")
	// ErrAllocationExhausted means the identifier retry budget ran out for
	// one shop under sustained contention.
	ErrAllocationExhausted = errors.New("order identifier allocation exhausted")
	// ErrPaymentMismatch means the confirmed amount differs from the
	// session's grand total. Fatal; no orders are created.
	ErrPaymentMismatch = errors.New("payment amount does not match session total")
)

// AllocationExhaustedError carries enough context to diagnose sustained
// contention on one shop's sequence.
type AllocationExhaustedError struct {
	ShopID       string
	Year         int
	LastSequence int
}

func (e *AllocationExhaustedError) Error() string {
	return fmt.Sprintf("order identifier allocation exhausted for shop %s year %02d after sequence %d",
		e.ShopID, e.Year, e.LastSequence)
}

func (e *AllocationExhaustedError) Is(target error) bool {
	return target == ErrAllocationExhausted
}

// ShopSettlementError reports which shop failed mid-settlement. Sibling
// orders committed before the failure are not rolled back; the surrounding
// workflow reconciles manually.
type ShopSettlementError struct {
	SessionID string
	ShopID    string
	Err       error
}

func (e *ShopSettlementError) Error() string {
	return fmt.Sprintf("settlement of session %s failed at shop %s: %v", e.SessionID, e.ShopID, e.Err)
}

func (e *ShopSettlementError) Unwrap() error { return e.Err }

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ports.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidUnitPrice),
		errors.Is(err, domain.ErrMissingShopID),
		errors.Is(err, domain.ErrInvalidCoupon):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	case errors.Is(err, domain.ErrSessionExpired):
		return fmt.Errorf("%w: %w", ErrSessionExpired, err)
	case errors.Is(err, domain.ErrSessionSettled):
		return fmt.Errorf("%w: %w", ErrSessionSettled, err)
	}
	return err
}
