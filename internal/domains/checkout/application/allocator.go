package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vendormesh/checkout/internal/domains/checkout/domain"
	"github.com/vendormesh/checkout/internal/domains/checkout/ports"
)

// AllocationBudget bounds how many uniqueness conflicts one allocation
// tolerates before giving up. Bounded by attempt count, not wall clock, so
// behaviour stays deterministic under test.
const AllocationBudget = 10

// Allocator mints shop-scoped, year-bucketed order identifiers. It is an
// optimistic-concurrency loop: read the last sequence, then try to reserve
// candidates until the store's unique constraint lets one through. The
// constraint is the safety net; the read is only a fast path that usually
// succeeds on the first attempt. Sequences are best-effort monotonic, with
// gaps possible but never duplicates.
type Allocator struct {
	shops  ports.ShopRepository
	orders ports.OrderRepository
	clock  func() time.Time
}

// AllocatorOption customizes allocator construction.
type AllocatorOption func(*Allocator)

// WithAllocatorClock overrides the time source, fixing the allocation year
// in tests.
func WithAllocatorClock(clock func() time.Time) AllocatorOption {
	return func(a *Allocator) {
		if clock != nil {
			a.clock = clock
		}
	}
}

// NewAllocator wires the allocator with its store collaborators.
func NewAllocator(shops ports.ShopRepository, orders ports.OrderRepository, opts ...AllocatorOption) *Allocator {
	a := &Allocator{shops: shops, orders: orders, clock: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Allocate mints the next identifier for the shop and hands each candidate to
// reserve, which must attempt the unique-constrained insert claiming it.
// A reserve returning ports.ErrIdentifierTaken means a concurrent allocator
// won the race; the candidate is incremented and retried up to the budget.
// Missing shops or an unset shop code are configuration defects and are never
// retried.
func (a *Allocator) Allocate(ctx context.Context, shopID string, reserve func(ctx context.Context, id domain.OrderIdentifier) error) (domain.OrderIdentifier, error) {
	shop, err := a.shops.GetByID(ctx, shopID)
	if err != nil {
		return "", mapError(err)
	}
	if shop.Code == "" {
		return "", fmt.Errorf("%w: shop %s: %w", ErrNotFound, shopID, domain.ErrMissingShopCode)
	}

	year := a.clock().Year() % 100
	sequence := 1
	if last, ok, err := a.orders.LatestSequence(ctx, shop.Code, year); err != nil {
		return "", err
	} else if ok {
		sequence = last + 1
	}

	for attempt := 0; attempt < AllocationBudget; attempt++ {
		candidate, err := domain.NewOrderIdentifier(shop.Code, year, sequence)
		if err != nil {
			return "", &AllocationExhaustedError{ShopID: shopID, Year: year, LastSequence: sequence}
		}
		err = reserve(ctx, candidate)
		if errors.Is(err, ports.ErrIdentifierTaken) {
			sequence++
			continue
		}
		if err != nil {
			return "", err
		}
		return candidate, nil
	}
	return "", &AllocationExhaustedError{ShopID: shopID, Year: year, LastSequence: sequence - 1}
}
