package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/vendormesh/checkout/internal/domains/checkout/domain"
	"github.com/vendormesh/checkout/internal/domains/checkout/ports"
)

var _ ports.OrderRepository = (*Repository)(nil)

// Repository is an in-memory order persistence adapter. It mirrors the
// relational adapter's semantics: a unique index on the order identifier and
// a creation-ordered scan for the latest sequence per shop/year prefix.
type Repository struct {
	mu     sync.RWMutex
	orders map[domain.OrderIdentifier]*domain.Order
	minted []domain.OrderIdentifier
}

func NewRepository() *Repository {
	return &Repository{orders: map[domain.OrderIdentifier]*domain.Order{}}
}

func (r *Repository) Create(_ context.Context, order *domain.Order) error {
	if order == nil {
		return errors.New("order is nil")
	}
	if err := order.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.orders[order.Identifier]; exists {
		return ports.ErrIdentifierTaken
	}
	clone := cloneOrder(order)
	r.orders[order.Identifier] = clone
	r.minted = append(r.minted, order.Identifier)
	return nil
}

func (r *Repository) GetByIdentifier(_ context.Context, id domain.OrderIdentifier) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return cloneOrder(order), nil
}

func (r *Repository) LatestSequence(_ context.Context, shopCode string, year int) (int, bool, error) {
	prefix := domain.IdentifierPrefix(shopCode, year)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := len(r.minted) - 1; i >= 0; i-- {
		id := r.minted[i]
		if !strings.HasPrefix(string(id), prefix) {
			continue
		}
		seq, err := id.Sequence()
		if err != nil {
			return 0, false, nil
		}
		return seq, true, nil
	}
	return 0, false, nil
}

func (r *Repository) ListBySession(_ context.Context, sessionID string) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []*domain.Order
	for _, id := range r.minted {
		if order := r.orders[id]; order.SessionID == sessionID {
			list = append(list, cloneOrder(order))
		}
	}
	return list, nil
}

func cloneOrder(order *domain.Order) *domain.Order {
	clone := *order
	clone.Items = make([]domain.CartItem, 0, len(order.Items))
	for _, item := range order.Items {
		clone.Items = append(clone.Items, item.Clone())
	}
	return &clone
}
