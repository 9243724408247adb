package memory

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"

	"github.com/vendormesh/checkout/internal/domains/checkout/domain"
	"github.com/vendormesh/checkout/internal/domains/checkout/ports"
)

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore keeps checkout sessions in memory.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.CheckoutSession
	clock    func() time.Time
}

// SessionStoreOption customizes store construction.
type SessionStoreOption func(*SessionStore)

// WithSessionStoreClock overrides the time source for tests.
func WithSessionStoreClock(clock func() time.Time) SessionStoreOption {
	return func(s *SessionStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewSessionStore(opts ...SessionStoreOption) *SessionStore {
	s := &SessionStore{sessions: map[string]*domain.CheckoutSession{}, clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SessionStore) Save(_ context.Context, session *domain.CheckoutSession) error {
	if session == nil {
		return errors.New("session is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = cloneSession(session)
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (*domain.CheckoutSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return cloneSession(session), nil
}

func (s *SessionStore) AppendMintedIdentifier(_ context.Context, sessionID string, id domain.OrderIdentifier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return ports.ErrNotFound
	}
	session.MintedOrderIDs = append(session.MintedOrderIDs, id)
	return nil
}

func (s *SessionStore) MarkSettled(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return ports.ErrNotFound
	}
	if err := session.MarkSettled(s.clock()); err != nil {
		return err
	}
	return nil
}

func (s *SessionStore) PurgeExpired(_ context.Context) (int64, error) {
	now := s.clock()
	s.mu.Lock()
	defer s.mu.Unlock()
	var purged int64
	for id, session := range s.sessions {
		if session.Status == domain.StatusSettled || session.ExpiredAt(now) {
			delete(s.sessions, id)
			purged++
		}
	}
	return purged, nil
}

func cloneSession(session *domain.CheckoutSession) *domain.CheckoutSession {
	clone := *session
	clone.Cart = make([]domain.CartItem, 0, len(session.Cart))
	for _, item := range session.Cart {
		clone.Cart = append(clone.Cart, item.Clone())
	}
	clone.Sellers = append([]domain.SellerData(nil), session.Sellers...)
	clone.PerShopSubtotal = maps.Clone(session.PerShopSubtotal)
	clone.MintedOrderIDs = append([]domain.OrderIdentifier(nil), session.MintedOrderIDs...)
	if session.Coupon != nil {
		coupon := *session.Coupon
		clone.Coupon = &coupon
	}
	return &clone
}
