package domain

import (
	"errors"
	"time"
)

// Status enumerates the checkout session lifecycle.
type Status string

const (
	StatusOpen    Status = "open"
	StatusSettled Status = "settled"
	StatusExpired Status = "expired"
)

var (
	ErrSessionSettled = errors.New("checkout session already settled")
	ErrSessionExpired = errors.New("checkout session expired")
	ErrInvalidStatus  = errors.New("checkout session status is invalid")
)

// CheckoutSession is the ephemeral aggregate bridging checkout initiation and
// payment confirmation. It exclusively owns its cart and seller snapshots:
// they are copied at build time so in-flight sessions never observe later
// catalog changes. Lifecycle: Open -> Settled | Expired; both end states are
// terminal.
type CheckoutSession struct {
	ID                string
	UserID            string
	Cart              []CartItem
	Sellers           []SellerData
	PerShopSubtotal   map[string]int64
	GrandTotalCents   int64
	ShippingAddressID string
	Coupon            *Coupon
	MintedOrderIDs    []OrderIdentifier
	Status            Status
	CreatedAt         time.Time
	ExpiresAt         time.Time
}

// ExpiredAt reports whether the session TTL lapsed at the given instant.
func (s *CheckoutSession) ExpiredAt(now time.Time) bool {
	return s.Status == StatusExpired || !now.Before(s.ExpiresAt)
}

// Settleable rejects settlement attempts against terminal sessions.
func (s *CheckoutSession) Settleable(now time.Time) error {
	switch {
	case s.Status == StatusSettled:
		return ErrSessionSettled
	case s.ExpiredAt(now):
		return ErrSessionExpired
	case s.Status != StatusOpen:
		return ErrInvalidStatus
	}
	return nil
}

// MarkSettled transitions the session into its terminal settled state.
func (s *CheckoutSession) MarkSettled(now time.Time) error {
	if err := s.Settleable(now); err != nil {
		return err
	}
	s.Status = StatusSettled
	return nil
}

// ShopIDs returns every shop participating in the session, sorted so
// settlement always walks shops in the same order.
func (s *CheckoutSession) ShopIDs() []string {
	return SortedShopIDs(s.PerShopSubtotal)
}

// ItemsForShop returns copies of the session's cart lines owned by one shop.
func (s *CheckoutSession) ItemsForShop(shopID string) []CartItem {
	var items []CartItem
	for _, item := range s.Cart {
		if item.ShopID == shopID {
			items = append(items, item.Clone())
		}
	}
	return items
}

// SellerForShop returns the resolved payout routing for one shop.
func (s *CheckoutSession) SellerForShop(shopID string) (SellerData, bool) {
	for _, seller := range s.Sellers {
		if seller.ShopID == shopID {
			return seller, true
		}
	}
	return SellerData{}, false
}
