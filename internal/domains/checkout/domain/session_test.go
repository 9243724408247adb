package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSession(expiresAt time.Time) *CheckoutSession {
	return &CheckoutSession{
		ID:              "sess-1",
		UserID:          "user-1",
		Status:          StatusOpen,
		PerShopSubtotal: map[string]int64{"shop-b": 100, "shop-a": 200},
		ExpiresAt:       expiresAt,
	}
}

func TestSessionSettleable(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

	t.Run("open and within ttl", func(t *testing.T) {
		session := openSession(now.Add(time.Minute))
		require.NoError(t, session.Settleable(now))
	})

	t.Run("expired by ttl", func(t *testing.T) {
		session := openSession(now)
		assert.ErrorIs(t, session.Settleable(now), ErrSessionExpired)
	})

	t.Run("already settled", func(t *testing.T) {
		session := openSession(now.Add(time.Minute))
		session.Status = StatusSettled
		assert.ErrorIs(t, session.Settleable(now), ErrSessionSettled)
	})

	t.Run("unknown status", func(t *testing.T) {
		session := openSession(now.Add(time.Minute))
		session.Status = Status("draft")
		assert.ErrorIs(t, session.Settleable(now), ErrInvalidStatus)
	})
}

func TestSessionMarkSettledIsTerminal(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	session := openSession(now.Add(time.Minute))

	require.NoError(t, session.MarkSettled(now))
	assert.Equal(t, StatusSettled, session.Status)

	// Second settlement attempt against the terminal state must fail.
	assert.ErrorIs(t, session.MarkSettled(now), ErrSessionSettled)
}

func TestSessionShopIDsSorted(t *testing.T) {
	session := openSession(time.Now().Add(time.Minute))
	assert.Equal(t, []string{"shop-a", "shop-b"}, session.ShopIDs())
}

func TestSessionItemsForShopClones(t *testing.T) {
	session := openSession(time.Now().Add(time.Minute))
	session.Cart = []CartItem{
		{ID: "item-1", Quantity: 1, UnitPriceCents: 100, ShopID: "shop-a", SelectedOptions: map[string]string{"size": "M"}},
		{ID: "item-2", Quantity: 1, UnitPriceCents: 100, ShopID: "shop-b"},
	}

	items := session.ItemsForShop("shop-a")
	require.Len(t, items, 1)

	items[0].SelectedOptions["size"] = "L"
	assert.Equal(t, "M", session.Cart[0].SelectedOptions["size"])
}

func TestSessionSellerForShop(t *testing.T) {
	session := openSession(time.Now().Add(time.Minute))
	session.Sellers = []SellerData{{ShopID: "shop-a", SellerID: "seller-1", PayoutDestinationID: "dest-1"}}

	seller, ok := session.SellerForShop("shop-a")
	require.True(t, ok)
	assert.Equal(t, "dest-1", seller.PayoutDestinationID)

	_, ok = session.SellerForShop("shop-z")
	assert.False(t, ok)
}
