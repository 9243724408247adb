package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCart(t *testing.T) {
	valid := []CartItem{{ID: "item-1", Quantity: 1, UnitPriceCents: 100, ShopID: "shop-1"}}
	require.NoError(t, ValidateCart(valid))

	assert.ErrorIs(t, ValidateCart(nil), ErrEmptyCart)
	assert.ErrorIs(t, ValidateCart([]CartItem{{ID: "i", UnitPriceCents: 100, ShopID: "s"}}), ErrInvalidQuantity)
	assert.ErrorIs(t, ValidateCart([]CartItem{{ID: "i", Quantity: 1, UnitPriceCents: -1, ShopID: "s"}}), ErrInvalidUnitPrice)
	assert.ErrorIs(t, ValidateCart([]CartItem{{ID: "i", Quantity: 1, UnitPriceCents: 100}}), ErrMissingShopID)
}

func TestLineTotalCents(t *testing.T) {
	item := CartItem{Quantity: 3, UnitPriceCents: 250}
	assert.Equal(t, int64(750), item.LineTotalCents())

	// Free items are valid; a zero price yields a zero line.
	free := CartItem{Quantity: 5, UnitPriceCents: 0}
	assert.Equal(t, int64(0), free.LineTotalCents())
}

func TestCartItemClone(t *testing.T) {
	item := CartItem{ID: "item-1", Quantity: 1, UnitPriceCents: 100, ShopID: "shop-1",
		SelectedOptions: map[string]string{"color": "red"}}

	clone := item.Clone()
	clone.SelectedOptions["color"] = "blue"
	assert.Equal(t, "red", item.SelectedOptions["color"])
}

func TestGroupByShopAndSubtotals(t *testing.T) {
	items := []CartItem{
		{ID: "a", Quantity: 1, UnitPriceCents: 100, ShopID: "shop-1"},
		{ID: "b", Quantity: 2, UnitPriceCents: 50, ShopID: "shop-2"},
		{ID: "c", Quantity: 1, UnitPriceCents: 300, ShopID: "shop-1"},
	}

	grouped := GroupByShop(items)
	require.Len(t, grouped, 2)
	assert.Len(t, grouped["shop-1"], 2)

	subtotals := ShopSubtotals(grouped)
	assert.Equal(t, int64(400), subtotals["shop-1"])
	assert.Equal(t, int64(100), subtotals["shop-2"])
}

func TestSortedShopIDs(t *testing.T) {
	ids := SortedShopIDs(map[string]int64{"zeta": 1, "alpha": 2, "mid": 3})
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, ids)
}
