package domain

import (
	"errors"
	"maps"
	"sort"
)

var (
	ErrEmptyCart        = errors.New("cart must contain at least one item")
	ErrInvalidQuantity  = errors.New("item quantity must be greater than zero")
	ErrInvalidUnitPrice = errors.New("item unit price must not be negative")
	ErrMissingShopID    = errors.New("item shop id is required")
)

// CartItem is a snapshot of one purchasable line at checkout time.
// Each item belongs to exactly one shop.
type CartItem struct {
	ID              string
	Quantity        int32
	UnitPriceCents  int64
	ShopID          string
	SelectedOptions map[string]string
}

// LineTotalCents returns quantity times unit price in minor currency units.
func (i CartItem) LineTotalCents() int64 {
	return int64(i.Quantity) * i.UnitPriceCents
}

// Validate enforces invariants on a single cart line.
func (i CartItem) Validate() error {
	if i.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if i.UnitPriceCents < 0 {
		return ErrInvalidUnitPrice
	}
	if i.ShopID == "" {
		return ErrMissingShopID
	}
	return nil
}

// Clone copies the item including its options map so later catalog or cart
// changes never leak into a persisted snapshot.
func (i CartItem) Clone() CartItem {
	clone := i
	if i.SelectedOptions != nil {
		clone.SelectedOptions = maps.Clone(i.SelectedOptions)
	}
	return clone
}

// ValidateCart checks the whole cart before any write happens.
func ValidateCart(items []CartItem) error {
	if len(items) == 0 {
		return ErrEmptyCart
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// GroupByShop partitions cart items by their owning shop.
func GroupByShop(items []CartItem) map[string][]CartItem {
	grouped := make(map[string][]CartItem)
	for _, item := range items {
		grouped[item.ShopID] = append(grouped[item.ShopID], item)
	}
	return grouped
}

// ShopSubtotals sums line totals per shop.
func ShopSubtotals(grouped map[string][]CartItem) map[string]int64 {
	subtotals := make(map[string]int64, len(grouped))
	for shopID, items := range grouped {
		var total int64
		for _, item := range items {
			total += item.LineTotalCents()
		}
		subtotals[shopID] = total
	}
	return subtotals
}

// SortedShopIDs returns the shop keys in ascending order so multi-shop
// operations run in a deterministic sequence.
func SortedShopIDs[V any](byShop map[string]V) []string {
	ids := make([]string, 0, len(byShop))
	for id := range byShop {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
