package domain

import "errors"

var (
	ErrInvalidCoupon = errors.New("coupon must use exactly one discount mode")
)

// Coupon is a discount in one of two modes: percentage off or fixed amount
// off. When TargetItemID is set the discount applies only to that item's line
// total, otherwise to the shop or grand subtotal.
type Coupon struct {
	Code           string
	PercentOff     int64
	AmountOffCents int64
	TargetItemID   string
}

// Validate ensures exactly one discount mode is active.
func (c *Coupon) Validate() error {
	percentage := c.PercentOff > 0
	fixed := c.AmountOffCents > 0
	if percentage == fixed {
		return ErrInvalidCoupon
	}
	if percentage && c.PercentOff > 100 {
		return ErrInvalidCoupon
	}
	return nil
}

// ApplyCoupon computes per-shop subtotals after applying the coupon to the
// grouped cart. It is pure and idempotent: the same inputs always produce the
// same output, and repeated application to the same base amounts yields the
// same result. A targeted coupon whose item is not in the cart is a no-op.
// Percentage discounts floor to minor currency units; fixed amounts clamp the
// target at zero and never drive a subtotal negative.
func ApplyCoupon(c *Coupon, grouped map[string][]CartItem) map[string]int64 {
	subtotals := ShopSubtotals(grouped)
	if c == nil {
		return subtotals
	}
	if c.TargetItemID != "" {
		applyTargeted(c, grouped, subtotals)
		return subtotals
	}
	if c.PercentOff > 0 {
		for shopID, subtotal := range subtotals {
			subtotals[shopID] = subtotal * (100 - c.PercentOff) / 100
		}
		return subtotals
	}
	applyCartAmount(c.AmountOffCents, subtotals)
	return subtotals
}

func applyTargeted(c *Coupon, grouped map[string][]CartItem, subtotals map[string]int64) {
	for shopID, items := range grouped {
		for _, item := range items {
			if item.ID != c.TargetItemID {
				continue
			}
			line := item.LineTotalCents()
			discount := line
			if c.PercentOff > 0 {
				discount = line - line*(100-c.PercentOff)/100
			} else if c.AmountOffCents < line {
				discount = c.AmountOffCents
			}
			subtotals[shopID] -= discount
			if subtotals[shopID] < 0 {
				subtotals[shopID] = 0
			}
			return
		}
	}
}

// applyCartAmount spreads a cart-wide fixed discount across shops in
// ascending shop id order, clamping each shop at zero and carrying the
// remainder forward.
func applyCartAmount(amount int64, subtotals map[string]int64) {
	remaining := amount
	for _, shopID := range SortedShopIDs(subtotals) {
		if remaining <= 0 {
			return
		}
		discount := remaining
		if subtotals[shopID] < discount {
			discount = subtotals[shopID]
		}
		subtotals[shopID] -= discount
		remaining -= discount
	}
}
