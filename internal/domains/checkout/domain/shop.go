package domain

import "errors"

var ErrMissingShopCode = errors.New("shop has no code assigned")

// Shop is the seller-facing storefront. Code is assigned at creation and
// immutable; it is embedded in every order identifier minted for the shop.
// This context only ever reads shops.
type Shop struct {
	ID       string
	Code     string
	Name     string
	SellerID string
}

// SellerData is the payout routing resolved once per checkout session and
// frozen for the session's lifetime.
type SellerData struct {
	ShopID              string
	SellerID            string
	PayoutDestinationID string
}
