package http

import (
	"time"

	"github.com/vendormesh/checkout/internal/domains/checkout/domain"
	"github.com/vendormesh/checkout/internal/domains/checkout/ports"
)

type cartItemRequest struct {
	ID              string            `json:"id" binding:"required"`
	Quantity        int32             `json:"quantity" binding:"required"`
	UnitPriceCents  int64             `json:"unitPriceCents"`
	ShopID          string            `json:"shopId" binding:"required"`
	SelectedOptions map[string]string `json:"selectedOptions,omitempty"`
}

type couponRequest struct {
	Code           string `json:"code"`
	PercentOff     int64  `json:"percentOff,omitempty"`
	AmountOffCents int64  `json:"amountOffCents,omitempty"`
	TargetItemID   string `json:"targetItemId,omitempty"`
}

type buildSessionRequest struct {
	Items             []cartItemRequest `json:"items" binding:"required"`
	ShippingAddressID string            `json:"shippingAddressId" binding:"required"`
	Coupon            *couponRequest    `json:"coupon,omitempty"`
}

type settleRequest struct {
	PaymentID   string `json:"paymentId" binding:"required"`
	AmountCents int64  `json:"amountCents"`
	Currency    string `json:"currency"`
}

func (r buildSessionRequest) toInput(userID string) ports.BuildSessionInput {
	items := make([]domain.CartItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, domain.CartItem{
			ID:              item.ID,
			Quantity:        item.Quantity,
			UnitPriceCents:  item.UnitPriceCents,
			ShopID:          item.ShopID,
			SelectedOptions: item.SelectedOptions,
		})
	}
	input := ports.BuildSessionInput{
		UserID:            userID,
		Cart:              items,
		ShippingAddressID: r.ShippingAddressID,
	}
	if r.Coupon != nil {
		input.Coupon = &domain.Coupon{
			Code:           r.Coupon.Code,
			PercentOff:     r.Coupon.PercentOff,
			AmountOffCents: r.Coupon.AmountOffCents,
			TargetItemID:   r.Coupon.TargetItemID,
		}
	}
	return input
}

type sessionResponse struct {
	SessionID       string           `json:"sessionId"`
	PerShopSubtotal map[string]int64 `json:"perShopSubtotal"`
	GrandTotalCents int64            `json:"grandTotalCents"`
	ExpiresAt       time.Time        `json:"expiresAt"`
}

func toSessionResponse(session *domain.CheckoutSession) sessionResponse {
	return sessionResponse{
		SessionID:       session.ID,
		PerShopSubtotal: session.PerShopSubtotal,
		GrandTotalCents: session.GrandTotalCents,
		ExpiresAt:       session.ExpiresAt,
	}
}

type orderResponse struct {
	OrderID       string    `json:"orderId"`
	ShopID        string    `json:"shopId"`
	SubtotalCents int64     `json:"subtotalCents"`
	CreatedAt     time.Time `json:"createdAt"`
}

type settlementResponse struct {
	Orders []orderResponse `json:"orders"`
}

func toSettlementResponse(orders []*domain.Order) settlementResponse {
	resp := settlementResponse{Orders: make([]orderResponse, 0, len(orders))}
	for _, order := range orders {
		resp.Orders = append(resp.Orders, orderResponse{
			OrderID:       order.Identifier.String(),
			ShopID:        order.ShopID,
			SubtotalCents: order.SubtotalCents,
			CreatedAt:     order.CreatedAt,
		})
	}
	return resp
}
