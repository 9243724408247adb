package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vendormesh/checkout/internal/domains/checkout/application"
	"github.com/vendormesh/checkout/internal/domains/checkout/domain"
	"github.com/vendormesh/checkout/internal/domains/checkout/ports"
	sharederrors "github.com/vendormesh/checkout/internal/shared/errors"
)

// Handler exposes the checkout core over HTTP. Authentication happens
// upstream; the authenticated principal arrives in the X-User-ID header.
type Handler struct {
	service      ports.Service
	orchestrator ports.SettlementOrchestrator
	responder    *sharederrors.ChainedResponder
}

// New wires the HTTP handler. The orchestrator handles settlement so durable
// execution can be swapped in without touching the routes.
func New(service ports.Service, orchestrator ports.SettlementOrchestrator) *Handler {
	return &Handler{
		service:      service,
		orchestrator: orchestrator,
		responder:    sharederrors.NewChainedResponder("", mapCheckoutError),
	}
}

// Register mounts the checkout routes.
func (h *Handler) Register(router gin.IRouter) {
	router.POST("/checkout/sessions", h.buildSession)
	router.POST("/checkout/sessions/:id/settle", h.settleSession)
}

func (h *Handler) buildSession(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		h.responder.Respond(c, sharederrors.ErrUnauthorized.WithDetail("missing authenticated principal"))
		return
	}
	var req buildSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.Respond(c, sharederrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	session, err := h.service.BuildCheckoutSession(c.Request.Context(), req.toInput(userID))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toSessionResponse(session))
}

func (h *Handler) settleSession(c *gin.Context) {
	var req settleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.Respond(c, sharederrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	sessionID := c.Param("id")
	orders, err := h.orchestrator.Settle(c.Request.Context(), sessionID, ports.PaymentConfirmation{
		PaymentID:   req.PaymentID,
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
	})
	if err != nil {
		var shopErr *application.ShopSettlementError
		if errors.As(err, &shopErr) {
			committed := make([]string, 0, len(orders))
			for _, order := range orders {
				committed = append(committed, order.Identifier.String())
			}
			h.responder.Respond(c, sharederrors.NewSettlementIncompleteProblem(shopErr.SessionID, shopErr.ShopID, committed))
			return
		}
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSettlementResponse(orders))
}

// mapCheckoutError translates the application taxonomy into problem details:
// Expired and Validation mean "retry the whole checkout", PaymentMismatch and
// AllocationExhausted mean "contact support / manual reconciliation".
func mapCheckoutError(err error) (sharederrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, application.ErrValidation):
		return sharederrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, application.ErrNotFound):
		return sharederrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, application.ErrSessionExpired):
		return sharederrors.ErrSessionExpired.WithDetail(err.Error()), true
	case errors.Is(err, application.ErrSessionSettled):
		return sharederrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, application.ErrPaymentMismatch):
		return sharederrors.ErrPaymentMismatch.WithDetail(err.Error()), true
	case errors.Is(err, domain.ErrInvalidCoupon):
		return sharederrors.ErrValidation.WithDetail(err.Error()), true
	}
	return sharederrors.ProblemDetail{}, false
}
