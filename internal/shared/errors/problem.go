// Package errors provides RFC 7807 Problem Details for HTTP APIs.
package errors

import (
	"fmt"
	"net/http"
)

// ProblemDetail represents an RFC 7807 Problem Details response.
// See: https://www.rfc-editor.org/rfc/rfc7807
type ProblemDetail struct {
	// Type is a URI reference that identifies the problem type.
	Type string `json:"type"`
	// Title is a short, human-readable summary of the problem type.
	Title string `json:"title"`
	// Status is the HTTP status code for this occurrence.
	Status int `json:"status"`
	// Detail is a human-readable explanation specific to this occurrence.
	Detail string `json:"detail,omitempty"`
	// Instance is a URI reference that identifies the specific occurrence.
	Instance string `json:"instance,omitempty"`
	// Extensions holds additional problem-specific properties.
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Error implements the error interface.
func (p ProblemDetail) Error() string {
	if p.Detail != "" {
		return fmt.Sprintf("%s: %s", p.Title, p.Detail)
	}
	return p.Title
}

// WithDetail returns a copy with the given detail message.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

// WithExtension returns a copy with an additional extension property.
func (p ProblemDetail) WithExtension(key string, value any) ProblemDetail {
	extensions := make(map[string]any, len(p.Extensions)+1)
	for k, v := range p.Extensions {
		extensions[k] = v
	}
	extensions[key] = value
	p.Extensions = extensions
	return p
}

// Problem types as URI references.
const (
	TypeValidation           = "/problems/validation-error"
	TypeNotFound             = "/problems/not-found"
	TypeConflict             = "/problems/conflict"
	TypeInternal             = "/problems/internal-error"
	TypeUnauthorized         = "/problems/unauthorized"
	TypeBadRequest           = "/problems/bad-request"
	TypeSessionExpired       = "/problems/session-expired"
	TypePaymentMismatch      = "/problems/payment-mismatch"
	TypeSettlementIncomplete = "/problems/settlement-incomplete"
)

// Pre-defined problem templates.
var (
	ErrNotFound = ProblemDetail{
		Type:   TypeNotFound,
		Title:  "Resource Not Found",
		Status: http.StatusNotFound,
	}

	ErrValidation = ProblemDetail{
		Type:   TypeValidation,
		Title:  "Validation Error",
		Status: http.StatusBadRequest,
	}

	ErrBadRequest = ProblemDetail{
		Type:   TypeBadRequest,
		Title:  "Bad Request",
		Status: http.StatusBadRequest,
	}

	ErrConflict = ProblemDetail{
		Type:   TypeConflict,
		Title:  "Conflict",
		Status: http.StatusConflict,
	}

	ErrInternal = ProblemDetail{
		Type:   TypeInternal,
		Title:  "Internal Server Error",
		Status: http.StatusInternalServerError,
	}

	ErrUnauthorized = ProblemDetail{
		Type:   TypeUnauthorized,
		Title:  "Unauthorized",
		Status: http.StatusUnauthorized,
	}

	// ErrSessionExpired tells the shopper to restart checkout: the session
	// TTL lapsed before payment confirmation arrived.
	ErrSessionExpired = ProblemDetail{
		Type:   TypeSessionExpired,
		Title:  "Checkout Session Expired",
		Status: http.StatusGone,
	}

	// ErrPaymentMismatch rejects a confirmation whose amount differs from
	// the session total by any margin.
	ErrPaymentMismatch = ProblemDetail{
		Type:   TypePaymentMismatch,
		Title:  "Payment Amount Mismatch",
		Status: http.StatusConflict,
	}

	// ErrSettlementIncomplete reports a partially committed settlement that
	// needs manual reconciliation.
	ErrSettlementIncomplete = ProblemDetail{
		Type:   TypeSettlementIncomplete,
		Title:  "Settlement Incomplete",
		Status: http.StatusInternalServerError,
	}
)

// NewValidationProblem creates a validation error with field-level details.
func NewValidationProblem(fieldErrors map[string]string) ProblemDetail {
	return ErrValidation.WithExtension("fields", fieldErrors)
}

// NewNotFoundProblem creates a not found error for a specific resource.
func NewNotFoundProblem(resourceType string, identifier any) ProblemDetail {
	return ErrNotFound.
		WithDetail(fmt.Sprintf("%s with identifier '%v' not found", resourceType, identifier)).
		WithExtension("resourceType", resourceType).
		WithExtension("identifier", identifier)
}

// NewSettlementIncompleteProblem reports which shop blocked settlement and
// which orders already committed so support can reconcile.
func NewSettlementIncompleteProblem(sessionID, shopID string, committedOrderIDs []string) ProblemDetail {
	return ErrSettlementIncomplete.
		WithDetail(fmt.Sprintf("settlement of session %s stopped at shop %s; committed orders are retained", sessionID, shopID)).
		WithExtension("sessionId", sessionID).
		WithExtension("shopId", shopID).
		WithExtension("committedOrderIds", committedOrderIDs)
}
