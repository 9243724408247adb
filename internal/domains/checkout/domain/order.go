package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MaxSequence is the largest order sequence representable in the six-digit
// identifier segment.
const MaxSequence = 999999

var (
	ErrMalformedIdentifier = errors.New("order identifier is malformed")
	ErrSequenceOverflow    = errors.New("order sequence exceeds six digits")
)

// OrderIdentifier is the human-readable, shop-scoped order key of the form
// S<shopCode>-<YY>-<seq6>. Global uniqueness is enforced by the store's
// unique constraint, never by formatting alone.
type OrderIdentifier string

// IdentifierPrefix builds the shop/year prefix shared by all identifiers a
// shop receives within one allocation year.
func IdentifierPrefix(shopCode string, year int) string {
	return fmt.Sprintf("S%s-%02d-", shopCode, year%100)
}

// NewOrderIdentifier formats a full identifier from its components.
func NewOrderIdentifier(shopCode string, year int, sequence int) (OrderIdentifier, error) {
	if sequence < 1 || sequence > MaxSequence {
		return "", ErrSequenceOverflow
	}
	return OrderIdentifier(fmt.Sprintf("%s%06d", IdentifierPrefix(shopCode, year), sequence)), nil
}

// Sequence extracts the trailing sequence number from the identifier.
func (id OrderIdentifier) Sequence() (int, error) {
	idx := strings.LastIndexByte(string(id), '-')
	if idx < 0 || idx == len(id)-1 {
		return 0, ErrMalformedIdentifier
	}
	seq, err := strconv.Atoi(string(id)[idx+1:])
	if err != nil || seq < 0 {
		return 0, ErrMalformedIdentifier
	}
	return seq, nil
}

func (id OrderIdentifier) String() string { return string(id) }

// Order is one seller's slice of a settled checkout session. It is created
// exactly once per (session, shop) pair and never mutated afterward.
type Order struct {
	Identifier    OrderIdentifier
	ShopID        string
	UserID        string
	SessionID     string
	Items         []CartItem
	SubtotalCents int64
	CreatedAt     time.Time
}

// Validate enforces invariants before persistence.
func (o *Order) Validate() error {
	if o.Identifier == "" {
		return ErrMalformedIdentifier
	}
	if o.ShopID == "" {
		return ErrMissingShopID
	}
	if len(o.Items) == 0 {
		return ErrEmptyCart
	}
	return nil
}
