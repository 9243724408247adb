package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderIdentifier(t *testing.T) {
	id, err := NewOrderIdentifier("ABC", 2025, 1)
	require.NoError(t, err)
	assert.Equal(t, OrderIdentifier("SABC-25-000001"), id)

	id, err = NewOrderIdentifier("ABC", 25, 999999)
	require.NoError(t, err)
	assert.Equal(t, OrderIdentifier("SABC-25-999999"), id)
}

func TestNewOrderIdentifier_SequenceBounds(t *testing.T) {
	_, err := NewOrderIdentifier("ABC", 2025, 0)
	assert.ErrorIs(t, err, ErrSequenceOverflow)

	_, err = NewOrderIdentifier("ABC", 2025, MaxSequence+1)
	assert.ErrorIs(t, err, ErrSequenceOverflow)
}

func TestIdentifierPrefix_WrapsCentury(t *testing.T) {
	assert.Equal(t, "SABC-25-", IdentifierPrefix("ABC", 2025))
	assert.Equal(t, "SABC-05-", IdentifierPrefix("ABC", 2105))
}

func TestOrderIdentifierSequence(t *testing.T) {
	seq, err := OrderIdentifier("SABC-25-000042").Sequence()
	require.NoError(t, err)
	assert.Equal(t, 42, seq)

	_, err = OrderIdentifier("SABC-25-").Sequence()
	assert.ErrorIs(t, err, ErrMalformedIdentifier)

	_, err = OrderIdentifier("garbage").Sequence()
	assert.ErrorIs(t, err, ErrMalformedIdentifier)

	_, err = OrderIdentifier("SABC-25-00x001").Sequence()
	assert.ErrorIs(t, err, ErrMalformedIdentifier)
}

func TestOrderValidate(t *testing.T) {
	order := &Order{
		Identifier: "SABC-25-000001",
		ShopID:     "shop-x",
		Items:      []CartItem{{ID: "item-1", Quantity: 1, UnitPriceCents: 100, ShopID: "shop-x"}},
	}
	require.NoError(t, order.Validate())

	assert.ErrorIs(t, (&Order{ShopID: "shop-x"}).Validate(), ErrMalformedIdentifier)
	assert.ErrorIs(t, (&Order{Identifier: "SABC-25-000001"}).Validate(), ErrMissingShopID)
	assert.ErrorIs(t, (&Order{Identifier: "SABC-25-000001", ShopID: "s"}).Validate(), ErrEmptyCart)
}
