package orderbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderFill(t *testing.T) {
	o := NewOrder(GoodTillCancel, 1, Bid, 100, 10)

	require.NoError(t, o.Fill(4))
	assert.Equal(t, uint64(6), o.RemainingQty)
	assert.Equal(t, uint64(4), o.FilledQty())

	require.NoError(t, o.Fill(6))
	assert.True(t, o.IsFilled())

	assert.ErrorIs(t, o.Fill(1), ErrQuantityTooBig)
	assert.Equal(t, uint64(0), o.RemainingQty, "failed fill must not mutate")
}

func TestOrderFillTooBig(t *testing.T) {
	o := NewOrder(GoodTillCancel, 1, Ask, 100, 5)
	assert.ErrorIs(t, o.Fill(6), ErrQuantityTooBig)
	assert.Equal(t, uint64(5), o.RemainingQty)
}

func TestOrderStateDerivation(t *testing.T) {
	o := NewOrder(GoodTillCancel, 7, Bid, 100, 10)
	assert.Equal(t, OrderState{Status: Unfilled}, o.State())

	require.NoError(t, o.Fill(3))
	assert.Equal(t, OrderState{Status: PartialFill, FilledQty: 3}, o.State())

	require.NoError(t, o.Fill(7))
	assert.Equal(t, OrderState{Status: Filled, FilledQty: 10}, o.State())
}

func TestZeroQuantityOrderIsUnfilled(t *testing.T) {
	// Remaining == Initial wins over Remaining == 0.
	o := NewOrder(GoodTillCancel, 9, Bid, 100, 0)
	assert.Equal(t, Unfilled, o.State().Status)
	assert.True(t, o.IsFilled())
}
