package orderbook

import "errors"

// The engine's closed error taxonomy. All errors are returned
// synchronously; a failed AddOrder is a no-op with respect to book
// state. Callers discriminate with errors.Is.
var (
	// ErrUnfillableOrder: a FillAndKill or FillOrKill order failed its
	// admission liquidity check.
	ErrUnfillableOrder = errors.New("could not fill order")

	// ErrOrderNotFound: cancel or modify referenced an unknown id.
	ErrOrderNotFound = errors.New("could not find order matching id")

	// ErrDuplicateOrderID: an add reused an id that is still resting.
	ErrDuplicateOrderID = errors.New("order id already in use")

	// ErrQuantityTooBig: a fill exceeded an order's remaining quantity.
	// Unreachable in correct matching code; treated as fatal there.
	ErrQuantityTooBig = errors.New("fill quantity exceeds order lot size")
)
