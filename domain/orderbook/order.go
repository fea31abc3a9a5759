package orderbook

type Side uint8
type OrderType uint8
type Status uint8

const (
	Bid Side = iota
	Ask
)

const (
	GoodTillCancel OrderType = iota
	GoodForDay
	Market
	FillAndKill
	FillOrKill
)

const (
	Unfilled Status = iota
	PartialFill
	Filled
)

func (s Side) String() string {
	if s == Ask {
		return "ask"
	}
	return "bid"
}

// Opposite returns the side an incoming order matches against.
func (s Side) Opposite() Side {
	if s == Bid {
		return Ask
	}
	return Bid
}

func (t OrderType) String() string {
	switch t {
	case GoodTillCancel:
		return "good_till_cancel"
	case GoodForDay:
		return "good_for_day"
	case Market:
		return "market"
	case FillAndKill:
		return "fill_and_kill"
	case FillOrKill:
		return "fill_or_kill"
	default:
		return "unknown"
	}
}

// Order is a mutable record of one order's remaining size.
// Invariant: 0 <= RemainingQty <= InitialQty, non-increasing.
//
// next/prev link the order into its price level's FIFO queue while it
// rests in the book.
type Order struct {
	ID           uint64
	Type         OrderType
	Side         Side
	Price        uint64
	InitialQty   uint64
	RemainingQty uint64
	next         *Order
	prev         *Order
}

// NewOrder builds an order from caller-supplied values. Quantities are
// not validated for positivity; a zero-quantity order is legal and
// reports Unfilled for its whole lifetime.
func NewOrder(otype OrderType, id uint64, side Side, price, qty uint64) *Order {
	return &Order{
		ID:           id,
		Type:         otype,
		Side:         side,
		Price:        price,
		InitialQty:   qty,
		RemainingQty: qty,
	}
}

func (o *Order) IsFilled() bool {
	return o.RemainingQty == 0
}

// FilledQty is the cumulative executed quantity.
func (o *Order) FilledQty() uint64 {
	return o.InitialQty - o.RemainingQty
}

// Next walks the level's FIFO queue. Read-only traversal helper.
func (o *Order) Next() *Order {
	return o.next
}

// OrderState is the derived lifecycle state of an order. FilledQty is
// meaningful for PartialFill and Filled.
type OrderState struct {
	Status    Status
	FilledQty uint64
}

// State derives the order's state from its quantities. An order with
// InitialQty == 0 derives Unfilled, never Filled: the Unfilled check
// runs first and a zero-quantity order never trades.
func (o *Order) State() OrderState {
	switch {
	case o.RemainingQty == o.InitialQty:
		return OrderState{Status: Unfilled}
	case o.IsFilled():
		return OrderState{Status: Filled, FilledQty: o.InitialQty}
	default:
		return OrderState{Status: PartialFill, FilledQty: o.FilledQty()}
	}
}

// Fill decrements the remaining quantity in place. ErrQuantityTooBig
// means the caller computed a trade larger than the order can absorb;
// matching always takes the min of both sides' remaining quantities,
// so inside the engine this is an invariant violation rather than a
// recoverable user error.
func (o *Order) Fill(qty uint64) error {
	if qty > o.RemainingQty {
		return ErrQuantityTooBig
	}
	o.RemainingQty -= qty
	return nil
}
