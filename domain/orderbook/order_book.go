package orderbook

import "fmt"

// levelID locates a resting order: the (price, side) of its level.
type levelID struct {
	price uint64
	side  Side
}

// Orderbook owns the two price ladders and the order index. The index
// holds an id iff the order rests in exactly one price level; every
// mutation path updates both together.
//
// The book is deterministic and single-writer.
type Orderbook struct {
	bids   *RBTree
	asks   *RBTree
	orders map[uint64]levelID
}

func NewOrderbook() *Orderbook {
	return &Orderbook{
		bids:   NewRBTree(),
		asks:   NewRBTree(),
		orders: make(map[uint64]levelID),
	}
}

// AddOrder admits, matches and conditionally rests an incoming order.
//
// Admission runs before any mutation: a duplicate live id is rejected
// for every order type, then FillAndKill requires crossing liquidity
// to exist and FillOrKill requires enough of it to fill completely.
// After matching, the remainder rests only for GoodTillCancel,
// GoodForDay and Market orders; FillAndKill/FillOrKill remainders are
// discarded.
func (b *Orderbook) AddOrder(o *Order) (MatchInfo, error) {
	if _, live := b.orders[o.ID]; live {
		return MatchInfo{}, ErrDuplicateOrderID
	}

	switch o.Type {
	case FillAndKill:
		if !b.CanMatch(o.Side, o.Price) {
			return MatchInfo{}, ErrUnfillableOrder
		}
	case FillOrKill:
		if !b.CanFullyFill(o.Price, o.InitialQty, o.Side) {
			return MatchInfo{}, ErrUnfillableOrder
		}
	}

	trades := b.matchOrder(o)

	if !o.IsFilled() && restsInBook(o.Type) {
		b.orders[o.ID] = levelID{price: o.Price, side: o.Side}
		b.sideTree(o.Side).UpsertLevel(o.Price).Enqueue(o)
	}

	return MatchInfo{Trades: trades, State: o.State()}, nil
}

// CancelOrder removes a resting order by id and returns it.
func (b *Orderbook) CancelOrder(id uint64) (*Order, error) {
	loc, ok := b.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}

	tree := b.sideTree(loc.side)
	lvl := tree.FindLevel(loc.price)
	if lvl == nil {
		return nil, ErrOrderNotFound
	}

	for o := lvl.Head(); o != nil; o = o.Next() {
		if o.ID != id {
			continue
		}
		lvl.Unlink(o)
		delete(b.orders, id)
		if lvl.Empty() {
			tree.DeleteLevel(loc.price)
		}
		return o, nil
	}
	return nil, ErrOrderNotFound
}

// ModifyOrder cancels the resting order and readmits it with the new
// side, price and quantity, preserving the original order type. The
// two steps are sequential; the embedding layer must not let another
// operation interleave.
func (b *Orderbook) ModifyOrder(id uint64, side Side, price, qty uint64) (MatchInfo, error) {
	old, err := b.CancelOrder(id)
	if err != nil {
		return MatchInfo{}, err
	}
	return b.AddOrder(NewOrder(old.Type, id, side, price, qty))
}

// OrderCount is the number of currently resting orders.
func (b *Orderbook) OrderCount() int {
	return len(b.orders)
}

// BestBid returns the highest resting bid price, if any.
func (b *Orderbook) BestBid() (uint64, bool) {
	if lvl := b.bids.MaxLevel(); lvl != nil {
		return lvl.Price, true
	}
	return 0, false
}

// BestAsk returns the lowest resting ask price, if any.
func (b *Orderbook) BestAsk() (uint64, bool) {
	if lvl := b.asks.MinLevel(); lvl != nil {
		return lvl.Price, true
	}
	return 0, false
}

// CanMatch reports whether the opposite side's best price crosses the
// given limit: an incoming ask crosses when best bid >= price, an
// incoming bid when best ask <= price.
func (b *Orderbook) CanMatch(side Side, price uint64) bool {
	if side == Ask {
		best := b.bids.MaxLevel()
		return best != nil && best.Price >= price
	}
	best := b.asks.MinLevel()
	return best != nil && best.Price <= price
}

// CanFullyFill walks opposite-side levels in priority order,
// accumulating level totals until the requested quantity is covered
// or prices stop qualifying.
func (b *Orderbook) CanFullyFill(price, qty uint64, side Side) bool {
	if !b.CanMatch(side, price) {
		return false
	}

	need := qty
	covered := false
	scan := func(lvl *PriceLevel) bool {
		if (side == Bid && lvl.Price > price) || (side == Ask && lvl.Price < price) {
			return false
		}
		if lvl.TotalQty >= need {
			covered = true
			return false
		}
		need -= lvl.TotalQty
		return true
	}

	if side == Bid {
		b.asks.ForEachAscending(scan)
	} else {
		b.bids.ForEachDescending(scan)
	}
	return covered
}

// Restore reinserts a resting order without matching. Used when
// rebuilding the book from a snapshot.
func (b *Orderbook) Restore(o *Order) error {
	if _, live := b.orders[o.ID]; live {
		return ErrDuplicateOrderID
	}
	if o.IsFilled() || !restsInBook(o.Type) {
		return nil
	}
	b.orders[o.ID] = levelID{price: o.Price, side: o.Side}
	b.sideTree(o.Side).UpsertLevel(o.Price).Enqueue(o)
	return nil
}

// ---- traversal helpers ----

// BidsWalk visits bid levels best (highest) first.
func (b *Orderbook) BidsWalk(fn func(*PriceLevel)) {
	b.bids.ForEachDescending(func(lvl *PriceLevel) bool {
		fn(lvl)
		return true
	})
}

// AsksWalk visits ask levels best (lowest) first.
func (b *Orderbook) AsksWalk(fn func(*PriceLevel)) {
	b.asks.ForEachAscending(func(lvl *PriceLevel) bool {
		fn(lvl)
		return true
	})
}

// ---- matching ----

// matchOrder sweeps the opposite side while the incoming order has
// quantity left and the best level still crosses its limit. Exhausted
// levels are deleted in place; a level left non-empty stays put.
func (b *Orderbook) matchOrder(o *Order) []Trade {
	var trades []Trade
	opp := b.sideTree(o.Side.Opposite())

	for !o.IsFilled() {
		var lvl *PriceLevel
		if o.Side == Bid {
			lvl = opp.MinLevel()
			if lvl == nil || lvl.Price > o.Price {
				break
			}
		} else {
			lvl = opp.MaxLevel()
			if lvl == nil || lvl.Price < o.Price {
				break
			}
		}

		trades = b.matchLevel(lvl, o, trades)

		if lvl.Empty() {
			opp.DeleteLevel(lvl.Price)
		}
	}
	return trades
}

// matchLevel pairs the taker against the level's queue in arrival
// order. Trades execute at the level's price. A maker that reaches
// zero leaves both the queue and the index.
func (b *Orderbook) matchLevel(lvl *PriceLevel, taker *Order, trades []Trade) []Trade {
	for !taker.IsFilled() && !lvl.Empty() {
		maker := lvl.Head()

		qty := min(maker.RemainingQty, taker.RemainingQty)
		mustFill(maker, qty)
		mustFill(taker, qty)
		lvl.Reduce(qty)

		trades = append(trades, Trade{
			TakerOrderID: taker.ID,
			MakerOrderID: maker.ID,
			Price:        lvl.Price,
			Qty:          qty,
		})

		if maker.IsFilled() {
			lvl.PopHead()
			delete(b.orders, maker.ID)
		}
	}
	return trades
}

func (b *Orderbook) sideTree(side Side) *RBTree {
	if side == Bid {
		return b.bids
	}
	return b.asks
}

func restsInBook(t OrderType) bool {
	switch t {
	case GoodTillCancel, GoodForDay, Market:
		return true
	default:
		return false
	}
}

// mustFill applies a trade quantity already clamped to both sides'
// remaining quantities. A failure here is a broken matching invariant.
func mustFill(o *Order, qty uint64) {
	if err := o.Fill(qty); err != nil {
		panic(fmt.Sprintf("orderbook: fill %d on order %d: %v", qty, o.ID, err))
	}
}
