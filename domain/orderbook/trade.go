package orderbook

// Trade is an immutable record of one execution event. Price is the
// resting level's price, not the taker's limit. The book emits trades
// as an append-only log and never retains them.
type Trade struct {
	TakerOrderID uint64
	MakerOrderID uint64
	Price        uint64
	Qty          uint64
}

// MatchInfo pairs the trade log produced by one AddOrder call with the
// incoming order's final derived state.
type MatchInfo struct {
	Trades []Trade
	State  OrderState
}
