package service

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"livre/domain/orderbook"
	"livre/infra/journal"
	"livre/infra/kafka"
	"livre/infra/outbox"
	"livre/infra/sequence"
)

// Event is the outbox payload for one accepted command.
type Event struct {
	V      int    `json:"v"`
	Type   string `json:"type"`
	ID     uint64 `json:"id"`
	Seq    uint64 `json:"seq"`
	Filled uint64 `json:"filled"`
}

const (
	eventPlaced    = "placed"
	eventCancelled = "cancelled"
	eventModified  = "modified"
)

// OrderService is the only write entry point into the engine. The
// outbox and feed are optional; a nil feed simply disables the market
// data stream, which is how tests run.
type OrderService struct {
	mu sync.Mutex

	book    *orderbook.Orderbook
	seqGen  *sequence.Sequencer
	journal *journal.Journal
	outbox  *outbox.Outbox
	feed    *kafka.Producer
	log     *zap.Logger
}

func NewOrderService(
	book *orderbook.Orderbook,
	seqGen *sequence.Sequencer,
	jrnl *journal.Journal,
	ob *outbox.Outbox,
	feed *kafka.Producer,
	log *zap.Logger,
) *OrderService {
	return &OrderService{
		book:    book,
		seqGen:  seqGen,
		journal: jrnl,
		outbox:  ob,
		feed:    feed,
		log:     log,
	}
}

// PlaceOrder journals and submits a new order. The engine's error
// taxonomy passes through unchanged so callers can errors.Is against
// the orderbook sentinels.
func (s *OrderService) PlaceOrder(
	ctx context.Context,
	otype orderbook.OrderType,
	id uint64,
	side orderbook.Side,
	price uint64,
	qty uint64,
) (orderbook.MatchInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.seqGen.Next()
	if err := s.journal.Append(journal.NewRecord(
		journal.RecordPlace, seq, encodePlace(otype, id, side, price, qty),
	)); err != nil {
		return orderbook.MatchInfo{}, err
	}

	info, err := s.book.AddOrder(orderbook.NewOrder(otype, id, side, price, qty))
	if err != nil {
		s.log.Debug("order rejected",
			zap.Uint64("id", id),
			zap.Stringer("type", otype),
			zap.Error(err),
		)
		return info, err
	}

	s.log.Info("order placed",
		zap.Uint64("id", id),
		zap.Uint64("seq", seq),
		zap.Stringer("side", side),
		zap.Uint64("price", price),
		zap.Uint64("qty", qty),
		zap.Int("trades", len(info.Trades)),
	)

	s.emit(ctx, seq, eventPlaced, id, info.State.FilledQty)
	s.publishTrades(ctx, seq, info.Trades)
	return info, nil
}

// CancelOrder journals and removes a resting order.
func (s *OrderService) CancelOrder(ctx context.Context, id uint64) (*orderbook.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.seqGen.Next()
	if err := s.journal.Append(journal.NewRecord(
		journal.RecordCancel, seq, encodeCancel(id),
	)); err != nil {
		return nil, err
	}

	o, err := s.book.CancelOrder(id)
	if err != nil {
		return nil, err
	}

	s.log.Info("order cancelled", zap.Uint64("id", id), zap.Uint64("seq", seq))
	s.emit(ctx, seq, eventCancelled, id, o.FilledQty())
	return o, nil
}

// ModifyOrder journals a cancel-and-readmit, preserving order type.
func (s *OrderService) ModifyOrder(
	ctx context.Context,
	id uint64,
	side orderbook.Side,
	price uint64,
	qty uint64,
) (orderbook.MatchInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.seqGen.Next()
	if err := s.journal.Append(journal.NewRecord(
		journal.RecordModify, seq, encodeModify(id, side, price, qty),
	)); err != nil {
		return orderbook.MatchInfo{}, err
	}

	info, err := s.book.ModifyOrder(id, side, price, qty)
	if err != nil {
		return info, err
	}

	s.log.Info("order modified",
		zap.Uint64("id", id),
		zap.Uint64("seq", seq),
		zap.Int("trades", len(info.Trades)),
	)
	s.emit(ctx, seq, eventModified, id, info.State.FilledQty)
	s.publishTrades(ctx, seq, info.Trades)
	return info, nil
}

// OrderCount is the number of currently resting orders.
func (s *OrderService) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.OrderCount()
}

// BookTop returns the current best bid and ask prices.
func (s *OrderService) BookTop() (bid uint64, bidOK bool, ask uint64, askOK bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bid, bidOK = s.book.BestBid()
	ask, askOK = s.book.BestAsk()
	return bid, bidOK, ask, askOK
}

// emit stores a lifecycle event for broadcast. Outbox failures are
// logged, not returned: the command itself already committed.
func (s *OrderService) emit(_ context.Context, seq uint64, typ string, id, filled uint64) {
	if s.outbox == nil {
		return
	}
	payload, err := json.Marshal(Event{V: 1, Type: typ, ID: id, Seq: seq, Filled: filled})
	if err != nil {
		s.log.Error("encode event", zap.Error(err))
		return
	}
	if err := s.outbox.Put(seq, payload); err != nil {
		s.log.Error("outbox put", zap.Uint64("seq", seq), zap.Error(err))
	}
}

func (s *OrderService) publishTrades(ctx context.Context, seq uint64, trades []orderbook.Trade) {
	if s.feed == nil || len(trades) == 0 {
		return
	}
	if err := s.feed.PublishTrades(ctx, seq, trades); err != nil {
		s.log.Warn("trade feed publish failed", zap.Error(err))
	}
}
