// Package kafka holds the trade execution feed producer. The feed is
// best-effort market data; durable delivery of order lifecycle events
// goes through the outbox and broadcaster instead.
package kafka

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"livre/domain/orderbook"
)

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireOne,
			Async:        true,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// TradeMessage is the wire shape of one execution on the feed.
type TradeMessage struct {
	Seq   uint64 `json:"seq"`
	Taker uint64 `json:"taker"`
	Maker uint64 `json:"maker"`
	Price uint64 `json:"price"`
	Qty   uint64 `json:"qty"`
}

// PublishTrades emits one message per trade, keyed by taker id so a
// taker's executions stay ordered within a partition.
func (p *Producer) PublishTrades(ctx context.Context, seq uint64, trades []orderbook.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(trades))
	for _, t := range trades {
		value, err := json.Marshal(TradeMessage{
			Seq:   seq,
			Taker: t.TakerOrderID,
			Maker: t.MakerOrderID,
			Price: t.Price,
			Qty:   t.Qty,
		})
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, t.TakerOrderID)
		msgs = append(msgs, kafka.Message{Key: key, Value: value})
	}
	return p.writer.WriteMessages(ctx, msgs...)
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
