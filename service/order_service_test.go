package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"livre/domain/orderbook"
	"livre/infra/journal"
	"livre/infra/sequence"
	"livre/snapshot"
)

type testEnv struct {
	svc        *OrderService
	journalDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	j, err := journal.Open(journal.Config{Dir: dir})
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	svc := NewOrderService(
		orderbook.NewOrderbook(),
		sequence.New(0),
		j,
		nil, // no outbox
		nil, // no feed
		zap.NewNop(),
	)
	return &testEnv{svc: svc, journalDir: dir}
}

func TestPlaceMatchAndCancel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.PlaceOrder(ctx, orderbook.GoodTillCancel, 1, orderbook.Ask, 100, 5)
	require.NoError(t, err)

	info, err := env.svc.PlaceOrder(ctx, orderbook.GoodTillCancel, 2, orderbook.Bid, 100, 3)
	require.NoError(t, err)
	require.Len(t, info.Trades, 1)
	assert.Equal(t, orderbook.Filled, info.State.Status)

	assert.Equal(t, 1, env.svc.OrderCount())

	o, err := env.svc.CancelOrder(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), o.RemainingQty)
	assert.Equal(t, 0, env.svc.OrderCount())
}

func TestEngineErrorsPassThrough(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.CancelOrder(ctx, 404)
	assert.ErrorIs(t, err, orderbook.ErrOrderNotFound)

	_, err = env.svc.PlaceOrder(ctx, orderbook.FillOrKill, 1, orderbook.Bid, 100, 10)
	assert.ErrorIs(t, err, orderbook.ErrUnfillableOrder)

	_, err = env.svc.PlaceOrder(ctx, orderbook.GoodTillCancel, 2, orderbook.Bid, 100, 10)
	require.NoError(t, err)
	_, err = env.svc.PlaceOrder(ctx, orderbook.GoodTillCancel, 2, orderbook.Bid, 101, 1)
	assert.ErrorIs(t, err, orderbook.ErrDuplicateOrderID)
}

func TestBookTop(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, _, _, askOK := env.svc.BookTop()
	assert.False(t, askOK)

	_, err := env.svc.PlaceOrder(ctx, orderbook.GoodTillCancel, 1, orderbook.Bid, 99, 1)
	require.NoError(t, err)
	_, err = env.svc.PlaceOrder(ctx, orderbook.GoodTillCancel, 2, orderbook.Ask, 101, 1)
	require.NoError(t, err)

	bid, bidOK, ask, askOK := env.svc.BookTop()
	assert.True(t, bidOK)
	assert.True(t, askOK)
	assert.Equal(t, uint64(99), bid)
	assert.Equal(t, uint64(101), ask)
}

func TestRecoverRebuildsBook(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Session: two resting asks, a crossing bid, one cancel, one
	// rejected FOK (journaled but a no-op on replay too).
	_, err := env.svc.PlaceOrder(ctx, orderbook.GoodTillCancel, 1, orderbook.Ask, 100, 5)
	require.NoError(t, err)
	_, err = env.svc.PlaceOrder(ctx, orderbook.GoodTillCancel, 2, orderbook.Ask, 101, 5)
	require.NoError(t, err)
	_, err = env.svc.PlaceOrder(ctx, orderbook.GoodTillCancel, 3, orderbook.Bid, 100, 2)
	require.NoError(t, err)
	_, err = env.svc.PlaceOrder(ctx, orderbook.FillOrKill, 4, orderbook.Bid, 100, 50)
	assert.ErrorIs(t, err, orderbook.ErrUnfillableOrder)
	_, err = env.svc.CancelOrder(ctx, 2)
	require.NoError(t, err)
	_, err = env.svc.ModifyOrder(ctx, 1, orderbook.Ask, 102, 4)
	require.NoError(t, err)

	rebuilt := orderbook.NewOrderbook()
	seqGen := sequence.New(0)
	require.NoError(t, Recover(env.journalDir, t.TempDir(), rebuilt, seqGen, zap.NewNop()))

	assert.Equal(t, uint64(6), seqGen.Current())
	assert.Equal(t, 1, rebuilt.OrderCount())

	o, err := rebuilt.CancelOrder(1)
	require.NoError(t, err)
	assert.Equal(t, orderbook.Ask, o.Side)
	assert.Equal(t, uint64(102), o.Price)
	assert.Equal(t, uint64(4), o.RemainingQty)
}

func TestRecoverWithSnapshot(t *testing.T) {
	env := newTestEnv(t)
	snapDir := t.TempDir()
	ctx := context.Background()

	_, err := env.svc.PlaceOrder(ctx, orderbook.GoodTillCancel, 1, orderbook.Bid, 95, 5)
	require.NoError(t, err)
	_, err = env.svc.PlaceOrder(ctx, orderbook.GoodTillCancel, 2, orderbook.Ask, 105, 5)
	require.NoError(t, err)

	env.svc.snapshotOnce(&snapshot.Writer{Dir: snapDir})

	// Post-snapshot traffic must replay on top of the snapshot.
	_, err = env.svc.PlaceOrder(ctx, orderbook.GoodTillCancel, 3, orderbook.Bid, 96, 7)
	require.NoError(t, err)

	rebuilt := orderbook.NewOrderbook()
	seqGen := sequence.New(0)
	require.NoError(t, Recover(env.journalDir, snapDir, rebuilt, seqGen, zap.NewNop()))

	assert.Equal(t, uint64(3), seqGen.Current())
	assert.Equal(t, 3, rebuilt.OrderCount())

	best, ok := rebuilt.BestBid()
	require.True(t, ok)
	assert.Equal(t, uint64(96), best)
}

func BenchmarkPlaceOrder(b *testing.B) {
	dir := b.TempDir()
	j, err := journal.Open(journal.Config{Dir: dir})
	if err != nil {
		b.Fatal(err)
	}
	defer j.Close()

	svc := NewOrderService(
		orderbook.NewOrderbook(),
		sequence.New(0),
		j,
		nil,
		nil,
		zap.NewNop(),
	)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		id := uint64(i + 1)
		side := orderbook.Bid
		if i%2 == 0 {
			side = orderbook.Ask
		}
		_, _ = svc.PlaceOrder(ctx, orderbook.GoodTillCancel, id, side, uint64(100+i%5), 10)
	}
}
