package outbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutScanAckCycle(t *testing.T) {
	ob, err := Open(t.TempDir())
	require.NoError(t, err)
	defer ob.Close()

	require.NoError(t, ob.Put(1, []byte("one")))
	require.NoError(t, ob.Put(2, []byte("two")))

	var pending []uint64
	require.NoError(t, ob.ScanPending(func(r *Record) error {
		pending = append(pending, r.Seq)
		return nil
	}))
	assert.Equal(t, []uint64{1, 2}, pending)

	require.NoError(t, ob.MarkSent(1))
	require.NoError(t, ob.MarkAcked(1))

	pending = nil
	require.NoError(t, ob.ScanPending(func(r *Record) error {
		pending = append(pending, r.Seq)
		return nil
	}))
	assert.Equal(t, []uint64{2}, pending, "acked events must not be rescanned")

	rec, err := ob.Get(2)
	require.NoError(t, err)
	assert.Equal(t, StateNew, rec.State)
	assert.Equal(t, []byte("two"), rec.Payload)
}

func TestSentSurvivesAsPending(t *testing.T) {
	ob, err := Open(t.TempDir())
	require.NoError(t, err)
	defer ob.Close()

	require.NoError(t, ob.Put(7, []byte("p")))
	require.NoError(t, ob.MarkSent(7))

	n := 0
	require.NoError(t, ob.ScanPending(func(r *Record) error {
		n++
		assert.Equal(t, StateSent, r.State)
		return nil
	}))
	assert.Equal(t, 1, n, "SENT without ack means the event must be retried")
}

func TestTruncateAckedUpTo(t *testing.T) {
	ob, err := Open(t.TempDir())
	require.NoError(t, err)
	defer ob.Close()

	for seq := uint64(1); seq <= 3; seq++ {
		require.NoError(t, ob.Put(seq, []byte("x")))
	}
	require.NoError(t, ob.MarkAcked(1))
	require.NoError(t, ob.MarkAcked(3))

	require.NoError(t, ob.TruncateAckedUpTo(2))

	_, err = ob.Get(1)
	assert.Error(t, err, "acked seq 1 inside bound should be gone")

	rec, err := ob.Get(2)
	require.NoError(t, err)
	assert.Equal(t, StateNew, rec.State)

	_, err = ob.Get(3)
	assert.NoError(t, err, "seq 3 beyond bound must survive")
}
