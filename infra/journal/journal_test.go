package journal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendReplayRoundTrip(t *testing.T) {
	dir := t.TempDir()

	j, err := Open(Config{Dir: dir})
	require.NoError(t, err)

	require.NoError(t, j.Append(NewRecord(RecordPlace, 1, []byte("a"))))
	require.NoError(t, j.Append(NewRecord(RecordCancel, 2, []byte("bb"))))
	require.NoError(t, j.Append(NewRecord(RecordModify, 3, []byte("ccc"))))
	require.NoError(t, j.Close())

	var got []*Record
	last, err := Replay(dir, func(r *Record) error {
		got = append(got, r)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), last)
	require.Len(t, got, 3)
	assert.Equal(t, RecordPlace, got[0].Type)
	assert.Equal(t, []byte("bb"), got[1].Data)
	assert.Equal(t, uint64(3), got[2].Seq)
}

func TestReopenContinuesNewestSegment(t *testing.T) {
	dir := t.TempDir()

	// Tiny segments force a rotation per record.
	j, err := Open(Config{Dir: dir, SegmentSize: 1})
	require.NoError(t, err)
	require.NoError(t, j.Append(NewRecord(RecordPlace, 1, []byte("x"))))
	require.NoError(t, j.Append(NewRecord(RecordPlace, 2, []byte("y"))))
	require.NoError(t, j.Close())

	j2, err := Open(Config{Dir: dir, SegmentSize: 1})
	require.NoError(t, err)
	require.NoError(t, j2.Append(NewRecord(RecordPlace, 3, []byte("z"))))
	require.NoError(t, j2.Close())

	last, err := Replay(dir, func(*Record) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, uint64(3), last, "seqs must stay monotonic across reopen")
}

func TestReplayStopsAtTornTail(t *testing.T) {
	dir := t.TempDir()

	j, err := Open(Config{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, j.Append(NewRecord(RecordPlace, 1, []byte("ok"))))
	require.NoError(t, j.Close())

	// Simulate a crash mid-write: append half a header.
	files, err := segmentFiles(dir)
	require.NoError(t, err)
	f, err := os.OpenFile(files[0], os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.Write([]byte{0x01, 0x02, 0x03})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	n := 0
	last, err := Replay(dir, func(*Record) error { n++; return nil })
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, uint64(1), last)
}

func TestReplayRejectsOversizedLengthField(t *testing.T) {
	dir := t.TempDir()

	j, err := Open(Config{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, j.Append(NewRecord(RecordPlace, 1, []byte("ok"))))
	require.NoError(t, j.Close())

	// A full header whose length field claims ~4 GiB. The reader must
	// refuse it before allocating, not trust it until the CRC check.
	files, err := segmentFiles(dir)
	require.NoError(t, err)
	f, err := os.OpenFile(files[0], os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	bogus := make([]byte, headerSize)
	bogus[0] = byte(RecordPlace)
	bogus[17] = 0xFF
	bogus[18] = 0xFF
	bogus[19] = 0xFF
	bogus[20] = 0xFF
	_, err = f.Write(bogus)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	n := 0
	_, err = Replay(dir, func(*Record) error { n++; return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds limit")
	assert.Equal(t, 1, n, "the valid record before the corruption still replays")
}

func TestTruncateBeforeKeepsActiveSegment(t *testing.T) {
	dir := t.TempDir()

	j, err := Open(Config{Dir: dir, SegmentSize: 1})
	require.NoError(t, err)
	for seq := uint64(1); seq <= 4; seq++ {
		require.NoError(t, j.Append(NewRecord(RecordPlace, seq, []byte("p"))))
	}

	require.NoError(t, j.TruncateBefore(3))

	files, err := segmentFiles(dir)
	require.NoError(t, err)
	for _, p := range files {
		assert.NotEqual(t, "segment-000000.wal", filepath.Base(p))
		assert.NotEqual(t, "segment-000001.wal", filepath.Base(p))
	}

	last, err := Replay(dir, func(*Record) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, uint64(4), last)
	require.NoError(t, j.Close())
}
