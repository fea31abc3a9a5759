package sequence

import "sync/atomic"

// Sequencer issues strictly monotonic command sequence numbers.
// Deterministic and replay-safe: after journal replay it is Reset to
// the last replayed sequence and continues from there.
type Sequencer struct {
	next atomic.Uint64
}

func New(start uint64) *Sequencer {
	s := &Sequencer{}
	s.next.Store(start)
	return s
}

// Next returns the next sequence number.
func (s *Sequencer) Next() uint64 {
	return s.next.Add(1)
}

// Current returns the last issued sequence.
func (s *Sequencer) Current() uint64 {
	return s.next.Load()
}

// Reset sets the sequencer. Only used after journal replay.
func (s *Sequencer) Reset(v uint64) {
	s.next.Store(v)
}
