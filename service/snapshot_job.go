package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"livre/snapshot"
)

// StartSnapshotJob periodically persists the book and garbage-collects
// the journal and outbox behind the snapshot. The book is locked while
// the snapshot is collected so the image is consistent.
func (s *OrderService) StartSnapshotJob(ctx context.Context, dir string, interval time.Duration) {
	w := &snapshot.Writer{Dir: dir}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.snapshotOnce(w)
			}
		}
	}()
}

func (s *OrderService) snapshotOnce(w *snapshot.Writer) {
	s.mu.Lock()
	seq := s.seqGen.Current()
	err := w.Write(seq, s.book)
	s.mu.Unlock()

	if err != nil {
		s.log.Error("snapshot write failed", zap.Error(err))
		return
	}

	if err := s.journal.TruncateBefore(seq); err != nil {
		s.log.Warn("journal truncate failed", zap.Error(err))
	}
	if s.outbox != nil {
		if err := s.outbox.TruncateAckedUpTo(seq); err != nil {
			s.log.Warn("outbox truncate failed", zap.Error(err))
		}
	}

	s.log.Debug("snapshot written", zap.Uint64("seq", seq))
}
