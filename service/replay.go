package service

import (
	"errors"

	"go.uber.org/zap"

	"livre/domain/orderbook"
	"livre/infra/journal"
	"livre/infra/sequence"
	"livre/snapshot"
)

// Recover rebuilds book state before the service accepts traffic:
// load the latest snapshot if one exists, then re-run every journaled
// command past it. Replay is deterministic, so commands that failed
// admission at write time fail identically here and are skipped.
func Recover(
	journalDir string,
	snapshotDir string,
	book *orderbook.Orderbook,
	seqGen *sequence.Sequencer,
	log *zap.Logger,
) error {
	snapSeq, err := snapshot.Load(snapshotDir, book)
	if err != nil {
		return err
	}

	lastSeq, err := journal.Replay(journalDir, func(rec *journal.Record) error {
		if rec.Seq <= snapSeq {
			return nil
		}
		return applyRecord(book, rec)
	})
	if err != nil {
		return err
	}

	if lastSeq < snapSeq {
		lastSeq = snapSeq
	}
	seqGen.Reset(lastSeq)

	log.Info("recovery complete",
		zap.Uint64("snapshot_seq", snapSeq),
		zap.Uint64("last_seq", lastSeq),
		zap.Int("resting_orders", book.OrderCount()),
	)
	return nil
}

func applyRecord(book *orderbook.Orderbook, rec *journal.Record) error {
	switch rec.Type {
	case journal.RecordPlace:
		o, err := decodePlace(rec.Data)
		if err != nil {
			return err
		}
		if _, err := book.AddOrder(o); err != nil && !admissionError(err) {
			return err
		}
	case journal.RecordCancel:
		id, err := decodeCancel(rec.Data)
		if err != nil {
			return err
		}
		if _, err := book.CancelOrder(id); err != nil && !admissionError(err) {
			return err
		}
	case journal.RecordModify:
		id, side, price, qty, err := decodeModify(rec.Data)
		if err != nil {
			return err
		}
		if _, err := book.ModifyOrder(id, side, price, qty); err != nil && !admissionError(err) {
			return err
		}
	}
	return nil
}

// admissionError reports errors the engine returned at write time too.
func admissionError(err error) bool {
	return errors.Is(err, orderbook.ErrUnfillableOrder) ||
		errors.Is(err, orderbook.ErrOrderNotFound) ||
		errors.Is(err, orderbook.ErrDuplicateOrderID)
}
