package snapshot

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"time"

	"livre/domain/orderbook"
)

const fileName = "snapshot.bin"

type Writer struct {
	Dir string
}

// Write persists every resting order. The file is written to a temp
// name and renamed so a crash never leaves a half snapshot behind.
func (w *Writer) Write(seq uint64, book *orderbook.Orderbook) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return err
	}

	s := Snapshot{
		Seq:     seq,
		Created: time.Now(),
		Orders:  make([]OrderEntry, 0, 1024),
	}

	collect := func(lvl *orderbook.PriceLevel) {
		for o := lvl.Head(); o != nil; o = o.Next() {
			s.Orders = append(s.Orders, OrderEntry{
				ID:           o.ID,
				Type:         uint8(o.Type),
				Side:         uint8(o.Side),
				Price:        o.Price,
				InitialQty:   o.InitialQty,
				RemainingQty: o.RemainingQty,
			})
		}
	}
	book.BidsWalk(collect)
	book.AsksWalk(collect)

	tmp := filepath.Join(w.Dir, fileName+".tmp")
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(f).Encode(&s); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, filepath.Join(w.Dir, fileName))
}
