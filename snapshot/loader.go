package snapshot

import (
	"encoding/gob"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"livre/domain/orderbook"
)

// Load restores resting orders into an empty book and returns the
// snapshot's sequence. A missing snapshot is not an error; the journal
// alone can rebuild the book.
func Load(dir string, book *orderbook.Orderbook) (uint64, error) {
	f, err := os.Open(filepath.Join(dir, fileName))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	defer f.Close()

	var s Snapshot
	if err := gob.NewDecoder(f).Decode(&s); err != nil {
		return 0, errors.Wrap(err, "decode snapshot")
	}

	for _, e := range s.Orders {
		o := orderbook.NewOrder(
			orderbook.OrderType(e.Type),
			e.ID,
			orderbook.Side(e.Side),
			e.Price,
			e.InitialQty,
		)
		o.RemainingQty = e.RemainingQty
		if err := book.Restore(o); err != nil {
			return 0, errors.Wrapf(err, "restore order %d", e.ID)
		}
	}

	return s.Seq, nil
}
