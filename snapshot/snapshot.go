package snapshot

import "time"

type Snapshot struct {
	Seq     uint64
	Created time.Time
	Orders  []OrderEntry
}

// OrderEntry carries both quantities so a restored order keeps its
// partial-fill history.
type OrderEntry struct {
	ID           uint64
	Type         uint8
	Side         uint8
	Price        uint64
	InitialQty   uint64
	RemainingQty uint64
}
