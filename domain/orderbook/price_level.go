package orderbook

// PriceLevel is a FIFO queue of resting orders sharing one side and
// price, ordered oldest-first. TotalQty tracks the sum of remaining
// quantities so canFullyFill can walk levels without touching orders.
type PriceLevel struct {
	Price uint64

	head *Order
	tail *Order

	TotalQty   uint64
	OrderCount int
}

func (p *PriceLevel) Enqueue(o *Order) {
	if p.head == nil {
		p.head = o
		p.tail = o
	} else {
		p.tail.next = o
		o.prev = p.tail
		p.tail = o
	}
	p.TotalQty += o.RemainingQty
	p.OrderCount++
}

// PopHead removes the oldest order. The caller must have accounted
// for its fills already; only the order's current remaining quantity
// leaves the level total.
func (p *PriceLevel) PopHead() *Order {
	o := p.head
	if o == nil {
		return nil
	}

	p.head = o.next
	if p.head != nil {
		p.head.prev = nil
	} else {
		p.tail = nil
	}

	o.next = nil
	o.prev = nil

	p.TotalQty -= o.RemainingQty
	p.OrderCount--

	return o
}

// Unlink removes an order from anywhere in the queue (direct cancel).
func (p *PriceLevel) Unlink(o *Order) {
	if o.prev != nil {
		o.prev.next = o.next
	} else {
		p.head = o.next
	}
	if o.next != nil {
		o.next.prev = o.prev
	} else {
		p.tail = o.prev
	}
	o.next = nil
	o.prev = nil

	p.TotalQty -= o.RemainingQty
	p.OrderCount--
}

// Reduce records a partial fill against this level's running total.
func (p *PriceLevel) Reduce(qty uint64) {
	p.TotalQty -= qty
}

func (p *PriceLevel) Empty() bool {
	return p.head == nil
}

// Read-only helper
func (p *PriceLevel) Head() *Order {
	return p.head
}
