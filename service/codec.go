package service

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"livre/domain/orderbook"
)

// Journal payload encodings, big-endian fixed width.
//
//	place:  [otype:1][id:8][side:1][price:8][qty:8]
//	cancel: [id:8]
//	modify: [id:8][side:1][price:8][qty:8]

const (
	placeLen  = 1 + 8 + 1 + 8 + 8
	cancelLen = 8
	modifyLen = 8 + 1 + 8 + 8
)

func encodePlace(otype orderbook.OrderType, id uint64, side orderbook.Side, price, qty uint64) []byte {
	buf := make([]byte, placeLen)
	buf[0] = byte(otype)
	binary.BigEndian.PutUint64(buf[1:9], id)
	buf[9] = byte(side)
	binary.BigEndian.PutUint64(buf[10:18], price)
	binary.BigEndian.PutUint64(buf[18:26], qty)
	return buf
}

func decodePlace(b []byte) (*orderbook.Order, error) {
	if len(b) != placeLen {
		return nil, errors.Errorf("place payload length %d", len(b))
	}
	return orderbook.NewOrder(
		orderbook.OrderType(b[0]),
		binary.BigEndian.Uint64(b[1:9]),
		orderbook.Side(b[9]),
		binary.BigEndian.Uint64(b[10:18]),
		binary.BigEndian.Uint64(b[18:26]),
	), nil
}

func encodeCancel(id uint64) []byte {
	buf := make([]byte, cancelLen)
	binary.BigEndian.PutUint64(buf, id)
	return buf
}

func decodeCancel(b []byte) (uint64, error) {
	if len(b) != cancelLen {
		return 0, errors.Errorf("cancel payload length %d", len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

func encodeModify(id uint64, side orderbook.Side, price, qty uint64) []byte {
	buf := make([]byte, modifyLen)
	binary.BigEndian.PutUint64(buf[0:8], id)
	buf[8] = byte(side)
	binary.BigEndian.PutUint64(buf[9:17], price)
	binary.BigEndian.PutUint64(buf[17:25], qty)
	return buf
}

func decodeModify(b []byte) (id uint64, side orderbook.Side, price, qty uint64, err error) {
	if len(b) != modifyLen {
		return 0, 0, 0, 0, errors.Errorf("modify payload length %d", len(b))
	}
	id = binary.BigEndian.Uint64(b[0:8])
	side = orderbook.Side(b[8])
	price = binary.BigEndian.Uint64(b[9:17])
	qty = binary.BigEndian.Uint64(b[17:25])
	return id, side, price, qty, nil
}
