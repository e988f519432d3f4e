// Package pb defines the wire messages for the order service gRPC
// API. No protoc toolchain was available to generate the usual
// *.pb.go stubs, so these messages are hand-encoded directly against
// google.golang.org/protobuf/encoding/protowire's low-level varint and
// length-delimited primitives — the same wire format protoc-gen-go
// would produce, written by hand instead of generated.
package pb

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// Side mirrors orderbook.Side on the wire.
type Side uint32

const (
	Side_BUY  Side = 0
	Side_SELL Side = 1
)

// OrderType mirrors orderbook.OrderType on the wire.
type OrderType uint32

const (
	OrderType_LIMIT  OrderType = 0
	OrderType_MARKET OrderType = 1
)

// TimeInForce mirrors orderbook.TimeInForce on the wire.
type TimeInForce uint32

const (
	TimeInForce_GTC TimeInForce = 0
	TimeInForce_IOC TimeInForce = 1
	TimeInForce_FOK TimeInForce = 2
)

// Message is the minimal contract the hand-written Codec (see codec.go)
// needs from every request/response type below.
type Message interface {
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
}

type PlaceOrderRequest struct {
	OrderId uint64
	Side    Side
	Type    OrderType
	Tif     TimeInForce
	Price   uint32
	Qty     uint32
}

func (m *PlaceOrderRequest) Marshal() ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, m.OrderId)
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Side))
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Type))
	b = protowire.AppendTag(b, 4, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Tif))
	b = protowire.AppendTag(b, 5, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Price))
	b = protowire.AppendTag(b, 6, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Qty))
	return b, nil
}

func (m *PlaceOrderRequest) Unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.OrderId = v
			b = b[n:]
		case 2:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Side = Side(v)
			b = b[n:]
		case 3:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Type = OrderType(v)
			b = b[n:]
		case 4:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Tif = TimeInForce(v)
			b = b[n:]
		case 5:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Price = uint32(v)
			b = b[n:]
		case 6:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Qty = uint32(v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

type PlaceOrderResponse struct {
	OrderId  uint64
	Accepted bool
	Reason   string
}

func (m *PlaceOrderResponse) Marshal() ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, m.OrderId)
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, boolToVarint(m.Accepted))
	if m.Reason != "" {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendString(b, m.Reason)
	}
	return b, nil
}

func (m *PlaceOrderResponse) Unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.OrderId = v
			b = b[n:]
		case 2:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Accepted = v != 0
			b = b[n:]
		case 3:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Reason = v
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

type CancelOrderRequest struct {
	OrderId uint64
}

func (m *CancelOrderRequest) Marshal() ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, m.OrderId)
	return b, nil
}

func (m *CancelOrderRequest) Unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.OrderId = v
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

// CancelOrderResponse shares PlaceOrderResponse's shape — both are the
// gateway's Result type on the wire.
type CancelOrderResponse = PlaceOrderResponse

type SnapshotRequest struct{}

func (m *SnapshotRequest) Marshal() ([]byte, error) { return nil, nil }
func (m *SnapshotRequest) Unmarshal(b []byte) error  { return nil }

type OrderEntry struct {
	OrderId   uint64
	Side      Side
	Type      OrderType
	Tif       TimeInForce
	Price     uint32
	Qty       uint32
	Remaining uint32
	Status    uint32
}

func (m *OrderEntry) marshalInto(b []byte) []byte {
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, m.OrderId)
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Side))
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Type))
	b = protowire.AppendTag(b, 4, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Tif))
	b = protowire.AppendTag(b, 5, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Price))
	b = protowire.AppendTag(b, 6, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Qty))
	b = protowire.AppendTag(b, 7, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Remaining))
	b = protowire.AppendTag(b, 8, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Status))
	return b
}

func (m *OrderEntry) unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeVarint(b)
			m.OrderId = v
			b = b[n:]
		case 2:
			v, n := protowire.ConsumeVarint(b)
			m.Side = Side(v)
			b = b[n:]
		case 3:
			v, n := protowire.ConsumeVarint(b)
			m.Type = OrderType(v)
			b = b[n:]
		case 4:
			v, n := protowire.ConsumeVarint(b)
			m.Tif = TimeInForce(v)
			b = b[n:]
		case 5:
			v, n := protowire.ConsumeVarint(b)
			m.Price = uint32(v)
			b = b[n:]
		case 6:
			v, n := protowire.ConsumeVarint(b)
			m.Qty = uint32(v)
			b = b[n:]
		case 7:
			v, n := protowire.ConsumeVarint(b)
			m.Remaining = uint32(v)
			b = b[n:]
		case 8:
			v, n := protowire.ConsumeVarint(b)
			m.Status = uint32(v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

type SnapshotResponse struct {
	Orders []*OrderEntry
}

func (m *SnapshotResponse) Marshal() ([]byte, error) {
	var b []byte
	for _, e := range m.Orders {
		var eb []byte
		eb = e.marshalInto(eb)
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, eb)
	}
	return b, nil
}

func (m *SnapshotResponse) Unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case 1:
			eb, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			entry := &OrderEntry{}
			if err := entry.unmarshal(eb); err != nil {
				return err
			}
			m.Orders = append(m.Orders, entry)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

func boolToVarint(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}
