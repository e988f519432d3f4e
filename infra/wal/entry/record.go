package entry

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Kind distinguishes the two ingress operations the gateway admits:
// a new order Submit, or a Cancel of a resting one.
type Kind uint8

const (
	KindSubmit Kind = iota
	KindCancel
)

// Record is one admitted Submit or Cancel, captured before it reaches
// the matching engine so a restarted gateway can rebuild the book and
// resume the sequencer by replaying it (SPEC_FULL §3.1).
type Record struct {
	Kind    Kind
	Seq     uint64
	Time    int64
	Payload []byte
}

func NewRecord(k Kind, seq uint64, payload []byte) *Record {
	return &Record{
		Kind:    k,
		Seq:     seq,
		Time:    time.Now().UnixNano(),
		Payload: payload,
	}
}

// SubmitPayload is a Kind Submit record's body: everything the engine
// needs to reconstruct the admitted Order (its status is always New
// on replay, so that field is not carried).
type SubmitPayload struct {
	OrderID uint64
	Side    uint8
	Type    uint8
	TIF     uint8
	Price   uint32
	Qty     uint32
}

const submitPayloadSize = 8 + 1 + 1 + 1 + 4 + 4

// EncodeSubmit lays out p for a Record's Payload field.
func EncodeSubmit(p SubmitPayload) []byte {
	buf := make([]byte, submitPayloadSize)
	binary.BigEndian.PutUint64(buf[0:8], p.OrderID)
	buf[8] = p.Side
	buf[9] = p.Type
	buf[10] = p.TIF
	binary.BigEndian.PutUint32(buf[11:15], p.Price)
	binary.BigEndian.PutUint32(buf[15:19], p.Qty)
	return buf
}

// DecodeSubmit reverses EncodeSubmit.
func DecodeSubmit(b []byte) (SubmitPayload, error) {
	if len(b) != submitPayloadSize {
		return SubmitPayload{}, fmt.Errorf("entry: submit payload has wrong length %d, want %d", len(b), submitPayloadSize)
	}
	return SubmitPayload{
		OrderID: binary.BigEndian.Uint64(b[0:8]),
		Side:    b[8],
		Type:    b[9],
		TIF:     b[10],
		Price:   binary.BigEndian.Uint32(b[11:15]),
		Qty:     binary.BigEndian.Uint32(b[15:19]),
	}, nil
}

// EncodeCancel lays out the cancelled order id for a Record's Payload field.
func EncodeCancel(orderID uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, orderID)
	return buf
}

// DecodeCancel reverses EncodeCancel.
func DecodeCancel(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("entry: cancel payload has wrong length %d, want 8", len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}
