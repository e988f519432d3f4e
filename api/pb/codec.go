package pb

import (
	"fmt"

	"google.golang.org/grpc/encoding"
)

// codecName must be distinct from "proto" so this registration doesn't
// shadow grpc's built-in codec for other services sharing a process.
const codecName = "obsidian-protowire"

// wireCodec implements encoding.Codec directly against Message (see
// messages.go) instead of proto.Message/proto.Marshal, since no
// protoc-gen-go output exists to satisfy that interface here.
type wireCodec struct{}

func (wireCodec) Marshal(v any) ([]byte, error) {
	m, ok := v.(Message)
	if !ok {
		return nil, fmt.Errorf("pb: %T does not implement pb.Message", v)
	}
	return m.Marshal()
}

func (wireCodec) Unmarshal(data []byte, v any) error {
	m, ok := v.(Message)
	if !ok {
		return fmt.Errorf("pb: %T does not implement pb.Message", v)
	}
	return m.Unmarshal(data)
}

func (wireCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(wireCodec{})
}

// NewCodec returns the encoding.Codec to pass to grpc.ForceServerCodec
// so the server uses this wire format for every RPC regardless of the
// client's declared content-subtype.
func NewCodec() encoding.Codec { return wireCodec{} }
