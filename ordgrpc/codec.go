// Package ordgrpc binds the ordering gate and the voting transport to
// gRPC, without protoc code generation: wire messages are plain
// exported structs tagged for cramberry's deterministic binary
// encoding, and the service itself is a hand-written grpc.ServiceDesc.
package ordgrpc

import (
	"fmt"

	"github.com/blockberries/cramberry/pkg/cramberry"
	"google.golang.org/grpc/encoding"
)

const codecName = "cramberry"

// Codec implements encoding.Codec using cramberry for deterministic
// binary serialization of the wire types in this package.
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) {
	data, err := cramberry.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("ordgrpc: cramberry marshal: %w", err)
	}
	return data, nil
}

func (Codec) Unmarshal(data []byte, v any) error {
	if err := cramberry.Unmarshal(data, v); err != nil {
		return fmt.Errorf("ordgrpc: cramberry unmarshal: %w", err)
	}
	return nil
}

func (Codec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(Codec{})
}
