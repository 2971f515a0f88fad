package codec

import (
	"fmt"

	commonpb "go.temporal.io/api/common/v1"
	"go.temporal.io/sdk/converter"
)

// wireEncoding is the payload encoding name stamped on every payload this
// converter produces.
const wireEncoding = "json/tagged"

// PayloadConverter adapts the tagged codec to the workflow engine's payload
// interface. It claims only the types the codec supports; everything else is
// passed to the next converter in the chain.
type PayloadConverter struct {
	codec *Codec
}

// NewPayloadConverter builds a converter over a frozen codec.
func NewPayloadConverter(c *Codec) *PayloadConverter {
	return &PayloadConverter{codec: c}
}

func (pc *PayloadConverter) Encoding() string { return wireEncoding }

// ToPayload encodes supported values as tagged JSON. Unsupported values get a
// nil payload so the composite converter tries the next encoding.
func (pc *PayloadConverter) ToPayload(value any) (*commonpb.Payload, error) {
	if value == nil || !pc.codec.Supports(value) {
		return nil, nil
	}
	data, err := pc.codec.Encode(value)
	if err != nil {
		return nil, fmt.Errorf("codec: to payload: %w", err)
	}
	return &commonpb.Payload{
		Metadata: map[string][]byte{
			converter.MetadataEncoding: []byte(wireEncoding),
		},
		Data: data,
	}, nil
}

// FromPayload decodes a tagged payload into valuePtr, revalidating every
// record along the way.
func (pc *PayloadConverter) FromPayload(payload *commonpb.Payload, valuePtr any) error {
	if err := pc.codec.DecodeInto(payload.GetData(), valuePtr); err != nil {
		return fmt.Errorf("codec: from payload: %w", err)
	}
	return nil
}

// ToString renders a payload for history display. Tagged JSON is already
// human-readable, so the raw bytes serve.
func (pc *PayloadConverter) ToString(payload *commonpb.Payload) string {
	return string(payload.GetData())
}

// DataConverter builds the composite converter used by clients, workers and
// tests: nil and raw-bytes payloads keep their standard encodings, domain
// records go through the tagged codec, and anything else falls back to plain
// JSON.
func DataConverter() converter.DataConverter {
	return converter.NewCompositeDataConverter(
		converter.NewNilPayloadConverter(),
		converter.NewByteSlicePayloadConverter(),
		NewPayloadConverter(New(DefaultRegistry())),
		converter.NewJSONPayloadConverter(),
	)
}
