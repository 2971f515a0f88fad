package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/converter"

	"github.com/openderiv/rfqdesk/internal/rfq"
)

func TestPayloadConverter(t *testing.T) {
	pc := NewPayloadConverter(testCodec(t))

	t.Run("domain record round trip", func(t *testing.T) {
		in := fixtureInput(t)
		payload, err := pc.ToPayload(in)
		require.NoError(t, err)
		require.NotNil(t, payload)
		assert.Equal(t, "json/tagged", string(payload.Metadata[converter.MetadataEncoding]))

		var back rfq.Input
		require.NoError(t, pc.FromPayload(payload, &back))
		assert.Equal(t, in.RFQID, back.RFQID)
	})

	t.Run("unsupported values fall through", func(t *testing.T) {
		type plain struct{ X int }
		payload, err := pc.ToPayload(plain{X: 1})
		require.NoError(t, err)
		assert.Nil(t, payload)
	})

	t.Run("to string shows the raw json", func(t *testing.T) {
		payload, err := pc.ToPayload(fixturePricing(t))
		require.NoError(t, err)
		assert.Contains(t, pc.ToString(payload), `"__type__":"PricingResult"`)
	})
}

func TestDataConverterComposite(t *testing.T) {
	dc := DataConverter()

	t.Run("domain record uses the tagged encoding", func(t *testing.T) {
		in := fixtureInput(t)
		payload, err := dc.ToPayload(in)
		require.NoError(t, err)
		assert.Equal(t, "json/tagged", string(payload.Metadata[converter.MetadataEncoding]))

		var back rfq.Input
		require.NoError(t, dc.FromPayload(payload, &back))
		assert.Equal(t, in.ClientLEI, back.ClientLEI)
	})

	t.Run("plain structs fall back to json", func(t *testing.T) {
		type plain struct {
			X int `json:"x"`
		}
		payload, err := dc.ToPayload(plain{X: 7})
		require.NoError(t, err)
		assert.Equal(t, "json/plain", string(payload.Metadata[converter.MetadataEncoding]))
	})
}
