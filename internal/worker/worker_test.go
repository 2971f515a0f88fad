package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openderiv/rfqdesk/internal/product"
)

func TestEligibilityClasses(t *testing.T) {
	t.Run("empty config disables nothing", func(t *testing.T) {
		out, err := eligibilityClasses(nil)
		require.NoError(t, err)
		assert.Nil(t, out)
	})

	t.Run("valid classes normalize", func(t *testing.T) {
		out, err := eligibilityClasses(map[string][]string{
			"529900T8BM49AURSDO55": {"equity", " RATES "},
			"5493001KJTIIGC8Y1R12": {},
		})
		require.NoError(t, err)
		assert.Equal(t, []product.AssetClass{product.AssetEquity, product.AssetRates},
			out["529900T8BM49AURSDO55"])
		// An onboarded client with no classes is eligible for nothing.
		assert.Empty(t, out["5493001KJTIIGC8Y1R12"])
	})

	t.Run("unknown class fails startup", func(t *testing.T) {
		_, err := eligibilityClasses(map[string][]string{
			"529900T8BM49AURSDO55": {"COMMODITY"},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "COMMODITY")
	})
}
