package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadClientEligibility(t *testing.T) {
	t.Setenv("RFQDESK_DATA_DIR", t.TempDir())
	t.Setenv("DEV_MODE", "true")
	t.Setenv("CLIENT_ELIGIBILITY", "529900T8BM49AURSDO55:EQUITY|RATES; 5493001KJTIIGC8Y1R12:FX ;NOCLASSLEI0000000001:")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"EQUITY", "RATES"}, cfg.ClientEligibility["529900T8BM49AURSDO55"])
	assert.Equal(t, []string{"FX"}, cfg.ClientEligibility["5493001KJTIIGC8Y1R12"])
	// A trailing colon onboards the client with no asset classes at all.
	list, ok := cfg.ClientEligibility["NOCLASSLEI0000000001"]
	assert.True(t, ok)
	assert.Empty(t, list)
}

func TestLoadClientEligibilityUnset(t *testing.T) {
	t.Setenv("RFQDESK_DATA_DIR", t.TempDir())
	t.Setenv("DEV_MODE", "true")
	t.Setenv("CLIENT_ELIGIBILITY", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Nil(t, cfg.ClientEligibility)
}
