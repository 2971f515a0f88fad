package values

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPositiveDecimal(t *testing.T) {
	t.Run("accepts positive", func(t *testing.T) {
		v, err := NewPositiveDecimal(decimal.NewFromInt(1000000))
		require.NoError(t, err)
		assert.Equal(t, "1000000", v.String())
	})

	t.Run("rejects zero", func(t *testing.T) {
		_, err := NewPositiveDecimal(decimal.Zero)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "PositiveDecimal")
	})

	t.Run("rejects negative", func(t *testing.T) {
		_, err := NewPositiveDecimal(decimal.NewFromInt(-1))
		assert.Error(t, err)
	})

	t.Run("rejects unparseable string", func(t *testing.T) {
		_, err := ParsePositiveDecimal("1.2.3")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "PositiveDecimal")
	})

	t.Run("preserves exact decimal representation", func(t *testing.T) {
		v := MustPositiveDecimal("0.000000001")
		assert.Equal(t, "0.000000001", v.String())
	})
}

func TestNewNonNegativeDecimal(t *testing.T) {
	t.Run("accepts zero", func(t *testing.T) {
		v, err := NewNonNegativeDecimal(decimal.Zero)
		require.NoError(t, err)
		assert.True(t, v.Decimal().IsZero())
	})

	t.Run("rejects negative", func(t *testing.T) {
		_, err := ParseNonNegativeDecimal("-0.01")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "NonNegativeDecimal")
	})
}

func TestNewNonZeroDecimal(t *testing.T) {
	t.Run("accepts negative", func(t *testing.T) {
		v, err := ParseNonZeroDecimal("-0.005")
		require.NoError(t, err)
		assert.Equal(t, "-0.005", v.String())
	})

	t.Run("rejects zero", func(t *testing.T) {
		_, err := NewNonZeroDecimal(decimal.Zero)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "NonZeroDecimal")
	})

	t.Run("rejects numerically zero forms", func(t *testing.T) {
		_, err := ParseNonZeroDecimal("0.000")
		assert.Error(t, err)
	})
}

func TestNewCurrency(t *testing.T) {
	t.Run("accepts code", func(t *testing.T) {
		c, err := NewCurrency("USD")
		require.NoError(t, err)
		assert.Equal(t, "USD", c.String())
	})

	t.Run("rejects empty", func(t *testing.T) {
		_, err := NewCurrency("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Currency")
	})

	t.Run("rejects whitespace", func(t *testing.T) {
		_, err := NewCurrency("U D")
		assert.Error(t, err)
	})
}

func TestNewMoney(t *testing.T) {
	t.Run("constructs from amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.RequireFromString("152.75"), MustCurrency("USD"))
		require.NoError(t, err)
		assert.Equal(t, "152.75 USD", m.String())
		assert.Equal(t, "USD", m.Currency().String())
	})

	t.Run("allows negative amounts", func(t *testing.T) {
		_, err := ParseMoney("-12.5", "EUR")
		assert.NoError(t, err)
	})

	t.Run("rejects empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(1), Currency{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Money")
	})

	t.Run("rejects unparseable amount", func(t *testing.T) {
		_, err := ParseMoney("twelve", "USD")
		assert.Error(t, err)
	})
}

func TestMoney_Equal(t *testing.T) {
	t.Run("numeric equality ignores trailing zeros", func(t *testing.T) {
		a := MustMoney("1.50", "USD")
		b := MustMoney("1.5", "USD")
		assert.True(t, a.Equal(b))
	})

	t.Run("different currency is not equal", func(t *testing.T) {
		a := MustMoney("1.5", "USD")
		b := MustMoney("1.5", "EUR")
		assert.False(t, a.Equal(b))
	})

	t.Run("different amount is not equal", func(t *testing.T) {
		a := MustMoney("1.5", "USD")
		b := MustMoney("1.51", "USD")
		assert.False(t, a.Equal(b))
	})
}
