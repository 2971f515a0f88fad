package values

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PositiveDecimal is a finite decimal strictly greater than zero.
type PositiveDecimal struct {
	d decimal.Decimal
}

// NewPositiveDecimal validates and wraps a decimal.
func NewPositiveDecimal(d decimal.Decimal) (PositiveDecimal, error) {
	if d.Sign() <= 0 {
		return PositiveDecimal{}, fmt.Errorf("values: invalid PositiveDecimal %s: must be greater than zero", d)
	}
	return PositiveDecimal{d: d}, nil
}

// ParsePositiveDecimal parses a decimal string and validates it.
func ParsePositiveDecimal(raw string) (PositiveDecimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return PositiveDecimal{}, fmt.Errorf("values: invalid PositiveDecimal %q: %w", raw, err)
	}
	return NewPositiveDecimal(d)
}

// MustPositiveDecimal parses a decimal string for tests and static configuration; it panics on invalid input.
func MustPositiveDecimal(raw string) PositiveDecimal {
	v, err := ParsePositiveDecimal(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func (v PositiveDecimal) Decimal() decimal.Decimal { return v.d }
func (v PositiveDecimal) String() string           { return v.d.String() }
func (v PositiveDecimal) IsZero() bool             { return v.d.IsZero() }

func (v PositiveDecimal) MarshalText() ([]byte, error) { return []byte(v.d.String()), nil }

func (v *PositiveDecimal) UnmarshalText(b []byte) error {
	parsed, err := ParsePositiveDecimal(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// NonNegativeDecimal is a finite decimal greater than or equal to zero.
type NonNegativeDecimal struct {
	d decimal.Decimal
}

// NewNonNegativeDecimal validates and wraps a decimal.
func NewNonNegativeDecimal(d decimal.Decimal) (NonNegativeDecimal, error) {
	if d.Sign() < 0 {
		return NonNegativeDecimal{}, fmt.Errorf("values: invalid NonNegativeDecimal %s: must not be negative", d)
	}
	return NonNegativeDecimal{d: d}, nil
}

// ParseNonNegativeDecimal parses a decimal string and validates it.
func ParseNonNegativeDecimal(raw string) (NonNegativeDecimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return NonNegativeDecimal{}, fmt.Errorf("values: invalid NonNegativeDecimal %q: %w", raw, err)
	}
	return NewNonNegativeDecimal(d)
}

// MustNonNegativeDecimal parses a decimal string for tests and static configuration; it panics on invalid input.
func MustNonNegativeDecimal(raw string) NonNegativeDecimal {
	v, err := ParseNonNegativeDecimal(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func (v NonNegativeDecimal) Decimal() decimal.Decimal { return v.d }
func (v NonNegativeDecimal) String() string           { return v.d.String() }
func (v NonNegativeDecimal) IsZero() bool             { return v.d.IsZero() }

func (v NonNegativeDecimal) MarshalText() ([]byte, error) { return []byte(v.d.String()), nil }

func (v *NonNegativeDecimal) UnmarshalText(b []byte) error {
	parsed, err := ParseNonNegativeDecimal(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// NonZeroDecimal is a finite decimal that is not zero; either sign is allowed.
type NonZeroDecimal struct {
	d decimal.Decimal
}

// NewNonZeroDecimal validates and wraps a decimal.
func NewNonZeroDecimal(d decimal.Decimal) (NonZeroDecimal, error) {
	if d.IsZero() {
		return NonZeroDecimal{}, fmt.Errorf("values: invalid NonZeroDecimal: must not be zero")
	}
	return NonZeroDecimal{d: d}, nil
}

// ParseNonZeroDecimal parses a decimal string and validates it.
func ParseNonZeroDecimal(raw string) (NonZeroDecimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return NonZeroDecimal{}, fmt.Errorf("values: invalid NonZeroDecimal %q: %w", raw, err)
	}
	return NewNonZeroDecimal(d)
}

// MustNonZeroDecimal parses a decimal string for tests and static configuration; it panics on invalid input.
func MustNonZeroDecimal(raw string) NonZeroDecimal {
	v, err := ParseNonZeroDecimal(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func (v NonZeroDecimal) Decimal() decimal.Decimal { return v.d }
func (v NonZeroDecimal) String() string           { return v.d.String() }
func (v NonZeroDecimal) IsZero() bool             { return v.d.IsZero() }

func (v NonZeroDecimal) MarshalText() ([]byte, error) { return []byte(v.d.String()), nil }

func (v *NonZeroDecimal) UnmarshalText(b []byte) error {
	parsed, err := ParseNonZeroDecimal(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Currency is a non-empty currency code without interior whitespace.
// Codes are kept exactly as given; "USD" and "usd" are distinct values.
type Currency struct {
	s string
}

// NewCurrency validates and wraps a raw currency code.
func NewCurrency(raw string) (Currency, error) {
	if raw == "" {
		return Currency{}, fmt.Errorf("values: invalid Currency: must not be empty")
	}
	if strings.ContainsAny(raw, " \t\n\r") {
		return Currency{}, fmt.Errorf("values: invalid Currency %q: must not contain whitespace", raw)
	}
	return Currency{s: raw}, nil
}

// MustCurrency is a constructor for tests and static configuration; it panics on invalid input.
func MustCurrency(raw string) Currency {
	v, err := NewCurrency(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Currency) String() string { return v.s }
func (v Currency) IsZero() bool   { return v.s == "" }

func (v Currency) MarshalText() ([]byte, error) { return []byte(v.s), nil }

func (v *Currency) UnmarshalText(b []byte) error {
	parsed, err := NewCurrency(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Money pairs a finite decimal amount with a currency code. The amount may
// carry either sign; quantity constraints belong to the fields that use it.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney validates and constructs a Money value.
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency.IsZero() {
		return Money{}, fmt.Errorf("values: invalid Money: currency must not be empty")
	}
	return Money{amount: amount, currency: currency}, nil
}

// ParseMoney parses an amount string and currency code pair.
func ParseMoney(amount, currency string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("values: invalid Money amount %q: %w", amount, err)
	}
	c, err := NewCurrency(currency)
	if err != nil {
		return Money{}, err
	}
	return NewMoney(d, c)
}

// MustMoney parses an amount/currency pair for tests and static configuration; it panics on invalid input.
func MustMoney(amount, currency string) Money {
	v, err := ParseMoney(amount, currency)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Money) Amount() decimal.Decimal { return v.amount }
func (v Money) Currency() Currency     { return v.currency }
func (v Money) IsZero() bool           { return v.currency.IsZero() }

// Equal reports whether two Money values have the same currency and
// numerically equal amounts (1.50 equals 1.5).
func (v Money) Equal(o Money) bool {
	return v.currency == o.currency && v.amount.Equal(o.amount)
}

func (v Money) String() string {
	return v.amount.String() + " " + v.currency.String()
}
