// Package values provides validated scalar types for regulatory identifiers,
// quantities and timestamps. Construction always goes through a New* function
// (or the text unmarshaler, which applies the same predicate), so a value of
// one of these types can only exist in a valid state. Zero values are the
// single deliberate exception: they mean "absent" and are detectable via IsZero.
package values

import (
	"fmt"
)

// isAlnum reports whether s consists entirely of ASCII letters and digits.
func isAlnum(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isAlnumRune(r) {
			return false
		}
	}
	return true
}

func isAlnumRune(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

// LEI is an ISO 17442 Legal Entity Identifier: exactly 20 alphanumeric characters.
type LEI struct {
	s string
}

// NewLEI validates and wraps a raw LEI string.
func NewLEI(raw string) (LEI, error) {
	if len(raw) != 20 || !isAlnum(raw) {
		return LEI{}, fmt.Errorf("values: invalid LEI %q: must be exactly 20 alphanumeric characters", raw)
	}
	return LEI{s: raw}, nil
}

// MustLEI is a constructor for tests and static configuration; it panics on invalid input.
func MustLEI(raw string) LEI {
	v, err := NewLEI(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func (v LEI) String() string { return v.s }
func (v LEI) IsZero() bool   { return v.s == "" }

func (v LEI) MarshalText() ([]byte, error) { return []byte(v.s), nil }

func (v *LEI) UnmarshalText(b []byte) error {
	parsed, err := NewLEI(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// UTI is a Unique Transaction Identifier: 1-52 characters, where the prefix
// (up to the first 20 characters, the issuer LEI portion) must be alphanumeric.
type UTI struct {
	s string
}

// NewUTI validates and wraps a raw UTI string.
func NewUTI(raw string) (UTI, error) {
	if len(raw) < 1 || len(raw) > 52 {
		return UTI{}, fmt.Errorf("values: invalid UTI %q: length must be between 1 and 52", raw)
	}
	prefix := raw
	if len(prefix) > 20 {
		prefix = prefix[:20]
	}
	if !isAlnum(prefix) {
		return UTI{}, fmt.Errorf("values: invalid UTI %q: first %d characters must be alphanumeric", raw, len(prefix))
	}
	return UTI{s: raw}, nil
}

// MustUTI is a constructor for tests and static configuration; it panics on invalid input.
func MustUTI(raw string) UTI {
	v, err := NewUTI(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func (v UTI) String() string { return v.s }
func (v UTI) IsZero() bool   { return v.s == "" }

func (v UTI) MarshalText() ([]byte, error) { return []byte(v.s), nil }

func (v *UTI) UnmarshalText(b []byte) error {
	parsed, err := NewUTI(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ISIN is an ISO 6166 International Securities Identification Number:
// two uppercase country letters, nine alphanumeric body characters and a
// check digit, verified with the Luhn algorithm over the letter-expanded
// digit string (A=10 ... Z=35).
type ISIN struct {
	s string
}

// NewISIN validates and wraps a raw ISIN string.
func NewISIN(raw string) (ISIN, error) {
	if len(raw) != 12 {
		return ISIN{}, fmt.Errorf("values: invalid ISIN %q: must be exactly 12 characters", raw)
	}
	for i := 0; i < 2; i++ {
		if raw[i] < 'A' || raw[i] > 'Z' {
			return ISIN{}, fmt.Errorf("values: invalid ISIN %q: country code must be two uppercase letters", raw)
		}
	}
	for i := 2; i < 11; i++ {
		c := raw[i]
		if !((c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z')) {
			return ISIN{}, fmt.Errorf("values: invalid ISIN %q: body must be uppercase alphanumeric", raw)
		}
	}
	if raw[11] < '0' || raw[11] > '9' {
		return ISIN{}, fmt.Errorf("values: invalid ISIN %q: check digit must be numeric", raw)
	}
	if !isinLuhnValid(raw) {
		return ISIN{}, fmt.Errorf("values: invalid ISIN %q: check digit does not match", raw)
	}
	return ISIN{s: raw}, nil
}

// MustISIN is a constructor for tests and static configuration; it panics on invalid input.
func MustISIN(raw string) ISIN {
	v, err := NewISIN(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// isinLuhnValid expands letters to their numeric values (A=10 ... Z=35) and
// runs the standard Luhn check over the resulting digit string, check digit
// included.
func isinLuhnValid(s string) bool {
	digits := make([]int, 0, len(s)*2)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			digits = append(digits, int(c-'0'))
		case c >= 'A' && c <= 'Z':
			v := int(c-'A') + 10
			digits = append(digits, v/10, v%10)
		default:
			return false
		}
	}
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := digits[i]
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

func (v ISIN) String() string { return v.s }
func (v ISIN) IsZero() bool   { return v.s == "" }

// CountryCode returns the two-letter country prefix.
func (v ISIN) CountryCode() string {
	if len(v.s) < 2 {
		return ""
	}
	return v.s[:2]
}

func (v ISIN) MarshalText() ([]byte, error) { return []byte(v.s), nil }

func (v *ISIN) UnmarshalText(b []byte) error {
	parsed, err := NewISIN(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// NonEmptyString is a string guaranteed to have at least one character.
type NonEmptyString struct {
	s string
}

// NewNonEmptyString validates and wraps a raw string.
func NewNonEmptyString(raw string) (NonEmptyString, error) {
	if raw == "" {
		return NonEmptyString{}, fmt.Errorf("values: invalid NonEmptyString: must not be empty")
	}
	return NonEmptyString{s: raw}, nil
}

// MustNonEmptyString is a constructor for tests and static configuration; it panics on invalid input.
func MustNonEmptyString(raw string) NonEmptyString {
	v, err := NewNonEmptyString(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func (v NonEmptyString) String() string { return v.s }
func (v NonEmptyString) IsZero() bool   { return v.s == "" }

func (v NonEmptyString) MarshalText() ([]byte, error) { return []byte(v.s), nil }

func (v *NonEmptyString) UnmarshalText(b []byte) error {
	parsed, err := NewNonEmptyString(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// IdempotencyKey deduplicates externally visible side effects (quote delivery,
// booking, confirmation) across activity retries.
type IdempotencyKey struct {
	s string
}

// NewIdempotencyKey validates and wraps a raw key.
func NewIdempotencyKey(raw string) (IdempotencyKey, error) {
	if raw == "" {
		return IdempotencyKey{}, fmt.Errorf("values: invalid IdempotencyKey: must not be empty")
	}
	return IdempotencyKey{s: raw}, nil
}

// MustIdempotencyKey is a constructor for tests and static configuration; it panics on invalid input.
func MustIdempotencyKey(raw string) IdempotencyKey {
	v, err := NewIdempotencyKey(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func (v IdempotencyKey) String() string { return v.s }
func (v IdempotencyKey) IsZero() bool   { return v.s == "" }

func (v IdempotencyKey) MarshalText() ([]byte, error) { return []byte(v.s), nil }

func (v *IdempotencyKey) UnmarshalText(b []byte) error {
	parsed, err := NewIdempotencyKey(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
