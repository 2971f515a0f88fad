// Package codec implements the tagged JSON wire format used for every
// persisted and transported record: decimals, dates and durations keep their
// type identity through explicit tags, records carry a __type__ name resolved
// against a closed allow-list, and encoding is canonical (sorted keys), so
// the same value always produces byte-identical JSON.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openderiv/rfqdesk/internal/values"
)

const (
	tagType      = "__type__"
	tagDecimal   = "__decimal__"
	tagDate      = "__date__"
	tagDuration  = "__timedelta_s__"
	tagFrozenSet = "__frozenset__"
)

var (
	// ErrUnsupportedType means a value reached the encoder that the wire
	// format has no representation for.
	ErrUnsupportedType = errors.New("codec: unsupported type")
	// ErrUnknownTypeName means a payload named a type outside the allow-list.
	ErrUnknownTypeName = errors.New("codec: type name not in allow-list")
	// ErrMalformedPayload means the payload is not decodable JSON or a tag
	// carries the wrong shape.
	ErrMalformedPayload = errors.New("codec: malformed payload")
)

// Codec encodes and decodes domain values against a frozen type registry.
type Codec struct {
	reg *Registry
}

// New freezes the registry and returns a codec bound to it.
func New(reg *Registry) *Codec {
	reg.Freeze()
	return &Codec{reg: reg}
}

// Registry exposes the bound allow-list, mainly for diagnostics.
func (c *Codec) Registry() *Registry { return c.reg }

// Encode renders a value as canonical tagged JSON.
func (c *Codec) Encode(v any) ([]byte, error) {
	tree, err := c.encodeValue(v)
	if err != nil {
		return nil, err
	}
	// encoding/json sorts object keys, which gives the canonical form.
	return json.Marshal(tree)
}

// Decode parses tagged JSON back into domain values. Records come back as
// their registered concrete types, tagged scalars as decimals, dates,
// durations and sets, RFC 3339 strings as UTC timestamps.
func (c *Codec) Decode(data []byte) (any, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return c.decodeValue(raw)
}

// DecodeInto decodes the payload and assigns the result into target, which
// must be a non-nil pointer to a compatible type.
func (c *Codec) DecodeInto(data []byte, target any) error {
	decoded, err := c.Decode(data)
	if err != nil {
		return err
	}
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("codec: decode target must be a non-nil pointer, got %T", target)
	}
	elem := rv.Elem()
	if decoded == nil {
		elem.Set(reflect.Zero(elem.Type()))
		return nil
	}
	src := reflect.ValueOf(decoded)
	switch {
	case src.Type().AssignableTo(elem.Type()):
		elem.Set(src)
	case elem.Kind() == reflect.Ptr && src.Type().AssignableTo(elem.Type().Elem()):
		p := reflect.New(elem.Type().Elem())
		p.Elem().Set(src)
		elem.Set(p)
	case src.Kind() == reflect.Float64 && isNumericKind(elem.Kind()):
		// JSON numbers always arrive as float64.
		setNumeric(elem, src.Float())
	case src.Kind() == reflect.String && elem.Kind() == reflect.String:
		// Defined string types (enums) from bare wire strings.
		elem.Set(src.Convert(elem.Type()))
	default:
		return fmt.Errorf("codec: cannot assign decoded %s to target %s", src.Type(), elem.Type())
	}
	return nil
}

// Supports reports whether this codec owns the wire representation of v's
// type. Values it does not support are left to other converters.
func (c *Codec) Supports(v any) bool {
	switch v.(type) {
	case decimal.Decimal,
		values.PositiveDecimal, values.NonNegativeDecimal, values.NonZeroDecimal,
		values.Date, values.UTCTime, time.Duration, StringSet,
		values.LEI, values.UTI, values.ISIN, values.NonEmptyString,
		values.IdempotencyKey, values.Currency:
		return true
	}
	t := reflect.TypeOf(v)
	if t == nil {
		return false
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	_, ok := c.reg.lookupType(t)
	return ok
}

func (c *Codec) encodeValue(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case bool:
		return x, nil
	case string:
		return x, nil
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return x, nil
	case int32:
		return x, nil
	case int64:
		return x, nil
	case decimal.Decimal:
		return map[string]any{tagDecimal: x.String()}, nil
	case values.PositiveDecimal:
		return map[string]any{tagDecimal: x.String()}, nil
	case values.NonNegativeDecimal:
		return map[string]any{tagDecimal: x.String()}, nil
	case values.NonZeroDecimal:
		return map[string]any{tagDecimal: x.String()}, nil
	case values.Date:
		return map[string]any{tagDate: x.String()}, nil
	case values.UTCTime:
		return x.String(), nil
	case time.Time:
		ut, err := values.NewUTCTime(x)
		if err != nil {
			return nil, fmt.Errorf("codec: encode time: %w", err)
		}
		return ut.String(), nil
	case time.Duration:
		return map[string]any{tagDuration: x.Seconds()}, nil
	case StringSet:
		return map[string]any{tagFrozenSet: x.Sorted()}, nil
	case values.LEI:
		return x.String(), nil
	case values.UTI:
		return x.String(), nil
	case values.ISIN:
		return x.String(), nil
	case values.NonEmptyString:
		return x.String(), nil
	case values.IdempotencyKey:
		return x.String(), nil
	case values.Currency:
		return x.String(), nil
	}

	if e, ok := c.reg.lookupType(reflect.TypeOf(v)); ok {
		fields, err := e.encode(v)
		if err != nil {
			return nil, fmt.Errorf("codec: encode %s: %w", e.name, err)
		}
		out := make(map[string]any, len(fields)+1)
		out[tagType] = e.name
		for k, raw := range fields {
			enc, err := c.encodeValue(raw)
			if err != nil {
				return nil, fmt.Errorf("codec: encode %s.%s: %w", e.name, k, err)
			}
			out[k] = enc
		}
		return out, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return nil, nil
		}
		return c.encodeValue(rv.Elem().Interface())
	case reflect.String:
		// Defined string types: enums encode as their wire value.
		return rv.String(), nil
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint(), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			enc, err := c.encodeValue(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = enc
		}
		return out, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: map key %v", ErrUnsupportedType, rv.Type().Key())
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			enc, err := c.encodeValue(iter.Value().Interface())
			if err != nil {
				return nil, err
			}
			out[iter.Key().String()] = enc
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
}

func (c *Codec) decodeValue(v any) (any, error) {
	switch x := v.(type) {
	case string:
		if looksLikeDateTime(x) {
			if ut, err := values.ParseUTCTime(x); err == nil {
				return ut, nil
			}
		}
		return x, nil
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			decoded, err := c.decodeValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = decoded
		}
		return out, nil
	case map[string]any:
		return c.decodeObject(x)
	default:
		// nil, bool, float64 pass through.
		return v, nil
	}
}

func (c *Codec) decodeObject(obj map[string]any) (any, error) {
	if raw, ok := obj[tagDecimal]; ok {
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s must carry a string", ErrMalformedPayload, tagDecimal)
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("%w: bad decimal %q", ErrMalformedPayload, s)
		}
		return d, nil
	}
	if raw, ok := obj[tagDate]; ok {
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s must carry a string", ErrMalformedPayload, tagDate)
		}
		d, err := values.ParseDate(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		return d, nil
	}
	if raw, ok := obj[tagDuration]; ok {
		secs, ok := raw.(float64)
		if !ok {
			return nil, fmt.Errorf("%w: %s must carry a number", ErrMalformedPayload, tagDuration)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	if raw, ok := obj[tagFrozenSet]; ok {
		items, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s must carry an array", ErrMalformedPayload, tagFrozenSet)
		}
		set := make(StringSet, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s members must be strings", ErrMalformedPayload, tagFrozenSet)
			}
			set.Add(s)
		}
		return set, nil
	}
	if rawName, ok := obj[tagType]; ok {
		name, ok := rawName.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s must carry a string", ErrMalformedPayload, tagType)
		}
		e, ok := c.reg.lookupName(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTypeName, name)
		}
		fields := make(map[string]any, len(obj)-1)
		for k, rawField := range obj {
			if k == tagType {
				continue
			}
			decoded, err := c.decodeValue(rawField)
			if err != nil {
				return nil, fmt.Errorf("codec: decode %s.%s: %w", name, k, err)
			}
			fields[k] = decoded
		}
		return e.decode(fields)
	}
	out := make(map[string]any, len(obj))
	for k, rawField := range obj {
		decoded, err := c.decodeValue(rawField)
		if err != nil {
			return nil, err
		}
		out[k] = decoded
	}
	return out, nil
}

// looksLikeDateTime is a cheap screen before the real parse: RFC 3339
// timestamps are at least 20 bytes and carry a date prefix plus a T.
func looksLikeDateTime(s string) bool {
	return len(s) >= 20 && s[4] == '-' && strings.ContainsRune(s, 'T')
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func setNumeric(elem reflect.Value, f float64) {
	switch elem.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		elem.SetInt(int64(f))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		elem.SetUint(uint64(f))
	case reflect.Float32, reflect.Float64:
		elem.SetFloat(f)
	}
}
