package rules

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DataType tags a configuration value with its declared type.
type DataType string

// The closed set of configuration data types.
const (
	TypeNumber  DataType = "number"
	TypeString  DataType = "string"
	TypeBoolean DataType = "boolean"
	TypeJSON    DataType = "json"
)

// ValidDataType reports whether dt is one of the recognised data types.
func ValidDataType(dt DataType) bool {
	switch dt {
	case TypeNumber, TypeString, TypeBoolean, TypeJSON:
		return true
	}
	return false
}

// Value is a tagged variant holding a configuration or override value.
// The tag always agrees with the owning configuration's DataType; values
// only enter the system through CoerceValue, which enforces that.
type Value struct {
	typ DataType
	num float64
	str string
	b   bool
	raw json.RawMessage
}

// NumberValue wraps a float64 as a number-typed Value.
func NumberValue(n float64) Value { return Value{typ: TypeNumber, num: n} }

// StringValue wraps a string as a string-typed Value.
func StringValue(s string) Value { return Value{typ: TypeString, str: s} }

// BoolValue wraps a bool as a boolean-typed Value.
func BoolValue(b bool) Value { return Value{typ: TypeBoolean, b: b} }

// JSONValue wraps raw JSON as a json-typed Value. The caller must pass
// syntactically valid JSON; CoerceValue is the checked entry point.
func JSONValue(raw json.RawMessage) Value { return Value{typ: TypeJSON, raw: raw} }

// Type returns the data type tag.
func (v Value) Type() DataType { return v.typ }

// Number returns the numeric payload. Only meaningful when Type() is number.
func (v Value) Number() float64 { return v.num }

// String returns the textual payload. Only meaningful when Type() is string.
func (v Value) String() string { return v.str }

// Bool returns the boolean payload. Only meaningful when Type() is boolean.
func (v Value) Bool() bool { return v.b }

// JSON returns the raw JSON payload. Only meaningful when Type() is json.
func (v Value) JSON() json.RawMessage { return v.raw }

// MarshalJSON encodes the payload as its native JSON shape, without the tag.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.typ {
	case TypeNumber:
		return json.Marshal(v.num)
	case TypeString:
		return json.Marshal(v.str)
	case TypeBoolean:
		return json.Marshal(v.b)
	case TypeJSON:
		if len(v.raw) == 0 {
			return []byte("null"), nil
		}
		return v.raw, nil
	default:
		return []byte("null"), nil
	}
}

// Raw re-encodes the payload as JSON bytes for storage.
func (v Value) Raw() (json.RawMessage, error) {
	b, err := v.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return b, nil
}

// CoerceValue parses raw JSON into a Value tagged with dt. This is the single
// coercion path for both configuration base values and rule override values:
// the stored value is coercible to its declared type exactly when this
// function succeeds.
//
// Coercion is lenient the way the admin surface needs it to be: a number may
// arrive as a JSON number or as a numeric string ("42"), a boolean as a JSON
// bool or as "true"/"false". Everything else is a mismatch.
func CoerceValue(dt DataType, raw json.RawMessage) (Value, error) {
	if len(raw) == 0 {
		return Value{}, fmt.Errorf("%w: empty value for type %q", ErrTypeMismatch, dt)
	}

	switch dt {
	case TypeNumber:
		var n float64
		if err := json.Unmarshal(raw, &n); err == nil {
			return NumberValue(n), nil
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				return NumberValue(n), nil
			}
		}
		return Value{}, fmt.Errorf("%w: %s is not a number", ErrTypeMismatch, raw)

	case TypeString:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Value{}, fmt.Errorf("%w: %s is not a string", ErrTypeMismatch, raw)
		}
		return StringValue(s), nil

	case TypeBoolean:
		var b bool
		if err := json.Unmarshal(raw, &b); err == nil {
			return BoolValue(b), nil
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
				return BoolValue(b), nil
			}
		}
		return Value{}, fmt.Errorf("%w: %s is not a boolean", ErrTypeMismatch, raw)

	case TypeJSON:
		if !json.Valid(raw) {
			return Value{}, fmt.Errorf("%w: value is not valid JSON", ErrTypeMismatch)
		}
		// Keep a private copy; callers may reuse the buffer.
		cp := make(json.RawMessage, len(raw))
		copy(cp, raw)
		return JSONValue(cp), nil

	default:
		return Value{}, fmt.Errorf("%w: unknown data type %q", ErrTypeMismatch, dt)
	}
}
