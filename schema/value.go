package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is a loosely-typed scalar lifted out of a raw report.
// The zero Value is NoData: it marshals to null and never yields a number.
type Value struct {
	raw     any
	present bool
}

// NoData marks a field that was absent from the source report.
var NoData = Value{}

// ValueOf wraps a decoded JSON value. A nil input yields NoData.
func ValueOf(v any) Value {
	if v == nil {
		return NoData
	}
	return Value{raw: v, present: true}
}

// Present reports whether the value was supplied by the source.
func (v Value) Present() bool {
	return v.present
}

// Raw returns the underlying decoded value, or nil for NoData.
func (v Value) Raw() any {
	return v.raw
}

// Number returns the value as a float when it is a JSON number or a numeric string.
func (v Value) Number() (float64, bool) {
	if !v.present {
		return 0, false
	}
	var f float64
	var err error
	switch t := v.raw.(type) {
	case json.Number:
		f, err = t.Float64()
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(t), 64)
	default:
		return 0, false
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Integer parses the leading integer of the value, so "35.7x" gives 35 and 42.9 gives 42.
func (v Value) Integer() (int64, bool) {
	if !v.present {
		return 0, false
	}
	if s, ok := v.raw.(string); ok {
		return parseIntPrefix(s)
	}
	f, ok := v.Number()
	if !ok {
		return 0, false
	}
	return int64(math.Trunc(f)), true
}

// Text renders the value as a string. Objects and arrays are rendered as compact JSON.
func (v Value) Text() (string, bool) {
	if !v.present {
		return "", false
	}
	switch t := v.raw.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	}
	data, err := json.Marshal(v.raw)
	if err != nil {
		return fmt.Sprint(v.raw), true
	}
	return string(data), true
}

// String implements fmt.Stringer. NoData renders as an empty string.
func (v Value) String() string {
	s, _ := v.Text()
	return s
}

// MarshalJSON writes the raw value, or null for NoData.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.present {
		return []byte("null"), nil
	}
	return json.Marshal(v.raw)
}

// UnmarshalJSON keeps numbers as json.Number. A JSON null becomes NoData.
func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = NoData
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = ValueOf(raw)
	return nil
}

// parseIntPrefix accepts optional leading space, an optional sign and at least one digit.
// Anything after the digits is ignored.
func parseIntPrefix(s string) (int64, bool) {
	s = strings.TrimLeft(s, " \t\n\r")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// TextPtr is Text as a pointer, nil for NoData.
func (v Value) TextPtr() *string {
	if s, ok := v.Text(); ok {
		return &s
	}
	return nil
}

// IntegerPtr is Integer as a pointer, nil when no integer can be read.
func (v Value) IntegerPtr() *int64 {
	if n, ok := v.Integer(); ok {
		return &n
	}
	return nil
}

// NumberPtr is Number as a pointer, nil when the value is not numeric.
func (v Value) NumberPtr() *float64 {
	if f, ok := v.Number(); ok {
		return &f
	}
	return nil
}
