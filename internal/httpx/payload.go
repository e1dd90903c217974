package httpx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/ariefcatur/go-grocery-store/internal/apperr"
	"github.com/shopspring/decimal"
)

// object is a decoded JSON object whose fields are coerced on access.
// Numbers may arrive as JSON numbers or numeric strings, text as strings or
// numbers. prefix is prepended to field names in errors.
type object struct {
	prefix string
	fields map[string]json.RawMessage
}

func decodeObject(raw []byte, name string) (object, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil || m == nil {
		return object{}, apperr.Invalid(name, "must be a JSON object")
	}
	return object{fields: m}, nil
}

func (o object) name(key string) string { return o.prefix + key }

// raw returns the field value, treating null as absent.
func (o object) raw(key string) (json.RawMessage, bool) {
	v, ok := o.fields[key]
	if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		return nil, false
	}
	return v, true
}

func (o object) decimal(key string) (decimal.Decimal, error) {
	v, ok := o.raw(key)
	if !ok {
		return decimal.Zero, apperr.Invalid(o.name(key), "is required")
	}
	d, err := parseDecimal(v)
	if err != nil {
		return decimal.Zero, apperr.Invalid(o.name(key), "must be a number")
	}
	return d, nil
}

func (o object) float(key string) (float64, error) {
	d, err := o.decimal(key)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

// Upper bounds of SERIAL and BIGSERIAL keys.
const (
	maxSerial    = math.MaxInt32
	maxBigSerial = math.MaxInt64
)

// int coerces the field into an integer in [-max-1, max].
func (o object) int(key string, max int64) (int64, error) {
	d, err := o.decimal(key)
	if err != nil {
		return 0, err
	}
	return integer(d, o.name(key), max)
}

func integer(d decimal.Decimal, field string, max int64) (int64, error) {
	if !d.IsInteger() {
		return 0, apperr.Invalid(field, "must be an integer")
	}
	if d.GreaterThan(decimal.NewFromInt(max)) || d.LessThan(decimal.NewFromInt(-max-1)) {
		return 0, apperr.Invalid(field, "is out of range")
	}
	return d.IntPart(), nil
}

// text returns the field as a string; ok is false when it is absent.
func (o object) text(key string) (s string, ok bool, err error) {
	v, ok := o.raw(key)
	if !ok {
		return "", false, nil
	}
	if err := json.Unmarshal(v, &s); err == nil {
		return s, true, nil
	}
	if d, err := decimal.NewFromString(string(v)); err == nil {
		return d.String(), true, nil
	}
	return "", true, apperr.Invalid(o.name(key), "must be a string")
}

func (o object) requiredText(key string) (string, error) {
	s, ok, err := o.text(key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apperr.Invalid(o.name(key), "is required")
	}
	return s, nil
}

func (o object) objects(key string) ([]object, error) {
	v, ok := o.raw(key)
	if !ok {
		return nil, apperr.Invalid(o.name(key), "is required")
	}
	var items []json.RawMessage
	if err := json.Unmarshal(v, &items); err != nil {
		return nil, apperr.Invalid(o.name(key), "must be an array")
	}
	out := make([]object, 0, len(items))
	for i, item := range items {
		name := fmt.Sprintf("%s[%d]", o.name(key), i)
		obj, err := decodeObject(item, name)
		if err != nil {
			return nil, err
		}
		obj.prefix = name + "."
		out = append(out, obj)
	}
	return out, nil
}

func parseDecimal(v json.RawMessage) (decimal.Decimal, error) {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return decimal.NewFromString(strings.TrimSpace(s))
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(n.String())
}

// parseID coerces a form or query value into an integer id.
func parseID(field, v string, max int64) (int64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, apperr.Invalid(field, "is required")
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return 0, apperr.Invalid(field, "must be an integer")
	}
	return integer(d, field, max)
}
