// Package flatten turns nested upstream objects into flat records with a fixed set of
// declared columns. Functions here never do I/O.
package flatten

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMissingKey is returned when a field that makes up a table's natural key is absent,
// the record must be discarded before it reaches the writer.
var ErrMissingKey = errors.New("missing natural key")

// Record is one flat row. Values are nil, string, bool, int64 or float64.
type Record map[string]any

// Schema declares an output table: its columns in order, its natural key and the columns
// it is sorted by.
type Schema struct {
	Name    string
	Columns []string
	Key     []string
	Sort    []string
}

// New returns a record holding every declared column set to nil.
func (s Schema) New() Record {
	r := make(Record, len(s.Columns))
	for _, c := range s.Columns {
		r[c] = nil
	}
	return r
}

// CheckKey returns ErrMissingKey when any key column is nil or an empty string.
func (s Schema) CheckKey(r Record) error {
	for _, k := range s.Key {
		v := r[k]
		if v == nil {
			return fmt.Errorf("%s: %w: %s", s.Name, ErrMissingKey, k)
		}
		if str, ok := v.(string); ok && str == "" {
			return fmt.Errorf("%s: %w: %s", s.Name, ErrMissingKey, k)
		}
	}
	return nil
}

// finish checks the key and fills in any column the flatten function forgot.
func (s Schema) finish(r Record) (Record, error) {
	for _, c := range s.Columns {
		if _, ok := r[c]; !ok {
			r[c] = nil
		}
	}
	if err := s.CheckKey(r); err != nil {
		return nil, err
	}
	return r, nil
}

// Unwrap normalizes a field that is sometimes an object and sometimes an array of them:
// nil becomes an empty slice, an object becomes a one-element slice, a slice is returned as is.
func Unwrap(v any) []any {
	switch t := v.(type) {
	case nil:
		return []any{}
	case []any:
		return t
	case []map[string]any:
		out := make([]any, len(t))
		for i, m := range t {
			out[i] = m
		}
		return out
	default:
		return []any{t}
	}
}

// Object returns v as an object, a one-element array is treated as its only element
// so singleton and sequence forms of the same input flatten identically.
func Object(v any) map[string]any {
	if list, ok := v.([]any); ok {
		if len(list) != 1 {
			return map[string]any{}
		}
		v = list[0]
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return obj
}

func lookup(obj map[string]any, key string) (any, bool) {
	if v, ok := obj[key]; ok {
		return v, true
	}
	for k, v := range obj {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

// Field returns the first non-nil value among keys, normalized to a scalar.
func Field(v any, keys ...string) any {
	obj := Object(v)
	for _, k := range keys {
		value, ok := lookup(obj, k)
		if ok && value != nil {
			return Scalar(value)
		}
	}
	return nil
}

// Nested returns the object under key, or an empty object.
func Nested(v any, keys ...string) map[string]any {
	current := Object(v)
	for _, k := range keys {
		value, _ := lookup(current, k)
		current = Object(value)
	}
	return current
}

// Scalar normalizes a decoded JSON value: numbers become int64 or float64, objects and
// arrays are kept as JSON text.
func Scalar(v any) any {
	switch t := v.(type) {
	case nil, string, bool, int64, float64:
		return t
	case int:
		return int64(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any, []any:
		encoded, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(encoded)
	default:
		return fmt.Sprint(t)
	}
}

// Text coerces identifiers to text since they are joined against text typed ids.
// Numbers are rendered in decimal, an absent or empty value is nil.
func Text(v any) any {
	switch t := Scalar(v).(type) {
	case nil:
		return nil
	case string:
		if t == "" {
			return nil
		}
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// Int parses integers that may arrive as numbers or numeric strings, anything else is nil.
func Int(v any) any {
	switch t := Scalar(v).(type) {
	case int64:
		return t
	case float64:
		if t == math.Trunc(t) {
			return int64(t)
		}
		return nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return nil
		}
		return i
	}
	return nil
}

// YesNo maps "S"/"Sim" and "N"/"Não" flags to booleans, absent flags stay nil.
func YesNo(v any) any {
	s, ok := Scalar(v).(string)
	if !ok {
		if b, ok := v.(bool); ok {
			return b
		}
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "s", "sim", "true":
		return true
	case "n", "não", "nao", "false":
		return false
	}
	return nil
}

// Bool is a truthiness check where absent means false.
func Bool(v any) bool {
	switch t := Scalar(v).(type) {
	case bool:
		return t
	case int64:
		return t != 0
	case float64:
		return t != 0
	case string:
		return YesNo(t) == true
	}
	return false
}

// ParseIdentifier splits "<TYPE> <NUMBER>/<YEAR>" identifiers like "PL 1234/2025".
// A missing separator leaves the parts after it nil, it is never an error.
func ParseIdentifier(ident string) (sigla, numero, ano any) {
	ident = strings.TrimSpace(ident)
	if ident == "" {
		return nil, nil, nil
	}

	head, rest, found := strings.Cut(ident, " ")
	sigla = head
	if !found {
		return sigla, nil, nil
	}

	num, year, found := strings.Cut(rest, "/")
	if num != "" {
		numero = num
	}
	if !found {
		return sigla, numero, nil
	}
	parsed, err := strconv.ParseInt(strings.TrimSpace(year), 10, 64)
	if err == nil {
		ano = parsed
	}
	return sigla, numero, ano
}

// ParseLocaleNumber parses Brazilian formatted numbers, "1.234,56" is 1234.56. Without a
// decimal comma the dots are thousands separators when there is more than one, or when a
// single dot after a non-zero integer part is followed by exactly three digits: "1.500" is
// 1500, "99.90" and "0.125" are dot decimals.
func ParseLocaleNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	switch {
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	case strings.Count(s, ".") == 1:
		whole, frac, _ := strings.Cut(s, ".")
		whole = strings.TrimLeft(whole, "+-")
		if len(frac) == 3 && whole != "" && strings.Trim(whole, "0") != "" {
			s = strings.Replace(s, ".", "", 1)
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Money converts a monetary value to float64, numbers are kept, locale strings are
// parsed and anything unparsable is nil.
func Money(v any) any {
	switch t := Scalar(v).(type) {
	case int64:
		return float64(t)
	case float64:
		return t
	case string:
		f, ok := ParseLocaleNumber(t)
		if !ok {
			return nil
		}
		return f
	}
	return nil
}

// Each flattens every item with fn. Items missing their key are dropped and counted,
// any other error is returned.
func Each(items []any, fn func(item any) (Record, error)) ([]Record, int, error) {
	out := make([]Record, 0, len(items))
	dropped := 0
	for _, item := range items {
		r, err := fn(item)
		if errors.Is(err, ErrMissingKey) {
			dropped++
			continue
		}
		if err != nil {
			return out, dropped, err
		}
		out = append(out, r)
	}
	return out, dropped, nil
}
