package blueprint

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// record is one decoded object from the actors or actions list.
type record map[string]any

// asRecord accepts both decoder map shapes: sonic yields map[string]any,
// YAML may yield map[any]any for nested mappings.
func asRecord(v any) (record, bool) {
	switch m := v.(type) {
	case map[string]any:
		return record(m), true
	case map[any]any:
		out := make(record, len(m))
		for k, val := range m {
			key, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[key] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func (r record) has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// text returns a string field. Absent fields return "" and no error.
func (r record) text(key string) (string, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string, got %T", key, v)
	}
	return s, nil
}

// label is like text but also accepts numbers, for identifiers such as
// signal ids that generators emit either way.
func (r record) label(key string) (string, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", nil
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	if f, ok := toFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("%s must be a string or number, got %T", key, v)
}

// number returns a numeric field, nil when absent.
func (r record) number(key string) (*float64, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, nil
	}
	f, ok := toFloat(v)
	if !ok {
		return nil, fmt.Errorf("%s must be a number, got %v", key, v)
	}
	return &f, nil
}

// integer returns an integral numeric field, nil when absent.
func (r record) integer(key string) (*int, error) {
	f, err := r.number(key)
	if err != nil || f == nil {
		return nil, err
	}
	if math.Trunc(*f) != *f {
		return nil, fmt.Errorf("%s must be an integer, got %v", key, *f)
	}
	i := int(*f)
	return &i, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
