package predictor

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RawInput maps feature names to values as they arrived: strings from forms, numbers from JSON.
type RawInput map[string]any

// Values holds validated feature values keyed by feature name.
type Values map[string]float64

// Validate checks raw against every constraint in table order and returns the parsed values.
// It stops at the first failing feature.
func Validate(raw RawInput, table *ConstraintTable) (Values, error) {
	values := make(Values, table.Len())
	for _, c := range table.constraints {
		v, present := raw[c.Name]
		if !present || isBlank(v) {
			return nil, &MissingFeatureError{Name: c.Name}
		}

		switch c.Kind {
		case KindCategorical:
			code, ok := toInt(v)
			if !ok || !c.Allows(code) {
				return nil, &InvalidCategoricalValueError{Name: c.Name, Value: display(v), Allowed: c.Allowed}
			}
			values[c.Name] = float64(code)
		case KindNumeric:
			num, ok := toFloat(v)
			if !ok {
				return nil, &InvalidNumericValueError{Name: c.Name, Value: display(v)}
			}
			if num < c.Min || num > c.Max {
				return nil, &OutOfRangeError{Name: c.Name, Value: num, Min: c.Min, Max: c.Max}
			}
			values[c.Name] = num
		}
	}
	return values, nil
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int32:
		return int(t), true
	case int64:
		return int(t), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n), true
		}
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return integral(f)
	case float32:
		return integral(float64(t))
	case float64:
		return integral(t)
	}
	return 0, false
}

func integral(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func display(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return formatFloat(t)
	case float32:
		return formatFloat(float64(t))
	}
	return fmt.Sprint(v)
}
