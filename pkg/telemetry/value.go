package telemetry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Unavailable is the text rendered for a Value that carries no data.
const Unavailable = "N/A"

type valueKind uint8

const (
	kindUnavailable valueKind = iota
	kindScalar
	kindSeries
)

// Value is one numeric telemetry field: unavailable, a finite scalar, or a
// series of finite numbers. The zero Value is unavailable. NaN and ±Inf never
// survive construction.
type Value struct {
	kind   valueKind
	scalar float64
	series []float64
}

// Summary aggregates a series for display.
type Summary struct {
	Avg       float64 `json:"avg"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	HasMinMax bool    `json:"has_min_max"`
}

// UnavailableValue returns the sentinel value.
func UnavailableValue() Value {
	return Value{}
}

// ScalarValue wraps f, or returns the sentinel when f is not finite.
func ScalarValue(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{kind: kindScalar, scalar: f}
}

// SeriesValue keeps the finite entries of fs. A series with no finite entry is
// unavailable.
func SeriesValue(fs []float64) Value {
	kept := make([]float64, 0, len(fs))
	for _, f := range fs {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		kept = append(kept, f)
	}
	if len(kept) == 0 {
		return Value{}
	}
	return Value{kind: kindSeries, series: kept}
}

// IsAvailable reports whether v carries data.
func (v Value) IsAvailable() bool {
	return v.kind != kindUnavailable
}

// IsSeries reports whether v is a series.
func (v Value) IsSeries() bool {
	return v.kind == kindSeries
}

// Scalar returns the scalar and true when v is a scalar.
func (v Value) Scalar() (float64, bool) {
	if v.kind != kindScalar {
		return 0, false
	}
	return v.scalar, true
}

// Float returns a single number for v: the scalar, or the average of a series.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case kindScalar:
		return v.scalar, true
	case kindSeries:
		s, _ := v.Summary()
		return s.Avg, true
	default:
		return 0, false
	}
}

// Series returns a copy of the series entries, or nil.
func (v Value) Series() []float64 {
	if v.kind != kindSeries {
		return nil
	}
	out := make([]float64, len(v.series))
	copy(out, v.series)
	return out
}

// Summary returns avg/min/max for a series. Scalars summarise to themselves.
func (v Value) Summary() (Summary, bool) {
	switch v.kind {
	case kindScalar:
		return Summary{Avg: v.scalar, Min: v.scalar, Max: v.scalar}, true
	case kindSeries:
		return summarize(v.series), true
	default:
		return Summary{}, false
	}
}

// String formats v with four decimals; a series shows its average.
func (v Value) String() string {
	f, ok := v.Float()
	if !ok {
		return Unavailable
	}
	return fmt.Sprintf("%.4f", f)
}

// Equal reports whether two values carry the same data.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case kindScalar:
		return v.scalar == o.scalar
	case kindSeries:
		if len(v.series) != len(o.series) {
			return false
		}
		for i := range v.series {
			if v.series[i] != o.series[i] {
				return false
			}
		}
	}
	return true
}

// MarshalJSON encodes unavailable as null, a scalar as a number and a series
// as an array.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindScalar:
		return json.Marshal(v.scalar)
	case kindSeries:
		return json.Marshal(v.series)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON never fails on well-formed JSON: anything that is not a number
// or an array of numbers becomes unavailable.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = valueOf(raw)
	return nil
}

// valueOf converts a decoded JSON node into a Value.
func valueOf(node any) Value {
	switch n := node.(type) {
	case float64:
		return ScalarValue(n)
	case []any:
		nums := make([]float64, 0, len(n))
		for _, item := range n {
			if f, ok := item.(float64); ok {
				nums = append(nums, f)
			}
		}
		return SeriesValue(nums)
	default:
		return Value{}
	}
}

func summarize(fs []float64) Summary {
	s := Summary{Min: fs[0], Max: fs[0]}
	var sum float64
	for _, f := range fs {
		sum += f
		s.Min = math.Min(s.Min, f)
		s.Max = math.Max(s.Max, f)
	}
	s.Avg = sum / float64(len(fs))
	s.HasMinMax = len(fs) > 1
	return s
}
