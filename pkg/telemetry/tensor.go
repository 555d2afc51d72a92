package telemetry

import (
	"encoding/json"
	"reflect"
)

// Tensor is an arbitrarily nested, possibly ragged JSON array as emitted by
// the trainer. Lookups never panic: any missing level or wrong shape yields an
// unavailable Value.
type Tensor struct {
	root any
}

// NewTensor builds a tensor from Go values: numbers, slices of any depth
// ([]float64, [][]float64, []any, ...) or nil.
func NewTensor(v any) Tensor {
	return Tensor{root: normalize(reflect.ValueOf(v))}
}

func normalize(rv reflect.Value) any {
	if !rv.IsValid() {
		return nil
	}
	switch rv.Kind() {
	case reflect.Interface, reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return normalize(rv.Elem())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = normalize(rv.Index(i))
		}
		return out
	case reflect.String:
		return rv.String()
	case reflect.Struct:
		if t, ok := rv.Interface().(Tensor); ok {
			return t.root
		}
	}
	return nil
}

// IsZero reports whether the tensor holds nothing.
func (t Tensor) IsZero() bool {
	return t.root == nil
}

// node walks idx from the root, returning nil if a level is missing.
func (t Tensor) node(idx ...int) any {
	cur := t.root
	for _, i := range idx {
		arr, ok := cur.([]any)
		if !ok || i < 0 || i >= len(arr) {
			return nil
		}
		cur = arr[i]
	}
	return cur
}

// At returns the value at idx. A leaf number becomes a scalar, an array of
// numbers a series.
func (t Tensor) At(idx ...int) Value {
	return valueOf(t.node(idx...))
}

// Len returns the length of the array at idx, or 0 when absent.
func (t Tensor) Len(idx ...int) int {
	arr, ok := t.node(idx...).([]any)
	if !ok {
		return 0
	}
	return len(arr)
}

// Sub returns the sub-tensor at idx.
func (t Tensor) Sub(idx ...int) Tensor {
	return Tensor{root: t.node(idx...)}
}

func (t Tensor) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.root)
}

func (t *Tensor) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t.root = raw
	return nil
}
