/*
sanitize.go - Output-boundary replacement of non-finite numbers

PURPOSE:
  Walks any nested result structure and replaces NaN and +/-Inf float values
  with 0, guaranteeing every response serializes to valid JSON. Divisions
  inside the engine are individually guarded, so this is the single defined
  boundary where a non-finite value could still be coerced away - for
  example one propagated from source data.
*/
package engine

import (
	"math"
	"reflect"
)

// Sanitize walks the value behind ptr and zeroes every non-finite float.
// ptr must be a pointer; a nil or non-pointer input is a no-op.
func Sanitize(ptr any) {
	if ptr == nil {
		return
	}
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return
	}
	sanitizeValue(rv.Elem())
}

func sanitizeValue(v reflect.Value) {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		if v.CanSet() && !isFinite(v.Float()) {
			v.SetFloat(0)
		}
	case reflect.Ptr:
		if !v.IsNil() {
			sanitizeValue(v.Elem())
		}
	case reflect.Interface:
		if v.IsNil() {
			return
		}
		elem := v.Elem()
		// Values boxed in an interface are not addressable; sanitize a copy
		// and swap it back in.
		cp := reflect.New(elem.Type()).Elem()
		cp.Set(elem)
		sanitizeValue(cp)
		if v.CanSet() {
			v.Set(cp)
		}
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			field := v.Field(i)
			if field.CanSet() {
				sanitizeValue(field)
			}
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			sanitizeValue(v.Index(i))
		}
	case reflect.Map:
		for _, key := range v.MapKeys() {
			val := v.MapIndex(key)
			cp := reflect.New(val.Type()).Elem()
			cp.Set(val)
			sanitizeValue(cp)
			v.SetMapIndex(key, cp)
		}
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
