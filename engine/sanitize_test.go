package engine_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/vetwell/billing-engine/engine"
)

func TestSanitize_ZeroesNonFiniteFloats(t *testing.T) {
	type inner struct {
		Rate float64
	}
	type payload struct {
		NaN     float64
		PosInf  float64
		NegInf  float64
		Finite  float64
		Nested  inner
		Pointer *inner
		Slice   []float64
		Any     any
		Shares  map[string]float64
	}

	p := payload{
		NaN:     math.NaN(),
		PosInf:  math.Inf(1),
		NegInf:  math.Inf(-1),
		Finite:  42.5,
		Nested:  inner{Rate: math.NaN()},
		Pointer: &inner{Rate: math.Inf(1)},
		Slice:   []float64{1, math.NaN(), 3},
		Any:     inner{Rate: math.Inf(-1)},
		Shares:  map[string]float64{"Efectivo": math.NaN(), "Tarjeta/POS": 60},
	}

	engine.Sanitize(&p)

	if p.NaN != 0 || p.PosInf != 0 || p.NegInf != 0 {
		t.Errorf("top-level non-finite floats survived: %v %v %v", p.NaN, p.PosInf, p.NegInf)
	}
	if p.Finite != 42.5 {
		t.Errorf("finite value was altered: %v", p.Finite)
	}
	if p.Nested.Rate != 0 {
		t.Errorf("nested struct NaN survived: %v", p.Nested.Rate)
	}
	if p.Pointer.Rate != 0 {
		t.Errorf("pointed-to Inf survived: %v", p.Pointer.Rate)
	}
	if p.Slice[1] != 0 || p.Slice[0] != 1 || p.Slice[2] != 3 {
		t.Errorf("slice sanitization wrong: %v", p.Slice)
	}
	if boxed, ok := p.Any.(inner); !ok || boxed.Rate != 0 {
		t.Errorf("interface-boxed Inf survived: %v", p.Any)
	}
	if p.Shares["Efectivo"] != 0 || p.Shares["Tarjeta/POS"] != 60 {
		t.Errorf("map sanitization wrong: %v", p.Shares)
	}
}

func TestSanitize_ResultAlwaysMarshals(t *testing.T) {
	// The whole point: a sanitized payload never trips the JSON encoder.
	v := struct {
		A float64
		B []map[string]float64
	}{
		A: math.NaN(),
		B: []map[string]float64{{"x": math.Inf(1)}},
	}

	engine.Sanitize(&v)
	if _, err := json.Marshal(v); err != nil {
		t.Fatalf("sanitized payload failed to marshal: %v", err)
	}
}

func TestSanitize_ToleratesBadInput(t *testing.T) {
	// nil, non-pointers, and nil pointers are no-ops, never panics.
	engine.Sanitize(nil)
	engine.Sanitize(42)
	engine.Sanitize("text")

	var p *struct{ X float64 }
	engine.Sanitize(p)
}
