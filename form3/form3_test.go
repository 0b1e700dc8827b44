package form3

import (
	"errors"
	"math"
	"testing"

	"github.com/fracmesh/fracmesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestDefaultParams(t *testing.T) {
	for _, v := range Variants() {
		p, err := DefaultParams(v)
		if err != nil {
			t.Fatalf("%s: %v", v, err)
		}
		if p.Variant() != v {
			t.Errorf("%s: record reports variant %s", v, p.Variant())
		}
		if len(p.Keys()) == 0 {
			t.Errorf("%s: no option keys", v)
		}
		s, err := New(p)
		if err != nil {
			t.Fatalf("%s: defaults rejected: %v", v, err)
		}
		size := d3.Box(s.Bounds()).Size()
		if d3.LTEZero(size) {
			t.Errorf("%s: degenerate bounding box %v", v, s.Bounds())
		}
	}
	if _, err := DefaultParams(numVariants); !errors.Is(err, ErrUnknownVariant) {
		t.Errorf("out of range variant, got %v", err)
	}
}

func TestParseVariant(t *testing.T) {
	for _, v := range Variants() {
		got, err := ParseVariant(v.String())
		if err != nil {
			t.Fatalf("%s: %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %s, got %s", v, got)
		}
	}
	if v, err := ParseVariant("  MandelBulb "); err != nil || v != Mandelbulb {
		t.Errorf("case fold parse, got %s, %v", v, err)
	}
	if _, err := ParseVariant("teapot"); !errors.Is(err, ErrUnknownVariant) {
		t.Errorf("unknown tag, got %v", err)
	}
}

func TestSetOptions(t *testing.T) {
	for _, v := range Variants() {
		p, err := DefaultParams(v)
		if err != nil {
			t.Fatal(err)
		}
		for _, key := range p.Keys() {
			if err := p.Set(key, 1); err != nil {
				t.Errorf("%s: option %s rejected: %v", v, key, err)
			}
		}
		if err := p.Set("noSuchOption", 1); !errors.Is(err, ErrBadParameter) {
			t.Errorf("%s: unknown option, got %v", v, err)
		}
	}
	if _, err := New(nil); !errors.Is(err, ErrBadParameter) {
		t.Errorf("nil record, got %v", err)
	}
}

func TestBadParameters(t *testing.T) {
	cases := []struct {
		name string
		p    Params
	}{
		{"mandelbulb zero iterations", &MandelbulbParams{MaxIterations: 0, PowerBase: 8}},
		{"mandelbulb power", &MandelbulbParams{MaxIterations: 15, PowerBase: 40}},
		{"mandelbox unit scale", &MandelboxParams{Scale: 1, MinRadius: 0.5, FixedRadius: 1, Iterations: 10}},
		{"mandelbox radii order", &MandelboxParams{Scale: -1.5, MinRadius: 2, FixedRadius: 1, Iterations: 10}},
		{"julia seed", &JuliaParams{CX: 3, Iterations: 11}},
		{"gyroid zero scale", &GyroidParams{Scale: 0}},
		{"fibshell scale", &FibShellParams{Scale: 0.5, Iterations: 12}},
		{"foldome thick shell", &FoLDomeParams{Radius: 1, Thickness: 2, BandCount: 21, BandWidth: 0.5}},
		{"metatron strut", &MetatronParams{Radius: 1, Sphere: 0.1, Strut: 0.5}},
		{"typhoon scale", &TyphoonParams{Scale: 0.5, Iterations: 14}},
		{"bloom petals", &CosmicBloomParams{Power: 6, Petals: 0, Iterations: 13}},
	}
	for _, c := range cases {
		if _, err := New(c.p); !errors.Is(err, ErrBadParameter) {
			t.Errorf("%s: got %v", c.name, err)
		}
	}
}

func TestEvaluateFinite(t *testing.T) {
	for _, v := range Variants() {
		p, err := DefaultParams(v)
		if err != nil {
			t.Fatal(err)
		}
		s, err := New(p)
		if err != nil {
			t.Fatal(err)
		}
		bb := d3.Box(s.Bounds())
		for _, pt := range bb.RandomSet(64) {
			d := s.Evaluate(pt)
			if math.IsNaN(d) || math.IsInf(d, 0) {
				t.Fatalf("%s: non finite distance %v at %v", v, d, pt)
			}
		}
	}
}

func TestEvaluateDeterminism(t *testing.T) {
	for _, v := range Variants() {
		p, err := DefaultParams(v)
		if err != nil {
			t.Fatal(err)
		}
		s1, err := New(p)
		if err != nil {
			t.Fatal(err)
		}
		s2, err := New(p)
		if err != nil {
			t.Fatal(err)
		}
		bb := d3.Box(s1.Bounds())
		for _, pt := range bb.RandomSet(128) {
			a, b := s1.Evaluate(pt), s2.Evaluate(pt)
			if a != b {
				t.Fatalf("%s: instances disagree at %v: %v != %v", v, pt, a, b)
			}
			if c := s1.Evaluate(pt); c != a {
				t.Fatalf("%s: re-evaluation drifts at %v: %v != %v", v, pt, c, a)
			}
		}
	}
}

func TestGyroidPeriodicity(t *testing.T) {
	p := defaultGyroidParams()
	p.Scale = 1
	s, err := NewGyroid(p)
	if err != nil {
		t.Fatal(err)
	}
	// at unit scale the surface repeats every 2*pi along each axis
	period := 2 * math.Pi
	bb := d3.NewBox(r3.Vec{}, d3.Elem(2))
	for _, pt := range bb.RandomSet(64) {
		d0 := s.Evaluate(pt)
		for _, shift := range []r3.Vec{{X: period}, {Y: period}, {Z: period}} {
			d1 := s.Evaluate(r3.Add(pt, shift))
			if math.Abs(d0-d1) >= 0.1 {
				t.Fatalf("period broken at %v: %v vs %v", pt, d0, d1)
			}
		}
	}
}

func TestMandelboxMirrorSymmetry(t *testing.T) {
	p := defaultMandelboxParams()
	p.Scale = 2
	s, err := NewMandelbox(p)
	if err != nil {
		t.Fatal(err)
	}
	bb := d3.Box(s.Bounds())
	for _, pt := range bb.RandomSet(64) {
		d0 := s.Evaluate(pt)
		d1 := s.Evaluate(r3.Vec{X: -pt.X, Y: pt.Y, Z: pt.Z})
		if math.Abs(d0-d1) > 1e-4 {
			t.Fatalf("mirror asymmetry at %v: %v vs %v", pt, d0, d1)
		}
	}
}

func TestFoLDomeInterior(t *testing.T) {
	s, err := NewFoLDome(defaultFoLDomeParams())
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		p      r3.Vec
		inside bool
	}{
		{r3.Vec{Z: 0.6}, true},            // floor slab
		{r3.Vec{Z: 14.4}, true},           // dome crown shell
		{r3.Vec{Z: -5}, false},            // below the cut plane
		{r3.Vec{X: 25, Z: 25}, false},     // outside the bounding box
		{r3.Vec{X: 5, Y: 5, Z: 5}, false}, // hollow interior
	}
	for _, c := range cases {
		d := s.Evaluate(c.p)
		if (d < 0) != c.inside {
			t.Errorf("at %v: distance %v, want inside=%v", c.p, d, c.inside)
		}
	}
}

func TestMetatronNodes(t *testing.T) {
	nodes := metatronNodes(1)
	if len(nodes) != 12 {
		t.Fatalf("got %d nodes", len(nodes))
	}
	for i, n := range nodes {
		if r := r3.Norm(n); math.Abs(r-1) > 1e-12 {
			t.Errorf("node %d radius %v", i, r)
		}
		// every node has exactly four neighbors one edge length away
		adj := 0
		for j, m := range nodes {
			if i == j {
				continue
			}
			if math.Abs(r3.Norm(r3.Sub(n, m))-1) < 1e-12 {
				adj++
			}
		}
		if adj != 4 {
			t.Errorf("node %d has %d neighbors", i, adj)
		}
	}
	s, err := NewMetatron(defaultMetatronParams())
	if err != nil {
		t.Fatal(err)
	}
	if d := s.Evaluate(r3.Vec{}); d >= 0 {
		t.Errorf("center node not solid: %v", d)
	}
	if d := s.Evaluate(r3.Vec{X: 3, Y: 3, Z: 3}); d <= 0 {
		t.Errorf("far point not outside: %v", d)
	}
}

func TestMandelbulbContainsSeed(t *testing.T) {
	s, err := NewMandelbulb(defaultMandelbulbParams())
	if err != nil {
		t.Fatal(err)
	}
	// the origin never escapes, so it lies inside the set
	if d := s.Evaluate(r3.Vec{X: 1e-3, Y: 1e-3, Z: 1e-3}); d >= 0 {
		t.Errorf("near origin distance %v, want negative", d)
	}
	if d := s.Evaluate(r3.Vec{X: 2.4}); d <= 0 {
		t.Errorf("escaped point distance %v, want positive", d)
	}
}
