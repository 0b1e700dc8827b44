package fracmesh

import (
	"math"
	"testing"

	"github.com/fracmesh/fracmesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// orb is a solid sphere, the simplest exact SDF3.
type orb struct {
	c r3.Vec
	r float64
}

func (s orb) Evaluate(p r3.Vec) float64 {
	return r3.Norm(r3.Sub(p, s.c)) - s.r
}

func (s orb) Bounds() r3.Box {
	rr := r3.Vec{X: s.r, Y: s.r, Z: s.r}
	return r3.Box{Min: r3.Sub(s.c, rr), Max: r3.Add(s.c, rr)}
}

func expectPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	fn()
}

func TestUnion3D(t *testing.T) {
	a := orb{c: r3.Vec{X: -1}, r: 1}
	b := orb{c: r3.Vec{X: 1}, r: 1}
	u := Union3D(a, b)

	for _, tc := range []struct {
		p    r3.Vec
		want float64
	}{
		{p: r3.Vec{}, want: 0},
		{p: r3.Vec{X: 2}, want: 0},
		{p: r3.Vec{X: -3}, want: 1},
	} {
		if got := u.Evaluate(tc.p); got != tc.want {
			t.Errorf("Evaluate(%v) = %g, want %g", tc.p, got, tc.want)
		}
	}
	want := d3.Box{Min: r3.Vec{X: -2, Y: -1, Z: -1}, Max: r3.Vec{X: 2, Y: 1, Z: 1}}
	if bb := d3.Box(u.Bounds()); !bb.Equals(want, 1e-12) {
		t.Errorf("Bounds = %+v, want %+v", bb, want)
	}

	// A polynomial min deepens the surface where both members are close.
	p := r3.Vec{Y: 0.5}
	plain := math.Min(a.Evaluate(p), b.Evaluate(p))
	u.SetMin(PolyMin(0.5))
	blended := u.Evaluate(p)
	if blended >= plain {
		t.Errorf("blended distance %g not below plain minimum %g", blended, plain)
	}
	if !EqualFloat64(blended, plain-0.125, 1e-12) {
		t.Errorf("blend at equal distances = %g, want %g", blended, plain-0.125)
	}

	expectPanic(t, "no arguments", func() { Union3D() })
	expectPanic(t, "single argument", func() { Union3D(a) })
	expectPanic(t, "nil argument", func() { Union3D(a, nil) })
}

func TestShell3D(t *testing.T) {
	s := Shell3D(orb{r: 1}, 0.25)
	for _, tc := range []struct {
		p    r3.Vec
		want float64
	}{
		{p: r3.Vec{X: 1}, want: -0.125},
		{p: r3.Vec{}, want: 0.875},
		{p: r3.Vec{Z: 1.125}, want: 0},
		{p: r3.Vec{Z: 2}, want: 0.875},
	} {
		if got := s.Evaluate(tc.p); got != tc.want {
			t.Errorf("Evaluate(%v) = %g, want %g", tc.p, got, tc.want)
		}
	}
	want := d3.Box{
		Min: r3.Vec{X: -1.25, Y: -1.25, Z: -1.25},
		Max: r3.Vec{X: 1.25, Y: 1.25, Z: 1.25},
	}
	if bb := d3.Box(s.Bounds()); !bb.Equals(want, 1e-12) {
		t.Errorf("Bounds = %+v, want %+v", bb, want)
	}

	expectPanic(t, "zero thickness", func() { Shell3D(orb{r: 1}, 0) })
	expectPanic(t, "negative thickness", func() { Shell3D(orb{r: 1}, -1) })
}

func TestNormal3(t *testing.T) {
	s := orb{r: 2}
	p := r3.Vec{X: 1, Y: 2, Z: 2}
	if got := Normal3(s, p, 1e-6); !d3.EqualWithin(got, r3.Unit(p), 1e-9) {
		t.Errorf("Normal3 = %v, want %v", got, r3.Unit(p))
	}
	// Off-center solid: the normal points away from the center.
	s = orb{c: r3.Vec{X: 1}, r: 1}
	if got := Normal3(s, r3.Vec{X: 1, Z: 2}, 1e-6); !d3.EqualWithin(got, r3.Vec{Z: 1}, 1e-9) {
		t.Errorf("off-center Normal3 = %v, want +z", got)
	}
}
