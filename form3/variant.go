// Package form3 implements the nine signed distance formula variants
// exported by the mesh pipeline. Each variant is constructed from a closed
// parameter record and yields an immutable fracmesh.SDF3 whose bounding box
// is sized to the variant's characteristic radius.
package form3

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fracmesh/fracmesh"
)

// Variant tags one of the implemented signed distance formulas.
// The set is closed: adding a formula means adding a tag, a parameter
// record and a constructor, not registering into open dispatch.
type Variant int

const (
	Mandelbulb Variant = iota
	Mandelbox
	QuaternionJulia
	Gyroid
	FibonacciShell
	FoLDome
	Metatron
	Typhoon
	CosmicBloom
	numVariants // keep last
)

var variantNames = [numVariants]string{
	Mandelbulb:      "mandelbulb",
	Mandelbox:       "mandelbox",
	QuaternionJulia: "julia",
	Gyroid:          "gyroid",
	FibonacciShell:  "fibshell",
	FoLDome:         "foldome",
	Metatron:        "metatron",
	Typhoon:         "typhoon",
	CosmicBloom:     "cosmicbloom",
}

// String returns the lowercase tag of the variant.
func (v Variant) String() string {
	if v < 0 || v >= numVariants {
		return "variant(" + fmt.Sprint(int(v)) + ")"
	}
	return variantNames[v]
}

// Variants returns all implemented variants in declaration order.
func Variants() []Variant {
	vs := make([]Variant, numVariants)
	for i := range vs {
		vs[i] = Variant(i)
	}
	return vs
}

var (
	// ErrUnknownVariant is returned when a variant tag does not name one of
	// the implemented formulas.
	ErrUnknownVariant = errors.New("unknown variant")
	// ErrBadParameter is returned when a parameter is outside its documented
	// domain or an option key is not recognized by the variant.
	ErrBadParameter = errors.New("bad parameter")
)

// ParseVariant resolves a tag like "mandelbulb" to its Variant.
func ParseVariant(s string) (Variant, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, vn := range variantNames {
		if vn == name {
			return Variant(i), nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrUnknownVariant, s)
}

// Params is a variant parameter record. The nine implementations in this
// package are the full set; records are immutable once handed to New.
type Params interface {
	// Variant returns the tag of the formula this record parameterizes.
	Variant() Variant
	// Set overrides one named option with a numeric value. Integer options
	// are truncated. Unknown keys return ErrBadParameter.
	Set(key string, value float64) error
	// Keys returns the recognized option keys in a fixed order.
	Keys() []string
	validate() error
}

// DefaultParams returns the documented default parameter record for v.
func DefaultParams(v Variant) (Params, error) {
	switch v {
	case Mandelbulb:
		p := defaultMandelbulbParams()
		return &p, nil
	case Mandelbox:
		p := defaultMandelboxParams()
		return &p, nil
	case QuaternionJulia:
		p := defaultJuliaParams()
		return &p, nil
	case Gyroid:
		p := defaultGyroidParams()
		return &p, nil
	case FibonacciShell:
		p := defaultFibShellParams()
		return &p, nil
	case FoLDome:
		p := defaultFoLDomeParams()
		return &p, nil
	case Metatron:
		p := defaultMetatronParams()
		return &p, nil
	case Typhoon:
		p := defaultTyphoonParams()
		return &p, nil
	case CosmicBloom:
		p := defaultCosmicBloomParams()
		return &p, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownVariant, int(v))
}

// New validates p and constructs the signed distance function it describes.
func New(p Params) (fracmesh.SDF3, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil parameter record", ErrBadParameter)
	}
	switch v := p.(type) {
	case *MandelbulbParams:
		return NewMandelbulb(*v)
	case *MandelboxParams:
		return NewMandelbox(*v)
	case *JuliaParams:
		return NewQuaternionJulia(*v)
	case *GyroidParams:
		return NewGyroid(*v)
	case *FibShellParams:
		return NewFibonacciShell(*v)
	case *FoLDomeParams:
		return NewFoLDome(*v)
	case *MetatronParams:
		return NewMetatron(*v)
	case *TyphoonParams:
		return NewTyphoon(*v)
	case *CosmicBloomParams:
		return NewCosmicBloom(*v)
	}
	return nil, fmt.Errorf("%w: %T", ErrUnknownVariant, p)
}

// iteration caps shared by the escape-time variants.
const maxIterationLimit = 250

func badKey(v Variant, key string) error {
	return fmt.Errorf("%w: variant %s has no option %q", ErrBadParameter, v, key)
}

func badRange(v Variant, key string, value, lo, hi float64) error {
	return fmt.Errorf("%w: %s option %s=%g outside [%g,%g]", ErrBadParameter, v, key, value, lo, hi)
}

func checkRange(v Variant, key string, value, lo, hi float64) error {
	if value < lo || value > hi {
		return badRange(v, key, value, lo, hi)
	}
	return nil
}

func checkIter(v Variant, key string, n int) error {
	if n < 1 || n > maxIterationLimit {
		return badRange(v, key, float64(n), 1, maxIterationLimit)
	}
	return nil
}
