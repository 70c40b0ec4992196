package dualmesh

import (
	"math"
	"math/rand"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

const (
	EPS float64 = 0.0000001
)

// triArea is twice the signed area of the triangle (a, b, c), positive
// for counter-clockwise order. Only x and y take part, the triangulation
// is planar.
func triArea(a, b, c r3.Vector) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

func ccw(a, b, c r3.Vector) bool {
	return triArea(a, b, c) > 0
}

// inCircle reports whether d lies strictly inside the circle through
// a, b and c (given in counter-clockwise order).
func inCircle(a, b, c, d r3.Vector) bool {
	return (a.X*a.X+a.Y*a.Y)*triArea(b, c, d)-
		(b.X*b.X+b.Y*b.Y)*triArea(a, c, d)+
		(c.X*c.X+c.Y*c.Y)*triArea(a, b, d)-
		(d.X*d.X+d.Y*d.Y)*triArea(a, b, c) > 0
}

func equal2D(a, b r3.Vector) bool {
	return math.Abs(a.X-b.X) <= EPS && math.Abs(a.Y-b.Y) <= EPS
}

func norm2D(a, b r3.Vector) float64 {
	x := a.X - b.X
	y := a.Y - b.Y
	return math.Sqrt(x*x + y*y)
}

// onEdge reports whether x lies on the closed segment from a to b.
func onEdge(x, a, b r3.Vector) bool {
	t1 := norm2D(x, a)
	t2 := norm2D(x, b)
	if t1 < EPS || t2 < EPS {
		return true
	}
	t3 := norm2D(a, b)
	if t1 > t3 || t2 > t3 {
		return false
	}
	return math.Abs((x.Y-a.Y)*(b.X-a.X)-(b.Y-a.Y)*(x.X-a.X)) < EPS
}

// CenterStrategy maps the three corners of a primal triangle to the dual
// vertex associated with that triangle.
type CenterStrategy interface {
	Compute(a, b, c r3.Vector) r3.Vector
}

type StrategyKind int

const (
	Centroid StrategyKind = iota
	Voronoi
	InCenter
	RandomUniform
	RandomNonUniform
)

func (k StrategyKind) String() string {
	switch k {
	case Centroid:
		return "Centroid"
	case Voronoi:
		return "Voronoi"
	case InCenter:
		return "InCenter"
	case RandomUniform:
		return "RandomUniform"
	case RandomNonUniform:
		return "RandomNonUniform"
	}
	return "Unknown"
}

// NewCenterStrategy returns the implementation for the given selector.
// For Voronoi, useZCoordinate decides between the planar and the full
// three dimensional circumcenter.
func NewCenterStrategy(kind StrategyKind, useZCoordinate bool) (CenterStrategy, error) {
	switch kind {
	case Centroid:
		return centroidStrategy{}, nil
	case Voronoi:
		if useZCoordinate {
			return circumcenter3DStrategy{}, nil
		}
		return circumcenter2DStrategy{}, nil
	case InCenter:
		return incenterStrategy{}, nil
	case RandomUniform:
		return randomUniformStrategy{}, nil
	case RandomNonUniform:
		return randomNonUniformStrategy{}, nil
	}
	return nil, errors.Errorf("unsupported configuration: unknown center strategy %v", kind)
}

type centroidStrategy struct{}

func (centroidStrategy) Compute(a, b, c r3.Vector) r3.Vector {
	return a.Add(b).Add(c).Mul(1.0 / 3.0)
}

type circumcenter2DStrategy struct{}

func (circumcenter2DStrategy) Compute(a, b, c r3.Vector) r3.Vector {
	d := 2 * (a.X*(b.Y-c.Y) + b.X*(c.Y-a.Y) + c.X*(a.Y-b.Y))
	if math.Abs(d) < EPS {
		// Degenerate triangle, fall back to the centroid.
		return a.Add(b).Add(c).Mul(1.0 / 3.0)
	}
	aa := a.X*a.X + a.Y*a.Y
	bb := b.X*b.X + b.Y*b.Y
	cc := c.X*c.X + c.Y*c.Y
	return r3.Vector{
		X: (aa*(b.Y-c.Y) + bb*(c.Y-a.Y) + cc*(a.Y-b.Y)) / d,
		Y: (aa*(c.X-b.X) + bb*(a.X-c.X) + cc*(b.X-a.X)) / d,
		Z: (a.Z + b.Z + c.Z) / 3.0,
	}
}

type circumcenter3DStrategy struct{}

func (circumcenter3DStrategy) Compute(a, b, c r3.Vector) r3.Vector {
	ba := b.Sub(a)
	ca := c.Sub(a)
	cross := ba.Cross(ca)
	denom := 2 * cross.Norm2()
	if denom < EPS {
		return a.Add(b).Add(c).Mul(1.0 / 3.0)
	}
	m := cross.Cross(ba).Mul(ca.Norm2()).Add(ca.Cross(cross).Mul(ba.Norm2())).Mul(1 / denom)
	return a.Add(m)
}

type incenterStrategy struct{}

func (incenterStrategy) Compute(a, b, c r3.Vector) r3.Vector {
	la := b.Sub(c).Norm()
	lb := c.Sub(a).Norm()
	lc := a.Sub(b).Norm()
	sum := la + lb + lc
	if sum < EPS {
		return a
	}
	return a.Mul(la).Add(b.Mul(lb)).Add(c.Mul(lc)).Mul(1 / sum)
}

// randomUniformStrategy samples a point uniformly distributed over the
// triangle. A nil Rand falls back to the shared global source.
type randomUniformStrategy struct {
	Rnd *rand.Rand
}

func (s randomUniformStrategy) Compute(a, b, c r3.Vector) r3.Vector {
	r1, r2 := s.sample()
	sq := math.Sqrt(r1)
	return a.Mul(1 - sq).Add(b.Mul(sq * (1 - r2))).Add(c.Mul(sq * r2))
}

func (s randomUniformStrategy) sample() (float64, float64) {
	if s.Rnd != nil {
		return s.Rnd.Float64(), s.Rnd.Float64()
	}
	return rand.Float64(), rand.Float64()
}

// randomNonUniformStrategy normalizes three independent weights, which
// biases the samples towards the middle of the triangle.
type randomNonUniformStrategy struct {
	Rnd *rand.Rand
}

func (s randomNonUniformStrategy) Compute(a, b, c r3.Vector) r3.Vector {
	w1, w2, w3 := s.sample()
	sum := w1 + w2 + w3
	if sum < EPS {
		return a.Add(b).Add(c).Mul(1.0 / 3.0)
	}
	return a.Mul(w1 / sum).Add(b.Mul(w2 / sum)).Add(c.Mul(w3 / sum))
}

func (s randomNonUniformStrategy) sample() (float64, float64, float64) {
	if s.Rnd != nil {
		return s.Rnd.Float64(), s.Rnd.Float64(), s.Rnd.Float64()
	}
	return rand.Float64(), rand.Float64(), rand.Float64()
}
