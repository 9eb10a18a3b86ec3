package pose

import "math"

// angleEpsilon pads the cosine denominator so coincident points divide
// by a small positive number instead of zero.
const angleEpsilon = 1e-6

// Angle measures the angle at vertex b between the rays b->a and b->c,
// in degrees within [0,180]. The result is undefined when any of the
// three points falls below the visibility threshold.
//
// The first successful Degrees call is memoized, so repeated queries
// on one instance do not recompute.
type Angle struct {
	a, b, c   Landmark
	threshold float64

	cached  bool
	degrees float64
}

// NewAngle builds an angle over three landmarks. threshold is the
// minimum visibility required of each point.
func NewAngle(a, b, c Landmark, threshold float64) *Angle {
	return &Angle{a: a, b: b, c: c, threshold: threshold}
}

// Valid reports whether all three points meet the visibility
// threshold.
func (g *Angle) Valid() bool {
	return g.a.Visible(g.threshold) && g.b.Visible(g.threshold) && g.c.Visible(g.threshold)
}

// Degrees returns the angle in degrees and whether it is defined.
func (g *Angle) Degrees() (float64, bool) {
	if g.cached {
		return g.degrees, true
	}
	if !g.Valid() {
		return 0, false
	}
	g.degrees = g.compute()
	g.cached = true
	return g.degrees, true
}

func (g *Angle) compute() float64 {
	u := g.a.Position().Sub(g.b.Position())
	v := g.c.Position().Sub(g.b.Position())

	cos := (u.X*v.X + u.Y*v.Y) / (u.Norm()*v.Norm() + angleEpsilon)

	// Clamp so floating-point overshoot cannot push Acos out of its
	// domain.
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}

	return math.Acos(cos) * 180 / math.Pi
}
