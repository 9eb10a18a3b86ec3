package pose

import "math"

// Landmark is a single detected or synthesized body point in pixel
// space. Z is a relative depth estimate, not an absolute distance, and
// is carried through untouched; all geometry in this package is 2D.
// Visibility is a confidence estimate in [0,1], not a probability, so
// consumers gate on a threshold rather than trusting exact values.
type Landmark struct {
	X          float64
	Y          float64
	Z          float64
	Visibility float64
}

// Visible reports whether the landmark's confidence meets threshold.
func (l Landmark) Visible(threshold float64) bool {
	return l.Visibility >= threshold
}

// Position returns the 2D pixel position used for geometry.
func (l Landmark) Position() Vec2 {
	return Vec2{X: l.X, Y: l.Y}
}

// Midpoint synthesizes the point halfway between a and b. Its
// visibility is the minimum of the two inputs: a virtual point is only
// as trustworthy as its weakest source.
func Midpoint(a, b Landmark) Landmark {
	return Landmark{
		X:          (a.X + b.X) / 2,
		Y:          (a.Y + b.Y) / 2,
		Z:          (a.Z + b.Z) / 2,
		Visibility: math.Min(a.Visibility, b.Visibility),
	}
}

// Vec2 is a 2D vector in pixel units, used for positions,
// displacements and velocities.
type Vec2 struct {
	X float64
	Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale returns v scaled by s.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Norm returns the Euclidean length of v.
func (v Vec2) Norm() float64 {
	return math.Hypot(v.X, v.Y)
}
