package pose

// positionRing is a fixed-capacity ring of 2D positions. Pushing past
// capacity overwrites the oldest sample, so history stays bounded
// without reslicing.
type positionRing struct {
	buf  []Vec2
	next int // next write slot
	n    int // valid samples, at most len(buf)
}

func newPositionRing(capacity int) *positionRing {
	return &positionRing{buf: make([]Vec2, capacity)}
}

func (r *positionRing) push(p Vec2) {
	r.buf[r.next] = p
	r.next = (r.next + 1) % len(r.buf)
	if r.n < len(r.buf) {
		r.n++
	}
}

// at returns the i-th oldest sample, i in [0, len).
func (r *positionRing) at(i int) Vec2 {
	start := r.next - r.n
	if start < 0 {
		start += len(r.buf)
	}
	return r.buf[(start+i)%len(r.buf)]
}

func (r *positionRing) len() int { return r.n }

// VelocityTracker derives per-point velocities from successive frames
// of landmarks. Each point keeps a bounded history of its last
// window+1 positions; velocity is the smoothed frame-to-frame
// displacement, stored frame-relative and scaled to per-second units
// on read.
//
// A point absent from an update keeps its previous history untouched,
// so an occluded point's velocity goes stale rather than resetting.
// Only Reset clears state.
//
// Not safe for concurrent use. Frame order matters; give each frame
// stream its own tracker.
type VelocityTracker struct {
	fps    float64
	window int

	history    [NumPoints]*positionRing
	velocities [NumPoints]Vec2 // px/frame
	defined    [NumPoints]bool
	frames     int
}

// NewVelocityTracker builds a tracker for a stream at fps frames per
// second. window is the number of consecutive displacements averaged
// per velocity estimate; 1 disables smoothing and anything below 1 is
// treated as 1.
func NewVelocityTracker(fps float64, window int) *VelocityTracker {
	if window < 1 {
		window = 1
	}
	return &VelocityTracker{fps: fps, window: window}
}

// Update feeds one frame of points into the tracker. For each point
// present it appends the position to that point's history and, once
// two or more samples exist, recomputes the point's smoothed velocity.
func (t *VelocityTracker) Update(points *PointMap) {
	t.frames++

	for id := PointID(0); id < NumPoints; id++ {
		lm, ok := points.Get(id)
		if !ok {
			continue
		}

		ring := t.history[id]
		if ring == nil {
			ring = newPositionRing(t.window + 1)
			t.history[id] = ring
		}
		ring.push(lm.Position())

		if ring.len() >= 2 {
			t.velocities[id] = t.smoothedVelocity(ring)
			t.defined[id] = true
		}
	}
}

// smoothedVelocity returns px/frame displacement. With no smoothing,
// or with only two samples so far, it is the latest displacement;
// otherwise it is the mean of every consecutive displacement in the
// ring.
func (t *VelocityTracker) smoothedVelocity(ring *positionRing) Vec2 {
	n := ring.len()
	if t.window <= 1 || n == 2 {
		return ring.at(n - 1).Sub(ring.at(n - 2))
	}

	var sum Vec2
	for i := 1; i < n; i++ {
		sum = sum.Add(ring.at(i).Sub(ring.at(i - 1)))
	}
	return sum.Scale(1 / float64(n-1))
}

// Velocity returns the point's velocity in px/s, or false if fewer
// than two samples have been seen for it.
func (t *VelocityTracker) Velocity(id PointID) (Vec2, bool) {
	if id >= NumPoints || !t.defined[id] {
		return Vec2{}, false
	}
	return t.velocities[id].Scale(t.fps), true
}

// Speed returns the magnitude of the point's velocity in px/s, or
// exactly 0.0 when the velocity is undefined. Speed feeds threshold
// comparisons downstream, so absence collapses to zero here rather
// than forcing every caller to branch.
func (t *VelocityTracker) Speed(id PointID) float64 {
	vel, ok := t.Velocity(id)
	if !ok {
		return 0.0
	}
	return vel.Norm()
}

// AllVelocities returns a snapshot of every defined velocity in px/s.
func (t *VelocityTracker) AllVelocities() map[PointID]Vec2 {
	out := make(map[PointID]Vec2)
	for id := PointID(0); id < NumPoints; id++ {
		if t.defined[id] {
			out[id] = t.velocities[id].Scale(t.fps)
		}
	}
	return out
}

// AllSpeeds returns a snapshot of every defined speed in px/s.
func (t *VelocityTracker) AllSpeeds() map[PointID]float64 {
	out := make(map[PointID]float64)
	for id := PointID(0); id < NumPoints; id++ {
		if t.defined[id] {
			out[id] = t.velocities[id].Scale(t.fps).Norm()
		}
	}
	return out
}

// CenterOfMassVelocity approximates whole-body velocity as the average
// of the two hip velocities, in px/s. It is defined only when both
// hips are present in the current frame's points and both have a
// defined velocity.
func (t *VelocityTracker) CenterOfMassVelocity(points *PointMap) (Vec2, bool) {
	if !points.Has(LeftHip) || !points.Has(RightHip) {
		return Vec2{}, false
	}
	left, okL := t.Velocity(LeftHip)
	right, okR := t.Velocity(RightHip)
	if !okL || !okR {
		return Vec2{}, false
	}
	return left.Add(right).Scale(0.5), true
}

// CenterOfMassSpeed returns the magnitude of CenterOfMassVelocity, or
// exactly 0.0 when it is undefined.
func (t *VelocityTracker) CenterOfMassSpeed(points *PointMap) float64 {
	vel, ok := t.CenterOfMassVelocity(points)
	if !ok {
		return 0.0
	}
	return vel.Norm()
}

// Reset clears all history, velocities and the frame counter so the
// tracker can start over on a new clip.
func (t *VelocityTracker) Reset() {
	t.history = [NumPoints]*positionRing{}
	t.velocities = [NumPoints]Vec2{}
	t.defined = [NumPoints]bool{}
	t.frames = 0
}

// FrameCount returns the number of Update calls since construction or
// the last Reset.
func (t *VelocityTracker) FrameCount() int { return t.frames }
