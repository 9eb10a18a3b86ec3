package pose

// Composite angle names. Both are computed from synthesized midpoints
// rather than catalog triples, so they are reserved and always present
// in Calculate output.
const (
	AngleUpperBack = "upper_back"
	AngleLowerBack = "lower_back"
)

// AngleValue is one computed angle. Valid is false when the angle is
// undefined this frame, either because a referenced point is missing
// from the frame or because a point fell below the visibility
// threshold.
type AngleValue struct {
	Degrees float64
	Valid   bool
}

// AngleMap holds one entry per configured angle name, defined or not.
// Downstream schema derivation relies on the key set being identical
// for every pose-bearing frame.
type AngleMap map[string]AngleValue

// JointAnalyzer computes the configured joint angles for one frame of
// landmarks. It is stateless across frames and safe to reuse.
type JointAnalyzer struct {
	catalog   []AngleDef
	threshold float64
}

// NewJointAnalyzer builds an analyzer over the given ray-angle catalog
// with the given visibility threshold.
func NewJointAnalyzer(catalog []AngleDef, threshold float64) *JointAnalyzer {
	return &JointAnalyzer{catalog: catalog, threshold: threshold}
}

// Names returns every angle name the analyzer emits, catalog order
// first, then the two composites.
func (ja *JointAnalyzer) Names() []string {
	names := make([]string, 0, len(ja.catalog)+2)
	for _, def := range ja.catalog {
		names = append(names, def.Name)
	}
	return append(names, AngleUpperBack, AngleLowerBack)
}

// Calculate computes all configured angles from one frame's points.
// The result always has one entry per angle name; angles whose inputs
// are missing or insufficiently visible come back with Valid=false.
func (ja *JointAnalyzer) Calculate(points *PointMap) AngleMap {
	angles := make(AngleMap, len(ja.catalog)+2)

	for _, def := range ja.catalog {
		a, okA := points.Get(def.A)
		b, okB := points.Get(def.B)
		c, okC := points.Get(def.C)
		if !okA || !okB || !okC {
			angles[def.Name] = AngleValue{}
			continue
		}
		deg, ok := NewAngle(a, b, c, ja.threshold).Degrees()
		angles[def.Name] = AngleValue{Degrees: deg, Valid: ok}
	}

	angles[AngleUpperBack] = ja.upperBack(points)
	angles[AngleLowerBack] = ja.lowerBack(points)
	return angles
}

// upperBack measures the angle at the shoulder midpoint between the
// two shoulders, a proxy for shoulder hunch versus openness.
func (ja *JointAnalyzer) upperBack(points *PointMap) AngleValue {
	left, okL := points.Get(LeftShoulder)
	right, okR := points.Get(RightShoulder)
	if !okL || !okR {
		return AngleValue{}
	}
	mid := Midpoint(left, right)
	deg, ok := NewAngle(left, mid, right, ja.threshold).Degrees()
	return AngleValue{Degrees: deg, Valid: ok}
}

// lowerBack measures the angle at the hip midpoint between the
// shoulder midpoint and the knee midpoint, a proxy for torso arch
// versus round.
func (ja *JointAnalyzer) lowerBack(points *PointMap) AngleValue {
	required := []PointID{LeftShoulder, RightShoulder, LeftHip, RightHip, LeftKnee, RightKnee}
	for _, id := range required {
		if !points.Has(id) {
			return AngleValue{}
		}
	}

	leftShoulder, _ := points.Get(LeftShoulder)
	rightShoulder, _ := points.Get(RightShoulder)
	leftHip, _ := points.Get(LeftHip)
	rightHip, _ := points.Get(RightHip)
	leftKnee, _ := points.Get(LeftKnee)
	rightKnee, _ := points.Get(RightKnee)

	shoulderMid := Midpoint(leftShoulder, rightShoulder)
	hipMid := Midpoint(leftHip, rightHip)
	kneeMid := Midpoint(leftKnee, rightKnee)

	deg, ok := NewAngle(shoulderMid, hipMid, kneeMid, ja.threshold).Degrees()
	return AngleValue{Degrees: deg, Valid: ok}
}
