package pose

import "fmt"

// PointID enumerates the fixed body-point vocabulary. IDs index the
// fixed-size arrays used by PointMap and VelocityTracker, so the set
// is closed: detectors emitting points outside this vocabulary must
// drop them before handing frames to this package.
type PointID uint8

const (
	Nose PointID = iota
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
	LeftHeel
	RightHeel

	// NumPoints is the size of the vocabulary, not a valid PointID.
	NumPoints
)

var pointNames = [NumPoints]string{
	Nose:          "nose",
	LeftShoulder:  "left_shoulder",
	RightShoulder: "right_shoulder",
	LeftElbow:     "left_elbow",
	RightElbow:    "right_elbow",
	LeftWrist:     "left_wrist",
	RightWrist:    "right_wrist",
	LeftHip:       "left_hip",
	RightHip:      "right_hip",
	LeftKnee:      "left_knee",
	RightKnee:     "right_knee",
	LeftAnkle:     "left_ankle",
	RightAnkle:    "right_ankle",
	LeftHeel:      "left_heel",
	RightHeel:     "right_heel",
}

var pointIDs = map[string]PointID{
	"nose":           Nose,
	"left_shoulder":  LeftShoulder,
	"right_shoulder": RightShoulder,
	"left_elbow":     LeftElbow,
	"right_elbow":    RightElbow,
	"left_wrist":     LeftWrist,
	"right_wrist":    RightWrist,
	"left_hip":       LeftHip,
	"right_hip":      RightHip,
	"left_knee":      LeftKnee,
	"right_knee":     RightKnee,
	"left_ankle":     LeftAnkle,
	"right_ankle":    RightAnkle,
	"left_heel":      LeftHeel,
	"right_heel":     RightHeel,
}

// String returns the wire name of the point ("left_wrist" etc), the
// same spelling used in CSV column names and catalog files.
func (p PointID) String() string {
	if p < NumPoints {
		return pointNames[p]
	}
	return fmt.Sprintf("point(%d)", uint8(p))
}

// ParsePoint maps a wire name back to its PointID. The second return
// is false for names outside the vocabulary.
func ParsePoint(name string) (PointID, bool) {
	id, ok := pointIDs[name]
	return id, ok
}

// PointNames returns all point names in vocabulary order.
func PointNames() []string {
	names := make([]string, NumPoints)
	for id := PointID(0); id < NumPoints; id++ {
		names[id] = pointNames[id]
	}
	return names
}

// KeyPoints are the extremities whose velocity x/y components are
// carried into the full export view. All other points export speed
// magnitude only, which keeps the column count manageable.
func KeyPoints() []PointID {
	return []PointID{LeftWrist, RightWrist, LeftAnkle, RightAnkle}
}

// PointMap holds at most one Landmark per PointID for a single frame.
// The zero value is an empty map ready for use. Presence is tracked
// separately from position, so a legitimately-at-origin landmark is
// still distinguishable from an undetected one.
type PointMap struct {
	points  [NumPoints]Landmark
	present [NumPoints]bool
	n       int
}

// Set stores the landmark for id, replacing any previous value.
func (m *PointMap) Set(id PointID, lm Landmark) {
	if id >= NumPoints {
		return
	}
	if !m.present[id] {
		m.present[id] = true
		m.n++
	}
	m.points[id] = lm
}

// Get returns the landmark for id and whether it is present.
func (m *PointMap) Get(id PointID) (Landmark, bool) {
	if id >= NumPoints || !m.present[id] {
		return Landmark{}, false
	}
	return m.points[id], true
}

// Has reports whether id is present without copying the landmark.
func (m *PointMap) Has(id PointID) bool {
	return id < NumPoints && m.present[id]
}

// Len returns the number of points present.
func (m *PointMap) Len() int { return m.n }

// Empty reports whether no points are present, i.e. no detection.
func (m *PointMap) Empty() bool { return m.n == 0 }

// Points returns the IDs present, in vocabulary order.
func (m *PointMap) Points() []PointID {
	ids := make([]PointID, 0, m.n)
	for id := PointID(0); id < NumPoints; id++ {
		if m.present[id] {
			ids = append(ids, id)
		}
	}
	return ids
}
