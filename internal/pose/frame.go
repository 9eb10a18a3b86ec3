package pose

// Flattened column names and prefixes, shared with the exporter. The
// prefixes partition a flattened row into its schema groups.
const (
	ColFrameNumber = "frame_number"
	ColTimestampMS = "timestamp_ms"

	AnglePrefix    = "angle_"
	SpeedPrefix    = "speed_"
	VelocityPrefix = "velocity_"
	LandmarkPrefix = "landmark_"

	// CenterOfMassName is the pseudo-point name used for whole-body
	// speed and velocity columns.
	CenterOfMassName = "center_of_mass"
)

// Field is one flattened cell. Invalid fields mean "not measured" and
// serialize as an explicit empty marker, never a fabricated zero.
type Field struct {
	Value float64
	Valid bool
}

// Row is one frame flattened to column name -> cell.
type Row map[string]Field

// FrameData aggregates everything extracted from one video frame.
// Build it once per frame and treat it as immutable afterwards. Frames
// are collected in arrival order, which may skip frame numbers when
// the upstream decoder drops frames.
type FrameData struct {
	FrameNumber int
	TimestampMS float64
	Landmarks   PointMap
	Angles      AngleMap
	Velocities  map[PointID]Vec2
	Speeds      map[PointID]float64

	CenterOfMassVelocity Vec2
	CenterOfMassValid    bool
	CenterOfMassSpeed    float64
}

// HasPose reports whether any landmark was detected this frame. The
// exporter uses this to pick schema-reference frames and to separate
// "not measured" rows from measured zeros.
func (f *FrameData) HasPose() bool {
	return f.Landmarks.Len() > 0
}

// Angle returns the named angle in degrees and whether it is defined
// this frame.
func (f *FrameData) Angle(name string) (float64, bool) {
	v, ok := f.Angles[name]
	if !ok || !v.Valid {
		return 0, false
	}
	return v.Degrees, true
}

// Flatten produces the full export view: frame number and timestamp,
// every angle, every defined per-point speed, center-of-mass speed,
// and velocity x/y components for the key extremities and the center
// of mass. Points with no defined velocity contribute no velocity or
// speed columns; the exporter reconciles column sets across frames.
func (f *FrameData) Flatten() Row {
	row := f.FlattenMinimal()

	for id, speed := range f.Speeds {
		row[SpeedPrefix+id.String()] = Field{Value: speed, Valid: true}
	}

	for _, id := range KeyPoints() {
		vel, ok := f.Velocities[id]
		if !ok {
			continue
		}
		row[VelocityPrefix+id.String()+"_x"] = Field{Value: vel.X, Valid: true}
		row[VelocityPrefix+id.String()+"_y"] = Field{Value: vel.Y, Valid: true}
	}
	if f.CenterOfMassValid {
		row[VelocityPrefix+CenterOfMassName+"_x"] = Field{Value: f.CenterOfMassVelocity.X, Valid: true}
		row[VelocityPrefix+CenterOfMassName+"_y"] = Field{Value: f.CenterOfMassVelocity.Y, Valid: true}
	}
	return row
}

// FlattenMinimal produces the reduced view: frame number, timestamp,
// every angle and the center-of-mass speed. Used where the per-point
// velocity breakdown would bloat the output, such as alongside raw
// landmark columns.
func (f *FrameData) FlattenMinimal() Row {
	row := Row{
		ColFrameNumber: {Value: float64(f.FrameNumber), Valid: true},
		ColTimestampMS: {Value: f.TimestampMS, Valid: true},
	}

	for name, v := range f.Angles {
		row[AnglePrefix+name] = Field{Value: v.Degrees, Valid: v.Valid}
	}

	// Pose-bearing frames always carry the center-of-mass speed, zero
	// when undefined. Frames with no pose leave the column empty.
	if f.HasPose() {
		row[SpeedPrefix+CenterOfMassName] = Field{Value: f.CenterOfMassSpeed, Valid: true}
	}
	return row
}
