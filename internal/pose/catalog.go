package pose

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// AngleDef names one ray angle: the angle at vertex B between the rays
// B->A and B->C. The composite back angles are not catalog entries
// because they need synthesized midpoints; JointAnalyzer always adds
// them on top of the catalog.
type AngleDef struct {
	Name string
	A    PointID
	B    PointID
	C    PointID
}

// DefaultCatalog returns the standard ten-joint catalog: elbows,
// shoulders, hips, knees and ankles on both sides. The angle name
// matches its vertex point name.
func DefaultCatalog() []AngleDef {
	return []AngleDef{
		{Name: "left_elbow", A: LeftShoulder, B: LeftElbow, C: LeftWrist},
		{Name: "right_elbow", A: RightShoulder, B: RightElbow, C: RightWrist},
		{Name: "left_shoulder", A: LeftHip, B: LeftShoulder, C: LeftElbow},
		{Name: "right_shoulder", A: RightHip, B: RightShoulder, C: RightElbow},
		{Name: "left_hip", A: LeftShoulder, B: LeftHip, C: LeftKnee},
		{Name: "right_hip", A: RightShoulder, B: RightHip, C: RightKnee},
		{Name: "left_knee", A: LeftHip, B: LeftKnee, C: LeftAnkle},
		{Name: "right_knee", A: RightHip, B: RightKnee, C: RightAnkle},
		{Name: "left_ankle", A: LeftKnee, B: LeftAnkle, C: LeftHeel},
		{Name: "right_ankle", A: RightKnee, B: RightAnkle, C: RightHeel},
	}
}

type catalogFile struct {
	Angles []catalogEntry `yaml:"angles"`
}

type catalogEntry struct {
	Name string `yaml:"name"`
	A    string `yaml:"a"`
	B    string `yaml:"b"`
	C    string `yaml:"c"`
}

// LoadCatalog reads a YAML angle catalog of the form:
//
//	angles:
//	  - name: left_elbow
//	    a: left_shoulder
//	    b: left_elbow
//	    c: left_wrist
//
// Every referenced point must belong to the fixed vocabulary and
// every angle name must be unique. An empty catalog is an error; use
// DefaultCatalog when no override file is supplied.
func LoadCatalog(r io.Reader) ([]AngleDef, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(file.Angles) == 0 {
		return nil, fmt.Errorf("catalog defines no angles")
	}

	seen := make(map[string]bool, len(file.Angles))
	defs := make([]AngleDef, 0, len(file.Angles))
	for i, entry := range file.Angles {
		if entry.Name == "" {
			return nil, fmt.Errorf("catalog angle %d: missing name", i)
		}
		if entry.Name == AngleUpperBack || entry.Name == AngleLowerBack {
			return nil, fmt.Errorf("catalog angle %q: name reserved for composite angles", entry.Name)
		}
		if seen[entry.Name] {
			return nil, fmt.Errorf("catalog angle %q: duplicate name", entry.Name)
		}
		seen[entry.Name] = true

		def := AngleDef{Name: entry.Name}
		for _, ref := range []struct {
			field string
			name  string
			dst   *PointID
		}{
			{"a", entry.A, &def.A},
			{"b", entry.B, &def.B},
			{"c", entry.C, &def.C},
		} {
			id, ok := ParsePoint(ref.name)
			if !ok {
				return nil, fmt.Errorf("catalog angle %q: unknown point %q for %s", entry.Name, ref.name, ref.field)
			}
			*ref.dst = id
		}
		defs = append(defs, def)
	}
	return defs, nil
}
