package detect

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Jolieabadir/dynalytics/internal/pose"
)

// jsonlFrame is the wire form an external detector writes, one JSON
// object per line. Frame is the detector's own counter and is
// informational; the pipeline numbers frames by stream position.
type jsonlFrame struct {
	Frame  int                      `json:"frame"`
	Points map[string]jsonlLandmark `json:"points"`
}

type jsonlLandmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// maxLineSize bounds a single frame line. A full 15 point frame is
// around 1KB, so 1MB leaves generous headroom.
const maxLineSize = 1 << 20

// JSONLSource reads line delimited JSON frames from a detector stream.
// Blank lines are skipped; point names outside the vocabulary are
// ignored so detectors with larger vocabularies still feed the
// pipeline.
type JSONLSource struct {
	scanner *bufio.Scanner
	line    int
}

var _ pose.FrameSource = (*JSONLSource)(nil)

// NewJSONLSource wraps r in a frame source.
func NewJSONLSource(r io.Reader) *JSONLSource {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	return &JSONLSource{scanner: scanner}
}

// Next parses the next non-blank line.
func (s *JSONLSource) Next() (pose.PointMap, bool, error) {
	for s.scanner.Scan() {
		s.line++
		data := bytes.TrimSpace(s.scanner.Bytes())
		if len(data) == 0 {
			continue
		}

		var frame jsonlFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			return pose.PointMap{}, false, fmt.Errorf("jsonl: line %d: %w", s.line, err)
		}

		var points pose.PointMap
		for name, lm := range frame.Points {
			id, ok := pose.ParsePoint(name)
			if !ok {
				continue
			}
			points.Set(id, pose.Landmark{X: lm.X, Y: lm.Y, Z: lm.Z, Visibility: lm.Visibility})
		}
		return points, true, nil
	}

	if err := s.scanner.Err(); err != nil {
		return pose.PointMap{}, false, fmt.Errorf("jsonl: read: %w", err)
	}
	return pose.PointMap{}, false, nil
}
