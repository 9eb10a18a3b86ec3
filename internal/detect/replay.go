package detect

import (
	"encoding/csv"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"

	"github.com/Jolieabadir/dynalytics/internal/fsutil"
	"github.com/Jolieabadir/dynalytics/internal/pose"
)

// landmarkColumns holds the header indices of one point's coordinate
// columns. An index of -1 means the axis column is missing.
type landmarkColumns struct {
	x, y, z, visibility int
}

// ReplaySource reads a landmark-bearing CSV export back into a frame
// stream. It understands the column layout written by
// CSVExporter.ExportWithLandmarks; empty coordinate cells mean the
// point was absent in that frame.
type ReplaySource struct {
	file    fs.File
	reader  *csv.Reader
	columns map[pose.PointID]landmarkColumns
	row     int
}

var _ pose.FrameSource = (*ReplaySource)(nil)

// NewReplaySource opens path and parses its header. The file must
// carry at least one point's full set of landmark columns.
func NewReplaySource(filesystem fsutil.FileSystem, path string) (*ReplaySource, error) {
	f, err := filesystem.Open(path)
	if err != nil {
		return nil, fmt.Errorf("replay: open %s: %w", path, err)
	}

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		f.Close()
		if err == io.EOF {
			return nil, fmt.Errorf("replay: %s is empty", path)
		}
		return nil, fmt.Errorf("replay: read header of %s: %w", path, err)
	}

	columns := parseLandmarkHeader(header)
	if len(columns) == 0 {
		f.Close()
		return nil, fmt.Errorf("replay: %s has no landmark columns", path)
	}

	return &ReplaySource{file: f, reader: reader, columns: columns}, nil
}

// parseLandmarkHeader maps each fully covered point to its four column
// indices. Points missing any of the four axes are dropped.
func parseLandmarkHeader(header []string) map[pose.PointID]landmarkColumns {
	cols := make(map[pose.PointID]landmarkColumns)

	for i, cell := range header {
		if !strings.HasPrefix(cell, pose.LandmarkPrefix) {
			continue
		}
		rest := strings.TrimPrefix(cell, pose.LandmarkPrefix)

		var axis string
		switch {
		case strings.HasSuffix(rest, "_visibility"):
			axis, rest = "visibility", strings.TrimSuffix(rest, "_visibility")
		case strings.HasSuffix(rest, "_x"):
			axis, rest = "x", strings.TrimSuffix(rest, "_x")
		case strings.HasSuffix(rest, "_y"):
			axis, rest = "y", strings.TrimSuffix(rest, "_y")
		case strings.HasSuffix(rest, "_z"):
			axis, rest = "z", strings.TrimSuffix(rest, "_z")
		default:
			continue
		}

		id, ok := pose.ParsePoint(rest)
		if !ok {
			continue
		}

		c, ok := cols[id]
		if !ok {
			c = landmarkColumns{x: -1, y: -1, z: -1, visibility: -1}
		}
		switch axis {
		case "x":
			c.x = i
		case "y":
			c.y = i
		case "z":
			c.z = i
		case "visibility":
			c.visibility = i
		}
		cols[id] = c
	}

	for id, c := range cols {
		if c.x < 0 || c.y < 0 || c.z < 0 || c.visibility < 0 {
			delete(cols, id)
		}
	}
	return cols
}

// Next reads one CSV row and converts its landmark cells to a PointMap.
func (s *ReplaySource) Next() (pose.PointMap, bool, error) {
	record, err := s.reader.Read()
	if err == io.EOF {
		return pose.PointMap{}, false, nil
	}
	if err != nil {
		return pose.PointMap{}, false, fmt.Errorf("replay: row %d: %w", s.row+1, err)
	}
	s.row++

	var points pose.PointMap
	for id, c := range s.columns {
		lm, ok, err := parseLandmarkCells(record, c)
		if err != nil {
			return pose.PointMap{}, false, fmt.Errorf("replay: row %d, point %s: %w", s.row, id, err)
		}
		if ok {
			points.Set(id, lm)
		}
	}
	return points, true, nil
}

// parseLandmarkCells reads one point's four cells. Any empty cell means
// the point was absent in that frame.
func parseLandmarkCells(record []string, c landmarkColumns) (pose.Landmark, bool, error) {
	indices := [4]int{c.x, c.y, c.z, c.visibility}
	var vals [4]float64

	for i, idx := range indices {
		if idx >= len(record) || record[idx] == "" {
			return pose.Landmark{}, false, nil
		}
		v, err := strconv.ParseFloat(record[idx], 64)
		if err != nil {
			return pose.Landmark{}, false, fmt.Errorf("parse %q: %w", record[idx], err)
		}
		vals[i] = v
	}

	return pose.Landmark{X: vals[0], Y: vals[1], Z: vals[2], Visibility: vals[3]}, true, nil
}

// Close releases the underlying file.
func (s *ReplaySource) Close() error {
	return s.file.Close()
}
