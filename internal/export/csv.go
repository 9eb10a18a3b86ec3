// Package export serializes processed frame sequences to CSV. The
// column schema is derived from the frames themselves, so exports stay
// stable when individual frames miss points or whole frames miss a
// pose. All writers go through a temporary file and rename into place
// on success.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Jolieabadir/dynalytics/internal/fsutil"
	"github.com/Jolieabadir/dynalytics/internal/pose"
)

var (
	// ErrNoFrames means the frame sequence was empty.
	ErrNoFrames = errors.New("export: no frames")

	// ErrNoPose means no frame carried a detected pose, so there is
	// no schema to derive.
	ErrNoPose = errors.New("export: no frame has a detected pose")
)

// CSVExporter writes frame sequences as CSV through a FileSystem.
type CSVExporter struct {
	fs fsutil.FileSystem
}

// NewCSVExporter builds an exporter writing through fs.
func NewCSVExporter(fs fsutil.FileSystem) *CSVExporter {
	return &CSVExporter{fs: fs}
}

// Export writes the full view: angles, per-point speeds, and velocity
// components for the key extremities and center of mass. The column
// set is the union over every pose-bearing frame, so a point that only
// appears late in the clip still gets its columns.
func (e *CSVExporter) Export(frames []*pose.FrameData, path string) error {
	rows, keys, err := flatten(frames, (*pose.FrameData).Flatten)
	if err != nil {
		return err
	}
	return e.write(path, orderColumns(keys), rows)
}

// ExportMinimal writes the reduced view: angles and center-of-mass
// speed only.
func (e *CSVExporter) ExportMinimal(frames []*pose.FrameData, path string) error {
	rows, keys, err := flatten(frames, (*pose.FrameData).FlattenMinimal)
	if err != nil {
		return err
	}
	return e.write(path, orderColumns(keys), rows)
}

// ExportWithLandmarks writes the reduced view plus four raw columns
// (x, y, z, visibility) per landmark. The landmark column set comes
// from the first pose-bearing frame; frames missing a point leave its
// four cells empty.
func (e *CSVExporter) ExportWithLandmarks(frames []*pose.FrameData, path string) error {
	rows, keys, err := flatten(frames, (*pose.FrameData).FlattenMinimal)
	if err != nil {
		return err
	}

	var ref *pose.FrameData
	for _, f := range frames {
		if f.HasPose() {
			ref = f
			break
		}
	}
	landmarkIDs := ref.Landmarks.Points()

	columns := orderColumns(keys)
	for _, id := range landmarkIDs {
		base := pose.LandmarkPrefix + id.String()
		columns = append(columns, base+"_x", base+"_y", base+"_z", base+"_visibility")
	}

	for i := range frames {
		for _, id := range landmarkIDs {
			lm, ok := frames[i].Landmarks.Get(id)
			if !ok {
				continue
			}
			base := pose.LandmarkPrefix + id.String()
			rows[i][base+"_x"] = pose.Field{Value: lm.X, Valid: true}
			rows[i][base+"_y"] = pose.Field{Value: lm.Y, Valid: true}
			rows[i][base+"_z"] = pose.Field{Value: lm.Z, Valid: true}
			rows[i][base+"_visibility"] = pose.Field{Value: lm.Visibility, Valid: true}
		}
	}

	return e.write(path, columns, rows)
}

// flatten applies view to every frame and collects the key union over
// pose-bearing frames. It enforces the export preconditions: at least
// one frame, at least one detected pose.
func flatten(frames []*pose.FrameData, view func(*pose.FrameData) pose.Row) ([]pose.Row, map[string]bool, error) {
	if len(frames) == 0 {
		return nil, nil, ErrNoFrames
	}

	rows := make([]pose.Row, len(frames))
	keys := make(map[string]bool)
	poseSeen := false
	for i := range frames {
		rows[i] = view(frames[i])
		if !frames[i].HasPose() {
			continue
		}
		poseSeen = true
		for k := range rows[i] {
			keys[k] = true
		}
	}
	if !poseSeen {
		return nil, nil, ErrNoPose
	}
	return rows, keys, nil
}

// orderColumns fixes the schema: frame number and timestamp first,
// then each prefix group sorted lexicographically. Deterministic no
// matter which frame appears first in the sequence.
func orderColumns(keys map[string]bool) []string {
	var angles, speeds, velocities []string
	for k := range keys {
		switch {
		case strings.HasPrefix(k, pose.AnglePrefix):
			angles = append(angles, k)
		case strings.HasPrefix(k, pose.SpeedPrefix):
			speeds = append(speeds, k)
		case strings.HasPrefix(k, pose.VelocityPrefix):
			velocities = append(velocities, k)
		}
	}
	sort.Strings(angles)
	sort.Strings(speeds)
	sort.Strings(velocities)

	columns := make([]string, 0, 2+len(angles)+len(speeds)+len(velocities))
	columns = append(columns, pose.ColFrameNumber, pose.ColTimestampMS)
	columns = append(columns, angles...)
	columns = append(columns, speeds...)
	return append(columns, velocities...)
}

// write encodes rows against the fixed column order and lands the file
// atomically.
func (e *CSVExporter) write(path string, columns []string, rows []pose.Row) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(columns); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}
	record := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			record[i] = formatField(row[col])
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("export: write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("export: flush: %w", err)
	}

	if err := fsutil.WriteFileAtomic(e.fs, path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// formatField renders one cell. Absent values become the empty marker
// so consumers can tell "not measured" from a measured zero.
func formatField(f pose.Field) string {
	if !f.Valid {
		return ""
	}
	return strconv.FormatFloat(f.Value, 'f', -1, 64)
}
