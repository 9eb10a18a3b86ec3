// Package summary computes per-column statistics over extracted
// sessions, either from in-memory frames or from a stored CSV.
package summary

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/Jolieabadir/dynalytics/internal/fsutil"
	"github.com/Jolieabadir/dynalytics/internal/pose"
)

// ColumnStats summarises one angle or speed column. Empty cells are
// excluded, so Count can be smaller than the frame count.
type ColumnStats struct {
	Name   string  `json:"name"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P95    float64 `json:"p95"`
}

// SessionSummary aggregates the statistics for one session. Columns are
// ordered angles first, then speeds, both alphabetical.
type SessionSummary struct {
	Frames     int           `json:"frames"`
	PoseFrames int           `json:"pose_frames"`
	Columns    []ColumnStats `json:"columns"`
}

// Compute summarises a frame sequence.
func Compute(frames []*pose.FrameData) SessionSummary {
	s := SessionSummary{Frames: len(frames)}

	values := make(map[string][]float64)
	for _, f := range frames {
		if f.HasPose() {
			s.PoseFrames++
		}
		for name, field := range f.Flatten() {
			if !statsColumn(name) || !field.Valid {
				continue
			}
			values[name] = append(values[name], field.Value)
		}
	}

	s.Columns = summariseColumns(values)
	return s
}

// ComputeFromCSV summarises a previously exported session without
// re-running the pipeline. Any CSV carrying angle or speed columns
// works, including the landmark variant.
func ComputeFromCSV(filesystem fsutil.FileSystem, path string) (SessionSummary, error) {
	f, err := filesystem.Open(path)
	if err != nil {
		return SessionSummary{}, fmt.Errorf("summary: open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return SessionSummary{}, fmt.Errorf("summary: %s is empty", path)
		}
		return SessionSummary{}, fmt.Errorf("summary: read header of %s: %w", path, err)
	}

	indices := make(map[int]string)
	for i, name := range header {
		if statsColumn(name) {
			indices[i] = name
		}
	}
	if len(indices) == 0 {
		return SessionSummary{}, fmt.Errorf("summary: %s has no angle or speed columns", path)
	}

	var s SessionSummary
	values := make(map[string][]float64)
	for row := 1; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return SessionSummary{}, fmt.Errorf("summary: row %d: %w", row, err)
		}

		s.Frames++
		posed := false
		for i, name := range indices {
			if i >= len(record) || record[i] == "" {
				continue
			}
			v, err := strconv.ParseFloat(record[i], 64)
			if err != nil {
				return SessionSummary{}, fmt.Errorf("summary: row %d, column %s: %w", row, name, err)
			}
			values[name] = append(values[name], v)
			posed = true
		}
		if posed {
			s.PoseFrames++
		}
	}

	s.Columns = summariseColumns(values)
	return s, nil
}

// statsColumn reports whether a column participates in the summary.
func statsColumn(name string) bool {
	return strings.HasPrefix(name, pose.AnglePrefix) || strings.HasPrefix(name, pose.SpeedPrefix)
}

// summariseColumns reduces collected values to ordered column stats.
// Sorting the names plain gives angles before speeds.
func summariseColumns(values map[string][]float64) []ColumnStats {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	columns := make([]ColumnStats, 0, len(names))
	for _, name := range names {
		columns = append(columns, summarise(name, values[name]))
	}
	return columns
}

func summarise(name string, vals []float64) ColumnStats {
	sort.Float64s(vals)

	c := ColumnStats{
		Name:  name,
		Count: len(vals),
		Mean:  stat.Mean(vals, nil),
		Min:   vals[0],
		Max:   vals[len(vals)-1],
		P50:   stat.Quantile(0.50, stat.Empirical, vals, nil),
		P90:   stat.Quantile(0.90, stat.Empirical, vals, nil),
		P95:   stat.Quantile(0.95, stat.Empirical, vals, nil),
	}
	// Sample standard deviation is undefined for a single value.
	if len(vals) >= 2 {
		c.StdDev = stat.StdDev(vals, nil)
	}
	return c
}
