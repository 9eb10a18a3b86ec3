package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Jolieabadir/dynalytics/internal/fsutil"
	"github.com/Jolieabadir/dynalytics/internal/pose"
)

// labelColumns are appended to the raw schema, move fields first, then
// the first frame tag.
var labelColumns = []string{
	"move_id", "move_type", "form_quality", "effort_level", "technique_modifiers",
	"tag_type", "tag_level", "tag_locations", "tag_note",
}

// MoveLabel is the per-move label view the merge consumes. The API
// layer adapts persisted move records into this shape so the exporter
// stays free of storage concerns.
type MoveLabel struct {
	ID                 string
	FrameStart         int
	FrameEnd           int
	MoveType           string
	FormQuality        int
	EffortLevel        int
	TechniqueModifiers []string
}

// FrameTagLabel is one frame-scoped sensation or technique tag,
// attached to a move.
type FrameTagLabel struct {
	MoveID      string
	FrameNumber int
	TagType     string
	Level       *int
	Locations   []string
	Note        string
}

// LabeledExporter merges a raw feature CSV with labels into an
// ML-ready CSV.
type LabeledExporter struct {
	fs fsutil.FileSystem
}

// NewLabeledExporter builds an exporter writing through fs.
func NewLabeledExporter(fs fsutil.FileSystem) *LabeledExporter {
	return &LabeledExporter{fs: fs}
}

// LabeledName derives the conventional output name for a raw feature
// file: "poses.csv" becomes "poses_labeled.csv".
func LabeledName(rawName string) string {
	ext := filepath.Ext(rawName)
	return strings.TrimSuffix(rawName, ext) + "_labeled" + ext
}

// Export reads the raw feature CSV at rawPath, appends label columns
// for each row's frame, and writes the result to outPath. Rows covered
// by no move get empty label cells. Rows with several tags keep only
// the first.
func (e *LabeledExporter) Export(rawPath, outPath string, moves []MoveLabel, tags []FrameTagLabel) error {
	f, err := e.fs.Open(rawPath)
	if err != nil {
		return fmt.Errorf("export: open raw csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err == io.EOF {
		return fmt.Errorf("export: raw csv %s is empty", rawPath)
	}
	if err != nil {
		return fmt.Errorf("export: read raw header: %w", err)
	}

	frameCol := -1
	for i, name := range header {
		if name == pose.ColFrameNumber {
			frameCol = i
			break
		}
	}
	if frameCol < 0 {
		return fmt.Errorf("export: raw csv %s has no %s column", rawPath, pose.ColFrameNumber)
	}

	labels := buildFrameLabels(moves, tags)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	outHeader := make([]string, 0, len(header)+len(labelColumns))
	outHeader = append(outHeader, header...)
	outHeader = append(outHeader, labelColumns...)
	if err := w.Write(outHeader); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("export: read raw row: %w", err)
		}

		frame, err := strconv.Atoi(record[frameCol])
		if err != nil {
			return fmt.Errorf("export: bad %s %q: %w", pose.ColFrameNumber, record[frameCol], err)
		}

		out := make([]string, 0, len(outHeader))
		out = append(out, record...)
		out = appendLabelCells(out, labels[frame])
		if err := w.Write(out); err != nil {
			return fmt.Errorf("export: write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("export: flush: %w", err)
	}
	if err := fsutil.WriteFileAtomic(e.fs, outPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// frameLabel is the resolved label state for one frame number.
type frameLabel struct {
	move MoveLabel
	tags []FrameTagLabel
}

// buildFrameLabels expands moves into a frame-indexed map. Overlapping
// moves resolve last-writer-wins per frame, and each move's tags
// attach to whatever frame entries exist when that move is processed.
func buildFrameLabels(moves []MoveLabel, tags []FrameTagLabel) map[int]*frameLabel {
	byMove := make(map[string][]FrameTagLabel)
	for _, tag := range tags {
		byMove[tag.MoveID] = append(byMove[tag.MoveID], tag)
	}

	labels := make(map[int]*frameLabel)
	for _, move := range moves {
		for frame := move.FrameStart; frame <= move.FrameEnd; frame++ {
			labels[frame] = &frameLabel{move: move}
		}
		for _, tag := range byMove[move.ID] {
			if entry, ok := labels[tag.FrameNumber]; ok {
				entry.tags = append(entry.tags, tag)
			}
		}
	}
	return labels
}

func appendLabelCells(out []string, entry *frameLabel) []string {
	if entry == nil {
		for range labelColumns {
			out = append(out, "")
		}
		return out
	}

	move := entry.move
	out = append(out,
		move.ID,
		move.MoveType,
		strconv.Itoa(move.FormQuality),
		strconv.Itoa(move.EffortLevel),
		strings.Join(move.TechniqueModifiers, ","),
	)

	if len(entry.tags) == 0 {
		return append(out, "", "", "", "")
	}
	tag := entry.tags[0]
	level := ""
	if tag.Level != nil {
		level = strconv.Itoa(*tag.Level)
	}
	return append(out, tag.TagType, level, strings.Join(tag.Locations, ","), tag.Note)
}
