package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot/plotter"

	"github.com/Jolieabadir/dynalytics/internal/export"
	"github.com/Jolieabadir/dynalytics/internal/fsutil"
	"github.com/Jolieabadir/dynalytics/internal/httputil"
	"github.com/Jolieabadir/dynalytics/internal/pose"
	"github.com/Jolieabadir/dynalytics/internal/report"
	"github.com/Jolieabadir/dynalytics/internal/summary"
	"github.com/Jolieabadir/dynalytics/internal/units"
)

// exportVideo serves POST /api/videos/{id}/export: merges the video's
// feature CSV with its labels into an ML-ready CSV under the exports
// directory. The delete_video query flag removes the source video file
// afterwards, freeing space once a session is fully labeled.
func (s *Server) exportVideo(w http.ResponseWriter, r *http.Request, id string) {
	video, ok := s.videoOr404(w, id)
	if !ok {
		return
	}
	if !s.fs.Exists(video.CSVPath) {
		httputil.NotFound(w, "CSV file not found")
		return
	}

	deleteVideo := false
	if v := r.URL.Query().Get("delete_video"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			httputil.BadRequest(w, "invalid delete_video parameter")
			return
		}
		deleteVideo = parsed
	}

	moves, err := s.db.GetMovesForVideo(id)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to list moves: %v", err))
		return
	}

	moveLabels := make([]export.MoveLabel, 0, len(moves))
	var tagLabels []export.FrameTagLabel
	for _, m := range moves {
		moveLabels = append(moveLabels, export.MoveLabel{
			ID:                 m.ID,
			FrameStart:         m.FrameStart,
			FrameEnd:           m.FrameEnd,
			MoveType:           m.MoveType,
			FormQuality:        m.FormQuality,
			EffortLevel:        m.EffortLevel,
			TechniqueModifiers: m.TechniqueModifiers,
		})

		tags, err := s.db.GetFrameTagsForMove(m.ID)
		if err != nil {
			httputil.InternalServerError(w, fmt.Sprintf("failed to list frame tags: %v", err))
			return
		}
		for _, t := range tags {
			tagLabels = append(tagLabels, export.FrameTagLabel{
				MoveID:      t.MoveID,
				FrameNumber: t.FrameNumber,
				TagType:     t.TagType,
				Level:       t.Level,
				Locations:   t.Locations,
				Note:        t.Note,
			})
		}
	}

	exportsDir := filepath.Join(s.dataDir, "exports")
	if err := s.fs.MkdirAll(exportsDir, 0755); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to create exports directory: %v", err))
		return
	}
	outPath := filepath.Join(exportsDir, export.LabeledName(filepath.Base(video.CSVPath)))

	exporter := export.NewLabeledExporter(s.fs)
	if err := exporter.Export(video.CSVPath, outPath, moveLabels, tagLabels); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("export failed: %v", err))
		return
	}
	log.Printf("exported labeled CSV %s (%d moves, %d frame tags)", outPath, len(moveLabels), len(tagLabels))

	if deleteVideo && video.Path != "" && s.fs.Exists(video.Path) {
		if err := s.fs.Remove(video.Path); err != nil {
			log.Printf("failed to delete video file %s: %v", video.Path, err)
		} else {
			log.Printf("deleted video file %s", video.Path)
		}
	}

	httputil.WriteJSONOK(w, map[string]interface{}{
		"path":       outPath,
		"moves":      len(moveLabels),
		"frame_tags": len(tagLabels),
	})
}

type summaryResponse struct {
	VideoID string `json:"video_id"`
	Units   string `json:"units"`
	summary.SessionSummary
}

// videoSummary serves GET /api/videos/{id}/summary: per-column stats
// over the stored feature CSV. Speeds convert to the requested units.
func (s *Server) videoSummary(w http.ResponseWriter, r *http.Request, id string) {
	video, ok := s.videoOr404(w, id)
	if !ok {
		return
	}

	target := units.PxPerSecond
	if u := r.URL.Query().Get("units"); u != "" {
		if !units.IsValid(u) {
			httputil.BadRequest(w, fmt.Sprintf("invalid units %q, must be one of: %s",
				u, units.GetValidUnitsString()))
			return
		}
		target = u
	}

	if !s.fs.Exists(video.CSVPath) {
		httputil.NotFound(w, "CSV file not found")
		return
	}

	sum, err := summary.ComputeFromCSV(s.fs, video.CSVPath)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("summary failed: %v", err))
		return
	}

	// px/s values scale linearly, so every statistic converts directly.
	if target != units.PxPerSecond {
		for i := range sum.Columns {
			if !strings.HasPrefix(sum.Columns[i].Name, pose.SpeedPrefix) {
				continue
			}
			c := &sum.Columns[i]
			c.Mean = units.ConvertSpeed(c.Mean, video.FPS, target)
			c.StdDev = units.ConvertSpeed(c.StdDev, video.FPS, target)
			c.Min = units.ConvertSpeed(c.Min, video.FPS, target)
			c.Max = units.ConvertSpeed(c.Max, video.FPS, target)
			c.P50 = units.ConvertSpeed(c.P50, video.FPS, target)
			c.P90 = units.ConvertSpeed(c.P90, video.FPS, target)
			c.P95 = units.ConvertSpeed(c.P95, video.FPS, target)
		}
	}

	httputil.WriteJSONOK(w, summaryResponse{
		VideoID:        id,
		Units:          target,
		SessionSummary: sum,
	})
}

// chartLayout describes one of the available time-series charts.
type chartLayout struct {
	prefix string
	kind   report.ChartKind
}

func layoutForKind(kind string) (chartLayout, bool) {
	switch kind {
	case "angles":
		return chartLayout{prefix: pose.AnglePrefix, kind: report.AnglesChart}, true
	case "speed":
		return chartLayout{prefix: pose.SpeedPrefix, kind: report.SpeedChart}, true
	default:
		return chartLayout{}, false
	}
}

// videoChart serves GET /api/videos/{id}/charts/{kind}: an interactive
// HTML line chart over the stored feature CSV.
func (s *Server) videoChart(w http.ResponseWriter, r *http.Request, id, kind string) {
	layout, ok := layoutForKind(kind)
	if !ok {
		httputil.NotFound(w, fmt.Sprintf("unknown chart %q", kind))
		return
	}

	video, ok := s.videoOr404(w, id)
	if !ok {
		return
	}
	if !s.fs.Exists(video.CSVPath) {
		httputil.NotFound(w, "CSV file not found")
		return
	}

	series, err := loadSeriesFromCSV(s.fs, video.CSVPath, layout.prefix)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to load chart data: %v", err))
		return
	}
	if len(series) == 0 {
		httputil.NotFound(w, fmt.Sprintf("no %s data in CSV", kind))
		return
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Dynalytics " + layout.kind.Title,
			Theme:     "dark",
			Width:     "1200px",
			Height:    "600px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    layout.kind.Title,
			Subtitle: fmt.Sprintf("video=%s series=%d", video.Filename, len(series)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "Time (s)", NameLocation: "middle", NameGap: 30}),
		charts.WithYAxisOpts(opts.YAxis{Name: layout.kind.YLabel, NameLocation: "middle", NameGap: 45}),
	)

	for _, ser := range series {
		data := make([]opts.LineData, 0, len(ser.Points))
		for _, pt := range ser.Points {
			data = append(data, opts.LineData{Value: []interface{}{pt.X, pt.Y}})
		}
		line.AddSeries(ser.Name, data)
	}

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// videoReport serves GET /api/videos/{id}/report: the same series as
// the HTML charts rendered to a static PNG. The kind query parameter
// selects angles (default) or speed.
func (s *Server) videoReport(w http.ResponseWriter, r *http.Request, id string) {
	kind := r.URL.Query().Get("kind")
	if kind == "" {
		kind = "angles"
	}
	layout, ok := layoutForKind(kind)
	if !ok {
		httputil.BadRequest(w, fmt.Sprintf("unknown report kind %q", kind))
		return
	}

	video, ok := s.videoOr404(w, id)
	if !ok {
		return
	}
	if !s.fs.Exists(video.CSVPath) {
		httputil.NotFound(w, "CSV file not found")
		return
	}

	series, err := loadSeriesFromCSV(s.fs, video.CSVPath, layout.prefix)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to load report data: %v", err))
		return
	}
	if len(series) == 0 {
		httputil.NotFound(w, fmt.Sprintf("no %s data in CSV", kind))
		return
	}

	png, err := report.Render(layout.kind, series)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render report: %v", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// loadSeriesFromCSV reads the columns with the given prefix out of a
// feature CSV, one series per column with X in seconds. Empty cells
// contribute no point, so series bridge detection gaps just like the
// in-memory render path.
func loadSeriesFromCSV(filesystem fsutil.FileSystem, path, prefix string) ([]report.Series, error) {
	f, err := filesystem.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}

	tsCol := -1
	columns := make(map[int]string)
	for i, name := range header {
		if name == pose.ColTimestampMS {
			tsCol = i
		} else if strings.HasPrefix(name, prefix) {
			columns[i] = strings.TrimPrefix(name, prefix)
		}
	}
	if tsCol < 0 {
		return nil, fmt.Errorf("%s has no %s column", path, pose.ColTimestampMS)
	}

	// Preserve header order for a stable legend.
	order := make([]int, 0, len(columns))
	for i := range header {
		if _, ok := columns[i]; ok {
			order = append(order, i)
		}
	}

	points := make(map[int]plotter.XYs)
	for row := 1; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		ts, err := strconv.ParseFloat(record[tsCol], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad %s %q: %w", row, pose.ColTimestampMS, record[tsCol], err)
		}
		x := ts / 1000

		for i := range columns {
			if i >= len(record) || record[i] == "" {
				continue
			}
			v, err := strconv.ParseFloat(record[i], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d, column %s: %w", row, header[i], err)
			}
			points[i] = append(points[i], plotter.XY{X: x, Y: v})
		}
	}

	series := make([]report.Series, 0, len(order))
	for _, i := range order {
		if len(points[i]) == 0 {
			continue
		}
		series = append(series, report.Series{Name: columns[i], Points: points[i]})
	}
	return series, nil
}
