// Package report renders extracted frame sequences as PNG time-series
// charts: one line per joint angle or per tracked point speed, plotted
// against session time. Files land atomically through the filesystem
// abstraction so a failed render never leaves a truncated image.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"sort"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/Jolieabadir/dynalytics/internal/fsutil"
	"github.com/Jolieabadir/dynalytics/internal/pose"
)

var (
	// ErrNoFrames means the frame sequence was empty.
	ErrNoFrames = errors.New("report: no frames")

	// ErrNoSeries means no requested series had any data points, so
	// there is nothing to draw.
	ErrNoSeries = errors.New("report: no series has data")
)

// Plotter renders frame sequences as PNG charts through a FileSystem.
type Plotter struct {
	fs fsutil.FileSystem
}

// NewPlotter builds a plotter writing through fs.
func NewPlotter(fs fsutil.FileSystem) *Plotter {
	return &Plotter{fs: fs}
}

// AnglesPNG plots joint angles over time, one line per angle. With an
// empty names list every angle present in the sequence is drawn;
// otherwise only the named angles are, and names with no data points
// are skipped.
func (p *Plotter) AnglesPNG(frames []*pose.FrameData, names []string, path string) error {
	series, err := collectSeries(frames, pose.AnglePrefix, names)
	if err != nil {
		return err
	}
	return p.write(AnglesChart, series, path)
}

// SpeedPNG plots the speed of every tracked point plus the center of
// mass over time, one line per point.
func (p *Plotter) SpeedPNG(frames []*pose.FrameData, path string) error {
	series, err := collectSeries(frames, pose.SpeedPrefix, nil)
	if err != nil {
		return err
	}
	return p.write(SpeedChart, series, path)
}

// ChartKind names one of the built-in chart layouts.
type ChartKind struct {
	Title  string
	YLabel string
}

// Chart layouts for the two session views.
var (
	AnglesChart = ChartKind{Title: "Joint Angles", YLabel: "Angle (deg)"}
	SpeedChart  = ChartKind{Title: "Point Speeds", YLabel: "Speed (px/s)"}
)

// Series is one legend entry: a display name and its time-ordered data
// points, X in seconds.
type Series struct {
	Name   string
	Points plotter.XYs
}

// collectSeries gathers data points per column from the flattened
// frames. Frames without a pose contribute nothing, so lines simply
// bridge detection gaps. The X axis is session time in seconds.
func collectSeries(frames []*pose.FrameData, prefix string, names []string) ([]Series, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}

	var columns []string
	if len(names) > 0 {
		columns = make([]string, 0, len(names))
		for _, n := range names {
			columns = append(columns, prefix+n)
		}
	}

	points := make(map[string]plotter.XYs)
	for _, f := range frames {
		if !f.HasPose() {
			continue
		}
		x := f.TimestampMS / 1000
		for col, field := range f.Flatten() {
			if !field.Valid || !strings.HasPrefix(col, prefix) {
				continue
			}
			points[col] = append(points[col], plotter.XY{X: x, Y: field.Value})
		}
	}

	// No explicit selection: draw every column seen, in sorted order
	// for a stable legend.
	if columns == nil {
		for col := range points {
			columns = append(columns, col)
		}
		sort.Strings(columns)
	}

	series := make([]Series, 0, len(columns))
	for _, col := range columns {
		pts := points[col]
		if len(pts) == 0 {
			continue
		}
		series = append(series, Series{Name: strings.TrimPrefix(col, prefix), Points: pts})
	}
	if len(series) == 0 {
		return nil, ErrNoSeries
	}
	return series, nil
}

// Render draws the series onto a single chart and returns the encoded
// PNG. Callers that serve charts over HTTP use this directly; the
// Plotter methods write the same bytes to disk.
func Render(kind ChartKind, series []Series) ([]byte, error) {
	if len(series) == 0 {
		return nil, ErrNoSeries
	}

	pl := plot.New()
	pl.Title.Text = kind.Title
	pl.X.Label.Text = "Time (s)"
	pl.Y.Label.Text = kind.YLabel

	colors := makePalette(len(series))
	for i, s := range series {
		line, err := plotter.NewLine(s.Points)
		if err != nil {
			return nil, fmt.Errorf("report: build line %s: %w", s.Name, err)
		}
		line.Color = colors[i]
		line.Width = vg.Points(1)
		pl.Add(line)
		pl.Legend.Add(s.Name, line)
	}

	pl.Legend.Top = true
	pl.Legend.Left = false
	pl.Legend.XOffs = -10
	pl.Legend.YOffs = -10

	wt, err := pl.WriterTo(14*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return nil, fmt.Errorf("report: render %s: %w", kind.Title, err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("report: render %s: %w", kind.Title, err)
	}
	return buf.Bytes(), nil
}

// write renders and lands the chart at path.
func (p *Plotter) write(kind ChartKind, series []Series, path string) error {
	data, err := Render(kind, series)
	if err != nil {
		return err
	}
	if err := fsutil.WriteFileAtomic(p.fs, path, data, 0644); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return nil
}

// makePalette creates n distinct line colors spaced evenly around the
// hue circle.
func makePalette(n int) []color.Color {
	if n <= 0 {
		return nil
	}

	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		hue := float64(i) / float64(n)
		r, g, b := hslToRGB(hue, 0.7, 0.5)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

// hslToRGB converts HSL to RGB (0-255 range)
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	var rf, gf, bf float64

	if s == 0 {
		rf, gf, bf = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q
		rf = hueToRGB(p, q, h+1.0/3.0)
		gf = hueToRGB(p, q, h)
		bf = hueToRGB(p, q, h-1.0/3.0)
	}

	return uint8(rf * 255), uint8(gf * 255), uint8(bf * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	if t < 1.0/6.0 {
		return p + (q-p)*6*t
	}
	if t < 1.0/2.0 {
		return q
	}
	if t < 2.0/3.0 {
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
