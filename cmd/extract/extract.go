package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/Jolieabadir/dynalytics/internal/config"
	"github.com/Jolieabadir/dynalytics/internal/detect"
	"github.com/Jolieabadir/dynalytics/internal/export"
	"github.com/Jolieabadir/dynalytics/internal/fsutil"
	"github.com/Jolieabadir/dynalytics/internal/monitoring"
	"github.com/Jolieabadir/dynalytics/internal/pose"
	"github.com/Jolieabadir/dynalytics/internal/report"
	"github.com/Jolieabadir/dynalytics/internal/summary"
	"github.com/Jolieabadir/dynalytics/internal/units"
)

var (
	input        = flag.String("input", "", "Detector output to process (JSONL, or a landmarks CSV with -format csv)")
	format       = flag.String("format", "jsonl", "Input format: jsonl or csv")
	output       = flag.String("output", "", "Feature CSV output path (default: <input>_features.csv)")
	configPath   = flag.String("config", "", "Optional settings JSON file")
	fpsFlag      = flag.Float64("fps", 0, "Frames per second of the source video (overrides config)")
	windowFlag   = flag.Int("window", 0, "Velocity smoothing window in frames (overrides config)")
	thresholdVal = flag.Float64("threshold", -1, "Landmark visibility threshold, 0 to 1 (overrides config)")
	catalogFlag  = flag.String("catalog", "", "Angle catalog YAML (overrides config; empty uses the built-in catalog)")
	minimal      = flag.Bool("minimal", false, "Export only the key angle and speed columns")
	landmarks    = flag.Bool("landmarks", false, "Include raw landmark columns in the export")
	showSummary  = flag.Bool("summary", false, "Print per-column statistics after extraction")
	plot         = flag.Bool("plot", false, "Write angle and speed PNG charts next to the output")
	unitsFlag    = flag.String("units", units.PxPerSecond, "Speed units for the printed summary: pxs or pxf")
	quiet        = flag.Bool("quiet", false, "Suppress pipeline progress logging")
)

func main() {
	flag.Parse()

	if *quiet {
		monitoring.SetLogger(nil)
	}

	if *input == "" {
		log.Fatal("input path is required")
	}
	if *minimal && *landmarks {
		log.Fatal("minimal and landmarks are mutually exclusive")
	}
	if !units.IsValid(*unitsFlag) {
		log.Fatalf("invalid units %q, must be one of: %s", *unitsFlag, units.GetValidUnitsString())
	}

	settings := config.DefaultSettings()
	if *configPath != "" {
		loaded, err := config.LoadSettings(*configPath)
		if err != nil {
			log.Fatalf("failed to load settings: %v", err)
		}
		settings = settings.Merge(loaded)
	}

	fps := *fpsFlag
	if fps <= 0 {
		fps = settings.GetFPS()
	}
	window := *windowFlag
	if window < 1 {
		window = settings.GetSmoothingWindow()
	}
	threshold := *thresholdVal
	if threshold < 0 {
		threshold = settings.GetVisibilityThreshold()
	}
	catalogPath := *catalogFlag
	if catalogPath == "" {
		catalogPath = settings.GetCatalogPath()
	}

	catalog := pose.DefaultCatalog()
	if catalogPath != "" {
		f, err := os.Open(catalogPath)
		if err != nil {
			log.Fatalf("failed to open angle catalog: %v", err)
		}
		catalog, err = pose.LoadCatalog(f)
		f.Close()
		if err != nil {
			log.Fatalf("failed to load angle catalog: %v", err)
		}
	}

	filesystem := fsutil.OSFileSystem{}

	var src pose.FrameSource
	switch *format {
	case "jsonl":
		f, err := os.Open(*input)
		if err != nil {
			log.Fatalf("failed to open input: %v", err)
		}
		defer f.Close()
		src = detect.NewJSONLSource(f)
	case "csv":
		replay, err := detect.NewReplaySource(filesystem, *input)
		if err != nil {
			log.Fatalf("failed to open input: %v", err)
		}
		defer replay.Close()
		src = replay
	default:
		log.Fatalf("unknown input format %q, must be jsonl or csv", *format)
	}

	analyzer := pose.NewJointAnalyzer(catalog, threshold)
	tracker := pose.NewVelocityTracker(fps, window)
	extractor := pose.NewExtractor(analyzer, tracker, fps)

	frames, err := extractor.Run(src)
	if err != nil {
		log.Fatalf("extraction failed: %v", err)
	}

	outPath := *output
	if outPath == "" {
		outPath = strings.TrimSuffix(*input, filepath.Ext(*input)) + "_features.csv"
	}

	exporter := export.NewCSVExporter(filesystem)
	switch {
	case *minimal:
		err = exporter.ExportMinimal(frames, outPath)
	case *landmarks:
		err = exporter.ExportWithLandmarks(frames, outPath)
	default:
		err = exporter.Export(frames, outPath)
	}
	if err != nil {
		log.Fatalf("export failed: %v", err)
	}
	fmt.Printf("wrote %d frames to %s\n", len(frames), outPath)

	if *showSummary {
		printSummary(summary.Compute(frames), fps, *unitsFlag)
	}

	if *plot {
		plotter := report.NewPlotter(filesystem)
		base := strings.TrimSuffix(outPath, filepath.Ext(outPath))

		anglesPath := base + "_angles.png"
		if err := plotter.AnglesPNG(frames, nil, anglesPath); err != nil {
			log.Fatalf("angle chart failed: %v", err)
		}
		fmt.Printf("wrote %s\n", anglesPath)

		speedPath := base + "_speed.png"
		if err := plotter.SpeedPNG(frames, speedPath); err != nil {
			log.Fatalf("speed chart failed: %v", err)
		}
		fmt.Printf("wrote %s\n", speedPath)
	}
}

// printSummary writes the per-column statistics table to stdout. Speeds
// are converted from stored px/s into the requested units.
func printSummary(s summary.SessionSummary, fps float64, target string) {
	fmt.Printf("\n%d frames, %d with pose (speeds in %s)\n", s.Frames, s.PoseFrames, target)
	fmt.Printf("%-26s %6s %10s %10s %10s %10s %10s %10s\n",
		"column", "count", "mean", "std", "min", "max", "p50", "p95")

	for _, c := range s.Columns {
		mean, std, lo, hi, p50, p95 := c.Mean, c.StdDev, c.Min, c.Max, c.P50, c.P95
		if target != units.PxPerSecond && strings.HasPrefix(c.Name, pose.SpeedPrefix) {
			mean = units.ConvertSpeed(mean, fps, target)
			std = units.ConvertSpeed(std, fps, target)
			lo = units.ConvertSpeed(lo, fps, target)
			hi = units.ConvertSpeed(hi, fps, target)
			p50 = units.ConvertSpeed(p50, fps, target)
			p95 = units.ConvertSpeed(p95, fps, target)
		}
		fmt.Printf("%-26s %6d %10.2f %10.2f %10.2f %10.2f %10.2f %10.2f\n",
			c.Name, c.Count, mean, std, lo, hi, p50, p95)
	}
}
