package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical settings defaults file.
// This is the single source of truth for all default pipeline values.
const DefaultConfigPath = "config/dynalytics.defaults.json"

// Settings is the root configuration for the extraction pipeline and
// the labeling service. All fields are pointers so a partial JSON file
// overrides only what it names; the Get* methods supply defaults for
// everything else.
type Settings struct {
	// Extraction params
	FPS                 *float64 `json:"fps,omitempty"`
	SmoothingWindow     *int     `json:"smoothing_window,omitempty"`
	VisibilityThreshold *float64 `json:"visibility_threshold,omitempty"`
	CatalogPath         *string  `json:"catalog_path,omitempty"` // YAML angle catalog, empty = built-in

	// Detector params, passed through to the landmark detector
	MinDetectionConfidence *float64 `json:"min_detection_confidence,omitempty"`
	MinTrackingConfidence  *float64 `json:"min_tracking_confidence,omitempty"`

	// Labeling service params
	DataDir *string `json:"data_dir,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptySettings returns a Settings with all fields set to nil.
// Use LoadSettings to load actual values from a file.
func EmptySettings() *Settings {
	return &Settings{}
}

// DefaultSettings returns a Settings with every field set to its
// default value.
func DefaultSettings() *Settings {
	return &Settings{
		FPS:                    ptrFloat64(30.0),
		SmoothingWindow:        ptrInt(3),
		VisibilityThreshold:    ptrFloat64(0.5),
		CatalogPath:            ptrString(""),
		MinDetectionConfidence: ptrFloat64(0.5),
		MinTrackingConfidence:  ptrFloat64(0.5),
		DataDir:                ptrString("data"),
	}
}

// LoadSettings loads Settings from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadSettings(path string) (*Settings, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse JSON into empty settings. The Get* methods provide
	// fallback defaults for any fields not specified in the JSON.
	cfg := EmptySettings()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configured values are valid.
func (c *Settings) Validate() error {
	if c.FPS != nil && *c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %f", *c.FPS)
	}

	if c.SmoothingWindow != nil && *c.SmoothingWindow < 1 {
		return fmt.Errorf("smoothing_window must be at least 1, got %d", *c.SmoothingWindow)
	}

	if c.VisibilityThreshold != nil {
		if *c.VisibilityThreshold < 0 || *c.VisibilityThreshold > 1 {
			return fmt.Errorf("visibility_threshold must be between 0 and 1, got %f", *c.VisibilityThreshold)
		}
	}

	if c.MinDetectionConfidence != nil {
		if *c.MinDetectionConfidence < 0 || *c.MinDetectionConfidence > 1 {
			return fmt.Errorf("min_detection_confidence must be between 0 and 1, got %f", *c.MinDetectionConfidence)
		}
	}

	if c.MinTrackingConfidence != nil {
		if *c.MinTrackingConfidence < 0 || *c.MinTrackingConfidence > 1 {
			return fmt.Errorf("min_tracking_confidence must be between 0 and 1, got %f", *c.MinTrackingConfidence)
		}
	}

	return nil
}

// Merge returns a copy of c with every non-nil field of other applied
// on top. Neither receiver nor argument is modified.
func (c *Settings) Merge(other *Settings) *Settings {
	merged := *c
	if other == nil {
		return &merged
	}
	if other.FPS != nil {
		merged.FPS = other.FPS
	}
	if other.SmoothingWindow != nil {
		merged.SmoothingWindow = other.SmoothingWindow
	}
	if other.VisibilityThreshold != nil {
		merged.VisibilityThreshold = other.VisibilityThreshold
	}
	if other.CatalogPath != nil {
		merged.CatalogPath = other.CatalogPath
	}
	if other.MinDetectionConfidence != nil {
		merged.MinDetectionConfidence = other.MinDetectionConfidence
	}
	if other.MinTrackingConfidence != nil {
		merged.MinTrackingConfidence = other.MinTrackingConfidence
	}
	if other.DataDir != nil {
		merged.DataDir = other.DataDir
	}
	return &merged
}

// GetFPS returns the fps value or the default.
func (c *Settings) GetFPS() float64 {
	if c.FPS == nil {
		return 30.0 // default
	}
	return *c.FPS
}

// GetSmoothingWindow returns the smoothing_window value or the default.
func (c *Settings) GetSmoothingWindow() int {
	if c.SmoothingWindow == nil {
		return 3 // default
	}
	return *c.SmoothingWindow
}

// GetVisibilityThreshold returns the visibility_threshold value or the default.
func (c *Settings) GetVisibilityThreshold() float64 {
	if c.VisibilityThreshold == nil {
		return 0.5 // default
	}
	return *c.VisibilityThreshold
}

// GetCatalogPath returns the catalog_path value or the default.
// Empty means the built-in angle catalog.
func (c *Settings) GetCatalogPath() string {
	if c.CatalogPath == nil {
		return ""
	}
	return *c.CatalogPath
}

// GetMinDetectionConfidence returns the min_detection_confidence value or the default.
func (c *Settings) GetMinDetectionConfidence() float64 {
	if c.MinDetectionConfidence == nil {
		return 0.5
	}
	return *c.MinDetectionConfidence
}

// GetMinTrackingConfidence returns the min_tracking_confidence value or the default.
func (c *Settings) GetMinTrackingConfidence() float64 {
	if c.MinTrackingConfidence == nil {
		return 0.5
	}
	return *c.MinTrackingConfidence
}

// GetDataDir returns the data_dir value or the default.
func (c *Settings) GetDataDir() string {
	if c.DataDir == nil || *c.DataDir == "" {
		return "data" // default
	}
	return *c.DataDir
}
