// Package security validates client-supplied file locations before the
// server touches them. Video and CSV paths registered through the API
// must stay inside the configured data directory, and filenames derived
// from stored paths are sanitized before they reach download headers.
package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// WithinDirectory returns an error unless path stays inside dir after
// lexical cleaning. The check is lexical only: symlinks are not
// resolved, which keeps it usable against virtual filesystems where
// the paths never touch the host disk.
func WithinDirectory(path, dir string) error {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("path %s is not relative to %s: %w", path, dir, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return fmt.Errorf("path %s escapes %s", path, dir)
	}
	return nil
}

// SanitizeFilename strips a name down to characters that are safe in a
// Content-Disposition header and on common filesystems. Anything
// outside ASCII letters, digits, dot and dash becomes an underscore,
// runs of underscores collapse to one, and the result is capped at 128
// bytes. A name with nothing left after trimming falls back to
// "unknown".
func SanitizeFilename(name string) string {
	var b strings.Builder
	underscore := false
	for _, r := range name {
		safe := r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' ||
			r >= '0' && r <= '9' || r == '.' || r == '-'
		switch {
		case safe:
			b.WriteRune(r)
			underscore = false
		case underscore:
			// collapse runs into a single underscore
		default:
			b.WriteByte('_')
			underscore = true
		}
		if b.Len() >= 128 {
			break
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "unknown"
	}
	return out
}
