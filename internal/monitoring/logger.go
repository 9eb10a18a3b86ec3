// Package monitoring carries the process-wide diagnostic logger. The
// extraction pipeline and database migrations report progress through
// Logf so binaries can redirect or silence it in one place.
package monitoring

import "log"

// Logf writes a diagnostic line. It defaults to log.Printf; swap it
// with SetLogger to capture or mute diagnostics.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces Logf. A nil f installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
