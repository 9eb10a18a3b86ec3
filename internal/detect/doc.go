// Package detect adapts upstream landmark detectors to the extraction
// pipeline.
//
// Detection itself runs out of process. A detector, or a previously
// exported session, hands frames to this package as CSV or line
// delimited JSON, and the sources here turn them into pose.PointMap
// streams for pose.Extractor.
//
// Key types:
//   - ReplaySource re-reads landmark-bearing CSV exports.
//   - JSONLSource consumes the JSON lines wire form.
//
// Dependency rule: may import pose and fsutil. No database or HTTP
// code is allowed here.
package detect
