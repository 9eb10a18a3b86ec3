// Package pose owns the kinematics data model for body-landmark streams.
//
// Responsibilities: landmark geometry (midpoints, visibility), joint
// angle computation at a vertex between two rays, the per-frame angle
// catalog, cross-frame velocity tracking with temporal smoothing, and
// the per-frame feature aggregate handed to the exporter.
// Key types: Landmark, PointMap, Angle, JointAnalyzer, VelocityTracker,
// FrameData.
//
// Dependency rule: pose depends only on the standard library plus the
// YAML parser used for catalog files. No database or HTTP code is
// allowed here.
package pose
