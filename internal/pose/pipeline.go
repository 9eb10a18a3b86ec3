package pose

import (
	"fmt"

	"github.com/Jolieabadir/dynalytics/internal/monitoring"
)

// FrameSource yields one frame's worth of detected landmarks at a time.
// An empty PointMap means the detector found no pose in that frame; the
// second return is false once the stream is exhausted.
//
// Implementations live in internal/detect. The pipeline only consumes
// the interface, so any upstream detector process can feed it.
type FrameSource interface {
	Next() (PointMap, bool, error)
}

// progressInterval controls how often the extractor logs progress.
const progressInterval = 100

// Extractor runs joint angle and velocity extraction over a frame
// stream and collects one FrameData per input frame.
//
// Single-threaded by contract: the tracker carries mutable history, so
// one Extractor serves one stream at a time.
type Extractor struct {
	analyzer *JointAnalyzer
	tracker  *VelocityTracker
	fps      float64
}

// NewExtractor builds an Extractor from its two analysis stages. The
// fps must match the tracker's so timestamps and speeds agree.
func NewExtractor(analyzer *JointAnalyzer, tracker *VelocityTracker, fps float64) *Extractor {
	return &Extractor{
		analyzer: analyzer,
		tracker:  tracker,
		fps:      fps,
	}
}

// Run consumes the source to exhaustion and returns the frames in
// stream order. Frames without a detected pose carry only their frame
// number and timestamp; they do not advance the velocity tracker.
func (e *Extractor) Run(src FrameSource) ([]*FrameData, error) {
	var frames []*FrameData
	poseFrames := 0

	for frameNumber := 0; ; frameNumber++ {
		points, ok, err := src.Next()
		if err != nil {
			return nil, fmt.Errorf("pipeline: read frame %d: %w", frameNumber, err)
		}
		if !ok {
			break
		}

		frame := &FrameData{
			FrameNumber: frameNumber,
			TimestampMS: float64(frameNumber) / e.fps * 1000,
		}

		if !points.Empty() {
			poseFrames++
			frame.Landmarks = points
			frame.Angles = e.analyzer.Calculate(&points)

			e.tracker.Update(&points)
			frame.Velocities = e.tracker.AllVelocities()
			frame.Speeds = e.tracker.AllSpeeds()
			frame.CenterOfMassVelocity, frame.CenterOfMassValid = e.tracker.CenterOfMassVelocity(&points)
			frame.CenterOfMassSpeed = e.tracker.CenterOfMassSpeed(&points)
		}

		frames = append(frames, frame)

		if len(frames)%progressInterval == 0 {
			monitoring.Logf("pipeline: processed %d frames (%d with pose)", len(frames), poseFrames)
		}
	}

	monitoring.Logf("pipeline: done, %d frames (%d with pose)", len(frames), poseFrames)
	return frames, nil
}
