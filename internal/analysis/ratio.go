package analysis

import (
	"math"

	"github.com/ayusman/nidra/internal/detector"
)

// EyePoints are p1..p6 around one eye: outer corner, two upper-lid points,
// inner corner, two lower-lid points.
type EyePoints [6]detector.Point2D

// MouthPoints are q1..q4: upper lip center, lower lip center, left corner, right corner.
type MouthPoints [4]detector.Point2D

// FrameMetrics holds the ratios computed for one frame.
type FrameMetrics struct {
	EAR float64 `json:"ear"`
	MAR float64 `json:"mar"`
}

// distance calculates the Euclidean distance between two points.
func distance(a, b detector.Point2D) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// EAR computes the eye aspect ratio (|p2-p6| + |p3-p5|) / (2|p1-p4|).
// A zero-width eye yields 0.
func EAR(p EyePoints) float64 {
	horizontal := distance(p[0], p[3])
	if horizontal == 0 {
		return 0
	}
	return (distance(p[1], p[5]) + distance(p[2], p[4])) / (2.0 * horizontal)
}

// MAR computes the mouth aspect ratio |q1-q2| / |q3-q4|.
// A zero-width mouth yields 0.
func MAR(q MouthPoints) float64 {
	horizontal := distance(q[2], q[3])
	if horizontal == 0 {
		return 0
	}
	return distance(q[0], q[1]) / horizontal
}

// Extract computes the frame metrics of a face: the mean EAR of both eyes and the MAR.
func Extract(face *detector.FaceLandmarks, m LandmarkMap) (FrameMetrics, error) {
	left, err := m.Eye(face, LeftEyeRoles)
	if err != nil {
		return FrameMetrics{}, err
	}
	right, err := m.Eye(face, RightEyeRoles)
	if err != nil {
		return FrameMetrics{}, err
	}
	mouth, err := m.Mouth(face)
	if err != nil {
		return FrameMetrics{}, err
	}

	return FrameMetrics{
		EAR: (EAR(left) + EAR(right)) / 2.0,
		MAR: MAR(mouth),
	}, nil
}

// Round3 rounds v to three decimal places.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
