// Package detector provides face landmark detection interfaces and types for drowsiness analysis.
package detector

// Face mesh landmark indices following the MediaPipe FaceMesh convention.
// See: https://developers.google.com/mediapipe/solutions/vision/face_landmarker
//
// Each eye is described by six points: outer corner, two upper-lid points,
// inner corner and two lower-lid points. The lower-lid points are listed so
// that LowerInner sits below UpperInner and LowerOuter below UpperOuter.
const (
	LeftEyeOuter      = 33
	LeftEyeUpperOuter = 160
	LeftEyeUpperInner = 158
	LeftEyeInner      = 133
	LeftEyeLowerInner = 153
	LeftEyeLowerOuter = 144

	RightEyeOuter      = 362
	RightEyeUpperOuter = 385
	RightEyeUpperInner = 387
	RightEyeInner      = 263
	RightEyeLowerInner = 373
	RightEyeLowerOuter = 380

	UpperLipCenter   = 13
	LowerLipCenter   = 14
	MouthLeftCorner  = 78
	MouthRightCorner = 308

	// NumFaceLandmarks is the point count of a refined FaceMesh result (468 mesh + 10 iris).
	NumFaceLandmarks = 478
)

// Point2D represents a point in frame pixel space.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FaceLandmarks is the set of landmarks detected for a single face.
// Points are indexed by landmark index and expressed in pixels.
type FaceLandmarks struct {
	Points []Point2D `json:"points"`
	Score  float64   `json:"score"`
}

// Point returns the landmark at index i, or false if the set does not contain it.
func (f *FaceLandmarks) Point(i int) (Point2D, bool) {
	if f == nil || i < 0 || i >= len(f.Points) {
		return Point2D{}, false
	}
	return f.Points[i], true
}

// Len returns the number of landmarks in the set.
func (f *FaceLandmarks) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Points)
}

// ToPixels maps landmarks expressed as fractions of the frame size
// (the MediaPipe output convention) to pixel coordinates.
// Returns a new FaceLandmarks instance.
func (f *FaceLandmarks) ToPixels(width, height int) FaceLandmarks {
	out := FaceLandmarks{
		Points: make([]Point2D, len(f.Points)),
		Score:  f.Score,
	}
	w, h := float64(width), float64(height)
	for i, p := range f.Points {
		out.Points[i] = Point2D{X: p.X * w, Y: p.Y * h}
	}
	return out
}
