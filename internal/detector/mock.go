package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results, either as a fixed
// answer or as a queue consumed one frame at a time.
type MockDetector struct {
	mu    sync.Mutex
	faces []FaceLandmarks
	queue [][]FaceLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetFaces sets the faces returned by Detect once the queue is empty.
func (m *MockDetector) SetFaces(faces []FaceLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faces = faces
}

// Queue appends per-frame results. Each Detect call consumes one entry.
// A nil entry means no face in that frame.
func (m *MockDetector) Queue(results ...[]FaceLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, results...)
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the next queued result, the fixed faces, or the configured error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]FaceLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		return next, nil
	}
	return m.faces, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Geometry of the synthetic faces built by FaceWithRatios, in pixels.
const (
	eyeWidth   = 60.0
	mouthWidth = 80.0
)

// FaceWithRatios returns a synthetic face whose eye aspect ratio (both eyes)
// and mouth aspect ratio equal ear and mar under the default landmark layout.
func FaceWithRatios(ear, mar float64) FaceLandmarks {
	face := FaceLandmarks{
		Points: make([]Point2D, NumFaceLandmarks),
		Score:  0.95,
	}

	// Vertical lid offset h gives EAR = 4h / (2*eyeWidth).
	h := ear * eyeWidth / 2

	placeEye := func(outer, upperOuter, upperInner, inner, lowerInner, lowerOuter int, x0 float64) {
		const y = 200.0
		face.Points[outer] = Point2D{X: x0, Y: y}
		face.Points[upperOuter] = Point2D{X: x0 + 20, Y: y - h}
		face.Points[upperInner] = Point2D{X: x0 + 40, Y: y - h}
		face.Points[inner] = Point2D{X: x0 + eyeWidth, Y: y}
		face.Points[lowerInner] = Point2D{X: x0 + 40, Y: y + h}
		face.Points[lowerOuter] = Point2D{X: x0 + 20, Y: y + h}
	}

	placeEye(LeftEyeOuter, LeftEyeUpperOuter, LeftEyeUpperInner, LeftEyeInner, LeftEyeLowerInner, LeftEyeLowerOuter, 200)
	placeEye(RightEyeOuter, RightEyeUpperOuter, RightEyeUpperInner, RightEyeInner, RightEyeLowerInner, RightEyeLowerOuter, 340)

	// Lip opening v gives MAR = v / mouthWidth.
	v := mar * mouthWidth
	face.Points[UpperLipCenter] = Point2D{X: 320, Y: 320 - v/2}
	face.Points[LowerLipCenter] = Point2D{X: 320, Y: 320 + v/2}
	face.Points[MouthLeftCorner] = Point2D{X: 320 - mouthWidth/2, Y: 320}
	face.Points[MouthRightCorner] = Point2D{X: 320 + mouthWidth/2, Y: 320}

	return face
}

// OpenEyesLandmarks returns an alert face: eyes open, mouth closed.
func OpenEyesLandmarks() FaceLandmarks {
	return FaceWithRatios(0.30, 0.10)
}

// ClosedEyesLandmarks returns a face with eyes nearly shut and mouth closed.
func ClosedEyesLandmarks() FaceLandmarks {
	return FaceWithRatios(0.10, 0.10)
}

// YawningLandmarks returns a face with eyes open and mouth wide open.
func YawningLandmarks() FaceLandmarks {
	return FaceWithRatios(0.30, 0.60)
}
