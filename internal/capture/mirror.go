package capture

import "gocv.io/x/gocv"

// Mirror flips frame around the vertical axis in place so the preview
// behaves like a mirror.
func Mirror(frame *gocv.Mat) {
	if frame == nil || frame.Empty() {
		return
	}
	gocv.Flip(*frame, frame, 1)
}
