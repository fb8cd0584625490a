// Package testdata builds synthetic frames for tests.
package testdata

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Frame size used by all fixtures.
const (
	Width  = 640
	Height = 480
)

// BlankFrame returns a black 640x480 BGR frame. The caller closes it.
func BlankFrame() gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), Height, Width, gocv.MatTypeCV8UC3)
}

// Frames returns n distinct frames: each has a gray square that moves
// right by a few pixels per frame. Close them with CloseAll.
func Frames(n int) []*gocv.Mat {
	frames := make([]*gocv.Mat, 0, n)
	for i := 0; i < n; i++ {
		m := BlankFrame()
		x := 100 + (i*8)%(Width-200)
		gocv.Rectangle(&m, image.Rect(x, 180, x+100, 280), color.RGBA{R: 128, G: 128, B: 128}, -1)
		frames = append(frames, &m)
	}
	return frames
}

// CloseAll closes every frame.
func CloseAll(frames []*gocv.Mat) {
	for _, f := range frames {
		f.Close()
	}
}
