// Package overlay draws the classification label onto outgoing frames.
package overlay

import (
	"image"
	"image/color"

	"github.com/ayusman/nidra/internal/analysis"
	"gocv.io/x/gocv"
)

// Label placement and font.
const (
	FontScale = 1.0
	Thickness = 3
)

// Origin is the baseline-left corner of the status label.
var Origin = image.Point{X: 20, Y: 40}

var (
	green  = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	red    = color.RGBA{R: 255, G: 0, B: 0, A: 0}
	yellow = color.RGBA{R: 255, G: 255, B: 0, A: 0}
)

// ColorFor returns the label color for a status. Unknown labels draw green.
func ColorFor(s analysis.Status) color.RGBA {
	switch s {
	case analysis.StatusDrowsy:
		return red
	case analysis.StatusYawning:
		return yellow
	default:
		return green
	}
}

// Text returns the label drawn for a status.
func Text(s analysis.Status) string {
	return "STATUS: " + string(s)
}

// Annotate draws the status label onto frame in place.
func Annotate(frame *gocv.Mat, s analysis.Status) {
	if frame == nil || frame.Empty() {
		return
	}
	gocv.PutText(frame, Text(s), Origin, gocv.FontHersheySimplex, FontScale, ColorFor(s), Thickness)
}
