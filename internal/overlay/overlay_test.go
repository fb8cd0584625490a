package overlay

import (
	"image/color"
	"testing"

	"github.com/ayusman/nidra/internal/analysis"
	"gocv.io/x/gocv"
)

func TestColorFor(t *testing.T) {
	tests := []struct {
		status analysis.Status
		want   color.RGBA
	}{
		{analysis.StatusNormal, color.RGBA{G: 255}},
		{analysis.StatusDrowsy, color.RGBA{R: 255}},
		{analysis.StatusYawning, color.RGBA{R: 255, G: 255}},
		{analysis.Status("Unknown"), color.RGBA{G: 255}},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := ColorFor(tt.status); got != tt.want {
				t.Errorf("ColorFor(%s) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestText(t *testing.T) {
	if got := Text(analysis.StatusYawning); got != "STATUS: Yawning" {
		t.Errorf("Text() = %q", got)
	}
}

func TestAnnotate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping gocv test in short mode")
	}

	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	Annotate(&frame, analysis.StatusDrowsy)

	// Red in BGR lands in the third channel around the label
	drawn := false
	for x := Origin.X; x < Origin.X+200 && !drawn; x++ {
		for y := Origin.Y - 25; y < Origin.Y+5; y++ {
			v := frame.GetVecbAt(y, x)
			if v[2] == 255 && v[1] == 0 && v[0] == 0 {
				drawn = true
				break
			}
		}
	}
	if !drawn {
		t.Error("expected red label pixels near the origin")
	}
}

func TestAnnotate_NilAndEmpty(t *testing.T) {
	Annotate(nil, analysis.StatusNormal)

	if testing.Short() {
		return
	}
	empty := gocv.NewMat()
	defer empty.Close()
	Annotate(&empty, analysis.StatusNormal)
}
