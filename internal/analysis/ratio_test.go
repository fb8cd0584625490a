package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/ayusman/nidra/internal/detector"
)

const epsilon = 1e-9

func eye(h float64) EyePoints {
	return EyePoints{
		{X: 0, Y: 0},
		{X: 20, Y: -h},
		{X: 40, Y: -h},
		{X: 60, Y: 0},
		{X: 40, Y: h},
		{X: 20, Y: h},
	}
}

func scaleEye(p EyePoints, k float64) EyePoints {
	for i := range p {
		p[i].X *= k
		p[i].Y *= k
	}
	return p
}

func scaleMouth(q MouthPoints, k float64) MouthPoints {
	for i := range q {
		q[i].X *= k
		q[i].Y *= k
	}
	return q
}

func TestEAR(t *testing.T) {
	tests := []struct {
		name string
		eye  EyePoints
		want float64
	}{
		{name: "open eye", eye: eye(9), want: 0.3},
		{name: "closed eye", eye: eye(0), want: 0},
		{name: "half open", eye: eye(3), want: 0.1},
		{
			name: "zero horizontal span",
			eye: EyePoints{
				{X: 5, Y: 5}, {X: 0, Y: -10}, {X: 3, Y: -8},
				{X: 5, Y: 5}, {X: 3, Y: 8}, {X: 0, Y: 10},
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EAR(tt.eye)
			if math.Abs(got-tt.want) > epsilon {
				t.Errorf("EAR() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestEAR_ScaleInvariant(t *testing.T) {
	base := eye(7)
	want := EAR(base)

	for _, k := range []float64{0.01, 0.5, 2, 13.7, 1000} {
		got := EAR(scaleEye(base, k))
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("scale %g: EAR() = %f, want %f", k, got, want)
		}
		if got < 0 {
			t.Errorf("scale %g: EAR() negative: %f", k, got)
		}
	}
}

func TestMAR(t *testing.T) {
	tests := []struct {
		name  string
		mouth MouthPoints
		want  float64
	}{
		{
			name:  "closed mouth",
			mouth: MouthPoints{{X: 40, Y: 0}, {X: 40, Y: 0}, {X: 0, Y: 0}, {X: 80, Y: 0}},
			want:  0,
		},
		{
			name:  "yawn",
			mouth: MouthPoints{{X: 40, Y: -24}, {X: 40, Y: 24}, {X: 0, Y: 0}, {X: 80, Y: 0}},
			want:  0.6,
		},
		{
			name:  "zero horizontal span",
			mouth: MouthPoints{{X: 40, Y: -24}, {X: 40, Y: 24}, {X: 10, Y: 3}, {X: 10, Y: 3}},
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MAR(tt.mouth)
			if math.Abs(got-tt.want) > epsilon {
				t.Errorf("MAR() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestMAR_ScaleInvariant(t *testing.T) {
	base := MouthPoints{{X: 41, Y: -13}, {X: 39, Y: 17}, {X: 2, Y: 1}, {X: 79, Y: -2}}
	want := MAR(base)

	for _, k := range []float64{0.1, 3, 250} {
		got := MAR(scaleMouth(base, k))
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("scale %g: MAR() = %f, want %f", k, got, want)
		}
	}
}

func TestExtract(t *testing.T) {
	m := DefaultLandmarkMap()

	t.Run("averages both eyes", func(t *testing.T) {
		face := detector.FaceWithRatios(0.3, 0.2)
		// Shrink the right eye opening to a third
		for _, idx := range []int{detector.RightEyeUpperOuter, detector.RightEyeUpperInner} {
			face.Points[idx].Y = 200 - 3
		}
		for _, idx := range []int{detector.RightEyeLowerOuter, detector.RightEyeLowerInner} {
			face.Points[idx].Y = 200 + 3
		}

		got, err := Extract(&face, m)
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		if math.Abs(got.EAR-0.2) > 1e-9 {
			t.Errorf("EAR = %f, want 0.2 (mean of 0.3 and 0.1)", got.EAR)
		}
		if math.Abs(got.MAR-0.2) > 1e-9 {
			t.Errorf("MAR = %f, want 0.2", got.MAR)
		}
	})

	t.Run("missing landmark", func(t *testing.T) {
		face := detector.FaceLandmarks{Points: make([]detector.Point2D, 100)}

		_, err := Extract(&face, m)
		if !errors.Is(err, ErrMissingLandmark) {
			t.Errorf("expected ErrMissingLandmark, got %v", err)
		}
	})

	t.Run("custom map", func(t *testing.T) {
		face := detector.FaceLandmarks{Points: make([]detector.Point2D, 16)}
		custom := LandmarkMap{}
		for i, r := range AllRoles() {
			custom[r] = i
		}
		// Left and right eye both get the eye(9) geometry, mouth is degenerate
		for i, p := range eye(9) {
			face.Points[i] = p
			face.Points[6+i] = p
		}

		got, err := Extract(&face, custom)
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		if math.Abs(got.EAR-0.3) > 1e-9 {
			t.Errorf("EAR = %f, want 0.3", got.EAR)
		}
		if got.MAR != 0 {
			t.Errorf("MAR = %f, want 0 for zero-width mouth", got.MAR)
		}
	})
}

func TestRound3(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.123456, 0.123},
		{0.2996, 0.3},
		{0, 0},
		{1.0005001, 1.001},
	}
	for _, tt := range tests {
		if got := Round3(tt.in); math.Abs(got-tt.want) > epsilon {
			t.Errorf("Round3(%f) = %f, want %f", tt.in, got, tt.want)
		}
	}
}
