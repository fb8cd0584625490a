package app

import (
	"path/filepath"
	"testing"

	"github.com/ayusman/nidra/internal/analysis"
	"github.com/ayusman/nidra/internal/capture"
	"github.com/ayusman/nidra/internal/detector"
	"github.com/ayusman/nidra/internal/status"
	"github.com/ayusman/nidra/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNew_RequiresCameraFactory(t *testing.T) {
	if _, err := New(Config{Mode: DetectorMock}); err == nil {
		t.Error("expected error without camera factory")
	}
}

func TestNew_Defaults(t *testing.T) {
	a, err := New(Config{Cameras: capture.MockFactory(nil, false), Mode: DetectorMock})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()

	if a.DetectorName() != DetectorMock {
		t.Errorf("DetectorName() = %q, want mock", a.DetectorName())
	}
	if _, ok := a.Status().(*status.Cell); !ok {
		t.Errorf("default publisher = %T, want *status.Cell", a.Status())
	}
	if a.config.Thresholds != analysis.DefaultThresholds() {
		t.Errorf("thresholds = %+v, want defaults", a.config.Thresholds)
	}
	if a.config.FPS != capture.DefaultFPS {
		t.Errorf("FPS = %d, want %d", a.config.FPS, capture.DefaultFPS)
	}
}

func TestNew_DetectorSelection(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		wantName string
		wantErr  bool
	}{
		{name: "explicit detector", config: Config{Detector: detector.NewMockDetector(), Mode: DetectorMediaPipe}, wantName: DetectorMock},
		{name: "mock mode", config: Config{Mode: DetectorMock}, wantName: DetectorMock},
		{name: "unknown mode", config: Config{Mode: "dlib"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.Cameras = capture.MockFactory(nil, false)
			a, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if a.DetectorName() != tt.wantName {
				t.Errorf("DetectorName() = %q, want %q", a.DetectorName(), tt.wantName)
			}
		})
	}
}

func TestApp_LandmarkMap(t *testing.T) {
	t.Run("without store", func(t *testing.T) {
		a, err := New(Config{Cameras: capture.MockFactory(nil, false), Mode: DetectorMock})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}

		m, err := a.LandmarkMap()
		if err != nil {
			t.Fatalf("LandmarkMap() error = %v", err)
		}
		if m[analysis.RoleUpperLip] != detector.UpperLipCenter {
			t.Errorf("upper_lip = %d, want default", m[analysis.RoleUpperLip])
		}
	})

	t.Run("seeds and reads overrides", func(t *testing.T) {
		s := newTestStore(t)
		a, err := New(Config{Store: s, Cameras: capture.MockFactory(nil, false), Mode: DetectorMock})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}

		roles, err := s.Landmarks().List()
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(roles) != len(analysis.AllRoles()) {
			t.Errorf("seeded %d roles, want %d", len(roles), len(analysis.AllRoles()))
		}

		if err := s.Landmarks().Upsert(&store.LandmarkRole{Role: "upper_lip", Index: 0}); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}

		m, err := a.LandmarkMap()
		if err != nil {
			t.Fatalf("LandmarkMap() error = %v", err)
		}
		if m[analysis.RoleUpperLip] != 0 {
			t.Errorf("upper_lip = %d, want stored override 0", m[analysis.RoleUpperLip])
		}
		if m[analysis.RoleLowerLip] != detector.LowerLipCenter {
			t.Errorf("lower_lip = %d, want default", m[analysis.RoleLowerLip])
		}
	})
}

func TestApp_NewSession_Independent(t *testing.T) {
	a, err := New(Config{Cameras: capture.MockFactory(nil, false), Mode: DetectorMock})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	s1, err := a.NewSession()
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	s2, _ := a.NewSession()

	if s1.ID == s2.ID {
		t.Error("sessions should have distinct ids")
	}
	if s1.camera == s2.camera {
		t.Error("sessions should have distinct camera handles")
	}
	if s1.Classifier() == s2.Classifier() {
		t.Error("sessions should have distinct classifiers")
	}
}
