// Package app wires the camera, landmark detector, classifier and status
// publisher into per-client analysis sessions.
package app

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ayusman/nidra/internal/alert"
	"github.com/ayusman/nidra/internal/analysis"
	"github.com/ayusman/nidra/internal/capture"
	"github.com/ayusman/nidra/internal/detector"
	"github.com/ayusman/nidra/internal/status"
	"github.com/ayusman/nidra/internal/store"
	"github.com/sirupsen/logrus"
)

// Detector selection modes.
const (
	DetectorAuto      = "auto"
	DetectorMediaPipe = "mediapipe"
	DetectorMock      = "mock"
)

// Config holds the collaborators of the application. Only Cameras is required.
type Config struct {
	Store      *store.Store
	Cameras    capture.Factory
	Detector   detector.Detector
	Mode       string
	Status     status.Publisher
	Hooks      *alert.Dispatcher
	Thresholds analysis.Thresholds
	FPS        int
	Logger     logrus.FieldLogger
}

// App owns the shared detector and hands out sessions.
type App struct {
	config       Config
	detector     detector.Detector
	detectorName string
	log          logrus.FieldLogger

	mu       sync.Mutex
	sessions map[string]*Session
}

// New creates an App. With no explicit Detector the Mode decides: "mock"
// always uses the mock detector, "mediapipe" requires the MediaPipe service,
// and "auto" tries MediaPipe and falls back to the mock.
func New(config Config) (*App, error) {
	if config.Cameras == nil {
		return nil, errors.New("app: camera factory is required")
	}
	if config.Logger == nil {
		config.Logger = logrus.StandardLogger()
	}
	if config.Status == nil {
		config.Status = status.NewCell()
	}
	if config.Thresholds == (analysis.Thresholds{}) {
		config.Thresholds = analysis.DefaultThresholds()
	}
	if config.FPS <= 0 {
		config.FPS = capture.DefaultFPS
	}

	a := &App{
		config:   config,
		log:      config.Logger,
		sessions: make(map[string]*Session),
	}

	if err := a.selectDetector(); err != nil {
		return nil, err
	}

	if config.Store != nil {
		if err := config.Store.Landmarks().SeedDefaults(defaultRoleIndices()); err != nil {
			return nil, fmt.Errorf("seed landmark roles: %w", err)
		}
	}

	return a, nil
}

func (a *App) selectDetector() error {
	if a.config.Detector != nil {
		a.detector = a.config.Detector
		a.detectorName = detectorName(a.detector)
		return nil
	}

	switch a.config.Mode {
	case DetectorMock:
		a.detector = detector.NewMockDetector()
		a.detectorName = DetectorMock
	case DetectorMediaPipe:
		mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig(), a.log)
		if err != nil {
			return fmt.Errorf("mediapipe detector: %w", err)
		}
		a.detector = mp
		a.detectorName = DetectorMediaPipe
	case DetectorAuto, "":
		if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig(), a.log); err == nil {
			a.detector = mp
			a.detectorName = DetectorMediaPipe
		} else {
			a.log.WithError(err).Warn("MediaPipe not available, using mock detector")
			a.detector = detector.NewMockDetector()
			a.detectorName = DetectorMock
		}
	default:
		return fmt.Errorf("unknown detector mode %q", a.config.Mode)
	}

	a.log.WithField("detector", a.detectorName).Info("face landmark detector selected")
	return nil
}

func detectorName(d detector.Detector) string {
	switch d.(type) {
	case *detector.MediaPipeDetector:
		return DetectorMediaPipe
	case *detector.MockDetector:
		return DetectorMock
	default:
		return fmt.Sprintf("%T", d)
	}
}

func defaultRoleIndices() map[string]int {
	defaults := analysis.DefaultLandmarkMap()
	out := make(map[string]int, len(defaults))
	for role, idx := range defaults {
		out[string(role)] = idx
	}
	return out
}

// LandmarkMap returns the role table new sessions use: the built-in
// MediaPipe defaults overlaid with any stored assignments.
func (a *App) LandmarkMap() (analysis.LandmarkMap, error) {
	m := analysis.DefaultLandmarkMap()
	if a.config.Store == nil {
		return m, nil
	}

	stored, err := a.config.Store.Landmarks().Map()
	if err != nil {
		return nil, fmt.Errorf("load landmark roles: %w", err)
	}

	m = m.Merge(stored)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// NewSession creates a session with its own camera and classifier state.
func (a *App) NewSession() (*Session, error) {
	landmarks, err := a.LandmarkMap()
	if err != nil {
		return nil, err
	}
	return newSession(a, landmarks), nil
}

func (a *App) register(s *Session) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sessions[s.ID] = s
}

func (a *App) unregister(s *Session) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.sessions, s.ID)
}

// ActiveSessions returns the number of sessions currently running.
func (a *App) ActiveSessions() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.sessions)
}

// Detector returns the shared landmark detector.
func (a *App) Detector() detector.Detector {
	return a.detector
}

// DetectorName reports which detector implementation is in use.
func (a *App) DetectorName() string {
	return a.detectorName
}

// Status returns the publisher sessions write snapshots to.
func (a *App) Status() status.Publisher {
	return a.config.Status
}

// Close releases the detector.
func (a *App) Close() error {
	if a.detector == nil {
		return nil
	}
	if err := a.detector.Close(); err != nil {
		return fmt.Errorf("close detector: %w", err)
	}
	return nil
}
