package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/nidra/internal/alert"
	"github.com/ayusman/nidra/internal/analysis"
	"github.com/ayusman/nidra/internal/capture"
	"github.com/ayusman/nidra/internal/overlay"
	"github.com/ayusman/nidra/internal/status"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// FrameResult describes one processed frame.
type FrameResult struct {
	Face    bool
	Metrics analysis.FrameMetrics
	Status  analysis.Status
	JPEG    []byte
}

// Session is one video client: a camera handle, a classifier and the
// landmark roles read when the session started.
type Session struct {
	ID string

	app        *App
	camera     capture.Camera
	classifier *analysis.Classifier
	landmarks  analysis.LandmarkMap
	log        logrus.FieldLogger

	frames int
	faces  int
}

func newSession(a *App, landmarks analysis.LandmarkMap) *Session {
	id := uuid.New().String()
	return &Session{
		ID:         id,
		app:        a,
		camera:     a.config.Cameras(),
		classifier: analysis.NewClassifier(a.config.Thresholds),
		landmarks:  landmarks,
		log:        a.log.WithField("session", id),
	}
}

// Classifier exposes the session's classifier state.
func (s *Session) Classifier() *analysis.Classifier {
	return s.classifier
}

// Run opens the camera and processes frames at the configured rate,
// passing each encoded JPEG to emit. It returns nil when the camera stops
// producing frames or ctx is cancelled, and the emit error if emit fails.
func (s *Session) Run(ctx context.Context, emit func([]byte) error) error {
	s.camera.SetFPS(s.app.config.FPS)
	if err := s.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	defer s.camera.Close()

	s.app.register(s)
	defer s.app.unregister(s)

	s.log.Info("session started")
	defer func() {
		s.log.WithFields(logrus.Fields{
			"frames": s.frames,
			"faces":  s.faces,
		}).Info("session ended")
	}()

	ticker := time.NewTicker(time.Second / time.Duration(s.app.config.FPS))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		frame, err := s.camera.ReadFrame()
		if err != nil {
			if !errors.Is(err, capture.ErrNoFrame) {
				s.log.WithError(err).Warn("frame read failed")
			}
			return nil
		}

		result, err := s.ProcessFrame(frame)
		frame.Close()
		if err != nil {
			s.log.WithError(err).Warn("frame dropped")
			continue
		}

		if err := emit(result.JPEG); err != nil {
			return fmt.Errorf("emit frame: %w", err)
		}
	}
}

// ProcessFrame runs one frame through the pipeline. The frame is mirrored and
// annotated in place. Frames without a usable face leave the status untouched.
func (s *Session) ProcessFrame(frame *gocv.Mat) (FrameResult, error) {
	s.frames++
	result := FrameResult{Status: s.classifier.Last()}

	capture.Mirror(frame)

	faces, err := s.app.detector.Detect(frame)
	if err != nil {
		s.log.WithError(err).Warn("landmark detection failed")
		faces = nil
	}

	if len(faces) > 0 {
		metrics, err := analysis.Extract(&faces[0], s.landmarks)
		if err != nil {
			s.log.WithError(err).Debug("incomplete landmark set")
		} else {
			s.faces++
			s.classify(metrics, &result)
			overlay.Annotate(frame, result.Status)
		}
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return result, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	result.JPEG = bytes.Clone(buf.GetBytes())
	return result, nil
}

func (s *Session) classify(metrics analysis.FrameMetrics, result *FrameResult) {
	previous := s.classifier.Last()
	current := s.classifier.Update(metrics)

	result.Face = true
	result.Metrics = metrics
	result.Status = current

	s.app.config.Status.Publish(status.NewSnapshot(current, metrics))

	if current != previous {
		s.log.WithFields(logrus.Fields{
			"from": previous,
			"to":   current,
			"ear":  analysis.Round3(metrics.EAR),
			"mar":  analysis.Round3(metrics.MAR),
		}).Info("status changed")

		if s.app.config.Hooks != nil {
			s.app.config.Hooks.Notify(alert.NewEvent(s.ID, previous, current, metrics))
		}
	}
}
