package server

import (
	"fmt"
	"io"
	"net/http"

	"github.com/ayusman/nidra/internal/app"
	"github.com/sirupsen/logrus"
)

// Boundary separates MJPEG parts.
const Boundary = "frame"

// StreamHandler serves the annotated video as MJPEG. Each request runs its
// own session with a fresh camera handle and classifier.
type StreamHandler struct {
	app *app.App
	log logrus.FieldLogger
}

// NewStreamHandler creates a StreamHandler.
func NewStreamHandler(a *app.App, log logrus.FieldLogger) *StreamHandler {
	return &StreamHandler{app: a, log: log}
}

// WritePart writes one JPEG as a multipart/x-mixed-replace part.
func WritePart(w io.Writer, jpeg []byte) error {
	if _, err := fmt.Fprintf(w, "--%s\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", Boundary, len(jpeg)); err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\r\n\r\n")
	return err
}

// ServeHTTP streams frames until the camera ends or the client disconnects.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess, err := h.app.NewSession()
	if err != nil {
		h.log.WithError(err).Error("failed to create video session")
		http.Error(w, "Failed to start session", http.StatusInternalServerError)
		return
	}

	log := h.log.WithFields(logrus.Fields{"session": sess.ID, "remote": r.RemoteAddr})
	flusher, _ := w.(http.Flusher)
	started := false

	emit := func(jpeg []byte) error {
		if !started {
			w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+Boundary)
			w.Header().Set("Cache-Control", "no-cache")
			w.Header().Set("Connection", "keep-alive")
			started = true
		}
		if err := WritePart(w, jpeg); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	}

	if err := sess.Run(r.Context(), emit); err != nil {
		if !started {
			log.WithError(err).Error("video session failed to start")
			http.Error(w, "Camera unavailable", http.StatusServiceUnavailable)
			return
		}
		log.WithError(err).Debug("video client went away")
	}
}
