// Package alert runs external hook executables when the drowsiness classification changes.
package alert

import (
	"time"

	"github.com/ayusman/nidra/internal/analysis"
	"github.com/google/uuid"
)

// Manifest describes a hook, read from hook.json in the hook's directory.
type Manifest struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Description string            `json:"description"`
	Executable  string            `json:"executable"`
	Events      []analysis.Status `json:"events"`
}

// Event is written as JSON to a hook's stdin.
type Event struct {
	ID       string          `json:"id"`
	Session  string          `json:"session"`
	Status   analysis.Status `json:"status"`
	Previous analysis.Status `json:"previous"`
	EAR      float64         `json:"ear"`
	MAR      float64         `json:"mar"`
	Time     time.Time       `json:"time"`
}

// NewEvent builds an event for a transition from previous to current.
func NewEvent(session string, previous, current analysis.Status, m analysis.FrameMetrics) Event {
	return Event{
		ID:       uuid.New().String(),
		Session:  session,
		Status:   current,
		Previous: previous,
		EAR:      analysis.Round3(m.EAR),
		MAR:      analysis.Round3(m.MAR),
		Time:     time.Now().UTC(),
	}
}

// Response is what a hook prints to stdout.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Hook is a discovered hook with its manifest and location.
type Hook struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Handles reports whether the hook subscribed to s.
func (h *Hook) Handles(s analysis.Status) bool {
	for _, e := range h.Manifest.Events {
		if e == s {
			return true
		}
	}
	return false
}
