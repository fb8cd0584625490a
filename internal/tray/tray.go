// Package tray shows the latest drowsiness status in the system tray.
package tray

import (
	"context"
	"fmt"
	"sync"

	"github.com/ayusman/nidra/internal/analysis"
	"github.com/ayusman/nidra/internal/status"
	"github.com/getlantern/systray"
)

// Tray is the system tray indicator.
type Tray struct {
	onOpen func()
	onQuit func()
	last   status.Snapshot
	mu     sync.RWMutex

	menuStatus  *systray.MenuItem
	menuMetrics *systray.MenuItem
}

// New creates a Tray showing the default status.
func New() *Tray {
	return &Tray{last: status.Default()}
}

// OnOpen sets the callback for the "Open Dashboard" item.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback for the quit item.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the tray. It must be called from the main goroutine and blocks
// until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle(statusTitle(analysis.StatusNormal))
	systray.SetTooltip("nidra drowsiness monitor")

	t.mu.Lock()
	t.menuStatus = systray.AddMenuItem(menuStatusText(t.last), "Latest classification")
	t.menuStatus.Disable()
	t.menuMetrics = systray.AddMenuItem(metricsText(t.last), "Latest eye and mouth ratios")
	t.menuMetrics.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open Dashboard...", "Open the live view in a browser")
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit nidra")

	go func() {
		for {
			select {
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetStatus updates the tray title and menu with s.
func (t *Tray) SetStatus(s status.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	changed := s.Status != t.last.Status
	t.last = s

	if t.menuStatus == nil {
		return
	}
	if changed {
		systray.SetTitle(statusTitle(s.Status))
		t.menuStatus.SetTitle(menuStatusText(s))
	}
	t.menuMetrics.SetTitle(metricsText(s))
}

// Last returns the most recent snapshot passed to SetStatus.
func (t *Tray) Last() status.Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

// Watch applies every snapshot from updates until ctx is done or updates closes.
func (t *Tray) Watch(ctx context.Context, updates <-chan status.Snapshot) {
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-updates:
			if !ok {
				return
			}
			t.SetStatus(s)
		}
	}
}

func statusTitle(s analysis.Status) string {
	switch s {
	case analysis.StatusDrowsy:
		return "nidra ● Drowsy"
	case analysis.StatusYawning:
		return "nidra ◐ Yawning"
	default:
		return "nidra ○"
	}
}

func menuStatusText(s status.Snapshot) string {
	return "Status: " + string(s.Status)
}

func metricsText(s status.Snapshot) string {
	return fmt.Sprintf("EAR %.3f  MAR %.3f", s.EAR, s.MAR)
}
