package alert

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Dispatcher runs matching hooks in the background when the classification changes.
type Dispatcher struct {
	manager  *Manager
	executor *Executor
	log      logrus.FieldLogger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(manager *Manager, executor *Executor, log logrus.FieldLogger) *Dispatcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		manager:  manager,
		executor: executor,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Notify starts every hook subscribed to ev.Status and returns how many were started.
// Events that are not transitions are ignored.
func (d *Dispatcher) Notify(ev Event) int {
	if ev.Status == ev.Previous {
		return 0
	}
	if d.ctx.Err() != nil {
		return 0
	}

	hooks := d.manager.For(ev.Status)
	for _, h := range hooks {
		d.wg.Add(1)
		go d.run(h, ev)
	}
	return len(hooks)
}

func (d *Dispatcher) run(h *Hook, ev Event) {
	defer d.wg.Done()

	log := d.log.WithFields(logrus.Fields{
		"hook":    h.Manifest.Name,
		"event":   ev.ID,
		"session": ev.Session,
		"status":  ev.Status,
	})

	if _, err := d.executor.Execute(d.ctx, h, ev); err != nil {
		log.WithError(err).Warn("alert hook failed")
		return
	}
	log.Debug("alert hook completed")
}

// Wait blocks until every started hook has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Close cancels running hooks and waits for them to exit.
func (d *Dispatcher) Close() error {
	d.cancel()
	d.wg.Wait()
	return nil
}
