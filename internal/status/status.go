// Package status holds the latest drowsiness classification for polling and push consumers.
package status

import (
	"errors"
	"sync"

	"github.com/ayusman/nidra/internal/analysis"
)

// ErrSubscriberExists is returned when Subscribe is called with a duplicate id.
var ErrSubscriberExists = errors.New("subscriber id already exists")

// Snapshot is the externally visible classification of the most recent analyzed frame.
type Snapshot struct {
	Status analysis.Status `json:"status"`
	EAR    float64         `json:"ear"`
	MAR    float64         `json:"mar"`
}

// Default returns the snapshot reported before any frame was analyzed.
func Default() Snapshot {
	return Snapshot{Status: analysis.StatusNormal}
}

// NewSnapshot builds a snapshot with ratios rounded to three decimals.
func NewSnapshot(s analysis.Status, m analysis.FrameMetrics) Snapshot {
	return Snapshot{
		Status: s,
		EAR:    analysis.Round3(m.EAR),
		MAR:    analysis.Round3(m.MAR),
	}
}

// Publisher accepts snapshots from the frame-processing path.
type Publisher interface {
	Publish(s Snapshot)
}

// Cell is a last-write-wins snapshot shared between the frame loop and readers.
// Subscribers receive every published snapshot; a subscriber whose channel
// is full misses that snapshot.
type Cell struct {
	mu      sync.RWMutex
	current Snapshot
	subs    map[string]chan Snapshot
	dropped uint64
}

// NewCell creates a Cell holding the default snapshot.
func NewCell() *Cell {
	return &Cell{
		current: Default(),
		subs:    make(map[string]chan Snapshot),
	}
}

// Publish overwrites the current snapshot and fans it out to subscribers.
func (c *Cell) Publish(s Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = s
	for _, ch := range c.subs {
		select {
		case ch <- s:
		default:
			c.dropped++
		}
	}
}

// Read returns the most recently published snapshot.
func (c *Cell) Read() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Subscribe registers a buffered channel receiving future snapshots.
// The returned function unsubscribes and closes the channel.
func (c *Cell) Subscribe(id string, buffer int) (<-chan Snapshot, func(), error) {
	if buffer < 1 {
		buffer = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.subs[id]; exists {
		return nil, nil, ErrSubscriberExists
	}

	ch := make(chan Snapshot, buffer)
	c.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.subs, id)
			close(ch)
		})
	}

	return ch, cancel, nil
}

// Subscribers returns the number of active subscribers.
func (c *Cell) Subscribers() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subs)
}

// Dropped returns how many deliveries were skipped because a subscriber was full.
func (c *Cell) Dropped() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dropped
}

// Multi publishes to every wrapped publisher in order.
type Multi []Publisher

// Publish implements Publisher.
func (m Multi) Publish(s Snapshot) {
	for _, p := range m {
		if p != nil {
			p.Publish(s)
		}
	}
}
