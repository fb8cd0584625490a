package analysis

// Status is the classification emitted for a frame.
type Status string

const (
	// StatusNormal means eyes open and mouth closed, or eyes closed for too few frames.
	StatusNormal Status = "Normal"
	// StatusDrowsy means eyes have stayed closed for ConsecFrames frames or more.
	StatusDrowsy Status = "Drowsy"
	// StatusYawning means eyes open and mouth wide open.
	StatusYawning Status = "Yawning"
)

// Default classification thresholds.
const (
	// EyeThreshold is the EAR below which eyes count as closed.
	EyeThreshold = 0.21
	// YawnThreshold is the MAR above which the mouth counts as yawning.
	YawnThreshold = 0.55
	// ConsecFrames is the number of consecutive closed-eye frames that make a drowsy frame.
	ConsecFrames = 15
)

// Thresholds configures a Classifier.
type Thresholds struct {
	EyeThreshold  float64
	YawnThreshold float64
	ConsecFrames  int
}

// DefaultThresholds returns the standard thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		EyeThreshold:  EyeThreshold,
		YawnThreshold: YawnThreshold,
		ConsecFrames:  ConsecFrames,
	}
}

// Classifier converts per-frame metrics into a Status using a consecutive
// closed-eye frame counter. It is owned by a single video session and is not
// safe for concurrent use.
type Classifier struct {
	thresholds Thresholds
	counter    int
	last       Status
}

// NewClassifier creates a Classifier in its initial state (counter 0, Normal).
func NewClassifier(t Thresholds) *Classifier {
	return &Classifier{
		thresholds: t,
		last:       StatusNormal,
	}
}

// Update advances the state machine by one frame and returns the frame's status.
//
// Closed-eye frames below ConsecFrames report Normal: only the counter moves.
// A yawning frame resets the counter.
func (c *Classifier) Update(m FrameMetrics) Status {
	status := StatusNormal

	switch {
	case m.EAR < c.thresholds.EyeThreshold:
		c.counter++
		if c.counter >= c.thresholds.ConsecFrames {
			status = StatusDrowsy
		}
	case m.MAR > c.thresholds.YawnThreshold:
		status = StatusYawning
		c.counter = 0
	default:
		c.counter = 0
	}

	c.last = status
	return status
}

// Counter returns the number of consecutive closed-eye frames seen so far.
func (c *Classifier) Counter() int {
	return c.counter
}

// Last returns the status emitted by the most recent Update.
func (c *Classifier) Last() Status {
	return c.last
}

// Thresholds returns the classifier configuration.
func (c *Classifier) Thresholds() Thresholds {
	return c.thresholds
}
