// Package vision receives marker observations from the external vision
// collaborator and exposes the latest one to the control loop through a
// single atomic slot.
package vision

import (
	"sync/atomic"
	"time"
)

// Observation is one vision measurement: angle error to the docking
// marker, distance in marker units, and whether the marker was detected
// at all. Age is how old the measurement was at read time; consumers
// must re-validate it against their own staleness threshold.
type Observation struct {
	AngleError float64       `json:"angle_error"`
	Distance   float64       `json:"distance"`
	Detected   bool          `json:"detected"`
	Age        time.Duration `json:"age"`
}

// stamped pairs an observation with its arrival time. Stored behind an
// atomic pointer so the writer (listener goroutine) and reader (control
// loop) exchange consistent snapshots without locking.
type stamped struct {
	angleError float64
	distance   float64
	detected   bool
	at         time.Time
}

// Feed is the single-slot observation store. One writer, any readers.
type Feed struct {
	slot atomic.Pointer[stamped]
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{}
}

// Publish stores a new observation, replacing the previous one.
func (f *Feed) Publish(angleError, distance float64, detected bool) {
	f.slot.Store(&stamped{
		angleError: angleError,
		distance:   distance,
		detected:   detected,
		at:         time.Now(),
	})
}

// Latest returns the most recent observation with its age, or false if
// nothing has ever been published.
func (f *Feed) Latest() (Observation, bool) {
	s := f.slot.Load()
	if s == nil {
		return Observation{}, false
	}
	return Observation{
		AngleError: s.angleError,
		Distance:   s.distance,
		Detected:   s.detected,
		Age:        time.Since(s.at),
	}, true
}

// LastUpdateAge returns how long ago the last observation arrived.
// Returns false if nothing has ever been published.
func (f *Feed) LastUpdateAge() (time.Duration, bool) {
	s := f.slot.Load()
	if s == nil {
		return 0, false
	}
	return time.Since(s.at), true
}
