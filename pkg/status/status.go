// Package status defines the progress stream a harvest run reports to its UI.
package status

import (
	"fmt"
	"sync"
)

// Phase is a stage of a harvest run, in the order a run passes through them
type Phase int

const (
	Scrolling Phase = iota
	Fetching
	Persisting
	Done
	Cancelled
)

// String returns the lowercase phase name
func (p Phase) String() string {
	switch p {
	case Scrolling:
		return "scrolling"
	case Fetching:
		return "fetching"
	case Persisting:
		return "persisting"
	case Done:
		return "done"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Status is one update of a run. Count is the number of items collected
// while scrolling, the number of completed fetches while fetching and the
// number of saved files when done. Total is set while fetching and when done.
type Status struct {
	Phase Phase
	Count int
	Total int
}

// String renders the status the way the status line shows it
func (s Status) String() string {
	switch s.Phase {
	case Scrolling:
		return fmt.Sprintf("Scrolling… %d found", s.Count)
	case Fetching:
		return fmt.Sprintf("Fetching %d/%d", s.Count, s.Total)
	case Persisting:
		return "Saving…"
	case Done:
		return fmt.Sprintf("Saved %d/%d", s.Count, s.Total)
	case Cancelled:
		return "Cancelled"
	default:
		return s.Phase.String()
	}
}

// ScrollingStatus reports the running item count of the harvest phase
func ScrollingStatus(count int) Status { return Status{Phase: Scrolling, Count: count} }

// FetchingStatus reports fetch progress
func FetchingStatus(done, total int) Status {
	return Status{Phase: Fetching, Count: done, Total: total}
}

// PersistingStatus reports that files are being written
func PersistingStatus() Status { return Status{Phase: Persisting} }

// DoneStatus reports the final saved/total counts
func DoneStatus(saved, total int) Status { return Status{Phase: Done, Count: saved, Total: total} }

// CancelledStatus reports that the user declined directory access
func CancelledStatus() Status { return Status{Phase: Cancelled} }

// Sink receives status updates. Implementations must not block for long.
type Sink interface {
	Update(Status)
}

// SinkFunc adapts a function to Sink
type SinkFunc func(Status)

// Update calls f(s)
func (f SinkFunc) Update(s Status) { f(s) }

// Discard is a Sink that drops every update
var Discard Sink = SinkFunc(func(Status) {})

// Tracker forwards updates to a Sink while keeping the stream monotonic:
// phases never go back, counters never decrease within Scrolling and
// Fetching, and nothing is forwarded after a terminal phase.
type Tracker struct {
	mu      sync.Mutex
	sink    Sink
	last    Status
	started bool
}

var _ Sink = (*Tracker)(nil)

// NewTracker wraps sink. A nil sink discards updates.
func NewTracker(sink Sink) *Tracker {
	if sink == nil {
		sink = Discard
	}
	return &Tracker{sink: sink}
}

// Update forwards s unless it regresses the stream
func (t *Tracker) Update(s Status) { t.Offer(s) }

// Offer forwards s if it does not regress the stream and reports whether
// it was forwarded
func (t *Tracker) Offer(s Status) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started && !t.advances(s) {
		return false
	}
	t.last = s
	t.started = true
	t.sink.Update(s)
	return true
}

func (t *Tracker) advances(s Status) bool {
	if t.last.Phase == Done || t.last.Phase == Cancelled {
		return false
	}
	if s.Phase != t.last.Phase {
		return s.Phase > t.last.Phase
	}
	switch s.Phase {
	case Scrolling, Fetching:
		return s.Count >= t.last.Count
	default:
		return false
	}
}

// Last returns the most recently forwarded status
func (t *Tracker) Last() (Status, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last, t.started
}
