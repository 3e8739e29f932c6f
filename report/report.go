// Package report carries the progress events of a split run to pluggable sinks.
package report

import "sync"

// Kind identifies what happened.
type Kind string

const (
	KindDiscovered  Kind = "discovered"  // Path, Count
	KindSkipped     Kind = "skipped"     // Image, Label
	KindPaired      Kind = "paired"      // Count
	KindPartitioned Kind = "partitioned" // Train, Valid
	KindLayout      Kind = "layout"      // Path
	KindDirReady    Kind = "dir_ready"   // Path
	KindCopyStart   Kind = "copy_start"  // Split, Count
	KindCopied      Kind = "copied"      // Split, Image, Label
	KindCompleted   Kind = "completed"   // Train, Valid
)

// Event is a single progress record. Only the fields relevant to Kind are set.
type Event struct {
	Kind  Kind   `json:"kind"`
	Split string `json:"split,omitempty"`
	Path  string `json:"path,omitempty"`
	Image string `json:"image,omitempty"`
	Label string `json:"label,omitempty"`
	Count int    `json:"count"`
	Train int    `json:"train"`
	Valid int    `json:"valid"`
}

// Sink receives events in emission order.
type Sink interface {
	Emit(Event)
}

type discard struct{}

func (discard) Emit(Event) {}

// Discard drops every event.
var Discard Sink = discard{}

type multi []Sink

func (m multi) Emit(e Event) {
	for _, s := range m {
		s.Emit(e)
	}
}

// Multi fans every event out to each non-nil sink.
func Multi(sinks ...Sink) Sink {
	var m multi
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}
	if len(m) == 0 {
		return Discard
	}
	if len(m) == 1 {
		return m[0]
	}
	return m
}

// Recorder keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Of returns the recorded events of the given kind.
func (r *Recorder) Of(kind Kind) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
