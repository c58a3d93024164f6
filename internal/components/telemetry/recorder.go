package telemetry

import (
	"strings"
	"sync"
)

// Event is one call made against a Recorder.
type Event struct {
	Kind   string
	ID     string
	Params []any
	Count  int64
}

// Recorder is an API that keeps every report in memory, it exists so tests can assert
// on what a component reported.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) add(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *Recorder) ReportBroken(id string, params ...any) {
	r.add(Event{Kind: "broken", ID: id, Params: params})
}

func (r *Recorder) ReportWarning(id string, params ...any) {
	r.add(Event{Kind: "warning", ID: id, Params: params})
}

func (r *Recorder) ReportDebug(msg string, params ...any) {
	r.add(Event{Kind: "debug", ID: msg, Params: params})
}

func (r *Recorder) ReportCount(id string, count int64) {
	r.add(Event{Kind: "count", ID: id, Count: count})
}

func (r *Recorder) ReportProgress(label string, params ...any) {
	r.add(Event{Kind: "progress", ID: label, Params: params})
}

// Events returns a copy of every recorded event of the given kind, or all of them
// when kind is empty.
func (r *Recorder) Events(kind string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []Event{}
	for _, e := range r.events {
		if kind == "" || e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Contains reports whether an event of the given kind has an id containing substr.
func (r *Recorder) Contains(kind, substr string) bool {
	for _, e := range r.Events(kind) {
		if strings.Contains(e.ID, substr) {
			return true
		}
	}
	return false
}
