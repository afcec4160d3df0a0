// Package compilestate tracks the host build pipeline's compile cycle.
package compilestate

import (
	"fmt"
	"sync"

	"github.com/studiolink/studiolink/internal/logbuf"
)

// UnitMessage is a single diagnostic reported for one compiled unit.
type UnitMessage struct {
	File     string
	Line     int
	Column   int
	Text     string
	Severity logbuf.Severity
}

func (m UnitMessage) format() string {
	return fmt.Sprintf("%s(%d,%d): %s", m.File, m.Line, m.Column, m.Text)
}

// Status is a consistent snapshot of the current compile cycle.
type Status struct {
	Compiling bool
	Errors    []string
}

// HasErrors reports whether the last cycle accumulated error diagnostics.
func (s Status) HasErrors() bool { return len(s.Errors) > 0 }

// Tracker is the Idle/Compiling state machine fed by host compile-pipeline
// events. Events are assumed delivered in order; no transition is skipped.
type Tracker struct {
	mu        sync.Mutex
	compiling bool
	errors    []string
}

// NewTracker returns an idle tracker with no accumulated errors.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Begin marks the start of a compile cycle and resets the error list.
func (t *Tracker) Begin() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.compiling = true
	t.errors = nil
}

// UnitFinished records diagnostics for one compiled unit. Only
// error-severity messages are retained.
func (t *Tracker) UnitFinished(_ string, messages []UnitMessage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, msg := range messages {
		if msg.Severity != logbuf.SeverityError {
			continue
		}
		t.errors = append(t.errors, msg.format())
	}
}

// Finish marks the end of the compile cycle. Accumulated errors remain
// readable until the next Begin.
func (t *Tracker) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.compiling = false
}

// Status returns a snapshot of the tracker state.
func (t *Tracker) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	errs := make([]string, len(t.errors))
	copy(errs, t.errors)
	return Status{Compiling: t.compiling, Errors: errs}
}
