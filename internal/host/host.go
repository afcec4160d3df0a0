// Package host defines the facade the bridge consumes from its embedding
// application: synchronous state reads, control actions that must run on the
// host's single control goroutine, and observer registration for diagnostic
// and compile-pipeline events.
package host

import (
	"github.com/studiolink/studiolink/internal/compilestate"
	"github.com/studiolink/studiolink/internal/logbuf"
)

// Identity names the embedding application and open project.
type Identity struct {
	Application string
	Version     string
	Project     string
}

// PlayState captures the host's execution-mode flags.
type PlayState struct {
	Playing bool
	Paused  bool
}

// Paths holds the host project filesystem roots.
type Paths struct {
	ProjectPath string
	DataPath    string
}

// Scene describes the host's active document.
type Scene struct {
	Name   string
	Path   string
	Dirty  bool
	Loaded bool
}

// StateReader exposes host state the bridge may read from any goroutine.
type StateReader interface {
	Identity() Identity
	PlayState() PlayState
	Selection() []string
	Paths() Paths
	CurrentScene() Scene
}

// Controller groups the mutations that are only legal on the host control
// goroutine. The bridge never calls these directly; it defers them through a
// Dispatcher.
type Controller interface {
	EnterPlayMode()
	ExitPlayMode()
	TogglePause()
	RefreshAssets()
	PingAsset(path string)
}

// Dispatcher schedules a callback for execution on the host control
// goroutine. Submission is fire-and-forget: no completion signal reaches the
// caller, and callbacks pending at shutdown are silently dropped.
type Dispatcher interface {
	Defer(fn func())
}

// CompileEventKind discriminates compile-pipeline events.
type CompileEventKind int

const (
	// CompileStarted opens a compile cycle.
	CompileStarted CompileEventKind = iota
	// CompileUnitFinished reports diagnostics for one compiled unit.
	CompileUnitFinished
	// CompileFinished closes the compile cycle.
	CompileFinished
)

// CompileEvent is one compile-pipeline notification from the host.
type CompileEvent struct {
	Kind     CompileEventKind
	Unit     string
	Messages []compilestate.UnitMessage
}

// LogFunc receives one diagnostic event.
type LogFunc func(logbuf.Entry)

// CompileFunc receives one compile-pipeline event.
type CompileFunc func(CompileEvent)

// Events registers observers for host events. The returned cancel func
// removes the observer; registration without teardown would leave callbacks
// dangling into a stopped server.
type Events interface {
	SubscribeLogs(fn LogFunc) (cancel func())
	SubscribeCompile(fn CompileFunc) (cancel func())
}

// Host aggregates everything the bridge needs from its embedding application.
type Host interface {
	StateReader
	Controller
	Events
}
