package host

import (
	"context"
	"log"
	"sync"

	"github.com/studiolink/studiolink/internal/logbuf"
)

// SimHost is an in-process host used by the demo binary and end-to-end
// tests. It keeps all mutable control state behind one mutex and drains its
// own MainThreadQueue, standing in for the editor control loop.
type SimHost struct {
	queue *MainThreadQueue

	mu        sync.Mutex
	identity  Identity
	play      PlayState
	selection []string
	paths     Paths
	scene     Scene

	refreshes int
	pinged    []string

	logSubs     map[int]LogFunc
	compileSubs map[int]CompileFunc
	nextSub     int

	loopCancel context.CancelFunc
	loopDone   chan struct{}
}

// NewSimHost constructs a simulator with plausible project state.
func NewSimHost(logger *log.Logger) *SimHost {
	h := &SimHost{
		queue: NewMainThreadQueue(0, logger),
		identity: Identity{
			Application: "studiolink-sim",
			Version:     "1.0.0",
			Project:     "SampleProject",
		},
		paths: Paths{
			ProjectPath: "/projects/SampleProject",
			DataPath:    "/projects/SampleProject/Assets",
		},
		scene: Scene{
			Name:   "Main",
			Path:   "Assets/Scenes/Main.scene",
			Dirty:  false,
			Loaded: true,
		},
		logSubs:     make(map[int]LogFunc),
		compileSubs: make(map[int]CompileFunc),
	}
	return h
}

// Start launches the simulated control loop draining deferred calls.
func (h *SimHost) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	h.mu.Lock()
	h.loopCancel = cancel
	h.loopDone = done
	h.mu.Unlock()
	go func() {
		defer close(done)
		h.queue.Run(ctx)
	}()
}

// Close tears down the control loop and the queue.
func (h *SimHost) Close() {
	h.queue.Close()
	h.mu.Lock()
	cancel := h.loopCancel
	done := h.loopDone
	h.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Queue exposes the deferred-call dispatcher for the control server.
func (h *SimHost) Queue() *MainThreadQueue { return h.queue }

// Identity implements StateReader.
func (h *SimHost) Identity() Identity {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.identity
}

// PlayState implements StateReader.
func (h *SimHost) PlayState() PlayState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.play
}

// Selection implements StateReader.
func (h *SimHost) Selection() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.selection))
	copy(out, h.selection)
	return out
}

// Paths implements StateReader.
func (h *SimHost) Paths() Paths {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.paths
}

// CurrentScene implements StateReader.
func (h *SimHost) CurrentScene() Scene {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.scene
}

// SetSelection replaces the simulated selection set.
func (h *SimHost) SetSelection(paths ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.selection = append([]string(nil), paths...)
}

// EnterPlayMode implements Controller.
func (h *SimHost) EnterPlayMode() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.play.Playing {
		h.play.Playing = true
		h.play.Paused = false
	}
}

// ExitPlayMode implements Controller.
func (h *SimHost) ExitPlayMode() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.play.Playing = false
	h.play.Paused = false
}

// TogglePause implements Controller.
func (h *SimHost) TogglePause() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.play.Paused = !h.play.Paused
}

// RefreshAssets implements Controller.
func (h *SimHost) RefreshAssets() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.refreshes++
}

// PingAsset implements Controller.
func (h *SimHost) PingAsset(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pinged = append(h.pinged, path)
	h.selection = []string{path}
}

// Refreshes reports how many asset rescans ran on the control loop.
func (h *SimHost) Refreshes() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.refreshes
}

// Pinged reports the asset paths highlighted so far.
func (h *SimHost) Pinged() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.pinged...)
}

// SubscribeLogs implements Events.
func (h *SimHost) SubscribeLogs(fn LogFunc) (cancel func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextSub
	h.nextSub++
	h.logSubs[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.logSubs, id)
	}
}

// SubscribeCompile implements Events.
func (h *SimHost) SubscribeCompile(fn CompileFunc) (cancel func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextSub
	h.nextSub++
	h.compileSubs[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.compileSubs, id)
	}
}

// EmitLog delivers a diagnostic event to all log observers.
func (h *SimHost) EmitLog(entry logbuf.Entry) {
	h.mu.Lock()
	subs := make([]LogFunc, 0, len(h.logSubs))
	for _, fn := range h.logSubs {
		subs = append(subs, fn)
	}
	h.mu.Unlock()
	for _, fn := range subs {
		fn(entry)
	}
}

// EmitCompile delivers a compile-pipeline event to all compile observers.
func (h *SimHost) EmitCompile(ev CompileEvent) {
	h.mu.Lock()
	subs := make([]CompileFunc, 0, len(h.compileSubs))
	for _, fn := range h.compileSubs {
		subs = append(subs, fn)
	}
	h.mu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}
}
