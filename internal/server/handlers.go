package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/studiolink/studiolink/internal/logbuf"
	"github.com/studiolink/studiolink/internal/wire"
)

const defaultLogCount = 100

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	identity := s.host.Identity()
	play := s.host.PlayState()
	compile := s.tracker.Status()

	body := wire.NewObject().
		Set("success", wire.Bool(true)).
		Set("server", wire.String(serverName)).
		Set("serverVersion", wire.String(serverVersion)).
		Set("application", wire.String(identity.Application)).
		Set("applicationVersion", wire.String(identity.Version)).
		Set("project", wire.String(identity.Project)).
		Set("playing", wire.Bool(play.Playing)).
		Set("paused", wire.Bool(play.Paused)).
		Set("compiling", wire.Bool(compile.Compiling))
	writeSuccess(w, body)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.dispatcher.Defer(s.host.RefreshAssets)
	s.metrics.recordDeferred(r.Context(), "refresh")

	body := wire.NewObject().
		Set("success", wire.Bool(true)).
		Set("message", wire.String("refresh queued"))
	writeSuccess(w, body)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	count := defaultLogCount
	if raw := query.Get("count"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			count = parsed
		}
	}

	var filter *logbuf.Severity
	if raw := query.Get("level"); raw != "" {
		if severity, ok := logbuf.ParseSeverity(raw); ok {
			filter = &severity
		}
	}

	entries := s.buffer.Snapshot(filter, count)
	logs := make([]wire.Value, 0, len(entries))
	for _, entry := range entries {
		logs = append(logs, wire.NewObject().
			Set("message", wire.String(entry.Message)).
			Set("stackTrace", wire.String(entry.StackTrace)).
			Set("type", wire.String(entry.Severity.String())).
			Set("timestamp", wire.String(entry.Time.UTC().Format(time.RFC3339))).
			Value())
	}

	body := wire.NewObject().
		Set("success", wire.Bool(true)).
		Set("count", wire.Int(int64(len(logs)))).
		Set("logs", wire.Array(logs...))
	writeSuccess(w, body)
}

func (s *Server) handleLogsClear(w http.ResponseWriter, _ *http.Request) {
	s.buffer.Clear()

	body := wire.NewObject().
		Set("success", wire.Bool(true)).
		Set("message", wire.String("logs cleared"))
	writeSuccess(w, body)
}

func (s *Server) handleCompileStatus(w http.ResponseWriter, _ *http.Request) {
	status := s.tracker.Status()
	errors := make([]wire.Value, 0, len(status.Errors))
	for _, message := range status.Errors {
		errors = append(errors, wire.String(message))
	}

	body := wire.NewObject().
		Set("success", wire.Bool(true)).
		Set("isCompiling", wire.Bool(status.Compiling)).
		Set("errorCount", wire.Int(int64(len(status.Errors)))).
		Set("errors", wire.Array(errors...))
	writeSuccess(w, body)
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	s.dispatcher.Defer(s.host.EnterPlayMode)
	s.metrics.recordDeferred(r.Context(), "play")

	body := wire.NewObject().
		Set("success", wire.Bool(true)).
		Set("message", wire.String("play queued"))
	writeSuccess(w, body)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.dispatcher.Defer(s.host.ExitPlayMode)
	s.metrics.recordDeferred(r.Context(), "stop")

	body := wire.NewObject().
		Set("success", wire.Bool(true)).
		Set("message", wire.String("stop queued"))
	writeSuccess(w, body)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.dispatcher.Defer(s.host.TogglePause)
	s.metrics.recordDeferred(r.Context(), "pause")

	body := wire.NewObject().
		Set("success", wire.Bool(true)).
		Set("message", wire.String("pause queued"))
	writeSuccess(w, body)
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		// The existing clients inspect the body, not the status code, so
		// validation failures keep HTTP 200.
		writeFailure(w, http.StatusOK, "Missing 'path' parameter")
		return
	}

	s.dispatcher.Defer(func() { s.host.PingAsset(path) })
	s.metrics.recordDeferred(r.Context(), "ping")

	body := wire.NewObject().
		Set("success", wire.Bool(true)).
		Set("path", wire.String(path)).
		Set("message", wire.String("ping queued"))
	writeSuccess(w, body)
}

func (s *Server) handleSelection(w http.ResponseWriter, _ *http.Request) {
	selection := s.host.Selection()
	items := make([]wire.Value, 0, len(selection))
	for _, path := range selection {
		items = append(items, wire.String(path))
	}

	body := wire.NewObject().
		Set("success", wire.Bool(true)).
		Set("count", wire.Int(int64(len(selection)))).
		Set("selection", wire.Array(items...))
	writeSuccess(w, body)
}

func (s *Server) handleProjectPath(w http.ResponseWriter, _ *http.Request) {
	paths := s.host.Paths()

	body := wire.NewObject().
		Set("success", wire.Bool(true)).
		Set("projectPath", wire.String(paths.ProjectPath)).
		Set("dataPath", wire.String(paths.DataPath))
	writeSuccess(w, body)
}

func (s *Server) handleCurrentScene(w http.ResponseWriter, _ *http.Request) {
	scene := s.host.CurrentScene()

	body := wire.NewObject().
		Set("success", wire.Bool(true)).
		Set("name", wire.String(scene.Name)).
		Set("path", wire.String(scene.Path)).
		Set("dirty", wire.Bool(scene.Dirty)).
		Set("loaded", wire.Bool(scene.Loaded))
	writeSuccess(w, body)
}
