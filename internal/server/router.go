package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/studiolink/studiolink/internal/wire"
)

type handlerFunc func(http.ResponseWriter, *http.Request)

// routes builds the control surface handler: CORS (with OPTIONS
// short-circuit), panic recovery, request metrics, and exact
// case-insensitive path dispatch.
func (s *Server) routes() http.Handler {
	registry := map[string]handlerFunc{
		"/":               s.handleStatus,
		"/status":         s.handleStatus,
		"/refresh":        s.handleRefresh,
		"/logs":           s.handleLogs,
		"/logs/clear":     s.handleLogsClear,
		"/compile/status": s.handleCompileStatus,
		"/play":           s.handlePlay,
		"/stop":           s.handleStop,
		"/pause":          s.handlePause,
		"/ping":           s.handlePing,
		"/selection":      s.handleSelection,
		"/project/path":   s.handleProjectPath,
		"/scene/current":  s.handleCurrentScene,
	}

	dispatch := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler, ok := registry[normalizePath(r.URL.Path)]
		if !ok {
			writeFailure(w, http.StatusNotFound, "Unknown path: "+r.URL.Path)
			return
		}
		handler(w, r)
	})

	return withCORS(s.recovered(s.measured(dispatch)))
}

// normalizePath lowercases the path and strips a trailing slash so /Logs/
// and /logs select the same handler. The root path stays "/".
func normalizePath(path string) string {
	normalized := strings.ToLower(path)
	if len(normalized) > 1 {
		normalized = strings.TrimRight(normalized, "/")
	}
	if normalized == "" {
		normalized = "/"
	}
	return normalized
}

// withCORS stamps permissive cross-origin headers on every response and
// answers preflight for any path, registered or not.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// recovered converts a handler panic into a 500 envelope without killing the
// serve loop or other in-flight requests.
func (s *Server) recovered(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Printf("handler %s failed: %v", r.URL.Path, rec)
				writeFailure(w, http.StatusInternalServerError, fmt.Sprintf("%v", rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) measured(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		s.metrics.recordRequest(r.Context(), normalizePath(r.URL.Path), recorder.status)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeValue(w http.ResponseWriter, status int, v wire.Value) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(wire.Encode(v)))
}

func writeSuccess(w http.ResponseWriter, obj *wire.Object) {
	writeValue(w, http.StatusOK, obj.Value())
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	body := wire.NewObject().
		Set("success", wire.Bool(false)).
		Set("message", wire.String(message))
	writeValue(w, status, body.Value())
}
