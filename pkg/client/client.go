// Package client is the Go client for the studiolink control endpoint. It
// mirrors the HTTP surface one call per endpoint and decodes the JSON
// envelopes into typed results.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	json "github.com/goccy/go-json"

	"github.com/studiolink/studiolink/errs"
)

const (
	// DefaultBaseURL targets the default bridge port on loopback.
	DefaultBaseURL = "http://127.0.0.1:6850"

	defaultTimeout      = 5 * time.Second
	maxWaitReadyBackoff = 2 * time.Second
)

// Client talks to one control server. The zero value is not usable; use New.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpc.Timeout = d }
}

// New builds a client for baseURL; an empty baseURL selects the default
// loopback endpoint.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Status is the host identity and run-state report.
type Status struct {
	Server             string `json:"server"`
	ServerVersion      string `json:"serverVersion"`
	Application        string `json:"application"`
	ApplicationVersion string `json:"applicationVersion"`
	Project            string `json:"project"`
	Playing            bool   `json:"playing"`
	Paused             bool   `json:"paused"`
	Compiling          bool   `json:"compiling"`
}

// LogEntry is one captured diagnostic record.
type LogEntry struct {
	Message    string `json:"message"`
	StackTrace string `json:"stackTrace"`
	Type       string `json:"type"`
	Timestamp  string `json:"timestamp"`
}

// CompileStatus reports the compile cycle and retained error diagnostics.
type CompileStatus struct {
	IsCompiling bool     `json:"isCompiling"`
	ErrorCount  int      `json:"errorCount"`
	Errors      []string `json:"errors"`
}

// Paths reports the host project locations.
type Paths struct {
	ProjectPath string `json:"projectPath"`
	DataPath    string `json:"dataPath"`
}

// Scene reports the active scene.
type Scene struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Dirty  bool   `json:"dirty"`
	Loaded bool   `json:"loaded"`
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Status fetches the host identity and run-state report.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var out struct {
		envelope
		Status
	}
	if err := c.get(ctx, "/status", nil, &out); err != nil {
		return Status{}, err
	}
	return out.Status, nil
}

// Refresh queues an asset rescan on the host control thread.
func (c *Client) Refresh(ctx context.Context) error {
	return c.get(ctx, "/refresh", nil, &envelope{})
}

// Logs fetches up to count recent diagnostics. A non-empty level restricts
// the result to that severity; count <= 0 uses the server default.
func (c *Client) Logs(ctx context.Context, count int, level string) ([]LogEntry, error) {
	query := url.Values{}
	if count > 0 {
		query.Set("count", strconv.Itoa(count))
	}
	if level != "" {
		query.Set("level", level)
	}
	var out struct {
		envelope
		Logs []LogEntry `json:"logs"`
	}
	if err := c.get(ctx, "/logs", query, &out); err != nil {
		return nil, err
	}
	return out.Logs, nil
}

// ClearLogs empties the server-side diagnostic buffer.
func (c *Client) ClearLogs(ctx context.Context) error {
	return c.get(ctx, "/logs/clear", nil, &envelope{})
}

// CompileStatus fetches the compile cycle state.
func (c *Client) CompileStatus(ctx context.Context) (CompileStatus, error) {
	var out struct {
		envelope
		CompileStatus
	}
	if err := c.get(ctx, "/compile/status", nil, &out); err != nil {
		return CompileStatus{}, err
	}
	return out.CompileStatus, nil
}

// Play queues entering play mode.
func (c *Client) Play(ctx context.Context) error {
	return c.get(ctx, "/play", nil, &envelope{})
}

// Stop queues exiting play mode.
func (c *Client) Stop(ctx context.Context) error {
	return c.get(ctx, "/stop", nil, &envelope{})
}

// Pause queues a pause toggle.
func (c *Client) Pause(ctx context.Context) error {
	return c.get(ctx, "/pause", nil, &envelope{})
}

// Ping queues highlighting the asset at path in the host.
func (c *Client) Ping(ctx context.Context, path string) error {
	if path == "" {
		return errs.New("client/ping", errs.CodeInvalid, errs.WithMessage("path required"))
	}
	query := url.Values{}
	query.Set("path", path)
	return c.get(ctx, "/ping", query, &envelope{})
}

// Selection fetches the asset paths currently selected in the host.
func (c *Client) Selection(ctx context.Context) ([]string, error) {
	var out struct {
		envelope
		Selection []string `json:"selection"`
	}
	if err := c.get(ctx, "/selection", nil, &out); err != nil {
		return nil, err
	}
	return out.Selection, nil
}

// ProjectPath fetches the host project locations.
func (c *Client) ProjectPath(ctx context.Context) (Paths, error) {
	var out struct {
		envelope
		Paths
	}
	if err := c.get(ctx, "/project/path", nil, &out); err != nil {
		return Paths{}, err
	}
	return out.Paths, nil
}

// CurrentScene fetches the active scene.
func (c *Client) CurrentScene(ctx context.Context) (Scene, error) {
	var out struct {
		envelope
		Scene
	}
	if err := c.get(ctx, "/scene/current", nil, &out); err != nil {
		return Scene{}, err
	}
	return out.Scene, nil
}

// Connected reports whether the endpoint answers /status.
func (c *Client) Connected(ctx context.Context) bool {
	_, err := c.Status(ctx)
	return err == nil
}

// WaitReady polls /status with exponential backoff until the endpoint
// answers or ctx expires. Useful right after launching the host.
func (c *Client) WaitReady(ctx context.Context) error {
	backoffCfg := backoff.NewExponentialBackOff()
	backoffCfg.InitialInterval = 50 * time.Millisecond
	backoffCfg.MaxInterval = maxWaitReadyBackoff

	for {
		if _, err := c.Status(ctx); err == nil {
			return nil
		}
		sleep := backoffCfg.NextBackOff()
		if sleep == backoff.Stop {
			sleep = maxWaitReadyBackoff
		}
		select {
		case <-ctx.Done():
			return errs.New("client/wait-ready", errs.CodeUnavailable,
				errs.WithMessage("endpoint did not become ready"),
				errs.WithCause(ctx.Err()))
		case <-time.After(sleep):
		}
	}
}

// get issues one GET and decodes the envelope into out. A reachable server
// that reports success:false becomes a CodeRemote error carrying the server
// message; transport failures are CodeUnavailable.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	op := "client" + path
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return errs.New(op, errs.CodeInvalid, errs.WithCause(err))
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return errs.New(op, errs.CodeUnavailable,
			errs.WithMessage("endpoint unreachable"), errs.WithCause(err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.New(op, errs.CodeUnavailable, errs.WithCause(err))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return errs.New(op, errs.CodeInternal,
			errs.WithMessage(fmt.Sprintf("malformed response (HTTP %d)", resp.StatusCode)),
			errs.WithCause(err))
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("request failed (HTTP %d)", resp.StatusCode)
		}
		return errs.New(op, errs.CodeRemote, errs.WithMessage(msg))
	}
	return json.Unmarshal(raw, out)
}
