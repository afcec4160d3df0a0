// Package mcp exposes the studiolink control surface as a Model Context
// Protocol server speaking JSON-RPC 2.0 over line-delimited stdio. Each tool
// maps to one control endpoint and proxies through the HTTP client.
package mcp

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"

	json "github.com/goccy/go-json"

	"github.com/studiolink/studiolink/errs"
	"github.com/studiolink/studiolink/pkg/client"
)

const (
	protocolVersion = "2024-11-05"

	serverName    = "studiolink-mcp"
	serverVersion = "1.0.0"

	codeMethodNotFound = -32601
	codeInternalError  = -32603

	// Line length guard for the stdin scanner.
	maxMessageBytes = 1 << 20
)

// Server bridges an MCP client on stdio to one control endpoint.
type Server struct {
	bridge *client.Client
	logger *log.Logger
}

// NewServer wires the MCP loop to bridge. A nil logger discards diagnostics.
func NewServer(bridge *client.Client, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Server{bridge: bridge, logger: logger}
}

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type response struct {
	JSONRPC string
	ID      json.RawMessage
	Result  any
	Error   *rpcError
}

// encode emits exactly one of result or error; an empty result object must
// still appear on the wire.
func (r response) encode() ([]byte, error) {
	if r.Error != nil {
		return json.Marshal(struct {
			JSONRPC string          `json:"jsonrpc"`
			ID      json.RawMessage `json:"id,omitempty"`
			Error   *rpcError       `json:"error"`
		}{r.JSONRPC, r.ID, r.Error})
	}
	return json.Marshal(struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      json.RawMessage `json:"id,omitempty"`
		Result  any             `json:"result"`
	}{r.JSONRPC, r.ID, r.Result})
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type textContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type toolResult struct {
	Content []textContent `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// Run reads newline-delimited JSON-RPC requests from in and writes responses
// to out until EOF or ctx cancellation. Malformed lines are skipped.
func (s *Server) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Printf("%s v%s started", serverName, serverVersion)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 4096), maxMessageBytes)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return errs.New("mcp/run", errs.CodeShutdown, errs.WithCause(err))
		}

		var req request
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			s.logger.Printf("discarding malformed message: %v", err)
			continue
		}

		resp, ok := s.handle(ctx, req)
		if !ok {
			continue
		}
		line, err := resp.encode()
		if err != nil {
			return errs.New("mcp/run", errs.CodeInternal, errs.WithCause(err))
		}
		if _, err := out.Write(append(line, '\n')); err != nil {
			return errs.New("mcp/run", errs.CodeUnavailable, errs.WithCause(err))
		}
	}
	if err := scanner.Err(); err != nil {
		return errs.New("mcp/run", errs.CodeTransient, errs.WithCause(err))
	}
	return nil
}

// handle dispatches one request. The second return is false for
// notifications, which produce no response.
func (s *Server) handle(ctx context.Context, req request) (resp response, ok bool) {
	resp = response{JSONRPC: "2.0", ID: req.ID}
	ok = true
	defer func() {
		if r := recover(); r != nil {
			s.logger.Printf("handler %s panicked: %v", req.Method, r)
			resp.Result = nil
			resp.Error = &rpcError{Code: codeInternalError, Message: fmt.Sprintf("%v", r)}
		}
	}()

	switch req.Method {
	case "initialize":
		resp.Result = map[string]any{
			"protocolVersion": protocolVersion,
			"capabilities":    map[string]any{"tools": map[string]any{}},
			"serverInfo": map[string]any{
				"name":    serverName,
				"version": serverVersion,
			},
		}
	case "notifications/initialized":
		return response{}, false
	case "tools/list":
		resp.Result = map[string]any{"tools": toolCatalog}
	case "tools/call":
		var params struct {
			Name      string          `json:"name"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if err := json.Unmarshal(req.Params, &params); err != nil {
			resp.Error = &rpcError{Code: codeInternalError, Message: err.Error()}
			break
		}
		resp.Result = s.callTool(ctx, params.Name, params.Arguments)
	case "ping":
		resp.Result = map[string]any{}
	default:
		resp.Error = &rpcError{
			Code:    codeMethodNotFound,
			Message: "Method not found: " + req.Method,
		}
	}
	return resp, true
}

func (s *Server) callTool(ctx context.Context, name string, arguments json.RawMessage) toolResult {
	result, err := s.invoke(ctx, name, arguments)
	if err != nil {
		if errs.CodeOf(err) == errs.CodeUnavailable {
			return errorResult(fmt.Sprintf(
				"Control endpoint unreachable: %v\n\nMake sure the host application is running with the control server started.", err))
		}
		return errorResult(fmt.Sprintf("Tool failed: %v", err))
	}

	text, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("Tool failed: %v", err))
	}
	return toolResult{Content: []textContent{{Type: "text", Text: string(text)}}}
}

func (s *Server) invoke(ctx context.Context, name string, arguments json.RawMessage) (any, error) {
	switch name {
	case "bridge_status":
		return s.bridge.Status(ctx)
	case "bridge_refresh":
		return okMessage("refresh queued"), s.bridge.Refresh(ctx)
	case "bridge_logs":
		args := struct {
			Count int    `json:"count"`
			Level string `json:"level"`
		}{Count: 50}
		if len(arguments) > 0 {
			if err := json.Unmarshal(arguments, &args); err != nil {
				return nil, errs.New("mcp/logs", errs.CodeInvalid, errs.WithCause(err))
			}
		}
		return s.bridge.Logs(ctx, args.Count, args.Level)
	case "bridge_clear_logs":
		return okMessage("logs cleared"), s.bridge.ClearLogs(ctx)
	case "bridge_compile_status":
		return s.bridge.CompileStatus(ctx)
	case "bridge_play":
		return okMessage("play queued"), s.bridge.Play(ctx)
	case "bridge_stop":
		return okMessage("stop queued"), s.bridge.Stop(ctx)
	case "bridge_pause":
		return okMessage("pause queued"), s.bridge.Pause(ctx)
	case "bridge_ping":
		var args struct {
			Path string `json:"path"`
		}
		if len(arguments) > 0 {
			if err := json.Unmarshal(arguments, &args); err != nil {
				return nil, errs.New("mcp/ping", errs.CodeInvalid, errs.WithCause(err))
			}
		}
		return okMessage("ping queued"), s.bridge.Ping(ctx, args.Path)
	case "bridge_selection":
		return s.bridge.Selection(ctx)
	case "bridge_project_path":
		return s.bridge.ProjectPath(ctx)
	case "bridge_current_scene":
		return s.bridge.CurrentScene(ctx)
	default:
		return nil, errs.New("mcp/call", errs.CodeNotFound,
			errs.WithMessage("unknown tool: "+name))
	}
}

func okMessage(message string) map[string]any {
	return map[string]any{"success": true, "message": message}
}

func errorResult(text string) toolResult {
	return toolResult{
		Content: []textContent{{Type: "text", Text: text}},
		IsError: true,
	}
}
