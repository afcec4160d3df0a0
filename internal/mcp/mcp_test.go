package mcp

import (
	"context"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/studiolink/studiolink/internal/host"
	"github.com/studiolink/studiolink/internal/logbuf"
	"github.com/studiolink/studiolink/internal/server"
	"github.com/studiolink/studiolink/pkg/client"
)

func newMCP(t *testing.T) (*Server, *host.SimHost) {
	t.Helper()
	sim := host.NewSimHost(nil)
	sim.Start()
	t.Cleanup(sim.Close)

	srv, err := server.New(server.Options{Host: sim, Dispatcher: sim.Queue()})
	require.NoError(t, err)
	require.NoError(t, srv.Start(0))
	t.Cleanup(srv.Stop)

	return NewServer(client.New("http://"+srv.Addr()), nil), sim
}

// exchange feeds newline-delimited requests through Run and returns the
// decoded responses in order.
func exchange(t *testing.T, s *Server, requests ...string) []map[string]any {
	t.Helper()
	in := strings.NewReader(strings.Join(requests, "\n") + "\n")
	var out strings.Builder
	require.NoError(t, s.Run(context.Background(), in, &out))

	var responses []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if line == "" {
			continue
		}
		var decoded map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &decoded), "line: %s", line)
		responses = append(responses, decoded)
	}
	return responses
}

func toolText(t *testing.T, resp map[string]any) (string, bool) {
	t.Helper()
	result := resp["result"].(map[string]any)
	content := result["content"].([]any)
	require.NotEmpty(t, content)
	text := content[0].(map[string]any)["text"].(string)
	isError, _ := result["isError"].(bool)
	return text, isError
}

func TestInitializeHandshake(t *testing.T) {
	s, _ := newMCP(t)

	responses := exchange(t, s,
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"ping"}`,
	)
	// The notification produces no response.
	require.Len(t, responses, 2)

	result := responses[0]["result"].(map[string]any)
	require.Equal(t, "2024-11-05", result["protocolVersion"])
	info := result["serverInfo"].(map[string]any)
	require.Equal(t, "studiolink-mcp", info["name"])

	require.EqualValues(t, 2, responses[1]["id"])
	require.Equal(t, map[string]any{}, responses[1]["result"])
}

func TestToolsList(t *testing.T) {
	s, _ := newMCP(t)

	responses := exchange(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	require.Len(t, responses, 1)

	tools := responses[0]["result"].(map[string]any)["tools"].([]any)
	require.Len(t, tools, 12)

	names := make(map[string]bool, len(tools))
	for _, raw := range tools {
		entry := raw.(map[string]any)
		names[entry["name"].(string)] = true
		require.NotEmpty(t, entry["description"])
		require.Contains(t, entry, "inputSchema")
	}
	require.True(t, names["bridge_status"])
	require.True(t, names["bridge_ping"])
	require.True(t, names["bridge_current_scene"])
}

func TestCallStatusTool(t *testing.T) {
	s, _ := newMCP(t)

	responses := exchange(t, s,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"bridge_status","arguments":{}}}`)
	text, isError := toolText(t, responses[0])
	require.False(t, isError)

	var status map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &status))
	require.Equal(t, "SampleProject", status["project"])
	require.Equal(t, "studiolink-sim", status["application"])
}

func TestCallLogsToolWithFilter(t *testing.T) {
	s, sim := newMCP(t)
	sim.EmitLog(logbuf.Entry{Message: "fine", Severity: logbuf.SeverityLog})
	sim.EmitLog(logbuf.Entry{Message: "boom", Severity: logbuf.SeverityError})

	responses := exchange(t, s,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"bridge_logs","arguments":{"count":10,"level":"error"}}}`)
	text, isError := toolText(t, responses[0])
	require.False(t, isError)

	var logs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &logs))
	require.Len(t, logs, 1)
	require.Equal(t, "boom", logs[0]["message"])
}

func TestCallPlayTool(t *testing.T) {
	s, sim := newMCP(t)

	responses := exchange(t, s,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"bridge_play","arguments":{}}}`)
	_, isError := toolText(t, responses[0])
	require.False(t, isError)
	require.Eventually(t, func() bool { return sim.PlayState().Playing },
		2*time.Second, 10*time.Millisecond)
}

func TestCallPingToolMissingPath(t *testing.T) {
	s, _ := newMCP(t)

	responses := exchange(t, s,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"bridge_ping","arguments":{}}}`)
	text, isError := toolText(t, responses[0])
	require.True(t, isError)
	require.Contains(t, text, "Tool failed")
}

func TestUnknownToolAndMethod(t *testing.T) {
	s, _ := newMCP(t)

	responses := exchange(t, s,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"bridge_teleport","arguments":{}}}`,
		`{"jsonrpc":"2.0","id":2,"method":"resources/list"}`,
	)

	text, isError := toolText(t, responses[0])
	require.True(t, isError)
	require.Contains(t, text, "bridge_teleport")

	rpcErr := responses[1]["error"].(map[string]any)
	require.EqualValues(t, -32601, rpcErr["code"])
	require.Contains(t, rpcErr["message"], "resources/list")
}

func TestUnreachableBridgeIsToolError(t *testing.T) {
	s := NewServer(client.New("http://127.0.0.1:1", client.WithTimeout(200*time.Millisecond)), nil)

	responses := exchange(t, s,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"bridge_status","arguments":{}}}`)
	text, isError := toolText(t, responses[0])
	require.True(t, isError)
	require.Contains(t, text, "unreachable")
}

func TestMalformedLinesAreSkipped(t *testing.T) {
	s, _ := newMCP(t)

	responses := exchange(t, s,
		`this is not json`,
		`{"jsonrpc":"2.0","id":1,"method":"ping"}`,
	)
	require.Len(t, responses, 1)
	require.EqualValues(t, 1, responses[0]["id"])
}
