package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/studiolink/studiolink/errs"
	"github.com/studiolink/studiolink/internal/host"
	"github.com/studiolink/studiolink/internal/logbuf"
	"github.com/studiolink/studiolink/internal/server"
)

func newBridge(t *testing.T) (*Client, *host.SimHost) {
	t.Helper()
	sim := host.NewSimHost(nil)
	sim.Start()
	t.Cleanup(sim.Close)

	srv, err := server.New(server.Options{Host: sim, Dispatcher: sim.Queue()})
	require.NoError(t, err)
	require.NoError(t, srv.Start(0))
	t.Cleanup(srv.Stop)

	return New("http://" + srv.Addr()), sim
}

func TestStatusRoundTrip(t *testing.T) {
	c, _ := newBridge(t)

	status, err := c.Status(context.Background())
	require.NoError(t, err)
	require.Equal(t, "studiolink", status.Server)
	require.Equal(t, "studiolink-sim", status.Application)
	require.Equal(t, "SampleProject", status.Project)
	require.False(t, status.Playing)
}

func TestLogsRoundTrip(t *testing.T) {
	c, sim := newBridge(t)
	sim.EmitLog(logbuf.Entry{Message: "fine", Severity: logbuf.SeverityLog})
	sim.EmitLog(logbuf.Entry{Message: "boom", Severity: logbuf.SeverityError})

	logs, err := c.Logs(context.Background(), 10, "error")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, "boom", logs[0].Message)
	require.Equal(t, "Error", logs[0].Type)

	require.NoError(t, c.ClearLogs(context.Background()))
	logs, err = c.Logs(context.Background(), 0, "")
	require.NoError(t, err)
	require.Empty(t, logs)
}

func TestPlayControlRoundTrip(t *testing.T) {
	c, sim := newBridge(t)
	ctx := context.Background()

	require.NoError(t, c.Play(ctx))
	require.Eventually(t, func() bool { return sim.PlayState().Playing },
		2*time.Second, 10*time.Millisecond)

	require.NoError(t, c.Pause(ctx))
	require.Eventually(t, func() bool { return sim.PlayState().Paused },
		2*time.Second, 10*time.Millisecond)

	require.NoError(t, c.Stop(ctx))
	require.Eventually(t, func() bool { return !sim.PlayState().Playing },
		2*time.Second, 10*time.Millisecond)
}

func TestPingRoundTrip(t *testing.T) {
	c, sim := newBridge(t)
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx, "Assets/Player.prefab"))
	require.Eventually(t, func() bool {
		pinged := sim.Pinged()
		return len(pinged) == 1 && pinged[0] == "Assets/Player.prefab"
	}, 2*time.Second, 10*time.Millisecond)

	err := c.Ping(ctx, "")
	require.Error(t, err)
	require.Equal(t, errs.CodeInvalid, errs.CodeOf(err))
}

func TestProjectQueriesRoundTrip(t *testing.T) {
	c, sim := newBridge(t)
	ctx := context.Background()
	sim.SetSelection("Assets/A.prefab")

	selection, err := c.Selection(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Assets/A.prefab"}, selection)

	paths, err := c.ProjectPath(ctx)
	require.NoError(t, err)
	require.Equal(t, "/projects/SampleProject", paths.ProjectPath)

	scene, err := c.CurrentScene(ctx)
	require.NoError(t, err)
	require.Equal(t, "Main", scene.Name)
	require.True(t, scene.Loaded)

	compile, err := c.CompileStatus(ctx)
	require.NoError(t, err)
	require.False(t, compile.IsCompiling)
	require.Zero(t, compile.ErrorCount)

	require.NoError(t, c.Refresh(ctx))
	require.Eventually(t, func() bool { return sim.Refreshes() == 1 },
		2*time.Second, 10*time.Millisecond)
}

func TestConnectedAndWaitReady(t *testing.T) {
	c, _ := newBridge(t)
	require.True(t, c.Connected(context.Background()))
	require.NoError(t, c.WaitReady(context.Background()))
}

func TestUnreachableEndpoint(t *testing.T) {
	c := New("http://127.0.0.1:1", WithTimeout(200*time.Millisecond))
	ctx := context.Background()

	require.False(t, c.Connected(ctx))

	_, err := c.Status(ctx)
	require.Error(t, err)
	require.Equal(t, errs.CodeUnavailable, errs.CodeOf(err))

	waitCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	err = c.WaitReady(waitCtx)
	require.Error(t, err)
	require.Equal(t, errs.CodeUnavailable, errs.CodeOf(err))
}
