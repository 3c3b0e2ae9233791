package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mescon/Composelab/internal/config"
	"github.com/mescon/Composelab/internal/eventbus"
	"github.com/mescon/Composelab/internal/metrics"
	"github.com/mescon/Composelab/internal/services"
	"github.com/mescon/Composelab/internal/testutil"
	"github.com/mescon/Composelab/internal/widgets"
)

// =============================================================================
// Test helpers
// =============================================================================

type testServer struct {
	server    *RESTServer
	board     *widgets.Board
	clock     *testutil.MockClock
	bus       *eventbus.EventBus
	scheduler *services.SchedulerService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithConfig(t, config.NewTestConfig())
}

func newTestServerWithConfig(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.SetForTesting(cfg)

	eb := eventbus.NewEventBus()
	t.Cleanup(eb.Shutdown)

	clk := testutil.NewMockClock()
	board := widgets.NewBoard(widgets.BoardConfig{
		StopwatchSeed: cfg.StopwatchSeed,
		TickInterval:  cfg.TickInterval,
		Clock:         clk,
		Publisher:     eb,
	})
	t.Cleanup(board.Close)

	sched := services.NewSchedulerService(board, eb)
	m := metrics.NewMetricsService(eb, board)
	m.Start()

	s := NewRESTServer(ServerDeps{
		Board:     board,
		EventBus:  eb,
		Scheduler: sched,
		Metrics:   m,
		Clock:     clk,
	})
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })

	return &testServer{server: s, board: board, clock: clk, bus: eb, scheduler: sched}
}

func (ts *testServer) do(method, path string, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	ts.server.Router().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

// =============================================================================
// Board
// =============================================================================

func TestGetBoard_Initial(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/api/board", "")
	require.Equal(t, http.StatusOK, w.Code)

	view := decode[widgets.BoardView](t, w)
	assert.Equal(t, "Count: 0", view.Counter.Label)
	assert.Equal(t, "15:22", view.Stopwatch.Display)
	assert.Equal(t, widgets.Stopped, view.Stopwatch.State)
	assert.True(t, view.Stopwatch.CanStart)
	assert.False(t, view.Stopwatch.CanStop)
	assert.True(t, view.Stopwatch.CanReset)
	assert.Equal(t, widgets.Red, view.Color.Color)
}

func TestResetBoard(t *testing.T) {
	ts := newTestServer(t)
	ts.board.Counter.Increment()
	ts.board.Color.Toggle()
	ts.board.Stopwatch.Start()

	w := ts.do(http.MethodPost, "/api/board/reset", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[boardActionResponse](t, w)
	assert.True(t, resp.Changed)
	assert.Equal(t, 0, resp.Counter.Count)
	assert.Equal(t, "00:00", resp.Stopwatch.Display)
	assert.False(t, resp.Stopwatch.Running)
	assert.Equal(t, widgets.Blue, resp.Color.Color, "color is not reset")
}

// =============================================================================
// Counter
// =============================================================================

func TestCounterHandlers(t *testing.T) {
	ts := newTestServer(t)

	for i := 1; i <= 3; i++ {
		w := ts.do(http.MethodPost, "/api/counter/increment", "")
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[counterActionResponse](t, w)
		assert.True(t, resp.Changed)
		assert.Equal(t, i, resp.Count)
	}

	w := ts.do(http.MethodGet, "/api/counter", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Count: 3", decode[widgets.CounterSnapshot](t, w).Label)

	w = ts.do(http.MethodPost, "/api/counter/reset", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[counterActionResponse](t, w)
	assert.Equal(t, 0, resp.Count)
	assert.Equal(t, "Count: 0", resp.Label)
}

func TestCounterHandlers_FlatResponse(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/counter/increment", "")
	body := decode[map[string]interface{}](t, w)
	assert.Equal(t, map[string]interface{}{
		"changed": true,
		"count":   float64(1),
		"label":   "Count: 1",
	}, body)
}

// =============================================================================
// Stopwatch
// =============================================================================

func TestStopwatchHandlers_Lifecycle(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/stopwatch/start", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[stopwatchActionResponse](t, w)
	assert.True(t, resp.Changed)
	assert.True(t, resp.Running)
	assert.False(t, resp.CanStart)
	assert.True(t, resp.CanStop)

	ts.clock.Advance(2 * time.Second)

	w = ts.do(http.MethodGet, "/api/stopwatch", "")
	snap := decode[widgets.StopwatchSnapshot](t, w)
	assert.Equal(t, "15:24", snap.Display)
	assert.Equal(t, 924, snap.ElapsedSeconds)

	w = ts.do(http.MethodPost, "/api/stopwatch/stop", "")
	resp = decode[stopwatchActionResponse](t, w)
	assert.True(t, resp.Changed)
	assert.Equal(t, widgets.Stopped, resp.State)
	assert.Equal(t, "15:24", resp.Display)

	ts.clock.Advance(5 * time.Second)
	assert.Equal(t, "15:24", ts.board.Stopwatch.Snapshot().Display, "stopped stopwatch does not tick")

	w = ts.do(http.MethodPost, "/api/stopwatch/reset", "")
	resp = decode[stopwatchActionResponse](t, w)
	assert.True(t, resp.Changed)
	assert.Equal(t, "00:00", resp.Display)
	assert.True(t, resp.CanStart)
}

func TestStopwatchHandlers_NoOps(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/stopwatch/stop", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[stopwatchActionResponse](t, w).Changed, "stop while stopped")

	ts.do(http.MethodPost, "/api/stopwatch/start", "")
	w = ts.do(http.MethodPost, "/api/stopwatch/start", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[stopwatchActionResponse](t, w).Changed, "start while running")

	ts.clock.Advance(time.Second)
	assert.Equal(t, 923, ts.board.Stopwatch.Elapsed(), "a second start must not add a second ticker")
}

func TestStopwatchHandlers_ResetWhileRunning(t *testing.T) {
	ts := newTestServer(t)

	ts.do(http.MethodPost, "/api/stopwatch/start", "")
	ts.clock.Advance(time.Second)

	w := ts.do(http.MethodPost, "/api/stopwatch/reset", "")
	resp := decode[stopwatchActionResponse](t, w)
	assert.Equal(t, 0, resp.ElapsedSeconds)
	assert.False(t, resp.Running)

	ts.clock.Advance(3 * time.Second)
	assert.Equal(t, 0, ts.board.Stopwatch.Elapsed())
}

// =============================================================================
// Color
// =============================================================================

func TestColorHandlers(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/api/color", "")
	assert.Equal(t, widgets.Red, decode[widgets.ColorSnapshot](t, w).Color)

	w = ts.do(http.MethodPost, "/api/color/toggle", "")
	resp := decode[colorActionResponse](t, w)
	assert.True(t, resp.Changed)
	assert.Equal(t, widgets.Blue, resp.Color)

	w = ts.do(http.MethodPost, "/api/color/toggle", "")
	assert.Equal(t, widgets.Red, decode[colorActionResponse](t, w).Color)
}

// =============================================================================
// Failure paths
// =============================================================================

type stubBoard struct {
	dispatchErr error
	panicMsg    string
}

func (b *stubBoard) View() widgets.BoardView { return widgets.BoardView{} }
func (b *stubBoard) ResetAll()               {}
func (b *stubBoard) Dispatch(widgets.Action) (bool, error) {
	if b.panicMsg != "" {
		panic(b.panicMsg)
	}
	return false, b.dispatchErr
}

func newStubServer(t *testing.T, board Board) *RESTServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.SetForTesting(config.NewTestConfig())
	s := NewRESTServer(ServerDeps{Board: board})
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func TestHandleAction_DispatchError(t *testing.T) {
	s := newStubServer(t, &stubBoard{dispatchErr: widgets.ErrUnknownAction})

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/counter/increment", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}

func TestHandleAction_PanicRecovered(t *testing.T) {
	s := newStubServer(t, &stubBoard{panicMsg: "boom"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/color/toggle", nil)
	req.Header.Set("X-Request-ID", "req-123")
	s.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error","request_id":"req-123"}`, w.Body.String())
}
