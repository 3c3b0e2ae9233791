package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSchedule_Disabled(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/api/schedule", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"expression":"","enabled":false,"next_run":null}`, w.Body.String())
}

func TestUpdateSchedule(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPut, "/api/schedule", `{"expression":"@hourly"}`)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[ScheduleResponse](t, w)
	assert.Equal(t, "@hourly", resp.Expression)
	assert.True(t, resp.Enabled)
	assert.Equal(t, "@hourly", ts.scheduler.Schedule())

	w = ts.do(http.MethodPut, "/api/schedule", `{"expression":""}`)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[ScheduleResponse](t, w)
	assert.False(t, resp.Enabled)
	assert.Nil(t, resp.NextRun)
}

func TestUpdateSchedule_NextRunOnceStarted(t *testing.T) {
	ts := newTestServer(t)
	ts.scheduler.Start()
	defer ts.scheduler.Stop()

	w := ts.do(http.MethodPut, "/api/schedule", `{"expression":"@every 1h"}`)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[ScheduleResponse](t, w)
	require.NotNil(t, resp.NextRun)
	assert.WithinDuration(t, time.Now().Add(time.Hour), *resp.NextRun, time.Minute)
}

func TestUpdateSchedule_Invalid(t *testing.T) {
	ts := newTestServer(t)
	require.NoError(t, ts.scheduler.SetSchedule("@daily"))

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"bad cron", `{"expression":"whenever"}`, "invalid cron expression"},
		{"missing field", `{}`, "expression is required"},
		{"malformed json", `{"expression":`, ErrMsgInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(http.MethodPut, "/api/schedule", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decode[map[string]string](t, w)["error"], tt.wantErr)
		})
	}

	assert.Equal(t, "@daily", ts.scheduler.Schedule(), "rejected updates keep the previous schedule")
}

func TestSchedule_NoScheduler(t *testing.T) {
	s := newStubServer(t, &stubBoard{})

	for _, method := range []string{http.MethodGet, http.MethodPut} {
		w := doRequest(s, method, "/api/schedule", `{"expression":"@daily"}`)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, method)
		assert.JSONEq(t, `{"error":"Scheduler not available"}`, w.Body.String())
	}
}
