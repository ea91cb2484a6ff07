package metrics

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthRoute(t *testing.T) {
	mux := NewMux(NewPrometheusRecorder(), "/metrics", func() map[string]any {
		return map[string]any{"worker": "aeos", "state": "idle"}
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, HealthRoute, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]any{"status": "ok", "worker": "aeos", "state": "idle"}, body)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, HealthRoute, nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStartServer(t *testing.T) {
	r := NewPrometheusRecorder()
	r.ObserveTick(TickIdle)

	ctx, cancel := context.WithCancel(context.Background())
	addr, err := StartServer(ctx, "127.0.0.1:0", NewMux(r, "/metrics", nil))
	require.NoError(t, err)

	resp, err := http.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, expfmt.TypeTextPlain, expfmt.ResponseFormat(resp.Header).FormatType())
	assert.Contains(t, string(body), "aeos_in_notion_poll_ticks_total")

	cancel()
	assert.Eventually(t, func() bool {
		_, err := http.Get("http://" + addr + "/metrics")
		return err != nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStartServerBadAddress(t *testing.T) {
	_, err := StartServer(context.Background(), "256.0.0.1:bad", http.NewServeMux())
	assert.Error(t, err)
}
