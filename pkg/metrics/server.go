package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"aeosinnotion/pkg/logx"
)

// HealthRoute reports the worker status as JSON.
const HealthRoute = "/healthz"

const shutdownTimeout = 5 * time.Second

// StatusFunc returns the fields reported on the health route.
type StatusFunc func() map[string]any

// NewMux routes metricsRoute to the recorder and HealthRoute to status.
func NewMux(rec *PrometheusRecorder, metricsRoute string, status StatusFunc) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(metricsRoute, rec.Handler())
	mux.HandleFunc(HealthRoute, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		body := map[string]any{"status": "ok"}
		if status != nil {
			for k, v := range status() {
				body[k] = v
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	})
	return mux
}

// StartServer listens on addr and serves handler until ctx is done.
// It returns once the listener is bound, with the bound address.
func StartServer(ctx context.Context, addr string, handler http.Handler) (string, error) {
	logger := logx.NewLogger("metrics")

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", logx.Wrap(err, "failed to listen on "+addr)
	}

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("📈 Serving metrics on http://%s", ln.Addr())

	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		//nolint:contextcheck // Parent context is cancelled; we need a fresh context for shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown failed: %v", err)
		}
	}()

	return ln.Addr().String(), nil
}
