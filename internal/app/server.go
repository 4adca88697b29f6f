package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// healthHandler answers liveness probes.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// handler serves /health and /metrics.
func (a *App) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(a.promRegistry, promhttp.HandlerOpts{}))
	return mux
}

// startMetricsServer listens on port and serves in the background. The
// listener is bound before returning so that a busy port is reported.
func (a *App) startMetricsServer(port int) error {
	a.logger.Debug("Configuring metrics server.")
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("metrics server: %w", err)
	}
	a.httpServer = &http.Server{Handler: a.handler(), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		a.logger.Info("🩺 Metrics server starting", "address", fmt.Sprintf("http://%s/metrics", ln.Addr()))
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Metrics server failed unexpectedly", "error", err)
		}
	}()
	return nil
}

func (a *App) closeMetricsServer(ctx context.Context) error {
	if a.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	a.logger.Info("🩺 Shutting down metrics server...")
	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("Metrics server shutdown failed", "error", err)
		return err
	}
	a.httpServer = nil
	return nil
}
