// Package metrics exports prometheus metrics for idprom scans.
package metrics

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	DefaultEndpoint   = "0.0.0.0:9090"
	ReadHeaderTimeout = 2 * time.Second
	ShutdownTimeout   = 5 * time.Second
)

// Port scan results.
const (
	ResultSupported   = "supported"
	ResultUnsupported = "unsupported"
	ResultError       = "error"
)

var (
	// PortScansTotal counts port scans by source and result.
	PortScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sffinfo_port_scans_total",
			Help: "Total number of port scans",
		},
		[]string{"source", "result"},
	)

	// ModulesDecodedTotal counts decoded modules by classification.
	ModulesDecodedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sffinfo_modules_decoded_total",
			Help: "Total number of decoded modules by sfp type, module type and media type",
		},
		[]string{"sfp_type", "module_type", "media_type"},
	)

	// ChecksumMismatchTotal counts idproms failing a checksum.
	ChecksumMismatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sffinfo_checksum_mismatch_total",
			Help: "Total number of idprom checksum mismatches by region",
		},
		[]string{"region"},
	)

	// TaskRunTimeSummary measures scan task run time by final state.
	TaskRunTimeSummary = promauto.NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "sffinfo_task_runtime_seconds",
			Help: "Scan task run time in seconds",
		},
		[]string{"task", "state"},
	)
)

// ListenAndServe serves /metrics on endpoint in the background. The returned
// server is shut down when ctx is done.
func ListenAndServe(ctx context.Context, endpoint string) *http.Server {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              endpoint,
		Handler:           mux,
		ReadHeaderTimeout: ReadHeaderTimeout,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", "error", err)
		}
	}()

	slog.Info("metrics endpoint enabled", "endpoint", endpoint+"/metrics")

	return server
}
