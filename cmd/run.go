package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/equinix-labs/otel-init-go/otelinit"
	"github.com/metal-toolbox/sffinfo/internal/configuration"
	"github.com/metal-toolbox/sffinfo/internal/handlers"
	"github.com/metal-toolbox/sffinfo/internal/inventory"
	"github.com/metal-toolbox/sffinfo/internal/log"
	"github.com/metal-toolbox/sffinfo/internal/metrics"
	"github.com/metal-toolbox/sffinfo/internal/model"
	"github.com/metal-toolbox/sffinfo/internal/profiling"
	"github.com/metal-toolbox/sffinfo/internal/report"
	"github.com/metal-toolbox/sffinfo/internal/store"
	"github.com/metal-toolbox/sffinfo/internal/version"
	"github.com/metal-toolbox/sffinfo/pkg/sff"
	"github.com/spf13/cobra"
)

var (
	scanPorts       []string
	scanNoInventory bool
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Read and decode the idprom of every configured port",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runScan(cmd.Context(), args)
	},
}

func init() {
	scanCmd.Flags().StringSliceVar(&scanPorts, "port", nil, "ports to scan, overrides the configured ports")
	scanCmd.Flags().BoolVar(&scanNoInventory, "no-inventory", false, "do not record results in the inventory")

	rootCmd.AddCommand(scanCmd)
}

func runScan(ctx context.Context, args *model.Args) error {
	config, err := configuration.Load(args)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return err
	}

	slog.Info("Configuration loaded", config.AsLogFields()...)

	log.SetLevel(config.LogLevel)

	logger := log.NewLogrusLogger(config.LogLevel, config.LogFile)
	sff.SetReporter(logger)

	format, err := report.ParseFormat(outputFormat)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// serve metrics endpoint
	metrics.ListenAndServe(ctx, config.Metrics.Endpoint)
	version.ExportBuildInfoMetric()

	if config.EnableProfiling {
		profiling.Enable(config.ProfilingEndpoint)
	}

	ctx, otelShutdown := otelinit.InitOpenTelemetry(ctx, model.AppName)
	defer otelShutdown(ctx)

	repository, err := store.NewRepository(ctx, config)
	if err != nil {
		slog.Error("Failed to create repository", "error", err)
		return err
	}

	termChan := make(chan os.Signal, 1)
	signal.Notify(termChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(termChan)

	// Cancel the context when we receive a termination signal.
	go func() {
		select {
		case s := <-termChan:
			slog.Info("Received signal for termination, exiting...", "signal", s.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	opts := []handlers.Option{
		handlers.WithConcurrency(config.Concurrency),
		handlers.WithVerbose(config.Verbose),
		handlers.WithLogger(logger),
	}

	if !scanNoInventory {
		db, err := inventory.Open(config.Inventory.Path)
		if err != nil {
			slog.Error("Failed to open inventory", "error", err, "path", config.Inventory.Path)
			return err
		}
		defer db.Close()

		slog.Info("Recording scans in inventory", "path", db.Path())

		opts = append(opts, handlers.WithRecorder(db))
	}

	ports := config.Ports
	if len(scanPorts) > 0 {
		ports = scanPorts
	}

	slog.With(version.Current().AsLogFields()...).Info("sffinfo scan running", "ports", len(ports))

	results, err := handlers.NewHandlerFactory(repository, opts...).Scan(ctx, ports)
	if err != nil {
		slog.Error("Scan failed", "error", err)
		return err
	}

	return renderScan(os.Stdout, format, results)
}

// renderScan reports every decoded and every failed port, then returns an
// error when any port failed. Empty ports are left out.
func renderScan(w io.Writer, format report.Format, results []*handlers.Result) error {
	modules := make([]*report.Module, 0, len(results))

	for _, r := range results {
		switch {
		case r.Err != nil:
			modules = append(modules, report.Failed(r.Port, r.Err))
		case r.Transceiver != nil:
			modules = append(modules, report.FromTransceiver(r.Transceiver))
		}
	}

	if err := report.Render(w, format, modules); err != nil {
		return err
	}

	return handlers.Failures(results)
}
