package handlers

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/metal-toolbox/sffinfo/internal/metrics"
	"github.com/metal-toolbox/sffinfo/internal/model"
	"github.com/metal-toolbox/sffinfo/internal/tasks"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of scanning one port. Transceiver is nil for an empty
// port or a failed scan.
type Result struct {
	Port        string
	Transceiver *model.Transceiver
	Status      *tasks.TaskStatus
	Err         error
}

// HandlerFactory has the data and business logic for the application
type HandlerFactory struct {
	repository  tasks.Source
	recorder    tasks.Recorder
	publisher   tasks.Publisher
	concurrency int
	verbose     bool
}

// Option configures a HandlerFactory.
type Option func(*HandlerFactory)

// WithRecorder stores every decoded module with recorder.
func WithRecorder(recorder tasks.Recorder) Option {
	return func(h *HandlerFactory) {
		h.recorder = recorder
	}
}

// WithConcurrency sets the number of ports scanned at once.
func WithConcurrency(n int) Option {
	return func(h *HandlerFactory) {
		if n > 0 {
			h.concurrency = n
		}
	}
}

// WithVerbose reports the reasons a module is not supported.
func WithVerbose(verbose bool) Option {
	return func(h *HandlerFactory) {
		h.verbose = verbose
	}
}

// WithLogger publishes task status updates to logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(h *HandlerFactory) {
		h.publisher = tasks.NewLogPublisher(logger.WithField("component", "scan"))
	}
}

// NewHandlerFactory returns a new instance of the Handler
func NewHandlerFactory(repository tasks.Source, opts ...Option) *HandlerFactory {
	h := &HandlerFactory{
		repository:  repository,
		concurrency: 1,
	}

	for _, opt := range opts {
		opt(h)
	}

	if h.publisher == nil {
		h.publisher = tasks.NewLogPublisher(logrus.NewEntry(logrus.StandardLogger()))
	}

	return h
}

// Scan reads and decodes every port. A failing port does not stop the others;
// its error is kept in its Result. Results are sorted by port.
func (h *HandlerFactory) Scan(ctx context.Context, ports []string) ([]*Result, error) {
	if len(ports) == 0 {
		return nil, model.ErrNoPorts
	}

	var (
		mu      sync.Mutex
		results = make([]*Result, 0, len(ports))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.concurrency)

	for _, port := range ports {
		g.Go(func() error {
			result := h.scanPort(gctx, port)

			mu.Lock()
			results = append(results, result)
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Port < results[j].Port
	})

	if err := ctx.Err(); err != nil {
		return results, errors.Wrap(err, "scan interrupted")
	}

	return results, nil
}

func (h *HandlerFactory) scanPort(ctx context.Context, port string) *Result {
	task := tasks.NewScanTask(h.repository, h.recorder, port, h.verbose)
	runner := tasks.NewTaskRunner(h.publisher, task)

	err := runner.Run(ctx)

	result := &Result{
		Port:        port,
		Transceiver: task.Transceiver(),
		Status:      runner.Status(),
		Err:         err,
	}

	metrics.PortScansTotal.WithLabelValues(string(h.repository.Kind()), result.metricLabel()).Inc()

	if err != nil {
		slog.Error("Failed scanning port", "port", port, "task_id", task.ID().String(), "error", err)
		return result
	}

	if result.Transceiver != nil {
		slog.Debug("Scanned port", result.Transceiver.AsLogFields()...)
	}

	return result
}

func (r *Result) metricLabel() string {
	switch {
	case r.Err != nil:
		return metrics.ResultError
	case r.Transceiver != nil && r.Transceiver.Info.Supported:
		return metrics.ResultSupported
	default:
		return metrics.ResultUnsupported
	}
}

// Failures returns model.ErrScanFailed, naming the count, when any port in
// results could not be read or decoded.
func Failures(results []*Result) error {
	var failed int

	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}

	if failed == 0 {
		return nil
	}

	return errors.Wrapf(model.ErrScanFailed, "%d of %d ports failed", failed, len(results))
}
