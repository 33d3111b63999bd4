package tasks

import (
	"context"
	"encoding/json"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	rctypes "github.com/metal-toolbox/rivets/condition"
	"github.com/metal-toolbox/sffinfo/internal/metrics"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const pkgName = "internal/tasks"

// Miscellaneous
type sharedData map[string]interface{}

// TaskStatus has status about a task, and it's steps.
type TaskStatus struct {
	Task       string        `json:"task"`
	Port       string        `json:"port"`
	Status     string        `json:"status"`
	Details    string        `json:"details,omitempty"`
	Error      string        `json:"error,omitempty"`
	ActiveStep string        `json:"active_step,omitempty"`
	Steps      []*StepStatus `json:"steps"`
}

// NewTaskStatus will generate a new task status struct
func NewTaskStatus(taskName, port string, state rctypes.State) *TaskStatus {
	return &TaskStatus{
		Task:   taskName,
		Port:   port,
		Status: string(state),
	}
}

func (r *TaskStatus) AsLogFields() []any {
	return []any{
		"task", r.Task,
		"port", r.Port,
		"status", r.Status,
		"details", r.Details,
		"error", r.Error,
	}
}

func (r *TaskStatus) Marshal() ([]byte, error) {
	respBytes, err := json.Marshal(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal response to json")
	}

	return respBytes, nil
}

// Task is a unit of work on one port, accomplished by multiple steps.
type Task interface {
	// Name of the task
	Name() string
	// ID identifies this run of the task
	ID() uuid.UUID
	// Port the task works on
	Port() string
	// Steps is the multiple units of work that will accomplish this task
	Steps() []Step
}

// Publisher receives task status updates.
type Publisher interface {
	Publish(ctx context.Context, taskID string, state rctypes.State, status json.RawMessage)
}

// TaskRunner Will run the task by executing the individual steps in the task,
// and reports task status using the publisher.
type TaskRunner struct {
	publisher  Publisher
	task       Task
	taskStatus *TaskStatus
}

// NewTaskRunner creates a TaskRunner to run a specific Task
func NewTaskRunner(publisher Publisher, task Task) *TaskRunner {
	return &TaskRunner{
		publisher:  publisher,
		task:       task,
		taskStatus: NewTaskStatus(task.Name(), task.Port(), rctypes.Pending),
	}
}

// Status returns the last published status.
func (r *TaskRunner) Status() *TaskStatus {
	return r.taskStatus
}

func (r *TaskRunner) logFields() []any {
	return []any{"task_id", r.task.ID().String(), "port", r.task.Port()}
}

func (r *TaskRunner) Run(ctx context.Context) (err error) {
	ctx, span := otel.Tracer(pkgName).Start(ctx, "tasks.Run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("task", r.task.Name()),
			attribute.String("task.id", r.task.ID().String()),
			attribute.String("port", r.task.Port()),
		),
	)
	defer span.End()

	slog.With(r.logFields()...).Debug("Running task", "task", r.task.Name())

	started := time.Now()
	data := sharedData{}
	r.initTaskLog()

	defer func() {
		if rec := recover(); rec != nil {
			err = r.handlePanic(ctx, rec)
		}

		state := rctypes.Succeeded
		if err != nil {
			state = rctypes.Failed
			span.SetStatus(codes.Error, err.Error())
		}

		metrics.TaskRunTimeSummary.WithLabelValues(r.task.Name(), string(state)).
			Observe(time.Since(started).Seconds())
	}()

	r.publishTaskUpdate(ctx, rctypes.Active, "Task started", nil)

	for stepID, step := range r.task.Steps() {
		r.publishStepUpdate(ctx, stepID, "Running step")

		details, err := step.Run(ctx, data)
		if err != nil {
			r.publishFailed(ctx, stepID, "Step failure", err)
			return err
		}

		r.publishStepSuccess(ctx, stepID, details)
	}

	r.publishTaskSuccess(ctx)

	return nil
}

func (r *TaskRunner) initTaskLog() {
	steps := r.task.Steps()
	r.taskStatus.Steps = make([]*StepStatus, len(steps))

	for i, step := range steps {
		r.taskStatus.Steps[i] = NewStepStatus(step.Name(), rctypes.Pending, "", nil)
	}
}

func (r *TaskRunner) handlePanic(ctx context.Context, rec any) error {
	msg := "Panic occurred while running task"
	slog.Error("!!panic occurred", "rec", rec, "stack", string(debug.Stack()))
	slog.Error(msg)
	err := errors.New("Task fatal error, check logs for details")

	r.publishTaskUpdate(ctx, rctypes.Failed, msg, err)

	return err
}

func (r *TaskRunner) publishStepUpdate(ctx context.Context, stepID int, details string) {
	r.taskStatus.ActiveStep = r.task.Steps()[stepID].Name()
	r.publish(ctx, stepID, rctypes.Active, rctypes.Active, details, nil)
}

func (r *TaskRunner) publishStepSuccess(ctx context.Context, stepID int, details string) {
	r.publish(ctx, stepID, rctypes.Succeeded, rctypes.Active, details, nil)
}

func (r *TaskRunner) publishFailed(ctx context.Context, stepID int, details string, err error) {
	slog.With(r.logFields()...).Error("Task failed", "task", r.task.Name(), "error", err)
	r.publish(ctx, stepID, rctypes.Failed, rctypes.Failed, details, err)
}

func (r *TaskRunner) publishTaskSuccess(ctx context.Context) {
	slog.With(r.logFields()...).Debug("Task completed successfully", "task", r.task.Name())
	r.taskStatus.ActiveStep = ""
	r.publishTaskUpdate(ctx, rctypes.Succeeded, "Task completed successfully", nil)
}

func (r *TaskRunner) publish(ctx context.Context, stepID int, stepState, taskState rctypes.State, details string, err error) {
	step := r.task.Steps()[stepID]
	stepStatus := NewStepStatus(step.Name(), stepState, details, err)

	slog.With(r.logFields()...).With(stepStatus.AsLogFields()...).Debug(details, "step", step.Name())

	r.taskStatus.Steps[stepID] = stepStatus

	var taskDetails string
	if err != nil {
		taskDetails = "Task failed at step " + step.Name()
	}

	r.publishTaskUpdate(ctx, taskState, taskDetails, err)
}

func (r *TaskRunner) publishTaskUpdate(ctx context.Context, state rctypes.State, details string, err error) {
	r.taskStatus.Status = string(state)
	r.taskStatus.Details = details

	if err != nil {
		r.taskStatus.Error = err.Error()
	}

	respBytes, err := r.taskStatus.Marshal()
	if err != nil {
		slog.Error("Failed to marshal task update", "error", err)
		return
	}

	r.publisher.Publish(ctx, r.task.ID().String(), state, respBytes)
}
