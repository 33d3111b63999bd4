package tasks

import (
	"context"
	"fmt"
	"strings"

	rctypes "github.com/metal-toolbox/rivets/condition"
	"github.com/metal-toolbox/sffinfo/internal/metrics"
	"github.com/metal-toolbox/sffinfo/internal/model"
	"github.com/metal-toolbox/sffinfo/pkg/sff"
	"github.com/pkg/errors"
)

var (
	idpromKey = "idprom"
	infoKey   = "info"
	absentKey = "absent"

	errMissingData = errors.New("missing shared data")
)

// StepStatus has status about a step, to be reported as part of the overall task.
type StepStatus struct {
	Step    string `json:"step"`
	Status  string `json:"status"`
	Details string `json:"details,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewStepStatus will create a new step status struct
func NewStepStatus(stepName string, state rctypes.State, details string, err error) *StepStatus {
	status := &StepStatus{
		Step:    stepName,
		Status:  string(state),
		Details: details,
	}

	if err != nil {
		status.Error = err.Error()
	}

	return status
}

func (s *StepStatus) AsLogFields() []any {
	return []any{
		"step", s.Step,
		"status", s.Status,
		"details", s.Details,
		"error", s.Error,
	}
}

// Step is a unit of work. Multiple steps accomplish a task.
type Step interface {
	// Name of this step
	Name() string
	// Run will execute the code to accomplish this step
	Run(ctx context.Context, data sharedData) (string, error)
}

// Source reads idprom images by port.
type Source interface {
	IdpromByPort(ctx context.Context, port string) ([]byte, error)
	Kind() model.SourceKind
}

// Recorder stores decoded transceivers.
type Recorder interface {
	Save(ctx context.Context, t *model.Transceiver) error
}

func portAbsent(data sharedData) bool {
	absent, _ := data[absentKey].(bool)
	return absent
}

type readIdpromStep struct {
	name   string
	source Source
	port   string
}

// ReadIdpromStep reads the image of port from source into sharedData. An
// empty port is not a failure; the following steps skip it.
func ReadIdpromStep(source Source, port string) Step {
	return &readIdpromStep{
		name:   "ReadIdprom",
		source: source,
		port:   port,
	}
}

func (t *readIdpromStep) Name() string {
	return t.name
}

func (t *readIdpromStep) Run(ctx context.Context, data sharedData) (string, error) {
	b, err := t.source.IdpromByPort(ctx, t.port)
	if err != nil {
		if errors.Is(err, model.ErrModuleAbsent) {
			data[absentKey] = true
			return "No module present", nil
		}

		return "Failed to read idprom", err
	}

	data[idpromKey] = b

	return fmt.Sprintf("Read %d bytes from %s source", len(b), t.source.Kind()), nil
}

type decodeStep struct {
	name string
}

// DecodeStep decodes the image into an sff.Info.
func DecodeStep() Step {
	return &decodeStep{
		name: "Decode",
	}
}

func (t *decodeStep) Name() string {
	return t.name
}

func (t *decodeStep) Run(_ context.Context, data sharedData) (string, error) {
	if portAbsent(data) {
		return "Skipped, no module", nil
	}

	b, ok := data[idpromKey].([]byte)
	if !ok {
		return "Idprom not read", errors.Wrap(errMissingData, idpromKey)
	}

	info, err := sff.NewInfo(b)
	if err != nil {
		return "Failed to decode idprom", err
	}

	data[infoKey] = info

	metrics.ModulesDecodedTotal.WithLabelValues(
		info.SFPType.String(),
		info.ModuleType.String(),
		info.MediaType.String(),
	).Inc()

	return fmt.Sprintf("Decoded %s %s", info.SFPType, info.ModuleType), nil
}

type validateStep struct {
	name    string
	verbose bool
}

// ValidateStep checks whether the module is supported. An unsupported module
// does not fail the step.
func ValidateStep(verbose bool) Step {
	return &validateStep{
		name:    "Validate",
		verbose: verbose,
	}
}

func (t *validateStep) Name() string {
	return t.name
}

func (t *validateStep) Run(_ context.Context, data sharedData) (string, error) {
	if portAbsent(data) {
		return "Skipped, no module", nil
	}

	info, ok := data[infoKey].(*sff.Info)
	if !ok {
		return "Idprom not decoded", errors.Wrap(errMissingData, infoKey)
	}

	base, ext := sff.StoredChecksums(&info.Eeprom)
	if base != info.CCBase {
		metrics.ChecksumMismatchTotal.WithLabelValues("base").Inc()
	}

	if ext != info.CCExt {
		metrics.ChecksumMismatchTotal.WithLabelValues("extended").Inc()
	}

	if info.Valid(t.verbose) {
		return "Module supported", nil
	}

	return "Module not supported: " + strings.Join(info.Problems(), "; "), nil
}

type recordStep struct {
	name     string
	task     *ScanTask
	recorder Recorder
}

// RecordStep builds the task's transceiver and stores it with recorder, when
// one is set.
func RecordStep(task *ScanTask, recorder Recorder) Step {
	return &recordStep{
		name:     "Record",
		task:     task,
		recorder: recorder,
	}
}

func (t *recordStep) Name() string {
	return t.name
}

func (t *recordStep) Run(ctx context.Context, data sharedData) (string, error) {
	if portAbsent(data) {
		return "Skipped, no module", nil
	}

	info, ok := data[infoKey].(*sff.Info)
	if !ok {
		return "Idprom not decoded", errors.Wrap(errMissingData, infoKey)
	}

	tr := model.NewTransceiver(t.task.port, t.task.source.Kind(), info)
	tr.ID = t.task.id
	t.task.transceiver = tr

	if t.recorder == nil {
		return "Inventory disabled", nil
	}

	if err := t.recorder.Save(ctx, tr); err != nil {
		return "Failed to record transceiver", err
	}

	return "Recorded in inventory", nil
}
