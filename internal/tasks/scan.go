package tasks

import (
	"github.com/google/uuid"
	"github.com/metal-toolbox/sffinfo/internal/model"
)

// ScanTask reads, decodes, validates and records the module in one port.
type ScanTask struct {
	id          uuid.UUID
	port        string
	source      Source
	steps       []Step
	transceiver *model.Transceiver
}

// NewScanTask creates the task for scanning port. recorder may be nil.
func NewScanTask(source Source, recorder Recorder, port string, verbose bool) *ScanTask {
	t := &ScanTask{
		id:     uuid.New(),
		port:   port,
		source: source,
	}

	t.steps = []Step{
		ReadIdpromStep(source, port),
		DecodeStep(),
		ValidateStep(verbose),
		RecordStep(t, recorder),
	}

	return t
}

func (t *ScanTask) Name() string {
	return "ScanPort"
}

func (t *ScanTask) ID() uuid.UUID {
	return t.id
}

func (t *ScanTask) Port() string {
	return t.port
}

func (t *ScanTask) Steps() []Step {
	return t.steps
}

// Transceiver returns the decoded module once the task succeeded, nil for an
// empty port.
func (t *ScanTask) Transceiver() *model.Transceiver {
	return t.transceiver
}
