package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/metal-toolbox/sffinfo/pkg/sff"
)

type (
	SourceKind string
)

const (
	AppName = "sffinfo"

	SourceKindFile   SourceKind = "file"
	SourceKindHTTP   SourceKind = "http"
	SourceKindDryRun SourceKind = "dryrun"
)

// Transceiver is a module decoded from one port.
// nolint:govet // prefer to keep field ordering as is
type Transceiver struct {
	ID uuid.UUID

	// Port the module is plugged into, as named by the source.
	Port   string
	Source SourceKind

	ScannedAt time.Time

	Info *sff.Info
}

// NewTransceiver wraps a decoded module with a fresh identifier.
func NewTransceiver(port string, source SourceKind, info *sff.Info) *Transceiver {
	return &Transceiver{
		ID:        uuid.New(),
		Port:      port,
		Source:    source,
		ScannedAt: time.Now().UTC(),
		Info:      info,
	}
}

func (t *Transceiver) AsLogFields() []any {
	fields := []any{
		"transceiver_id", t.ID.String(),
		"port", t.Port,
		"source", string(t.Source),
	}

	if t.Info != nil {
		fields = append(fields, t.Info.AsLogFields()...)
	}

	return fields
}

type Args struct {
	LogLevel        string
	ConfigFile      string
	EnableProfiling bool
}
