package tasks

import (
	"context"
	"encoding/json"

	rctypes "github.com/metal-toolbox/rivets/condition"
	"github.com/sirupsen/logrus"
)

// LogPublisher writes task status updates to a logrus logger.
type LogPublisher struct {
	logger *logrus.Entry
}

func NewLogPublisher(logger *logrus.Entry) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, taskID string, state rctypes.State, status json.RawMessage) {
	entry := p.logger.WithFields(logrus.Fields{
		"task_id": taskID,
		"state":   string(state),
		"status":  string(status),
	})

	switch state {
	case rctypes.Failed:
		entry.Warn("task status")
	case rctypes.Succeeded:
		entry.Info("task status")
	default:
		entry.Debug("task status")
	}
}
