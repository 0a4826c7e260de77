package core

import (
	"context"

	"github.com/sirupsen/logrus"
)

// EventLogger records verification and gate outcomes to an external sink.
// Implementations should be non-blocking and best-effort.
type EventLogger interface {
	LogVerification(ctx context.Context, identity, sessionID string, active bool) error
	LogGateDenied(ctx context.Context, identity string) error
}

// LogEvents is the default EventLogger, writing structured log lines.
type LogEvents struct {
	log *logrus.Entry
}

func NewLogEvents(log *logrus.Logger) *LogEvents {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LogEvents{log: log.WithField("component", "core.events")}
}

func (l *LogEvents) LogVerification(ctx context.Context, identity, sessionID string, active bool) error {
	_ = ctx
	l.log.WithFields(logrus.Fields{
		"identity": identity,
		"session":  sessionID,
		"active":   active,
	}).Info("subscription verified")
	return nil
}

func (l *LogEvents) LogGateDenied(ctx context.Context, identity string) error {
	_ = ctx
	l.log.WithField("identity", identity).Info("transcription denied")
	return nil
}
