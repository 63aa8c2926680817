package events

import (
	"go.uber.org/zap"
)

// LoggingObserver logs all events for debugging purposes.
type LoggingObserver struct {
	name    string
	verbose bool
	logger  *zap.Logger
}

// NewLoggingObserver creates a new observer that logs events.
func NewLoggingObserver(logger *zap.Logger, verbose bool) *LoggingObserver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingObserver{
		name:    "LoggingObserver",
		verbose: verbose,
		logger:  logger,
	}
}

// OnEvent logs the event details.
func (o *LoggingObserver) OnEvent(event Event) error {
	fields := []zap.Field{
		zap.String("event", event.Type),
		zap.String("user_id", event.UserID),
	}
	if o.verbose {
		fields = append(fields, zap.Any("data", event.Data))
	}
	o.logger.Debug("Event dispatched", fields...)
	return nil
}

// GetName returns the observer's name.
func (o *LoggingObserver) GetName() string {
	return o.name
}

// ShouldHandle returns true for all events.
func (o *LoggingObserver) ShouldHandle(eventType string) bool {
	return true
}
