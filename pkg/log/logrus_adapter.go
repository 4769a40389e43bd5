package log

import (
	"github.com/sirupsen/logrus"
)

// LogrusAdapter writes SDK events to a logrus logger, for applications
// already standardized on logrus.
type LogrusAdapter struct {
	logger *logrus.Logger
}

// NewLogrusAdapter creates a new LogrusAdapter that writes to the
// given logrus logger. Pass logrus.StandardLogger() for the default.
func NewLogrusAdapter(logger *logrus.Logger) *LogrusAdapter {
	return &LogrusAdapter{logger: logger}
}

// Log writes the event to logrus. Errors are logged at Warn level,
// everything else at Debug.
func (a *LogrusAdapter) Log(event Event) {
	fields := logrus.Fields{
		"category": event.Category.String(),
	}
	if event.ConnectionID != "" {
		fields["conn_id"] = event.ConnectionID
	}
	if event.DeviceID != "" {
		fields["device_id"] = event.DeviceID
	}

	entry := a.logger.WithFields(fields)

	switch {
	case event.Frame != nil:
		entry = entry.WithFields(logrus.Fields{
			"direction":  event.Direction.String(),
			"frame_size": event.Frame.Size,
		})
		if event.Frame.MessageType != "" {
			entry = entry.WithField("msg_type", event.Frame.MessageType)
		}
		entry.Debug("frame")

	case event.StateChange != nil:
		entry.WithFields(logrus.Fields{
			"old_state": event.StateChange.OldState,
			"new_state": event.StateChange.NewState,
			"reason":    event.StateChange.Reason,
		}).Debug("connection state")

	case event.Request != nil:
		entry.WithFields(logrus.Fields{
			"method":   event.Request.Method,
			"path":     event.Request.Path,
			"status":   event.Request.StatusCode,
			"duration": event.Request.Duration,
		}).Debug("http request")

	case event.Error != nil:
		entry.WithFields(logrus.Fields{
			"error":     event.Error.Message,
			"recovered": event.Error.Recovered,
		}).Warn("sdk error")

	default:
		entry.Debug("sdk event")
	}
}

// Compile-time interface satisfaction check.
var _ Logger = (*LogrusAdapter)(nil)
