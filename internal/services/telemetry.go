package services

import (
	"github.com/hearthlabs/hearth-backend/internal/platform/logger"
)

// TelemetrySink is the narrow observer the engine reports through. Sinks
// must be cheap and must never influence what the engine returns.
type TelemetrySink interface {
	Breadcrumb(category, message string, data map[string]interface{})
	Message(level, message string, tags map[string]string)
	Exception(err error, tags map[string]string, extras map[string]interface{})
}

type logTelemetry struct {
	log *logger.Logger
}

func NewLogTelemetry(baseLog *logger.Logger) TelemetrySink {
	return &logTelemetry{log: baseLog.With("service", "Telemetry")}
}

func (t *logTelemetry) Breadcrumb(category, message string, data map[string]interface{}) {
	t.log.Debug("breadcrumb", "category", category, "message", message, "data", data)
}

func (t *logTelemetry) Message(level, message string, tags map[string]string) {
	switch level {
	case "warning", "warn":
		t.log.Warn(message, "tags", tags)
	case "error":
		t.log.Error(message, "tags", tags)
	default:
		t.log.Info(message, "tags", tags)
	}
}

func (t *logTelemetry) Exception(err error, tags map[string]string, extras map[string]interface{}) {
	t.log.Error("exception reported", "error", err, "tags", tags, "extras", extras)
}

// NoopTelemetry drops everything; handy in tests.
type NoopTelemetry struct{}

func (NoopTelemetry) Breadcrumb(string, string, map[string]interface{}) {}

func (NoopTelemetry) Message(string, string, map[string]string) {}

func (NoopTelemetry) Exception(error, map[string]string, map[string]interface{}) {}
