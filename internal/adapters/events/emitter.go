package events

import (
	"github.com/kevin07696/subscription-service/internal/domain/ports"
)

// LogEmitter writes every lifecycle event to the structured log. It is the
// default observer and the one the cron handler always wires.
type LogEmitter struct {
	logger ports.Logger
}

// NewLogEmitter creates a new log-backed event emitter
func NewLogEmitter(logger ports.Logger) *LogEmitter {
	return &LogEmitter{logger: logger}
}

// Emit logs the event with its payload as structured fields
func (e *LogEmitter) Emit(event string, payload map[string]interface{}) {
	fields := make([]ports.Field, 0, len(payload)+1)
	fields = append(fields, ports.String("event", event))
	for k, v := range payload {
		fields = append(fields, ports.Field{Key: k, Value: v})
	}
	e.logger.Info("lifecycle event", fields...)
}

// MultiEmitter fans a single event out to several observers in order
type MultiEmitter struct {
	emitters []ports.EventEmitter
}

// NewMultiEmitter creates an emitter that forwards to every given emitter
func NewMultiEmitter(emitters ...ports.EventEmitter) *MultiEmitter {
	return &MultiEmitter{emitters: emitters}
}

// Emit forwards the event to each registered emitter
func (e *MultiEmitter) Emit(event string, payload map[string]interface{}) {
	for _, emitter := range e.emitters {
		emitter.Emit(event, payload)
	}
}
