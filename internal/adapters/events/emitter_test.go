package events

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kevin07696/subscription-service/internal/domain/ports"
)

type capturedLog struct {
	msg    string
	fields []ports.Field
}

type captureLogger struct {
	logs []capturedLog
}

func (l *captureLogger) Info(msg string, fields ...ports.Field) {
	l.logs = append(l.logs, capturedLog{msg: msg, fields: fields})
}
func (l *captureLogger) Error(string, ...ports.Field) {}
func (l *captureLogger) Warn(string, ...ports.Field)  {}
func (l *captureLogger) Debug(string, ...ports.Field) {}

type countingEmitter struct {
	count int
	last  string
}

func (c *countingEmitter) Emit(event string, payload map[string]interface{}) {
	c.count++
	c.last = event
}

// TestLogEmitter tests that events land in the structured log with their payload
func TestLogEmitter(t *testing.T) {
	logger := &captureLogger{}
	emitter := NewLogEmitter(logger)

	emitter.Emit(ports.EventStatusUpdated, map[string]interface{}{
		"subscription_id": "sub-1",
		"new_status":      "active",
	})

	assert.Len(t, logger.logs, 1)
	assert.Equal(t, "lifecycle event", logger.logs[0].msg)
	// event name plus the two payload fields
	assert.Len(t, logger.logs[0].fields, 3)
}

// TestMultiEmitter tests fan-out to every registered emitter
func TestMultiEmitter(t *testing.T) {
	first := &countingEmitter{}
	second := &countingEmitter{}
	multi := NewMultiEmitter(first, second)

	multi.Emit(ports.EventRenewalDue, map[string]interface{}{"subscription_id": "sub-1"})
	multi.Emit(ports.EventDateUpdated, nil)

	assert.Equal(t, 2, first.count)
	assert.Equal(t, 2, second.count)
	assert.Equal(t, ports.EventDateUpdated, first.last)
	assert.Equal(t, ports.EventDateUpdated, second.last)
}
