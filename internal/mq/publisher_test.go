package mq

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/Myx/internal/domain"
)

func TestNewEventPayload(t *testing.T) {
	d := 2500 * time.Microsecond
	from := time.Date(2026, 1, 25, 0, 0, 0, 0, time.UTC)
	runID := uuid.New()

	p := NewEventPayload(domain.ExecutionEvent{
		Timestamp: time.Date(2026, 1, 25, 12, 0, 0, 0, time.UTC),
		RunID:     runID,
		Treatment: "parse",
		Status:    domain.EventSuccess,
		InputDir:  "/in",
		OutputDir: "/out",
		Duration:  &d,
		Window:    domain.TimeWindow{From: &from},
	})

	require.NotNil(t, p.RunID)
	assert.Equal(t, runID, *p.RunID)
	require.NotNil(t, p.DurationMS)
	assert.Equal(t, 2.5, *p.DurationMS)
	assert.Nil(t, p.TimeTo)

	data, err := json.Marshal(newMessage(MessageTypeExecutionEvent, p))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "execution.event", decoded["type"])
}

func TestNewEventPayload_NoRun(t *testing.T) {
	p := NewEventPayload(domain.ExecutionEvent{Treatment: "x", Status: domain.EventSkip})
	assert.Nil(t, p.RunID)
	assert.Nil(t, p.DurationMS)
}

func TestRoutingKeys(t *testing.T) {
	assert.Equal(t, RoutingKey("event.error"), EventRoutingKey("error"))
	assert.Equal(t, RoutingKey("run.FAILED"), RunRoutingKey("FAILED"))
	assert.Equal(t, Queue("myx.events.audit"), AuditQueue(DefaultExchange))
}
