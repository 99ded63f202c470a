package broadcast

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/event-service/internal/domain"
)

func TestEncode_FlattensPayload(t *testing.T) {
	ts := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	msg := Message{
		Type:      MessageEventDeleted,
		EventID:   "e1",
		Timestamp: ts,
		Payload: EventDeletedPayload{
			EventData: NewEventData(domain.Event{ID: "e1", Title: "Gone", Date: "2025-04-02", Time: "12:00"}),
			DeletedBy: "admin-1",
		},
	}

	raw, err := Encode(msg)
	require.NoError(t, err)

	var frame map[string]any
	require.NoError(t, json.Unmarshal(raw, &frame))
	assert.Equal(t, "event_deleted", frame["type"])
	assert.Equal(t, "e1", frame["event_id"])
	assert.Equal(t, "admin-1", frame["deleted_by"])
	assert.Equal(t, "2025-04-01T10:00:00Z", frame["timestamp"])

	data := frame["event_data"].(map[string]any)
	assert.Equal(t, "Gone", data["title"])
	assert.NotContains(t, data, "created_at")
}
