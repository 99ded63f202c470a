package broadcast

import (
	"encoding/json"
	"time"
)

// Encode renders msg in the flat wire format stream clients expect:
// the payload fields sit next to type, event_id and timestamp.
func Encode(msg Message) ([]byte, error) {
	frame := map[string]any{}
	if msg.Payload != nil {
		raw, err := json.Marshal(msg.Payload)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &frame); err != nil {
			return nil, err
		}
	}
	frame["type"] = msg.Type
	frame["event_id"] = msg.EventID
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	frame["timestamp"] = ts.UTC().Format(time.RFC3339Nano)
	return json.Marshal(frame)
}
