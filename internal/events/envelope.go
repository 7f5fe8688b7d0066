package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventEnvelope is the versioned wrapper every storefront event travels in.
// Payload holds the event-specific body.
type EventEnvelope struct {
	EventName     string          `json:"eventName"`
	EventVersion  int             `json:"eventVersion"`
	EventID       string          `json:"eventId"`
	CorrelationID string          `json:"correlationId,omitempty"`
	CausationID   string          `json:"causationId,omitempty"`
	Producer      string          `json:"producer"`
	PartitionKey  string          `json:"partitionKey"`
	Sequence      int64           `json:"sequence,omitempty"`
	OccurredAt    time.Time       `json:"occurredAt"`
	Schema        string          `json:"schema"`
	Payload       json.RawMessage `json:"payload"`
}

// Validate checks the envelope header against the expected contract.
func (e EventEnvelope) Validate(name string, version int) error {
	switch {
	case e.EventName != name:
		return fmt.Errorf("unexpected eventName %q, want %q", e.EventName, name)
	case e.EventVersion != version:
		return fmt.Errorf("unexpected eventVersion %d, want %d", e.EventVersion, version)
	case e.EventID == "":
		return fmt.Errorf("missing eventId")
	case e.PartitionKey == "":
		return fmt.Errorf("missing partitionKey")
	case e.Producer == "":
		return fmt.Errorf("missing producer")
	case e.Sequence < 1:
		return fmt.Errorf("sequence must be positive, got %d", e.Sequence)
	case len(e.Payload) == 0:
		return fmt.Errorf("missing payload")
	}
	return nil
}
