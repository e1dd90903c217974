package orders

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const EventOrderCreated = "OrderCreated"

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type OrderCreatedPayload struct {
	OrderID      int64       `json:"order_id"`
	CustomerName string      `json:"customer_name"`
	TotalCost    float64     `json:"total_cost"`
	Datetime     string      `json:"datetime"`
	Lines        []LineInput `json:"lines"`
}

// NewOrderCreated wraps p in a version 1 envelope.
func NewOrderCreated(producer, traceID string, p OrderCreatedPayload) (Envelope, error) {
	if p.Lines == nil {
		p.Lines = []LineInput{}
	}
	b, err := json.Marshal(p)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventOrderCreated,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		TraceID:       traceID,
		CorrelationID: CorrelationID(p.OrderID),
		Payload:       b,
	}, nil
}
