package contracts

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/points-mall/cart-service/internal/cart"
)

const (
	CheckoutSelectedEventName           = "CheckoutSelected"
	CheckoutSelectedEventVersion        = 1
	CheckoutSelectedEnvelopedSchemaPath = "contracts/events/cart/CheckoutSelected.v1.enveloped.schema.json"
	CartServiceProducer                 = "cart-service"
)

type EventEnvelope struct {
	EventName     string                  `json:"eventName"`
	EventVersion  int                     `json:"eventVersion"`
	EventID       string                  `json:"eventId"`
	CorrelationID string                  `json:"correlationId,omitempty"`
	CausationID   string                  `json:"causationId,omitempty"`
	Producer      string                  `json:"producer"`
	PartitionKey  string                  `json:"partitionKey"`
	Sequence      int64                   `json:"sequence"`
	OccurredAt    time.Time               `json:"occurredAt"`
	Schema        string                  `json:"schema"`
	Payload       CheckoutSelectedPayload `json:"payload"`
}

type CheckoutSelectedPayload struct {
	UserID      int64                  `json:"userId"`
	Items       []CheckoutSelectedItem `json:"items"`
	TotalPoints int64                  `json:"totalPoints"`
	Timestamp   time.Time              `json:"timestamp"`
}

type CheckoutSelectedItem struct {
	LineID         int64 `json:"lineId"`
	ProductID      int64 `json:"productId"`
	Quantity       int64 `json:"quantity"`
	PointsRequired int64 `json:"pointsRequired"`
}

type EnvelopeOptions struct {
	PartitionKey  string
	Sequence      int64
	Producer      string
	SchemaPath    string
	CorrelationID string
	CausationID   string
	EventID       string
	OccurredAt    time.Time
}

func BuildCheckoutSelectedEvent(userID int64, sel cart.CheckoutSelection, opts EnvelopeOptions) EventEnvelope {
	eventID := opts.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	}

	occurredAt := opts.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	schemaPath := opts.SchemaPath
	if schemaPath == "" {
		schemaPath = CheckoutSelectedEnvelopedSchemaPath
	}

	producer := opts.Producer
	if producer == "" {
		producer = CartServiceProducer
	}

	payload := CheckoutSelectedPayload{
		UserID:      userID,
		TotalPoints: sel.TotalPoints,
		Timestamp:   occurredAt,
	}
	for _, it := range sel.Items {
		payload.Items = append(payload.Items, CheckoutSelectedItem{
			LineID:         it.ID,
			ProductID:      it.ProductID,
			Quantity:       it.Quantity,
			PointsRequired: it.PointsRequired,
		})
	}

	return EventEnvelope{
		EventName:     CheckoutSelectedEventName,
		EventVersion:  CheckoutSelectedEventVersion,
		EventID:       eventID,
		CorrelationID: opts.CorrelationID,
		CausationID:   opts.CausationID,
		Producer:      producer,
		PartitionKey:  opts.PartitionKey,
		Sequence:      opts.Sequence,
		OccurredAt:    occurredAt,
		Schema:        schemaPath,
		Payload:       payload,
	}
}

func (e EventEnvelope) Validate() error {
	if e.EventName != CheckoutSelectedEventName {
		return fmt.Errorf("unexpected eventName %q", e.EventName)
	}
	if e.EventVersion != CheckoutSelectedEventVersion {
		return fmt.Errorf("unexpected eventVersion %d", e.EventVersion)
	}
	if e.EventID == "" {
		return fmt.Errorf("missing eventId")
	}
	if e.PartitionKey == "" {
		return fmt.Errorf("missing partitionKey")
	}
	return nil
}
