package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/segmentio/kafka-go"

	"pos-service/internal/models"
)

// EventPublisher publishes domain events. A nil producer (no brokers
// configured) turns every publish into a no-op.
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// Enabled reports whether events actually reach a broker
func (ep *EventPublisher) Enabled() bool {
	return ep != nil && ep.producer != nil
}

// PublishSaleCompleted publishes a SaleCompleted event
func (ep *EventPublisher) PublishSaleCompleted(ctx context.Context, event *models.SaleCompletedEvent) error {
	if !ep.Enabled() {
		return nil
	}
	key := fmt.Sprintf("sale-%d", event.SaleID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishInvoiceIssued publishes an InvoiceIssued event
func (ep *EventPublisher) PublishInvoiceIssued(ctx context.Context, event *models.InvoiceIssuedEvent) error {
	if !ep.Enabled() {
		return nil
	}
	key := fmt.Sprintf("invoice-%d", event.InvoiceID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishInvoiceStatusChanged publishes an InvoiceStatusChanged event
func (ep *EventPublisher) PublishInvoiceStatusChanged(ctx context.Context, event *models.InvoiceStatusChangedEvent) error {
	if !ep.Enabled() {
		return nil
	}
	key := fmt.Sprintf("invoice-%d", event.InvoiceID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes consumed events to registered callbacks
type EventHandler struct {
	onSaleCompleted func(context.Context, *models.SaleCompletedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnSaleCompleted registers a handler for SaleCompleted events
func (eh *EventHandler) OnSaleCompleted(handler func(context.Context, *models.SaleCompletedEvent) error) {
	eh.onSaleCompleted = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch baseEvent.EventType {
	case models.EventTypeSaleCompleted:
		if eh.onSaleCompleted != nil {
			var event models.SaleCompletedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal SaleCompleted event: %w", err)
			}
			return eh.onSaleCompleted(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
