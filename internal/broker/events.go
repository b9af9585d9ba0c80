package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"sales-flow/internal/models"
	"sales-flow/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KeyCatalog keys the import events, which belong to no order
const KeyCatalog = "catalog"

func orderKey(orderID string) string {
	return "order-" + orderID
}

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishOrderSubmitted publishes OrderSubmitted event
func (ep *EventPublisher) PublishOrderSubmitted(ctx context.Context, event *models.OrderSubmittedEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

// PublishOrderStatusChanged publishes OrderStatusChanged event
func (ep *EventPublisher) PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

// PublishNotificationCreated publishes NotificationCreated event. The key is
// the notification target so one recipient's feed stays ordered.
func (ep *EventPublisher) PublishNotificationCreated(ctx context.Context, event *models.NotificationCreatedEvent) error {
	return ep.producer.PublishEvent(ctx, event.Target, event)
}

// PublishImportCompleted publishes CatalogImported or ReturnsImported
func (ep *EventPublisher) PublishImportCompleted(ctx context.Context, event *models.ImportCompletedEvent) error {
	return ep.producer.PublishEvent(ctx, KeyCatalog, event)
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderSubmitted(context.Context, *models.OrderSubmittedEvent) error {
	return nil
}

func (NopPublisher) PublishOrderStatusChanged(context.Context, *models.OrderStatusChangedEvent) error {
	return nil
}

func (NopPublisher) PublishNotificationCreated(context.Context, *models.NotificationCreatedEvent) error {
	return nil
}

func (NopPublisher) PublishImportCompleted(context.Context, *models.ImportCompletedEvent) error {
	return nil
}

// EventHandler handles incoming events
type EventHandler struct {
	onOrderSubmitted      func(context.Context, *models.OrderSubmittedEvent) error
	onOrderStatusChanged  func(context.Context, *models.OrderStatusChangedEvent) error
	onNotificationCreated func(context.Context, *models.NotificationCreatedEvent) error
	onImportCompleted     func(context.Context, *models.ImportCompletedEvent) error
	logger                *zap.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{logger: util.GetLogger()}
}

// OnOrderSubmitted registers a handler for OrderSubmitted events
func (eh *EventHandler) OnOrderSubmitted(handler func(context.Context, *models.OrderSubmittedEvent) error) {
	eh.onOrderSubmitted = handler
}

// OnOrderStatusChanged registers a handler for OrderStatusChanged events
func (eh *EventHandler) OnOrderStatusChanged(handler func(context.Context, *models.OrderStatusChangedEvent) error) {
	eh.onOrderStatusChanged = handler
}

// OnNotificationCreated registers a handler for NotificationCreated events
func (eh *EventHandler) OnNotificationCreated(handler func(context.Context, *models.NotificationCreatedEvent) error) {
	eh.onNotificationCreated = handler
}

// OnImportCompleted registers a handler for both import event types
func (eh *EventHandler) OnImportCompleted(handler func(context.Context, *models.ImportCompletedEvent) error) {
	eh.onImportCompleted = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	eh.logger.Debug("Handling event",
		zap.String("event_type", baseEvent.EventType),
		zap.String("event_id", baseEvent.EventID))

	switch baseEvent.EventType {
	case models.EventTypeOrderSubmitted:
		if eh.onOrderSubmitted != nil {
			var event models.OrderSubmittedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OrderSubmitted event: %w", err)
			}
			return eh.onOrderSubmitted(ctx, &event)
		}

	case models.EventTypeOrderStatusChanged:
		if eh.onOrderStatusChanged != nil {
			var event models.OrderStatusChangedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OrderStatusChanged event: %w", err)
			}
			return eh.onOrderStatusChanged(ctx, &event)
		}

	case models.EventTypeNotificationCreated:
		if eh.onNotificationCreated != nil {
			var event models.NotificationCreatedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal NotificationCreated event: %w", err)
			}
			return eh.onNotificationCreated(ctx, &event)
		}

	case models.EventTypeCatalogImported, models.EventTypeReturnsImported:
		if eh.onImportCompleted != nil {
			var event models.ImportCompletedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal %s event: %w", baseEvent.EventType, err)
			}
			return eh.onImportCompleted(ctx, &event)
		}

	default:
		eh.logger.Warn("Unhandled event type", zap.String("event_type", baseEvent.EventType))
	}

	return nil
}
