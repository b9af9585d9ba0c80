package worker

import (
	"context"

	"sales-flow/internal/broker"
	"sales-flow/internal/models"
	"sales-flow/internal/util"

	"go.uber.org/zap"
)

// AuditWorker consumes the domain event topic and keeps an audit trail of
// every order and notification change in the structured log.
type AuditWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	logger       *zap.Logger
}

// NewAuditWorker creates a new audit worker
func NewAuditWorker(consumer *broker.Consumer) *AuditWorker {
	logger := util.GetLogger().Named("audit")
	return &AuditWorker{
		consumer:     consumer,
		eventHandler: newAuditHandler(logger),
		logger:       logger,
	}
}

func newAuditHandler(logger *zap.Logger) *broker.EventHandler {
	eh := broker.NewEventHandler()

	eh.OnOrderSubmitted(func(_ context.Context, e *models.OrderSubmittedEvent) error {
		util.EventsConsumedTotal.WithLabelValues(e.EventType).Inc()
		logger.Info("order submitted",
			zap.String("event_id", e.EventID),
			zap.String("order_id", e.OrderID),
			zap.String("sales_id", e.SalesID),
			zap.String("order_type", string(e.OrderType)),
			zap.Int("lines", len(e.Items)))
		return nil
	})

	eh.OnOrderStatusChanged(func(_ context.Context, e *models.OrderStatusChangedEvent) error {
		util.EventsConsumedTotal.WithLabelValues(e.EventType).Inc()
		logger.Info("order status changed",
			zap.String("event_id", e.EventID),
			zap.String("order_id", e.OrderID),
			zap.String("actor_id", e.ActorID),
			zap.String("from", string(e.From)),
			zap.String("to", string(e.To)),
			zap.String("message", e.Message))
		return nil
	})

	eh.OnNotificationCreated(func(_ context.Context, e *models.NotificationCreatedEvent) error {
		util.EventsConsumedTotal.WithLabelValues(e.EventType).Inc()
		logger.Info("notification created",
			zap.String("event_id", e.EventID),
			zap.String("notification_id", e.NotificationID),
			zap.String("target", e.Target),
			zap.String("title", e.Title))
		return nil
	})

	eh.OnImportCompleted(func(_ context.Context, e *models.ImportCompletedEvent) error {
		util.EventsConsumedTotal.WithLabelValues(e.EventType).Inc()
		logger.Info("import completed",
			zap.String("event_id", e.EventID),
			zap.String("event_type", e.EventType),
			zap.Int("rows", e.Rows),
			zap.Int("skipped", e.Skipped))
		return nil
	})

	return eh
}

// Start starts the worker
func (w *AuditWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting audit worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *AuditWorker) Stop() error {
	w.logger.Info("Stopping audit worker")
	return w.consumer.Close()
}
