package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sales-flow/internal/models"
	"sales-flow/internal/util"
	"sales-flow/internal/workflow"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventPublisher is implemented by broker.EventPublisher and broker.NopPublisher
type EventPublisher interface {
	PublishOrderSubmitted(ctx context.Context, event *models.OrderSubmittedEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
	PublishNotificationCreated(ctx context.Context, event *models.NotificationCreatedEvent) error
	PublishImportCompleted(ctx context.Context, event *models.ImportCompletedEvent) error
}

// PasswordHasher is implemented by auth.Hasher
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

func defaultEnv() workflow.Env {
	return workflow.Env{
		Now:   func() time.Time { return time.Now().UTC() },
		NewID: util.NewID,
	}
}

func newBaseEvent(eventType string, at time.Time) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: at,
	}
}

func requireRole(actor models.User, roles ...models.Role) error {
	for _, r := range roles {
		if actor.Role == r {
			return nil
		}
	}
	return fmt.Errorf("%w: role %s may not perform this action", models.ErrPermissionDenied, actor.Role)
}

// denyReason is the metric label for a refused operation
func denyReason(err error) string {
	switch {
	case errors.Is(err, models.ErrPermissionDenied):
		return "permission"
	case errors.Is(err, models.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, models.ErrOrderNotFound), errors.Is(err, models.ErrSKUNotFound):
		return "not_found"
	case errors.Is(err, models.ErrInvalidInput):
		return "invalid_input"
	}
	return "error"
}

// publishNotifications counts and announces freshly stored notifications.
// Publishing failures are logged and never reach the caller.
func publishNotifications(ctx context.Context, publisher EventPublisher, logger *zap.Logger, notifs []models.Notification) {
	for _, n := range notifs {
		util.NotificationsEmittedTotal.WithLabelValues(string(n.Type)).Inc()

		event := &models.NotificationCreatedEvent{
			BaseEvent:      newBaseEvent(models.EventTypeNotificationCreated, n.CreatedAt),
			NotificationID: n.ID,
			Target:         n.Target.String(),
			Title:          n.Title,
			Type:           n.Type,
		}
		if err := publisher.PublishNotificationCreated(ctx, event); err != nil {
			publishFailed(logger, event.EventType, err)
		}
	}
}

func publishFailed(logger *zap.Logger, eventType string, err error) {
	util.EventsPublishFailed.WithLabelValues(eventType).Inc()
	logger.Error("Failed to publish event",
		zap.String("event_type", eventType),
		zap.Error(err))
}
