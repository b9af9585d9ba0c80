package service

import (
	"context"

	"sales-flow/internal/models"
	"sales-flow/internal/store"
	"sales-flow/internal/util"
	"sales-flow/internal/workflow"

	"go.uber.org/zap"
)

// NotificationService exposes each user's notification feed
type NotificationService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(store *store.Store) *NotificationService {
	return &NotificationService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// List returns the notifications addressed to user, newest first
func (s *NotificationService) List(user models.User) []models.Notification {
	var out []models.Notification
	s.store.View(func(state *models.State) {
		out = workflow.VisibleTo(user, state.Notifications)
	})
	return out
}

// UnreadCount returns the badge count for user
func (s *NotificationService) UnreadCount(user models.User) int {
	var n int
	s.store.View(func(state *models.State) {
		n = workflow.UnreadCount(user, state.Notifications)
	})
	return n
}

// MarkAllRead marks user's notifications read and reports how many changed.
// Calling it again changes nothing.
func (s *NotificationService) MarkAllRead(ctx context.Context, user models.User) (int, error) {
	ctx, span := util.StartSpan(ctx, "NotificationService.MarkAllRead")
	defer span.End()

	var changed int
	err := s.store.Update(ctx, func(state *models.State) error {
		state.Notifications, changed = workflow.MarkAllRead(user, state.Notifications)
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Debug("Notifications marked read",
		zap.String("user_id", user.ID),
		zap.Int("changed", changed))
	return changed, nil
}
