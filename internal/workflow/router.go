package workflow

import "sales-flow/internal/models"

// SyncNotification is broadcast to sales after the admin refreshes the catalog
func SyncNotification(env Env) models.Notification {
	return newNotification(env, models.ByRole(models.RoleSales), models.NotificationInfo,
		"Inventory Synchronized",
		"Admin has updated the stock and returns catalog. Please verify your dashboard.")
}

func newNotification(env Env, target models.Target, kind models.NotificationType, title, message string) models.Notification {
	return models.Notification{
		ID:        env.NewID("NT"),
		Target:    target,
		Title:     title,
		Message:   message,
		Type:      kind,
		CreatedAt: env.Now(),
	}
}

// VisibleTo returns the notifications addressed to user, keeping the
// newest-first order of all.
func VisibleTo(user models.User, all []models.Notification) []models.Notification {
	visible := make([]models.Notification, 0)
	for _, n := range all {
		if n.Target.Matches(user) {
			visible = append(visible, n)
		}
	}
	return visible
}

// UnreadCount counts the unread notifications addressed to user
func UnreadCount(user models.User, all []models.Notification) int {
	count := 0
	for _, n := range all {
		if !n.IsRead && n.Target.Matches(user) {
			count++
		}
	}
	return count
}

// MarkAllRead returns a copy of all with every notification addressed to
// user marked read, plus how many flipped.
func MarkAllRead(user models.User, all []models.Notification) ([]models.Notification, int) {
	out := make([]models.Notification, len(all))
	changed := 0
	for i, n := range all {
		if !n.IsRead && n.Target.Matches(user) {
			n.IsRead = true
			changed++
		}
		out[i] = n
	}
	return out, changed
}
