package models

import (
	"encoding/json"
	"fmt"
	"time"
)

type targetKind uint8

const (
	targetNone targetKind = iota
	targetUser
	targetRole
)

// Target addresses a notification either to a single user or to every user
// holding a role. The zero Target addresses nobody.
type Target struct {
	kind   targetKind
	userID string
	role   Role
}

// ByUser addresses a single user id
func ByUser(userID string) Target {
	return Target{kind: targetUser, userID: userID}
}

// ByRole addresses every user with the role
func ByRole(role Role) Target {
	return Target{kind: targetRole, role: role}
}

// UserID returns the addressed user id and whether the target is user based
func (t Target) UserID() (string, bool) {
	return t.userID, t.kind == targetUser
}

// Role returns the addressed role and whether the target is role based
func (t Target) Role() (Role, bool) {
	return t.role, t.kind == targetRole
}

// Matches reports whether u is a recipient
func (t Target) Matches(u User) bool {
	switch t.kind {
	case targetUser:
		return t.userID != "" && t.userID == u.ID
	case targetRole:
		return t.role != "" && t.role == u.Role
	}
	return false
}

func (t Target) String() string {
	switch t.kind {
	case targetUser:
		return "user:" + t.userID
	case targetRole:
		return "role:" + string(t.role)
	}
	return "none"
}

type targetJSON struct {
	ToUserID string `json:"toUserId,omitempty"`
	ToRole   Role   `json:"toRole,omitempty"`
}

func (t Target) fields() (targetJSON, error) {
	switch t.kind {
	case targetUser:
		return targetJSON{ToUserID: t.userID}, nil
	case targetRole:
		return targetJSON{ToRole: t.role}, nil
	}
	return targetJSON{}, fmt.Errorf("notification target is empty")
}

func (raw targetJSON) target() (Target, error) {
	switch {
	case raw.ToUserID != "" && raw.ToRole != "":
		return Target{}, fmt.Errorf("notification target sets both toUserId and toRole")
	case raw.ToUserID != "":
		return ByUser(raw.ToUserID), nil
	case raw.ToRole != "":
		if !raw.ToRole.Valid() {
			return Target{}, fmt.Errorf("notification target has unknown role %q", raw.ToRole)
		}
		return ByRole(raw.ToRole), nil
	}
	return Target{}, fmt.Errorf("notification target sets neither toUserId nor toRole")
}

// notificationJSON is the stored layout: the target keys sit next to the
// other notification fields.
type notificationJSON struct {
	ID string `json:"id"`
	targetJSON
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	IsRead    bool             `json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`
}

func (n Notification) MarshalJSON() ([]byte, error) {
	raw, err := n.Target.fields()
	if err != nil {
		return nil, fmt.Errorf("notification %s: %w", n.ID, err)
	}
	return json.Marshal(notificationJSON{
		ID:         n.ID,
		targetJSON: raw,
		Title:      n.Title,
		Message:    n.Message,
		Type:       n.Type,
		IsRead:     n.IsRead,
		CreatedAt:  n.CreatedAt,
	})
}

func (n *Notification) UnmarshalJSON(data []byte) error {
	var raw notificationJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	target, err := raw.targetJSON.target()
	if err != nil {
		return fmt.Errorf("notification %s: %w", raw.ID, err)
	}
	*n = Notification{
		ID:        raw.ID,
		Target:    target,
		Title:     raw.Title,
		Message:   raw.Message,
		Type:      raw.Type,
		IsRead:    raw.IsRead,
		CreatedAt: raw.CreatedAt,
	}
	return nil
}
