package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetMatches(t *testing.T) {
	sales := User{ID: "U02", Role: RoleSales}
	spv := User{ID: "U04", Role: RoleSPV}

	assert.True(t, ByUser("U02").Matches(sales))
	assert.False(t, ByUser("U02").Matches(spv))
	assert.True(t, ByRole(RoleSPV).Matches(spv))
	assert.False(t, ByRole(RoleSPV).Matches(sales))
	assert.False(t, Target{}.Matches(sales), "zero target addresses nobody")
}

func TestNotificationJSONFlattensTarget(t *testing.T) {
	at := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	data, err := json.Marshal(Notification{ID: "N1", Target: ByRole(RoleManager), Type: NotificationInfo, CreatedAt: at})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"N1","toRole":"MANAGER","title":"","message":"","type":"INFO","isRead":false,"createdAt":"2024-05-01T08:00:00Z"}`, string(data))

	data, err = json.Marshal(Notification{ID: "N2", Target: ByUser("U03"), Type: NotificationAlert, IsRead: true, CreatedAt: at})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"toUserId":"U03"`)
	assert.NotContains(t, string(data), "toRole")

	var n Notification
	require.NoError(t, json.Unmarshal(data, &n))
	id, ok := n.Target.UserID()
	assert.True(t, ok)
	assert.Equal(t, "U03", id)
	assert.True(t, n.IsRead)
	assert.Equal(t, at, n.CreatedAt)
}

func TestNotificationJSONRejectsBadTarget(t *testing.T) {
	var n Notification
	assert.Error(t, json.Unmarshal([]byte(`{"id":"n","toUserId":"U03","toRole":"SPV"}`), &n))
	assert.Error(t, json.Unmarshal([]byte(`{"id":"n"}`), &n))
	assert.Error(t, json.Unmarshal([]byte(`{"id":"n","toRole":"JANITOR"}`), &n))

	_, err := json.Marshal(Notification{ID: "n"})
	assert.Error(t, err)
}

func TestPrependNotifications(t *testing.T) {
	s := &State{}
	s.PrependNotifications(Notification{ID: "a"})
	s.PrependNotifications(Notification{ID: "b"}, Notification{ID: "c"})

	ids := make([]string, 0, len(s.Notifications))
	for _, n := range s.Notifications {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"c", "b", "a"}, ids)
}
