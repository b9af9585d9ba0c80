package service

import (
	"context"
	"strings"
	"testing"

	"sales-flow/internal/models"
	"sales-flow/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.CurrentUser()
	assert.ErrorIs(t, err, models.ErrNotAuthenticated)

	user, err := f.users.Login(ctx, "  AGUS_Sales ", store.DefaultPassword)
	require.NoError(t, err)
	assert.Equal(t, "U02", user.ID)

	current, err := f.users.CurrentUser()
	require.NoError(t, err)
	assert.Equal(t, "Agus_sales", current.Username)

	require.NoError(t, f.users.Logout(ctx))
	_, err = f.users.CurrentUser()
	assert.ErrorIs(t, err, models.ErrNotAuthenticated)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.Login(ctx, "agus_sales", "wrong")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, err = f.users.Login(ctx, "nobody", store.DefaultPassword)
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	assert.Nil(t, f.store.Snapshot().CurrentUser)
}

func TestAddUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.users.AddUser(ctx, f.admin, NewUserRequest{
		Username: "Budi_Sales", Name: "Budi", Email: "budi@ep.com", Role: models.RoleSales,
	})
	require.NoError(t, err)
	assert.Equal(t, "budi_sales", user.Username)
	assert.Regexp(t, `^U-[0-9A-F]{12}$`, user.ID)
	assert.NotEqual(t, store.DefaultPassword, user.PasswordHash)

	_, err = f.users.Login(ctx, "budi_sales", store.DefaultPassword)
	require.NoError(t, err)

	_, err = f.users.AddUser(ctx, f.admin, NewUserRequest{Username: "BUDI_SALES", Name: "Other", Role: models.RoleSPV})
	assert.ErrorIs(t, err, models.ErrConflict)

	_, err = f.users.AddUser(ctx, f.admin, NewUserRequest{Username: "x", Name: "x", Role: "ROOT"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = f.users.AddUser(ctx, f.spv, NewUserRequest{Username: "y", Name: "y", Role: models.RoleSales})
	assert.ErrorIs(t, err, models.ErrPermissionDenied)

	_, err = f.users.AddUser(ctx, f.admin, NewUserRequest{
		Username: "long", Name: "Long", Password: strings.Repeat("p", 80), Role: models.RoleSales,
	})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.Login(ctx, "tedy_sales", store.DefaultPassword)
	require.NoError(t, err)

	require.NoError(t, f.users.DeleteUser(ctx, f.admin, "U03"))
	assert.ErrorIs(t, f.users.DeleteUser(ctx, f.admin, "U03"), models.ErrUserNotFound)
	assert.ErrorIs(t, f.users.DeleteUser(ctx, f.admin, f.admin.ID), models.ErrConflict)

	// the deleted account's session is gone too
	_, err = f.users.CurrentUser()
	assert.ErrorIs(t, err, models.ErrNotAuthenticated)

	users, err := f.users.ListUsers(f.admin)
	require.NoError(t, err)
	assert.Len(t, users, 4)
}

func TestResetPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.users.ResetPassword(ctx, f.admin, "U02", "new-secret", "typo"), models.ErrInvalidInput)
	assert.ErrorIs(t, f.users.ResetPassword(ctx, f.admin, "U02", "", ""), models.ErrInvalidInput)
	assert.ErrorIs(t, f.users.ResetPassword(ctx, f.admin, "U99", "a", "a"), models.ErrUserNotFound)

	long := strings.Repeat("p", 80)
	assert.ErrorIs(t, f.users.ResetPassword(ctx, f.admin, "U02", long, long), models.ErrInvalidInput)

	require.NoError(t, f.users.ResetPassword(ctx, f.admin, "U02", "new-secret", "new-secret"))

	_, err := f.users.Login(ctx, "agus_sales", store.DefaultPassword)
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	_, err = f.users.Login(ctx, "agus_sales", "new-secret")
	assert.NoError(t, err)
}
