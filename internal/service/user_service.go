package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sales-flow/internal/models"
	"sales-flow/internal/store"
	"sales-flow/internal/util"
	"sales-flow/internal/workflow"

	"go.uber.org/zap"
)

// UserService handles the login session and account administration
type UserService struct {
	store  *store.Store
	hasher PasswordHasher
	env    workflow.Env
	logger *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(store *store.Store, hasher PasswordHasher) *UserService {
	return &UserService{
		store:  store,
		hasher: hasher,
		env:    defaultEnv(),
		logger: util.GetLogger(),
	}
}

// NewUserRequest is the admin form for creating an account
type NewUserRequest struct {
	Username string      `json:"username"`
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

// Login checks the credentials and makes the user the current session user.
// Usernames match case-insensitively.
func (s *UserService) Login(ctx context.Context, username, password string) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "UserService.Login")
	defer span.End()

	username = strings.TrimSpace(username)

	var (
		user  models.User
		found bool
	)
	s.store.View(func(state *models.State) {
		for _, u := range state.Users {
			if strings.EqualFold(u.Username, username) {
				user, found = u, true
				return
			}
		}
	})

	// bcrypt runs outside the store lock
	if !found || !s.hasher.Verify(user.PasswordHash, password) {
		util.LoginsTotal.WithLabelValues("failed").Inc()
		s.logger.Warn("Login failed", zap.String("username", username))
		return nil, models.ErrInvalidCredentials
	}

	err := s.store.Update(ctx, func(state *models.State) error {
		i := state.FindUser(user.ID)
		if i < 0 {
			return models.ErrInvalidCredentials
		}
		current := state.Users[i]
		state.CurrentUser = &current
		user = current
		return nil
	})
	if err != nil {
		util.LoginsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	util.LoginsTotal.WithLabelValues("ok").Inc()
	s.logger.Info("User logged in",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)))
	return &user, nil
}

// Logout clears the session user
func (s *UserService) Logout(ctx context.Context) error {
	ctx, span := util.StartSpan(ctx, "UserService.Logout")
	defer span.End()

	return s.store.Update(ctx, func(state *models.State) error {
		state.CurrentUser = nil
		return nil
	})
}

// CurrentUser returns the session user, read fresh from the user list so
// a deleted account ends its session.
func (s *UserService) CurrentUser() (*models.User, error) {
	var (
		user  models.User
		found bool
	)
	s.store.View(func(state *models.State) {
		if state.CurrentUser == nil {
			return
		}
		if i := state.FindUser(state.CurrentUser.ID); i >= 0 {
			user, found = state.Users[i], true
		}
	})
	if !found {
		return nil, models.ErrNotAuthenticated
	}
	return &user, nil
}

// ListUsers returns every account
func (s *UserService) ListUsers(actor models.User) ([]models.User, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}

	var out []models.User
	s.store.View(func(state *models.State) {
		out = append(make([]models.User, 0, len(state.Users)), state.Users...)
	})
	return out, nil
}

// AddUser creates an account. The username is stored lower case and must
// be unique; an empty password falls back to the default one.
func (s *UserService) AddUser(ctx context.Context, actor models.User, req NewUserRequest) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "UserService.AddUser")
	defer span.End()

	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}

	username := strings.ToLower(strings.TrimSpace(req.Username))
	name := strings.TrimSpace(req.Name)
	if username == "" || name == "" {
		return nil, fmt.Errorf("%w: username and name are required", models.ErrInvalidInput)
	}
	if !req.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", models.ErrInvalidInput, req.Role)
	}

	password := req.Password
	if password == "" {
		password = store.DefaultPassword
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, models.ErrInvalidInput) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           s.env.NewID("U"),
		Username:     username,
		Name:         name,
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
		Role:         req.Role,
	}

	err = s.store.Update(ctx, func(state *models.State) error {
		for _, u := range state.Users {
			if strings.EqualFold(u.Username, username) {
				return fmt.Errorf("%w: username %s is taken", models.ErrConflict, username)
			}
		}
		state.Users = append(state.Users, user)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("User created",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)))
	return &user, nil
}

// DeleteUser removes an account. Admins cannot delete their own account.
func (s *UserService) DeleteUser(ctx context.Context, actor models.User, id string) error {
	ctx, span := util.StartSpan(ctx, "UserService.DeleteUser")
	defer span.End()

	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return err
	}
	if id == actor.ID {
		return fmt.Errorf("%w: cannot delete the signed in account", models.ErrConflict)
	}

	err := s.store.Update(ctx, func(state *models.State) error {
		i := state.FindUser(id)
		if i < 0 {
			return fmt.Errorf("%w: %s", models.ErrUserNotFound, id)
		}
		state.Users = append(state.Users[:i], state.Users[i+1:]...)
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("User deleted", zap.String("user_id", id))
	return nil
}

// ResetPassword sets a new password for an account. The confirmation must
// match.
func (s *UserService) ResetPassword(ctx context.Context, actor models.User, id, password, confirm string) error {
	ctx, span := util.StartSpan(ctx, "UserService.ResetPassword")
	defer span.End()

	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return err
	}
	if password == "" {
		return fmt.Errorf("%w: password is required", models.ErrInvalidInput)
	}
	if password != confirm {
		return fmt.Errorf("%w: passwords do not match", models.ErrInvalidInput)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, models.ErrInvalidInput) {
			return err
		}
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = s.store.Update(ctx, func(state *models.State) error {
		i := state.FindUser(id)
		if i < 0 {
			return fmt.Errorf("%w: %s", models.ErrUserNotFound, id)
		}
		state.Users[i].PasswordHash = hash
		if state.CurrentUser != nil && state.CurrentUser.ID == id {
			state.CurrentUser.PasswordHash = hash
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Password reset", zap.String("user_id", id))
	return nil
}
