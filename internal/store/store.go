package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sales-flow/internal/models"
	"sales-flow/internal/util"

	"go.uber.org/zap"
)

// Persister saves and loads the state document under a key
type Persister interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, document []byte) error
	Close() error
}

// Store holds the whole application state. Every mutation goes through
// Update, which works on a copy and only swaps it in once persisted.
type Store struct {
	mu        sync.Mutex
	state     models.State
	persister Persister
	key       string
	logger    *zap.Logger
}

// Open loads the document stored under key, or bootstraps it with seed
// when the key is absent.
func Open(ctx context.Context, persister Persister, key string, seed func() (models.State, error)) (*Store, error) {
	s := &Store{
		persister: persister,
		key:       key,
		logger:    util.GetLogger(),
	}

	data, found, err := persister.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load state %q: %w", key, err)
	}

	if found {
		state, err := Decode(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode state %q: %w", key, err)
		}
		s.state = state
		s.logger.Info("State loaded",
			zap.String("key", key),
			zap.Int("orders", len(state.Orders)),
			zap.Int("notifications", len(state.Notifications)))
		return s, nil
	}

	state, err := seed()
	if err != nil {
		return nil, fmt.Errorf("failed to build seed state: %w", err)
	}
	if err := s.save(ctx, state); err != nil {
		return nil, err
	}
	s.state = state
	s.logger.Info("State bootstrapped from seed", zap.String("key", key))
	return s, nil
}

// Snapshot returns a deep copy of the current state
func (s *Store) Snapshot() models.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.state)
}

// View runs fn against the current state under the lock. fn must not
// modify or retain the state.
func (s *Store) View(fn func(state *models.State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

// Update applies fn to a copy of the state, persists the copy and makes it
// current. If fn or the save fails the current state is left untouched.
func (s *Store) Update(ctx context.Context, fn func(state *models.State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := clone(s.state)
	if err := fn(&next); err != nil {
		return err
	}
	if err := s.save(ctx, next); err != nil {
		return err
	}
	s.state = next
	return nil
}

// Close closes the underlying persister
func (s *Store) Close() error {
	return s.persister.Close()
}

func (s *Store) save(ctx context.Context, state models.State) error {
	start := time.Now()
	defer func() {
		util.StatePersistLatency.Observe(time.Since(start).Seconds())
	}()

	data, err := Encode(state)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := s.persister.Save(ctx, s.key, data); err != nil {
		return fmt.Errorf("failed to persist state %q: %w", s.key, err)
	}
	return nil
}

func clone(src models.State) models.State {
	dst := models.State{
		Users:         append(make([]models.User, 0, len(src.Users)), src.Users...),
		SKUs:          append(make([]models.SKU, 0, len(src.SKUs)), src.SKUs...),
		Orders:        make([]models.Order, 0, len(src.Orders)),
		Returns:       append(make([]models.ReturnRecord, 0, len(src.Returns)), src.Returns...),
		Notifications: append(make([]models.Notification, 0, len(src.Notifications)), src.Notifications...),
	}
	if src.CurrentUser != nil {
		u := *src.CurrentUser
		dst.CurrentUser = &u
	}
	for _, o := range src.Orders {
		o.Items = append(make([]models.OrderItem, 0, len(o.Items)), o.Items...)
		dst.Orders = append(dst.Orders, o)
	}
	return dst
}
