package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"sales-flow/internal/auth"
	"sales-flow/internal/models"
	"sales-flow/internal/store"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type recordingPublisher struct {
	mu        sync.Mutex
	err       error
	submitted []*models.OrderSubmittedEvent
	changed   []*models.OrderStatusChangedEvent
	notified  []*models.NotificationCreatedEvent
	imports   []*models.ImportCompletedEvent
}

func (p *recordingPublisher) PublishOrderSubmitted(_ context.Context, e *models.OrderSubmittedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.submitted = append(p.submitted, e)
	return p.err
}

func (p *recordingPublisher) PublishOrderStatusChanged(_ context.Context, e *models.OrderStatusChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changed = append(p.changed, e)
	return p.err
}

func (p *recordingPublisher) PublishNotificationCreated(_ context.Context, e *models.NotificationCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notified = append(p.notified, e)
	return p.err
}

func (p *recordingPublisher) PublishImportCompleted(_ context.Context, e *models.ImportCompletedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.imports = append(p.imports, e)
	return p.err
}

type fixture struct {
	store     *store.Store
	publisher *recordingPublisher
	orders    *OrderService
	notifs    *NotificationService
	catalog   *CatalogService
	users     *UserService

	admin, agus, tedy, spv, manager models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	hasher := auth.NewHasher(bcrypt.MinCost)
	s, err := store.Open(context.Background(), store.NewMemoryPersister(), "test_state", func() (models.State, error) {
		return store.Seed(hasher, time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC))
	})
	require.NoError(t, err)

	pub := &recordingPublisher{}
	f := &fixture{
		store:     s,
		publisher: pub,
		orders:    NewOrderService(s, pub),
		notifs:    NewNotificationService(s),
		catalog:   NewCatalogService(s, pub),
		users:     NewUserService(s, hasher),
	}

	snap := s.Snapshot()
	byID := make(map[string]models.User)
	for _, u := range snap.Users {
		byID[u.ID] = u
	}
	f.admin, f.agus, f.tedy, f.spv, f.manager = byID["U01"], byID["U02"], byID["U03"], byID["U04"], byID["U05"]
	return f
}
