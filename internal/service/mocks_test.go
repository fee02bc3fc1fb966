package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fvnks/konecte.cl-sub001/internal/models"
	"github.com/fvnks/konecte.cl-sub001/internal/store"
)

// mockVisitStore records calls and returns configured responses.
type mockVisitStore struct {
	mu      sync.Mutex
	calls   []string
	updates []store.TransitionUpdate

	createVisit           func(ctx context.Context, v *models.Visit, strictSlot bool) (*models.Visit, error)
	getVisit              func(ctx context.Context, visitID uuid.UUID) (*models.Visit, error)
	listVisitsForUser     func(ctx context.Context, userID string) ([]models.Visit, error)
	listVisitsForProperty func(ctx context.Context, propertyID string) ([]models.Visit, error)
	listVisitsForAdmin    func(ctx context.Context, opts models.AdminListOpts) ([]models.Visit, error)
	applyTransition       func(ctx context.Context, visitID uuid.UUID, upd store.TransitionUpdate) (*models.Visit, error)
}

func (m *mockVisitStore) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockVisitStore) CreateVisit(ctx context.Context, v *models.Visit, strictSlot bool) (*models.Visit, error) {
	m.record("CreateVisit")
	return m.createVisit(ctx, v, strictSlot)
}

func (m *mockVisitStore) GetVisit(ctx context.Context, visitID uuid.UUID) (*models.Visit, error) {
	m.record("GetVisit")
	return m.getVisit(ctx, visitID)
}

func (m *mockVisitStore) ListVisitsForUser(ctx context.Context, userID string) ([]models.Visit, error) {
	m.record("ListVisitsForUser")
	return m.listVisitsForUser(ctx, userID)
}

func (m *mockVisitStore) ListVisitsForProperty(ctx context.Context, propertyID string) ([]models.Visit, error) {
	m.record("ListVisitsForProperty")
	return m.listVisitsForProperty(ctx, propertyID)
}

func (m *mockVisitStore) ListVisitsForAdmin(ctx context.Context, opts models.AdminListOpts) ([]models.Visit, error) {
	m.record("ListVisitsForAdmin")
	return m.listVisitsForAdmin(ctx, opts)
}

func (m *mockVisitStore) ApplyTransition(ctx context.Context, visitID uuid.UUID, upd store.TransitionUpdate) (*models.Visit, error) {
	m.mu.Lock()
	m.calls = append(m.calls, "ApplyTransition")
	m.updates = append(m.updates, upd)
	m.mu.Unlock()
	return m.applyTransition(ctx, visitID, upd)
}

func (m *mockVisitStore) lastUpdate() (store.TransitionUpdate, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.updates) == 0 {
		return store.TransitionUpdate{}, false
	}
	return m.updates[len(m.updates)-1], true
}

// mockDirectory resolves property owners and admin flags from fixed maps.
type mockDirectory struct {
	owners map[string]string
	admins map[string]bool

	ownerErr error
	adminErr error
}

func (m *mockDirectory) OwnerOf(_ context.Context, propertyID string) (string, error) {
	if m.ownerErr != nil {
		return "", m.ownerErr
	}
	owner, ok := m.owners[propertyID]
	if !ok {
		return "", models.ErrPropertyNotFound
	}
	return owner, nil
}

func (m *mockDirectory) IsAdmin(_ context.Context, userID string) (bool, error) {
	if m.adminErr != nil {
		return false, m.adminErr
	}
	return m.admins[userID], nil
}

// mockEnqueuer records enqueued transition events.
type mockEnqueuer struct {
	mu     sync.Mutex
	events []models.TransitionEvent
}

func (m *mockEnqueuer) Enqueue(evt models.TransitionEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, evt)
}

func (m *mockEnqueuer) getEvents() []models.TransitionEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]models.TransitionEvent, len(m.events))
	copy(cp, m.events)
	return cp
}

// mockNotifier records dispatched transition events for worker tests.
type mockNotifier struct {
	mu     sync.Mutex
	events []models.TransitionEvent

	err error
}

func (m *mockNotifier) NotifyTransition(_ context.Context, evt models.TransitionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, evt)
	return m.err
}

func (m *mockNotifier) getEvents() []models.TransitionEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]models.TransitionEvent, len(m.events))
	copy(cp, m.events)
	return cp
}

// fixedNow pins service clocks for deterministic slot-time validation.
func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
