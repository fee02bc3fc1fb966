package api_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fvnks/konecte.cl-sub001/internal/models"
)

// mockRequestService returns configured responses for visit creation.
type mockRequestService struct {
	proposeFn       func(ctx context.Context, req models.ProposeVisitRequest) (*models.Visit, error)
	adminScheduleFn func(ctx context.Context, req models.AdminScheduleVisitRequest) (*models.Visit, error)
}

func (m *mockRequestService) ProposeVisit(ctx context.Context, req models.ProposeVisitRequest) (*models.Visit, error) {
	return m.proposeFn(ctx, req)
}

func (m *mockRequestService) AdminScheduleVisit(ctx context.Context, req models.AdminScheduleVisitRequest) (*models.Visit, error) {
	return m.adminScheduleFn(ctx, req)
}

// mockActionService returns configured responses for lifecycle actions.
type mockActionService struct {
	applyFn func(ctx context.Context, visitID uuid.UUID, req models.ApplyActionRequest) (*models.Visit, error)
}

func (m *mockActionService) ApplyAction(ctx context.Context, visitID uuid.UUID, req models.ApplyActionRequest) (*models.Visit, error) {
	return m.applyFn(ctx, visitID, req)
}

// mockQueryService returns configured responses for reads.
type mockQueryService struct {
	getFn             func(ctx context.Context, visitID uuid.UUID) (*models.Visit, error)
	listForUserFn     func(ctx context.Context, userID string) ([]models.Visit, error)
	listForPropertyFn func(ctx context.Context, propertyID string) ([]models.Visit, error)
	listForAdminFn    func(ctx context.Context, opts models.AdminListOpts) ([]models.Visit, error)
	bookedSlotsFn     func(ctx context.Context, propertyID string, day time.Time) ([]time.Time, error)
}

func (m *mockQueryService) GetVisit(ctx context.Context, visitID uuid.UUID) (*models.Visit, error) {
	return m.getFn(ctx, visitID)
}

func (m *mockQueryService) ListVisitsForUser(ctx context.Context, userID string) ([]models.Visit, error) {
	return m.listForUserFn(ctx, userID)
}

func (m *mockQueryService) ListVisitsForProperty(ctx context.Context, propertyID string) ([]models.Visit, error) {
	return m.listForPropertyFn(ctx, propertyID)
}

func (m *mockQueryService) ListVisitsForAdmin(ctx context.Context, opts models.AdminListOpts) ([]models.Visit, error) {
	return m.listForAdminFn(ctx, opts)
}

func (m *mockQueryService) BookedSlots(ctx context.Context, propertyID string, day time.Time) ([]time.Time, error) {
	return m.bookedSlotsFn(ctx, propertyID, day)
}
