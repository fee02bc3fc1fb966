package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fvnks/konecte.cl-sub001/internal/domain"
	"github.com/fvnks/konecte.cl-sub001/internal/models"
)

// Compile-time check: *QueryService must satisfy domain.VisitQueryService.
var _ domain.VisitQueryService = (*QueryService)(nil)

// QueryService serves the read-only operations (pass-throughs to the store).
type QueryService struct {
	visits VisitStore
	slots  SlotReader
}

// NewQueryService creates a QueryService.
func NewQueryService(visits VisitStore, slots SlotReader) *QueryService {
	return &QueryService{visits: visits, slots: slots}
}

// GetVisit returns a single visit by ID.
func (s *QueryService) GetVisit(ctx context.Context, visitID uuid.UUID) (*models.Visit, error) {
	return s.visits.GetVisit(ctx, visitID)
}

// ListVisitsForUser returns the visits a user participates in, as visitor or owner.
func (s *QueryService) ListVisitsForUser(ctx context.Context, userID string) ([]models.Visit, error) {
	return s.visits.ListVisitsForUser(ctx, userID)
}

// ListVisitsForProperty returns the visits recorded for a property.
func (s *QueryService) ListVisitsForProperty(ctx context.Context, propertyID string) ([]models.Visit, error) {
	return s.visits.ListVisitsForProperty(ctx, propertyID)
}

// ListVisitsForAdmin returns visits across all users with optional filtering.
func (s *QueryService) ListVisitsForAdmin(ctx context.Context, opts models.AdminListOpts) ([]models.Visit, error) {
	return s.visits.ListVisitsForAdmin(ctx, opts)
}

// BookedSlots returns the occupied slot start times for a property on a day.
func (s *QueryService) BookedSlots(ctx context.Context, propertyID string, day time.Time) ([]time.Time, error) {
	return s.slots.BookedSlots(ctx, propertyID, day)
}
