// Package domain defines the canonical service interfaces shared across API
// layers. Consumers should depend on these interfaces rather than
// re-declaring equivalent ones.
package domain

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fvnks/konecte.cl-sub001/internal/models"
)

// VisitRequestService creates new visits.
type VisitRequestService interface {
	ProposeVisit(ctx context.Context, req models.ProposeVisitRequest) (*models.Visit, error)
	AdminScheduleVisit(ctx context.Context, req models.AdminScheduleVisitRequest) (*models.Visit, error)
}

// VisitActionService advances a visit's lifecycle on behalf of a participant
// or an admin.
type VisitActionService interface {
	ApplyAction(ctx context.Context, visitID uuid.UUID, req models.ApplyActionRequest) (*models.Visit, error)
}

// VisitQueryService defines the read-only operations.
type VisitQueryService interface {
	GetVisit(ctx context.Context, visitID uuid.UUID) (*models.Visit, error)
	ListVisitsForUser(ctx context.Context, userID string) ([]models.Visit, error)
	ListVisitsForProperty(ctx context.Context, propertyID string) ([]models.Visit, error)
	ListVisitsForAdmin(ctx context.Context, opts models.AdminListOpts) ([]models.Visit, error)
	BookedSlots(ctx context.Context, propertyID string, day time.Time) ([]time.Time, error)
}

// Notifier receives transition events, fire-and-forget. Failures are logged
// and never affect the transition result.
type Notifier interface {
	NotifyTransition(ctx context.Context, evt models.TransitionEvent) error
}
