// Package service provides business logic between API handlers and data stores.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fvnks/konecte.cl-sub001/internal/models"
	"github.com/fvnks/konecte.cl-sub001/internal/store"
)

// VisitStore is the data-access interface the services depend on.
type VisitStore interface {
	CreateVisit(ctx context.Context, v *models.Visit, strictSlot bool) (*models.Visit, error)
	GetVisit(ctx context.Context, visitID uuid.UUID) (*models.Visit, error)
	ListVisitsForUser(ctx context.Context, userID string) ([]models.Visit, error)
	ListVisitsForProperty(ctx context.Context, propertyID string) ([]models.Visit, error)
	ListVisitsForAdmin(ctx context.Context, opts models.AdminListOpts) ([]models.Visit, error)
	ApplyTransition(ctx context.Context, visitID uuid.UUID, upd store.TransitionUpdate) (*models.Visit, error)
}

// SlotReader answers slot occupancy queries.
type SlotReader interface {
	BookedSlots(ctx context.Context, propertyID string, day time.Time) ([]time.Time, error)
}

// Directory resolves the external property and user collaborators.
type Directory interface {
	OwnerOf(ctx context.Context, propertyID string) (string, error)
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// TransitionEnqueuer enqueues transition events for asynchronous dispatch.
type TransitionEnqueuer interface {
	Enqueue(evt models.TransitionEvent)
}
