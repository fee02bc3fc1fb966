package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fvnks/konecte.cl-sub001/internal/domain"
	"github.com/fvnks/konecte.cl-sub001/internal/models"
)

// Compile-time check: *RequestService must satisfy domain.VisitRequestService.
var _ domain.VisitRequestService = (*RequestService)(nil)

// RequestService creates new visits: visitor-initiated proposals and admin
// direct schedules. The slot check runs inside the same transaction as the
// insert (see store.VisitStore.CreateVisit).
type RequestService struct {
	visits     VisitStore
	dir        Directory
	validate   *validator.Validate
	notify     TransitionEnqueuer
	log        *logrus.Logger
	strictSlot bool
	now        func() time.Time
}

// NewRequestService creates a RequestService. With strictSlot set, proposals
// for a slot occupied by any non-terminal visit are rejected up front instead
// of being resolved at confirmation time.
func NewRequestService(visits VisitStore, dir Directory, validate *validator.Validate, notify TransitionEnqueuer, log *logrus.Logger, strictSlot bool) *RequestService {
	return &RequestService{
		visits:     visits,
		dir:        dir,
		validate:   validate,
		notify:     notify,
		log:        log,
		strictSlot: strictSlot,
		now:        time.Now,
	}
}

// ProposeVisit records a visitor's request to view a property. The visit
// starts in pending_confirmation with no confirmed time.
func (s *RequestService) ProposeVisit(ctx context.Context, req models.ProposeVisitRequest) (*models.Visit, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	if err := validateSlotTime(req.ProposedAt, s.now()); err != nil {
		return nil, err
	}

	ownerID, err := s.dir.OwnerOf(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}

	if ownerID == req.VisitorID {
		return nil, models.ErrVisitorIsOwner
	}

	visit := &models.Visit{
		ID:           uuid.New(),
		PropertyID:   req.PropertyID,
		VisitorID:    req.VisitorID,
		OwnerID:      ownerID,
		ProposedAt:   req.ProposedAt.UTC(),
		Status:       models.StatusPendingConfirmation,
		VisitorNotes: req.Notes,
	}

	created, err := s.visits.CreateVisit(ctx, visit, s.strictSlot)
	if err != nil {
		return nil, fmt.Errorf("proposing visit: %w", err)
	}

	s.notify.Enqueue(creationEvent(created, req.VisitorID))

	s.log.WithFields(logrus.Fields{
		"visit_id":    created.ID,
		"property_id": created.PropertyID,
		"visitor_id":  created.VisitorID,
	}).Info("visit proposed")

	return created, nil
}

// AdminScheduleVisit creates a visit directly in confirmed state on behalf of
// both parties. The actor must hold the admin role; the owner is resolved
// from the property directory.
func (s *RequestService) AdminScheduleVisit(ctx context.Context, req models.AdminScheduleVisitRequest) (*models.Visit, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	isAdmin, err := s.dir.IsAdmin(ctx, req.ActorID)
	if err != nil {
		return nil, fmt.Errorf("resolving scheduling actor: %w", err)
	}

	if !isAdmin {
		return nil, models.ErrForbidden
	}

	if err := validateSlotTime(req.VisitAt, s.now()); err != nil {
		return nil, err
	}

	ownerID, err := s.dir.OwnerOf(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}

	if ownerID == req.VisitorID {
		return nil, models.ErrVisitorIsOwner
	}

	visitAt := req.VisitAt.UTC()
	visit := &models.Visit{
		ID:             uuid.New(),
		PropertyID:     req.PropertyID,
		VisitorID:      req.VisitorID,
		OwnerID:        ownerID,
		ProposedAt:     visitAt,
		ConfirmedAt:    &visitAt,
		Status:         models.StatusConfirmed,
		CreatedByAdmin: true,
	}

	created, err := s.visits.CreateVisit(ctx, visit, s.strictSlot)
	if err != nil {
		return nil, fmt.Errorf("scheduling visit: %w", err)
	}

	s.notify.Enqueue(creationEvent(created, req.ActorID))

	s.log.WithFields(logrus.Fields{
		"visit_id":    created.ID,
		"property_id": created.PropertyID,
		"visitor_id":  created.VisitorID,
		"actor_id":    req.ActorID,
	}).Info("visit scheduled by admin")

	return created, nil
}

// creationEvent builds the transition event for a freshly created visit.
// OldStatus stays empty: there was no prior state.
func creationEvent(v *models.Visit, actorID string) models.TransitionEvent {
	return models.TransitionEvent{
		VisitID:    v.ID,
		PropertyID: v.PropertyID,
		VisitorID:  v.VisitorID,
		OwnerID:    v.OwnerID,
		NewStatus:  v.Status,
		ActorID:    actorID,
		OccurredAt: v.CreatedAt,
	}
}

// validateSlotTime checks that a requested visit time lands exactly on a slot
// boundary and lies in the future.
func validateSlotTime(t time.Time, now time.Time) error {
	if !models.AlignedToSlot(t) {
		return models.ErrTimeNotSlotAligned
	}

	if !t.After(now) {
		return models.ErrTimeInPast
	}

	return nil
}
