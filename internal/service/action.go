package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fvnks/konecte.cl-sub001/internal/domain"
	"github.com/fvnks/konecte.cl-sub001/internal/lifecycle"
	"github.com/fvnks/konecte.cl-sub001/internal/metrics"
	"github.com/fvnks/konecte.cl-sub001/internal/models"
	"github.com/fvnks/konecte.cl-sub001/internal/store"
)

// Compile-time check: *ActionService must satisfy domain.VisitActionService.
var _ domain.VisitActionService = (*ActionService)(nil)

// ActionService is the single write path for visit transitions. It resolves
// the actor's role, consults the state machine, and performs a guarded
// conditional update; a lost race is retried once before surfacing
// ErrTransitionConflict.
type ActionService struct {
	visits   VisitStore
	dir      Directory
	validate *validator.Validate
	notify   TransitionEnqueuer
	log      *logrus.Logger
	now      func() time.Time
}

// NewActionService creates an ActionService.
func NewActionService(visits VisitStore, dir Directory, validate *validator.Validate, notify TransitionEnqueuer, log *logrus.Logger) *ActionService {
	return &ActionService{
		visits:   visits,
		dir:      dir,
		validate: validate,
		notify:   notify,
		log:      log,
		now:      time.Now,
	}
}

// ApplyAction advances the visit's lifecycle. Exactly one of success or a
// definitive error is returned; once the conditional write begins it runs to
// completion.
func (s *ActionService) ApplyAction(ctx context.Context, visitID uuid.UUID, req models.ApplyActionRequest) (*models.Visit, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	if !req.Action.Valid() {
		return nil, models.ErrUnknownAction
	}

	visit, err := s.visits.GetVisit(ctx, visitID)
	if err != nil {
		return nil, err
	}

	role, err := s.resolveRole(ctx, visit, req.ActorID)
	if err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		next, err := lifecycle.Next(visit.Status, req.Action, role)
		if err != nil {
			return nil, err
		}

		upd, err := s.buildUpdate(visit, role, req, next)
		if err != nil {
			return nil, err
		}

		updated, err := s.visits.ApplyTransition(ctx, visitID, upd)

		if errors.Is(err, models.ErrTransitionConflict) && attempt == 0 {
			// Lost the optimistic race: re-read and recompute the
			// transition once against the fresh state.
			visit, err = s.visits.GetVisit(ctx, visitID)
			if err != nil {
				return nil, err
			}

			continue
		}

		if err != nil {
			if errors.Is(err, models.ErrSlotConflict) {
				metrics.SlotConflictsTotal.Inc()
			}

			return nil, err
		}

		metrics.TransitionsTotal.WithLabelValues(string(req.Action), string(updated.Status)).Inc()

		s.notify.Enqueue(models.TransitionEvent{
			VisitID:    updated.ID,
			PropertyID: updated.PropertyID,
			VisitorID:  updated.VisitorID,
			OwnerID:    updated.OwnerID,
			OldStatus:  visit.Status,
			NewStatus:  updated.Status,
			ActorID:    req.ActorID,
			OccurredAt: updated.UpdatedAt,
		})

		s.log.WithFields(logrus.Fields{
			"visit_id":   updated.ID,
			"actor_id":   req.ActorID,
			"role":       role,
			"action":     req.Action,
			"old_status": visit.Status,
			"new_status": updated.Status,
		}).Info("visit transition applied")

		return updated, nil
	}
}

// resolveRole maps the actor onto the visit: participant IDs first, then the
// admin directory. Anyone else is forbidden.
func (s *ActionService) resolveRole(ctx context.Context, visit *models.Visit, actorID string) (models.Role, error) {
	if role, ok := visit.RoleOf(actorID); ok {
		return role, nil
	}

	isAdmin, err := s.dir.IsAdmin(ctx, actorID)
	if err != nil {
		return "", fmt.Errorf("resolving actor role: %w", err)
	}

	if !isAdmin {
		return "", models.ErrForbidden
	}

	return models.RoleAdmin, nil
}

// buildUpdate translates the validated action and payload into the guarded
// store update. Payload fields not permitted for the action are rejected
// rather than silently dropped.
func (s *ActionService) buildUpdate(visit *models.Visit, role models.Role, req models.ApplyActionRequest, next models.VisitStatus) (store.TransitionUpdate, error) {
	upd := store.TransitionUpdate{
		ExpectedStatus:  visit.Status,
		ExpectedVersion: visit.Version,
		NextStatus:      next,
	}

	if req.NewTime != nil && !lifecycle.CarriesNewTime(req.Action) {
		return upd, models.ErrNewTimeNotAllowed
	}

	switch req.Action {
	case models.ActionConfirmOriginal:
		confirmed := visit.ProposedAt
		upd.SetConfirmedAt = true
		upd.ConfirmedAt = &confirmed

	case models.ActionProposeNewTime:
		if req.NewTime == nil {
			return upd, models.ErrMissingNewTime
		}

		if err := validateSlotTime(*req.NewTime, s.now()); err != nil {
			return upd, err
		}

		confirmed := req.NewTime.UTC()
		upd.SetConfirmedAt = true
		upd.ConfirmedAt = &confirmed
	}

	// Rejecting a reschedule intentionally retains the stored confirmed
	// time as a record of what was turned down.

	if lifecycle.ClaimsSlot(req.Action) {
		upd.ClaimSlot = true
		upd.PropertyID = visit.PropertyID

		switch {
		case upd.SetConfirmedAt:
			upd.ClaimAt = *upd.ConfirmedAt
		case visit.ConfirmedAt != nil:
			upd.ClaimAt = *visit.ConfirmedAt
		default:
			upd.ClaimAt = visit.ProposedAt
		}
	}

	if req.Notes != nil {
		if role == models.RoleVisitor {
			upd.VisitorNotes = req.Notes
		} else {
			// Admin notes land on the owner side: the admin acts as
			// the property's delegate.
			upd.OwnerNotes = req.Notes
		}
	}

	if req.CancellationReason != nil {
		if !lifecycle.AllowsReason(req.Action) {
			return upd, models.ErrReasonNotAllowed
		}

		upd.CancellationReason = req.CancellationReason
	}

	return upd, nil
}
