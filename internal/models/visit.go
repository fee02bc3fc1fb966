// Package models defines data types for the visit scheduler.
package models

import (
	"time"

	"github.com/google/uuid"
)

// VisitStatus is the lifecycle state of a visit.
type VisitStatus string

// Visit statuses. The five statuses from cancelled_by_visitor onward are
// terminal: no action transitions a visit out of them.
const (
	StatusPendingConfirmation VisitStatus = "pending_confirmation"
	StatusConfirmed           VisitStatus = "confirmed"
	StatusRescheduledByOwner  VisitStatus = "rescheduled_by_owner"
	StatusCancelledByVisitor  VisitStatus = "cancelled_by_visitor"
	StatusCancelledByOwner    VisitStatus = "cancelled_by_owner"
	StatusCompleted           VisitStatus = "completed"
	StatusVisitorNoShow       VisitStatus = "visitor_no_show"
	StatusOwnerNoShow         VisitStatus = "owner_no_show"
)

// AllStatuses lists every valid visit status.
var AllStatuses = []VisitStatus{
	StatusPendingConfirmation,
	StatusConfirmed,
	StatusRescheduledByOwner,
	StatusCancelledByVisitor,
	StatusCancelledByOwner,
	StatusCompleted,
	StatusVisitorNoShow,
	StatusOwnerNoShow,
}

// Valid reports whether s is a known visit status.
func (s VisitStatus) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}

	return false
}

// Terminal reports whether s permits no further transitions.
func (s VisitStatus) Terminal() bool {
	switch s {
	case StatusCancelledByVisitor, StatusCancelledByOwner, StatusCompleted,
		StatusVisitorNoShow, StatusOwnerNoShow:
		return true
	default:
		return false
	}
}

// NonTerminalStatuses returns the statuses that still occupy a slot.
func NonTerminalStatuses() []VisitStatus {
	return []VisitStatus{StatusPendingConfirmation, StatusConfirmed, StatusRescheduledByOwner}
}

// VisitAction is a lifecycle action requested by a participant or an admin.
type VisitAction string

// Visit actions.
const (
	ActionConfirmOriginal   VisitAction = "confirm_original"
	ActionProposeNewTime    VisitAction = "propose_new_time"
	ActionReject            VisitAction = "reject"
	ActionCancel            VisitAction = "cancel"
	ActionCancelOwn         VisitAction = "cancel_own"
	ActionAccept            VisitAction = "accept"
	ActionMarkCompleted     VisitAction = "mark_completed"
	ActionMarkVisitorNoShow VisitAction = "mark_visitor_no_show"
	ActionMarkOwnerNoShow   VisitAction = "mark_owner_no_show"
	ActionForceCancel       VisitAction = "force_cancel"
	ActionForceComplete     VisitAction = "force_complete"
)

// AllActions lists every valid visit action.
var AllActions = []VisitAction{
	ActionConfirmOriginal,
	ActionProposeNewTime,
	ActionReject,
	ActionCancel,
	ActionCancelOwn,
	ActionAccept,
	ActionMarkCompleted,
	ActionMarkVisitorNoShow,
	ActionMarkOwnerNoShow,
	ActionForceCancel,
	ActionForceComplete,
}

// Valid reports whether a is a known visit action.
func (a VisitAction) Valid() bool {
	for _, known := range AllActions {
		if a == known {
			return true
		}
	}

	return false
}

// Role is the capacity in which an actor touches a visit, resolved once per
// call from the visit's participant IDs and the user directory.
type Role string

// Actor roles.
const (
	RoleVisitor Role = "visitor"
	RoleOwner   Role = "owner"
	RoleAdmin   Role = "admin"
)

// AllRoles lists every actor role.
var AllRoles = []Role{RoleVisitor, RoleOwner, RoleAdmin}

// SlotGranularity is the fixed width of a bookable time slot. Visit times
// must land exactly on a slot boundary, so overlap checks reduce to equality.
const SlotGranularity = time.Hour

// AlignedToSlot reports whether t falls exactly on a slot boundary.
func AlignedToSlot(t time.Time) bool {
	return t.Truncate(SlotGranularity).Equal(t)
}

// Visit is a scheduled or proposed in-person viewing of a property.
type Visit struct {
	ID                 uuid.UUID   `json:"id"`
	PropertyID         string      `json:"property_id"`
	VisitorID          string      `json:"visitor_id"`
	OwnerID            string      `json:"owner_id"`
	ProposedAt         time.Time   `json:"proposed_at"`
	ConfirmedAt        *time.Time  `json:"confirmed_at,omitempty"`
	Status             VisitStatus `json:"status"`
	VisitorNotes       *string     `json:"visitor_notes,omitempty"`
	OwnerNotes         *string     `json:"owner_notes,omitempty"`
	CancellationReason *string     `json:"cancellation_reason,omitempty"`
	CreatedByAdmin     bool        `json:"created_by_admin"`
	Version            int         `json:"-"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// EffectiveAt returns the time the visit occupies: the confirmed time when
// one is set, the visitor's proposed time otherwise.
func (v *Visit) EffectiveAt() time.Time {
	if v.ConfirmedAt != nil {
		return *v.ConfirmedAt
	}

	return v.ProposedAt
}

// RoleOf resolves userID against the visit's participants. The admin role is
// never inferred here; callers consult the user directory for that.
func (v *Visit) RoleOf(userID string) (Role, bool) {
	switch userID {
	case v.VisitorID:
		return RoleVisitor, true
	case v.OwnerID:
		return RoleOwner, true
	default:
		return "", false
	}
}

// ProposeVisitRequest is the payload for a visitor-initiated proposal.
// The property's owner is resolved from the property directory.
type ProposeVisitRequest struct {
	PropertyID string    `json:"property_id" validate:"required,max=64"`
	VisitorID  string    `json:"visitor_id"  validate:"required,max=64"`
	ProposedAt time.Time `json:"proposed_at" validate:"required"`
	Notes      *string   `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// AdminScheduleVisitRequest is the payload for an admin creating a visit
// directly in confirmed state.
type AdminScheduleVisitRequest struct {
	ActorID    string    `json:"actor_id"    validate:"required,max=64"`
	PropertyID string    `json:"property_id" validate:"required,max=64"`
	VisitorID  string    `json:"visitor_id"  validate:"required,max=64"`
	VisitAt    time.Time `json:"visit_at"    validate:"required"`
}

// ApplyActionRequest is the payload for advancing a visit's lifecycle.
type ApplyActionRequest struct {
	ActorID            string      `json:"actor_id" validate:"required,max=64"`
	Action             VisitAction `json:"action"   validate:"required"`
	NewTime            *time.Time  `json:"new_time,omitempty"`
	Notes              *string     `json:"notes,omitempty"              validate:"omitempty,max=2000"`
	CancellationReason *string     `json:"cancellation_reason,omitempty" validate:"omitempty,max=2000"`
}

// AdminListOpts filters and orders the admin visit listing.
type AdminListOpts struct {
	Status  VisitStatus
	OrderBy string
	Limit   int
	Offset  int
}
