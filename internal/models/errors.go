package models

import "errors"

// Sentinel errors for entity lookups.
var (
	ErrVisitNotFound    = errors.New("visit not found")
	ErrPropertyNotFound = errors.New("property not found")
)

// Sentinel errors for validation.
var (
	ErrVisitorIsOwner     = errors.New("visitor must differ from the property owner")
	ErrTimeNotSlotAligned = errors.New("visit time must fall on a slot boundary")
	ErrTimeInPast         = errors.New("visit time must be in the future")
	ErrMissingNewTime     = errors.New("new_time is required for this action")
	ErrNewTimeNotAllowed  = errors.New("new_time is not part of this action's payload")
	ErrReasonNotAllowed   = errors.New("cancellation_reason is not part of this action's payload")
	ErrUnknownAction      = errors.New("unknown visit action")
)

// ErrForbidden indicates the actor is neither the visit's visitor, its owner,
// nor an admin.
var ErrForbidden = errors.New("actor is not a participant of this visit")

// ErrSlotConflict indicates the requested slot is already held by another
// active visit on the same property.
var ErrSlotConflict = errors.New("slot already booked for this property")

// ErrTransitionConflict indicates a conditional status update lost a
// concurrent race. The action service retries once before surfacing it.
var ErrTransitionConflict = errors.New("visit was modified concurrently")
