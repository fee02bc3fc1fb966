// Package lifecycle implements the visit state machine: a pure transition
// table from (current status, action, actor role) to the next status. It
// performs no I/O and knows nothing about actor identities beyond the role
// the caller already resolved.
package lifecycle

import (
	"fmt"

	"github.com/fvnks/konecte.cl-sub001/internal/models"
)

// InvalidTransitionError reports an action not permitted from the visit's
// current status for the resolved role.
type InvalidTransitionError struct {
	Status models.VisitStatus
	Action models.VisitAction
	Role   models.Role
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("action %q not allowed for role %q from status %q", e.Action, e.Role, e.Status)
}

type transitionKey struct {
	from   models.VisitStatus
	action models.VisitAction
	role   models.Role
}

// transitions holds the participant entries of the table. Admin force
// actions are valid from every non-terminal status and are added in init.
var transitions = map[transitionKey]models.VisitStatus{
	// Owner acting on the visitor's original proposal.
	{models.StatusPendingConfirmation, models.ActionConfirmOriginal, models.RoleOwner}: models.StatusConfirmed,
	{models.StatusPendingConfirmation, models.ActionProposeNewTime, models.RoleOwner}:  models.StatusRescheduledByOwner,
	{models.StatusPendingConfirmation, models.ActionReject, models.RoleOwner}:          models.StatusCancelledByOwner,

	// Owner acting on a confirmed visit.
	{models.StatusConfirmed, models.ActionCancel, models.RoleOwner}:            models.StatusCancelledByOwner,
	{models.StatusConfirmed, models.ActionMarkCompleted, models.RoleOwner}:     models.StatusCompleted,
	{models.StatusConfirmed, models.ActionMarkVisitorNoShow, models.RoleOwner}: models.StatusVisitorNoShow,

	// Visitor responding to the owner's counter-proposal.
	{models.StatusRescheduledByOwner, models.ActionAccept, models.RoleVisitor}: models.StatusConfirmed,
	{models.StatusRescheduledByOwner, models.ActionReject, models.RoleVisitor}: models.StatusCancelledByVisitor,

	// Visitor withdrawing or reporting the owner absent.
	{models.StatusPendingConfirmation, models.ActionCancelOwn, models.RoleVisitor}: models.StatusCancelledByVisitor,
	{models.StatusConfirmed, models.ActionCancelOwn, models.RoleVisitor}:           models.StatusCancelledByVisitor,
	{models.StatusConfirmed, models.ActionMarkOwnerNoShow, models.RoleVisitor}:     models.StatusOwnerNoShow,
}

func init() {
	for _, from := range models.NonTerminalStatuses() {
		transitions[transitionKey{from, models.ActionForceCancel, models.RoleAdmin}] = models.StatusCancelledByOwner
		transitions[transitionKey{from, models.ActionForceComplete, models.RoleAdmin}] = models.StatusCompleted
	}
}

// Next returns the status a visit moves to when role performs action from
// the current status, or an InvalidTransitionError if the table has no entry.
func Next(current models.VisitStatus, action models.VisitAction, role models.Role) (models.VisitStatus, error) {
	next, ok := transitions[transitionKey{current, action, role}]
	if !ok {
		return "", &InvalidTransitionError{Status: current, Action: action, Role: role}
	}

	return next, nil
}

// ClaimsSlot reports whether action finalizes a time slot on the property
// and therefore must re-validate slot availability inside the write
// transaction.
func ClaimsSlot(action models.VisitAction) bool {
	switch action {
	case models.ActionConfirmOriginal, models.ActionProposeNewTime, models.ActionAccept:
		return true
	default:
		return false
	}
}

// CarriesNewTime reports whether action requires a new proposed time in its
// payload.
func CarriesNewTime(action models.VisitAction) bool {
	return action == models.ActionProposeNewTime
}

// AllowsReason reports whether action may carry a cancellation reason.
func AllowsReason(action models.VisitAction) bool {
	switch action {
	case models.ActionReject, models.ActionCancel, models.ActionCancelOwn, models.ActionForceCancel:
		return true
	default:
		return false
	}
}
