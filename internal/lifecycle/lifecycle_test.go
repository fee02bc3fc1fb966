package lifecycle_test

import (
	"errors"
	"testing"

	"github.com/fvnks/konecte.cl-sub001/internal/lifecycle"
	"github.com/fvnks/konecte.cl-sub001/internal/models"
)

func TestNext_AllowedTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		from   models.VisitStatus
		action models.VisitAction
		role   models.Role
		want   models.VisitStatus
	}{
		{"owner confirms original", models.StatusPendingConfirmation, models.ActionConfirmOriginal, models.RoleOwner, models.StatusConfirmed},
		{"owner proposes new time", models.StatusPendingConfirmation, models.ActionProposeNewTime, models.RoleOwner, models.StatusRescheduledByOwner},
		{"owner rejects proposal", models.StatusPendingConfirmation, models.ActionReject, models.RoleOwner, models.StatusCancelledByOwner},
		{"owner cancels confirmed", models.StatusConfirmed, models.ActionCancel, models.RoleOwner, models.StatusCancelledByOwner},
		{"owner marks completed", models.StatusConfirmed, models.ActionMarkCompleted, models.RoleOwner, models.StatusCompleted},
		{"owner marks visitor no-show", models.StatusConfirmed, models.ActionMarkVisitorNoShow, models.RoleOwner, models.StatusVisitorNoShow},
		{"visitor accepts reschedule", models.StatusRescheduledByOwner, models.ActionAccept, models.RoleVisitor, models.StatusConfirmed},
		{"visitor rejects reschedule", models.StatusRescheduledByOwner, models.ActionReject, models.RoleVisitor, models.StatusCancelledByVisitor},
		{"visitor cancels pending", models.StatusPendingConfirmation, models.ActionCancelOwn, models.RoleVisitor, models.StatusCancelledByVisitor},
		{"visitor cancels confirmed", models.StatusConfirmed, models.ActionCancelOwn, models.RoleVisitor, models.StatusCancelledByVisitor},
		{"visitor marks owner no-show", models.StatusConfirmed, models.ActionMarkOwnerNoShow, models.RoleVisitor, models.StatusOwnerNoShow},
		{"admin force-cancels pending", models.StatusPendingConfirmation, models.ActionForceCancel, models.RoleAdmin, models.StatusCancelledByOwner},
		{"admin force-cancels rescheduled", models.StatusRescheduledByOwner, models.ActionForceCancel, models.RoleAdmin, models.StatusCancelledByOwner},
		{"admin force-completes confirmed", models.StatusConfirmed, models.ActionForceComplete, models.RoleAdmin, models.StatusCompleted},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := lifecycle.Next(tc.from, tc.action, tc.role)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tc.want {
				t.Errorf("Next(%s, %s, %s) = %s, want %s", tc.from, tc.action, tc.role, got, tc.want)
			}
		})
	}
}

func TestNext_RejectedTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		from   models.VisitStatus
		action models.VisitAction
		role   models.Role
	}{
		{"owner reschedules confirmed", models.StatusConfirmed, models.ActionProposeNewTime, models.RoleOwner},
		{"visitor confirms own proposal", models.StatusPendingConfirmation, models.ActionConfirmOriginal, models.RoleVisitor},
		{"owner accepts own reschedule", models.StatusRescheduledByOwner, models.ActionAccept, models.RoleOwner},
		{"visitor cancels reschedule via cancel_own", models.StatusRescheduledByOwner, models.ActionCancelOwn, models.RoleVisitor},
		{"admin uses owner action", models.StatusConfirmed, models.ActionCancel, models.RoleAdmin},
		{"force-complete on completed", models.StatusCompleted, models.ActionForceComplete, models.RoleAdmin},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := lifecycle.Next(tc.from, tc.action, tc.role)

			var invalid *lifecycle.InvalidTransitionError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected InvalidTransitionError, got %v", err)
			}

			if invalid.Status != tc.from || invalid.Action != tc.action || invalid.Role != tc.role {
				t.Errorf("error fields = (%s, %s, %s), want (%s, %s, %s)",
					invalid.Status, invalid.Action, invalid.Role, tc.from, tc.action, tc.role)
			}
		})
	}
}

// allowedTriples mirrors the transition table for the exhaustiveness check.
var allowedTriples = map[[3]string]bool{
	{string(models.StatusPendingConfirmation), string(models.ActionConfirmOriginal), string(models.RoleOwner)}:   true,
	{string(models.StatusPendingConfirmation), string(models.ActionProposeNewTime), string(models.RoleOwner)}:    true,
	{string(models.StatusPendingConfirmation), string(models.ActionReject), string(models.RoleOwner)}:            true,
	{string(models.StatusConfirmed), string(models.ActionCancel), string(models.RoleOwner)}:                      true,
	{string(models.StatusConfirmed), string(models.ActionMarkCompleted), string(models.RoleOwner)}:               true,
	{string(models.StatusConfirmed), string(models.ActionMarkVisitorNoShow), string(models.RoleOwner)}:           true,
	{string(models.StatusRescheduledByOwner), string(models.ActionAccept), string(models.RoleVisitor)}:           true,
	{string(models.StatusRescheduledByOwner), string(models.ActionReject), string(models.RoleVisitor)}:           true,
	{string(models.StatusPendingConfirmation), string(models.ActionCancelOwn), string(models.RoleVisitor)}:       true,
	{string(models.StatusConfirmed), string(models.ActionCancelOwn), string(models.RoleVisitor)}:                 true,
	{string(models.StatusConfirmed), string(models.ActionMarkOwnerNoShow), string(models.RoleVisitor)}:           true,
	{string(models.StatusPendingConfirmation), string(models.ActionForceCancel), string(models.RoleAdmin)}:       true,
	{string(models.StatusPendingConfirmation), string(models.ActionForceComplete), string(models.RoleAdmin)}:     true,
	{string(models.StatusConfirmed), string(models.ActionForceCancel), string(models.RoleAdmin)}:                 true,
	{string(models.StatusConfirmed), string(models.ActionForceComplete), string(models.RoleAdmin)}:               true,
	{string(models.StatusRescheduledByOwner), string(models.ActionForceCancel), string(models.RoleAdmin)}:        true,
	{string(models.StatusRescheduledByOwner), string(models.ActionForceComplete), string(models.RoleAdmin)}:      true,
}

// TestNext_Exhaustive walks every (status, action, role) triple and checks
// that exactly the tabled ones succeed.
func TestNext_Exhaustive(t *testing.T) {
	t.Parallel()

	for _, status := range models.AllStatuses {
		for _, action := range models.AllActions {
			for _, role := range models.AllRoles {
				_, err := lifecycle.Next(status, action, role)
				allowed := allowedTriples[[3]string{string(status), string(action), string(role)}]

				if allowed && err != nil {
					t.Errorf("Next(%s, %s, %s): unexpected rejection: %v", status, action, role, err)
				}

				if !allowed && err == nil {
					t.Errorf("Next(%s, %s, %s): expected InvalidTransitionError, got success", status, action, role)
				}
			}
		}
	}
}

// TestNext_TerminalStatesAreFinal checks that no action moves a visit out of
// a terminal status, for any role.
func TestNext_TerminalStatesAreFinal(t *testing.T) {
	t.Parallel()

	for _, status := range models.AllStatuses {
		if !status.Terminal() {
			continue
		}

		for _, action := range models.AllActions {
			for _, role := range models.AllRoles {
				if _, err := lifecycle.Next(status, action, role); err == nil {
					t.Errorf("terminal status %s allowed action %s for role %s", status, action, role)
				}
			}
		}
	}
}

func TestClaimsSlot(t *testing.T) {
	t.Parallel()

	claiming := []models.VisitAction{models.ActionConfirmOriginal, models.ActionProposeNewTime, models.ActionAccept}
	for _, a := range claiming {
		if !lifecycle.ClaimsSlot(a) {
			t.Errorf("ClaimsSlot(%s) = false, want true", a)
		}
	}

	if lifecycle.ClaimsSlot(models.ActionCancel) {
		t.Error("ClaimsSlot(cancel) = true, want false")
	}
}
