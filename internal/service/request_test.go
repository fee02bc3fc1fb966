package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/fvnks/konecte.cl-sub001/internal/models"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newRequestService(visits *mockVisitStore, dir *mockDirectory, notify *mockEnqueuer, strictSlot bool) *RequestService {
	s := NewRequestService(visits, dir, validator.New(), notify, testLogger(), strictSlot)
	s.now = fixedNow(testNow)
	return s
}

func passthroughCreate() func(ctx context.Context, v *models.Visit, strictSlot bool) (*models.Visit, error) {
	return func(_ context.Context, v *models.Visit, _ bool) (*models.Visit, error) {
		created := *v
		created.Version = 1
		created.CreatedAt = testNow
		created.UpdatedAt = testNow
		return &created, nil
	}
}

func TestProposeVisit_Success(t *testing.T) {
	visits := &mockVisitStore{createVisit: passthroughCreate()}
	dir := &mockDirectory{owners: map[string]string{"prop-1": "owner-1"}}
	notify := &mockEnqueuer{}
	svc := newRequestService(visits, dir, notify, false)

	proposed := testNow.Add(25 * time.Hour)
	visit, err := svc.ProposeVisit(context.Background(), models.ProposeVisitRequest{
		PropertyID: "prop-1",
		VisitorID:  "visitor-1",
		ProposedAt: proposed,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if visit.Status != models.StatusPendingConfirmation {
		t.Errorf("status = %q, want %q", visit.Status, models.StatusPendingConfirmation)
	}
	if visit.OwnerID != "owner-1" {
		t.Errorf("owner_id = %q, want owner-1", visit.OwnerID)
	}
	if visit.ConfirmedAt != nil {
		t.Error("confirmed_at should be nil on a fresh proposal")
	}
	if !visit.ProposedAt.Equal(proposed) {
		t.Errorf("proposed_at = %v, want %v", visit.ProposedAt, proposed)
	}

	events := notify.getEvents()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].OldStatus != "" {
		t.Errorf("creation event old_status = %q, want empty", events[0].OldStatus)
	}
	if events[0].NewStatus != models.StatusPendingConfirmation {
		t.Errorf("creation event new_status = %q", events[0].NewStatus)
	}
}

func TestProposeVisit_ValidationErrors(t *testing.T) {
	visits := &mockVisitStore{createVisit: passthroughCreate()}
	dir := &mockDirectory{owners: map[string]string{"prop-1": "owner-1"}}
	svc := newRequestService(visits, dir, &mockEnqueuer{}, false)

	tests := []struct {
		name    string
		req     models.ProposeVisitRequest
		wantErr error
	}{
		{
			name: "time off slot boundary",
			req: models.ProposeVisitRequest{
				PropertyID: "prop-1",
				VisitorID:  "visitor-1",
				ProposedAt: testNow.Add(24*time.Hour + 30*time.Minute),
			},
			wantErr: models.ErrTimeNotSlotAligned,
		},
		{
			name: "time in the past",
			req: models.ProposeVisitRequest{
				PropertyID: "prop-1",
				VisitorID:  "visitor-1",
				ProposedAt: testNow.Add(-2 * time.Hour),
			},
			wantErr: models.ErrTimeInPast,
		},
		{
			name: "time equal to now",
			req: models.ProposeVisitRequest{
				PropertyID: "prop-1",
				VisitorID:  "visitor-1",
				ProposedAt: testNow,
			},
			wantErr: models.ErrTimeInPast,
		},
		{
			name: "unknown property",
			req: models.ProposeVisitRequest{
				PropertyID: "prop-missing",
				VisitorID:  "visitor-1",
				ProposedAt: testNow.Add(24 * time.Hour),
			},
			wantErr: models.ErrPropertyNotFound,
		},
		{
			name: "visitor owns the property",
			req: models.ProposeVisitRequest{
				PropertyID: "prop-1",
				VisitorID:  "owner-1",
				ProposedAt: testNow.Add(24 * time.Hour),
			},
			wantErr: models.ErrVisitorIsOwner,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ProposeVisit(context.Background(), tc.req)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestProposeVisit_MissingFields(t *testing.T) {
	svc := newRequestService(&mockVisitStore{}, &mockDirectory{}, &mockEnqueuer{}, false)

	_, err := svc.ProposeVisit(context.Background(), models.ProposeVisitRequest{
		ProposedAt: testNow.Add(24 * time.Hour),
	})
	if err == nil {
		t.Fatal("expected validation error for missing ids")
	}

	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		t.Errorf("expected validator.ValidationErrors, got %T", err)
	}
}

func TestProposeVisit_StrictSlotFlagReachesStore(t *testing.T) {
	var gotStrict bool
	visits := &mockVisitStore{
		createVisit: func(_ context.Context, v *models.Visit, strictSlot bool) (*models.Visit, error) {
			gotStrict = strictSlot
			return v, nil
		},
	}
	dir := &mockDirectory{owners: map[string]string{"prop-1": "owner-1"}}
	svc := newRequestService(visits, dir, &mockEnqueuer{}, true)

	_, err := svc.ProposeVisit(context.Background(), models.ProposeVisitRequest{
		PropertyID: "prop-1",
		VisitorID:  "visitor-1",
		ProposedAt: testNow.Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !gotStrict {
		t.Error("strictSlot flag was not passed through to the store")
	}
}

func TestProposeVisit_SlotConflictSurfaces(t *testing.T) {
	visits := &mockVisitStore{
		createVisit: func(_ context.Context, _ *models.Visit, _ bool) (*models.Visit, error) {
			return nil, models.ErrSlotConflict
		},
	}
	dir := &mockDirectory{owners: map[string]string{"prop-1": "owner-1"}}
	svc := newRequestService(visits, dir, &mockEnqueuer{}, true)

	_, err := svc.ProposeVisit(context.Background(), models.ProposeVisitRequest{
		PropertyID: "prop-1",
		VisitorID:  "visitor-1",
		ProposedAt: testNow.Add(24 * time.Hour),
	})
	if !errors.Is(err, models.ErrSlotConflict) {
		t.Errorf("err = %v, want ErrSlotConflict", err)
	}
}

func TestAdminScheduleVisit_Success(t *testing.T) {
	visits := &mockVisitStore{createVisit: passthroughCreate()}
	dir := &mockDirectory{
		owners: map[string]string{"prop-1": "owner-1"},
		admins: map[string]bool{"admin-1": true},
	}
	notify := &mockEnqueuer{}
	svc := newRequestService(visits, dir, notify, false)

	visitAt := testNow.Add(48 * time.Hour)
	visit, err := svc.AdminScheduleVisit(context.Background(), models.AdminScheduleVisitRequest{
		ActorID:    "admin-1",
		PropertyID: "prop-1",
		VisitorID:  "visitor-1",
		VisitAt:    visitAt,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if visit.Status != models.StatusConfirmed {
		t.Errorf("status = %q, want %q", visit.Status, models.StatusConfirmed)
	}
	if visit.ConfirmedAt == nil || !visit.ConfirmedAt.Equal(visitAt) {
		t.Errorf("confirmed_at = %v, want %v", visit.ConfirmedAt, visitAt)
	}
	if !visit.ProposedAt.Equal(visitAt) {
		t.Errorf("proposed_at = %v, want %v", visit.ProposedAt, visitAt)
	}
	if !visit.CreatedByAdmin {
		t.Error("created_by_admin should be true")
	}

	events := notify.getEvents()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ActorID != "admin-1" {
		t.Errorf("event actor_id = %q, want admin-1", events[0].ActorID)
	}
}

func TestAdminScheduleVisit_NonAdminForbidden(t *testing.T) {
	visits := &mockVisitStore{createVisit: passthroughCreate()}
	dir := &mockDirectory{
		owners: map[string]string{"prop-1": "owner-1"},
		admins: map[string]bool{},
	}
	svc := newRequestService(visits, dir, &mockEnqueuer{}, false)

	_, err := svc.AdminScheduleVisit(context.Background(), models.AdminScheduleVisitRequest{
		ActorID:    "mallory",
		PropertyID: "prop-1",
		VisitorID:  "visitor-1",
		VisitAt:    testNow.Add(48 * time.Hour),
	})
	if !errors.Is(err, models.ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}

	if len(visits.calls) != 0 {
		t.Errorf("store should not be touched, got calls %v", visits.calls)
	}
}

func TestAdminScheduleVisit_OwnerAsVisitorRejected(t *testing.T) {
	visits := &mockVisitStore{createVisit: passthroughCreate()}
	dir := &mockDirectory{
		owners: map[string]string{"prop-1": "owner-1"},
		admins: map[string]bool{"admin-1": true},
	}
	svc := newRequestService(visits, dir, &mockEnqueuer{}, false)

	_, err := svc.AdminScheduleVisit(context.Background(), models.AdminScheduleVisitRequest{
		ActorID:    "admin-1",
		PropertyID: "prop-1",
		VisitorID:  "owner-1",
		VisitAt:    testNow.Add(48 * time.Hour),
	})
	if !errors.Is(err, models.ErrVisitorIsOwner) {
		t.Errorf("err = %v, want ErrVisitorIsOwner", err)
	}
}
