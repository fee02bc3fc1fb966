package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fvnks/konecte.cl-sub001/internal/models"
)

// VisitStore handles visit persistence: creation, lookup, listing, and the
// conditional transition update.
type VisitStore struct {
	Base
}

// NewVisitStore creates a new VisitStore.
func NewVisitStore(base Base) *VisitStore {
	return &VisitStore{Base: base}
}

// claimedStatuses are the statuses whose confirmed_at actually holds a slot.
// Pending proposals do not block a slot; conflicts resolve at claim time.
var claimedStatuses = []models.VisitStatus{models.StatusConfirmed, models.StatusRescheduledByOwner}

// CreateVisit inserts a new visit inside a transaction that re-checks slot
// availability, closing the race between two concurrent proposals.
//
// A visit created with a confirmed time (admin direct schedule) always
// validates against claimed slots. With strictSlot set, the insert also fails
// when any non-terminal visit occupies the requested slot.
func (s *VisitStore) CreateVisit(ctx context.Context, v *models.Visit, strictSlot bool) (*models.Visit, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	defer s.logSlow("visits.create", time.Now())

	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating visit: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	if strictSlot {
		occupied, err := slotOccupied(ctx, tx, v.PropertyID, v.EffectiveAt(), models.NonTerminalStatuses(), uuid.Nil)
		if err != nil {
			return nil, err
		}

		if occupied {
			return nil, models.ErrSlotConflict
		}
	} else if v.ConfirmedAt != nil {
		occupied, err := slotOccupied(ctx, tx, v.PropertyID, *v.ConfirmedAt, claimedStatuses, uuid.Nil)
		if err != nil {
			return nil, err
		}

		if occupied {
			return nil, models.ErrSlotConflict
		}
	}

	query := `INSERT INTO visits
		(id, property_id, visitor_id, owner_id, proposed_at, confirmed_at, status,
		 visitor_notes, owner_notes, created_by_admin, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1)
		RETURNING ` + visitColumns

	row := tx.QueryRow(ctx, query,
		v.ID, v.PropertyID, v.VisitorID, v.OwnerID, v.ProposedAt, v.ConfirmedAt,
		v.Status, v.VisitorNotes, v.OwnerNotes, v.CreatedByAdmin)

	created, err := scanVisit(row.Scan)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrSlotConflict
		}

		return nil, fmt.Errorf("scanning created visit: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing create visit: %w", err)
	}

	return created, nil
}

// GetVisit returns a single visit by ID.
func (s *VisitStore) GetVisit(ctx context.Context, visitID uuid.UUID) (*models.Visit, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	defer s.logSlow("visits.get", time.Now())

	row := s.Pool.QueryRow(ctx, `SELECT `+visitColumns+` FROM visits WHERE id = $1`, visitID)

	v, err := scanVisit(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrVisitNotFound
		}

		return nil, fmt.Errorf("scanning visit: %w", err)
	}

	return v, nil
}

// ListVisitsForUser returns every visit the user participates in, as visitor
// or as owner, newest first.
func (s *VisitStore) ListVisitsForUser(ctx context.Context, userID string) ([]models.Visit, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	defer s.logSlow("visits.list_user", time.Now())

	rows, err := s.Pool.Query(ctx,
		`SELECT `+visitColumns+` FROM visits
		 WHERE visitor_id = $1 OR owner_id = $1
		 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing visits for user: %w", err)
	}
	defer rows.Close()

	return collectVisits(rows)
}

// ListVisitsForProperty returns every visit recorded for a property, newest first.
func (s *VisitStore) ListVisitsForProperty(ctx context.Context, propertyID string) ([]models.Visit, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	defer s.logSlow("visits.list_property", time.Now())

	rows, err := s.Pool.Query(ctx,
		`SELECT `+visitColumns+` FROM visits
		 WHERE property_id = $1
		 ORDER BY created_at DESC`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("listing visits for property: %w", err)
	}
	defer rows.Close()

	return collectVisits(rows)
}

// adminOrderColumns whitelists the sortable columns for the admin listing.
var adminOrderColumns = map[string]string{
	"":            "created_at DESC",
	"created_at":  "created_at DESC",
	"updated_at":  "updated_at DESC",
	"proposed_at": "proposed_at ASC",
}

// ListVisitsForAdmin returns visits across all users, optionally filtered by
// status and ordered by a whitelisted column.
func (s *VisitStore) ListVisitsForAdmin(ctx context.Context, opts models.AdminListOpts) ([]models.Visit, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	defer s.logSlow("visits.list_admin", time.Now())

	orderBy, ok := adminOrderColumns[opts.OrderBy]
	if !ok {
		orderBy = adminOrderColumns[""]
	}

	limit := opts.Limit
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}

	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	var (
		rows pgx.Rows
		err  error
	)

	if opts.Status != "" {
		rows, err = s.Pool.Query(ctx,
			`SELECT `+visitColumns+` FROM visits WHERE status = $1 ORDER BY `+orderBy+` LIMIT $2 OFFSET $3`,
			opts.Status, limit, offset)
	} else {
		rows, err = s.Pool.Query(ctx,
			`SELECT `+visitColumns+` FROM visits ORDER BY `+orderBy+` LIMIT $1 OFFSET $2`,
			limit, offset)
	}

	if err != nil {
		return nil, fmt.Errorf("listing visits for admin: %w", err)
	}
	defer rows.Close()

	return collectVisits(rows)
}

// TransitionUpdate describes a conditional status update. The write succeeds
// only when the stored status and version still match the expected values.
type TransitionUpdate struct {
	ExpectedStatus  models.VisitStatus
	ExpectedVersion int
	NextStatus      models.VisitStatus

	// SetConfirmedAt controls whether ConfirmedAt is written at all;
	// transitions that keep the stored value leave it false.
	SetConfirmedAt bool
	ConfirmedAt    *time.Time

	VisitorNotes       *string
	OwnerNotes         *string
	CancellationReason *string

	// ClaimSlot re-validates that no other visit holds (PropertyID, ClaimAt)
	// inside the same transaction as the update.
	ClaimSlot  bool
	PropertyID string
	ClaimAt    time.Time
}

// ApplyTransition performs the guarded update for a visit transition.
// It returns ErrTransitionConflict when the conditional write matches no row
// while the visit still exists, and ErrSlotConflict when the claimed slot is
// already held by another active visit.
func (s *VisitStore) ApplyTransition(ctx context.Context, visitID uuid.UUID, upd TransitionUpdate) (*models.Visit, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	defer s.logSlow("visits.apply_transition", time.Now())

	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("applying transition: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	if upd.ClaimSlot {
		occupied, err := slotOccupied(ctx, tx, upd.PropertyID, upd.ClaimAt, claimedStatuses, visitID)
		if err != nil {
			return nil, err
		}

		if occupied {
			return nil, models.ErrSlotConflict
		}
	}

	setClauses, args := buildTransitionSet(upd)

	query := fmt.Sprintf(
		"UPDATE visits SET %s WHERE id = $%d AND status = $%d AND version = $%d RETURNING %s",
		strings.Join(setClauses, ", "), len(args)+1, len(args)+2, len(args)+3, visitColumns,
	)
	args = append(args, visitID, upd.ExpectedStatus, upd.ExpectedVersion)

	row := tx.QueryRow(ctx, query, args...)

	v, err := scanVisit(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, s.classifyMissedUpdate(ctx, tx, visitID)
		}

		if isUniqueViolation(err) {
			return nil, models.ErrSlotConflict
		}

		return nil, fmt.Errorf("scanning updated visit: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing transition: %w", err)
	}

	return v, nil
}

// buildTransitionSet constructs the SET clause and arguments for ApplyTransition.
func buildTransitionSet(upd TransitionUpdate) (setClauses []string, args []any) {
	setClauses = make([]string, 0, 6)
	args = make([]any, 0, 8)

	add := func(column string, value any) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	add("status", upd.NextStatus)

	if upd.SetConfirmedAt {
		add("confirmed_at", upd.ConfirmedAt)
	}

	if upd.VisitorNotes != nil {
		add("visitor_notes", *upd.VisitorNotes)
	}

	if upd.OwnerNotes != nil {
		add("owner_notes", *upd.OwnerNotes)
	}

	if upd.CancellationReason != nil {
		add("cancellation_reason", *upd.CancellationReason)
	}

	setClauses = append(setClauses, "version = version + 1", "updated_at = now()")

	return setClauses, args
}

// classifyMissedUpdate distinguishes a vanished visit from a lost race.
func (s *VisitStore) classifyMissedUpdate(ctx context.Context, tx pgx.Tx, visitID uuid.UUID) error {
	var exists bool
	if err := tx.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM visits WHERE id = $1)", visitID).Scan(&exists); err != nil {
		return fmt.Errorf("checking visit existence: %w", err)
	}

	if !exists {
		return models.ErrVisitNotFound
	}

	return models.ErrTransitionConflict
}

// slotOccupied reports whether another visit in one of the given statuses
// occupies the slot at (propertyID, at). excludeID skips the visit being
// updated; pass uuid.Nil on insert.
func slotOccupied(ctx context.Context, tx pgx.Tx, propertyID string, at time.Time, statuses []models.VisitStatus, excludeID uuid.UUID) (bool, error) {
	var occupied bool

	err := tx.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM visits
			WHERE property_id = $1
			  AND status = ANY($2)
			  AND COALESCE(confirmed_at, proposed_at) = $3
			  AND id <> $4)`,
		propertyID, statusStrings(statuses), at, excludeID).Scan(&occupied)
	if err != nil {
		return false, fmt.Errorf("checking slot availability: %w", err)
	}

	return occupied, nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (the partial index on claimed slots).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
