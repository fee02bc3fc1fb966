package store

import (
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fvnks/konecte.cl-sub001/internal/models"
)

// visitColumns lists the columns selected for visit queries, in scan order.
const visitColumns = `id, property_id, visitor_id, owner_id, proposed_at,
	confirmed_at, status, visitor_notes, owner_notes, cancellation_reason,
	created_by_admin, version, created_at, updated_at`

// scanVisit scans a single row into a models.Visit.
func scanVisit(scan func(dest ...any) error) (*models.Visit, error) {
	var v models.Visit

	err := scan(
		&v.ID,
		&v.PropertyID,
		&v.VisitorID,
		&v.OwnerID,
		&v.ProposedAt,
		&v.ConfirmedAt,
		&v.Status,
		&v.VisitorNotes,
		&v.OwnerNotes,
		&v.CancellationReason,
		&v.CreatedByAdmin,
		&v.Version,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &v, nil
}

// collectVisits scans all rows into a visit slice.
func collectVisits(rows pgx.Rows) ([]models.Visit, error) {
	visits := make([]models.Visit, 0, 16)

	for rows.Next() {
		v, err := scanVisit(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning visit row: %w", err)
		}

		visits = append(visits, *v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating visit rows: %w", err)
	}

	return visits, nil
}

// statusStrings converts a status slice for use as a text[] query argument.
func statusStrings(statuses []models.VisitStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}

	return out
}
