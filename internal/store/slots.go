package store

import (
	"context"
	"fmt"
	"time"

	"github.com/fvnks/konecte.cl-sub001/internal/models"
)

// SlotStore answers slot occupancy queries for a property.
type SlotStore struct {
	Base
}

// NewSlotStore creates a new SlotStore.
func NewSlotStore(base Base) *SlotStore {
	return &SlotStore{Base: base}
}

// BookedSlots returns the slot start times occupied on the given calendar day
// (UTC) by non-terminal visits on the property. The effective time is the
// confirmed time when set, the proposed time otherwise.
//
// The result is advisory for proposal-time hints; write paths re-check inside
// their own transaction.
func (s *SlotStore) BookedSlots(ctx context.Context, propertyID string, day time.Time) ([]time.Time, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	defer s.logSlow("slots.booked", time.Now())

	day = day.UTC()
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	rows, err := s.Pool.Query(ctx,
		`SELECT DISTINCT COALESCE(confirmed_at, proposed_at) AS slot
		 FROM visits
		 WHERE property_id = $1
		   AND status = ANY($2)
		   AND COALESCE(confirmed_at, proposed_at) >= $3
		   AND COALESCE(confirmed_at, proposed_at) < $4
		 ORDER BY slot`,
		propertyID, statusStrings(models.NonTerminalStatuses()), dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("querying booked slots: %w", err)
	}
	defer rows.Close()

	slots := make([]time.Time, 0, 8)

	for rows.Next() {
		var slot time.Time
		if err := rows.Scan(&slot); err != nil {
			return nil, fmt.Errorf("scanning slot row: %w", err)
		}

		slots = append(slots, slot.UTC())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating slot rows: %w", err)
	}

	return slots, nil
}
