package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fvnks/konecte.cl-sub001/internal/models"
)

// DirectoryStore resolves the external collaborators the scheduler consults:
// the property directory (who owns a property) and the user directory
// (whether an actor holds the admin role). The scheduler reads these tables,
// never writes them.
type DirectoryStore struct {
	Base
}

// NewDirectoryStore creates a new DirectoryStore.
func NewDirectoryStore(base Base) *DirectoryStore {
	return &DirectoryStore{Base: base}
}

// OwnerOf returns the owner ID recorded for a property.
func (s *DirectoryStore) OwnerOf(ctx context.Context, propertyID string) (string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	defer s.logSlow("directory.owner_of", time.Now())

	var ownerID string

	err := s.Pool.QueryRow(ctx, "SELECT owner_id FROM properties WHERE id = $1", propertyID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", models.ErrPropertyNotFound
		}

		return "", fmt.Errorf("resolving property owner: %w", err)
	}

	return ownerID, nil
}

// IsAdmin reports whether the user holds the admin role. Unknown users are
// simply not admins.
func (s *DirectoryStore) IsAdmin(ctx context.Context, userID string) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	defer s.logSlow("directory.is_admin", time.Now())

	var isAdmin bool

	err := s.Pool.QueryRow(ctx, "SELECT is_admin FROM users WHERE id = $1", userID).Scan(&isAdmin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}

		return false, fmt.Errorf("resolving admin role: %w", err)
	}

	return isAdmin, nil
}
