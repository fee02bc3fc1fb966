// Package store provides focused, single-concern data access stores for the
// visit scheduler.
//
// Each store owns one domain (visits, slots, directories) and embeds shared
// helpers (Pool, logger) via the Base struct. Stores never import each other;
// shared logic lives in this file or in scan.go.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/fvnks/konecte.cl-sub001/internal/dbpool"
)

const defaultQueryTimeout = 30 * time.Second

// maxListLimit is a defense-in-depth cap on limit values for list queries.
const maxListLimit = 1000

// Base contains shared dependencies for all stores.
// Embed this in each store struct.
type Base struct {
	Pool *dbpool.Pool
	Log  *logrus.Logger
}

// slowQueryThreshold flags store operations that ran unexpectedly long.
const slowQueryThreshold = 500 * time.Millisecond

// withTimeout creates a context with the default query timeout.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

// logSlow warns when a store operation exceeded the slow-query threshold.
// Call as: defer s.logSlow("visits.create", time.Now()).
func (b *Base) logSlow(op string, start time.Time) {
	if elapsed := time.Since(start); elapsed >= slowQueryThreshold {
		b.Log.WithFields(logrus.Fields{
			"op":       op,
			"duration": elapsed.String(),
		}).Warn("slow query")
	}
}

// beginTx starts a read-write transaction.
func (b *Base) beginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := b.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	return tx, nil
}
