package store_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fvnks/konecte.cl-sub001/internal/db"
	"github.com/fvnks/konecte.cl-sub001/internal/db/migrations"
	"github.com/fvnks/konecte.cl-sub001/internal/dbpool"
	"github.com/fvnks/konecte.cl-sub001/internal/store"
)

// testEnv holds shared test infrastructure (single pool across all tests).
type testEnv struct {
	pool *dbpool.Pool
	log  *logrus.Logger
}

var sharedEnv *testEnv

func getTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if sharedEnv != nil {
		return sharedEnv
	}

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()

	pool, err := dbpool.NewPool(ctx, dbURL)
	if err != nil {
		t.Fatalf("connecting to test DB: %v", err)
	}

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
		t.Fatalf("migrating test DB: %v", err)
	}

	sharedEnv = &testEnv{
		pool: pool,
		log:  log,
	}

	return sharedEnv
}

// fixture identifies the users and property created for one test.
type fixture struct {
	VisitorID  string
	OwnerID    string
	AdminID    string
	PropertyID string
}

// setupTestBase creates a Base plus a visitor, owner, admin, and one property,
// all cleaned up after the test.
func setupTestBase(t *testing.T) (store.Base, fixture) {
	t.Helper()

	env := getTestEnv(t)
	ctx := context.Background()

	suffix := uuid.New().String()[:8]
	fx := fixture{
		VisitorID:  "visitor-" + suffix,
		OwnerID:    "owner-" + suffix,
		AdminID:    "admin-" + suffix,
		PropertyID: "prop-" + suffix,
	}

	users := []struct {
		id      string
		isAdmin bool
	}{
		{fx.VisitorID, false},
		{fx.OwnerID, false},
		{fx.AdminID, true},
	}
	for _, u := range users {
		_, err := env.pool.Exec(ctx,
			"INSERT INTO users (id, email, is_admin) VALUES ($1, $2, $3)",
			u.id, fmt.Sprintf("%s@example.com", u.id), u.isAdmin)
		if err != nil {
			t.Fatalf("creating test user %s: %v", u.id, err)
		}
	}

	_, err := env.pool.Exec(ctx,
		"INSERT INTO properties (id, owner_id, title) VALUES ($1, $2, $3)",
		fx.PropertyID, fx.OwnerID, "test property "+suffix)
	if err != nil {
		t.Fatalf("creating test property: %v", err)
	}

	t.Cleanup(func() {
		cleanCtx := context.Background()
		// Delete in dependency order: visits, property, users.
		env.pool.Exec(cleanCtx, "DELETE FROM visits WHERE property_id = $1", fx.PropertyID)                                //nolint:errcheck // best-effort cleanup
		env.pool.Exec(cleanCtx, "DELETE FROM properties WHERE id = $1", fx.PropertyID)                                     //nolint:errcheck // best-effort cleanup
		env.pool.Exec(cleanCtx, "DELETE FROM users WHERE id IN ($1, $2, $3)", fx.VisitorID, fx.OwnerID, fx.AdminID)        //nolint:errcheck // best-effort cleanup
	})

	return store.Base{Pool: env.pool, Log: env.log}, fx
}

// futureSlot returns an hour-aligned time n days out, unique enough for
// parallel tests on the same property.
func futureSlot(days int) time.Time {
	return time.Now().UTC().Truncate(time.Hour).Add(time.Duration(days) * 24 * time.Hour)
}
