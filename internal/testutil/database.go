// Package testutil provides shared fixtures for life-sheet tests: a migrated
// in-memory database and an in-memory profile store with call tracking.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/life-sheet/internal/service"
	"github.com/Veraticus/life-sheet/internal/storage"
)

// TestDB is a migrated in-memory database with a registered user.
type TestDB struct {
	Storage *storage.SQLiteStorage
	Session service.Session
	t       *testing.T
}

// SetupTestDB creates a new in-memory database, runs migrations and registers
// a user whose session is returned in TestDB.Session. Cleanup is automatic.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	db := &TestDB{Storage: store, t: t}
	db.Session = db.NewSession("tester")
	return db
}

// NewSession registers another user and returns its session.
func (db *TestDB) NewSession(username string) service.Session {
	db.t.Helper()

	user, err := db.Storage.CreateUser(context.Background(), service.Registration{
		Username: username,
		Password: "testpassword",
	})
	if err != nil {
		db.t.Fatalf("failed to create user %q: %v", username, err)
	}
	return service.Session{Token: "test-" + username, UserID: user.ID, Username: user.Username}
}
