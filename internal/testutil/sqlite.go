package testutil

import (
	"context"
	"testing"

	"github.com/Skotchmaster/product_api/internal/db"
	"github.com/Skotchmaster/product_api/internal/repo"
)

// NewSQLiteRepo returns a migrated in-memory store closed at test cleanup.
func NewSQLiteRepo(t *testing.T) *repo.GormRepo {
	t.Helper()

	gdb, err := db.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(gdb) })

	r := &repo.GormRepo{DB: gdb}
	if err := r.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return r
}
