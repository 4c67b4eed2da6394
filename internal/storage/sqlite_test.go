package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "expenses.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	got, err := repo.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll() on fresh db error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("fresh db has %d records", len(got))
	}

	if err := repo.WriteAll(ctx, sample); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	got, err = repo.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(got) != len(sample) {
		t.Fatalf("got %d records, want %d", len(got), len(sample))
	}
	for i := range sample {
		if got[i] != sample[i] {
			t.Errorf("[%d] = %+v, want %+v", i, got[i], sample[i])
		}
	}
}

func TestSQLiteRepository_WriteAllReplaces(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if err := repo.WriteAll(ctx, sample); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	if err := repo.WriteAll(ctx, sample[1:]); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}

	got, _ := repo.ReadAll(ctx)
	if len(got) != 1 || got[0].ID != sample[1].ID {
		t.Errorf("ReadAll() = %+v, want only %s", got, sample[1].ID)
	}
}

func TestSQLiteRepository_KeepsDuplicateIDs(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	dup := append(sample[:1:1], sample[0])
	if err := repo.WriteAll(ctx, dup); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	got, _ := repo.ReadAll(ctx)
	if len(got) != 2 {
		t.Errorf("got %d records, want 2", len(got))
	}
}

func TestRunMigrations_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.db")

	v1, err := RunMigrations(path)
	if err != nil {
		t.Fatalf("first RunMigrations() error = %v", err)
	}
	v2, err := RunMigrations(path)
	if err != nil {
		t.Fatalf("second RunMigrations() error = %v", err)
	}
	if v1 != 1 || v2 != 1 {
		t.Errorf("versions = %d, %d, want 1, 1", v1, v2)
	}
}
