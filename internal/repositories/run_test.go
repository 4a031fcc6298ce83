package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/plsync/internal/models"
	"github.com/desertthunder/plsync/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newRun(id string, started time.Time, failures ...models.Failure) *models.Run {
	added := 3
	return &models.Run{
		ID:         id,
		PlaylistID: "PL1",
		SourcePath: "list.tsv",
		Loaded:     10,
		Existing:   5,
		Planned:    5,
		Attempted:  added + len(failures),
		Added:      added,
		Failed:     len(failures),
		DailyLimit: 3,
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Second),
		Failures:   failures,
	}
}

func TestRunRepository(t *testing.T) {
	t.Run("Create and Get", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		run := newRun("", base,
			models.Failure{VideoID: "V2", Reason: "HTTP 400 Video not found."},
			models.Failure{VideoID: "V7", Reason: "context deadline exceeded"},
		)
		run.LimitReached = true

		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}
		if run.ID == "" {
			t.Fatal("run ID should be set after creation")
		}

		got, err := repo.Get(run.ID)
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got.PlaylistID != "PL1" || got.Added != 3 || got.Failed != 2 || !got.LimitReached {
			t.Errorf("unexpected run %+v", got)
		}
		if !got.StartedAt.Equal(run.StartedAt) || !got.FinishedAt.Equal(run.FinishedAt) {
			t.Errorf("timestamps not preserved: %v %v", got.StartedAt, got.FinishedAt)
		}
		if len(got.Failures) != 2 || got.Failures[0].VideoID != "V2" || got.Failures[1].VideoID != "V7" {
			t.Errorf("failures not returned in order: %v", got.Failures)
		}
	})

	t.Run("Create rejects invalid run", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		run := newRun("r1", base)
		run.Added = 99

		if err := repo.Create(run); err == nil || !strings.Contains(err.Error(), "validation failed") {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("Create is atomic", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewRunRepository(db)
		if err := repo.Create(newRun("dup", base)); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		again := newRun("dup", base, models.Failure{VideoID: "X", Reason: "r"})
		if err := repo.Create(again); err == nil {
			t.Fatal("expected primary key violation")
		}

		failures, err := repo.Failures("dup")
		if err != nil {
			t.Fatalf("failed to read failures: %v", err)
		}
		if len(failures) != 0 {
			t.Errorf("expected rolled back failures, got %v", failures)
		}
	})

	t.Run("Get missing", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		if _, err := repo.Get("nope"); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("List newest first with limit", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		for i := range 5 {
			if err := repo.Create(newRun(fmt.Sprintf("run-%d", i), base.Add(time.Duration(i)*time.Hour))); err != nil {
				t.Fatalf("failed to create run: %v", err)
			}
		}

		runs, err := repo.List(map[string]any{"limit": 3})
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 3 {
			t.Fatalf("expected 3 runs, got %d", len(runs))
		}
		if runs[0].ID != "run-4" || runs[2].ID != "run-2" {
			t.Errorf("unexpected order: %s %s %s", runs[0].ID, runs[1].ID, runs[2].ID)
		}

		all, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(all) != 5 {
			t.Errorf("expected 5 runs, got %d", len(all))
		}
	})

	t.Run("List by playlist", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		other := newRun("other", base)
		other.PlaylistID = "PL2"
		for _, run := range []*models.Run{newRun("mine", base), other} {
			if err := repo.Create(run); err != nil {
				t.Fatalf("failed to create run: %v", err)
			}
		}

		runs, err := repo.List(map[string]any{"playlist_id": "PL2"})
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 1 || runs[0].ID != "other" {
			t.Errorf("expected only PL2 run, got %v", runs)
		}
	})

	t.Run("Find by prefix", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		for _, id := range []string{"abc12345-0000", "abd99999-0000", "x_y"} {
			if err := repo.Create(newRun(id, base)); err != nil {
				t.Fatalf("failed to create run: %v", err)
			}
		}

		run, err := repo.Find("abc1")
		if err != nil {
			t.Fatalf("failed to find run: %v", err)
		}
		if run.ID != "abc12345-0000" {
			t.Errorf("expected abc12345-0000, got %s", run.ID)
		}

		if _, err := repo.Find("ab"); err == nil || !strings.Contains(err.Error(), "ambiguous") {
			t.Errorf("expected ambiguous error, got %v", err)
		}
		if _, err := repo.Find("zzz"); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
		if _, err := repo.Find("  "); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if _, err := repo.Find("x%"); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("wildcards should be matched literally, got %v", err)
		}
		if run, err := repo.Find("x_"); err != nil || run.ID != "x_y" {
			t.Errorf("expected literal underscore match, got %v %v", run, err)
		}
	})

	t.Run("Delete cascades failures", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		run := newRun("gone", base, models.Failure{VideoID: "V1", Reason: "r"})
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		if err := repo.Delete("gone"); err != nil {
			t.Fatalf("failed to delete run: %v", err)
		}
		failures, err := repo.Failures("gone")
		if err != nil {
			t.Fatalf("failed to read failures: %v", err)
		}
		if len(failures) != 0 {
			t.Errorf("expected failures to be deleted, got %v", failures)
		}
		if err := repo.Delete("gone"); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound on second delete, got %v", err)
		}
	})
}
