package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/plsync/internal/models"
	"github.com/desertthunder/plsync/internal/shared"
)

// DefaultListLimit caps List when no "limit" criterion is given.
const DefaultListLimit = 20

var _ models.Repository[*models.Run] = (*RunRepository)(nil)

// RunRepository implements models.Repository[*models.Run] for sync run history.
//
// A run and its failures are written together; failures come back in attempt order.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a run and its failures. An empty ID is filled with a generated one.
func (r *RunRepository) Create(run *models.Run) error {
	if run.ID == "" {
		run.ID = shared.GenerateID()
	}
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return withTx(r.db, func(tx *sql.Tx) error {
		query := `
			INSERT INTO runs (id, playlist_id, source_path, loaded, existing, planned, attempted, added, failed, daily_limit, limit_reached, started_at, finished_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err := tx.Exec(query,
			run.ID,
			run.PlaylistID,
			run.SourcePath,
			run.Loaded,
			run.Existing,
			run.Planned,
			run.Attempted,
			run.Added,
			run.Failed,
			run.DailyLimit,
			run.LimitReached,
			run.StartedAt,
			run.FinishedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		stmt, err := tx.Prepare(`INSERT INTO run_failures (run_id, position, video_id, reason) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare failure insert: %w", err)
		}
		defer stmt.Close()

		for i, f := range run.Failures {
			if _, err := stmt.Exec(run.ID, i, f.VideoID, f.Reason); err != nil {
				return fmt.Errorf("failed to insert failure %s: %w", f.VideoID, err)
			}
		}
		return nil
	})
}

// Get retrieves a run by ID along with its failures
func (r *RunRepository) Get(id string) (*models.Run, error) {
	query := `
		SELECT id, playlist_id, source_path, loaded, existing, planned, attempted, added, failed, daily_limit, limit_reached, started_at, finished_at
		FROM runs
		WHERE id = ?
	`

	run, err := scanRun(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	run.Failures, err = r.Failures(run.ID)
	if err != nil {
		return nil, err
	}
	return run, nil
}

// Find resolves a full run ID or a unique prefix of one, such as the short ID shown by `history`.
func (r *RunRepository) Find(prefix string) (*models.Run, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, fmt.Errorf("%w: run id", shared.ErrMissingArgument)
	}

	escaped := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(prefix)
	rows, err := r.db.Query(`SELECT id FROM runs WHERE id LIKE ? ESCAPE '\' LIMIT 2`, escaped+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to look up run: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	switch len(ids) {
	case 0:
		return nil, fmt.Errorf("%w: %s", shared.ErrRunNotFound, prefix)
	case 1:
		return r.Get(ids[0])
	default:
		return nil, fmt.Errorf("run id prefix %q is ambiguous", prefix)
	}
}

// List retrieves runs newest first. Supported criteria: "playlist_id" (string) and "limit" (int).
//
// Failures are not loaded; use [RunRepository.Get] for a single run's details.
func (r *RunRepository) List(criteria map[string]any) ([]*models.Run, error) {
	query := `
		SELECT id, playlist_id, source_path, loaded, existing, planned, attempted, added, failed, daily_limit, limit_reached, started_at, finished_at
		FROM runs
		WHERE 1 = 1
	`
	args := []any{}

	if playlistID, ok := criteria["playlist_id"].(string); ok && playlistID != "" {
		query += " AND playlist_id = ?"
		args = append(args, playlistID)
	}

	limit := DefaultListLimit
	if l, ok := criteria["limit"].(int); ok && l > 0 {
		limit = l
	}
	query += " ORDER BY started_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// Failures retrieves the failures recorded for a run in attempt order
func (r *RunRepository) Failures(runID string) ([]models.Failure, error) {
	rows, err := r.db.Query(`SELECT video_id, reason FROM run_failures WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query failures: %w", err)
	}
	defer rows.Close()

	var failures []models.Failure
	for rows.Next() {
		var f models.Failure
		if err := rows.Scan(&f.VideoID, &f.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan failure: %w", err)
		}
		failures = append(failures, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating failures: %w", err)
	}
	return failures, nil
}

// Delete removes a run; its failures go with it
func (r *RunRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanRun scans a runs row from [sql.Row] or [sql.Rows] into a [models.Run]
func scanRun(row scanner) (*models.Run, error) {
	var run models.Run
	err := row.Scan(
		&run.ID,
		&run.PlaylistID,
		&run.SourcePath,
		&run.Loaded,
		&run.Existing,
		&run.Planned,
		&run.Attempted,
		&run.Added,
		&run.Failed,
		&run.DailyLimit,
		&run.LimitReached,
		&run.StartedAt,
		&run.FinishedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	return &run, nil
}
