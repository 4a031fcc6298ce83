package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plsync/internal/models"
	"github.com/desertthunder/plsync/internal/services"
	"github.com/desertthunder/plsync/internal/shared"
	"github.com/desertthunder/plsync/internal/source"
)

// Connector returns the authenticated service for a run.
// It is called once per run, after the source list has loaded.
type Connector func(ctx context.Context) (services.Service, error)

// SyncEngine defines the playlist sync operation.
type SyncEngine interface {
	// Run loads the source list, fetches the playlist's current contents, plans the work and inserts
	// what is missing, up to the daily limit.
	Run(ctx context.Context, progress chan<- ProgressUpdate, opts RunOpts) (*RunResult, error)
}

// RunOpts configures a single sync run.
type RunOpts struct {
	PlaylistID  string        // destination playlist
	SourcePath  string        // TSV of video_id<TAB>title rows
	DailyLimit  int           // successful inserts allowed this run
	Sleep       time.Duration // spacing between insert attempts
	CallTimeout time.Duration // deadline for each remote call
	PageSize    int64         // listing page size, clamped to 1..50
	Dedupe      bool          // drop repeated ids in the source list
}

// RunResult contains everything a completed run produced, ready for reporting.
type RunResult struct {
	PlaylistID string
	SourcePath string
	Loaded     int // rows read from the source list
	Existing   int // ids already in the playlist
	Planned    int // work items after filtering
	DailyLimit int
	Outcome    *models.RunOutcome
	StartedAt  time.Time
	FinishedAt time.Time
}

// Record converts the result into a persistable [models.Run] with the given id.
func (r *RunResult) Record(id string) *models.Run {
	return &models.Run{
		ID:           id,
		PlaylistID:   r.PlaylistID,
		SourcePath:   r.SourcePath,
		Loaded:       r.Loaded,
		Existing:     r.Existing,
		Planned:      r.Planned,
		Attempted:    r.Outcome.Attempted,
		Added:        r.Outcome.Added,
		Failed:       r.Outcome.Failed(),
		DailyLimit:   r.DailyLimit,
		LimitReached: r.Outcome.LimitReached,
		StartedAt:    r.StartedAt,
		FinishedAt:   r.FinishedAt,
		Failures:     r.Outcome.Failures,
	}
}

// PlaylistEngine implements [SyncEngine] against a remote playlist service.
type PlaylistEngine struct {
	connect Connector
	logger  *log.Logger
}

// NewPlaylistEngine creates a new PlaylistEngine that obtains its service from connect.
func NewPlaylistEngine(connect Connector, logger *log.Logger) *PlaylistEngine {
	if logger == nil {
		logger = log.Default()
	}
	return &PlaylistEngine{connect: connect, logger: logger}
}

// Run executes Load → FetchExisting → Plan → Insert.
//
// Errors are returned only for an unreadable source list, a failed connection, or a failed listing;
// in each case no outcome exists. Insert failures are part of the result.
func (e *PlaylistEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, opts RunOpts) (*RunResult, error) {
	if opts.PlaylistID == "" {
		return nil, fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}
	if opts.SourcePath == "" {
		return nil, fmt.Errorf("%w: source path", shared.ErrMissingArgument)
	}
	if e.connect == nil {
		return nil, fmt.Errorf("%w: no service connector", shared.ErrServiceUnavailable)
	}

	result := &RunResult{
		PlaylistID: opts.PlaylistID,
		SourcePath: opts.SourcePath,
		DailyLimit: opts.DailyLimit,
		StartedAt:  time.Now(),
	}

	sendProgress(ctx, progress, readingSourceUpdate(opts.SourcePath))
	entries, err := source.LoadTSV(opts.SourcePath)
	if err != nil {
		return nil, err
	}
	result.Loaded = len(entries)
	sendProgress(ctx, progress, loadedSourceUpdate(len(entries)))

	svc, err := e.connect(ctx)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, fmt.Errorf("%w: connector returned no service", shared.ErrServiceUnavailable)
	}
	svc = WithCallTimeout(svc, opts.CallTimeout)

	sendProgress(ctx, progress, fetchingExistingUpdate())
	existing, err := fetchExisting(ctx, progress, svc, opts.PlaylistID, opts.PageSize)
	if err != nil {
		return nil, err
	}
	result.Existing = len(existing)
	sendProgress(ctx, progress, existingUpdate(len(existing)))
	e.logger.Debug("fetched existing set", "playlist", opts.PlaylistID, "service", svc.Name(), "count", len(existing))

	items := Plan(entries, existing, PlanOpts{Dedupe: opts.Dedupe})
	result.Planned = len(items)
	sendProgress(ctx, progress, plannedUpdate(len(items)))

	inserter := &Inserter{
		Service:    svc,
		DailyLimit: opts.DailyLimit,
		Sleep:      opts.Sleep,
		Progress:   progress,
		Logger:     e.logger,
	}
	result.Outcome = inserter.Insert(ctx, opts.PlaylistID, items)
	result.FinishedAt = time.Now()

	return result, nil
}
