package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/plsync/internal/formatter"
	"github.com/desertthunder/plsync/internal/shared"
	"github.com/desertthunder/plsync/internal/tasks"
	"github.com/desertthunder/plsync/internal/ui"
	"github.com/urfave/cli/v3"
)

// syncCommand adds the videos listed in a TSV file to a playlist
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Add videos from a TSV file (VIDEO_ID<TAB>TITLE) to a playlist, skipping ones already there",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "playlist",
				Usage:    "Destination playlist ID (PL...)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "tsv",
				Usage:    "Path to TSV file: VIDEO_ID<TAB>TITLE",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "daily-limit",
				Usage: "Max successful inserts this run (each insert costs 50 quota units)",
				Value: 180,
			},
			&cli.FloatFlag{
				Name:  "sleep",
				Usage: "Seconds between insert attempts",
				Value: 0.2,
			},
			&cli.StringFlag{
				Name:  "failure-log",
				Usage: "File that receives VIDEO_ID<TAB>REASON for every failed insert",
				Value: "failures.log",
			},
			&cli.BoolFlag{
				Name:  "no-dedupe",
				Usage: "Attempt ids that repeat in the TSV once per occurrence",
			},
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "Do not record this run in the history database",
			},
		},
		Action: r.Sync,
	}
}

// syncSettings merges flags over the loaded config. Flags win only when given explicitly.
func (r *Runner) syncSettings(cmd *cli.Command) (tasks.RunOpts, string, error) {
	sc := r.config.Sync

	limit := sc.DailyLimit
	if cmd.IsSet("daily-limit") {
		limit = int(cmd.Int("daily-limit"))
	}
	if limit < 0 {
		return tasks.RunOpts{}, "", fmt.Errorf("%w: --daily-limit must not be negative", shared.ErrInvalidArgument)
	}

	sleep := sc.Sleep()
	if cmd.IsSet("sleep") {
		if cmd.Float("sleep") < 0 {
			return tasks.RunOpts{}, "", fmt.Errorf("%w: --sleep must not be negative", shared.ErrInvalidArgument)
		}
		sleep = shared.SecondsToDuration(cmd.Float("sleep"))
	}

	logPath := sc.FailureLog
	if cmd.IsSet("failure-log") {
		logPath = cmd.String("failure-log")
	}
	if logPath == "" {
		return tasks.RunOpts{}, "", fmt.Errorf("%w: failure log path must not be empty", shared.ErrInvalidArgument)
	}

	opts := tasks.RunOpts{
		PlaylistID:  cmd.String("playlist"),
		SourcePath:  cmd.String("tsv"),
		DailyLimit:  limit,
		Sleep:       sleep,
		CallTimeout: sc.CallTimeout(),
		PageSize:    int64(sc.PageSize),
		Dedupe:      sc.DedupeInput && !cmd.Bool("no-dedupe"),
	}
	return opts, logPath, nil
}

// Sync runs the load → fetch → plan → insert pipeline and reports the outcome.
//
// Insert failures do not fail the command; they are summarized and written to the failure log.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	opts, logPath, err := r.syncSettings(cmd)
	if err != nil {
		return err
	}

	r.logger.Debug("starting sync",
		"playlist", opts.PlaylistID,
		"tsv", opts.SourcePath,
		"daily_limit", opts.DailyLimit,
		"sleep", opts.Sleep,
		"dedupe", opts.Dedupe,
	)

	progressCh := make(chan tasks.ProgressUpdate)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.writeProgress(update)
		}
	}()

	engine := tasks.NewPlaylistEngine(r.connector(), shared.WithLogger(r.logger, "playlist", opts.PlaylistID))
	result, err := engine.Run(ctx, progressCh, opts)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	if err := formatter.WriteSummary(r.output, result.Outcome, logPath); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	var logErr error
	if len(result.Outcome.Failures) > 0 {
		logErr = formatter.WriteFailureLog(logPath, result.Outcome.Failures)
	}

	if !cmd.Bool("no-history") {
		r.recordRun(result)
	}

	return logErr
}

// writeProgress prints an engine update. Per-page fetch updates only go to the debug log;
// the limit-reached notice is the only insert update that carries data.
func (r *Runner) writeProgress(update tasks.ProgressUpdate) {
	switch {
	case update.Phase == tasks.PhaseFetch && update.Total == 0:
		r.logger.Debug(update.Message)
	case update.Phase == tasks.PhaseInsert && update.Data != nil:
		r.writePlain("%s\n", ui.Styles.Warn(update.Message))
	default:
		r.writePlain("%s\n", update.Message)
	}
}

// recordRun stores the run in the history database. Failures here are logged and otherwise ignored.
func (r *Runner) recordRun(result *tasks.RunResult) {
	db, runs, err := r.openRuns()
	if err != nil {
		r.logger.Warn("run history unavailable", "error", err)
		return
	}
	defer db.Close()

	run := result.Record(shared.GenerateID())
	if err := runs.Create(run); err != nil {
		r.logger.Warn("failed to record run", "error", err)
		return
	}
	r.logger.Debug("recorded run", "id", run.ID)
}
