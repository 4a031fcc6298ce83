package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/plsync/internal/formatter"
	"github.com/desertthunder/plsync/internal/shared"
	"github.com/desertthunder/plsync/internal/ui"
	"github.com/urfave/cli/v3"
)

// historyCommand lists and inspects recorded sync runs
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recent sync runs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to show",
				Value: 20,
			},
			&cli.StringFlag{
				Name:  "playlist",
				Usage: "Only show runs for this playlist",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format: table or csv",
				Value: "table",
			},
		},
		Action: r.History,
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show one run and its failures",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output JSON",
					},
				},
				Action: r.HistoryShow,
			},
			{
				Name:  "delete",
				Usage: "Delete one run and its failures",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.HistoryDelete,
			},
		},
	}
}

// History prints recent runs, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	if format != "table" && format != "csv" {
		return fmt.Errorf("%w: format must be table or csv, got %q", shared.ErrInvalidArgument, format)
	}

	db, repo, err := r.openRuns()
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := repo.List(map[string]any{
		"limit":       int(cmd.Int("limit")),
		"playlist_id": cmd.String("playlist"),
	})
	if err != nil {
		return err
	}

	if format == "csv" {
		data, err := formatter.ExportRunsToCSV(runs)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	}

	if len(runs) == 0 {
		return r.writePlain("%s\n", ui.Styles.Help("No runs recorded yet."))
	}
	return r.writePlain("%s\n", ui.RunTable(runs))
}

// HistoryShow prints a single run, looked up by full or short ID.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: run id", shared.ErrMissingArgument)
	}

	db, repo, err := r.openRuns()
	if err != nil {
		return err
	}
	defer db.Close()

	run, err := repo.Find(id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		data, err := formatter.ExportRunToJSON(run)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	}
	return r.writePlain("%s", formatter.ExportRunToText(run))
}

// HistoryDelete removes a single run, looked up by full or short ID.
func (r *Runner) HistoryDelete(ctx context.Context, cmd *cli.Command) error {
	db, repo, err := r.openRuns()
	if err != nil {
		return err
	}
	defer db.Close()

	run, err := repo.Find(cmd.StringArg("id"))
	if err != nil {
		return err
	}
	if err := repo.Delete(run.ID); err != nil {
		return err
	}

	r.logger.Debug("deleted run", "id", run.ID)
	return r.writePlain("%s %s\n", ui.Styles.Success("✓ Deleted run"), run.ID)
}
