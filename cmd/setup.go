package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/plsync/internal/shared"
	"github.com/desertthunder/plsync/internal/ui"
	"github.com/urfave/cli/v3"
)

// setupCommand handles setup operations for configuration and the history database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write an example config.toml",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Where to write the file",
						Value:   defaultConfigPath,
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize the history database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Revert the most recent migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// SetupConfig writes the embedded example configuration. An existing file is left untouched.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("output")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	return r.writePlain("%s %s\n", ui.Styles.Success("✓ Wrote"), path)
}

// SetupDatabase initializes the database and runs migrations. With --rollback it reverts the newest migration.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer db.Close()

	if cmd.Bool("rollback") {
		if err := shared.RollbackMigration(db); err != nil {
			return err
		}
		version, err := shared.SchemaVersion(db)
		if err != nil {
			return err
		}
		r.logger.Info("rolled back migration", "version", version+1)
		return r.writePlain("%s %s (schema version %d)\n", ui.Styles.Warn("⚠ Rolled back:"), r.config.Database.Path, version)
	}

	version, err := shared.SchemaVersion(db)
	if err != nil {
		return err
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return r.writePlain("%s %s (schema version %d)\n", ui.Styles.Success("✓ Database ready:"), r.config.Database.Path, version)
}
