package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plsync/internal/repositories"
	"github.com/desertthunder/plsync/internal/server"
	"github.com/desertthunder/plsync/internal/services"
	"github.com/desertthunder/plsync/internal/shared"
	"github.com/desertthunder/plsync/internal/tasks"
	"github.com/desertthunder/plsync/internal/ui"
	"github.com/urfave/cli/v3"
)

const (
	version           = "0.1.0"
	defaultConfigPath = "config.toml"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config    *shared.Config
	logger    *log.Logger
	output    io.Writer
	connect   tasks.Connector
	authorize services.Authorizer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config    *shared.Config
	Logger    *log.Logger
	Output    io.Writer
	Connect   tasks.Connector     // replaces the YouTube connection built from config
	Authorize services.Authorizer // replaces the browser-based loopback flow
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:    opts.Config,
		logger:    opts.Logger,
		output:    opts.Output,
		connect:   opts.Connect,
		authorize: opts.Authorize,
	}
}

// app builds the root command.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:     "plsync",
		Usage:    "Sync a TSV list of videos into a YouTube playlist",
		Version:  version,
		Writer:   r.output,
		Flags:    r.globalFlags(),
		Before:   r.before,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		syncCommand, authCommand, setupCommand, historyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   defaultConfigPath,
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable debug logging",
		},
	}
}

// before loads the configuration file and applies global flags.
//
// A missing file is only an error when --config was given explicitly.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	path := cmd.String("config")
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !cmd.IsSet("config") {
			r.logger.Debug("no config file, using defaults", "path", path)
			return ctx, nil
		}
		return ctx, fmt.Errorf("%w: %s", shared.ErrMissingConfig, path)
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return ctx, err
	}
	r.config = config
	r.logger.Debug("loaded config", "path", path)
	return ctx, nil
}

// connector returns the injected connector or one that authorizes against YouTube using the configured credentials.
func (r *Runner) connector() tasks.Connector {
	if r.connect != nil {
		return r.connect
	}
	return func(ctx context.Context) (services.Service, error) {
		auth, err := r.googleAuth()
		if err != nil {
			return nil, err
		}
		client, err := auth.Client(ctx)
		if err != nil {
			return nil, err
		}
		return services.NewYouTubeService(ctx, client)
	}
}

func (r *Runner) googleAuth() (*services.GoogleAuth, error) {
	authorize := r.authorize
	if authorize == nil {
		loopback := &server.Loopback{
			Addr:   r.config.Server.Addr(),
			Output: r.output,
			Logger: shared.WithLogger(r.logger, "component", "oauth"),
		}
		authorize = loopback.Authorize
	}

	creds := r.config.Credentials.YouTube
	return services.NewGoogleAuth(creds.ClientSecretPath, creds.TokenPath, r.config.Server.RedirectURL(), authorize)
}

// openRuns opens the history database and returns its repository. The caller closes the database.
func (r *Runner) openRuns() (*sql.DB, *repositories.RunRepository, error) {
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, nil, err
	}
	return db, repositories.NewRunRepository(db), nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("%s\n", ui.Styles.Title(title))
	r.writePlain("═══════════════════════════════════════\n")
}
