package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ems/internal/models"
	"github.com/desertthunder/ems/internal/repositories"
	"github.com/desertthunder/ems/internal/services"
	"github.com/desertthunder/ems/internal/sftpclient"
	"github.com/desertthunder/ems/internal/shared"
	"github.com/desertthunder/ems/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The config and the store are resolved lazily from the --config flag, so commands that never
// touch the database (setup config, --help) do not open it.
type Runner struct {
	config   *shared.Config
	svc      services.Service
	uploader tasks.Uploader
	engine   *tasks.EmployeeEngine
	logger   *log.Logger
	output   io.Writer
	closers  []func()
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config   *shared.Config
	Service  services.Service
	Uploader tasks.Uploader
	Logger   *log.Logger
	Output   io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:   opts.Config,
		svc:      opts.Service,
		uploader: opts.Uploader,
		logger:   opts.Logger,
		output:   opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, serveCommand, employeesCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by the runner and anything it builds afterwards.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Close releases the store opened by [Runner.Service]. An injected service is left alone.
func (r *Runner) Close(ctx context.Context, cmd *cli.Command) error {
	if len(r.closers) == 0 {
		return nil
	}

	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
	r.closers = nil
	r.svc = nil
	r.engine = nil
	return nil
}

// Config resolves the configuration from --config and --env-file once and applies the log level.
func (r *Runner) Config(cmd *cli.Command) (*shared.Config, error) {
	if r.config != nil {
		return r.config, nil
	}

	config, err := shared.ResolveConfig(cmd.String("config"), cmd.String("env-file"))
	if err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	level, err := shared.ParseLogLevel(config.Log.Level)
	if err != nil {
		return nil, err
	}
	shared.SetLogLevel(r.logger, level)

	r.config = config
	return config, nil
}

// Service opens the configured store once and wraps it in an [services.EmployeeService].
func (r *Runner) Service(ctx context.Context, cmd *cli.Command) (services.Service, error) {
	if r.svc != nil {
		return r.svc, nil
	}

	config, err := r.Config(cmd)
	if err != nil {
		return nil, err
	}

	repo, closeFn, err := r.openStore(ctx, config.Database)
	if err != nil {
		return nil, err
	}
	r.closers = append(r.closers, closeFn)

	r.svc = services.NewEmployeeService(repo, r.logger)
	return r.svc, nil
}

// Engine builds the bulk import/export engine, with an SFTP uploader when [export.sftp] is complete.
func (r *Runner) Engine(ctx context.Context, cmd *cli.Command) (*tasks.EmployeeEngine, error) {
	if r.engine != nil {
		return r.engine, nil
	}

	svc, err := r.Service(ctx, cmd)
	if err != nil {
		return nil, err
	}

	if r.uploader == nil && r.config != nil && r.config.Export.SFTP.Enabled() {
		uploader, err := sftpclient.NewUploader(r.config.Export.SFTP)
		if err != nil {
			r.logger.Warn("sftp upload disabled", "error", err)
		} else {
			r.uploader = uploader
		}
	}

	r.engine = tasks.NewEmployeeEngine(svc, r.uploader)
	return r.engine, nil
}

// openStore connects to the configured driver and applies pending migrations.
func (r *Runner) openStore(ctx context.Context, cfg shared.DatabaseConfig) (models.EmployeeRepository, func(), error) {
	switch cfg.Driver {
	case shared.DriverPostgres:
		r.logger.Debug("opening postgres store")

		pool, err := shared.NewPostgresPool(ctx, cfg.URL, cfg.MaxOpenConns)
		if err != nil {
			return nil, nil, err
		}
		if err := shared.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return repositories.NewPostgresEmployeeRepository(pool), pool.Close, nil

	default:
		r.logger.Debug("opening sqlite store", "path", cfg.Path)

		db, err := shared.NewDatabase(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		shared.ConfigureDatabase(db, cfg.MaxOpenConns, cfg.MaxIdleConns)

		if err := shared.RunMigrations(db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return repositories.NewEmployeeRepository(db), func() { db.Close() }, nil
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
