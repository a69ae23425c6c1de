package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ems/internal/shared"
)

// SetupDatabase initializes the database and runs migrations.
//
// Creates config.toml from the embedded template when it does not exist yet.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else {
			r.logger.Info("config file created", "path", configPath)
		}
	}

	config, err := r.Config(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("initializing database", "driver", config.Database.Driver)

	if _, err := r.Service(ctx, cmd); err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	switch config.Database.Driver {
	case shared.DriverPostgres:
		r.logger.Info("setup complete for postgres database")
		r.writePlain("✓ Database ready (postgres)\n")
	default:
		r.logger.Infof("setup complete for database: %v", config.Database.Path)
		r.writePlain("✓ Database ready at %s\n", config.Database.Path)
	}
	return nil
}

// SetupRollback rolls back the most recent migration.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	config, err := r.Config(cmd)
	if err != nil {
		return err
	}

	switch config.Database.Driver {
	case shared.DriverPostgres:
		pool, err := shared.NewPostgresPool(ctx, config.Database.URL, config.Database.MaxOpenConns)
		if err != nil {
			return err
		}
		defer pool.Close()
		err = shared.RollbackPostgresMigration(ctx, pool)
	default:
		db, openErr := shared.NewDatabase(config.Database.Path)
		if openErr != nil {
			return openErr
		}
		defer db.Close()
		err = shared.RollbackMigration(db)
	}

	if errors.Is(err, shared.ErrNoMigrations) {
		r.logger.Warn("nothing to roll back")
		return nil
	}
	if err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}

	r.writePlain("✓ Rolled back the latest migration\n")
	return nil
}

// SetupConfig writes the example configuration to --config.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", configPath)
	r.writePlain("✓ Wrote %s\n", configPath)
	r.writePlain("Edit [database] and [export.sftp], or set EMS_* variables in .env\n")
	return nil
}
