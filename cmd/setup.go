package main

import (
	"context"

	"github.com/desertthunder/lbx/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes an example config.toml to the configured path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.writePlain("Created %s\n", path)
	r.writePlain("Set your ListenBrainz token via the %s environment variable (or a .env file).\n", shared.TokenEnvVar)
	return nil
}

// SetupDatabase initializes the audit database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	r.logger.Info("database initialized", "path", r.config.Database.Path)
	r.writePlain("Database ready at %s\n", r.config.Database.Path)
	return nil
}
