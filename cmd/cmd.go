// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func verboseFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "Enable debug logging",
	}
}

// importCommand handles CSV import operations
func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import a Last.fm CSV export into ListenBrainz",
		Commands: []*cli.Command{
			{
				Name:  "dry-run",
				Usage: "Validate the CSV and preview the import without submitting",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "file"},
				},
				Flags: []cli.Flag{
					configFlag(),
					verboseFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output the report as JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
						Value: true,
					},
					&cli.StringFlag{
						Name:  "errors-csv",
						Usage: "Write rejected rows to a CSV file at this path",
					},
				},
				Action: r.ImportDryRun,
			},
			{
				Name:  "submit",
				Usage: "Submit listens to ListenBrainz, resuming from any saved progress",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "file"},
				},
				Flags: []cli.Flag{
					configFlag(),
					verboseFlag(),
					&cli.StringFlag{
						Name:  "progress",
						Usage: "Progress file path (default: <file>.progress.json)",
					},
					&cli.BoolFlag{
						Name:  "skip-invalid",
						Usage: "Drop invalid rows instead of failing the run",
					},
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Submit without asking for confirmation",
					},
				},
				Action: r.ImportSubmit,
			},
			{
				Name:    "ui",
				Aliases: []string{"interactive"},
				Usage:   "Submit with an interactive progress display",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "file"},
				},
				Flags: []cli.Flag{
					configFlag(),
					verboseFlag(),
					&cli.StringFlag{
						Name:  "progress",
						Usage: "Progress file path (default: <file>.progress.json)",
					},
					&cli.BoolFlag{
						Name:  "skip-invalid",
						Usage: "Drop invalid rows instead of failing the run",
					},
				},
				Action: r.ImportUI,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and the audit database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write an example config.toml",
				Flags: []cli.Flag{
					configFlag(),
					verboseFlag(),
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize the audit database and run migrations",
				Flags: []cli.Flag{
					configFlag(),
					verboseFlag(),
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:  "status",
				Usage: "Validate the configured ListenBrainz token",
				Flags: []cli.Flag{
					configFlag(),
					verboseFlag(),
				},
				Action: r.AuthStatus,
			},
		},
	}
}

// historyCommand lists confirmed submission batches from the audit log.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List confirmed submission batches",
		Flags: []cli.Flag{
			configFlag(),
			verboseFlag(),
			&cli.StringFlag{
				Name:  "job",
				Usage: "Filter by import job ID",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}
