package main

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lbx/internal/importer"
	"github.com/desertthunder/lbx/internal/services"
	"github.com/desertthunder/lbx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config  *shared.Config
	service services.Service
	logger  *log.Logger
	output  io.Writer
	input   io.Reader
	audit   importer.AuditLog
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *shared.Config
	Service services.Service
	Logger  *log.Logger
	Output  io.Writer
	Input   io.Reader
	Audit   importer.AuditLog
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
	if opts.Input == nil {
		opts.Input = os.Stdin
	}

	return &Runner{
		config:  opts.Config,
		service: opts.Service,
		logger:  opts.Logger,
		output:  opts.Output,
		input:   opts.Input,
		audit:   opts.Audit,
	}
}

// confirm asks the user a yes/no question on the runner's input stream.
// Anything other than y/yes declines.
func (r *Runner) confirm(prompt string) bool {
	r.writePlain("%s [y/N] ", prompt)

	scanner := bufio.NewScanner(r.input)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, importCommand, historyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// reloadConfig swaps in the config file named by the command's --config flag
// when it exists, and raises the log level to debug under --verbose.
func (r *Runner) reloadConfig(cmd *cli.Command) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	path := cmd.String("config")
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		r.logger.Warn("failed to load config, using defaults", "path", path, "error", err)
		return
	}
	r.config = config
}

// resolveService returns the injected service or builds the ListenBrainz
// client from the resolved token.
func (r *Runner) resolveService(ctx context.Context) (services.Service, error) {
	if r.service != nil {
		return r.service, nil
	}

	token, err := shared.ResolveToken(r.config)
	if err != nil {
		return nil, err
	}

	svc, err := services.NewListenBrainzService(ctx, r.config.ListenBrainz.BaseURL, token)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// openDatabase opens the configured audit database, running migrations.
func (r *Runner) openDatabase() (*sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, err
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// buildEngine assembles an ImportEngine from the loaded configuration.
func (r *Runner) buildEngine(svc services.Service) (*importer.ImportEngine, error) {
	loc, err := r.config.Import.Location()
	if err != nil {
		return nil, err
	}

	return importer.NewImportEngine(svc, importer.EngineOpts{
		Parser:    importer.NewParser(loc),
		BatchSize: r.config.Import.BatchSize,
		RateLimit: r.config.Import.RateLimit,
		Backoff: importer.BackoffPolicy{
			MaxAttempts: r.config.Import.MaxAttempts,
			Initial:     r.config.Import.InitialBackoff(),
		},
		Audit: r.audit,
	}), nil
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

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
