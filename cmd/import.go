package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/lbx/internal/formatter"
	"github.com/desertthunder/lbx/internal/importer"
	"github.com/desertthunder/lbx/internal/repositories"
	"github.com/desertthunder/lbx/internal/shared"
	"github.com/desertthunder/lbx/internal/ui"
	"github.com/urfave/cli/v3"
)

// sourceFile extracts the CSV path argument from the command.
func sourceFile(cmd *cli.Command) (string, error) {
	path := cmd.StringArg("file")
	if path == "" {
		return "", fmt.Errorf("%w: path to the CSV export", shared.ErrMissingArgument)
	}
	return path, nil
}

// resolveAudit returns the audit log to record confirmed batches in, plus a
// cleanup function. The audit database is optional: when it cannot be opened
// the import proceeds without it.
func (r *Runner) resolveAudit() (importer.AuditLog, func()) {
	if r.audit != nil {
		return r.audit, func() {}
	}

	db, err := r.openDatabase()
	if err != nil {
		r.logger.Warn("audit database unavailable, continuing without it", "error", err)
		return nil, func() {}
	}

	return repositories.NewAuditLogAdapter(repositories.NewSubmissionRepository(db)), func() { db.Close() }
}

// submitOpts assembles engine submission options from flags and config.
func (r *Runner) submitOpts(cmd *cli.Command) importer.SubmitOpts {
	progressPath := cmd.String("progress")
	if progressPath == "" {
		progressPath = r.config.Import.ProgressPath
	}

	return importer.SubmitOpts{
		ProgressPath: progressPath,
		SkipInvalid:  cmd.Bool("skip-invalid"),
	}
}

// ImportDryRun validates the CSV and prints what a submit run would do.
// No network request is made and the progress file is never touched.
func (r *Runner) ImportDryRun(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	path, err := sourceFile(cmd)
	if err != nil {
		return err
	}

	logger := shared.WithLogger(r.logger, "file", path)
	logger.Info("starting dry run")

	engine, err := r.buildEngine(nil)
	if err != nil {
		return err
	}

	report, err := engine.DryRun(ctx, path, nil)
	if err != nil {
		return err
	}

	if errorsPath := cmd.String("errors-csv"); errorsPath != "" && len(report.RowErrors) > 0 {
		data, err := formatter.RenderRowErrorsCSV(report.RowErrors)
		if err != nil {
			return err
		}
		if err := os.WriteFile(errorsPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write error report: %w", err)
		}
		logger.Info("wrote rejected rows", "path", errorsPath, "rows", len(report.RowErrors))
	}

	if cmd.Bool("json") {
		return r.writeJSON(report, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Dry Run Report")
	r.writePlain("Source: %s\n", report.SourceFile)
	r.writePlain("%s", formatter.RenderDryRunReport(report))
	return nil
}

// ImportSubmit runs the real import, resuming from any saved progress.
func (r *Runner) ImportSubmit(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	path, err := sourceFile(cmd)
	if err != nil {
		return err
	}

	logger := shared.WithLogger(r.logger, "file", path)

	svc, err := r.resolveService(ctx)
	if err != nil {
		return err
	}

	username, err := svc.ValidateToken(ctx)
	if err != nil {
		return err
	}
	logger.Info("token validated", "user", username)

	if !cmd.Bool("yes") {
		if !r.confirm(fmt.Sprintf("Submit listens from %s to %s as %s?", path, svc.Name(), username)) {
			r.writePlain("Aborted. Nothing was submitted.\n")
			return nil
		}
	}

	audit, closeAudit := r.resolveAudit()
	defer closeAudit()
	r.audit = audit

	engine, err := r.buildEngine(svc)
	if err != nil {
		return err
	}

	opts := r.submitOpts(cmd)
	logger.Debug("submitting", "progress_path", opts.ProgressPath, "skip_invalid", opts.SkipInvalid)

	r.writePlain("Importing %s as %s...\n\n", path, username)

	// Create progress channel and goroutine to handle updates
	progressCh := make(chan importer.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case importer.ParseInput:
				r.writePlain("📥 %s\n", update.Message)
			case importer.CheckProgress:
				r.writePlain("⏩ %s\n", update.Message)
			default:
				r.writePlain("   %s\n", update.Message)
			}
		}
	}()

	result, err := engine.Submit(ctx, path, opts, progressCh)
	close(progressCh)
	<-done

	if err != nil {
		// The checkpoint covers everything confirmed so far; a rerun picks
		// up from there.
		if result != nil && result.Confirmed > 0 {
			r.writePlain("\n%d/%d listens confirmed before the failure; rerun to resume.\n",
				result.Confirmed, result.Total)
		}
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Import Complete!")
	r.writePlain("%s", formatter.RenderSubmitSummary(result))
	return nil
}

// ImportUI runs a submit with an interactive progress display.
func (r *Runner) ImportUI(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	path, err := sourceFile(cmd)
	if err != nil {
		return err
	}

	svc, err := r.resolveService(ctx)
	if err != nil {
		return err
	}

	if _, err := svc.ValidateToken(ctx); err != nil {
		return err
	}

	audit, closeAudit := r.resolveAudit()
	defer closeAudit()
	r.audit = audit

	engine, err := r.buildEngine(svc)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := make(chan importer.ProgressUpdate, 50)
	program := tea.NewProgram(ui.NewSubmitModel(updates, cancel))

	var result *importer.SubmitResult
	var runErr error
	go func() {
		result, runErr = engine.Submit(ctx, path, r.submitOpts(cmd), updates)
		close(updates)
	}()

	if _, err := program.Run(); err != nil {
		cancel()
		return fmt.Errorf("display error: %w", err)
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) && result != nil {
			r.writePlain("Stopped. %d/%d listens confirmed; rerun to resume.\n",
				result.Confirmed, result.Total)
			return nil
		}
		if result != nil && result.Confirmed > 0 {
			r.writePlain("%d/%d listens confirmed before the failure; rerun to resume.\n",
				result.Confirmed, result.Total)
		}
		return runErr
	}

	r.writePlainHeader("Import Complete!")
	r.writePlain("%s", formatter.RenderSubmitSummary(result))
	return nil
}
