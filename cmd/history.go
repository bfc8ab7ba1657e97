package main

import (
	"context"

	"github.com/desertthunder/lbx/internal/repositories"
	"github.com/urfave/cli/v3"
)

// History lists confirmed submission batches from the audit log.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewSubmissionRepository(db)
	submissions, err := repo.List(map[string]any{
		"job_id": cmd.String("job"),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(submissions, true)
	}

	if len(submissions) == 0 {
		r.writePlain("No submissions recorded.\n")
		return nil
	}

	r.writePlainHeader("Submission History")
	for _, s := range submissions {
		r.writePlain("%s  %s  batch %d  records %d-%d  (%s)\n",
			s.SubmittedAt.Format("2006-01-02 15:04"),
			s.JobID,
			s.BatchIndex+1,
			s.StartRecord+1,
			s.StartRecord+s.RecordCount,
			s.SourceFile,
		)
	}
	r.writePlain("\n%d batches recorded.\n", len(submissions))
	return nil
}
