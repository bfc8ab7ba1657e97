package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/lbx/internal/models"
	"github.com/desertthunder/lbx/internal/shared"
)

// SubmissionRepository implements models.Repository[*models.Submission] for
// the confirmed-batch audit log.
//
// Rows are append-only; the (job_id, batch_index) unique constraint makes a
// re-recorded batch a silent no-op rather than a duplicate.
type SubmissionRepository struct {
	db *sql.DB
}

// NewSubmissionRepository creates a new SubmissionRepository with the given database connection
func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create inserts a new [models.Submission] into the database with generated ID and sequence
func (r *SubmissionRepository) Create(submission *models.Submission) error {
	sequence, err := NextSequence(r.db, "submissions")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	submission.SetID(id)
	submission.Sequence = sequence

	if err := submission.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO submissions (id, sequence, job_id, source_file, batch_index, start_record, record_count, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		submission.JobID,
		submission.SourceFile,
		submission.BatchIndex,
		submission.StartRecord,
		submission.RecordCount,
		submission.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert submission: %w", err)
	}

	return nil
}

// Get retrieves a submission by ID
func (r *SubmissionRepository) Get(id string) (*models.Submission, error) {
	query := `
		SELECT id, sequence, job_id, source_file, batch_index, start_record, record_count, submitted_at
		FROM submissions
		WHERE id = ?
	`

	return scanSubmission(r.db.QueryRow(query, id))
}

// List retrieves all submissions matching the given criteria, oldest first
func (r *SubmissionRepository) List(criteria map[string]any) ([]*models.Submission, error) {
	query := `
		SELECT id, sequence, job_id, source_file, batch_index, start_record, record_count, submitted_at
		FROM submissions
		WHERE 1 = 1
	`

	args := []any{}

	if jobID, ok := criteria["job_id"].(string); ok && jobID != "" {
		query += " AND job_id = ?"
		args = append(args, jobID)
	}

	if sourceFile, ok := criteria["source_file"].(string); ok && sourceFile != "" {
		query += " AND source_file = ?"
		args = append(args, sourceFile)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	var submissions []*models.Submission
	for rows.Next() {
		submission, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, submission)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return submissions, nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanSubmission.
type scanner interface {
	Scan(dest ...any) error
}

// scanSubmission scans one row into a [models.Submission]
func scanSubmission(row scanner) (*models.Submission, error) {
	var (
		id          string
		sequence    int
		jobID       string
		sourceFile  string
		batchIndex  int
		startRecord int
		recordCount int
		submittedAt time.Time
	)

	err := row.Scan(&id, &sequence, &jobID, &sourceFile, &batchIndex, &startRecord, &recordCount, &submittedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("submission not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan submission: %w", err)
	}

	submission := &models.Submission{
		Sequence:    sequence,
		JobID:       jobID,
		SourceFile:  sourceFile,
		BatchIndex:  batchIndex,
		StartRecord: startRecord,
		RecordCount: recordCount,
		SubmittedAt: submittedAt,
	}
	submission.SetID(id)

	return submission, nil
}
