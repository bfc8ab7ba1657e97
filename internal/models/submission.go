package models

import (
	"fmt"
	"time"
)

// Submission is an audit-log row recording one confirmed batch submission.
//
// Rows are observational: the JSON [Progress] checkpoint, not the audit log,
// decides where a resumed run starts.
type Submission struct {
	id          string
	Sequence    int
	JobID       string
	SourceFile  string
	BatchIndex  int
	StartRecord int
	RecordCount int
	SubmittedAt time.Time
}

// NewSubmission builds an audit row for a confirmed batch.
func NewSubmission(jobID, sourceFile string, batch SubmissionBatch, at time.Time) *Submission {
	return &Submission{
		JobID:       jobID,
		SourceFile:  sourceFile,
		BatchIndex:  batch.Index,
		StartRecord: batch.Start,
		RecordCount: len(batch.Listens),
		SubmittedAt: at,
	}
}

func (s *Submission) ID() string { return s.id }

// SetID assigns the row's generated identifier.
func (s *Submission) SetID(id string) { s.id = id }

func (s *Submission) CreatedAt() time.Time { return s.SubmittedAt }

// Validate checks the audit row invariants before persisting.
func (s *Submission) Validate() error {
	if s.JobID == "" {
		return fmt.Errorf("job_id must not be empty")
	}
	if s.BatchIndex < 0 {
		return fmt.Errorf("batch_index must not be negative, got %d", s.BatchIndex)
	}
	if s.StartRecord < 0 {
		return fmt.Errorf("start_record must not be negative, got %d", s.StartRecord)
	}
	if s.RecordCount <= 0 {
		return fmt.Errorf("record_count must be positive, got %d", s.RecordCount)
	}
	return nil
}
