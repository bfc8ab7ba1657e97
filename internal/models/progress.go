package models

import (
	"fmt"
	"time"
)

// Progress is the durable checkpoint for one import job.
//
// It is persisted as human-inspectable JSON next to the source file and is
// the single source of truth for resume: SubmittedCount listens form a fully
// confirmed prefix of the source CSV. SubmittedCount never decreases across
// the life of a job.
type Progress struct {
	JobID          string    `json:"job_id"`
	SourceFile     string    `json:"source_file"`
	SourceSHA256   string    `json:"source_sha256"`
	TotalRecords   int       `json:"total_records"`
	SubmittedCount int       `json:"submitted_count"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Fresh reports whether the progress has never recorded a submission.
func (p Progress) Fresh() bool {
	return p.JobID == "" && p.SubmittedCount == 0 && p.TotalRecords == 0
}

// Complete reports whether every record has been confirmed submitted.
func (p Progress) Complete() bool {
	return !p.Fresh() && p.SubmittedCount >= p.TotalRecords
}

// Validate checks internal consistency of a loaded progress document.
func (p Progress) Validate() error {
	if p.SubmittedCount < 0 {
		return fmt.Errorf("submitted_count must not be negative, got %d", p.SubmittedCount)
	}
	if p.TotalRecords < 0 {
		return fmt.Errorf("total_records must not be negative, got %d", p.TotalRecords)
	}
	if p.SubmittedCount > p.TotalRecords {
		return fmt.Errorf("submitted_count %d exceeds total_records %d", p.SubmittedCount, p.TotalRecords)
	}
	return nil
}
