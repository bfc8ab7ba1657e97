package repositories

import (
	"fmt"
	"strings"

	"github.com/desertthunder/lbx/internal/models"
)

// AuditLogAdapter implements importer.AuditLog using SubmissionRepository.
//
// A batch recorded twice (e.g., a resume re-sending an ambiguous batch) hits
// the (job_id, batch_index) UNIQUE constraint and is silently ignored.
type AuditLogAdapter struct {
	repo *SubmissionRepository
}

// NewAuditLogAdapter creates a new AuditLogAdapter with the given repository
func NewAuditLogAdapter(repo *SubmissionRepository) *AuditLogAdapter {
	return &AuditLogAdapter{repo: repo}
}

// Record appends a confirmed batch to the audit log.
// Returns nil if the batch was already recorded.
func (a *AuditLogAdapter) Record(submission *models.Submission) error {
	err := a.repo.Create(submission)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil
		}
		return fmt.Errorf("failed to record submission: %w", err)
	}

	return nil
}
