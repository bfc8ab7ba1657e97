package importer

import (
	"fmt"
	"time"

	"github.com/desertthunder/lbx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ParseInput Phase = iota
	CheckProgress
	SubmitBatch
	SaveProgress
	RetryWait
	ImportDone
)

func (p Phase) String() string {
	switch p {
	case ParseInput:
		return "parse_input"
	case CheckProgress:
		return "check_progress"
	case SubmitBatch:
		return "submit_batch"
	case SaveProgress:
		return "save_progress"
	case RetryWait:
		return "retry_wait"
	case ImportDone:
		return "import_done"
	default:
		return ""
	}
}

func parseInputUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ParseInput,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Reading %s...", path),
	}
}

func parsedUpdate(valid, failed int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ParseInput,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Parsed %d valid listens (%d rows would fail)", valid, failed),
	}
}

func resumeUpdate(submitted, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CheckProgress,
		Step:    submitted,
		Total:   total,
		Message: fmt.Sprintf("Resuming: %d/%d listens already submitted", submitted, total),
	}
}

func submitBatchUpdate(batch models.SubmissionBatch, step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SubmitBatch,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Submitting records %d-%d...", step, total, batch.Start+1, batch.End()),
		Data:    batch,
	}
}

func retryWaitUpdate(step, total, attempt int, wait time.Duration) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RetryWait,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Attempt %d failed, retrying in %s...", step, total, attempt, wait),
	}
}

func batchConfirmedUpdate(step, total, submitted, records int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SaveProgress,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ Confirmed (%d/%d listens)", step, total, submitted, records),
	}
}

func importDoneUpdate(submitted int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportDone,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("All %d listens submitted", submitted),
	}
}
