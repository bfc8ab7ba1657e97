package importer

import (
	"github.com/desertthunder/lbx/internal/models"
)

// DefaultBatchSize matches the submit-listens request limit this tool
// assumes. ListenBrainz accepts larger payloads; staying small keeps retried
// batches cheap.
const DefaultBatchSize = 50

// Batches groups listens into submission batches of at most size records.
//
// Every listen appears exactly once, in input order; no reordering or
// deduplication happens here. offset is the absolute record position of the
// first listen, so a resumed run produces batches whose Start values line up
// with the progress checkpoint.
func Batches(listens []models.Listen, size, offset int) []models.SubmissionBatch {
	if size <= 0 {
		size = DefaultBatchSize
	}

	var batches []models.SubmissionBatch
	for start := 0; start < len(listens); start += size {
		end := min(start+size, len(listens))
		batches = append(batches, models.SubmissionBatch{
			Index:   len(batches),
			Start:   offset + start,
			Listens: listens[start:end],
		})
	}

	return batches
}

// BatchCount returns how many batches of at most size records cover total.
func BatchCount(total, size int) int {
	if size <= 0 {
		size = DefaultBatchSize
	}
	if total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
