package importer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/desertthunder/lbx/internal/models"
	"github.com/desertthunder/lbx/internal/shared"
)

// ProgressStore persists the import checkpoint as human-inspectable JSON.
//
// A single process owns the file at a time; concurrent runs against the same
// progress file are unsupported and may corrupt resumability.
type ProgressStore struct{}

// NewProgressStore creates a ProgressStore.
func NewProgressStore() *ProgressStore {
	return &ProgressStore{}
}

// DefaultProgressPath returns the checkpoint location for a source file:
// <source>.progress.json next to it.
func DefaultProgressPath(sourcePath string) string {
	return sourcePath + ".progress.json"
}

// Load reads the checkpoint at path.
//
// A missing file yields a fresh zero state. A file that exists but cannot be
// parsed into a consistent state yields [shared.ErrCorruptProgress]: refusing
// to guess beats silently restarting from zero and double-submitting.
func (s *ProgressStore) Load(path string) (*models.Progress, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &models.Progress{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrCorruptProgress, path, err)
	}

	var progress models.Progress
	if err := json.Unmarshal(data, &progress); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrCorruptProgress, path, err)
	}

	if err := progress.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrCorruptProgress, path, err)
	}

	return &progress, nil
}

// Save atomically persists the checkpoint: write to a temp file in the same
// directory, fsync, rename into place. A crash mid-save leaves either the
// old checkpoint or the new one, never a torn file. This is the central
// resumability guarantee.
func (s *ProgressStore) Save(path string, progress *models.Progress) error {
	progress.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(progress, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal progress: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temp progress file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write progress: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync progress: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close progress file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace progress file: %w", err)
	}

	return nil
}

// Check validates a loaded checkpoint against the current parse of the
// source file. Fingerprint or record-count drift means the progress belongs
// to a different file and resuming would mark the wrong records submitted.
func (s *ProgressStore) Check(progress *models.Progress, result *ParseResult) error {
	if progress.Fresh() {
		return nil
	}

	if progress.SourceSHA256 != "" && progress.SourceSHA256 != result.SHA256 {
		return fmt.Errorf("%w: recorded fingerprint %.12s.., input file is %.12s..",
			shared.ErrProgressMismatch, progress.SourceSHA256, result.SHA256)
	}

	if progress.TotalRecords != len(result.Listens) {
		return fmt.Errorf("%w: recorded %d records, input file has %d",
			shared.ErrProgressMismatch, progress.TotalRecords, len(result.Listens))
	}

	return nil
}
