package models

import (
	"testing"
	"time"
)

func testTime() time.Time {
	return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
}

func TestProgress_Fresh(t *testing.T) {
	tests := []struct {
		name     string
		progress Progress
		want     bool
	}{
		{"zero value", Progress{}, true},
		{"has job", Progress{JobID: "job-1", TotalRecords: 10}, false},
		{"has submissions", Progress{JobID: "job-1", TotalRecords: 10, SubmittedCount: 3}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.progress.Fresh(); got != tt.want {
				t.Errorf("Fresh() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProgress_Complete(t *testing.T) {
	tests := []struct {
		name     string
		progress Progress
		want     bool
	}{
		{"fresh is not complete", Progress{}, false},
		{"partial", Progress{JobID: "job-1", TotalRecords: 10, SubmittedCount: 5}, false},
		{"all submitted", Progress{JobID: "job-1", TotalRecords: 10, SubmittedCount: 10}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.progress.Complete(); got != tt.want {
				t.Errorf("Complete() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProgress_Validate(t *testing.T) {
	tests := []struct {
		name     string
		progress Progress
		wantErr  bool
	}{
		{"zero value", Progress{}, false},
		{"consistent", Progress{JobID: "job-1", TotalRecords: 10, SubmittedCount: 5}, false},
		{"negative submitted", Progress{SubmittedCount: -1}, true},
		{"negative total", Progress{TotalRecords: -1}, true},
		{"submitted exceeds total", Progress{TotalRecords: 5, SubmittedCount: 6}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.progress.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSubmission_Validate(t *testing.T) {
	batch := SubmissionBatch{Index: 1, Start: 50, Listens: make([]Listen, 50)}

	t.Run("built from batch", func(t *testing.T) {
		s := NewSubmission("job-1", "listens.csv", batch, testTime())
		if err := s.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
		if s.BatchIndex != 1 || s.StartRecord != 50 || s.RecordCount != 50 {
			t.Errorf("submission = %+v", s)
		}
	})

	t.Run("missing job id", func(t *testing.T) {
		s := NewSubmission("", "listens.csv", batch, testTime())
		if err := s.Validate(); err == nil {
			t.Error("expected error for empty job id")
		}
	})

	t.Run("empty batch", func(t *testing.T) {
		s := NewSubmission("job-1", "listens.csv", SubmissionBatch{}, testTime())
		if err := s.Validate(); err == nil {
			t.Error("expected error for zero record count")
		}
	})
}
