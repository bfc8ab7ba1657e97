package repositories

import (
	"database/sql"
	"testing"
	"time"

	"github.com/desertthunder/lbx/internal/models"
	"github.com/desertthunder/lbx/internal/shared"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// One connection keeps every query on the same in-memory database.
	shared.ConfigureDatabase(db, 1, 1)

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func makeSubmission(jobID string, index int) *models.Submission {
	return models.NewSubmission(jobID, "listens.csv", models.SubmissionBatch{
		Index:   index,
		Start:   index * 50,
		Listens: make([]models.Listen, 50),
	}, time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC))
}

func TestSubmissionRepository_Create(t *testing.T) {
	repo := NewSubmissionRepository(newTestDB(t))

	t.Run("assigns id and sequence", func(t *testing.T) {
		first := makeSubmission("job-1", 0)
		if err := repo.Create(first); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if first.ID() == "" {
			t.Error("missing generated ID")
		}

		second := makeSubmission("job-1", 1)
		if err := repo.Create(second); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if second.Sequence <= first.Sequence {
			t.Errorf("sequences not increasing: %d then %d", first.Sequence, second.Sequence)
		}
	})

	t.Run("duplicate batch rejected", func(t *testing.T) {
		if err := repo.Create(makeSubmission("job-1", 0)); err == nil {
			t.Error("expected UNIQUE constraint error")
		}
	})

	t.Run("invalid submission rejected", func(t *testing.T) {
		if err := repo.Create(makeSubmission("", 2)); err == nil {
			t.Error("expected validation error")
		}
	})
}

func TestSubmissionRepository_Get(t *testing.T) {
	repo := NewSubmissionRepository(newTestDB(t))

	created := makeSubmission("job-1", 0)
	if err := repo.Create(created); err != nil {
		t.Fatal(err)
	}

	t.Run("found", func(t *testing.T) {
		got, err := repo.Get(created.ID())
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.JobID != "job-1" || got.BatchIndex != 0 || got.RecordCount != 50 {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("not found", func(t *testing.T) {
		if _, err := repo.Get("nope"); err == nil {
			t.Error("expected error for unknown id")
		}
	})
}

func TestSubmissionRepository_List(t *testing.T) {
	repo := NewSubmissionRepository(newTestDB(t))

	for i := 0; i < 3; i++ {
		if err := repo.Create(makeSubmission("job-a", i)); err != nil {
			t.Fatal(err)
		}
	}
	if err := repo.Create(makeSubmission("job-b", 0)); err != nil {
		t.Fatal(err)
	}

	t.Run("all rows oldest first", func(t *testing.T) {
		all, err := repo.List(map[string]any{})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(all) != 4 {
			t.Fatalf("len = %d, want 4", len(all))
		}
		for i := 1; i < len(all); i++ {
			if all[i].Sequence <= all[i-1].Sequence {
				t.Errorf("rows out of sequence order at %d", i)
			}
		}
	})

	t.Run("filter by job", func(t *testing.T) {
		rows, err := repo.List(map[string]any{"job_id": "job-a"})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(rows) != 3 {
			t.Errorf("len = %d, want 3", len(rows))
		}
	})

	t.Run("empty filter value ignored", func(t *testing.T) {
		rows, err := repo.List(map[string]any{"job_id": ""})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(rows) != 4 {
			t.Errorf("len = %d, want 4", len(rows))
		}
	})
}

func TestAuditLogAdapter_Record(t *testing.T) {
	adapter := NewAuditLogAdapter(NewSubmissionRepository(newTestDB(t)))

	submission := makeSubmission("job-1", 0)
	if err := adapter.Record(submission); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	// A re-sent batch (resume after an ambiguous failure) is a silent no-op.
	if err := adapter.Record(makeSubmission("job-1", 0)); err != nil {
		t.Errorf("duplicate Record() error = %v", err)
	}

	if err := adapter.Record(makeSubmission("job-1", 1)); err != nil {
		t.Errorf("Record() error = %v", err)
	}
}
