package importer

import (
	"testing"

	"github.com/desertthunder/lbx/internal/models"
)

func makeListens(t *testing.T, n int) []models.Listen {
	t.Helper()
	listens := make([]models.Listen, n)
	for i := range listens {
		listens[i] = models.Listen{
			Artist:     "Artist",
			Track:      "Track",
			ListenedAt: int64(1000 + i),
			Row:        i + 1,
		}
	}
	return listens
}

func TestBatches(t *testing.T) {
	t.Run("partial final batch", func(t *testing.T) {
		batches := Batches(makeListens(t, 5), 2, 0)

		if len(batches) != 3 {
			t.Fatalf("expected 3 batches, got %d", len(batches))
		}

		wantSizes := []int{2, 2, 1}
		wantStarts := []int{0, 2, 4}
		for i, batch := range batches {
			if batch.Index != i {
				t.Errorf("batch %d Index = %d", i, batch.Index)
			}
			if len(batch.Listens) != wantSizes[i] {
				t.Errorf("batch %d size = %d, want %d", i, len(batch.Listens), wantSizes[i])
			}
			if batch.Start != wantStarts[i] {
				t.Errorf("batch %d Start = %d, want %d", i, batch.Start, wantStarts[i])
			}
		}
		if batches[2].End() != 5 {
			t.Errorf("last End() = %d, want 5", batches[2].End())
		}
	})

	t.Run("every listen exactly once in order", func(t *testing.T) {
		listens := makeListens(t, 7)
		batches := Batches(listens, 3, 0)

		var flat []models.Listen
		for _, batch := range batches {
			flat = append(flat, batch.Listens...)
		}

		if len(flat) != len(listens) {
			t.Fatalf("flattened %d listens, want %d", len(flat), len(listens))
		}
		for i := range flat {
			if flat[i].Row != listens[i].Row {
				t.Errorf("position %d has row %d, want %d", i, flat[i].Row, listens[i].Row)
			}
		}
	})

	t.Run("offset shifts starts for resume", func(t *testing.T) {
		batches := Batches(makeListens(t, 4), 2, 100)

		if batches[0].Start != 100 || batches[1].Start != 102 {
			t.Errorf("starts = %d, %d; want 100, 102", batches[0].Start, batches[1].Start)
		}
		if batches[1].End() != 104 {
			t.Errorf("End() = %d, want 104", batches[1].End())
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if batches := Batches(nil, 50, 0); len(batches) != 0 {
			t.Errorf("expected no batches, got %d", len(batches))
		}
	})

	t.Run("zero size falls back to default", func(t *testing.T) {
		batches := Batches(makeListens(t, DefaultBatchSize+1), 0, 0)
		if len(batches) != 2 {
			t.Errorf("expected 2 batches, got %d", len(batches))
		}
	})
}

func TestBatchCount(t *testing.T) {
	tests := []struct {
		total, size, want int
	}{
		{0, 50, 0},
		{1, 50, 1},
		{50, 50, 1},
		{51, 50, 2},
		{100, 50, 2},
		{5, 2, 3},
	}

	for _, tt := range tests {
		if got := BatchCount(tt.total, tt.size); got != tt.want {
			t.Errorf("BatchCount(%d, %d) = %d, want %d", tt.total, tt.size, got, tt.want)
		}
	}
}
