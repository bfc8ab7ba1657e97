package importer

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/lbx/internal/shared"
)

func TestParser_Parse(t *testing.T) {
	t.Run("valid rows in file order", func(t *testing.T) {
		input := strings.Join([]string{
			"Radiohead,OK Computer,Paranoid Android,15 Jun 2007 22:30",
			"Boards of Canada,Geogaddi,1969,3 Feb 2010 08:05",
		}, "\n")

		result, err := NewParser(nil).Parse(strings.NewReader(input))
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}

		if len(result.Listens) != 2 {
			t.Fatalf("expected 2 listens, got %d", len(result.Listens))
		}
		if len(result.RowErrors) != 0 {
			t.Errorf("expected no row errors, got %v", result.RowErrors)
		}
		if result.TotalRows != 2 {
			t.Errorf("expected 2 total rows, got %d", result.TotalRows)
		}

		first := result.Listens[0]
		if first.Artist != "Radiohead" || first.Album != "OK Computer" || first.Track != "Paranoid Android" {
			t.Errorf("unexpected first listen: %+v", first)
		}
		want := time.Date(2007, 6, 15, 22, 30, 0, 0, time.UTC).Unix()
		if first.ListenedAt != want {
			t.Errorf("ListenedAt = %d, want %d", first.ListenedAt, want)
		}
		if first.Row != 1 || result.Listens[1].Row != 2 {
			t.Errorf("row numbers = %d, %d; want 1, 2", first.Row, result.Listens[1].Row)
		}
	})

	t.Run("rejected rows collected without halting", func(t *testing.T) {
		input := strings.Join([]string{
			"Radiohead,OK Computer,Paranoid Android,15 Jun 2007 22:30",
			"Broken Row,Only Three Fields,15 Jun 2007 22:31",
			"Radiohead,OK Computer,Airbag,15 Jun 2007 22:36",
			"Radiohead,OK Computer,Let Down,not a timestamp",
			",OK Computer,No Artist,15 Jun 2007 22:40",
		}, "\n")

		result, err := NewParser(nil).Parse(strings.NewReader(input))
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}

		if len(result.Listens) != 2 {
			t.Fatalf("expected 2 valid listens, got %d", len(result.Listens))
		}
		if len(result.RowErrors) != 3 {
			t.Fatalf("expected 3 row errors, got %d: %v", len(result.RowErrors), result.RowErrors)
		}

		tests := []struct {
			row  int
			want error
		}{
			{2, shared.ErrMalformedRow},
			{4, shared.ErrTimestampParse},
			{5, shared.ErrValidation},
		}
		for i, tt := range tests {
			rowErr := result.RowErrors[i]
			if rowErr.Row != tt.row {
				t.Errorf("RowErrors[%d].Row = %d, want %d", i, rowErr.Row, tt.row)
			}
			if !errors.Is(rowErr, tt.want) {
				t.Errorf("RowErrors[%d] = %v, want %v", i, rowErr, tt.want)
			}
		}
	})

	t.Run("blank rows skipped", func(t *testing.T) {
		input := "Radiohead,OK Computer,Paranoid Android,15 Jun 2007 22:30\n\n" +
			",,,\n" +
			"Radiohead,OK Computer,Airbag,15 Jun 2007 22:36\n"

		result, err := NewParser(nil).Parse(strings.NewReader(input))
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}

		if len(result.Listens) != 2 {
			t.Fatalf("expected 2 listens, got %d", len(result.Listens))
		}
		if result.TotalRows != 2 {
			t.Errorf("expected 2 total rows, got %d", result.TotalRows)
		}
		if result.Listens[1].Row != 4 {
			t.Errorf("second listen row = %d, want 4", result.Listens[1].Row)
		}
	})

	t.Run("whitespace trimmed from fields", func(t *testing.T) {
		input := "  Radiohead , OK Computer , Paranoid Android ,  15 Jun 2007 22:30  "

		result, err := NewParser(nil).Parse(strings.NewReader(input))
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if len(result.Listens) != 1 {
			t.Fatalf("expected 1 listen, got %d (%v)", len(result.Listens), result.RowErrors)
		}
		if result.Listens[0].Artist != "Radiohead" {
			t.Errorf("Artist = %q, want %q", result.Listens[0].Artist, "Radiohead")
		}
	})

	t.Run("empty album allowed", func(t *testing.T) {
		input := "Radiohead,,Paranoid Android,15 Jun 2007 22:30"

		result, err := NewParser(nil).Parse(strings.NewReader(input))
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if len(result.Listens) != 1 {
			t.Fatalf("expected 1 listen, got %d (%v)", len(result.Listens), result.RowErrors)
		}
		if result.Listens[0].Album != "" {
			t.Errorf("Album = %q, want empty", result.Listens[0].Album)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		result, err := NewParser(nil).Parse(strings.NewReader(""))
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if len(result.Listens) != 0 || len(result.RowErrors) != 0 || result.TotalRows != 0 {
			t.Errorf("expected empty result, got %+v", result)
		}
		if result.SHA256 == "" {
			t.Error("expected fingerprint even for empty input")
		}
	})

	t.Run("fingerprint stable across parses", func(t *testing.T) {
		input := "Radiohead,OK Computer,Paranoid Android,15 Jun 2007 22:30\n"

		a, err := NewParser(nil).Parse(strings.NewReader(input))
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		b, err := NewParser(nil).Parse(strings.NewReader(input))
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if a.SHA256 != b.SHA256 {
			t.Errorf("fingerprints differ: %s vs %s", a.SHA256, b.SHA256)
		}

		c, err := NewParser(nil).Parse(strings.NewReader(input + "extra,album,track,15 Jun 2007 22:31\n"))
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if a.SHA256 == c.SHA256 {
			t.Error("different inputs produced the same fingerprint")
		}
	})
}

func TestParser_NormalizeTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		loc     *time.Location
		want    int64
		wantErr bool
	}{
		{
			name: "single digit day",
			raw:  "3 Feb 2010 08:05",
			want: time.Date(2010, 2, 3, 8, 5, 0, 0, time.UTC).Unix(),
		},
		{
			name: "two digit day",
			raw:  "15 Jun 2007 22:30",
			want: time.Date(2007, 6, 15, 22, 30, 0, 0, time.UTC).Unix(),
		},
		{
			name: "surrounding whitespace",
			raw:  "  15 Jun 2007 22:30  ",
			want: time.Date(2007, 6, 15, 22, 30, 0, 0, time.UTC).Unix(),
		},
		{
			name: "configured zone shifts the epoch",
			raw:  "15 Jun 2007 22:30",
			loc:  time.FixedZone("plus2", 2*60*60),
			want: time.Date(2007, 6, 15, 20, 30, 0, 0, time.UTC).Unix(),
		},
		{
			name:    "unparseable",
			raw:     "yesterday",
			wantErr: true,
		},
		{
			name:    "wrong format",
			raw:     "2007-06-15 22:30",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewParser(tt.loc).NormalizeTimestamp(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NormalizeTimestamp(%q) expected error", tt.raw)
				}
				if !errors.Is(err, shared.ErrTimestampParse) {
					t.Errorf("error = %v, want %v", err, shared.ErrTimestampParse)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeTimestamp(%q) error = %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeTimestamp(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParser_ParseFile(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := NewParser(nil).ParseFile("does-not-exist.csv")
		if err == nil {
			t.Fatal("expected error for missing file")
		}
	})
}
