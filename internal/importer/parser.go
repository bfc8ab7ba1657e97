package importer

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/desertthunder/lbx/internal/models"
	"github.com/desertthunder/lbx/internal/shared"
)

// timestampLayout is the export's fixed human-readable timestamp format,
// e.g. "15 Jun 2007 22:30". 24-hour clock, English month abbreviations.
const timestampLayout = "2 Jan 2006 15:04"

// fieldsPerRow is the exact field count of a well-formed export row:
// artist, album, track, timestamp.
const fieldsPerRow = 4

// RowError describes a single rejected CSV row.
//
// Wraps one of the shared input-data sentinels so callers can classify with
// [errors.Is], and carries the row number (and raw value where useful) for
// reporting.
type RowError struct {
	Row   int
	Value string
	Err   error
}

func (e *RowError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("row %d: %v: %q", e.Row, e.Err, e.Value)
	}
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// MarshalJSON renders the wrapped error as a string for report output.
func (e *RowError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Row   int    `json:"row"`
		Value string `json:"value,omitempty"`
		Error string `json:"error"`
	}{e.Row, e.Value, e.Err.Error()})
}

// ParseResult holds everything one pass over the source file produces.
type ParseResult struct {
	Listens   []models.Listen // valid records, in file order
	RowErrors []*RowError     // rejected rows, in file order
	TotalRows int             // non-blank rows seen
	SHA256    string          // content fingerprint of the whole file
}

// Parser reads raw CSV rows into validated listen records.
//
// Export timestamps carry no zone, so the parser interprets them in loc
// (UTC unless configured otherwise).
type Parser struct {
	loc *time.Location
}

// NewParser creates a Parser that reads timestamps in the given zone.
// A nil location defaults to UTC.
func NewParser(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.UTC
	}
	return &Parser{loc: loc}
}

// ParseFile reads the CSV at path in one streaming pass.
//
// Rejected rows are collected, never fatal here: dry-run reports them all and
// submit mode decides fatality. Blank rows are skipped. The file's sha256 is
// computed from the same bytes the CSV reader consumes.
func (p *Parser) ParseFile(path string) (*ParseResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	return p.Parse(f)
}

// Parse reads CSV rows from r. See [Parser.ParseFile].
func (p *Parser) Parse(r io.Reader) (*ParseResult, error) {
	hasher := sha256.New()

	reader := csv.NewReader(io.TeeReader(r, hasher))
	reader.FieldsPerRecord = -1

	result := &ParseResult{}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			result.TotalRows++
			result.RowErrors = append(result.RowErrors, &RowError{
				Row: parseErr.Line,
				Err: fmt.Errorf("%w: %v", shared.ErrMalformedRow, parseErr.Err),
			})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read input file: %w", err)
		}

		if blankRow(record) {
			continue
		}
		result.TotalRows++

		// csv.Reader skips blank lines itself, so the physical line of the
		// first field is the authoritative row number.
		row, _ := reader.FieldPos(0)

		if len(record) != fieldsPerRow {
			result.RowErrors = append(result.RowErrors, &RowError{
				Row: row,
				Err: fmt.Errorf("%w: expected %d fields, got %d", shared.ErrMalformedRow, fieldsPerRow, len(record)),
			})
			continue
		}

		listen, rowErr := p.parseRow(record, row)
		if rowErr != nil {
			result.RowErrors = append(result.RowErrors, rowErr)
			continue
		}

		result.Listens = append(result.Listens, listen)
	}

	result.SHA256 = hex.EncodeToString(hasher.Sum(nil))
	return result, nil
}

// parseRow validates one four-field record and normalizes its timestamp.
func (p *Parser) parseRow(record []string, row int) (models.Listen, *RowError) {
	artist, album, track, raw := record[0], record[1], record[2], record[3]

	ts, err := p.NormalizeTimestamp(raw)
	if err != nil {
		return models.Listen{}, &RowError{
			Row:   row,
			Value: strings.TrimSpace(raw),
			Err:   shared.ErrTimestampParse,
		}
	}

	listen, err := models.NewListen(artist, album, track, ts, row)
	if err != nil {
		return models.Listen{}, &RowError{
			Row: row,
			Err: fmt.Errorf("%w: %v", shared.ErrValidation, err),
		}
	}

	return listen, nil
}

// NormalizeTimestamp converts a raw export timestamp into epoch seconds,
// interpreted in the parser's zone. Deterministic for a given input.
func (p *Parser) NormalizeTimestamp(raw string) (int64, error) {
	t, err := time.ParseInLocation(timestampLayout, strings.TrimSpace(raw), p.loc)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", shared.ErrTimestampParse, raw)
	}
	return t.Unix(), nil
}

// blankRow reports whether every field is empty after trimming.
func blankRow(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
