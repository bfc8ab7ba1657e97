package models

import (
	"fmt"
	"strings"
	"time"
)

// Listen represents one validated play event from the CSV export.
//
// Immutable once built by the parser; Artist and Track are non-empty after
// trimming and ListenedAt is epoch seconds in the configured zone.
type Listen struct {
	Artist     string
	Album      string // may be empty
	Track      string
	ListenedAt int64
	Row        int // 1-based source row number
}

// NewListen trims the raw CSV fields and validates the listen.
func NewListen(artist, album, track string, listenedAt int64, row int) (Listen, error) {
	l := Listen{
		Artist:     strings.TrimSpace(artist),
		Album:      strings.TrimSpace(album),
		Track:      strings.TrimSpace(track),
		ListenedAt: listenedAt,
		Row:        row,
	}
	if err := l.Validate(); err != nil {
		return Listen{}, err
	}
	return l, nil
}

// Validate checks the listen invariants: non-empty artist and track, positive
// timestamp.
func (l Listen) Validate() error {
	if l.Artist == "" {
		return fmt.Errorf("artist must not be empty")
	}
	if l.Track == "" {
		return fmt.Errorf("track must not be empty")
	}
	if l.ListenedAt <= 0 {
		return fmt.Errorf("listened_at must be positive, got %d", l.ListenedAt)
	}
	return nil
}

// Time returns the listen timestamp as a UTC [time.Time].
func (l Listen) Time() time.Time {
	return time.Unix(l.ListenedAt, 0).UTC()
}

// String renders the listen the way dry-run previews display it.
func (l Listen) String() string {
	album := l.Album
	if album == "" {
		album = "(no album)"
	}
	return fmt.Sprintf("%s  %s - %s  [%s]", l.Time().Format("02 Jan 2006 15:04"), l.Artist, l.Track, album)
}

// SubmissionBatch is an ordered slice of listens bounded by the API's
// per-request limit. Start is the absolute record offset of the first listen,
// so failures can report the exact record range.
type SubmissionBatch struct {
	Index   int
	Start   int
	Listens []Listen
}

// End returns the absolute offset one past the last record in the batch.
func (b SubmissionBatch) End() int {
	return b.Start + len(b.Listens)
}
