// Package cooldown persists the single "last email sent" marker that gates
// dispatches. The store never reads the system clock; callers supply now so
// the gate stays a pure function of persisted state.
package cooldown

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// recordFile is the single JSON record kept under the data directory. Each
// write overwrites the previous value; this is a marker, not a history.
const recordFile = "options_email_cooldown.json"

// Record is the on-disk shape of the cooldown marker.
type Record struct {
	LastEmailSent time.Time `json:"last_email_sent"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ErrRecordUnavailable wraps failures to persist the marker. Reads never
// return it: an unreadable record is deliberately treated as "never sent"
// (fail-open), because an occasional extra email beats a storage glitch
// silently blocking all notifications.
var ErrRecordUnavailable = errors.New("cooldown record unavailable")

// Store reads and writes the cooldown marker under a data directory.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir. The directory is created lazily on
// the first successful send.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the location of the marker file. Operators delete this file
// to manually reset the cooldown.
func (s *Store) Path() string {
	return filepath.Join(s.dir, recordFile)
}

// LastSent reads the marker. The zero time and ok=false mean "never sent",
// which is also what missing or corrupt records decode to.
func (s *Store) LastSent() (time.Time, bool) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		return time.Time{}, false
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return time.Time{}, false
	}
	if rec.LastEmailSent.IsZero() {
		return time.Time{}, false
	}
	return rec.LastEmailSent, true
}

// IsAllowed reports whether a send at now clears the cooldown window, and if
// not, how long remains.
func (s *Store) IsAllowed(now time.Time, cooldown time.Duration) (bool, time.Duration) {
	last, ok := s.LastSent()
	if !ok {
		return true, 0
	}

	elapsed := now.Sub(last)
	if elapsed >= cooldown {
		return true, 0
	}
	return false, cooldown - elapsed
}

// RecordSent overwrites the marker with now and flushes it to disk before
// returning, so a crash right after a send cannot lose the marker and allow
// a duplicate on restart.
func (s *Store) RecordSent(now time.Time) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrRecordUnavailable, err)
	}

	rec := Record{
		LastEmailSent: now.UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRecordUnavailable, err)
	}

	tmp, err := os.CreateTemp(s.dir, recordFile+".*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRecordUnavailable, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // nolint:errcheck // no-op after successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() // nolint:errcheck
		return fmt.Errorf("%w: %v", ErrRecordUnavailable, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close() // nolint:errcheck
		return fmt.Errorf("%w: %v", ErrRecordUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrRecordUnavailable, err)
	}

	if err := os.Rename(tmpName, s.Path()); err != nil {
		return fmt.Errorf("%w: %v", ErrRecordUnavailable, err)
	}
	return nil
}
