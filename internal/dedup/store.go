// Package dedup tracks which alert signatures have been presented or
// dismissed on this workstation.
package dedup

import (
	"sync"
	"time"
)

// Decision is the outcome of admitting a fetched alert.
type Decision int

const (
	// Show means the signature is new and should be presented.
	Show Decision = iota
	// AlreadyShown means the alert is still on display; re-applying it
	// would only cause flicker.
	AlreadyShown
	// Suppressed means the user dismissed this signature; it stays hidden
	// until the server assigns a new one.
	Suppressed
)

func (d Decision) String() string {
	switch d {
	case Show:
		return "show"
	case AlreadyShown:
		return "already_shown"
	case Suppressed:
		return "suppressed"
	default:
		return "unknown"
	}
}

// DefaultLookback bounds how long dismissed-signature history survives after
// the source stops serving the alert.
const DefaultLookback = 24 * time.Hour

type entry struct {
	lastSeenAt time.Time
	dismissed  bool
}

// Store is the deduplication state. The alert poller is its single writer for
// poll-driven mutations; MarkDismissed arrives from a surface's thread and is
// serialized by the same mutex.
type Store struct {
	mu       sync.Mutex
	entries  map[string]entry
	active   string
	lookback time.Duration
	now      func() time.Time
}

// NewStore builds a Store. lookback <= 0 selects DefaultLookback.
func NewStore(lookback time.Duration) *Store {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	return &Store{
		entries:  make(map[string]entry),
		lookback: lookback,
		now:      time.Now,
	}
}

// Admit records a fetched alert signature and decides whether to present it.
func (s *Store) Admit(signature string) Decision {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, seen := s.entries[signature]
	e.lastSeenAt = now
	s.entries[signature] = e

	if seen && e.dismissed {
		return Suppressed
	}
	if seen && s.active == signature {
		return AlreadyShown
	}
	s.active = signature
	return Show
}

// MarkDismissed records a user dismissal. This is the only path that hides an
// alert before the source clears it.
func (s *Store) MarkDismissed(signature string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entries[signature]
	e.dismissed = true
	if e.lastSeenAt.IsZero() {
		e.lastSeenAt = s.now()
	}
	s.entries[signature] = e
	if s.active == signature {
		s.active = ""
	}
}

// ClearActive drops the currently-active pointer when the source reports no
// alert. Dismissed-signature history is retained (bounded by the lookback)
// so a briefly re-served alert stays suppressed.
func (s *Store) ClearActive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = ""
	s.pruneLocked()
}

// Active returns the signature currently considered on display, or "".
func (s *Store) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Dismissed reports whether a signature was dismissed by the user.
func (s *Store) Dismissed(signature string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[signature].dismissed
}

// Len returns the number of tracked signatures.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// pruneLocked drops entries not seen within the lookback window. The active
// signature is never pruned.
func (s *Store) pruneLocked() {
	cutoff := s.now().Add(-s.lookback)
	for sig, e := range s.entries {
		if sig != s.active && e.lastSeenAt.Before(cutoff) {
			delete(s.entries, sig)
		}
	}
}
