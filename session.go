package den

import (
	"context"
	"time"
)

// SessionKind distinguishes the two session registries.
type SessionKind string

// SessionKind constants.
const (
	// SessionHop pages through the results of a top-level search.
	SessionHop SessionKind = "hop"
	// SessionBurrow pages through the results of a concept deep-dive.
	SessionBurrow SessionKind = "burrow"
)

// Validate returns EINVALID for an unknown kind.
func (k SessionKind) Validate() error {
	switch k {
	case SessionHop, SessionBurrow:
		return nil
	}
	return Errorf(EINVALID, "unknown session kind %q", k)
}

// Direction is a navigation step through a session.
type Direction string

// Direction constants.
const (
	DirectionNext Direction = "next"
	DirectionPrev Direction = "prev"
)

// ParseDirection returns EINVALID for anything but "next" or "prev".
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case DirectionNext, DirectionPrev:
		return d, nil
	}
	return "", Errorf(EINVALID, "invalid direction %q: want next or prev", s)
}

// Session is a cursor over an ordered page list.
type Session struct {
	ID        string      `json:"id"`
	Kind      SessionKind `json:"kind"`
	Key       string      `json:"key"`
	Label     string      `json:"label"` // query or concept title
	Pages     []Page      `json:"pages"`
	Cursor    int         `json:"cursor"`
	CreatedAt time.Time   `json:"createdAt"`
}

// Validate returns an error if the session contains invalid fields.
func (s *Session) Validate() error {
	if err := s.Kind.Validate(); err != nil {
		return err
	}
	if s.Key == "" {
		return Errorf(EINVALID, "session key required")
	}
	if s.Label == "" {
		return Errorf(EINVALID, "session label required")
	}
	if len(s.Pages) > 0 && (s.Cursor < 0 || s.Cursor >= len(s.Pages)) {
		return Errorf(EINVALID, "session cursor %d out of range", s.Cursor)
	}
	return nil
}

// Current returns the page under the cursor. Returns false for an empty session.
func (s *Session) Current() (Page, bool) {
	if s.Cursor < 0 || s.Cursor >= len(s.Pages) {
		return Page{}, false
	}
	return s.Pages[s.Cursor], true
}

// Step moves the cursor one page in dir, wrapping at both ends.
// An empty session keeps the cursor at 0.
func (s *Session) Step(dir Direction) {
	n := len(s.Pages)
	if n == 0 {
		s.Cursor = 0
		return
	}
	switch dir {
	case DirectionNext:
		s.Cursor = (s.Cursor + 1) % n
	case DirectionPrev:
		s.Cursor = (s.Cursor - 1 + n) % n
	}
}

// SessionService stores sessions keyed by kind and key.
type SessionService interface {
	// CreateSession stores s, replacing any session with the same kind and key.
	CreateSession(ctx context.Context, s *Session) error

	// FindSession retrieves a session.
	// Returns ENOTFOUND if the session does not exist.
	FindSession(ctx context.Context, kind SessionKind, key string) (*Session, error)

	// UpdateSessionCursor moves the cursor of an existing session.
	// Returns ENOTFOUND if the session does not exist.
	UpdateSessionCursor(ctx context.Context, kind SessionKind, key string, cursor int) error

	// DeleteSession removes a session and its pages.
	// Returns ENOTFOUND if the session does not exist.
	DeleteSession(ctx context.Context, kind SessionKind, key string) error

	// FindSessionKeys lists the keys of all sessions of kind, oldest first.
	FindSessionKeys(ctx context.Context, kind SessionKind) ([]string, error)
}
