// Package session tracks linear positions within ordered page lists.
//
// A hop session pages through the results of a top-level search; a burrow
// session pages through the results of a concept deep-dive. Both share one
// Registry, parameterized by den.SessionKind, backed by a den.SessionService.
package session

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isaacchacko/den"
	"github.com/isaacchacko/den/accrete"
)

// DefaultLimit is the number of pages fetched for a new session of either kind.
const DefaultLimit = 10

// Registry creates and navigates sessions.
type Registry struct {
	Service  den.SessionService
	Searcher den.Searcher

	// Limits overrides DefaultLimit per kind.
	Limits map[den.SessionKind]int

	// Options is merged into every search. Limit is ignored.
	Options den.SearchOptions

	// Now returns the creation time of new sessions. Defaults to time.Now.
	Now func() time.Time
}

// NewRegistry returns a Registry backed by service and searcher.
func NewRegistry(service den.SessionService, searcher den.Searcher) *Registry {
	return &Registry{Service: service, Searcher: searcher}
}

// Limit returns the page limit for kind.
func (r *Registry) Limit(kind den.SessionKind) int {
	if n, ok := r.Limits[kind]; ok && n > 0 {
		return n
	}
	return DefaultLimit
}

// Query returns the search query for a session of kind labelled label.
// Burrow sessions ask what the concept is.
func Query(kind den.SessionKind, label string) string {
	if kind == den.SessionBurrow {
		return accrete.BurrowQuery(label)
	}
	return label
}

// Create searches for label and stores the results as a new session under
// key with the cursor at 0, replacing any session with the same key. An
// empty key is replaced by a generated one. If the search fails nothing is
// stored and ECOLLABORATOR is returned.
func (r *Registry) Create(ctx context.Context, kind den.SessionKind, label, key string) (*den.Session, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, den.Errorf(den.EINVALID, "session label required")
	}
	if key == "" {
		key = uuid.New().String()
	}

	opts := r.Options
	opts.Limit = r.Limit(kind)
	pages, err := r.Searcher.Search(ctx, Query(kind, label), opts)
	if err != nil {
		if den.ErrorCode(err) == den.ECOLLABORATOR {
			return nil, err
		}
		return nil, den.Errorf(den.ECOLLABORATOR, "search failed for %q: %v", label, err)
	}
	if len(pages) > opts.Limit {
		pages = pages[:opts.Limit]
	}

	s := &den.Session{
		ID:        uuid.New().String(),
		Kind:      kind,
		Key:       key,
		Label:     label,
		Pages:     pages,
		Cursor:    0,
		CreatedAt: r.now().UTC(),
	}
	if err := r.Service.CreateSession(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the session stored under key.
// Returns ENOTFOUND if it does not exist.
func (r *Registry) Get(ctx context.Context, kind den.SessionKind, key string) (*den.Session, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}
	return r.Service.FindSession(ctx, kind, key)
}

// Navigate moves the cursor one page in dir, wrapping at both ends, and
// returns the updated session. Returns ENOTFOUND if it does not exist.
func (r *Registry) Navigate(ctx context.Context, kind den.SessionKind, key string, dir den.Direction) (*den.Session, error) {
	if _, err := den.ParseDirection(string(dir)); err != nil {
		return nil, err
	}
	s, err := r.Get(ctx, kind, key)
	if err != nil {
		return nil, err
	}
	s.Step(dir)
	if err := r.Service.UpdateSessionCursor(ctx, kind, key, s.Cursor); err != nil {
		return nil, err
	}
	return s, nil
}

// Current returns the page under the cursor.
// Returns ENOTFOUND if the session does not exist or has no pages.
func (r *Registry) Current(ctx context.Context, kind den.SessionKind, key string) (den.Page, error) {
	s, err := r.Get(ctx, kind, key)
	if err != nil {
		return den.Page{}, err
	}
	p, ok := s.Current()
	if !ok {
		return den.Page{}, den.Errorf(den.ENOTFOUND, "session %q has no pages", key)
	}
	return p, nil
}

// All returns every page of the session in order.
// Returns ENOTFOUND if the session does not exist.
func (r *Registry) All(ctx context.Context, kind den.SessionKind, key string) ([]den.Page, error) {
	s, err := r.Get(ctx, kind, key)
	if err != nil {
		return nil, err
	}
	return s.Pages, nil
}

// Delete removes the session and reports whether it existed.
func (r *Registry) Delete(ctx context.Context, kind den.SessionKind, key string) (bool, error) {
	if err := kind.Validate(); err != nil {
		return false, err
	}
	err := r.Service.DeleteSession(ctx, kind, key)
	switch {
	case den.ErrorCode(err) == den.ENOTFOUND:
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

// List returns the keys of all sessions of kind, oldest first.
func (r *Registry) List(ctx context.Context, kind den.SessionKind) ([]string, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}
	return r.Service.FindSessionKeys(ctx, kind)
}

func (r *Registry) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}
