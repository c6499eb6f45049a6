package mock

import (
	"context"

	"github.com/isaacchacko/den"
)

var _ den.SessionService = (*SessionService)(nil)

// SessionService is a mock implementation of den.SessionService.
type SessionService struct {
	CreateSessionFn       func(ctx context.Context, s *den.Session) error
	FindSessionFn         func(ctx context.Context, kind den.SessionKind, key string) (*den.Session, error)
	UpdateSessionCursorFn func(ctx context.Context, kind den.SessionKind, key string, cursor int) error
	DeleteSessionFn       func(ctx context.Context, kind den.SessionKind, key string) error
	FindSessionKeysFn     func(ctx context.Context, kind den.SessionKind) ([]string, error)
}

func (s *SessionService) CreateSession(ctx context.Context, sess *den.Session) error {
	return s.CreateSessionFn(ctx, sess)
}

func (s *SessionService) FindSession(ctx context.Context, kind den.SessionKind, key string) (*den.Session, error) {
	return s.FindSessionFn(ctx, kind, key)
}

func (s *SessionService) UpdateSessionCursor(ctx context.Context, kind den.SessionKind, key string, cursor int) error {
	return s.UpdateSessionCursorFn(ctx, kind, key, cursor)
}

func (s *SessionService) DeleteSession(ctx context.Context, kind den.SessionKind, key string) error {
	return s.DeleteSessionFn(ctx, kind, key)
}

func (s *SessionService) FindSessionKeys(ctx context.Context, kind den.SessionKind) ([]string, error) {
	return s.FindSessionKeysFn(ctx, kind)
}
