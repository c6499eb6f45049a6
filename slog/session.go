package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/isaacchacko/den"
)

var _ den.SessionService = (*LoggingSessionService)(nil)

// LoggingSessionService wraps a SessionService with debug logging.
type LoggingSessionService struct {
	next   den.SessionService
	logger *slog.Logger
}

// NewLoggingSessionService creates a new LoggingSessionService.
func NewLoggingSessionService(next den.SessionService, logger *slog.Logger) *LoggingSessionService {
	return &LoggingSessionService{next: next, logger: logger}
}

func (s *LoggingSessionService) CreateSession(ctx context.Context, sess *den.Session) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("create session",
			"kind", sess.Kind,
			"key", sess.Key,
			"pages", len(sess.Pages),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateSession(ctx, sess)
}

func (s *LoggingSessionService) FindSession(ctx context.Context, kind den.SessionKind, key string) (sess *den.Session, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find session",
			"kind", kind,
			"key", key,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindSession(ctx, kind, key)
}

func (s *LoggingSessionService) UpdateSessionCursor(ctx context.Context, kind den.SessionKind, key string, cursor int) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("update session cursor",
			"kind", kind,
			"key", key,
			"cursor", cursor,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.UpdateSessionCursor(ctx, kind, key, cursor)
}

func (s *LoggingSessionService) DeleteSession(ctx context.Context, kind den.SessionKind, key string) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("delete session",
			"kind", kind,
			"key", key,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DeleteSession(ctx, kind, key)
}

func (s *LoggingSessionService) FindSessionKeys(ctx context.Context, kind den.SessionKind) (keys []string, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find session keys",
			"kind", kind,
			"count", len(keys),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindSessionKeys(ctx, kind)
}
