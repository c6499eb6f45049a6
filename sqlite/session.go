package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/isaacchacko/den"
)

// Compile-time interface verification.
var _ den.SessionService = (*SessionService)(nil)

// SessionService implements den.SessionService using SQLite.
type SessionService struct {
	db *DB
}

// NewSessionService creates a new SessionService.
func NewSessionService(db *DB) *SessionService {
	return &SessionService{db: db}
}

// CreateSession stores sess and its pages, replacing any session with the
// same kind and key. ID and CreatedAt are generated when unset.
func (s *SessionService) CreateSession(ctx context.Context, sess *den.Session) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	if sess.ID == "" {
		sess.ID = uuid.New().String()
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE kind = ? AND key = ?`,
		sess.Kind, sess.Key); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sessions (id, kind, key, label, cursor, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, sess.ID, sess.Kind, sess.Key, sess.Label, sess.Cursor, formatTime(sess.CreatedAt)); err != nil {
		return err
	}

	for i, p := range sess.Pages {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO session_pages (session_id, position, url, title, snippet)
			VALUES (?, ?, ?, ?, ?)
		`, sess.ID, i, p.URL, p.Title, p.Snippet); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// FindSession retrieves a session with its pages in order.
func (s *SessionService) FindSession(ctx context.Context, kind den.SessionKind, key string) (*den.Session, error) {
	var sess den.Session
	var createdAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, kind, key, label, cursor, created_at
		FROM sessions
		WHERE kind = ? AND key = ?
	`, kind, key).Scan(&sess.ID, &sess.Kind, &sess.Key, &sess.Label, &sess.Cursor, &createdAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, den.Errorf(den.ENOTFOUND, "%s session %q not found", kind, key)
	}
	if err != nil {
		return nil, err
	}

	sess.CreatedAt, err = parseRFC3339(createdAt, "created_at")
	if err != nil {
		return nil, err
	}

	sess.Pages, err = s.findSessionPages(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *SessionService) findSessionPages(ctx context.Context, sessionID string) ([]den.Page, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT url, title, snippet
		FROM session_pages
		WHERE session_id = ?
		ORDER BY position
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pages := []den.Page{}
	for rows.Next() {
		var p den.Page
		if err := rows.Scan(&p.URL, &p.Title, &p.Snippet); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// UpdateSessionCursor moves the cursor of an existing session.
// Returns EINVALID if cursor is outside the session's pages.
func (s *SessionService) UpdateSessionCursor(ctx context.Context, kind den.SessionKind, key string, cursor int) error {
	var id string
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT s.id, COUNT(p.position)
		FROM sessions s
		LEFT JOIN session_pages p ON p.session_id = s.id
		WHERE s.kind = ? AND s.key = ?
		GROUP BY s.id
	`, kind, key).Scan(&id, &count)

	if errors.Is(err, sql.ErrNoRows) {
		return den.Errorf(den.ENOTFOUND, "%s session %q not found", kind, key)
	}
	if err != nil {
		return err
	}

	if cursor < 0 || (count > 0 && cursor >= count) || (count == 0 && cursor != 0) {
		return den.Errorf(den.EINVALID, "session cursor %d out of range", cursor)
	}

	_, err = s.db.ExecContext(ctx, `UPDATE sessions SET cursor = ? WHERE id = ?`, cursor, id)
	return err
}

// DeleteSession removes a session and its pages.
func (s *SessionService) DeleteSession(ctx context.Context, kind den.SessionKind, key string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE kind = ? AND key = ?`, kind, key)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return den.Errorf(den.ENOTFOUND, "%s session %q not found", kind, key)
	}

	return nil
}

// FindSessionKeys lists the keys of all sessions of kind, oldest first.
func (s *SessionService) FindSessionKeys(ctx context.Context, kind den.SessionKind) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key FROM sessions
		WHERE kind = ?
		ORDER BY created_at, rowid
	`, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
