package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for lookups of unknown session ids.
var ErrSessionNotFound = errors.New("session not found")

// Session is one drafting session in the registry.
type Session struct {
	ID                 int    `json:"id"`
	SessionName        string `json:"session_name"`
	CreationTime       string `json:"creation_time"`
	UpdateTime         string `json:"update_time"`
	SessionStatus      string `json:"session_status"`
	StorageCatalogName string `json:"storage_catalog_name"`
	ProcessedDrawing   string `json:"processed_drawing,omitempty"`
	GeometryStorage    string `json:"geometry_storage,omitempty"`
	UserComment        string `json:"user_comment"`
}

// SessionRepository stores session records in sqlite.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository wraps an open database handle.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionsSchema = `
CREATE TABLE IF NOT EXISTS sessions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_name TEXT NOT NULL,
    creation_time TEXT NOT NULL,
    update_time TEXT NOT NULL,
    session_status TEXT NOT NULL DEFAULT 'stage',
    storage_catalog_name TEXT NOT NULL,
    processed_drawing TEXT NOT NULL DEFAULT '',
    geometry_storage TEXT NOT NULL DEFAULT '',
    user_comment TEXT NOT NULL DEFAULT ''
);`

// Init creates the schema.
func (r *SessionRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, sessionsSchema); err != nil {
		return fmt.Errorf("apply sessions schema: %w", err)
	}
	return nil
}

// Create inserts a new session in stage status with a fresh storage
// catalog name.
func (r *SessionRepository) Create(ctx context.Context, name, comment string) (*Session, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	catalog := "session_" + uuid.NewString()

	res, err := r.db.ExecContext(ctx, `
        INSERT INTO sessions (session_name, creation_time, update_time, session_status, storage_catalog_name, user_comment)
        VALUES (?, ?, ?, 'stage', ?, ?)
    `, name, now, now, catalog, comment)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("session id: %w", err)
	}
	return r.Get(ctx, int(id))
}

// Get returns a session by id.
func (r *SessionRepository) Get(ctx context.Context, id int) (*Session, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, session_name, creation_time, update_time, session_status,
               storage_catalog_name, processed_drawing, geometry_storage, user_comment
        FROM sessions WHERE id = ?
    `, id)
	return scanSession(row)
}

// List returns every session ordered by id.
func (r *SessionRepository) List(ctx context.Context) ([]*Session, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, session_name, creation_time, update_time, session_status,
               storage_catalog_name, processed_drawing, geometry_storage, user_comment
        FROM sessions ORDER BY id
    `)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []*Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Update patches the given fields; nil pointers leave the column alone.
func (r *SessionRepository) Update(ctx context.Context, id int, name, comment, processedDrawing, geometryStorage *string) (*Session, error) {
	s, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != nil {
		s.SessionName = *name
	}
	if comment != nil {
		s.UserComment = *comment
	}
	if processedDrawing != nil {
		s.ProcessedDrawing = *processedDrawing
	}
	if geometryStorage != nil {
		s.GeometryStorage = *geometryStorage
	}
	s.UpdateTime = time.Now().UTC().Format(time.RFC3339)

	_, err = r.db.ExecContext(ctx, `
        UPDATE sessions
        SET session_name = ?, user_comment = ?, processed_drawing = ?, geometry_storage = ?, update_time = ?
        WHERE id = ?
    `, s.SessionName, s.UserComment, s.ProcessedDrawing, s.GeometryStorage, s.UpdateTime, id)
	if err != nil {
		return nil, fmt.Errorf("update session %d: %w", id, err)
	}
	return s, nil
}

// Activate marks the session active and refreshes its update time.
func (r *SessionRepository) Activate(ctx context.Context, id int) (*Session, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := r.db.ExecContext(ctx, `
        UPDATE sessions SET session_status = 'active', update_time = ? WHERE id = ?
    `, now, id)
	if err != nil {
		return nil, fmt.Errorf("activate session %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrSessionNotFound
	}
	return r.Get(ctx, id)
}

func scanSession(row interface{ Scan(...any) error }) (*Session, error) {
	var s Session
	err := row.Scan(&s.ID, &s.SessionName, &s.CreationTime, &s.UpdateTime, &s.SessionStatus,
		&s.StorageCatalogName, &s.ProcessedDrawing, &s.GeometryStorage, &s.UserComment)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}
	return &s, nil
}

// OpenSQLite opens (and creates, if needed) the sqlite registry file.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
