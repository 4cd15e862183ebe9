// Package store persists users and upload metadata in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const (
	usersTable   = "users"
	uploadsTable = "uploads"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func ensureSchema(db *sql.DB) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);`, usersTable),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_email ON %s(email);`, usersTable, usersTable),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			original_name TEXT NOT NULL,
			saved_as TEXT NOT NULL,
			report_file TEXT NOT NULL DEFAULT '',
			total_rows INTEGER NOT NULL,
			valid_rows INTEGER NOT NULL,
			dropped INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		);`, uploadsTable),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_created ON %s(created_at);`, uploadsTable, uploadsTable),
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// ============================================================================
// USERS
// ============================================================================

// User is a registered account. PasswordHash is a bcrypt hash.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// CreateUser inserts a new user. Fails on duplicate email.
func (s *Store) CreateUser(ctx context.Context, u User) error {
	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, username, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`, usersTable),
		u.ID, u.Username, u.Email, u.PasswordHash, u.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UserByEmail looks up a user by email.
func (s *Store) UserByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT id, username, email, password_hash, created_at FROM %s WHERE email = ?`, usersTable),
		email)

	var u User
	var created int64
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("user by email: %w", err)
	}
	u.CreatedAt = time.Unix(created, 0)
	return &u, nil
}

// ============================================================================
// UPLOADS
// ============================================================================

// Upload records one processed CSV upload.
type Upload struct {
	ID           string
	OriginalName string
	SavedAs      string
	ReportFile   string
	TotalRows    int
	ValidRows    int
	Dropped      int
	CreatedAt    time.Time
}

// SaveUpload inserts upload metadata.
func (s *Store) SaveUpload(ctx context.Context, u Upload) error {
	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, original_name, saved_as, report_file, total_rows, valid_rows, dropped, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, uploadsTable),
		u.ID, u.OriginalName, u.SavedAs, u.ReportFile, u.TotalRows, u.ValidRows, u.Dropped, u.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("save upload: %w", err)
	}
	return nil
}

// SetReportFile records the generated report filename for an upload.
func (s *Store) SetReportFile(ctx context.Context, uploadID, reportFile string) error {
	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET report_file = ? WHERE id = ?`, uploadsTable),
		reportFile, uploadID)
	if err != nil {
		return fmt.Errorf("set report file: %w", err)
	}
	return nil
}

// UploadByID looks up upload metadata.
func (s *Store) UploadByID(ctx context.Context, id string) (*Upload, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT id, original_name, saved_as, report_file, total_rows, valid_rows, dropped, created_at
			FROM %s WHERE id = ?`, uploadsTable),
		id)

	var u Upload
	var created int64
	if err := row.Scan(&u.ID, &u.OriginalName, &u.SavedAs, &u.ReportFile,
		&u.TotalRows, &u.ValidRows, &u.Dropped, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("upload by id: %w", err)
	}
	u.CreatedAt = time.Unix(created, 0)
	return &u, nil
}
