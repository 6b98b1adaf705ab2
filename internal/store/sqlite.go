package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const timeFormat = time.RFC3339Nano

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	username      TEXT PRIMARY KEY,
	password_hash TEXT NOT NULL,
	balance       INTEGER NOT NULL DEFAULT 0 CHECK (balance >= 0),
	created_at    TEXT NOT NULL
);
`

// SQLite is a Store backed by an embedded SQLite database.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (and if necessary creates) a SQLite store at path.
func OpenSQLite(path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Get returns the account for the username, or ErrNotFound.
func (s *SQLite) Get(ctx context.Context, username string) (Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT username, password_hash, balance, created_at
		  FROM accounts
		 WHERE username = ?`, username)

	var account Account
	var createdAt string
	err := row.Scan(&account.Username, &account.PasswordHash, &account.Balance, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	if err != nil {
		return Account{}, fmt.Errorf("get account: %w", err)
	}

	account.CreatedAt, err = time.Parse(timeFormat, createdAt)
	if err != nil {
		return Account{}, fmt.Errorf("parse created_at: %w", err)
	}
	return account, nil
}

// Create inserts a new account, or fails with ErrExists.
func (s *SQLite) Create(ctx context.Context, account Account) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (username, password_hash, balance, created_at)
		VALUES (?, ?, ?, ?)`,
		account.Username, account.PasswordHash, account.Balance,
		account.CreatedAt.UTC().Format(timeFormat))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrExists
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// Put overwrites an existing account, or fails with ErrNotFound.
func (s *SQLite) Put(ctx context.Context, account Account) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE accounts
		   SET password_hash = ?, balance = ?
		 WHERE username = ?`,
		account.PasswordHash, account.Balance, account.Username)
	if err != nil {
		return fmt.Errorf("put account: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("put account: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
