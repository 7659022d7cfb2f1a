// Package credstore is the durable credential store for the console. It holds
// exactly two values, the platform bearer token and the serialized account
// record, and guarantees they are written and cleared together.
package credstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	sq "github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/novamart/admin-console/internal/app/models"
)

//go:embed migrations
var migrationFS embed.FS

const (
	keyToken = "token"
	keyUser  = "user"
)

// StoredCredential is the raw persisted pair. The user record is kept as the
// bytes that were written; deserialization is the caller's concern so that a
// corrupt record can be handled without failing the read.
type StoredCredential struct {
	Token    string
	UserJSON []byte
}

// Store is a SQLite-backed key-value store for the persisted credential.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens (creating if needed) the store at path and applies migrations.
func Open(path string, logger *zap.Logger) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create credential store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping credential store: %w", err)
	}

	if err := runMigrations(path, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate credential store: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

func runMigrations(path string, logger *zap.Logger) error {
	logger.Info("Running credential store migrations...")

	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to read embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, "sqlite://"+path)
	if err != nil {
		return fmt.Errorf("failed to prepare migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up failed: %w", err)
	}

	logger.Info("Credential store migrations completed")
	return nil
}

// Load reads the persisted credential. Returns models.ErrNoCredential when
// either key is absent; a token with no user record (or vice versa) counts as
// absent so a dangling half-written pair never rehydrates a session.
func (s *Store) Load(ctx context.Context) (*StoredCredential, error) {
	query, args, err := sq.Select("key", "value").
		From("credentials").
		Where(sq.Eq{"key": []string{keyToken, keyUser}}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build credential query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}
	defer rows.Close()

	values := make(map[string][]byte, 2)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan credential row: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	token, haveToken := values[keyToken]
	userJSON, haveUser := values[keyUser]
	if !haveToken || !haveUser || len(token) == 0 {
		return nil, models.ErrNoCredential
	}

	return &StoredCredential{Token: string(token), UserJSON: userJSON}, nil
}

// Save writes the token and the serialized user record in one transaction.
func (s *Store) Save(ctx context.Context, token string, userJSON []byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin credential write: %w", err)
	}
	defer tx.Rollback()

	for key, value := range map[string][]byte{keyToken: []byte(token), keyUser: userJSON} {
		query, args, err := sq.Insert("credentials").
			Columns("key", "value").
			Values(key, value).
			Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build credential upsert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to write credential %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit credential write: %w", err)
	}
	return nil
}

// Clear removes both keys in one transaction. Clearing an already empty store
// is not an error.
func (s *Store) Clear(ctx context.Context) error {
	query, args, err := sq.Delete("credentials").
		Where(sq.Eq{"key": []string{keyToken, keyUser}}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build credential delete: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

// DB exposes the underlying handle so other console state (display
// preferences) can live in the same file.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
