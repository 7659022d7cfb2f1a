// Package settings persists the console display preferences (theme, sidebar
// behavior) in the same local database as the credential store.
package settings

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"github.com/novamart/admin-console/internal/app/models"
)

const (
	prefTheme        = "theme"
	prefSidebarMini  = "sidebar_mini"
	prefSidebarHover = "sidebar_hover"
)

var _ PreferencesRepo = (*SQLitePreferencesRepo)(nil)

// PreferencesRepo is the storage contract for console preferences.
type PreferencesRepo interface {
	Get(ctx context.Context) (*models.Preferences, error)
	Set(ctx context.Context, prefs *models.Preferences) error
}

// SQLitePreferencesRepo stores preferences in the shared console database.
type SQLitePreferencesRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSQLitePreferencesRepo(db *sql.DB, logger *zap.Logger) *SQLitePreferencesRepo {
	return &SQLitePreferencesRepo{db: db, logger: logger}
}

// Get returns the stored preferences, with defaults filling any gaps.
func (r *SQLitePreferencesRepo) Get(ctx context.Context) (*models.Preferences, error) {
	query, args, err := sq.Select("name", "value").From("preferences").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build preferences query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}
	defer rows.Close()

	prefs := models.DefaultPreferences()
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("failed to scan preference row: %w", err)
		}
		switch name {
		case prefTheme:
			prefs.Theme = value
		case prefSidebarMini:
			prefs.SidebarMini, _ = strconv.ParseBool(value)
		case prefSidebarHover:
			prefs.SidebarHover, _ = strconv.ParseBool(value)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}
	return prefs, nil
}

// Set writes all preference values in one transaction.
func (r *SQLitePreferencesRepo) Set(ctx context.Context, prefs *models.Preferences) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin preferences write: %w", err)
	}
	defer tx.Rollback()

	values := map[string]string{
		prefTheme:        prefs.Theme,
		prefSidebarMini:  strconv.FormatBool(prefs.SidebarMini),
		prefSidebarHover: strconv.FormatBool(prefs.SidebarHover),
	}
	for name, value := range values {
		query, args, err := sq.Insert("preferences").
			Columns("name", "value").
			Values(name, value).
			Suffix("ON CONFLICT(name) DO UPDATE SET value = excluded.value").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build preference upsert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to write preference %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit preferences: %w", err)
	}
	return nil
}
