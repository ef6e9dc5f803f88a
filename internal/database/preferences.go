package database

import (
	"context"
	"database/sql"
	"fmt"
	log "github.com/sirupsen/logrus"
)

// GetPreference returns the raw value stored under key. ok is false when the record is absent.
func (db *DB) GetPreference(ctx context.Context, key string) (value string, ok bool, err error) {
	query := `SELECT value FROM preferences WHERE key = ?;`
	err = db.QueryRowContext(ctx, query, key).Scan(&value)
	if err == sql.ErrNoRows {
		log.Debugf("Preference %s not found in the database", key)
		return "", false, nil
	} else if err != nil {
		return "", false, fmt.Errorf("failed to get preference %s: %w", key, err)
	}
	return value, true, nil
}

// SetPreference overwrites the record stored under key.
func (db *DB) SetPreference(ctx context.Context, key, value string) error {
	query := `
	INSERT OR REPLACE INTO preferences (key, value, updated_at)
	VALUES (?, ?, CURRENT_TIMESTAMP);`
	_, err := db.ExecContext(ctx, query, key, value)
	if err != nil {
		return fmt.Errorf("failed to save preference %s: %w", key, err)
	}
	log.Debugf("Preference saved: %s = %s", key, value)
	return nil
}
