package database

import (
	"database/sql"
	"fmt"
	log "github.com/sirupsen/logrus"

	_ "modernc.org/sqlite"
)

// DB is the sqlite handle shared by the preference store and metric persistence.
type DB struct {
	*sql.DB
}

func InitDB(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// sqlite serializes writers; one connection avoids SQLITE_BUSY between the monitor and handlers.
	conn.SetMaxOpenConns(1)

	createPreferencesTable := `
	CREATE TABLE IF NOT EXISTS preferences (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`
	_, err = conn.Exec(createPreferencesTable)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create preferences table: %w", err)
	}

	createMetricsTable := `
		CREATE TABLE IF NOT EXISTS metrics (
		metric_name TEXT NOT NULL,
		label_key TEXT NOT NULL DEFAULT '',
		label_value TEXT NOT NULL DEFAULT '',
		metric_value REAL NOT NULL,
		PRIMARY KEY (metric_name, label_key, label_value)
	);`
	_, err = conn.Exec(createMetricsTable)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create metrics table: %w", err)
	}

	log.Infof("Database initialized successfully at %s.", dbPath)
	return &DB{conn}, nil
}

func (db *DB) Close() error {
	if db != nil && db.DB != nil {
		return db.DB.Close()
	}
	return nil
}
