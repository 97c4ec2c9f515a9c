package database

import (
	"database/sql"
	"fmt"
	log "log/slog"
	"os"
	"path/filepath"
	"time"

	"discord-blog/models"

	_ "github.com/mattn/go-sqlite3" // Import the SQLite3 driver
)

// Journal records post lifecycle events in a SQLite database.
type Journal struct {
	db *sql.DB
}

// OpenJournal opens the journal at dbPath, creating the file and its
// directory if needed.
func OpenJournal(dbPath string) (*Journal, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps :memory: databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createEventsTable(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create events table: %w", err)
	}

	log.Info("opened post journal", "path", dbPath)
	return &Journal{db: db}, nil
}

func createEventsTable(db *sql.DB) error {
	query := `
    CREATE TABLE IF NOT EXISTS post_events (
        event_id INTEGER PRIMARY KEY AUTOINCREMENT,
        action TEXT NOT NULL,
        path TEXT NOT NULL,
        author_id TEXT,
        message_id TEXT,
        timestamp INTEGER NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_post_events_timestamp ON post_events (timestamp);
    CREATE INDEX IF NOT EXISTS idx_post_events_path ON post_events (path);`
	_, err := db.Exec(query)
	return err
}

// Record stores an event. A zero Timestamp is set to the current time.
func (j *Journal) Record(event models.PostEvent) (int64, error) {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}
	stmt, err := j.db.Prepare(`INSERT INTO post_events (action, path, author_id, message_id, timestamp) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement for recording event: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.Exec(event.Action, event.Path, event.AuthorID, event.MessageID, event.Timestamp)
	if err != nil {
		return 0, fmt.Errorf("failed to record %s event for %s: %w", event.Action, event.Path, err)
	}
	return res.LastInsertId()
}

// Recent returns up to limit events, newest first.
func (j *Journal) Recent(limit int) ([]models.PostEvent, error) {
	return j.query(`SELECT event_id, action, path, author_id, message_id, timestamp FROM post_events ORDER BY timestamp DESC, event_id DESC LIMIT ?`, limit)
}

// History returns every event recorded for path, oldest first.
func (j *Journal) History(path string) ([]models.PostEvent, error) {
	return j.query(`SELECT event_id, action, path, author_id, message_id, timestamp FROM post_events WHERE path = ? ORDER BY timestamp, event_id`, path)
}

func (j *Journal) query(query string, args ...any) ([]models.PostEvent, error) {
	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.PostEvent
	for rows.Next() {
		var e models.PostEvent
		var authorID, messageID sql.NullString
		if err := rows.Scan(&e.EventID, &e.Action, &e.Path, &authorID, &messageID, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.AuthorID = authorID.String
		e.MessageID = messageID.String
		events = append(events, e)
	}
	return events, rows.Err()
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}
