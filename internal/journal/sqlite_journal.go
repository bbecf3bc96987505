package journal

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"crawshaw.io/sqlite"
	"github.com/google/uuid"
)

// SQLiteJournal is an implementation of Journal that uses SQLite.
type SQLiteJournal struct {
	conn   *sqlite.Conn
	dbPath string
	mu     sync.Mutex
}

// NewSQLiteJournal creates a new SQLiteJournal instance.
func NewSQLiteJournal() *SQLiteJournal {
	return &SQLiteJournal{}
}

// Initialize initializes the journal with the given database path.
func (j *SQLiteJournal) Initialize(dbPath string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.dbPath = dbPath

	conn, err := sqlite.OpenConn(dbPath, sqlite.SQLITE_OPEN_CREATE|sqlite.SQLITE_OPEN_READWRITE)
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}
	j.conn = conn

	if err := j.createTable(); err != nil {
		j.conn.Close()
		j.conn = nil
		return fmt.Errorf("failed to create table: %w", err)
	}

	return nil
}

// createTable creates the tool_calls table if it doesn't exist.
func (j *SQLiteJournal) createTable() error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS tool_calls (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		tool TEXT NOT NULL,
		argv TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT NOT NULL,
		duration_ms INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);`

	stmt, err := j.conn.Prepare(createTableSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare create table statement: %w", err)
	}
	defer stmt.Reset()

	if _, err := stmt.Step(); err != nil {
		return fmt.Errorf("failed to execute create table statement: %w", err)
	}

	return nil
}

// Close closes the journal and releases any resources.
func (j *SQLiteJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.conn == nil {
		return nil
	}
	err := j.conn.Close()
	j.conn = nil
	return err
}

// Record stores the entry in the database.
func (j *SQLiteJournal) Record(entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	argv, err := json.Marshal(entry.Argv)
	if err != nil {
		return fmt.Errorf("failed to encode argv: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if j.conn == nil {
		return fmt.Errorf("journal not initialized")
	}

	insertSQL := `
	INSERT INTO tool_calls (id, session_id, tool, argv, status, error, duration_ms, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);`

	stmt, err := j.conn.Prepare(insertSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Reset()

	// Bind parameters - indices in sqlite are 1-based
	stmt.BindText(1, entry.ID)
	stmt.BindText(2, entry.SessionID)
	stmt.BindText(3, entry.Tool)
	stmt.BindText(4, string(argv))
	stmt.BindText(5, entry.Status)
	stmt.BindText(6, entry.Error)
	stmt.BindInt64(7, entry.Duration.Milliseconds())
	stmt.BindInt64(8, entry.CreatedAt.UnixNano())

	if _, err := stmt.Step(); err != nil {
		return fmt.Errorf("failed to insert tool call: %w", err)
	}

	return nil
}

// Recent returns up to limit entries, newest first.
func (j *SQLiteJournal) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		return []Entry{}, nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if j.conn == nil {
		return nil, fmt.Errorf("journal not initialized")
	}

	selectSQL := `
	SELECT id, session_id, tool, argv, status, error, duration_ms, created_at
	FROM tool_calls
	ORDER BY created_at DESC
	LIMIT ?;`

	stmt, err := j.conn.Prepare(selectSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Reset()

	stmt.BindInt64(1, int64(limit))

	entries := []Entry{}
	for {
		hasRow, err := stmt.Step()
		if err != nil {
			return nil, fmt.Errorf("failed to execute select statement: %w", err)
		}
		if !hasRow {
			break
		}

		// Column indices are 0-based
		e := Entry{
			ID:        stmt.ColumnText(0),
			SessionID: stmt.ColumnText(1),
			Tool:      stmt.ColumnText(2),
			Status:    stmt.ColumnText(4),
			Error:     stmt.ColumnText(5),
			Duration:  time.Duration(stmt.ColumnInt64(6)) * time.Millisecond,
			CreatedAt: time.Unix(0, stmt.ColumnInt64(7)),
		}
		if err := json.Unmarshal([]byte(stmt.ColumnText(3)), &e.Argv); err != nil {
			return nil, fmt.Errorf("failed to decode argv for entry %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}

	return entries, nil
}
