// Package history persists call captures to a local SQLite database so past
// requests and responses can be reviewed later. Saving is best-effort: the
// CLI treats history errors as warnings, never as call failures.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/wesleyorama2/riposte/http"
)

// Manager stores and retrieves call history.
type Manager struct {
	db *sql.DB
}

// Entry is one persisted call capture.
type Entry struct {
	ID              int64
	CallID          string
	StartedAt       time.Time
	Method          string
	URL             string
	RequestHeaders  map[string]string
	RequestBody     string
	StatusCode      int
	Status          string
	ResponseHeaders map[string]string
	ResponseBody    string
	FailureKind     string
	FailureMessage  string
	DurationMs      int64
}

// DefaultPath returns the standard history database location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".riposte", "history.db"), nil
}

// NewManager opens (creating if necessary) the history database at dbPath.
func NewManager(dbPath string) (*Manager, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	m := &Manager{db: db}
	if err := m.initSchema(); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Manager) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS calls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		call_id TEXT NOT NULL,
		started_at TEXT NOT NULL,
		method TEXT NOT NULL,
		url TEXT NOT NULL,
		request_headers TEXT NOT NULL,
		request_body TEXT,
		status_code INTEGER,
		status TEXT,
		response_headers TEXT,
		response_body TEXT,
		failure_kind TEXT,
		failure_message TEXT,
		duration_ms INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_calls_started_at ON calls(started_at DESC);
	CREATE INDEX IF NOT EXISTS idx_calls_method ON calls(method);
	CREATE INDEX IF NOT EXISTS idx_calls_url ON calls(url);
	`

	_, err := m.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize history schema: %w", err)
	}

	return nil
}

// Save persists one call capture.
func (m *Manager) Save(callID string, result *http.CallResult) error {
	if result == nil || result.Request == nil {
		return fmt.Errorf("cannot save empty call result")
	}

	headersJSON, err := json.Marshal(result.Request.Headers)
	if err != nil {
		return fmt.Errorf("failed to marshal request headers: %w", err)
	}

	var statusCode sql.NullInt64
	var status, responseHeaders, responseBody sql.NullString
	if result.Response != nil {
		respHeadersJSON, err := json.Marshal(result.Response.Headers)
		if err != nil {
			return fmt.Errorf("failed to marshal response headers: %w", err)
		}
		statusCode = sql.NullInt64{Int64: int64(result.Response.StatusCode), Valid: true}
		status = sql.NullString{String: result.Response.Status, Valid: true}
		responseHeaders = sql.NullString{String: string(respHeadersJSON), Valid: true}
		responseBody = sql.NullString{String: result.Response.Body, Valid: true}
	}

	var failureKind, failureMessage sql.NullString
	if result.Failure != nil {
		failureKind = sql.NullString{String: string(result.Failure.Kind), Valid: true}
		failureMessage = sql.NullString{String: result.Failure.Message, Valid: true}
	}

	query := `
		INSERT INTO calls (
			call_id, started_at, method, url, request_headers, request_body,
			status_code, status, response_headers, response_body,
			failure_kind, failure_message, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = m.db.Exec(query,
		callID,
		result.StartedAt.UTC().Format(time.RFC3339Nano),
		result.Request.Method,
		result.Request.URL,
		string(headersJSON),
		result.Request.Body,
		statusCode,
		status,
		responseHeaders,
		responseBody,
		failureKind,
		failureMessage,
		result.DurationMillis(),
	)

	if err != nil {
		return fmt.Errorf("failed to save history entry: %w", err)
	}

	return nil
}

// Recent returns up to limit entries, newest first.
func (m *Manager) Recent(limit int) ([]Entry, error) {
	query := `
		SELECT id, call_id, started_at, method, url, request_headers, request_body,
		       status_code, status, response_headers, response_body,
		       failure_kind, failure_message, duration_ms
		FROM calls
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := m.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry

	for rows.Next() {
		var entry Entry
		var startedAt string
		var requestHeadersJSON string
		var requestBody sql.NullString
		var statusCode sql.NullInt64
		var status, responseHeadersJSON, responseBody sql.NullString
		var failureKind, failureMessage sql.NullString

		err := rows.Scan(
			&entry.ID,
			&entry.CallID,
			&startedAt,
			&entry.Method,
			&entry.URL,
			&requestHeadersJSON,
			&requestBody,
			&statusCode,
			&status,
			&responseHeadersJSON,
			&responseBody,
			&failureKind,
			&failureMessage,
			&entry.DurationMs,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		if parsed, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
			entry.StartedAt = parsed
		}

		if err := json.Unmarshal([]byte(requestHeadersJSON), &entry.RequestHeaders); err != nil {
			entry.RequestHeaders = make(map[string]string)
		}
		if responseHeadersJSON.Valid {
			if err := json.Unmarshal([]byte(responseHeadersJSON.String), &entry.ResponseHeaders); err != nil {
				entry.ResponseHeaders = make(map[string]string)
			}
		}

		entry.RequestBody = requestBody.String
		entry.StatusCode = int(statusCode.Int64)
		entry.Status = status.String
		entry.ResponseBody = responseBody.String
		entry.FailureKind = failureKind.String
		entry.FailureMessage = failureMessage.String

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// Clear removes all history entries.
func (m *Manager) Clear() error {
	_, err := m.db.Exec("DELETE FROM calls")
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Count returns the number of stored entries.
func (m *Manager) Count() (int, error) {
	var count int
	err := m.db.QueryRow("SELECT COUNT(*) FROM calls").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count history entries: %w", err)
	}
	return count, nil
}

// Close releases the underlying database handle.
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
