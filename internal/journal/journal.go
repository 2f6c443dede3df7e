// Package journal keeps an SQLite audit trail of capture sessions: which
// keys were captured, when, and with what quality. The JSON store document
// remains the interchange format; the journal is operator bookkeeping.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Journal handles journal database operations. The connection is opened
// lazily on first use and the schema is applied at that point.
type Journal struct {
	dbPath string

	db     *sql.DB
	dbOnce sync.Once
	dbErr  error

	closeOnce sync.Once
	closeErr  error
}

// Capture is one journalled capture record.
type Capture struct {
	ID              int64
	SessionID       int64
	Key             string
	CapturedAt      time.Time
	FrameLen        int
	FramesUsed      int
	FramesDiscarded int
	Quality         float64
	TotalMicros     int64
}

// New creates a journal backed by the database at dbPath.
func New(dbPath string) *Journal {
	return &Journal{dbPath: dbPath}
}

func (j *Journal) getDB() (*sql.DB, error) {
	j.dbOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", j.dbPath, "_journal_mode=WAL&_synchronous=NORMAL"))
		if err != nil {
			j.dbErr = fmt.Errorf("opening connection: %w", err)
			return
		}

		if _, err = db.Exec(schemaSQL); err != nil {
			_ = db.Close()
			j.dbErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		j.db = db
	})

	return j.db, j.dbErr
}

// CreateSession records the start of a capture run and returns its ID.
func (j *Journal) CreateSession(ctx context.Context, device, storeFile string) (sessionID int64, err error) {
	db, err := j.getDB()
	if err != nil {
		return 0, err
	}

	stmt, err := db.PrepareContext(ctx, insertSessionSQL)
	if err != nil {
		return 0, fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	result, err := stmt.ExecContext(ctx, device, storeFile)
	if err != nil {
		return 0, fmt.Errorf("inserting session: %w", err)
	}

	if sessionID, err = result.LastInsertId(); err != nil {
		return 0, fmt.Errorf("getting session ID: %w", err)
	}
	return sessionID, nil
}

// RecordCapture appends one capture record to a session.
func (j *Journal) RecordCapture(ctx context.Context, sessionID int64, c Capture) (captureID int64, err error) {
	db, err := j.getDB()
	if err != nil {
		return 0, err
	}

	stmt, err := db.PrepareContext(ctx, insertCaptureSQL)
	if err != nil {
		return 0, fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	result, err := stmt.ExecContext(ctx, sessionID, c.Key,
		c.FrameLen, c.FramesUsed, c.FramesDiscarded, c.Quality, c.TotalMicros)
	if err != nil {
		return 0, fmt.Errorf("inserting capture: %w", err)
	}

	if captureID, err = result.LastInsertId(); err != nil {
		return 0, fmt.Errorf("getting capture ID: %w", err)
	}
	return captureID, nil
}

// Captures returns a session's capture records in capture order.
func (j *Journal) Captures(ctx context.Context, sessionID int64) (captures []Capture, err error) {
	db, err := j.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, selectCapturesSQL, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying captures: %w", err)
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var c Capture
		if err = rows.Scan(&c.ID, &c.SessionID, &c.Key, &c.CapturedAt,
			&c.FrameLen, &c.FramesUsed, &c.FramesDiscarded, &c.Quality, &c.TotalMicros); err != nil {
			return nil, fmt.Errorf("scanning capture: %w", err)
		}
		captures = append(captures, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("reading captures: %w", err)
	}

	return captures, nil
}

// Close releases the database connection. Safe to call multiple times.
func (j *Journal) Close() error {
	j.closeOnce.Do(func() {
		if j.db != nil {
			j.closeErr = j.db.Close()
		}
	})
	return j.closeErr
}

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}
