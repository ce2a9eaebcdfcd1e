// Package history keeps a log of album runs in a local SQLite database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	applog "github.com/ivlev/albumscript/internal/log"
	"github.com/ivlev/albumscript/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

// Run is one finished invocation.
type Run struct {
	ID      int64
	Started time.Time
	Build   string
	Script  string
	Pages   int
	Output  string
	Elapsed time.Duration
	Compose time.Duration
	Encode  time.Duration
	Concat  time.Duration
	Err     string
}

// Store is an open history database.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

const schema = `CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at  TEXT NOT NULL,
	build       TEXT NOT NULL,
	script      TEXT NOT NULL,
	pages       INTEGER NOT NULL,
	output      TEXT NOT NULL,
	elapsed_ms  INTEGER NOT NULL,
	compose_ms  INTEGER NOT NULL,
	encode_ms   INTEGER NOT NULL,
	concat_ms   INTEGER NOT NULL,
	error       TEXT NOT NULL
);`

// Open creates or opens the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	l := applog.WithOperation(applog.WithComponent("history"), "open").With(slog.String("path", path))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}
	l.Debug("history ready")
	return &Store{db: db, log: l}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Record appends r and returns its ID. Empty Started and Build are filled in.
func (s *Store) Record(ctx context.Context, r Run) (int64, error) {
	if r.Started.IsZero() {
		r.Started = time.Now()
	}
	if r.Build == "" {
		r.Build = version.String()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (started_at, build, script, pages, output, elapsed_ms, compose_ms, encode_ms, concat_ms, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Started.UTC().Format(time.RFC3339Nano), r.Build, r.Script, r.Pages, r.Output,
		r.Elapsed.Milliseconds(), r.Compose.Milliseconds(), r.Encode.Milliseconds(), r.Concat.Milliseconds(), r.Err,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return res.LastInsertId()
}

// Recent returns up to n runs, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, build, script, pages, output, elapsed_ms, compose_ms, encode_ms, concat_ms, error
		 FROM runs ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r                                   Run
			started                             string
			elapsed, compose, encode, concatted int64
		)
		if err := rows.Scan(&r.ID, &started, &r.Build, &r.Script, &r.Pages, &r.Output,
			&elapsed, &compose, &encode, &concatted, &r.Err); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if r.Started, err = time.Parse(time.RFC3339Nano, started); err != nil {
			s.log.Warn("bad timestamp", slog.Int64("id", r.ID), slog.String("value", started))
		}
		r.Elapsed = time.Duration(elapsed) * time.Millisecond
		r.Compose = time.Duration(compose) * time.Millisecond
		r.Encode = time.Duration(encode) * time.Millisecond
		r.Concat = time.Duration(concatted) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}

// Line renders r as one line of the benchmark log.
func (r Run) Line() string {
	status := "ok"
	if r.Err != "" {
		status = "error: " + r.Err
	}
	return fmt.Sprintf("[%s] Build: %s | Script: %s | Pages: %d | Total: %.2fs | Render: %.2fs | Encode: %.2fs | %s",
		r.Started.Local().Format("2006-01-02 15:04:05"),
		r.Build,
		filepath.Base(r.Script),
		r.Pages,
		r.Elapsed.Seconds(),
		r.Compose.Seconds(),
		r.Encode.Seconds(),
		status,
	)
}
