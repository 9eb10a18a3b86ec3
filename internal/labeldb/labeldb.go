// Package labeldb persists the labeling entities: registered videos,
// the moves labeled on them, and per-frame sensation tags. Storage is
// SQLite via database/sql; the schema is managed by embedded
// golang-migrate migrations (see migrate.go). Slice and map fields are
// stored as JSON text columns, timestamps as UTC RFC 3339 text.
package labeldb

import (
	"compress/gzip"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/tailscale/tailsql/server/tailsql"
	_ "modernc.org/sqlite"
	"tailscale.com/tsweb"

	"github.com/Jolieabadir/dynalytics/internal/timeutil"
)

// ErrNotFound means the requested record does not exist. Lookup,
// update, and delete operations wrap it with the entity and ID.
var ErrNotFound = errors.New("labeldb: not found")

// DB is the labeling store. It embeds the raw connection so callers
// can run ad-hoc queries in tests and admin tooling.
type DB struct {
	*sql.DB
	path  string
	clock timeutil.Clock
}

// Open opens or creates the labeling database at path. The schema is
// not touched; call MigrateUp to bring it current.
func Open(path string) (*DB, error) {
	return OpenWithClock(path, timeutil.RealClock{})
}

// OpenWithClock opens the database stamping record timestamps from
// clock. Tests pass a mock clock for deterministic times.
func OpenWithClock(path string, clock timeutil.Clock) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("labeldb: open %s: %w", path, err)
	}

	// WAL keeps readers unblocked during label writes; the busy
	// timeout covers concurrent API requests on one file.
	_, err = db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("labeldb: apply pragmas: %w", err)
	}

	return &DB{DB: db, path: path, clock: clock}, nil
}

// AttachAdminRoutes mounts the debug surface on mux: a tailsql query
// UI under /debug/tailsql/ and an on-demand gzipped database backup.
func (db *DB) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)

	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		log.Fatalf("failed to create tailsql server: %v", err)
	}
	tsql.SetDB("sqlite://"+db.path, db.DB, &tailsql.DBOptions{
		Label: "Labels DB",
	})
	debug.Handle("tailsql/", "SQL live debugging", tsql.NewMux())

	debug.Handle("backup", "Create and download a backup of the label database now", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		unixTime := time.Now().Unix()
		backupPath := fmt.Sprintf("labels-backup-%d.db", unixTime)
		if _, err := db.DB.Exec("VACUUM INTO ?", backupPath); err != nil {
			http.Error(w, fmt.Sprintf("Failed to create backup: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", backupPath))
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Encoding", "gzip")

		backupFile, err := os.Open(backupPath)
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to open backup file: %v", err), http.StatusInternalServerError)
			return
		}
		defer func() {
			backupFile.Close()
			if err := os.Remove(backupPath); err != nil {
				log.Printf("Failed to remove backup file: %v", err)
			}
		}()

		gzipWriter := gzip.NewWriter(w)
		defer gzipWriter.Close()
		if _, err := io.Copy(gzipWriter, backupFile); err != nil {
			http.Error(w, fmt.Sprintf("Failed to write backup file: %v", err), http.StatusInternalServerError)
			return
		}
	}))
}

// formatTime renders a timestamp for a TEXT column.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime reads a TEXT column timestamp back.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// encodeJSON renders a slice or map field for a TEXT column.
func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode %T: %w", v, err)
	}
	return string(b), nil
}
