// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

package timeseries

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync/atomic"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" database/sql driver
	"github.com/goccy/go-json"

	"github.com/adrianomelo/lynx/internal/config"
	"github.com/adrianomelo/lynx/internal/logging"
	"github.com/adrianomelo/lynx/internal/models"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// DuckDBWriter appends events to a local DuckDB table. It is the
// single-node alternative to Timestream and carries the same fields.
type DuckDBWriter struct {
	db          *sql.DB
	table       string
	insertQuery string
	closed      atomic.Bool
}

// OpenDuckDB opens (or creates) the database file and ensures the table exists.
func OpenDuckDB(ctx context.Context, cfg *config.DuckDBConfig) (*DuckDBWriter, error) {
	dir := filepath.Dir(cfg.Path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	connStr := cfg.Path + "?access_mode=read_write&autoinstall_known_extensions=false&autoload_known_extensions=false"
	db, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	w, err := NewDuckDBWriter(ctx, db, cfg.Table)
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Warn().Err(closeErr).Msg("failed to close duckdb after init error")
		}
		return nil, err
	}
	return w, nil
}

// NewDuckDBWriter wraps an open *sql.DB and creates table if missing.
func NewDuckDBWriter(ctx context.Context, db *sql.DB, table string) (*DuckDBWriter, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id UUID NOT NULL,
	measure_name VARCHAR NOT NULL,
	country VARCHAR NOT NULL,
	referer VARCHAR NOT NULL,
	user_agent_name VARCHAR NOT NULL,
	user_agent VARCHAR NOT NULL,
	ts TIMESTAMP NOT NULL
)`, table)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to create table %s: %w", table, err)
	}

	return &DuckDBWriter{
		db:    db,
		table: table,
		insertQuery: fmt.Sprintf(
			"INSERT INTO %s (id, measure_name, country, referer, user_agent_name, user_agent, ts) VALUES (?, ?, ?, ?, ?, ?, ?)",
			table),
	}, nil
}

func (w *DuckDBWriter) Name() string {
	return config.BackendDuckDB
}

// Write inserts one row. The full user-agent map is kept as JSON text next
// to the name column used for grouping.
func (w *DuckDBWriter) Write(ctx context.Context, event *models.TrackingEvent) error {
	if w.closed.Load() {
		return ErrWriterClosed
	}

	uaJSON, err := json.Marshal(event.UserAgent)
	if err != nil {
		return fmt.Errorf("failed to encode user agent: %w", err)
	}

	_, err = w.db.ExecContext(ctx, w.insertQuery,
		event.ID.String(),
		models.MeasurePageView,
		orUnknown(event.Country),
		orUnknown(event.Referer),
		event.UserAgent.Name(),
		string(uaJSON),
		event.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", w.table, err)
	}
	return nil
}

// Close closes the underlying database. Safe to call more than once.
func (w *DuckDBWriter) Close() error {
	if !w.closed.CompareAndSwap(false, true) {
		return nil
	}
	return w.db.Close()
}
