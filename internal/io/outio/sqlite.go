package outio

import (
	"database/sql"
	"log/slog"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gnames/phenogrid/internal/ent/output"
	"github.com/gnames/phenogrid/internal/str"
	"github.com/gnames/phenogrid/pkg/ent/model"

	_ "modernc.org/sqlite"
)

var sqliteSchema = []string{
	`CREATE TABLE unified_rows (
		cell INTEGER NOT NULL,
		month INTEGER NOT NULL,
		plant_richness INTEGER NOT NULL,
		bird_richness INTEGER NOT NULL,
		veg_mean REAL,
		veg_sd REAL,
		elevation REAL,
		PRIMARY KEY (cell, month)
	)`,
	`CREATE TABLE bird_presence (
		cell INTEGER NOT NULL,
		month INTEGER NOT NULL,
		species TEXT NOT NULL,
		PRIMARY KEY (cell, month, species)
	)`,
	`CREATE INDEX bird_presence_species ON bird_presence (species)`,
}

type sqliteio struct {
	path string
}

// NewSQLite returns an output.Writer that recreates an SQLite database
// file with unified_rows and bird_presence tables.
func NewSQLite(path string) output.Writer {
	return &sqliteio{path: path}
}

// Write saves the dataset into a fresh database.
func (s *sqliteio) Write(d output.Dataset) error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		slog.Error("Cannot remove old database", "error", err, "path", s.path)
		return err
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		slog.Error("Cannot open SQLite database", "error", err, "path", s.path)
		return err
	}
	defer db.Close()

	for _, q := range sqliteSchema {
		if _, err = db.Exec(q); err != nil {
			slog.Error("Cannot create SQLite schema", "error", err)
			return err
		}
	}

	rows, birds := model.Tables(d)
	data := make([][]any, len(rows))
	for i := range rows {
		data[i] = rows[i].Values()
	}
	if err = insert(db, "unified_rows", model.UnifiedRowColumns, data); err != nil {
		return err
	}
	data = make([][]any, len(birds))
	for i := range birds {
		data[i] = birds[i].Values()
	}
	if err = insert(db, "bird_presence", model.BirdPresenceColumns, data); err != nil {
		return err
	}

	slog.Info("Saved SQLite database",
		"path", s.path,
		"rows", humanize.Comma(int64(len(rows))),
		"presence-rows", humanize.Comma(int64(len(birds))),
	)
	return nil
}

func insert(db *sql.DB, tbl string, columns []string, rows [][]any) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	names := make([]string, len(columns))
	for i := range columns {
		names[i] = str.QuoteIdent(columns[i])
	}
	q := "INSERT INTO " + str.QuoteIdent(tbl) +
		" (" + strings.Join(names, ", ") + ") VALUES (" +
		strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
	stmt, err := tx.Prepare(q)
	if err != nil {
		slog.Error("Cannot prepare insert", "error", err, "table", tbl)
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err = stmt.Exec(r...); err != nil {
			slog.Error("Cannot insert row", "error", err, "table", tbl)
			return err
		}
	}
	return tx.Commit()
}
