// Package pgio exports the unified dataset to PostgreSQL.
package pgio

import (
	"context"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/gnames/phenogrid/internal/ent/output"
	"github.com/gnames/phenogrid/pkg/config"
	"github.com/gnames/phenogrid/pkg/ent/model"
	"github.com/gnames/phenogrid/pkg/io/modelio"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgio implements output.Writer interface.
type pgio struct {
	cfg config.Config
	db  *pgxpool.Pool
}

// New connects to PostgreSQL and creates tables if they do not exist.
func New(cfg config.Config) (output.Writer, error) {
	res := pgio{cfg: cfg}
	if res.cfg.BatchSize < 1 {
		res.cfg.BatchSize = 50_000
	}
	err := res.migrate()
	if err != nil {
		slog.Error("Cannot migrate database", "error", err)
		return nil, err
	}
	res.db, err = connect(context.Background(), res.cfg)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Write replaces content of the tables with the dataset.
func (p *pgio) Write(d output.Dataset) error {
	defer p.db.Close()
	err := p.truncateTable("unified_rows", "bird_presence")
	if err != nil {
		return err
	}

	rows, birds := model.Tables(d)
	data := make([][]any, len(rows))
	for i := range rows {
		data[i] = rows[i].Values()
	}
	count, err := p.insertBatches("unified_rows", model.UnifiedRowColumns, data)
	if err != nil {
		slog.Error("Cannot save unified rows", "error", err)
		return err
	}
	slog.Info("Saved rows to PostgreSQL",
		"table", "unified_rows", "rows", humanize.Comma(count))

	data = make([][]any, len(birds))
	for i := range birds {
		data[i] = birds[i].Values()
	}
	count, err = p.insertBatches("bird_presence", model.BirdPresenceColumns, data)
	if err != nil {
		slog.Error("Cannot save bird presence", "error", err)
		return err
	}
	slog.Info("Saved rows to PostgreSQL",
		"table", "bird_presence", "rows", humanize.Comma(count))
	return nil
}

func (p *pgio) migrate() error {
	grm, err := schemaConn(p.cfg)
	if err != nil {
		return err
	}
	defer grm.Close()

	slog.Info("Running database migrations")
	return modelio.New(grm).Migrate()
}

func (p *pgio) truncateTable(tbls ...string) error {
	var err error
	for _, tbl := range tbls {
		_, err = p.db.Exec(context.Background(), "TRUNCATE TABLE "+tbl)
		if err != nil {
			slog.Error("Cannot truncate table", "table", tbl, "error", err)
			return err
		}
	}
	return nil
}

func (p *pgio) insertBatches(tbl string, columns []string, rows [][]any) (int64, error) {
	var res int64
	for _, batch := range Batches(rows, p.cfg.BatchSize) {
		count, err := p.insertRows(tbl, columns, batch)
		if err != nil {
			return res, err
		}
		res += count
	}
	return res, nil
}

func (p *pgio) insertRows(tbl string, columns []string, rows [][]any) (int64, error) {
	copyCount, err := p.db.CopyFrom(
		context.Background(),
		pgx.Identifier{tbl},
		columns,
		pgx.CopyFromRows(rows),
	)

	return int64(copyCount), err
}

// Batches splits rows into chunks of at most size elements.
func Batches(rows [][]any, size int) [][][]any {
	if size < 1 {
		size = len(rows)
	}
	var res [][][]any
	for len(rows) > 0 {
		n := min(size, len(rows))
		res = append(res, rows[:n])
		rows = rows[n:]
	}
	return res
}
