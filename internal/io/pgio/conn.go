package pgio

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gnames/phenogrid/pkg/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
)

// COPY of two tables is sequential, a couple of spare connections cover
// truncation and health checks.
const minConns = 2

// connect opens a pgx pool for bulk export and checks that the database
// answers before any table is truncated.
func connect(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	pgxCfg, err := pgxpool.ParseConfig(DSN(cfg))
	if err != nil {
		slog.Error("Cannot parse PostgreSQL settings", "error", err)
		return nil, err
	}
	pgxCfg.MaxConns = int32(max(minConns, cfg.JobsNum))

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		slog.Error("Cannot connect to PostgreSQL", "host", cfg.PgHost, "error", err)
		return nil, err
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		slog.Error("PostgreSQL does not respond",
			"host", cfg.PgHost, "database", cfg.PgDB, "error", err)
		return nil, fmt.Errorf("ping %s/%s: %w", cfg.PgHost, cfg.PgDB, err)
	}
	return pool, nil
}

// schemaConn opens a gorm connection used only for schema migration.
func schemaConn(cfg config.Config) (*gorm.DB, error) {
	db, err := gorm.Open("postgres", DSN(cfg))
	if err != nil {
		slog.Error("Cannot open PostgreSQL for migration", "error", err)
		return nil, err
	}
	return db, nil
}

// DSN builds a keyword/value connection string. Values are quoted, so
// passwords with spaces or quotes survive.
func DSN(cfg config.Config) string {
	kv := [][2]string{
		{"host", cfg.PgHost},
		{"user", cfg.PgUser},
		{"password", cfg.PgPass},
		{"dbname", cfg.PgDB},
		{"sslmode", "disable"},
	}
	parts := make([]string, 0, len(kv))
	for _, p := range kv {
		parts = append(parts, p[0]+"="+quoteDSN(p[1]))
	}
	return strings.Join(parts, " ")
}

func quoteDSN(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}
