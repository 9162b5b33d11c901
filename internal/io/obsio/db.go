package obsio

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gnames/phenogrid/internal/ent/obs"
	"github.com/gnames/phenogrid/pkg/config"

	_ "github.com/go-sql-driver/mysql"
)

type dbSource struct {
	db    *sql.DB
	table string
}

// OpenMySQL creates a handler for the MySQL database with observations.
func OpenMySQL(cfg config.Config) (*sql.DB, error) {
	db, err := sql.Open("mysql", dbURI(cfg))
	if err != nil {
		slog.Error("Cannot connect to database", "error", err)
		return nil, err
	}
	return db, nil
}

func dbURI(cfg config.Config) string {
	url := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		cfg.MyUser, cfg.MyPass, cfg.MyHost, 3306, cfg.MyDB)
	return url
}

// NewDB returns an obs.Source for a table with species, obs_date,
// longitude and latitude columns.
func NewDB(db *sql.DB, table string) obs.Source {
	return &dbSource{db: db, table: table}
}

// Observations reads all rows of the table. Rows with NULL or unparseable
// fields are skipped and counted.
func (d *dbSource) Observations() ([]obs.Observation, int, error) {
	slog.Info("Reading observations from database", "table", d.table)
	q := `SELECT species, obs_date, longitude, latitude
	        FROM ` + quote(d.table)
	rows, err := d.db.Query(q)
	if err != nil {
		slog.Error("Cannot query observations", "error", err)
		return nil, 0, err
	}
	defer rows.Close()

	var res []obs.Observation
	var bad, count int
	for rows.Next() {
		var species, date, lon, lat sql.NullString
		if err = rows.Scan(&species, &date, &lon, &lat); err != nil {
			slog.Error("Cannot scan observation", "error", err)
			return nil, 0, err
		}
		count++
		if !species.Valid || !date.Valid || !lon.Valid || !lat.Valid {
			bad++
			continue
		}
		o, err := newObservation(species.String, date.String, lon.String, lat.String)
		if err != nil {
			bad++
			continue
		}
		res = append(res, o)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, err
	}
	slog.Info("Read observations",
		"rows", humanize.Comma(int64(count)),
		"bad-rows", humanize.Comma(int64(bad)),
	)
	return res, bad, nil
}

// quote wraps a table name in backticks.
func quote(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}
