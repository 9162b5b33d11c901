package obsio

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/gnames/phenogrid/internal/ent/obs"
	"github.com/gnames/phenogrid/internal/str"
)

type csvSource struct {
	path string
}

// NewCSV returns an obs.Source for a CSV file with species, date,
// longitude and latitude columns.
func NewCSV(path string) obs.Source {
	return &csvSource{path: path}
}

// Observations reads all rows of the file. Rows that cannot be parsed are
// skipped and counted.
func (c *csvSource) Observations() ([]obs.Observation, int, error) {
	f, err := os.Open(c.path)
	if err != nil {
		slog.Error("Cannot open observations file", "error", err, "path", c.path)
		return nil, 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		slog.Error("Cannot read observations header", "error", err)
		return nil, 0, err
	}
	idx := []int{
		str.FieldIndex(header, "species", "scientific_name", "name"),
		str.FieldIndex(header, "date", "obs_date", "observation_date"),
		str.FieldIndex(header, "longitude", "lon", "lng", "x"),
		str.FieldIndex(header, "latitude", "lat", "y"),
	}
	for _, i := range idx {
		if i < 0 {
			return nil, 0, fmt.Errorf(
				"observations file %s needs species, date, longitude and latitude",
				c.path,
			)
		}
	}

	var res []obs.Observation
	var bad, count int
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Error("Cannot read observation row", "error", err)
			return nil, 0, err
		}
		count++
		if count%1_000_000 == 0 {
			fmt.Fprintf(os.Stderr, "\r%s", humanize.Comma(int64(count)))
		}
		fs := make([]string, len(idx))
		var short bool
		for i, j := range idx {
			if j >= len(row) {
				short = true
				break
			}
			fs[i] = row[j]
		}
		if short {
			bad++
			continue
		}
		o, err := newObservation(fs[0], fs[1], fs[2], fs[3])
		if err != nil {
			slog.Debug("Skipping observation", "error", err)
			bad++
			continue
		}
		res = append(res, o)
	}
	if count >= 1_000_000 {
		fmt.Fprintln(os.Stderr)
	}
	slog.Info("Read observations",
		"rows", humanize.Comma(int64(count)),
		"bad-rows", humanize.Comma(int64(bad)),
	)
	return res, bad, nil
}
