// Package phenio reads phenology tables with flowering months of plant
// species.
package phenio

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/gnames/phenogrid/internal/ent/pheno"
	"github.com/gnames/phenogrid/internal/str"
)

// Header aliases of phenology columns.
var (
	nameFields  = []string{"species", "name", "scientific_name"}
	startFields = []string{
		"start", "start_month", "begin", "begin_month", "flowering_start",
	}
	endFields = []string{"end", "end_month", "flowering_end"}
)

type phenio struct {
	path string
}

// New returns a pheno.Loader for a CSV file.
func New(path string) pheno.Loader {
	return &phenio{path: path}
}

// Load reads all rows of the phenology table. Short rows get empty fields,
// so they are dropped later as rows without months.
func (p *phenio) Load() ([]pheno.Row, error) {
	f, err := os.Open(p.path)
	if err != nil {
		slog.Error("Cannot open phenology file", "error", err, "path", p.path)
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		slog.Error("Cannot read phenology header", "error", err, "path", p.path)
		return nil, err
	}

	nameIdx := str.FieldIndex(header, nameFields...)
	startIdx := str.FieldIndex(header, startFields...)
	endIdx := str.FieldIndex(header, endFields...)
	if nameIdx < 0 || startIdx < 0 || endIdx < 0 {
		return nil, fmt.Errorf(
			"phenology file %s needs species, start and end columns, got %s",
			p.path, strings.Join(header, ","),
		)
	}

	var res []pheno.Row
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Error("Cannot read phenology row", "error", err, "path", p.path)
			return nil, err
		}
		res = append(res, pheno.Row{
			Name:  field(row, nameIdx),
			Start: field(row, startIdx),
			End:   field(row, endIdx),
		})
	}
	slog.Info("Read phenology table", "rows", len(res))
	return res, nil
}

func field(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
