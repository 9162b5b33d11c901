// Package outio saves the unified dataset to flat files and SQLite.
package outio

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gnfmt"
	"github.com/gnames/phenogrid/internal/ent/output"
)

type fileio struct {
	path   string
	name   string
	format gnfmt.Format
}

// NewFile returns an output.Writer for a flat file. Supported formats are
// csv, tsv, compact and pretty (JSON).
func NewFile(path, format string) (output.Writer, error) {
	f, err := gnfmt.NewFormat(format)
	if err != nil {
		return nil, err
	}
	if f == gnfmt.FormatNone {
		return nil, fmt.Errorf("unknown output format %q", format)
	}
	return &fileio{path: path, name: format, format: f}, nil
}

// jsonRow is a row of JSON output.
type jsonRow struct {
	Cell          int             `json:"cell"`
	Month         int             `json:"month"`
	PlantRichness int             `json:"plantRichness"`
	BirdRichness  int             `json:"birdRichness"`
	Birds         map[string]bool `json:"birds,omitempty"`
	VegMean       float64         `json:"vegMean"`
	VegSD         float64         `json:"vegSd"`
	Elevation     float64         `json:"elevation"`
}

// Write saves the dataset.
func (f *fileio) Write(d output.Dataset) error {
	file, err := os.Create(f.path)
	if err != nil {
		slog.Error("Cannot create output file", "error", err, "path", f.path)
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	switch f.format {
	case gnfmt.CSV:
		err = writeFlat(w, d, ',')
	case gnfmt.TSV:
		err = writeFlat(w, d, '\t')
	default:
		err = writeJSON(w, d, f.format == gnfmt.PrettyJSON)
	}
	if err != nil {
		slog.Error("Cannot write output", "error", err, "path", f.path)
		return err
	}
	if err = w.Flush(); err != nil {
		return err
	}
	slog.Info("Saved unified dataset",
		"path", f.path,
		"format", f.name,
		"rows", humanize.Comma(int64(len(d.Rows))),
	)
	return nil
}

func writeFlat(w *bufio.Writer, d output.Dataset, sep rune) error {
	if err := writeLine(w, d.Header(), sep); err != nil {
		return err
	}
	for _, r := range d.Rows {
		if err := writeLine(w, d.Fields(r), sep); err != nil {
			return err
		}
	}
	return nil
}

func writeLine(w *bufio.Writer, fields []string, sep rune) error {
	line := strings.TrimRight(gnfmt.ToCSV(fields, sep), "\r\n")
	_, err := fmt.Fprintln(w, line)
	return err
}

func writeJSON(w *bufio.Writer, d output.Dataset, pretty bool) error {
	rows := make([]jsonRow, len(d.Rows))
	for i, r := range d.Rows {
		rows[i] = jsonRow{
			Cell:          r.Cell,
			Month:         r.Month,
			PlantRichness: r.PlantRichness,
			BirdRichness:  r.BirdRichness,
			Birds:         r.Birds,
			VegMean:       r.VegMean,
			VegSD:         r.VegSD,
			Elevation:     r.Elevation,
		}
	}
	enc := gnfmt.GNjson{Pretty: pretty}
	bs, err := enc.Encode(rows)
	if err != nil {
		return err
	}
	_, err = w.Write(append(bs, '\n'))
	return err
}
