// Package vegio reads yearly vegetation index tables. Every CSV file in a
// directory holds one year: a cell column and one column per composite key
// like NDVI_03.
package vegio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gnames/phenogrid/internal/ent/veg"
	"github.com/gnames/phenogrid/internal/str"
)

var yearRe = regexp.MustCompile(`\d{4}`)

type vegio struct {
	dir string
}

// New returns a veg.Loader for a directory of yearly CSV files.
func New(dir string) veg.Loader {
	return &vegio{dir: dir}
}

type column struct {
	idx   int
	month int
	tag   string
}

// Load reads all yearly files. Missing values are returned as NaN
// readings.
func (v *vegio) Load() ([]veg.Reading, veg.Stats, error) {
	var st veg.Stats
	if fi, err := os.Stat(v.dir); err != nil || !fi.IsDir() {
		err = fmt.Errorf("vegetation directory %s does not exist", v.dir)
		slog.Error("Cannot read vegetation data", "error", err)
		return nil, st, err
	}

	files, err := filepath.Glob(filepath.Join(v.dir, "*.csv"))
	if err != nil {
		return nil, st, err
	}
	if len(files) == 0 {
		err = fmt.Errorf("no CSV files in %s", v.dir)
		slog.Error("Cannot read vegetation data", "error", err)
		return nil, st, err
	}

	var res []veg.Reading
	for i, f := range files {
		year := Year(filepath.Base(f), i+1)
		rs, fst, err := v.loadFile(f, year)
		if err != nil {
			return nil, st, err
		}
		res = append(res, rs...)
		st.Add(fst)
		slog.Debug("Read vegetation file", "path", f, "year", year,
			"readings", humanize.Comma(int64(len(rs))))
	}
	slog.Info("Read vegetation data",
		"files", len(files),
		"values", humanize.Comma(int64(st.Values)),
		"bad-keys", st.BadKeys,
		"bad-values", st.BadValues,
	)
	return res, st, nil
}

// Year takes a year from the first 4-digit group of a file name. If there
// is none, it returns the fallback.
func Year(name string, fallback int) int {
	if y := yearRe.FindString(name); y != "" {
		res, _ := strconv.Atoi(y)
		return res
	}
	return fallback
}

func (v *vegio) loadFile(path string, year int) ([]veg.Reading, veg.Stats, error) {
	var st veg.Stats
	f, err := os.Open(path)
	if err != nil {
		slog.Error("Cannot open file", "error", err, "path", path)
		return nil, st, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		slog.Error("Cannot read header", "error", err, "path", path)
		return nil, st, err
	}

	cellIdx := str.FieldIndex(header, "cell", "cell_id", "id")
	if cellIdx < 0 {
		return nil, st, fmt.Errorf("no cell column in %s", path)
	}

	var cols []column
	for i, h := range header {
		if i == cellIdx {
			continue
		}
		m, tag, err := veg.ParseKey(h)
		if errors.Is(err, veg.ErrBadKey) {
			slog.Debug("Skipping vegetation column", "column", h, "path", path)
			st.BadKeys++
			continue
		}
		cols = append(cols, column{idx: i, month: m, tag: tag})
	}

	var res []veg.Reading
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Error("Cannot read row", "error", err, "path", path)
			return nil, st, err
		}
		if cellIdx >= len(row) {
			st.BadValues++
			continue
		}
		cell, err := strconv.Atoi(strings.TrimSpace(row[cellIdx]))
		if err != nil {
			st.BadValues++
			continue
		}
		for _, c := range cols {
			val := math.NaN()
			if c.idx < len(row) && !str.IsMissing(row[c.idx]) {
				val, err = strconv.ParseFloat(strings.TrimSpace(row[c.idx]), 64)
				if err != nil {
					st.BadValues++
					continue
				}
				st.Values++
			}
			res = append(res, veg.Reading{
				Year:  year,
				Cell:  cell,
				Month: c.month,
				Tag:   c.tag,
				Value: val,
			})
		}
	}
	return res, st, nil
}
