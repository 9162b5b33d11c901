// Package rangeio gives access to species range shapefiles downloaded by an
// external service. The service leaves a directory of shapefiles and a CSV
// file that tells which species got their ranges.
package rangeio

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gnames/gnsys"
	"github.com/gnames/phenogrid/internal/ent/ranges"
	"github.com/gnames/phenogrid/internal/ent/sciname"
	"github.com/gnames/phenogrid/internal/str"
)

type entry struct {
	name       string
	downloaded bool
	path       string
}

type rangeio struct {
	dir       string
	matchFile string
	norm      *sciname.Normalizer
}

// NewProvider returns a ranges.Provider for a directory of shapefiles and
// a match-status file.
func NewProvider(dir, matchFile string, norm *sciname.Normalizer) ranges.Provider {
	return &rangeio{dir: dir, matchFile: matchFile, norm: norm}
}

// Ranges finds downloaded ranges for names. Names are compared by their
// canonical forms.
func (r *rangeio) Ranges(names []string) ([]ranges.Match, error) {
	entries, err := r.loadMatches()
	if err != nil {
		return nil, err
	}

	res := make([]ranges.Match, len(names))
	for i, n := range names {
		res[i] = ranges.Match{Species: n}
		e, ok := entries[r.norm.Canonical(n)]
		if !ok || !e.downloaded {
			continue
		}
		path := r.shapefile(e, n)
		if path == "" {
			slog.Debug("Range file not found", "species", n)
			continue
		}
		res[i].Found = true
		res[i].Path = path
	}
	return res, nil
}

func (r *rangeio) loadMatches() (map[string]entry, error) {
	f, err := os.Open(r.matchFile)
	if err != nil {
		slog.Error("Cannot open range match file", "error", err, "path", r.matchFile)
		return nil, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		slog.Error("Cannot read range match header", "error", err)
		return nil, err
	}
	nameIdx := str.FieldIndex(header, "species", "name", "scientific_name")
	downIdx := str.FieldIndex(header, "downloaded", "found", "status")
	pathIdx := str.FieldIndex(header, "path", "file")
	if nameIdx < 0 || downIdx < 0 {
		return nil, fmt.Errorf(
			"range match file %s needs species and downloaded columns",
			r.matchFile,
		)
	}

	res := make(map[string]entry)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Error("Cannot read range match row", "error", err)
			return nil, err
		}
		if nameIdx >= len(row) || downIdx >= len(row) {
			continue
		}
		e := entry{
			name:       strings.TrimSpace(row[nameIdx]),
			downloaded: isYes(row[downIdx]),
		}
		if pathIdx >= 0 && pathIdx < len(row) {
			e.path = strings.TrimSpace(row[pathIdx])
		}
		can := r.norm.Canonical(e.name)
		if _, ok := res[can]; ok || can == "" {
			continue
		}
		res[can] = e
	}
	return res, nil
}

// shapefile locates the range file of a species.
func (r *rangeio) shapefile(e entry, name string) string {
	var cands []string
	if e.path != "" {
		if filepath.IsAbs(e.path) {
			cands = append(cands, e.path)
		} else {
			cands = append(cands, filepath.Join(r.dir, e.path))
		}
	}
	for _, n := range []string{e.name, name, r.norm.Canonical(name)} {
		for _, base := range []string{n, strings.ReplaceAll(n, " ", "_")} {
			if base == "" {
				continue
			}
			cands = append(cands,
				filepath.Join(r.dir, base+".shp"),
				filepath.Join(r.dir, base, base+".shp"),
			)
		}
	}
	for _, c := range cands {
		if ok, _ := gnsys.FileExists(c); ok {
			return c
		}
	}
	return ""
}

func isYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "t", "1":
		return true
	}
	return false
}
