// Package obs converts point observations of birds into per-cell,
// per-month presence tables.
package obs

import (
	"errors"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/gnames/phenogrid/internal/ent/richness"
	"github.com/gnames/phenogrid/pkg/ent/grid"
)

// Observation is a point record of a species.
type Observation struct {
	Species string
	Date    time.Time
	Lon     float64
	Lat     float64
}

// Source provides observations.
type Source interface {
	// Observations returns all valid observations and the number of records
	// that could not be parsed.
	Observations() ([]Observation, int, error)
}

// Event is a presence of a species in a cell during a month.
type Event struct {
	Species string
	Month   int
	Cell    int
}

// Row contains presence flags of species in a cell during a month.
type Row struct {
	Cell    int
	Month   int
	Present map[string]bool
	// Richness is the number of present species from the richness list.
	Richness int
}

// Key returns (cell, month) key of the row.
func (r Row) Key() richness.Key {
	return richness.Key{Cell: r.Cell, Month: r.Month}
}

// Table is a wide presence table.
type Table struct {
	// Species are names of presence columns, sorted.
	Species []string
	// RichnessSpecies are names of species that are counted into richness.
	RichnessSpecies []string
	// Rows are sorted by cell and month.
	Rows []Row
}

// Stats keeps counts of observations that were used or dropped.
type Stats struct {
	Observations  int
	BadRecords    int
	OutOfDomain   int
	NotOfInterest int
	Duplicates    int
	Events        int
	Rows          int
}

// Events places observations on the grid and removes duplicates. Points
// outside of the grid are dropped and counted.
func Events(g grid.Grid, recs []Observation) ([]Event, Stats) {
	st := Stats{Observations: len(recs)}
	seen := make(map[Event]struct{}, len(recs))
	res := make([]Event, 0, len(recs))
	for _, o := range recs {
		cell, err := g.CellID(o.Lon, o.Lat)
		if errors.Is(err, grid.ErrOutOfDomain) {
			st.OutOfDomain++
			continue
		}
		e := Event{
			Species: strings.TrimSpace(o.Species),
			Month:   int(o.Date.Month()),
			Cell:    cell,
		}
		if _, ok := seen[e]; ok {
			st.Duplicates++
			continue
		}
		seen[e] = struct{}{}
		res = append(res, e)
	}
	st.Events = len(res)
	return res, st
}

// Columns decides which species become presence columns. With an empty
// list of species of interest every observed species gets a column.
// Species from the richness list always get a column.
func Columns(es []Event, species, richnessSpecies []string) []string {
	set := make(map[string]struct{})
	if len(species) == 0 {
		for _, e := range es {
			set[e.Species] = struct{}{}
		}
	}
	for _, s := range species {
		set[strings.TrimSpace(s)] = struct{}{}
	}
	for _, s := range richnessSpecies {
		set[strings.TrimSpace(s)] = struct{}{}
	}
	res := make([]string, 0, len(set))
	for s := range set {
		if s != "" {
			res = append(res, s)
		}
	}
	sort.Strings(res)
	return res
}

// Pivot builds a presence table out of events. Richness of a row is the
// number of present species from richnessSpecies, looked up by name. If
// richnessSpecies is empty, all columns count.
func Pivot(es []Event, columns, richnessSpecies []string) (Table, int) {
	var dropped int
	if len(richnessSpecies) == 0 {
		richnessSpecies = columns
	}
	t := Table{
		Species:         columns,
		RichnessSpecies: normalize(richnessSpecies),
	}

	cols := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		cols[c] = struct{}{}
	}

	rows := make(map[richness.Key]*Row)
	for _, e := range es {
		if _, ok := cols[e.Species]; !ok {
			dropped++
			continue
		}
		k := richness.Key{Cell: e.Cell, Month: e.Month}
		r, ok := rows[k]
		if !ok {
			r = &Row{Cell: e.Cell, Month: e.Month, Present: make(map[string]bool)}
			rows[k] = r
		}
		r.Present[e.Species] = true
	}

	t.Rows = make([]Row, 0, len(rows))
	for _, r := range rows {
		r.Richness = t.Count(*r)
		t.Rows = append(t.Rows, *r)
	}
	sort.Slice(t.Rows, func(i, j int) bool {
		if t.Rows[i].Cell != t.Rows[j].Cell {
			return t.Rows[i].Cell < t.Rows[j].Cell
		}
		return t.Rows[i].Month < t.Rows[j].Month
	})
	return t, dropped
}

// Count returns the number of species from the richness list that are
// present in the row.
func (t Table) Count(r Row) int {
	var res int
	for _, s := range t.RichnessSpecies {
		if r.Present[s] {
			res++
		}
	}
	return res
}

// Aggregate converts observations into a presence table.
func Aggregate(
	g grid.Grid,
	recs []Observation,
	species, richnessSpecies []string,
) (Table, Stats) {
	es, st := Events(g, recs)
	cols := Columns(es, species, richnessSpecies)
	t, dropped := Pivot(es, cols, richnessSpecies)
	st.NotOfInterest = dropped
	st.Rows = len(t.Rows)
	return t, st
}

// Richness returns bird richness records of the table.
func (t Table) Richness() []richness.Record {
	res := make([]richness.Record, len(t.Rows))
	for i, r := range t.Rows {
		res[i] = richness.Record{Cell: r.Cell, Month: r.Month, Richness: r.Richness}
	}
	return res
}

func normalize(ss []string) []string {
	res := make([]string, 0, len(ss))
	for _, s := range ss {
		s = strings.TrimSpace(s)
		if s != "" && !slices.Contains(res, s) {
			res = append(res, s)
		}
	}
	return res
}
