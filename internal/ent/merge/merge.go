// Package merge joins per-cell, per-month tables into the final dataset.
package merge

import (
	"sort"

	"github.com/gnames/phenogrid/internal/ent/elev"
	"github.com/gnames/phenogrid/internal/ent/obs"
	"github.com/gnames/phenogrid/internal/ent/richness"
	"github.com/gnames/phenogrid/internal/ent/veg"
)

// Row is a record of the unified dataset.
type Row struct {
	Cell          int
	Month         int
	PlantRichness int
	BirdRichness  int
	// Birds contains presence flags for species with observations in the
	// cell and month. Absent keys mean absence.
	Birds     map[string]bool
	VegMean   float64
	VegSD     float64
	Elevation float64
}

// Stage names used in Report.
const (
	StageOuterJoin  = "outer_join"
	StageRelevance  = "relevance_filter"
	StageVegetation = "vegetation_join"
	StageElevation  = "elevation_join"
)

// Stage describes how many rows entered and left a merging step.
type Stage struct {
	Name   string
	Before int
	After  int
}

// Dropped returns the number of rows removed by the stage.
func (s Stage) Dropped() int {
	return s.Before - s.After
}

// Report lists merging stages in the order they ran.
type Report struct {
	Stages []Stage
}

func (r *Report) add(name string, before, after int) {
	r.Stages = append(r.Stages, Stage{Name: name, Before: before, After: after})
}

// Merge joins plant richness, bird presence, vegetation and elevation.
//
//  1. Plant and bird richness are fully outer-joined on (cell, month),
//     missing richness is zero.
//  2. Rows without plants and birds are dropped.
//  3. Rows without a vegetation record for (cell, month) are dropped.
//  4. Rows without an elevation record for the cell are dropped.
//
// The result is sorted by cell and month.
func Merge(
	plants []richness.Record,
	birds obs.Table,
	vs []veg.Record,
	es []elev.Record,
) ([]Row, Report) {
	var rep Report

	rows := outerJoin(plants, birds)
	rep.add(StageOuterJoin, len(plants)+len(birds.Rows), len(rows))

	before := len(rows)
	rows = filter(rows, func(r *Row) bool {
		return r.PlantRichness+r.BirdRichness > 0
	})
	rep.add(StageRelevance, before, len(rows))

	vegs := make(map[richness.Key]veg.Record, len(vs))
	for _, v := range vs {
		vegs[richness.Key{Cell: v.Cell, Month: v.Month}] = v
	}
	before = len(rows)
	rows = filter(rows, func(r *Row) bool {
		v, ok := vegs[richness.Key{Cell: r.Cell, Month: r.Month}]
		if ok {
			r.VegMean = v.Mean
			r.VegSD = v.StdDev
		}
		return ok
	})
	rep.add(StageVegetation, before, len(rows))

	elevs := make(map[int]float64, len(es))
	for _, e := range es {
		elevs[e.Cell] = e.Elevation
	}
	before = len(rows)
	rows = filter(rows, func(r *Row) bool {
		e, ok := elevs[r.Cell]
		r.Elevation = e
		return ok
	})
	rep.add(StageElevation, before, len(rows))

	return rows, rep
}

func outerJoin(plants []richness.Record, birds obs.Table) []Row {
	idx := make(map[richness.Key]int, len(plants)+len(birds.Rows))
	rows := make([]Row, 0, len(plants)+len(birds.Rows))
	get := func(k richness.Key) *Row {
		if i, ok := idx[k]; ok {
			return &rows[i]
		}
		idx[k] = len(rows)
		rows = append(rows, Row{Cell: k.Cell, Month: k.Month})
		return &rows[len(rows)-1]
	}

	for _, p := range plants {
		r := get(p.Key())
		r.PlantRichness += p.Richness
	}
	for _, b := range birds.Rows {
		r := get(b.Key())
		r.BirdRichness = b.Richness
		r.Birds = b.Present
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Cell != rows[j].Cell {
			return rows[i].Cell < rows[j].Cell
		}
		return rows[i].Month < rows[j].Month
	})
	return rows
}

func filter(rows []Row, keep func(*Row) bool) []Row {
	res := rows[:0]
	for i := range rows {
		if keep(&rows[i]) {
			res = append(res, rows[i])
		}
	}
	return res
}
