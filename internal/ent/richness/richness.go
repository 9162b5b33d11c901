// Package richness counts species per cell and month.
package richness

import (
	"sort"
	"time"

	"github.com/gnames/phenogrid/internal/ent/month"
	"github.com/gnames/phenogrid/internal/ent/ranges"
	"github.com/gnames/phenogrid/pkg/ent/grid"
	"gonum.org/v1/gonum/floats"
)

// Record is the number of species present in a cell during a month.
type Record struct {
	Cell     int
	Month    int
	Richness int
}

// Key identifies a cell during a month.
type Key struct {
	Cell  int
	Month int
}

// Key returns the (cell, month) key of a record.
func (r Record) Key() Key {
	return Key{Cell: r.Cell, Month: r.Month}
}

// Monthly sums masks of species flowering in each month of the year. Only
// cells with at least one flowering species are returned, ordered by month
// and cell. The second value holds the number of flowering species for
// every month (index 0 is January).
func Monthly(g grid.Grid, masks []ranges.Mask) ([]Record, [12]int) {
	var flowering [12]int
	var res []Record
	sum := make([]float64, g.CellCount())
	for _, m := range month.All() {
		for i := range sum {
			sum[i] = 0
		}
		for _, mask := range masks {
			if !mask.Species.Flowers(m) {
				continue
			}
			flowering[m-1]++
			floats.Add(sum, mask.Data.Elements)
		}
		res = append(res, records(sum, m)...)
	}
	return res, flowering
}

func records(sum []float64, m time.Month) []Record {
	var res []Record
	for i, v := range sum {
		if v > 0 {
			res = append(res, Record{Cell: i + 1, Month: int(m), Richness: int(v)})
		}
	}
	return res
}

// Sort orders records by cell and month.
func Sort(rs []Record) {
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].Cell != rs[j].Cell {
			return rs[i].Cell < rs[j].Cell
		}
		return rs[i].Month < rs[j].Month
	})
}
