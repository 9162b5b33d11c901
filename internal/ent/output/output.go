// Package output describes destinations of the unified dataset.
package output

import (
	"strconv"

	"github.com/gnames/phenogrid/internal/ent/merge"
	"github.com/gnames/phenogrid/internal/str"
)

// Dataset is the final table with bird presence columns.
type Dataset struct {
	// Rows are sorted by cell and month.
	Rows []merge.Row
	// Birds are species names of presence columns.
	Birds []string
}

// Writer saves a dataset.
type Writer interface {
	// Write saves all rows of the dataset.
	Write(Dataset) error
}

var (
	leadColumns  = []string{"cell", "month", "plant_richness", "bird_richness"}
	trailColumns = []string{"veg_mean", "veg_sd", "elevation"}
)

// Header returns column names of the flat table.
func (d Dataset) Header() []string {
	res := append([]string{}, leadColumns...)
	res = append(res, d.BirdColumns()...)
	return append(res, trailColumns...)
}

// BirdColumns returns a column name for every bird species. Names that
// collide with each other or with fixed columns get a numeric suffix.
func (d Dataset) BirdColumns() []string {
	used := make(map[string]struct{})
	for _, cs := range [][]string{leadColumns, trailColumns} {
		for _, c := range cs {
			used[c] = struct{}{}
		}
	}
	res := make([]string, len(d.Birds))
	for i, b := range d.Birds {
		base := str.ColumnName(b)
		if base == "" {
			base = "sp"
		}
		col := base
		for n := 2; ; n++ {
			if _, ok := used[col]; !ok {
				break
			}
			col = base + "_" + strconv.Itoa(n)
		}
		used[col] = struct{}{}
		res[i] = col
	}
	return res
}

// Fields returns values of a row in the order of Header.
func (d Dataset) Fields(r merge.Row) []string {
	res := make([]string, 0, len(d.Birds)+7)
	res = append(res,
		strconv.Itoa(r.Cell),
		strconv.Itoa(r.Month),
		strconv.Itoa(r.PlantRichness),
		strconv.Itoa(r.BirdRichness),
	)
	for _, b := range d.Birds {
		v := "0"
		if r.Birds[b] {
			v = "1"
		}
		res = append(res, v)
	}
	return append(res,
		formatFloat(r.VegMean),
		formatFloat(r.VegSD),
		formatFloat(r.Elevation),
	)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
