// Package ranges turns species range polygons into occupancy masks on
// the study grid.
package ranges

import (
	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
	"github.com/gnames/phenogrid/internal/ent/pheno"
	"github.com/gnames/phenogrid/pkg/ent/grid"
	"gonum.org/v1/gonum/floats"
)

// Match is a result of a range search for one species.
type Match struct {
	// Species is the name as it was given to the provider.
	Species string
	// Found is true if the provider downloaded a range for the species.
	Found bool
	// Path is the location of a shapefile with the range.
	Path string
}

// Provider gives access to ranges downloaded by an external service.
type Provider interface {
	// Ranges returns a match for every requested name. Names the provider
	// knows nothing about are returned with Found set to false.
	Ranges(names []string) ([]Match, error)
}

// Reader decodes a range file into polygons in the coordinate reference
// system of the grid.
type Reader interface {
	Polygons(path string, g grid.Grid) ([]geom.Polygonal, error)
}

// Cache keeps occupied cells of rasterized ranges between runs.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns cells for a key. The bool is false if the key is absent.
	Get(key string) ([]int, bool, error)
	// Set saves cells for a key.
	Set(key string, cells []int) error
}

// Mask is an occupancy matrix of a species over the grid. Data has the
// shape [NRows, NCols] and contains 1 for cells inside of the range and 0
// otherwise. A Mask must not be modified after it is created.
type Mask struct {
	Species pheno.Species
	Data    *sparse.DenseArray
}

// NewMask creates a mask with given occupied cells.
func NewMask(sp pheno.Species, g grid.Grid, cells []int) Mask {
	data := sparse.ZerosDense(g.NRows, g.NCols)
	for _, id := range cells {
		if g.Valid(id) {
			data.Elements[g.Index(id)] = 1
		}
	}
	return Mask{Species: sp, Data: data}
}

// Has checks if a cell is inside of the range.
func (m Mask) Has(g grid.Grid, id int) bool {
	return g.Valid(id) && m.Data.Elements[g.Index(id)] > 0
}

// Size returns the number of occupied cells.
func (m Mask) Size() int {
	return int(floats.Sum(m.Data.Elements))
}

// CellIDs returns sorted identifiers of occupied cells.
func (m Mask) CellIDs() []int {
	var res []int
	for i, v := range m.Data.Elements {
		if v > 0 {
			res = append(res, i+1)
		}
	}
	return res
}

// Stats keeps counts of species that made it into masks.
type Stats struct {
	// Requested is the number of species with flowering intervals.
	Requested int
	// NoRange is the number of species without a downloaded range.
	NoRange int
	// Unreadable is the number of species with broken range files.
	Unreadable int
	// Cached is the number of masks taken from the cache.
	Cached int
	// Masks is the number of created masks.
	Masks int
}

// Fraction returns the share of requested species that got masks.
func (s Stats) Fraction() float64 {
	if s.Requested == 0 {
		return 0
	}
	return float64(s.Masks) / float64(s.Requested)
}
