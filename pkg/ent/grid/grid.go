// Package grid defines the raster every stage of the pipeline places its
// data on. A Grid is an immutable value; all stages must receive the same
// one, so that cell identifiers agree between tables.
package grid

import (
	"errors"
	"fmt"
	"math"

	"github.com/ctessum/geom"
)

// ErrOutOfDomain is returned for coordinates outside of the grid extent.
var ErrOutOfDomain = errors.New("coordinate is outside of the grid extent")

// DefaultCRS is the coordinate reference of the study grid (WGS84).
const DefaultCRS = "+proj=longlat +datum=WGS84 +no_defs"

// Grid is a regular raster over a rectangular extent. Cells are numbered
// from 1 in row-major order, with row 0 at the northern (YMax) edge.
type Grid struct {
	// XMin, XMax, YMin, YMax describe the extent of the grid.
	XMin, XMax, YMin, YMax float64

	// XRes and YRes are the effective cell sizes. They might differ
	// slightly from the requested resolution, because the extent is
	// divided into a whole number of cells.
	XRes, YRes float64

	// NCols and NRows is the number of columns and rows.
	NCols, NRows int

	// CRS is a proj4 string of the coordinate reference system.
	CRS string
}

// New creates a Grid for an extent and a requested resolution. The number
// of columns and rows is the rounded ratio of the extent to the resolution.
func New(xmin, xmax, ymin, ymax, res float64, crs string) (Grid, error) {
	var g Grid
	if !(xmax > xmin) || !(ymax > ymin) {
		return g, fmt.Errorf("invalid grid extent [%g, %g] x [%g, %g]",
			xmin, xmax, ymin, ymax)
	}
	if !(res > 0) {
		return g, fmt.Errorf("invalid grid resolution %g", res)
	}
	ncols := int(math.Round((xmax - xmin) / res))
	nrows := int(math.Round((ymax - ymin) / res))
	if ncols < 1 {
		ncols = 1
	}
	if nrows < 1 {
		nrows = 1
	}
	if crs == "" {
		crs = DefaultCRS
	}
	g = Grid{
		XMin:  xmin,
		XMax:  xmax,
		YMin:  ymin,
		YMax:  ymax,
		NCols: ncols,
		NRows: nrows,
		XRes:  (xmax - xmin) / float64(ncols),
		YRes:  (ymax - ymin) / float64(nrows),
		CRS:   crs,
	}
	return g, nil
}

// CellCount returns the number of cells in the grid.
func (g Grid) CellCount() int {
	return g.NCols * g.NRows
}

// Valid checks if id is a cell of the grid.
func (g Grid) Valid(id int) bool {
	return id >= 1 && id <= g.CellCount()
}

// CellID returns the identifier of the cell that contains the (x, y)
// coordinate. Points on the eastern and southern edges belong to the last
// column and row.
func (g Grid) CellID(x, y float64) (int, error) {
	if math.IsNaN(x) || math.IsNaN(y) ||
		x < g.XMin || x > g.XMax || y < g.YMin || y > g.YMax {
		return 0, ErrOutOfDomain
	}
	col := int(math.Floor((x - g.XMin) / g.XRes))
	row := int(math.Floor((g.YMax - y) / g.YRes))
	col = min(col, g.NCols-1)
	row = min(row, g.NRows-1)
	return g.id(row, col), nil
}

// RowCol returns zero-based row and column of a cell.
func (g Grid) RowCol(id int) (row, col int) {
	idx := id - 1
	return idx / g.NCols, idx % g.NCols
}

// Index returns zero-based position of a cell in a row-major array.
func (g Grid) Index(id int) int {
	return id - 1
}

func (g Grid) id(row, col int) int {
	return row*g.NCols + col + 1
}

// Center returns coordinates of the center of a cell.
func (g Grid) Center(id int) (x, y float64) {
	row, col := g.RowCol(id)
	x = g.XMin + (float64(col)+0.5)*g.XRes
	y = g.YMax - (float64(row)+0.5)*g.YRes
	return x, y
}

// CellBounds returns the rectangle covered by a cell.
func (g Grid) CellBounds(id int) *geom.Bounds {
	row, col := g.RowCol(id)
	x0 := g.XMin + float64(col)*g.XRes
	y1 := g.YMax - float64(row)*g.YRes
	return &geom.Bounds{
		Min: geom.Point{X: x0, Y: y1 - g.YRes},
		Max: geom.Point{X: x0 + g.XRes, Y: y1},
	}
}

// Bounds returns the extent of the grid.
func (g Grid) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: g.XMin, Y: g.YMin},
		Max: geom.Point{X: g.XMax, Y: g.YMax},
	}
}

// String returns a signature of the grid. Two grids with the same
// signature produce the same cell identifiers.
func (g Grid) String() string {
	return fmt.Sprintf("%g|%g|%g|%g|%d|%d|%s",
		g.XMin, g.XMax, g.YMin, g.YMax, g.NCols, g.NRows, g.CRS)
}
