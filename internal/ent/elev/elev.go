// Package elev places a static elevation raster onto the study grid.
package elev

import (
	"math"

	"github.com/gnames/phenogrid/pkg/ent/grid"
)

// Raster is a north-up raster. Values are stored row by row starting from
// the northern edge.
type Raster struct {
	// XMin and YMax are coordinates of the north-western corner.
	XMin, YMax float64
	// XRes and YRes are sizes of a pixel.
	XRes, YRes   float64
	NCols, NRows int
	Values       []float64
	// NoData is a value that marks absent data. NaN values are always
	// treated as absent, so NoData is NaN for rasters without a special
	// value.
	NoData float64
}

// Loader reads an elevation raster.
type Loader interface {
	Load() (Raster, error)
}

// Record is the elevation of a grid cell.
type Record struct {
	Cell      int
	Elevation float64
}

// Stats keeps counts of the resampling process.
type Stats struct {
	// Pixels is the number of pixels after cropping.
	Pixels int
	// Filled is the number of no-data pixels replaced by zero.
	Filled int
	// Aggregated is the number of pixels after aggregation.
	Aggregated int
	// OutOfRaster is the number of grid cells without elevation.
	OutOfRaster int
	// Records is the number of produced records.
	Records int
}

// At returns a value for a row and a column.
func (r Raster) At(row, col int) float64 {
	return r.Values[row*r.NCols+col]
}

// Crop returns the part of the raster that overlaps the grid extent.
func (r Raster) Crop(g grid.Grid) Raster {
	c0 := clamp(int(math.Floor((g.XMin-r.XMin)/r.XRes)), 0, r.NCols)
	c1 := clamp(int(math.Ceil((g.XMax-r.XMin)/r.XRes)), 0, r.NCols)
	r0 := clamp(int(math.Floor((r.YMax-g.YMax)/r.YRes)), 0, r.NRows)
	r1 := clamp(int(math.Ceil((r.YMax-g.YMin)/r.YRes)), 0, r.NRows)
	res := Raster{
		XMin:   r.XMin + float64(c0)*r.XRes,
		YMax:   r.YMax - float64(r0)*r.YRes,
		XRes:   r.XRes,
		YRes:   r.YRes,
		NoData: r.NoData,
	}
	if c1 <= c0 || r1 <= r0 {
		return res
	}
	res.NCols = c1 - c0
	res.NRows = r1 - r0
	res.Values = make([]float64, 0, res.NCols*res.NRows)
	for row := r0; row < r1; row++ {
		res.Values = append(res.Values, r.Values[row*r.NCols+c0:row*r.NCols+c1]...)
	}
	return res
}

// FillNoData replaces absent values with v. It returns the new raster and
// the number of replaced values. The result has no special no-data value,
// so filled pixels are never treated as absent again.
func (r Raster) FillNoData(v float64) (Raster, int) {
	var count int
	res := r
	res.NoData = math.NaN()
	res.Values = make([]float64, len(r.Values))
	for i, val := range r.Values {
		if math.IsNaN(val) || val == r.NoData {
			val = v
			count++
		}
		res.Values[i] = val
	}
	return res, count
}

// Aggregate reduces resolution of the raster by factor, using the mean of
// factor x factor blocks. Blocks at the eastern and southern edges can be
// incomplete, their mean is calculated from existing pixels.
func (r Raster) Aggregate(factor int) Raster {
	if factor <= 1 {
		return r
	}
	res := Raster{
		XMin:   r.XMin,
		YMax:   r.YMax,
		XRes:   r.XRes * float64(factor),
		YRes:   r.YRes * float64(factor),
		NCols:  (r.NCols + factor - 1) / factor,
		NRows:  (r.NRows + factor - 1) / factor,
		NoData: r.NoData,
	}
	res.Values = make([]float64, res.NCols*res.NRows)
	for row := 0; row < res.NRows; row++ {
		for col := 0; col < res.NCols; col++ {
			var sum float64
			var n int
			for i := row * factor; i < min((row+1)*factor, r.NRows); i++ {
				for j := col * factor; j < min((col+1)*factor, r.NCols); j++ {
					v := r.At(i, j)
					if math.IsNaN(v) || v == r.NoData {
						continue
					}
					sum += v
					n++
				}
			}
			val := math.NaN()
			if n > 0 {
				val = sum / float64(n)
			}
			res.Values[row*res.NCols+col] = val
		}
	}
	return res
}

// Nearest returns the value of the pixel that contains (x, y).
func (r Raster) Nearest(x, y float64) (float64, bool) {
	col := int(math.Floor((x - r.XMin) / r.XRes))
	row := int(math.Floor((r.YMax - y) / r.YRes))
	if col < 0 || col >= r.NCols || row < 0 || row >= r.NRows {
		return 0, false
	}
	v := r.At(row, col)
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// Resample crops the raster to the grid, replaces no-data pixels with
// zero, aggregates pixels by factor and assigns to every grid cell the
// value of the pixel under its center.
//
// Filling no-data with zero is lossy: cells without data get the sea level
// elevation. The number of such pixels is reported in Stats.
func Resample(r Raster, g grid.Grid, factor int) ([]Record, Stats) {
	var st Stats
	r = r.Crop(g)
	st.Pixels = len(r.Values)
	r, st.Filled = r.FillNoData(0)
	r = r.Aggregate(factor)
	st.Aggregated = len(r.Values)

	res := make([]Record, 0, g.CellCount())
	for id := 1; id <= g.CellCount(); id++ {
		x, y := g.Center(id)
		v, ok := r.Nearest(x, y)
		if !ok {
			st.OutOfRaster++
			continue
		}
		res = append(res, Record{Cell: id, Elevation: v})
	}
	st.Records = len(res)
	return res, st
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
