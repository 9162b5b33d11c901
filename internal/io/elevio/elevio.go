// Package elevio reads elevation rasters from NetCDF classic files with
// 1-D longitude and latitude coordinates and a 2-D elevation variable.
package elevio

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"slices"

	"github.com/ctessum/cdf"
	"github.com/dustin/go-humanize"
	"github.com/gnames/phenogrid/internal/ent/elev"
)

type elevio struct {
	path                 string
	lonVar, latVar, zVar string
}

// New returns an elev.Loader for a NetCDF file and names of its longitude,
// latitude and elevation variables.
func New(path, lonVar, latVar, zVar string) elev.Loader {
	return &elevio{path: path, lonVar: lonVar, latVar: latVar, zVar: zVar}
}

// Load reads the raster and converts it to north-up orientation.
func (e *elevio) Load() (elev.Raster, error) {
	var res elev.Raster
	f, err := os.Open(e.path)
	if err != nil {
		slog.Error("Cannot open elevation file", "error", err, "path", e.path)
		return res, err
	}
	defer f.Close()

	nc, err := cdf.Open(f)
	if err != nil {
		return res, fmt.Errorf("reading NetCDF %s: %w", e.path, err)
	}

	vars := nc.Header.Variables()
	for _, v := range []string{e.lonVar, e.latVar, e.zVar} {
		if !slices.Contains(vars, v) {
			return res, fmt.Errorf("variable %q is absent in %s", v, e.path)
		}
	}

	lons, err := readFloats(nc, e.lonVar)
	if err != nil {
		return res, err
	}
	lats, err := readFloats(nc, e.latVar)
	if err != nil {
		return res, err
	}
	zs, err := readFloats(nc, e.zVar)
	if err != nil {
		return res, err
	}
	if len(lons) < 2 || len(lats) < 2 {
		return res, fmt.Errorf("elevation raster %s is too small", e.path)
	}
	nx, ny := len(lons), len(lats)
	if len(zs) != nx*ny {
		return res, fmt.Errorf("elevation has %d values, expected %d x %d",
			len(zs), ny, nx)
	}

	dims := nc.Header.Dimensions(e.zVar)
	lonDims := nc.Header.Dimensions(e.lonVar)
	if len(dims) == 2 && len(lonDims) == 1 && dims[0] == lonDims[0] {
		zs = transpose(zs, nx, ny)
	}

	res = elev.Raster{
		NCols:  nx,
		NRows:  ny,
		XRes:   math.Abs(lons[nx-1]-lons[0]) / float64(nx-1),
		YRes:   math.Abs(lats[ny-1]-lats[0]) / float64(ny-1),
		Values: zs,
		NoData: fillValue(nc.Header, e.zVar),
	}
	if lons[0] > lons[nx-1] {
		flipCols(res.Values, nx, ny)
		slices.Reverse(lons)
	}
	if lats[0] < lats[ny-1] {
		flipRows(res.Values, nx, ny)
		slices.Reverse(lats)
	}
	res.XMin = lons[0] - res.XRes/2
	res.YMax = lats[0] + res.YRes/2

	slog.Info("Read elevation raster",
		"columns", nx, "rows", ny,
		"pixels", humanize.Comma(int64(nx*ny)),
	)
	return res, nil
}

func readFloats(nc *cdf.File, v string) ([]float64, error) {
	r := nc.Reader(v, nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("reading variable %s: %w", v, err)
	}
	res, ok := toFloats(buf)
	if !ok {
		return nil, fmt.Errorf("variable %s has unsupported type %T", v, buf)
	}
	return res, nil
}

func toFloats(v any) ([]float64, bool) {
	var res []float64
	switch vs := v.(type) {
	case []float64:
		res = slices.Clone(vs)
	case []float32:
		res = make([]float64, len(vs))
		for i := range vs {
			res[i] = float64(vs[i])
		}
	case []int32:
		res = make([]float64, len(vs))
		for i := range vs {
			res[i] = float64(vs[i])
		}
	case []int16:
		res = make([]float64, len(vs))
		for i := range vs {
			res[i] = float64(vs[i])
		}
	case []int8:
		res = make([]float64, len(vs))
		for i := range vs {
			res[i] = float64(vs[i])
		}
	default:
		return nil, false
	}
	return res, true
}

func fillValue(h *cdf.Header, v string) float64 {
	for _, att := range []string{"_FillValue", "missing_value"} {
		if vs, ok := toFloats(h.GetAttribute(v, att)); ok && len(vs) > 0 {
			return vs[0]
		}
	}
	return math.NaN()
}

// transpose converts [nx, ny] order to [ny, nx].
func transpose(vs []float64, nx, ny int) []float64 {
	res := make([]float64, len(vs))
	for x := range nx {
		for y := range ny {
			res[y*nx+x] = vs[x*ny+y]
		}
	}
	return res
}

func flipRows(vs []float64, nx, ny int) {
	for top, bot := 0, ny-1; top < bot; top, bot = top+1, bot-1 {
		for x := range nx {
			vs[top*nx+x], vs[bot*nx+x] = vs[bot*nx+x], vs[top*nx+x]
		}
	}
}

func flipCols(vs []float64, nx, ny int) {
	for y := range ny {
		slices.Reverse(vs[y*nx : (y+1)*nx])
	}
}
