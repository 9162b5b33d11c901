package rangeio

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/geom/proj"
	"github.com/gnames/gnsys"
	"github.com/gnames/phenogrid/internal/ent/ranges"
	"github.com/gnames/phenogrid/pkg/ent/grid"
)

type shape struct{}

// NewReader returns a ranges.Reader for ESRI shapefiles.
func NewReader() ranges.Reader {
	return shape{}
}

// Polygons decodes polygons of a shapefile. If the shapefile has a .prj
// file, geometries are projected to the grid coordinate reference system.
// Other geometries are skipped.
func (shape) Polygons(path string, g grid.Grid) ([]geom.Polygonal, error) {
	dec, err := shp.NewDecoder(path)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var trans proj.Transformer
	prj := strings.TrimSuffix(path, ".shp") + ".prj"
	if ok, _ := gnsys.FileExists(prj); ok {
		src, err := dec.SR()
		if err != nil {
			return nil, fmt.Errorf("reading projection: %w", err)
		}
		dst, err := proj.Parse(g.CRS)
		if err != nil {
			return nil, fmt.Errorf("parsing grid projection: %w", err)
		}
		trans, err = src.NewTransform(dst)
		if err != nil {
			return nil, fmt.Errorf("creating transform: %w", err)
		}
	}

	var res []geom.Polygonal
	var skipped int
	for {
		gm, _, more := dec.DecodeRowFields()
		if !more {
			break
		}
		if gm == nil {
			skipped++
			continue
		}
		if trans != nil {
			gm, err = gm.Transform(trans)
			if err != nil {
				return nil, fmt.Errorf("projecting geometry: %w", err)
			}
		}
		p, ok := gm.(geom.Polygonal)
		if !ok {
			skipped++
			continue
		}
		res = append(res, p)
	}
	if err = dec.Error(); err != nil {
		return nil, err
	}
	if skipped > 0 {
		slog.Debug("Skipped non-polygon shapes", "path", path, "shapes", skipped)
	}
	return res, nil
}
