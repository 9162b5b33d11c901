package ranges

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"github.com/ctessum/sparse"
	"github.com/dustin/go-humanize"
	"github.com/gnames/phenogrid/internal/ent/pheno"
	"github.com/gnames/phenogrid/internal/ent/sciname"
	"github.com/gnames/phenogrid/pkg/ent/grid"
	"golang.org/x/sync/errgroup"
)

// errUnreadable marks range files that exist but cannot be decoded.
var errUnreadable = errors.New("cannot read range")

type gridCell struct {
	geom.Polygonal
	id int
}

// Rasterizer converts range polygons into masks. A cell belongs to a range
// if the range overlaps the cell with a positive area. Cells that only
// touch the range boundary are not included.
type Rasterizer struct {
	grid   grid.Grid
	tree   *rtree.Rtree
	reader Reader
	cache  Cache
	jobs   int
}

// NewRasterizer creates a Rasterizer for a grid. The cache can be nil.
func NewRasterizer(g grid.Grid, r Reader, c Cache, jobs int) *Rasterizer {
	if jobs < 1 {
		jobs = 1
	}
	tree := rtree.NewTree(25, 50)
	for id := 1; id <= g.CellCount(); id++ {
		tree.Insert(&gridCell{Polygonal: g.CellBounds(id), id: id})
	}
	return &Rasterizer{grid: g, tree: tree, reader: r, cache: c, jobs: jobs}
}

// Rasterize marks cells overlapped by any of the polygons.
func (r *Rasterizer) Rasterize(polys []geom.Polygonal) *sparse.DenseArray {
	res := sparse.ZerosDense(r.grid.NRows, r.grid.NCols)
	for _, p := range polys {
		if p == nil {
			continue
		}
		for _, s := range r.tree.SearchIntersect(p.Bounds()) {
			c := s.(*gridCell)
			idx := r.grid.Index(c.id)
			if res.Elements[idx] > 0 {
				continue
			}
			isect := p.Intersection(c.Polygonal)
			if isect != nil && isect.Area() > 0 {
				res.Elements[idx] = 1
			}
		}
	}
	return res
}

// Masks creates masks for species that have both a flowering interval and
// a downloaded range. Other species are excluded and counted.
func (r *Rasterizer) Masks(sps []pheno.Species, ms []Match) ([]Mask, Stats, error) {
	st := Stats{Requested: len(sps)}

	matches := make(map[string]Match, len(ms))
	for _, m := range ms {
		matches[m.Species] = m
	}

	type slot struct {
		mask   *Mask
		cached bool
		err    error
	}
	slots := make([]slot, len(sps))

	var g errgroup.Group
	g.SetLimit(r.jobs)
	for i := range sps {
		m, ok := matches[sps[i].Name]
		if !ok || !m.Found || m.Path == "" {
			st.NoRange++
			continue
		}
		g.Go(func() error {
			mask, cached, err := r.mask(sps[i], m.Path)
			if errors.Is(err, errUnreadable) {
				slog.Warn("Cannot use range", "species", sps[i].Name, "error", err)
				slots[i].err = err
				return nil
			}
			if err != nil {
				return err
			}
			slots[i] = slot{mask: &mask, cached: cached}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, st, err
	}

	res := make([]Mask, 0, len(sps))
	for _, s := range slots {
		switch {
		case s.err != nil:
			st.Unreadable++
		case s.mask != nil:
			if s.cached {
				st.Cached++
			}
			res = append(res, *s.mask)
		}
	}
	st.Masks = len(res)

	slog.Info("Created range masks",
		"obtained", fmt.Sprintf("%s/%s",
			humanize.Comma(int64(st.Masks)), humanize.Comma(int64(st.Requested))),
		"fraction", fmt.Sprintf("%.3f", st.Fraction()),
		"no-range", st.NoRange,
		"unreadable", st.Unreadable,
		"cached", st.Cached,
	)
	return res, st, nil
}

func (r *Rasterizer) mask(sp pheno.Species, path string) (Mask, bool, error) {
	key := r.cacheKey(sp, path)
	if r.cache != nil {
		cells, ok, err := r.cache.Get(key)
		if err != nil {
			return Mask{}, false, err
		}
		if ok {
			return NewMask(sp, r.grid, cells), true, nil
		}
	}

	polys, err := r.reader.Polygons(path, r.grid)
	if err != nil {
		return Mask{}, false, fmt.Errorf("%w %s: %w", errUnreadable, path, err)
	}
	mask := Mask{Species: sp, Data: r.Rasterize(polys)}
	slog.Debug("Rasterized range", "species", sp.Name, "cells", mask.Size())

	if r.cache != nil {
		if err = r.cache.Set(key, mask.CellIDs()); err != nil {
			return Mask{}, false, err
		}
	}
	return mask, false, nil
}

// cacheKey depends on the shapefile location and its modification time,
// so a changed or relocated range is rasterized again.
func (r *Rasterizer) cacheKey(sp pheno.Species, path string) string {
	var mod int64
	if fi, err := os.Stat(path); err == nil {
		mod = fi.ModTime().UnixNano()
	}
	return sciname.ID(fmt.Sprintf("%s|%s|%s|%d", sp.Canonical, r.grid, path, mod))
}
