package phenogrid_test

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/ctessum/geom"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/gnames/phenogrid/internal/ent/elev"
	"github.com/gnames/phenogrid/internal/ent/merge"
	"github.com/gnames/phenogrid/internal/ent/obs"
	"github.com/gnames/phenogrid/internal/ent/output"
	"github.com/gnames/phenogrid/internal/ent/pheno"
	"github.com/gnames/phenogrid/internal/ent/ranges"
	"github.com/gnames/phenogrid/internal/ent/veg"
	phenogrid "github.com/gnames/phenogrid/pkg"
	"github.com/gnames/phenogrid/pkg/config"
	"github.com/gnames/phenogrid/pkg/ent/grid"
)

type vegLoader struct{}

func (vegLoader) Load() ([]veg.Reading, veg.Stats, error) {
	var res []veg.Reading
	for cell := 1; cell <= 4; cell++ {
		for m := 1; m <= 12; m++ {
			for _, y := range []int{2010, 2011} {
				if cell == 2 && m == 12 && y == 2011 {
					continue
				}
				res = append(res, veg.Reading{
					Year: y, Cell: cell, Month: m, Tag: "NDVI", Value: 0.5,
				})
			}
		}
	}
	return res, veg.Stats{Values: len(res)}, nil
}

type phenoLoader struct{}

func (phenoLoader) Load() ([]pheno.Row, error) {
	return []pheno.Row{
		{Name: "Acer rubrum", Start: "Mar", End: "May"},
		{Name: "Salix nigra", Start: "November", End: "2"},
		{Name: "Rosa acicularis", Start: "", End: "6"},
	}, nil
}

type provider struct{}

func (provider) Ranges(names []string) ([]ranges.Match, error) {
	paths := map[string]string{"Acer rubrum": "acer", "Salix nigra": "salix"}
	res := make([]ranges.Match, len(names))
	for i, n := range names {
		p, ok := paths[n]
		res[i] = ranges.Match{Species: n, Found: ok, Path: p}
	}
	return res, nil
}

func rect(x0, y0, x1, y1 float64) geom.Polygon {
	return geom.Polygon{{
		{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}, {X: x0, Y: y0},
	}}
}

type reader struct{}

func (reader) Polygons(path string, _ grid.Grid) ([]geom.Polygonal, error) {
	switch path {
	case "acer":
		return []geom.Polygonal{rect(0.1, 1.1, 0.9, 1.9)}, nil
	case "salix":
		return []geom.Polygonal{rect(0.2, 1.2, 1.8, 1.8)}, nil
	}
	return nil, errors.New("unknown range")
}

type elevLoader struct{}

// Load returns a raster that covers only the northern half of the grid.
func (elevLoader) Load() (elev.Raster, error) {
	return elev.Raster{
		XMin: 0, YMax: 2, XRes: 1, YRes: 1, NCols: 2, NRows: 1,
		Values: []float64{100, 200},
		NoData: math.NaN(),
	}, nil
}

type obsSource struct{}

func (obsSource) Observations() ([]obs.Observation, int, error) {
	apr := time.Date(2020, 4, 10, 0, 0, 0, 0, time.UTC)
	jun := time.Date(2020, 6, 10, 0, 0, 0, 0, time.UTC)
	return []obs.Observation{
		{Species: "Calypte anna", Date: apr, Lon: 1.5, Lat: 0.5},
		{Species: "Pica pica", Date: jun, Lon: 0.5, Lat: 1.5},
		{Species: "Pica pica", Date: jun, Lon: 5, Lat: 5},
	}, 1, nil
}

type memWriter struct {
	d output.Dataset
}

func (w *memWriter) Write(d output.Dataset) error {
	w.d = d
	return nil
}

var _ = Describe("Phenogrid", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "phenogrid")
		Expect(err).To(BeNil())
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	It("builds the unified dataset", func() {
		metrics := filepath.Join(dir, "phenogrid.prom")
		cfg := config.New(
			config.OptExtent(0, 2, 0, 2),
			config.OptResolution(1),
			config.OptJobsNum(2),
			config.OptElevAggFactor(1),
			config.OptRichnessSpecies([]string{"Calypte anna"}),
			config.OptMetricsFile(metrics),
		)
		pg, err := phenogrid.New(cfg)
		Expect(err).To(BeNil())

		w := &memWriter{}
		res, err := pg.Run(phenogrid.Sources{
			Vegetation:   vegLoader{},
			Phenology:    phenoLoader{},
			Ranges:       provider{},
			RangeReader:  reader{},
			Elevation:    elevLoader{},
			Observations: obsSource{},
			Writers:      []output.Writer{w},
		})
		Expect(err).To(BeNil())

		Expect(res.Report.Stages).To(Equal([]merge.Stage{
			{Name: merge.StageOuterJoin, Before: 13, After: 13},
			{Name: merge.StageRelevance, Before: 13, After: 12},
			{Name: merge.StageVegetation, Before: 12, After: 11},
			{Name: merge.StageElevation, Before: 11, After: 10},
		}))
		Expect(w.d.Rows).To(HaveLen(10))
		Expect(w.d.Birds).To(Equal([]string{"Calypte anna", "Pica pica"}))

		first := w.d.Rows[0]
		Expect(first.Cell).To(Equal(1))
		Expect(first.Month).To(Equal(1))
		Expect(first.PlantRichness).To(Equal(1))
		Expect(first.Elevation).To(Equal(100.0))
		Expect(first.VegMean).To(BeNumerically("~", 0.5, 1e-9))

		var months []int
		for _, r := range w.d.Rows {
			if r.Cell == 2 {
				months = append(months, r.Month)
			}
		}
		Expect(months).To(Equal([]int{1, 2, 11}))

		bs, err := os.ReadFile(metrics)
		Expect(err).To(BeNil())
		Expect(string(bs)).To(ContainSubstring(
			`phenogrid_dropped_total{reason="out_of_domain",stage="observations"} 1`,
		))
		Expect(string(bs)).To(ContainSubstring(
			`phenogrid_rows{stage="elevation_join"} 10`,
		))
	})

	It("rejects invalid grids", func() {
		cfg := config.New(config.OptResolution(0))
		_, err := phenogrid.New(cfg)
		Expect(err).ToNot(BeNil())
	})
})
