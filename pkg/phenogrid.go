package phenogrid

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/phenogrid/internal/ent/diag"
	"github.com/gnames/phenogrid/internal/ent/elev"
	"github.com/gnames/phenogrid/internal/ent/merge"
	"github.com/gnames/phenogrid/internal/ent/obs"
	"github.com/gnames/phenogrid/internal/ent/output"
	"github.com/gnames/phenogrid/internal/ent/pheno"
	"github.com/gnames/phenogrid/internal/ent/ranges"
	"github.com/gnames/phenogrid/internal/ent/richness"
	"github.com/gnames/phenogrid/internal/ent/sciname"
	"github.com/gnames/phenogrid/internal/ent/veg"
	"github.com/gnames/phenogrid/pkg/config"
	"github.com/gnames/phenogrid/pkg/ent/grid"
)

// Stage names of diagnostic counters.
const (
	stageVegetation   = "vegetation"
	stagePhenology    = "phenology"
	stageRanges       = "ranges"
	stageRichness     = "plant_richness"
	stageElevation    = "elevation"
	stageObservations = "observations"
	stageMerge        = "merge"
	stageOutput       = "output"
)

// phenogrid is an implementation of PhenoGrid interface.
type phenogrid struct {
	cfg  config.Config
	grid grid.Grid
	diag *diag.Diag
	norm *sciname.Normalizer
}

// New creates a new instance of PhenoGrid.
func New(cfg config.Config) (PhenoGrid, error) {
	g, err := cfg.Grid()
	if err != nil {
		slog.Error("Cannot create grid", "error", err)
		return nil, err
	}
	res := phenogrid{
		cfg:  cfg,
		grid: g,
		diag: diag.New(),
		norm: sciname.New(),
	}
	return &res, nil
}

// Run executes all stages one after another.
func (p *phenogrid) Run(s Sources) (Result, error) {
	var res Result
	slog.Info("Starting pipeline",
		"columns", p.grid.NCols,
		"rows", p.grid.NRows,
		"cells", humanize.Comma(int64(p.grid.CellCount())),
	)

	vs, err := p.vegetation(s.Vegetation)
	if err != nil {
		return res, fmt.Errorf("vegetation: %w", err)
	}

	sps, err := p.phenology(s.Phenology)
	if err != nil {
		return res, fmt.Errorf("phenology: %w", err)
	}

	masks, err := p.ranges(s, sps)
	if err != nil {
		return res, fmt.Errorf("ranges: %w", err)
	}

	plants := p.richness(masks)

	es, err := p.elevation(s.Elevation)
	if err != nil {
		return res, fmt.Errorf("elevation: %w", err)
	}

	birds, err := p.observations(s.Observations)
	if err != nil {
		return res, fmt.Errorf("observations: %w", err)
	}

	start := time.Now()
	rows, rep := merge.Merge(plants, birds, vs, es)
	for _, st := range rep.Stages {
		p.diag.Rows(st.Name, st.After)
		switch st.Name {
		case merge.StageOuterJoin:
		case merge.StageRelevance:
			p.diag.Dropped(st.Name, diag.ReasonNoRichness, st.Dropped())
		default:
			p.diag.Dropped(st.Name, diag.ReasonJoin, st.Dropped())
		}
		slog.Info("Merge stage",
			"stage", st.Name,
			"before", humanize.Comma(int64(st.Before)),
			"after", humanize.Comma(int64(st.After)),
		)
	}
	p.diag.Rows(stageMerge, len(rows))
	p.diag.Duration(stageMerge, time.Since(start))

	res = Result{
		Dataset: output.Dataset{Rows: rows, Birds: birds.Species},
		Report:  rep,
	}

	start = time.Now()
	for _, w := range s.Writers {
		if err = w.Write(res.Dataset); err != nil {
			return res, fmt.Errorf("output: %w", err)
		}
	}
	p.diag.Duration(stageOutput, time.Since(start))

	if p.cfg.MetricsFile != "" {
		if err = p.diag.WriteFile(p.cfg.MetricsFile); err != nil {
			slog.Error("Cannot save metrics", "error", err, "path", p.cfg.MetricsFile)
			return res, fmt.Errorf("metrics: %w", err)
		}
		slog.Info("Saved metrics", "path", p.cfg.MetricsFile)
	}

	slog.Info("Pipeline is finished",
		"rows", humanize.Comma(int64(len(rows))),
		"birds", len(birds.Species),
	)
	return res, nil
}

func (p *phenogrid) vegetation(l veg.Loader) ([]veg.Record, error) {
	start := time.Now()
	rs, lst, err := l.Load()
	if err != nil {
		return nil, err
	}
	recs, st := veg.Aggregate(rs, p.cfg.VegIndex, p.cfg.VegMinYears)
	st.Add(lst)

	p.diag.Dropped(stageVegetation, diag.ReasonParse, st.BadKeys+st.BadValues)
	p.diag.Dropped(stageVegetation, diag.ReasonMissing, st.Missing)
	p.diag.Dropped(stageVegetation, diag.ReasonOtherIndex, st.OtherTags)
	p.diag.Dropped(stageVegetation, diag.ReasonInsufficient, st.Insufficient)
	p.diag.Rows(stageVegetation, len(recs))
	p.diag.Duration(stageVegetation, time.Since(start))

	slog.Info("Aggregated vegetation index",
		"index", p.cfg.VegIndex,
		"records", humanize.Comma(int64(len(recs))),
		"missing", humanize.Comma(int64(st.Missing)),
		"insufficient", humanize.Comma(int64(st.Insufficient)),
	)
	return recs, nil
}

func (p *phenogrid) phenology(l pheno.Loader) ([]pheno.Species, error) {
	start := time.Now()
	rows, err := l.Load()
	if err != nil {
		return nil, err
	}
	sps, st := pheno.New(rows, p.norm)

	p.diag.Dropped(stagePhenology, diag.ReasonParse, st.BadMonths+st.BadNames)
	p.diag.Dropped(stagePhenology, diag.ReasonDuplicate, st.Duplicates)
	p.diag.Rows(stagePhenology, len(sps))
	p.diag.Duration(stagePhenology, time.Since(start))

	slog.Info("Loaded flowering intervals",
		"species", len(sps),
		"bad-months", st.BadMonths,
		"duplicates", st.Duplicates,
	)
	return sps, nil
}

func (p *phenogrid) ranges(s Sources, sps []pheno.Species) ([]ranges.Mask, error) {
	start := time.Now()
	names := make([]string, len(sps))
	for i := range sps {
		names[i] = sps[i].Name
	}
	ms, err := s.Ranges.Ranges(names)
	if err != nil {
		return nil, err
	}

	r := ranges.NewRasterizer(p.grid, s.RangeReader, s.MaskCache, p.cfg.JobsNum)
	masks, st, err := r.Masks(sps, ms)
	if err != nil {
		return nil, err
	}

	p.diag.Dropped(stageRanges, diag.ReasonNoRange, st.NoRange)
	p.diag.Dropped(stageRanges, diag.ReasonUnreadable, st.Unreadable)
	p.diag.Rows(stageRanges, len(masks))
	p.diag.Duration(stageRanges, time.Since(start))
	return masks, nil
}

func (p *phenogrid) richness(masks []ranges.Mask) []richness.Record {
	start := time.Now()
	recs, counts := richness.Monthly(p.grid, masks)
	for i, c := range counts {
		slog.Debug("Flowering species", "month", time.Month(i+1).String(), "species", c)
	}
	p.diag.Rows(stageRichness, len(recs))
	p.diag.Duration(stageRichness, time.Since(start))

	slog.Info("Calculated plant richness",
		"records", humanize.Comma(int64(len(recs))),
	)
	return recs
}

func (p *phenogrid) elevation(l elev.Loader) ([]elev.Record, error) {
	start := time.Now()
	r, err := l.Load()
	if err != nil {
		return nil, err
	}
	recs, st := elev.Resample(r, p.grid, p.cfg.ElevAggFactor)

	p.diag.Dropped(stageElevation, diag.ReasonNoData, st.Filled)
	p.diag.Dropped(stageElevation, diag.ReasonOutOfDomain, st.OutOfRaster)
	p.diag.Rows(stageElevation, len(recs))
	p.diag.Duration(stageElevation, time.Since(start))

	if st.Filled > 0 {
		slog.Warn("Elevation no-data pixels are set to 0",
			"pixels", humanize.Comma(int64(st.Filled)))
	}
	slog.Info("Resampled elevation",
		"records", humanize.Comma(int64(len(recs))),
		"out-of-raster", st.OutOfRaster,
	)
	return recs, nil
}

func (p *phenogrid) observations(s obs.Source) (obs.Table, error) {
	start := time.Now()
	recs, bad, err := s.Observations()
	if err != nil {
		return obs.Table{}, err
	}
	if len(p.cfg.RichnessSpecies) == 0 {
		slog.Info("Bird richness counts all presence columns")
	}
	t, st := obs.Aggregate(p.grid, recs, p.cfg.BirdSpecies, p.cfg.RichnessSpecies)
	st.BadRecords = bad

	p.diag.Dropped(stageObservations, diag.ReasonParse, st.BadRecords)
	p.diag.Dropped(stageObservations, diag.ReasonOutOfDomain, st.OutOfDomain)
	p.diag.Dropped(stageObservations, diag.ReasonDuplicate, st.Duplicates)
	p.diag.Dropped(stageObservations, diag.ReasonNotOfInterest, st.NotOfInterest)
	p.diag.Rows(stageObservations, len(t.Rows))
	p.diag.Duration(stageObservations, time.Since(start))

	slog.Info("Aggregated bird observations",
		"observations", humanize.Comma(int64(st.Observations)),
		"out-of-domain", humanize.Comma(int64(st.OutOfDomain)),
		"not-of-interest", humanize.Comma(int64(st.NotOfInterest)),
		"species", len(t.Species),
		"rows", humanize.Comma(int64(len(t.Rows))),
	)
	return t, nil
}
