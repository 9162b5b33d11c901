package phenogrid

import (
	"github.com/gnames/phenogrid/internal/ent/elev"
	"github.com/gnames/phenogrid/internal/ent/obs"
	"github.com/gnames/phenogrid/internal/ent/output"
	"github.com/gnames/phenogrid/internal/ent/pheno"
	"github.com/gnames/phenogrid/internal/ent/ranges"
	"github.com/gnames/phenogrid/internal/ent/veg"
)

// Sources connect the pipeline to its inputs and outputs.
type Sources struct {
	Vegetation   veg.Loader
	Phenology    pheno.Loader
	Ranges       ranges.Provider
	RangeReader  ranges.Reader
	Elevation    elev.Loader
	Observations obs.Source

	// MaskCache is optional.
	MaskCache ranges.Cache

	// Writers save the unified dataset. Can be empty.
	Writers []output.Writer
}
