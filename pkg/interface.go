package phenogrid

import (
	"github.com/gnames/phenogrid/internal/ent/merge"
	"github.com/gnames/phenogrid/internal/ent/output"
)

// PhenoGrid is an interface for building the unified plant, bird,
// vegetation and elevation dataset.
type PhenoGrid interface {
	// Run executes all stages of the pipeline and saves the result with
	// every writer of the sources.
	Run(Sources) (Result, error)
}

// Result is the outcome of a run.
type Result struct {
	// Dataset is the unified table.
	Dataset output.Dataset

	// Report lists row counts of merging stages.
	Report merge.Report
}
