// Package model describes database tables of the unified dataset.
package model

import "github.com/gnames/phenogrid/internal/ent/output"

// Model creates database schema.
type Model interface {
	// Migrate creates tables in the database.
	Migrate() error
}

// UnifiedRow is a row of the unified dataset without bird presence flags.
type UnifiedRow struct {
	// Cell is the identifier of a grid cell.
	Cell int `gorm:"primary_key;auto_increment:false"`

	// Month is a month number from 1 to 12.
	Month int `gorm:"type:smallint;primary_key;auto_increment:false"`

	// PlantRichness is the number of flowering plant species.
	PlantRichness int

	// BirdRichness is the number of observed bird species of interest.
	BirdRichness int

	VegMean   float64 `gorm:"column:veg_mean"`
	VegSD     float64 `gorm:"column:veg_sd"`
	Elevation float64
}

// BirdPresence records that a bird species was observed in a cell during
// a month. Absent records mean absence.
type BirdPresence struct {
	Cell    int    `gorm:"primary_key;auto_increment:false"`
	Month   int    `gorm:"type:smallint;primary_key;auto_increment:false"`
	Species string `gorm:"type:varchar(255);primary_key"`
}

// TableName sets the table name of BirdPresence.
func (BirdPresence) TableName() string {
	return "bird_presence"
}

// UnifiedRowColumns are column names of the unified_rows table.
var UnifiedRowColumns = []string{
	"cell", "month", "plant_richness", "bird_richness",
	"veg_mean", "veg_sd", "elevation",
}

// BirdPresenceColumns are column names of the bird_presence table.
var BirdPresenceColumns = []string{"cell", "month", "species"}

// Tables splits a dataset into rows of unified_rows and bird_presence
// tables. Presence rows follow the order of d.Birds.
func Tables(d output.Dataset) ([]UnifiedRow, []BirdPresence) {
	rows := make([]UnifiedRow, len(d.Rows))
	var birds []BirdPresence
	for i, r := range d.Rows {
		rows[i] = UnifiedRow{
			Cell:          r.Cell,
			Month:         r.Month,
			PlantRichness: r.PlantRichness,
			BirdRichness:  r.BirdRichness,
			VegMean:       r.VegMean,
			VegSD:         r.VegSD,
			Elevation:     r.Elevation,
		}
		for _, b := range d.Birds {
			if r.Birds[b] {
				birds = append(birds, BirdPresence{Cell: r.Cell, Month: r.Month, Species: b})
			}
		}
	}
	return rows, birds
}

// Values returns values of a UnifiedRow in the order of UnifiedRowColumns.
func (r UnifiedRow) Values() []any {
	return []any{
		r.Cell, r.Month, r.PlantRichness, r.BirdRichness,
		r.VegMean, r.VegSD, r.Elevation,
	}
}

// Values returns values of a BirdPresence in the order of
// BirdPresenceColumns.
func (b BirdPresence) Values() []any {
	return []any{b.Cell, b.Month, b.Species}
}
