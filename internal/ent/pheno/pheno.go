// Package pheno describes recurring yearly flowering intervals of plant
// species.
package pheno

import (
	"time"

	"github.com/gnames/phenogrid/internal/ent/month"
	"github.com/gnames/phenogrid/internal/ent/sciname"
)

// ReferenceYear is a synthetic non-leap year used to express flowering
// intervals as dates. The year itself carries no meaning.
const ReferenceYear = 2001

// Row is a raw record of a phenology table.
type Row struct {
	Name  string
	Start string
	End   string
}

// Loader reads phenology tables.
type Loader interface {
	// Load returns all rows of a phenology table.
	Load() ([]Row, error)
}

// Species is a plant species with its flowering interval. The interval is
// closed on both ends: from the first day of the start month to the last
// day of the end month of ReferenceYear. Intervals with the start month
// later than the end month wrap over the new year.
type Species struct {
	// Name is the verbatim name from the phenology table.
	Name string
	// Canonical is the canonical form of the name.
	Canonical string
	// ID is a UUID v5 generated from Canonical.
	ID    string
	Start time.Time
	End   time.Time
}

// Stats keeps counts of phenology rows.
type Stats struct {
	Rows       int
	BadMonths  int
	BadNames   int
	Duplicates int
	Species    int
}

// NewSpecies creates a Species for a flowering interval.
func NewSpecies(name, canonical string, start, end time.Month) Species {
	return Species{
		Name:      name,
		Canonical: canonical,
		ID:        sciname.ID(canonical),
		Start:     time.Date(ReferenceYear, start, 1, 0, 0, 0, 0, time.UTC),
		End:       time.Date(ReferenceYear, end+1, 0, 0, 0, 0, 0, time.UTC),
	}
}

// Flowers checks if a species is in bloom during a month of any year.
func (s Species) Flowers(m time.Month) bool {
	return MonthInInterval(s.Start.Month(), s.End.Month(), m)
}

// WrapsYear is true when flowering continues over the new year.
func (s Species) WrapsYear() bool {
	return s.Start.Month() > s.End.Month()
}

// MonthInInterval checks if a month belongs to the closed interval
// [start, end] of a recurring year. When start is after end, the interval
// wraps over December.
func MonthInInterval(start, end, m time.Month) bool {
	if start <= end {
		return m >= start && m <= end
	}
	return m >= start || m <= end
}

// New converts rows of a phenology table into species. Rows with missing or
// unparseable months are dropped: such species have no flowering signal.
// Only the first row of a species is used.
func New(rows []Row, n *sciname.Normalizer) ([]Species, Stats) {
	st := Stats{Rows: len(rows)}
	res := make([]Species, 0, len(rows))
	seen := make(map[string]struct{})
	for _, r := range rows {
		start, err := month.Parse(r.Start)
		if err != nil {
			st.BadMonths++
			continue
		}
		end, err := month.Parse(r.End)
		if err != nil {
			st.BadMonths++
			continue
		}
		can := n.Canonical(r.Name)
		if can == "" {
			st.BadNames++
			continue
		}
		if _, ok := seen[can]; ok {
			st.Duplicates++
			continue
		}
		seen[can] = struct{}{}
		res = append(res, NewSpecies(r.Name, can, start, end))
	}
	st.Species = len(res)
	return res, st
}
