// Package veg aggregates yearly vegetation index summaries into
// per-cell, per-month statistics.
package veg

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/gnames/phenogrid/internal/ent/month"
	"gonum.org/v1/gonum/stat"
)

// ErrBadKey is returned for a composite key that does not encode an index
// tag and a month.
var ErrBadKey = errors.New("malformed vegetation key")

// Reading is one value of a vegetation index for a cell and a month of
// a particular year.
type Reading struct {
	Year  int
	Cell  int
	Month int
	Tag   string
	Value float64
}

// Record is a vegetation index summary for a cell and a month, aggregated
// over all available years.
type Record struct {
	Cell   int
	Month  int
	Tag    string
	Mean   float64
	StdDev float64
	// N is the number of distinct years that contributed to the record.
	// One year can contribute several values when its month counters
	// wrap around.
	N int
}

// Stats keeps counts of readings that were used or dropped.
type Stats struct {
	// Values is the number of numeric readings found in input files.
	Values int
	// Missing is the number of empty or NA readings.
	Missing int
	// BadKeys is the number of columns with malformed composite keys.
	BadKeys int
	// BadValues is the number of readings that are not numbers.
	BadValues int
	// OtherTags is the number of readings of not requested indices.
	OtherTags int
	// Insufficient is the number of (cell, month) groups dropped because
	// they had too few years of data.
	Insufficient int
	// Records is the number of produced records.
	Records int
}

// Loader reads vegetation readings from some storage.
type Loader interface {
	// Load returns readings and counts of skipped values.
	Load() ([]Reading, Stats, error)
}

// ParseKey splits a composite key like `NDVI_03`, `EVI.Mar` or `3-NDVI`
// into a month and an upper-cased index tag. Month counters above 12 are
// wrapped into 1..12.
func ParseKey(key string) (int, string, error) {
	parts := strings.FieldsFunc(key, func(r rune) bool {
		return r == '_' || r == '.' || r == '-' || unicode.IsSpace(r)
	})
	if len(parts) != 2 {
		return 0, "", fmt.Errorf("%w: %q", ErrBadKey, key)
	}
	for i := range parts {
		m, err := month.ParseCounter(parts[i])
		if err != nil {
			continue
		}
		tag := parts[1-i]
		if !isTag(tag) {
			continue
		}
		return int(m), strings.ToUpper(tag), nil
	}
	return 0, "", fmt.Errorf("%w: %q", ErrBadKey, key)
}

func isTag(s string) bool {
	if _, err := month.Parse(s); err == nil {
		return false
	}
	var letter bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
		default:
			return false
		}
	}
	return letter
}

type cellMonth struct {
	cell, month int
}

type group struct {
	vals  []float64
	years map[int]struct{}
}

// Aggregate groups readings of the given index tag by cell and month and
// computes mean and sample standard deviation across years. Missing (NaN)
// values are ignored. Groups with fewer than minYears distinct years are
// dropped, they are never reported as zeros.
func Aggregate(rs []Reading, tag string, minYears int) ([]Record, Stats) {
	var st Stats
	if minYears < 1 {
		minYears = 1
	}
	tag = strings.ToUpper(tag)

	groups := make(map[cellMonth]*group)
	for _, r := range rs {
		if math.IsNaN(r.Value) {
			st.Missing++
			continue
		}
		if !strings.EqualFold(r.Tag, tag) {
			st.OtherTags++
			continue
		}
		k := cellMonth{cell: r.Cell, month: r.Month}
		g, ok := groups[k]
		if !ok {
			g = &group{years: make(map[int]struct{})}
			groups[k] = g
		}
		g.vals = append(g.vals, r.Value)
		g.years[r.Year] = struct{}{}
	}

	keys := make([]cellMonth, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].cell != keys[j].cell {
			return keys[i].cell < keys[j].cell
		}
		return keys[i].month < keys[j].month
	})

	res := make([]Record, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		vals := g.vals
		if len(g.years) < minYears {
			st.Insufficient++
			continue
		}
		var mean, sd float64
		if len(vals) == 1 {
			mean = vals[0]
		} else {
			mean, sd = stat.MeanStdDev(vals, nil)
		}
		res = append(res, Record{
			Cell:   k.cell,
			Month:  k.month,
			Tag:    tag,
			Mean:   mean,
			StdDev: sd,
			N:      len(g.years),
		})
	}
	st.Records = len(res)
	return res, st
}

// Add sums counts from another Stats.
func (s *Stats) Add(o Stats) {
	s.Values += o.Values
	s.Missing += o.Missing
	s.BadKeys += o.BadKeys
	s.BadValues += o.BadValues
	s.OtherTags += o.OtherTags
	s.Insufficient += o.Insufficient
	s.Records += o.Records
}
