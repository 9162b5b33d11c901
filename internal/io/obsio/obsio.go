// Package obsio reads bird observations from CSV files or from a MySQL
// table.
package obsio

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gnames/phenogrid/internal/ent/obs"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
}

// ParseDate parses dates in formats commonly found in observation exports.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse date %q", s)
}

// newObservation converts raw fields into an Observation.
func newObservation(species, date, lon, lat string) (obs.Observation, error) {
	var res obs.Observation
	species = strings.TrimSpace(species)
	if species == "" {
		return res, fmt.Errorf("empty species name")
	}
	d, err := ParseDate(date)
	if err != nil {
		return res, err
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return res, fmt.Errorf("cannot parse longitude %q", lon)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return res, fmt.Errorf("cannot parse latitude %q", lat)
	}
	res = obs.Observation{Species: species, Date: d, Lon: x, Lat: y}
	return res, nil
}
