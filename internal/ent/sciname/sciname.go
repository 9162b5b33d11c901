// Package sciname normalizes scientific names, so that names coming from
// different sources can be matched with each other.
package sciname

import (
	"strings"

	"github.com/gnames/gnparser"
	"github.com/gnames/gnuuid"
)

// Normalizer converts scientific names to their canonical forms.
// It is not safe for concurrent use.
type Normalizer struct {
	gnp gnparser.GNparser
}

// New creates a Normalizer.
func New() *Normalizer {
	gnp := gnparser.New(gnparser.NewConfig())
	return &Normalizer{gnp: gnp}
}

// Canonical returns a simple canonical form of a name (without authors,
// years, and ranks). Underscores are treated as spaces. If a name cannot be
// parsed, its verbatim form with collapsed spaces is returned.
func (n *Normalizer) Canonical(name string) string {
	name = strings.Join(strings.Fields(strings.ReplaceAll(name, "_", " ")), " ")
	if name == "" {
		return ""
	}
	p := n.gnp.ParseName(name)
	if !p.Parsed || p.Canonical == nil || p.Canonical.Simple == "" {
		return name
	}
	return p.Canonical.Simple
}

// ID returns a UUID v5 identifier of a canonical form.
func ID(canonical string) string {
	return gnuuid.New(canonical).String()
}
