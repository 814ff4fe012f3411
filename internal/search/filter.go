// Package search produces type-ahead suggestions from a gala snapshot.
//
// Matching is a case-insensitive substring test over a fixed list of
// fields per section, in snapshot order, with no scoring. Absent optional
// fields never match. Filter has no state and is safe to call on every
// keystroke from any number of goroutines.
package search

import (
	"strings"

	"github.com/Togather-Foundation/gala/internal/domain/gala"
	"github.com/Togather-Foundation/gala/internal/metrics"
	"golang.org/x/text/cases"
)

// MaxSuggestions caps a suggestion list.
const MaxSuggestions = 8

type Suggestion struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Subtitle string  `json:"subtitle,omitempty"`
	Kind     Section `json:"kind"`
}

// Filter returns up to MaxSuggestions matches for query in the section
// named by tag. Unknown tags search category names. An empty or blank
// query returns an empty list.
func Filter(query, tag string, snap *gala.Snapshot) []Suggestion {
	return FilterN(query, tag, snap, MaxSuggestions)
}

// FilterN is Filter with a custom cap. A limit outside 1..MaxSuggestions
// means MaxSuggestions.
func FilterN(query, tag string, snap *gala.Snapshot, limit int) []Suggestion {
	if limit <= 0 || limit > MaxSuggestions {
		limit = MaxSuggestions
	}

	section, known := ParseSection(tag)
	label := string(section)
	var m matcher = defaultRule
	if known {
		m = sections[section]
	} else {
		label = "default"
	}

	query = strings.TrimSpace(query)
	if query == "" || snap == nil {
		return []Suggestion{}
	}

	out := m.collect(newFolder(query), snap, limit)
	metrics.SuggestionResults.WithLabelValues(label).Observe(float64(len(out)))
	return out
}

// folder holds a case-folded query. Casers keep state, so each Filter
// call gets its own.
type folder struct {
	caser cases.Caser
	query string
}

func newFolder(query string) *folder {
	c := cases.Fold()
	return &folder{caser: c, query: c.String(query)}
}

func (f *folder) contains(value string) bool {
	if value == "" {
		return false
	}
	return strings.Contains(f.caser.String(value), f.query)
}
