package search

import (
	"strconv"
	"strings"

	"github.com/Togather-Foundation/gala/internal/domain/gala"
)

// Section is the content area a search targets.
type Section string

const (
	SectionGalas      Section = Section(gala.KindGala)
	SectionCategories Section = Section(gala.KindCategory)
	SectionNominees   Section = Section(gala.KindNominee)
	SectionPanels     Section = Section(gala.KindPanel)
	SectionSponsors   Section = Section(gala.KindSponsor)
	SectionGallery    Section = Section(gala.KindGallery)
)

// ParseSection reports whether tag names a searchable section.
func ParseSection(tag string) (Section, bool) {
	s := Section(strings.ToLower(strings.TrimSpace(tag)))
	_, ok := sections[s]
	return s, ok
}

// Sections lists the recognised section tags in display order.
func Sections() []Section {
	return []Section{SectionGalas, SectionCategories, SectionNominees, SectionPanels, SectionSponsors, SectionGallery}
}

// field extracts one optional text value; nil means absent.
type field[T any] func(T) *string

// rule describes how one section turns snapshot records into suggestions.
type rule[T any] struct {
	kind     Section
	items    func(*gala.Snapshot) []T
	id       func(T) string
	match    []field[T]
	title    func(T) string
	subtitle []field[T]
}

type matcher interface {
	collect(m *folder, snap *gala.Snapshot, limit int) []Suggestion
}

func (r rule[T]) collect(m *folder, snap *gala.Snapshot, limit int) []Suggestion {
	out := make([]Suggestion, 0, limit)
	seen := make(map[string]struct{}, limit)
	for _, item := range r.items(snap) {
		if len(out) == limit {
			break
		}
		if !r.matches(m, item) {
			continue
		}
		id := r.id(item)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, Suggestion{
			ID:       id,
			Title:    r.title(item),
			Subtitle: join(item, r.subtitle),
			Kind:     r.kind,
		})
	}
	return out
}

func (r rule[T]) matches(m *folder, item T) bool {
	for _, f := range r.match {
		if v := f(item); v != nil && m.contains(*v) {
			return true
		}
	}
	return false
}

func join[T any](item T, fields []field[T]) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if v := f(item); v != nil {
			if s := strings.TrimSpace(*v); s != "" {
				parts = append(parts, s)
			}
		}
	}
	return strings.Join(parts, " · ")
}

func text(s string) *string {
	return &s
}

var categoryRule = rule[gala.Category]{
	kind:     SectionCategories,
	items:    func(s *gala.Snapshot) []gala.Category { return s.Categories },
	id:       func(c gala.Category) string { return c.ID },
	match:    []field[gala.Category]{categoryName, categoryDescription},
	title:    func(c gala.Category) string { return c.Name },
	subtitle: []field[gala.Category]{categoryDescription},
}

// defaultRule is the search used for unrecognised section tags.
var defaultRule = rule[gala.Category]{
	kind:     SectionCategories,
	items:    categoryRule.items,
	id:       categoryRule.id,
	match:    []field[gala.Category]{categoryName},
	title:    categoryRule.title,
	subtitle: categoryRule.subtitle,
}

func categoryName(c gala.Category) *string        { return text(c.Name) }
func categoryDescription(c gala.Category) *string { return c.Description }

var sections = map[Section]matcher{
	SectionGalas: rule[gala.Gala]{
		kind:  SectionGalas,
		items: galas,
		id:    func(g gala.Gala) string { return g.ID },
		match: []field[gala.Gala]{
			func(g gala.Gala) *string { return text(g.Name) },
			func(g gala.Gala) *string { return g.Theme },
			func(g gala.Gala) *string { return g.Venue },
			func(g gala.Gala) *string { return g.City },
		},
		title: func(g gala.Gala) string { return g.Name },
		subtitle: []field[gala.Gala]{
			func(g gala.Gala) *string {
				if g.Year == 0 {
					return nil
				}
				return text(strconv.Itoa(g.Year))
			},
			func(g gala.Gala) *string { return g.City },
		},
	},
	SectionCategories: categoryRule,
	SectionNominees: rule[gala.Nominee]{
		kind:  SectionNominees,
		items: nominees,
		id:    func(n gala.Nominee) string { return n.ID },
		match: []field[gala.Nominee]{
			func(n gala.Nominee) *string { return text(n.Name) },
			func(n gala.Nominee) *string { return n.Type },
			func(n gala.Nominee) *string { return n.Location },
		},
		title: func(n gala.Nominee) string { return n.Name },
		subtitle: []field[gala.Nominee]{
			func(n gala.Nominee) *string { return n.Type },
			func(n gala.Nominee) *string { return n.Location },
		},
	},
	SectionPanels: rule[gala.Panel]{
		kind:  SectionPanels,
		items: func(s *gala.Snapshot) []gala.Panel { return s.Panels },
		id:    func(p gala.Panel) string { return p.ID },
		match: []field[gala.Panel]{
			func(p gala.Panel) *string { return text(p.Title) },
			func(p gala.Panel) *string { return p.Theme },
			func(p gala.Panel) *string { return p.Moderator },
		},
		title: func(p gala.Panel) string { return p.Title },
		subtitle: []field[gala.Panel]{
			func(p gala.Panel) *string { return p.Theme },
			func(p gala.Panel) *string { return p.Moderator },
		},
	},
	SectionSponsors: rule[gala.Sponsor]{
		kind:  SectionSponsors,
		items: func(s *gala.Snapshot) []gala.Sponsor { return s.Sponsors },
		id:    func(s gala.Sponsor) string { return s.ID },
		match: []field[gala.Sponsor]{
			func(s gala.Sponsor) *string { return text(s.Name) },
			func(s gala.Sponsor) *string { return s.Tier },
			func(s gala.Sponsor) *string { return s.Website },
		},
		title:    func(s gala.Sponsor) string { return s.Name },
		subtitle: []field[gala.Sponsor]{func(s gala.Sponsor) *string { return s.Tier }},
	},
	SectionGallery: rule[gala.GalleryImage]{
		kind:  SectionGallery,
		items: func(s *gala.Snapshot) []gala.GalleryImage { return s.Gallery },
		id:    func(g gala.GalleryImage) string { return g.ID },
		match: []field[gala.GalleryImage]{
			func(g gala.GalleryImage) *string { return g.Caption },
			func(g gala.GalleryImage) *string { return g.Album },
		},
		title: func(g gala.GalleryImage) string {
			switch {
			case g.Caption != nil && *g.Caption != "":
				return *g.Caption
			case g.Album != nil && *g.Album != "":
				return *g.Album
			default:
				return "Image"
			}
		},
		subtitle: []field[gala.GalleryImage]{func(g gala.GalleryImage) *string { return g.Album }},
	},
}

// galas falls back to the snapshot's own gala when the list is empty.
func galas(s *gala.Snapshot) []gala.Gala {
	if len(s.Galas) > 0 || s.Gala.ID == "" {
		return s.Galas
	}
	return []gala.Gala{s.Gala}
}

// nominees flattens every category's nominees in category order.
func nominees(s *gala.Snapshot) []gala.Nominee {
	n := 0
	for _, c := range s.Categories {
		n += len(c.Nominees)
	}
	out := make([]gala.Nominee, 0, n)
	for _, c := range s.Categories {
		out = append(out, c.Nominees...)
	}
	return out
}
