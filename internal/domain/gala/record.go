package gala

import (
	"fmt"

	"github.com/Togather-Foundation/gala/internal/sanitize"
)

// Record is one editable row. Implemented by pointers to the content
// types in this package.
type Record interface {
	RecordKind() Kind
	RecordID() string
	setID(id string)
	// scope attaches gala-owned records to galaID.
	scope(galaID string)
	// parent names the record this one nests under, if any.
	parent() (Kind, string)
	clean()
}

// NewRecord returns an empty record of kind, ready to decode into.
func NewRecord(kind Kind) (Record, error) {
	switch kind {
	case KindGala:
		return &Gala{}, nil
	case KindCategory:
		return &Category{}, nil
	case KindNominee:
		return &Nominee{}, nil
	case KindPanel:
		return &Panel{}, nil
	case KindSpeaker:
		return &Speaker{}, nil
	case KindSponsor:
		return &Sponsor{}, nil
	case KindGallery:
		return &GalleryImage{}, nil
	default:
		return nil, fmt.Errorf("unknown record kind %q", kind)
	}
}

// SetID replaces the id of rec, e.g. with the one from a request path.
func SetID(rec Record, id string) {
	rec.setID(id)
}

func (g *Gala) RecordKind() Kind       { return KindGala }
func (g *Gala) RecordID() string       { return g.ID }
func (g *Gala) setID(id string)        { g.ID = id }
func (g *Gala) scope(string)           {}
func (g *Gala) parent() (Kind, string) { return "", "" }
func (g *Gala) clean() {
	g.Name = sanitize.Text(g.Name)
	g.Theme = sanitize.Optional(g.Theme)
	g.Venue = sanitize.Optional(g.Venue)
	g.City = sanitize.Optional(g.City)
}

func (c *Category) RecordKind() Kind       { return KindCategory }
func (c *Category) RecordID() string       { return c.ID }
func (c *Category) setID(id string)        { c.ID = id }
func (c *Category) scope(galaID string)    { c.GalaID = galaID }
func (c *Category) parent() (Kind, string) { return "", "" }
func (c *Category) clean() {
	c.Name = sanitize.Text(c.Name)
	c.Description = sanitize.Optional(c.Description)
	c.Nominees = nil
}

func (n *Nominee) RecordKind() Kind       { return KindNominee }
func (n *Nominee) RecordID() string       { return n.ID }
func (n *Nominee) setID(id string)        { n.ID = id }
func (n *Nominee) scope(string)           {}
func (n *Nominee) parent() (Kind, string) { return KindCategory, n.CategoryID }
func (n *Nominee) clean() {
	n.Name = sanitize.Text(n.Name)
	n.Type = sanitize.Optional(n.Type)
	n.Location = sanitize.Optional(n.Location)
	n.Description = sanitize.Optional(n.Description)
	n.Website = sanitize.Optional(n.Website)
	n.ImageURL = sanitize.Optional(n.ImageURL)
}

func (p *Panel) RecordKind() Kind       { return KindPanel }
func (p *Panel) RecordID() string       { return p.ID }
func (p *Panel) setID(id string)        { p.ID = id }
func (p *Panel) scope(galaID string)    { p.GalaID = galaID }
func (p *Panel) parent() (Kind, string) { return "", "" }
func (p *Panel) clean() {
	p.Title = sanitize.Text(p.Title)
	p.Theme = sanitize.Optional(p.Theme)
	p.Moderator = sanitize.Optional(p.Moderator)
	p.Speakers = nil
}

func (s *Speaker) RecordKind() Kind       { return KindSpeaker }
func (s *Speaker) RecordID() string       { return s.ID }
func (s *Speaker) setID(id string)        { s.ID = id }
func (s *Speaker) scope(string)           {}
func (s *Speaker) parent() (Kind, string) { return KindPanel, s.PanelID }
func (s *Speaker) clean() {
	s.Name = sanitize.Text(s.Name)
	s.Affiliation = sanitize.Optional(s.Affiliation)
	s.Bio = sanitize.Optional(s.Bio)
}

func (s *Sponsor) RecordKind() Kind       { return KindSponsor }
func (s *Sponsor) RecordID() string       { return s.ID }
func (s *Sponsor) setID(id string)        { s.ID = id }
func (s *Sponsor) scope(galaID string)    { s.GalaID = galaID }
func (s *Sponsor) parent() (Kind, string) { return "", "" }
func (s *Sponsor) clean() {
	s.Name = sanitize.Text(s.Name)
	s.Tier = sanitize.Optional(s.Tier)
	s.Website = sanitize.Optional(s.Website)
	s.LogoURL = sanitize.Optional(s.LogoURL)
}

func (g *GalleryImage) RecordKind() Kind       { return KindGallery }
func (g *GalleryImage) RecordID() string       { return g.ID }
func (g *GalleryImage) setID(id string)        { g.ID = id }
func (g *GalleryImage) scope(galaID string)    { g.GalaID = galaID }
func (g *GalleryImage) parent() (Kind, string) { return "", "" }
func (g *GalleryImage) clean() {
	g.URL = sanitize.Text(g.URL)
	g.Caption = sanitize.Optional(g.Caption)
	g.Album = sanitize.Optional(g.Album)
}
