// Package gala holds the microsite content model: galas and the
// categories, nominees, panels, sponsors and gallery images that belong to
// them.
package gala

import (
	"fmt"
	"strings"
	"time"
)

// Kind identifies a record type. Values double as URL segments and
// search section tags.
type Kind string

const (
	KindGala     Kind = "galas"
	KindCategory Kind = "categories"
	KindNominee  Kind = "nominees"
	KindPanel    Kind = "panels"
	KindSpeaker  Kind = "speakers"
	KindSponsor  Kind = "sponsors"
	KindGallery  Kind = "gallery"
)

var kinds = []Kind{KindGala, KindCategory, KindNominee, KindPanel, KindSpeaker, KindSponsor, KindGallery}

func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

func ParseKind(value string) (Kind, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, k := range kinds {
		if string(k) == value {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown record kind %q", value)
}

type Gala struct {
	ID       string     `json:"id"`
	Name     string     `json:"name" validate:"required,max=200"`
	Year     int        `json:"year" validate:"omitempty,min=1900,max=2200"`
	Theme    *string    `json:"theme,omitempty" validate:"omitempty,max=300"`
	Venue    *string    `json:"venue,omitempty" validate:"omitempty,max=300"`
	City     *string    `json:"city,omitempty" validate:"omitempty,max=120"`
	StartsAt *time.Time `json:"starts_at,omitempty"`
	IsActive bool       `json:"is_active"`
}

type Category struct {
	ID          string    `json:"id"`
	GalaID      string    `json:"gala_id"`
	Name        string    `json:"name" validate:"required,max=200"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	Position    int       `json:"position" validate:"min=0"`
	Nominees    []Nominee `json:"nominees"`
}

// Nominee is an agency, studio or individual nominated in a category.
type Nominee struct {
	ID          string  `json:"id"`
	CategoryID  string  `json:"category_id" validate:"required"`
	Name        string  `json:"name" validate:"required,max=200"`
	Type        *string `json:"type,omitempty" validate:"omitempty,max=120"`
	Location    *string `json:"location,omitempty" validate:"omitempty,max=120"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Website     *string `json:"website,omitempty" validate:"omitempty,url,max=500"`
	ImageURL    *string `json:"image_url,omitempty" validate:"omitempty,url,max=500"`
	IsWinner    bool    `json:"is_winner"`
	Position    int     `json:"position" validate:"min=0"`
}

type Panel struct {
	ID        string     `json:"id"`
	GalaID    string     `json:"gala_id"`
	Title     string     `json:"title" validate:"required,max=200"`
	Theme     *string    `json:"theme,omitempty" validate:"omitempty,max=300"`
	Moderator *string    `json:"moderator,omitempty" validate:"omitempty,max=200"`
	StartsAt  *time.Time `json:"starts_at,omitempty"`
	Position  int        `json:"position" validate:"min=0"`
	Speakers  []Speaker  `json:"speakers"`
}

type Speaker struct {
	ID          string  `json:"id"`
	PanelID     string  `json:"panel_id" validate:"required"`
	Name        string  `json:"name" validate:"required,max=200"`
	Affiliation *string `json:"affiliation,omitempty" validate:"omitempty,max=200"`
	Bio         *string `json:"bio,omitempty" validate:"omitempty,max=2000"`
	Position    int     `json:"position" validate:"min=0"`
}

type Sponsor struct {
	ID       string  `json:"id"`
	GalaID   string  `json:"gala_id"`
	Name     string  `json:"name" validate:"required,max=200"`
	Tier     *string `json:"tier,omitempty" validate:"omitempty,max=60"`
	Website  *string `json:"website,omitempty" validate:"omitempty,url,max=500"`
	LogoURL  *string `json:"logo_url,omitempty" validate:"omitempty,url,max=500"`
	Position int     `json:"position" validate:"min=0"`
}

type GalleryImage struct {
	ID       string  `json:"id"`
	GalaID   string  `json:"gala_id"`
	URL      string  `json:"url" validate:"required,url,max=500"`
	Caption  *string `json:"caption,omitempty" validate:"omitempty,max=300"`
	Album    *string `json:"album,omitempty" validate:"omitempty,max=120"`
	Position int     `json:"position" validate:"min=0"`
}

// Snapshot is the full content of one gala as last loaded from storage.
// Snapshots are shared between readers and must not be modified.
type Snapshot struct {
	Gala       Gala           `json:"gala"`
	Galas      []Gala         `json:"galas"`
	Categories []Category     `json:"categories"`
	Panels     []Panel        `json:"panels"`
	Sponsors   []Sponsor      `json:"sponsors"`
	Gallery    []GalleryImage `json:"gallery"`
	LoadedAt   time.Time      `json:"loaded_at"`
}

// Contains reports whether a record of kind with id belongs to the
// snapshot's gala.
func (s *Snapshot) Contains(kind Kind, id string) bool {
	if s == nil {
		return false
	}
	switch kind {
	case KindGala:
		return s.Gala.ID == id
	case KindCategory:
		for _, c := range s.Categories {
			if c.ID == id {
				return true
			}
		}
	case KindNominee:
		for _, c := range s.Categories {
			for _, n := range c.Nominees {
				if n.ID == id {
					return true
				}
			}
		}
	case KindPanel:
		for _, p := range s.Panels {
			if p.ID == id {
				return true
			}
		}
	case KindSpeaker:
		for _, p := range s.Panels {
			for _, sp := range p.Speakers {
				if sp.ID == id {
					return true
				}
			}
		}
	case KindSponsor:
		for _, sp := range s.Sponsors {
			if sp.ID == id {
				return true
			}
		}
	case KindGallery:
		for _, img := range s.Gallery {
			if img.ID == id {
				return true
			}
		}
	}
	return false
}
