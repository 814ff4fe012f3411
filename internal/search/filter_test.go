package search

import (
	"fmt"
	"testing"

	"github.com/Togather-Foundation/gala/internal/domain/gala"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func fixture() *gala.Snapshot {
	return &gala.Snapshot{
		Gala: gala.Gala{ID: "g-1", Name: "Creative Africa Awards", Year: 2026, City: ptr("Abidjan")},
		Galas: []gala.Gala{
			{ID: "g-1", Name: "Creative Africa Awards", Year: 2026, City: ptr("Abidjan"), Venue: ptr("Sofitel Ivoire")},
			{ID: "g-0", Name: "Creative Africa Awards", Year: 2025, Theme: ptr("Future Forward")},
		},
		Categories: []gala.Category{
			{ID: "cat-1", Name: "Meilleure Campagne", Description: ptr("Campagnes intégrées"), Nominees: []gala.Nominee{
				{ID: "nom-1", Name: "Agence Soleil", Type: ptr("Agence Créative"), Location: ptr("Dakar")},
			}},
			{ID: "cat-2", Name: "Design Graphique", Nominees: []gala.Nominee{
				{ID: "nom-2", Name: "Studio X", Type: ptr("Agence Digitale"), Location: ptr("Lagos")},
				{ID: "nom-3", Name: "Atelier Bleu", Location: ptr("Accra")},
			}},
			{ID: "cat-3", Name: "Innovation", Description: ptr("Design et technologie")},
		},
		Sponsors: []gala.Sponsor{
			{ID: "sp-1", Name: "Orange", Tier: ptr("Platinum"), Website: ptr("https://orange.example")},
			{ID: "sp-2", Name: "Banque Atlantique"},
		},
		Gallery: []gala.GalleryImage{
			{ID: "img-1", URL: "https://img.example/1.jpg", Caption: ptr("Red carpet arrivals"), Album: ptr("Soirée")},
			{ID: "img-2", URL: "https://img.example/2.jpg", Album: ptr("Backstage")},
			{ID: "img-3", URL: "https://img.example/3.jpg"},
		},
	}
}

func TestFilter_NomineeByLocation(t *testing.T) {
	got := Filter("lagos", "nominees", fixture())

	require.Len(t, got, 1)
	assert.Equal(t, "nom-2", got[0].ID)
	assert.Equal(t, "Studio X", got[0].Title)
	assert.Contains(t, got[0].Subtitle, "Agence Digitale")
	assert.Contains(t, got[0].Subtitle, "Lagos")
	assert.Equal(t, SectionNominees, got[0].Kind)
}

func TestFilter_NomineesFlattenInCategoryOrder(t *testing.T) {
	got := Filter("a", "nominees", fixture())

	ids := make([]string, 0, len(got))
	for _, s := range got {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"nom-1", "nom-2", "nom-3"}, ids)
}

func TestFilter_MissingOptionalFields(t *testing.T) {
	got := Filter("accra", "nominees", fixture())

	require.Len(t, got, 1)
	assert.Equal(t, "Accra", got[0].Subtitle)
}

func TestFilter_TruncatesAfterFiltering(t *testing.T) {
	snap := &gala.Snapshot{}
	snap.Panels = append(snap.Panels, gala.Panel{ID: "p-miss", Title: "Opening remarks"})
	for i := 1; i <= 9; i++ {
		snap.Panels = append(snap.Panels, gala.Panel{ID: fmt.Sprintf("p-%d", i), Title: fmt.Sprintf("The Future of Craft %d", i)})
	}

	got := Filter("future", "panels", snap)

	require.Len(t, got, MaxSuggestions)
	for i, s := range got {
		assert.Equal(t, fmt.Sprintf("p-%d", i+1), s.ID)
	}
}

func TestFilterN_LimitNeverExceedsMaxSuggestions(t *testing.T) {
	snap := &gala.Snapshot{}
	for i := 1; i <= 12; i++ {
		snap.Panels = append(snap.Panels, gala.Panel{ID: fmt.Sprintf("p-%d", i), Title: fmt.Sprintf("Craft Talk %d", i)})
	}

	for _, limit := range []int{-1, 0, MaxSuggestions + 1, 20} {
		assert.Len(t, FilterN("craft", "panels", snap, limit), MaxSuggestions, "limit=%d", limit)
	}
	assert.Len(t, FilterN("craft", "panels", snap, 3), 3)
}

func TestFilter_EmptyQuery(t *testing.T) {
	snap := fixture()
	for _, tag := range []string{"galas", "categories", "nominees", "panels", "sponsors", "gallery", "bogus", ""} {
		for _, q := range []string{"", " ", "\t\n"} {
			got := Filter(q, tag, snap)
			assert.NotNil(t, got)
			assert.Empty(t, got, "tag=%q query=%q", tag, q)
		}
	}
}

func TestFilter_NilSnapshot(t *testing.T) {
	assert.Empty(t, Filter("design", "categories", nil))
}

func TestFilter_UnknownSectionFallsBackToCategoryNames(t *testing.T) {
	snap := fixture()

	for _, q := range []string{"design", "Innovation", "lagos", "campagnes"} {
		want := Filter(q, "no-such-section", snap)
		assert.Equal(t, want, FilterN(q, "", snap, MaxSuggestions), q)
	}

	got := Filter("design", "no-such-section", snap)
	require.Len(t, got, 1)
	assert.Equal(t, "cat-2", got[0].ID)

	// The categories section also matches descriptions.
	got = Filter("design", "categories", snap)
	require.Len(t, got, 2)
	assert.Equal(t, "cat-3", got[1].ID)
	assert.Equal(t, "Design et technologie", got[1].Subtitle)
}

func TestFilter_IsIdempotent(t *testing.T) {
	snap := fixture()
	first := Filter("a", "sponsors", snap)
	second := Filter("a", "sponsors", snap)
	assert.Equal(t, first, second)
}

func TestFilter_CaseAndAccentCase(t *testing.T) {
	snap := fixture()

	got := Filter("SOIRÉE", "gallery", snap)
	require.Len(t, got, 1)
	assert.Equal(t, "img-1", got[0].ID)

	got = Filter("intÉgrées", "categories", snap)
	require.Len(t, got, 1)
	assert.Equal(t, "cat-1", got[0].ID)
}

func TestFilter_SectionTagIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, Filter("orange", "sponsors", fixture()), Filter("orange", " Sponsors ", fixture()))
}

func TestFilter_Sections(t *testing.T) {
	snap := fixture()
	tests := []struct {
		name     string
		query    string
		tag      string
		ids      []string
		subtitle string
	}{
		{name: "gala by venue", query: "sofitel", tag: "galas", ids: []string{"g-1"}, subtitle: "2026 · Abidjan"},
		{name: "gala by theme", query: "forward", tag: "galas", ids: []string{"g-0"}, subtitle: "2025"},
		{name: "sponsor by tier", query: "platinum", tag: "sponsors", ids: []string{"sp-1"}, subtitle: "Platinum"},
		{name: "sponsor by website", query: "orange.example", tag: "sponsors", ids: []string{"sp-1"}, subtitle: "Platinum"},
		{name: "sponsor without tier", query: "banque", tag: "sponsors", ids: []string{"sp-2"}},
		{name: "gallery by album", query: "backstage", tag: "gallery", ids: []string{"img-2"}, subtitle: "Backstage"},
		{name: "nominee by type", query: "créative", tag: "nominees", ids: []string{"nom-1"}, subtitle: "Agence Créative · Dakar"},
		{name: "no match", query: "zzz", tag: "panels", ids: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(tt.query, tt.tag, snap)
			ids := []string{}
			for _, s := range got {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.ids, ids)
			if len(got) == 1 {
				assert.Equal(t, tt.subtitle, got[0].Subtitle)
			}
		})
	}
}

func TestFilter_GalleryTitleFallback(t *testing.T) {
	snap := fixture()
	got := Filter("backstage", "gallery", snap)
	require.Len(t, got, 1)
	assert.Equal(t, "Backstage", got[0].Title)

	assert.Equal(t, "Image", sections[SectionGallery].(rule[gala.GalleryImage]).title(snap.Gallery[2]))
}

func TestFilter_DeduplicatesIDs(t *testing.T) {
	snap := &gala.Snapshot{Sponsors: []gala.Sponsor{
		{ID: "sp-1", Name: "Orange"},
		{ID: "sp-1", Name: "Orange (duplicate row)"},
		{ID: "sp-2", Name: "Orange Money"},
	}}

	got := Filter("orange", "sponsors", snap)
	require.Len(t, got, 2)
	assert.Equal(t, "sp-1", got[0].ID)
	assert.Equal(t, "sp-2", got[1].ID)
}

func TestFilterN_Limit(t *testing.T) {
	snap := fixture()
	assert.Len(t, FilterN("a", "nominees", snap, 2), 2)
	assert.Len(t, FilterN("a", "nominees", snap, 0), 3)
}

func TestFilter_GalasFallsBackToSnapshotGala(t *testing.T) {
	snap := &gala.Snapshot{Gala: gala.Gala{ID: "g-9", Name: "Solo Gala"}}
	got := Filter("solo", "galas", snap)
	require.Len(t, got, 1)
	assert.Equal(t, "g-9", got[0].ID)
}

func TestParseSection(t *testing.T) {
	for _, s := range Sections() {
		parsed, ok := ParseSection(string(s))
		assert.True(t, ok)
		assert.Equal(t, s, parsed)
	}
	_, ok := ParseSection("speakers")
	assert.False(t, ok)
}
