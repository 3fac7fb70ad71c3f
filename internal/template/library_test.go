package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func libraryWith(t *testing.T, entries ...struct{ name, desc, category string }) *Library {
	t.Helper()
	lib := NewLibrary()
	for _, e := range entries {
		tmpl, err := SimpleText(e.name, "title", 5.0, 1920, 1080)
		require.NoError(t, err)
		tmpl.Info.Description = e.desc
		lib.Add(tmpl, e.category)
	}
	return lib
}

func TestLibraryCategories(t *testing.T) {
	lib := libraryWith(t,
		struct{ name, desc, category string }{"intro", "opening card", "social"},
		struct{ name, desc, category string }{"outro", "closing card", "social"},
		struct{ name, desc, category string }{"lower-third", "name strap", ""},
	)

	assert.Equal(t, []string{"intro", "lower-third", "outro"}, lib.Names())
	assert.Equal(t, []string{"general", "social"}, lib.Categories())
	assert.Equal(t, []string{"intro", "outro"}, lib.NamesInCategory("social"))
	assert.Equal(t, []string{"lower-third"}, lib.NamesInCategory("general"))
	assert.Empty(t, lib.NamesInCategory("missing"))
}

func TestLibrarySearch(t *testing.T) {
	lib := libraryWith(t,
		struct{ name, desc, category string }{"Product Promo", "fast cut promo", ""},
		struct{ name, desc, category string }{"intro", "opening CARD for promos", ""},
		struct{ name, desc, category string }{"outro", "closing slate", ""},
	)

	assert.Equal(t, []string{"Product Promo", "intro"}, lib.Search("promo"))
	assert.Equal(t, []string{"intro"}, lib.Search("card"))
	assert.Empty(t, lib.Search("nothing"))
}

func TestLibrarySearchTags(t *testing.T) {
	lib := NewLibrary()
	tmpl, err := SimpleText("intro", "title", 5.0, 1920, 1080)
	require.NoError(t, err)
	tmpl.Info.Tags = []string{"Vertical", "shorts"}
	lib.Add(tmpl, "")

	assert.Equal(t, []string{"intro"}, lib.Search("vertical"))
}

func TestLibraryReAddReplaces(t *testing.T) {
	lib := NewLibrary()
	first, err := SimpleText("intro", "title", 5.0, 1920, 1080)
	require.NoError(t, err)
	lib.Add(first, "social")

	second, err := SimpleText("intro", "headline", 3.0, 1080, 1920)
	require.NoError(t, err)
	lib.Add(second, "social")

	assert.Equal(t, 1, lib.Len())
	got, ok := lib.Get("intro")
	require.True(t, ok)
	assert.Equal(t, []string{"headline"}, got.RequiredKeys())
	assert.Equal(t, []string{"intro"}, lib.NamesInCategory("social"))
}
