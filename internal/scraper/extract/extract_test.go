package extract

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhadevv/anichin/internal/scraper/selector"
	"github.com/zhadevv/anichin/internal/testutil"
)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	def, err := DefaultDefinition()
	require.NoError(t, err)
	return New(def, newTestSite(t))
}

func parseFixture(t *testing.T, name string) selector.NodeSet {
	t.Helper()
	doc, err := selector.Parse([]byte(testutil.Fixture(t, name)))
	require.NoError(t, err)
	return doc
}

func TestPagination(t *testing.T) {
	e := newTestExtractor(t)

	t.Run("numbered pager", func(t *testing.T) {
		got := e.Pagination(parseFixture(t, "genre.html"))
		want := Pagination{
			CurrentPage: 2,
			TotalPages:  5,
			HasPrev:     true,
			HasNext:     true,
			Prev:        PageLink{URL: "https://anichin.cafe/genres/action/", Text: "« Sebelumnya"},
			Next:        PageLink{URL: "https://anichin.cafe/genres/action/page/3/", Text: "Berikutnya »"},
			Pages: []PageItem{
				{Number: 1, URL: "https://anichin.cafe/genres/action/"},
				{Number: 2, IsCurrent: true},
				{Number: 4, URL: "https://anichin.cafe/genres/action/page/4/"},
				{Number: 5, URL: "https://anichin.cafe/genres/action/page/5/"},
			},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Pagination() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("no pager", func(t *testing.T) {
		got := e.Pagination(selector.MustParse("<div class='listupd'></div>"))
		assert.Equal(t, Pagination{CurrentPage: 1, TotalPages: 1, Pages: []PageItem{}}, got)
	})

	t.Run("home pager with only next", func(t *testing.T) {
		doc := selector.MustParse(`<div class="hpage"><a href="/page/2/" class="r">Next »</a></div>`)
		got := e.Pagination(doc)
		assert.True(t, got.HasNext)
		assert.False(t, got.HasPrev)
		assert.Equal(t, "https://anichin.cafe/page/2/", got.Next.URL)
		assert.Equal(t, 1, got.CurrentPage)
		assert.Equal(t, 1, got.TotalPages)
	})
}

func TestListItems(t *testing.T) {
	e := newTestExtractor(t)
	doc := parseFixture(t, "genre.html")

	got := e.Listing(doc, PageOngoing).Lists
	want := []ListItem{
		{
			Title:     "Martial Universe",
			Slug:      "martial-universe",
			Thumbnail: "https://anichin.cafe/img/mu.jpg",
			Episode:   "Completed",
			Type:      "Donghua",
			Badge:     "Sub",
			URL:       "https://anichin.cafe/seri/martial-universe/",
		},
		{
			Title:     "The Great Ruler",
			Slug:      "the-great-ruler",
			Thumbnail: "/img/tgr.jpg",
			Type:      "Movie",
			URL:       "https://anichin.cafe/seri/the-great-ruler/",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Listing() mismatch (-want +got):\n%s", diff)
	}

	empty := e.Listing(selector.MustParse("<p>nothing</p>"), PageCompleted)
	assert.NotNil(t, empty.Lists)
	assert.Empty(t, empty.Lists)
}

func TestTaxonomy(t *testing.T) {
	e := newTestExtractor(t)
	doc := parseFixture(t, "genre.html")

	got := e.Taxonomy(doc, PageGenres, "action")
	assert.Equal(t, "genres", got.PageType)
	assert.Equal(t, "genre", got.Key)
	assert.Equal(t, TaxonomyTerm{Name: "Action", Slug: "action", TotalPages: 5}, got.Term)
	assert.Len(t, got.Lists, 2)

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded, "genre")
	assert.Contains(t, decoded, "page_type")
	assert.NotContains(t, decoded, "Key")

	studio := e.Taxonomy(selector.MustParse("<html></html>"), PageStudio, "b-cmay-pictures")
	assert.Equal(t, "studio", studio.Key)
	assert.Equal(t, 1, studio.Term.TotalPages)
	assert.Empty(t, studio.Term.Name)
}

func TestSeason(t *testing.T) {
	e := newTestExtractor(t)
	got := e.Season(parseFixture(t, "season.html"), "fall-2023")

	assert.Equal(t, "seasons", got.PageType)
	assert.Equal(t, SeasonRef{Year: "Fall 2023", Slug: "fall-2023"}, got.Season)
	assert.Equal(t, SeasonPagination{Note: "Seasons page does not have pagination"}, got.Pagination)

	want := []SeasonCard{
		{
			Title:             "Renegade Immortal",
			Slug:              "renegade-immortal",
			PostID:            "4821",
			Thumbnail:         "/wp-content/uploads/ri.jpg",
			Studio:            Studio{Name: "B.CMAY Pictures", ColorClass: "studio st-color-3"},
			EpisodesInfo:      "52 episodes · ONA",
			Type:              "ONA",
			EpisodesCount:     52,
			Status:            "Ongoing",
			AlternativeTitles: "Xian Ni",
			Rating:            8.5,
			Description:       "Wang Lin's path.",
			Genres: []Term{
				{Name: "Action", Slug: "action", URL: "https://anichin.cafe/genres/action/"},
				{Name: "Xianxia", Slug: "xianxia", URL: "https://anichin.cafe/genres/xianxia/"},
			},
			URL: "https://anichin.cafe/seri/renegade-immortal/",
		},
		{
			Title:        "Movie Only",
			Slug:         "movie-only",
			PostID:       "5000",
			EpisodesInfo: "Movie",
			Genres:       []Term{},
			URL:          "https://anichin.cafe/seri/movie-only/",
		},
	}
	if diff := cmp.Diff(want, got.Lists); diff != "" {
		t.Errorf("Season() lists mismatch (-want +got):\n%s", diff)
	}
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "", capitalize(""))
	assert.Equal(t, "Monday", capitalize("monday"))
}
