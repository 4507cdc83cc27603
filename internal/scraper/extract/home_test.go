package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhadevv/anichin/internal/scraper/selector"
)

func TestHome(t *testing.T) {
	e := newTestExtractor(t)
	home := e.Home(parseFixture(t, "home.html"))

	t.Run("slider", func(t *testing.T) {
		want := []SliderItem{
			{
				Title:       "Battle Through the Heavens",
				Slug:        "battle-through-the-heavens",
				Description: "Xiao Yan returns to the Jia Ma Empire.",
				Thumbnail:   "https://anichin.cafe/wp-content/uploads/btth-banner.jpg",
				URL:         "https://anichin.cafe/seri/battle-through-the-heavens/",
			},
			{
				Title:       "Soul Land 2",
				Slug:        "soul-land-2",
				Description: "Tang Wulin grows up.",
				Thumbnail:   "https://anichin.cafe/wp-content/uploads/soul-land.jpg",
				URL:         "https://anichin.cafe/seri/soul-land-2/",
			},
		}
		if diff := cmp.Diff(want, home.Slider); diff != "" {
			t.Errorf("slider mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("popular today", func(t *testing.T) {
		want := []ListItem{{
			Title:     "Perfect World Episode 190 Subtitle Indonesia",
			Slug:      "perfect-world",
			Thumbnail: "https://anichin.cafe/wp-content/uploads/perfect-world.jpg",
			Episode:   "Ep 190",
			Type:      "Donghua",
			Badge:     "Sub",
			URL:       "https://anichin.cafe/perfect-world-episode-190-subtitle-indonesia/",
		}}
		if diff := cmp.Diff(want, home.PopularToday); diff != "" {
			t.Errorf("popular today mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("latest release", func(t *testing.T) {
		want := []ListItem{{
			Title:     "Shrouding the Heavens Episode 05",
			Slug:      "shrouding-the-heavens",
			Thumbnail: "/img/sth.jpg",
			Episode:   "Ep 05",
			Type:      "ONA",
			Badge:     "Sub",
			URL:       "https://anichin.cafe/shrouding-the-heavens-episode-05-subtitle-indonesia/",
		}}
		if diff := cmp.Diff(want, home.LatestRelease); diff != "" {
			t.Errorf("latest release mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("recommendation", func(t *testing.T) {
		assert.Equal(t, []RecommendationTab{
			{ID: "tab-action", Name: "Action", Active: true},
			{ID: "tab-fantasy", Name: "Fantasy"},
		}, home.Recommendation.Tabs)

		require.Contains(t, home.Recommendation.Data, "tab-action")
		action := home.Recommendation.Data["tab-action"]
		require.Len(t, action, 1)
		assert.Equal(t, "Martial Master", action[0].Title)
		assert.Equal(t, "martial-master", action[0].Slug)
		assert.Equal(t, "Ongoing", action[0].Status)
		assert.Equal(t, "Ep 520", action[0].Episode)

		assert.Equal(t, []ListItem{}, home.Recommendation.Data["tab-fantasy"])
	})

	t.Run("pagination", func(t *testing.T) {
		assert.True(t, home.Pagination.HasNext)
		assert.Equal(t, PageLink{URL: "https://anichin.cafe/page/2/", Text: "Next"}, home.Pagination.Next)
		assert.Equal(t, 1, home.Pagination.CurrentPage)
	})
}

func TestHomeWithoutLatestMarker(t *testing.T) {
	e := newTestExtractor(t)
	doc := selector.MustParse(`
<div class="bixbox"><div class="listupd normal"><article class="bs"><div class="bsx">
  <a href="/seri/a/" class="tip"><div class="tt"><h2>A</h2></div></a>
</div></article></div></div>`)

	home := e.Home(doc)
	assert.Equal(t, []ListItem{}, home.LatestRelease)
	assert.Equal(t, []SliderItem{}, home.Slider)
	assert.Equal(t, []RecommendationTab{}, home.Recommendation.Tabs)
	assert.Empty(t, home.Recommendation.Data)
}

func TestSearch(t *testing.T) {
	e := newTestExtractor(t)
	got := e.Search(parseFixture(t, "genre.html"), "martial")

	assert.Equal(t, "martial", got.Query)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Martial Universe", got.Items[0].Title)
	assert.Equal(t, 5, got.Pagination.TotalPages)

	empty := e.Search(selector.MustParse("<div class='listupd'></div>"), "nothing")
	assert.Equal(t, []ListItem{}, empty.Items)
	assert.Equal(t, 1, empty.Pagination.TotalPages)
}
