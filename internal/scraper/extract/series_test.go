package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/zhadevv/anichin/internal/scraper/selector"
)

func TestSeries(t *testing.T) {
	e := newTestExtractor(t)
	got := e.Series(parseFixture(t, "series.html"), "renegade-immortal")

	want := SeriesDetail{
		ID:   "4821",
		Slug: "renegade-immortal",
		Cover: Cover{
			Banner:    "https://anichin.cafe/wp-content/uploads/ri-banner.jpg",
			Thumbnail: "https://anichin.cafe/wp-content/uploads/ri-thumb.jpg",
		},
		Title:            "Renegade Immortal",
		AlterTitle:       "Xian Ni, 仙逆",
		Mindesc:          "Watch Renegade Immortal subtitle Indonesia.",
		Synopsis:         "Wang Lin is an ordinary boy.",
		SynopsisMarkdown: "Wang Lin is an **ordinary** boy.",
		Information: SeriesInformation{
			Information: Information{
				Status:   "Ongoing",
				Network:  []NamedLink{{Name: "Tencent Penguin Pictures", URL: "https://anichin.cafe/network/tencent-penguin-pictures/"}},
				Studio:   []NamedLink{{Name: "B.CMAY Pictures", URL: "https://anichin.cafe/studio/b-cmay-pictures/"}},
				Released: "2023",
				Duration: "20 min. per ep.",
				Season:   "Fall 2023",
				Country:  "China",
				Type:     "ONA",
			},
			TotalEpisode: "128",
			PostedBy:     "admin",
			ReleasedOn:   "2023-09-25T10:00:00+07:00",
			UpdatedOn:    "2024-05-01T08:30:00+07:00",
		},
		Rating:   Rating{Value: 8.5, Count: 17, Percentage: 85, Text: "Rating 8.50"},
		Trailer:  Trailer{URL: "https://www.youtube.com/watch?v=abc123", Text: "Trailer"},
		Bookmark: Bookmark{Count: 1204, Text: "Followed 1204 people"},
		Genres: []Term{
			{Name: "Action", Slug: "action", URL: "https://anichin.cafe/genres/action/"},
			{Name: "Cultivation", Slug: "cultivation", URL: "https://anichin.cafe/genres/cultivation/"},
		},
		Tags: []NamedLink{
			{Name: "xianxia", URL: "https://anichin.cafe/tag/xianxia/"},
			{Name: "renegade immortal", URL: "https://anichin.cafe/tag/renegade-immortal/"},
		},
		DownloadBatch: []DownloadBatch{{
			Title: "Episode 1 - 50",
			Qualities: []DownloadQuality{
				{Quality: "720p", Links: []NamedLink{
					{Name: "GDrive", URL: "https://drive.example.com/720"},
					{Name: "Mega", URL: "https://mega.example.com/720"},
				}},
				{Quality: "1080p", Links: []NamedLink{
					{Name: "GDrive", URL: "https://drive.example.com/1080"},
				}},
			},
		}},
		EpisodeNav: EpisodeNav{
			FirstEpisode: EpisodeRef{
				Name:   "Episode 1",
				Number: "1",
				URL:    "https://anichin.cafe/renegade-immortal-episode-01-subtitle-indonesia/",
			},
			NewEpisode: EpisodeRef{
				Name:   "Episode 128",
				Number: "128",
				URL:    "https://anichin.cafe/renegade-immortal-episode-128-subtitle-indonesia/",
			},
		},
		Episodes: []Episode{
			{
				Index:       0,
				Number:      "128",
				Title:       "Renegade Immortal Episode 128",
				Subtitle:    "Sub",
				ReleaseDate: "May 1, 2024",
				URL:         "https://anichin.cafe/renegade-immortal-episode-128-subtitle-indonesia/",
			},
			{
				Index:       1,
				Number:      "127",
				Title:       "Renegade Immortal Episode 127",
				Subtitle:    "Sub",
				ReleaseDate: "April 24, 2024",
				URL:         "https://anichin.cafe/renegade-immortal-episode-127-subtitle-indonesia/",
			},
		},
		URL: "https://anichin.cafe/seri/renegade-immortal/",
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Series() mismatch (-want +got):\n%s", diff)
	}
}

func TestSeriesSparsePage(t *testing.T) {
	e := newTestExtractor(t)
	doc := selector.MustParse(`
<html><head><link rel="canonical" href="https://anichin.cafe/seri/7731/"></head>
<body>
<div class="lastend">
  <div class="inepcx"><a href="#"><span class="epcurfirst">Movie</span></a></div>
</div>
</body></html>`)

	got := e.Series(doc, "some-movie")

	assert.Equal(t, "7731", got.ID)
	assert.Equal(t, Trailer{}, got.Trailer)
	assert.Equal(t, Bookmark{}, got.Bookmark)
	assert.Equal(t, []NamedLink{}, got.Information.Network)
	assert.Equal(t, []Term{}, got.Genres)
	assert.Equal(t, []Episode{}, got.Episodes)
	assert.Equal(t, []DownloadBatch{}, got.DownloadBatch)
	assert.Equal(t, EpisodeRef{Name: "Movie", URL: "#"}, got.EpisodeNav.FirstEpisode)
}
