package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/zhadevv/anichin/internal/scraper/selector"
)

func TestWatch(t *testing.T) {
	e := newTestExtractor(t)
	got := e.Watch(parseFixture(t, "watch.html"), "renegade-immortal", 128)

	want := EpisodeWatch{
		ID:                     "9917",
		Title:                  "Renegade Immortal Episode 128 Subtitle Indonesia",
		Slug:                   "renegade-immortal",
		EpisodeNumber:          "128",
		EpisodeNumberFormatted: "128",
		Thumbnail:              "https://anichin.cafe/wp-content/uploads/ri-ep128.jpg",
		ReleaseDate:            "May 1, 2024",
		PostedBy:               "admin",
		Servers: []Server{
			{ServerID: "0", ServerName: "Default Server", ServerURL: "https://ok.ru/videoembed/111"},
			{ServerID: "1", ServerName: "Dailymotion", ServerURL: "https://daily.example/embed/111"},
			{ServerID: "2", ServerName: "Dailymotion 1080p", ServerURL: "https://daily.example/embed/222"},
			{ServerID: "3", ServerName: "Rumble", ServerURL: "https://rumble.example/embed/333"},
		},
		CurrentServer: CurrentServer{ServerID: "0", ServerURL: "https://ok.ru/videoembed/111"},
		Downloads: []DownloadBatch{{
			Title: "Episode 128",
			Qualities: []DownloadQuality{{
				Quality: "360p",
				Links:   []NamedLink{{Name: "GDrive", URL: "https://drive.example.com/128-360"}},
			}},
		}},
		Description: "Watch Renegade Immortal episode 128.Enjoy.",
		SeriesInfo: SeriesInfo{
			Title:      "Renegade Immortal",
			AlterTitle: "Xian Ni",
			Thumbnail:  "https://anichin.cafe/wp-content/uploads/ri-thumb.jpg",
			Rating:     ShortRating{Text: "Rating 8.50", Percentage: 85},
			Information: WatchInformation{
				Information: Information{
					Status:  "Ongoing",
					Network: []NamedLink{},
					Studio:  []NamedLink{{Name: "B.CMAY Pictures", URL: "https://anichin.cafe/studio/b-cmay-pictures/"}},
				},
				TotalEpisodes: "128",
			},
			Genres:   []Term{{Name: "Action", Slug: "action", URL: "https://anichin.cafe/genres/action/"}},
			Synopsis: "Wang Lin is an ordinary boy.",
		},
		EpisodeNavigation: EpisodeNavigation{
			PrevEpisode: PageLink{URL: "https://anichin.cafe/renegade-immortal-episode-127-subtitle-indonesia/", Text: "Prev"},
			AllEpisodes: PageLink{URL: "https://anichin.cafe/seri/renegade-immortal/", Text: "All Episodes"},
			NextEpisode: PageLink{Text: "Next"},
		},
		RelatedEpisodes: []RelatedEpisode{{
			Title:     "Renegade Immortal Episode 127",
			URL:       "https://anichin.cafe/renegade-immortal-episode-127-subtitle-indonesia/",
			Thumbnail: "https://anichin.cafe/ri-127.jpg",
			PostedBy:  "Posted by: admin",
			Released:  "Released: April 24, 2024",
		}},
		Meta: WatchMeta{
			Author:        "admin",
			DatePublished: "2024-05-01T10:00:00+07:00",
			DateModified:  "2024-05-01T12:00:00+07:00",
			Publisher:     Publisher{Name: "Anichin", Logo: "https://anichin.cafe/logo.png"},
		},
		URL: "https://anichin.cafe/renegade-immortal-episode-128-subtitle-indonesia/",
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Watch() mismatch (-want +got):\n%s", diff)
	}
}

func TestWatchEmptyPage(t *testing.T) {
	e := newTestExtractor(t)
	got := e.Watch(selector.MustParse("<html><body></body></html>"), "martial-master", 5)

	assert.Equal(t, "5", got.EpisodeNumber)
	assert.Equal(t, "05", got.EpisodeNumberFormatted)
	assert.Equal(t, CurrentServer{ServerID: "0"}, got.CurrentServer)
	assert.Equal(t, []Server{}, got.Servers)
	assert.Equal(t, []RelatedEpisode{}, got.RelatedEpisodes)
	assert.Equal(t, EpisodeNavigation{}, got.EpisodeNavigation)
	assert.Equal(t, "https://anichin.cafe/martial-master-episode-05-subtitle-indonesia/", got.URL)
}

func TestWatchFirstMirrorBecomesCurrent(t *testing.T) {
	e := newTestExtractor(t)
	doc := selector.MustParse(`
<div class="item video-nav"><select class="mirror">
  <option value="https://first.example/e/1" data-index="1">First</option>
  <option value="https://second.example/e/2" data-index="2">Second</option>
</select></div>`)

	got := e.Watch(doc, "x", 1)
	assert.Equal(t, CurrentServer{ServerID: "0", ServerURL: "https://first.example/e/1"}, got.CurrentServer)
	assert.Len(t, got.Servers, 2)
	assert.Equal(t, "0", got.Servers[0].ServerID)
	assert.Equal(t, "1", got.Servers[1].ServerID)
}

func TestResolveServerURL(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"plain url", "https://daily.example/embed/111", "https://daily.example/embed/111"},
		{"base64 iframe", "data:text/html;base64,PGlmcmFtZSBzcmM9Imh0dHBzOi8vZGFpbHkuZXhhbXBsZS9lbWJlZC8yMjIiPjwvaWZyYW1lPg==", "https://daily.example/embed/222"},
		{"base64 without iframe", "data:text/html;base64,aGVsbG8", ""},
		{"raw iframe", `<iframe src="https://rumble.example/embed/333" allowfullscreen></iframe>`, "https://rumble.example/embed/333"},
		{"iframe without src", "<iframe></iframe>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveServerURL(tt.value))
		})
	}
}
