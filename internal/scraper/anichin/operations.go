package anichin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zhadevv/anichin/internal/scraper"
	"github.com/zhadevv/anichin/internal/scraper/envelope"
	"github.com/zhadevv/anichin/internal/scraper/extract"
	"github.com/zhadevv/anichin/internal/scraper/selector"
)

// Operation names reported in response metadata and scrape events.
const (
	OpSidebar        = "sidebar"
	OpHome           = "home"
	OpSearch         = "search"
	OpSchedule       = "schedule"
	OpOngoing        = "ongoing"
	OpCompleted      = "completed"
	OpAZList         = "azlist"
	OpGenres         = "genres"
	OpStudio         = "studio"
	OpNetwork        = "network"
	OpCountry        = "country"
	OpSeason         = "season"
	OpSeries         = "series"
	OpWatch          = "watch"
	OpAdvancedSearch = "advanced_search"
	OpQuickFilter    = "quickfilter"
)

// HomeData is the data of Home.
type HomeData struct {
	Home extract.Home `json:"home"`
}

// SearchData is the data of Search.
type SearchData struct {
	Search extract.SearchResult `json:"search"`
}

// SeriesData is the data of Series.
type SeriesData struct {
	Detail extract.SeriesDetail `json:"detail"`
}

// WatchData is the data of Watch.
type WatchData struct {
	Watch extract.EpisodeWatch `json:"watch"`
}

// ScheduleData is the data of Schedule. A single day renders as {"<day>": {...}},
// the full week as {"schedule": {"monday": {...}, ...}}.
type ScheduleData struct {
	Day  string
	Days map[string]extract.DaySchedule
}

// MarshalJSON implements json.Marshaler.
func (s ScheduleData) MarshalJSON() ([]byte, error) {
	if s.Day != "" {
		return json.Marshal(map[string]extract.DaySchedule{s.Day: s.Days[s.Day]})
	}
	return json.Marshal(map[string]map[string]extract.DaySchedule{"schedule": s.Days})
}

func readOK[T any](fn func(selector.NodeSet) T) func(selector.NodeSet) (T, error) {
	return func(doc selector.NodeSet) (T, error) {
		return fn(doc), nil
	}
}

// Sidebar scrapes the sitewide sidebar.
func (c *Client) Sidebar(ctx context.Context) *envelope.Response[extract.Sidebar] {
	return scrape(ctx, c, request{operation: OpSidebar, page: extract.PageSidebar},
		readOK(c.extractor.Sidebar))
}

// Home scrapes a page of the landing page.
func (c *Client) Home(ctx context.Context, page int) *envelope.Response[HomeData] {
	req := request{operation: OpHome, page: extract.PageHome, args: extract.PathArgs{Page: page}}
	return scrape(ctx, c, req, readOK(func(doc selector.NodeSet) HomeData {
		return HomeData{Home: c.extractor.Home(doc)}
	}))
}

// Search runs a keyword search.
func (c *Client) Search(ctx context.Context, query string, page int) *envelope.Response[SearchData] {
	query = strings.TrimSpace(query)
	if query == "" {
		return invalid[SearchData](c, OpSearch, "Search query must not be empty")
	}
	req := request{operation: OpSearch, page: extract.PageSearch, args: extract.PathArgs{Page: page, Query: query}}
	return scrape(ctx, c, req, readOK(func(doc selector.NodeSet) SearchData {
		return SearchData{Search: c.extractor.Search(doc, query)}
	}))
}

// Schedule scrapes the release schedule. An empty day returns the whole week.
func (c *Client) Schedule(ctx context.Context, day string) *envelope.Response[ScheduleData] {
	day = strings.TrimSpace(day)
	notFound := fmt.Sprintf("Day %q not found", day)
	day = strings.ToLower(day)
	if day != "" && !extract.IsWeekday(day) {
		return invalid[ScheduleData](c, OpSchedule, notFound)
	}

	req := request{operation: OpSchedule, page: extract.PageSchedule}
	return scrape(ctx, c, req, func(doc selector.NodeSet) (ScheduleData, error) {
		if day == "" {
			return ScheduleData{Days: c.extractor.Schedule(doc)}, nil
		}
		ds, ok := c.extractor.ScheduleDay(doc, day)
		if !ok {
			return ScheduleData{}, scraper.NewInvalidInputError(notFound)
		}
		return ScheduleData{Day: day, Days: map[string]extract.DaySchedule{day: ds}}, nil
	})
}

// Ongoing scrapes the ongoing series index.
func (c *Client) Ongoing(ctx context.Context, page int) *envelope.Response[extract.Listing] {
	return c.listing(ctx, OpOngoing, extract.PageOngoing, extract.PathArgs{Page: page})
}

// Completed scrapes the completed series index.
func (c *Client) Completed(ctx context.Context, page int) *envelope.Response[extract.Listing] {
	return c.listing(ctx, OpCompleted, extract.PageCompleted, extract.PathArgs{Page: page})
}

// AZList scrapes the alphabetical index, optionally narrowed to one letter.
func (c *Client) AZList(ctx context.Context, page int, letter string) *envelope.Response[extract.Listing] {
	return c.listing(ctx, OpAZList, extract.PageAZList, extract.PathArgs{Page: page, Letter: strings.TrimSpace(letter)})
}

func (c *Client) listing(ctx context.Context, op, page string, args extract.PathArgs) *envelope.Response[extract.Listing] {
	req := request{operation: op, page: page, args: args}
	return scrape(ctx, c, req, readOK(func(doc selector.NodeSet) extract.Listing {
		return c.extractor.Listing(doc, page)
	}))
}

// Genres scrapes the listing of one genre.
func (c *Client) Genres(ctx context.Context, slug string, page int) *envelope.Response[extract.Taxonomy] {
	return c.taxonomy(ctx, OpGenres, extract.PageGenres, slug, page)
}

// Studio scrapes the listing of one studio.
func (c *Client) Studio(ctx context.Context, slug string, page int) *envelope.Response[extract.Taxonomy] {
	return c.taxonomy(ctx, OpStudio, extract.PageStudio, slug, page)
}

// Network scrapes the listing of one network.
func (c *Client) Network(ctx context.Context, slug string, page int) *envelope.Response[extract.Taxonomy] {
	return c.taxonomy(ctx, OpNetwork, extract.PageNetwork, slug, page)
}

// Country scrapes the listing of one country.
func (c *Client) Country(ctx context.Context, slug string, page int) *envelope.Response[extract.Taxonomy] {
	return c.taxonomy(ctx, OpCountry, extract.PageCountry, slug, page)
}

func (c *Client) taxonomy(ctx context.Context, op, page, slug string, n int) *envelope.Response[extract.Taxonomy] {
	slug = c.normalizeSlug(slug)
	if slug == "" {
		return invalid[extract.Taxonomy](c, op, "Slug must not be empty")
	}
	req := request{operation: op, page: page, args: extract.PathArgs{Slug: slug, Page: n}}
	return scrape(ctx, c, req, readOK(func(doc selector.NodeSet) extract.Taxonomy {
		return c.extractor.Taxonomy(doc, page, slug)
	}))
}

// Season scrapes a seasonal chart such as "fall-2023".
func (c *Client) Season(ctx context.Context, slug string) *envelope.Response[extract.SeasonPage] {
	slug = c.normalizeSlug(slug)
	if slug == "" {
		return invalid[extract.SeasonPage](c, OpSeason, "Slug must not be empty")
	}
	req := request{operation: OpSeason, page: extract.PageSeason, args: extract.PathArgs{Slug: slug}}
	return scrape(ctx, c, req, readOK(func(doc selector.NodeSet) extract.SeasonPage {
		return c.extractor.Season(doc, slug)
	}))
}

// Series scrapes a series landing page.
func (c *Client) Series(ctx context.Context, slug string) *envelope.Response[SeriesData] {
	slug = c.normalizeSlug(slug)
	if slug == "" {
		return invalid[SeriesData](c, OpSeries, "Slug must not be empty")
	}
	req := request{operation: OpSeries, page: extract.PageSeries, args: extract.PathArgs{Slug: slug}}
	return scrape(ctx, c, req, readOK(func(doc selector.NodeSet) SeriesData {
		return SeriesData{Detail: c.extractor.Series(doc, slug)}
	}))
}

// Watch scrapes the player page of one episode.
func (c *Client) Watch(ctx context.Context, slug string, episode int) *envelope.Response[WatchData] {
	slug = c.normalizeSlug(slug)
	if slug == "" {
		return invalid[WatchData](c, OpWatch, "Slug must not be empty")
	}
	if episode < 0 {
		return invalid[WatchData](c, OpWatch, fmt.Sprintf("Episode %d is not valid", episode))
	}
	args := extract.PathArgs{Slug: slug, Episode: extract.FormatEpisodeNumber(episode)}
	req := request{operation: OpWatch, page: extract.PageWatch, args: args}
	return scrape(ctx, c, req, readOK(func(doc selector.NodeSet) WatchData {
		return WatchData{Watch: c.extractor.Watch(doc, slug, episode)}
	}))
}

// AdvancedSearch runs the series index search in image or text mode. Text
// mode ignores filter and page.
func (c *Client) AdvancedSearch(ctx context.Context, mode string, filter extract.SearchFilter, page int) envelope.Envelope {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", extract.ModeImage:
		return c.AdvancedSearchImage(ctx, filter, page)
	case extract.ModeText:
		return c.AdvancedSearchText(ctx)
	default:
		return invalid[extract.AdvancedSearchImage](c, OpAdvancedSearch, fmt.Sprintf("Mode %q is not supported", mode))
	}
}

// AdvancedSearchImage runs the grid view of the series index search.
func (c *Client) AdvancedSearchImage(ctx context.Context, filter extract.SearchFilter, page int) *envelope.Response[extract.AdvancedSearchImage] {
	req := request{operation: OpAdvancedSearch, page: extract.PageAdvancedImage, query: filter.Query(page)}
	return scrape(ctx, c, req, readOK(func(doc selector.NodeSet) extract.AdvancedSearchImage {
		return c.extractor.AdvancedImage(doc, filter)
	}))
}

// AdvancedSearchText scrapes the alphabetical list view of the series index.
func (c *Client) AdvancedSearchText(ctx context.Context) *envelope.Response[extract.AdvancedSearchText] {
	req := request{operation: OpAdvancedSearch, page: extract.PageAdvancedText}
	return scrape(ctx, c, req, readOK(c.extractor.AdvancedText))
}

// QuickFilter scrapes the filter form of the series index.
func (c *Client) QuickFilter(ctx context.Context) *envelope.Response[extract.QuickFilter] {
	return scrape(ctx, c, request{operation: OpQuickFilter, page: extract.PageQuickFilter},
		readOK(c.extractor.QuickFilter))
}
