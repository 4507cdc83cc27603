package extract

import "encoding/json"

// ListItem is one card in a listing grid.
type ListItem struct {
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Thumbnail string `json:"thumbnail"`
	Episode   string `json:"episode"`
	Type      string `json:"type"`
	Badge     string `json:"badge"`
	URL       string `json:"url"`
	Status    string `json:"status,omitempty"`
}

// Pagination describes the pager of a listing page.
type Pagination struct {
	CurrentPage int        `json:"current_page"`
	TotalPages  int        `json:"total_pages"`
	HasPrev     bool       `json:"has_prev"`
	HasNext     bool       `json:"has_next"`
	Prev        PageLink   `json:"prev"`
	Next        PageLink   `json:"next"`
	Pages       []PageItem `json:"pages"`
}

// PageLink is a prev/next control.
type PageLink struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// PageItem is a numbered pager entry.
type PageItem struct {
	Number    int    `json:"number"`
	URL       string `json:"url"`
	IsCurrent bool   `json:"is_current"`
}

// Listing is a paginated list of cards.
type Listing struct {
	Lists      []ListItem `json:"lists"`
	Pagination Pagination `json:"pagination"`
}

// NamedLink is a name with its absolute URL.
type NamedLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Term is a taxonomy link such as a genre.
type Term struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
	URL  string `json:"url,omitempty"`
}

// Home is the landing page.
type Home struct {
	Slider         []SliderItem   `json:"slider"`
	PopularToday   []ListItem     `json:"popular_today"`
	LatestRelease  []ListItem     `json:"latest_release"`
	Recommendation Recommendation `json:"recommendation"`
	Pagination     Pagination     `json:"pagination"`
}

// SliderItem is one hero slide on the home page.
type SliderItem struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	URL         string `json:"url"`
}

// Recommendation holds the tabbed recommendation widget.
type Recommendation struct {
	Tabs []RecommendationTab   `json:"tabs"`
	Data map[string][]ListItem `json:"data"`
}

// RecommendationTab is one tab header.
type RecommendationTab struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// SearchResult is the keyword search page.
type SearchResult struct {
	Query      string     `json:"query"`
	Items      []ListItem `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// ScheduleItem is a title airing on a given weekday.
type ScheduleItem struct {
	Title          string     `json:"title"`
	Slug           string     `json:"slug"`
	Thumbnail      string     `json:"thumbnail"`
	Countdown      RawDisplay `json:"countdown"`
	ReleaseTime    RawDisplay `json:"release_time"`
	CurrentEpisode string     `json:"current_episode"`
	URL            string     `json:"url"`
}

// RawDisplay pairs an upstream value with its formatted rendering.
type RawDisplay struct {
	Raw       string `json:"raw"`
	Formatted string `json:"formatted"`
}

// DaySchedule lists one weekday.
type DaySchedule struct {
	List []ScheduleItem `json:"list"`
}

// Weekdays in display order.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// Taxonomy is a genre, studio, network or country listing.
type Taxonomy struct {
	PageType   string       `json:"page_type"`
	Key        string       `json:"-"`
	Term       TaxonomyTerm `json:"-"`
	Lists      []ListItem   `json:"lists"`
	Pagination Pagination   `json:"pagination"`
}

// MarshalJSON renders the term under its taxonomy key, e.g. "genre" or "studio".
func (t Taxonomy) MarshalJSON() ([]byte, error) {
	key := t.Key
	if key == "" {
		key = t.PageType
	}
	return json.Marshal(map[string]any{
		"page_type":  t.PageType,
		key:          t.Term,
		"lists":      t.Lists,
		"pagination": t.Pagination,
	})
}

// TaxonomyTerm names the taxonomy being listed.
type TaxonomyTerm struct {
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	TotalPages int    `json:"total_pages"`
}

// SeasonPage is the seasonal chart.
type SeasonPage struct {
	PageType   string           `json:"page_type"`
	Season     SeasonRef        `json:"season"`
	Lists      []SeasonCard     `json:"lists"`
	Pagination SeasonPagination `json:"pagination"`
}

// SeasonRef identifies the season.
type SeasonRef struct {
	Year string `json:"year"`
	Slug string `json:"slug"`
}

// SeasonPagination reflects that seasonal charts are single-page.
type SeasonPagination struct {
	HasPagination bool   `json:"has_pagination"`
	Note          string `json:"note"`
}

// SeasonCard is one title on the seasonal chart.
type SeasonCard struct {
	Title             string  `json:"title"`
	Slug              string  `json:"slug"`
	PostID            string  `json:"post_id"`
	Thumbnail         string  `json:"thumbnail"`
	Studio            Studio  `json:"studio"`
	EpisodesInfo      string  `json:"episodes_info"`
	Type              string  `json:"type"`
	EpisodesCount     int     `json:"episodes_count"`
	Status            string  `json:"status"`
	AlternativeTitles string  `json:"alternative_titles"`
	Rating            float64 `json:"rating"`
	Description       string  `json:"description"`
	Genres            []Term  `json:"genres"`
	URL               string  `json:"url"`
}

// Studio is the studio badge on a season card.
type Studio struct {
	Name       string `json:"name"`
	ColorClass string `json:"color_class"`
}

// SeriesDetail is a series landing page.
type SeriesDetail struct {
	ID               string            `json:"id"`
	Slug             string            `json:"slug"`
	Cover            Cover             `json:"cover"`
	Title            string            `json:"title"`
	AlterTitle       string            `json:"alter_title"`
	Mindesc          string            `json:"mindesc"`
	Synopsis         string            `json:"synopsis"`
	SynopsisMarkdown string            `json:"synopsis_markdown"`
	Information      SeriesInformation `json:"information"`
	Rating           Rating            `json:"rating"`
	Trailer          Trailer           `json:"trailer"`
	Bookmark         Bookmark          `json:"bookmark"`
	Genres           []Term            `json:"genres"`
	Tags             []NamedLink       `json:"tags"`
	DownloadBatch    []DownloadBatch   `json:"download_batch"`
	EpisodeNav       EpisodeNav        `json:"episode_nav"`
	Episodes         []Episode         `json:"episodes"`
	URL              string            `json:"url"`
}

// Cover holds the banner and poster images.
type Cover struct {
	Banner    string `json:"banner"`
	Thumbnail string `json:"thumbnail"`
}

// Information holds the facts block shared by series and episode pages.
type Information struct {
	Status   string      `json:"status"`
	Network  []NamedLink `json:"network"`
	Studio   []NamedLink `json:"studio"`
	Released string      `json:"released"`
	Duration string      `json:"duration"`
	Season   string      `json:"season"`
	Country  string      `json:"country"`
	Type     string      `json:"type"`
}

// SeriesInformation extends Information with authoring metadata.
type SeriesInformation struct {
	Information
	TotalEpisode string `json:"total_episode"`
	PostedBy     string `json:"posted_by"`
	ReleasedOn   string `json:"released_on"`
	UpdatedOn    string `json:"updated_on"`
}

// Rating is the score widget.
type Rating struct {
	Value      float64 `json:"value"`
	Count      int     `json:"count"`
	Percentage int     `json:"percentage"`
	Text       string  `json:"text"`
}

// Trailer is the trailer button.
type Trailer struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// Bookmark is the follower counter.
type Bookmark struct {
	Count int    `json:"count"`
	Text  string `json:"text"`
}

// DownloadBatch is one download group.
type DownloadBatch struct {
	Title     string            `json:"title"`
	Qualities []DownloadQuality `json:"qualities"`
}

// DownloadQuality lists mirrors for one resolution.
type DownloadQuality struct {
	Quality string      `json:"quality"`
	Links   []NamedLink `json:"links"`
}

// EpisodeNav points at the first and newest episodes.
type EpisodeNav struct {
	FirstEpisode EpisodeRef `json:"first_episode"`
	NewEpisode   EpisodeRef `json:"new_episode"`
}

// EpisodeRef is a labelled episode link.
type EpisodeRef struct {
	Name   string `json:"name"`
	Number string `json:"number"`
	URL    string `json:"url"`
}

// Episode is one row of the episode list.
type Episode struct {
	Index       int    `json:"index"`
	Number      string `json:"number"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	ReleaseDate string `json:"release_date"`
	URL         string `json:"url"`
}

// EpisodeWatch is an episode player page.
type EpisodeWatch struct {
	ID                     string            `json:"id"`
	Title                  string            `json:"title"`
	Slug                   string            `json:"slug"`
	EpisodeNumber          string            `json:"episode_number"`
	EpisodeNumberFormatted string            `json:"episode_number_formatted"`
	Thumbnail              string            `json:"thumbnail"`
	ReleaseDate            string            `json:"release_date"`
	PostedBy               string            `json:"posted_by"`
	Servers                []Server          `json:"servers"`
	CurrentServer          CurrentServer     `json:"current_server"`
	Downloads              []DownloadBatch   `json:"downloads"`
	Description            string            `json:"description"`
	SeriesInfo             SeriesInfo        `json:"series_info"`
	EpisodeNavigation      EpisodeNavigation `json:"episode_navigation"`
	RelatedEpisodes        []RelatedEpisode  `json:"related_episodes"`
	Meta                   WatchMeta         `json:"meta"`
	URL                    string            `json:"url"`
}

// Server is one streaming mirror.
type Server struct {
	ServerID   string `json:"server_id"`
	ServerName string `json:"server_name"`
	ServerURL  string `json:"server_url"`
}

// CurrentServer is the mirror embedded by default.
type CurrentServer struct {
	ServerID  string `json:"server_id"`
	ServerURL string `json:"server_url"`
}

// SeriesInfo is the series summary shown under the player.
type SeriesInfo struct {
	Title       string           `json:"title"`
	AlterTitle  string           `json:"alter_title"`
	Thumbnail   string           `json:"thumbnail"`
	Rating      ShortRating      `json:"rating"`
	Information WatchInformation `json:"information"`
	Genres      []Term           `json:"genres"`
	Synopsis    string           `json:"synopsis"`
}

// ShortRating is the rating widget without meta values.
type ShortRating struct {
	Text       string `json:"text"`
	Percentage int    `json:"percentage"`
}

// WatchInformation is Information as rendered on episode pages.
type WatchInformation struct {
	Information
	TotalEpisodes string `json:"total_episodes"`
}

// EpisodeNavigation links neighbouring episodes.
type EpisodeNavigation struct {
	PrevEpisode PageLink `json:"prev_episode"`
	AllEpisodes PageLink `json:"all_episodes"`
	NextEpisode PageLink `json:"next_episode"`
}

// RelatedEpisode is a card in the related episodes block.
type RelatedEpisode struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail"`
	PostedBy  string `json:"posted_by"`
	Released  string `json:"released"`
}

// WatchMeta is schema.org metadata of the episode page.
type WatchMeta struct {
	Author        string    `json:"author"`
	DatePublished string    `json:"date_published"`
	DateModified  string    `json:"date_modified"`
	Publisher     Publisher `json:"publisher"`
}

// Publisher is the schema.org publisher.
type Publisher struct {
	Name string `json:"name"`
	Logo string `json:"logo"`
}

// Sidebar is the sitewide sidebar.
type Sidebar struct {
	QuickFilter   *QuickFilter    `json:"quick_filter,omitempty"`
	OngoingSeries []OngoingEntry  `json:"ongoing_series,omitempty"`
	PopularSeries *PopularSeries  `json:"popular_series,omitempty"`
	NewMovie      []NewMovie      `json:"new_movie,omitempty"`
	Genres        []SidebarTerm   `json:"genres"`
	Seasons       []SidebarSeason `json:"seasons"`
}

// OngoingEntry is a row of the ongoing series widget.
type OngoingEntry struct {
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	Episode string `json:"episode"`
	URL     string `json:"url"`
}

// PopularSeries groups the popularity rankings.
type PopularSeries struct {
	Weekly  []PopularEntry `json:"weekly"`
	Monthly []PopularEntry `json:"monthly"`
	AllTime []PopularEntry `json:"all_time"`
}

// PopularEntry is a ranked title.
type PopularEntry struct {
	Top       string   `json:"top"`
	Title     string   `json:"title"`
	Slug      string   `json:"slug"`
	Thumbnail string   `json:"thumbnail"`
	Genre     []string `json:"genre"`
	Rating    string   `json:"rating"`
	URL       string   `json:"url"`
}

// NewMovie is a row of the new movie widget.
type NewMovie struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Thumbnail   string `json:"thumbnail"`
	ReleaseDate string `json:"release_date"`
	Genres      []Term `json:"genres"`
	URL         string `json:"url"`
}

// SidebarTerm is a genre link in the sidebar.
type SidebarTerm struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
	URL   string `json:"url"`
}

// SidebarSeason is a season link with its title count.
type SidebarSeason struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
	Count string `json:"count"`
	URL   string `json:"url"`
}

// QuickFilter is the filter form of the series index.
type QuickFilter struct {
	CheckboxFilters map[string]FilterGroup `json:"checkbox_filters"`
	RadioFilters    map[string]FilterGroup `json:"radio_filters"`
}

// FilterGroup is one dropdown of the filter form.
type FilterGroup struct {
	Label    string       `json:"label"`
	Type     string       `json:"type"`
	Multiple bool         `json:"multiple"`
	Items    []FilterItem `json:"items"`
}

// FilterItem is one option of a dropdown.
type FilterItem struct {
	Value   string `json:"value"`
	Label   string `json:"label"`
	Checked bool   `json:"checked"`
}

// SearchFilter is the structured filter of the advanced search.
type SearchFilter struct {
	Status  string   `json:"status,omitempty"`
	Type    string   `json:"type,omitempty"`
	Order   string   `json:"order,omitempty"`
	Sub     string   `json:"sub,omitempty"`
	Genres  []string `json:"genres,omitempty"`
	Studios []string `json:"studios,omitempty"`
	Seasons []string `json:"seasons,omitempty"`
	PerPage int      `json:"per_page,omitempty"`
}

// AdvancedSearchImage is the grid-mode advanced search result.
type AdvancedSearchImage struct {
	Mode           string       `json:"mode"`
	Title          string       `json:"title"`
	AppliedFilters SearchFilter `json:"applied_filters"`
	Lists          []ListItem   `json:"lists"`
	Pagination     Pagination   `json:"pagination"`
}

// AdvancedSearchText is the alphabetical list-mode result.
type AdvancedSearchText struct {
	Mode    string                    `json:"mode"`
	Title   string                    `json:"title"`
	Results map[string][]TextModeItem `json:"results"`
}

// TextModeItem is one title in list mode.
type TextModeItem struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
	RelID string `json:"rel_id"`
	URL   string `json:"url"`
}
