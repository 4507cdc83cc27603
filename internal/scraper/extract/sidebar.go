package extract

import (
	"strings"

	"github.com/zhadevv/anichin/internal/scraper/selector"
)

// Filter input kinds.
const (
	FilterCheckbox = "checkbox"
	FilterRadio    = "radio"
)

// Sidebar reads the sitewide sidebar. Widgets missing from the page are left nil.
func (e *Extractor) Sidebar(doc selector.NodeSet) Sidebar {
	p := e.def.Page(PageSidebar)
	s := Sidebar{Genres: []SidebarTerm{}, Seasons: []SidebarSeason{}}

	root := p.Select(doc)
	if !root.Exists() {
		return s
	}

	if box := p.Sub("quick_filter").Select(root); box.Exists() {
		qf := e.quickFilter(box, p)
		s.QuickFilter = &qf
	}

	if p.Sub("ongoing_header").Select(root).Exists() {
		s.OngoingSeries = e.ongoingSeries(root, p.Sub("ongoing"))
	}

	if box := p.Sub("popular").Select(root); box.Exists() {
		s.PopularSeries = e.popularSeries(box, p.Sub("popular"))
	}

	movie := p.Sub("new_movie")
	if section := movie.Select(root); section.Exists() {
		s.NewMovie = e.newMovies(section, movie)
	}

	e.readTaxonomySections(root, p, &s)
	return s
}

func (e *Extractor) ongoingSeries(root selector.NodeSet, ongoing selector.Block) []OngoingEntry {
	out := []OngoingEntry{}
	row := ongoing.Sub("row")
	row.Each(ongoing.Select(root).First(), func(_ int, li selector.NodeSet) {
		title := row.Text(li, "title")
		if title == "" {
			return
		}
		href := row.Text(li, "href")
		out = append(out, OngoingEntry{
			Title:   title,
			Slug:    e.site.Slug(href),
			Episode: row.Text(li, "episode"),
			URL:     e.site.Absolute(href),
		})
	})
	return out
}

func (e *Extractor) popularSeries(box selector.NodeSet, popular selector.Block) *PopularSeries {
	entry := popular.Sub("entry")
	ranking := func(period string) []PopularEntry {
		out := []PopularEntry{}
		popular.Sub(period).Each(box, func(_ int, li selector.NodeSet) {
			title := entry.Text(li, "title")
			if title == "" {
				return
			}
			href := entry.Text(li, "href")
			out = append(out, PopularEntry{
				Top:       entry.Text(li, "top"),
				Title:     title,
				Slug:      e.site.Slug(href),
				Thumbnail: e.site.Absolute(entry.Text(li, "thumbnail")),
				Genre:     entry.Values(li, "genre"),
				Rating:    entry.Text(li, "rating"),
				URL:       e.site.Absolute(href),
			})
		})
		return out
	}

	return &PopularSeries{
		Weekly:  ranking("weekly"),
		Monthly: ranking("monthly"),
		AllTime: ranking("all_time"),
	}
}

// newMovies reads the list that directly follows the "NEW MOVIE" header.
func (e *Extractor) newMovies(section selector.NodeSet, movie selector.Block) []NewMovie {
	out := []NewMovie{}
	list := section.Next().Filter(movie.Sub("list").Selector)
	row := movie.Sub("row")
	genre := movie.Sub("genre")
	row.Each(list, func(_ int, li selector.NodeSet) {
		title := row.Text(li, "title")
		if title == "" {
			return
		}
		href := row.Text(li, "href")
		out = append(out, NewMovie{
			Title:       title,
			Slug:        e.site.Slug(href),
			Thumbnail:   e.site.Absolute(row.Text(li, "thumbnail")),
			ReleaseDate: row.Text(li, "release_date"),
			Genres:      e.terms(li, genre, false),
			URL:         e.site.Absolute(href),
		})
	})
	return out
}

// readTaxonomySections fills genres and seasons from the lists that follow
// their section headers.
func (e *Extractor) readTaxonomySections(root selector.NodeSet, p *Page, s *Sidebar) {
	sections := p.Sub("sections")
	row := sections.Sub("row")
	genresHeader := p.Param("genres_header")
	seasonsHeader := p.Param("seasons_header")

	sections.Each(root, func(_ int, section selector.NodeSet) {
		header := sections.Text(section, "header")

		if genresHeader != "" && strings.Contains(header, genresHeader) {
			list := section.Next().Filter(sections.Sub("genre_list").Selector)
			row.Each(list, func(_ int, li selector.NodeSet) {
				text := row.Text(li, "text")
				if text == "" {
					return
				}
				href := row.Text(li, "href")
				s.Genres = append(s.Genres, SidebarTerm{
					Title: text,
					Slug:  e.site.Slug(href),
					URL:   e.site.Absolute(href),
				})
			})
		}

		if seasonsHeader != "" && strings.Contains(header, seasonsHeader) {
			wrap := section.Next().Filter(sections.Sub("season_wrap").Selector)
			row.Each(sections.Sub("season_list").Select(wrap), func(_ int, li selector.NodeSet) {
				text := row.Text(li, "text")
				if text == "" {
					return
				}
				count := row.Text(li, "count")
				href := row.Text(li, "href")
				s.Seasons = append(s.Seasons, SidebarSeason{
					Title: strings.TrimSpace(strings.Replace(text, count, "", 1)),
					Slug:  e.site.Slug(href),
					Count: count,
					URL:   e.site.Absolute(href),
				})
			})
		}
	})
}

// QuickFilter reads the filter form of the series index.
func (e *Extractor) QuickFilter(doc selector.NodeSet) QuickFilter {
	p := e.def.Page(PageQuickFilter)
	return e.quickFilter(p.Select(doc), p)
}

// quickFilter reads the filter groups a page lists in its checkbox_filters
// and radio_filters params.
func (e *Extractor) quickFilter(box selector.NodeSet, p *Page) QuickFilter {
	qf := QuickFilter{
		CheckboxFilters: map[string]FilterGroup{},
		RadioFilters:    map[string]FilterGroup{},
	}
	if !box.Exists() {
		return qf
	}

	for _, name := range p.ParamList("checkbox_filters") {
		if g, ok := e.filterGroup(box, name, FilterCheckbox); ok {
			qf.CheckboxFilters[name] = g
		}
	}
	for _, name := range p.ParamList("radio_filters") {
		if g, ok := e.filterGroup(box, name, FilterRadio); ok {
			qf.RadioFilters[name] = g
		}
	}
	return qf
}

// filterGroup reads the dropdown whose text contains the capitalized name.
func (e *Extractor) filterGroup(box selector.NodeSet, name, kind string) (FilterGroup, bool) {
	c := e.def.Component(ComponentFilterGroup)
	group := c.SelectWith(box, map[string]string{"label": capitalize(name)})
	if !group.Exists() {
		return FilterGroup{}, false
	}

	labelSelector := c.Sub("option_label").Selector
	items := []FilterItem{}
	c.Sub(kind).Each(group, func(_ int, input selector.NodeSet) {
		items = append(items, FilterItem{
			Value:   input.Attr("value"),
			Label:   input.Next().Filter(labelSelector).Text(),
			Checked: input.HasAttr("checked"),
		})
	})

	return FilterGroup{
		Label:    c.Text(group, "label"),
		Type:     kind,
		Multiple: kind == FilterCheckbox,
		Items:    items,
	}, true
}
