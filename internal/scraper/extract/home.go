package extract

import (
	"strings"

	"github.com/zhadevv/anichin/internal/scraper/selector"
)

// Home reads the landing page.
func (e *Extractor) Home(doc selector.NodeSet) Home {
	p := e.def.Page(PageHome)
	home := Home{
		Slider:        []SliderItem{},
		PopularToday:  []ListItem{},
		LatestRelease: []ListItem{},
		Recommendation: Recommendation{
			Tabs: []RecommendationTab{},
			Data: map[string][]ListItem{},
		},
	}

	slider := p.Sub("slider")
	slider.Each(doc, func(_ int, n selector.NodeSet) {
		href := slider.Text(n, "href")
		title := slider.Text(n, "jtitle")
		if title == "" {
			title = slider.Text(n, "title")
		}
		home.Slider = append(home.Slider, SliderItem{
			Title:       title,
			Slug:        e.site.Slug(href),
			Description: slider.Text(n, "description"),
			Thumbnail:   slider.Text(n, "thumbnail"),
			URL:         e.site.Absolute(href),
		})
	})

	home.PopularToday = e.ListItems(doc, p.Sub("popular_today"))

	if p.Sub("latest_marker").Select(doc).Exists() {
		home.LatestRelease = e.ListItems(doc, p.Sub("latest_release"))
	}

	rec := p.Sub("recommendation")
	if box := rec.Select(doc); box.Exists() {
		tab := rec.Sub("tab")
		tab.Each(box, func(_ int, n selector.NodeSet) {
			home.Recommendation.Tabs = append(home.Recommendation.Tabs, RecommendationTab{
				ID:     strings.Replace(tab.Text(n, "href"), "#", "", 1),
				Name:   tab.Text(n, "name"),
				Active: n.HasClass("active"),
			})
		})

		pane := rec.Sub("pane")
		item := rec.Sub("item")
		status := e.def.Component(ComponentListItem).Field("status")
		pane.Each(box, func(_ int, n selector.NodeSet) {
			items := []ListItem{}
			item.Each(n, func(_ int, card selector.NodeSet) {
				li := e.ListItem(card)
				li.Status = status.Value(card)
				items = append(items, li)
			})
			home.Recommendation.Data[pane.Text(n, "id")] = items
		})
	}

	home.Pagination = e.Pagination(doc)
	return home
}

// Search reads a keyword search result page.
func (e *Extractor) Search(doc selector.NodeSet, query string) SearchResult {
	p := e.def.Page(PageSearch)
	return SearchResult{
		Query:      query,
		Items:      e.ListItems(doc, p.Sub("items")),
		Pagination: e.Pagination(doc),
	}
}
