// Package extract turns parsed anichin pages into records using the selector
// table in selectors.yml.
package extract

import (
	"strings"

	"github.com/samber/lo"

	"github.com/zhadevv/anichin/internal/scraper/selector"
)

// Extractor evaluates a Definition against parsed pages.
type Extractor struct {
	def  *Definition
	site *Site
}

// New creates an Extractor.
func New(def *Definition, site *Site) *Extractor {
	return &Extractor{def: def, site: site}
}

// Definition returns the selector table in use.
func (e *Extractor) Definition() *Definition {
	return e.def
}

// Site returns the link resolver in use.
func (e *Extractor) Site() *Site {
	return e.site
}

// ListItem reads one listing card.
func (e *Extractor) ListItem(n selector.NodeSet) ListItem {
	c := e.def.Component(ComponentListItem)
	href := c.Text(n, "href")
	return ListItem{
		Title:     c.Text(n, "title"),
		Slug:      e.site.Slug(href),
		Thumbnail: c.Text(n, "thumbnail"),
		Episode:   c.Text(n, "episode"),
		Type:      c.Text(n, "type"),
		Badge:     c.Text(n, "badge"),
		URL:       e.site.Absolute(href),
	}
}

// ListItems reads every card matched by items under n.
func (e *Extractor) ListItems(n selector.NodeSet, items selector.Block) []ListItem {
	out := []ListItem{}
	items.Each(n, func(_ int, card selector.NodeSet) {
		out = append(out, e.ListItem(card))
	})
	return out
}

// Listing reads the card grid and pager of a listing page such as ongoing,
// completed or the A-Z index.
func (e *Extractor) Listing(doc selector.NodeSet, page string) Listing {
	p := e.def.Page(page)
	return Listing{
		Lists:      e.ListItems(doc, p.Sub("items")),
		Pagination: e.Pagination(doc),
	}
}

// Pagination reads the pager. A page without one reports a single page.
func (e *Extractor) Pagination(doc selector.NodeSet) Pagination {
	c := e.def.Component(ComponentPagination)
	p := Pagination{CurrentPage: 1, TotalPages: 1, Pages: []PageItem{}}

	box := c.Select(doc)
	if !box.Exists() {
		return p
	}

	if current := c.Field("current").Target(box); current.Exists() {
		p.CurrentPage = atoiDefault(current.Text(), 1)
	}

	if prev := c.Sub("prev").Select(box); prev.Exists() {
		p.HasPrev = true
		p.Prev = PageLink{URL: e.site.Absolute(prev.Attr("href")), Text: prev.Text()}
	}
	if next := c.Sub("next").Select(box); next.Exists() {
		p.HasNext = true
		p.Next = PageLink{URL: e.site.Absolute(next.Attr("href")), Text: next.Text()}
	}

	c.Sub("pages").Each(box, func(_ int, n selector.NodeSet) {
		number, ok := parseLeadingInt(n.Text())
		if !ok {
			return
		}
		p.Pages = append(p.Pages, PageItem{
			Number:    number,
			URL:       e.site.Absolute(n.Attr("href")),
			IsCurrent: n.HasClass("current"),
		})
	})

	if len(p.Pages) > 0 {
		p.TotalPages = lo.Max(lo.Map(p.Pages, func(item PageItem, _ int) int {
			return item.Number
		}))
	}
	return p
}

// terms reads taxonomy links. URLs are only kept when withURL is set.
func (e *Extractor) terms(n selector.NodeSet, b selector.Block, withURL bool) []Term {
	out := []Term{}
	b.Each(n, func(_ int, a selector.NodeSet) {
		href := a.Attr("href")
		t := Term{Name: a.Text(), Slug: e.site.Slug(href)}
		if withURL {
			t.URL = e.site.Absolute(href)
		}
		out = append(out, t)
	})
	return out
}

// links reads anchors as named absolute links.
func (e *Extractor) links(n selector.NodeSet, b selector.Block) []NamedLink {
	out := []NamedLink{}
	b.Each(n, func(_ int, a selector.NodeSet) {
		out = append(out, NamedLink{Name: a.Text(), URL: e.site.Absolute(a.Attr("href"))})
	})
	return out
}

// downloads reads download groups under n. Mirror URLs are kept as published.
func (e *Extractor) downloads(n selector.NodeSet) []DownloadBatch {
	c := e.def.Component(ComponentDownloads)
	quality := c.Sub("quality")
	link := quality.Sub("link")

	out := []DownloadBatch{}
	c.Each(n, func(_ int, group selector.NodeSet) {
		batch := DownloadBatch{Title: c.Text(group, "title"), Qualities: []DownloadQuality{}}
		quality.Each(group, func(_ int, q selector.NodeSet) {
			dq := DownloadQuality{Quality: quality.Text(q, "quality"), Links: []NamedLink{}}
			link.Each(q, func(_ int, a selector.NodeSet) {
				dq.Links = append(dq.Links, NamedLink{Name: a.Text(), URL: a.Attr("href")})
			})
			batch.Qualities = append(batch.Qualities, dq)
		})
		out = append(out, batch)
	})
	return out
}

// information reads the facts block shared by series and episode pages.
func (e *Extractor) information(n selector.NodeSet) SeriesInformation {
	info := emptyInformation()

	c := e.def.Component(ComponentInformation)
	box := c.Select(n)
	if !box.Exists() {
		return info
	}

	info.Status = c.Text(box, "status")
	info.Released = c.Text(box, "released")
	info.Duration = c.Text(box, "duration")
	info.Type = c.Text(box, "type")
	info.Season = c.Text(box, "season")
	info.Country = c.Text(box, "country")
	info.Network = e.links(box, c.Sub("network"))
	info.Studio = e.links(box, c.Sub("studio"))
	info.TotalEpisode = c.Text(box, "episodes")
	info.PostedBy = c.Text(box, "posted_by")
	info.ReleasedOn = c.Text(box, "released_on")
	info.UpdatedOn = c.Text(box, "updated_on")
	return info
}

func emptyInformation() SeriesInformation {
	return SeriesInformation{Information: Information{Network: []NamedLink{}, Studio: []NamedLink{}}}
}

// pageURL is the absolute URL of a page, without its query.
func (e *Extractor) pageURL(page string, args PathArgs) string {
	path, _, err := e.def.Resolve(page, args)
	if err != nil {
		return ""
	}
	return e.site.Absolute(path)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
