package extract

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/zhadevv/anichin/internal/scraper/selector"
)

// Advanced search modes.
const (
	ModeImage = "image"
	ModeText  = "text"
)

// Query encodes the filter as series index parameters. Blank values are
// dropped and page 1 is implied.
func (f SearchFilter) Query(page int) url.Values {
	q := url.Values{}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}

	for _, kv := range [][2]string{
		{"status", f.Status},
		{"type", f.Type},
		{"order", f.Order},
		{"sub", f.Sub},
	} {
		if strings.TrimSpace(kv[1]) != "" {
			q.Set(kv[0], kv[1])
		}
	}

	notBlank := func(v string, _ int) bool { return strings.TrimSpace(v) != "" }
	for key, values := range map[string][]string{
		"genre[]":  f.Genres,
		"studio[]": f.Studios,
		"season[]": f.Seasons,
	} {
		for _, v := range lo.Filter(values, notBlank) {
			q.Add(key, v)
		}
	}

	if f.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(f.PerPage))
	}
	return q
}

// AdvancedImage reads the grid view of the series index.
func (e *Extractor) AdvancedImage(doc selector.NodeSet, filter SearchFilter) AdvancedSearchImage {
	p := e.def.Page(PageAdvancedImage)
	return AdvancedSearchImage{
		Mode:           ModeImage,
		Title:          p.Text(doc, "title"),
		AppliedFilters: filter,
		Lists:          e.ListItems(doc, p.Sub("items")),
		Pagination:     e.Pagination(doc),
	}
}

// AdvancedText reads the alphabetical list view of the series index. Groups
// are keyed by letter, with "#" spelled "hash".
func (e *Extractor) AdvancedText(doc selector.NodeSet) AdvancedSearchText {
	p := e.def.Page(PageAdvancedText)
	out := AdvancedSearchText{
		Mode:    ModeText,
		Title:   p.Text(doc, "title"),
		Results: map[string][]TextModeItem{},
	}

	group := p.Sub("group")
	item := p.Sub("item")
	link := item.Field("title")
	group.Each(doc, func(_ int, n selector.NodeSet) {
		letter := group.Text(n, "letter_span")
		if group.Field("letter_link").Target(n).Exists() {
			letter = group.Text(n, "letter_link")
		}
		if letter == "" {
			return
		}

		key := strings.Replace(letter, "#", "hash", 1)
		items := []TextModeItem{}
		item.Each(n, func(_ int, li selector.NodeSet) {
			if !link.Target(li).Exists() {
				return
			}
			href := item.Text(li, "href")
			items = append(items, TextModeItem{
				Title: item.Text(li, "title"),
				Slug:  e.site.Slug(href),
				RelID: item.Text(li, "rel"),
				URL:   e.site.Absolute(href),
			})
		})
		out.Results[key] = items
	})
	return out
}
