package extract

import (
	"github.com/zhadevv/anichin/internal/scraper/selector"
)

// Taxonomy reads a genre, studio, network or country listing. page is one of
// PageGenres, PageStudio, PageNetwork or PageCountry.
func (e *Extractor) Taxonomy(doc selector.NodeSet, page, slug string) Taxonomy {
	p := e.def.Page(page)
	t := Taxonomy{
		PageType:   page,
		Key:        p.Param("key"),
		Term:       TaxonomyTerm{Name: p.Text(doc, "name"), Slug: slug},
		Lists:      e.ListItems(doc, p.Sub("items")),
		Pagination: e.Pagination(doc),
	}
	t.Term.TotalPages = max(t.Pagination.TotalPages, 1)
	return t
}

// Season reads a seasonal chart.
func (e *Extractor) Season(doc selector.NodeSet, slug string) SeasonPage {
	p := e.def.Page(PageSeason)
	out := SeasonPage{
		PageType: p.Param("page_type"),
		Season:   SeasonRef{Year: p.Text(doc, "year"), Slug: slug},
		Lists:    []SeasonCard{},
		Pagination: SeasonPagination{
			HasPagination: false,
			Note:          p.Param("note"),
		},
	}

	card := p.Sub("card")
	genre := card.Sub("genre")
	card.Each(doc, func(_ int, n selector.NodeSet) {
		href := card.Text(n, "href")
		out.Lists = append(out.Lists, SeasonCard{
			Title:     card.Text(n, "title"),
			Slug:      e.site.Slug(href),
			PostID:    card.Text(n, "post_id"),
			Thumbnail: card.Text(n, "thumbnail"),
			Studio: Studio{
				Name:       card.Text(n, "studio"),
				ColorClass: card.Text(n, "studio_class"),
			},
			EpisodesInfo:      card.Text(n, "episodes_info"),
			Type:              card.Text(n, "type"),
			EpisodesCount:     atoiDefault(card.Text(n, "episodes_count"), 0),
			Status:            card.Text(n, "status"),
			AlternativeTitles: card.Text(n, "alternative"),
			Rating:            parseLeadingFloat(card.Text(n, "rating")),
			Description:       card.Text(n, "description"),
			Genres:            e.terms(n, genre, true),
			URL:               e.site.Absolute(href),
		})
	})
	return out
}
