package extract

import (
	"github.com/zhadevv/anichin/internal/scraper/selector"
)

// Series reads a series landing page.
func (e *Extractor) Series(doc selector.NodeSet, slug string) SeriesDetail {
	p := e.def.Page(PageSeries)
	d := SeriesDetail{
		Slug:          slug,
		Information:   emptyInformation(),
		Genres:        []Term{},
		Tags:          []NamedLink{},
		DownloadBatch: []DownloadBatch{},
		Episodes:      []Episode{},
		URL:           e.pageURL(PageSeries, PathArgs{Slug: slug}),
	}

	d.ID = p.Text(doc, "shortlink_id")
	if d.ID == "" {
		d.ID = p.Text(doc, "canonical_id")
	}

	cover := p.Sub("cover")
	if box := cover.Select(doc); box.Exists() {
		d.Cover = Cover{
			Banner:    cover.Text(box, "banner"),
			Thumbnail: cover.Text(box, "thumbnail"),
		}
		d.Rating = Rating{
			Value:      parseLeadingFloat(cover.Text(box, "rating_value")),
			Count:      atoiDefault(cover.Text(box, "rating_count"), 0),
			Percentage: atoiDefault(cover.Text(box, "rating_percentage"), 0),
			Text:       cover.Text(box, "rating_text"),
		}
		if cover.Sub("trailer").Select(box).Exists() {
			d.Trailer = Trailer{
				URL:  cover.Text(box, "trailer_url"),
				Text: cover.Text(box, "trailer_text"),
			}
		}
		if cover.Sub("bookmark").Select(box).Exists() {
			text := cover.Text(box, "bookmark")
			d.Bookmark = Bookmark{
				Count: atoiDefault(ExtractEpisodeNumber(text), 0),
				Text:  text,
			}
		}
	}

	info := p.Sub("info")
	if box := info.Select(doc); box.Exists() {
		d.Title = info.Text(box, "title")
		d.AlterTitle = info.Text(box, "alter_title")
		d.Mindesc = info.Text(box, "mindesc")
		d.Synopsis = info.Text(box, "synopsis")
		d.SynopsisMarkdown = info.Text(box, "synopsis_markdown")
		d.Information = e.information(box)
		d.Genres = e.terms(box, info.Sub("genre"), true)
	}

	d.Tags = e.links(doc, p.Sub("tag"))

	if section := p.Sub("download_section").Select(doc); section.Exists() {
		d.DownloadBatch = e.downloads(section)
	}

	d.EpisodeNav = e.episodeNav(doc, p.Sub("episode_nav"), slug)

	episode := p.Sub("episode")
	episode.Each(doc, func(i int, n selector.NodeSet) {
		d.Episodes = append(d.Episodes, Episode{
			Index:       i,
			Number:      episode.Text(n, "number"),
			Title:       episode.Text(n, "title"),
			Subtitle:    episode.Text(n, "subtitle"),
			ReleaseDate: episode.Text(n, "release_date"),
			URL:         e.site.Absolute(episode.Text(n, "href")),
		})
	})
	return d
}

// episodeNav reads the first/newest episode shortcuts. The first episode link
// is rebuilt from its number; "#" means the number was not found.
func (e *Extractor) episodeNav(doc selector.NodeSet, nav selector.Block, slug string) EpisodeNav {
	var out EpisodeNav
	box := nav.Select(doc)
	if !box.Exists() {
		return out
	}
	entries := nav.Sub("entry").Select(box)

	if first := entries.First(); first.Exists() {
		name := nav.Text(first, "first_label")
		number := ExtractEpisodeNumber(name)
		link := "#"
		if number != "" {
			link = e.site.Absolute(EpisodePath(slug, atoiDefault(number, 0)))
		}
		out.FirstEpisode = EpisodeRef{Name: name, Number: number, URL: link}
	}

	if last := entries.Last(); last.Exists() {
		name := nav.Text(last, "new_label")
		out.NewEpisode = EpisodeRef{
			Name:   name,
			Number: ExtractEpisodeNumber(name),
			URL:    e.site.Absolute(nav.Text(last, "new_href")),
		}
	}
	return out
}
