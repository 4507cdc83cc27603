package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/zhadevv/anichin/internal/scraper/selector"
)

var embedSrc = regexp.MustCompile(`src="([^"]+)"`)

// Watch reads an episode player page.
func (e *Extractor) Watch(doc selector.NodeSet, slug string, episode int) EpisodeWatch {
	p := e.def.Page(PageWatch)
	formatted := FormatEpisodeNumber(episode)
	w := EpisodeWatch{
		Slug:                   slug,
		EpisodeNumber:          strconv.Itoa(episode),
		EpisodeNumberFormatted: formatted,
		Servers:                []Server{},
		CurrentServer:          CurrentServer{ServerID: p.Param("default_server_id")},
		Downloads:              []DownloadBatch{},
		SeriesInfo: SeriesInfo{
			Information: WatchInformation{Information: emptyInformation().Information},
			Genres:      []Term{},
		},
		RelatedEpisodes: []RelatedEpisode{},
		URL:             e.pageURL(PageWatch, PathArgs{Slug: slug, Episode: formatted}),
	}

	w.ID = p.Text(doc, "shortlink_id")

	player := p.Sub("player")
	if box := player.Select(doc); box.Exists() {
		w.Thumbnail = player.Text(box, "thumbnail")
		w.Title = player.Text(box, "title")
		if n := player.Text(box, "episode_number"); n != "" {
			w.EpisodeNumber = n
		}
		w.ReleaseDate = player.Text(box, "release_date")
		w.PostedBy = player.Text(box, "posted_by")
	}

	e.readServers(doc, p, &w)

	if section := p.Sub("download_section").Select(doc); section.Exists() {
		w.Downloads = e.downloads(section)
	}

	desc := p.Sub("description")
	if box := desc.Select(doc); box.Exists() {
		w.Description = desc.Text(box, "text")
	}

	si := p.Sub("series_info")
	if box := si.Select(doc); box.Exists() {
		facts := e.information(box)
		w.SeriesInfo = SeriesInfo{
			Title:      si.Text(box, "title"),
			AlterTitle: si.Text(box, "alter_title"),
			Thumbnail:  si.Text(box, "thumbnail"),
			Rating: ShortRating{
				Text:       si.Text(box, "rating_text"),
				Percentage: atoiDefault(si.Text(box, "rating_percentage"), 0),
			},
			Information: WatchInformation{Information: facts.Information, TotalEpisodes: facts.TotalEpisode},
			Genres:      e.terms(box, si.Sub("genre"), true),
			Synopsis:    si.Text(box, "synopsis"),
		}
	}

	nav := p.Sub("navigation")
	if box := nav.Select(doc); box.Exists() {
		sides := nav.Sub("side").Select(box)
		w.EpisodeNavigation = EpisodeNavigation{
			PrevEpisode: e.navLink(nav, sides.First()),
			AllEpisodes: e.navLink(nav, nav.Sub("center").Select(box)),
			NextEpisode: e.navLink(nav, sides.Last()),
		}
	}

	related := p.Sub("related")
	span := related.Sub("span")
	related.Each(doc, func(_ int, n selector.NodeSet) {
		spans := span.Select(n)
		w.RelatedEpisodes = append(w.RelatedEpisodes, RelatedEpisode{
			Title:     related.Text(n, "title"),
			URL:       e.site.Absolute(related.Text(n, "href")),
			Thumbnail: related.Text(n, "thumbnail"),
			PostedBy:  spans.Eq(0).Text(),
			Released:  spans.Eq(1).Text(),
		})
	})

	w.Meta = WatchMeta{
		Author:        p.Text(doc, "author"),
		DatePublished: p.Text(doc, "date_published"),
		DateModified:  p.Text(doc, "date_modified"),
		Publisher: Publisher{
			Name: p.Text(doc, "publisher_name"),
			Logo: p.Text(doc, "publisher_logo"),
		},
	}
	return w
}

// readServers collects the embedded player and the mirror dropdown. Mirror ids
// are the option positions in the dropdown.
func (e *Extractor) readServers(doc selector.NodeSet, p *Page, w *EpisodeWatch) {
	embed := p.Sub("embed")
	if iframe := embed.Select(doc); iframe.Exists() {
		src := embed.Text(iframe, "src")
		w.CurrentServer.ServerURL = src
		w.Servers = append(w.Servers, Server{
			ServerID:   p.Param("default_server_id"),
			ServerName: p.Param("default_server_name"),
			ServerURL:  src,
		})
	}

	mirror := p.Sub("mirror")
	placeholder := p.Param("placeholder_server")
	mirror.Each(doc, func(i int, option selector.NodeSet) {
		value := mirror.Text(option, "value")
		index := mirror.Text(option, "index")
		if value == "" || index == "" || index == "0" {
			return
		}

		name := mirror.Text(option, "name")
		serverURL := ResolveServerURL(value)
		if serverURL == "" || name == placeholder {
			return
		}

		id := strconv.Itoa(i)
		w.Servers = append(w.Servers, Server{ServerID: id, ServerName: name, ServerURL: serverURL})
		if i == 0 {
			w.CurrentServer = CurrentServer{ServerID: id, ServerURL: serverURL}
		}
	})
}

// navLink reads one episode navigation button. Missing buttons stay empty.
func (e *Extractor) navLink(nav selector.Block, n selector.NodeSet) PageLink {
	if !nav.Field("text").Target(n).Exists() {
		return PageLink{}
	}
	return PageLink{
		Text: nav.Text(n, "text"),
		URL:  e.site.Absolute(nav.Text(n, "href")),
	}
}

// ResolveServerURL turns a mirror option value into the player URL. Values are
// either "data:...;base64,<iframe html>", raw iframe markup or a plain URL.
func ResolveServerURL(value string) string {
	switch {
	case strings.Contains(value, "base64,"):
		_, payload, _ := strings.Cut(value, "base64,")
		decoded, err := selector.ApplyFilters(payload, []selector.Filter{{Name: "base64decode"}})
		if err != nil {
			return ""
		}
		return iframeSource(decoded)
	case strings.Contains(value, "<iframe"):
		return iframeSource(value)
	default:
		return value
	}
}

func iframeSource(markup string) string {
	if m := embedSrc.FindStringSubmatch(markup); m != nil {
		return m[1]
	}
	return ""
}
