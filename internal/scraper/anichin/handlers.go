package anichin

import (
	"context"
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/zhadevv/anichin/internal/scraper/envelope"
	"github.com/zhadevv/anichin/internal/scraper/extract"
)

// Handlers provides HTTP handlers for scrape operations.
type Handlers struct {
	client *Client
}

// NewHandlers creates new scrape handlers.
func NewHandlers(client *Client) *Handlers {
	return &Handlers{client: client}
}

// RegisterRoutes registers the scrape routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("/sidebar", h.Sidebar)
	g.GET("/home", h.Home)
	g.GET("/search", h.Search)
	g.GET("/schedule", h.Schedule)
	g.GET("/schedule/:day", h.Schedule)
	g.GET("/ongoing", h.Ongoing)
	g.GET("/completed", h.Completed)
	g.GET("/azlist", h.AZList)
	g.GET("/genres/:slug", h.Genres)
	g.GET("/studio/:slug", h.Studio)
	g.GET("/network/:slug", h.Network)
	g.GET("/country/:slug", h.Country)
	g.GET("/season/:slug", h.Season)
	g.GET("/series/:slug", h.Series)
	g.GET("/watch/:slug/:episode", h.Watch)
	g.GET("/advanced-search", h.AdvancedSearch)
	g.GET("/quickfilter", h.QuickFilter)
}

// AdvancedSearchRequest represents the query parameters of the advanced search.
type AdvancedSearchRequest struct {
	Mode    string   `query:"mode"`
	Page    int      `query:"page"`
	Status  string   `query:"status"`
	Type    string   `query:"type"`
	Order   string   `query:"order"`
	Sub     string   `query:"sub"`
	Genres  []string `query:"genre"`
	Studios []string `query:"studio"`
	Seasons []string `query:"season"`
	PerPage int      `query:"per_page"`
}

// Filter converts the request into a search filter.
func (r AdvancedSearchRequest) Filter() extract.SearchFilter {
	return extract.SearchFilter{
		Status:  r.Status,
		Type:    r.Type,
		Order:   r.Order,
		Sub:     r.Sub,
		Genres:  r.Genres,
		Studios: r.Studios,
		Seasons: r.Seasons,
		PerPage: r.PerPage,
	}
}

func respond(c echo.Context, env envelope.Envelope) error {
	return c.JSON(env.HTTPStatus(), env)
}

// rejected answers a request whose parameters never reached the client with
// the same envelope an operation returns for invalid input.
func (h *Handlers) rejected(c echo.Context, operation, message string) error {
	return respond(c, invalid[struct{}](h.client, operation, message))
}

// pageParam reads ?page, defaulting to 1. ok is false once the rejection has
// been written.
func (h *Handlers) pageParam(c echo.Context, operation string) (page int, ok bool, err error) {
	page = 1
	if bindErr := echo.QueryParamsBinder(c).Int("page", &page).BindError(); bindErr != nil {
		return 0, false, h.rejected(c, operation, fmt.Sprintf("Page %q is not a number", c.QueryParam("page")))
	}
	return page, true, nil
}

// Sidebar returns the sitewide sidebar.
// GET /api/v1/sidebar
func (h *Handlers) Sidebar(c echo.Context) error {
	return respond(c, h.client.Sidebar(c.Request().Context()))
}

// Home returns the landing page.
// GET /api/v1/home?page=2
func (h *Handlers) Home(c echo.Context) error {
	page, ok, err := h.pageParam(c, OpHome)
	if !ok {
		return err
	}
	return respond(c, h.client.Home(c.Request().Context(), page))
}

// Search runs a keyword search.
// GET /api/v1/search?q=martial&page=1
func (h *Handlers) Search(c echo.Context) error {
	page, ok, err := h.pageParam(c, OpSearch)
	if !ok {
		return err
	}
	return respond(c, h.client.Search(c.Request().Context(), c.QueryParam("q"), page))
}

// Schedule returns the whole week, or one day when :day is given.
// GET /api/v1/schedule/monday
func (h *Handlers) Schedule(c echo.Context) error {
	return respond(c, h.client.Schedule(c.Request().Context(), c.Param("day")))
}

// Ongoing returns the ongoing index.
// GET /api/v1/ongoing?page=1
func (h *Handlers) Ongoing(c echo.Context) error {
	page, ok, err := h.pageParam(c, OpOngoing)
	if !ok {
		return err
	}
	return respond(c, h.client.Ongoing(c.Request().Context(), page))
}

// Completed returns the completed index.
// GET /api/v1/completed?page=1
func (h *Handlers) Completed(c echo.Context) error {
	page, ok, err := h.pageParam(c, OpCompleted)
	if !ok {
		return err
	}
	return respond(c, h.client.Completed(c.Request().Context(), page))
}

// AZList returns the alphabetical index.
// GET /api/v1/azlist?letter=A&page=1
func (h *Handlers) AZList(c echo.Context) error {
	page, ok, err := h.pageParam(c, OpAZList)
	if !ok {
		return err
	}
	return respond(c, h.client.AZList(c.Request().Context(), page, c.QueryParam("letter")))
}

// Genres returns one genre listing.
// GET /api/v1/genres/:slug?page=1
func (h *Handlers) Genres(c echo.Context) error {
	return h.taxonomy(c, OpGenres, h.client.Genres)
}

// Studio returns one studio listing.
// GET /api/v1/studio/:slug?page=1
func (h *Handlers) Studio(c echo.Context) error {
	return h.taxonomy(c, OpStudio, h.client.Studio)
}

// Network returns one network listing.
// GET /api/v1/network/:slug?page=1
func (h *Handlers) Network(c echo.Context) error {
	return h.taxonomy(c, OpNetwork, h.client.Network)
}

// Country returns one country listing.
// GET /api/v1/country/:slug?page=1
func (h *Handlers) Country(c echo.Context) error {
	return h.taxonomy(c, OpCountry, h.client.Country)
}

type taxonomyFunc = func(ctx context.Context, slug string, page int) *envelope.Response[extract.Taxonomy]

func (h *Handlers) taxonomy(c echo.Context, operation string, fn taxonomyFunc) error {
	page, ok, err := h.pageParam(c, operation)
	if !ok {
		return err
	}
	return respond(c, fn(c.Request().Context(), c.Param("slug"), page))
}

// Season returns one seasonal chart.
// GET /api/v1/season/:slug
func (h *Handlers) Season(c echo.Context) error {
	return respond(c, h.client.Season(c.Request().Context(), c.Param("slug")))
}

// Series returns a series detail page.
// GET /api/v1/series/:slug
func (h *Handlers) Series(c echo.Context) error {
	return respond(c, h.client.Series(c.Request().Context(), c.Param("slug")))
}

// Watch returns an episode player page.
// GET /api/v1/watch/:slug/:episode
func (h *Handlers) Watch(c echo.Context) error {
	episode, err := strconv.Atoi(c.Param("episode"))
	if err != nil {
		return h.rejected(c, OpWatch, fmt.Sprintf("Episode %q is not a number", c.Param("episode")))
	}
	return respond(c, h.client.Watch(c.Request().Context(), c.Param("slug"), episode))
}

// AdvancedSearch runs the series index search.
// GET /api/v1/advanced-search?mode=image&genre=action&order=update&page=2
func (h *Handlers) AdvancedSearch(c echo.Context) error {
	req := AdvancedSearchRequest{Page: 1}
	if err := c.Bind(&req); err != nil {
		return h.rejected(c, OpAdvancedSearch, "Invalid advanced search parameters")
	}
	return respond(c, h.client.AdvancedSearch(c.Request().Context(), req.Mode, req.Filter(), req.Page))
}

// QuickFilter returns the filter form options.
// GET /api/v1/quickfilter
func (h *Handlers) QuickFilter(c echo.Context) error {
	return respond(c, h.client.QuickFilter(c.Request().Context()))
}
