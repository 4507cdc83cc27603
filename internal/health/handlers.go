package health

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
)

// Handlers exposes the health service over HTTP.
type Handlers struct {
	health    *Service
	testFuncs *TestFunctions
}

// TestFunctions holds the active checks per category.
type TestFunctions struct {
	// TestUpstream probes the site registered under id.
	TestUpstream func(ctx context.Context, id string) (success bool, message string)
}

// TestResult is the outcome of one on-demand check.
type TestResult struct {
	ID        string `json:"id"`
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	LatencyMS int64  `json:"latencyMs"`
}

func NewHandlers(health *Service, testFuncs *TestFunctions) *Handlers {
	return &Handlers{
		health:    health,
		testFuncs: testFuncs,
	}
}

// RegisterRoutes registers health routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetAll)
	g.GET("/summary", h.GetSummary)
	g.GET("/:category", h.GetByCategory)
	g.POST("/:category/test", h.TestCategory)
	g.POST("/:category/:id/test", h.TestItem)
	g.POST("/:category/:id/reset", h.ResetItem)
}

// GET /api/v1/health
func (h *Handlers) GetAll(c echo.Context) error {
	return c.JSON(http.StatusOK, h.health.GetAll())
}

// GET /api/v1/health/summary
func (h *Handlers) GetSummary(c echo.Context) error {
	return c.JSON(http.StatusOK, h.health.GetSummary())
}

// GET /api/v1/health/:category
func (h *Handlers) GetByCategory(c echo.Context) error {
	category, err := categoryParam(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.health.GetByCategory(category))
}

// TestCategory runs the active check for every item in a category, one at a
// time so the upstream sees a single probe in flight.
// POST /api/v1/health/:category/test
func (h *Handlers) TestCategory(c echo.Context) error {
	category, err := categoryParam(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	results := lo.Map(h.health.GetByCategory(category), func(item HealthItem, _ int) TestResult {
		return h.test(ctx, category, item.ID)
	})

	return c.JSON(http.StatusOK, map[string]any{
		"category": category,
		"results":  results,
	})
}

// POST /api/v1/health/:category/:id/test
func (h *Handlers) TestItem(c echo.Context) error {
	category, err := categoryParam(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	if h.health.GetItem(category, id) == nil {
		return echo.NewHTTPError(http.StatusNotFound, "health item not found")
	}

	return c.JSON(http.StatusOK, h.test(c.Request().Context(), category, id))
}

// ResetItem marks an item OK and clears its failure count, e.g. after a
// selector fix was deployed for an operation.
// POST /api/v1/health/:category/:id/reset
func (h *Handlers) ResetItem(c echo.Context) error {
	category, err := categoryParam(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	if h.health.GetItem(category, id) == nil {
		return echo.NewHTTPError(http.StatusNotFound, "health item not found")
	}

	h.health.ClearStatus(category, id)
	return c.JSON(http.StatusOK, h.health.GetItem(category, id))
}

func (h *Handlers) test(ctx context.Context, category HealthCategory, id string) TestResult {
	result := TestResult{ID: id}

	switch category {
	case CategoryUpstream:
		if h.testFuncs == nil || h.testFuncs.TestUpstream == nil {
			result.Message = "upstream testing not configured"
			return result
		}

		start := time.Now()
		ok, message := h.testFuncs.TestUpstream(ctx, id)
		result.LatencyMS = time.Since(start).Milliseconds()

		if ok {
			h.health.ClearStatus(CategoryUpstream, id)
			result.Success = true
			result.Message = "Upstream reachable"
		} else {
			h.health.SetError(CategoryUpstream, id, message)
			result.Message = message
		}

	case CategoryOperations:
		// Operations have no probe of their own; every scrape reports.
		item := h.health.GetItem(category, id)
		result.Success = item != nil && item.Status == StatusOK
		result.Message = "Operations are checked on every scrape"
	}

	return result
}

func categoryParam(c echo.Context) (HealthCategory, error) {
	category := c.Param("category")
	if !IsCategory(category) {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid health category")
	}
	return HealthCategory(category), nil
}
