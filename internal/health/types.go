package health

import (
	"encoding/json"
	"time"

	"github.com/samber/lo"
)

// HealthStatus represents the health state of an item.
type HealthStatus string

const (
	StatusOK      HealthStatus = "ok"
	StatusWarning HealthStatus = "warning"
	StatusError   HealthStatus = "error"
)

// HealthCategory represents the category of health items.
type HealthCategory string

const (
	// CategoryUpstream tracks reachability of scraped sites.
	CategoryUpstream HealthCategory = "upstream"
	// CategoryOperations tracks the last outcome of each scrape operation.
	CategoryOperations HealthCategory = "operations"
)

// AllCategories returns all health categories in display order.
func AllCategories() []HealthCategory {
	return []HealthCategory{
		CategoryUpstream,
		CategoryOperations,
	}
}

// IsCategory reports whether c names a known category.
func IsCategory(c string) bool {
	return lo.Contains(AllCategories(), HealthCategory(c))
}

// HealthItem represents a single health-tracked item. Timestamp is when the
// item left OK status; Failures counts consecutive failed checks.
type HealthItem struct {
	ID          string         `json:"id"`
	Category    HealthCategory `json:"category"`
	Name        string         `json:"name"`
	Status      HealthStatus   `json:"status"`
	Message     string         `json:"message,omitempty"`
	Failures    int            `json:"failures,omitempty"`
	Timestamp   *time.Time     `json:"timestamp,omitempty"`
	LastChecked *time.Time     `json:"lastChecked,omitempty"`
}

// MarshalJSON omits the failure details of an OK item.
func (h HealthItem) MarshalJSON() ([]byte, error) {
	type Alias HealthItem
	alias := Alias(h)

	if h.Status == StatusOK {
		alias.Timestamp = nil
		alias.Message = ""
	}

	return json.Marshal(alias)
}

// CategorySummary provides counts for a health category.
type CategorySummary struct {
	Category HealthCategory `json:"category"`
	OK       int            `json:"ok"`
	Warning  int            `json:"warning"`
	Error    int            `json:"error"`
}

// Total returns the total number of items in the category.
func (c CategorySummary) Total() int {
	return c.OK + c.Warning + c.Error
}

// HasIssues returns true if there are any warning or error items.
func (c CategorySummary) HasIssues() bool {
	return c.Warning > 0 || c.Error > 0
}

// HealthResponse contains all health items grouped by category.
type HealthResponse struct {
	Upstream   []HealthItem `json:"upstream"`
	Operations []HealthItem `json:"operations"`
}

// HealthSummary provides an overview of system health.
type HealthSummary struct {
	Categories []CategorySummary `json:"categories"`
	HasIssues  bool              `json:"hasIssues"`
}

// HealthUpdatePayload is the WebSocket payload for health updates.
type HealthUpdatePayload struct {
	Category  HealthCategory `json:"category"`
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Status    HealthStatus   `json:"status"`
	Message   string         `json:"message,omitempty"`
	Failures  int            `json:"failures,omitempty"`
	Timestamp *time.Time     `json:"timestamp,omitempty"`
}

// IsBinaryCategory returns true if the category only supports OK/Error (no Warning).
// The upstream site is either reachable or not.
func IsBinaryCategory(category HealthCategory) bool {
	return category == CategoryUpstream
}
