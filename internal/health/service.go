package health

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/zhadevv/anichin/internal/logger"
)

// EventHealthUpdated is broadcast whenever an item changes status.
const EventHealthUpdated = "health:updated"

// EscalateAfter is the number of consecutive warnings after which an item is
// reported as an error. A scrape that fails once is usually a transient
// upstream hiccup; one that keeps failing usually means the markup changed.
const EscalateAfter = 3

// Service tracks the health of the scraped site and of each scrape operation.
// All state is in-memory and resets on application restart.
type Service struct {
	items       map[HealthCategory]map[string]*HealthItem
	mu          sync.RWMutex
	broadcaster logger.Broadcaster
	logger      zerolog.Logger
	now         func() time.Time
}

// NewService creates a new health service.
func NewService(logger zerolog.Logger) *Service {
	s := &Service{
		items:  make(map[HealthCategory]map[string]*HealthItem),
		logger: logger.With().Str("component", "health").Logger(),
		now:    time.Now,
	}

	for _, cat := range AllCategories() {
		s.items[cat] = make(map[string]*HealthItem)
	}

	return s
}

// SetBroadcaster sets the WebSocket broadcaster for real-time updates.
func (s *Service) SetBroadcaster(b logger.Broadcaster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcaster = b
}

// RegisterItemStr is a string-based wrapper for RegisterItem.
// This lets the scraper report without importing the health types.
func (s *Service) RegisterItemStr(category, id, name string) {
	s.RegisterItem(HealthCategory(category), id, name)
}

// SetErrorStr is a string-based wrapper for SetError.
func (s *Service) SetErrorStr(category, id, message string) {
	s.SetError(HealthCategory(category), id, message)
}

// SetWarningStr is a string-based wrapper for SetWarning.
func (s *Service) SetWarningStr(category, id, message string) {
	s.SetWarning(HealthCategory(category), id, message)
}

// ClearStatusStr is a string-based wrapper for ClearStatus.
func (s *Service) ClearStatusStr(category, id string) {
	s.ClearStatus(HealthCategory(category), id)
}

// RegisterItem adds an item with OK status. An item that is already
// registered keeps its status and counters.
func (s *Service) RegisterItem(category HealthCategory, id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[category][id]; exists {
		return
	}

	item := &HealthItem{
		ID:       id,
		Category: category,
		Name:     name,
		Status:   StatusOK,
	}
	s.items[category][id] = item

	s.logger.Debug().
		Str("category", string(category)).
		Str("id", id).
		Str("name", name).
		Msg("Registered health item")

	s.broadcastUpdate(item)
}

// UnregisterItem removes an item from health tracking.
func (s *Service) UnregisterItem(category HealthCategory, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[category][id]; exists {
		delete(s.items[category], id)

		s.logger.Debug().
			Str("category", string(category)).
			Str("id", id).
			Msg("Unregistered health item")
	}
}

// SetError records a failure and sets the item to Error status.
func (s *Service) SetError(category HealthCategory, id, message string) {
	s.record(category, id, StatusError, message)
}

// SetWarning records a failure and sets the item to Warning status, or to
// Error once EscalateAfter consecutive failures were recorded. Binary
// categories only know OK and Error, so this is a no-op for them.
func (s *Service) SetWarning(category HealthCategory, id, message string) {
	if IsBinaryCategory(category) {
		s.logger.Debug().
			Str("category", string(category)).
			Str("id", id).
			Msg("Ignoring warning for binary health category")
		return
	}
	s.record(category, id, StatusWarning, message)
}

// ClearStatus records a success and resets the item to OK status.
func (s *Service) ClearStatus(category HealthCategory, id string) {
	s.record(category, id, StatusOK, "")
}

// record stores the outcome of one check. Listeners are notified only when
// the status or message changes.
func (s *Service) record(category HealthCategory, id string, status HealthStatus, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.items[category][id]
	if !exists {
		s.logger.Warn().
			Str("category", string(category)).
			Str("id", id).
			Msg("Attempted to update status for unregistered item")
		return
	}

	now := s.now()
	item.LastChecked = &now

	if status == StatusOK {
		item.Failures = 0
	} else {
		item.Failures++
		if status == StatusWarning && item.Failures >= EscalateAfter {
			status = StatusError
		}
	}

	if item.Status == status && item.Message == message {
		return
	}

	oldStatus := item.Status
	item.Status = status
	item.Message = message

	if status != StatusOK {
		if oldStatus == StatusOK {
			item.Timestamp = &now
		}
	} else {
		item.Timestamp = nil
	}

	event := s.logger.Info()
	if status == StatusError {
		event = s.logger.Warn()
	}
	event.
		Str("category", string(category)).
		Str("id", id).
		Str("name", item.Name).
		Str("oldStatus", string(oldStatus)).
		Str("newStatus", string(status)).
		Int("failures", item.Failures).
		Str("message", message).
		Msg("Health status changed")

	s.broadcastUpdate(item)
}

// GetAll returns all health items grouped by category.
func (s *Service) GetAll() *HealthResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return &HealthResponse{
		Upstream:   s.itemsToSlice(CategoryUpstream),
		Operations: s.itemsToSlice(CategoryOperations),
	}
}

// GetByCategory returns all items in a specific category.
func (s *Service) GetByCategory(category HealthCategory) []HealthItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.itemsToSlice(category)
}

// GetItem returns a copy of a single item, or nil.
func (s *Service) GetItem(category HealthCategory, id string) *HealthItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if item, exists := s.items[category][id]; exists {
		c := *item
		return &c
	}
	return nil
}

// GetSummary returns counts per category.
func (s *Service) GetSummary() *HealthSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := &HealthSummary{
		Categories: make([]CategorySummary, 0, len(AllCategories())),
	}

	for _, cat := range AllCategories() {
		counts := lo.CountValuesBy(lo.Values(s.items[cat]), func(item *HealthItem) HealthStatus {
			return item.Status
		})
		catSummary := CategorySummary{
			Category: cat,
			OK:       counts[StatusOK],
			Warning:  counts[StatusWarning],
			Error:    counts[StatusError],
		}
		summary.HasIssues = summary.HasIssues || catSummary.HasIssues()
		summary.Categories = append(summary.Categories, catSummary)
	}

	return summary
}

// IsHealthy returns true if the specified item is OK.
func (s *Service) IsHealthy(category HealthCategory, id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if item, exists := s.items[category][id]; exists {
		return item.Status == StatusOK
	}
	return false
}

// IsCategoryHealthy returns true if all items in the category are OK.
func (s *Service) IsCategoryHealthy(category HealthCategory) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lo.EveryBy(lo.Values(s.items[category]), func(item *HealthItem) bool {
		return item.Status == StatusOK
	})
}

// itemsToSlice copies the items of a category ordered by ID.
func (s *Service) itemsToSlice(category HealthCategory) []HealthItem {
	items := lo.Map(lo.Values(s.items[category]), func(item *HealthItem, _ int) HealthItem {
		return *item
	})
	slices.SortFunc(items, func(a, b HealthItem) int { return strings.Compare(a.ID, b.ID) })
	return items
}

// broadcastUpdate sends a health update via WebSocket. Callers hold s.mu.
func (s *Service) broadcastUpdate(item *HealthItem) {
	if s.broadcaster == nil {
		return
	}

	s.broadcaster.Broadcast(EventHealthUpdated, HealthUpdatePayload{
		Category:  item.Category,
		ID:        item.ID,
		Name:      item.Name,
		Status:    item.Status,
		Message:   item.Message,
		Failures:  item.Failures,
		Timestamp: item.Timestamp,
	})
}
