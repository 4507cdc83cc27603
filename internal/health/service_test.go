package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhadevv/anichin/internal/testutil"
)

type recordingBroadcaster struct {
	mu      sync.Mutex
	updates []HealthUpdatePayload
}

func (b *recordingBroadcaster) Broadcast(msgType string, payload any) {
	if msgType != EventHealthUpdated {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updates = append(b.updates, payload.(HealthUpdatePayload))
}

func TestService_StatusTransitions(t *testing.T) {
	s := NewService(testutil.NopLogger())
	b := &recordingBroadcaster{}
	s.SetBroadcaster(b)

	s.RegisterItem(CategoryOperations, "series", "series")
	assert.True(t, s.IsHealthy(CategoryOperations, "series"))

	s.SetWarning(CategoryOperations, "series", "HTTP 503: Failed to parse series detail")
	item := s.GetItem(CategoryOperations, "series")
	require.NotNil(t, item)
	assert.Equal(t, StatusWarning, item.Status)
	assert.NotNil(t, item.Timestamp)
	assert.False(t, s.IsCategoryHealthy(CategoryOperations))

	// unchanged status is not rebroadcast
	s.SetWarning(CategoryOperations, "series", "HTTP 503: Failed to parse series detail")

	s.ClearStatus(CategoryOperations, "series")
	assert.True(t, s.IsHealthy(CategoryOperations, "series"))
	assert.Nil(t, s.GetItem(CategoryOperations, "series").Timestamp)

	require.Len(t, b.updates, 3)
	assert.Equal(t, StatusOK, b.updates[0].Status)
	assert.Equal(t, StatusWarning, b.updates[1].Status)
	assert.Equal(t, StatusOK, b.updates[2].Status)
}

func TestService_WarningEscalates(t *testing.T) {
	s := NewService(testutil.NopLogger())
	clock := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	s.RegisterItem(CategoryOperations, "watch", "watch")

	tests := []struct {
		name         string
		fail         bool
		wantStatus   HealthStatus
		wantFailures int
	}{
		{"first failure", true, StatusWarning, 1},
		{"second failure", true, StatusWarning, 2},
		{"third failure escalates", true, StatusError, 3},
		{"fourth failure stays error", true, StatusError, 4},
		{"success resets", false, StatusOK, 0},
		{"new failure starts over", true, StatusWarning, 1},
	}

	var since *time.Time
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.fail {
				s.SetWarning(CategoryOperations, "watch", "HTTP 500: Failed to parse watch")
			} else {
				s.ClearStatus(CategoryOperations, "watch")
			}

			item := s.GetItem(CategoryOperations, "watch")
			require.NotNil(t, item)
			assert.Equal(t, tt.wantStatus, item.Status)
			assert.Equal(t, tt.wantFailures, item.Failures)
			require.NotNil(t, item.LastChecked)

			switch {
			case tt.wantStatus == StatusOK:
				assert.Nil(t, item.Timestamp)
				since = nil
			case since == nil:
				require.NotNil(t, item.Timestamp)
				since = item.Timestamp
			default:
				assert.Equal(t, *since, *item.Timestamp, "timestamp marks the first failure")
			}
		})
	}
}

func TestService_BinaryCategoryIgnoresWarning(t *testing.T) {
	s := NewService(testutil.NopLogger())
	s.RegisterItemStr("upstream", "anichin", "https://anichin.cafe")

	s.SetWarningStr("upstream", "anichin", "slow")
	assert.True(t, s.IsHealthy(CategoryUpstream, "anichin"))

	s.SetErrorStr("upstream", "anichin", "connection refused")
	assert.False(t, s.IsHealthy(CategoryUpstream, "anichin"))

	s.ClearStatusStr("upstream", "anichin")
	assert.True(t, s.IsHealthy(CategoryUpstream, "anichin"))
}

func TestService_RegisterKeepsStatus(t *testing.T) {
	s := NewService(testutil.NopLogger())
	s.RegisterItem(CategoryUpstream, "anichin", "anichin")
	s.SetError(CategoryUpstream, "anichin", "down")

	s.RegisterItem(CategoryUpstream, "anichin", "anichin")
	assert.False(t, s.IsHealthy(CategoryUpstream, "anichin"))

	s.UnregisterItem(CategoryUpstream, "anichin")
	assert.Nil(t, s.GetItem(CategoryUpstream, "anichin"))

	// unknown items are ignored
	s.SetError(CategoryUpstream, "missing", "down")
	assert.Empty(t, s.GetByCategory(CategoryUpstream))
}

func TestService_Summary(t *testing.T) {
	s := NewService(testutil.NopLogger())
	s.RegisterItem(CategoryOperations, "home", "home")
	s.RegisterItem(CategoryOperations, "watch", "watch")
	s.SetError(CategoryOperations, "watch", "boom")
	s.RegisterItem(CategoryUpstream, "anichin", "anichin")

	summary := s.GetSummary()
	assert.True(t, summary.HasIssues)
	require.Len(t, summary.Categories, 2)
	assert.Equal(t, CategorySummary{Category: CategoryUpstream, OK: 1}, summary.Categories[0])
	assert.Equal(t, CategorySummary{Category: CategoryOperations, OK: 1, Error: 1}, summary.Categories[1])

	all := s.GetAll()
	require.Len(t, all.Operations, 2)
	assert.Equal(t, "home", all.Operations[0].ID)
	assert.Equal(t, "watch", all.Operations[1].ID)
}

func TestHealthItem_MarshalJSON(t *testing.T) {
	raw, err := json.Marshal(HealthItem{ID: "a", Status: StatusOK, Message: "stale"})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "stale")

	raw, err = json.Marshal(HealthItem{ID: "a", Status: StatusError, Message: "down"})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"message":"down"`)
}

func TestHandlers(t *testing.T) {
	s := NewService(testutil.NopLogger())
	s.RegisterItem(CategoryUpstream, "anichin", "anichin")

	up := true
	h := NewHandlers(s, &TestFunctions{
		TestUpstream: func(_ context.Context, id string) (bool, string) {
			if up {
				return true, ""
			}
			return false, "connection refused"
		},
	})
	e := echo.New()
	h.RegisterRoutes(e.Group("/api/v1/health"))

	do := func(method, target string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
		return rec
	}

	rec := do(http.MethodGet, "/api/v1/health/upstream")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"anichin"`)

	rec = do(http.MethodGet, "/api/v1/health/storage")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	up = false
	rec = do(http.MethodPost, "/api/v1/health/upstream/anichin/test")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
	assert.False(t, s.IsHealthy(CategoryUpstream, "anichin"))

	up = true
	rec = do(http.MethodPost, "/api/v1/health/upstream/test")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, s.IsHealthy(CategoryUpstream, "anichin"))

	rec = do(http.MethodPost, "/api/v1/health/upstream/other/test")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(http.MethodPost, "/api/v1/health/storage/test")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlers_ResetOperation(t *testing.T) {
	s := NewService(testutil.NopLogger())
	s.RegisterItem(CategoryOperations, "home", "home")
	for i := 0; i < EscalateAfter; i++ {
		s.SetWarning(CategoryOperations, "home", "Failed to parse home")
	}
	require.Equal(t, StatusError, s.GetItem(CategoryOperations, "home").Status)

	e := echo.New()
	NewHandlers(s, nil).RegisterRoutes(e.Group("/health"))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health/operations/home/test", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var result TestResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Success)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health/operations/home/reset", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	item := s.GetItem(CategoryOperations, "home")
	assert.Equal(t, StatusOK, item.Status)
	assert.Zero(t, item.Failures)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health/operations/missing/reset", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
