// Package testutil provides shared helpers for package tests.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// NewTestLogger creates a test logger that outputs to t.Log.
func NewTestLogger(t *testing.T) zerolog.Logger {
	t.Helper()
	return zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel)
}

// NopLogger returns a no-op logger for tests that don't need output.
func NopLogger() zerolog.Logger {
	return zerolog.Nop()
}

// Route describes a canned upstream response.
type Route struct {
	Status int
	Body   string
	Delay  time.Duration
	Header http.Header
}

// Upstream is a fake site served from memory. Paths not registered return 404.
type Upstream struct {
	*httptest.Server
	routes map[string]Route
	hits   atomic.Int64
	agents chan string
}

// NewUpstream starts an httptest server serving routes keyed by request URI
// (path plus raw query). The server is closed when the test ends.
func NewUpstream(t *testing.T, routes map[string]Route) *Upstream {
	t.Helper()

	u := &Upstream{routes: routes, agents: make(chan string, 64)}
	u.Server = httptest.NewServer(http.HandlerFunc(u.serve))
	t.Cleanup(u.Close)
	return u
}

func (u *Upstream) serve(w http.ResponseWriter, r *http.Request) {
	u.hits.Add(1)
	select {
	case u.agents <- r.UserAgent():
	default:
	}

	route, ok := u.routes[r.URL.RequestURI()]
	if !ok {
		route, ok = u.routes[r.URL.Path]
	}
	if !ok {
		http.NotFound(w, r)
		return
	}

	if route.Delay > 0 {
		select {
		case <-time.After(route.Delay):
		case <-r.Context().Done():
			return
		}
	}

	for k, vs := range route.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	status := route.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(route.Body))
}

// Hits returns the number of requests received.
func (u *Upstream) Hits() int64 {
	return u.hits.Load()
}

// UserAgents drains the User-Agent headers seen so far.
func (u *Upstream) UserAgents() []string {
	var out []string
	for {
		select {
		case ua := <-u.agents:
			out = append(out, ua)
		default:
			return out
		}
	}
}

// Fixture reads a file from the calling package's testdata directory.
func Fixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return string(data)
}

// RepoRoot returns the module root, useful for tests that need shared files.
func RepoRoot() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..")
}
