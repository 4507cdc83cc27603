package logger

import (
	"bytes"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHub struct {
	mu     sync.Mutex
	events []string
}

func (h *recordingHub) Broadcast(msgType string, _ any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, msgType)
}

func TestRingBuffer(t *testing.T) {
	rb := NewRingBuffer[int](3)
	assert.Empty(t, rb.GetAll())

	for i := 1; i <= 5; i++ {
		rb.Push(i)
	}

	assert.Equal(t, 3, rb.Len())
	assert.Equal(t, []int{3, 4, 5}, rb.GetAll())
	assert.Equal(t, []int{4, 5}, rb.Last(2))
	assert.Equal(t, []int{3, 4, 5}, rb.Last(10))

	rb.Clear()
	assert.Equal(t, 0, rb.Len())
	rb.Push(9)
	assert.Equal(t, []int{9}, rb.GetAll())
}

func TestLogger_JSONOutputWithComponent(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "json", Output: &buf})

	log.WithComponent("fetch").Info().Str("url", "/schedule/").Msg("request complete")
	log.Debug().Msg("hidden")

	out := buf.String()
	assert.Contains(t, out, `"component":"fetch"`)
	assert.Contains(t, out, `"message":"request complete"`)
	if !IsDevBuild() {
		assert.NotContains(t, out, "hidden")
	}
}

func TestLogger_Streaming(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "json", Output: &buf, EnableStreaming: true, BufferSize: 2})
	hub := &recordingHub{}
	log.Broadcaster().SetHub(hub)

	log.WithComponent("anichin").Info().Str("operation", "schedule").Msg("one")
	log.Info().Msg("two")
	log.Info().Msg("three")

	entries := log.GetRecentLogs()
	require.Len(t, entries, 2)
	assert.Equal(t, "two", entries[0].Message)
	assert.Equal(t, "three", entries[1].Message)
	assert.Equal(t, "info", entries[1].Level)
	assert.Len(t, hub.events, 3)
	assert.Equal(t, EventLogEntry, hub.events[0])
}

func TestLogger_FileOutput(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "json", Output: &buf, Path: dir})
	defer log.Close()

	assert.Equal(t, filepath.Join(dir, LogFileName), log.GetLogFilePath())
	assert.Empty(t, log.GetRecentLogs())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"trace", "trace"},
		{"DEBUG", "debug"},
		{"warning", "warn"},
		{"error", "error"},
		{"bogus", "info"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in).String())
		})
	}
}

func TestLogBroadcaster_IgnoresMalformed(t *testing.T) {
	b := NewLogBroadcaster(nil, 0)
	n, err := b.Write([]byte("not json"))
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Empty(t, b.GetRecentLogs())
}
