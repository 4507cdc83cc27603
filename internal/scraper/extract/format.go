package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// maxSecondsTimestamp is 10000-01-01T00:00:00Z. Larger values are milliseconds.
const maxSecondsTimestamp = 253402300800

var (
	episodeSuffix = regexp.MustCompile(`-episode-\d+-subtitle-indonesia.*`)
	firstDigits   = regexp.MustCompile(`\d+`)
	nonCountdown  = regexp.MustCompile(`[^\d-]`)
	nonDigits     = regexp.MustCompile(`\D`)
	slugPrefixes  = []string{"seri", "genres", "season"}
)

// Site resolves links relative to the scraped site.
type Site struct {
	base *url.URL
	loc  *time.Location
}

// NewSite creates a Site for baseURL. Release times render in local time.
func NewSite(baseURL string) (*Site, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	return &Site{base: u, loc: time.Local}, nil
}

// WithLocation returns a copy of s that renders release times in loc.
func (s *Site) WithLocation(loc *time.Location) *Site {
	c := *s
	c.loc = loc
	return &c
}

// BaseURL returns the base URL without a trailing slash.
func (s *Site) BaseURL() string {
	return strings.TrimRight(s.base.String(), "/")
}

// Absolute resolves href against the base URL. Empty input stays empty.
func (s *Site) Absolute(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return s.base.ResolveReference(ref).String()
}

// Slug recovers the canonical identifier from a series, taxonomy or episode URL.
// It returns "" when the URL cannot be parsed.
func (s *Site) Slug(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	path := s.base.ResolveReference(ref).EscapedPath()

	for _, prefix := range slugPrefixes {
		if strings.Contains(path, prefix+"/") {
			return strings.Replace(strings.Replace(path, "/"+prefix+"/", "", 1), "/", "", 1)
		}
	}
	if strings.Contains(path, "-episode-") {
		return strings.Replace(episodeSuffix.ReplaceAllString(path, ""), "/", "", 1)
	}

	segments := strings.Split(path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i]
		}
	}
	return ""
}

// FormatEpisodeNumber zero-pads episode numbers below 10.
func FormatEpisodeNumber(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// ExtractEpisodeNumber returns the first run of digits in text, or "".
func ExtractEpisodeNumber(text string) string {
	return firstDigits.FindString(text)
}

// EpisodePath is the watch page path for a series slug and episode number.
func EpisodePath(slug string, episode int) string {
	return "/" + slug + "-episode-" + FormatEpisodeNumber(episode) + "-subtitle-indonesia/"
}

// FormatCountdown renders remaining seconds as "Xd Yh Zm", "Yh Zm" or "Zm".
func FormatCountdown(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "Unknown"
	}
	seconds, ok := parseLeadingInt(nonCountdown.ReplaceAllString(raw, ""))
	if !ok {
		return "Unknown"
	}
	if seconds < 0 {
		return "Already released"
	}

	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	minutes := (seconds % 3600) / 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

// FormatReleaseTime renders a unix timestamp (seconds or milliseconds) as "At HH:MM".
func (s *Site) FormatReleaseTime(raw string) string {
	return FormatReleaseTime(raw, s.loc)
}

// FormatReleaseTime renders a unix timestamp (seconds or milliseconds) as "At HH:MM" in loc.
func FormatReleaseTime(raw string, loc *time.Location) string {
	digits := nonDigits.ReplaceAllString(raw, "")
	if digits == "" {
		return "Unknown"
	}
	ts, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return "Unknown"
	}
	if ts > maxSecondsTimestamp {
		ts /= 1000
	}
	if loc == nil {
		loc = time.Local
	}
	return "At " + time.Unix(ts, 0).In(loc).Format("15:04")
}

// parseLeadingInt parses an optional sign followed by digits, ignoring the rest.
func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseLeadingFloat parses the numeric prefix of s, or returns 0.
func parseLeadingFloat(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	dot := false
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) {
		c := s[end]
		if c == '.' && !dot {
			dot = true
		} else if c < '0' || c > '9' {
			break
		}
		end++
	}
	f, err := strconv.ParseFloat(strings.TrimRight(s[:end], "."), 64)
	if err != nil {
		return 0
	}
	return f
}

// atoiDefault is parseLeadingInt with a fallback.
func atoiDefault(s string, def int) int {
	if n, ok := parseLeadingInt(s); ok {
		return n
	}
	return def
}
