package selector

import (
	"encoding/base64"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// FilterFunc is a function that transforms a string value.
type FilterFunc func(value string, args []string) (string, error)

// Filter is one named transformation applied to an extracted value.
type Filter struct {
	Name string `yaml:"name"`
	Args any    `yaml:"args"`
}

var filters = map[string]FilterFunc{
	// String manipulation
	"replace":    filterReplace,
	"re_replace": filterReReplace,
	"split":      filterSplit,
	"trim":       filterTrim,
	"trimleft":   filterTrimLeft,
	"trimright":  filterTrimRight,
	"prepend":    filterPrepend,
	"append":     filterAppend,
	"tolower":    filterToLower,
	"toupper":    filterToUpper,
	"strip":      filterStrip,
	"normalize":  filterNormalize,

	// Extraction
	"regexp": filterRegexp,
	"digits": filterDigits,

	// URL processing
	"urldecode":   filterURLDecode,
	"querystring": filterQueryString,

	// HTML processing
	"htmldecode": filterHTMLDecode,
	"striptags":  filterStripTags,

	// Encoding
	"base64decode": filterBase64Decode,

	"validate": filterValidate,
}

// HasFilter reports whether name is a registered filter.
func HasFilter(name string) bool {
	_, ok := filters[name]
	return ok
}

// ApplyFilters applies a sequence of filters to a value. Unknown filters are skipped.
func ApplyFilters(value string, filterList []Filter) (string, error) {
	result := value
	for _, f := range filterList {
		fn, ok := filters[f.Name]
		if !ok {
			continue
		}
		var err error
		result, err = fn(result, normalizeFilterArgs(f.Args))
		if err != nil {
			return "", fmt.Errorf("filter %s failed: %w", f.Name, err)
		}
	}
	return result, nil
}

// normalizeFilterArgs converts YAML-decoded filter args to []string.
func normalizeFilterArgs(args any) []string {
	switch v := args.(type) {
	case nil:
		return nil
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		result := make([]string, len(v))
		for i, item := range v {
			result[i] = fmt.Sprintf("%v", item)
		}
		return result
	default:
		return []string{fmt.Sprintf("%v", v)}
	}
}

var (
	regexCache   = map[string]*regexp.Regexp{}
	regexCacheMu sync.RWMutex
)

// compile caches patterns; definitions reuse the same few expressions on every row.
func compile(pattern string) (*regexp.Regexp, error) {
	regexCacheMu.RLock()
	re, ok := regexCache[pattern]
	regexCacheMu.RUnlock()
	if ok {
		return re, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	regexCacheMu.Lock()
	regexCache[pattern] = re
	regexCacheMu.Unlock()
	return re, nil
}

func filterReplace(value string, args []string) (string, error) {
	if len(args) < 2 {
		return value, nil
	}
	return strings.ReplaceAll(value, args[0], args[1]), nil
}

func filterReReplace(value string, args []string) (string, error) {
	if len(args) < 2 {
		return value, nil
	}
	re, err := compile(args[0])
	if err != nil {
		return value, nil
	}
	return re.ReplaceAllString(value, args[1]), nil
}

// filterSplit returns the part at index args[1]; negative indexes count from the end.
func filterSplit(value string, args []string) (string, error) {
	if len(args) < 2 {
		return value, nil
	}
	idx, err := strconv.Atoi(args[1])
	if err != nil {
		return value, nil
	}
	parts := strings.Split(value, args[0])
	if idx < 0 {
		idx += len(parts)
	}
	if idx >= 0 && idx < len(parts) {
		return strings.TrimSpace(parts[idx]), nil
	}
	return "", nil
}

func filterTrim(value string, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Trim(value, args[0]), nil
	}
	return strings.TrimSpace(value), nil
}

func filterTrimLeft(value string, args []string) (string, error) {
	if len(args) > 0 {
		return strings.TrimPrefix(value, args[0]), nil
	}
	return strings.TrimLeft(value, " \t\n\r"), nil
}

func filterTrimRight(value string, args []string) (string, error) {
	if len(args) > 0 {
		return strings.TrimSuffix(value, args[0]), nil
	}
	return strings.TrimRight(value, " \t\n\r"), nil
}

func filterPrepend(value string, args []string) (string, error) {
	if len(args) < 1 {
		return value, nil
	}
	return args[0] + value, nil
}

func filterAppend(value string, args []string) (string, error) {
	if len(args) < 1 {
		return value, nil
	}
	return value + args[0], nil
}

func filterToLower(value string, _ []string) (string, error) {
	return strings.ToLower(value), nil
}

func filterToUpper(value string, _ []string) (string, error) {
	return strings.ToUpper(value), nil
}

// filterStrip removes every rune listed in args[0], then trims.
func filterStrip(value string, args []string) (string, error) {
	if len(args) < 1 {
		return strings.TrimSpace(value), nil
	}
	cut := args[0]
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if strings.ContainsRune(cut, r) {
			return -1
		}
		return r
	}, value)), nil
}

func filterNormalize(value string, _ []string) (string, error) {
	return strings.Join(strings.Fields(value), " "), nil
}

// filterRegexp returns the first capture group, or "" when nothing matches.
func filterRegexp(value string, args []string) (string, error) {
	if len(args) < 1 {
		return value, nil
	}
	re, err := compile(args[0])
	if err != nil {
		return "", nil
	}
	matches := re.FindStringSubmatch(value)
	if len(matches) < 2 {
		return "", nil
	}
	return matches[1], nil
}

// filterDigits keeps the first run of digits.
func filterDigits(value string, _ []string) (string, error) {
	re, _ := compile(`\d+`)
	return re.FindString(value), nil
}

func filterURLDecode(value string, _ []string) (string, error) {
	decoded, err := url.QueryUnescape(value)
	if err != nil {
		return value, nil
	}
	return decoded, nil
}

func filterQueryString(value string, args []string) (string, error) {
	if len(args) < 1 {
		return value, nil
	}
	if u, err := url.Parse(value); err == nil && u.RawQuery != "" {
		return u.Query().Get(args[0]), nil
	}
	if values, err := url.ParseQuery(value); err == nil {
		return values.Get(args[0]), nil
	}
	return "", nil
}

func filterHTMLDecode(value string, _ []string) (string, error) {
	return html.UnescapeString(value), nil
}

func filterStripTags(value string, _ []string) (string, error) {
	re, _ := compile(`<[^>]*>`)
	return re.ReplaceAllString(value, ""), nil
}

// filterBase64Decode decodes standard or URL-safe base64, leaving invalid input unchanged.
func filterBase64Decode(value string, _ []string) (string, error) {
	trimmed := strings.TrimSpace(value)
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if out, err := enc.DecodeString(trimmed); err == nil {
			return string(out), nil
		}
	}
	return value, nil
}

// filterValidate keeps the value only if it is one of the "|" separated args[0].
func filterValidate(value string, args []string) (string, error) {
	if len(args) < 1 {
		return value, nil
	}
	for _, allowed := range strings.Split(args[0], "|") {
		if value == allowed {
			return value, nil
		}
	}
	return "", nil
}
