package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDefinition(t *testing.T) {
	def, err := DefaultDefinition()
	require.NoError(t, err)

	assert.Equal(t, "anichin", def.ID)
	for _, name := range requiredPages {
		p := def.Page(name)
		assert.NotEmpty(t, p.Path, name)
		assert.NotEmpty(t, p.Context, name)
	}

	assert.Equal(t, ".sb", def.Component(ComponentListItem).Field("badge").Selector)
	assert.Equal(t, ".ongoingseries", def.Page(PageSidebar).Sub("ongoing").Selector)
	assert.Equal(t, "parse A-Z list", def.Page(PageAZList).Context)
	assert.Equal(t, []string{"status", "type", "order", "sub"}, def.Page(PageQuickFilter).ParamList("radio_filters"))
	assert.Equal(t, []string{"status", "type", "order"}, def.Page(PageSidebar).ParamList("radio_filters"))
}

func TestDefinitionResolve(t *testing.T) {
	def, err := DefaultDefinition()
	require.NoError(t, err)

	tests := []struct {
		name      string
		page      string
		args      PathArgs
		wantPath  string
		wantQuery string
	}{
		{"home first page", PageHome, PathArgs{Page: 1}, "/", ""},
		{"home zero page", PageHome, PathArgs{}, "/", ""},
		{"home later page", PageHome, PathArgs{Page: 3}, "/page/3/", ""},
		{"search", PageSearch, PathArgs{Page: 1, Query: "martial master"}, "/", "s=martial+master"},
		{"search page 2", PageSearch, PathArgs{Page: 2, Query: "soul"}, "/page/2/", "s=soul"},
		{"schedule", PageSchedule, PathArgs{}, "/schedule/", ""},
		{"ongoing page 2", PageOngoing, PathArgs{Page: 2}, "/ongoing/page/2/", ""},
		{"completed", PageCompleted, PathArgs{Page: 1}, "/completed/", ""},
		{"azlist letter", PageAZList, PathArgs{Page: 1, Letter: "A"}, "/az-lists/", "show=A"},
		{"azlist page no letter", PageAZList, PathArgs{Page: 4}, "/az-lists/page/4/", ""},
		{"genres", PageGenres, PathArgs{Slug: "action", Page: 2}, "/genres/action/page/2/", ""},
		{"studio", PageStudio, PathArgs{Slug: "b-cmay-pictures", Page: 1}, "/studio/b-cmay-pictures/", ""},
		{"network", PageNetwork, PathArgs{Slug: "tencent", Page: 1}, "/network/tencent/", ""},
		{"country", PageCountry, PathArgs{Slug: "china", Page: 1}, "/country/china/", ""},
		{"season", PageSeason, PathArgs{Slug: "fall-2023"}, "/season/fall-2023/", ""},
		{"series", PageSeries, PathArgs{Slug: "renegade-immortal"}, "/seri/renegade-immortal/", ""},
		{"watch", PageWatch, PathArgs{Slug: "renegade-immortal", Episode: "05"}, "/renegade-immortal-episode-05-subtitle-indonesia/", ""},
		{"advanced image", PageAdvancedImage, PathArgs{}, "/seri/", ""},
		{"advanced text", PageAdvancedText, PathArgs{}, "/seri/list-mode/", ""},
		{"quickfilter", PageQuickFilter, PathArgs{}, "/seri/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, query, err := def.Resolve(tt.page, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, path)
			assert.Equal(t, tt.wantQuery, query.Encode())
		})
	}

	_, _, err = def.Resolve("nope", PathArgs{})
	assert.Error(t, err)
}

func TestParseDefinitionErrors(t *testing.T) {
	base := string(embeddedDefinition)

	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{"invalid yaml", "id: [", "failed to parse"},
		{"missing id", "name: x", "id is required"},
		{"missing page", strings.Replace(base, "  quickfilter:\n", "  quickfilter_old:\n", 1), `missing page "quickfilter"`},
		{"unknown filter", strings.Replace(base, "{name: strip,", "{name: sparkle,", 1), `unknown filter "sparkle"`},
		{"bad template", strings.Replace(base, "path: /schedule/", "path: '/{{.Nope'", 1), "invalid path template"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDefinition([]byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadDefinition(t *testing.T) {
	def, err := LoadDefinition("")
	require.NoError(t, err)
	assert.Equal(t, "anichin", def.ID)

	patched := strings.Replace(string(embeddedDefinition), "badge: .sb", "badge: .sb-new", 1)
	path := filepath.Join(t.TempDir(), "selectors.yml")
	require.NoError(t, os.WriteFile(path, []byte(patched), 0o644))

	def, err = LoadDefinition(path)
	require.NoError(t, err)
	assert.Equal(t, ".sb-new", def.Component(ComponentListItem).Field("badge").Selector)

	_, err = LoadDefinition(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
