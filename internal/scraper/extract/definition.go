package extract

import (
	"bytes"
	_ "embed"
	"fmt"
	"maps"
	"net/url"
	"os"
	"slices"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/zhadevv/anichin/internal/scraper/selector"
)

//go:embed selectors.yml
var embeddedDefinition []byte

// Page names of the site definition.
const (
	PageSidebar       = "sidebar"
	PageHome          = "home"
	PageSearch        = "search"
	PageSchedule      = "schedule"
	PageOngoing       = "ongoing"
	PageCompleted     = "completed"
	PageAZList        = "azlist"
	PageGenres        = "genres"
	PageStudio        = "studio"
	PageNetwork       = "network"
	PageCountry       = "country"
	PageSeason        = "season"
	PageSeries        = "series"
	PageWatch         = "watch"
	PageAdvancedImage = "advanced_image"
	PageAdvancedText  = "advanced_text"
	PageQuickFilter   = "quickfilter"
)

// Shared components referenced by several pages.
const (
	ComponentListItem    = "list_item"
	ComponentPagination  = "pagination"
	ComponentDownloads   = "downloads"
	ComponentInformation = "information"
	ComponentFilterGroup = "filter_group"
)

var requiredPages = []string{
	PageSidebar, PageHome, PageSearch, PageSchedule, PageOngoing, PageCompleted,
	PageAZList, PageGenres, PageStudio, PageNetwork, PageCountry, PageSeason,
	PageSeries, PageWatch, PageAdvancedImage, PageAdvancedText, PageQuickFilter,
}

var requiredComponents = []string{
	ComponentListItem, ComponentPagination, ComponentDownloads,
	ComponentInformation, ComponentFilterGroup,
}

// Definition is the declarative selector table for one site.
type Definition struct {
	ID         string                    `yaml:"id"`
	Name       string                    `yaml:"name"`
	Links      []string                  `yaml:"links"`
	Components map[string]selector.Block `yaml:"components"`
	Pages      map[string]*Page          `yaml:"pages"`
}

// Page describes how to request one page and which selectors read it.
type Page struct {
	Path    string            `yaml:"path"`
	Context string            `yaml:"context"`
	Query   map[string]string `yaml:"query"`
	Params  map[string]string `yaml:"params"`

	selector.Block `yaml:",inline"`

	path  *template.Template
	query map[string]*template.Template
}

// PathArgs are the values available to path and query templates.
type PathArgs struct {
	Slug    string
	Page    int
	Episode string
	Letter  string
	Query   string
}

// Param returns a page constant, or "" when it is not declared.
func (p *Page) Param(name string) string {
	return p.Params[name]
}

// ParamList splits a comma separated page constant.
func (p *Page) ParamList(name string) []string {
	raw := p.Params[name]
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// DefaultDefinition parses the definition compiled into the binary.
func DefaultDefinition() (*Definition, error) {
	return ParseDefinition(embeddedDefinition)
}

// LoadDefinition reads a definition from path, falling back to the embedded
// one when path is empty.
func LoadDefinition(path string) (*Definition, error) {
	if path == "" {
		return DefaultDefinition()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read selector definition %s: %w", path, err)
	}
	def, err := ParseDefinition(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// ParseDefinition decodes and validates a YAML definition.
func ParseDefinition(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse selector definition: %w", err)
	}
	if err := def.compile(); err != nil {
		return nil, err
	}
	return &def, nil
}

func (d *Definition) compile() error {
	if d.ID == "" {
		return fmt.Errorf("selector definition: id is required")
	}

	for _, name := range requiredComponents {
		if _, ok := d.Components[name]; !ok {
			return fmt.Errorf("selector definition %s: missing component %q", d.ID, name)
		}
	}
	for _, name := range requiredPages {
		if d.Pages[name] == nil {
			return fmt.Errorf("selector definition %s: missing page %q", d.ID, name)
		}
	}

	for name, c := range d.Components {
		if err := checkFilters(c, "components."+name); err != nil {
			return err
		}
	}

	for _, name := range slices.Sorted(maps.Keys(d.Pages)) {
		p := d.Pages[name]
		if p.Path == "" {
			return fmt.Errorf("page %s: path is required", name)
		}
		if p.Context == "" {
			return fmt.Errorf("page %s: context is required", name)
		}

		tmpl, err := template.New(name).Option("missingkey=error").Parse(p.Path)
		if err != nil {
			return fmt.Errorf("page %s: invalid path template: %w", name, err)
		}
		p.path = tmpl

		p.query = make(map[string]*template.Template, len(p.Query))
		for key, raw := range p.Query {
			qt, err := template.New(name + "." + key).Parse(raw)
			if err != nil {
				return fmt.Errorf("page %s: invalid query template %s: %w", name, key, err)
			}
			p.query[key] = qt
		}

		if err := checkFilters(p.Block, "pages."+name); err != nil {
			return err
		}
	}
	return nil
}

func checkFilters(b selector.Block, prefix string) error {
	var err error
	b.Walk(prefix, func(path string, f selector.Field) {
		for _, filter := range f.Filters {
			if err == nil && !selector.HasFilter(filter.Name) {
				err = fmt.Errorf("%s: unknown filter %q", path, filter.Name)
			}
		}
	})
	return err
}

// Page returns the named page. Unknown names yield an empty page.
func (d *Definition) Page(name string) *Page {
	if p, ok := d.Pages[name]; ok {
		return p
	}
	return &Page{}
}

// Component returns the named shared block.
func (d *Definition) Component(name string) selector.Block {
	return d.Components[name]
}

// Resolve renders the request path and query of a page.
func (d *Definition) Resolve(name string, args PathArgs) (string, url.Values, error) {
	p, ok := d.Pages[name]
	if !ok || p.path == nil {
		return "", nil, fmt.Errorf("unknown page %q", name)
	}
	if args.Page < 1 {
		args.Page = 1
	}

	var buf bytes.Buffer
	if err := p.path.Execute(&buf, args); err != nil {
		return "", nil, fmt.Errorf("page %s: failed to render path: %w", name, err)
	}
	path := buf.String()

	query := url.Values{}
	for key, tmpl := range p.query {
		buf.Reset()
		if err := tmpl.Execute(&buf, args); err != nil {
			return "", nil, fmt.Errorf("page %s: failed to render query %s: %w", name, key, err)
		}
		if v := buf.String(); v != "" {
			query.Set(key, v)
		}
	}
	return path, query, nil
}
