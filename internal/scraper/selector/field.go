package selector

import (
	"fmt"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"gopkg.in/yaml.v3"
)

// Self is the selector that targets the node a field is evaluated against.
const Self = "."

// Field positions
const (
	PositionFirst = "first"
	PositionLast  = "last"
	PositionAll   = "all"
)

// Field output formats
const (
	FormatText     = "text"
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
	FormatOwnText  = "owntext"
)

// Field is one declarative extraction rule. A zero Field extracts "".
//
// In YAML a field is either a mapping or the shorthand "<selector>@<attribute>",
// where both halves are optional: "a.tip@href", ".tt h2", "@data-jtitle".
type Field struct {
	Selector  string   `yaml:"selector"`
	Attribute string   `yaml:"attribute,omitempty"`
	Position  string   `yaml:"position,omitempty"`
	Remove    string   `yaml:"remove,omitempty"`
	Format    string   `yaml:"format,omitempty"`
	Filters   []Filter `yaml:"filters,omitempty"`
	Default   string   `yaml:"default,omitempty"`
}

var shorthandAttr = regexp.MustCompile(`^(.*?)@([A-Za-z_:][-A-Za-z0-9_:.]*)$`)

// UnmarshalYAML accepts the mapping form and the string shorthand.
func (f *Field) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*f = ParseField(value.Value)
		return nil
	case yaml.MappingNode:
		type plain Field
		var p plain
		if err := value.Decode(&p); err != nil {
			return err
		}
		*f = Field(p)
		return nil
	default:
		return fmt.Errorf("line %d: cannot unmarshal %v into Field", value.Line, value.Kind)
	}
}

// ParseField parses the "<selector>@<attribute>" shorthand.
func ParseField(s string) Field {
	s = strings.TrimSpace(s)
	if m := shorthandAttr.FindStringSubmatch(s); m != nil {
		sel := strings.TrimSpace(m[1])
		if sel == "" {
			sel = Self
		}
		return Field{Selector: sel, Attribute: m[2]}
	}
	return Field{Selector: s}
}

// IsZero reports whether the field has no rule configured.
func (f Field) IsZero() bool {
	return f.Selector == "" && f.Default == ""
}

// Target resolves the node the field reads from.
func (f Field) Target(n NodeSet) NodeSet {
	if f.Selector == "" {
		return n.Find("")
	}
	target := n
	if f.Selector != Self {
		target = n.Find(f.Selector)
	}
	switch f.Position {
	case PositionAll:
		return target
	case PositionLast:
		return target.Last()
	default:
		return target.First()
	}
}

// Extract evaluates the field against n. A missing node yields the default.
func (f Field) Extract(n NodeSet) (string, error) {
	target := f.Target(n)
	if !target.Exists() {
		return f.Default, nil
	}

	if f.Remove != "" {
		if gq, ok := target.(nodes); ok {
			c := gq.clone()
			c.remove(f.Remove)
			target = c
		}
	}

	value := read(target, f.Attribute, f.Format)

	if len(f.Filters) > 0 {
		filtered, err := ApplyFilters(value, f.Filters)
		if err != nil {
			return f.Default, err
		}
		value = filtered
	}

	if value == "" {
		value = f.Default
	}
	return value, nil
}

// Value is Extract with filter errors resolved to the default.
func (f Field) Value(n NodeSet) string {
	v, err := f.Extract(n)
	if err != nil {
		return f.Default
	}
	return v
}

// Values evaluates the field against every node matched by its selector.
func (f Field) Values(n NodeSet) []string {
	if f.Selector == "" {
		return []string{}
	}
	each := f
	each.Position = PositionFirst
	each.Selector = Self

	targets := n
	if f.Selector != Self {
		targets = n.Find(f.Selector)
	}

	out := make([]string, 0, targets.Len())
	targets.Each(func(_ int, node NodeSet) {
		if v := each.Value(node); v != "" {
			out = append(out, v)
		}
	})
	return out
}

func read(target NodeSet, attribute, format string) string {
	if attribute != "" {
		return target.Attr(attribute)
	}
	switch format {
	case FormatHTML:
		return target.HTML()
	case FormatMarkdown:
		return Markdown(target.HTML())
	case FormatOwnText:
		return target.OwnText()
	default:
		return target.Text()
	}
}

// Markdown converts an HTML fragment to markdown. Conversion failures return "".
func Markdown(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	converter := md.NewConverter("", true, nil)
	out, err := converter.ConvertString(fragment)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}
