package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const cardHTML = `
<div class="bsx">
  <a href="/seri/martial-master/" class="tip" title="Martial Master">
    <div class="typez Donghua">Donghua</div>
    <span class="epx">Ep 520</span>
    <img src="/img/mm.jpg" class="ts-post-image" />
    <div class="tt"><h2>Martial Master</h2><span class="hidden">ad</span></div>
  </a>
  <ul class="genres"><li>Action</li><li></li><li>Fantasy</li></ul>
  <div class="desc"><p>First <strong>bold</strong> line.</p></div>
</div>`

func TestParseField(t *testing.T) {
	tests := []struct {
		in   string
		want Field
	}{
		{"a.tip@href", Field{Selector: "a.tip", Attribute: "href"}},
		{".tt h2", Field{Selector: ".tt h2"}},
		{"@data-jtitle", Field{Selector: Self, Attribute: "data-jtitle"}},
		{".@src", Field{Selector: Self, Attribute: "src"}},
		{`meta[itemprop="ratingValue"]@content`, Field{Selector: `meta[itemprop="ratingValue"]`, Attribute: "content"}},
		{"  .epx  ", Field{Selector: ".epx"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseField(tt.in))
		})
	}
}

func TestFieldUnmarshalYAML(t *testing.T) {
	src := `
short: a.tip@href
full:
  selector: .tt
  position: all
  remove: .hidden
  filters:
    - name: replace
      args: ["Master", "Artist"]
  default: none
`
	var fields map[string]Field
	require.NoError(t, yaml.Unmarshal([]byte(src), &fields))

	assert.Equal(t, Field{Selector: "a.tip", Attribute: "href"}, fields["short"])

	full := fields["full"]
	assert.Equal(t, ".tt", full.Selector)
	assert.Equal(t, PositionAll, full.Position)
	assert.Equal(t, ".hidden", full.Remove)
	assert.Equal(t, "none", full.Default)
	require.Len(t, full.Filters, 1)
	assert.Equal(t, "replace", full.Filters[0].Name)

	var bad map[string]Field
	assert.Error(t, yaml.Unmarshal([]byte("x: [1, 2]"), &bad))
}

func TestFieldExtract(t *testing.T) {
	doc := MustParse(cardHTML)
	card := doc.Find(".bsx")

	tests := []struct {
		name  string
		field Field
		want  string
	}{
		{"text", ParseField(".tt h2"), "Martial Master"},
		{"attribute", ParseField("a.tip@href"), "/seri/martial-master/"},
		{"self attribute", ParseField("@class"), "bsx"},
		{"missing node uses default", Field{Selector: ".nope", Default: "n/a"}, "n/a"},
		{"missing node without default", ParseField(".nope"), ""},
		{"empty selector", Field{}, ""},
		{"remove before read", Field{Selector: ".tt", Remove: ".hidden"}, "Martial Master"},
		{"last position", Field{Selector: ".genres li", Position: PositionLast}, "Fantasy"},
		{"all position", Field{Selector: ".genres li", Position: PositionAll}, "ActionFantasy"},
		{"filters", Field{Selector: ".epx", Filters: []Filter{{Name: "digits"}}}, "520"},
		{"empty result falls back", Field{Selector: ".genres li", Position: PositionAll, Filters: []Filter{{Name: "validate", Args: "x"}}, Default: "none"}, "none"},
		{"html", Field{Selector: ".desc", Format: FormatHTML}, "<p>First <strong>bold</strong> line.</p>"},
		{"markdown", Field{Selector: ".desc", Format: FormatMarkdown}, "First **bold** line."},
		{"own text", Field{Selector: "a.tip", Format: FormatOwnText}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.field.Extract(card)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFieldRemoveDoesNotMutateDocument(t *testing.T) {
	doc := MustParse(cardHTML)
	f := Field{Selector: ".tt", Remove: ".hidden"}

	assert.Equal(t, "Martial Master", f.Value(doc))
	assert.Equal(t, "ad", doc.Find(".tt .hidden").Text())
}

func TestFieldValues(t *testing.T) {
	doc := MustParse(cardHTML)

	assert.Equal(t, []string{"Action", "Fantasy"}, ParseField(".genres li").Values(doc))
	assert.Equal(t, []string{}, ParseField(".nope").Values(doc))
	assert.Equal(t, []string{}, Field{}.Values(doc))
}

func TestFieldIsZero(t *testing.T) {
	assert.True(t, Field{}.IsZero())
	assert.False(t, ParseField(".tt").IsZero())
	assert.False(t, Field{Default: "x"}.IsZero())
}
