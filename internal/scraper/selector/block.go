package selector

import "strings"

// Block groups the fields read from the nodes matched by Selector. Blocks nest,
// so a page is one tree of selectors. Missing names resolve to zero values,
// which extract nothing.
type Block struct {
	Selector string           `yaml:"selector"`
	Fields   map[string]Field `yaml:"fields"`
	Blocks   map[string]Block `yaml:"blocks"`
}

// Field returns the named field rule.
func (b Block) Field(name string) Field {
	return b.Fields[name]
}

// Sub returns the named child block.
func (b Block) Sub(name string) Block {
	return b.Blocks[name]
}

// Select returns the nodes under n matched by the block selector.
func (b Block) Select(n NodeSet) NodeSet {
	if b.Selector == Self {
		return n
	}
	return n.Find(b.Selector)
}

// SelectWith is Select with "{name}" placeholders in the selector replaced.
func (b Block) SelectWith(n NodeSet, vars map[string]string) NodeSet {
	sel := b.Selector
	for k, v := range vars {
		sel = strings.ReplaceAll(sel, "{"+k+"}", v)
	}
	return Block{Selector: sel}.Select(n)
}

// Text evaluates the named field against n.
func (b Block) Text(n NodeSet, name string) string {
	return b.Fields[name].Value(n)
}

// Values evaluates the named field against every node it matches under n.
func (b Block) Values(n NodeSet, name string) []string {
	return b.Fields[name].Values(n)
}

// Each calls fn for every node matched by the block selector under n.
func (b Block) Each(n NodeSet, fn func(i int, node NodeSet)) {
	b.Select(n).Each(fn)
}

// Walk visits every field of the block tree with its dotted path.
func (b Block) Walk(prefix string, fn func(path string, f Field)) {
	for name, f := range b.Fields {
		fn(join(prefix, name), f)
	}
	for name, child := range b.Blocks {
		child.Walk(join(prefix, name), fn)
	}
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
