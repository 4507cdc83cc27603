// Package selector provides a typed CSS query layer over parsed HTML and the
// declarative field rules evaluated against it.
package selector

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// NodeSet is an ordered set of matched elements. Queries on an empty set return
// empty sets, and reads return zero values, so callers never nil-check.
type NodeSet interface {
	Find(selector string) NodeSet
	Filter(selector string) NodeSet
	First() NodeSet
	Last() NodeSet
	Eq(i int) NodeSet
	Next() NodeSet
	NextAll(selector string) NodeSet
	Parent() NodeSet
	Each(fn func(i int, n NodeSet))
	Len() int
	Exists() bool
	Is(selector string) bool
	HasClass(class string) bool
	// Text returns the trimmed combined text of every node in the set.
	Text() string
	// Attr returns the trimmed attribute of the first node, or "".
	Attr(name string) string
	HasAttr(name string) bool
	// HTML returns the inner HTML of the first node.
	HTML() string
	// OwnText returns the trimmed text of the first node excluding child elements.
	OwnText() string
}

// Parse builds a NodeSet rooted at the document.
func Parse(html []byte) (NodeSet, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return nodes{sel: doc.Selection}, nil
}

// MustParse is Parse for trusted fixtures. It panics on error.
func MustParse(html string) NodeSet {
	n, err := Parse([]byte(html))
	if err != nil {
		panic(err)
	}
	return n
}

// Wrap adapts an existing goquery selection.
func Wrap(sel *goquery.Selection) NodeSet {
	return nodes{sel: sel}
}

type nodes struct {
	sel *goquery.Selection
}

func (n nodes) Find(selector string) NodeSet {
	if selector == "" {
		return nodes{sel: n.sel.Slice(0, 0)}
	}
	return nodes{sel: n.sel.Find(selector)}
}

func (n nodes) Filter(selector string) NodeSet {
	return nodes{sel: n.sel.Filter(selector)}
}

func (n nodes) First() NodeSet { return nodes{sel: n.sel.First()} }
func (n nodes) Last() NodeSet  { return nodes{sel: n.sel.Last()} }
func (n nodes) Eq(i int) NodeSet {
	return nodes{sel: n.sel.Eq(i)}
}
func (n nodes) Next() NodeSet   { return nodes{sel: n.sel.Next()} }
func (n nodes) Parent() NodeSet { return nodes{sel: n.sel.Parent()} }

func (n nodes) NextAll(selector string) NodeSet {
	if selector == "" {
		return nodes{sel: n.sel.NextAll()}
	}
	return nodes{sel: n.sel.NextAllFiltered(selector)}
}

func (n nodes) Each(fn func(i int, n NodeSet)) {
	n.sel.Each(func(i int, s *goquery.Selection) {
		fn(i, nodes{sel: s})
	})
}

func (n nodes) Len() int      { return n.sel.Length() }
func (n nodes) Exists() bool  { return n.sel.Length() > 0 }
func (n nodes) Is(selector string) bool {
	return n.sel.Is(selector)
}

func (n nodes) HasClass(class string) bool {
	return n.sel.HasClass(class)
}

func (n nodes) Text() string {
	return strings.TrimSpace(n.sel.Text())
}

func (n nodes) Attr(name string) string {
	v, _ := n.sel.Attr(name)
	return strings.TrimSpace(v)
}

func (n nodes) HasAttr(name string) bool {
	_, ok := n.sel.Attr(name)
	return ok
}

func (n nodes) HTML() string {
	if n.sel.Length() == 0 {
		return ""
	}
	h, err := n.sel.First().Html()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(h)
}

func (n nodes) OwnText() string {
	if n.sel.Length() == 0 {
		return ""
	}
	clone := n.sel.First().Clone()
	clone.Children().Remove()
	return strings.TrimSpace(clone.Text())
}

// clone returns a detached copy of the first node for destructive edits.
func (n nodes) clone() nodes {
	return nodes{sel: n.sel.First().Clone()}
}

func (n nodes) remove(selector string) {
	n.sel.Find(selector).Remove()
}
