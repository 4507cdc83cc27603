package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
)

const (
	formatJSON     = "json"
	formatTable    = "table"
	formatMarkdown = "markdown"
)

var outputFormats = []string{formatJSON, formatTable, formatMarkdown}

// render writes v in the given format. JSON is the full envelope; table and
// markdown flatten its data into one table per section.
func render(w io.Writer, format string, v any) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	var body struct {
		Data any `json:"data"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}

	r := &tableRenderer{w: w, markdown: format == formatMarkdown}
	r.section("data", body.Data)
	return nil
}

type tableRenderer struct {
	w        io.Writer
	markdown bool
}

// section renders value under title. Scalars and scalar lists of an object
// share a key/value table; nested objects and object lists get their own
// sections.
func (r *tableRenderer) section(title string, value any) {
	switch v := value.(type) {
	case map[string]any:
		keys := lo.Keys(v)
		slices.Sort(keys)

		var rows []table.Row
		for _, k := range keys {
			if inline(v[k]) {
				rows = append(rows, table.Row{k, cell(v[k])})
			}
		}
		if len(rows) > 0 {
			r.write(title, table.Row{"field", "value"}, rows)
		}
		for _, k := range keys {
			if !inline(v[k]) {
				r.section(title+"."+k, v[k])
			}
		}
	case []any:
		r.list(title, v)
	default:
		r.write(title, table.Row{"value"}, []table.Row{{cell(v)}})
	}
}

func (r *tableRenderer) list(title string, items []any) {
	if len(items) == 0 {
		return
	}
	objects := lo.FilterMap(items, func(item any, _ int) (map[string]any, bool) {
		m, ok := item.(map[string]any)
		return m, ok
	})
	if len(objects) != len(items) {
		rows := lo.Map(items, func(item any, _ int) table.Row { return table.Row{cell(item)} })
		r.write(title, table.Row{"value"}, rows)
		return
	}

	// Columns in first-seen order, each object's keys sorted.
	var columns []string
	for _, obj := range objects {
		keys := lo.Keys(obj)
		slices.Sort(keys)
		for _, k := range keys {
			if !lo.Contains(columns, k) {
				columns = append(columns, k)
			}
		}
	}

	header := lo.Map(columns, func(c string, _ int) any { return c })
	rows := lo.Map(objects, func(obj map[string]any, _ int) table.Row {
		return lo.Map(columns, func(c string, _ int) any { return cell(obj[c]) })
	})
	r.write(title, header, rows)
}

func (r *tableRenderer) write(title string, header table.Row, rows []table.Row) {
	t := table.NewWriter()
	t.SetOutputMirror(r.w)
	t.AppendHeader(header)
	t.AppendRows(rows)

	if r.markdown {
		fmt.Fprintf(r.w, "### %s\n\n", title)
		t.RenderMarkdown()
		fmt.Fprintln(r.w)
		return
	}
	t.SetTitle(title)
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func isScalar(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return false
	}
	return true
}

func inline(v any) bool {
	if list, ok := v.([]any); ok {
		return lo.EveryBy(list, isScalar)
	}
	return isScalar(v)
}

// cell formats a value for a single table cell. Lists of scalars are joined;
// anything deeper is summarized by size.
func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []any:
		if lo.EveryBy(x, isScalar) {
			return strings.Join(lo.Map(x, func(item any, _ int) string { return cell(item) }), ", ")
		}
		return fmt.Sprintf("[%d items]", len(x))
	case map[string]any:
		return fmt.Sprintf("{%d fields}", len(x))
	default:
		return fmt.Sprint(x)
	}
}
