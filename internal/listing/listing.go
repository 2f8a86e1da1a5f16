// Package listing sorts, pages and renders records fetched from the clinic API.
package listing

import (
	"sort"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/cristalexdent/clinicadmin/internal/record"
)

// Column is one table column: the row key it reads and its header.
type Column struct {
	Key    string
	Header string
}

// Row is one remote record as decoded from JSON.
type Row map[string]any

// ID returns the record identifier, preferring "_id" over "id".
func (r Row) ID() string {
	if id := record.ToString(r["_id"]); id != "" {
		return id
	}
	return record.ToString(r["id"])
}

// Value resolves key in r. A localized column is read from a nested object
// keyed by locale or from the backend's flat keys (titleEn, titleRo), taking
// the first locale in order that has text.
func (r Row) Value(key string, locales []record.Locale) (any, bool) {
	if len(locales) == 0 {
		locales = record.DefaultLocales
	}
	if v, ok := r[key]; ok && v != nil {
		nested, isMap := v.(map[string]any)
		if !isMap {
			return v, true
		}
		for _, loc := range locales {
			if s := record.ToString(nested[string(loc)]); s != "" {
				return s, true
			}
		}
		return nil, false
	}
	if key == "id" {
		if id := r.ID(); id != "" {
			return id, true
		}
		return nil, false
	}
	for _, loc := range locales {
		if v, ok := r[record.FlatKey(key, loc)]; ok && !record.IsEmpty(v) {
			return v, true
		}
	}
	return nil, false
}

// Cell returns the display text of key.
func (r Row) Cell(key string, locales []record.Locale) string {
	v, _ := r.Value(key, locales)
	return record.ToString(v)
}

// Sort orders rows by key, resolved as in Row.Value. Numbers compare
// numerically, text case insensitively, and rows missing the key go last in
// both directions. The sort is stable.
func Sort(rows []Row, key string, desc bool, locales []record.Locale) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, aok := rows[i].Value(key, locales)
		b, bok := rows[j].Value(key, locales)
		switch {
		case !aok && !bok:
			return false
		case !aok:
			return false
		case !bok:
			return true
		}
		c := compare(a, b)
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compare(a, b any) int {
	an, aNum := number(a)
	bn, bNum := number(b)
	if aNum && bNum {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(strings.ToLower(record.ToString(a)), strings.ToLower(record.ToString(b)))
}

func number(v any) (float64, bool) {
	switch v.(type) {
	case float64, int, int64:
		return record.ToNumber(v)
	default:
		return 0, false
	}
}

// Page is one slice of a longer listing. Number is 1-based.
type Page struct {
	Rows   []Row
	Number int
	Total  int
	Count  int
}

// Paginate returns page (1-based, clamped into range) of rows with size rows
// per page.
func Paginate(rows []Row, page, size int) Page {
	if size <= 0 {
		size = 10
	}
	total := (len(rows) + size - 1) / size
	if total == 0 {
		total = 1
	}
	if page < 1 {
		page = 1
	}
	if page > total {
		page = total
	}
	start := (page - 1) * size
	end := min(start+size, len(rows))
	return Page{
		Rows:   rows[start:end],
		Number: page,
		Total:  total,
		Count:  len(rows),
	}
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// Render draws rows as a bordered table.
func Render(columns []Column, rows []Row, locales []record.Locale) string {
	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = c.Header
	}
	data := make([][]string, len(rows))
	for i, r := range rows {
		cells := make([]string, len(columns))
		for j, c := range columns {
			cells[j] = truncate(r.Cell(c.Key, locales), 40)
		}
		data[i] = cells
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(data...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.String()
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
