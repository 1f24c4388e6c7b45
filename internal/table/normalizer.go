package table

import (
	"github.com/PuerkitoBio/goquery"
)

// HeaderSource records which discovery rule produced a table's headers.
type HeaderSource int

const (
	HeaderNone        HeaderSource = iota // no rows, nothing to name
	HeaderSection                         // th cells of the thead section
	HeaderFirstRow                        // th cells of the first row
	HeaderSynthesized                     // Column1..ColumnN
)

func (s HeaderSource) String() string {
	switch s {
	case HeaderSection:
		return "thead"
	case HeaderFirstRow:
		return "first-row"
	case HeaderSynthesized:
		return "synthesized"
	default:
		return "none"
	}
}

// headerRule is one step of header discovery. It returns the headers and the
// rows that supplied them, which must never be repeated as data.
type headerRule struct {
	source HeaderSource
	apply  func(t *goquery.Selection, rows *goquery.Selection) (headers []string, headerRows *goquery.Selection, ok bool)
}

// headerRules are evaluated in order; the first that matches wins.
// Synthesis is handled after row discovery since it depends on the data rows.
var headerRules = []headerRule{
	{source: HeaderSection, apply: sectionHeaders},
	{source: HeaderFirstRow, apply: firstRowHeaders},
}

func sectionHeaders(t *goquery.Selection, _ *goquery.Selection) ([]string, *goquery.Selection, bool) {
	thead := t.ChildrenFiltered("thead")
	ths := thead.Find("th")
	if ths.Length() == 0 {
		return nil, nil, false
	}
	return texts(ths), thead.ChildrenFiltered("tr"), true
}

func firstRowHeaders(_ *goquery.Selection, rows *goquery.Selection) ([]string, *goquery.Selection, bool) {
	first := rows.First()
	ths := first.ChildrenFiltered("th")
	if ths.Length() == 0 {
		return nil, nil, false
	}
	return texts(ths), first, true
}

// rowRules select the candidate data rows; the first non-empty result wins.
var rowRules = []func(t *goquery.Selection) *goquery.Selection{
	bodyRows,
	allRows,
}

func bodyRows(t *goquery.Selection) *goquery.Selection {
	return t.ChildrenFiltered("tbody").ChildrenFiltered("tr")
}

func allRows(t *goquery.Selection) *goquery.Selection {
	// The HTML parser places bare <tr> inside an implicit tbody, but fragments
	// built by hand may still carry direct children.
	sections := t.ChildrenFiltered("thead, tbody, tfoot").ChildrenFiltered("tr")
	if sections.Length() > 0 {
		return sections
	}
	return t.ChildrenFiltered("tr")
}

// Normalize converts one table element into a Table whose rows all have the
// header count, and reports which rule produced the headers.
func Normalize(t *goquery.Selection) (*Table, HeaderSource) {
	rows := allRows(t)

	var (
		headers    []string
		headerRows *goquery.Selection
		source     = HeaderNone
	)
	for _, rule := range headerRules {
		if h, hr, ok := rule.apply(t, rows); ok {
			headers, headerRows, source = h, hr, rule.source
			break
		}
	}

	var dataRows *goquery.Selection
	for _, rule := range rowRules {
		if sel := rule(t); sel.Length() > 0 {
			dataRows = sel
			break
		}
	}
	if dataRows == nil {
		dataRows = rows
	}
	if headerRows != nil {
		dataRows = dataRows.NotSelection(headerRows)
	}

	grid := make([][]string, 0, dataRows.Length())
	dataRows.Each(func(_ int, row *goquery.Selection) {
		grid = append(grid, texts(row.ChildrenFiltered("td, th")))
	})

	if source == HeaderNone && len(grid) > 0 {
		headers = Synthesize(len(grid[0]))
		source = HeaderSynthesized
	}
	if headers == nil {
		headers = []string{}
	}

	for i, row := range grid {
		grid[i] = Reconcile(row, len(headers))
	}

	return &Table{Headers: headers, Rows: grid}, source
}

func texts(cells *goquery.Selection) []string {
	out := make([]string, 0, cells.Length())
	cells.Each(func(_ int, c *goquery.Selection) {
		out = append(out, cellText(c))
	})
	return out
}
