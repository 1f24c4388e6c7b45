package table

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ErrNotFound is returned when the target table is absent from the markup.
var ErrNotFound = errors.New("table not found")

// Table is a normalized HTML table: a header list plus a rectangular grid.
// Every row has exactly len(Headers) cells.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Width returns the column count.
func (t *Table) Width() int {
	return len(t.Headers)
}

// Parse reads an HTML document, locates the first element matching selector
// and normalizes it.
func Parse(r io.Reader, selector string) (*Table, HeaderSource, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, HeaderNone, fmt.Errorf("failed to parse HTML: %w", err)
	}
	sel, err := Locate(doc, selector)
	if err != nil {
		return nil, HeaderNone, err
	}
	t, src := Normalize(sel)
	return t, src, nil
}

// Locate returns the first element matching selector.
func Locate(doc *goquery.Document, selector string) (*goquery.Selection, error) {
	if strings.TrimSpace(selector) == "" {
		return nil, fmt.Errorf("empty table selector")
	}
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%w: no element matches %q", ErrNotFound, selector)
	}
	return sel, nil
}

// Reconcile pads row with empty cells or truncates it so that it has exactly
// width cells. The input slice is never modified.
func Reconcile(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}

// Synthesize returns Column1..ColumnN.
func Synthesize(n int) []string {
	headers := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		headers = append(headers, "Column"+strconv.Itoa(i))
	}
	return headers
}

// breaking lists the elements that separate words in rendered text. Inline
// elements such as span or b join their text with the neighbours.
var breaking = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"br": true, "dd": true, "div": true, "dl": true, "dt": true,
	"fieldset": true, "figcaption": true, "figure": true, "footer": true,
	"form": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "header": true, "hr": true, "li": true, "main": true,
	"nav": true, "ol": true, "p": true, "pre": true, "section": true,
	"table": true, "tbody": true, "td": true, "tfoot": true, "th": true,
	"thead": true, "tr": true, "ul": true,
}

// cellText returns the text of a cell, trimmed, with a space at every line
// break or block boundary and runs of whitespace collapsed to one space.
func cellText(s *goquery.Selection) string {
	var sb strings.Builder
	for _, n := range s.Nodes {
		writeText(&sb, n)
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

func writeText(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.CommentNode:
		return
	}

	brk := n.Type == html.ElementNode && breaking[n.Data]
	if brk {
		sb.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(sb, c)
	}
	if brk {
		sb.WriteByte(' ')
	}
}
