package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"gridscrape/internal/table"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/xuri/excelize/v2"
)

// Formats lists every supported output format.
var Formats = []string{"csv", "xlsx", "markdown", "json"}

// Options tunes format-specific details.
type Options struct {
	SheetName string // xlsx only; defaults to "Grid"
}

// Format renders t in the given format.
func Format(t *table.Table, format string, opts Options) ([]byte, error) {
	switch format {
	case "csv":
		return ToCSV(t)
	case "xlsx":
		return ToXLSX(t, opts.SheetName)
	case "markdown":
		s, err := ToMarkdown(t)
		return []byte(s), err
	case "json":
		return json.MarshalIndent(t, "", "  ")
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// ToCSV writes the header row followed by one record per row, with CRLF
// record terminators as in RFC 4180.
func ToCSV(t *table.Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true
	if err := w.Write(t.Headers); err != nil {
		return nil, err
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// ToXLSX builds a single-sheet workbook: headers in row 1, data below, every
// cell stored as a string.
func ToXLSX(t *table.Table, sheet string) ([]byte, error) {
	if sheet == "" {
		sheet = "Grid"
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet %q: %w", sheet, err)
	}

	write := func(rowIdx int, values []string) error {
		for c, v := range values {
			cell, err := excelize.CoordinatesToCellName(c+1, rowIdx)
			if err != nil {
				return err
			}
			if err := f.SetCellStr(sheet, cell, v); err != nil {
				return err
			}
		}
		return nil
	}

	if err := write(1, t.Headers); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}
	for r, row := range t.Rows {
		if err := write(r+2, row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", r+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ToMarkdown renders t as a GitHub-flavoured markdown table.
func ToMarkdown(t *table.Table) (string, error) {
	if len(t.Headers) == 0 {
		return "", nil
	}

	// Cell text is escaped by toHTML; the converter's own escaping leaves a
	// trailing backslash bare, which swallows the cell's closing pipe.
	converter := md.NewConverter("", true, &md.Options{EscapeMode: "disabled"})
	converter.Use(plugin.GitHubFlavored())

	markdown, err := converter.ConvertString(toHTML(t))
	if err != nil {
		return "", fmt.Errorf("failed to convert table to Markdown: %w", err)
	}
	return markdown + "\n", nil
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	`*`, `\*`,
	`_`, `\_`,
	`|`, `\|`,
	`[`, `\[`,
	`]`, `\]`,
	`<`, `\<`,
	`>`, `\>`,
)

// toHTML rebuilds a clean table element from the normalized grid, with cell
// text already escaped for markdown.
func toHTML(t *table.Table) string {
	cell := func(tag, v string) string {
		return "<" + tag + ">" + html.EscapeString(markdownEscaper.Replace(v)) + "</" + tag + ">"
	}

	var sb strings.Builder
	sb.WriteString("<table><thead><tr>")
	for _, h := range t.Headers {
		sb.WriteString(cell("th", h))
	}
	sb.WriteString("</tr></thead><tbody>")
	for _, row := range t.Rows {
		sb.WriteString("<tr>")
		for _, v := range row {
			sb.WriteString(cell("td", v))
		}
		sb.WriteString("</tr>")
	}
	sb.WriteString("</tbody></table>")
	return sb.String()
}
