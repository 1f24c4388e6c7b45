package formatter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gridscrape/internal/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sample() *table.Table {
	return &table.Table{
		Headers: []string{"Team", "Week 1", "Notes"},
		Rows: [][]string{
			{"KC", "70%", "home, favored"},
			{"BUF", "55%", `says "maybe"`},
		},
	}
}

func TestToCSV(t *testing.T) {
	b, err := ToCSV(sample())
	require.NoError(t, err)

	want := "Team,Week 1,Notes\r\n" +
		"KC,70%,\"home, favored\"\r\n" +
		"BUF,55%,\"says \"\"maybe\"\"\"\r\n"
	assert.Equal(t, want, string(b))
}

func TestToCSV_EmptyTable(t *testing.T) {
	b, err := ToCSV(&table.Table{Headers: []string{}, Rows: [][]string{}})
	require.NoError(t, err)
	assert.Equal(t, "\r\n", string(b))
}

func TestToXLSX(t *testing.T) {
	b, err := ToXLSX(sample(), "Picks")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Picks"}, f.GetSheetList())

	rows, err := f.GetRows("Picks")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Team", "Week 1", "Notes"},
		{"KC", "70%", "home, favored"},
		{"BUF", "55%", `says "maybe"`},
	}, rows)

	typ, err := f.GetCellType("Picks", "B2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeNumber, typ)
}

func TestToXLSX_DefaultSheet(t *testing.T) {
	b, err := ToXLSX(sample(), "")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Grid"}, f.GetSheetList())
}

func TestToXLSX_InvalidSheetName(t *testing.T) {
	_, err := ToXLSX(sample(), "bad/name")
	assert.Error(t, err)
}

func TestToMarkdown(t *testing.T) {
	out, err := ToMarkdown(sample())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Contains(t, lines[0], "Team")
	assert.Contains(t, lines[0], "Week 1")
	assert.Contains(t, lines[1], "---")
	assert.Contains(t, out, "KC")
	assert.Contains(t, out, "BUF")
}

func TestToMarkdown_EscapesCellText(t *testing.T) {
	out, err := ToMarkdown(&table.Table{
		Headers: []string{"Path", "Note"},
		Rows: [][]string{
			{`C:\`, "a|b"},
			{"*bold*", "snake_case"},
		},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, `| C:\\ | a\|b |`, lines[2])
	assert.Equal(t, `| \*bold\* | snake\_case |`, lines[3])
}

func TestToMarkdown_Empty(t *testing.T) {
	out, err := ToMarkdown(&table.Table{})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestFormat_JSON(t *testing.T) {
	b, err := Format(sample(), "json", Options{})
	require.NoError(t, err)

	var got table.Table
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, *sample(), got)
	assert.Contains(t, string(b), `"headers"`)
}

func TestFormat_Dispatch(t *testing.T) {
	for _, f := range Formats {
		b, err := Format(sample(), f, Options{SheetName: "Grid"})
		require.NoError(t, err, f)
		assert.NotEmpty(t, b, f)
	}

	_, err := Format(sample(), "pdf", Options{})
	assert.EqualError(t, err, "unsupported output format: pdf")
}
