package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"gridscrape/internal/config"
	"gridscrape/internal/scraper"
	"gridscrape/internal/sites/generic"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const savedGrid = `<html><body>
<table id="grid">
	<thead><tr><th>Team</th><th>Week 1</th><th>Week 2</th></tr></thead>
	<tbody>
		<tr><td>KC</td><td>70%</td><td>65%</td></tr>
		<tr><td>BUF</td><td>55%</td></tr>
		<tr><td>DET</td><td>40%</td><td>38%</td><td>extra</td></tr>
	</tbody>
</table>
</body></html>`

func writeInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "grid.html")
	require.NoError(t, os.WriteFile(path, []byte(savedGrid), 0600))
	return path
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}

func executeCapture(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRun_FromFile(t *testing.T) {
	in := writeInput(t)
	out := t.TempDir()

	require.NoError(t, execute(t, "-i", in, "-s", "table#grid", "-o", out))

	csvData, err := os.ReadFile(filepath.Join(out, "grid.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Team,Week 1,Week 2\r\nKC,70%,65%\r\nBUF,55%,\r\nDET,40%,38%\r\n", string(csvData))

	f, err := excelize.OpenFile(filepath.Join(out, "grid.xlsx"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Grid")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Team", "Week 1", "Week 2"}, rows[0])
	assert.Equal(t, []string{"DET", "40%", "38%"}, rows[3])
}

func TestRun_NameWithExtensionSelectsFormat(t *testing.T) {
	in := writeInput(t)
	out := t.TempDir()

	require.NoError(t, execute(t, "-i", in, "-s", "#grid", "-o", out, "-n", "picks.md"))

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "picks.md", entries[0].Name())
}

func TestRun_WarnsWhenTableHasNoRows(t *testing.T) {
	in := filepath.Join(t.TempDir(), "header_only.html")
	require.NoError(t, os.WriteFile(in, []byte(
		`<table id="grid"><thead><tr><th>Team</th><th>Pick</th></tr></thead></table>`), 0600))
	out := t.TempDir()

	stdout, stderr, err := executeCapture(t, "-i", in, "-s", "#grid", "-o", out, "-f", "csv")
	require.NoError(t, err)
	assert.Contains(t, stderr, `Warning: table "#grid" has no rows`)
	assert.Contains(t, stdout, "Wrote CSV to: "+filepath.Join(out, "header_only.csv"))

	csvData, err := os.ReadFile(filepath.Join(out, "header_only.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Team,Pick\r\n", string(csvData))
}

func TestRun_NoWarningForPopulatedTable(t *testing.T) {
	_, stderr, err := executeCapture(t, "-i", writeInput(t), "-s", "table#grid", "-o", t.TempDir(), "-f", "json")
	require.NoError(t, err)
	assert.NotContains(t, stderr, "Warning")
}

func TestRun_LookupFailureWritesNothing(t *testing.T) {
	in := writeInput(t)
	out := t.TempDir()

	err := execute(t, "-i", in, "-s", "table#missing", "-o", out)
	require.Error(t, err)
	assert.Equal(t, scraper.KindLookup, scraper.Classify(err))

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_InvalidFlags(t *testing.T) {
	in := writeInput(t)

	err := execute(t, "-i", in, "-f", "pdf")
	assert.EqualError(t, err, "invalid output format: pdf")

	err = execute(t, "--site", "nowhere")
	assert.EqualError(t, err, "unknown site: nowhere")

	err = execute(t, "-i", in, "https://example.com")
	assert.Error(t, err)

	err = execute(t, "a", "b")
	assert.Error(t, err)
}

func TestResolveScraper(t *testing.T) {
	t.Run("default preset", func(t *testing.T) {
		cfg := config.Default()
		s, target, err := resolveScraper(cfg)
		require.NoError(t, err)
		assert.Equal(t, "survivorgrid", s.Name())
		assert.Equal(t, "https://www.survivorgrid.com/", target)
		assert.Equal(t, "table#grid", cfg.Selector)
	})

	t.Run("preset keeps explicit selector", func(t *testing.T) {
		cfg := config.Default()
		cfg.Site = "survivorgrid"
		cfg.Selector = "table.alt"
		_, _, err := resolveScraper(cfg)
		require.NoError(t, err)
		assert.Equal(t, "table.alt", cfg.Selector)
	})

	t.Run("generic url", func(t *testing.T) {
		cfg := config.Default()
		cfg.URL = "example.com/standings"
		s, target, err := resolveScraper(cfg)
		require.NoError(t, err)
		assert.IsType(t, &generic.BrowserScraper{}, s)
		assert.Equal(t, "http://example.com/standings", target)
		assert.Equal(t, "table", cfg.Selector)
	})

	t.Run("input file", func(t *testing.T) {
		cfg := config.Default()
		cfg.Input = "saved.html"
		s, target, err := resolveScraper(cfg)
		require.NoError(t, err)
		assert.IsType(t, &generic.FileScraper{}, s)
		assert.Equal(t, "saved.html", target)
	})
}

func TestNormalizeURL(t *testing.T) {
	tests := map[string]string{
		"example.com":           "http://example.com",
		" https://example.com ": "https://example.com",
		"HTTP://EXAMPLE.COM":    "HTTP://EXAMPLE.COM",
		"file:///tmp/grid.html": "file:///tmp/grid.html",
		"":                      "",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeURL(in), in)
	}
}
