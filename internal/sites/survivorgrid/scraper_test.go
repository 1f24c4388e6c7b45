package survivorgrid

import (
	"testing"

	"gridscrape/internal/scraper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ scraper.Scraper = (*Scraper)(nil)
	_ scraper.Preset  = (*Scraper)(nil)
)

func TestRegistered(t *testing.T) {
	s, ok := scraper.Get("survivorgrid")
	require.True(t, ok)
	assert.Equal(t, "survivorgrid", s.Name())

	p, ok := s.(scraper.Preset)
	require.True(t, ok)
	assert.Equal(t, "https://www.survivorgrid.com/", p.DefaultTarget())
	assert.Equal(t, "table#grid", p.DefaultSelector())
	assert.Equal(t, "survivor_grid", p.DefaultBaseName())
}
