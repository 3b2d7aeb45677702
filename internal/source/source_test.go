package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	data := `feeds:
  - url: https://feeds.theverge.com/feed.xml
    name: The Verge
    category: general
pages:
  - url: https://openai.com/news
    name: OpenAI
    category: llms
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Feeds, 1)
	assert.Equal(t, "The Verge", cfg.Feeds[0].Name)
	assert.Equal(t, KindFeed, cfg.Feeds[0].Kind)

	require.Len(t, cfg.Pages, 1)
	assert.Equal(t, "llms", cfg.Pages[0].Category)
	assert.Equal(t, KindPage, cfg.Pages[0].Kind)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
