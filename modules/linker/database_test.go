package linker_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/guarzo/gazettefeed/common"
	"github.com/guarzo/gazettefeed/modules/linker"
)

const jsonDB = `[
  {"url": "https://adminlist.co.uk/guides/pre-pack", "keywords": ["pre-pack administration", "pre-pack"]},
  {"url": "https://adminlist.co.uk/buyers", "keywords": ["distressed business buyers"]}
]`

const yamlDB = `
- url: https://adminlist.co.uk/cvl
  keywords:
    - creditors voluntary liquidation
    - cvl
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDatabase_JSON(t *testing.T) {
	links, err := linker.LoadDatabase(writeFile(t, "links.json", jsonDB))
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, "pre-pack administration", links[0].PrimaryKeyword())
	assert.Equal(t, "https://adminlist.co.uk/buyers", links[1].URL)
}

func TestLoadDatabase_YAML(t *testing.T) {
	links, err := linker.LoadDatabase(writeFile(t, "links.yaml", yamlDB))
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, []string{"creditors voluntary liquidation", "cvl"}, links[0].Keywords)
}

func TestLoadDatabase_Errors(t *testing.T) {
	_, err := linker.LoadDatabase(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = linker.LoadDatabase(writeFile(t, "bad.json", "{not json"))
	assert.Error(t, err)
}

func TestLoader_CachesDatabase(t *testing.T) {
	path := writeFile(t, "links.json", jsonDB)
	cache := common.NewCache[[]linker.Link]("links", 10)
	loader := linker.NewLoader(path, cache, zaptest.NewLogger(t))

	require.Len(t, loader.Links(), 2)

	// later edits are not seen until the entry expires
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o600))
	assert.Len(t, loader.Links(), 2)

	cache.Clear()
	assert.Empty(t, loader.Links())
}

func TestLoader_MissingFileYieldsNoLinks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "links.json")
	cache := common.NewCache[[]linker.Link]("links", 10)
	loader := linker.NewLoader(path, cache, nil)

	assert.Empty(t, loader.Links())

	// failure is not cached
	require.NoError(t, os.WriteFile(path, []byte(jsonDB), 0o600))
	assert.Len(t, loader.Links(), 2)
}

func TestLoader_ExpiredEntryReloads(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	path := writeFile(t, "links.json", jsonDB)
	cache := common.NewCache[[]linker.Link]("links", 10, common.WithClock(clock))
	loader := linker.NewLoader(path, cache, nil)

	require.Len(t, loader.Links(), 2)
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o600))

	now = now.Add(linker.DatabaseTTL + time.Second)
	assert.Empty(t, loader.Links())
}
