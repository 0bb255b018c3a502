package linker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/guarzo/gazettefeed/common"
)

// DatabaseTTL is how long a loaded link database is reused.
const DatabaseTTL = 7 * 24 * time.Hour

// LoadDatabase reads a link database file. JSON is the default; .yaml and
// .yml files are decoded as YAML.
func LoadDatabase(path string) ([]Link, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read link database: %w", err)
	}

	var links []Link
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &links)
	default:
		err = json.Unmarshal(data, &links)
	}
	if err != nil {
		return nil, fmt.Errorf("parse link database %s: %w", path, err)
	}
	return links, nil
}

// Loader serves the link database, reading the file at most once per TTL.
type Loader struct {
	path   string
	cache  common.CacheRepository[[]Link]
	logger *zap.Logger
}

// NewLoader creates a Loader for path backed by cache.
func NewLoader(path string, cache common.CacheRepository[[]Link], logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{path: path, cache: cache, logger: logger}
}

// Links returns the database. A missing or malformed file is logged and
// yields no links; it is retried on the next call.
func (l *Loader) Links() []Link {
	key := common.GenerateKey("links", l.path)
	if links, ok := l.cache.Get(key); ok {
		return links
	}

	links, err := LoadDatabase(l.path)
	if err != nil {
		l.logger.Error("failed to load link database", zap.String("path", l.path), zap.Error(err))
		return nil
	}
	l.cache.Set(key, links, DatabaseTTL)
	l.logger.Info("loaded link database", zap.String("path", l.path), zap.Int("links", len(links)))
	return links
}
