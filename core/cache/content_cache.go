package cache

import (
	"fmt"
	"os"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/tristendillon/minireact/core/logger"
	"github.com/tristendillon/minireact/core/models"
)

const DefaultSize = 4096

// ContentCache remembers the hash of what was last written to each
// destination and skips writes that would not change it.
type ContentCache struct {
	entries *lru.Cache[string, models.ContentEntry]
	mutex   sync.Mutex
	stats   struct {
		hits   int64
		misses int64
	}
}

func NewContentCache(size int) (*ContentCache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	entries, err := lru.New[string, models.ContentEntry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create content cache: %w", err)
	}
	return &ContentCache{entries: entries}, nil
}

// Unchanged reports whether content matches the last write to path and the
// file is still on disk.
func (cc *ContentCache) Unchanged(path string, content []byte) bool {
	cc.mutex.Lock()
	defer cc.mutex.Unlock()

	entry, ok := cc.entries.Get(path)
	if !ok || entry.Size != int64(len(content)) || entry.ContentHash != models.HashContent(content) {
		cc.stats.misses++
		return false
	}
	if _, err := os.Stat(path); err != nil {
		logger.Debug("ContentCache: %s vanished from disk", path)
		cc.entries.Remove(path)
		cc.stats.misses++
		return false
	}

	cc.stats.hits++
	return true
}

// Record stores content as the latest write to path.
func (cc *ContentCache) Record(path string, content []byte) {
	cc.entries.Add(path, models.NewContentEntry(path, content))
}

// Write persists content for asset unless the destination already holds it.
func (cc *ContentCache) Write(asset *models.Asset, content []byte) (bool, error) {
	if cc.Unchanged(asset.DestinationPath, content) {
		logger.Debug("ContentCache: Skipping unchanged %s", asset.RelativePath)
		return false, nil
	}
	if err := asset.Write(content); err != nil {
		return false, err
	}
	cc.Record(asset.DestinationPath, content)
	return true, nil
}

// Forget drops the entry for a destination path, e.g. after it was deleted.
func (cc *ContentCache) Forget(path string) {
	if cc.entries.Remove(path) {
		logger.Debug("ContentCache: Removed entry for %s", path)
	}
}

func (cc *ContentCache) GetStats() *models.CacheStats {
	cc.mutex.Lock()
	defer cc.mutex.Unlock()

	total := cc.stats.hits + cc.stats.misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(cc.stats.hits) / float64(total) * 100
	}

	return &models.CacheStats{
		TotalFiles:  cc.entries.Len(),
		CacheHits:   cc.stats.hits,
		CacheMisses: cc.stats.misses,
		HitRate:     hitRate,
		LastUpdate:  time.Now(),
	}
}

func (cc *ContentCache) Clear() {
	cc.mutex.Lock()
	defer cc.mutex.Unlock()

	cc.entries.Purge()
	cc.stats.hits = 0
	cc.stats.misses = 0
	logger.Debug("ContentCache: Cleared all entries")
}
