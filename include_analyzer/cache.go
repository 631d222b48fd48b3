package include_analyzer

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/meysamhadeli/shaderinc/include_analyzer/models"
	"github.com/spf13/afero"
	"github.com/zeebo/xxh3"
)

// DefaultCacheSize is the number of distinct file contents whose extraction results are kept.
const DefaultCacheSize = 1024

// cacheCounters tracks hits and misses since the last reset
type cacheCounters struct {
	hits   int64
	misses int64
	mutex  sync.RWMutex
}

// ExtractionCache memoises extraction results by content hash so that
// identical copies of a file are only stripped and scanned once.
// A nil *ExtractionCache is valid and simply extracts every time.
type ExtractionCache struct {
	entries *lru.Cache[uint64, []models.IncludeDirective]
	stats   *cacheCounters
}

// NewExtractionCache creates a cache holding up to size entries.
// A size of zero or less disables caching and returns nil.
func NewExtractionCache(size int) (*ExtractionCache, error) {
	if size <= 0 {
		return nil, nil
	}

	entries, err := lru.New[uint64, []models.IncludeDirective](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction cache: %w", err)
	}

	return &ExtractionCache{
		entries: entries,
		stats:   &cacheCounters{},
	}, nil
}

// generateCacheKey hashes file content into a cache key
func generateCacheKey(content string) uint64 {
	return xxh3.HashString(content)
}

// Extract returns the directives of content, reusing an earlier result for identical content.
// Returned slices are shared and must not be modified.
func (c *ExtractionCache) Extract(content string) []models.IncludeDirective {
	if c == nil {
		return ExtractDirectives(content)
	}

	key := generateCacheKey(content)
	if directives, found := c.entries.Get(key); found {
		c.recordCacheHit()
		return directives
	}

	c.recordCacheMiss()
	directives := ExtractDirectives(content)
	c.entries.Add(key, directives)
	return directives
}

// ExtractFile reads path from fs and extracts its directives through the cache.
func (c *ExtractionCache) ExtractFile(fs afero.Fs, path string) models.ExtractionResult {
	content, err := readSource(fs, path)
	if err != nil {
		return models.ExtractionResult{File: path, Err: err}
	}
	return models.ExtractionResult{File: path, Directives: c.Extract(content)}
}

// Len returns the number of cached entries
func (c *ExtractionCache) Len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}
