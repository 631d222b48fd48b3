package include_analyzer

import (
	"github.com/meysamhadeli/shaderinc/include_analyzer/models"
)

// recordCacheHit increments cache hit counter
func (c *ExtractionCache) recordCacheHit() {
	c.stats.mutex.Lock()
	defer c.stats.mutex.Unlock()
	c.stats.hits++
}

// recordCacheMiss increments cache miss counter
func (c *ExtractionCache) recordCacheMiss() {
	c.stats.mutex.Lock()
	defer c.stats.mutex.Unlock()
	c.stats.misses++
}

// GetPerformanceStats returns the counters since the last reset and the number of cached entries.
func (c *ExtractionCache) GetPerformanceStats() models.CacheStats {
	if c == nil {
		return models.CacheStats{}
	}

	c.stats.mutex.RLock()
	defer c.stats.mutex.RUnlock()

	stats := models.CacheStats{
		Enabled: true,
		Hits:    c.stats.hits,
		Misses:  c.stats.misses,
		Entries: c.Len(),
	}
	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total) * 100
	}
	return stats
}

// ResetPerformanceStats resets the hit and miss counters; cached entries are kept.
func (c *ExtractionCache) ResetPerformanceStats() {
	if c == nil {
		return
	}
	c.stats.mutex.Lock()
	defer c.stats.mutex.Unlock()
	c.stats.hits = 0
	c.stats.misses = 0
}
