package include_analyzer

import (
	"fmt"
	"sync"
	"testing"

	"github.com/meysamhadeli/shaderinc/include_analyzer/models"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test cache setup and basic operations
func TestExtractionCache_BasicOperations(t *testing.T) {
	cache, err := NewExtractionCache(16)
	require.NoError(t, err)
	require.NotNil(t, cache)

	content := "#include \"common.h\"\n"

	first := cache.Extract(content)
	second := cache.Extract(content)

	assert.Equal(t, first, second)
	require.Len(t, first, 1)
	assert.Equal(t, "common.h", first[0].Target)
	assert.Equal(t, 1, cache.Len())

	stats := cache.GetPerformanceStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

// Test that a disabled cache still extracts
func TestExtractionCache_Disabled(t *testing.T) {
	cache, err := NewExtractionCache(0)
	require.NoError(t, err)
	assert.Nil(t, cache)

	directives := cache.Extract("#include <a.h>\n")
	require.Len(t, directives, 1)
	assert.Equal(t, "a.h", directives[0].Target)

	assert.Zero(t, cache.Len())
	assert.Equal(t, models.CacheStats{}, cache.GetPerformanceStats())

	cache.ResetPerformanceStats()
}

// Test eviction once the cache is full
func TestExtractionCache_Eviction(t *testing.T) {
	cache, err := NewExtractionCache(2)
	require.NoError(t, err)

	cache.Extract("#include \"a.h\"")
	cache.Extract("#include \"b.h\"")
	cache.Extract("#include \"c.h\"")

	assert.Equal(t, 2, cache.Len())

	// "a.h" was evicted, so extracting it again is a miss
	cache.Extract("#include \"a.h\"")
	stats := cache.GetPerformanceStats()
	assert.Equal(t, int64(0), stats.Hits)
	assert.Equal(t, int64(4), stats.Misses)
}

// Test file extraction through the cache
func TestExtractionCache_ExtractFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/a/copy.h", []byte("#include \"shared.inc\"\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/b/copy.h", []byte("#include \"shared.inc\"\n"), 0644))

	cache, err := NewExtractionCache(DefaultCacheSize)
	require.NoError(t, err)

	first := cache.ExtractFile(fs, "/a/copy.h")
	second := cache.ExtractFile(fs, "/b/copy.h")
	missing := cache.ExtractFile(fs, "/c/copy.h")

	require.NoError(t, first.Err)
	require.NoError(t, second.Err)
	require.Error(t, missing.Err)
	assert.Equal(t, "/b/copy.h", second.File)
	assert.Equal(t, first.Directives, second.Directives)

	stats := cache.GetPerformanceStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

// Test performance statistics
func TestExtractionCache_PerformanceStats(t *testing.T) {
	cache, err := NewExtractionCache(8)
	require.NoError(t, err)

	cache.Extract("x")
	cache.Extract("x")
	cache.Extract("x")
	cache.Extract("y")

	stats := cache.GetPerformanceStats()
	assert.True(t, stats.Enabled)
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
	assert.InDelta(t, 50.0, stats.HitRate, 1e-9)
	assert.Equal(t, 2, stats.Entries)

	cache.ResetPerformanceStats()
	stats = cache.GetPerformanceStats()
	assert.Zero(t, stats.Hits)
	assert.Zero(t, stats.Misses)
	assert.Zero(t, stats.HitRate)
	assert.Equal(t, 2, stats.Entries)
}

// Test concurrent access
func TestExtractionCache_ConcurrentAccess(t *testing.T) {
	cache, err := NewExtractionCache(64)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				content := fmt.Sprintf("#include \"file_%d.h\"\n", j%10)
				directives := cache.Extract(content)
				assert.Len(t, directives, 1)
			}
		}(i)
	}
	wg.Wait()

	stats := cache.GetPerformanceStats()
	assert.Equal(t, int64(400), stats.Hits+stats.Misses)
	assert.LessOrEqual(t, cache.Len(), 10)
}

func TestGenerateCacheKey(t *testing.T) {
	assert.Equal(t, generateCacheKey("#include \"a.h\""), generateCacheKey("#include \"a.h\""))
	assert.NotEqual(t, generateCacheKey("#include \"a.h\""), generateCacheKey("#include \"b.h\""))
}
