package include_analyzer

import (
	"sort"
	"testing"

	"github.com/meysamhadeli/shaderinc/include_analyzer/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inventoryOf(paths ...string) *models.FileInventory {
	inventory := models.NewFileInventory()
	for _, p := range paths {
		inventory.Add(p)
	}
	return inventory
}

func TestRatioMetric(t *testing.T) {
	metric := RatioMetric{}

	assert.InDelta(t, 1.0, metric.Compare("lib/common.h", "lib/common.h"), 1e-9)
	assert.InDelta(t, 0.75, metric.Compare("abcd", "bcde"), 1e-9)
	assert.InDelta(t, 0.0, metric.Compare("abc", "xyz"), 1e-9)
}

func TestMetrics_IdenticalStringsScoreOne(t *testing.T) {
	for _, name := range MetricNames() {
		t.Run(name, func(t *testing.T) {
			metric, err := NewMetric(name)
			require.NoError(t, err)
			assert.InDelta(t, 1.0, metric.Compare("shaders/lib/common.h", "shaders/lib/common.h"), 1e-9)
		})
	}
}

func TestNewMetric(t *testing.T) {
	metric, err := NewMetric(" Jaro-Winkler ")
	require.NoError(t, err)
	assert.NotNil(t, metric)

	_, err = NewMetric("cosine")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown similarity metric "cosine"`)
}

func TestMetricNames(t *testing.T) {
	names := MetricNames()

	assert.True(t, sort.StringsAreSorted(names))
	assert.Contains(t, names, DefaultMetric)
	assert.Len(t, names, len(metricFactories))
}

func TestFindSimilarInclude_PicksHighestScore(t *testing.T) {
	inventory := inventoryOf("zzz/common.h", "shader/main.glsl", "lib/common.h", "lib/common.glsl")

	candidate, score, found := FindSimilarInclude("shader/lib/common.h", inventory, RatioMetric{})

	require.True(t, found)
	assert.Equal(t, "lib/common.h", candidate)
	assert.InDelta(t, 24.0/31.0, score, 1e-9)
}

func TestFindSimilarInclude_RequiresExactBaseName(t *testing.T) {
	inventory := inventoryOf("lib/common.h", "lib/Common.H", "lib/common.hlsl")

	_, _, found := FindSimilarInclude("shaders/commom.h", inventory, RatioMetric{})
	assert.False(t, found)

	_, _, found = FindSimilarInclude("shaders/COMMON.h", inventory, RatioMetric{})
	assert.False(t, found)
}

func TestFindSimilarInclude_TieKeepsFirstInInventoryOrder(t *testing.T) {
	candidate, _, found := FindSimilarInclude("x/a.h", inventoryOf("p/a.h", "q/a.h"), RatioMetric{})
	require.True(t, found)
	assert.Equal(t, "p/a.h", candidate)

	candidate, _, found = FindSimilarInclude("x/a.h", inventoryOf("q/a.h", "p/a.h"), RatioMetric{})
	require.True(t, found)
	assert.Equal(t, "q/a.h", candidate)
}

func TestFindSimilarInclude_EmptyInventory(t *testing.T) {
	_, _, found := FindSimilarInclude("a.h", models.NewFileInventory(), nil)

	assert.False(t, found)
}

func TestFindSimilarInclude_AlternateMetric(t *testing.T) {
	metric, err := NewMetric("levenshtein")
	require.NoError(t, err)

	candidate, _, found := FindSimilarInclude("src/lib/noise.inc", inventoryOf("third_party/glsl/noise.inc", "src/libs/noise.inc"), metric)

	require.True(t, found)
	assert.Equal(t, "src/libs/noise.inc", candidate)
}
