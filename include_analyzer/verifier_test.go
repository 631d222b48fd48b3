package include_analyzer

import (
	"testing"

	"github.com/meysamhadeli/shaderinc/include_analyzer/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ValidIncludesProduceEmptyReport(t *testing.T) {
	root := writeTree(t, map[string]string{
		"shaders/main.glsl": "#include \"../lib/common.h\"\n#include \"local.inc\"\n",
		"shaders/local.inc": "",
		"lib/common.h":      "",
	})

	report, err := newTestAnalyzer(t, Options{}).Run(root)
	require.NoError(t, err)

	assert.False(t, report.HasMissing())
	assert.Empty(t, report.Files)
	assert.NotNil(t, report.Files)
	assert.Equal(t, 2, report.Stats.IncludesChecked)
	assert.Equal(t, 3, report.Stats.FilesInventoried)
}

func TestRun_MissingIncludeWithSuggestion(t *testing.T) {
	root := writeTree(t, map[string]string{
		"shaders/main.glsl": "#include \"common.h\"\n",
		"lib/common.h":      "",
	})

	report, err := newTestAnalyzer(t, Options{}).Run(root)
	require.NoError(t, err)

	require.Len(t, report.Files, 1)
	file := report.Files[0]
	assert.Equal(t, "shaders/main.glsl", file.File)
	require.Len(t, file.Missing, 1)

	missing := file.Missing[0]
	assert.Equal(t, "common.h", missing.Raw)
	assert.Equal(t, "shaders/common.h", missing.Path)
	assert.Equal(t, 1, missing.Line)
	require.NotNil(t, missing.Suggestion)
	assert.Equal(t, "lib/common.h", missing.Suggestion.Path)
	assert.Equal(t, "../lib/common.h", missing.Suggestion.RelativePath)
	assert.Greater(t, missing.Suggestion.Score, 0.0)

	assert.Equal(t, 1, report.Stats.MissingIncludes)
	assert.Equal(t, 1, report.Stats.FilesWithMissing)
}

func TestRun_MissingIncludeWithoutCandidate(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.glsl":    "#include \"lib/commom.h\"\n",
		"lib/common.h": "",
	})

	report, err := newTestAnalyzer(t, Options{}).Run(root)
	require.NoError(t, err)

	require.Len(t, report.Files, 1)
	require.Len(t, report.Files[0].Missing, 1)
	assert.Equal(t, "lib/commom.h", report.Files[0].Missing[0].Path)
	assert.Nil(t, report.Files[0].Missing[0].Suggestion)
}

func TestRun_DuplicateMissingIncludesReportedPerOccurrence(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.glsl": "#include \"nope.h\"\nfloat x;\n#include \"nope.h\"\n",
	})

	report, err := newTestAnalyzer(t, Options{}).Run(root)
	require.NoError(t, err)

	require.Len(t, report.Files, 1)
	missing := report.Files[0].Missing
	require.Len(t, missing, 2)
	assert.Equal(t, 1, missing[0].Line)
	assert.Equal(t, 3, missing[1].Line)
	assert.Equal(t, 2, report.Stats.MissingIncludes)
}

func TestRun_AbsoluteIncludeIsMissing(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.glsl": "#include \"/usr/include/common.h\"\n",
		"common.h":  "",
	})

	report, err := newTestAnalyzer(t, Options{}).Run(root)
	require.NoError(t, err)

	require.Len(t, report.Files, 1)
	missing := report.Files[0].Missing[0]
	assert.Equal(t, "/usr/include/common.h", missing.Path)
	require.NotNil(t, missing.Suggestion)
	assert.Equal(t, "common.h", missing.Suggestion.RelativePath)
}

func TestRun_FilesReportedInTraversalOrder(t *testing.T) {
	root := writeTree(t, map[string]string{
		"b/second.glsl": "#include \"x.h\"\n",
		"a/first.glsl":  "#include \"x.h\"\n",
		"c/clean.glsl":  "",
	})

	report, err := newTestAnalyzer(t, Options{}).Run(root)
	require.NoError(t, err)

	require.Len(t, report.Files, 2)
	assert.Equal(t, "a/first.glsl", report.Files[0].File)
	assert.Equal(t, "b/second.glsl", report.Files[1].File)
}

func TestVerify_UsesConfiguredMetric(t *testing.T) {
	crawl := models.NewCrawlResult("/root")
	crawl.Inventory.Add("far/away/noise.inc")
	crawl.Inventory.Add("src/libs/noise.inc")
	crawl.Records = []models.IncludeRecord{{
		File: "src/main.glsl",
		Includes: []models.ResolvedInclude{
			{Raw: "lib/noise.inc", Path: "src/lib/noise.inc", Line: 4},
		},
	}}

	metric, err := NewMetric("jaro-winkler")
	require.NoError(t, err)
	report := newTestAnalyzer(t, Options{Metric: metric}).Verify(crawl)

	require.Len(t, report.Files, 1)
	suggestion := report.Files[0].Missing[0].Suggestion
	require.NotNil(t, suggestion)
	assert.Equal(t, "src/libs/noise.inc", suggestion.Path)
	assert.Equal(t, "libs/noise.inc", suggestion.RelativePath)
}

func TestRelativeSuggestion(t *testing.T) {
	tests := []struct {
		file, candidate, expected string
	}{
		{"shaders/main.glsl", "lib/common.h", "../lib/common.h"},
		{"main.glsl", "lib/common.h", "lib/common.h"},
		{"shaders/main.glsl", "shaders/inc/common.h", "inc/common.h"},
		{"a/b/c/main.glsl", "a/x.h", "../../x.h"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, RelativeSuggestion(tt.file, tt.candidate))
	}
}
