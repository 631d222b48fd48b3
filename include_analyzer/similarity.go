package include_analyzer

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/meysamhadeli/shaderinc/include_analyzer/models"
	"github.com/pmezard/go-difflib/difflib"
)

// Metric scores the similarity of two strings in the range [0, 1].
// Identical strings score 1.
type Metric interface {
	Compare(a, b string) float64
}

// RatioMetric is the matching-blocks ratio 2*M/T computed over characters.
type RatioMetric struct{}

func (RatioMetric) Compare(a, b string) float64 {
	matcher := difflib.NewMatcher(splitChars(a), splitChars(b))
	return matcher.Ratio()
}

func splitChars(s string) []string {
	chars := make([]string, 0, len(s))
	for _, r := range s {
		chars = append(chars, string(r))
	}
	return chars
}

// stringMetric adapts a strutil metric to Metric.
type stringMetric struct {
	metric strutil.StringMetric
}

func (m stringMetric) Compare(a, b string) float64 {
	return strutil.Similarity(a, b, m.metric)
}

const DefaultMetric = "ratio"

var metricFactories = map[string]func() Metric{
	"ratio":                func() Metric { return RatioMetric{} },
	"levenshtein":          func() Metric { return stringMetric{metrics.NewLevenshtein()} },
	"jaro":                 func() Metric { return stringMetric{metrics.NewJaro()} },
	"jaro-winkler":         func() Metric { return stringMetric{metrics.NewJaroWinkler()} },
	"sorensen-dice":        func() Metric { return stringMetric{metrics.NewSorensenDice()} },
	"jaccard":              func() Metric { return stringMetric{metrics.NewJaccard()} },
	"smith-waterman-gotoh": func() Metric { return stringMetric{metrics.NewSmithWatermanGotoh()} },
}

// NewMetric returns the similarity metric registered under name.
func NewMetric(name string) (Metric, error) {
	factory, ok := metricFactories[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown similarity metric %q (available: %s)", name, strings.Join(MetricNames(), ", "))
	}
	return factory(), nil
}

// MetricNames lists the registered metric names in sorted order.
func MetricNames() []string {
	names := make([]string, 0, len(metricFactories))
	for name := range metricFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FindSimilarInclude proposes the inventory file most likely meant by a missing include.
// Only files with exactly the same base name are candidates. Among them the one
// whose full path scores highest against the missing path wins; on equal scores
// the first one in inventory order is kept.
func FindSimilarInclude(missing string, inventory *models.FileInventory, metric Metric) (string, float64, bool) {
	if metric == nil {
		metric = RatioMetric{}
	}
	name := path.Base(missing)

	var (
		best      string
		bestScore float64
		found     bool
	)
	for _, candidate := range inventory.Paths() {
		if path.Base(candidate) != name {
			continue
		}
		score := metric.Compare(missing, candidate)
		if !found || score > bestScore {
			best, bestScore, found = candidate, score, true
		}
	}
	return best, bestScore, found
}
