package include_analyzer

import (
	"path"
	"path/filepath"

	"github.com/meysamhadeli/shaderinc/include_analyzer/models"
)

// Verify cross-checks every include record against the inventory. Each missing
// occurrence is reported once, with a suggestion when a file of the same base
// name exists elsewhere in the tree. Files without missing includes are omitted.
func (analyzer *IncludeAnalyzer) Verify(crawl *models.CrawlResult) *models.Report {
	report := &models.Report{
		Root:       crawl.Root,
		Files:      []models.FileReport{},
		ReadErrors: crawl.ReadErrors,
	}

	for _, record := range crawl.Records {
		report.Stats.IncludesChecked += len(record.Includes)

		var missing []models.MissingInclude
		for _, include := range record.Includes {
			if crawl.Inventory.Contains(include.Path) {
				continue
			}
			missing = append(missing, models.MissingInclude{
				Raw:        include.Raw,
				Path:       include.Path,
				Line:       include.Line,
				Source:     include.Source,
				Suggestion: analyzer.suggest(record.File, include.Path, crawl.Inventory),
			})
		}

		if len(missing) == 0 {
			continue
		}
		report.Files = append(report.Files, models.FileReport{File: record.File, Missing: missing})
		report.Stats.MissingIncludes += len(missing)
	}

	report.Stats.FilesInventoried = crawl.Inventory.Len()
	report.Stats.FilesScanned = len(crawl.Records)
	report.Stats.FilesWithMissing = len(report.Files)
	report.Stats.ReadErrors = len(crawl.ReadErrors)
	report.Stats.Cache = analyzer.GetCacheStats()
	report.Stats.Duration = crawl.Duration

	return report
}

func (analyzer *IncludeAnalyzer) suggest(file, missing string, inventory *models.FileInventory) *models.Suggestion {
	candidate, score, found := FindSimilarInclude(missing, inventory, analyzer.metric)
	if !found {
		return nil
	}
	return &models.Suggestion{
		Path:         candidate,
		RelativePath: RelativeSuggestion(file, candidate),
		Score:        score,
	}
}

// RelativeSuggestion expresses candidate relative to the directory of file,
// always with forward slashes.
func RelativeSuggestion(file, candidate string) string {
	from := filepath.FromSlash(path.Dir(file))
	relativePath, err := filepath.Rel(from, filepath.FromSlash(candidate))
	if err != nil {
		return candidate
	}
	return filepath.ToSlash(relativePath)
}
