package include_analyzer

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/meysamhadeli/shaderinc/include_analyzer/contracts"
	"github.com/meysamhadeli/shaderinc/include_analyzer/models"
	"github.com/meysamhadeli/shaderinc/utils"
	"github.com/spf13/afero"
)

// ErrInvalidRoot is returned when the scan root does not exist or is not a directory.
var ErrInvalidRoot = errors.New("not a valid directory path")

// DefaultExtensions are the extensions whose files are scanned for includes.
var DefaultExtensions = []string{".glsl", ".slang", ".h", ".inc", ".params", ".hlsl"}

// Options configures an IncludeAnalyzer. Zero values fall back to defaults.
type Options struct {
	// Fs is the filesystem to crawl. Defaults to a read-only view of the OS filesystem.
	Fs afero.Fs
	// Extensions recognised as include-bearing sources; exact and case-sensitive.
	Extensions []string
	// Exclude holds extra ignore patterns on top of the root's ignore file.
	Exclude []string
	// Metric scores suggestion candidates. Defaults to RatioMetric.
	Metric Metric
	// CacheSize bounds the extraction cache; zero or less disables it.
	CacheSize int
}

// IncludeAnalyzer crawls a shader tree and verifies its include directives.
type IncludeAnalyzer struct {
	fs         afero.Fs
	extensions map[string]struct{}
	exclude    []string
	metric     Metric
	cache      *ExtractionCache
	ignores    *utils.IgnorePatternCache
}

var _ contracts.IIncludeAnalyzer = (*IncludeAnalyzer)(nil)

// NewIncludeAnalyzer initializes a new IncludeAnalyzer.
func NewIncludeAnalyzer(opts Options) (*IncludeAnalyzer, error) {
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewReadOnlyFs(afero.NewOsFs())
	}

	extensions := opts.Extensions
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	extensionSet := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		extensionSet[ext] = struct{}{}
	}

	metric := opts.Metric
	if metric == nil {
		metric = RatioMetric{}
	}

	cache, err := NewExtractionCache(opts.CacheSize)
	if err != nil {
		return nil, err
	}

	return &IncludeAnalyzer{
		fs:         fs,
		extensions: extensionSet,
		exclude:    opts.Exclude,
		metric:     metric,
		cache:      cache,
		ignores:    utils.NewIgnorePatternCache(),
	}, nil
}

// Run crawls root and verifies every include found.
func (analyzer *IncludeAnalyzer) Run(root string) (*models.Report, error) {
	crawl, err := analyzer.Crawl(root)
	if err != nil {
		return nil, err
	}
	return analyzer.Verify(crawl), nil
}

// Crawl walks root, building the file inventory and the include records of
// every recognised source file. Directories whose name starts with "." are
// pruned from both. Unreadable entries are recorded and the walk continues.
func (analyzer *IncludeAnalyzer) Crawl(root string) (*models.CrawlResult, error) {
	started := time.Now()

	info, err := analyzer.fs.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRoot, root)
	}

	// afero.Walk lstats its root, so a symlinked root would be seen as a leaf.
	walkRoot := analyzer.resolveRootLink(root)

	ignorePatterns, err := analyzer.ignores.GetIgnorePatterns(analyzer.fs, walkRoot)
	if err != nil {
		log.Printf("Warning: %v", err)
	}
	patterns := append(append([]string{}, analyzer.exclude...), ignorePatterns...)

	result := models.NewCrawlResult(root)
	analyzer.cache.ResetPerformanceStats()

	err = afero.Walk(analyzer.fs, walkRoot, func(osPath string, info os.FileInfo, err error) error {
		relativePath, relErr := relativeSlashPath(walkRoot, osPath)
		if relErr != nil {
			return relErr
		}

		if err != nil {
			if relativePath == "." {
				return fmt.Errorf("failed to read %s: %w", root, err)
			}
			result.ReadErrors = append(result.ReadErrors, models.ReadError{File: relativePath, Err: err.Error()})
			return nil
		}

		if info.IsDir() {
			if relativePath == "." {
				return nil
			}
			if utils.IsHiddenDir(info.Name()) || utils.IsIgnored(relativePath, patterns) {
				return filepath.SkipDir
			}
			return nil
		}

		if info.Mode()&os.ModeSymlink != 0 {
			// Symlinked directories are neither followed nor inventoried.
			if target, statErr := analyzer.fs.Stat(osPath); statErr == nil && target.IsDir() {
				return nil
			}
		}

		if utils.IsIgnored(relativePath, patterns) {
			return nil
		}

		result.Inventory.Add(relativePath)

		if !analyzer.isSourceFile(info.Name()) {
			return nil
		}

		extraction := analyzer.cache.ExtractFile(analyzer.fs, osPath)
		if extraction.Err != nil {
			result.ReadErrors = append(result.ReadErrors, models.ReadError{
				File: relativePath,
				Err:  readErrorCause(extraction.Err).Error(),
			})
		}
		result.Records = append(result.Records, resolveIncludes(relativePath, extraction.Directives))
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Duration = time.Since(started)
	log.Printf("crawl: %d files inventoried, %d sources scanned, %d read errors in %s",
		result.Inventory.Len(), len(result.Records), len(result.ReadErrors), result.Duration)

	return result, nil
}

// resolveRootLink returns the target of root when root itself is a symlink,
// and root unchanged otherwise.
func (analyzer *IncludeAnalyzer) resolveRootLink(root string) string {
	lstater, ok := analyzer.fs.(afero.Lstater)
	if !ok {
		return root
	}
	info, lstatCalled, err := lstater.LstatIfPossible(root)
	if err != nil || !lstatCalled || info.Mode()&os.ModeSymlink == 0 {
		return root
	}
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return root
	}
	return resolved
}

// GetCacheStats returns extraction cache statistics.
func (analyzer *IncludeAnalyzer) GetCacheStats() models.CacheStats {
	return analyzer.cache.GetPerformanceStats()
}

// isSourceFile reports whether a file name carries a recognised extension.
// Leading dots are not extensions, so ".h" alone has none.
func (analyzer *IncludeAnalyzer) isSourceFile(name string) bool {
	ext := path.Ext(strings.TrimLeft(name, "."))
	if ext == "" {
		return false
	}
	_, ok := analyzer.extensions[ext]
	return ok
}

// resolveIncludes joins every directive target against the including file's
// directory and cleans the result, mirroring how inventory paths are built.
func resolveIncludes(file string, directives []models.IncludeDirective) models.IncludeRecord {
	record := models.IncludeRecord{
		File:     file,
		Includes: make([]models.ResolvedInclude, 0, len(directives)),
	}
	for _, directive := range directives {
		record.Includes = append(record.Includes, models.ResolvedInclude{
			Raw:    directive.Target,
			Path:   ResolveIncludePath(file, directive.Target),
			Line:   directive.Line,
			Source: directive.Source,
		})
	}
	return record
}

// ResolveIncludePath resolves target, as written in file, to a root-relative path.
// Backslashes count as separators; absolute targets stay absolute.
func ResolveIncludePath(file, target string) string {
	target = strings.ReplaceAll(target, `\`, "/")
	if path.IsAbs(target) {
		return path.Clean(target)
	}
	return path.Join(path.Dir(file), target)
}

// relativeSlashPath expresses osPath relative to root with forward slashes.
func relativeSlashPath(root, osPath string) (string, error) {
	relativePath, err := filepath.Rel(root, osPath)
	if err != nil {
		return "", fmt.Errorf("failed to relativize %s: %w", osPath, err)
	}
	return filepath.ToSlash(relativePath), nil
}

func readErrorCause(err error) error {
	var readErr *FileReadError
	if errors.As(err, &readErr) && readErr.Err != nil {
		return readErr.Err
	}
	return err
}
