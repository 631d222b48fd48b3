package models

import "time"

// FileInventory holds every root-relative file path found during a crawl.
// Paths are slash separated and cleaned; insertion order is traversal order.
type FileInventory struct {
	paths []string
	set   map[string]struct{}
}

// NewFileInventory creates an empty inventory.
func NewFileInventory() *FileInventory {
	return &FileInventory{set: make(map[string]struct{})}
}

// Add records a path, ignoring duplicates.
func (inv *FileInventory) Add(path string) {
	if _, exists := inv.set[path]; exists {
		return
	}
	inv.set[path] = struct{}{}
	inv.paths = append(inv.paths, path)
}

// Contains reports whether the exact path is part of the inventory.
func (inv *FileInventory) Contains(path string) bool {
	_, exists := inv.set[path]
	return exists
}

// Paths returns the inventory in traversal order. The slice must not be modified.
func (inv *FileInventory) Paths() []string {
	return inv.paths
}

// Len returns the number of inventoried files.
func (inv *FileInventory) Len() int {
	return len(inv.paths)
}

// IncludeDirective is a single include target found in a file's content.
type IncludeDirective struct {
	Target string `json:"target" yaml:"target"`
	Line   int    `json:"line" yaml:"line"`
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

// ExtractionResult is the outcome of extracting includes from one file.
// When Err is set the file is treated as having no includes.
type ExtractionResult struct {
	File       string
	Directives []IncludeDirective
	Err        error
}

// ResolvedInclude is an include target re-expressed relative to the scan root.
type ResolvedInclude struct {
	Raw    string
	Path   string
	Line   int
	Source string
}

// IncludeRecord lists the resolved includes of one source file, in order of appearance.
type IncludeRecord struct {
	File     string
	Includes []ResolvedInclude
}

// ReadError describes a file or directory that could not be read during the crawl.
type ReadError struct {
	File string `json:"file" yaml:"file"`
	Err  string `json:"error" yaml:"error"`
}

// CrawlResult is everything pass 1 produces.
type CrawlResult struct {
	Root       string
	Inventory  *FileInventory
	Records    []IncludeRecord
	ReadErrors []ReadError
	Duration   time.Duration
}

// NewCrawlResult creates an empty crawl result for root.
func NewCrawlResult(root string) *CrawlResult {
	return &CrawlResult{
		Root:      root,
		Inventory: NewFileInventory(),
	}
}

// Suggestion is the inventory file proposed in place of a missing include.
type Suggestion struct {
	Path         string  `json:"path" yaml:"path"`
	RelativePath string  `json:"relative_path" yaml:"relative_path"`
	Score        float64 `json:"score" yaml:"score"`
}

// MissingInclude is an include whose resolved path is not in the inventory.
type MissingInclude struct {
	Raw        string      `json:"raw" yaml:"raw"`
	Path       string      `json:"path" yaml:"path"`
	Line       int         `json:"line" yaml:"line"`
	Source     string      `json:"source,omitempty" yaml:"source,omitempty"`
	Suggestion *Suggestion `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

// FileReport groups the missing includes of one source file.
type FileReport struct {
	File    string           `json:"file" yaml:"file"`
	Missing []MissingInclude `json:"missing" yaml:"missing"`
}

// CacheStats describes the extraction cache after a run.
// Hits and misses count the last crawl only; entries survive between crawls.
type CacheStats struct {
	Enabled bool    `json:"enabled" yaml:"enabled"`
	Hits    int64   `json:"hits" yaml:"hits"`
	Misses  int64   `json:"misses" yaml:"misses"`
	HitRate float64 `json:"hit_rate_percent" yaml:"hit_rate_percent"`
	Entries int     `json:"entries" yaml:"entries"`
}

// ScanStats summarises a run.
type ScanStats struct {
	FilesInventoried int           `json:"files_inventoried" yaml:"files_inventoried"`
	FilesScanned     int           `json:"files_scanned" yaml:"files_scanned"`
	IncludesChecked  int           `json:"includes_checked" yaml:"includes_checked"`
	MissingIncludes  int           `json:"missing_includes" yaml:"missing_includes"`
	FilesWithMissing int           `json:"files_with_missing" yaml:"files_with_missing"`
	ReadErrors       int           `json:"read_errors" yaml:"read_errors"`
	Cache            CacheStats    `json:"cache" yaml:"cache"`
	Duration         time.Duration `json:"duration" yaml:"duration"`
}

// Report is the verification result of one run.
type Report struct {
	Root       string       `json:"root" yaml:"root"`
	Files      []FileReport `json:"files" yaml:"files"`
	ReadErrors []ReadError  `json:"read_errors,omitempty" yaml:"read_errors,omitempty"`
	Stats      ScanStats    `json:"stats" yaml:"stats"`
}

// HasMissing reports whether any include is missing.
func (r *Report) HasMissing() bool {
	return r.Stats.MissingIncludes > 0
}
