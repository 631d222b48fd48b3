package utils

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar"
	"github.com/spf13/afero"
)

// IgnoreFileName is read from the scan root; each non-comment line is an exclude pattern.
const IgnoreFileName = ".shaderinc-ignore"

// ignoreCacheEntry holds cached ignore patterns with metadata
type ignoreCacheEntry struct {
	patterns []string
	modTime  time.Time
}

// IgnorePatternCache keeps the parsed ignore file of every scan root and
// re-reads it only when its modification time changes.
type IgnorePatternCache struct {
	entries map[string]*ignoreCacheEntry
	mutex   sync.RWMutex
}

// NewIgnorePatternCache creates an empty cache.
func NewIgnorePatternCache() *IgnorePatternCache {
	return &IgnorePatternCache{entries: make(map[string]*ignoreCacheEntry)}
}

// GetIgnorePatterns reads and returns the patterns from the ignore file in root.
// If the file does not exist, it returns an empty pattern list.
func (c *IgnorePatternCache) GetIgnorePatterns(fs afero.Fs, root string) ([]string, error) {
	ignorePath := filepath.Join(root, IgnoreFileName)

	fileInfo, err := fs.Stat(ignorePath)
	if os.IsNotExist(err) {
		return []string{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("error checking %s: %w", IgnoreFileName, err)
	}

	// Check cache first
	c.mutex.RLock()
	if cached, exists := c.entries[ignorePath]; exists {
		if fileInfo.ModTime().Equal(cached.modTime) {
			c.mutex.RUnlock()
			return cached.patterns, nil
		}
	}
	c.mutex.RUnlock()

	patterns, err := readIgnoreFile(fs, ignorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", IgnoreFileName, err)
	}

	c.mutex.Lock()
	c.entries[ignorePath] = &ignoreCacheEntry{
		patterns: patterns,
		modTime:  fileInfo.ModTime(),
	}
	c.mutex.Unlock()

	return patterns, nil
}

// readIgnoreFile reads the ignore file and returns the list of patterns.
func readIgnoreFile(fs afero.Fs, ignorePath string) ([]string, error) {
	content, err := afero.ReadFile(fs, ignorePath)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(content), "\n")
	var patterns []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			patterns = append(patterns, line)
		}
	}
	return patterns, nil
}

// IsHiddenDir reports whether a directory name marks a hidden or metadata
// directory (".git", ".vscode", ...). Such directories are pruned entirely.
func IsHiddenDir(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

// IsIgnored checks if a root-relative, slash separated path matches any pattern.
// Patterns without a slash match against any single path segment, patterns
// ending in "/" match a directory prefix, and "**" spans segments.
func IsIgnored(relPath string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.HasSuffix(pattern, "/") {
			dir := strings.TrimSuffix(pattern, "/")
			if relPath == dir || strings.HasPrefix(relPath, pattern) {
				return true
			}
			continue
		}

		if match, _ := doublestar.Match(pattern, relPath); match {
			return true
		}

		if !strings.Contains(pattern, "/") {
			for _, segment := range strings.Split(relPath, "/") {
				if match, _ := path.Match(pattern, segment); match {
					return true
				}
			}
		}
	}
	return false
}
