package include_analyzer

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/meysamhadeli/shaderinc/include_analyzer/models"
	"github.com/spf13/afero"
)

var (
	singleLineCommentPattern = regexp.MustCompile(`//.*`)
	multiLineCommentPattern  = regexp.MustCompile(`(?s)/\*.*?\*/`)
	includePattern           = regexp.MustCompile(`#\s*include\s*(?:"([^"\n]+)"|<([^>\n]+)>)`)
)

var errInvalidEncoding = errors.New("content is not valid UTF-8")

// FileReadError is returned for a file whose includes could not be extracted.
type FileReadError struct {
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
}

func (e *FileReadError) Unwrap() error {
	return e.Err
}

// offsetRun maps a run of stripped text starting at start back to the original offset orig.
type offsetRun struct {
	start int
	orig  int
}

// strippedText is source text with comment spans cut out. Every retained run
// remembers where it came from so matches can be reported on original lines.
type strippedText struct {
	text string
	runs []offsetRun
}

func newStrippedText(content string) strippedText {
	return strippedText{text: content, runs: []offsetRun{{start: 0, orig: 0}}}
}

// originalOffset converts an offset in s.text to an offset in the original content.
func (s strippedText) originalOffset(offset int) int {
	i := sort.Search(len(s.runs), func(i int) bool { return s.runs[i].start > offset }) - 1
	if i < 0 {
		i = 0
	}
	return s.runs[i].orig + offset - s.runs[i].start
}

// remove cuts every match of pattern out of s.
func (s strippedText) remove(pattern *regexp.Regexp) strippedText {
	matches := pattern.FindAllStringIndex(s.text, -1)
	if len(matches) == 0 {
		return s
	}

	var builder strings.Builder
	builder.Grow(len(s.text))
	out := strippedText{}

	runEnd := func(i int) int {
		if i+1 < len(s.runs) {
			return s.runs[i+1].start
		}
		return len(s.text)
	}

	// keep is called with increasing offsets, so runs behind cursor are done.
	cursor := 0
	keep := func(from, to int) {
		if from >= to {
			return
		}
		for cursor < len(s.runs)-1 && runEnd(cursor) <= from {
			cursor++
		}
		for i := cursor; i < len(s.runs) && s.runs[i].start < to; i++ {
			lo, hi := max(from, s.runs[i].start), min(to, runEnd(i))
			if lo >= hi {
				continue
			}
			out.runs = append(out.runs, offsetRun{
				start: builder.Len() + lo - from,
				orig:  s.runs[i].orig + lo - s.runs[i].start,
			})
		}
		builder.WriteString(s.text[from:to])
	}

	last := 0
	for _, m := range matches {
		keep(last, m[0])
		last = m[1]
	}
	keep(last, len(s.text))

	out.text = builder.String()
	if len(out.runs) == 0 {
		out.runs = []offsetRun{{start: 0, orig: 0}}
	}
	return out
}

// ExtractIncludes returns the include targets of content in order of appearance.
// Directives inside // or /* */ comments are never returned.
func ExtractIncludes(content string) []string {
	directives := ExtractDirectives(content)
	includes := make([]string, 0, len(directives))
	for _, directive := range directives {
		includes = append(includes, directive.Target)
	}
	return includes
}

// ExtractDirectives is ExtractIncludes with the 1-based original line of every
// directive and the trimmed text of that line.
func ExtractDirectives(content string) []models.IncludeDirective {
	stripped := newStrippedText(content).
		remove(singleLineCommentPattern).
		remove(multiLineCommentPattern)

	matches := includePattern.FindAllStringSubmatchIndex(stripped.text, -1)
	if len(matches) == 0 {
		return nil
	}

	lineStarts := lineOffsets(content)
	directives := make([]models.IncludeDirective, 0, len(matches))
	for _, m := range matches {
		target := ""
		if m[2] >= 0 {
			target = stripped.text[m[2]:m[3]]
		} else {
			target = stripped.text[m[4]:m[5]]
		}
		offset := stripped.originalOffset(m[0])
		line := sort.Search(len(lineStarts), func(i int) bool { return lineStarts[i] > offset })
		directives = append(directives, models.IncludeDirective{
			Target: target,
			Line:   line,
			Source: sourceLine(content, lineStarts, line),
		})
	}
	return directives
}

// ExtractFile reads path from fs and extracts its include directives.
// Read and decoding failures are returned in the result, never panicked on.
func ExtractFile(fs afero.Fs, path string) models.ExtractionResult {
	var uncached *ExtractionCache
	return uncached.ExtractFile(fs, path)
}

func readSource(fs afero.Fs, path string) (string, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", &FileReadError{Path: path, Err: err}
	}
	if !utf8.Valid(data) {
		return "", &FileReadError{Path: path, Err: errInvalidEncoding}
	}
	return string(data), nil
}

// lineOffsets returns the offset at which every line of content starts.
func lineOffsets(content string) []int {
	offsets := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

func sourceLine(content string, lineStarts []int, line int) string {
	start := lineStarts[line-1]
	end := len(content)
	if line < len(lineStarts) {
		end = lineStarts[line] - 1
	}
	return strings.TrimSpace(content[start:end])
}
