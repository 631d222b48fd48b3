package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	styles "github.com/meysamhadeli/shaderinc/constants/lipgloss"
	"github.com/meysamhadeli/shaderinc/include_analyzer/models"
	"github.com/meysamhadeli/shaderinc/utils"
	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"
)

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formats lists the supported output formats.
var Formats = []string{FormatText, FormatJSON, FormatYAML}

// Options controls how a report is rendered.
type Options struct {
	Format     string
	Color      bool
	ShowSource bool
	Stats      bool
	Theme      string
}

// Reporter renders verification reports to a writer.
type Reporter struct {
	out  io.Writer
	opts Options
}

// NewReporter creates a reporter writing to out.
func NewReporter(out io.Writer, opts Options) *Reporter {
	if opts.Format == "" {
		opts.Format = FormatText
	}
	if opts.Theme == "" {
		opts.Theme = utils.DefaultTheme
	}
	return &Reporter{out: out, opts: opts}
}

// IsValidFormat reports whether format is supported.
func IsValidFormat(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// Render writes report in the configured format.
func (r *Reporter) Render(report *models.Report) error {
	switch r.opts.Format {
	case FormatText:
		return r.renderText(report)
	case FormatJSON:
		encoder := json.NewEncoder(r.out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	case FormatYAML:
		encoder := yaml.NewEncoder(r.out)
		encoder.SetIndent(2)
		if err := encoder.Encode(report); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return fmt.Errorf("unsupported output format %q (available: %s)", r.opts.Format, strings.Join(Formats, ", "))
	}
}

// renderText prints read errors first, then one block per file with missing includes.
// A report without problems prints nothing.
func (r *Reporter) renderText(report *models.Report) error {
	w := &errWriter{w: r.out}

	for _, readErr := range report.ReadErrors {
		w.println(r.style(styles.Red, fmt.Sprintf("Error reading %s: %s", readErr.File, readErr.Err)))
	}

	for _, file := range report.Files {
		w.println(r.style(styles.Header, fmt.Sprintf("Missing includes in %s:", file.File)))
		for _, missing := range file.Missing {
			w.println("\t" + r.style(styles.Red, missing.Path))

			if r.opts.ShowSource && missing.Source != "" {
				w.print(r.style(styles.Gray, fmt.Sprintf("\t\tline %d: ", missing.Line)))
				if w.err == nil {
					w.err = utils.HighlightSourceLine(r.out, missing.Source, utils.LanguageForFile(file.File), r.opts.Theme, r.opts.Color)
				}
			}

			if missing.Suggestion != nil {
				w.println("\t\t" + r.style(styles.Green, "Suggested include path: "+missing.Suggestion.RelativePath))
			} else {
				w.println("\t\t" + r.style(styles.Yellow, "No suggestions found."))
			}
		}
	}

	if r.opts.Stats {
		if w.err != nil {
			return w.err
		}
		return r.renderStats(report.Stats)
	}
	return w.err
}

// renderStats prints the run summary as a table.
func (r *Reporter) renderStats(stats models.ScanStats) error {
	data := pterm.TableData{
		{"Metric", "Value"},
		{"Files inventoried", fmt.Sprint(stats.FilesInventoried)},
		{"Source files scanned", fmt.Sprint(stats.FilesScanned)},
		{"Includes checked", fmt.Sprint(stats.IncludesChecked)},
		{"Missing includes", fmt.Sprint(stats.MissingIncludes)},
		{"Files with missing includes", fmt.Sprint(stats.FilesWithMissing)},
		{"Read errors", fmt.Sprint(stats.ReadErrors)},
	}
	if stats.Cache.Enabled {
		data = append(data,
			[]string{"Extraction cache hits", fmt.Sprint(stats.Cache.Hits)},
			[]string{"Extraction cache misses", fmt.Sprint(stats.Cache.Misses)},
			[]string{"Extraction cache hit rate", fmt.Sprintf("%.1f%%", stats.Cache.HitRate)},
			[]string{"Extraction cache entries", fmt.Sprint(stats.Cache.Entries)},
		)
	} else {
		data = append(data, []string{"Extraction cache", "disabled"})
	}
	data = append(data, []string{"Duration", stats.Duration.String()})

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("failed to render statistics: %w", err)
	}
	_, err = fmt.Fprintln(r.out, table)
	return err
}

func (r *Reporter) style(style lipgloss.Style, text string) string {
	if !r.opts.Color {
		return text
	}
	return style.Render(text)
}

// errWriter remembers the first write error and skips later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) print(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}

func (ew *errWriter) println(s string) {
	ew.print(s + "\n")
}
