package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	charmlipgloss "github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/meysamhadeli/shaderinc/config"
	"github.com/meysamhadeli/shaderinc/constants/lipgloss"
	"github.com/meysamhadeli/shaderinc/include_analyzer"
	"github.com/meysamhadeli/shaderinc/include_analyzer/contracts"
	"github.com/meysamhadeli/shaderinc/reporter"
	"github.com/muesli/termenv"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// ErrMissingIncludes is returned when --fail_on_missing is set and the report is not clean.
var ErrMissingIncludes = errors.New("missing includes found")

// RootDependencies holds everything a verification run needs.
type RootDependencies struct {
	Cwd      string
	Root     string
	Config   *config.Config
	Analyzer contracts.IIncludeAnalyzer
	Reporter *reporter.Reporter
	Color    bool
}

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shaderinc <directory_path>",
		Short: "Verify that every #include in a shader tree points at an existing file.",
		Long: `shaderinc walks a shader source tree, collects every #include directive from
.glsl, .slang, .h, .inc, .params and .hlsl files and reports the ones that do not
resolve to a file in the tree. For each missing include it suggests the most similar
existing file with the same name, expressed relative to the including file.

If <directory_path> does not exist or is not a directory, shaderinc prints
"Error: '<directory_path>' is not a valid directory path." to stderr and exits
with status 1. With --fail_on_missing it also exits with status 1 when any
include is missing.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if version, _ := cmd.Flags().GetBool("version"); version {
				fmt.Fprintln(cmd.OutOrStdout(), lipgloss.BlueSky.Render(fmt.Sprintf("version: %s", config.DefaultConfig.Version)))
				return nil
			}
			if len(args) == 0 {
				return errors.New("requires a <directory_path> argument")
			}

			rootDependencies, err := handleRootCommand(cmd, args[0])
			if err != nil {
				return err
			}

			if watch, _ := cmd.Flags().GetBool("watch"); watch {
				return handleWatchCommand(cmd, rootDependencies)
			}
			return runVerification(cmd, rootDependencies)
		},
	}

	config.InitFlags(cmd)
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, ErrMissingIncludes) {
			fmt.Fprintln(os.Stderr, lipgloss.Red.Render(fmt.Sprintf("Error: %v", err)))
		}
		os.Exit(1)
	}
}

func handleRootCommand(cmd *cobra.Command, directoryPath string) (*RootDependencies, error) {
	root, err := config.ResolveRoot(directoryPath)
	if err != nil {
		return nil, err
	}
	if !config.IsDirectory(root) {
		return nil, fmt.Errorf("'%s' is %w.", directoryPath, include_analyzer.ErrInvalidRoot)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current working directory: %w", err)
	}

	cfg, err := config.LoadConfigs(cmd, cwd)
	if err != nil {
		return nil, err
	}

	if cfg.Verbose {
		log.SetOutput(cmd.ErrOrStderr())
	} else {
		log.SetOutput(io.Discard)
	}

	metric, err := include_analyzer.NewMetric(cfg.Similarity)
	if err != nil {
		return nil, err
	}

	analyzer, err := include_analyzer.NewIncludeAnalyzer(include_analyzer.Options{
		Extensions: cfg.Extensions,
		Exclude:    cfg.Exclude,
		Metric:     metric,
		CacheSize:  cfg.CacheSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize include analyzer: %w", err)
	}

	color := configureColor(cfg.Color, cmd.OutOrStdout())

	return &RootDependencies{
		Cwd:      cwd,
		Root:     root,
		Config:   cfg,
		Analyzer: analyzer,
		Color:    color,
		Reporter: reporter.NewReporter(cmd.OutOrStdout(), reporter.Options{
			Format:     cfg.Format,
			Color:      color,
			ShowSource: cfg.ShowSource,
			Stats:      cfg.Stats,
			Theme:      cfg.Theme,
		}),
	}, nil
}

// runVerification performs one crawl and verify pass and renders the report.
func runVerification(cmd *cobra.Command, rootDependencies *RootDependencies) error {
	var spinnerInstance *pterm.SpinnerPrinter
	if isTerminal(cmd.ErrOrStderr()) {
		spinner := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgLightBlue)).
			WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").
			WithDelay(100).WithRemoveWhenDone(true).WithWriter(cmd.ErrOrStderr())
		spinnerInstance, _ = spinner.Start("Verifying includes...")
	}

	report, err := rootDependencies.Analyzer.Run(rootDependencies.Root)

	if spinnerInstance != nil {
		_ = spinnerInstance.Stop()
	}
	if err != nil {
		return err
	}

	if err := rootDependencies.Reporter.Render(report); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if rootDependencies.Config.FailOnMissing && report.HasMissing() {
		return ErrMissingIncludes
	}
	return nil
}

// configureColor resolves the color mode against the output writer and
// applies it to the lipgloss and pterm renderers.
func configureColor(mode string, out io.Writer) bool {
	var color bool
	switch mode {
	case config.ColorAlways:
		color = true
	case config.ColorNever:
		color = false
	default:
		color = isTerminal(out)
	}

	if color {
		charmlipgloss.SetColorProfile(termenv.ANSI256)
		pterm.EnableColor()
	} else {
		charmlipgloss.SetColorProfile(termenv.Ascii)
		pterm.DisableColor()
	}
	return color
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
