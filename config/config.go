package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/meysamhadeli/shaderinc/include_analyzer"
	"github.com/meysamhadeli/shaderinc/reporter"
	"github.com/meysamhadeli/shaderinc/utils"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config represents the structure of the configuration file
type Config struct {
	Version       string        `mapstructure:"version"`
	Extensions    []string      `mapstructure:"extensions"`
	Exclude       []string      `mapstructure:"exclude"`
	Similarity    string        `mapstructure:"similarity"`
	Format        string        `mapstructure:"format"`
	Color         string        `mapstructure:"color"`
	Theme         string        `mapstructure:"theme"`
	ShowSource    bool          `mapstructure:"show_source"`
	Stats         bool          `mapstructure:"stats"`
	CacheSize     int           `mapstructure:"cache_size"`
	FailOnMissing bool          `mapstructure:"fail_on_missing"`
	WatchDebounce time.Duration `mapstructure:"watch_debounce"`
	Verbose       bool          `mapstructure:"verbose"`
}

// DefaultConfig values
var DefaultConfig = Config{
	Version:       "1.0.0",
	Extensions:    include_analyzer.DefaultExtensions,
	Exclude:       []string{},
	Similarity:    include_analyzer.DefaultMetric,
	Format:        reporter.FormatText,
	Color:         ColorAuto,
	Theme:         utils.DefaultTheme,
	ShowSource:    false,
	Stats:         false,
	CacheSize:     include_analyzer.DefaultCacheSize,
	FailOnMissing: false,
	WatchDebounce: utils.DefaultDebounce,
	Verbose:       false,
}

// configFileName is looked up in the working directory with a .yaml, .yml or .json extension.
const configFileName = "shaderinc-config"

// LoadConfigs builds the configuration from defaults, .env, environment
// variables, the configuration file and finally command line flags.
func LoadConfigs(rootCmd *cobra.Command, cwd string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	_ = godotenv.Load(filepath.Join(cwd, ".env"))

	v.AutomaticEnv()
	bindEnv(v)

	cfgFile, _ := rootCmd.Flags().GetString("config")
	if cfgFile != "" {
		expanded, err := homedir.Expand(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("invalid config path %s: %w", cfgFile, err)
		}
		v.SetConfigFile(expanded)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		v.SetConfigName(configFileName)
		v.AddConfigPath(cwd)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	if err := bindFlags(v, rootCmd); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate normalises list values and rejects unknown enum values.
func (c *Config) Validate() error {
	extensions := make([]string, 0, len(c.Extensions))
	for _, ext := range c.Extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extensions = append(extensions, ext)
	}
	if len(extensions) == 0 {
		return errors.New("at least one source extension is required")
	}
	c.Extensions = extensions

	exclude := make([]string, 0, len(c.Exclude))
	for _, pattern := range c.Exclude {
		if pattern = strings.TrimSpace(pattern); pattern != "" {
			exclude = append(exclude, pattern)
		}
	}
	c.Exclude = exclude

	if _, err := include_analyzer.NewMetric(c.Similarity); err != nil {
		return err
	}

	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	if !reporter.IsValidFormat(c.Format) {
		return fmt.Errorf("unsupported output format %q (available: %s)", c.Format, strings.Join(reporter.Formats, ", "))
	}

	c.Color = strings.ToLower(strings.TrimSpace(c.Color))
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid color mode %q (expected auto, always or never)", c.Color)
	}

	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size must not be negative, got %d", c.CacheSize)
	}
	return nil
}

// setDefaults sets all default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("version", DefaultConfig.Version)
	v.SetDefault("extensions", DefaultConfig.Extensions)
	v.SetDefault("exclude", DefaultConfig.Exclude)
	v.SetDefault("similarity", DefaultConfig.Similarity)
	v.SetDefault("format", DefaultConfig.Format)
	v.SetDefault("color", DefaultConfig.Color)
	v.SetDefault("theme", DefaultConfig.Theme)
	v.SetDefault("show_source", DefaultConfig.ShowSource)
	v.SetDefault("stats", DefaultConfig.Stats)
	v.SetDefault("cache_size", DefaultConfig.CacheSize)
	v.SetDefault("fail_on_missing", DefaultConfig.FailOnMissing)
	v.SetDefault("watch_debounce", DefaultConfig.WatchDebounce)
	v.SetDefault("verbose", DefaultConfig.Verbose)
}

// bindEnv explicitly binds environment variables to configuration keys
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("extensions", "SHADERINC_EXTENSIONS")
	_ = v.BindEnv("exclude", "SHADERINC_EXCLUDE")
	_ = v.BindEnv("similarity", "SHADERINC_SIMILARITY")
	_ = v.BindEnv("format", "SHADERINC_FORMAT")
	_ = v.BindEnv("color", "SHADERINC_COLOR")
	_ = v.BindEnv("theme", "SHADERINC_THEME")
	_ = v.BindEnv("show_source", "SHADERINC_SHOW_SOURCE")
	_ = v.BindEnv("stats", "SHADERINC_STATS")
	_ = v.BindEnv("cache_size", "SHADERINC_CACHE_SIZE")
	_ = v.BindEnv("fail_on_missing", "SHADERINC_FAIL_ON_MISSING")
	_ = v.BindEnv("watch_debounce", "SHADERINC_WATCH_DEBOUNCE")
	_ = v.BindEnv("verbose", "SHADERINC_VERBOSE")
}

// bindFlags binds the CLI flags to configuration values.
func bindFlags(v *viper.Viper, rootCmd *cobra.Command) error {
	keys := []string{
		"extensions", "exclude", "similarity", "format", "color", "theme", "show_source",
		"stats", "cache_size", "fail_on_missing", "watch_debounce", "verbose",
	}
	for _, key := range keys {
		flag := rootCmd.Flags().Lookup(key)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", key, err)
		}
	}
	return nil
}

// InitFlags initializes the flags for the root command.
func InitFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Specifies the path to a configuration file (JSON or YAML) that contains all the settings for the application.")

	rootCmd.PersistentFlags().StringSlice("extensions", DefaultConfig.Extensions, "Source extensions scanned for include directives (exact, case-sensitive).")
	rootCmd.PersistentFlags().StringSlice("exclude", DefaultConfig.Exclude, "Glob patterns of files or directories to leave out of the scan (e.g. 'third_party/', '**/*.bak').")
	rootCmd.PersistentFlags().String("similarity", DefaultConfig.Similarity, "Similarity metric ranking suggestions: "+strings.Join(include_analyzer.MetricNames(), ", ")+".")
	rootCmd.PersistentFlags().String("format", DefaultConfig.Format, "Output format: "+strings.Join(reporter.Formats, ", ")+".")
	rootCmd.PersistentFlags().String("color", DefaultConfig.Color, "Colorize output: 'auto', 'always' or 'never'.")
	rootCmd.PersistentFlags().String("theme", DefaultConfig.Theme, "Syntax highlighting theme for source excerpts (e.g., 'dracula', 'monokai').")
	rootCmd.PersistentFlags().Bool("show_source", DefaultConfig.ShowSource, "Print the line number and source line of every missing include.")
	rootCmd.PersistentFlags().Bool("stats", DefaultConfig.Stats, "Print a summary table after the report.")
	rootCmd.PersistentFlags().Int("cache_size", DefaultConfig.CacheSize, "Number of distinct file contents whose extraction results are cached (0 disables).")
	rootCmd.PersistentFlags().Bool("fail_on_missing", DefaultConfig.FailOnMissing, "Exit with status 1 when any include is missing.")
	rootCmd.PersistentFlags().Bool("watch", false, "Keep running and verify again whenever the tree changes.")
	rootCmd.PersistentFlags().Duration("watch_debounce", DefaultConfig.WatchDebounce, "Quiet period after a change before verifying again in watch mode.")
	rootCmd.PersistentFlags().Bool("verbose", DefaultConfig.Verbose, "Log diagnostics to stderr.")

	rootCmd.Flags().BoolP("version", "v", false, "Specifies the version of the application.")
}

// ResolveRoot expands a leading ~ in the directory argument.
func ResolveRoot(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("invalid directory path %s: %w", path, err)
	}
	return expanded, nil
}

// IsDirectory reports whether path exists and is a directory.
func IsDirectory(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
