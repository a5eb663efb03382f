package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/finlens-dev/finlens/internal/advisor"
	"github.com/finlens-dev/finlens/internal/analysis"
	"github.com/finlens-dev/finlens/internal/buildinfo"
	"github.com/finlens-dev/finlens/internal/config"
	"github.com/finlens-dev/finlens/internal/corpcode"
	"github.com/finlens-dev/finlens/internal/dart"
	"github.com/finlens-dev/finlens/internal/logging"
	"github.com/finlens-dev/finlens/internal/taxonomy"
)

// app carries the resolved configuration and the collaborators shared by
// subcommands. fetcher, generator and now are replaced in tests.
type app struct {
	v         *viper.Viper
	cfgFile   string
	envFile   string
	cfg       *config.Config
	logger    *slog.Logger
	fetcher   dart.Fetcher
	generator advisor.Generator
	now       func() time.Time
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&app{})
}

func newRootCommand(a *app) *cobra.Command {
	if a.v == nil {
		a.v = viper.New()
	}
	if a.now == nil {
		a.now = time.Now
	}

	rootCmd := &cobra.Command{
		Use:     "finlens",
		Short:   "Korean financial statement normalization for DART filings",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initConfig(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: ./"+config.FileName+")")
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	flags.String("api-key", "", "DART OpenAPI key")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (text, console, json)")

	_ = a.v.BindPFlag("dart.api_key", flags.Lookup("api-key"))
	_ = a.v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("logging.format", flags.Lookup("log-format"))

	rootCmd.AddCommand(newInitCommand(a))
	rootCmd.AddCommand(newStatementCommand(a))
	rootCmd.AddCommand(newCompareCommand(a))
	rootCmd.AddCommand(newMultiYearCommand(a))
	rootCmd.AddCommand(newQuarterlyCommand(a))
	rootCmd.AddCommand(newRatiosCommand(a))
	rootCmd.AddCommand(newDiffCommand(a))
	rootCmd.AddCommand(newCorpCommand(a))
	rootCmd.AddCommand(newExportCommand(a))
	rootCmd.AddCommand(newAnalyzeCommand(a))
	rootCmd.AddCommand(newHistoryCommand(a))
	rootCmd.AddCommand(newServeCommand(a))

	return rootCmd
}

// overridable lists the config keys that FINLENS_* variables and flags may set.
var overridable = []string{
	"dart.api_key",
	"dart.base_url",
	"dart.timeout",
	"dart.fallback_years",
	"dart.latest_year_scan",
	"taxonomy.path",
	"corpcode.db_path",
	"advisor.model",
	"advisor.api_key",
	"advisor.history_path",
	"server.addr",
	"logging.level",
	"logging.format",
}

// initConfig resolves configuration: flags over environment over file over
// defaults.
func (a *app) initConfig(cmd *cobra.Command) error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", a.envFile, err)
		}
	}

	cfg := config.Default()
	path := a.cfgFile
	if path == "" {
		path = config.FileName
	}
	loaded, err := config.Load(path)
	switch {
	case err == nil:
		cfg = loaded
	case errors.Is(err, os.ErrNotExist) && a.cfgFile == "":
		// No config file; defaults apply.
	default:
		return err
	}

	a.v.SetEnvPrefix("FINLENS")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()
	_ = a.v.BindEnv("dart.api_key", "FINLENS_DART_API_KEY", "OPEN_DART_API_KEY", "DART_API_KEY")
	_ = a.v.BindEnv("advisor.api_key", "FINLENS_ADVISOR_API_KEY", "GEMINI_API_KEY")

	if err := a.applyOverrides(cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg

	logger, err := logging.Setup(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	a.logger = logger
	return nil
}

func (a *app) applyOverrides(cfg *config.Config) error {
	for _, key := range overridable {
		if !a.v.IsSet(key) {
			continue
		}
		s := strings.TrimSpace(a.v.GetString(key))
		if s == "" {
			continue
		}
		switch key {
		case "dart.api_key":
			cfg.DART.APIKey = s
		case "dart.base_url":
			cfg.DART.BaseURL = s
		case "dart.timeout":
			d, err := time.ParseDuration(s)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			cfg.DART.Timeout = d
		case "dart.fallback_years":
			cfg.DART.FallbackYears = a.v.GetInt(key)
		case "dart.latest_year_scan":
			cfg.DART.LatestYearScan = a.v.GetInt(key)
		case "taxonomy.path":
			cfg.Taxonomy.Path = s
		case "corpcode.db_path":
			cfg.CorpCode.DBPath = s
		case "advisor.model":
			cfg.Advisor.Model = s
		case "advisor.api_key":
			cfg.Advisor.APIKey = s
		case "advisor.history_path":
			cfg.Advisor.HistoryPath = s
		case "server.addr":
			cfg.Server.Addr = s
		case "logging.level":
			cfg.Logging.Level = s
		case "logging.format":
			cfg.Logging.Format = s
		}
	}
	return nil
}

// dartFetcher returns the disclosure client. An API key is required unless
// a fetcher was injected.
func (a *app) dartFetcher() (dart.Fetcher, error) {
	if a.fetcher != nil {
		return a.fetcher, nil
	}
	client, err := a.dartClient()
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (a *app) dartClient() (*dart.Client, error) {
	if a.cfg.DART.APIKey == "" {
		return nil, errors.New("DART API key not configured (set OPEN_DART_API_KEY or dart.api_key)")
	}
	return dart.NewClient(a.cfg.DART.APIKey,
		dart.WithBaseURL(a.cfg.DART.BaseURL),
		dart.WithTimeout(a.cfg.DART.Timeout),
		dart.WithLogger(a.logger),
	), nil
}

// service builds an analysis service. progress may be nil.
func (a *app) service(progress analysis.Progress) (*analysis.Service, error) {
	f, err := a.dartFetcher()
	if err != nil {
		return nil, err
	}
	tx, err := taxonomy.Load(a.cfg.Taxonomy.Path)
	if err != nil {
		return nil, err
	}
	opts := []analysis.Option{
		analysis.WithRetryPolicy(dart.RetryPolicy{MaxFallbackYears: a.cfg.DART.FallbackYears}),
		analysis.WithLatestYearScan(a.cfg.DART.LatestYearScan),
		analysis.WithClock(a.now),
		analysis.WithLogger(a.logger),
	}
	if progress != nil {
		opts = append(opts, analysis.WithProgress(progress))
	}
	return analysis.New(f, tx, opts...), nil
}

// advisor builds the AI advisor. A missing API key yields a disabled advisor.
func (a *app) advisor(ctx context.Context) (*advisor.Advisor, error) {
	if a.generator != nil {
		return advisor.New(a.generator, a.logger), nil
	}
	gen, err := advisor.NewGemini(ctx, a.cfg.Advisor.APIKey, a.cfg.Advisor.Model)
	if errors.Is(err, advisor.ErrDisabled) {
		return advisor.New(nil, a.logger), nil
	}
	if err != nil {
		return nil, err
	}
	return advisor.New(gen, a.logger), nil
}

func (a *app) openStore() (*corpcode.Store, error) {
	return corpcode.Open(a.cfg.CorpCode.DBPath)
}

// printJSON writes v as indented JSON without HTML escaping.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}
