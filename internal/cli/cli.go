package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/gsack/internal/config"
	"github.com/pfrederiksen/gsack/internal/logger"
	"github.com/pfrederiksen/gsack/internal/pipeline"
	"github.com/pfrederiksen/gsack/internal/scraper"
	"github.com/pfrederiksen/gsack/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

type options struct {
	configPath string
	source     string
	outputDir  string
	sleep      time.Duration
	postcodes  []string
	format     string
	verbose    bool
	dryRun     bool
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "gsack",
		Short: "Build Gelber Sack pickup calendars for Stuttgart",
		Long: `A CLI tool that scrapes the Gelber Sack (yellow bag) pickup schedules for
Stuttgart and writes one iCalendar file per street or collection area.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	// Define flags
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	cmd.Flags().StringVar(&opts.source, "source", "", "Primary source: listing or postback")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "", "Directory for .ics and catalog files")
	cmd.Flags().DurationVar(&opts.sleep, "sleep", config.DefaultSleep, "Delay before every request")
	cmd.Flags().StringArrayVar(&opts.postcodes, "postcode", nil, "Postcode to search (repeatable, listing source only)")
	cmd.Flags().StringVar(&opts.format, "format", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "Enable debug logging and print metrics")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Scrape and report without writing calendars")

	return cmd
}

// run is the main command logic
func run(cmd *cobra.Command, opts *options) error {
	// Validate format
	format := OutputFormat(strings.ToLower(opts.format))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", opts.format)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, opts, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := setupLogging(cmd, cfg); err != nil {
		return err
	}

	// Initialize storage
	store, err := storage.New(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	client, err := scraper.NewHTTPClient(cfg.Sleep)
	if err != nil {
		return fmt.Errorf("initializing http client: %w", err)
	}

	runner := newRunner(cfg, client, store, opts.dryRun)

	logger.Info("starting run", logger.Fields{
		"source":     cfg.Source,
		"output_dir": store.Dir(),
		"sleep":      cfg.Sleep.String(),
		"dry_run":    opts.dryRun,
	})

	summary, err := runner.Run(cmd.Context())
	if err != nil {
		return err
	}

	// Prepare output
	result := &OutputResult{
		FinishedAt: time.Now().UTC(),
		OutputDir:  store.Dir(),
		DryRun:     opts.dryRun,
		Summary:    summary,
	}
	if opts.verbose {
		result.Metrics = logger.GetMetricsSnapshot()
	}

	if err := WriteOutput(cmd.OutOrStdout(), result, format, opts.verbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	return nil
}

// applyFlags overrides file and environment settings with explicitly set flags.
func applyFlags(cmd *cobra.Command, opts *options, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.Source = strings.ToLower(strings.TrimSpace(opts.source))
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir = opts.outputDir
	}
	if flags.Changed("sleep") {
		cfg.Sleep = opts.sleep
	}
	if flags.Changed("postcode") {
		cfg.Listing.Postcodes = opts.postcodes
	}
	if opts.verbose {
		cfg.LogLevel = string(logger.LevelDebug)
	}
}

func setupLogging(cmd *cobra.Command, cfg *config.Config) error {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger.SetDefault(logger.New(level, cmd.ErrOrStderr()))
	return nil
}

// newRunner wires the configured sources and the emitter.
func newRunner(cfg *config.Config, client scraper.Client, store *storage.Storage, dryRun bool) *pipeline.Runner {
	runner := &pipeline.Runner{}

	switch cfg.Source {
	case scraper.SourcePostback:
		runner.Primary = scraper.NewPostbackSource(client, cfg.PostbackConfig())
	default:
		var catalog scraper.CatalogSink
		if !dryRun {
			catalog = store
		}
		runner.Primary = scraper.NewListingSource(client, cfg.ListingConfig(), catalog)
	}

	if cfg.UsesFallback() {
		runner.Fallback = scraper.NewPDFSource(client, scraper.PdftotextExtractor{}, cfg.PDFConfig())
	}

	if dryRun {
		runner.Emitter = &pipeline.CountingEmitter{}
	} else {
		runner.Emitter = &pipeline.CalendarEmitter{Writer: store}
	}

	return runner
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(ExitError)
	}
}
