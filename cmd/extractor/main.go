package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/fantasyops/espn-extractor/external/espn"
	"github.com/fantasyops/espn-extractor/internal/config"
	"github.com/fantasyops/espn-extractor/internal/domain/statmap"
	"github.com/fantasyops/espn-extractor/internal/infrastructure/output"
	"github.com/fantasyops/espn-extractor/internal/infrastructure/population"
	"github.com/fantasyops/espn-extractor/internal/observability"
	"github.com/fantasyops/espn-extractor/internal/platform/id"
	"github.com/fantasyops/espn-extractor/internal/platform/logging"
	"github.com/fantasyops/espn-extractor/internal/usecase"
)

type cliFlags struct {
	year         int
	threads      int
	batchSize    int
	sampleSize   int
	includeStats bool
	forceFull    bool
	outputDir    string
	envFile      string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	flags := &cliFlags{}

	cmd := &cobra.Command{
		Use:          "extractor",
		Short:        "Extract professional baseball athlete data from the ESPN fantasy and core APIs",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, flags)
		},
	}

	cmd.Flags().IntVar(&flags.year, "year", 0, "season year (default EXTRACT_SEASON_YEAR or current year)")
	cmd.Flags().IntVar(&flags.threads, "threads", 0, "hydration worker count (default EXTRACT_THREADS)")
	cmd.Flags().IntVar(&flags.batchSize, "batch-size", 0, "progress report interval (default EXTRACT_BATCH_SIZE)")
	cmd.Flags().IntVar(&flags.sampleSize, "sample-size", -1, "cap on new athletes, 0 for no cap (default EXTRACT_SAMPLE_SIZE)")
	cmd.Flags().BoolVar(&flags.includeStats, "include-stats", true, "fetch per-athlete season statistics")
	cmd.Flags().BoolVar(&flags.forceFull, "force-full", false, "ignore the known population and extract everything")
	cmd.Flags().StringVar(&flags.outputDir, "output-dir", "", "directory for output files (default EXTRACT_OUTPUT_DIR)")
	cmd.Flags().StringVar(&flags.envFile, "env-file", ".env", "env file to load before reading configuration")

	return cmd
}

func run(cmd *cobra.Command, flags *cliFlags) error {
	// Missing env files are fine; explicit ones must exist.
	if err := godotenv.Load(flags.envFile); err != nil && flags.envFile != ".env" {
		return fmt.Errorf("load env file %s: %w", flags.envFile, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyFlagOverrides(cmd, flags, &cfg)

	logger := logging.NewJSON(cfg.LogLevel).With(
		"service", cfg.ServiceName,
		"version", cfg.ServiceVersion,
	)
	logging.SetDefault(logger)
	defer logger.Sync()

	shutdownUptrace, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		return fmt.Errorf("init uptrace: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := shutdownUptrace(ctx); err != nil {
			logger.Warn("uptrace shutdown failed", "error", err)
		}
	}()

	stopProfiler, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		return fmt.Errorf("init pyroscope: %w", err)
	}
	defer func() {
		if err := stopProfiler(); err != nil {
			logger.Warn("pyroscope stop failed", "error", err)
		}
	}()

	pprofSrv, err := observability.StartPprofServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("start pprof server: %w", err)
	}
	defer func() {
		if err := observability.StopPprofServer(pprofSrv, logger, 5*time.Second); err != nil {
			logger.Warn("pprof shutdown failed", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := buildExtractService(cfg, logger)
	if err != nil {
		return err
	}

	result, err := svc.Run(ctx, usecase.ExtractParams{
		Year:         cfg.SeasonYear,
		SampleSize:   cfg.SampleSize,
		IncludeStats: cfg.IncludeStats,
		Concurrency:  cfg.Threads,
		BatchSize:    cfg.BatchSize,
		ForceFull:    cfg.ForceFull,
		Availability: usecase.AvailabilityDecision(cfg.OnUnavailable),
		BlockCodes:   cfg.StatBlockCodes,
	})
	if err != nil {
		return fmt.Errorf("extraction run: %w", err)
	}

	logger.Info("run complete",
		"run_id", result.RunID,
		"pitchers", result.Pitchers,
		"batters", result.Batters,
		"failures", len(result.Failures),
		"output_paths", result.OutputPaths,
	)
	return nil
}

// applyFlagOverrides lets explicit CLI flags win over environment
// configuration.
func applyFlagOverrides(cmd *cobra.Command, flags *cliFlags, cfg *config.Config) {
	if cmd.Flags().Changed("year") && flags.year > 0 {
		cfg.SeasonYear = flags.year
	}
	if cmd.Flags().Changed("threads") && flags.threads > 0 {
		cfg.Threads = flags.threads
	}
	if cmd.Flags().Changed("batch-size") && flags.batchSize > 0 {
		cfg.BatchSize = flags.batchSize
	}
	if cmd.Flags().Changed("sample-size") && flags.sampleSize >= 0 {
		cfg.SampleSize = flags.sampleSize
	}
	if cmd.Flags().Changed("include-stats") {
		cfg.IncludeStats = flags.includeStats
	}
	if cmd.Flags().Changed("force-full") {
		cfg.ForceFull = flags.forceFull
	}
	if cmd.Flags().Changed("output-dir") && flags.outputDir != "" {
		cfg.OutputDir = flags.outputDir
	}
}

func buildExtractService(cfg config.Config, logger *logging.Logger) (*usecase.ExtractService, error) {
	client := espn.NewClient(espn.ClientConfig{
		Timeout:        cfg.ESPNTimeout,
		MaxRetries:     cfg.ESPNMaxRetries,
		BackoffBase:    cfg.ESPNBackoffBase,
		BackoffMax:     cfg.ESPNBackoffMax,
		RatePerSecond:  cfg.ESPNRatePerSecond,
		RateBurst:      cfg.ESPNRateBurst,
		Logger:         logger,
		CircuitBreaker: cfg.ESPNCircuit,
	})

	fantasy := espn.NewFantasyClient(client, cfg.ESPNFantasyBaseURL, cfg.SeasonYear, logger)
	core := espn.NewCoreClient(client, cfg.ESPNCoreBaseURL, logger)

	var source usecase.PopulationSource
	if cfg.PopulationEnabled && !cfg.ForceFull {
		populationClient, err := population.NewClient(population.ClientConfig{
			Endpoint:   cfg.PopulationEndpoint,
			Headers:    cfg.PopulationHeaders,
			Timeout:    cfg.PopulationTimeout,
			MaxRetries: cfg.PopulationMaxRetries,
			Logger:     logger,
		})
		if err != nil {
			return nil, fmt.Errorf("build population client: %w", err)
		}
		source = populationClient
	}

	writer, err := output.NewWriter(cfg.OutputDir, logger)
	if err != nil {
		return nil, fmt.Errorf("build output writer: %w", err)
	}

	normalizer := statmap.NewNormalizer(cfg.SeasonYear, logger)

	return usecase.NewExtractService(
		fantasy,
		usecase.NewUniverseService(source, logger),
		usecase.NewHydrationService(core, normalizer, logger),
		writer,
		normalizer,
		id.NewUUIDGenerator(),
		logger,
	), nil
}
