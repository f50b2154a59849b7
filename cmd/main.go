package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/spf13/cobra"

	"github.com/0xmhha/blocketa/internal/advisory"
	"github.com/0xmhha/blocketa/internal/analyzer"
	"github.com/0xmhha/blocketa/internal/client"
	"github.com/0xmhha/blocketa/internal/config"
	"github.com/0xmhha/blocketa/internal/console"
	"github.com/0xmhha/blocketa/internal/metrics"
	"github.com/0xmhha/blocketa/internal/monitor"
	"github.com/0xmhha/blocketa/internal/projection"
	"github.com/0xmhha/blocketa/internal/tracker"
	"github.com/0xmhha/blocketa/pkg/types"
)

var (
	version = "dev"
	cfg     = &config.Config{}
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "blocketa",
		Short:   "Block arrival estimator",
		Long:    `blocketa follows the head of an EVM chain, tracks the average block time over a rolling window and estimates when a target block will be produced.`,
		Version: version,
		RunE:    run,
	}

	registerFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func registerFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	// RPC connection
	flags.StringVar(&cfg.URL, "url", config.DefaultURL, "RPC endpoint URL")
	flags.DurationVar(&cfg.FetchTimeout, "fetch-timeout", 0, "Deadline for each latest-block fetch (0 = none)")

	// Poll loop
	flags.DurationVar(&cfg.Interval, "interval", types.DefaultPollInterval, "Polling interval")
	flags.IntVar(&cfg.WindowSize, "window", types.DefaultWindowSize, "Number of recent blocks used for the average")
	flags.BoolVar(&cfg.Backfill, "backfill", false, "Seed the window with recent blocks on start")

	// Projection
	flags.StringVar(&cfg.Target, "target", "", "Initial target block number")

	// Advisory
	flags.StringVar(&cfg.AdvisoryKey, "advisory-key", "", "Gemini API key (default: $ADVISORY_API_KEY or $API_KEY)")
	flags.StringVar(&cfg.AdvisoryModel, "advisory-model", advisory.DefaultModel, "Gemini model name")
	flags.DurationVar(&cfg.AdvisoryTimeout, "advisory-timeout", 15*time.Second, "Deadline for an advisory request")
	flags.Float64Var(&cfg.AdvisoryRate, "advisory-rate", 0.2, "Max advisory requests per second (0 = unlimited)")

	// Output
	flags.BoolVar(&cfg.Verbose, "verbose", false, "Enable verbose logging")
	flags.BoolVar(&cfg.ShowHistory, "history", false, "Print the block window table on exit")

	// Prometheus metrics flags
	flags.BoolVar(&cfg.MetricsEnabled, "metrics", false, "Enable Prometheus metrics endpoint")
	flags.IntVar(&cfg.MetricsPort, "metrics-port", 9090, "Port for Prometheus metrics endpoint")
}

func setupLogger(verbose bool) {
	level := log.LevelInfo
	if verbose {
		level = log.LevelDebug
	}
	log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stderr, level, true)))
}

func run(cmd *cobra.Command, args []string) error {
	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	setupLogger(cfg.Verbose)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("Received interrupt signal, shutting down...")
		cancel()
	}()

	cli, err := client.New(ctx, cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer cli.Close()

	if chainID, err := cli.ChainID(ctx); err != nil {
		log.Warn("Could not read chain ID", "err", err)
	} else {
		log.Info("Connected to node", "url", cfg.URL, "chain", chainID, "websocket", cfg.IsWebSocket())
	}

	m := metrics.NewMetrics("blocketa")
	if cfg.MetricsEnabled {
		if err := m.Start(ctx, cfg.MetricsPort); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		log.Info("Metrics endpoint enabled", "port", cfg.MetricsPort)
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer stopCancel()
			_ = m.Stop(stopCtx)
		}()
	}

	trk := tracker.New(cli, &tracker.Config{
		Interval:     cfg.Interval,
		WindowSize:   cfg.WindowSize,
		FetchTimeout: cfg.FetchTimeout,
		Backfill:     cfg.Backfill,
		ShowProgress: true,
	}).WithRecorder(m)

	calc := projection.NewCalculator(nil)
	trk.Subscribe(calc.UpdateState)
	if cfg.Target != "" {
		calc.SetTarget(cfg.Target)
	}

	// without a generator every advisory request yields the fallback text
	var gen advisory.Generator
	if cfg.AdvisoryEnabled() {
		gemini, err := advisory.NewGeminiGenerator(ctx, cfg.AdvisoryKey, cfg.AdvisoryModel)
		if err != nil {
			log.Warn("Advisory generator unavailable", "err", err)
		} else {
			gen = gemini
		}
	} else {
		log.Info("No advisory API key set, AI analysis will report the fallback text")
	}
	advisor := advisory.New(gen, &advisory.Config{
		Timeout: cfg.AdvisoryTimeout,
		Rate:    cfg.AdvisoryRate,
		Burst:   1,
	}).WithRecorder(m)

	mon := monitor.New(trk, calc, os.Stdout, &monitor.Config{UpdateInterval: cfg.Interval})

	if err := trk.Start(ctx); err != nil {
		return fmt.Errorf("failed to start tracker: %w", err)
	}
	defer trk.Stop()

	go mon.Display(ctx)

	con := console.New(calc, advisor, mon)
	if err := con.Run(ctx, os.Stdin); errors.Is(err, console.ErrQuit) {
		cancel()
	} else if err != nil {
		log.Warn("Console input failed", "err", err)
	}
	<-ctx.Done()

	trk.Stop()
	if cfg.ShowHistory {
		if state, ok := trk.State(); ok {
			analyzer.PrintTable(os.Stdout, analyzer.Analyze(state.History))
		}
	}
	return nil
}
