package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"productwatch/internal/api"
	"productwatch/internal/classifier"
	"productwatch/internal/config"
	"productwatch/internal/datastore"
	"productwatch/internal/differ"
	"productwatch/internal/logger"
	"productwatch/internal/notifier"
	"productwatch/internal/pipeline"
	"productwatch/internal/probe"
	"productwatch/internal/relevance"
	"productwatch/internal/scheduler"
	"productwatch/internal/search"
)

func main() {
	globalConfigFile := flag.String("globalconfig", "", "Path to the global YAML/JSON configuration file. If not set, searches default locations.")
	globalConfigFileAlias := flag.String("gc", "", "Alias for --globalconfig")
	flag.Parse()

	if *globalConfigFile == "" && *globalConfigFileAlias != "" {
		*globalConfigFile = *globalConfigFileAlias
	}

	if err := run(*globalConfigFile); err != nil {
		fmt.Fprintf(os.Stderr, "productwatch: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadGlobalConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.LogConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	appLogger.Info().Msg("ProductWatch starting...")

	store, err := datastore.NewSQLiteStore(cfg.StorageConfig, appLogger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	searcher := search.NewSerperClient(cfg.SearchConfig, appLogger)
	filter := relevance.NewModelFilter(cfg.RelevanceConfig, appLogger)
	registry := classifier.NewDefaultRegistry(appLogger)
	prober := probe.NewProber(cfg.ProbeConfig, registry, appLogger)
	gateway := notifier.NewSMTPGateway(cfg.NotificationConfig, appLogger)
	dispatcher := notifier.NewDispatcher(gateway, appLogger)
	diff := differ.NewDiffer(store, appLogger)

	checkPipeline := pipeline.NewPipeline(
		cfg.PipelineConfig, searcher, filter, prober, diff, dispatcher, store, appLogger)

	sched := scheduler.NewScheduler(cfg.SchedulerConfig, store, checkPipeline, appLogger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	server := api.NewServer(cfg, store, sched, dispatcher, appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := server.Start(ctx)

	appLogger.Info().Msg("Shutting down...")
	sched.Stop()
	dispatcher.Wait()

	if serverErr != nil {
		return fmt.Errorf("http server failed: %w", serverErr)
	}
	appLogger.Info().Msg("Shutdown complete")
	return nil
}
