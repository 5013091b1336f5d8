package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"Springboard/internal/api"
	"Springboard/internal/collector"
	"Springboard/internal/config"
	"Springboard/internal/notifier"
	"Springboard/internal/scheduler"
	"Springboard/internal/store"
)

func setupLogging(level string, pretty bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}
}

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	setupLogging(cfg.Log.Level, cfg.Log.Pretty)
	log.Info().Str("config", cfgPath).Msg("Springboard starting...")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	engine, err := cfg.EngineConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("engine config")
	}

	// Init fetcher
	var fetcher collector.Fetcher
	if cfg.DataSource.SQLitePath != "" {
		st, err := store.NewSQLiteStore(cfg.DataSource.SQLitePath)
		if err != nil {
			log.Fatal().Err(err).Msg("open bar store")
		}
		defer st.Close()
		fetcher = st
	} else {
		log.Warn().Msg("no sqlite_path configured, serving synthetic bars")
		fetcher = &collector.MockFetcher{Price: 6000, Grid: engine.Grid}
	}
	log.Info().Str("source", fetcher.Name()).Msg("data source ready")

	col := collector.NewCollector(fetcher, cfg.DataSource.Symbol, engine.Grid)

	// Init notifier
	var n notifier.Notifier = notifier.NewNoopNotifier()
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		n = tn
	} else {
		log.Warn().Msg("telegram not configured, reports go to the log only")
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, col, engine, n)
	if err := sched.RegisterAll(cfg.Schedule.PreOpenCron, cfg.Schedule.PostCloseCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	srv := api.NewServer(api.ServerConfig{
		Addr:           cfg.Server.Addr,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		ProductionMode: os.Getenv("GIN_MODE") == "release",
	}, engine, sched)
	go func() {
		if err := srv.Start(); err != nil {
			log.Error().Err(err).Msg("api server")
			cancel()
		}
	}()

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, evaluating today now")
		go sched.RunNow()
	}

	log.Info().Msg("Springboard is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Info().Msg("shutdown signal received, stopping...")
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("api shutdown")
	}
	cancel()
	log.Info().Msg("Springboard stopped")
}
