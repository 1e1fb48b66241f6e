package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"OptionsSentinel/internal/collector"
	"OptionsSentinel/internal/config"
	"OptionsSentinel/internal/metrics"
	"OptionsSentinel/internal/notifier"
	"OptionsSentinel/internal/pipeline"
	"OptionsSentinel/internal/recorder"
	"OptionsSentinel/internal/scheduler"
	"OptionsSentinel/internal/signalcache"
	"OptionsSentinel/internal/util"
	"OptionsSentinel/internal/watchlist"
)

func main() {
	// Load config
	cfg, err := config.Load(config.PathFromEnv())
	if err != nil {
		bootLog := util.NewLogger("info")
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := util.NewLogger(cfg.App.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	log.Info().Msg("OptionsSentinel starting...")

	// Init fetcher
	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case "rest":
		fetcher = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	case "mock":
		fetcher = &collector.MockFetcher{}
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy, cfg.DataSource.RateLimit)
	}
	log.Info().Str("source", fetcher.Name()).Msg("data source ready")

	col := collector.NewCollector(fetcher, collector.Options{
		Range:       cfg.DataSource.Range,
		Interval:    cfg.DataSource.Interval,
		Timeout:     cfg.DataSource.FetchTimeout,
		HistoryTTL:  cfg.DataSource.HistoryTTL,
		OptionsTTL:  cfg.DataSource.OptionsTTL,
		EarningsTTL: cfg.DataSource.EarningsTTL,
	}, log.With().Str("component", "collector").Logger())

	// Init recorders
	var (
		recs    recorder.Multi
		history scheduler.HistoryReader
	)
	if cfg.Storage.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Storage.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, skipping")
		} else {
			recs = append(recs, sr)
			history = sr
		}
	}
	if cfg.Storage.SignalLogCSV != "" {
		cr, err := recorder.NewCSVRecorder(cfg.Storage.SignalLogCSV)
		if err != nil {
			log.Warn().Err(err).Msg("init csv recorder failed, skipping")
		} else {
			recs = append(recs, cr)
		}
	}
	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if len(recs) > 0 {
		rec = recs
	}
	defer rec.Close()

	cache := signalcache.New(nil, rec, log.With().Str("component", "signalcache").Logger())
	analyzer := pipeline.NewAnalyzer(col, cache, pipeline.Config{Policy: cfg.Policy},
		log.With().Str("component", "pipeline").Logger())

	wl, err := watchlist.NewManager(cfg.Storage.WatchlistFile, watchlist.DefaultSymbols)
	if err != nil {
		log.Fatal().Err(err).Msg("init watchlist")
	}

	// Init notifier
	var (
		notify notifier.Notifier
		tn     *notifier.TelegramNotifier
	)
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy,
			log.With().Str("component", "telegram").Logger())
		notify = tn
	} else {
		log.Warn().Msg("telegram not configured, notifications go to the log")
		notify = notifier.NewLogNotifier(log)
	}

	if cfg.App.MetricsAddr != "" {
		srv := metrics.Serve(cfg.App.MetricsAddr)
		defer srv.Close()
		log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics listening")
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, scheduler.Deps{
		Analyzer:  analyzer,
		Data:      col,
		Signals:   cache,
		Watchlist: wl,
		Notifier:  notify,
		History:   history,
		Provider:  fetcher.Name(),
	}, log.With().Str("component", "scheduler").Logger())
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron, cfg.Schedule.CloseCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, refreshing watchlist now")
		go sched.RunRefreshNow()
	}

	log.Info().Strs("watchlist", wl.List()).Msg("OptionsSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping...")
	cancel()
}
