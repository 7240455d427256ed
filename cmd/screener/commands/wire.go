package commands

import (
	"time"

	"github.com/rs/zerolog/log"

	"RSLScreener/internal/collector"
	"RSLScreener/internal/config"
	"RSLScreener/internal/notifier"
	"RSLScreener/internal/ranking"
	"RSLScreener/internal/recorder"
	"RSLScreener/internal/screener"
	"RSLScreener/internal/store"
	"RSLScreener/internal/universe"
)

type app struct {
	runner    *screener.Runner
	snapshots *store.SnapshotStore
	recorder  recorder.Recorder
	telegram  *notifier.TelegramNotifier
}

func (a *app) Close() {
	if err := a.recorder.Close(); err != nil {
		log.Warn().Err(err).Msg("close recorder")
	}
}

func newUniverse(cfg *config.Config) universe.Source {
	if cfg.Screener.Universe == config.UniverseStatic {
		return &universe.Static{Symbols: cfg.Screener.Symbols}
	}
	return universe.NewStockAnalysis(cfg.Screener.MaxPages, *cfg.Screener.Dedupe)
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	if cfg.DataSource.BaseURL != "" {
		return collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	}
	return collector.NewYahooFetcher(cfg.Proxy)
}

func newRecorder(cfg *config.Config) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return sr
}

func newApp(cfg *config.Config) *app {
	fetcher := newFetcher(cfg)
	src := newUniverse(cfg)
	log.Info().Str("data_source", fetcher.Name()).Str("universe", src.Name()).Msg("wiring screener")

	snapshots := store.NewSnapshotStore(cfg.Output.SnapshotPath)
	ranks := store.NewRankStore(cfg.Output.PrevRanksPath)
	a := &app{
		snapshots: snapshots,
		recorder:  newRecorder(cfg),
	}
	a.runner = &screener.Runner{
		Universe: src,
		Collector: collector.NewCollector(fetcher, collector.Options{
			HistoryDays:       cfg.DataSource.HistoryDays,
			Concurrency:       cfg.DataSource.Concurrency,
			RequestsPerSecond: cfg.DataSource.RequestsPerSecond,
		}),
		Engine:    ranking.NewEngine(ranking.Config{Window: cfg.Screener.Window, TopN: cfg.Screener.TopN}),
		Ranks:     ranks,
		Publisher: store.NewPublisher(snapshots, ranks),
		Recorder:  a.recorder,
		Now:       time.Now,
	}
	if cfg.TelegramEnabled() {
		a.telegram = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		a.runner.Notifier = a.telegram
	}
	return a
}
