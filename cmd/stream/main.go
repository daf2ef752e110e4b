package main

import (
	"context"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"stockstream/internal/config"
	"stockstream/internal/dispatch"
	"stockstream/internal/feed"
	"stockstream/internal/handle"
	"stockstream/internal/metrics"
	"stockstream/internal/record"
	"stockstream/internal/store"
	"stockstream/internal/util"
	"stockstream/internal/worker"
)

func main() {
	log := util.NewLogger("stockstream", "info")

	configPath := "internal/config/config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	log = util.NewLogger(cfg.App.Name, cfg.App.LogLevel)

	_ = metrics.Serve(cfg.App.MetricsAddr)
	log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	layout := store.Layout{Root: cfg.Storage.DataDir}
	registry, err := handle.NewRegistry(layout, cfg.Feed.Symbols)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize symbol stores")
	}
	defer registry.Close()

	worker.Start(ctx, registry, log)
	go func() {
		if err := dispatch.New(registry, time.Minute, log).Run(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("dispatcher stopped")
			cancel()
		}
	}()

	src := feed.New(cfg.Feed.Provider, cfg.Feed.Symbols, log,
		feed.WithURL(cfg.Feed.URL),
		feed.WithToken(cfg.Feed.Token),
	)
	stream := make(chan record.Tick, 1024)
	go func() {
		if err := src.Run(ctx, stream); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("feed stopped")
			cancel()
		}
	}()

	log.Info().Strs("symbols", cfg.Feed.Symbols).Msg("stream engine started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("shutting down")
			return
		case tk := <-stream:
			h := registry.Lookup(tk.Symbol)
			if h == nil {
				metrics.DroppedTicks.Inc()
				continue
			}
			if err := h.Append(tk); err != nil {
				log.Error().Err(err).Str("symbol", tk.Symbol).Msg("append tick")
			}
		}
	}
}
