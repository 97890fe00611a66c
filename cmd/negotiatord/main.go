// Negotiatord — an AI-mediated price-negotiation daemon implementing a
// Stacked Alternating Offers protocol over a Beckn-compatible HTTP surface.
//
// Architecture:
//
//	main.go                  — entry point: loads config, wires stores, starts the HTTP server
//	internal/negotiation     — SAO engine: concession curves, bot detection, exit-intent, validation
//	internal/dialogue        — LLM-backed seller persona, engine price always wins over the model
//	internal/protocol        — Beckn quote/on_select mapping, ISO-8601 durations, stub signing
//	internal/orchestrator    — wires engine + dialogue + persistence into Start/Negotiate
//	internal/store           — sqlite-backed session/audit/promotion records + in-process TTL cache
//	internal/httpapi         — REST + Beckn HTTP surface, middleware, auth
//	internal/seed            — loads the initial product catalogue fixture on first boot
//
// The dialogue adapter never gets the final say on price: whatever the SAO
// engine computes is what gets quoted, regardless of what the model returns.
package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"negotiatord/internal/config"
	"negotiatord/internal/dialogue"
	"negotiatord/internal/httpapi"
	"negotiatord/internal/orchestrator"
	"negotiatord/internal/seed"
	"negotiatord/internal/store"
)

func main() {
	cfgPath := "configs/config.yaml"
	if p := os.Getenv("NEGO_CONFIG"); p != "" {
		cfgPath = p
	}
	flag.StringVar(&cfgPath, "config", cfgPath, "path to config.yaml")
	seedPath := flag.String("seed", "", "optional path to a JSON product catalogue fixture")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err, "path", cfgPath)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Logging.Level)}
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)

	if err := os.MkdirAll(cfg.Store.DataDir, 0o755); err != nil {
		logger.Error("failed to create data dir", "error", err, "dir", cfg.Store.DataDir)
		os.Exit(1)
	}

	catalogue, err := store.OpenCatalogueStore(cfg.Store.DataDir)
	if err != nil {
		logger.Error("failed to open catalogue store", "error", err)
		os.Exit(1)
	}

	if *seedPath != "" {
		if _, err := seed.LoadFromFile(*seedPath, catalogue); err != nil {
			logger.Error("failed to load seed catalogue", "error", err, "path", *seedPath)
			os.Exit(1)
		}
		logger.Info("seeded product catalogue", "path", *seedPath)
	}

	records, err := store.OpenRecordStore(filepath.Join(cfg.Store.SQLitePath))
	if err != nil {
		logger.Error("failed to open record store", "error", err)
		os.Exit(1)
	}
	defer records.Close()

	cache := store.NewActiveCache()

	gen := dialogue.NewGenerator(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Timeout, logger)

	orch := orchestrator.New(cfg, catalogue, records, cache, gen, logger)

	srv := httpapi.NewServer(cfg, orch, catalogue, records, cache, logger)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("http server failed", "error", err)
		}
	}()

	logger.Info("negotiatord started",
		"port", cfg.API.Port,
		"env", cfg.Env,
		"max_rounds", cfg.Defaults.MaxRounds,
		"llm_model", cfg.LLM.Model,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("received shutdown signal", "signal", sig.String())

	if err := srv.Stop(); err != nil {
		logger.Error("failed to stop http server", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
