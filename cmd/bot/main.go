package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"avito_bot/internal/bot"
	"avito_bot/internal/browser"
	"avito_bot/internal/captcha"
	"avito_bot/internal/config"
	"avito_bot/internal/extract"
	"avito_bot/internal/storage"
	"avito_bot/internal/watcher"
)

func main() {
	// A local .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewSQLite(cfg.DatabasePath)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	b, err := bot.New(cfg.TelegramBotToken, store, log)
	if err != nil {
		log.Error("create bot", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// The seen-listing window does not survive restarts, so existing
	// subscribers are warned that some notifications may repeat.
	subscribers, err := store.ListSubscribers(ctx)
	if err != nil {
		log.Error("list subscribers", "error", err)
		os.Exit(1)
	}
	for _, chatID := range subscribers {
		b.SendRestartNotice(chatID)
	}

	br, err := browser.Launch(cfg.Headless)
	if err != nil {
		log.Error("launch browser", "error", err)
		os.Exit(1)
	}
	defer func() { _ = br.Close() }()

	solver := captcha.NewSolver(http.DefaultClient, cfg.CaptchaAPIKey, cfg.CaptchaCreateTaskURL, cfg.CaptchaResultURL, log)
	verifier := captcha.NewVerifier(http.DefaultClient, cfg.BaseURL+"/web/1/captcha/verify")
	handler := captcha.NewHandler(solver, verifier, log)

	extractor := extract.New(
		storage.NewWindow(cfg.SeenCapacity),
		b,
		extract.Rules{
			Keywords:         cfg.Keywords,
			NegativeKeywords: cfg.NegativeKeywords,
			PriceFloor:       cfg.PriceFloor,
			GeoSlug:          cfg.GeoSlug,
			FreshLabel:       cfg.FreshLabel,
			BaseURL:          cfg.BaseURL,
		},
		log,
	)

	w := watcher.New(br, handler, extractor, store, cfg.SearchURLs, cfg.ProxyList, cfg.UserAgents, cfg.CheckInterval, log)

	log.Info("starting bot", "urls", len(cfg.SearchURLs), "subscribers", len(subscribers))

	go w.Run(ctx)

	b.Run(ctx)

	log.Info("bot stopped")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
