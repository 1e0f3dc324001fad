package main

import (
	"log"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"watchlistBot/internal/config"
	"watchlistBot/internal/finance"
	"watchlistBot/internal/logging"
	"watchlistBot/internal/server"
	"watchlistBot/internal/storage"
	"watchlistBot/internal/telegram"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	// Ensure parent directory for the DB exists
	_ = os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755)
	db, err := storage.OpenSQLite("file:" + cfg.DBPath + "?_fk=1&_busy_timeout=5000")
	if err != nil {
		logger.Fatal("db: open", zap.Error(err))
	}
	defer db.Close()
	logger.Info("db: opened sqlite", zap.String("path", cfg.DBPath))
	if err := storage.InitSchema(db); err != nil {
		logger.Fatal("db: schema", zap.Error(err))
	}
	store := storage.NewStore(db)

	quotes := finance.NewQuoteAdapter(finance.NewYahooClient(logger), cfg.Engine.Suffixes, cfg.Engine.QuoteTimeout, logger)
	engine := finance.NewEngine(finance.EngineConfig{
		DirectoryTTL:    cfg.Engine.DirectoryTTL,
		QuoteTTL:        cfg.Engine.QuoteTTL,
		RefreshTimeout:  cfg.Engine.RefreshTimeout,
		DirectoryLookup: cfg.Engine.DirectoryLookup,
	},
		finance.NewDirectoryLoader(finance.NewKRXListing(cfg.ListingURL, logger), logger),
		finance.NewAggregator(quotes, cfg.Engine.Concurrency, logger),
		logger,
	)
	logger.Info("engine ready",
		zap.Duration("directory_ttl", cfg.Engine.DirectoryTTL),
		zap.Duration("quote_ttl", cfg.Engine.QuoteTTL),
		zap.Int("concurrency", cfg.Engine.Concurrency),
		zap.Bool("directory_lookup", cfg.Engine.DirectoryLookup))

	tg, err := telegram.NewBot(cfg.TelegramToken, cfg.WebhookPublicURL, store, engine, cfg.OpenAIKey, logger)
	if err != nil {
		logger.Fatal("telegram: init", zap.Error(err))
	}

	mux := server.NewHTTPMux(tg.WebhookHandler, server.BoardHandler(store, engine, cfg.BoardToken, logger)) // registers /telegram/webhook
	addr := ":" + cfg.Port
	logger.Info("http: listening", zap.String("addr", addr))
	if err := server.ListenAndServe(addr, mux); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
}
