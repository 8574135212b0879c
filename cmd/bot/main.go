package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/hourlytracker/tracker-bot/internal/bot"
	"github.com/hourlytracker/tracker-bot/internal/classifier"
	"github.com/hourlytracker/tracker-bot/internal/health"
	"github.com/hourlytracker/tracker-bot/internal/reminder"
	"github.com/hourlytracker/tracker-bot/internal/storage"
	"github.com/hourlytracker/tracker-bot/pkg/config"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	// Initialize storage
	var store storage.Storage
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory storage")
		store = storage.NewMemoryStorage()
	} else {
		logger.Info("Using PostgreSQL storage")
		store, err = storage.NewPostgresStorage(storage.DatabaseConfig{
			Host:        cfg.Database.Host,
			Port:        cfg.Database.Port,
			User:        cfg.Database.User,
			Password:    cfg.Database.Password,
			DBName:      cfg.Database.DBName,
			SSLMode:     cfg.Database.SSLMode,
			UseInMemory: cfg.Database.UseInMemory,
		})
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	}
	defer store.Close()

	// Thought tagging: GPT when a key is configured, keyword matching otherwise
	var clf classifier.Classifier = classifier.NewSimpleClassifier(cfg.Classifier.MaxTags)
	if cfg.OpenAI.APIKey != "" {
		clf = classifier.NewGPTClassifier(
			cfg.OpenAI.APIKey,
			cfg.OpenAI.Model,
			cfg.OpenAI.MaxTokens,
			cfg.OpenAI.Temperature,
			cfg.Classifier.MaxTags,
			logger,
		)
	}

	// Initialize transport
	tg, err := bot.NewTelegram(cfg.Telegram.Token, logger)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	scheduler := reminder.NewScheduler(tg, cfg.Chat.AllowedRooms, logger)
	dispatcher := bot.NewDispatcher(store, tg, scheduler, clf, cfg.Chat.AllowedRooms, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := scheduler.Start(ctx); err != nil {
		logger.Fatal("Failed to start reminder scheduler", zap.Error(err))
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return tg.Run(ctx, dispatcher)
	})
	if cfg.Health.Addr != "" {
		srv := health.NewServer(cfg.Health.Addr, store, logger)
		g.Go(func() error {
			return srv.Run(ctx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Fatal("Bot error", zap.Error(err))
	}
}
