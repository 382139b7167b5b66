package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blueblud7/dailyYoutubeSummary/internal/bot"
	"github.com/blueblud7/dailyYoutubeSummary/internal/config"
	"github.com/blueblud7/dailyYoutubeSummary/internal/database"
	"github.com/blueblud7/dailyYoutubeSummary/internal/handlers"
	"github.com/blueblud7/dailyYoutubeSummary/internal/models"
	"github.com/blueblud7/dailyYoutubeSummary/internal/repository"
	"github.com/blueblud7/dailyYoutubeSummary/internal/router"
	"github.com/blueblud7/dailyYoutubeSummary/internal/scheduler"
	"github.com/blueblud7/dailyYoutubeSummary/internal/services"
)

func main() {
	log.Println("🚀 Starting Daily YouTube Summary...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Run Database Migrations ────
	if err := database.RunMigrations(pool); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Step 4: Initialize Redis (optional) ────
	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		log.Println("✓ Redis connected")
	} else {
		log.Println("– Redis not configured, caching disabled")
	}
	cache := services.NewCache(redisClient)

	// ──── Step 5: Load Default Sources ────
	sources, err := config.LoadSources(cfg.SourcesFile)
	if err != nil {
		log.Fatalf("✗ Sources file failed to load: %v", err)
	}
	log.Printf("✓ Sources loaded: %d channels, %d keywords", len(sources.Channels), len(sources.Keywords))

	// ──── Initialize Store ────
	store := repository.NewStore(pool)

	// Seed default channels and keywords so a fresh database collects
	// something on the first run.
	seedSources(store, sources)

	// ──── Step 6: Initialize YouTube Client ────
	youtubeService, err := services.NewYouTubeService(cfg.YouTubeAPIKeys)
	if err != nil {
		log.Fatalf("✗ YouTube client initialization failed: %v", err)
	}
	log.Printf("✓ YouTube client initialized (%d API keys)", len(cfg.YouTubeAPIKeys))

	// ──── Step 7: Initialize Gemini Scorer ────
	scorer, err := services.NewScorer(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiConcurrentReqs)
	if err != nil {
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	}
	defer scorer.Close()
	log.Printf("✓ Gemini scorer initialized (%s)", cfg.GeminiModel)

	// ──── Initialize Services ────
	collector := services.NewCollector(youtubeService, scorer, store, cache, cfg.CollectorWorkers)
	reportService := services.NewReportService(store, cache)

	// ──── Step 8: Start Telegram Bot (optional) ────
	var tgBot *bot.Bot
	if cfg.TelegramBotToken != "" {
		tgBot, err = bot.New(cfg.TelegramBotToken, reportService, cfg.TelegramChatIDs)
		if err != nil {
			log.Fatalf("✗ Telegram bot initialization failed: %v", err)
		}
		go tgBot.Start(context.Background())
		log.Printf("✓ Telegram bot started (%d subscriber chats)", len(cfg.TelegramChatIDs))
	} else {
		log.Println("– Telegram bot not configured")
	}

	// ──── Step 9: Start Scheduler ────
	sched := scheduler.New(collector, reportService, tgBot, sources, cfg.CollectDaysBack)
	if err := sched.Register(cfg); err != nil {
		log.Fatalf("✗ Scheduler registration failed: %v", err)
	}
	sched.Start()
	log.Printf("✓ Scheduler started (collect %q, daily %q, weekly %q)",
		cfg.CollectCron, cfg.DailyReportCron, cfg.WeeklyReportCron)

	// ──── Step 10: Start HTTP Server ────
	collectionHandler := handlers.NewCollectionHandler(collector, store, cfg.CollectDaysBack)
	reportHandler := handlers.NewReportHandler(reportService, store)
	influencerHandler := handlers.NewInfluencerHandler(store)
	r := router.New(collectionHandler, reportHandler, influencerHandler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		sched.Stop()
		if tgBot != nil {
			tgBot.Stop()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Daily YouTube Summary ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}

// seedSources registers the configured default channels and keywords.
// Channel metadata stays minimal here; the first collection pass refreshes
// it from the API.
func seedSources(store *repository.Store, sources *config.Sources) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, c := range sources.Channels {
		if _, err := store.GetChannel(ctx, c.ID); err == nil {
			continue
		}
		ch := models.Channel{
			ChannelID: c.ID,
			Name:      c.Name,
			URL:       "https://www.youtube.com/channel/" + c.ID,
		}
		if err := store.UpsertChannel(ctx, &ch); err != nil {
			log.Printf("Seed: channel %s failed: %v", c.ID, err)
		}
	}
	for _, k := range sources.Keywords {
		kw := models.Keyword{Keyword: k.Keyword, Category: k.Category}
		if err := store.UpsertKeyword(ctx, &kw); err != nil {
			log.Printf("Seed: keyword %q failed: %v", k.Keyword, err)
		}
	}
}
