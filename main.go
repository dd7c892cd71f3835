package main

import (
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"osubot/pkg/beatmap"
	"osubot/pkg/bot"
	"osubot/pkg/cache"
	"osubot/pkg/config"
	"osubot/pkg/copypasta"
	"osubot/pkg/era"
	"osubot/pkg/keyword"
	"osubot/pkg/locale"
	"osubot/pkg/logging"
	"osubot/pkg/osu"
	"osubot/pkg/store"
	"osubot/pkg/tracker"
)

func main() {
	// Load config.yml
	cfg, err := config.LoadConfig("config.yml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	flush, err := logging.Init(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})
	if err != nil {
		log.Fatalf("Failed to initialise logging: %v", err)
	}
	defer flush()
	logger := zap.S()

	// Load .env for secrets
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, relying on environment variables")
	}

	token := os.Getenv("DISCORD_TOKEN")
	clientID := os.Getenv("OSU_CLIENT_ID")
	clientSecret := os.Getenv("OSU_CLIENT_SECRET")

	// Check each required environment variable individually for better error messages
	if token == "" {
		logger.Fatal("Missing required environment variable: DISCORD_TOKEN")
	}
	if clientID == "" {
		logger.Fatal("Missing required environment variable: OSU_CLIENT_ID")
	}
	if clientSecret == "" {
		logger.Fatal("Missing required environment variable: OSU_CLIENT_SECRET")
	}

	// Optional Redis: response cache for the osu! client and era save mirror
	var redisCache *cache.Cache
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		redisCache, err = cache.NewRedisCache(redisURL, "osubot")
		if err != nil {
			logger.Warnf("Redis unavailable, continuing without cache: %v", err)
			redisCache = nil
		} else {
			defer redisCache.Close()
			logger.Info("Connected to Redis")
		}
	} else {
		logger.Info("REDIS_URL not set, lookups are not cached and era saves live in memory")
	}

	// osu! API
	tokens := osu.NewTokenManager(osu.NewClientCredentials(clientID, clientSecret, "", nil))
	opts := []osu.Option{
		osu.WithRateLimit(cfg.Osu.RequestsPerMinute, 10),
		osu.WithRetry(osu.RetryPolicy{
			MaxAttempts: cfg.Osu.MaxAttempts,
			BaseDelay:   time.Duration(cfg.Osu.BackoffSeconds * float64(time.Second)),
			MaxDelay:    10 * time.Second,
		}),
		osu.WithBestScoreCap(cfg.Osu.BestScoreCap),
	}
	if redisCache != nil {
		opts = append(opts, osu.WithCache(redisCache,
			time.Duration(cfg.Osu.UserCacheSeconds)*time.Second,
			time.Duration(cfg.Osu.MapCacheSeconds)*time.Second))
	}
	if legacyKey := os.Getenv("OSU_API_V1_KEY"); legacyKey != "" {
		opts = append(opts, osu.WithLegacyAPI("", legacyKey))
	} else {
		logger.Info("OSU_API_V1_KEY not set, legacy score lookups disabled")
	}
	osuClient := osu.NewClient(tokens, opts...)

	// Local JSON stores
	dataDir := cfg.Storage.DataDir
	bindings, err := store.Open[string](filepath.Join(dataDir, "user_bindings.json"))
	if err != nil {
		logger.Fatalf("Failed to open user bindings: %v", err)
	}
	langPrefs, err := store.Open[string](filepath.Join(dataDir, "user_lang_prefs.json"))
	if err != nil {
		logger.Fatalf("Failed to open language preferences: %v", err)
	}
	keywords, err := store.Open[map[string]string](filepath.Join(dataDir, "server_keywords.json"))
	if err != nil {
		logger.Fatalf("Failed to open keywords: %v", err)
	}

	l10n, err := locale.New(cfg.Localization.DefaultLanguage, cfg.Localization.SupportedLanguages, langPrefs)
	if err != nil {
		logger.Fatalf("Failed to load message catalogs: %v", err)
	}

	var gameOpts []era.Option
	if redisCache != nil {
		gameOpts = append(gameOpts, era.WithMirror(redisCache, cache.GameSaveTTL))
	}

	// Initialize Bot Handler
	handler := bot.NewHandler(bot.Deps{
		Osu:          osuClient,
		Files:        beatmap.NewDownloader("", nil),
		Localizer:    l10n,
		Bindings:     bindings,
		Tracker:      tracker.New(cfg.Tracker.MaxSize),
		Pastas:       copypasta.Load(filepath.Join(dataDir, cfg.Storage.CopypastaFile)),
		Keywords:     keyword.NewRegistry(keywords),
		Game:         era.NewGame(gameOpts...),
		BestScoreCap: cfg.Osu.BestScoreCap,
		DefaultMode:  osu.Mode(cfg.Osu.DefaultMode),
	})
	defer handler.Close()

	// Create Discord Session
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		logger.Fatalf("Error creating Discord session: %v", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	// Register Handlers
	dg.AddHandler(handler.Ready)
	dg.AddHandler(handler.MessageCreate)
	dg.AddHandler(handler.InteractionCreate)

	// Open Connection
	if err := dg.Open(); err != nil {
		logger.Fatalf("Error opening connection: %v", err)
	}
	defer dg.Close()

	// Empty guild ID registers globally; set DISCORD_GUILD_ID for instant updates while developing.
	guildID := os.Getenv("DISCORD_GUILD_ID")
	registeredCommands, err := bot.RegisterSlashCommands(dg, guildID, l10n)
	if err != nil {
		logger.Fatalf("Error registering slash commands: %v", err)
	}

	// Cleanup function to unregister commands on shutdown
	defer func() {
		if err := bot.UnregisterSlashCommands(dg, guildID, registeredCommands); err != nil {
			logger.Errorf("Error unregistering slash commands: %v", err)
		}
	}()

	logger.Info("Bot is now running. Press CTRL-C to exit.")

	// Wait for signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc
	logger.Info("Shutting down")
}
