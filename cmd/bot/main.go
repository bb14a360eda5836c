package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/Ferroin/roll35/internal/catalog"
	"github.com/Ferroin/roll35/internal/config"
	"github.com/Ferroin/roll35/internal/handlers/discord"
	"github.com/Ferroin/roll35/internal/repositories/rolls"
	"github.com/Ferroin/roll35/internal/services"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("Bot Token: %s...%s", cfg.Discord.Token[:8], cfg.Discord.Token[len(cfg.Discord.Token)-4:])
	log.Printf("Application ID: %s", cfg.Discord.AppID)
	if cfg.Discord.GuildID != "" {
		log.Printf("Guild ID: %s", cfg.Discord.GuildID)
	}

	// Create Discord session
	dg, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		log.Fatalf("Failed to create Discord session: %v", err)
	}

	// Start loading the treasure catalogs in the background. Commands
	// arriving before a table finishes block on its gate.
	registry, err := catalog.LoadAsync(context.Background(), &catalog.LoaderConfig{
		DataDir: cfg.Data.Dir,
	})
	if err != nil {
		log.Fatalf("Failed to start catalog load: %v", err)
	}
	log.Printf("Loading catalogs from %s", cfg.Data.Dir)

	// The roll service reads the catalogs through this handle; SIGHUP
	// swaps in a freshly loaded set below
	handle := catalog.NewHandle(registry)

	// Create service provider config
	providerConfig := &services.ProviderConfig{
		Registry:       registry,
		Handle:         handle,
		SpellIndexPath: cfg.Data.SpellIndexPath,
		MaxCount:       cfg.Roll.MaxCount,
	}

	// Keep Redis client for cleanup
	var redisClient *redis.Client

	// Try to connect to Redis if URL is provided
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		log.Printf("Connecting to Redis at: %s", redisURL)

		opts, parseErr := redis.ParseURL(redisURL)
		if parseErr != nil {
			log.Printf("Failed to parse Redis URL: %v", parseErr)
			log.Println("Falling back to in-memory roll history")
		} else {
			redisClient = redis.NewClient(opts)

			// Test connection
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

			if pingErr := redisClient.Ping(ctx).Err(); pingErr != nil {
				cancel()
				log.Printf("Failed to connect to Redis: %v", pingErr)
				log.Println("Falling back to in-memory roll history")
			} else {
				defer cancel()
				log.Println("Successfully connected to Redis")

				providerConfig.HistoryRepository = rolls.NewRedis(&rolls.RedisRepoConfig{
					Client: redisClient,
				})

				log.Println("Using Redis for roll history")
			}
		}
	} else {
		log.Println("No REDIS_URL found, using in-memory roll history")
	}

	// Create service provider
	serviceProvider, err := services.NewProvider(providerConfig)
	if err != nil {
		log.Fatalf("Failed to create services: %v", err)
	}

	// Create Discord handler
	handler := discord.NewHandler(&discord.HandlerConfig{
		ServiceProvider: serviceProvider,
	})

	// Register interaction handler
	dg.AddHandler(handler.HandleInteraction)

	// Open connection to Discord
	err = dg.Open()
	if err != nil {
		log.Printf("Failed to open Discord connection: %v", err)
		return
	}
	defer func() {
		clientErr := dg.Close()
		if clientErr != nil {
			log.Printf("Failed to close Discord connection: %v", clientErr)
		}
	}()

	// Register commands
	// Use empty string for global commands, or set a specific guild ID for testing
	if err := handler.RegisterCommands(dg, cfg.Discord.GuildID); err != nil {
		log.Printf("Failed to register commands: %v", err)
		return
	}

	if cfg.Discord.GuildID != "" {
		log.Printf("Registered commands for guild: %s", cfg.Discord.GuildID)
	} else {
		log.Println("Registered global commands (may take up to 1 hour to propagate)")
	}

	// Reload the catalogs on SIGHUP. The new set is parsed fully before
	// the swap, so a broken data directory never replaces a good one.
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		for range hup {
			log.Printf("SIGHUP received, reloading catalogs from %s", cfg.Data.Dir)
			fresh, reloadErr := catalog.Load(context.Background(), &catalog.LoaderConfig{
				DataDir: cfg.Data.Dir,
			})
			if reloadErr != nil {
				log.Printf("Catalog reload failed, keeping the current set: %v", reloadErr)
				continue
			}
			handle.Swap(fresh)
			log.Println("Catalog reload complete")
		}
	}()

	fmt.Println("Bot is now running. Press CTRL-C to exit.")

	// Wait for interrupt signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	fmt.Println("Shutting down...")

	// Clean up Redis connection if we have one
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing Redis connection: %v", err)
		} else {
			log.Println("Closed Redis connection")
		}
	}
}
