package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds all configuration for the application
type Config struct {
	Discord DiscordConfig
	Data    DataConfig
	Roll    RollConfig
}

// DiscordConfig holds Discord-specific configuration
type DiscordConfig struct {
	Token   string
	AppID   string
	GuildID string // Optional: for guild-specific commands
}

// DataConfig locates the catalog sources and the spell index
type DataConfig struct {
	Dir            string
	SpellIndexPath string
}

// RollConfig holds roll-engine tunables
type RollConfig struct {
	MaxCount int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	dataDir := getEnvOrDefault("ROLL35_DATA_DIR", "data")

	cfg := &Config{
		Discord: DiscordConfig{
			Token:   os.Getenv("DISCORD_TOKEN"),
			AppID:   os.Getenv("DISCORD_APP_ID"),
			GuildID: os.Getenv("DISCORD_GUILD_ID"),
		},
		Data: DataConfig{
			Dir:            dataDir,
			SpellIndexPath: getEnvOrDefault("SPELL_DB_PATH", filepath.Join(dataDir, "spells.db")),
		},
		Roll: RollConfig{
			MaxCount: getEnvAsIntOrDefault("ROLL35_MAX_COUNT", 32),
		},
	}

	// Validate required fields
	if cfg.Discord.Token == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN is required")
	}
	if cfg.Discord.AppID == "" {
		return nil, fmt.Errorf("DISCORD_APP_ID is required")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
