package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

type DiscordConfig struct {
	BotToken         string
	GuildID          string
	RequestChannelID string
	AuditChannelID   string
}

// IsConfigured returns true if all required Discord configuration is present
func (c DiscordConfig) IsConfigured() bool {
	return c.BotToken != "" && c.GuildID != ""
	// Note: channel ids are optional; missing ones disable the
	// corresponding restriction/audit behavior
}

type LinkAPIConfig struct {
	Secret string
}

// IsConfigured returns true if all required link API configuration is present
func (c LinkAPIConfig) IsConfigured() bool {
	return c.Secret != ""
}

type AppConfig struct {
	// Core configuration (always required)
	DatabaseURL        string
	DatabaseSchema     string
	Port               string // Optional with default "8080"
	CORSAllowedOrigins string // Optional with default "*"
	Environment        string

	DiscordConfig DiscordConfig
	LinkAPIConfig LinkAPIConfig
}

func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("⚠️ Could not load .env file, continuing with system env vars")
	}

	databaseURL, err := getEnvRequired("DB_URL")
	if err != nil {
		return nil, err
	}

	databaseSchema, err := getEnvRequired("DB_SCHEMA")
	if err != nil {
		return nil, err
	}

	config := &AppConfig{
		DatabaseURL:        databaseURL,
		DatabaseSchema:     databaseSchema,
		Port:               getEnvWithDefault("PORT", "8080"),
		CORSAllowedOrigins: getEnvWithDefault("CORS_ALLOWED_ORIGINS", "*"),
		Environment:        getEnvWithDefault("ENVIRONMENT", "dev"),

		DiscordConfig: DiscordConfig{
			BotToken:         os.Getenv("DISCORD_BOT_TOKEN"),
			GuildID:          os.Getenv("DISCORD_GUILD_ID"),
			RequestChannelID: os.Getenv("DISCORD_WARN_REQUEST_CHANNEL_ID"),
			AuditChannelID:   os.Getenv("DISCORD_WARN_AUDIT_CHANNEL_ID"),
		},

		LinkAPIConfig: LinkAPIConfig{
			Secret: os.Getenv("LINK_API_SECRET"),
		},
	}

	if config.DiscordConfig.IsConfigured() {
		log.Printf("✅ Discord integration configured")
	} else {
		return nil, fmt.Errorf("discord integration is not fully configured (DISCORD_BOT_TOKEN, DISCORD_GUILD_ID)")
	}

	if config.LinkAPIConfig.IsConfigured() {
		log.Printf("✅ Link API configured")
	} else {
		log.Printf("⚠️ Link API secret not configured - confirm-link endpoint will reject all requests")
	}

	return config, nil
}

func getEnvRequired(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is not set", key)
	}
	return value, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
