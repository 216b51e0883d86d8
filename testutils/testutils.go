package testutils

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"

	"warnbot/config"
	"warnbot/core"
	"warnbot/db"
	"warnbot/models"
)

// LoadTestConfig loads configuration for tests from environment variables
func LoadTestConfig() (*config.AppConfig, error) {
	// Try to load environment variables from various possible locations
	_ = godotenv.Load("../.env.test") // From services/ directory
	_ = godotenv.Load(".env.test")    // From root directory
	_ = godotenv.Load()               // Default .env file

	databaseURL := os.Getenv("DB_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DB_URL is not set")
	}

	databaseSchema := os.Getenv("DB_SCHEMA")
	if databaseSchema == "" {
		return nil, fmt.Errorf("DB_SCHEMA is not set")
	}

	return &config.AppConfig{
		DatabaseURL:    databaseURL,
		DatabaseSchema: databaseSchema,
	}, nil
}

// RandomDiscordID produces a unique opaque id so concurrent test runs cannot
// collide on guild/user rows.
func RandomDiscordID() string {
	return uuid.New().String()
}

// RandomSteamID produces a unique steam identity for link tests.
func RandomSteamID() string {
	return "7656119" + uuid.New().String()[:12]
}

// CreateTestWarn inserts a Waiting warn with sensible defaults.
func CreateTestWarn(
	t *testing.T,
	warnsRepo *db.PostgresWarnsRepository,
	guildID, targetUserID string,
) *models.Warn {
	warn := &models.Warn{
		ID:           core.NewID("wr"),
		GuildID:      guildID,
		TargetUserID: targetUserID,
		AuthorUserID: RandomDiscordID(),
		Reason:       "test reason",
		Category:     models.WarnCategoryDiscord,
		Status:       models.WarnStatusWaiting,
		ExpiresAt:    time.Now().UTC().Add(24 * time.Hour),
	}

	err := warnsRepo.CreateWarn(context.Background(), warn)
	require.NoError(t, err, "Failed to create test warn")
	return warn
}
