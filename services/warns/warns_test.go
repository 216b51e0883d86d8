package warns

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warnbot/db"
	"warnbot/models"
	"warnbot/testutils"
)

func setupTestWarnsService(t *testing.T) (*WarnsService, *db.PostgresWarnsRepository, func()) {
	cfg, err := testutils.LoadTestConfig()
	require.NoError(t, err)

	dbConn, err := db.NewConnection(cfg.DatabaseURL)
	require.NoError(t, err, "Failed to create database connection")

	warnsRepo := db.NewPostgresWarnsRepository(dbConn, cfg.DatabaseSchema)
	service := NewWarnsService(warnsRepo)

	cleanup := func() {
		dbConn.Close()
	}

	return service, warnsRepo, cleanup
}

func TestWarnsService(t *testing.T) {
	service, warnsRepo, cleanup := setupTestWarnsService(t)
	defer cleanup()

	guildID := testutils.RandomDiscordID()

	t.Run("CreateWarn", func(t *testing.T) {
		t.Run("Success", func(t *testing.T) {
			targetUserID := testutils.RandomDiscordID()
			authorUserID := testutils.RandomDiscordID()

			warn, err := service.CreateWarn(
				context.Background(),
				guildID, targetUserID, authorUserID,
				"spamming in general",
				nil,
				models.WarnCategoryDiscord,
				7*24*time.Hour,
			)

			require.NoError(t, err)
			assert.NotEmpty(t, warn.ID)
			assert.Greater(t, warn.WarnNo, int64(0), "store assigns warn_no")
			assert.Equal(t, models.WarnStatusWaiting, warn.Status)
			assert.Equal(t, targetUserID, warn.TargetUserID)
			assert.Nil(t, warn.ResponsibleUserID)
			assert.Nil(t, warn.ResolvedAt)
			assert.False(t, warn.CreatedAt.IsZero())
			assert.True(t, warn.ExpiresAt.After(warn.CreatedAt))
		})

		t.Run("EmptyTargetUser", func(t *testing.T) {
			_, err := service.CreateWarn(
				context.Background(),
				guildID, "", testutils.RandomDiscordID(),
				"reason", nil, models.WarnCategoryDiscord, 24*time.Hour,
			)
			require.Error(t, err)
			assert.Equal(t, "target_user_id cannot be empty", err.Error())
		})

		t.Run("ReasonTooLong", func(t *testing.T) {
			_, err := service.CreateWarn(
				context.Background(),
				guildID, testutils.RandomDiscordID(), testutils.RandomDiscordID(),
				strings.Repeat("x", 1501), nil, models.WarnCategoryDiscord, 24*time.Hour,
			)
			require.Error(t, err)
		})

		t.Run("UnknownCategory", func(t *testing.T) {
			_, err := service.CreateWarn(
				context.Background(),
				guildID, testutils.RandomDiscordID(), testutils.RandomDiscordID(),
				"reason", nil, models.WarnCategory("Nonsense"), 24*time.Hour,
			)
			require.Error(t, err)
		})

		t.Run("TTLOutOfRange", func(t *testing.T) {
			_, err := service.CreateWarn(
				context.Background(),
				guildID, testutils.RandomDiscordID(), testutils.RandomDiscordID(),
				"reason", nil, models.WarnCategoryDiscord, time.Hour,
			)
			require.Error(t, err, "less than one day is rejected")

			_, err = service.CreateWarn(
				context.Background(),
				guildID, testutils.RandomDiscordID(), testutils.RandomDiscordID(),
				"reason", nil, models.WarnCategoryDiscord, 4000*24*time.Hour,
			)
			require.Error(t, err, "more than 3650 days is rejected")
		})
	})

	t.Run("ResolveWarn", func(t *testing.T) {
		t.Run("ApproveThenSecondResolveLoses", func(t *testing.T) {
			warn := testutils.CreateTestWarn(t, warnsRepo, guildID, testutils.RandomDiscordID())
			moderator := testutils.RandomDiscordID()

			resolved, err := service.ResolveWarn(
				context.Background(), warn.ID, models.WarnStatusActive, moderator, nil,
			)
			require.NoError(t, err)
			assert.True(t, resolved)

			maybeWarn, err := service.GetWarnByID(context.Background(), warn.ID)
			require.NoError(t, err)
			require.True(t, maybeWarn.IsPresent())
			got := maybeWarn.MustGet()
			assert.Equal(t, models.WarnStatusActive, got.Status)
			require.NotNil(t, got.ResponsibleUserID)
			assert.Equal(t, moderator, *got.ResponsibleUserID)
			assert.NotNil(t, got.ResolvedAt)

			// Second decision on the same warn is a no-op, not an error.
			resolved, err = service.ResolveWarn(
				context.Background(), warn.ID, models.WarnStatusAborted, testutils.RandomDiscordID(), nil,
			)
			require.NoError(t, err)
			assert.False(t, resolved)

			maybeWarn, err = service.GetWarnByID(context.Background(), warn.ID)
			require.NoError(t, err)
			assert.Equal(t, models.WarnStatusActive, maybeWarn.MustGet().Status, "losing resolution changes nothing")
		})

		t.Run("AbortAppendsComment", func(t *testing.T) {
			warn := testutils.CreateTestWarn(t, warnsRepo, guildID, testutils.RandomDiscordID())
			comment := "insufficient evidence"

			resolved, err := service.ResolveWarn(
				context.Background(), warn.ID, models.WarnStatusAborted, testutils.RandomDiscordID(), &comment,
			)
			require.NoError(t, err)
			assert.True(t, resolved)

			maybeWarn, err := service.GetWarnByID(context.Background(), warn.ID)
			require.NoError(t, err)
			got := maybeWarn.MustGet()
			assert.Equal(t, models.WarnStatusAborted, got.Status)
			require.NotNil(t, got.ResolutionComment)
			assert.Equal(t, comment, *got.ResolutionComment)
		})

		t.Run("CommentAppendsToExisting", func(t *testing.T) {
			initial := "initial note"
			warn, err := service.CreateWarn(
				context.Background(),
				guildID, testutils.RandomDiscordID(), testutils.RandomDiscordID(),
				"reason", &initial, models.WarnCategoryDiscordAdmin, 24*time.Hour,
			)
			require.NoError(t, err)

			added := "resolution note"
			resolved, err := service.ResolveWarn(
				context.Background(), warn.ID, models.WarnStatusActive, testutils.RandomDiscordID(), &added,
			)
			require.NoError(t, err)
			assert.True(t, resolved)

			maybeWarn, err := service.GetWarnByID(context.Background(), warn.ID)
			require.NoError(t, err)
			got := maybeWarn.MustGet()
			require.NotNil(t, got.ResolutionComment)
			assert.Equal(t, "initial note\n\n---\nresolution note", *got.ResolutionComment)
		})

		t.Run("InvalidOutcome", func(t *testing.T) {
			warn := testutils.CreateTestWarn(t, warnsRepo, guildID, testutils.RandomDiscordID())

			_, err := service.ResolveWarn(
				context.Background(), warn.ID, models.WarnStatusExpired, testutils.RandomDiscordID(), nil,
			)
			require.Error(t, err)
		})

		t.Run("InvalidID", func(t *testing.T) {
			_, err := service.ResolveWarn(
				context.Background(), "not-a-ulid", models.WarnStatusActive, testutils.RandomDiscordID(), nil,
			)
			require.Error(t, err)
			assert.Equal(t, "warn ID must be a valid ULID", err.Error())
		})
	})

	t.Run("Unwarn", func(t *testing.T) {
		t.Run("AbortsActiveWarn", func(t *testing.T) {
			warn := testutils.CreateTestWarn(t, warnsRepo, guildID, testutils.RandomDiscordID())
			_, err := service.ResolveWarn(
				context.Background(), warn.ID, models.WarnStatusActive, testutils.RandomDiscordID(), nil,
			)
			require.NoError(t, err)

			removed, err := service.Unwarn(context.Background(), warn.ID, testutils.RandomDiscordID(), nil)
			require.NoError(t, err)
			assert.True(t, removed)

			maybeWarn, err := service.GetWarnByID(context.Background(), warn.ID)
			require.NoError(t, err)
			assert.Equal(t, models.WarnStatusAborted, maybeWarn.MustGet().Status)

			// Already aborted: nothing left to remove.
			removed, err = service.Unwarn(context.Background(), warn.ID, testutils.RandomDiscordID(), nil)
			require.NoError(t, err)
			assert.False(t, removed)
		})

		t.Run("AbortsWaitingWarn", func(t *testing.T) {
			warn := testutils.CreateTestWarn(t, warnsRepo, guildID, testutils.RandomDiscordID())

			removed, err := service.Unwarn(context.Background(), warn.ID, testutils.RandomDiscordID(), nil)
			require.NoError(t, err)
			assert.True(t, removed)
		})
	})

	t.Run("ExpiryAndListing", func(t *testing.T) {
		t.Run("ListSweepsExpiredFirst", func(t *testing.T) {
			targetUserID := testutils.RandomDiscordID()
			moderator := testutils.RandomDiscordID()

			fresh := testutils.CreateTestWarn(t, warnsRepo, guildID, targetUserID)
			stale := testutils.CreateTestWarn(t, warnsRepo, guildID, targetUserID)
			for _, w := range []*models.Warn{fresh, stale} {
				_, err := service.ResolveWarn(context.Background(), w.ID, models.WarnStatusActive, moderator, nil)
				require.NoError(t, err)
			}

			updated, err := warnsRepo.TESTS_UpdateWarnExpiresAt(
				context.Background(), stale.ID, time.Now().UTC().Add(-time.Hour),
			)
			require.NoError(t, err)
			require.True(t, updated)

			active, err := service.ListActiveWarns(context.Background(), guildID, targetUserID)
			require.NoError(t, err)
			require.Len(t, active, 1)
			assert.Equal(t, fresh.ID, active[0].ID)

			maybeStale, err := service.GetWarnByID(context.Background(), stale.ID)
			require.NoError(t, err)
			assert.Equal(t, models.WarnStatusExpired, maybeStale.MustGet().Status)
		})

		t.Run("ExpireOutdatedIsIdempotent", func(t *testing.T) {
			targetUserID := testutils.RandomDiscordID()
			warn := testutils.CreateTestWarn(t, warnsRepo, guildID, targetUserID)
			_, err := service.ResolveWarn(
				context.Background(), warn.ID, models.WarnStatusActive, testutils.RandomDiscordID(), nil,
			)
			require.NoError(t, err)

			updated, err := warnsRepo.TESTS_UpdateWarnExpiresAt(
				context.Background(), warn.ID, time.Now().UTC().Add(-time.Minute),
			)
			require.NoError(t, err)
			require.True(t, updated)

			count, err := service.ExpireOutdated(context.Background())
			require.NoError(t, err)
			assert.GreaterOrEqual(t, count, int64(1))

			count, err = service.ExpireOutdated(context.Background())
			require.NoError(t, err)
			assert.Equal(t, int64(0), count, "second sweep finds nothing new")
		})

		t.Run("ListNewestFirst", func(t *testing.T) {
			targetUserID := testutils.RandomDiscordID()
			moderator := testutils.RandomDiscordID()

			first := testutils.CreateTestWarn(t, warnsRepo, guildID, targetUserID)
			second := testutils.CreateTestWarn(t, warnsRepo, guildID, targetUserID)
			for _, w := range []*models.Warn{first, second} {
				_, err := service.ResolveWarn(context.Background(), w.ID, models.WarnStatusActive, moderator, nil)
				require.NoError(t, err)
			}

			active, err := service.ListActiveWarns(context.Background(), guildID, targetUserID)
			require.NoError(t, err)
			require.Len(t, active, 2)
			assert.False(t, active[0].CreatedAt.Before(active[1].CreatedAt))
		})

		t.Run("WaitingWarnsNotListed", func(t *testing.T) {
			targetUserID := testutils.RandomDiscordID()
			testutils.CreateTestWarn(t, warnsRepo, guildID, targetUserID)

			active, err := service.ListActiveWarns(context.Background(), guildID, targetUserID)
			require.NoError(t, err)
			assert.Empty(t, active)
		})
	})

	t.Run("GetWarnByWarnNo", func(t *testing.T) {
		t.Run("Found", func(t *testing.T) {
			warn := testutils.CreateTestWarn(t, warnsRepo, guildID, testutils.RandomDiscordID())

			maybeWarn, err := service.GetWarnByWarnNo(context.Background(), guildID, warn.WarnNo)
			require.NoError(t, err)
			require.True(t, maybeWarn.IsPresent())
			assert.Equal(t, warn.ID, maybeWarn.MustGet().ID)
		})

		t.Run("NotFoundInOtherGuild", func(t *testing.T) {
			warn := testutils.CreateTestWarn(t, warnsRepo, guildID, testutils.RandomDiscordID())

			maybeWarn, err := service.GetWarnByWarnNo(context.Background(), testutils.RandomDiscordID(), warn.WarnNo)
			require.NoError(t, err)
			assert.False(t, maybeWarn.IsPresent())
		})

		t.Run("InvalidWarnNo", func(t *testing.T) {
			_, err := service.GetWarnByWarnNo(context.Background(), guildID, 0)
			require.Error(t, err)
		})
	})
}
