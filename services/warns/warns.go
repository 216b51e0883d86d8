package warns

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/samber/mo"

	"warnbot/core"
	"warnbot/db"
	"warnbot/models"
)

const (
	maxReasonLength  = 1500
	maxCommentLength = 1500

	// Warn TTL bounds, in days.
	minTTLDays = 1
	maxTTLDays = 3650
)

// WarnsService implements the warn lifecycle: creation, exactly-once
// resolution, explicit unwarn, lazy expiry and reads. All mutual exclusion is
// delegated to the store's conditional updates.
type WarnsService struct {
	warnsRepo *db.PostgresWarnsRepository
}

func NewWarnsService(repo *db.PostgresWarnsRepository) *WarnsService {
	return &WarnsService{warnsRepo: repo}
}

func (s *WarnsService) CreateWarn(
	ctx context.Context,
	guildID, targetUserID, authorUserID, reason string,
	comment *string,
	category models.WarnCategory,
	ttl time.Duration,
) (*models.Warn, error) {
	log.Printf("📋 Starting to create warn for user %s in guild %s", targetUserID, guildID)

	if guildID == "" {
		return nil, fmt.Errorf("guild_id cannot be empty")
	}
	if targetUserID == "" {
		return nil, fmt.Errorf("target_user_id cannot be empty")
	}
	if authorUserID == "" {
		return nil, fmt.Errorf("author_user_id cannot be empty")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" || len(reason) > maxReasonLength {
		return nil, fmt.Errorf("reason must be between 1 and %d characters", maxReasonLength)
	}
	if comment != nil {
		trimmed := strings.TrimSpace(*comment)
		if trimmed == "" {
			comment = nil
		} else if len(trimmed) > maxCommentLength {
			return nil, fmt.Errorf("comment must be at most %d characters", maxCommentLength)
		} else {
			comment = &trimmed
		}
	}
	if !category.IsValid() {
		return nil, fmt.Errorf("unknown warn category: %s", category)
	}
	days := ttl.Hours() / 24
	if days < minTTLDays || days > maxTTLDays {
		return nil, fmt.Errorf("ttl must be between %d and %d days", minTTLDays, maxTTLDays)
	}

	warn := &models.Warn{
		ID:                core.NewID("wr"),
		GuildID:           guildID,
		TargetUserID:      targetUserID,
		AuthorUserID:      authorUserID,
		Reason:            reason,
		ResolutionComment: comment,
		Category:          category,
		Status:            models.WarnStatusWaiting,
		ExpiresAt:         time.Now().UTC().Add(ttl),
	}

	if err := s.warnsRepo.CreateWarn(ctx, warn); err != nil {
		return nil, fmt.Errorf("failed to create warn: %w", err)
	}

	log.Printf("📋 Completed successfully - created warn %s (no. %d)", warn.ID, warn.WarnNo)
	return warn, nil
}

// ResolveWarn transitions a Waiting warn to Active or Aborted. Returns false
// when another resolution already happened; that is a normal outcome, not an
// error.
func (s *WarnsService) ResolveWarn(
	ctx context.Context,
	id string,
	outcome models.WarnStatus,
	responsibleUserID string,
	comment *string,
) (bool, error) {
	log.Printf("📋 Starting to resolve warn %s to %s", id, outcome)

	if !core.IsValidULID(id) {
		return false, fmt.Errorf("warn ID must be a valid ULID")
	}
	if outcome != models.WarnStatusActive && outcome != models.WarnStatusAborted {
		return false, fmt.Errorf("resolution outcome must be Active or Aborted, got %s", outcome)
	}
	if responsibleUserID == "" {
		return false, fmt.Errorf("responsible_user_id cannot be empty")
	}
	comment = normalizeComment(comment)

	resolved, err := s.warnsRepo.ResolveWarn(ctx, id, outcome, responsibleUserID, comment)
	if err != nil {
		return false, fmt.Errorf("failed to resolve warn: %w", err)
	}

	if !resolved {
		log.Printf("📋 Completed - warn %s was already handled", id)
		return false, nil
	}

	log.Printf("📋 Completed successfully - warn %s resolved to %s by %s", id, outcome, responsibleUserID)
	return true, nil
}

// Unwarn aborts a warn from either Waiting or Active.
func (s *WarnsService) Unwarn(
	ctx context.Context,
	id, responsibleUserID string,
	comment *string,
) (bool, error) {
	log.Printf("📋 Starting to unwarn %s", id)

	if !core.IsValidULID(id) {
		return false, fmt.Errorf("warn ID must be a valid ULID")
	}
	if responsibleUserID == "" {
		return false, fmt.Errorf("responsible_user_id cannot be empty")
	}
	comment = normalizeComment(comment)

	removed, err := s.warnsRepo.UnwarnWarn(ctx, id, responsibleUserID, comment)
	if err != nil {
		return false, fmt.Errorf("failed to unwarn: %w", err)
	}

	if !removed {
		log.Printf("📋 Completed - warn %s was not in an unwarnable state", id)
		return false, nil
	}

	log.Printf("📋 Completed successfully - warn %s aborted by %s", id, responsibleUserID)
	return true, nil
}

func (s *WarnsService) ExpireOutdated(ctx context.Context) (int64, error) {
	count, err := s.warnsRepo.ExpireOutdatedWarns(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to expire outdated warns: %w", err)
	}

	if count > 0 {
		log.Printf("📋 Expired %d outdated warns", count)
	}
	return count, nil
}

// ListActiveWarns sweeps expired warns first, so the active view is
// consistent at query time without a background scheduler.
func (s *WarnsService) ListActiveWarns(
	ctx context.Context,
	guildID, targetUserID string,
) ([]*models.Warn, error) {
	log.Printf("📋 Starting to list active warns for user %s in guild %s", targetUserID, guildID)

	if guildID == "" {
		return nil, fmt.Errorf("guild_id cannot be empty")
	}
	if targetUserID == "" {
		return nil, fmt.Errorf("target_user_id cannot be empty")
	}

	if _, err := s.ExpireOutdated(ctx); err != nil {
		return nil, err
	}

	warnsList, err := s.warnsRepo.GetActiveWarns(ctx, guildID, targetUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active warns: %w", err)
	}

	log.Printf("📋 Completed successfully - found %d active warns", len(warnsList))
	return warnsList, nil
}

func (s *WarnsService) GetWarnByID(ctx context.Context, id string) (mo.Option[*models.Warn], error) {
	if !core.IsValidULID(id) {
		return mo.None[*models.Warn](), fmt.Errorf("warn ID must be a valid ULID")
	}

	maybeWarn, err := s.warnsRepo.GetWarnByID(ctx, id)
	if err != nil {
		return mo.None[*models.Warn](), fmt.Errorf("failed to get warn: %w", err)
	}

	return maybeWarn, nil
}

func (s *WarnsService) GetWarnByWarnNo(
	ctx context.Context,
	guildID string,
	warnNo int64,
) (mo.Option[*models.Warn], error) {
	if guildID == "" {
		return mo.None[*models.Warn](), fmt.Errorf("guild_id cannot be empty")
	}
	if warnNo <= 0 {
		return mo.None[*models.Warn](), fmt.Errorf("warn_no must be positive")
	}

	maybeWarn, err := s.warnsRepo.GetWarnByWarnNo(ctx, guildID, warnNo)
	if err != nil {
		return mo.None[*models.Warn](), fmt.Errorf("failed to get warn by warn_no: %w", err)
	}

	return maybeWarn, nil
}

func normalizeComment(comment *string) *string {
	if comment == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*comment)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
