package links

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"warnbot/db"
	"warnbot/models"
	"warnbot/services"
)

const (
	// DefaultReuseWindow is how long an existing request is handed back
	// unchanged instead of minting a new code.
	DefaultReuseWindow = 10 * time.Minute

	// DefaultConfirmTTL is how long a code stays honorable.
	DefaultConfirmTTL = 10 * time.Minute
)

// CodeFactory produces a fresh link code.
type CodeFactory func() string

// LinksService implements the Steam link handshake: code issuance with a
// reuse window, confirmation with expiry/mismatch classification, and unlink.
type LinksService struct {
	linksRepo   *db.PostgresLinksRepository
	txManager   services.TransactionManager
	codeFactory CodeFactory
	reuseWindow time.Duration
	confirmTTL  time.Duration
}

func NewLinksService(
	repo *db.PostgresLinksRepository,
	txManager services.TransactionManager,
	codeFactory CodeFactory,
	reuseWindow, confirmTTL time.Duration,
) *LinksService {
	if codeFactory == nil {
		codeFactory = GenerateLinkCode
	}
	if reuseWindow <= 0 {
		reuseWindow = DefaultReuseWindow
	}
	if confirmTTL <= 0 {
		confirmTTL = DefaultConfirmTTL
	}
	return &LinksService{
		linksRepo:   repo,
		txManager:   txManager,
		codeFactory: codeFactory,
		reuseWindow: reuseWindow,
		confirmTTL:  confirmTTL,
	}
}

// RequestLink issues or reuses a link request for discordUserID -> steamID.
// A request younger than the reuse window is returned unchanged regardless of
// the steamID supplied on the repeat call; the window is keyed on age only.
func (s *LinksService) RequestLink(
	ctx context.Context,
	discordUserID, steamID string,
) (*models.LinkRequestResult, error) {
	log.Printf("🔗 Starting link request for discord user %s, steam %s", discordUserID, steamID)

	if discordUserID == "" {
		return nil, fmt.Errorf("discord_user_id cannot be empty")
	}
	steamID = strings.TrimSpace(steamID)
	if steamID == "" {
		return nil, fmt.Errorf("steam_id cannot be empty")
	}

	maybeLink, err := s.linksRepo.GetUserLinkByDiscordID(ctx, discordUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing link: %w", err)
	}
	if maybeLink.IsPresent() {
		log.Printf("🔗 Completed - discord user %s is already linked", discordUserID)
		return &models.LinkRequestResult{Outcome: models.LinkRequestAlreadyLinked}, nil
	}

	maybeOwner, err := s.linksRepo.GetUserLinkBySteamID(ctx, steamID)
	if err != nil {
		return nil, fmt.Errorf("failed to check steam ownership: %w", err)
	}
	if maybeOwner.IsPresent() && maybeOwner.MustGet().DiscordUserID != discordUserID {
		log.Printf("🔗 Completed - steam %s belongs to another discord user", steamID)
		return &models.LinkRequestResult{Outcome: models.LinkRequestSteamOwnedByAnother}, nil
	}

	maybeReq, err := s.linksRepo.GetLatestLinkRequest(ctx, discordUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get existing link request: %w", err)
	}
	if maybeReq.IsPresent() {
		existing := maybeReq.MustGet()
		if time.Since(existing.CreatedAt) <= s.reuseWindow {
			log.Printf("🔗 Completed - reusing existing code for discord user %s", discordUserID)
			return &models.LinkRequestResult{
				Outcome: models.LinkRequestOkExisting,
				Request: existing,
			}, nil
		}
	}

	// Stale or absent: supersede any prior request with a fresh code.
	if err := s.linksRepo.DeleteLinkRequestsForUser(ctx, discordUserID); err != nil {
		return nil, fmt.Errorf("failed to delete stale link requests: %w", err)
	}

	req := &models.LinkRequest{
		DiscordUserID: discordUserID,
		SteamID:       steamID,
		Code:          s.codeFactory(),
	}
	if err := s.linksRepo.CreateLinkRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create link request: %w", err)
	}

	log.Printf("🔗 Completed successfully - new link code issued for discord user %s", discordUserID)
	return &models.LinkRequestResult{
		Outcome: models.LinkRequestOkNew,
		Request: req,
	}, nil
}

// ConfirmLink classifies a confirmation attempt. The final mutation (upsert
// link + delete request) runs in a single transaction, so a crash cannot
// leave one without the other.
func (s *LinksService) ConfirmLink(
	ctx context.Context,
	code, steamID string,
) (models.ConfirmOutcome, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	steamID = strings.TrimSpace(steamID)

	log.Printf("🔗 Starting link confirmation for code %s", code)

	if !IsValidLinkCode(code) {
		log.Printf("🔗 Completed - structurally invalid code")
		return models.ConfirmNotFound, nil
	}
	if steamID == "" {
		return models.ConfirmNotFound, nil
	}

	maybeReq, err := s.linksRepo.GetLinkRequestByCode(ctx, code)
	if err != nil {
		return "", fmt.Errorf("failed to look up link request: %w", err)
	}
	if !maybeReq.IsPresent() {
		log.Printf("🔗 Completed - code not found")
		return models.ConfirmNotFound, nil
	}
	req := maybeReq.MustGet()

	if time.Since(req.CreatedAt) > s.confirmTTL {
		if _, err := s.linksRepo.DeleteLinkRequestByCode(ctx, code); err != nil {
			return "", fmt.Errorf("failed to delete expired link request: %w", err)
		}
		log.Printf("🔗 Completed - code expired")
		return models.ConfirmExpired, nil
	}

	if req.SteamID != steamID {
		// The request stays intact so the user can retry with the right
		// identity.
		log.Printf("🔗 Completed - steam id mismatch")
		return models.ConfirmMismatch, nil
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.linksRepo.UpsertUserLink(txCtx, req.DiscordUserID, req.SteamID); err != nil {
			return err
		}
		if _, err := s.linksRepo.DeleteLinkRequestByCode(txCtx, code); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to confirm link: %w", err)
	}

	log.Printf("🔗 Completed successfully - discord user %s linked to steam %s", req.DiscordUserID, req.SteamID)
	return models.ConfirmSuccess, nil
}

// Unlink clears the user link and any pending request. Returns whether a link
// actually existed.
func (s *LinksService) Unlink(ctx context.Context, discordUserID string) (bool, error) {
	log.Printf("🔗 Starting unlink for discord user %s", discordUserID)

	if discordUserID == "" {
		return false, fmt.Errorf("discord_user_id cannot be empty")
	}

	var existed bool
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		deleted, err := s.linksRepo.DeleteUserLink(txCtx, discordUserID)
		if err != nil {
			return err
		}
		existed = deleted
		return s.linksRepo.DeleteLinkRequestsForUser(txCtx, discordUserID)
	})
	if err != nil {
		return false, fmt.Errorf("failed to unlink: %w", err)
	}

	log.Printf("🔗 Completed successfully - unlink for %s (link existed: %v)", discordUserID, existed)
	return existed, nil
}
