package moderation

import (
	"context"
	"fmt"
	"log"
	"time"

	"warnbot/clients"
	"warnbot/models"
	"warnbot/services"
	"warnbot/services/mediatracker"
	"warnbot/utils"
)

// WarnsPageSize is how many warns a single page shows.
const WarnsPageSize = 5

// evidenceChunkLimit keeps relayed evidence text under the platform's
// message length limit.
const evidenceChunkLimit = 1900

// ModerationUseCase drives the moderation flows triggered by chat-platform
// events. The warn/link services own the state transitions; everything this
// type does after a successful transition (DMs, audit posts, evidence
// cleanup) is best-effort and never rolls the transition back.
type ModerationUseCase struct {
	warnsService   services.WarnsService
	linksService   services.LinksService
	mediaTracker   *mediatracker.MediaTracker
	discordClient  clients.DiscordClient
	auditChannelID string
}

func NewModerationUseCase(
	warnsService services.WarnsService,
	linksService services.LinksService,
	mediaTracker *mediatracker.MediaTracker,
	discordClient clients.DiscordClient,
	auditChannelID string,
) *ModerationUseCase {
	return &ModerationUseCase{
		warnsService:   warnsService,
		linksService:   linksService,
		mediaTracker:   mediaTracker,
		discordClient:  discordClient,
		auditChannelID: auditChannelID,
	}
}

// DecisionResult reports the outcome of a moderator decision event.
type DecisionResult struct {
	AlreadyHandled bool
	Warn           *models.Warn
}

// WarnsPage is one page of a user's active warns.
type WarnsPage struct {
	Items []*models.Warn
	Total int
	Page  utils.PageInfo
}

// LinkRequestFlow reports a link request outcome plus whether the code DM
// reached the user.
type LinkRequestFlow struct {
	Outcome     models.LinkRequestOutcome
	Request     *models.LinkRequest
	DMDelivered bool
}

// ProcessWarnDecision applies a moderator's approve/abort click on a warn
// request. The store linearizes concurrent decisions; the loser gets
// AlreadyHandled. requestMessageID is the id of the clicked request message,
// used as the secondary evidence lookup key.
func (uc *ModerationUseCase) ProcessWarnDecision(
	ctx context.Context,
	channelID, requestMessageID, warnID string,
	approve bool,
	moderatorUserID string,
	comment *string,
) (*DecisionResult, error) {
	outcome := models.WarnStatusAborted
	if approve {
		outcome = models.WarnStatusActive
	}
	log.Printf("🤖 Processing warn decision: warn=%s outcome=%s moderator=%s", warnID, outcome, moderatorUserID)

	resolved, err := uc.warnsService.ResolveWarn(ctx, warnID, outcome, moderatorUserID, comment)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve warn: %w", err)
	}
	if !resolved {
		return &DecisionResult{AlreadyHandled: true}, nil
	}

	// The transition is committed. Everything below is additive and
	// independently failable.
	var warn *models.Warn
	maybeWarn, err := uc.warnsService.GetWarnByID(ctx, warnID)
	if err != nil {
		log.Printf("⚠️ Failed to reload warn %s after resolution: %v", warnID, err)
	} else if maybeWarn.IsPresent() {
		warn = maybeWarn.MustGet()
	}

	evidence := uc.mediaTracker.ResolveContent(warnID, requestMessageID, func(messageID string) (string, error) {
		return uc.discordClient.GetMessageContent(channelID, messageID)
	})

	if approve && warn != nil {
		uc.trySendWarnDM(warn, moderatorUserID)
	}

	uc.postAuditLog(warn, warnID, outcome, moderatorUserID, comment, evidence)

	if approve {
		// The evidence message stays behind on approval; only the
		// bookkeeping is dropped.
		uc.mediaTracker.ForgetByWarn(warnID)
		uc.mediaTracker.ForgetByRequest(requestMessageID)
		uc.mediaTracker.ForgetContent(warnID)
	} else {
		del := func(messageID string) error {
			return uc.discordClient.DeleteMessage(channelID, messageID)
		}
		uc.mediaTracker.ForgetAndDeleteByWarn(warnID, del)
		uc.mediaTracker.ForgetAndDeleteByRequest(requestMessageID, del)
	}

	return &DecisionResult{Warn: warn}, nil
}

// UnwarnResult reports the outcome of an explicit unwarn override.
type UnwarnResult struct {
	Found          bool
	AlreadyHandled bool
	Warn           *models.Warn
}

// ProcessUnwarn aborts a warn identified by its human-facing number, valid
// from Waiting or Active.
func (uc *ModerationUseCase) ProcessUnwarn(
	ctx context.Context,
	guildID string,
	warnNo int64,
	moderatorUserID string,
	comment *string,
) (*UnwarnResult, error) {
	log.Printf("🤖 Processing unwarn: guild=%s warn_no=%d moderator=%s", guildID, warnNo, moderatorUserID)

	maybeWarn, err := uc.warnsService.GetWarnByWarnNo(ctx, guildID, warnNo)
	if err != nil {
		return nil, fmt.Errorf("failed to look up warn: %w", err)
	}
	if !maybeWarn.IsPresent() {
		return &UnwarnResult{Found: false}, nil
	}
	warn := maybeWarn.MustGet()

	removed, err := uc.warnsService.Unwarn(ctx, warn.ID, moderatorUserID, comment)
	if err != nil {
		return nil, fmt.Errorf("failed to unwarn: %w", err)
	}
	if !removed {
		return &UnwarnResult{Found: true, AlreadyHandled: true, Warn: warn}, nil
	}

	uc.postAuditLog(warn, warn.ID, models.WarnStatusAborted, moderatorUserID, comment, "")

	return &UnwarnResult{Found: true, Warn: warn}, nil
}

// ProcessWarnsPage returns one page of a user's active warns. The expiry
// sweep runs inside ListActiveWarns, so the view is consistent at query time.
func (uc *ModerationUseCase) ProcessWarnsPage(
	ctx context.Context,
	guildID, targetUserID string,
	page int,
) (*WarnsPage, error) {
	log.Printf("🤖 Processing warns page: guild=%s user=%s page=%d", guildID, targetUserID, page)

	active, err := uc.warnsService.ListActiveWarns(ctx, guildID, targetUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active warns: %w", err)
	}

	info := utils.Paginate(len(active), page, WarnsPageSize)

	return &WarnsPage{
		Items: active[info.Start:info.End],
		Total: len(active),
		Page:  info,
	}, nil
}

// ProcessLinkRequest issues (or reuses) a link code and DMs it to the user.
// A failed DM is reported, not fatal: the request row already exists and the
// user can retry.
func (uc *ModerationUseCase) ProcessLinkRequest(
	ctx context.Context,
	discordUserID, steamID string,
) (*LinkRequestFlow, error) {
	log.Printf("🤖 Processing link request: discord=%s steam=%s", discordUserID, steamID)

	result, err := uc.linksService.RequestLink(ctx, discordUserID, steamID)
	if err != nil {
		return nil, fmt.Errorf("failed to request link: %w", err)
	}

	flow := &LinkRequestFlow{Outcome: result.Outcome, Request: result.Request}

	if result.Request == nil {
		return flow, nil
	}

	dm := fmt.Sprintf(
		"Your Steam link confirmation code:\n`%s`\n\n"+
			"Join the game server and confirm with:\n/confirmLink %s\n\n"+
			"The code is valid for 10 minutes.",
		result.Request.Code, result.Request.Code)

	if err := uc.discordClient.SendDirectMessage(discordUserID, dm); err != nil {
		log.Printf("⚠️ Failed to DM link code to %s: %v", discordUserID, err)
		return flow, nil
	}

	flow.DMDelivered = true
	return flow, nil
}

// ProcessUnlink clears a user's Steam link. Returns whether a link existed.
func (uc *ModerationUseCase) ProcessUnlink(ctx context.Context, discordUserID string) (bool, error) {
	log.Printf("🤖 Processing unlink: discord=%s", discordUserID)
	return uc.linksService.Unlink(ctx, discordUserID)
}

func (uc *ModerationUseCase) trySendWarnDM(warn *models.Warn, moderatorUserID string) {
	msg := fmt.Sprintf(
		"You received a warning.\nID: %d\nCategory: %s\nExpires: %s UTC\nModerator: <@%s>\nReason: %s",
		warn.WarnNo,
		warn.Category,
		warn.ExpiresAt.UTC().Format("2006-01-02 15:04"),
		moderatorUserID,
		warn.Reason,
	)
	if warn.ResolutionComment != nil && *warn.ResolutionComment != "" {
		msg += "\nComment: " + *warn.ResolutionComment
	}

	if err := uc.discordClient.SendDirectMessage(warn.TargetUserID, msg); err != nil {
		log.Printf("⚠️ Warn DM failed to %s: %v", warn.TargetUserID, err)
	}
}

// postAuditLog records a handled warn in the audit channel, followed by the
// evidence text split into platform-sized chunks.
func (uc *ModerationUseCase) postAuditLog(
	warn *models.Warn,
	warnID string,
	outcome models.WarnStatus,
	moderatorUserID string,
	comment *string,
	evidence string,
) {
	if uc.auditChannelID == "" {
		return
	}

	verdict := "Rejected"
	if outcome == models.WarnStatusActive {
		verdict = "Approved"
	}

	ref := warnID
	if warn != nil {
		ref = fmt.Sprintf("%d", warn.WarnNo)
	}

	msg := fmt.Sprintf("Warn handled\nID: %s\nResult: %s\nModerator: <@%s>", ref, verdict, moderatorUserID)
	if warn != nil {
		msg += fmt.Sprintf(
			"\nUser: <@%s>\nSubmitted by: <@%s>\nCategory: %s\nExpires: %s UTC\nReason: %s",
			warn.TargetUserID,
			warn.AuthorUserID,
			warn.Category,
			warn.ExpiresAt.UTC().Format("2006-01-02 15:04"),
			warn.Reason,
		)
	}
	commentText := comment
	if warn != nil && warn.ResolutionComment != nil {
		commentText = warn.ResolutionComment
	}
	if commentText != nil && *commentText != "" {
		msg += "\nComment: " + *commentText
	}

	if _, err := uc.discordClient.SendChannelMessage(uc.auditChannelID, msg); err != nil {
		log.Printf("⚠️ Failed to post audit log for warn %s: %v", warnID, err)
		return
	}

	for _, chunk := range utils.SplitMessageByLines(evidence, evidenceChunkLimit) {
		if _, err := uc.discordClient.SendChannelMessage(uc.auditChannelID, chunk); err != nil {
			log.Printf("⚠️ Failed to post evidence chunk for warn %s: %v", warnID, err)
			return
		}
	}
}

// SubmitWarnRequest creates a Waiting warn from a moderator's request. The
// ttl is expressed in whole days by the submitting surface.
func (uc *ModerationUseCase) SubmitWarnRequest(
	ctx context.Context,
	guildID, targetUserID, authorUserID, reason string,
	comment *string,
	category models.WarnCategory,
	days int,
) (*models.Warn, error) {
	return uc.warnsService.CreateWarn(
		ctx,
		guildID, targetUserID, authorUserID, reason,
		comment,
		category,
		time.Duration(days)*24*time.Hour,
	)
}
