package handlers

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"warnbot/usecases/moderation"
)

// Component custom IDs follow the action:id grammar of the request messages:
//
//	warn:approve:<warnID>      approve button
//	warn:abort:<warnID>        abort button (opens the comment modal)
//	warn:abortmodal:<warnID>   modal submission carrying the comment
//	warns:<userID>:<page>      pagination buttons on the warns list
type DiscordEventsHandler struct {
	session          *discordgo.Session
	moderationUC     *moderation.ModerationUseCase
	requestChannelID string
}

func NewDiscordEventsHandler(
	session *discordgo.Session,
	moderationUC *moderation.ModerationUseCase,
	requestChannelID string,
) *DiscordEventsHandler {
	handler := &DiscordEventsHandler{
		session:          session,
		moderationUC:     moderationUC,
		requestChannelID: requestChannelID,
	}

	session.AddHandler(handler.handleInteractionCreate)
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	return handler
}

// StartBot opens the Discord connection and starts listening for events
func (h *DiscordEventsHandler) StartBot() error {
	if err := h.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	log.Printf("🤖 Discord bot is now running and listening for events")
	return nil
}

// StopBot gracefully closes the Discord connection
func (h *DiscordEventsHandler) StopBot() {
	h.session.Close()
}

func (h *DiscordEventsHandler) handleInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionMessageComponent:
		h.handleComponentClick(s, i)
	case discordgo.InteractionModalSubmit:
		h.handleModalSubmit(s, i)
	}
}

func (h *DiscordEventsHandler) handleComponentClick(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID
	if customID == "" {
		return
	}

	log.Printf("🤖 Component interaction received: %s", customID)

	switch {
	case strings.HasPrefix(customID, "warns:"):
		h.handleWarnsPagination(s, i, customID)
	case strings.HasPrefix(customID, "warn:"):
		h.handleWarnDecision(s, i, customID)
	}
}

func (h *DiscordEventsHandler) handleWarnDecision(s *discordgo.Session, i *discordgo.InteractionCreate, customID string) {
	parts := strings.Split(customID, ":")
	if len(parts) != 3 {
		return
	}
	action, warnID := parts[1], parts[2]

	if !h.allowDecision(s, i) {
		return
	}

	if strings.EqualFold(action, "abort") {
		// Collect the rejection reason through a modal before resolving.
		err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseModal,
			Data: &discordgo.InteractionResponseData{
				CustomID: "warn:abortmodal:" + warnID,
				Title:    "Reject warn request",
				Components: []discordgo.MessageComponent{
					discordgo.ActionsRow{
						Components: []discordgo.MessageComponent{
							discordgo.TextInput{
								CustomID:    "comment",
								Label:       "Rejection reason",
								Style:       discordgo.TextInputParagraph,
								Placeholder: "e.g. insufficient evidence",
								Required:    true,
								MinLength:   3,
								MaxLength:   500,
							},
						},
					},
				},
			},
		})
		if err != nil {
			log.Printf("❌ Failed to open abort modal: %v", err)
		}
		return
	}

	if !strings.EqualFold(action, "approve") {
		return
	}

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}); err != nil {
		log.Printf("❌ Failed to defer interaction: %v", err)
		return
	}

	requestMessageID := ""
	if i.Message != nil {
		requestMessageID = i.Message.ID
	}

	result, err := h.moderationUC.ProcessWarnDecision(
		context.Background(),
		i.ChannelID, requestMessageID, warnID,
		true,
		interactionUserID(i),
		nil,
	)
	h.editDecisionResponse(s, i, result, err, "Warn approved")
}

func (h *DiscordEventsHandler) handleModalSubmit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()
	if !strings.HasPrefix(data.CustomID, "warn:abortmodal:") {
		return
	}

	parts := strings.Split(data.CustomID, ":")
	if len(parts) != 3 {
		return
	}
	warnID := parts[2]

	if !h.allowDecision(s, i) {
		return
	}

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}); err != nil {
		log.Printf("❌ Failed to defer modal interaction: %v", err)
		return
	}

	var comment *string
	if text := extractModalComment(data); text != "" {
		comment = &text
	}

	result, err := h.moderationUC.ProcessWarnDecision(
		context.Background(),
		i.ChannelID, "", warnID,
		false,
		interactionUserID(i),
		comment,
	)
	h.editDecisionResponse(s, i, result, err, "Warn request rejected")
}

func (h *DiscordEventsHandler) handleWarnsPagination(s *discordgo.Session, i *discordgo.InteractionCreate, customID string) {
	parts := strings.Split(customID, ":")
	if len(parts) != 3 {
		return
	}
	targetUserID := parts[1]

	page, err := strconv.Atoi(parts[2])
	if err != nil || page < 0 {
		page = 0
	}

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}); err != nil {
		log.Printf("❌ Failed to defer pagination interaction: %v", err)
		return
	}

	warnsPage, err := h.moderationUC.ProcessWarnsPage(context.Background(), i.GuildID, targetUserID, page)
	if err != nil {
		log.Printf("❌ Failed to build warns page: %v", err)
		h.editContent(s, i, "Something went wrong while loading warns.")
		return
	}

	content := buildWarnsPageContent(targetUserID, warnsPage)
	components := buildWarnsPageButtons(targetUserID, warnsPage)

	edit := &discordgo.WebhookEdit{Content: &content}
	if components != nil {
		edit.Components = &components
	}
	if _, err := s.InteractionResponseEdit(i.Interaction, edit); err != nil {
		log.Printf("❌ Failed to edit pagination response: %v", err)
	}
}

// allowDecision enforces the request-channel restriction and the moderator
// permission gate. A denial answers the interaction with an ephemeral notice.
func (h *DiscordEventsHandler) allowDecision(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	if h.requestChannelID != "" && i.ChannelID != h.requestChannelID {
		h.respondEphemeral(s, i, "Warn requests can only be handled in the request channel.")
		return false
	}

	if i.Member == nil {
		h.respondEphemeral(s, i, "This action is only available inside the server.")
		return false
	}

	perms := i.Member.Permissions
	if perms&discordgo.PermissionModerateMembers == 0 && perms&discordgo.PermissionAdministrator == 0 {
		h.respondEphemeral(s, i, "You do not have permission to handle warn requests.")
		return false
	}

	return true
}

func (h *DiscordEventsHandler) editDecisionResponse(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	result *moderation.DecisionResult,
	err error,
	successText string,
) {
	switch {
	case err != nil:
		log.Printf("❌ Warn decision failed: %v", err)
		h.editContent(s, i, "Something went wrong while handling the warn.")
	case result.AlreadyHandled:
		h.editContent(s, i, "This warn has already been handled.")
	case result.Warn != nil:
		h.editContent(s, i, fmt.Sprintf("%s (ID: %d) by <@%s>.", successText, result.Warn.WarnNo, interactionUserID(i)))
	default:
		h.editContent(s, i, successText+".")
	}
}

func (h *DiscordEventsHandler) editContent(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	empty := []discordgo.MessageComponent{}
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content:    &content,
		Components: &empty,
	}); err != nil {
		log.Printf("❌ Failed to edit interaction response: %v", err)
	}
}

func (h *DiscordEventsHandler) respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("❌ Failed to send ephemeral response: %v", err)
	}
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func extractModalComment(data discordgo.ModalSubmitInteractionData) string {
	for _, row := range data.Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, comp := range actionsRow.Components {
			input, ok := comp.(*discordgo.TextInput)
			if !ok || input.CustomID != "comment" {
				continue
			}
			return strings.TrimSpace(input.Value)
		}
	}
	return ""
}

func buildWarnsPageContent(targetUserID string, page *moderation.WarnsPage) string {
	if page.Total == 0 {
		return fmt.Sprintf("<@%s> has no active warns.", targetUserID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active warns for <@%s>: %d\n", targetUserID, page.Total)
	for _, w := range page.Items {
		fmt.Fprintf(&b, "\n[ID: %d] %s — %s (expires %s UTC)",
			w.WarnNo, w.Category, w.Reason, w.ExpiresAt.UTC().Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(&b, "\n\nPage %d of %d", page.Page.Page+1, page.Page.TotalPages)
	return b.String()
}

func buildWarnsPageButtons(targetUserID string, page *moderation.WarnsPage) []discordgo.MessageComponent {
	if page.Page.TotalPages <= 1 {
		return nil
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Style:    discordgo.SecondaryButton,
					Label:    "Back",
					CustomID: fmt.Sprintf("warns:%s:%d", targetUserID, page.Page.Page-1),
					Disabled: !page.Page.HasPrev,
				},
				discordgo.Button{
					Style:    discordgo.SecondaryButton,
					Label:    "Next",
					CustomID: fmt.Sprintf("warns:%s:%d", targetUserID, page.Page.Page+1),
					Disabled: !page.Page.HasNext,
				},
			},
		},
	}
}
