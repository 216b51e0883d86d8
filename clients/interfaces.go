package clients

// DiscordClient is the chat-platform REST surface consumed by the moderation
// flows: direct messages, audit posts, and evidence message fetch/delete. All
// of these are best-effort side effects of already-committed state
// transitions.
type DiscordClient interface {
	SendDirectMessage(userID, content string) error
	SendChannelMessage(channelID, content string) (string, error)
	GetMessageContent(channelID, messageID string) (string, error)
	DeleteMessage(channelID, messageID string) error
	GetMemberDisplayName(guildID, userID string) (string, error)
}
