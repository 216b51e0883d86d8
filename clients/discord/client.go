package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"warnbot/clients"
)

// DiscordClient implements the clients.DiscordClient interface over a shared
// discordgo session.
type DiscordClient struct {
	session *discordgo.Session
}

func NewDiscordClient(session *discordgo.Session) clients.DiscordClient {
	return &DiscordClient{session: session}
}

// SendDirectMessage opens (or reuses) the DM channel with a user and sends
// content there.
func (c *DiscordClient) SendDirectMessage(userID, content string) error {
	channel, err := c.session.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("failed to open DM channel with %s: %w", userID, err)
	}

	if _, err := c.session.ChannelMessageSend(channel.ID, content); err != nil {
		return fmt.Errorf("failed to send DM to %s: %w", userID, err)
	}

	return nil
}

// SendChannelMessage posts content to a channel and returns the new message id.
func (c *DiscordClient) SendChannelMessage(channelID, content string) (string, error) {
	msg, err := c.session.ChannelMessageSend(channelID, content)
	if err != nil {
		return "", fmt.Errorf("failed to send message to channel %s: %w", channelID, err)
	}

	return msg.ID, nil
}

// GetMessageContent fetches the textual content of a message.
func (c *DiscordClient) GetMessageContent(channelID, messageID string) (string, error) {
	msg, err := c.session.ChannelMessage(channelID, messageID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch message %s: %w", messageID, err)
	}

	return msg.Content, nil
}

func (c *DiscordClient) DeleteMessage(channelID, messageID string) error {
	if err := c.session.ChannelMessageDelete(channelID, messageID); err != nil {
		return fmt.Errorf("failed to delete message %s: %w", messageID, err)
	}

	return nil
}

// GetMemberDisplayName resolves a guild member's display name, falling back
// to the username when no nickname is set.
func (c *DiscordClient) GetMemberDisplayName(guildID, userID string) (string, error) {
	member, err := c.session.GuildMember(guildID, userID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch guild member %s: %w", userID, err)
	}

	if member.Nick != "" {
		return member.Nick, nil
	}
	if member.User != nil {
		return member.User.Username, nil
	}
	return userID, nil
}
