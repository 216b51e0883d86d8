package discord

import (
	"github.com/stretchr/testify/mock"
)

// MockDiscordClient implements the clients.DiscordClient interface for testing
type MockDiscordClient struct {
	mock.Mock
}

func (m *MockDiscordClient) SendDirectMessage(userID, content string) error {
	args := m.Called(userID, content)
	return args.Error(0)
}

func (m *MockDiscordClient) SendChannelMessage(channelID, content string) (string, error) {
	args := m.Called(channelID, content)
	return args.String(0), args.Error(1)
}

func (m *MockDiscordClient) GetMessageContent(channelID, messageID string) (string, error) {
	args := m.Called(channelID, messageID)
	return args.String(0), args.Error(1)
}

func (m *MockDiscordClient) DeleteMessage(channelID, messageID string) error {
	args := m.Called(channelID, messageID)
	return args.Error(0)
}

func (m *MockDiscordClient) GetMemberDisplayName(guildID, userID string) (string, error) {
	args := m.Called(guildID, userID)
	return args.String(0), args.Error(1)
}
