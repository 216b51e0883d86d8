package links

import (
	"context"

	"github.com/stretchr/testify/mock"

	"warnbot/models"
)

// MockLinksService is a mock implementation of the LinksService interface
type MockLinksService struct {
	mock.Mock
}

func (m *MockLinksService) RequestLink(
	ctx context.Context,
	discordUserID, steamID string,
) (*models.LinkRequestResult, error) {
	args := m.Called(ctx, discordUserID, steamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LinkRequestResult), args.Error(1)
}

func (m *MockLinksService) ConfirmLink(
	ctx context.Context,
	code, steamID string,
) (models.ConfirmOutcome, error) {
	args := m.Called(ctx, code, steamID)
	return args.Get(0).(models.ConfirmOutcome), args.Error(1)
}

func (m *MockLinksService) Unlink(ctx context.Context, discordUserID string) (bool, error) {
	args := m.Called(ctx, discordUserID)
	return args.Bool(0), args.Error(1)
}
