package warns

import (
	"context"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"warnbot/models"
)

// MockWarnsService is a mock implementation of the WarnsService interface
type MockWarnsService struct {
	mock.Mock
}

func (m *MockWarnsService) CreateWarn(
	ctx context.Context,
	guildID, targetUserID, authorUserID, reason string,
	comment *string,
	category models.WarnCategory,
	ttl time.Duration,
) (*models.Warn, error) {
	args := m.Called(ctx, guildID, targetUserID, authorUserID, reason, comment, category, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Warn), args.Error(1)
}

func (m *MockWarnsService) ResolveWarn(
	ctx context.Context,
	id string,
	outcome models.WarnStatus,
	responsibleUserID string,
	comment *string,
) (bool, error) {
	args := m.Called(ctx, id, outcome, responsibleUserID, comment)
	return args.Bool(0), args.Error(1)
}

func (m *MockWarnsService) Unwarn(
	ctx context.Context,
	id, responsibleUserID string,
	comment *string,
) (bool, error) {
	args := m.Called(ctx, id, responsibleUserID, comment)
	return args.Bool(0), args.Error(1)
}

func (m *MockWarnsService) ExpireOutdated(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWarnsService) ListActiveWarns(
	ctx context.Context,
	guildID, targetUserID string,
) ([]*models.Warn, error) {
	args := m.Called(ctx, guildID, targetUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Warn), args.Error(1)
}

func (m *MockWarnsService) GetWarnByID(
	ctx context.Context,
	id string,
) (mo.Option[*models.Warn], error) {
	args := m.Called(ctx, id)
	return args.Get(0).(mo.Option[*models.Warn]), args.Error(1)
}

func (m *MockWarnsService) GetWarnByWarnNo(
	ctx context.Context,
	guildID string,
	warnNo int64,
) (mo.Option[*models.Warn], error) {
	args := m.Called(ctx, guildID, warnNo)
	return args.Get(0).(mo.Option[*models.Warn]), args.Error(1)
}
