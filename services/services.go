package services

import (
	"context"
	"time"

	"github.com/samber/mo"

	"warnbot/models"
)

// TransactionManager defines the interface for managing database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(context.Context) error) error
}

// WarnsService defines the interface for the warn lifecycle state machine
type WarnsService interface {
	CreateWarn(
		ctx context.Context,
		guildID, targetUserID, authorUserID, reason string,
		comment *string,
		category models.WarnCategory,
		ttl time.Duration,
	) (*models.Warn, error)
	ResolveWarn(
		ctx context.Context,
		id string,
		outcome models.WarnStatus,
		responsibleUserID string,
		comment *string,
	) (bool, error)
	Unwarn(ctx context.Context, id, responsibleUserID string, comment *string) (bool, error)
	ExpireOutdated(ctx context.Context) (int64, error)
	ListActiveWarns(ctx context.Context, guildID, targetUserID string) ([]*models.Warn, error)
	GetWarnByID(ctx context.Context, id string) (mo.Option[*models.Warn], error)
	GetWarnByWarnNo(ctx context.Context, guildID string, warnNo int64) (mo.Option[*models.Warn], error)
}

// LinksService defines the interface for the Steam link handshake
type LinksService interface {
	RequestLink(ctx context.Context, discordUserID, steamID string) (*models.LinkRequestResult, error)
	ConfirmLink(ctx context.Context, code, steamID string) (models.ConfirmOutcome, error)
	Unlink(ctx context.Context, discordUserID string) (bool, error)
}
