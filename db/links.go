package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/samber/mo"

	// necessary import to wire up the postgres driver
	_ "github.com/lib/pq"

	dbtx "warnbot/db/tx"
	"warnbot/models"
)

type PostgresLinksRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for link_requests table
var linkRequestsColumns = []string{
	"discord_user_id",
	"steam_id",
	"code",
	"created_at",
}

// Column names for user_links table
var userLinksColumns = []string{
	"discord_user_id",
	"steam_id",
	"linked_at",
}

func NewPostgresLinksRepository(db *sqlx.DB, schema string) *PostgresLinksRepository {
	return &PostgresLinksRepository{db: db, schema: schema}
}

func (r *PostgresLinksRepository) GetUserLinkByDiscordID(
	ctx context.Context,
	discordUserID string,
) (mo.Option[*models.UserLink], error) {
	db := dbtx.GetTransactional(ctx, r.db)
	columnsStr := strings.Join(userLinksColumns, ", ")

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.user_links
		WHERE discord_user_id = $1`, columnsStr, r.schema)

	var link models.UserLink
	err := db.GetContext(ctx, &link, query, discordUserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return mo.None[*models.UserLink](), nil
		}
		return mo.None[*models.UserLink](), fmt.Errorf("failed to get user link: %w", err)
	}

	return mo.Some(&link), nil
}

func (r *PostgresLinksRepository) GetUserLinkBySteamID(
	ctx context.Context,
	steamID string,
) (mo.Option[*models.UserLink], error) {
	db := dbtx.GetTransactional(ctx, r.db)
	columnsStr := strings.Join(userLinksColumns, ", ")

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.user_links
		WHERE steam_id = $1`, columnsStr, r.schema)

	var link models.UserLink
	err := db.GetContext(ctx, &link, query, steamID)
	if err != nil {
		if err == sql.ErrNoRows {
			return mo.None[*models.UserLink](), nil
		}
		return mo.None[*models.UserLink](), fmt.Errorf("failed to get user link by steam id: %w", err)
	}

	return mo.Some(&link), nil
}

// GetLatestLinkRequest returns the live request for a Discord user. The table
// never holds two rows for the same user, so "latest" is the only row.
func (r *PostgresLinksRepository) GetLatestLinkRequest(
	ctx context.Context,
	discordUserID string,
) (mo.Option[*models.LinkRequest], error) {
	db := dbtx.GetTransactional(ctx, r.db)
	columnsStr := strings.Join(linkRequestsColumns, ", ")

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.link_requests
		WHERE discord_user_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, columnsStr, r.schema)

	var req models.LinkRequest
	err := db.GetContext(ctx, &req, query, discordUserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return mo.None[*models.LinkRequest](), nil
		}
		return mo.None[*models.LinkRequest](), fmt.Errorf("failed to get link request: %w", err)
	}

	return mo.Some(&req), nil
}

func (r *PostgresLinksRepository) GetLinkRequestByCode(
	ctx context.Context,
	code string,
) (mo.Option[*models.LinkRequest], error) {
	db := dbtx.GetTransactional(ctx, r.db)
	columnsStr := strings.Join(linkRequestsColumns, ", ")

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.link_requests
		WHERE code = $1`, columnsStr, r.schema)

	var req models.LinkRequest
	err := db.GetContext(ctx, &req, query, code)
	if err != nil {
		if err == sql.ErrNoRows {
			return mo.None[*models.LinkRequest](), nil
		}
		return mo.None[*models.LinkRequest](), fmt.Errorf("failed to get link request by code: %w", err)
	}

	return mo.Some(&req), nil
}

func (r *PostgresLinksRepository) CreateLinkRequest(
	ctx context.Context,
	req *models.LinkRequest,
) error {
	db := dbtx.GetTransactional(ctx, r.db)
	returningStr := strings.Join(linkRequestsColumns, ", ")

	query := fmt.Sprintf(`
		INSERT INTO %s.link_requests (discord_user_id, steam_id, code, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING %s`, r.schema, returningStr)

	var created models.LinkRequest
	err := db.QueryRowxContext(ctx, query, req.DiscordUserID, req.SteamID, req.Code).
		StructScan(&created)
	if err != nil {
		return fmt.Errorf("failed to create link request: %w", err)
	}

	*req = created
	return nil
}

// DeleteLinkRequestsForUser removes any pending requests for a Discord user.
func (r *PostgresLinksRepository) DeleteLinkRequestsForUser(
	ctx context.Context,
	discordUserID string,
) error {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`
		DELETE FROM %s.link_requests
		WHERE discord_user_id = $1`, r.schema)

	if _, err := db.ExecContext(ctx, query, discordUserID); err != nil {
		return fmt.Errorf("failed to delete link requests: %w", err)
	}

	return nil
}

func (r *PostgresLinksRepository) DeleteLinkRequestByCode(
	ctx context.Context,
	code string,
) (bool, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`
		DELETE FROM %s.link_requests
		WHERE code = $1`, r.schema)

	result, err := db.ExecContext(ctx, query, code)
	if err != nil {
		return false, fmt.Errorf("failed to delete link request by code: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// UpsertUserLink creates or replaces the link row for a Discord user.
func (r *PostgresLinksRepository) UpsertUserLink(
	ctx context.Context,
	discordUserID, steamID string,
) error {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`
		INSERT INTO %s.user_links (discord_user_id, steam_id, linked_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (discord_user_id)
		DO UPDATE SET steam_id = EXCLUDED.steam_id, linked_at = NOW()`, r.schema)

	if _, err := db.ExecContext(ctx, query, discordUserID, steamID); err != nil {
		return fmt.Errorf("failed to upsert user link: %w", err)
	}

	return nil
}

func (r *PostgresLinksRepository) DeleteUserLink(
	ctx context.Context,
	discordUserID string,
) (bool, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`
		DELETE FROM %s.user_links
		WHERE discord_user_id = $1`, r.schema)

	result, err := db.ExecContext(ctx, query, discordUserID)
	if err != nil {
		return false, fmt.Errorf("failed to delete user link: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// TESTS_UpdateLinkRequestCreatedAt backdates a link request for testing purposes
func (r *PostgresLinksRepository) TESTS_UpdateLinkRequestCreatedAt(
	ctx context.Context,
	discordUserID string,
	createdAt time.Time,
) (bool, error) {
	db := dbtx.GetTransactional(ctx, r.db)
	query := fmt.Sprintf(`
		UPDATE %s.link_requests
		SET created_at = $2
		WHERE discord_user_id = $1`, r.schema)

	result, err := db.ExecContext(ctx, query, discordUserID, createdAt)
	if err != nil {
		return false, fmt.Errorf("failed to update link request created_at: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}
