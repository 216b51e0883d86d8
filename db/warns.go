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

type PostgresWarnsRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for warns table
var warnsColumns = []string{
	"id",
	"warn_no",
	"guild_id",
	"target_user_id",
	"author_user_id",
	"responsible_user_id",
	"reason",
	"category",
	"status",
	"created_at",
	"expires_at",
	"resolved_at",
	"resolution_comment",
}

func NewPostgresWarnsRepository(db *sqlx.DB, schema string) *PostgresWarnsRepository {
	return &PostgresWarnsRepository{db: db, schema: schema}
}

// CreateWarn inserts a Waiting warn. The store assigns warn_no (a per-guild
// monotonic sequence) and created_at; the inserted row is scanned back into warn.
func (r *PostgresWarnsRepository) CreateWarn(ctx context.Context, warn *models.Warn) error {
	db := dbtx.GetTransactional(ctx, r.db)
	returningStr := strings.Join(warnsColumns, ", ")

	query := fmt.Sprintf(`
		INSERT INTO %s.warns
		(id, guild_id, target_user_id, author_user_id, reason, resolution_comment, category, status, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), $9)
		RETURNING %s`, r.schema, returningStr)

	var created models.Warn
	err := db.QueryRowxContext(ctx, query,
		warn.ID, warn.GuildID, warn.TargetUserID, warn.AuthorUserID,
		warn.Reason, warn.ResolutionComment, warn.Category, models.WarnStatusWaiting,
		warn.ExpiresAt).
		StructScan(&created)
	if err != nil {
		return fmt.Errorf("failed to create warn: %w", err)
	}

	*warn = created
	return nil
}

// ResolveWarn conditionally transitions a Waiting warn to the given status.
// Returns false when the warn was already resolved by someone else; the store
// row is the linearization point, so exactly one concurrent caller wins.
// A non-nil comment is appended to any existing resolution comment.
func (r *PostgresWarnsRepository) ResolveWarn(
	ctx context.Context,
	id string,
	status models.WarnStatus,
	responsibleUserID string,
	comment *string,
) (bool, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`
		UPDATE %s.warns
		SET status = $2,
			responsible_user_id = $3,
			resolved_at = NOW(),
			resolution_comment = CASE
				WHEN $4::text IS NULL THEN resolution_comment
				WHEN resolution_comment IS NULL OR resolution_comment = '' THEN $4::text
				ELSE resolution_comment || E'\n\n---\n' || $4::text
			END
		WHERE id = $1 AND status = 'Waiting'`, r.schema)

	result, err := db.ExecContext(ctx, query, id, status, responsibleUserID, comment)
	if err != nil {
		return false, fmt.Errorf("failed to resolve warn: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// UnwarnWarn aborts a warn that is still Waiting or Active. Same conditional
// update shape as ResolveWarn but reachable from two states.
func (r *PostgresWarnsRepository) UnwarnWarn(
	ctx context.Context,
	id string,
	responsibleUserID string,
	comment *string,
) (bool, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`
		UPDATE %s.warns
		SET status = $2,
			responsible_user_id = $3,
			resolved_at = NOW(),
			resolution_comment = CASE
				WHEN $4::text IS NULL THEN resolution_comment
				WHEN resolution_comment IS NULL OR resolution_comment = '' THEN $4::text
				ELSE resolution_comment || E'\n\n---\n' || $4::text
			END
		WHERE id = $1 AND status IN ('Waiting', 'Active')`, r.schema)

	result, err := db.ExecContext(ctx, query, id, models.WarnStatusAborted, responsibleUserID, comment)
	if err != nil {
		return false, fmt.Errorf("failed to unwarn: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// ExpireOutdatedWarns converts every Active warn past its expiry to Expired
// and returns how many rows changed. Idempotent.
func (r *PostgresWarnsRepository) ExpireOutdatedWarns(ctx context.Context) (int64, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`
		UPDATE %s.warns
		SET status = 'Expired'
		WHERE status = 'Active' AND expires_at <= NOW()`, r.schema)

	result, err := db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to expire outdated warns: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// GetActiveWarns returns Active, non-expired warns for a user, newest first.
func (r *PostgresWarnsRepository) GetActiveWarns(
	ctx context.Context,
	guildID, targetUserID string,
) ([]*models.Warn, error) {
	db := dbtx.GetTransactional(ctx, r.db)
	columnsStr := strings.Join(warnsColumns, ", ")

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.warns
		WHERE guild_id = $1
		  AND target_user_id = $2
		  AND status = 'Active'
		  AND expires_at > NOW()
		ORDER BY created_at DESC`, columnsStr, r.schema)

	var warns []*models.Warn
	err := db.SelectContext(ctx, &warns, query, guildID, targetUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active warns: %w", err)
	}

	return warns, nil
}

func (r *PostgresWarnsRepository) GetWarnByID(
	ctx context.Context,
	id string,
) (mo.Option[*models.Warn], error) {
	db := dbtx.GetTransactional(ctx, r.db)
	columnsStr := strings.Join(warnsColumns, ", ")

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.warns
		WHERE id = $1`, columnsStr, r.schema)

	var warn models.Warn
	err := db.GetContext(ctx, &warn, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return mo.None[*models.Warn](), nil
		}
		return mo.None[*models.Warn](), fmt.Errorf("failed to get warn: %w", err)
	}

	return mo.Some(&warn), nil
}

func (r *PostgresWarnsRepository) GetWarnByWarnNo(
	ctx context.Context,
	guildID string,
	warnNo int64,
) (mo.Option[*models.Warn], error) {
	db := dbtx.GetTransactional(ctx, r.db)
	columnsStr := strings.Join(warnsColumns, ", ")

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.warns
		WHERE guild_id = $1 AND warn_no = $2`, columnsStr, r.schema)

	var warn models.Warn
	err := db.GetContext(ctx, &warn, query, guildID, warnNo)
	if err != nil {
		if err == sql.ErrNoRows {
			return mo.None[*models.Warn](), nil
		}
		return mo.None[*models.Warn](), fmt.Errorf("failed to get warn by warn_no: %w", err)
	}

	return mo.Some(&warn), nil
}

// TESTS_UpdateWarnExpiresAt backdates a warn's expiry for testing purposes
func (r *PostgresWarnsRepository) TESTS_UpdateWarnExpiresAt(
	ctx context.Context,
	id string,
	expiresAt time.Time,
) (bool, error) {
	db := dbtx.GetTransactional(ctx, r.db)
	query := fmt.Sprintf(`
		UPDATE %s.warns
		SET expires_at = $2
		WHERE id = $1`, r.schema)

	result, err := db.ExecContext(ctx, query, id, expiresAt)
	if err != nil {
		return false, fmt.Errorf("failed to update warn expires_at: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}
