package models

import "time"

// WarnStatus is the lifecycle state of a warn record.
type WarnStatus string

const (
	WarnStatusWaiting WarnStatus = "Waiting"
	WarnStatusActive  WarnStatus = "Active"
	WarnStatusAborted WarnStatus = "Aborted"
	WarnStatusExpired WarnStatus = "Expired"
)

// WarnCategory is the closed set of violation categories a warn can carry.
type WarnCategory string

const (
	WarnCategoryDiscord          WarnCategory = "Discord"
	WarnCategoryDiscordAdmin     WarnCategory = "Discord_Admin"
	WarnCategoryClassicDonate    WarnCategory = "Classic_Donate"
	WarnCategoryClassicAdmin     WarnCategory = "Classic_Admin"
	WarnCategoryOnlyEventsAdmin  WarnCategory = "OnlyEvents_Admin"
	WarnCategoryOnlyEventsDonate WarnCategory = "OnlyEvents_Donate"
)

// IsValid reports whether the category is one of the known values.
func (c WarnCategory) IsValid() bool {
	switch c {
	case WarnCategoryDiscord,
		WarnCategoryDiscordAdmin,
		WarnCategoryClassicDonate,
		WarnCategoryClassicAdmin,
		WarnCategoryOnlyEventsAdmin,
		WarnCategoryOnlyEventsDonate:
		return true
	}
	return false
}

// Warn is a moderation record awaiting or having received a moderator decision.
// WarnNo is a per-guild human-facing sequence number assigned by the store at
// creation; ID is the opaque internal identifier.
type Warn struct {
	ID                string       `db:"id"`
	WarnNo            int64        `db:"warn_no"`
	GuildID           string       `db:"guild_id"`
	TargetUserID      string       `db:"target_user_id"`
	AuthorUserID      string       `db:"author_user_id"`
	ResponsibleUserID *string      `db:"responsible_user_id"`
	Reason            string       `db:"reason"`
	Category          WarnCategory `db:"category"`
	Status            WarnStatus   `db:"status"`
	CreatedAt         time.Time    `db:"created_at"`
	ExpiresAt         time.Time    `db:"expires_at"`
	ResolvedAt        *time.Time   `db:"resolved_at"`
	ResolutionComment *string      `db:"resolution_comment"`
}

// IsResolved reports whether the warn has left the Waiting state.
func (w *Warn) IsResolved() bool {
	return w.Status != WarnStatusWaiting
}
