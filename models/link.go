package models

import "time"

// LinkRequest is a pending Steam link handshake. At most one live request
// exists per Discord user; creating a new one supersedes any prior request.
type LinkRequest struct {
	DiscordUserID string    `db:"discord_user_id"`
	SteamID       string    `db:"steam_id"`
	Code          string    `db:"code"`
	CreatedAt     time.Time `db:"created_at"`
}

// UserLink binds a Discord user to a Steam identity. Uniqueness is
// bidirectional: one Steam id per Discord user and vice versa.
type UserLink struct {
	DiscordUserID string    `db:"discord_user_id"`
	SteamID       string    `db:"steam_id"`
	LinkedAt      time.Time `db:"linked_at"`
}

// LinkRequestOutcome classifies the result of a link request.
type LinkRequestOutcome string

const (
	LinkRequestAlreadyLinked       LinkRequestOutcome = "AlreadyLinked"
	LinkRequestSteamOwnedByAnother LinkRequestOutcome = "SteamAlreadyLinkedToAnotherUser"
	LinkRequestOkExisting          LinkRequestOutcome = "OkExisting"
	LinkRequestOkNew               LinkRequestOutcome = "OkNew"
)

// LinkRequestResult carries the outcome of RequestLink. Request is populated
// only for OkExisting and OkNew.
type LinkRequestResult struct {
	Outcome LinkRequestOutcome
	Request *LinkRequest
}

// ConfirmOutcome classifies the result of confirming a link code.
type ConfirmOutcome string

const (
	ConfirmSuccess  ConfirmOutcome = "Success"
	ConfirmExpired  ConfirmOutcome = "Expired"
	ConfirmNotFound ConfirmOutcome = "NotFound"
	ConfirmMismatch ConfirmOutcome = "Mismatch"
)
