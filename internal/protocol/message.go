package protocol

import (
	"traitors-be/internal/card"
	"traitors-be/internal/game"
)

// Membership, handled by the relay.
const (
	MSG_JOIN_ROOM           = "JOIN_ROOM"
	MSG_ROOM_JOINED         = "ROOM_JOINED"
	MSG_PLAYER_LIST_UPDATED = "PLAYER_LIST_UPDATED"
	MSG_KICK_PLAYER         = "KICK_PLAYER"
	MSG_PLAYER_KICKED       = "PLAYER_KICKED"
	MSG_LOCK_ROOM           = "LOCK_ROOM"
	MSG_ERROR               = "ERROR"
)

// Authority to followers.
const (
	MSG_GAME_STARTED         = "GAME_STARTED"
	MSG_PHASE_CHANGED        = "PHASE_CHANGED"
	MSG_STATE_SNAPSHOT       = "STATE_SNAPSHOT"
	MSG_TIMER_SYNC           = "TIMER_SYNC"
	MSG_CARD_PREVIEW         = "CARD_PREVIEW"
	MSG_CARD_APPLIED_PRIVATE = "CARD_APPLIED_PRIVATE"
	MSG_CARD_APPLIED         = "CARD_APPLIED"
)

// Followers to the authority.
const (
	MSG_START_GAME           = "START_GAME"
	MSG_PLAYER_READY         = "PLAYER_READY"
	MSG_NIGHT_ACTION_UPDATED = "NIGHT_ACTION_UPDATED"
	MSG_VOTE_CAST            = "VOTE_CAST"
	MSG_SKIP_TO_VOTE         = "SKIP_TO_VOTE"
	MSG_RETURN_TO_LOBBY      = "RETURN_TO_LOBBY"
	MSG_CARD_QR_SCANNED      = "CARD_QR_SCANNED"
	MSG_CARD_CONFIRM         = "CARD_CONFIRM"
	MSG_REQUEST_SNAPSHOT     = "REQUEST_SNAPSHOT"
)

var knownTypes = map[string]bool{
	MSG_JOIN_ROOM: true, MSG_ROOM_JOINED: true, MSG_PLAYER_LIST_UPDATED: true,
	MSG_KICK_PLAYER: true, MSG_PLAYER_KICKED: true, MSG_LOCK_ROOM: true, MSG_ERROR: true,

	MSG_GAME_STARTED: true, MSG_PHASE_CHANGED: true, MSG_STATE_SNAPSHOT: true, MSG_TIMER_SYNC: true,
	MSG_CARD_PREVIEW: true, MSG_CARD_APPLIED_PRIVATE: true, MSG_CARD_APPLIED: true,

	MSG_START_GAME: true, MSG_PLAYER_READY: true, MSG_NIGHT_ACTION_UPDATED: true, MSG_VOTE_CAST: true,
	MSG_SKIP_TO_VOTE: true, MSG_RETURN_TO_LOBBY: true, MSG_CARD_QR_SCANNED: true, MSG_CARD_CONFIRM: true,
	MSG_REQUEST_SNAPSHOT: true,
}

func IsKnownType(t string) bool {
	return knownTypes[t]
}

// Error codes carried by ERROR envelopes.
const (
	ERR_ROOM_NOT_FOUND = "ROOM_NOT_FOUND"
	ERR_ROOM_LOCKED    = "ROOM_LOCKED"
	ERR_ROOM_FULL      = "ROOM_FULL"
	ERR_BAD_REQUEST    = "BAD_REQUEST"
	ERR_FORBIDDEN      = "FORBIDDEN"
	ERR_REJECTED       = "REJECTED"
)

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Member is a visible room member.
type Member struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IsOwner bool   `json:"isOwner"`
	IsBot   bool   `json:"isBot"`
}

type JoinPlayer struct {
	// empty on first join; set to reconnect
	ID string `json:"id,omitempty"`
	// token from ROOM_JOINED, required with a known ID
	Token string `json:"token,omitempty"`
	Name  string `json:"name"`
	IsBot bool   `json:"isBot,omitempty"`
}

type JoinRoomPayload struct {
	RoomID string     `json:"roomId"`
	Player JoinPlayer `json:"player"`
}

type RoomJoinedPayload struct {
	RoomID      string   `json:"roomId"`
	PlayerID    string   `json:"playerId"`
	Token       string   `json:"token"`
	OwnerID     string   `json:"ownerId"`
	AuthorityID string   `json:"authorityId,omitempty"`
	MaxPlayers  int      `json:"maxPlayers"`
	IsLocked    bool     `json:"isLocked"`
	Players     []Member `json:"players"`
}

type PlayerListUpdatedPayload struct {
	OwnerID  string   `json:"ownerId"`
	IsLocked bool     `json:"isLocked"`
	Players  []Member `json:"players"`
}

type KickPlayerPayload struct {
	PlayerID string `json:"playerId"`
}

type PlayerKickedPayload struct {
	PlayerID string `json:"playerId"`
}

type LockRoomPayload struct {
	Locked bool `json:"locked"`
}

type StartGamePayload struct {
	Settings game.Settings `json:"settings"`
}

type GameStartedPayload struct {
	GameID   string        `json:"gameId"`
	Players  []game.Player `json:"players"`
	Settings game.Settings `json:"settings"`
}

type PhaseChangedPayload struct {
	game.PhaseInfo
	InitiatorID string `json:"initiatorId"`
}

type StateSnapshotPayload struct {
	game.Snapshot
	InitiatorID string `json:"initiatorId"`
}

// TimerSyncPayload is the authority's periodic countdown.
type TimerSyncPayload struct {
	Phase         game.Phase `json:"phase"`
	TimeRemaining int        `json:"timeRemaining"`
	InitiatorID   string     `json:"initiatorId"`
}

type NightActionUpdatedPayload struct {
	Action game.NightAction `json:"action"`
}

type VoteCastPayload struct {
	VoterID  string `json:"voterId"`
	TargetID string `json:"targetId"`
}

type PlayerReadyPayload struct{}

type RequestSnapshotPayload struct{}

type CardQRScannedPayload struct {
	Token string `json:"token"`
}

type CardPreviewPayload struct {
	Code        string        `json:"code,omitempty"`
	EffectID    card.EffectID `json:"effectId,omitempty"`
	Title       string        `json:"title,omitempty"`
	Text        string        `json:"text,omitempty"`
	NeedsTarget bool          `json:"needsTarget,omitempty"`
	Error       string        `json:"error,omitempty"`
}

type CardConfirmPayload struct {
	EffectID card.EffectID `json:"effectId"`
	TargetID string        `json:"targetId,omitempty"`
}

type CardAppliedPrivatePayload struct {
	Code     string        `json:"code"`
	EffectID card.EffectID `json:"effectId"`
	Title    string        `json:"title"`
	Text     string        `json:"text"`
	ActorID  string        `json:"actorId"`
	TargetID string        `json:"targetId,omitempty"`
}

type CardAppliedPayload struct {
	EffectID card.EffectID `json:"effectId"`
	Title    string        `json:"title"`
	Text     string        `json:"text"`
	ActorID  string        `json:"actorId"`
	TargetID string        `json:"targetId,omitempty"`
}
