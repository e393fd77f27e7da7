// Package follower keeps a client's copy of the room. It never computes game rules:
// every field is overwritten from what the authority publishes.
package follower

import (
	"time"

	"traitors-be/internal/game"
	"traitors-be/internal/protocol"
)

type State struct {
	PlayerID    string
	Token       string
	RoomID      string
	OwnerID     string
	AuthorityID string
	Members     []protocol.Member
	IsLocked    bool
	Kicked      bool

	GameID   string
	Settings *game.Settings
	Snapshot game.Snapshot

	Phase         game.Phase
	TimeRemaining int
	syncedAt      time.Time

	Preview    *protocol.CardPreviewPayload
	LastCard   *protocol.CardAppliedPrivatePayload
	PublicCard *protocol.CardAppliedPayload
	LastError  *protocol.ErrorPayload
}

// Apply folds one envelope into the state and reports whether anything it tracks
// changed. own marks envelopes this member sent itself; they carry intents only and
// are ignored. Applying the same envelope twice leaves the state as it was.
func (s *State) Apply(env protocol.Envelope, own bool, now time.Time) bool {
	if own || !s.trusted(env) {
		return false
	}

	switch env.Type {
	case protocol.MSG_ROOM_JOINED:
		p := protocol.TryUnwrap[protocol.RoomJoinedPayload](env, env.Type)
		if p == nil {
			return false
		}
		s.PlayerID = p.PlayerID
		s.Token = p.Token
		s.RoomID = p.RoomID
		s.OwnerID = p.OwnerID
		s.AuthorityID = p.AuthorityID
		s.Members = p.Players
		s.IsLocked = p.IsLocked
		s.Kicked = false

	case protocol.MSG_PLAYER_LIST_UPDATED:
		p := protocol.TryUnwrap[protocol.PlayerListUpdatedPayload](env, env.Type)
		if p == nil {
			return false
		}
		s.Members = p.Players
		s.OwnerID = p.OwnerID
		s.IsLocked = p.IsLocked

	case protocol.MSG_PLAYER_KICKED:
		p := protocol.TryUnwrap[protocol.PlayerKickedPayload](env, env.Type)
		if p == nil || p.PlayerID != s.PlayerID {
			return false
		}
		s.Kicked = true

	case protocol.MSG_GAME_STARTED:
		p := protocol.TryUnwrap[protocol.GameStartedPayload](env, env.Type)
		if p == nil {
			return false
		}
		settings := p.Settings
		s.GameID = p.GameID
		s.Settings = &settings
		s.Snapshot = game.Snapshot{GameID: p.GameID, Players: p.Players, Settings: &settings}
		s.Preview = nil
		s.LastCard = nil
		s.PublicCard = nil

	case protocol.MSG_PHASE_CHANGED:
		p := protocol.TryUnwrap[protocol.PhaseChangedPayload](env, env.Type)
		if p == nil {
			return false
		}
		s.setTimer(p.Phase, p.TimeRemaining, now)
		s.Snapshot.CurrentPhase = p.Phase
		s.Snapshot.CurrentTurn = p.CurrentTurn
		s.Snapshot.SelectedCardDrawers = p.SelectedCardDrawers
		s.Snapshot.CurrentCardDrawer = p.CurrentCardDrawer
		s.Preview = nil

	case protocol.MSG_STATE_SNAPSHOT:
		p := protocol.TryUnwrap[protocol.StateSnapshotPayload](env, env.Type)
		if p == nil {
			return false
		}
		s.Snapshot = p.Snapshot
		s.GameID = p.GameID
		s.Settings = p.Settings
		s.setTimer(p.CurrentPhase, p.TimeRemaining, now)

	case protocol.MSG_TIMER_SYNC:
		p := protocol.TryUnwrap[protocol.TimerSyncPayload](env, env.Type)
		// a sync for a phase we already left is stale
		if p == nil || p.Phase != s.Phase {
			return false
		}
		s.setTimer(p.Phase, p.TimeRemaining, now)

	case protocol.MSG_CARD_PREVIEW:
		p := protocol.TryUnwrap[protocol.CardPreviewPayload](env, env.Type)
		if p == nil {
			return false
		}
		s.Preview = p

	case protocol.MSG_CARD_APPLIED_PRIVATE:
		p := protocol.TryUnwrap[protocol.CardAppliedPrivatePayload](env, env.Type)
		if p == nil {
			return false
		}
		s.LastCard = p
		if p.ActorID == s.PlayerID {
			s.Preview = nil
		}

	case protocol.MSG_CARD_APPLIED:
		p := protocol.TryUnwrap[protocol.CardAppliedPayload](env, env.Type)
		if p == nil {
			return false
		}
		s.PublicCard = p

	case protocol.MSG_ERROR:
		p := protocol.TryUnwrap[protocol.ErrorPayload](env, env.Type)
		if p == nil {
			return false
		}
		s.LastError = p

	default:
		return false
	}

	return true
}

func (s *State) setTimer(phase game.Phase, remaining int, now time.Time) {
	s.Phase = phase
	s.TimeRemaining = remaining
	s.syncedAt = now
}

// Remaining interpolates the countdown from the last sync. It never goes below zero.
func (s *State) Remaining(now time.Time) int {
	if s.TimeRemaining <= 0 {
		return 0
	}
	left := s.TimeRemaining - int(now.Sub(s.syncedAt)/time.Second)
	return max(left, 0)
}

// Me is the player this state belongs to, as the authority shows it.
func (s *State) Me() (game.Player, bool) {
	return s.Player(s.PlayerID)
}

func (s *State) Player(id string) (game.Player, bool) {
	for _, p := range s.Snapshot.Players {
		if p.ID == id {
			return p, true
		}
	}
	return game.Player{}, false
}

func (s *State) IsOwner() bool {
	return s.PlayerID != "" && s.PlayerID == s.OwnerID
}

// IsMyDraw reports whether this player is the current card drawer.
func (s *State) IsMyDraw() bool {
	return s.Phase == game.PhaseCardDrawing && s.Snapshot.CurrentCardDrawer == s.PlayerID
}

// trusted reports whether env comes from the party allowed to send its type: the relay
// (empty PlayerID) for membership, the authority for game state. The relay forwards
// whatever members publish, so anything else is a forgery.
func (s *State) trusted(env protocol.Envelope) bool {
	switch env.Type {
	case protocol.MSG_ROOM_JOINED, protocol.MSG_PLAYER_LIST_UPDATED, protocol.MSG_PLAYER_KICKED:
		return env.PlayerID == ""

	case protocol.MSG_ERROR:
		return env.PlayerID == "" || env.PlayerID == s.AuthorityID

	default:
		return s.AuthorityID != "" && env.PlayerID == s.AuthorityID
	}
}
