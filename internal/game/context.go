package game

import (
	"fmt"
	"math/rand/v2"
	"time"

	"traitors-be/internal/card"
)

// ActiveEffect is a confirmed card whose effect outlives the confirmation.
type ActiveEffect struct {
	EffectID card.EffectID `json:"effectId"`
	ActorID  string        `json:"actorId"`
	TargetID string        `json:"targetId,omitempty"`
	Timing   card.Timing   `json:"timing"`
	Turn     int           `json:"turn"`
}

// pendingCard is a scanned card waiting for the drawer's confirmation.
type pendingCard struct {
	card   card.Card
	effect card.EffectDef
}

// GameContext is the canonical state of one room. Only the owning engine mutates it.
type GameContext struct {
	RoomID      string
	AuthorityID string

	// ordered by join time
	Players []*Player
	Game    *Game
	Phase   Phase

	Deadline time.Time

	NightActions map[string]*NightAction
	Votes        map[string]string
	PlayerNotes  map[string][]string
	BombTargets  map[string]bool
	DeathLog     []DeathRecord
	LastVote     *VoteResult

	SelectedCardDrawers []string
	CardDrawerIdx       int

	Ready     map[string]bool
	Effects   []ActiveEffect
	UsedCards map[string]bool
	pending   map[string]pendingCard

	rng *rand.Rand
	now func() time.Time

	revision uint64
	phaseSeq uint64
}

func newGameContext(roomID, authorityID string, rng *rand.Rand, now func() time.Time) *GameContext {
	ctx := &GameContext{
		RoomID:      roomID,
		AuthorityID: authorityID,
		rng:         rng,
		now:         now,
	}
	ctx.resetRound()
	return ctx
}

// resetRound drops every per-game collection.
func (gc *GameContext) resetRound() {
	gc.Game = nil
	gc.Deadline = time.Time{}
	gc.NightActions = make(map[string]*NightAction)
	gc.Votes = make(map[string]string)
	gc.PlayerNotes = make(map[string][]string)
	gc.BombTargets = make(map[string]bool)
	gc.DeathLog = nil
	gc.LastVote = nil
	gc.SelectedCardDrawers = nil
	gc.CardDrawerIdx = 0
	gc.Ready = make(map[string]bool)
	gc.Effects = nil
	gc.UsedCards = make(map[string]bool)
	gc.pending = make(map[string]pendingCard)
}

func (gc *GameContext) Player(id string) (*Player, bool) {
	for _, p := range gc.Players {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

func (gc *GameContext) AlivePlayers() []*Player {
	alive := make([]*Player, 0, len(gc.Players))
	for _, p := range gc.Players {
		if p.IsAlive {
			alive = append(alive, p)
		}
	}
	return alive
}

func (gc *GameContext) CountAlive() int {
	return len(gc.AlivePlayers())
}

func (gc *GameContext) Owner() *Player {
	for _, p := range gc.Players {
		if p.IsOwner {
			return p
		}
	}
	return nil
}

func (gc *GameContext) CurrentTurn() int {
	if gc.Game == nil {
		return 0
	}
	return gc.Game.CurrentTurn
}

func (gc *GameContext) Settings() Settings {
	if gc.Game == nil {
		return Settings{}
	}
	return gc.Game.Settings
}

// CurrentCardDrawer returns "" outside CARD_DRAWING or once every drawer had a turn.
func (gc *GameContext) CurrentCardDrawer() string {
	if gc.Phase != PhaseCardDrawing || gc.CardDrawerIdx >= len(gc.SelectedCardDrawers) {
		return ""
	}
	return gc.SelectedCardDrawers[gc.CardDrawerIdx]
}

// SetTimer arms the phase countdown. Zero or negative seconds leave the phase untimed.
func (gc *GameContext) SetTimer(seconds int) {
	if seconds <= 0 {
		gc.Deadline = time.Time{}
		return
	}
	gc.Deadline = gc.now().Add(time.Duration(seconds) * time.Second)
}

func (gc *GameContext) ClearTimer() {
	gc.Deadline = time.Time{}
}

// TimeRemaining is the countdown in whole seconds, rounded up.
func (gc *GameContext) TimeRemaining(now time.Time) int {
	if gc.Deadline.IsZero() {
		return 0
	}
	left := gc.Deadline.Sub(now)
	if left <= 0 {
		return 0
	}
	return int((left + time.Second - 1) / time.Second)
}

func (gc *GameContext) Expired(now time.Time) bool {
	return !gc.Deadline.IsZero() && !now.Before(gc.Deadline)
}

// Note appends a private line to a player's notes, tagged with the current day.
func (gc *GameContext) Note(playerID, text string) {
	gc.PlayerNotes[playerID] = append(gc.PlayerNotes[playerID], fmt.Sprintf("%d. Gün: %s", gc.CurrentTurn(), text))
}

func (gc *GameContext) kill(playerID string, cause DeathCause) {
	p, ok := gc.Player(playerID)
	if !ok || !p.IsAlive {
		return
	}

	p.IsAlive = false
	p.HasShield = false
	delete(gc.BombTargets, playerID)

	gc.DeathLog = append(gc.DeathLog, DeathRecord{
		PlayerID: playerID,
		Turn:     gc.CurrentTurn(),
		Cause:    cause,
	})
}

func (gc *GameContext) touch() {
	gc.revision++
}

func (gc *GameContext) phaseChanged() {
	gc.phaseSeq++
	gc.revision++
}
