package game

import (
	"maps"
	"slices"

	"traitors-be/internal/card"
)

// Snapshot is the full reconciliation state as one player may see it.
type Snapshot struct {
	GameID              string              `json:"gameId,omitempty"`
	Players             []Player            `json:"players"`
	DeathLog            []DeathRecord       `json:"deathLog"`
	PlayerNotes         map[string][]string `json:"playerNotes"`
	Votes               map[string]string   `json:"votes"`
	BombTargets         []string            `json:"bombTargets"`
	CurrentPhase        Phase               `json:"currentPhase"`
	TimeRemaining       int                 `json:"timeRemaining"`
	CurrentTurn         int                 `json:"currentTurn"`
	SelectedCardDrawers []string            `json:"selectedCardDrawers"`
	CurrentCardDrawer   string              `json:"currentCardDrawer"`
	WinningSide         Side                `json:"winningSide,omitempty"`
	LastVote            *VoteResult         `json:"lastVote,omitempty"`
	Settings            *Settings           `json:"settings,omitempty"`
	MyAction            *NightAction        `json:"myAction,omitempty"`
}

// Snapshot renders the state for viewerID. The authority id gets the unredacted view;
// anyone else sees their own role and notes, fellow traitors, and everything at END.
func (e *Engine) Snapshot(viewerID string) Snapshot {
	ctx := e.ctx
	full := viewerID == ctx.AuthorityID
	viewer, _ := ctx.Player(viewerID)

	snap := Snapshot{
		Players:             make([]Player, 0, len(ctx.Players)),
		DeathLog:            slices.Clone(ctx.DeathLog),
		PlayerNotes:         make(map[string][]string),
		Votes:               make(map[string]string),
		BombTargets:         []string{},
		CurrentPhase:        ctx.Phase,
		TimeRemaining:       ctx.TimeRemaining(e.now()),
		CurrentTurn:         ctx.CurrentTurn(),
		SelectedCardDrawers: slices.Clone(ctx.SelectedCardDrawers),
		CurrentCardDrawer:   ctx.CurrentCardDrawer(),
	}
	if snap.DeathLog == nil {
		snap.DeathLog = []DeathRecord{}
	}
	if snap.SelectedCardDrawers == nil {
		snap.SelectedCardDrawers = []string{}
	}

	if ctx.Game != nil {
		snap.GameID = ctx.Game.ID
		snap.WinningSide = ctx.Game.WinningSide
		s := ctx.Game.Settings
		snap.Settings = &s
	}
	if ctx.LastVote != nil {
		lv := *ctx.LastVote
		lv.Tally = maps.Clone(lv.Tally)
		snap.LastVote = &lv
	}

	for _, p := range ctx.Players {
		snap.Players = append(snap.Players, redactPlayer(*p, viewer, full || ctx.Phase == PhaseEnd))
	}

	switch {
	case full:
		for id, notes := range ctx.PlayerNotes {
			snap.PlayerNotes[id] = slices.Clone(notes)
		}
	case viewer != nil:
		if notes, ok := ctx.PlayerNotes[viewer.ID]; ok {
			snap.PlayerNotes[viewer.ID] = slices.Clone(notes)
		}
	}

	if full || !(ctx.Phase == PhaseVote && ctx.hasEffect(card.BlindVote)) {
		maps.Copy(snap.Votes, ctx.Votes)
	}

	if full || ctx.Phase == PhaseEnd || (viewer != nil && viewer.Role == RoleBomber) {
		for _, p := range ctx.Players {
			if ctx.BombTargets[p.ID] {
				snap.BombTargets = append(snap.BombTargets, p.ID)
			}
		}
	}

	if viewer != nil {
		if a, ok := ctx.NightActions[viewer.ID]; ok {
			mine := *a
			snap.MyAction = &mine
		}
	}

	return snap
}

func redactPlayer(p Player, viewer *Player, reveal bool) Player {
	if reveal {
		return p
	}

	if viewer != nil && viewer.ID == p.ID {
		// a DELI must not learn it is one
		p.Role = p.DisplayRole
		return p
	}

	if viewer != nil && viewer.Role.IsTraitorAligned() && p.Role.IsTraitorAligned() {
		p.DisplayRole = p.Role
		p.HasShield = false
		p.SurvivorShields = 0
		return p
	}

	p.Role = ""
	p.DisplayRole = ""
	p.HasShield = false
	p.SurvivorShields = 0
	return p
}
