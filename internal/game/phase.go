package game

import (
	"fmt"

	"go.uber.org/zap"

	"traitors-be/internal/card"
)

// The lobby holds the roster between games. Entering it discards the previous game.
type lobbyHandler struct{}

func (lobbyHandler) Phase() Phase { return PhaseLobby }

func (lobbyHandler) OnEnter(ctx *GameContext) {
	ctx.resetRound()
	for _, p := range ctx.Players {
		p.Role = ""
		p.DisplayRole = ""
		p.IsAlive = true
		p.IsMuted = false
		p.HasShield = false
		p.SurvivorShields = 0
	}
}

func (lobbyHandler) OnExit(ctx *GameContext) {}

func (lobbyHandler) Next(ctx *GameContext) Phase { return PhaseRoleReveal }

// Players look at their roles and mark themselves ready.
type roleRevealHandler struct{}

func (roleRevealHandler) Phase() Phase { return PhaseRoleReveal }

func (roleRevealHandler) OnEnter(ctx *GameContext) {
	clear(ctx.Ready)
	ctx.SetTimer(ctx.Settings().RoleRevealDuration)
}

func (roleRevealHandler) OnExit(ctx *GameContext) {
	clear(ctx.Ready)
}

func (roleRevealHandler) Next(ctx *GameContext) Phase { return PhaseNight }

// Night actions are collected while this phase is active.
type nightHandler struct{}

func (nightHandler) Phase() Phase { return PhaseNight }

func (nightHandler) OnEnter(ctx *GameContext) {
	ctx.Game.CurrentTurn++
	clear(ctx.NightActions)

	// day effects end with the day
	ctx.expireEffects(card.TimingToday)

	mods := ctx.nightModifiers()
	for _, p := range ctx.Players {
		p.IsMuted = false
		p.HasShield = p.IsAlive && mods.Protected[p.ID]
	}

	ctx.SetTimer(ctx.Settings().NightDuration)
}

func (nightHandler) OnExit(ctx *GameContext) {}

func (nightHandler) Next(ctx *GameContext) Phase { return PhaseNightResults }

// Night resolution runs on entry, so deaths are visible before the next win check.
type nightResultsHandler struct{}

func (nightResultsHandler) Phase() Phase { return PhaseNightResults }

func (nightResultsHandler) OnEnter(ctx *GameContext) {
	actions := make([]*NightAction, 0, len(ctx.NightActions))
	for _, p := range ctx.Players {
		if a, ok := ctx.NightActions[p.ID]; ok {
			actions = append(actions, a)
		}
	}

	out := ResolveNight(NightInput{
		Turn:        ctx.CurrentTurn(),
		Players:     ctx.Players,
		Actions:     actions,
		BombTargets: ctx.BombTargets,
		Mods:        ctx.nightModifiers(),
		Rng:         ctx.rng,
	})

	for _, id := range out.ShieldsUsed {
		if p, ok := ctx.Player(id); ok && p.SurvivorShields > 0 {
			p.SurvivorShields--
		}
	}
	for _, id := range out.Protected {
		if p, ok := ctx.Player(id); ok && p.IsAlive {
			p.HasShield = true
		}
	}

	ctx.BombTargets = out.BombTargets
	for _, id := range out.Deaths {
		ctx.kill(id, CauseNight)
	}

	for _, p := range ctx.Players {
		ctx.PlayerNotes[p.ID] = append(ctx.PlayerNotes[p.ID], out.Notes[p.ID]...)
	}

	ctx.expireEffects(card.TimingNextNight, card.TimingPersistentShort)
	clear(ctx.NightActions)

	zap.L().Info(
		"night resolved",
		zap.String("room_id", ctx.RoomID),
		zap.Int("turn", ctx.CurrentTurn()),
		zap.Int("actions", len(actions)),
		zap.Strings("deaths", out.Deaths),
		zap.Strings("revived", out.Revived),
	)

	ctx.SetTimer(ctx.Settings().NightResultsDuration)
}

func (nightResultsHandler) OnExit(ctx *GameContext) {}

func (nightResultsHandler) Next(ctx *GameContext) Phase { return PhaseDeathAnnouncement }

// Drawers for the coming card round are chosen on the way out.
type deathAnnouncementHandler struct{}

func (deathAnnouncementHandler) Phase() Phase { return PhaseDeathAnnouncement }

func (deathAnnouncementHandler) OnEnter(ctx *GameContext) {
	ctx.SetTimer(ctx.Settings().DeathAnnouncementDuration)
}

func (deathAnnouncementHandler) OnExit(ctx *GameContext) {
	ctx.SelectedCardDrawers = nil
	ctx.CardDrawerIdx = 0

	n := min(ctx.Settings().CardDrawCount, ctx.CountAlive())
	if n <= 0 {
		return
	}

	alive := ctx.AlivePlayers()
	ids := make([]string, len(alive))
	for i, p := range alive {
		ids[i] = p.ID
	}
	ctx.rng.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
	ctx.SelectedCardDrawers = ids[:n]
}

func (deathAnnouncementHandler) Next(ctx *GameContext) Phase {
	if len(ctx.SelectedCardDrawers) > 0 {
		return PhaseCardDrawing
	}
	return PhaseDayDiscussion
}

// Each selected drawer gets one scan/confirm cycle; the timer restarts per drawer.
type cardDrawingHandler struct{}

func (cardDrawingHandler) Phase() Phase { return PhaseCardDrawing }

func (cardDrawingHandler) OnEnter(ctx *GameContext) {
	ctx.CardDrawerIdx = 0
	clear(ctx.pending)
	ctx.SetTimer(ctx.Settings().CardDrawDuration)
}

func (cardDrawingHandler) OnExit(ctx *GameContext) {
	clear(ctx.pending)
	ctx.CardDrawerIdx = len(ctx.SelectedCardDrawers)
}

func (cardDrawingHandler) Next(ctx *GameContext) Phase { return PhaseDayDiscussion }

type dayHandler struct{}

func (dayHandler) Phase() Phase { return PhaseDayDiscussion }

func (dayHandler) OnEnter(ctx *GameContext) {
	ctx.SetTimer(ctx.dayDuration())
}

func (dayHandler) OnExit(ctx *GameContext) {}

func (dayHandler) Next(ctx *GameContext) Phase { return PhaseVote }

type voteHandler struct{}

func (voteHandler) Phase() Phase { return PhaseVote }

func (voteHandler) OnEnter(ctx *GameContext) {
	clear(ctx.Votes)
	ctx.SetTimer(ctx.Settings().VoteDuration)
}

func (voteHandler) OnExit(ctx *GameContext) {}

func (voteHandler) Next(ctx *GameContext) Phase { return PhaseResolve }

// Votes are tallied on entry and cleared afterwards.
type resolveHandler struct{}

func (resolveHandler) Phase() Phase { return PhaseResolve }

func (resolveHandler) OnEnter(ctx *GameContext) {
	res := ResolveVotes(ctx.Votes, ctx.Players, ctx.voteModifiers())
	ctx.LastVote = &res

	if res.EliminatedID != "" {
		ctx.kill(res.EliminatedID, CauseVote)
		if p, ok := ctx.Player(res.EliminatedID); ok {
			for _, other := range ctx.Players {
				ctx.PlayerNotes[other.ID] = append(ctx.PlayerNotes[other.ID],
					fmt.Sprintf("%d. Gün: %s oylamayla elendi.", ctx.CurrentTurn(), p.Name))
			}
		}
	}

	zap.L().Info(
		"votes resolved",
		zap.String("room_id", ctx.RoomID),
		zap.Int("turn", ctx.CurrentTurn()),
		zap.Int("votes", len(ctx.Votes)),
		zap.String("eliminated", res.EliminatedID),
		zap.Bool("tie", res.Tie),
	)

	clear(ctx.Votes)
	ctx.SetTimer(ctx.Settings().ResolveDuration)
}

func (resolveHandler) OnExit(ctx *GameContext) {}

func (resolveHandler) Next(ctx *GameContext) Phase { return PhaseNight }

type endHandler struct{}

func (endHandler) Phase() Phase { return PhaseEnd }

func (endHandler) OnEnter(ctx *GameContext) {
	ctx.ClearTimer()
	ctx.SelectedCardDrawers = nil
	clear(ctx.pending)

	if ctx.Game == nil {
		return
	}
	if ctx.Game.WinningSide == SideNone {
		ctx.Game.WinningSide = EvaluateWin(ctx.Players).Winner
	}
	ended := ctx.now()
	ctx.Game.EndedAt = &ended
}

func (endHandler) OnExit(ctx *GameContext) {}

func (endHandler) Next(ctx *GameContext) Phase { return PhaseEnd }
