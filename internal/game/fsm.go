package game

import (
	"go.uber.org/zap"
)

// The game is split into ten phases. LOBBY is the initial phase and END is terminal:
//
//	LOBBY → ROLE_REVEAL → NIGHT → NIGHT_RESULTS → DEATH_ANNOUNCEMENT → [CARD_DRAWING]
//	      → DAY_DISCUSSION → VOTE → RESOLVE → (NIGHT | END)
type Phase string

const (
	PhaseLobby             Phase = "LOBBY"
	PhaseRoleReveal        Phase = "ROLE_REVEAL"
	PhaseNight             Phase = "NIGHT"
	PhaseNightResults      Phase = "NIGHT_RESULTS"
	PhaseDeathAnnouncement Phase = "DEATH_ANNOUNCEMENT"
	PhaseCardDrawing       Phase = "CARD_DRAWING"
	PhaseDayDiscussion     Phase = "DAY_DISCUSSION"
	PhaseVote              Phase = "VOTE"
	PhaseResolve           Phase = "RESOLVE"
	PhaseEnd               Phase = "END"
)

func (p Phase) Valid() bool {
	switch p {
	case PhaseLobby, PhaseRoleReveal, PhaseNight, PhaseNightResults, PhaseDeathAnnouncement,
		PhaseCardDrawing, PhaseDayDiscussion, PhaseVote, PhaseResolve, PhaseEnd:
		return true
	}
	return false
}

// InGame reports whether roles have been dealt and the game is still running.
func (p Phase) InGame() bool {
	return p != PhaseLobby && p != PhaseEnd
}

// PhaseHandler owns the enter/exit side effects of one phase and decides its successor.
type PhaseHandler interface {
	Phase() Phase

	OnEnter(ctx *GameContext)
	OnExit(ctx *GameContext)

	// Next is called after OnExit.
	Next(ctx *GameContext) Phase
}

// Machine drives the phase handlers. It is not safe for concurrent use; the owning
// session serializes every call.
type Machine struct {
	ctx     *GameContext
	handler PhaseHandler
}

func NewMachine(ctx *GameContext) *Machine {
	m := &Machine{
		ctx:     ctx,
		handler: newPhaseHandler(PhaseLobby),
	}
	m.handler.OnEnter(ctx)
	m.ctx.Phase = PhaseLobby
	return m
}

func (m *Machine) Phase() Phase {
	return m.handler.Phase()
}

// Advance moves to the successor of the current phase. The win condition is checked
// first and ends the game from any in-game phase.
func (m *Machine) Advance() Phase {
	from := m.handler.Phase()
	if from == PhaseEnd {
		return from
	}

	if m.checkWin() {
		m.handler.OnExit(m.ctx)
		m.switchPhase(PhaseEnd)
		return PhaseEnd
	}

	m.handler.OnExit(m.ctx)
	m.switchPhase(m.handler.Next(m.ctx))
	return m.handler.Phase()
}

// Jump forces a transition to the given phase, skipping the successor rules. Owner
// actions use it. Returning to the lobby bypasses the win check.
func (m *Machine) Jump(to Phase) Phase {
	if to != PhaseLobby && m.checkWin() {
		to = PhaseEnd
	}

	m.handler.OnExit(m.ctx)
	m.switchPhase(to)
	return m.handler.Phase()
}

func (m *Machine) checkWin() bool {
	if !m.handler.Phase().InGame() {
		return false
	}

	out := EvaluateWin(m.ctx.Players)
	if !out.GameEnded {
		return false
	}

	if m.ctx.Game != nil {
		m.ctx.Game.WinningSide = out.Winner
	}

	zap.L().Info(
		"game over",
		zap.String("room_id", m.ctx.RoomID),
		zap.String("winner", string(out.Winner)),
		zap.String("phase", string(m.handler.Phase())),
	)
	return true
}

func (m *Machine) switchPhase(next Phase) {
	handler := newPhaseHandler(next)
	if handler == nil {
		zap.L().Error(
			"unknown phase",
			zap.String("room_id", m.ctx.RoomID),
			zap.String("phase", string(next)),
		)
		return
	}

	prev := m.handler.Phase()
	m.handler = handler
	m.ctx.Phase = next
	if m.ctx.Game != nil {
		m.ctx.Game.Phase = next
	}

	m.handler.OnEnter(m.ctx)
	m.ctx.phaseChanged()

	zap.L().Debug(
		"phase switched",
		zap.String("room_id", m.ctx.RoomID),
		zap.String("from", string(prev)),
		zap.String("to", string(next)),
		zap.Int("turn", m.ctx.CurrentTurn()),
	)
}

func newPhaseHandler(p Phase) PhaseHandler {
	switch p {
	case PhaseLobby:
		return lobbyHandler{}
	case PhaseRoleReveal:
		return roleRevealHandler{}
	case PhaseNight:
		return nightHandler{}
	case PhaseNightResults:
		return nightResultsHandler{}
	case PhaseDeathAnnouncement:
		return deathAnnouncementHandler{}
	case PhaseCardDrawing:
		return cardDrawingHandler{}
	case PhaseDayDiscussion:
		return dayHandler{}
	case PhaseVote:
		return voteHandler{}
	case PhaseResolve:
		return resolveHandler{}
	case PhaseEnd:
		return endHandler{}
	}
	return nil
}
