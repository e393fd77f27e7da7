package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"go.uber.org/zap"

	"traitors-be/internal/card"
)

var (
	ErrWrongPhase     = errors.New("not allowed in the current phase")
	ErrNotOwner       = errors.New("only the room owner can do this")
	ErrUnknownPlayer  = errors.New("unknown player")
	ErrPlayerDead     = errors.New("player is dead")
	ErrInvalidAction  = errors.New("invalid night action")
	ErrInvalidTarget  = errors.New("invalid target")
	ErrAlreadyVoted   = errors.New("player has already voted")
	ErrNotYourTurn    = errors.New("not your turn to draw")
	ErrNoPendingCard  = errors.New("no card waiting for confirmation")
	ErrGameInProgress = errors.New("a game is already in progress")
)

// RosterMember is a room member as seen by the engine.
type RosterMember struct {
	ID      string
	Name    string
	IsOwner bool
	IsBot   bool
}

// PhaseInfo is the payload of a phase change.
type PhaseInfo struct {
	Phase               Phase    `json:"phase"`
	TimeRemaining       int      `json:"timeRemaining"`
	CurrentTurn         int      `json:"currentTurn"`
	SelectedCardDrawers []string `json:"selectedCardDrawers,omitempty"`
	CurrentCardDrawer   string   `json:"currentCardDrawer,omitempty"`
}

type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithSeed fixes the seed of every game the engine starts.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.seed = &seed
	}
}

// WithDefaults sets the values used for settings the owner leaves at zero.
func WithDefaults(s Settings) Option {
	return func(e *Engine) {
		e.defaults = s
	}
}

// Engine is the authoritative game state of one room. It is not safe for concurrent use:
// the owning session calls it from a single goroutine.
type Engine struct {
	ctx      *GameContext
	machine  *Machine
	now      func() time.Time
	seed     *uint64
	defaults Settings
}

func NewEngine(roomID, authorityID string, opts ...Option) *Engine {
	e := &Engine{
		now:      time.Now,
		defaults: DefaultSettings(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.ctx = newGameContext(roomID, authorityID, e.newRng(e.nextSeed()), e.now)
	e.machine = NewMachine(e.ctx)
	return e
}

func (e *Engine) nextSeed() uint64 {
	if e.seed != nil {
		return *e.seed
	}
	return rand.Uint64()
}

func (e *Engine) newRng(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func (e *Engine) Phase() Phase {
	return e.machine.Phase()
}

// Revision changes whenever anything a snapshot shows may have changed.
func (e *Engine) Revision() uint64 {
	return e.ctx.revision
}

// PhaseSeq changes on every phase transition and every card drawer change.
func (e *Engine) PhaseSeq() uint64 {
	return e.ctx.phaseSeq
}

func (e *Engine) Game() *Game {
	if e.ctx.Game == nil {
		return nil
	}
	g := *e.ctx.Game
	return &g
}

func (e *Engine) Players() []Player {
	out := make([]Player, len(e.ctx.Players))
	for i, p := range e.ctx.Players {
		out[i] = *p
	}
	return out
}

func (e *Engine) Player(id string) (Player, bool) {
	p, ok := e.ctx.Player(id)
	if !ok {
		return Player{}, false
	}
	return *p, true
}

func (e *Engine) IsOwner(playerID string) bool {
	p, ok := e.ctx.Player(playerID)
	return ok && p.IsOwner
}

func (e *Engine) PhaseInfo() PhaseInfo {
	return PhaseInfo{
		Phase:               e.ctx.Phase,
		TimeRemaining:       e.ctx.TimeRemaining(e.now()),
		CurrentTurn:         e.ctx.CurrentTurn(),
		SelectedCardDrawers: slices.Clone(e.ctx.SelectedCardDrawers),
		CurrentCardDrawer:   e.ctx.CurrentCardDrawer(),
	}
}

// SyncRoster mirrors the relay's member list. In the lobby the roster is rebuilt from
// it; during a game only names and ownership are refreshed, nobody is added or removed.
func (e *Engine) SyncRoster(members []RosterMember) bool {
	if e.Phase() != PhaseLobby {
		changed := false
		for _, m := range members {
			p, ok := e.ctx.Player(m.ID)
			if !ok {
				continue
			}
			if p.Name != m.Name || p.IsOwner != m.IsOwner {
				p.Name = m.Name
				p.IsOwner = m.IsOwner
				changed = true
			}
		}
		if changed {
			e.ctx.touch()
		}
		return changed
	}

	players := make([]*Player, 0, len(members))
	for _, m := range members {
		if m.ID == e.ctx.AuthorityID {
			continue
		}
		players = append(players, &Player{
			ID:      m.ID,
			Name:    m.Name,
			IsOwner: m.IsOwner,
			IsBot:   m.IsBot,
			IsAlive: true,
		})
	}

	if slices.EqualFunc(players, e.ctx.Players, func(a, b *Player) bool { return *a == *b }) {
		return false
	}

	e.ctx.Players = players
	e.ctx.touch()
	return true
}

// Start deals roles and opens ROLE_REVEAL.
func (e *Engine) Start(requesterID string, s Settings) error {
	if e.Phase() != PhaseLobby {
		return ErrGameInProgress
	}
	if !e.IsOwner(requesterID) {
		return ErrNotOwner
	}

	s = s.WithDefaults(e.defaults)
	if s.CardDrawCount < 0 {
		return fmt.Errorf("start game: %w: card draw count cannot be negative", ErrInvalidSettings)
	}

	seed := e.nextSeed()
	e.ctx.rng = e.newRng(seed)

	if err := AssignRoles(e.ctx.Players, s, e.ctx.rng); err != nil {
		return fmt.Errorf("start game: %w", err)
	}

	e.ctx.Game = &Game{
		ID:        GenID(),
		Phase:     PhaseLobby,
		Settings:  s,
		Seed:      seed,
		StartedAt: e.now(),
	}

	e.machine.Advance()

	zap.L().Info(
		"game started",
		zap.String("room_id", e.ctx.RoomID),
		zap.String("game_id", e.ctx.Game.ID),
		zap.Int("players", len(e.ctx.Players)),
		zap.Uint64("seed", seed),
	)
	return nil
}

// MarkReady records a player as done with the role screen. Once every living player is
// ready the game moves on.
func (e *Engine) MarkReady(playerID string) error {
	if e.Phase() != PhaseRoleReveal {
		return ErrWrongPhase
	}
	if _, err := e.livePlayer(playerID); err != nil {
		return err
	}

	e.ctx.Ready[playerID] = true
	e.ctx.touch()

	for _, p := range e.ctx.AlivePlayers() {
		if !e.ctx.Ready[p.ID] {
			return nil
		}
	}
	e.machine.Advance()
	return nil
}

// SubmitNightAction stores a night action. A resubmission replaces the player's
// previous action.
func (e *Engine) SubmitNightAction(a NightAction) error {
	if e.Phase() != PhaseNight {
		return ErrWrongPhase
	}

	actor, err := e.livePlayer(a.PlayerID)
	if err != nil {
		return err
	}
	if !a.ActionType.Valid() || !canPerform(actor.Role, a.ActionType) {
		return fmt.Errorf("%w: %s cannot %s", ErrInvalidAction, actor.Role, a.ActionType)
	}

	if a.ActionType == ActionBombDetonate {
		a.TargetID = ""
	} else {
		target, ok := e.ctx.Player(a.TargetID)
		if !ok {
			return fmt.Errorf("%w: %q", ErrInvalidTarget, a.TargetID)
		}
		if !target.IsAlive && actor.Role != RoleDoctor {
			return fmt.Errorf("%w: %s is dead", ErrInvalidTarget, target.Name)
		}
		if a.ActionType == ActionKill && target.Role.IsTraitorAligned() {
			return fmt.Errorf("%w: cannot attack a traitor", ErrInvalidTarget)
		}
	}

	if a.Timestamp == 0 {
		a.Timestamp = e.now().UnixMilli()
	}
	a.Result = nil

	e.ctx.NightActions[a.PlayerID] = &a
	e.ctx.touch()
	return nil
}

// NightAction returns the action a player submitted tonight, if any.
func (e *Engine) NightAction(playerID string) (NightAction, bool) {
	a, ok := e.ctx.NightActions[playerID]
	if !ok {
		return NightAction{}, false
	}
	return *a, true
}

// SubmitVote records a vote. Votes are final. Once every living player has voted the
// vote closes early.
func (e *Engine) SubmitVote(voterID, targetID string) error {
	if e.Phase() != PhaseVote {
		return ErrWrongPhase
	}
	if _, err := e.livePlayer(voterID); err != nil {
		return err
	}
	if _, voted := e.ctx.Votes[voterID]; voted {
		return ErrAlreadyVoted
	}
	if targetID != VoteSkip {
		if _, err := e.livePlayer(targetID); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidTarget, err)
		}
	}

	e.ctx.Votes[voterID] = targetID
	e.ctx.touch()

	if len(e.ctx.Votes) >= e.ctx.CountAlive() {
		e.machine.Advance()
	}
	return nil
}

// SkipToVote lets the owner cut the discussion short.
func (e *Engine) SkipToVote(requesterID string) error {
	if !e.IsOwner(requesterID) {
		return ErrNotOwner
	}
	if e.Phase() != PhaseDayDiscussion {
		return ErrWrongPhase
	}
	e.machine.Jump(PhaseVote)
	return nil
}

// ReturnToLobby drops the current game and keeps the roster.
func (e *Engine) ReturnToLobby(requesterID string) error {
	if !e.IsOwner(requesterID) {
		return ErrNotOwner
	}
	if e.Phase() == PhaseLobby {
		return ErrWrongPhase
	}
	e.machine.Jump(PhaseLobby)
	return nil
}

// Advance moves the game forward one phase. Timer expiry and the owner both use it.
func (e *Engine) Advance() Phase {
	if e.Phase() == PhaseLobby {
		return PhaseLobby
	}
	return e.machine.Advance()
}

// Tick fires the phase timer if it has expired. It reports whether anything changed.
func (e *Engine) Tick(now time.Time) bool {
	if !e.ctx.Expired(now) {
		return false
	}

	if e.Phase() == PhaseCardDrawing {
		zap.L().Debug(
			"card drawer timed out",
			zap.String("room_id", e.ctx.RoomID),
			zap.String("player_id", e.ctx.CurrentCardDrawer()),
		)
		e.nextDrawer()
		return true
	}

	e.machine.Advance()
	return true
}

// ScanCard resolves a scanned token for a player and holds the card until confirmed.
func (e *Engine) ScanCard(playerID, token string) (CardPreview, error) {
	if err := e.canPlayCard(playerID); err != nil {
		return CardPreview{}, err
	}

	c, def, err := card.Resolve(token, string(e.Phase()), e.ctx.UsedCards)
	if err != nil {
		return CardPreview{}, err
	}

	e.ctx.pending[playerID] = pendingCard{card: c, effect: def}

	return CardPreview{
		Code:        c.Code,
		EffectID:    def.ID,
		Title:       def.Title,
		Text:        def.Description,
		NeedsTarget: def.NeedsTarget,
	}, nil
}

// ConfirmCard applies a previously scanned card. In CARD_DRAWING it also hands the turn
// to the next drawer.
func (e *Engine) ConfirmCard(playerID string, effectID card.EffectID, targetID string) (CardApplication, error) {
	if err := e.canPlayCard(playerID); err != nil {
		return CardApplication{}, err
	}

	pc, ok := e.ctx.pending[playerID]
	if !ok || (effectID != "" && pc.effect.ID != effectID) {
		return CardApplication{}, ErrNoPendingCard
	}

	actor, _ := e.ctx.Player(playerID)

	var target *Player
	if pc.effect.NeedsTarget {
		t, ok := e.ctx.Player(targetID)
		if !ok || !t.IsAlive || t.ID == playerID {
			return CardApplication{}, fmt.Errorf("%w: %q", ErrInvalidTarget, targetID)
		}
		target = t
	}

	delete(e.ctx.pending, playerID)
	if pc.card.OncePerGame {
		e.ctx.UsedCards[pc.card.Code] = true
	}

	app := e.ctx.applyEffect(pc.card, pc.effect, actor, target)
	e.ctx.touch()

	zap.L().Info(
		"card applied",
		zap.String("room_id", e.ctx.RoomID),
		zap.String("player_id", playerID),
		zap.String("card", pc.card.Code),
		zap.String("effect", string(pc.effect.ID)),
	)

	if e.Phase() == PhaseCardDrawing {
		e.nextDrawer()
	}
	return app, nil
}

// PlayableCard draws a random legal card for a bot drawer.
func (e *Engine) PlayableCard(rng *rand.Rand) (card.Card, error) {
	return card.Draw(rng, string(e.Phase()), e.ctx.UsedCards)
}

func (e *Engine) canPlayCard(playerID string) error {
	if _, err := e.livePlayer(playerID); err != nil {
		return err
	}

	switch e.Phase() {
	case PhaseCardDrawing:
		if e.ctx.CurrentCardDrawer() != playerID {
			return ErrNotYourTurn
		}
	case PhaseDayDiscussion:
	default:
		return fmt.Errorf("%w: %w", card.ErrWrongPhase, ErrWrongPhase)
	}
	return nil
}

func (e *Engine) nextDrawer() {
	clear(e.ctx.pending)
	e.ctx.CardDrawerIdx++

	if e.ctx.CardDrawerIdx >= len(e.ctx.SelectedCardDrawers) {
		e.machine.Advance()
		return
	}

	e.ctx.SetTimer(e.ctx.Settings().CardDrawDuration)
	e.ctx.phaseChanged()
}

func (e *Engine) livePlayer(id string) (*Player, error) {
	p, ok := e.ctx.Player(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlayer, id)
	}
	if !p.IsAlive {
		return nil, fmt.Errorf("%w: %s", ErrPlayerDead, p.Name)
	}
	return p, nil
}
