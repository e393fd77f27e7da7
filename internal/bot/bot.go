// Package bot plays a seat through the same wire protocol as a browser client.
package bot

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"traitors-be/internal/card"
	"traitors-be/internal/follower"
	"traitors-be/internal/game"
	"traitors-be/internal/protocol"
)

type Transport interface {
	ID() string
	Send(env protocol.Envelope) error
	Recv() <-chan protocol.Envelope
	Leave()
}

// a drawer that keeps hitting used cards gives up and lets the timer run out
const maxScanAttempts = 3

type Bot struct {
	conn  Transport
	state follower.State
	rng   *rand.Rand
	think time.Duration
	now   func() time.Time

	// decisions already taken, keyed by game, turn and phase
	done     map[string]bool
	scans    int
	outbox   []protocol.Envelope
	thinking *time.Timer
}

type Option func(*Bot)

func WithThinkTime(d time.Duration) Option {
	return func(b *Bot) {
		b.think = d
	}
}

func WithSeed(seed uint64) Option {
	return func(b *Bot) {
		b.rng = rand.New(rand.NewPCG(seed, seed^0x5851f42d4c957f2d))
	}
}

func New(conn Transport, opts ...Option) *Bot {
	b := &Bot{
		conn: conn,
		rng:  rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:  time.Now,
		done: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bot) ID() string {
	return b.conn.ID()
}

// Run plays until ctx is cancelled, the bot is kicked or the room closes.
func (b *Bot) Run(ctx context.Context) error {
	defer b.conn.Leave()

	for {
		var wake <-chan time.Time
		if b.thinking != nil {
			wake = b.thinking.C
		}

		select {
		case <-ctx.Done():
			return ctx.Err()

		case env, ok := <-b.conn.Recv():
			if !ok {
				return nil
			}
			b.handle(env)
			if b.state.Kicked {
				return nil
			}

		case <-wake:
			b.thinking = nil
			b.sendAll()
		}

		if len(b.outbox) > 0 && b.thinking == nil {
			if b.think <= 0 {
				b.sendAll()
			} else {
				b.thinking = time.NewTimer(b.think)
			}
		}
	}
}

func (b *Bot) handle(env protocol.Envelope) {
	own := env.PlayerID == b.conn.ID()
	if !b.state.Apply(env, own, b.now()) {
		return
	}

	if env.Type == protocol.MSG_CARD_PREVIEW {
		b.onPreview()
		return
	}
	b.decide()
}

func (b *Bot) sendAll() {
	for _, env := range b.outbox {
		if err := b.conn.Send(env); err != nil {
			zap.L().Debug("bot failed to send", zap.String("player_id", b.conn.ID()), zap.Error(err))
		}
	}
	b.outbox = nil
}

// intent queues a message for the authority.
func (b *Bot) intent(msgType string, payload any) {
	b.outbox = append(b.outbox, protocol.WrapTo(b.state.AuthorityID, msgType, payload))
}

// once runs fn the first time key is seen.
func (b *Bot) once(key string, fn func()) {
	if b.done[key] {
		return
	}
	b.done[key] = true
	fn()
}

func (b *Bot) decide() {
	me, ok := b.state.Me()
	if !ok || !me.IsAlive || b.state.GameID == "" {
		return
	}

	snap := b.state.Snapshot
	key := fmt.Sprintf("%s/%d/%s", b.state.GameID, snap.CurrentTurn, b.state.Phase)

	switch b.state.Phase {
	case game.PhaseRoleReveal:
		b.once(key, func() {
			b.intent(protocol.MSG_PLAYER_READY, protocol.PlayerReadyPayload{})
		})

	case game.PhaseNight:
		if snap.MyAction != nil {
			return
		}
		b.once(key, func() {
			if action, ok := b.nightAction(me); ok {
				b.intent(protocol.MSG_NIGHT_ACTION_UPDATED, protocol.NightActionUpdatedPayload{Action: action})
			}
		})

	case game.PhaseVote:
		if _, voted := snap.Votes[me.ID]; voted {
			return
		}
		b.once(key, func() {
			b.intent(protocol.MSG_VOTE_CAST, protocol.VoteCastPayload{VoterID: me.ID, TargetID: b.voteTarget(me)})
		})

	case game.PhaseCardDrawing:
		if !b.state.IsMyDraw() {
			return
		}
		b.once(key+"/"+me.ID, func() {
			b.scans = 0
			b.scan()
		})
	}
}

func (b *Bot) nightAction(me game.Player) (game.NightAction, bool) {
	actions := game.AllowedActions(me.Role)
	if len(actions) == 0 {
		return game.NightAction{}, false
	}

	kind := actions[b.rng.IntN(len(actions))]
	if kind == game.ActionBombDetonate {
		if len(b.state.Snapshot.BombTargets) == 0 {
			kind = game.ActionBombPlant
		} else {
			return game.NightAction{PlayerID: me.ID, ActionType: kind}, true
		}
	}

	var candidates []string
	for _, p := range b.state.Snapshot.Players {
		switch {
		case !p.IsAlive:
		case me.Role == game.RoleSurvivor:
			if p.ID == me.ID {
				candidates = append(candidates, p.ID)
			}
		case p.ID == me.ID:
		case kind == game.ActionKill && p.Role.IsTraitorAligned():
		default:
			candidates = append(candidates, p.ID)
		}
	}
	if len(candidates) == 0 {
		return game.NightAction{}, false
	}

	return game.NightAction{
		PlayerID:   me.ID,
		TargetID:   candidates[b.rng.IntN(len(candidates))],
		ActionType: kind,
	}, true
}

// voteTarget picks a living player other than the bot, or SKIP now and then.
func (b *Bot) voteTarget(me game.Player) string {
	var candidates []string
	for _, p := range b.state.Snapshot.Players {
		if p.IsAlive && p.ID != me.ID {
			candidates = append(candidates, p.ID)
		}
	}
	if len(candidates) == 0 || b.rng.IntN(len(candidates)+1) == 0 {
		return game.VoteSkip
	}
	return candidates[b.rng.IntN(len(candidates))]
}

func (b *Bot) scan() {
	c, err := card.Draw(b.rng, string(game.PhaseCardDrawing), nil)
	if err != nil {
		return
	}
	b.scans++
	b.intent(protocol.MSG_CARD_QR_SCANNED, protocol.CardQRScannedPayload{Token: c.Code})
}

func (b *Bot) onPreview() {
	preview := b.state.Preview
	if preview == nil || !b.state.IsMyDraw() {
		return
	}

	if preview.Error != "" {
		if b.scans < maxScanAttempts {
			b.scan()
		}
		return
	}

	confirm := protocol.CardConfirmPayload{EffectID: preview.EffectID}
	if preview.NeedsTarget {
		me, _ := b.state.Me()
		var targets []string
		for _, p := range b.state.Snapshot.Players {
			if p.IsAlive && p.ID != me.ID {
				targets = append(targets, p.ID)
			}
		}
		if len(targets) == 0 {
			return
		}
		confirm.TargetID = targets[b.rng.IntN(len(targets))]
	}
	b.intent(protocol.MSG_CARD_CONFIRM, confirm)
}
