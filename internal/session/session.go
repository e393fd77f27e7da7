// Package session runs the authority of one room: it joins the relay as a hidden
// member, owns the game engine and is the only writer of canonical state.
package session

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"traitors-be/internal/game"
	"traitors-be/internal/protocol"
)

// Transport is a member's connection to a room.
type Transport interface {
	ID() string
	Send(env protocol.Envelope) error
	Recv() <-chan protocol.Envelope
	Leave()
}

var ErrRoomClosed = errors.New("room closed")

type Config struct {
	TickInterval      time.Duration
	TimerSyncInterval time.Duration
	Clock             func() time.Time
}

func (c Config) withDefaults() Config {
	if c.TickInterval <= 0 {
		c.TickInterval = time.Second
	}
	if c.TimerSyncInterval <= 0 {
		c.TimerSyncInterval = 5 * time.Second
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	return c
}

type Session struct {
	roomID string
	conn   Transport
	engine *game.Engine
	cfg    Config

	ownerID string
	members []protocol.Member

	sentPhaseSeq uint64
	sentRevision uint64
	lastSync     time.Time

	// read by other goroutines
	phase atomic.Value
}

func New(roomID string, conn Transport, cfg Config, opts ...game.Option) *Session {
	cfg = cfg.withDefaults()
	opts = append([]game.Option{game.WithClock(cfg.Clock)}, opts...)

	s := &Session{
		roomID: roomID,
		conn:   conn,
		engine: game.NewEngine(roomID, conn.ID(), opts...),
		cfg:    cfg,
	}
	s.phase.Store(s.engine.Phase())
	return s
}

// Phase is the last published phase. Safe to call from any goroutine.
func (s *Session) Phase() game.Phase {
	return s.phase.Load().(game.Phase)
}

// Run serves the room until ctx is cancelled or the relay closes the connection.
func (s *Session) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	zap.L().Info("authority session started", zap.String("room_id", s.roomID))

	for {
		select {
		case <-ctx.Done():
			s.conn.Leave()
			return ctx.Err()

		case env, ok := <-s.conn.Recv():
			if !ok {
				zap.L().Info("authority session stopped, room closed", zap.String("room_id", s.roomID))
				return ErrRoomClosed
			}
			s.handle(env)

		case <-ticker.C:
			s.tick(s.cfg.Clock())
		}

		s.flush()
	}
}

func (s *Session) tick(now time.Time) {
	if s.engine.Tick(now) {
		return
	}

	if !s.engine.Phase().InGame() || now.Sub(s.lastSync) < s.cfg.TimerSyncInterval {
		return
	}

	info := s.engine.PhaseInfo()
	s.broadcast(protocol.MSG_TIMER_SYNC, protocol.TimerSyncPayload{
		Phase:         info.Phase,
		TimeRemaining: info.TimeRemaining,
		InitiatorID:   s.conn.ID(),
	})
	s.lastSync = now
}

// flush publishes whatever changed since the last call: a phase change goes to
// everyone, snapshots go to each member separately.
func (s *Session) flush() {
	if seq := s.engine.PhaseSeq(); seq != s.sentPhaseSeq {
		s.sentPhaseSeq = seq
		s.lastSync = s.cfg.Clock()
		s.phase.Store(s.engine.Phase())

		s.broadcast(protocol.MSG_PHASE_CHANGED, protocol.PhaseChangedPayload{
			PhaseInfo:   s.engine.PhaseInfo(),
			InitiatorID: s.conn.ID(),
		})
	}

	if rev := s.engine.Revision(); rev != s.sentRevision {
		s.sentRevision = rev
		for _, m := range s.members {
			s.sendSnapshot(m.ID)
		}
	}
}

func (s *Session) sendSnapshot(to string) {
	s.unicast(to, protocol.MSG_STATE_SNAPSHOT, protocol.StateSnapshotPayload{
		Snapshot:    s.engine.Snapshot(to),
		InitiatorID: s.conn.ID(),
	})
}

func (s *Session) broadcast(msgType string, payload any) {
	if err := s.conn.Send(protocol.Wrap(msgType, payload)); err != nil {
		zap.L().Warn("failed to broadcast", zap.String("room_id", s.roomID), zap.String("type", msgType), zap.Error(err))
	}
}

func (s *Session) unicast(to, msgType string, payload any) {
	if err := s.conn.Send(protocol.WrapTo(to, msgType, payload)); err != nil {
		zap.L().Warn("failed to unicast", zap.String("room_id", s.roomID), zap.String("type", msgType), zap.Error(err))
	}
}

func (s *Session) reject(env protocol.Envelope, err error) {
	zap.L().Info(
		"intent rejected",
		zap.String("room_id", s.roomID),
		zap.String("player_id", env.PlayerID),
		zap.String("type", env.Type),
		zap.Error(err),
	)

	code := protocol.ERR_REJECTED
	if errors.Is(err, game.ErrNotOwner) {
		code = protocol.ERR_FORBIDDEN
	}
	s.unicast(env.PlayerID, protocol.MSG_ERROR, protocol.ErrorPayload{Code: code, Message: err.Error()})
}

func (s *Session) syncRoster(ownerID string, members []protocol.Member) {
	s.ownerID = ownerID
	s.members = members

	roster := make([]game.RosterMember, 0, len(members))
	for _, m := range members {
		roster = append(roster, game.RosterMember{
			ID:      m.ID,
			Name:    m.Name,
			IsOwner: m.ID == ownerID,
			IsBot:   m.IsBot,
		})
	}
	s.engine.SyncRoster(roster)
}
