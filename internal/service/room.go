package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"traitors-be/internal/bot"
	"traitors-be/internal/card"
	"traitors-be/internal/game"
	"traitors-be/internal/relay"
	"traitors-be/internal/service/dto"
	"traitors-be/internal/session"
)

type Config struct {
	Session      session.Config
	Defaults     game.Settings
	BotThinkTime time.Duration
	MaxBots      int
	QRSize       int
}

// RoomService wires relay rooms to their authority sessions and bots.
type RoomService struct {
	ctx   context.Context
	hub   *relay.Hub
	cfg   Config
	state *roomServiceState
}

type roomServiceState struct {
	mu sync.RWMutex

	rooms map[string]*roomHandle
}

type roomHandle struct {
	id          string
	ownerID     string
	ownerToken  string
	authorityID string
	session     *session.Session
	cancel      context.CancelFunc
	ctx         context.Context
	bots        int
}

// NewRoomService runs every session and bot under ctx; cancelling it stops them all.
func NewRoomService(ctx context.Context, hub *relay.Hub, cfg Config) *RoomService {
	if cfg.QRSize <= 0 {
		cfg.QRSize = 320
	}

	return &RoomService{
		ctx: ctx,
		hub: hub,
		cfg: cfg,
		state: &roomServiceState{
			rooms: make(map[string]*roomHandle),
		},
	}
}

func (rs *RoomService) CreateRoom(req dto.CreateRoomRequest) (dto.CreateRoomResponse, error) {
	if req.OwnerName == "" {
		return dto.CreateRoomResponse{}, ErrOwnerNameRequired
	}

	ownerID := game.ShortID()
	ownerToken := game.GenID()
	authorityID := "auth-" + game.ShortID()

	roomID, err := rs.hub.CreateRoom(ownerID, ownerToken, req.MaxPlayers)
	if err != nil {
		return dto.CreateRoomResponse{}, fmt.Errorf("create room: %w", err)
	}

	conn, err := rs.hub.Join(roomID, relay.JoinRequest{ID: authorityID, Hidden: true})
	if err != nil {
		rs.hub.CloseRoom(roomID)
		return dto.CreateRoomResponse{}, fmt.Errorf("attach authority: %w", err)
	}

	ctx, cancel := context.WithCancel(rs.ctx)
	handle := &roomHandle{
		id:          roomID,
		ownerID:     ownerID,
		ownerToken:  ownerToken,
		authorityID: authorityID,
		session:     session.New(roomID, conn, rs.cfg.Session, game.WithDefaults(rs.cfg.Defaults)),
		cancel:      cancel,
		ctx:         ctx,
	}

	rs.state.mu.Lock()
	rs.state.rooms[roomID] = handle
	rs.state.mu.Unlock()

	go rs.runSession(handle)

	zap.S().Infof("room %s created by %s (%s)", roomID, req.OwnerName, ownerID)

	return dto.CreateRoomResponse{
		RoomID:      roomID,
		OwnerID:     ownerID,
		AuthorityID: authorityID,
		OwnerToken:  ownerToken,
	}, nil
}

// runSession owns the room's lifetime: when the authority stops, the room goes too.
func (rs *RoomService) runSession(h *roomHandle) {
	err := h.session.Run(h.ctx)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, session.ErrRoomClosed) {
		zap.L().Error("authority session failed", zap.String("room_id", h.id), zap.Error(err))
	}

	rs.state.mu.Lock()
	delete(rs.state.rooms, h.id)
	rs.state.mu.Unlock()

	h.cancel()
	rs.hub.CloseRoom(h.id)

	zap.L().Info("room released", zap.String("room_id", h.id))
}

// AddBot seats a bot. Only the owner may do it, and only in the lobby.
func (rs *RoomService) AddBot(roomID string, req dto.AddBotRequest) (dto.AddBotResponse, error) {
	h, err := rs.room(roomID)
	if err != nil {
		return dto.AddBotResponse{}, err
	}
	if req.OwnerID != h.ownerID || req.OwnerToken != h.ownerToken {
		return dto.AddBotResponse{}, relay.ErrNotOwner
	}
	if h.session.Phase() != game.PhaseLobby {
		return dto.AddBotResponse{}, game.ErrGameInProgress
	}

	rs.state.mu.Lock()
	if h.bots >= rs.cfg.MaxBots {
		rs.state.mu.Unlock()
		return dto.AddBotResponse{}, ErrTooManyBots
	}
	h.bots++
	n := h.bots
	rs.state.mu.Unlock()

	name := req.Name
	if name == "" {
		name = botName(n)
	}

	conn, err := rs.hub.Join(roomID, relay.JoinRequest{Name: name, IsBot: true})
	if err != nil {
		rs.state.mu.Lock()
		h.bots--
		rs.state.mu.Unlock()
		return dto.AddBotResponse{}, err
	}

	b := bot.New(conn, bot.WithThinkTime(rs.cfg.BotThinkTime))
	go func() {
		if err := b.Run(h.ctx); err != nil && !errors.Is(err, context.Canceled) {
			zap.L().Warn("bot stopped", zap.String("room_id", roomID), zap.String("player_id", b.ID()), zap.Error(err))
		}
	}()

	zap.L().Info("bot added", zap.String("room_id", roomID), zap.String("player_id", b.ID()), zap.String("name", name))

	return dto.AddBotResponse{
		Bot: dto.Player{ID: b.ID(), Name: name, IsBot: true},
	}, nil
}

func (rs *RoomService) RoomInfo(roomID string) (dto.RoomInfoResponse, error) {
	h, err := rs.room(roomID)
	if err != nil {
		return dto.RoomInfoResponse{}, err
	}

	info, err := rs.hub.RoomInfo(roomID)
	if err != nil {
		return dto.RoomInfoResponse{}, err
	}

	players := make([]dto.Player, 0, len(info.Members))
	for _, m := range info.Members {
		players = append(players, dto.Player{ID: m.ID, Name: m.Name, IsBot: m.IsBot})
	}

	return dto.RoomInfoResponse{
		RoomID:     info.ID,
		OwnerID:    info.OwnerID,
		MaxPlayers: info.MaxPlayers,
		IsLocked:   info.IsLocked,
		Phase:      h.session.Phase(),
		Players:    players,
	}, nil
}

// Cards lists the printed catalog.
func (rs *RoomService) Cards() []dto.CardInfo {
	catalog := card.Catalog()
	out := make([]dto.CardInfo, 0, len(catalog))
	for _, c := range catalog {
		def, _ := card.Effect(c.Effect)
		out = append(out, dto.CardInfo{
			Code:        c.Code,
			Title:       c.Title,
			Description: def.Description,
			Category:    c.Category,
			Visibility:  c.Visibility,
			Timing:      def.Timing,
			Effect:      c.Effect,
			Phases:      c.Phases,
			OncePerGame: c.OncePerGame,
			NeedsTarget: def.NeedsTarget,
		})
	}
	return out
}

// CardQR renders the PNG QR code printed on a card.
func (rs *RoomService) CardQR(code string) ([]byte, error) {
	if err := card.ValidateManualCode(code); err != nil {
		return nil, err
	}

	c, ok := card.Lookup(code)
	if !ok {
		return nil, fmt.Errorf("%w: %s", card.ErrUnknownCard, code)
	}

	png, err := qrcode.Encode(c.Code, qrcode.Medium, rs.cfg.QRSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr for %s: %w", c.Code, err)
	}
	return png, nil
}

// Close stops every session; their rooms close with them.
func (rs *RoomService) Close() {
	rs.state.mu.RLock()
	defer rs.state.mu.RUnlock()

	for _, h := range rs.state.rooms {
		h.cancel()
	}
}

func (rs *RoomService) room(roomID string) (*roomHandle, error) {
	rs.state.mu.RLock()
	defer rs.state.mu.RUnlock()

	h, ok := rs.state.rooms[roomID]
	if !ok {
		return nil, relay.ErrRoomNotFound
	}
	return h, nil
}
