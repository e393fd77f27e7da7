package relay

import (
	"context"
	"crypto/rand"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomLocked   = errors.New("room is locked")
	ErrRoomFull     = errors.New("room is full")
	ErrRoomClosed   = errors.New("room is closed")
	ErrNameRequired = errors.New("player name is required")
	ErrKicked       = errors.New("player was kicked from this room")
	ErrSeatTaken    = errors.New("player id belongs to another member")
	ErrTokenMissing = errors.New("owner token is required")
	ErrNotOwner     = errors.New("only the room owner can do this")
	ErrTimeout      = errors.New("room did not answer in time")
)

const (
	codeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength  = 6

	requestTimeout = 5 * time.Second
)

type Config struct {
	MaxPlayers      int
	IdleTimeout     time.Duration
	CleanupInterval time.Duration
	OutboxSize      int
}

func (c Config) withDefaults() Config {
	if c.MaxPlayers <= 0 {
		c.MaxPlayers = 16
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 10 * time.Minute
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = time.Minute
	}
	if c.OutboxSize <= 0 {
		c.OutboxSize = 64
	}
	return c
}

// Hub owns every room of the process. Each room is served by its own goroutine; the hub
// only keeps the index and reaps idle rooms.
type Hub struct {
	cfg   Config
	state *hubState
}

type hubState struct {
	mu    sync.RWMutex
	rooms map[string]*room
}

func NewHub(cfg Config) *Hub {
	return &Hub{
		cfg: cfg.withDefaults(),
		state: &hubState{
			rooms: make(map[string]*room),
		},
	}
}

// Run reaps idle rooms until ctx is done, then closes every room.
func (h *Hub) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.Close()
			return nil

		case now := <-ticker.C:
			h.cleanup(now)
		}
	}
}

func (h *Hub) cleanup(now time.Time) {
	h.state.mu.Lock()
	defer h.state.mu.Unlock()

	for roomID, r := range h.state.rooms {
		since := r.emptySince.Load()
		if since == 0 || now.Sub(time.Unix(0, since)) < h.cfg.IdleTimeout {
			continue
		}

		zap.L().Info("room idle, cleaning up", zap.String("room_id", roomID))
		r.close()
		delete(h.state.rooms, roomID)
	}
}

// Close shuts down every room and their members.
func (h *Hub) Close() {
	h.state.mu.Lock()
	defer h.state.mu.Unlock()

	for roomID, r := range h.state.rooms {
		r.close()
		delete(h.state.rooms, roomID)
	}
}

// CreateRoom registers a room whose owner will join later under ownerID, presenting
// ownerToken.
func (h *Hub) CreateRoom(ownerID, ownerToken string, maxPlayers int) (string, error) {
	if ownerToken == "" {
		return "", ErrTokenMissing
	}
	if maxPlayers <= 0 || maxPlayers > h.cfg.MaxPlayers {
		maxPlayers = h.cfg.MaxPlayers
	}

	h.state.mu.Lock()
	defer h.state.mu.Unlock()

	var code string
	for {
		c, err := newRoomCode()
		if err != nil {
			return "", err
		}
		if _, taken := h.state.rooms[c]; !taken {
			code = c
			break
		}
	}

	r := newRoom(code, ownerID, ownerToken, maxPlayers, h.cfg.OutboxSize)
	h.state.rooms[code] = r
	go r.loop()

	zap.L().Info("room created", zap.String("room_id", code), zap.String("owner_id", ownerID))

	return code, nil
}

// Join admits a member. Passing a known ID reconnects that member, replacing its
// previous connection.
func (h *Hub) Join(roomID string, req JoinRequest) (*Conn, error) {
	r, err := h.room(roomID)
	if err != nil {
		return nil, err
	}

	resCh := make(chan joinResult, 1)
	if err := r.send(joinMsg{req: req, res: resCh}); err != nil {
		return nil, err
	}

	select {
	case res := <-resCh:
		if res.err != nil {
			zap.L().Info(
				"join rejected",
				zap.String("room_id", roomID),
				zap.String("name", req.Name),
				zap.Error(res.err),
			)
			return nil, res.err
		}
		return res.conn, nil

	case <-r.done:
		return nil, ErrRoomClosed

	case <-time.After(requestTimeout):
		return nil, ErrTimeout
	}
}

// RoomInfo returns the public view of a room.
func (h *Hub) RoomInfo(roomID string) (RoomInfo, error) {
	r, err := h.room(roomID)
	if err != nil {
		return RoomInfo{}, err
	}

	resCh := make(chan RoomInfo, 1)
	if err := r.send(infoMsg{res: resCh}); err != nil {
		return RoomInfo{}, err
	}

	select {
	case info := <-resCh:
		return info, nil
	case <-r.done:
		return RoomInfo{}, ErrRoomClosed
	case <-time.After(requestTimeout):
		return RoomInfo{}, ErrTimeout
	}
}

func (h *Hub) CloseRoom(roomID string) {
	h.state.mu.Lock()
	defer h.state.mu.Unlock()

	if r, ok := h.state.rooms[roomID]; ok {
		r.close()
		delete(h.state.rooms, roomID)
	}
}

func (h *Hub) room(roomID string) (*room, error) {
	h.state.mu.RLock()
	defer h.state.mu.RUnlock()

	r, ok := h.state.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

func newRoomCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = codeCharset[int(b)%len(codeCharset)]
	}
	return string(buf), nil
}
