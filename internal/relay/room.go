package relay

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"traitors-be/internal/protocol"
)

// JoinRequest describes who is joining. Hidden members (the authority) receive
// everything but never show up in the member list or count toward capacity.
// Taking an ID the room already knows requires the token issued with it.
type JoinRequest struct {
	ID     string
	Token  string
	Name   string
	IsBot  bool
	Hidden bool
}

type RoomInfo struct {
	ID          string            `json:"roomId"`
	OwnerID     string            `json:"ownerId"`
	AuthorityID string            `json:"authorityId,omitempty"`
	MaxPlayers  int               `json:"maxPlayers"`
	IsLocked    bool              `json:"isLocked"`
	Members     []protocol.Member `json:"players"`
}

type member struct {
	id     string
	name   string
	isBot  bool
	hidden bool
	token  string
	out    chan protocol.Envelope
}

type roomMsg interface {
	isRoomMsg()
}

type joinMsg struct {
	req JoinRequest
	res chan<- joinResult
}

type joinResult struct {
	conn *Conn
	err  error
}

type leaveMsg struct {
	memberID string
	out      chan protocol.Envelope
}

type publishMsg struct {
	from string
	out  chan protocol.Envelope
	env  protocol.Envelope
}

type infoMsg struct {
	res chan<- RoomInfo
}

func (joinMsg) isRoomMsg()    {}
func (leaveMsg) isRoomMsg()   {}
func (publishMsg) isRoomMsg() {}
func (infoMsg) isRoomMsg()    {}

type room struct {
	id string

	reqCh     chan roomMsg
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	// unix nanos since the last visible member left, 0 while occupied
	emptySince atomic.Int64

	// owned by loop
	ownerID     string
	authorityID string
	maxPlayers  int
	outboxSize  int
	locked      bool
	members     []*member
	banned      map[string]bool

	// reconnect token of every id that ever held a seat, the owner's from the start
	tokens map[string]string
}

func newRoom(id, ownerID, ownerToken string, maxPlayers, outboxSize int) *room {
	r := &room{
		id:         id,
		reqCh:      make(chan roomMsg, 64),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		ownerID:    ownerID,
		maxPlayers: maxPlayers,
		outboxSize: outboxSize,
		tokens:     map[string]string{ownerID: ownerToken},
		banned:     make(map[string]bool),
	}
	r.emptySince.Store(time.Now().UnixNano())
	return r
}

func (r *room) send(msg roomMsg) error {
	select {
	case r.reqCh <- msg:
		return nil
	case <-r.done:
		return ErrRoomClosed
	}
}

func (r *room) close() {
	r.closeOnce.Do(func() { close(r.quit) })
}

func (r *room) loop() {
	defer func() {
		for _, m := range r.members {
			close(m.out)
		}
		r.members = nil
		close(r.done)

		zap.L().Info("room loop exited", zap.String("room_id", r.id))
	}()

	for {
		select {
		case <-r.quit:
			return

		case msg := <-r.reqCh:
			switch msg := msg.(type) {
			case joinMsg:
				conn, err := r.handleJoin(msg.req)
				msg.res <- joinResult{conn: conn, err: err}

			case leaveMsg:
				r.handleLeave(msg.memberID, msg.out)

			case publishMsg:
				r.handlePublish(msg)

			case infoMsg:
				msg.res <- r.info()
			}
		}
	}
}

func (r *room) handleJoin(req JoinRequest) (*Conn, error) {
	if req.ID != "" && r.banned[req.ID] {
		return nil, ErrKicked
	}

	token, known := r.tokens[req.ID]
	if known && (req.Hidden || req.Token != token) {
		zap.L().Warn(
			"join rejected, seat belongs to another member",
			zap.String("room_id", r.id),
			zap.String("player_id", req.ID),
		)
		return nil, ErrSeatTaken
	}

	if m := r.member(req.ID); m != nil {
		if m.hidden {
			return nil, ErrSeatTaken
		}

		close(m.out)
		m.out = make(chan protocol.Envelope, r.outboxSize)
		if req.Name != "" {
			m.name = req.Name
		}

		zap.L().Info("member reconnected", zap.String("room_id", r.id), zap.String("player_id", m.id))

		r.afterJoin(m)
		return r.connFor(m), nil
	}

	if req.Name == "" && !req.Hidden {
		return nil, ErrNameRequired
	}
	if r.locked && !known {
		return nil, ErrRoomLocked
	}
	if !req.Hidden && r.visibleCount() >= r.maxPlayers {
		return nil, ErrRoomFull
	}

	id := req.ID
	if id == "" {
		id = uuid.New().String()[:8]
	}
	if !known {
		token = uuid.NewString()
	}

	m := &member{
		id:     id,
		name:   req.Name,
		isBot:  req.IsBot,
		hidden: req.Hidden,
		token:  token,
		out:    make(chan protocol.Envelope, r.outboxSize),
	}
	r.members = append(r.members, m)
	r.tokens[id] = token
	if m.hidden {
		r.authorityID = id
	}

	zap.L().Info(
		"member joined",
		zap.String("room_id", r.id),
		zap.String("player_id", id),
		zap.String("name", m.name),
		zap.Bool("bot", m.isBot),
		zap.Bool("hidden", m.hidden),
	)

	r.afterJoin(m)
	return r.connFor(m), nil
}

func (r *room) afterJoin(m *member) {
	r.deliver(m, protocol.Wrap(protocol.MSG_ROOM_JOINED, protocol.RoomJoinedPayload{
		RoomID:      r.id,
		PlayerID:    m.id,
		Token:       m.token,
		OwnerID:     r.ownerID,
		AuthorityID: r.authorityID,
		MaxPlayers:  r.maxPlayers,
		IsLocked:    r.locked,
		Players:     r.visibleMembers(),
	}))

	if !m.hidden {
		r.broadcastList()
	}
	r.updateEmptySince()
}

func (r *room) handleLeave(id string, out chan protocol.Envelope) {
	m := r.member(id)
	// stale leave from a replaced connection
	if m == nil || m.out != out {
		return
	}

	r.remove(m)

	zap.L().Info("member left", zap.String("room_id", r.id), zap.String("player_id", id))

	if !m.hidden {
		r.broadcastList()
	}
	r.updateEmptySince()
}

func (r *room) handlePublish(msg publishMsg) {
	sender := r.member(msg.from)
	if sender == nil || sender.out != msg.out {
		return
	}

	env := msg.env
	env.PlayerID = sender.id
	env.RoomID = r.id
	env.Timestamp = time.Now().UnixMilli()

	switch env.Type {
	case protocol.MSG_JOIN_ROOM:
		return

	case protocol.MSG_KICK_PLAYER:
		r.handleKick(sender, env)
		return

	case protocol.MSG_LOCK_ROOM:
		r.handleLock(sender, env)
		return
	}

	if env.To != "" {
		if to := r.member(env.To); to != nil {
			r.deliver(to, env)
		}
		return
	}

	for _, m := range r.members {
		if m.id != sender.id {
			r.deliver(m, env)
		}
	}
}

func (r *room) handleKick(sender *member, env protocol.Envelope) {
	if sender.id != r.ownerID {
		r.deliver(sender, protocol.WrapError(sender.id, protocol.ERR_FORBIDDEN, ErrNotOwner.Error()))
		return
	}

	payload := protocol.TryUnwrap[protocol.KickPlayerPayload](env, protocol.MSG_KICK_PLAYER)
	if payload == nil {
		return
	}

	target := r.member(payload.PlayerID)
	if target == nil || target.hidden || target.id == r.ownerID {
		r.deliver(sender, protocol.WrapError(sender.id, protocol.ERR_BAD_REQUEST, "cannot kick this player"))
		return
	}

	r.broadcast(protocol.Wrap(protocol.MSG_PLAYER_KICKED, protocol.PlayerKickedPayload{PlayerID: target.id}))

	r.banned[target.id] = true
	r.remove(target)

	zap.L().Info("member kicked", zap.String("room_id", r.id), zap.String("player_id", target.id))

	r.broadcastList()
	r.updateEmptySince()
}

func (r *room) handleLock(sender *member, env protocol.Envelope) {
	if sender.id != r.ownerID {
		r.deliver(sender, protocol.WrapError(sender.id, protocol.ERR_FORBIDDEN, ErrNotOwner.Error()))
		return
	}

	payload := protocol.TryUnwrap[protocol.LockRoomPayload](env, protocol.MSG_LOCK_ROOM)
	if payload == nil {
		return
	}

	r.locked = payload.Locked
	zap.L().Info("room lock changed", zap.String("room_id", r.id), zap.Bool("locked", r.locked))

	r.broadcastList()
}

func (r *room) broadcastList() {
	r.broadcast(protocol.Wrap(protocol.MSG_PLAYER_LIST_UPDATED, protocol.PlayerListUpdatedPayload{
		OwnerID:  r.ownerID,
		IsLocked: r.locked,
		Players:  r.visibleMembers(),
	}))
}

func (r *room) broadcast(env protocol.Envelope) {
	for _, m := range r.members {
		r.deliver(m, env)
	}
}

// deliver never blocks the room; a member that cannot keep up loses the message.
func (r *room) deliver(m *member, env protocol.Envelope) {
	env.RoomID = r.id

	select {
	case m.out <- env:
	default:
		zap.L().Debug(
			"outbox full, dropping message",
			zap.String("room_id", r.id),
			zap.String("player_id", m.id),
			zap.String("type", env.Type),
		)
	}
}

func (r *room) remove(m *member) {
	r.members = slices.DeleteFunc(r.members, func(x *member) bool { return x == m })
	close(m.out)
}

func (r *room) member(id string) *member {
	if id == "" {
		return nil
	}
	for _, m := range r.members {
		if m.id == id {
			return m
		}
	}
	return nil
}

func (r *room) visibleCount() int {
	n := 0
	for _, m := range r.members {
		if !m.hidden {
			n++
		}
	}
	return n
}

func (r *room) visibleMembers() []protocol.Member {
	list := make([]protocol.Member, 0, len(r.members))
	for _, m := range r.members {
		if m.hidden {
			continue
		}
		list = append(list, protocol.Member{
			ID:      m.id,
			Name:    m.name,
			IsOwner: m.id == r.ownerID,
			IsBot:   m.isBot,
		})
	}
	return list
}

func (r *room) updateEmptySince() {
	if r.visibleCount() > 0 {
		r.emptySince.Store(0)
		return
	}
	if r.emptySince.Load() == 0 {
		r.emptySince.Store(time.Now().UnixNano())
	}
}

func (r *room) info() RoomInfo {
	return RoomInfo{
		ID:          r.id,
		OwnerID:     r.ownerID,
		AuthorityID: r.authorityID,
		MaxPlayers:  r.maxPlayers,
		IsLocked:    r.locked,
		Members:     r.visibleMembers(),
	}
}

func (r *room) connFor(m *member) *Conn {
	return &Conn{
		RoomID:   r.id,
		MemberID: m.id,
		Token:    m.token,
		room:     r,
		out:      m.out,
	}
}
