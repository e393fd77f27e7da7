package relay

import (
	"sync"

	"traitors-be/internal/protocol"
)

// Conn is one member's handle on a room. Recv is closed when the member leaves, is
// kicked, reconnects elsewhere, or the room shuts down.
type Conn struct {
	RoomID   string
	MemberID string
	// presented with MemberID to take the seat back after a disconnect
	Token string

	room      *room
	out       chan protocol.Envelope
	leaveOnce sync.Once
}

func (c *Conn) ID() string {
	return c.MemberID
}

// Send publishes env to the room. The relay overwrites PlayerID, RoomID and Timestamp.
func (c *Conn) Send(env protocol.Envelope) error {
	return c.room.send(publishMsg{from: c.MemberID, out: c.out, env: env})
}

func (c *Conn) Recv() <-chan protocol.Envelope {
	return c.out
}

func (c *Conn) Leave() {
	c.leaveOnce.Do(func() {
		_ = c.room.send(leaveMsg{memberID: c.MemberID, out: c.out})
	})
}
