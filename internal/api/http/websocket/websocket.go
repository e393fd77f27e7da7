package websocket

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"traitors-be/internal/protocol"
	"traitors-be/internal/relay"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// NOTE: any origin for now, the party screens are served from LAN hosts
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

const (
	HEARTBEAT_INTERVAL = 30 * time.Second
	HEARTBEAT_TIMEOUT  = 45 * time.Second

	writeTimeout = 10 * time.Second
	maxFrameSize = 64 << 10
)

var heartbeatHandler = func(conn *websocket.Conn) func(string) error {
	return func(string) error {
		conn.SetReadDeadline(time.Now().Add(HEARTBEAT_TIMEOUT))
		return nil
	}
}

// Options tune one websocket connection.
type Options struct {
	RateLimit float64
	RateBurst int
}

func (o Options) limiter() *rate.Limiter {
	if o.RateLimit <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := o.RateBurst
	if burst <= 0 {
		burst = int(o.RateLimit) + 1
	}
	return rate.NewLimiter(rate.Limit(o.RateLimit), burst)
}

func joinErrorCode(err error) string {
	switch {
	case errors.Is(err, relay.ErrRoomNotFound), errors.Is(err, relay.ErrRoomClosed):
		return protocol.ERR_ROOM_NOT_FOUND
	case errors.Is(err, relay.ErrRoomLocked):
		return protocol.ERR_ROOM_LOCKED
	case errors.Is(err, relay.ErrRoomFull):
		return protocol.ERR_ROOM_FULL
	case errors.Is(err, relay.ErrKicked), errors.Is(err, relay.ErrSeatTaken):
		return protocol.ERR_FORBIDDEN
	default:
		return protocol.ERR_BAD_REQUEST
	}
}
