package websocket

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"traitors-be/internal/protocol"
	"traitors-be/internal/relay"
	"traitors-be/internal/state"
)

// JoinRoom upgrades the request and attaches the socket to a relay room. The first
// frame must be JOIN_ROOM.
func JoinRoom(appState *state.AppState) iris.Handler {
	opts := Options{
		RateLimit: appState.Cfg.Relay.RateLimit,
		RateBurst: appState.Cfg.Relay.RateBurst,
	}

	return func(ctx iris.Context) {
		conn, err := upgrader.Upgrade(
			ctx.ResponseWriter(),
			ctx.Request(),
			nil,
		)
		if err != nil {
			zap.L().Error("failed to upgrade to websocket", zap.Error(err))
			ctx.StatusCode(iris.StatusBadRequest)
			return
		}

		serveConn(appState.Hub, conn, ctx.RemoteAddr(), opts)
	}
}

func serveConn(hub *relay.Hub, conn *websocket.Conn, clientIP string, opts Options) {
	defer conn.Close()

	conn.SetReadLimit(maxFrameSize)
	conn.SetReadDeadline(time.Now().Add(HEARTBEAT_TIMEOUT))
	conn.SetPongHandler(heartbeatHandler(conn))

	_, msg, err := conn.ReadMessage()
	if err != nil {
		zap.L().Error(
			"failed to read first frame",
			zap.String("client_ip", clientIP),
			zap.Error(err),
		)
		return
	}

	env, err := protocol.Decode(msg)
	if err != nil {
		writeError(conn, protocol.ERR_BAD_REQUEST, err.Error())
		return
	}

	req := protocol.TryUnwrap[protocol.JoinRoomPayload](env, protocol.MSG_JOIN_ROOM)
	if req == nil {
		zap.L().Warn(
			"first frame is not JOIN_ROOM",
			zap.String("client_ip", clientIP),
			zap.String("type", env.Type),
		)
		writeError(conn, protocol.ERR_BAD_REQUEST, "first message must be JOIN_ROOM")
		return
	}

	member, err := hub.Join(req.RoomID, relay.JoinRequest{
		ID:    req.Player.ID,
		Token: req.Player.Token,
		Name:  req.Player.Name,
		IsBot: req.Player.IsBot,
	})
	if err != nil {
		writeError(conn, joinErrorCode(err), err.Error())
		return
	}

	playerID := member.ID()

	zap.L().Info(
		"player connected",
		zap.String("client_ip", clientIP),
		zap.String("room_id", req.RoomID),
		zap.String("player_id", playerID),
	)

	writeDoneCh := make(chan struct{})
	defer close(writeDoneCh)

	go writeLoop(conn, member, writeDoneCh, clientIP)

	limiter := opts.limiter()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
				websocket.CloseAbnormalClosure,
			) {
				zap.L().Warn(
					"failed to read frame",
					zap.String("player_id", playerID),
					zap.Error(err),
				)
			}
			break
		}

		if !limiter.Allow() {
			zap.L().Debug("rate limited, dropping frame", zap.String("player_id", playerID))
			continue
		}

		env, err := protocol.Decode(msg)
		if err != nil {
			zap.L().Debug(
				"dropping frame",
				zap.String("player_id", playerID),
				zap.Error(err),
			)
			continue
		}

		if err := member.Send(env); err != nil {
			zap.L().Info("room gone", zap.String("player_id", playerID), zap.Error(err))
			break
		}
	}

	member.Leave()

	zap.L().Info(
		"player disconnected",
		zap.String("client_ip", clientIP),
		zap.String("room_id", req.RoomID),
		zap.String("player_id", playerID),
	)
}

func writeLoop(conn *websocket.Conn, member *relay.Conn, doneCh <-chan struct{}, clientIP string) {
	ticker := time.NewTicker(HEARTBEAT_INTERVAL)
	defer ticker.Stop()

	for {
		select {
		case <-doneCh:
			return

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				zap.L().Warn(
					"failed to send ping",
					zap.String("client_ip", clientIP),
					zap.Error(err),
				)
				return
			}

		case env, ok := <-member.Recv():
			// kicked, replaced by a reconnect, or the room closed
			if !ok {
				conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				conn.WriteMessage(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				)
				conn.Close()
				return
			}

			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(env); err != nil {
				zap.L().Warn(
					"failed to write frame",
					zap.String("client_ip", clientIP),
					zap.Error(err),
				)
				conn.Close()
				return
			}
		}
	}
}

func writeError(conn *websocket.Conn, code, message string) {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(protocol.WrapError("", code, message)); err != nil {
		zap.L().Debug("failed to write error frame", zap.Error(err))
	}
}
