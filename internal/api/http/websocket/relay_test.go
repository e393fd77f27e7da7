package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traitors-be/internal/protocol"
	"traitors-be/internal/relay"
)

func newTestServer(t *testing.T) (*relay.Hub, string) {
	t.Helper()

	hub := relay.NewHub(relay.Config{MaxPlayers: 8})
	t.Cleanup(hub.Close)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serveConn(hub, conn, r.RemoteAddr, Options{})
	}))
	t.Cleanup(srv.Close)

	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, env protocol.Envelope) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(env))
}

func readUntil(t *testing.T, conn *websocket.Conn, msgType string) protocol.Envelope {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var env protocol.Envelope
		require.NoError(t, conn.ReadJSON(&env))
		if env.Type == msgType {
			return env
		}
	}
}

func joinAs(t *testing.T, url, roomID, id, name string) (*websocket.Conn, string) {
	t.Helper()

	player := protocol.JoinPlayer{ID: id, Name: name}
	if id == "owner" {
		player.Token = "owner-token"
	}

	conn := dial(t, url)
	send(t, conn, protocol.Wrap(protocol.MSG_JOIN_ROOM, protocol.JoinRoomPayload{
		RoomID: roomID,
		Player: player,
	}))

	env := readUntil(t, conn, protocol.MSG_ROOM_JOINED)
	joined := protocol.TryUnwrap[protocol.RoomJoinedPayload](env, protocol.MSG_ROOM_JOINED)
	require.NotNil(t, joined)
	assert.Equal(t, roomID, joined.RoomID)
	return conn, joined.PlayerID
}

func TestServeConnRelaysBetweenSockets(t *testing.T) {
	hub, url := newTestServer(t)

	roomID, err := hub.CreateRoom("owner", "owner-token", 8)
	require.NoError(t, err)

	alice, aliceID := joinAs(t, url, roomID, "owner", "Alice")
	bob, _ := joinAs(t, url, roomID, "", "Bob")
	assert.Equal(t, "owner", aliceID)

	// garbage is dropped without closing the socket
	require.NoError(t, bob.WriteMessage(websocket.TextMessage, []byte("not json")))
	send(t, bob, protocol.Envelope{Type: "NOT_A_TYPE"})
	send(t, bob, protocol.Wrap(protocol.MSG_VOTE_CAST, protocol.VoteCastPayload{TargetID: "owner"}))

	env := readUntil(t, alice, protocol.MSG_VOTE_CAST)
	assert.NotEqual(t, aliceID, env.PlayerID)
	assert.Equal(t, roomID, env.RoomID)
	assert.NotZero(t, env.Timestamp)
}

func TestServeConnRequiresJoinFirst(t *testing.T) {
	_, url := newTestServer(t)

	conn := dial(t, url)
	send(t, conn, protocol.Wrap(protocol.MSG_VOTE_CAST, protocol.VoteCastPayload{}))

	env := readUntil(t, conn, protocol.MSG_ERROR)
	p := protocol.TryUnwrap[protocol.ErrorPayload](env, protocol.MSG_ERROR)
	require.NotNil(t, p)
	assert.Equal(t, protocol.ERR_BAD_REQUEST, p.Code)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestServeConnJoinErrors(t *testing.T) {
	hub, url := newTestServer(t)

	roomID, err := hub.CreateRoom("owner", "owner-token", 1)
	require.NoError(t, err)
	joinAs(t, url, roomID, "owner", "Alice")

	tests := []struct {
		name   string
		roomID string
		want   string
	}{
		{"unknown room", "ZZZZZZ", protocol.ERR_ROOM_NOT_FOUND},
		{"full room", roomID, protocol.ERR_ROOM_FULL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := dial(t, url)
			send(t, conn, protocol.Wrap(protocol.MSG_JOIN_ROOM, protocol.JoinRoomPayload{
				RoomID: tt.roomID,
				Player: protocol.JoinPlayer{Name: "Late"},
			}))

			env := readUntil(t, conn, protocol.MSG_ERROR)
			p := protocol.TryUnwrap[protocol.ErrorPayload](env, protocol.MSG_ERROR)
			require.NotNil(t, p)
			assert.Equal(t, tt.want, p.Code)
		})
	}
}

func TestServeConnClosesKickedSocket(t *testing.T) {
	hub, url := newTestServer(t)

	roomID, err := hub.CreateRoom("owner", "owner-token", 8)
	require.NoError(t, err)

	alice, _ := joinAs(t, url, roomID, "owner", "Alice")
	bob, bobID := joinAs(t, url, roomID, "", "Bob")

	send(t, alice, protocol.Wrap(protocol.MSG_KICK_PLAYER, protocol.KickPlayerPayload{PlayerID: bobID}))

	readUntil(t, bob, protocol.MSG_PLAYER_KICKED)

	bob.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := bob.ReadMessage(); err != nil {
			break
		}
	}

	require.Eventually(t, func() bool {
		info, err := hub.RoomInfo(roomID)
		return err == nil && len(info.Members) == 1
	}, 2*time.Second, 20*time.Millisecond)
}

func TestOptionsLimiter(t *testing.T) {
	unlimited := Options{}.limiter()
	for range 100 {
		assert.True(t, unlimited.Allow())
	}

	limited := Options{RateLimit: 1, RateBurst: 2}.limiter()
	assert.True(t, limited.Allow())
	assert.True(t, limited.Allow())
	assert.False(t, limited.Allow())
}
