package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traitors-be/internal/card"
	"traitors-be/internal/game"
	"traitors-be/internal/protocol"
	"traitors-be/internal/relay"
	"traitors-be/internal/service/dto"
	"traitors-be/internal/session"
)

func newTestService(t *testing.T) (*RoomService, *relay.Hub) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	hub := relay.NewHub(relay.Config{})
	svc := NewRoomService(ctx, hub, Config{
		Session:  session.Config{TickInterval: 20 * time.Millisecond},
		Defaults: game.DefaultSettings(),
		MaxBots:  2,
	})

	t.Cleanup(func() {
		cancel()
		hub.Close()
	})
	return svc, hub
}

func TestCreateRoom(t *testing.T) {
	svc, hub := newTestService(t)

	_, err := svc.CreateRoom(dto.CreateRoomRequest{})
	assert.ErrorIs(t, err, ErrOwnerNameRequired)

	resp, err := svc.CreateRoom(dto.CreateRoomRequest{OwnerName: "Ali", MaxPlayers: 6})
	require.NoError(t, err)
	assert.Len(t, resp.RoomID, 6)
	assert.NotEmpty(t, resp.OwnerID)
	assert.NotEmpty(t, resp.OwnerToken)

	_, err = hub.Join(resp.RoomID, relay.JoinRequest{ID: resp.AuthorityID, Name: "Mallory"})
	assert.ErrorIs(t, err, relay.ErrSeatTaken)
	_, err = hub.Join(resp.RoomID, relay.JoinRequest{ID: resp.OwnerID, Name: "Mallory"})
	assert.ErrorIs(t, err, relay.ErrSeatTaken)

	info, err := hub.RoomInfo(resp.RoomID)
	require.NoError(t, err)
	assert.Equal(t, resp.AuthorityID, info.AuthorityID)
	assert.Empty(t, info.Members, "authority is not a listed member")

	room, err := svc.RoomInfo(resp.RoomID)
	require.NoError(t, err)
	assert.Equal(t, game.PhaseLobby, room.Phase)
	assert.Equal(t, 6, room.MaxPlayers)

	_, err = svc.RoomInfo("NOPE00")
	assert.ErrorIs(t, err, relay.ErrRoomNotFound)
}

func TestRoomClosesWithSession(t *testing.T) {
	svc, hub := newTestService(t)

	resp, err := svc.CreateRoom(dto.CreateRoomRequest{OwnerName: "Ali"})
	require.NoError(t, err)

	svc.Close()

	assert.Eventually(t, func() bool {
		_, err := hub.RoomInfo(resp.RoomID)
		return err != nil
	}, time.Second, 10*time.Millisecond)

	_, err = svc.RoomInfo(resp.RoomID)
	assert.ErrorIs(t, err, relay.ErrRoomNotFound)
}

func TestGameWithBots(t *testing.T) {
	svc, hub := newTestService(t)

	resp, err := svc.CreateRoom(dto.CreateRoomRequest{OwnerName: "Ali"})
	require.NoError(t, err)

	owner, err := hub.Join(resp.RoomID, relay.JoinRequest{ID: resp.OwnerID, Token: resp.OwnerToken, Name: "Ali"})
	require.NoError(t, err)
	defer owner.Leave()

	_, err = svc.AddBot(resp.RoomID, dto.AddBotRequest{OwnerID: "someone"})
	assert.ErrorIs(t, err, relay.ErrNotOwner)
	_, err = svc.AddBot(resp.RoomID, dto.AddBotRequest{OwnerID: resp.OwnerID})
	assert.ErrorIs(t, err, relay.ErrNotOwner, "owner id alone is public")

	added, err := svc.AddBot(resp.RoomID, dto.AddBotRequest{OwnerID: resp.OwnerID, OwnerToken: resp.OwnerToken})
	require.NoError(t, err)
	assert.Equal(t, "Bot 1", added.Bot.Name)
	assert.True(t, added.Bot.IsBot)

	_, err = svc.AddBot(resp.RoomID, dto.AddBotRequest{OwnerID: resp.OwnerID, OwnerToken: resp.OwnerToken, Name: "Robot"})
	require.NoError(t, err)

	_, err = svc.AddBot(resp.RoomID, dto.AddBotRequest{OwnerID: resp.OwnerID, OwnerToken: resp.OwnerToken})
	assert.ErrorIs(t, err, ErrTooManyBots)

	room, err := svc.RoomInfo(resp.RoomID)
	require.NoError(t, err)
	assert.Len(t, room.Players, 3)

	settings := game.Settings{TraitorCount: 1, CardDrawCount: 1}
	require.NoError(t, owner.Send(protocol.WrapTo(resp.AuthorityID, protocol.MSG_START_GAME, protocol.StartGamePayload{Settings: settings})))
	require.NoError(t, owner.Send(protocol.WrapTo(resp.AuthorityID, protocol.MSG_PLAYER_READY, protocol.PlayerReadyPayload{})))

	// bots ready themselves; the game leaves the role screen once everyone has
	assert.Eventually(t, func() bool {
		info, err := svc.RoomInfo(resp.RoomID)
		return err == nil && info.Phase != game.PhaseLobby && info.Phase != game.PhaseRoleReveal
	}, 2*time.Second, 10*time.Millisecond)

	_, err = svc.AddBot(resp.RoomID, dto.AddBotRequest{OwnerID: resp.OwnerID, OwnerToken: resp.OwnerToken})
	assert.ErrorIs(t, err, game.ErrGameInProgress)
}

func TestCards(t *testing.T) {
	svc, _ := newTestService(t)

	cards := svc.Cards()
	require.Len(t, cards, len(card.Catalog()))
	for _, c := range cards {
		assert.NotEmpty(t, c.Description, c.Code)
	}
}

func TestCardQR(t *testing.T) {
	svc, _ := newTestService(t)

	png, err := svc.CardQR("KART-0003")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	_, err = svc.CardQR("KART-9999")
	assert.Error(t, err)

	_, err = svc.CardQR("not a card")
	assert.Error(t, err)
}
