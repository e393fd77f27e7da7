package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traitors-be/internal/config"
	"traitors-be/internal/game"
	"traitors-be/internal/relay"
	"traitors-be/internal/service"
	"traitors-be/internal/service/dto"
	"traitors-be/internal/state"
)

func newTestApp(t *testing.T) http.Handler {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	hub := relay.NewHub(relay.Config{})
	svc := service.NewRoomService(ctx, hub, service.Config{Defaults: game.DefaultSettings(), MaxBots: 4})
	t.Cleanup(func() {
		cancel()
		hub.Close()
	})

	app := NewApp(state.NewAppState(&config.AppConfig{LogLevel: "error"}, hub, svc))
	require.NoError(t, app.Build())
	return app
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRoomEndpoints(t *testing.T) {
	app := newTestApp(t)

	rec := do(t, app, http.MethodPost, "/api/v1/rooms/create", `{"ownerName":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, app, http.MethodPost, "/api/v1/rooms/create", `{"ownerName":"Ali","maxPlayers":8}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var created dto.CreateRoomResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.RoomID)

	rec = do(t, app, http.MethodGet, "/api/v1/rooms/"+created.RoomID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var room dto.RoomInfoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &room))
	assert.Equal(t, game.PhaseLobby, room.Phase)
	assert.Equal(t, 8, room.MaxPlayers)

	rec = do(t, app, http.MethodGet, "/api/v1/rooms/NOPE00", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, app, http.MethodPost, "/api/v1/rooms/"+created.RoomID+"/bots", `{"ownerId":"intruder"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, app, http.MethodPost, "/api/v1/rooms/"+created.RoomID+"/bots", `{"ownerId":"`+created.OwnerID+`","ownerToken":"`+created.OwnerToken+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var bot dto.AddBotResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bot))
	assert.True(t, bot.Bot.IsBot)
}

func TestCardEndpoints(t *testing.T) {
	app := newTestApp(t)

	rec := do(t, app, http.MethodGet, "/api/v1/cards", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var cards []dto.CardInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cards))
	assert.NotEmpty(t, cards)

	rec = do(t, app, http.MethodGet, "/api/v1/cards/KART-0001/qr", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "image/png"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = do(t, app, http.MethodGet, "/api/v1/cards/garbage/qr", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	rec := do(t, newTestApp(t), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
