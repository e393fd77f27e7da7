package state

import (
	"traitors-be/internal/config"
	"traitors-be/internal/relay"
	"traitors-be/internal/service"
)

type AppState struct {
	Cfg     *config.AppConfig
	Hub     *relay.Hub
	RoomSvc *service.RoomService
}

func NewAppState(
	cfg *config.AppConfig,
	hub *relay.Hub,
	roomSvc *service.RoomService,
) *AppState {
	return &AppState{
		Cfg:     cfg,
		Hub:     hub,
		RoomSvc: roomSvc,
	}
}
