package dto

import "traitors-be/internal/game"

type CreateRoomRequest struct {
	OwnerName  string `json:"ownerName"`
	MaxPlayers int    `json:"maxPlayers"`
}

type CreateRoomResponse struct {
	RoomID      string `json:"roomId"`
	OwnerID     string `json:"ownerId"`
	AuthorityID string `json:"authorityId"`
	// the owner joins with ownerId and this token
	OwnerToken string `json:"ownerToken"`
}

type RoomInfoResponse struct {
	RoomID     string     `json:"roomId"`
	OwnerID    string     `json:"ownerId"`
	MaxPlayers int        `json:"maxPlayers"`
	IsLocked   bool       `json:"isLocked"`
	Phase      game.Phase `json:"phase"`
	Players    []Player   `json:"players"`
}
