package dto

// Player is a seat as the HTTP API shows it. Roles never leave the websocket.
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	IsBot bool   `json:"isBot"`
}

type AddBotRequest struct {
	OwnerID    string `json:"ownerId"`
	OwnerToken string `json:"ownerToken"`
	// optional, a numbered name is used when empty
	Name string `json:"name"`
}

type AddBotResponse struct {
	Bot Player `json:"bot"`
}
