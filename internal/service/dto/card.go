package dto

import "traitors-be/internal/card"

// CardInfo is one printed card of the catalog.
type CardInfo struct {
	Code        string          `json:"code"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    card.Category   `json:"category"`
	Visibility  card.Visibility `json:"visibility"`
	Timing      card.Timing     `json:"timing"`
	Effect      card.EffectID   `json:"effectId"`
	Phases      []string        `json:"phases"`
	OncePerGame bool            `json:"oncePerGame"`
	NeedsTarget bool            `json:"needsTarget"`
}
