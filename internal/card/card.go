package card

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
)

// Timing decides when an effect takes hold.
type Timing string

const (
	// applied the moment the card is confirmed
	TimingImmediate Timing = "IMMEDIATE"
	// lasts for the current day and vote
	TimingToday Timing = "TODAY"
	// queued for the following night's resolution
	TimingNextNight Timing = "NEXT_NIGHT"
	// today and the following night
	TimingPersistentShort Timing = "PERSISTENT_SHORT"
)

type Category string

const (
	CategoryIndividual Category = "INDIVIDUAL"
	CategoryTarget     Category = "TARGET"
	CategoryGroup      Category = "GROUP"
	CategoryChaos      Category = "CHAOS"
)

type Visibility string

const (
	VisibilityPublic          Visibility = "PUBLIC"
	VisibilityPrivateToActor  Visibility = "PRIVATE_TO_ACTOR"
	VisibilityPrivateToTarget Visibility = "PRIVATE_TO_TARGET"
)

type EffectID string

type EffectDef struct {
	ID          EffectID       `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Timing      Timing         `json:"timing"`
	NeedsTarget bool           `json:"needsTarget"`
	Params      map[string]int `json:"params,omitempty"`
}

// Card is a printed card. Code is what the QR encodes.
type Card struct {
	Code        string     `json:"code"`
	Title       string     `json:"title"`
	Category    Category   `json:"category"`
	Phases      []string   `json:"phases"`
	Visibility  Visibility `json:"visibility"`
	Effect      EffectID   `json:"effect"`
	OncePerGame bool       `json:"oncePerGame"`
	Weight      int        `json:"weight"`
}

func (c Card) AllowedIn(phase string) bool {
	for _, p := range c.Phases {
		if p == phase {
			return true
		}
	}
	return false
}

var (
	ErrUnknownCard    = errors.New("unknown card")
	ErrWrongPhase     = errors.New("card cannot be played in this phase")
	ErrCardExhausted  = errors.New("card has already been played this game")
	ErrInvalidCode    = errors.New("invalid card code")
	ErrNoPlayableCard = errors.New("no playable card")
)

var (
	codeFinder  = regexp.MustCompile(`[A-Z]{2,8}-\d{4}`)
	codeManual  = regexp.MustCompile(`^[A-Z]{2,8}-\d{4}$`)
	cardsByCode map[string]Card
	effectsByID map[EffectID]EffectDef
)

func init() {
	cardsByCode = make(map[string]Card, len(cards))
	for _, c := range cards {
		cardsByCode[c.Code] = c
	}

	effectsByID = make(map[EffectID]EffectDef, len(effects))
	for _, e := range effects {
		effectsByID[e.ID] = e
	}
}

// ValidateManualCode checks a code typed in by hand.
func ValidateManualCode(code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !codeManual.MatchString(code) {
		return fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}
	return nil
}

// ParseCode extracts the card code from a scanned token. Tokens may be a bare code or
// any string that embeds one, such as a URL printed into the QR.
func ParseCode(token string) (string, bool) {
	code := codeFinder.FindString(strings.ToUpper(strings.TrimSpace(token)))
	return code, code != ""
}

func Catalog() []Card {
	out := make([]Card, len(cards))
	copy(out, cards)
	return out
}

func Effects() []EffectDef {
	out := make([]EffectDef, len(effects))
	copy(out, effects)
	return out
}

func Lookup(code string) (Card, bool) {
	c, ok := cardsByCode[strings.ToUpper(strings.TrimSpace(code))]
	return c, ok
}

func Effect(id EffectID) (EffectDef, bool) {
	e, ok := effectsByID[id]
	return e, ok
}

// Resolve maps a scanned token to a playable card. used holds the codes of once-per-game
// cards already played.
func Resolve(token, phase string, used map[string]bool) (Card, EffectDef, error) {
	code, ok := ParseCode(token)
	if !ok {
		return Card{}, EffectDef{}, fmt.Errorf("%w: %q", ErrUnknownCard, token)
	}

	c, ok := cardsByCode[code]
	if !ok {
		return Card{}, EffectDef{}, fmt.Errorf("%w: %s", ErrUnknownCard, code)
	}

	if !c.AllowedIn(phase) {
		return Card{}, EffectDef{}, fmt.Errorf("%w: %s in %s", ErrWrongPhase, code, phase)
	}

	if c.OncePerGame && used[c.Code] {
		return Card{}, EffectDef{}, fmt.Errorf("%w: %s", ErrCardExhausted, code)
	}

	return c, effectsByID[c.Effect], nil
}

// Draw picks a playable card at random, weighted by Card.Weight. Bots use it in place of
// a physical draw.
func Draw(rng *rand.Rand, phase string, used map[string]bool) (Card, error) {
	var (
		pool  []Card
		total int
	)
	for _, c := range cards {
		if !c.AllowedIn(phase) || (c.OncePerGame && used[c.Code]) || c.Weight <= 0 {
			continue
		}
		pool = append(pool, c)
		total += c.Weight
	}

	if total == 0 {
		return Card{}, ErrNoPlayableCard
	}

	pick := rng.IntN(total)
	for _, c := range pool {
		if pick < c.Weight {
			return c, nil
		}
		pick -= c.Weight
	}
	return pool[len(pool)-1], nil
}
