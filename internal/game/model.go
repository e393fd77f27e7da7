package game

import (
	"errors"
	"fmt"
	"time"
)

// Role is a player's secret role. DisplayRole may differ from Role for DELI.
type Role string

const (
	RoleTraitor       Role = "TRAITOR"
	RoleInnocent      Role = "INNOCENT"
	RoleDoctor        Role = "DOCTOR"
	RoleDeli          Role = "DELI"
	RoleGuardian      Role = "GUARDIAN"
	RoleEvilGuardian  Role = "EVIL_GUARDIAN"
	RoleWatcher       Role = "WATCHER"
	RoleEvilWatcher   Role = "EVIL_WATCHER"
	RoleDetective     Role = "DETECTIVE"
	RoleEvilDetective Role = "EVIL_DETECTIVE"
	RoleBomber        Role = "BOMBER"
	RoleSurvivor      Role = "SURVIVOR"
)

// AllRoles lists every role, in catalog order. Decoys are drawn from it.
var AllRoles = []Role{
	RoleTraitor, RoleInnocent, RoleDoctor, RoleDeli,
	RoleGuardian, RoleEvilGuardian, RoleWatcher, RoleEvilWatcher,
	RoleDetective, RoleEvilDetective, RoleBomber, RoleSurvivor,
}

// Special role slots. A slot with two entries contributes one of them, chosen at random.
var specialRoleSlots = [][]Role{
	{RoleDoctor},
	{RoleDeli},
	{RoleGuardian, RoleEvilGuardian},
	{RoleWatcher, RoleEvilWatcher},
	{RoleDetective, RoleEvilDetective},
	{RoleBomber},
	{RoleSurvivor},
}

// MaxSpecialRoles is the number of distinct special slots.
var MaxSpecialRoles = len(specialRoleSlots)

func (r Role) IsTraitorAligned() bool {
	switch r {
	case RoleTraitor, RoleEvilGuardian, RoleEvilWatcher, RoleEvilDetective:
		return true
	}
	return false
}

func (r Role) IsSpecial() bool {
	return r != "" && r != RoleTraitor && r != RoleInnocent
}

func (r Role) isGuardianType() bool {
	return r == RoleGuardian || r == RoleEvilGuardian
}

func (r Role) isWatcherType() bool {
	return r == RoleWatcher || r == RoleEvilWatcher
}

func (r Role) isDetectiveType() bool {
	return r == RoleDetective || r == RoleEvilDetective
}

// AllowedActions returns the night actions a role may submit.
func AllowedActions(r Role) []ActionType {
	switch r {
	case RoleTraitor:
		return []ActionType{ActionKill}
	case RoleDoctor, RoleGuardian, RoleEvilGuardian, RoleSurvivor:
		return []ActionType{ActionProtect}
	case RoleWatcher, RoleEvilWatcher, RoleDetective, RoleEvilDetective, RoleDeli:
		return []ActionType{ActionInvestigate}
	case RoleBomber:
		return []ActionType{ActionBombPlant, ActionBombDetonate}
	}
	return nil
}

func canPerform(r Role, t ActionType) bool {
	for _, allowed := range AllowedActions(r) {
		if allowed == t {
			return true
		}
	}
	return false
}

// Side is a winning faction.
type Side string

const (
	SideNone      Side = ""
	SideTraitors  Side = "TRAITORS"
	SideInnocents Side = "INNOCENTS"
	SideBomber    Side = "BOMBER"
)

type Player struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Role            Role   `json:"role,omitempty"`
	DisplayRole     Role   `json:"displayRole,omitempty"`
	IsOwner         bool   `json:"isOwner"`
	IsAlive         bool   `json:"isAlive"`
	IsMuted         bool   `json:"isMuted"`
	HasShield       bool   `json:"hasShield"`
	SurvivorShields int    `json:"survivorShields"`
	IsBot           bool   `json:"isBot"`
}

type ActionType string

const (
	ActionKill         ActionType = "KILL"
	ActionProtect      ActionType = "PROTECT"
	ActionInvestigate  ActionType = "INVESTIGATE"
	ActionBombPlant    ActionType = "BOMB_PLANT"
	ActionBombDetonate ActionType = "BOMB_DETONATE"
)

func (t ActionType) Valid() bool {
	switch t {
	case ActionKill, ActionProtect, ActionInvestigate, ActionBombPlant, ActionBombDetonate:
		return true
	}
	return false
}

// ResultTag classifies a resolved night action.
type ResultTag string

const (
	TagBlocked      ResultTag = "BLOCKED"
	TagNoop         ResultTag = "NOOP"
	TagBlocking     ResultTag = "BLOCKING"
	TagKill         ResultTag = "KILL"
	TagRevived      ResultTag = "REVIVED"
	TagProtected    ResultTag = "PROTECTED"
	TagInvestigated ResultTag = "INVESTIGATED"
	TagPlanted      ResultTag = "PLANTED"
	TagDetonated    ResultTag = "DETONATED"
)

type ActionResult struct {
	Tag      ResultTag `json:"tag"`
	Visitors []string  `json:"visitors,omitempty"`
	Roles    []Role    `json:"roles,omitempty"`
	Victims  []string  `json:"victims,omitempty"`
	Note     string    `json:"note,omitempty"`
}

type NightAction struct {
	PlayerID   string        `json:"playerId"`
	TargetID   string        `json:"targetId,omitempty"`
	ActionType ActionType    `json:"actionType"`
	Timestamp  int64         `json:"timestamp"`
	Result     *ActionResult `json:"result,omitempty"`
}

// VoteSkip is the explicit abstain value in a votes map.
const VoteSkip = "SKIP"

type DeathCause string

const (
	CauseNight DeathCause = "NIGHT"
	CauseVote  DeathCause = "VOTE"
)

type DeathRecord struct {
	PlayerID string     `json:"playerId"`
	Turn     int        `json:"turn"`
	Cause    DeathCause `json:"cause"`
}

// Settings are chosen by the owner at game start. Durations are in seconds.
type Settings struct {
	TraitorCount     int `json:"traitorCount" mapstructure:"traitor_count"`
	SpecialRoleCount int `json:"specialRoleCount" mapstructure:"special_role_count"`
	CardDrawCount    int `json:"cardDrawCount" mapstructure:"card_draw_count"`
	SurvivorShields  int `json:"survivorShields" mapstructure:"survivor_shields"`

	RoleRevealDuration        int `json:"roleRevealDuration" mapstructure:"role_reveal_duration"`
	NightDuration             int `json:"nightDuration" mapstructure:"night_duration"`
	NightResultsDuration      int `json:"nightResultsDuration" mapstructure:"night_results_duration"`
	DeathAnnouncementDuration int `json:"deathAnnouncementDuration" mapstructure:"death_announcement_duration"`
	CardDrawDuration          int `json:"cardDrawDuration" mapstructure:"card_draw_duration"`
	DayDuration               int `json:"dayDuration" mapstructure:"day_duration"`
	VoteDuration              int `json:"voteDuration" mapstructure:"vote_duration"`
	ResolveDuration           int `json:"resolveDuration" mapstructure:"resolve_duration"`
}

var (
	ErrInvalidSettings  = errors.New("invalid settings")
	ErrNotEnoughPlayers = errors.New("not enough players")
)

func DefaultSettings() Settings {
	return Settings{
		TraitorCount:              1,
		SpecialRoleCount:          2,
		CardDrawCount:             1,
		SurvivorShields:           2,
		RoleRevealDuration:        15,
		NightDuration:             45,
		NightResultsDuration:      10,
		DeathAnnouncementDuration: 10,
		CardDrawDuration:          30,
		DayDuration:               120,
		VoteDuration:              45,
		ResolveDuration:           10,
	}
}

// WithDefaults fills zero durations and counters from def.
func (s Settings) WithDefaults(def Settings) Settings {
	fill := func(v *int, d int) {
		if *v <= 0 {
			*v = d
		}
	}
	fill(&s.RoleRevealDuration, def.RoleRevealDuration)
	fill(&s.NightDuration, def.NightDuration)
	fill(&s.NightResultsDuration, def.NightResultsDuration)
	fill(&s.DeathAnnouncementDuration, def.DeathAnnouncementDuration)
	fill(&s.CardDrawDuration, def.CardDrawDuration)
	fill(&s.DayDuration, def.DayDuration)
	fill(&s.VoteDuration, def.VoteDuration)
	fill(&s.ResolveDuration, def.ResolveDuration)
	fill(&s.SurvivorShields, def.SurvivorShields)
	return s
}

// Validate checks the role counts against a roster size. Any roster that fits the
// requested roles is dealt; a lopsided one simply ends at the first win check.
func (s Settings) Validate(playerCount int) error {
	if s.TraitorCount < 1 {
		return fmt.Errorf("%w: traitor count must be at least 1", ErrInvalidSettings)
	}
	if s.SpecialRoleCount < 0 || s.SpecialRoleCount > MaxSpecialRoles {
		return fmt.Errorf("%w: special role count must be between 0 and %d", ErrInvalidSettings, MaxSpecialRoles)
	}
	if s.TraitorCount+s.SpecialRoleCount > playerCount {
		return fmt.Errorf("%w: %d roles for %d players", ErrNotEnoughPlayers, s.TraitorCount+s.SpecialRoleCount, playerCount)
	}
	return nil
}

// Game is created once per play session by the authority.
type Game struct {
	ID          string     `json:"id"`
	Phase       Phase      `json:"phase"`
	CurrentTurn int        `json:"currentTurn"`
	Settings    Settings   `json:"settings"`
	Seed        uint64     `json:"seed"`
	StartedAt   time.Time  `json:"startedAt"`
	EndedAt     *time.Time `json:"endedAt,omitempty"`
	WinningSide Side       `json:"winningSide,omitempty"`
}
