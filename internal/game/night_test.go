package game

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cast builds a roster from id -> role pairs, in argument order.
func cast(pairs ...any) []*Player {
	var players []*Player
	for i := 0; i+1 < len(pairs); i += 2 {
		id := pairs[i].(string)
		role := pairs[i+1].(Role)
		display := role
		if role == RoleDeli {
			display = RoleWatcher
		}
		players = append(players, &Player{
			ID: id, Name: strings.ToUpper(id), Role: role, DisplayRole: display, IsAlive: true,
		})
	}
	return players
}

func act(player string, t ActionType, target string, ts int64) *NightAction {
	return &NightAction{PlayerID: player, ActionType: t, TargetID: target, Timestamp: ts}
}

func resolve(players []*Player, mods NightModifiers, actions ...*NightAction) NightOutcome {
	return ResolveNight(NightInput{
		Turn:    1,
		Players: players,
		Actions: actions,
		Mods:    mods,
		Rng:     rand.New(rand.NewPCG(5, 5)),
	})
}

func TestResolveNight_KillWithoutProtection(t *testing.T) {
	players := cast("t", RoleTraitor, "a", RoleInnocent, "b", RoleInnocent)
	kill := act("t", ActionKill, "a", 1)

	out := resolve(players, NightModifiers{}, kill)

	assert.Equal(t, []string{"a"}, out.Deaths)
	assert.Equal(t, TagKill, kill.Result.Tag)
	assert.Equal(t, []string{"a"}, kill.Result.Victims)
	require.Len(t, out.Notes["t"], 1)
	assert.True(t, strings.HasPrefix(out.Notes["t"][0], "1. Gece: "))
	assert.NotContains(t, out.Notes, "a")
}

func TestResolveNight_GuardianBlockNullifiesAction(t *testing.T) {
	players := cast("g", RoleGuardian, "t", RoleTraitor, "a", RoleInnocent, "b", RoleInnocent)
	block := act("g", ActionProtect, "t", 1)
	kill := act("t", ActionKill, "a", 2)

	out := resolve(players, NightModifiers{}, block, kill)

	assert.Equal(t, TagBlocked, kill.Result.Tag)
	assert.Equal(t, TagBlocking, block.Result.Tag)
	assert.Empty(t, out.Deaths)
}

func TestResolveNight_EvilGuardianBlocks(t *testing.T) {
	players := cast("eg", RoleEvilGuardian, "d", RoleDoctor, "t", RoleTraitor, "a", RoleInnocent)
	block := act("eg", ActionProtect, "d", 1)
	save := act("d", ActionProtect, "a", 2)
	kill := act("t", ActionKill, "a", 3)

	out := resolve(players, NightModifiers{}, block, save, kill)

	assert.Equal(t, TagBlocked, save.Result.Tag)
	assert.Equal(t, []string{"a"}, out.Deaths)
	assert.Empty(t, out.Revived)
}

func TestResolveNight_FirstBlockerWins(t *testing.T) {
	players := cast("g", RoleGuardian, "eg", RoleEvilGuardian, "w", RoleWatcher, "a", RoleInnocent, "b", RoleInnocent)
	late := act("g", ActionProtect, "w", 20)
	early := act("eg", ActionProtect, "w", 10)
	watch := act("w", ActionInvestigate, "a", 5)

	resolve(players, NightModifiers{}, late, early, watch)

	assert.Equal(t, TagBlocking, early.Result.Tag)
	assert.Equal(t, TagNoop, late.Result.Tag)
	assert.Equal(t, TagBlocked, watch.Result.Tag)
}

func TestResolveNight_BlockedGuardianLosesItsBlock(t *testing.T) {
	players := cast("g1", RoleGuardian, "g2", RoleEvilGuardian, "x", RoleTraitor, "v", RoleInnocent, "b", RoleInnocent)
	first := act("g1", ActionProtect, "x", 1)
	counter := act("g2", ActionProtect, "g1", 2)
	kill := act("x", ActionKill, "v", 3)

	out := resolve(players, NightModifiers{}, first, counter, kill)

	assert.Equal(t, TagBlocked, first.Result.Tag)
	assert.Equal(t, TagBlocking, counter.Result.Tag)
	assert.Equal(t, TagKill, kill.Result.Tag)
	assert.Equal(t, []string{"v"}, out.Deaths)
	assert.NotContains(t, out.Protected, "x")
}

func TestResolveNight_LiftedBlockFreesTarget(t *testing.T) {
	players := cast("g1", RoleGuardian, "g2", RoleEvilGuardian, "g3", RoleGuardian, "t", RoleTraitor, "v", RoleInnocent)
	first := act("g1", ActionProtect, "t", 1)
	counter := act("g2", ActionProtect, "g1", 2)
	second := act("g3", ActionProtect, "t", 3)
	kill := act("t", ActionKill, "v", 4)

	out := resolve(players, NightModifiers{}, first, counter, second, kill)

	assert.Equal(t, TagBlocked, first.Result.Tag)
	assert.Equal(t, TagBlocking, second.Result.Tag)
	assert.Equal(t, TagBlocked, kill.Result.Tag)
	assert.Empty(t, out.Deaths)
}

func TestResolveNight_GuardianAlsoShieldsTarget(t *testing.T) {
	players := cast("g", RoleGuardian, "t", RoleTraitor, "a", RoleInnocent)
	guard := act("g", ActionProtect, "a", 1)
	kill := act("t", ActionKill, "a", 2)

	out := resolve(players, NightModifiers{}, guard, kill)

	assert.Empty(t, out.Deaths)
	assert.Contains(t, out.Protected, "a")
	assert.Equal(t, TagKill, kill.Result.Tag)
	assert.Empty(t, kill.Result.Victims)
}

func TestResolveNight_TraitorCannotTargetTraitor(t *testing.T) {
	players := cast("t1", RoleTraitor, "t2", RoleEvilWatcher, "a", RoleInnocent)
	kill := act("t1", ActionKill, "t2", 1)

	out := resolve(players, NightModifiers{}, kill)

	assert.Equal(t, TagNoop, kill.Result.Tag)
	assert.Empty(t, out.Deaths)
}

func TestResolveNight_DoctorRevivesKillTarget(t *testing.T) {
	players := cast("d", RoleDoctor, "t", RoleTraitor, "a", RoleInnocent)
	save := act("d", ActionProtect, "a", 1)
	kill := act("t", ActionKill, "a", 2)

	out := resolve(players, NightModifiers{}, save, kill)

	assert.Equal(t, TagRevived, save.Result.Tag)
	assert.Equal(t, []string{"a"}, out.Revived)
	assert.Empty(t, out.Deaths)
}

func TestResolveNight_DoctorNeverRevivesTheLongDead(t *testing.T) {
	players := cast("d", RoleDoctor, "t", RoleTraitor, "a", RoleInnocent, "b", RoleInnocent)
	players[2].IsAlive = false

	save := act("d", ActionProtect, "a", 1)
	kill := act("t", ActionKill, "b", 2)

	out := resolve(players, NightModifiers{}, save, kill)

	assert.Equal(t, TagNoop, save.Result.Tag)
	assert.Empty(t, out.Revived)
	assert.False(t, players[2].IsAlive)
	assert.Equal(t, []string{"b"}, out.Deaths)
}

func TestResolveNight_DoctorOnSafePlayerIsNoop(t *testing.T) {
	players := cast("d", RoleDoctor, "t", RoleTraitor, "a", RoleInnocent, "b", RoleInnocent)
	save := act("d", ActionProtect, "b", 1)
	kill := act("t", ActionKill, "a", 2)

	out := resolve(players, NightModifiers{}, save, kill)

	assert.Equal(t, TagNoop, save.Result.Tag)
	assert.Equal(t, []string{"a"}, out.Deaths)
}

func TestResolveNight_SurvivorShield(t *testing.T) {
	players := cast("s", RoleSurvivor, "t", RoleTraitor, "a", RoleInnocent)
	players[0].SurvivorShields = 1

	shield := act("s", ActionProtect, "s", 1)
	kill := act("t", ActionKill, "s", 2)

	out := resolve(players, NightModifiers{}, shield, kill)

	assert.Equal(t, TagProtected, shield.Result.Tag)
	assert.Equal(t, []string{"s"}, out.ShieldsUsed)
	assert.Empty(t, out.Deaths)

	// the counter is the caller's to decrement
	players[0].SurvivorShields = 0
	shield = act("s", ActionProtect, "s", 1)
	kill = act("t", ActionKill, "s", 2)

	out = resolve(players, NightModifiers{}, shield, kill)

	assert.Equal(t, TagNoop, shield.Result.Tag)
	assert.Equal(t, []string{"s"}, out.Deaths)
}

func TestResolveNight_SurvivorCannotShieldOthers(t *testing.T) {
	players := cast("s", RoleSurvivor, "t", RoleTraitor, "a", RoleInnocent)
	players[0].SurvivorShields = 2

	shield := act("s", ActionProtect, "a", 1)
	kill := act("t", ActionKill, "a", 2)

	out := resolve(players, NightModifiers{}, shield, kill)

	assert.Equal(t, TagNoop, shield.Result.Tag)
	assert.Empty(t, out.ShieldsUsed)
	assert.Equal(t, []string{"a"}, out.Deaths)
}

func TestResolveNight_WatcherSeesUnblockedVisitors(t *testing.T) {
	players := cast("w", RoleWatcher, "t", RoleTraitor, "d", RoleDoctor, "g", RoleGuardian, "a", RoleInnocent, "b", RoleInnocent)
	watch := act("w", ActionInvestigate, "a", 1)
	kill := act("t", ActionKill, "a", 2)
	save := act("d", ActionProtect, "a", 3)
	block := act("g", ActionProtect, "d", 0)

	resolve(players, NightModifiers{}, watch, kill, save, block)

	assert.Equal(t, TagInvestigated, watch.Result.Tag)
	assert.Equal(t, []string{"t"}, watch.Result.Visitors)
}

func TestResolveNight_DetectiveGetsRealRoleAndDecoy(t *testing.T) {
	for seed := range uint64(20) {
		players := cast("det", RoleDetective, "t", RoleTraitor, "a", RoleInnocent)
		probe := act("det", ActionInvestigate, "t", 1)

		ResolveNight(NightInput{
			Turn: 1, Players: players, Actions: []*NightAction{probe},
			Rng: rand.New(rand.NewPCG(seed, seed)),
		})

		require.Equal(t, TagInvestigated, probe.Result.Tag)
		require.Len(t, probe.Result.Roles, 2)
		assert.Contains(t, probe.Result.Roles, RoleTraitor)
		assert.NotEqual(t, probe.Result.Roles[0], probe.Result.Roles[1])
	}
}

func TestResolveNight_DeliResultsAreFabricated(t *testing.T) {
	players := cast("x", RoleDeli, "t", RoleTraitor, "a", RoleInnocent, "b", RoleInnocent, "c", RoleInnocent)
	probe := act("x", ActionInvestigate, "a", 1)

	resolve(players, NightModifiers{}, probe)

	require.Equal(t, TagInvestigated, probe.Result.Tag)
	assert.NotContains(t, probe.Result.Visitors, "x")
	assert.NotContains(t, probe.Result.Visitors, "a")
	assert.LessOrEqual(t, len(probe.Result.Visitors), 2)
}

func TestResolveNight_InvestigatingRevivedTargetIsNoop(t *testing.T) {
	players := cast("w", RoleWatcher, "d", RoleDoctor, "t", RoleTraitor, "a", RoleInnocent)
	watch := act("w", ActionInvestigate, "a", 1)
	save := act("d", ActionProtect, "a", 2)
	kill := act("t", ActionKill, "a", 3)

	resolve(players, NightModifiers{}, watch, save, kill)

	assert.Equal(t, TagNoop, watch.Result.Tag)
}

func TestResolveNight_Bombs(t *testing.T) {
	players := cast("bo", RoleBomber, "t", RoleTraitor, "a", RoleInnocent, "b", RoleInnocent, "c", RoleInnocent)

	plant := act("bo", ActionBombPlant, "a", 1)
	out := resolve(players, NightModifiers{}, plant)
	assert.Equal(t, TagPlanted, plant.Result.Tag)
	assert.Equal(t, map[string]bool{"a": true}, out.BombTargets)
	assert.Empty(t, out.Deaths)

	plant = act("bo", ActionBombPlant, "b", 1)
	out = ResolveNight(NightInput{
		Turn: 2, Players: players, Actions: []*NightAction{plant}, BombTargets: out.BombTargets,
		Rng: rand.New(rand.NewPCG(1, 1)),
	})
	assert.Equal(t, map[string]bool{"a": true, "b": true}, out.BombTargets)

	boom := act("bo", ActionBombDetonate, "", 1)
	out = ResolveNight(NightInput{
		Turn: 3, Players: players, Actions: []*NightAction{boom}, BombTargets: out.BombTargets,
		Mods: NightModifiers{Protected: map[string]bool{"b": true}},
		Rng:  rand.New(rand.NewPCG(1, 1)),
	})
	assert.Equal(t, TagDetonated, boom.Result.Tag)
	assert.ElementsMatch(t, []string{"a", "b"}, boom.Result.Victims)
	assert.Equal(t, []string{"a"}, out.Deaths)
	assert.Empty(t, out.BombTargets)
}

func TestResolveNight_InvalidActionsAreNoops(t *testing.T) {
	players := cast("t", RoleTraitor, "a", RoleInnocent, "b", RoleInnocent, "z", RoleInnocent)
	players[3].IsAlive = false

	tests := []struct {
		name   string
		action *NightAction
	}{
		{"dead actor", act("z", ActionKill, "a", 1)},
		{"missing target", act("t", ActionKill, "nobody", 1)},
		{"empty target", act("t", ActionKill, "", 1)},
		{"dead target", act("t", ActionKill, "z", 1)},
		{"wrong role", act("a", ActionKill, "b", 1)},
		{"unknown type", act("t", ActionType("HUG"), "a", 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := resolve(players, NightModifiers{}, tt.action)
			require.NotNil(t, tt.action.Result)
			assert.Equal(t, TagNoop, tt.action.Result.Tag)
			assert.Empty(t, out.Deaths)
		})
	}
}

func TestResolveNight_CardModifiers(t *testing.T) {
	players := cast("t", RoleTraitor, "a", RoleInnocent, "b", RoleInnocent, "g", RoleGuardian)

	t.Run("jammed kills", func(t *testing.T) {
		kill := act("t", ActionKill, "a", 1)
		out := resolve(players, NightModifiers{JamKills: true}, kill)
		assert.Equal(t, TagNoop, kill.Result.Tag)
		assert.Empty(t, out.Deaths)
	})

	t.Run("blocked by card", func(t *testing.T) {
		kill := act("t", ActionKill, "a", 1)
		out := resolve(players, NightModifiers{Blocked: map[string]bool{"t": true}}, kill)
		assert.Equal(t, TagBlocked, kill.Result.Tag)
		assert.Empty(t, out.Deaths)
	})

	t.Run("card protection", func(t *testing.T) {
		kill := act("t", ActionKill, "a", 1)
		out := resolve(players, NightModifiers{Protected: map[string]bool{"a": true}}, kill)
		assert.Empty(t, out.Deaths)
	})

	t.Run("exposed ignores protection", func(t *testing.T) {
		guard := act("g", ActionProtect, "a", 1)
		kill := act("t", ActionKill, "a", 2)
		out := resolve(players, NightModifiers{Exposed: map[string]bool{"a": true}}, guard, kill)
		assert.Equal(t, []string{"a"}, out.Deaths)
	})

	t.Run("insight", func(t *testing.T) {
		kill := act("t", ActionKill, "a", 1)
		out := resolve(players, NightModifiers{Insight: map[string]string{"a": "a", "b": "a"}}, kill)
		require.Len(t, out.Notes["a"], 1)
		assert.Contains(t, out.Notes["a"][0], "T")
		require.Len(t, out.Notes["b"], 1)
		assert.Contains(t, out.Notes["b"][0], "T")
	})
}
