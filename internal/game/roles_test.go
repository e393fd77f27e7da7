package game

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlayers(n int) []*Player {
	players := make([]*Player, n)
	for i := range players {
		players[i] = &Player{ID: fmt.Sprintf("p%d", i+1), Name: fmt.Sprintf("Oyuncu %d", i+1)}
	}
	return players
}

func TestAssignRoles_CountsMatchSettings(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))

	for n := 1; n <= 12; n++ {
		for traitors := 1; traitors <= n; traitors++ {
			for special := 0; special <= MaxSpecialRoles && traitors+special <= n; special++ {
				players := newPlayers(n)
				s := DefaultSettings()
				s.TraitorCount = traitors
				s.SpecialRoleCount = special

				require.NoError(t, AssignRoles(players, s, rng), "n=%d t=%d s=%d", n, traitors, special)

				var gotTraitors, gotSpecial, gotInnocent int
				for _, p := range players {
					require.NotEmpty(t, p.Role)
					switch {
					case p.Role == RoleTraitor:
						gotTraitors++
					case p.Role.IsSpecial():
						gotSpecial++
					default:
						gotInnocent++
					}
				}

				assert.Equal(t, traitors, gotTraitors)
				assert.Equal(t, special, gotSpecial)
				assert.Equal(t, n-traitors-special, gotInnocent)
			}
		}
	}
}

func TestAssignRoles_SpecialSlotsAreDistinct(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 99))

	for range 50 {
		players := newPlayers(10)
		s := DefaultSettings()
		s.TraitorCount = 1
		s.SpecialRoleCount = MaxSpecialRoles
		require.NoError(t, AssignRoles(players, s, rng))

		slots := make(map[string]int)
		for _, p := range players {
			switch {
			case p.Role.isGuardianType():
				slots["guardian"]++
			case p.Role.isWatcherType():
				slots["watcher"]++
			case p.Role.isDetectiveType():
				slots["detective"]++
			case p.Role.IsSpecial():
				slots[string(p.Role)]++
			}
		}
		assert.Len(t, slots, MaxSpecialRoles)
		for slot, c := range slots {
			assert.Equal(t, 1, c, slot)
		}
	}
}

func TestAssignRoles_DisplayRoleAndShields(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))

	for range 50 {
		players := newPlayers(10)
		s := DefaultSettings()
		s.SpecialRoleCount = MaxSpecialRoles
		s.SurvivorShields = 3
		require.NoError(t, AssignRoles(players, s, rng))

		for _, p := range players {
			assert.True(t, p.IsAlive)
			switch p.Role {
			case RoleDeli:
				assert.Contains(t, []Role{RoleWatcher, RoleDetective}, p.DisplayRole)
			case RoleSurvivor:
				assert.Equal(t, p.Role, p.DisplayRole)
				assert.Equal(t, 3, p.SurvivorShields)
			default:
				assert.Equal(t, p.Role, p.DisplayRole)
				assert.Zero(t, p.SurvivorShields)
			}
		}
	}
}

func TestAssignRoles_Deterministic(t *testing.T) {
	s := DefaultSettings()

	a := newPlayers(8)
	b := newPlayers(8)
	require.NoError(t, AssignRoles(a, s, rand.New(rand.NewPCG(42, 42))))
	require.NoError(t, AssignRoles(b, s, rand.New(rand.NewPCG(42, 42))))

	for i := range a {
		assert.Equal(t, a[i].Role, b[i].Role)
		assert.Equal(t, a[i].DisplayRole, b[i].DisplayRole)
	}
}

func TestAssignRoles_RolesFillRosterExactly(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 5))

	tests := []struct {
		n, traitors, special int
	}{
		{4, 2, 0},
		{2, 1, 1},
		{1, 1, 0},
		{8, 1, MaxSpecialRoles},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d t=%d s=%d", tt.n, tt.traitors, tt.special), func(t *testing.T) {
			s := DefaultSettings()
			s.TraitorCount = tt.traitors
			s.SpecialRoleCount = tt.special
			players := newPlayers(tt.n)

			require.NoError(t, AssignRoles(players, s, rng))

			counts := map[Role]int{}
			for _, p := range players {
				counts[p.Role]++
			}
			assert.Equal(t, tt.traitors, counts[RoleTraitor])
			assert.Equal(t, tt.n-tt.traitors-tt.special, counts[RoleInnocent])
		})
	}
}

func TestAssignRoles_RejectsBadSettings(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))

	tests := []struct {
		name    string
		n       int
		mutate  func(*Settings)
		wantErr error
	}{
		{"default roles on two players", 2, func(s *Settings) {}, ErrNotEnoughPlayers},
		{"no traitors", 5, func(s *Settings) { s.TraitorCount = 0 }, ErrInvalidSettings},
		{"too many specials", 12, func(s *Settings) { s.SpecialRoleCount = MaxSpecialRoles + 1 }, ErrInvalidSettings},
		{"roles exceed players", 5, func(s *Settings) { s.TraitorCount = 2; s.SpecialRoleCount = 4 }, ErrNotEnoughPlayers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			players := newPlayers(tt.n)

			err := AssignRoles(players, s, rng)
			require.ErrorIs(t, err, tt.wantErr)
			for _, p := range players {
				assert.Empty(t, p.Role)
			}
		})
	}
}
