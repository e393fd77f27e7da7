package game

import (
	"math/rand/v2"
)

// AssignRoles builds the role pool for the given players and deals one role to each.
// It mutates the players in place and resets their per-game state.
func AssignRoles(players []*Player, s Settings, rng *rand.Rand) error {
	if err := s.Validate(len(players)); err != nil {
		return err
	}

	pool := buildRolePool(len(players), s, rng)

	// shuffle the seating as well as the pool
	order := make([]*Player, len(players))
	copy(order, players)
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	for i, p := range order {
		p.Role = pool[i]
		p.DisplayRole = displayRoleFor(pool[i], rng)
		p.IsAlive = true
		p.IsMuted = false
		p.HasShield = false
		p.SurvivorShields = 0
		if p.Role == RoleSurvivor {
			p.SurvivorShields = s.SurvivorShields
		}
	}

	return nil
}

func buildRolePool(n int, s Settings, rng *rand.Rand) []Role {
	pool := make([]Role, 0, n)

	for range s.TraitorCount {
		pool = append(pool, RoleTraitor)
	}

	slots := rng.Perm(len(specialRoleSlots))
	for _, idx := range slots[:s.SpecialRoleCount] {
		variants := specialRoleSlots[idx]
		pool = append(pool, variants[rng.IntN(len(variants))])
	}

	for len(pool) < n {
		pool = append(pool, RoleInnocent)
	}

	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	return pool
}

// DELI believes it is an investigator.
func displayRoleFor(r Role, rng *rand.Rand) Role {
	if r != RoleDeli {
		return r
	}
	if rng.IntN(2) == 0 {
		return RoleWatcher
	}
	return RoleDetective
}
