package game

// VoteModifiers carries today's card effects into the tally.
type VoteModifiers struct {
	// voter id -> weight; a missing voter weighs 1
	Weights       map[string]int
	Immune        map[string]bool
	NoElimination bool
}

type VoteResult struct {
	EliminatedID string         `json:"eliminatedId,omitempty"`
	Tally        map[string]int `json:"tally"`
	Tie          bool           `json:"tie"`
}

// ResolveVotes tallies votes cast by living players for living candidates.
// Only a strict maximum eliminates; ties and empty tallies eliminate no one.
func ResolveVotes(votes map[string]string, players []*Player, mods VoteModifiers) VoteResult {
	alive := make(map[string]bool, len(players))
	for _, p := range players {
		if p.IsAlive {
			alive[p.ID] = true
		}
	}

	tally := make(map[string]int)
	for voterID, targetID := range votes {
		if !alive[voterID] || targetID == VoteSkip || !alive[targetID] {
			continue
		}

		weight := 1
		if w, ok := mods.Weights[voterID]; ok {
			weight = w
		}
		if weight <= 0 {
			continue
		}

		tally[targetID] += weight
	}

	result := VoteResult{Tally: tally}

	maxVotes := 0
	var leaders []string
	for targetID, count := range tally {
		switch {
		case count > maxVotes:
			maxVotes = count
			leaders = []string{targetID}
		case count == maxVotes:
			leaders = append(leaders, targetID)
		}
	}

	if maxVotes == 0 {
		return result
	}

	if len(leaders) > 1 {
		result.Tie = true
		return result
	}

	if mods.NoElimination || mods.Immune[leaders[0]] {
		return result
	}

	result.EliminatedID = leaders[0]
	return result
}
