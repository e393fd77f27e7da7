package game

type Outcome struct {
	Winner    Side `json:"winner"`
	GameEnded bool `json:"gameEnded"`
}

// EvaluateWin checks the living roster. Bomber is checked first, then traitors, then innocents.
func EvaluateWin(players []*Player) Outcome {
	var alive, traitors int
	bomberAlive := false

	for _, p := range players {
		if !p.IsAlive {
			continue
		}
		alive++
		if p.Role.IsTraitorAligned() {
			traitors++
		}
		if p.Role == RoleBomber {
			bomberAlive = true
		}
	}

	if bomberAlive && alive-1 <= 1 {
		return Outcome{Winner: SideBomber, GameEnded: true}
	}

	if traitors > 0 && traitors >= alive-traitors {
		return Outcome{Winner: SideTraitors, GameEnded: true}
	}

	if traitors == 0 {
		return Outcome{Winner: SideInnocents, GameEnded: true}
	}

	return Outcome{}
}
