package game

import (
	"fmt"
	"slices"

	"traitors-be/internal/card"
)

// CardPreview is what the drawer sees before confirming a scanned card.
type CardPreview struct {
	Code        string        `json:"code"`
	EffectID    card.EffectID `json:"effectId"`
	Title       string        `json:"title"`
	Text        string        `json:"text"`
	NeedsTarget bool          `json:"needsTarget"`
}

// CardApplication describes a confirmed card and who gets told what.
type CardApplication struct {
	Code       string          `json:"code"`
	EffectID   card.EffectID   `json:"effectId"`
	Title      string          `json:"title"`
	ActorID    string          `json:"actorId"`
	TargetID   string          `json:"targetId,omitempty"`
	Visibility card.Visibility `json:"visibility"`

	PrivateText string `json:"privateText"`
	TargetText  string `json:"targetText,omitempty"`
	PublicText  string `json:"publicText,omitempty"`
}

// applyEffect mutates the context for one confirmed card. The actor and target were
// validated by the caller.
func (gc *GameContext) applyEffect(c card.Card, def card.EffectDef, actor, target *Player) CardApplication {
	app := CardApplication{
		Code:       c.Code,
		EffectID:   def.ID,
		Title:      def.Title,
		ActorID:    actor.ID,
		Visibility: c.Visibility,
	}
	if target != nil {
		app.TargetID = target.ID
	}

	if def.Timing != card.TimingImmediate {
		gc.Effects = append(gc.Effects, ActiveEffect{
			EffectID: def.ID,
			ActorID:  actor.ID,
			TargetID: app.TargetID,
			Timing:   def.Timing,
			Turn:     gc.CurrentTurn(),
		})
	}

	switch def.ID {
	case card.RevealAlignment:
		side := "masum"
		if target.Role.IsTraitorAligned() {
			side = "hain"
		}
		app.PrivateText = fmt.Sprintf("%s %s tarafında.", target.Name, side)

	case card.RevealRole:
		app.PrivateText = fmt.Sprintf("%s adlı oyuncunun rolü: %s", target.Name, target.Role)

	case card.CountTraitors:
		n := 0
		for _, p := range gc.AlivePlayers() {
			if p.Role.IsTraitorAligned() {
				n++
			}
		}
		app.PublicText = fmt.Sprintf("Hayatta %d hain var.", n)
		app.PrivateText = app.PublicText

	case card.BombScan:
		if gc.BombTargets[target.ID] {
			app.PrivateText = fmt.Sprintf("%s adlı oyuncunun üzerinde bomba var!", target.Name)
		} else {
			app.PrivateText = fmt.Sprintf("%s adlı oyuncunun üzerinde bomba yok.", target.Name)
		}

	case card.DefuseAll:
		n := len(gc.BombTargets)
		clear(gc.BombTargets)
		app.PublicText = fmt.Sprintf("%d bomba etkisiz hale getirildi.", n)
		app.PrivateText = app.PublicText

	case card.PublicConfession:
		app.PublicText = fmt.Sprintf("%s itiraf etti: rolü %s.", actor.Name, actor.Role)
		app.PrivateText = "Rolün herkese açıklandı."

	case card.TipOff:
		var clean []*Player
		for _, p := range gc.AlivePlayers() {
			if p.ID != actor.ID && !p.Role.IsTraitorAligned() {
				clean = append(clean, p)
			}
		}
		if len(clean) == 0 {
			app.PrivateText = "İhbar edilecek kimse kalmadı."
			break
		}
		pick := clean[gc.rng.IntN(len(clean))]
		app.PrivateText = fmt.Sprintf("%s hain değil.", pick.Name)

	case card.Blank:
		app.PrivateText = "Bu kart boş çıktı."

	case card.ShieldBoost:
		boost := def.Params["shields"]
		for _, p := range gc.AlivePlayers() {
			if p.Role == RoleSurvivor {
				p.SurvivorShields += boost
			}
		}
		app.PublicText = "Hayatta kalanların kalkanları güçlendi."
		app.PrivateText = app.PublicText

	case card.MuteTarget:
		target.IsMuted = true
		app.PrivateText = fmt.Sprintf("%s bugün susturuldu.", target.Name)
		app.TargetText = "Bugün susturuldun."

	case card.DoubleVote:
		app.PrivateText = "Bugün oyun iki oy sayılacak."

	case card.VoteImmunity:
		app.PublicText = fmt.Sprintf("%s bugün oylamayla elenemez.", target.Name)
		app.PrivateText = app.PublicText

	case card.BlindVote:
		app.PublicText = "Bugünkü oylama kapalı yapılacak."
		app.PrivateText = app.PublicText

	case card.ShortDay, card.LongDay:
		app.PublicText = fmt.Sprintf("Bugünkü tartışma süresi %%%d olarak ayarlandı.", def.Params["percent"])
		app.PrivateText = app.PublicText
		if gc.Phase == PhaseDayDiscussion {
			gc.SetTimer(gc.TimeRemaining(gc.now()) * def.Params["percent"] / 100)
		}

	case card.PeaceDay:
		app.PublicText = "Bugün kimse elenmeyecek."
		app.PrivateText = app.PublicText

	case card.NightShield:
		app.PrivateText = "Bu gece korunacaksın."

	case card.GuardTarget:
		app.PrivateText = fmt.Sprintf("%s bu gece korunacak.", target.Name)

	case card.BlockTarget:
		app.PrivateText = fmt.Sprintf("%s bu gece eylem yapamayacak.", target.Name)

	case card.SleepingPill:
		app.PrivateText = fmt.Sprintf("%s bu gece uyuyacak.", target.Name)
		app.TargetText = "Bu gece uyuyacaksın: eylem yapamazsın ama saldırıdan etkilenmezsin."

	case card.Insight:
		app.PrivateText = "Bu gece seni kimlerin ziyaret ettiğini öğreneceksin."

	case card.JamKills:
		app.PrivateText = "Bu gece hainlerin saldırısı sabote edilecek."

	case card.DudBombs:
		app.PrivateText = "Bu gece bombalar patlamayacak."

	case card.DeathImmunity:
		app.PrivateText = "Bugün elenemezsin ve bu gece korunacaksın."

	case card.TargetImmunity:
		app.PrivateText = fmt.Sprintf("%s kutsandı.", target.Name)
		app.TargetText = "Kutsandın: bugün elenemezsin ve bu gece korunacaksın."

	case card.Curse:
		app.PrivateText = fmt.Sprintf("%s lanetlendi.", target.Name)
		app.TargetText = "Lanetlendin: bugünkü oyun sayılmayacak ve bu gece eylem yapamayacaksın."

	case card.GuardianAngel:
		app.PrivateText = fmt.Sprintf("%s bu gece korunacak ve onu kimlerin ziyaret ettiğini öğreneceksin.", target.Name)

	case card.Spotlight:
		target.IsMuted = true
		app.PublicText = fmt.Sprintf("Spot ışığı %s üzerinde: bugün susacak ve bu gece korunamayacak.", target.Name)
		app.PrivateText = app.PublicText
	}

	if c.Visibility == card.VisibilityPrivateToTarget && app.TargetText == "" && target != nil {
		app.TargetText = fmt.Sprintf("Senin üzerine bir kart oynandı: %s", def.Title)
	}

	gc.Note(actor.ID, fmt.Sprintf("%s kartı: %s", def.Title, app.PrivateText))
	if app.TargetText != "" {
		gc.Note(target.ID, app.TargetText)
	}

	return app
}

// activeEffects lists effects of the given timings.
func (gc *GameContext) activeEffects(timings ...card.Timing) []ActiveEffect {
	var out []ActiveEffect
	for _, e := range gc.Effects {
		if slices.Contains(timings, e.Timing) {
			out = append(out, e)
		}
	}
	return out
}

func (gc *GameContext) hasEffect(id card.EffectID) bool {
	for _, e := range gc.Effects {
		if e.EffectID == id {
			return true
		}
	}
	return false
}

// expireEffects drops every effect of the given timings.
func (gc *GameContext) expireEffects(timings ...card.Timing) {
	gc.Effects = slices.DeleteFunc(gc.Effects, func(e ActiveEffect) bool {
		return slices.Contains(timings, e.Timing)
	})
}

func (gc *GameContext) voteModifiers() VoteModifiers {
	mods := VoteModifiers{
		Weights: make(map[string]int),
		Immune:  make(map[string]bool),
	}

	for _, e := range gc.activeEffects(card.TimingToday, card.TimingPersistentShort) {
		switch e.EffectID {
		case card.DoubleVote:
			def, _ := card.Effect(e.EffectID)
			mods.Weights[e.ActorID] = def.Params["weight"]
		case card.Curse:
			mods.Weights[e.TargetID] = 0
		case card.VoteImmunity, card.TargetImmunity:
			mods.Immune[e.TargetID] = true
		case card.DeathImmunity:
			mods.Immune[e.ActorID] = true
		case card.PeaceDay:
			mods.NoElimination = true
		}
	}

	return mods
}

func (gc *GameContext) nightModifiers() NightModifiers {
	mods := NightModifiers{
		Protected: make(map[string]bool),
		Blocked:   make(map[string]bool),
		Exposed:   make(map[string]bool),
		Insight:   make(map[string]string),
	}

	for _, e := range gc.activeEffects(card.TimingNextNight, card.TimingPersistentShort) {
		switch e.EffectID {
		case card.NightShield, card.DeathImmunity:
			mods.Protected[e.ActorID] = true
		case card.GuardTarget, card.TargetImmunity:
			mods.Protected[e.TargetID] = true
		case card.BlockTarget, card.Curse:
			mods.Blocked[e.TargetID] = true
		case card.SleepingPill:
			mods.Blocked[e.TargetID] = true
			mods.Protected[e.TargetID] = true
		case card.Insight:
			mods.Insight[e.ActorID] = e.ActorID
		case card.GuardianAngel:
			mods.Protected[e.TargetID] = true
			mods.Insight[e.ActorID] = e.TargetID
		case card.Spotlight:
			mods.Exposed[e.TargetID] = true
		case card.JamKills:
			mods.JamKills = true
		case card.DudBombs:
			mods.DudBombs = true
		}
	}

	return mods
}

// dayDuration applies SHORT_DAY / LONG_DAY to the configured discussion length.
func (gc *GameContext) dayDuration() int {
	secs := gc.Settings().DayDuration
	for _, e := range gc.activeEffects(card.TimingToday) {
		if e.EffectID == card.ShortDay || e.EffectID == card.LongDay {
			def, _ := card.Effect(e.EffectID)
			secs = secs * def.Params["percent"] / 100
		}
	}
	return max(secs, 1)
}
