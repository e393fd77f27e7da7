package game

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
)

// NightModifiers carries card effects that apply to one night.
type NightModifiers struct {
	Protected map[string]bool
	Blocked   map[string]bool
	// protection is ignored for exposed players; revival still works
	Exposed map[string]bool
	// observer -> watched player; the observer learns who visited the watched player
	Insight  map[string]string
	JamKills bool
	DudBombs bool
}

type NightInput struct {
	Turn        int
	Players     []*Player
	Actions     []*NightAction
	BombTargets map[string]bool
	Mods        NightModifiers
	Rng         *rand.Rand
}

type NightOutcome struct {
	Deaths      []string
	Revived     []string
	Protected   []string
	ShieldsUsed []string
	BombTargets map[string]bool
	// private lines per player, already prefixed with the turn
	Notes map[string][]string
}

// nightResolution is scratch state for one ResolveNight call.
type nightResolution struct {
	in      NightInput
	players map[string]*Player

	blocked   map[string]bool
	blockedBy map[string]string
	killSet   map[string]bool
	revived   map[string]bool
	protected map[string]bool
	bombHit   map[string]bool
	bombs     map[string]bool
	dead      map[string]bool

	shieldsUsed []string
	notes       map[string][]string
}

// ResolveNight resolves every action submitted during one night. It never fails:
// invalid actions resolve to a NOOP result. Each action's Result is filled in.
func ResolveNight(in NightInput) NightOutcome {
	r := &nightResolution{
		in:        in,
		players:   make(map[string]*Player, len(in.Players)),
		blocked:   make(map[string]bool),
		blockedBy: make(map[string]string),
		killSet:   make(map[string]bool),
		revived:   make(map[string]bool),
		protected: make(map[string]bool),
		bombHit:   make(map[string]bool),
		bombs:     make(map[string]bool, len(in.BombTargets)),
		dead:      make(map[string]bool),
		notes:     make(map[string][]string),
	}
	for _, p := range in.Players {
		r.players[p.ID] = p
	}
	for id, planted := range in.BombTargets {
		if planted {
			r.bombs[id] = true
		}
	}

	for _, a := range in.Actions {
		a.Result = nil
		if !r.valid(a) {
			a.Result = &ActionResult{Tag: TagNoop, Note: "Eylemin sonuçsuz kaldı."}
		}
	}

	r.blockPass()
	r.killPass()
	r.doctorPass()
	r.protectPass()
	r.investigatePass()
	r.bombPass()
	r.applyDeaths()
	r.finishKills()
	r.insightNotes()

	for _, a := range in.Actions {
		if a.Result != nil && a.Result.Note != "" {
			r.note(a.PlayerID, a.Result.Note)
		}
	}

	return r.outcome()
}

func (r *nightResolution) valid(a *NightAction) bool {
	actor, ok := r.players[a.PlayerID]
	if !ok || !actor.IsAlive {
		return false
	}
	if !a.ActionType.Valid() || !canPerform(actor.Role, a.ActionType) {
		return false
	}
	if a.ActionType == ActionBombDetonate {
		return true
	}

	target, ok := r.players[a.TargetID]
	if !ok {
		return false
	}
	// the doctor may aim at a corpse; it simply will not work
	if !target.IsAlive && actor.Role != RoleDoctor {
		return false
	}
	return true
}

// pending returns unresolved actions of one type whose actor passes the filter.
func (r *nightResolution) pending(t ActionType, roleFilter func(Role) bool) []*NightAction {
	var out []*NightAction
	for _, a := range r.in.Actions {
		if a.Result != nil || a.ActionType != t {
			continue
		}
		if roleFilter != nil && !roleFilter(r.players[a.PlayerID].Role) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func (r *nightResolution) blockPass() {
	for id := range r.in.Mods.Blocked {
		r.blocked[id] = true
	}

	guards := r.pending(ActionProtect, Role.isGuardianType)
	slices.SortStableFunc(guards, func(a, b *NightAction) int {
		if a.Timestamp != b.Timestamp {
			if a.Timestamp < b.Timestamp {
				return -1
			}
			return 1
		}
		return strings.Compare(a.PlayerID, b.PlayerID)
	})

	// placed blocks by guardian id; blocking a guardian later in the night lifts its block
	placed := make(map[string]*NightAction, len(guards))

	for _, a := range guards {
		if r.blocked[a.PlayerID] {
			continue
		}

		target := r.players[a.TargetID]
		if _, taken := r.blockedBy[a.TargetID]; taken {
			a.Result = &ActionResult{
				Tag:  TagNoop,
				Note: fmt.Sprintf("%s zaten başka biri tarafından engellenmişti.", target.Name),
			}
			continue
		}

		if prev, ok := placed[a.TargetID]; ok {
			r.liftBlock(prev)
			delete(placed, a.TargetID)
		}

		placed[a.PlayerID] = a
		r.blockedBy[a.TargetID] = a.PlayerID
		r.blocked[a.TargetID] = true

		// the good guardian also stands guard over the one it blocks
		if r.players[a.PlayerID].Role == RoleGuardian {
			r.protected[a.TargetID] = true
		}

		a.Result = &ActionResult{
			Tag:  TagBlocking,
			Note: fmt.Sprintf("%s adlı oyuncuyu engelledin.", target.Name),
		}
	}

	for _, a := range r.in.Actions {
		if r.blocked[a.PlayerID] && (a.Result == nil || a.Result.Tag == TagBlocking) {
			a.Result = &ActionResult{Tag: TagBlocked, Note: "Bu gece engellendin, eylemin gerçekleşmedi."}
		}
	}
}

// liftBlock undoes a block whose guardian was itself blocked afterwards. The
// target is free again; the guardian's action is marked BLOCKED with the rest.
func (r *nightResolution) liftBlock(a *NightAction) {
	delete(r.blockedBy, a.TargetID)
	if !r.in.Mods.Blocked[a.TargetID] {
		delete(r.blocked, a.TargetID)
	}
	if r.players[a.PlayerID].Role == RoleGuardian && !r.in.Mods.Protected[a.TargetID] {
		delete(r.protected, a.TargetID)
	}
}

func (r *nightResolution) killPass() {
	for _, a := range r.pending(ActionKill, nil) {
		target := r.players[a.TargetID]

		if target.Role.IsTraitorAligned() {
			a.Result = &ActionResult{Tag: TagNoop, Note: "Hain bir oyuncuyu hedef alamazsın."}
			continue
		}

		if r.in.Mods.JamKills {
			a.Result = &ActionResult{Tag: TagNoop, Note: "Saldırı bu gece sabote edildi."}
			continue
		}

		r.killSet[a.TargetID] = true
		// filled in by finishKills once deaths are known
		a.Result = &ActionResult{Tag: TagKill}
	}
}

func (r *nightResolution) doctorPass() {
	isDoctor := func(role Role) bool { return role == RoleDoctor }

	for _, a := range r.pending(ActionProtect, isDoctor) {
		target := r.players[a.TargetID]

		switch {
		case r.killSet[a.TargetID]:
			r.revived[a.TargetID] = true
			a.Result = &ActionResult{
				Tag:  TagRevived,
				Note: fmt.Sprintf("%s adlı oyuncuyu ölümden döndürdün.", target.Name),
			}
		case !target.IsAlive:
			a.Result = &ActionResult{
				Tag:  TagNoop,
				Note: fmt.Sprintf("%s zaten ölüydü.", target.Name),
			}
		default:
			a.Result = &ActionResult{
				Tag:  TagNoop,
				Note: fmt.Sprintf("%s adlı oyuncuya kimse saldırmadı.", target.Name),
			}
		}
	}
}

func (r *nightResolution) protectPass() {
	for id := range r.in.Mods.Protected {
		r.protected[id] = true
	}

	for _, a := range r.pending(ActionProtect, nil) {
		actor := r.players[a.PlayerID]

		if actor.Role == RoleSurvivor {
			if a.TargetID != actor.ID || actor.SurvivorShields <= 0 {
				a.Result = &ActionResult{Tag: TagNoop, Note: "Kalkanın kalmadı ya da kendini seçmedin."}
				continue
			}
			r.protected[actor.ID] = true
			r.shieldsUsed = append(r.shieldsUsed, actor.ID)
			a.Result = &ActionResult{
				Tag:  TagProtected,
				Note: fmt.Sprintf("Kalkanını kullandın, bu gece korundun. Kalan kalkan: %d", actor.SurvivorShields-1),
			}
			continue
		}

		r.protected[a.TargetID] = true
		a.Result = &ActionResult{
			Tag:  TagProtected,
			Note: fmt.Sprintf("%s adlı oyuncuyu korudun.", r.players[a.TargetID].Name),
		}
	}
}

func (r *nightResolution) investigatePass() {
	for _, a := range r.pending(ActionInvestigate, nil) {
		actor := r.players[a.PlayerID]
		target := r.players[a.TargetID]

		if r.revived[a.TargetID] {
			a.Result = &ActionResult{
				Tag:  TagNoop,
				Note: fmt.Sprintf("%s hakkında bilgi alınamadı.", target.Name),
			}
			continue
		}

		lens := actor.Role
		if actor.Role == RoleDeli {
			lens = actor.DisplayRole
		}

		switch {
		case lens.isWatcherType():
			visitors := r.visitorsOf(a.TargetID, a.PlayerID)
			if actor.Role == RoleDeli {
				visitors = r.fakeVisitors(actor.ID, a.TargetID)
			}
			a.Result = &ActionResult{
				Tag:      TagInvestigated,
				Visitors: visitors,
				Note:     r.visitorNote(target.Name, visitors),
			}

		case lens.isDetectiveType():
			var roles []Role
			if actor.Role == RoleDeli {
				roles = r.randomRoles(2, "")
			} else {
				roles = append(r.randomRoles(1, target.Role), target.Role)
				r.in.Rng.Shuffle(len(roles), func(i, j int) {
					roles[i], roles[j] = roles[j], roles[i]
				})
			}
			a.Result = &ActionResult{
				Tag:   TagInvestigated,
				Roles: roles,
				Note:  fmt.Sprintf("%s adlı oyuncunun rolü şunlardan biri: %s, %s", target.Name, roles[0], roles[1]),
			}

		default:
			a.Result = &ActionResult{Tag: TagNoop, Note: "Eylemin sonuçsuz kaldı."}
		}
	}
}

// visitorsOf lists non-blocked actors who targeted id this night, in roster order.
func (r *nightResolution) visitorsOf(id, except string) []string {
	seen := make(map[string]bool)
	for _, a := range r.in.Actions {
		if a.PlayerID == except || a.TargetID != id {
			continue
		}
		if r.blocked[a.PlayerID] || !r.isLiveActor(a) {
			continue
		}
		seen[a.PlayerID] = true
	}

	var out []string
	for _, p := range r.in.Players {
		if seen[p.ID] {
			out = append(out, p.ID)
		}
	}
	return out
}

func (r *nightResolution) isLiveActor(a *NightAction) bool {
	actor, ok := r.players[a.PlayerID]
	return ok && actor.IsAlive
}

func (r *nightResolution) fakeVisitors(actorID, targetID string) []string {
	var candidates []string
	for _, p := range r.in.Players {
		if p.IsAlive && p.ID != actorID && p.ID != targetID {
			candidates = append(candidates, p.ID)
		}
	}
	r.in.Rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	n := r.in.Rng.IntN(min(len(candidates), 2) + 1)
	return candidates[:n]
}

func (r *nightResolution) randomRoles(n int, exclude Role) []Role {
	var pool []Role
	for _, role := range AllRoles {
		if role != exclude {
			pool = append(pool, role)
		}
	}
	r.in.Rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	return pool[:n]
}

func (r *nightResolution) visitorNote(targetName string, visitors []string) string {
	if len(visitors) == 0 {
		return fmt.Sprintf("%s adlı oyuncuyu kimse ziyaret etmedi.", targetName)
	}
	return fmt.Sprintf("%s adlı oyuncuyu ziyaret edenler: %s", targetName, r.names(visitors))
}

func (r *nightResolution) bombPass() {
	for _, a := range r.pending(ActionBombPlant, nil) {
		if a.TargetID == a.PlayerID {
			a.Result = &ActionResult{Tag: TagNoop, Note: "Kendine bomba yerleştiremezsin."}
			continue
		}
		r.bombs[a.TargetID] = true
		a.Result = &ActionResult{
			Tag:  TagPlanted,
			Note: fmt.Sprintf("%s adlı oyuncuya bomba yerleştirdin.", r.players[a.TargetID].Name),
		}
	}

	for _, a := range r.pending(ActionBombDetonate, nil) {
		if r.in.Mods.DudBombs {
			a.Result = &ActionResult{Tag: TagNoop, Note: "Bombalar patlamadı."}
			continue
		}

		var victims []string
		for _, p := range r.in.Players {
			if r.bombs[p.ID] && p.IsAlive {
				victims = append(victims, p.ID)
				r.bombHit[p.ID] = true
			}
		}
		clear(r.bombs)

		a.Result = &ActionResult{Tag: TagDetonated, Victims: victims}
		if len(victims) == 0 {
			a.Result.Note = "Patlatılacak bomba yoktu."
		}
	}
}

func (r *nightResolution) applyDeaths() {
	for _, p := range r.in.Players {
		if !p.IsAlive {
			continue
		}
		if !(r.killSet[p.ID] || r.bombHit[p.ID]) {
			continue
		}
		if r.revived[p.ID] || (r.protected[p.ID] && !r.in.Mods.Exposed[p.ID]) {
			continue
		}
		r.dead[p.ID] = true
	}

	for id := range r.bombs {
		if r.dead[id] {
			delete(r.bombs, id)
		}
	}

	for _, a := range r.in.Actions {
		if a.Result == nil || a.Result.Tag != TagDetonated || len(a.Result.Victims) == 0 {
			continue
		}
		var died []string
		for _, id := range a.Result.Victims {
			if r.dead[id] {
				died = append(died, id)
			}
		}
		if len(died) == 0 {
			a.Result.Note = "Bombaları patlattın ama kimse ölmedi."
		} else {
			a.Result.Note = fmt.Sprintf("Bombaları patlattın. Ölenler: %s", r.names(died))
		}
	}
}

func (r *nightResolution) finishKills() {
	for _, a := range r.in.Actions {
		if a.Result == nil || a.Result.Tag != TagKill {
			continue
		}
		name := r.players[a.TargetID].Name
		if r.dead[a.TargetID] {
			a.Result.Victims = []string{a.TargetID}
			a.Result.Note = fmt.Sprintf("%s hedef alındı ve öldü.", name)
		} else {
			a.Result.Note = fmt.Sprintf("%s hedef alındı ama hayatta kaldı.", name)
		}
	}
}

func (r *nightResolution) insightNotes() {
	for _, p := range r.in.Players {
		watched, ok := r.in.Mods.Insight[p.ID]
		if !ok {
			continue
		}
		subject, ok := r.players[watched]
		if !ok {
			continue
		}

		visitors := r.visitorsOf(subject.ID, p.ID)
		switch {
		case subject.ID == p.ID && len(visitors) == 0:
			r.note(p.ID, "Bu gece seni kimse ziyaret etmedi.")
		case subject.ID == p.ID:
			r.note(p.ID, fmt.Sprintf("Bu gece seni ziyaret edenler: %s", r.names(visitors)))
		default:
			r.note(p.ID, r.visitorNote(subject.Name, visitors))
		}
	}
}

func (r *nightResolution) note(playerID, text string) {
	r.notes[playerID] = append(r.notes[playerID], fmt.Sprintf("%d. Gece: %s", r.in.Turn, text))
}

func (r *nightResolution) names(ids []string) string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.players[id]; ok {
			names = append(names, p.Name)
		}
	}
	return strings.Join(names, ", ")
}

func (r *nightResolution) outcome() NightOutcome {
	out := NightOutcome{
		BombTargets: r.bombs,
		Notes:       r.notes,
		ShieldsUsed: r.shieldsUsed,
	}
	for _, p := range r.in.Players {
		if r.dead[p.ID] {
			out.Deaths = append(out.Deaths, p.ID)
		}
		if r.revived[p.ID] {
			out.Revived = append(out.Revived, p.ID)
		}
		if r.protected[p.ID] {
			out.Protected = append(out.Protected, p.ID)
		}
	}
	return out
}
