package engine

import (
	"fmt"
	"strings"
)

// Info roles share a phase and run in ascending player id, so whether
// a reading reflects tonight's frame depends on who sits earlier in
// the order. A frame from a prior night is always in effect.
var infoHandlers = map[string]handlerFunc{
	"Framer":      resolveFramer,
	"Seer":        resolveSeer,
	"Bartender":   resolveBartender,
	"Gravedigger": resolveGravedigger,
	"Graverobber": resolveGraverobber,
	"Clairvoyant": resolveClairvoyant,
	"Bloodhound":  resolveBloodhound,
}

func resolveFramer(run *nightRun, actor *Player) {
	target := run.st.FindPlayer(actor.ActionNotes)
	if target == nil || !target.Alive() {
		run.failTarget(actor)
		return
	}
	target.IsFramed = true
	target.FramedNight = run.st.Night
	run.addResult(actor, fmt.Sprintf("Planted evidence on %s", target.Username))
	run.logf("%s framed %s", actor.Username, target.Username)
}

func resolveSeer(run *nightRun, actor *Player) {
	target := run.st.FindPlayer(actor.ActionNotes)
	if target == nil || !target.Alive() {
		run.failTarget(actor)
		return
	}
	seen := target.Role
	if target.IsFramed {
		seen = run.randomWolfRoleName()
	}
	run.addResult(actor, fmt.Sprintf("%s is the %s", target.Username, seen),
		map[string]any{"role": seen})
	run.logf("%s saw %s as the %s", actor.Username, target.Username, seen)
}

func resolveClairvoyant(run *nightRun, actor *Player) {
	target := run.st.FindPlayer(actor.ActionNotes)
	if target == nil || !target.Alive() {
		run.failTarget(actor)
		return
	}
	// The Clairvoyant's sight cuts through frames.
	run.addResult(actor, fmt.Sprintf("%s is truly the %s", target.Username, target.Role),
		map[string]any{"role": target.Role})
	run.logf("%s read %s's true role", actor.Username, target.Username)
}

func resolveBartender(run *nightRun, actor *Player) {
	target := run.st.FindPlayer(actor.ActionNotes)
	if target == nil || !target.Alive() {
		run.failTarget(actor)
		return
	}
	pool := run.bartenderPool(target.Role)
	var drinks []string
	if target.IsFramed {
		// Three rounds of lies; repeats are part of the fun.
		for i := 0; i < 3 && len(pool) > 0; i++ {
			drinks = append(drinks, pool[run.intn(len(pool))])
		}
	} else {
		drinks = append(drinks, target.Role)
		for i := 0; i < 2 && len(pool) > 0; i++ {
			pick := run.intn(len(pool))
			drinks = append(drinks, pool[pick])
			pool = append(pool[:pick], pool[pick+1:]...)
		}
	}
	run.shuffleStrings(drinks)
	line := strings.Join(drinks, " / ")
	run.addResult(actor, fmt.Sprintf("%s let slip: %s", target.Username, line),
		map[string]any{"roles": drinks})
	run.logf("%s served %s and heard: %s", actor.Username, target.Username, line)
}

// bartenderPool is the lie pool: roles in play minus the excluded
// never-home roles and the truth itself.
func (run *nightRun) bartenderPool(truth string) []string {
	excluded := map[string]bool{truth: true}
	for _, r := range run.st.Rules.BartenderExcludes {
		excluded[r] = true
	}
	var pool []string
	for _, r := range run.st.Roles {
		if !excluded[r.Name] {
			pool = append(pool, r.Name)
			excluded[r.Name] = true
		}
	}
	return pool
}

func resolveGravedigger(run *nightRun, actor *Player) {
	target := run.st.FindPlayer(actor.ActionNotes)
	if target == nil || target.Status != StatusDead {
		run.addResult(actor, "There is no such grave to dig")
		run.logf("%s dug for %s and found no grave", actor.Username, actor.ActionNotes)
		return
	}
	seen := target.Role
	if target.IsFramed {
		seen = run.randomWolfRoleName()
	}
	run.addResult(actor, fmt.Sprintf("The grave held a %s", seen),
		map[string]any{"role": seen})
	run.logf("%s exhumed %s and found a %s", actor.Username, target.Username, seen)
}

func resolveGraverobber(run *nightRun, actor *Player) {
	target := run.st.FindPlayer(actor.ActionNotes)
	if target == nil || target.Status != StatusDead {
		run.addResult(actor, "There is no such grave to rob")
		run.logf("%s found no grave for %s", actor.Username, actor.ActionNotes)
		return
	}
	actor.Role = target.Role
	actor.Team = target.Team
	if role, ok := run.engine.catalog.ByName(target.Role); ok {
		actor.Moves = role.Moves
	}
	run.addResult(actor, fmt.Sprintf("Took the %s's place among the living", target.Role),
		map[string]any{"role": target.Role, "team": target.Team})
	run.logf("%s robbed %s's grave and became the %s", actor.Username, target.Username, target.Role)
}

func resolveBloodhound(run *nightRun, actor *Player) {
	roleName := actor.ActionNotes
	var hits []*Player
	for _, p := range run.st.Players {
		if p.Alive() && p.Role == roleName {
			hits = append(hits, p)
		}
	}
	if len(hits) == 0 {
		run.addResult(actor, "failure")
		run.logf("%s found no scent of a %s", actor.Username, roleName)
		return
	}
	hit := hits[run.intn(len(hits))]
	names := []string{hit.Username}
	taken := map[string]bool{hit.Username: true, actor.Username: true}
	var decoys []*Player
	for _, p := range run.st.Players {
		if p.Alive() && !taken[p.Username] {
			decoys = append(decoys, p)
		}
	}
	for len(names) < 3 && len(decoys) > 0 {
		pick := run.intn(len(decoys))
		names = append(names, decoys[pick].Username)
		decoys = append(decoys[:pick], decoys[pick+1:]...)
	}
	run.shuffleStrings(names)
	run.addResult(actor, fmt.Sprintf("The scent of the %s leads to: %s", roleName, strings.Join(names, ", ")),
		map[string]any{"candidates": names})
	run.logf("%s tracked the %s to %d candidates", actor.Username, roleName, len(names))
}
