package engine

import (
	"fmt"
	"strings"
)

// All killing resolves after blocks and info. The Arsonist's kill-phase
// action is the douse; the burn resolved back in the light phase.
var killHandlers = map[string]handlerFunc{
	"Hypnotist":      resolveHypnotist,
	"Hunter":         resolveShooter,
	"Vigilante":      resolveShooter,
	"Arsonist":       resolveArsonistDouse,
	"Plague Bringer": resolvePlagueBringer,
	"Serial Killer":  resolveSimpleKiller,
	"Murderer":       resolveSimpleKiller,
	"Glutton":        resolveGlutton,
	"Alpha Wolf":     resolveSimpleKiller,
}

func resolveHypnotist(run *nightRun, actor *Player) {
	target := run.st.FindPlayer(actor.ActionNotes)
	if target == nil || !target.Alive() {
		run.failTarget(actor)
		return
	}
	target.HypnotizedBy = actor.Username
	target.HypnotizedUntil = run.st.Night + 1
	run.st.SetMeta(target.Username, map[string]any{
		"hypnotized_by":    actor.Username,
		"hypnotized_until": target.HypnotizedUntil,
	})
	run.addResult(actor, fmt.Sprintf("%s will see only what you show them", target.Username))
	run.logf("%s hypnotized %s until night %d", actor.Username, target.Username, target.HypnotizedUntil)
}

func resolveShooter(run *nightRun, actor *Player) {
	if !hasCharge(actor) {
		run.failCharge(actor)
		return
	}
	target := run.st.FindPlayer(actor.ActionNotes)
	if target == nil || !target.Alive() {
		run.failTarget(actor)
		return
	}
	flavor := run.st.Rules.KillFlavor(actor.Role)
	if run.kill(target, actor.Role, "shot", "home", flavor) {
		run.spendCharge(actor)
		run.addResult(actor, fmt.Sprintf("Shot %s dead", target.Username))
		run.logf("%s was found %s", target.Username, flavor)
	}
}

func resolveArsonistDouse(run *nightRun, actor *Player) {
	if strings.Contains(actor.ActionNotes, "light") {
		return
	}
	name := strings.TrimPrefix(actor.ActionNotes, "douse ")
	target := run.st.FindPlayer(name)
	if target == nil || !target.Alive() {
		run.failTarget(actor)
		return
	}
	target.IsDoused = true
	run.addResult(actor, fmt.Sprintf("Doused %s's house in gasoline", target.Username))
	run.logf("%s doused %s's house", actor.Username, target.Username)
}

func resolvePlagueBringer(run *nightRun, actor *Player) {
	target := run.st.FindPlayer(actor.ActionNotes)
	if target == nil || !target.Alive() {
		run.failTarget(actor)
		return
	}
	infected := 0
	if run.infect(target) {
		infected++
	}
	for _, p := range run.st.Players {
		if p == actor || p == target || !p.Alive() {
			continue
		}
		// Visitors to the target's house catch it too.
		if p.ActionNotes == target.Username && run.infect(p) {
			infected++
		}
	}
	run.addResult(actor, fmt.Sprintf("The plague touched %d players tonight", infected))
	run.logf("%s spread the plague at %s's house (%d touched)", actor.Username, target.Username, infected)
}

// infect advances a player's infection: clean players get sick, sick
// players become carriers. Carriers cannot be reinfected.
func (run *nightRun) infect(p *Player) bool {
	if p.IsCarrier {
		return false
	}
	if p.IsInfected && p.InfectionNight < run.st.Night {
		p.IsCarrier = true
		p.IsInfected = false
		return true
	}
	if !p.IsInfected {
		p.IsInfected = true
		p.InfectionNight = run.st.Night
		return true
	}
	return false
}

func resolveSimpleKiller(run *nightRun, actor *Player) {
	target := run.st.FindPlayer(actor.ActionNotes)
	if target == nil || !target.Alive() {
		run.failTarget(actor)
		return
	}
	flavor := run.st.Rules.KillFlavor(actor.Role)
	if run.kill(target, actor.Role, "killed in the night", "home", flavor) {
		run.addResult(actor, fmt.Sprintf("Killed %s", target.Username))
		run.logf("%s was found at home, %s", target.Username, flavor)
	}
}

func resolveGlutton(run *nightRun, actor *Player) {
	if !hasCharge(actor) {
		run.failCharge(actor)
		return
	}
	target := run.st.FindPlayer(actor.ActionNotes)
	if target == nil || !target.Alive() {
		run.failTarget(actor)
		return
	}
	if target.MovedTonight() {
		run.addResult(actor, fmt.Sprintf("%s was not home to be eaten", target.Username))
		run.logf("%s went hungry at %s's empty house", actor.Username, target.Username)
		return
	}
	flavor := run.st.Rules.KillFlavor(actor.Role)
	if run.kill(target, actor.Role, "eaten whole", "home", flavor) {
		run.spendCharge(actor)
		run.addResult(actor, fmt.Sprintf("Ate %s whole", target.Username))
		run.logf("%s %s", target.Username, flavor)
	}
}
