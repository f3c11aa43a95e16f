package engine

import (
	"fmt"
	"strings"
)

// Watchers, wanderers and ambushers act before blocks land, so what
// they see and where they end up reflects everyone's declared moves.
var movementHandlers = map[string]handlerFunc{
	"Lookout":     resolveLookout,
	"Veteran":     resolveVeteran,
	"Stalker":     resolveStalker,
	"Locksmith":   resolveLocksmith,
	"Patrolman":   resolvePatrolman,
	"Sleepwalker": resolveSleepwalker,
	"Orphan":      resolveOrphan,
}

// attackRoles are the killers whose presence at a house is lethal to
// bystanders who end up there.
var attackRoles = []string{"Alpha Wolf", "Serial Killer", "Murderer", "Arsonist"}

func isAttackRole(role string) bool {
	for _, r := range attackRoles {
		if r == role {
			return true
		}
	}
	return false
}

// attackerAt finds the lowest-id living killer whose action takes them
// to the named player's house.
func (run *nightRun) attackerAt(house string, excluding *Player) *Player {
	for _, p := range run.st.Players {
		if p == excluding || !p.Alive() || !isAttackRole(p.Role) {
			continue
		}
		if p.ActionNotes == house || p.ActionNotes == "douse "+house {
			return p
		}
	}
	return nil
}

func resolveLookout(run *nightRun, actor *Player) {
	target := run.st.FindPlayer(actor.ActionNotes)
	if target == nil || !target.Alive() {
		run.failTarget(actor)
		return
	}
	if target.MovedTonight() {
		run.addResult(actor, fmt.Sprintf("%s traveled to %s", target.Username, target.ActionNotes))
		run.logf("%s watched %s travel to %s", actor.Username, target.Username, target.ActionNotes)
	} else {
		run.addResult(actor, fmt.Sprintf("%s stayed home all night", target.Username))
		run.logf("%s watched %s stay home", actor.Username, target.Username)
	}
}

func resolveVeteran(run *nightRun, actor *Player) {
	if !strings.Contains(actor.ActionNotes, "alert") {
		return
	}
	if !hasCharge(actor) {
		run.failCharge(actor)
		return
	}
	run.spendCharge(actor)
	flavor := run.st.Rules.KillFlavor(actor.Role)
	killed := 0
	for _, p := range run.st.Players {
		if p == actor || !p.Alive() || !p.Moves {
			continue
		}
		if p.ActionNotes == actor.Username {
			if run.kill(p, actor.Role, "walked into an ambush", actor.Username+"'s house", flavor) {
				killed++
				run.logf("%s visited %s on alert and %s", p.Username, actor.Username, flavor)
			}
		}
	}
	run.addResult(actor, fmt.Sprintf("Alert expended: %d visitors never left", killed))
}

func resolveStalker(run *nightRun, actor *Player) {
	if !hasCharge(actor) {
		run.failCharge(actor)
		return
	}
	target := run.st.FindPlayer(actor.ActionNotes)
	if target == nil || !target.Alive() {
		run.failTarget(actor)
		return
	}
	if !target.MovedTonight() {
		run.addResult(actor, fmt.Sprintf("%s never left home", target.Username))
		run.logf("%s waited outside %s's house for nothing", actor.Username, target.Username)
		return
	}
	flavor := run.st.Rules.KillFlavor(actor.Role)
	if run.kill(target, actor.Role, "caught leaving home", target.Username+"'s front porch", flavor) {
		run.spendCharge(actor)
		run.addResult(actor, fmt.Sprintf("Caught %s stepping out", target.Username))
		run.logf("%s was %s on their own front porch", target.Username, flavor)
	}
}

func resolveLocksmith(run *nightRun, actor *Player) {
	target := run.st.FindPlayer(actor.ActionNotes)
	if target == nil || !target.Alive() {
		run.failTarget(actor)
		return
	}
	target.IsLocked = true
	run.addResult(actor, fmt.Sprintf("Locked %s's house for the night", target.Username))
	run.logf("%s locked %s's house", actor.Username, target.Username)
}

func resolvePatrolman(run *nightRun, actor *Player) {
	target := run.st.FindPlayer(actor.ActionNotes)
	if target == nil || !target.Alive() {
		run.failTarget(actor)
		return
	}
	attacker := run.attackerAt(target.Username, actor)
	if attacker == nil {
		run.addResult(actor, fmt.Sprintf("A quiet night guarding %s", target.Username))
		run.logf("%s guarded %s undisturbed", actor.Username, target.Username)
		return
	}
	// The attacker never reaches the door; both die in the yard and
	// the intended kill dies with them.
	yard := target.Username + "'s front yard"
	flavor := run.st.Rules.KillFlavor(actor.Role)
	run.kill(attacker, actor.Role, "cut down in a fight", yard, flavor)
	run.kill(actor, attacker.Role, "cut down in a fight", yard, flavor)
	attacker.ActionNotes = ""
	run.addResult(actor, fmt.Sprintf("Died fighting %s in %s", attacker.Username, yard))
	run.logf("%s and %s killed each other in %s", actor.Username, attacker.Username, yard)
}

func resolveSleepwalker(run *nightRun, actor *Player) {
	avoid := map[string]bool{actor.Username: true}
	for _, name := range strings.Split(actor.ActionNotes, ",") {
		avoid[strings.TrimSpace(name)] = true
	}
	var houses []*Player
	for _, p := range run.st.Players {
		if p.Alive() && !avoid[p.Username] {
			houses = append(houses, p)
		}
	}
	if len(houses) == 0 {
		actor.ActionNotes = ""
		run.addResult(actor, "Nowhere left to wander; stayed home")
		return
	}
	dest := houses[run.intn(len(houses))]
	actor.ActionNotes = dest.Username
	run.addResult(actor, "Wandered to unknown location")
	run.logf("%s wandered to %s's house", actor.Username, dest.Username)
	if attacker := run.attackerAt(dest.Username, actor); attacker != nil {
		flavor := run.st.Rules.KillFlavor(attacker.Role)
		if run.kill(actor, attacker.Role, "wandered into an attack", dest.Username+"'s house", flavor) {
			run.logf("%s wandered into %s's attack and was %s", actor.Username, attacker.Username, flavor)
		}
	}
}

func resolveOrphan(run *nightRun, actor *Player) {
	target := run.st.FindPlayer(actor.ActionNotes)
	if target == nil || !target.Alive() {
		run.failTarget(actor)
		return
	}
	if attacker := run.attackerAt(target.Username, actor); attacker != nil {
		flavor := run.st.Rules.KillFlavor(attacker.Role)
		if run.kill(actor, attacker.Role, "followed their idol into an attack", target.Username+"'s house", flavor) {
			run.logf("%s followed %s home and was %s", actor.Username, target.Username, flavor)
		}
		return
	}
	if actor.ConversionTarget != target.Username {
		actor.ConversionTarget = target.Username
		actor.ConversionProgress = 0
	}
	actor.ConversionProgress++
	if actor.ConversionProgress >= 3 {
		actor.Role = target.Role
		actor.Team = target.Team
		if role, ok := run.engine.catalog.ByName(target.Role); ok {
			actor.Moves = role.Moves
		}
		run.addResult(actor, fmt.Sprintf("Successfully converted to %s", target.Role))
		run.logf("%s finished becoming %s's role", actor.Username, target.Username)
		return
	}
	run.addResult(actor, fmt.Sprintf("Spent the night at %s's house (%d of 3)", target.Username, actor.ConversionProgress))
	run.logf("%s followed %s home (%d of 3)", actor.Username, target.Username, actor.ConversionProgress)
}
