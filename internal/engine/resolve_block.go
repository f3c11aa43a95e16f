package engine

import "fmt"

// Blocks land after movement and before info and kills, so a blocked
// action fails for the rest of the night.
var blockHandlers = map[string]handlerFunc{
	"Jailkeeper": resolveJailkeeper,
	"Escort":     resolveEscort,
	"Consort":    resolveConsort,
}

// neutralKillerRoles kill any blocker foolish enough to knock on their
// door; the body turns up in the town square.
var neutralKillerRoles = []string{"Serial Killer", "Murderer"}

func isNeutralKiller(role string) bool {
	for _, r := range neutralKillerRoles {
		if r == role {
			return true
		}
	}
	return false
}

func resolveJailkeeper(run *nightRun, actor *Player) {
	target := run.st.FindPlayer(actor.ActionNotes)
	if target == nil || !target.Alive() {
		run.failTarget(actor)
		return
	}
	target.IsJailed = true
	run.addResult(actor, fmt.Sprintf("%s spent the night in jail", target.Username))
	run.logf("%s jailed %s", actor.Username, target.Username)
}

func resolveEscort(run *nightRun, actor *Player) {
	run.distract(actor, func(t *Player) { t.IsEscorted = true })
}

func resolveConsort(run *nightRun, actor *Player) {
	run.distract(actor, func(t *Player) { t.IsConsorted = true })
}

func (run *nightRun) distract(actor *Player, mark func(*Player)) {
	target := run.st.FindPlayer(actor.ActionNotes)
	if target == nil || !target.Alive() {
		run.failTarget(actor)
		return
	}
	if isNeutralKiller(target.Role) {
		flavor := run.st.Rules.KillFlavor(target.Role)
		if run.kill(actor, target.Role, "knocked on the wrong door", "townsquare", flavor) {
			run.logf("%s tried to distract %s and was %s; the body was dumped in the townsquare",
				actor.Username, target.Username, flavor)
		}
		return
	}
	mark(target)
	run.addResult(actor, fmt.Sprintf("Kept %s occupied all night", target.Username))
	run.logf("%s distracted %s", actor.Username, target.Username)
}
