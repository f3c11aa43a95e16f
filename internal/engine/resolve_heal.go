package engine

import "fmt"

// Healing runs last so the Doctor sees the night's full casualty list.
var healHandlers = map[string]handlerFunc{
	"Doctor": resolveDoctor,
}

func resolveDoctor(run *nightRun, actor *Player) {
	target := run.st.FindPlayer(actor.ActionNotes)
	if target == nil {
		run.failTarget(actor)
		return
	}
	if run.heal(target) {
		run.addResult(actor, fmt.Sprintf("Successfully healed %s", target.Username))
		run.logf("%s healed %s; they survived the night", actor.Username, target.Username)
		return
	}
	if !target.Alive() {
		// Dead before tonight; nothing to undo.
		run.addResult(actor, fmt.Sprintf("%s was beyond saving", target.Username))
		run.logf("%s arrived far too late for %s", actor.Username, target.Username)
		return
	}
	run.addResult(actor, fmt.Sprintf("No healing needed for %s", target.Username))
	run.logf("%s checked on %s; nothing to treat", actor.Username, target.Username)
}
