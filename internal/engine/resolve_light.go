package engine

import (
	"fmt"
	"strings"
)

// The lighting phase runs before anything else in the night: gasoline
// poured on earlier nights goes up at once, and nobody outruns it.
var lightHandlers = map[string]handlerFunc{
	"Arsonist": resolveArsonistLighting,
}

func resolveArsonistLighting(run *nightRun, actor *Player) {
	if !strings.Contains(actor.ActionNotes, "light") {
		// A douse submission resolves in the kill phase.
		return
	}
	flavor := run.st.Rules.KillFlavor(actor.Role)
	victims := 0
	for _, p := range run.st.Players {
		if p.IsDoused && p.Alive() && p != actor {
			if run.kill(p, actor.Role, "burned to death", "home", flavor) {
				victims++
				run.logf("%s's house went up in flames; %s %s", p.Username, p.Username, flavor)
			}
		}
	}
	if victims == 0 {
		run.addResult(actor, "No doused houses were left to light")
		run.logf("%s lit a match over nothing", actor.Username)
		return
	}
	// The fire takes its maker too.
	run.kill(actor, actor.Role, "burned to death", "home", flavor)
	run.logf("%s burned to death in their own fire", actor.Username)
	run.addResult(actor, fmt.Sprintf("Lit the fires: %d victims burned", victims))
}
