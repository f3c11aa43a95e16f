package engine

import "strings"

// ValidateAction checks a submitted action against the current game
// state before it is accepted for the night. It is advisory: the phase
// handlers re-check their own preconditions at resolution time, so a
// stale submission fails gracefully rather than corrupting the night.
//
// Which predicates check the untargetable-at-home list is deliberately
// uneven between roles; the asymmetry is part of the game's balance
// and must not be "fixed".
func ValidateAction(st *GameState, a NightAction) bool {
	actor := st.FindPlayerByID(a.PlayerID)
	if actor == nil {
		return false
	}
	if a.Action == "" && a.Target == "" {
		return false
	}

	switch actor.Role {
	case "Bartender", "Escort", "Jailkeeper", "Alpha Wolf", "Clairvoyant",
		"Consort", "Hypnotist", "Murderer", "Serial Killer":
		return st.targetAliveAndHome(a.Target)

	case "Doctor", "Lookout", "Seer", "Locksmith", "Patrolman", "Framer",
		"Orphan", "Plague Bringer":
		return st.targetAlive(a.Target)

	case "Hunter":
		return st.targetAliveAndHome(a.Target) && hasCharge(actor)

	case "Vigilante":
		return st.targetAlive(a.Target) && hasCharge(actor)

	case "Glutton":
		return st.targetAliveAndHome(a.Target) && hasCharge(actor)

	case "Stalker":
		return st.targetAlive(a.Target) && hasCharge(actor)

	case "Matchmaker":
		// Only the first target is a visit; the second is matched
		// remotely.
		return st.targetAliveAndHome(a.Target) && st.targetAlive(a.SecondaryTarget)

	case "Sleepwalker":
		// Both avoided players just need to be real, living people.
		return st.targetAlive(a.Target) && st.targetAlive(a.SecondaryTarget)

	case "Veteran":
		return strings.Contains(a.Action, "alert") && hasCharge(actor)

	case "Gravedigger", "Graverobber":
		return st.targetDead(a.Target)

	case "Bloodhound":
		role, ok := st.RoleByName(a.Target)
		if !ok {
			role, ok = st.RoleByName(a.Action)
		}
		return ok && role.Name != "Villager"

	case "Arsonist":
		if strings.Contains(a.Action, "light") {
			for _, p := range st.Players {
				if p.IsDoused && p.Alive() {
					return true
				}
			}
			return false
		}
		target := a.Target
		if target == "" {
			target = strings.TrimPrefix(a.Action, "douse ")
		}
		return st.targetAliveAndHome(target)

	case "Lone Wolf":
		return st.targetAlive(a.Target)

	default:
		// Roles with no night action validate trivially so the
		// moderator tooling can record "no action" rows.
		return true
	}
}

func (st *GameState) targetAlive(name string) bool {
	t := st.FindPlayer(name)
	return t != nil && t.Alive()
}

func (st *GameState) targetAliveAndHome(name string) bool {
	t := st.FindPlayer(name)
	return t != nil && t.Alive() && !st.Rules.UntargetableAtHome(t.Role)
}

func (st *GameState) targetDead(name string) bool {
	t := st.FindPlayer(name)
	return t != nil && t.Status == StatusDead
}

func hasCharge(p *Player) bool {
	return p.ChargesLeft != nil && *p.ChargesLeft > 0
}
