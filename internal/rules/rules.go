// Package rules holds the night rule table: the ordered phase pipeline
// plus the cross-cutting policies (home targeting, framing, blocking,
// body placement, re-targeting) that the resolution engine consults.
package rules

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed rules.json
var defaultRules []byte

// Phase action kinds, in the order the pipeline runs them.
const (
	PhaseLight    = "light"
	PhaseMovement = "info_and_movement"
	PhaseBlock    = "block"
	PhaseInfo     = "info"
	PhaseKill     = "kill"
	PhaseHeal     = "heal"
)

var phaseOrder = []string{PhaseLight, PhaseMovement, PhaseBlock, PhaseInfo, PhaseKill, PhaseHeal}

// OrderOfOperation is a single phase in the night pipeline.
type OrderOfOperation struct {
	Order       int      `json:"order"`
	Phase       string   `json:"phase"`
	Action      string   `json:"action"`
	Roles       []string `json:"roles"`
	Description string   `json:"description,omitempty"`
}

// HomeTargeting lists the roles that can never be caught at home.
type HomeTargeting struct {
	CannotBeTargetedAtHome []string `json:"cannotBeTargetedAtHome"`
	FramerException        string   `json:"framerException,omitempty"`
}

// BlockEffects describes what a block suppresses.
type BlockEffects struct {
	MovementBased        []string `json:"movementBased"`
	AllActionsExceptSeer []string `json:"allActionsExceptSeer"`
}

// BodyPlacement controls where victims are found and how each killer's
// work is described.
type BodyPlacement struct {
	DefaultLocation string            `json:"defaultLocation"`
	KillFlavors     map[string]string `json:"killFlavors"`
}

// ReTargeting names the roles allowed to hit the same player on
// consecutive nights.
type ReTargeting struct {
	AllowedFor  []string `json:"allowedFor"`
	AllowedWhen string   `json:"allowedWhen,omitempty"`
}

// GameRules is the full rule table for a deployment.
type GameRules struct {
	OrderOfOperations []OrderOfOperation `json:"orderOfOperations"`
	HomeTargeting     HomeTargeting      `json:"homeTargeting"`
	FramingEffects    map[string]string  `json:"framingEffects"`
	BlockEffects      BlockEffects       `json:"blockEffects"`
	BodyPlacement     BodyPlacement      `json:"bodyPlacement"`
	ReTargeting       ReTargeting        `json:"reTargetingSamePlayer"`
	BartenderExcludes []string           `json:"bartenderResultExcludes"`
}

// Load parses and validates a rule table document.
func Load(data []byte) (*GameRules, error) {
	var gr GameRules
	if err := json.Unmarshal(data, &gr); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if err := gr.Validate(); err != nil {
		return nil, err
	}
	return &gr, nil
}

// Default loads the rule table embedded in the binary.
func Default() (*GameRules, error) {
	return Load(defaultRules)
}

// Validate checks the phase pipeline is complete and correctly ordered.
func (gr *GameRules) Validate() error {
	if len(gr.OrderOfOperations) != len(phaseOrder) {
		return fmt.Errorf("rule table has %d phases, want %d", len(gr.OrderOfOperations), len(phaseOrder))
	}
	for i, op := range gr.OrderOfOperations {
		if op.Order != i+1 {
			return fmt.Errorf("phase %q: order %d out of sequence", op.Phase, op.Order)
		}
		if op.Action != phaseOrder[i] {
			return fmt.Errorf("phase %q: action %q, want %q at position %d", op.Phase, op.Action, phaseOrder[i], i+1)
		}
		if op.Phase == "" {
			return fmt.Errorf("phase %d has no name", op.Order)
		}
	}
	if gr.BodyPlacement.DefaultLocation == "" {
		return fmt.Errorf("rule table missing default body location")
	}
	return nil
}

// UntargetableAtHome reports whether a role can never be caught at
// home by a visiting action.
func (gr *GameRules) UntargetableAtHome(role string) bool {
	for _, r := range gr.HomeTargeting.CannotBeTargetedAtHome {
		if r == role {
			return true
		}
	}
	return false
}

// AllowsRetarget reports whether a role may target the same player on
// consecutive nights.
func (gr *GameRules) AllowsRetarget(role string) bool {
	for _, r := range gr.ReTargeting.AllowedFor {
		if r == role {
			return true
		}
	}
	return false
}

// BlocksSeer reports whether the role's block suppresses Seer results.
// The Seer is the one role that still receives info while jailed.
func (gr *GameRules) BlocksSeer(role string) bool {
	for _, r := range gr.BlockEffects.AllActionsExceptSeer {
		if r == role {
			return false
		}
	}
	return true
}

// KillFlavor returns the body description for a killer role, falling
// back to a generic line.
func (gr *GameRules) KillFlavor(killer string) string {
	if f, ok := gr.BodyPlacement.KillFlavors[killer]; ok {
		return f
	}
	return "dead under unclear circumstances"
}

// RolesInPhases returns every role named anywhere in the pipeline,
// deduplicated, in pipeline order.
func (gr *GameRules) RolesInPhases() []string {
	seen := make(map[string]bool)
	var out []string
	for _, op := range gr.OrderOfOperations {
		for _, r := range op.Roles {
			if !seen[r] {
				seen[r] = true
				out = append(out, r)
			}
		}
	}
	return out
}
