package catalog

import "fmt"

// Teams a role can belong to.
const (
	TeamTown    = "Town"
	TeamWolf    = "Wolf"
	TeamNeutral = "Neutral"
)

// Input widget types the moderator UI renders for a role's night action.
const (
	InputPlayerDropdown     = "player_dropdown"
	InputTwoPlayerDropdown  = "two_player_dropdown"
	InputDeadPlayerDropdown = "dead_player_dropdown"
	InputRoleDropdown       = "role_dropdown"
	InputAlertToggle        = "alert_toggle"
	InputArsonistAction     = "arsonist_action"
	InputNone               = "none"
)

// InputRequirement describes what a role's action submission looks like.
type InputRequirement struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Validation  string `json:"validation,omitempty"`
}

// Role is a single entry in the role catalog.
type Role struct {
	ID                int               `json:"id"`
	Name              string            `json:"name"`
	Team              string            `json:"team"`
	Targets           bool              `json:"targets"`
	Moves             bool              `json:"moves"`
	Description       string            `json:"description"`
	FramerInteraction string            `json:"framerInteraction,omitempty"`
	SpecialProperties []string          `json:"specialProperties,omitempty"`
	Immunities        []string          `json:"immunities,omitempty"`
	StandardFlavor    string            `json:"standardResultsFlavor,omitempty"`
	HealFlavor        string            `json:"healFlavor,omitempty"`
	HasCharges        bool              `json:"hasCharges"`
	DefaultCharges    int               `json:"defaultCharges,omitempty"`
	InWolfChat        bool              `json:"inWolfChat"`
	Input             *InputRequirement `json:"inputRequirements,omitempty"`
}

func (r Role) validate() error {
	if r.Name == "" {
		return fmt.Errorf("role %d: missing name", r.ID)
	}
	switch r.Team {
	case TeamTown, TeamWolf, TeamNeutral:
	default:
		return fmt.Errorf("role %q: unknown team %q", r.Name, r.Team)
	}
	if r.Input != nil {
		switch r.Input.Type {
		case InputPlayerDropdown, InputTwoPlayerDropdown, InputDeadPlayerDropdown,
			InputRoleDropdown, InputAlertToggle, InputArsonistAction, InputNone:
		default:
			return fmt.Errorf("role %q: unknown input type %q", r.Name, r.Input.Type)
		}
	}
	if r.HasCharges && r.DefaultCharges <= 0 {
		return fmt.Errorf("role %q: hasCharges set with no defaultCharges", r.Name)
	}
	return nil
}
