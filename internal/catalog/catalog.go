package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed roles.json
var defaultRoles []byte

// Catalog is the immutable set of roles a deployment knows about.
// Lookups are by name (case-sensitive, as stored in the players table)
// or by numeric id.
type Catalog struct {
	roles  []Role
	byName map[string]*Role
	byID   map[int]*Role
}

// Load parses and validates a roles document.
func Load(data []byte) (*Catalog, error) {
	var roles []Role
	if err := json.Unmarshal(data, &roles); err != nil {
		return nil, fmt.Errorf("parse roles: %w", err)
	}
	if len(roles) == 0 {
		return nil, fmt.Errorf("roles document is empty")
	}
	c := &Catalog{
		roles:  roles,
		byName: make(map[string]*Role, len(roles)),
		byID:   make(map[int]*Role, len(roles)),
	}
	for i := range c.roles {
		r := &c.roles[i]
		if err := r.validate(); err != nil {
			return nil, err
		}
		if _, ok := c.byName[r.Name]; ok {
			return nil, fmt.Errorf("duplicate role name %q", r.Name)
		}
		if _, ok := c.byID[r.ID]; ok {
			return nil, fmt.Errorf("duplicate role id %d (%s)", r.ID, r.Name)
		}
		c.byName[r.Name] = r
		c.byID[r.ID] = r
	}
	return c, nil
}

// Default loads the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Load(defaultRoles)
}

// All returns every role in catalog order.
func (c *Catalog) All() []Role {
	out := make([]Role, len(c.roles))
	copy(out, c.roles)
	return out
}

func (c *Catalog) ByName(name string) (Role, bool) {
	r, ok := c.byName[name]
	if !ok {
		return Role{}, false
	}
	return *r, true
}

func (c *Catalog) ByID(id int) (Role, bool) {
	r, ok := c.byID[id]
	if !ok {
		return Role{}, false
	}
	return *r, true
}

// Names returns every role name in catalog order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.roles))
	for i, r := range c.roles {
		out[i] = r.Name
	}
	return out
}

// InputRequirements reports what the UI should collect for a role's
// night action. Roles with no explicit requirement default to a single
// player dropdown when they target, otherwise none.
func (c *Catalog) InputRequirements(id int) (InputRequirement, error) {
	r, ok := c.byID[id]
	if !ok {
		return InputRequirement{}, fmt.Errorf("unknown role id %d", id)
	}
	if r.Input != nil {
		return *r.Input, nil
	}
	if r.Targets {
		return InputRequirement{
			Type:        InputPlayerDropdown,
			Description: fmt.Sprintf("Choose a player for the %s to target", r.Name),
		}, nil
	}
	return InputRequirement{Type: InputNone, Description: "No night action"}, nil
}
