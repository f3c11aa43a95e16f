package catalog

import (
	"encoding/json"
	"testing"
)

func TestDefaultCatalogLoads(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	if len(c.All()) < 25 {
		t.Fatalf("expected a full catalog, got %d roles", len(c.All()))
	}
	for _, name := range []string{"Villager", "Seer", "Doctor", "Alpha Wolf", "Arsonist", "Plague Bringer"} {
		if _, ok := c.ByName(name); !ok {
			t.Errorf("ByName(%q) missing", name)
		}
	}
}

func TestLookupsAgree(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	for _, r := range c.All() {
		byName, ok := c.ByName(r.Name)
		if !ok {
			t.Fatalf("ByName(%q) missing", r.Name)
		}
		byID, ok := c.ByID(r.ID)
		if !ok {
			t.Fatalf("ByID(%d) missing", r.ID)
		}
		if byName.ID != byID.ID || byName.Name != byID.Name {
			t.Errorf("role %q: name and id lookups disagree", r.Name)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	data, err := json.Marshal(c.All())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	c2, err := Load(data)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(c2.All()) != len(c.All()) {
		t.Fatalf("round trip lost roles: %d != %d", len(c2.All()), len(c.All()))
	}
	for _, r := range c.All() {
		got, ok := c2.ByName(r.Name)
		if !ok {
			t.Fatalf("round trip lost %q", r.Name)
		}
		if got.Team != r.Team || got.Moves != r.Moves || got.HasCharges != r.HasCharges {
			t.Errorf("role %q changed across round trip", r.Name)
		}
	}
}

func TestLoadRejectsBadDocuments(t *testing.T) {
	cases := map[string]string{
		"empty":           `[]`,
		"bad team":        `[{"id":1,"name":"Seer","team":"Chaos"}]`,
		"bad input type":  `[{"id":1,"name":"Seer","team":"Town","inputRequirements":{"type":"wheel"}}]`,
		"duplicate name":  `[{"id":1,"name":"Seer","team":"Town"},{"id":2,"name":"Seer","team":"Town"}]`,
		"duplicate id":    `[{"id":1,"name":"Seer","team":"Town"},{"id":1,"name":"Doctor","team":"Town"}]`,
		"missing name":    `[{"id":1,"team":"Town"}]`,
		"charges with no": `[{"id":1,"name":"Hunter","team":"Town","hasCharges":true}]`,
	}
	for name, doc := range cases {
		if _, err := Load([]byte(doc)); err == nil {
			t.Errorf("%s: expected error, got nil", name)
		}
	}
}

func TestInputRequirements(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	cases := []struct {
		role string
		want string
	}{
		{"Seer", InputPlayerDropdown},
		{"Matchmaker", InputTwoPlayerDropdown},
		{"Gravedigger", InputDeadPlayerDropdown},
		{"Bloodhound", InputRoleDropdown},
		{"Veteran", InputAlertToggle},
		{"Arsonist", InputArsonistAction},
		{"Villager", InputNone},
	}
	for _, tc := range cases {
		r, _ := c.ByName(tc.role)
		req, err := c.InputRequirements(r.ID)
		if err != nil {
			t.Fatalf("InputRequirements(%s): %v", tc.role, err)
		}
		if req.Type != tc.want {
			t.Errorf("%s: input type = %q, want %q", tc.role, req.Type, tc.want)
		}
	}
	if _, err := c.InputRequirements(9999); err == nil {
		t.Error("unknown id: expected error")
	}
}
