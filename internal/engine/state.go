package engine

import (
	"github.com/davidarico/stinkbot-sub000/internal/catalog"
	"github.com/davidarico/stinkbot-sub000/internal/rules"
)

// Player statuses.
const (
	StatusAlive = "alive"
	StatusDead  = "dead"
)

// Player is a single participant's full night-resolution state. The
// persistent fields round-trip through the store; the per-night flags
// (jailed, locked, escorted, consorted, action notes) start false each
// night and never persist.
type Player struct {
	ID       int64
	Username string
	Status   string
	Role     string
	Team     string
	IsWolf   bool

	// Moves mirrors the player's current role's moves flag, resolved
	// at load time.
	Moves bool

	// ActionNotes is the merged night action, as the phase handlers
	// read it: a target username, "A, B" for two targets, "alert",
	// "light" or "douse <target>".
	ActionNotes string

	ChargesLeft *int

	IsFramed    bool
	FramedNight int

	IsJailed    bool
	IsLocked    bool
	IsEscorted  bool
	IsConsorted bool

	IsDoused       bool
	IsInfected     bool
	IsCarrier      bool
	InfectionNight int

	HypnotizedBy    string
	HypnotizedUntil int

	ConversionProgress int
	ConversionTarget   string

	KilledBy     string
	KillFlavor   string
	BodyLocation string
}

// Alive reports whether the player is still standing at this point in
// the night.
func (p *Player) Alive() bool {
	return p.Status == StatusAlive
}

// MovedTonight reports whether the player's action took them away from
// their own house.
func (p *Player) MovedTonight() bool {
	return p.ActionNotes != "" && p.ActionNotes != "none" && p.ActionNotes != p.Username
}

// NightAction is one player's submitted action for a night.
type NightAction struct {
	PlayerID        int64  `json:"playerId"`
	Action          string `json:"action"`
	Target          string `json:"target,omitempty"`
	SecondaryTarget string `json:"secondaryTarget,omitempty"`
}

// Death records one casualty. Player is a username; Killer is the
// killing role's name, so reports never leak who held it.
type Death struct {
	Player   string `json:"player"`
	Cause    string `json:"cause"`
	Killer   string `json:"killer"`
	Location string `json:"location"`
	Flavor   string `json:"flavor"`
}

// PlayerResult is the private outcome delivered to one actor.
type PlayerResult struct {
	Player         string         `json:"player"`
	ResultMessage  string         `json:"resultMessage"`
	AdditionalInfo map[string]any `json:"additionalInfo,omitempty"`
}

// GameMeta is one persisted per-player, per-night metadata row, keyed
// by username like every other cross-reference in the model.
type GameMeta struct {
	GameID   int64          `json:"gameId"`
	Username string         `json:"username"`
	Night    int            `json:"night"`
	Data     map[string]any `json:"data"`
}

// NightResult is everything a resolved night produced.
type NightResult struct {
	GameID      int64          `json:"gameId"`
	Night       int            `json:"night"`
	Deaths      []Death        `json:"deaths"`
	Results     []PlayerResult `json:"results"`
	Explanation string         `json:"explanation"`
}

// GameState is the in-memory working copy the pipeline mutates.
type GameState struct {
	GameID  int64
	Night   int
	Players []*Player
	Roles   []catalog.Role
	Meta    []GameMeta
	Rules   *rules.GameRules

	byUsername map[string]*Player
	byID       map[int64]*Player
}

func (st *GameState) index() {
	st.byUsername = make(map[string]*Player, len(st.Players))
	st.byID = make(map[int64]*Player, len(st.Players))
	for _, p := range st.Players {
		st.byUsername[p.Username] = p
		st.byID[p.ID] = p
	}
}

// FindPlayer looks a player up by username.
func (st *GameState) FindPlayer(username string) *Player {
	return st.byUsername[username]
}

// FindPlayerByID looks a player up by id.
func (st *GameState) FindPlayerByID(id int64) *Player {
	return st.byID[id]
}

// RoleByName finds a role among the roles in play for this game.
func (st *GameState) RoleByName(name string) (catalog.Role, bool) {
	for _, r := range st.Roles {
		if r.Name == name {
			return r, true
		}
	}
	return catalog.Role{}, false
}

// WolfRoles returns the Wolf-team roles in play, used when a framed
// player is inspected.
func (st *GameState) WolfRoles() []catalog.Role {
	var out []catalog.Role
	for _, r := range st.Roles {
		if r.Team == catalog.TeamWolf {
			out = append(out, r)
		}
	}
	return out
}

// SetMeta upserts a meta row keyed by (username, night).
func (st *GameState) SetMeta(username string, data map[string]any) {
	for i := range st.Meta {
		if st.Meta[i].Username == username && st.Meta[i].Night == st.Night {
			for k, v := range data {
				st.Meta[i].Data[k] = v
			}
			return
		}
	}
	st.Meta = append(st.Meta, GameMeta{
		GameID:   st.GameID,
		Username: username,
		Night:    st.Night,
		Data:     data,
	})
}
