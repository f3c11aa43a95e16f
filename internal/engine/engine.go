// Package engine resolves a night of simultaneous role actions into
// deaths, private results and a moderator narrative. Resolution is a
// fixed pipeline of phases; within a phase, actors run in ascending
// player id so every resolution of the same inputs is identical given
// the same random source.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/davidarico/stinkbot-sub000/internal/catalog"
	"github.com/davidarico/stinkbot-sub000/internal/rules"
)

var (
	// ErrResolutionInProgress means another resolution already holds
	// the game's lock.
	ErrResolutionInProgress = errors.New("night resolution already in progress for this game")

	// ErrUnknownRole means the rule table names a role with no
	// registered handler for that phase.
	ErrUnknownRole = errors.New("role has no handler for its phase")

	// ErrRoleUnresolved means a stored player or game role does not
	// exist in the catalog.
	ErrRoleUnresolved = errors.New("stored role not found in catalog")
)

// GameRole is a role in play for one game, with an optional per-game
// charge override.
type GameRole struct {
	Name    string
	Charges *int
}

// Storage is what the engine needs from persistence. Implemented by
// the postgres store; tests use in-memory fakes.
type Storage interface {
	GetPlayers(ctx context.Context, gameID int64) ([]*Player, error)
	GetGameRoles(ctx context.Context, gameID int64) ([]GameRole, error)
	GetGameMeta(ctx context.Context, gameID int64, night int) ([]GameMeta, error)
	// SaveNightResolution persists the mutated players and meta rows
	// in one transaction.
	SaveNightResolution(ctx context.Context, st *GameState) error
}

type handlerFunc func(run *nightRun, actor *Player)

// Engine resolves nights. Safe for concurrent use; each game is
// serialized behind its own lock.
type Engine struct {
	catalog  *catalog.Catalog
	rules    *rules.GameRules
	store    Storage
	rng      *rand.Rand
	rngMu    sync.Mutex
	locks    sync.Map // gameID -> *sync.Mutex
	handlers map[string]map[string]handlerFunc
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand replaces the engine's random source, used by tests for
// deterministic shuffles.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// New builds an engine and verifies every role the rule table places
// in a phase has a handler for that phase and exists in the catalog.
func New(cat *catalog.Catalog, gr *rules.GameRules, store Storage, opts ...Option) (*Engine, error) {
	e := &Engine{
		catalog:  cat,
		rules:    gr,
		store:    store,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		handlers: newHandlerRegistry(),
	}
	for _, opt := range opts {
		opt(e)
	}
	for _, op := range gr.OrderOfOperations {
		phaseHandlers, ok := e.handlers[op.Action]
		if !ok {
			return nil, fmt.Errorf("phase %q: no handlers for action %q: %w", op.Phase, op.Action, ErrUnknownRole)
		}
		for _, role := range op.Roles {
			if _, ok := cat.ByName(role); !ok {
				return nil, fmt.Errorf("phase %q: role %q: %w", op.Phase, role, ErrRoleUnresolved)
			}
			if _, ok := phaseHandlers[role]; !ok {
				return nil, fmt.Errorf("phase %q: role %q: %w", op.Phase, role, ErrUnknownRole)
			}
		}
	}
	return e, nil
}

// Rules exposes the engine's rule table.
func (e *Engine) Rules() *rules.GameRules { return e.rules }

// Catalog exposes the engine's role catalog.
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// ValidateSubmission checks an action against live game state loaded
// from the store. Used by the HTTP layer before accepting a
// submission.
func (e *Engine) ValidateSubmission(ctx context.Context, gameID int64, night int, a NightAction) (bool, error) {
	st, err := e.loadState(ctx, gameID, night)
	if err != nil {
		return false, err
	}
	return ValidateAction(st, a), nil
}

// CalculateNightActions resolves one night: load state, merge the
// submitted actions, run the phase pipeline, persist, and return the
// outcome. Only one resolution per game runs at a time.
func (e *Engine) CalculateNightActions(ctx context.Context, gameID int64, night int, actions []NightAction) (*NightResult, error) {
	lock := e.gameLock(gameID)
	if !lock.TryLock() {
		return nil, ErrResolutionInProgress
	}
	defer lock.Unlock()

	st, err := e.loadState(ctx, gameID, night)
	if err != nil {
		return nil, fmt.Errorf("load game %d: %w", gameID, err)
	}
	mergeActions(st, actions)

	run := &nightRun{st: st, engine: e}
	for _, op := range e.rules.OrderOfOperations {
		run.executePhase(op)
	}

	if err := e.store.SaveNightResolution(ctx, st); err != nil {
		return nil, fmt.Errorf("save game %d night %d: %w", gameID, night, err)
	}
	return &NightResult{
		GameID:      gameID,
		Night:       night,
		Deaths:      run.deaths,
		Results:     run.results,
		Explanation: strings.TrimSpace(strings.Join(run.lines, "\n")),
	}, nil
}

func (e *Engine) gameLock(gameID int64) *sync.Mutex {
	v, _ := e.locks.LoadOrStore(gameID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func (e *Engine) loadState(ctx context.Context, gameID int64, night int) (*GameState, error) {
	players, err := e.store.GetPlayers(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("get players: %w", err)
	}
	gameRoles, err := e.store.GetGameRoles(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("get game roles: %w", err)
	}
	meta, err := e.store.GetGameMeta(ctx, gameID, night)
	if err != nil {
		return nil, fmt.Errorf("get game meta: %w", err)
	}

	st := &GameState{
		GameID:  gameID,
		Night:   night,
		Players: players,
		Meta:    meta,
		Rules:   e.rules,
	}
	for _, gr := range gameRoles {
		role, ok := e.catalog.ByName(gr.Name)
		if !ok {
			return nil, fmt.Errorf("game role %q: %w", gr.Name, ErrRoleUnresolved)
		}
		if gr.Charges != nil {
			role.DefaultCharges = *gr.Charges
		}
		st.Roles = append(st.Roles, role)
	}

	sort.Slice(st.Players, func(i, j int) bool { return st.Players[i].ID < st.Players[j].ID })
	for _, p := range st.Players {
		role, ok := e.catalog.ByName(p.Role)
		if !ok {
			return nil, fmt.Errorf("player %q role %q: %w", p.Username, p.Role, ErrRoleUnresolved)
		}
		p.Moves = role.Moves
		if p.Team == "" {
			p.Team = role.Team
		}
		if p.ChargesLeft == nil && role.HasCharges {
			charges := role.DefaultCharges
			if gr, ok := st.RoleByName(role.Name); ok {
				charges = gr.DefaultCharges
			}
			p.ChargesLeft = &charges
		}
		// A frame reads as Wolf on the night it lands and the night
		// after, then fades.
		p.IsFramed = p.FramedNight > 0 && (p.FramedNight == night || p.FramedNight == night-1)
	}
	st.index()
	return st, nil
}

// mergeActions writes each submission onto its player as the action
// notes string the phase handlers parse.
func mergeActions(st *GameState, actions []NightAction) {
	for _, a := range actions {
		p := st.FindPlayerByID(a.PlayerID)
		if p == nil {
			continue
		}
		switch {
		case strings.Contains(a.Action, "light"), strings.Contains(a.Action, "alert"):
			p.ActionNotes = a.Action
		case strings.Contains(a.Action, "douse"):
			if a.Target != "" && !strings.Contains(a.Action, a.Target) {
				p.ActionNotes = "douse " + a.Target
			} else {
				p.ActionNotes = a.Action
			}
		case a.SecondaryTarget != "":
			p.ActionNotes = a.Target + ", " + a.SecondaryTarget
		case a.Target != "":
			p.ActionNotes = a.Target
		default:
			p.ActionNotes = a.Action
		}
	}
}

// nightRun carries one resolution's accumulating output. Deaths are
// shared across phases so the heal phase can see and undo earlier
// kills.
type nightRun struct {
	st      *GameState
	engine  *Engine
	deaths  []Death
	results []PlayerResult
	lines   []string
}

func (run *nightRun) executePhase(op rules.OrderOfOperation) {
	inPhase := make(map[string]bool, len(op.Roles))
	for _, r := range op.Roles {
		inPhase[r] = true
	}
	var actors []*Player
	for _, p := range run.st.Players {
		if inPhase[p.Role] && p.ActionNotes != "" {
			actors = append(actors, p)
		}
	}
	if len(actors) == 0 {
		return
	}
	run.logf("== %s ==", op.Phase)
	for _, actor := range actors {
		// The light phase runs for everyone: a doused Arsonist who
		// dies in someone else's fire still lit their own.
		if op.Action != rules.PhaseLight && !actor.Alive() {
			continue
		}
		if phaseAfterBlocks(op.Action) && run.blocked(actor) {
			run.addResult(actor, "You were blocked tonight and your action failed")
			run.logf("%s (%s) was blocked and did nothing", actor.Username, actor.Role)
			continue
		}
		run.engine.handlers[op.Action][actor.Role](run, actor)
	}
}

func phaseAfterBlocks(action string) bool {
	switch action {
	case rules.PhaseInfo, rules.PhaseKill, rules.PhaseHeal:
		return true
	}
	return false
}

// blocked applies jail and distraction. Jail spares the Seer's sight;
// nothing spares an escorted or consorted actor.
func (run *nightRun) blocked(p *Player) bool {
	if p.IsEscorted || p.IsConsorted {
		return true
	}
	if p.IsJailed {
		if p.Role == "Seer" && !run.st.Rules.BlocksSeer("Jailkeeper") {
			return false
		}
		return true
	}
	return false
}

// kill records a death once. A player already dead or already on the
// casualty list is skipped, so overlapping kills stay idempotent.
func (run *nightRun) kill(victim *Player, killer, cause, location, flavor string) bool {
	if victim == nil || !victim.Alive() {
		return false
	}
	for _, d := range run.deaths {
		if d.Player == victim.Username {
			return false
		}
	}
	victim.Status = StatusDead
	victim.KilledBy = killer
	victim.KillFlavor = flavor
	victim.BodyLocation = location
	run.deaths = append(run.deaths, Death{
		Player:   victim.Username,
		Cause:    cause,
		Killer:   killer,
		Location: location,
		Flavor:   flavor,
	})
	return true
}

// heal removes a same-night death and revives the victim. Reports
// whether there was anything to undo.
func (run *nightRun) heal(victim *Player) bool {
	for i, d := range run.deaths {
		if d.Player == victim.Username {
			run.deaths = append(run.deaths[:i], run.deaths[i+1:]...)
			victim.Status = StatusAlive
			victim.KilledBy = ""
			victim.KillFlavor = ""
			victim.BodyLocation = ""
			return true
		}
	}
	return false
}

func (run *nightRun) spendCharge(p *Player) {
	if p.ChargesLeft != nil && *p.ChargesLeft > 0 {
		*p.ChargesLeft--
	}
}

func (run *nightRun) addResult(p *Player, msg string, info ...map[string]any) {
	r := PlayerResult{Player: p.Username, ResultMessage: msg}
	if len(info) > 0 {
		r.AdditionalInfo = info[0]
	}
	run.results = append(run.results, r)
}

func (run *nightRun) failTarget(actor *Player) {
	run.addResult(actor, "Target not found or already dead")
	run.logf("%s (%s) targeted %s but found nobody to act on", actor.Username, actor.Role, actor.ActionNotes)
}

// failCharge is the handler-side backstop for charge-gated roles: the
// validator should have rejected the submission, but a raw action can
// still reach resolution with an empty counter.
func (run *nightRun) failCharge(actor *Player) {
	run.addResult(actor, "No charges left to spend")
	run.logf("%s (%s) had no charges left and did nothing", actor.Username, actor.Role)
}

func (run *nightRun) logf(format string, args ...any) {
	run.lines = append(run.lines, fmt.Sprintf(format, args...))
}

func (run *nightRun) intn(n int) int {
	run.engine.rngMu.Lock()
	defer run.engine.rngMu.Unlock()
	return run.engine.rng.Intn(n)
}

func (run *nightRun) shuffleStrings(s []string) {
	run.engine.rngMu.Lock()
	defer run.engine.rngMu.Unlock()
	run.engine.rng.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
}

// randomWolfRoleName picks among the Wolf-team roles in play, for
// framed inspections.
func (run *nightRun) randomWolfRoleName() string {
	wolves := run.st.WolfRoles()
	if len(wolves) == 0 {
		return "Alpha Wolf"
	}
	return wolves[run.intn(len(wolves))].Name
}

// newHandlerRegistry wires every role the default rule table knows to
// its phase handler. The per-phase maps live next to their handlers in
// the resolve_*.go files.
func newHandlerRegistry() map[string]map[string]handlerFunc {
	return map[string]map[string]handlerFunc{
		rules.PhaseLight:    lightHandlers,
		rules.PhaseMovement: movementHandlers,
		rules.PhaseBlock:    blockHandlers,
		rules.PhaseInfo:     infoHandlers,
		rules.PhaseKill:     killHandlers,
		rules.PhaseHeal:     healHandlers,
	}
}
