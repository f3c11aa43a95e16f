package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/davidarico/stinkbot-sub000/internal/auth"
	"github.com/davidarico/stinkbot-sub000/internal/engine"
	"github.com/davidarico/stinkbot-sub000/internal/store"
)

// NightStore is the slice of the game store the night endpoints use.
// Narrowed to an interface so handler tests can run on fakes.
type NightStore interface {
	GetGameInfo(ctx context.Context, gameID int64) (*store.Game, error)
	SaveNightAction(ctx context.Context, gameID int64, night int, a engine.NightAction) error
	GetNightActions(ctx context.Context, gameID int64, night int) ([]engine.NightAction, error)
	AdvanceToDay(ctx context.Context, gameID int64) error
}

// Resolver is the engine surface the night endpoints call.
type Resolver interface {
	ValidateSubmission(ctx context.Context, gameID int64, night int, a engine.NightAction) (bool, error)
	CalculateNightActions(ctx context.Context, gameID int64, night int, actions []engine.NightAction) (*engine.NightResult, error)
}

// Broadcaster pushes events to moderator streams.
type Broadcaster interface {
	Broadcast(gameID int64, eventType string, data any)
}

// NightHandler owns the night-action endpoints.
type NightHandler struct {
	store       NightStore
	resolver    Resolver
	broadcaster Broadcaster
	tokenSecret []byte
}

func NewNightHandler(s NightStore, r Resolver, b Broadcaster, tokenSecret []byte) *NightHandler {
	return &NightHandler{store: s, resolver: r, broadcaster: b, tokenSecret: tokenSecret}
}

func nightParams(r *http.Request) (gameID int64, night int, err error) {
	gameID, err = strconv.ParseInt(chi.URLParam(r, "gameID"), 10, 64)
	if err != nil {
		return 0, 0, err
	}
	night, err = strconv.Atoi(chi.URLParam(r, "night"))
	return gameID, night, err
}

// checkNight loads the game and confirms it is accepting actions for
// the requested night. Writes the error response itself on failure.
func (h *NightHandler) checkNight(w http.ResponseWriter, r *http.Request, gameID int64, night int) bool {
	game, err := h.store.GetGameInfo(r.Context(), gameID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "game not found")
		} else {
			writeError(w, http.StatusInternalServerError, "failed to load game")
		}
		return false
	}
	if game.Status != "active" || game.DayPhase != "night" {
		writeError(w, http.StatusConflict, "game is not in a night phase")
		return false
	}
	if game.NightNumber != night {
		writeError(w, http.StatusConflict, "not the current night")
		return false
	}
	return true
}

// SubmitAction handles POST /api/games/{gameID}/nights/{night}/actions.
// A resubmission for the same player replaces the earlier one.
func (h *NightHandler) SubmitAction(w http.ResponseWriter, r *http.Request) {
	gameID, night, err := nightParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game or night")
		return
	}
	if !h.checkNight(w, r, gameID, night) {
		return
	}
	var action engine.NightAction
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if action.PlayerID == 0 {
		writeError(w, http.StatusBadRequest, "playerId is required")
		return
	}
	ok, err := h.resolver.ValidateSubmission(r.Context(), gameID, night, action)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to validate action")
		return
	}
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "action is not valid for this role and state")
		return
	}
	if err := h.store.SaveNightAction(r.Context(), gameID, night, action); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save action")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"saved": true})
}

// ResolveNight handles POST /api/games/{gameID}/nights/{night}/resolve.
// Moderator only; resolves the night from the stored submissions.
func (h *NightHandler) ResolveNight(w http.ResponseWriter, r *http.Request) {
	gameID, night, err := nightParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game or night")
		return
	}
	if !h.checkNight(w, r, gameID, night) {
		return
	}
	actions, err := h.store.GetNightActions(r.Context(), gameID, night)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load actions")
		return
	}
	result, err := h.resolver.CalculateNightActions(r.Context(), gameID, night, actions)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrResolutionInProgress):
			writeError(w, http.StatusConflict, "resolution already in progress")
		case errors.Is(err, engine.ErrRoleUnresolved), errors.Is(err, engine.ErrUnknownRole):
			writeError(w, http.StatusInternalServerError, "game data is inconsistent")
		default:
			writeError(w, http.StatusInternalServerError, "failed to resolve night")
		}
		return
	}
	if err := h.store.AdvanceToDay(r.Context(), gameID); err != nil {
		writeError(w, http.StatusInternalServerError, "resolved but failed to advance the game")
		return
	}
	if h.broadcaster != nil {
		h.broadcaster.Broadcast(gameID, "night_resolved", result)
	}
	writeJSON(w, http.StatusOK, result)
}

// IssueWSToken handles POST /api/games/{gameID}/ws-token. Moderator
// only; the token authorizes the game's websocket stream.
func (h *NightHandler) IssueWSToken(w http.ResponseWriter, r *http.Request) {
	gameID, err := strconv.ParseInt(chi.URLParam(r, "gameID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}
	if len(h.tokenSecret) == 0 {
		writeError(w, http.StatusForbidden, "websocket tokens not configured")
		return
	}
	token, err := auth.GenerateToken(h.tokenSecret, gameID, "moderator", auth.DefaultTokenExpiry)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
