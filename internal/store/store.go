// Package store is the postgres persistence layer. It implements the
// engine's Storage port plus the night-action and game queries the
// HTTP layer needs.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/davidarico/stinkbot-sub000/internal/engine"
)

// Game is the games-table row the HTTP layer checks before accepting
// night traffic.
type Game struct {
	ID          int64  `json:"id"`
	Status      string `json:"status"`
	DayNumber   int    `json:"dayNumber"`
	DayPhase    string `json:"dayPhase"`
	NightNumber int    `json:"nightNumber"`
}

// GameStore wraps the pgx pool with the queries the app needs.
type GameStore struct {
	pool *pgxpool.Pool
}

func NewGameStore(pool *pgxpool.Pool) *GameStore {
	return &GameStore{pool: pool}
}

// GetGameInfo fetches one game's header row.
func (s *GameStore) GetGameInfo(ctx context.Context, gameID int64) (*Game, error) {
	var g Game
	err := s.pool.QueryRow(ctx, `
		SELECT id, status, day_number, day_phase, night_number
		FROM games
		WHERE id = $1
	`, gameID).Scan(&g.ID, &g.Status, &g.DayNumber, &g.DayPhase, &g.NightNumber)
	if err != nil {
		return nil, fmt.Errorf("get game %d: %w", gameID, err)
	}
	return &g, nil
}

// GetPlayers loads every player in a game, ordered by id so the
// engine's per-phase iteration is stable.
func (s *GameStore) GetPlayers(ctx context.Context, gameID int64) ([]*engine.Player, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, username, status, role, team, is_wolf,
		       framed_night, charges_left,
		       is_doused, is_infected, is_carrier, infection_night,
		       COALESCE(hypnotized_by, ''), hypnotized_until,
		       conversion_progress, COALESCE(conversion_target, ''),
		       COALESCE(killed_by, ''), COALESCE(kill_flavor, ''), COALESCE(body_location, '')
		FROM players
		WHERE game_id = $1
		ORDER BY id
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("query players for game %d: %w", gameID, err)
	}
	defer rows.Close()

	var players []*engine.Player
	for rows.Next() {
		p := &engine.Player{}
		if err := rows.Scan(
			&p.ID, &p.Username, &p.Status, &p.Role, &p.Team, &p.IsWolf,
			&p.FramedNight, &p.ChargesLeft,
			&p.IsDoused, &p.IsInfected, &p.IsCarrier, &p.InfectionNight,
			&p.HypnotizedBy, &p.HypnotizedUntil,
			&p.ConversionProgress, &p.ConversionTarget,
			&p.KilledBy, &p.KillFlavor, &p.BodyLocation,
		); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// GetGameRoles returns the roles in play for a game with any per-game
// charge overrides.
func (s *GameStore) GetGameRoles(ctx context.Context, gameID int64) ([]engine.GameRole, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT role_name, charges
		FROM game_roles
		WHERE game_id = $1
		ORDER BY id
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("query roles for game %d: %w", gameID, err)
	}
	defer rows.Close()

	var out []engine.GameRole
	for rows.Next() {
		var gr engine.GameRole
		if err := rows.Scan(&gr.Name, &gr.Charges); err != nil {
			return nil, fmt.Errorf("scan game role: %w", err)
		}
		out = append(out, gr)
	}
	return out, rows.Err()
}

// GetGameMeta loads the per-player metadata rows for one night.
func (s *GameStore) GetGameMeta(ctx context.Context, gameID int64, night int) ([]engine.GameMeta, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT game_id, username, night, meta_data
		FROM game_meta
		WHERE game_id = $1 AND night = $2
	`, gameID, night)
	if err != nil {
		return nil, fmt.Errorf("query meta for game %d night %d: %w", gameID, night, err)
	}
	defer rows.Close()

	var out []engine.GameMeta
	for rows.Next() {
		var m engine.GameMeta
		if err := rows.Scan(&m.GameID, &m.Username, &m.Night, &m.Data); err != nil {
			return nil, fmt.Errorf("scan meta: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// SaveNightResolution writes the resolved players and meta rows in a
// single transaction so a failed resolution leaves no partial night.
func (s *GameStore) SaveNightResolution(ctx context.Context, st *engine.GameState) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, p := range st.Players {
		_, err := tx.Exec(ctx, `
			UPDATE players
			SET status = $1,
			    role = $2,
			    team = $3,
			    framed_night = $4,
			    charges_left = $5,
			    is_doused = $6,
			    is_infected = $7,
			    is_carrier = $8,
			    infection_night = $9,
			    hypnotized_by = NULLIF($10, ''),
			    hypnotized_until = $11,
			    conversion_progress = $12,
			    conversion_target = NULLIF($13, ''),
			    killed_by = NULLIF($14, ''),
			    kill_flavor = NULLIF($15, ''),
			    body_location = NULLIF($16, '')
			WHERE id = $17 AND game_id = $18
		`,
			p.Status, p.Role, p.Team, p.FramedNight, p.ChargesLeft,
			p.IsDoused, p.IsInfected, p.IsCarrier, p.InfectionNight,
			p.HypnotizedBy, p.HypnotizedUntil,
			p.ConversionProgress, p.ConversionTarget,
			p.KilledBy, p.KillFlavor, p.BodyLocation,
			p.ID, st.GameID,
		)
		if err != nil {
			return fmt.Errorf("update player %d: %w", p.ID, err)
		}
	}

	for _, m := range st.Meta {
		_, err := tx.Exec(ctx, `
			INSERT INTO game_meta (game_id, username, night, meta_data)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (game_id, username, night)
			DO UPDATE SET meta_data = EXCLUDED.meta_data, updated_at = now()
		`, m.GameID, m.Username, m.Night, m.Data)
		if err != nil {
			return fmt.Errorf("upsert meta for %s: %w", m.Username, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// SaveNightAction upserts one player's submission for a night; a
// resubmission replaces the earlier one.
func (s *GameStore) SaveNightAction(ctx context.Context, gameID int64, night int, a engine.NightAction) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO night_actions (game_id, player_id, night_number, action, target, secondary_target)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''))
		ON CONFLICT (game_id, player_id, night_number)
		DO UPDATE SET action = EXCLUDED.action,
		              target = EXCLUDED.target,
		              secondary_target = EXCLUDED.secondary_target,
		              updated_at = now()
	`, gameID, a.PlayerID, night, a.Action, a.Target, a.SecondaryTarget)
	if err != nil {
		return fmt.Errorf("save action for player %d: %w", a.PlayerID, err)
	}
	return nil
}

// GetNightActions returns every submission for a night, ordered by
// player id.
func (s *GameStore) GetNightActions(ctx context.Context, gameID int64, night int) ([]engine.NightAction, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT player_id, action, COALESCE(target, ''), COALESCE(secondary_target, '')
		FROM night_actions
		WHERE game_id = $1 AND night_number = $2
		ORDER BY player_id
	`, gameID, night)
	if err != nil {
		return nil, fmt.Errorf("query actions for game %d night %d: %w", gameID, night, err)
	}
	defer rows.Close()

	var out []engine.NightAction
	for rows.Next() {
		var a engine.NightAction
		if err := rows.Scan(&a.PlayerID, &a.Action, &a.Target, &a.SecondaryTarget); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AdvanceToDay flips a game out of its night phase after a successful
// resolution.
func (s *GameStore) AdvanceToDay(ctx context.Context, gameID int64) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE games
		SET day_phase = 'day', day_number = day_number + 1, night_number = night_number + 1
		WHERE id = $1 AND day_phase = 'night'
	`, gameID)
	if err != nil {
		return fmt.Errorf("advance game %d: %w", gameID, err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// CreateGame inserts a new game in its first night.
func (s *GameStore) CreateGame(ctx context.Context) (*Game, error) {
	var g Game
	err := s.pool.QueryRow(ctx, `
		INSERT INTO games (status, day_number, night_number, day_phase)
		VALUES ('active', 0, 1, 'night')
		RETURNING id, status, day_number, day_phase, night_number
	`).Scan(&g.ID, &g.Status, &g.DayNumber, &g.DayPhase, &g.NightNumber)
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	return &g, nil
}

// AddPlayer signs a player up with a role.
func (s *GameStore) AddPlayer(ctx context.Context, gameID int64, username, role, team string, isWolf bool, charges *int) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO players (game_id, username, status, role, team, is_wolf, charges_left)
		VALUES ($1, $2, 'alive', $3, $4, $5, $6)
		RETURNING id
	`, gameID, username, role, team, isWolf, charges).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("add player %s: %w", username, err)
	}
	return id, nil
}

// AddGameRole registers a role as in play for a game.
func (s *GameStore) AddGameRole(ctx context.Context, gameID int64, roleName string, count int, charges *int) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO game_roles (game_id, role_name, role_count, charges)
		VALUES ($1, $2, $3, $4)
	`, gameID, roleName, count, charges)
	if err != nil {
		return fmt.Errorf("add game role %s: %w", roleName, err)
	}
	return nil
}
