package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/vr-score-keeper/models"
	"github.com/lib/pq"
)

// RosterRepository manages the tournament_players relation. Roster order is
// the order of registration (the serial id of the relation row).
type RosterRepository interface {
	Add(ctx context.Context, tournamentID, playerID int) error
	Remove(ctx context.Context, tournamentID, playerID int) error
	ListPlayers(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Player, error)
	Count(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
}

type postgresRosterRepository struct {
	db *sql.DB
}

func NewPostgresRosterRepository(db *sql.DB) RosterRepository {
	return &postgresRosterRepository{db: db}
}

func (r *postgresRosterRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// Add is a no-op when the player is already registered.
func (r *postgresRosterRepository) Add(ctx context.Context, tournamentID, playerID int) error {
	query := `
		INSERT INTO tournament_players (tournament_id, player_id)
		VALUES ($1, $2)
		ON CONFLICT (tournament_id, player_id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query, tournamentID, playerID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			switch pqErr.Constraint {
			case "tournament_players_tournament_id_fkey":
				return ErrTournamentNotFound
			case "tournament_players_player_id_fkey":
				return ErrPlayerNotFound
			}
		}
		return fmt.Errorf("failed to register player %d in tournament %d: %w", playerID, tournamentID, err)
	}
	return nil
}

// Remove is a no-op when the player is not registered.
func (r *postgresRosterRepository) Remove(ctx context.Context, tournamentID, playerID int) error {
	query := `DELETE FROM tournament_players WHERE tournament_id = $1 AND player_id = $2`
	if _, err := r.db.ExecContext(ctx, query, tournamentID, playerID); err != nil {
		return fmt.Errorf("failed to unregister player %d from tournament %d: %w", playerID, tournamentID, err)
	}
	return nil
}

func (r *postgresRosterRepository) ListPlayers(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Player, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT p.id, p.name, p.avatar_key, p.created_at
		FROM tournament_players tp
		JOIN players p ON p.id = tp.player_id
		WHERE tp.tournament_id = $1
		ORDER BY tp.id ASC`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster of tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	players := make([]models.Player, 0)
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.ID, &p.Name, &p.AvatarKey, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan roster player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (r *postgresRosterRepository) Count(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	executor := r.getExecutor(exec)
	var count int
	query := `SELECT COUNT(*) FROM tournament_players WHERE tournament_id = $1`
	if err := executor.QueryRowContext(ctx, query, tournamentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count roster of tournament %d: %w", tournamentID, err)
	}
	return count, nil
}
