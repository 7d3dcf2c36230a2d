package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/vr-score-keeper/models"
	"github.com/lib/pq"
)

var (
	ErrScoreNotFound = errors.New("score not found")
)

type ListScoresFilter struct {
	MatchID *int
}

type ScoreRepository interface {
	// Upsert inserts the score or overwrites the value of the existing
	// (player, match) row.
	Upsert(ctx context.Context, exec SQLExecutor, score *models.Score) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Score, error)
	List(ctx context.Context, filter ListScoresFilter) ([]models.Score, error)
	UpdateValue(ctx context.Context, exec SQLExecutor, id, value int) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	// TotalsByTournament sums scores per player over every match of the tournament.
	TotalsByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (map[int]int, error)
}

type postgresScoreRepository struct {
	db *sql.DB
}

func NewPostgresScoreRepository(db *sql.DB) ScoreRepository {
	return &postgresScoreRepository{db: db}
}

func (r *postgresScoreRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresScoreRepository) Upsert(ctx context.Context, exec SQLExecutor, s *models.Score) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO scores (player_id, match_id, score)
		VALUES ($1, $2, $3)
		ON CONFLICT (player_id, match_id)
		DO UPDATE SET score = EXCLUDED.score, updated_at = NOW()
		RETURNING id, created_at, updated_at`

	err := executor.QueryRowContext(ctx, query, s.PlayerID, s.MatchID, s.Score).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			switch pqErr.Constraint {
			case "scores_player_id_fkey":
				return ErrPlayerNotFound
			case "scores_match_id_fkey":
				return ErrMatchNotFound
			}
		}
		return fmt.Errorf("failed to upsert score for player %d in match %d: %w", s.PlayerID, s.MatchID, err)
	}
	return nil
}

const scoreSelect = `
	SELECT s.id, s.player_id, s.match_id, s.score, s.created_at, s.updated_at, p.name
	FROM scores s
	JOIN players p ON p.id = s.player_id`

func (r *postgresScoreRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Score, error) {
	executor := r.getExecutor(exec)
	s := &models.Score{}
	err := executor.QueryRowContext(ctx, scoreSelect+` WHERE s.id = $1`, id).Scan(
		&s.ID, &s.PlayerID, &s.MatchID, &s.Score, &s.CreatedAt, &s.UpdatedAt, &s.PlayerName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScoreNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *postgresScoreRepository) List(ctx context.Context, filter ListScoresFilter) ([]models.Score, error) {
	query := scoreSelect
	args := []interface{}{}
	if filter.MatchID != nil {
		query += ` WHERE s.match_id = $1`
		args = append(args, *filter.MatchID)
	}
	query += ` ORDER BY s.match_id DESC, s.score DESC, p.name ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	defer rows.Close()

	scores := make([]models.Score, 0)
	for rows.Next() {
		var s models.Score
		if err := rows.Scan(&s.ID, &s.PlayerID, &s.MatchID, &s.Score, &s.CreatedAt, &s.UpdatedAt, &s.PlayerName); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

func (r *postgresScoreRepository) UpdateValue(ctx context.Context, exec SQLExecutor, id, value int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE scores SET score = $1, updated_at = NOW() WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, value, id)
	if err != nil {
		return fmt.Errorf("failed to update score %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrScoreNotFound)
}

func (r *postgresScoreRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM scores WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete score %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrScoreNotFound)
}

func (r *postgresScoreRepository) TotalsByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (map[int]int, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT s.player_id, COALESCE(SUM(s.score), 0)
		FROM scores s
		JOIN matches m ON m.id = s.match_id
		WHERE m.tournament_id = $1
		GROUP BY s.player_id`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum scores of tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	totals := make(map[int]int)
	for rows.Next() {
		var playerID, total int
		if err := rows.Scan(&playerID, &total); err != nil {
			return nil, fmt.Errorf("failed to scan score total: %w", err)
		}
		totals[playerID] = total
	}
	return totals, rows.Err()
}
