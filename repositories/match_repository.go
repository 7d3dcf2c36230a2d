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
	ErrMatchNotFound = errors.New("match not found")
)

type ListMatchesFilter struct {
	TournamentID *int
}

type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	List(ctx context.Context, filter ListMatchesFilter) ([]models.Match, error)
	CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	Update(ctx context.Context, exec SQLExecutor, match *models.Match) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchRepository) Create(ctx context.Context, m *models.Match) error {
	query := `
		INSERT INTO matches (tournament_id, date)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, m.TournamentID, m.Date).Scan(&m.ID, &m.CreatedAt)
	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT m.id, m.tournament_id, m.date, m.created_at, t.name
		FROM matches m
		JOIN tournaments t ON t.id = m.tournament_id
		WHERE m.id = $1`

	m := &models.Match{}
	err := executor.QueryRowContext(ctx, query, id).Scan(&m.ID, &m.TournamentID, &m.Date, &m.CreatedAt, &m.TournamentName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) List(ctx context.Context, filter ListMatchesFilter) ([]models.Match, error) {
	query := `
		SELECT m.id, m.tournament_id, m.date, m.created_at, t.name
		FROM matches m
		JOIN tournaments t ON t.id = m.tournament_id`

	args := []interface{}{}
	if filter.TournamentID != nil {
		query += ` WHERE m.tournament_id = $1`
		args = append(args, *filter.TournamentID)
	}
	query += ` ORDER BY m.date DESC, m.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		var m models.Match
		if err := rows.Scan(&m.ID, &m.TournamentID, &m.Date, &m.CreatedAt, &m.TournamentName); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	executor := r.getExecutor(exec)
	var count int
	query := `SELECT COUNT(*) FROM matches WHERE tournament_id = $1`
	if err := executor.QueryRowContext(ctx, query, tournamentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count matches of tournament %d: %w", tournamentID, err)
	}
	return count, nil
}

func (r *postgresMatchRepository) Update(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	executor := r.getExecutor(exec)
	query := `UPDATE matches SET tournament_id = $1, date = $2 WHERE id = $3`
	result, err := executor.ExecContext(ctx, query, m.TournamentID, m.Date, m.ID)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" && pqErr.Constraint == "matches_tournament_id_fkey" {
		return ErrTournamentNotFound
	}
	return err
}
