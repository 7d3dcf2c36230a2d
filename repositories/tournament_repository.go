package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/vr-score-keeper/models"
)

var (
	ErrTournamentNotFound = errors.New("tournament not found")
)

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	// GetByIDForUpdate locks the tournament row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	List(ctx context.Context) ([]models.Tournament, error)
	ListByPlayer(ctx context.Context, playerID int) ([]models.Tournament, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, tournament *models.Tournament) error
	UpdateWinner(ctx context.Context, exec SQLExecutor, id int, winner string) error
	Delete(ctx context.Context, id int) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `id, name, date, winner, created_at, updated_at`

func scanTournament(row interface{ Scan(dest ...interface{}) error }, t *models.Tournament) error {
	return row.Scan(&t.ID, &t.Name, &t.Date, &t.Winner, &t.CreatedAt, &t.UpdatedAt)
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (name, date)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, t.Name, t.Date).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create tournament: %w", err)
	}
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	return r.getByID(ctx, r.db, id, false)
}

func (r *postgresTournamentRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	return r.getByID(ctx, r.getExecutor(exec), id, true)
}

func (r *postgresTournamentRepository) getByID(ctx context.Context, executor SQLExecutor, id int, lock bool) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	t := &models.Tournament{}
	if err := scanTournament(executor.QueryRowContext(ctx, query, id), t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context) ([]models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments ORDER BY date DESC, id DESC`
	return r.queryTournaments(ctx, query)
}

func (r *postgresTournamentRepository) ListByPlayer(ctx context.Context, playerID int) ([]models.Tournament, error) {
	query := `
		SELECT t.id, t.name, t.date, t.winner, t.created_at, t.updated_at
		FROM tournaments t
		JOIN tournament_players tp ON tp.tournament_id = t.id
		WHERE tp.player_id = $1
		ORDER BY t.date DESC, t.id DESC`
	return r.queryTournaments(ctx, query, playerID)
}

func (r *postgresTournamentRepository) queryTournaments(ctx context.Context, query string, args ...interface{}) ([]models.Tournament, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := scanTournament(rows, &t); scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tournaments`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tournaments: %w", err)
	}
	return count, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	query := `
		UPDATE tournaments SET name = $1, date = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query, t.Name, t.Date, t.ID).Scan(&t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to update tournament %d: %w", t.ID, err)
	}
	return nil
}

func (r *postgresTournamentRepository) UpdateWinner(ctx context.Context, exec SQLExecutor, id int, winner string) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET winner = $1, updated_at = NOW() WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, winner, id)
	if err != nil {
		return fmt.Errorf("failed to update winner for tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}
