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
	ErrPlayerNotFound     = errors.New("player not found")
	ErrPlayerNameConflict = errors.New("player name already exists")
)

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	GetByName(ctx context.Context, name string) (*models.Player, error)
	List(ctx context.Context) ([]models.Player, error)
	Update(ctx context.Context, player *models.Player) error
	UpdateAvatarKey(ctx context.Context, playerID int, avatarKey *string) error
	Delete(ctx context.Context, id int) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) Create(ctx context.Context, p *models.Player) error {
	query := `INSERT INTO players (name) VALUES ($1) RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, p.Name).Scan(&p.ID, &p.CreatedAt)
	return r.handlePlayerError(err)
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `SELECT id, name, avatar_key, created_at FROM players WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *postgresPlayerRepository) GetByName(ctx context.Context, name string) (*models.Player, error) {
	query := `SELECT id, name, avatar_key, created_at FROM players WHERE name = $1`
	return r.getOne(ctx, query, name)
}

func (r *postgresPlayerRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.Player, error) {
	p := &models.Player{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&p.ID, &p.Name, &p.AvatarKey, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresPlayerRepository) List(ctx context.Context) ([]models.Player, error) {
	query := `SELECT id, name, avatar_key, created_at FROM players ORDER BY name ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	players := make([]models.Player, 0)
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.ID, &p.Name, &p.AvatarKey, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (r *postgresPlayerRepository) Update(ctx context.Context, p *models.Player) error {
	result, err := r.db.ExecContext(ctx, `UPDATE players SET name = $1 WHERE id = $2`, p.Name, p.ID)
	if err != nil {
		return r.handlePlayerError(err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) UpdateAvatarKey(ctx context.Context, playerID int, avatarKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE players SET avatar_key = $1 WHERE id = $2`, avatarKey, playerID)
	if err != nil {
		return fmt.Errorf("failed to update player avatar key: %w", err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete player %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) handlePlayerError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "players_name_key" {
		return ErrPlayerNameConflict
	}
	return err
}
