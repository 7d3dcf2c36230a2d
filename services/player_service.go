package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Dosada05/vr-score-keeper/models"
	"github.com/Dosada05/vr-score-keeper/repositories"
	"github.com/Dosada05/vr-score-keeper/storage"
)

const playerNameTakenMessage = "Player with this name already exists."

var allowedAvatarTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type PlayerService interface {
	Create(ctx context.Context, input PlayerInput) (*models.Player, error)
	GetByID(ctx context.Context, id int) (*models.Player, error)
	List(ctx context.Context) ([]models.Player, error)
	Update(ctx context.Context, id int, input PlayerInput) (*models.Player, error)
	Delete(ctx context.Context, id int) error
	UploadAvatar(ctx context.Context, id int, file io.Reader, contentType string) (*models.Player, error)
}

type PlayerInput struct {
	Name string `json:"name" validate:"required,max=255"`
}

type playerService struct {
	playerRepo     repositories.PlayerRepository
	tournamentRepo repositories.TournamentRepository
	uploader       storage.FileUploader
	logger         *slog.Logger
}

func NewPlayerService(
	playerRepo repositories.PlayerRepository,
	tournamentRepo repositories.TournamentRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) PlayerService {
	return &playerService{
		playerRepo:     playerRepo,
		tournamentRepo: tournamentRepo,
		uploader:       uploader,
		logger:         logger,
	}
}

// checkNameAvailable fails when another player (not exceptID) already uses name.
func (s *playerService) checkNameAvailable(ctx context.Context, name string, exceptID int) error {
	existing, err := s.playerRepo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil
		}
		return fmt.Errorf("failed to check player name: %w", err)
	}
	if existing.ID != exceptID {
		return newValidationError("name", playerNameTakenMessage)
	}
	return nil
}

func (s *playerService) Create(ctx context.Context, input PlayerInput) (*models.Player, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if err := s.checkNameAvailable(ctx, input.Name, 0); err != nil {
		return nil, err
	}

	player := &models.Player{Name: input.Name}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, handleRepositoryError(err)
	}
	return player, nil
}

func (s *playerService) GetByID(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	tournaments, err := s.tournamentRepo.ListByPlayer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load tournaments of player %d: %w", id, err)
	}
	player.Tournaments = tournaments
	populatePlayerAvatarURL(player, s.uploader)
	return player, nil
}

func (s *playerService) List(ctx context.Context) ([]models.Player, error) {
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range players {
		populatePlayerAvatarURL(&players[i], s.uploader)
	}
	return players, nil
}

func (s *playerService) Update(ctx context.Context, id int, input PlayerInput) (*models.Player, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	if err := s.checkNameAvailable(ctx, input.Name, id); err != nil {
		return nil, err
	}

	player.Name = input.Name
	if err := s.playerRepo.Update(ctx, player); err != nil {
		return nil, handleRepositoryError(err)
	}
	populatePlayerAvatarURL(player, s.uploader)
	return player, nil
}

func (s *playerService) Delete(ctx context.Context, id int) error {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		return handleRepositoryError(err)
	}
	if err := s.playerRepo.Delete(ctx, id); err != nil {
		return handleRepositoryError(err)
	}
	if player.AvatarKey != nil && s.uploader != nil {
		s.deleteAvatarObject(ctx, *player.AvatarKey)
	}
	return nil
}

func (s *playerService) UploadAvatar(ctx context.Context, id int, file io.Reader, contentType string) (*models.Player, error) {
	if s.uploader == nil {
		return nil, ErrStorageUnavailable
	}
	ext, ok := allowedAvatarTypes[strings.ToLower(contentType)]
	if !ok {
		return nil, newValidationError("avatar", fmt.Sprintf("Unsupported image type %q.", contentType))
	}

	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	key := storage.NewObjectKey(fmt.Sprintf("players/%d/avatar", id), ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload avatar of player %d: %w", id, err)
	}

	if err := s.playerRepo.UpdateAvatarKey(ctx, id, &key); err != nil {
		s.deleteAvatarObject(ctx, key)
		return nil, handleRepositoryError(err)
	}

	if player.AvatarKey != nil && *player.AvatarKey != "" {
		s.deleteAvatarObject(ctx, *player.AvatarKey)
	}

	player.AvatarKey = &key
	populatePlayerAvatarURL(player, s.uploader)
	return player, nil
}

func (s *playerService) deleteAvatarObject(ctx context.Context, key string) {
	if err := s.uploader.Delete(ctx, key); err != nil {
		s.logger.Warn("Failed to delete avatar object", "key", key, "error", err)
	}
}
