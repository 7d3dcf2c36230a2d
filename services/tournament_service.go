package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/vr-score-keeper/models"
	"github.com/Dosada05/vr-score-keeper/repositories"
	"github.com/Dosada05/vr-score-keeper/storage"
)

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	GetDetail(ctx context.Context, id int) (*TournamentDetail, error)
	List(ctx context.Context) ([]models.Tournament, error)
	Update(ctx context.Context, id int, input UpdateTournamentInput) (*models.Tournament, error)
	Delete(ctx context.Context, id int) error

	RegisterPlayer(ctx context.Context, tournamentID, playerID int) error
	UnregisterPlayer(ctx context.Context, tournamentID, playerID int) error
	ListRoster(ctx context.Context, tournamentID int) ([]models.Player, error)
}

type CreateTournamentInput struct {
	Name string `json:"name" validate:"max=255"`
	// Date is YYYY-MM-DD; empty means today.
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type UpdateTournamentInput struct {
	Name *string `json:"name" validate:"omitempty,max=255"`
	Date *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// TournamentDetail is the tournament page: roster, matches and standings.
type TournamentDetail struct {
	Tournament *models.Tournament `json:"tournament"`
	Standings  []models.Standing  `json:"standings"`
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	playerRepo     repositories.PlayerRepository
	rosterRepo     repositories.RosterRepository
	matchRepo      repositories.MatchRepository
	standings      StandingsService
	uploader       storage.FileUploader
	logger         *slog.Logger
	now            func() time.Time
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.PlayerRepository,
	rosterRepo repositories.RosterRepository,
	matchRepo repositories.MatchRepository,
	standings StandingsService,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		playerRepo:     playerRepo,
		rosterRepo:     rosterRepo,
		matchRepo:      matchRepo,
		standings:      standings,
		uploader:       uploader,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	tournament := &models.Tournament{
		Name: strings.TrimSpace(input.Name),
		Date: truncateToDate(s.now()),
	}
	if input.Date != "" {
		date, err := parseDate(input.Date)
		if err != nil {
			return nil, newValidationError("date", "Enter a valid date.")
		}
		tournament.Date = date
	}

	if tournament.Name == "" {
		count, err := s.tournamentRepo.Count(ctx)
		if err != nil {
			return nil, err
		}
		tournament.Name = models.DefaultTournamentName(count)
	}

	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, err
	}

	s.logger.Info("Tournament created", "tournament_id", tournament.ID, "name", tournament.Name)
	return tournament, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return tournament, nil
}

func (s *tournamentService) GetDetail(ctx context.Context, id int) (*TournamentDetail, error) {
	tournament, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	roster, err := s.rosterRepo.ListPlayers(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	for i := range roster {
		populatePlayerAvatarURL(&roster[i], s.uploader)
	}

	matches, err := s.matchRepo.List(ctx, repositories.ListMatchesFilter{TournamentID: &id})
	if err != nil {
		return nil, fmt.Errorf("failed to load matches: %w", err)
	}

	standings, err := s.standings.ComputeStandings(ctx, id)
	if err != nil {
		return nil, err
	}

	tournament.Players = roster
	tournament.Matches = matches
	return &TournamentDetail{Tournament: tournament, Standings: standings}, nil
}

func (s *tournamentService) List(ctx context.Context) ([]models.Tournament, error) {
	return s.tournamentRepo.List(ctx)
}

func (s *tournamentService) Update(ctx context.Context, id int, input UpdateTournamentInput) (*models.Tournament, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	tournament, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if name := strings.TrimSpace(*input.Name); name != "" {
			tournament.Name = name
		}
	}
	if input.Date != nil && *input.Date != "" {
		date, err := parseDate(*input.Date)
		if err != nil {
			return nil, newValidationError("date", "Enter a valid date.")
		}
		tournament.Date = date
	}

	if err := s.tournamentRepo.Update(ctx, tournament); err != nil {
		return nil, handleRepositoryError(err)
	}
	return tournament, nil
}

func (s *tournamentService) Delete(ctx context.Context, id int) error {
	if err := s.tournamentRepo.Delete(ctx, id); err != nil {
		return handleRepositoryError(err)
	}
	s.logger.Info("Tournament deleted", "tournament_id", id)
	return nil
}

func (s *tournamentService) RegisterPlayer(ctx context.Context, tournamentID, playerID int) error {
	if err := s.ensureTournamentAndPlayer(ctx, tournamentID, playerID); err != nil {
		return err
	}
	if err := s.rosterRepo.Add(ctx, tournamentID, playerID); err != nil {
		return handleRepositoryError(err)
	}
	return nil
}

func (s *tournamentService) UnregisterPlayer(ctx context.Context, tournamentID, playerID int) error {
	if err := s.ensureTournamentAndPlayer(ctx, tournamentID, playerID); err != nil {
		return err
	}
	return s.rosterRepo.Remove(ctx, tournamentID, playerID)
}

func (s *tournamentService) ListRoster(ctx context.Context, tournamentID int) ([]models.Player, error) {
	if _, err := s.GetByID(ctx, tournamentID); err != nil {
		return nil, err
	}
	roster, err := s.rosterRepo.ListPlayers(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	for i := range roster {
		populatePlayerAvatarURL(&roster[i], s.uploader)
	}
	return roster, nil
}

func (s *tournamentService) ensureTournamentAndPlayer(ctx context.Context, tournamentID, playerID int) error {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return handleRepositoryError(err)
	}
	if _, err := s.playerRepo.GetByID(ctx, playerID); err != nil {
		return handleRepositoryError(err)
	}
	return nil
}
