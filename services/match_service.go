package services

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/Dosada05/vr-score-keeper/models"
	"github.com/Dosada05/vr-score-keeper/repositories"
)

const futureMatchMessage = "Match date cannot be in the future"

type MatchService interface {
	Create(ctx context.Context, tournamentID int, input CreateMatchInput) (*models.Match, error)
	GetByID(ctx context.Context, id int) (*models.Match, error)
	List(ctx context.Context, tournamentID *int) ([]models.Match, error)
	Update(ctx context.Context, id int, input UpdateMatchInput) (*models.Match, error)
	Delete(ctx context.Context, id int) error
}

type CreateMatchInput struct {
	// Date defaults to the current time.
	Date *time.Time `json:"date"`
}

type UpdateMatchInput struct {
	TournamentID *int       `json:"tournament_id" validate:"omitempty,min=1"`
	Date         *time.Time `json:"date"`
}

type matchService struct {
	matchRepo      repositories.MatchRepository
	tournamentRepo repositories.TournamentRepository
	scoreRepo      repositories.ScoreRepository
	standings      StandingsService
	tx             repositories.Transactor
	logger         *slog.Logger
	now            func() time.Time
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
	scoreRepo repositories.ScoreRepository,
	standings StandingsService,
	tx repositories.Transactor,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		scoreRepo:      scoreRepo,
		standings:      standings,
		tx:             tx,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *matchService) validateDate(date time.Time) error {
	if date.After(s.now()) {
		return newValidationError("date", futureMatchMessage)
	}
	return nil
}

func (s *matchService) Create(ctx context.Context, tournamentID int, input CreateMatchInput) (*models.Match, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	match := &models.Match{
		TournamentID:   tournament.ID,
		TournamentName: tournament.Name,
		Date:           s.now(),
	}
	if input.Date != nil {
		if err := s.validateDate(*input.Date); err != nil {
			return nil, err
		}
		match.Date = *input.Date
	}

	if err := s.matchRepo.Create(ctx, match); err != nil {
		return nil, handleRepositoryError(err)
	}

	s.logger.Info("Match created", "match_id", match.ID, "tournament_id", match.TournamentID)
	return match, nil
}

func (s *matchService) GetByID(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	scores, err := s.scoreRepo.List(ctx, repositories.ListScoresFilter{MatchID: &id})
	if err != nil {
		return nil, err
	}
	match.Scores = scores
	return match, nil
}

func (s *matchService) List(ctx context.Context, tournamentID *int) ([]models.Match, error) {
	if tournamentID != nil {
		if _, err := s.tournamentRepo.GetByID(ctx, *tournamentID); err != nil {
			return nil, handleRepositoryError(err)
		}
	}
	return s.matchRepo.List(ctx, repositories.ListMatchesFilter{TournamentID: tournamentID})
}

// Update may move a match to another tournament, in which case both
// tournaments have their winner recomputed.
func (s *matchService) Update(ctx context.Context, id int, input UpdateMatchInput) (*models.Match, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if input.Date != nil {
		if err := s.validateDate(*input.Date); err != nil {
			return nil, err
		}
	}

	var (
		match    *models.Match
		outcomes []*WinnerOutcome
	)
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		match, err = s.matchRepo.GetByID(ctx, exec, id)
		if err != nil {
			return handleRepositoryError(err)
		}

		previousTournamentID := match.TournamentID
		if input.TournamentID != nil && *input.TournamentID != match.TournamentID {
			locked, err := s.lockTournaments(ctx, exec, previousTournamentID, *input.TournamentID)
			if err != nil {
				return err
			}
			target := locked[*input.TournamentID]
			match.TournamentID = target.ID
			match.TournamentName = target.Name
		}
		if input.Date != nil {
			match.Date = *input.Date
		}

		if err := s.matchRepo.Update(ctx, exec, match); err != nil {
			return handleRepositoryError(err)
		}

		if previousTournamentID == match.TournamentID {
			return nil
		}
		for _, tournamentID := range []int{previousTournamentID, match.TournamentID} {
			outcome, err := s.standings.RecomputeWinnerTx(ctx, exec, tournamentID)
			if err != nil {
				return err
			}
			outcomes = append(outcomes, outcome)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, outcome := range outcomes {
		s.standings.Publish(outcome)
	}
	return match, nil
}

func (s *matchService) Delete(ctx context.Context, id int) error {
	var outcome *WinnerOutcome
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		match, err := s.matchRepo.GetByID(ctx, exec, id)
		if err != nil {
			return handleRepositoryError(err)
		}
		if _, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, match.TournamentID); err != nil {
			return handleRepositoryError(err)
		}
		if err := s.matchRepo.Delete(ctx, exec, id); err != nil {
			return handleRepositoryError(err)
		}
		outcome, err = s.standings.RecomputeWinnerTx(ctx, exec, match.TournamentID)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info("Match deleted", "match_id", id, "tournament_id", outcome.TournamentID)
	s.standings.Publish(outcome)
	return nil
}

// lockTournaments takes the row lock of every given tournament. Locks are
// always taken in ascending id order.
func (s *matchService) lockTournaments(ctx context.Context, exec repositories.SQLExecutor, ids ...int) (map[int]*models.Tournament, error) {
	sorted := append([]int(nil), ids...)
	sort.Ints(sorted)

	locked := make(map[int]*models.Tournament, len(sorted))
	for _, id := range sorted {
		if _, ok := locked[id]; ok {
			continue
		}
		tournament, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, id)
		if err != nil {
			return nil, handleRepositoryError(err)
		}
		locked[id] = tournament
	}
	return locked, nil
}
