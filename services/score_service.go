package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/Dosada05/vr-score-keeper/models"
	"github.com/Dosada05/vr-score-keeper/repositories"
)

const scoreFieldPrefix = "score_"

// ScoreForm holds one value per roster player keyed "score_{playerID}".
// A nil value counts as missing.
type ScoreForm map[string]*int

// ScoreFieldName is the form key for a player's score.
func ScoreFieldName(playerID int) string {
	return scoreFieldPrefix + strconv.Itoa(playerID)
}

type ScoreService interface {
	// SubmitMatchScores stores a score for every roster player of the match's
	// tournament in one transaction and recomputes the winner.
	SubmitMatchScores(ctx context.Context, matchID int, form ScoreForm) (*ScoreSubmission, error)
	GetByID(ctx context.Context, id int) (*models.Score, error)
	List(ctx context.Context, matchID *int) ([]models.Score, error)
	Update(ctx context.Context, id int, input UpdateScoreInput) (*models.Score, error)
	Delete(ctx context.Context, id int) error
}

type UpdateScoreInput struct {
	Score *int `json:"score" validate:"required"`
}

type ScoreSubmission struct {
	Match   *models.Match  `json:"match"`
	Scores  []models.Score `json:"scores"`
	Outcome *WinnerOutcome `json:"outcome"`
}

type scoreService struct {
	scoreRepo      repositories.ScoreRepository
	matchRepo      repositories.MatchRepository
	tournamentRepo repositories.TournamentRepository
	rosterRepo     repositories.RosterRepository
	standings      StandingsService
	tx             repositories.Transactor
	logger         *slog.Logger
}

func NewScoreService(
	scoreRepo repositories.ScoreRepository,
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
	rosterRepo repositories.RosterRepository,
	standings StandingsService,
	tx repositories.Transactor,
	logger *slog.Logger,
) ScoreService {
	return &scoreService{
		scoreRepo:      scoreRepo,
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		rosterRepo:     rosterRepo,
		standings:      standings,
		tx:             tx,
		logger:         logger,
	}
}

func scoreOutOfRange(maxScore int) string {
	return fmt.Sprintf("Score must be between 0 and %d.", maxScore)
}

// validateScoreForm checks form against the roster and returns the values
// by player id, in roster order.
func validateScoreForm(form ScoreForm, roster []models.Player) ([]models.Score, error) {
	verr := &ValidationError{}
	maxScore := len(roster)

	onRoster := make(map[string]bool, len(roster))
	scores := make([]models.Score, 0, len(roster))
	for _, player := range roster {
		field := ScoreFieldName(player.ID)
		onRoster[field] = true

		value, ok := form[field]
		if !ok || value == nil {
			verr.Add(field, "This field is required.")
			continue
		}
		if *value < 0 || *value > maxScore {
			verr.Add(field, scoreOutOfRange(maxScore))
			continue
		}
		scores = append(scores, models.Score{PlayerID: player.ID, PlayerName: player.Name, Score: *value})
	}

	extra := make([]string, 0)
	for field := range form {
		if !onRoster[field] {
			extra = append(extra, field)
		}
	}
	sort.Strings(extra)
	for _, field := range extra {
		if _, err := strconv.Atoi(strings.TrimPrefix(field, scoreFieldPrefix)); err != nil || !strings.HasPrefix(field, scoreFieldPrefix) {
			verr.Add(field, "Unknown field.")
			continue
		}
		verr.Add(field, "Player is not registered in this tournament.")
	}

	if !verr.Empty() {
		return nil, verr
	}
	return scores, nil
}

func (s *scoreService) SubmitMatchScores(ctx context.Context, matchID int, form ScoreForm) (*ScoreSubmission, error) {
	submission := &ScoreSubmission{}
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		match, err := s.matchRepo.GetByID(ctx, exec, matchID)
		if err != nil {
			return handleRepositoryError(err)
		}
		if _, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, match.TournamentID); err != nil {
			return handleRepositoryError(err)
		}

		roster, err := s.rosterRepo.ListPlayers(ctx, exec, match.TournamentID)
		if err != nil {
			return err
		}
		scores, err := validateScoreForm(form, roster)
		if err != nil {
			return err
		}

		for i := range scores {
			scores[i].MatchID = match.ID
			if err := s.scoreRepo.Upsert(ctx, exec, &scores[i]); err != nil {
				return handleRepositoryError(err)
			}
		}

		outcome, err := s.standings.RecomputeWinnerTx(ctx, exec, match.TournamentID)
		if err != nil {
			return err
		}

		submission.Match = match
		submission.Scores = scores
		submission.Outcome = outcome
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Match scores submitted",
		"match_id", matchID,
		"tournament_id", submission.Match.TournamentID,
		"scores", len(submission.Scores),
	)
	s.standings.Publish(submission.Outcome)
	return submission, nil
}

func (s *scoreService) GetByID(ctx context.Context, id int) (*models.Score, error) {
	score, err := s.scoreRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return score, nil
}

func (s *scoreService) List(ctx context.Context, matchID *int) ([]models.Score, error) {
	if matchID != nil {
		if _, err := s.matchRepo.GetByID(ctx, nil, *matchID); err != nil {
			return nil, handleRepositoryError(err)
		}
	}
	return s.scoreRepo.List(ctx, repositories.ListScoresFilter{MatchID: matchID})
}

func (s *scoreService) Update(ctx context.Context, id int, input UpdateScoreInput) (*models.Score, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	var (
		score   *models.Score
		outcome *WinnerOutcome
	)
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		score, err = s.scoreRepo.GetByID(ctx, exec, id)
		if err != nil {
			return handleRepositoryError(err)
		}
		match, err := s.matchRepo.GetByID(ctx, exec, score.MatchID)
		if err != nil {
			return handleRepositoryError(err)
		}
		if _, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, match.TournamentID); err != nil {
			return handleRepositoryError(err)
		}

		maxScore, err := s.rosterRepo.Count(ctx, exec, match.TournamentID)
		if err != nil {
			return err
		}
		if *input.Score < 0 || *input.Score > maxScore {
			return newValidationError("score", scoreOutOfRange(maxScore))
		}

		if err := s.scoreRepo.UpdateValue(ctx, exec, id, *input.Score); err != nil {
			return handleRepositoryError(err)
		}
		score.Score = *input.Score

		outcome, err = s.standings.RecomputeWinnerTx(ctx, exec, match.TournamentID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.standings.Publish(outcome)
	return score, nil
}

func (s *scoreService) Delete(ctx context.Context, id int) error {
	var outcome *WinnerOutcome
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		score, err := s.scoreRepo.GetByID(ctx, exec, id)
		if err != nil {
			return handleRepositoryError(err)
		}
		match, err := s.matchRepo.GetByID(ctx, exec, score.MatchID)
		if err != nil {
			return handleRepositoryError(err)
		}
		// The tournament lock comes before any score row lock, as in SubmitMatchScores.
		if _, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, match.TournamentID); err != nil {
			return handleRepositoryError(err)
		}
		if err := s.scoreRepo.Delete(ctx, exec, id); err != nil {
			return handleRepositoryError(err)
		}
		outcome, err = s.standings.RecomputeWinnerTx(ctx, exec, match.TournamentID)
		return err
	})
	if err != nil {
		return err
	}

	s.standings.Publish(outcome)
	return nil
}
