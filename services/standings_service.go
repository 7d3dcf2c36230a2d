package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Dosada05/vr-score-keeper/config"
	"github.com/Dosada05/vr-score-keeper/live"
	"github.com/Dosada05/vr-score-keeper/models"
	"github.com/Dosada05/vr-score-keeper/repositories"
	"github.com/Dosada05/vr-score-keeper/storage"
	"golang.org/x/sync/errgroup"
)

// summaryConcurrency bounds how many tournaments have their standings
// computed at once for the home summary.
const summaryConcurrency = 4

// Notifier pushes messages to live subscribers of a room.
type Notifier interface {
	BroadcastToRoom(roomID string, message interface{})
}

// WinnerOutcome is the result of a winner recompute.
type WinnerOutcome struct {
	TournamentID int               `json:"tournament_id"`
	Winner       *string           `json:"winner"`
	Changed      bool              `json:"changed"`
	Standings    []models.Standing `json:"standings"`
}

type StandingsService interface {
	ComputeStandings(ctx context.Context, tournamentID int) ([]models.Standing, error)
	// RecomputeWinner locks the tournament, recomputes its standings and stores
	// the winner if one qualifies, then notifies live subscribers.
	RecomputeWinner(ctx context.Context, tournamentID int) (*WinnerOutcome, error)
	// RecomputeWinnerTx does the same work on the caller's transaction. The
	// caller is expected to Publish the outcome once the transaction commits.
	RecomputeWinnerTx(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (*WinnerOutcome, error)
	Publish(outcome *WinnerOutcome)
	Summary(ctx context.Context) (*models.Summary, error)
}

type standingsService struct {
	tournamentRepo repositories.TournamentRepository
	rosterRepo     repositories.RosterRepository
	matchRepo      repositories.MatchRepository
	scoreRepo      repositories.ScoreRepository
	tx             repositories.Transactor
	notifier       Notifier
	uploader       storage.FileUploader
	cfg            config.Standings
	logger         *slog.Logger
}

func NewStandingsService(
	tournamentRepo repositories.TournamentRepository,
	rosterRepo repositories.RosterRepository,
	matchRepo repositories.MatchRepository,
	scoreRepo repositories.ScoreRepository,
	tx repositories.Transactor,
	notifier Notifier,
	uploader storage.FileUploader,
	cfg config.Standings,
	logger *slog.Logger,
) StandingsService {
	if cfg.WinThreshold <= 0 {
		cfg.WinThreshold = config.DefaultWinThreshold
	}
	return &standingsService{
		tournamentRepo: tournamentRepo,
		rosterRepo:     rosterRepo,
		matchRepo:      matchRepo,
		scoreRepo:      scoreRepo,
		tx:             tx,
		notifier:       notifier,
		uploader:       uploader,
		cfg:            cfg,
		logger:         logger,
	}
}

func (s *standingsService) ComputeStandings(ctx context.Context, tournamentID int) ([]models.Standing, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return s.standingsFor(ctx, nil, tournament.ID)
}

// standingsFor totals every roster player's scores over the tournament's
// matches. A tournament without matches has empty standings.
func (s *standingsService) standingsFor(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]models.Standing, error) {
	matchCount, err := s.matchRepo.CountByTournament(ctx, exec, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to count matches of tournament %d: %w", tournamentID, err)
	}
	if matchCount == 0 {
		return []models.Standing{}, nil
	}

	roster, err := s.rosterRepo.ListPlayers(ctx, exec, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster of tournament %d: %w", tournamentID, err)
	}
	totals, err := s.scoreRepo.TotalsByTournament(ctx, exec, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to total scores of tournament %d: %w", tournamentID, err)
	}

	standings := make([]models.Standing, 0, len(roster))
	for _, player := range roster {
		populatePlayerAvatarURL(&player, s.uploader)
		standings = append(standings, models.Standing{Player: player, Total: totals[player.ID]})
	}
	SortStandings(standings, s.cfg.TieBreak)
	return standings, nil
}

// SortStandings orders by total descending, then by the tie-break. Input is
// expected in roster order, which the roster tie-break preserves.
func SortStandings(standings []models.Standing, tieBreak config.TieBreak) {
	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		switch tieBreak {
		case config.TieBreakRoster:
			return false
		case config.TieBreakName:
			if a.Player.Name != b.Player.Name {
				return a.Player.Name < b.Player.Name
			}
			return a.Player.ID < b.Player.ID
		default:
			return a.Player.ID < b.Player.ID
		}
	})
}

// DetermineWinner returns the leader of sorted standings when their total
// reaches threshold.
func DetermineWinner(standings []models.Standing, threshold int) (models.Standing, bool) {
	if len(standings) == 0 || standings[0].Total < threshold {
		return models.Standing{}, false
	}
	return standings[0], true
}

func (s *standingsService) RecomputeWinner(ctx context.Context, tournamentID int) (*WinnerOutcome, error) {
	var outcome *WinnerOutcome
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		outcome, err = s.RecomputeWinnerTx(ctx, exec, tournamentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Publish(outcome)
	return outcome, nil
}

func (s *standingsService) RecomputeWinnerTx(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (*WinnerOutcome, error) {
	tournament, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	standings, err := s.standingsFor(ctx, exec, tournament.ID)
	if err != nil {
		return nil, err
	}

	outcome := &WinnerOutcome{
		TournamentID: tournament.ID,
		Winner:       tournament.Winner,
		Standings:    standings,
	}

	leader, ok := DetermineWinner(standings, s.cfg.WinThreshold)
	if !ok {
		return outcome, nil
	}
	if tournament.Winner != nil && *tournament.Winner == leader.Player.Name {
		return outcome, nil
	}

	if err := s.tournamentRepo.UpdateWinner(ctx, exec, tournament.ID, leader.Player.Name); err != nil {
		return nil, fmt.Errorf("failed to store winner of tournament %d: %w", tournament.ID, handleRepositoryError(err))
	}
	winner := leader.Player.Name
	outcome.Winner = &winner
	outcome.Changed = true

	s.logger.Info("Tournament winner decided",
		"tournament_id", tournament.ID,
		"winner", winner,
		"total", leader.Total,
		"threshold", s.cfg.WinThreshold,
	)
	return outcome, nil
}

func (s *standingsService) Publish(outcome *WinnerOutcome) {
	if s.notifier == nil || outcome == nil {
		return
	}
	room := live.TournamentRoom(outcome.TournamentID)
	s.notifier.BroadcastToRoom(room, live.Message{
		Type:    live.MessageStandingsUpdated,
		Payload: outcome,
		RoomID:  room,
	})
	if outcome.Changed {
		s.notifier.BroadcastToRoom(room, live.Message{
			Type: live.MessageWinnerDecided,
			Payload: map[string]interface{}{
				"tournament_id": outcome.TournamentID,
				"winner":        derefString(outcome.Winner),
			},
			RoomID: room,
		})
	}
}

// Summary builds the home view. It never writes a winner.
func (s *standingsService) Summary(ctx context.Context) (*models.Summary, error) {
	tournaments, err := s.tournamentRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}

	summary := &models.Summary{
		Active:   []models.TournamentStandings{},
		Previous: []models.TournamentStandings{},
	}
	if len(tournaments) == 0 {
		return summary, nil
	}

	results := make([]models.TournamentStandings, len(tournaments))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(summaryConcurrency)
	for i, tournament := range tournaments {
		g.Go(func() error {
			standings, err := s.standingsFor(gctx, nil, tournament.ID)
			if err != nil {
				return err
			}
			results[i] = models.TournamentStandings{Tournament: tournament, Standings: standings}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, ts := range results {
		if s.isActive(i, ts.Tournament) {
			summary.Active = append(summary.Active, ts)
		} else {
			summary.Previous = append(summary.Previous, ts)
		}
	}
	return summary, nil
}

// isActive decides whether the tournament at position i of the date-ordered
// list belongs to the active section.
func (s *standingsService) isActive(i int, t models.Tournament) bool {
	if s.cfg.ActiveSelection == config.ActiveUnwon {
		return !t.HasWinner()
	}
	return i == 0
}
