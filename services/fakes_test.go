package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/vr-score-keeper/config"
	"github.com/Dosada05/vr-score-keeper/live"
	"github.com/Dosada05/vr-score-keeper/models"
	"github.com/Dosada05/vr-score-keeper/repositories"
	"github.com/Dosada05/vr-score-keeper/storage"
)

type rosterEntry struct {
	tournamentID int
	playerID     int
}

// memStore is an in-memory stand-in for the database with the same cascade rules.
type memStore struct {
	mu           sync.Mutex
	nextID       int
	tournaments  map[int]models.Tournament
	players      map[int]models.Player
	roster       []rosterEntry
	matches      map[int]models.Match
	scores       map[int]models.Score
	users        map[int]models.User
	winnerWrites int
	// writes logs row locks and row writes in the order they happen.
	writes []string
}

func newMemStore() *memStore {
	return &memStore{
		tournaments: make(map[int]models.Tournament),
		players:     make(map[int]models.Player),
		matches:     make(map[int]models.Match),
		scores:      make(map[int]models.Score),
		users:       make(map[int]models.User),
	}
}

func (s *memStore) logWrite(format string, args ...interface{}) {
	s.writes = append(s.writes, fmt.Sprintf(format, args...))
}

// writeLog returns a copy of the lock and write log.
func (s *memStore) writeLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.writes...)
}

func (s *memStore) id() int {
	s.nextID++
	return s.nextID
}

func (s *memStore) deleteScoresWhere(match func(models.Score) bool) {
	for id, sc := range s.scores {
		if match(sc) {
			delete(s.scores, id)
		}
	}
}

func (s *memStore) deleteRosterWhere(match func(rosterEntry) bool) {
	kept := s.roster[:0]
	for _, e := range s.roster {
		if !match(e) {
			kept = append(kept, e)
		}
	}
	s.roster = kept
}

type memTournamentRepo struct{ s *memStore }

func (r memTournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t.ID = r.s.id()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	r.s.tournaments[t.ID] = *t
	return nil
}

func (r memTournamentRepo) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return &t, nil
}

func (r memTournamentRepo) GetByIDForUpdate(ctx context.Context, _ repositories.SQLExecutor, id int) (*models.Tournament, error) {
	t, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	r.s.logWrite("lock tournament %d", id)
	r.s.mu.Unlock()
	return t, nil
}

func (r memTournamentRepo) List(_ context.Context) ([]models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]models.Tournament, 0, len(r.s.tournaments))
	for _, t := range r.s.tournaments {
		list = append(list, t)
	}
	sortTournaments(list)
	return list, nil
}

func (r memTournamentRepo) ListByPlayer(_ context.Context, playerID int) ([]models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]models.Tournament, 0)
	for _, e := range r.s.roster {
		if e.playerID == playerID {
			list = append(list, r.s.tournaments[e.tournamentID])
		}
	}
	sortTournaments(list)
	return list, nil
}

func sortTournaments(list []models.Tournament) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.After(list[j].Date)
		}
		return list[i].ID > list[j].ID
	})
}

func (r memTournamentRepo) Count(_ context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.tournaments), nil
}

func (r memTournamentRepo) Update(_ context.Context, t *models.Tournament) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tournaments[t.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	t.UpdatedAt = time.Now()
	r.s.tournaments[t.ID] = *t
	return nil
}

func (r memTournamentRepo) UpdateWinner(_ context.Context, _ repositories.SQLExecutor, id int, winner string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Winner = &winner
	r.s.tournaments[id] = t
	r.s.winnerWrites++
	return nil
}

func (r memTournamentRepo) Delete(_ context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.s.tournaments, id)
	for mid, m := range r.s.matches {
		if m.TournamentID == id {
			delete(r.s.matches, mid)
			r.s.deleteScoresWhere(func(sc models.Score) bool { return sc.MatchID == mid })
		}
	}
	r.s.deleteRosterWhere(func(e rosterEntry) bool { return e.tournamentID == id })
	return nil
}

type memPlayerRepo struct{ s *memStore }

func (r memPlayerRepo) nameTaken(name string, exceptID int) bool {
	for _, p := range r.s.players {
		if p.Name == name && p.ID != exceptID {
			return true
		}
	}
	return false
}

func (r memPlayerRepo) Create(_ context.Context, p *models.Player) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.nameTaken(p.Name, 0) {
		return repositories.ErrPlayerNameConflict
	}
	p.ID = r.s.id()
	p.CreatedAt = time.Now()
	r.s.players[p.ID] = *p
	return nil
}

func (r memPlayerRepo) GetByID(_ context.Context, id int) (*models.Player, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	return &p, nil
}

func (r memPlayerRepo) GetByName(_ context.Context, name string) (*models.Player, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.players {
		if p.Name == name {
			return &p, nil
		}
	}
	return nil, repositories.ErrPlayerNotFound
}

func (r memPlayerRepo) List(_ context.Context) ([]models.Player, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]models.Player, 0, len(r.s.players))
	for _, p := range r.s.players {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (r memPlayerRepo) Update(_ context.Context, p *models.Player) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.players[p.ID]; !ok {
		return repositories.ErrPlayerNotFound
	}
	if r.nameTaken(p.Name, p.ID) {
		return repositories.ErrPlayerNameConflict
	}
	r.s.players[p.ID] = *p
	return nil
}

func (r memPlayerRepo) UpdateAvatarKey(_ context.Context, playerID int, key *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.players[playerID]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.AvatarKey = key
	r.s.players[playerID] = p
	return nil
}

func (r memPlayerRepo) Delete(_ context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.players[id]; !ok {
		return repositories.ErrPlayerNotFound
	}
	delete(r.s.players, id)
	r.s.deleteScoresWhere(func(sc models.Score) bool { return sc.PlayerID == id })
	r.s.deleteRosterWhere(func(e rosterEntry) bool { return e.playerID == id })
	return nil
}

type memRosterRepo struct{ s *memStore }

func (r memRosterRepo) Add(_ context.Context, tournamentID, playerID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tournaments[tournamentID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	if _, ok := r.s.players[playerID]; !ok {
		return repositories.ErrPlayerNotFound
	}
	for _, e := range r.s.roster {
		if e.tournamentID == tournamentID && e.playerID == playerID {
			return nil
		}
	}
	r.s.roster = append(r.s.roster, rosterEntry{tournamentID: tournamentID, playerID: playerID})
	return nil
}

func (r memRosterRepo) Remove(_ context.Context, tournamentID, playerID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.deleteRosterWhere(func(e rosterEntry) bool {
		return e.tournamentID == tournamentID && e.playerID == playerID
	})
	return nil
}

func (r memRosterRepo) ListPlayers(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]models.Player, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]models.Player, 0)
	for _, e := range r.s.roster {
		if e.tournamentID == tournamentID {
			list = append(list, r.s.players[e.playerID])
		}
	}
	return list, nil
}

func (r memRosterRepo) Count(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (int, error) {
	players, _ := r.ListPlayers(ctx, exec, tournamentID)
	return len(players), nil
}

type memMatchRepo struct{ s *memStore }

func (r memMatchRepo) Create(_ context.Context, m *models.Match) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tournaments[m.TournamentID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	m.ID = r.s.id()
	m.CreatedAt = time.Now()
	r.s.matches[m.ID] = *m
	return nil
}

func (r memMatchRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	m.TournamentName = r.s.tournaments[m.TournamentID].Name
	return &m, nil
}

func (r memMatchRepo) List(_ context.Context, filter repositories.ListMatchesFilter) ([]models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]models.Match, 0)
	for _, m := range r.s.matches {
		if filter.TournamentID != nil && m.TournamentID != *filter.TournamentID {
			continue
		}
		m.TournamentName = r.s.tournaments[m.TournamentID].Name
		list = append(list, m)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.After(list[j].Date)
		}
		return list[i].ID > list[j].ID
	})
	return list, nil
}

func (r memMatchRepo) CountByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, m := range r.s.matches {
		if m.TournamentID == tournamentID {
			count++
		}
	}
	return count, nil
}

func (r memMatchRepo) Update(_ context.Context, _ repositories.SQLExecutor, m *models.Match) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.matches[m.ID]; !ok {
		return repositories.ErrMatchNotFound
	}
	r.s.matches[m.ID] = *m
	r.s.logWrite("update match %d", m.ID)
	return nil
}

func (r memMatchRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.matches[id]; !ok {
		return repositories.ErrMatchNotFound
	}
	delete(r.s.matches, id)
	r.s.deleteScoresWhere(func(sc models.Score) bool { return sc.MatchID == id })
	r.s.logWrite("delete match %d", id)
	return nil
}

type memScoreRepo struct{ s *memStore }

func (r memScoreRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, sc *models.Score) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.players[sc.PlayerID]; !ok {
		return repositories.ErrPlayerNotFound
	}
	if _, ok := r.s.matches[sc.MatchID]; !ok {
		return repositories.ErrMatchNotFound
	}
	now := time.Now()
	for id, existing := range r.s.scores {
		if existing.PlayerID == sc.PlayerID && existing.MatchID == sc.MatchID {
			existing.Score = sc.Score
			existing.UpdatedAt = now
			r.s.scores[id] = existing
			sc.ID, sc.CreatedAt, sc.UpdatedAt = id, existing.CreatedAt, now
			return nil
		}
	}
	sc.ID = r.s.id()
	sc.CreatedAt, sc.UpdatedAt = now, now
	r.s.scores[sc.ID] = *sc
	return nil
}

func (r memScoreRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Score, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sc, ok := r.s.scores[id]
	if !ok {
		return nil, repositories.ErrScoreNotFound
	}
	sc.PlayerName = r.s.players[sc.PlayerID].Name
	return &sc, nil
}

func (r memScoreRepo) List(_ context.Context, filter repositories.ListScoresFilter) ([]models.Score, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]models.Score, 0)
	for _, sc := range r.s.scores {
		if filter.MatchID != nil && sc.MatchID != *filter.MatchID {
			continue
		}
		sc.PlayerName = r.s.players[sc.PlayerID].Name
		list = append(list, sc)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r memScoreRepo) UpdateValue(_ context.Context, _ repositories.SQLExecutor, id, value int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sc, ok := r.s.scores[id]
	if !ok {
		return repositories.ErrScoreNotFound
	}
	sc.Score = value
	r.s.scores[id] = sc
	return nil
}

func (r memScoreRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.scores[id]; !ok {
		return repositories.ErrScoreNotFound
	}
	delete(r.s.scores, id)
	r.s.logWrite("delete score %d", id)
	return nil
}

func (r memScoreRepo) TotalsByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) (map[int]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	totals := make(map[int]int)
	for _, sc := range r.s.scores {
		if r.s.matches[sc.MatchID].TournamentID == tournamentID {
			totals[sc.PlayerID] += sc.Score
		}
	}
	return totals, nil
}

type memUserRepo struct{ s *memStore }

func (r memUserRepo) Create(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Username == u.Username {
			return repositories.ErrUserUsernameConflict
		}
	}
	u.ID = r.s.id()
	u.CreatedAt = time.Now()
	r.s.users[u.ID] = *u
	return nil
}

func (r memUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return &u, nil
}

func (r memUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r memUserRepo) List(_ context.Context) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		list = append(list, u)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Username < list[j].Username })
	return list, nil
}

func (r memUserRepo) Update(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.users[u.ID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	existing.FirstName, existing.LastName, existing.Email = u.FirstName, u.LastName, u.Email
	r.s.users[u.ID] = existing
	return nil
}

func (r memUserRepo) UpdatePassword(_ context.Context, id int, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.PasswordHash = hash
	r.s.users[id] = u
	return nil
}

// passThroughTx runs fn directly; the in-memory store has no transactions.
type passThroughTx struct{}

func (passThroughTx) WithinTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []live.Message
}

func (n *recordingNotifier) BroadcastToRoom(_ string, message interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if msg, ok := message.(live.Message); ok {
		n.messages = append(n.messages, msg)
	}
}

func (n *recordingNotifier) countOf(msgType string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, m := range n.messages {
		if m.Type == msgType {
			count++
		}
	}
	return count
}

type memUploader struct {
	mu      sync.Mutex
	objects map[string]string
	deleted []string
}

func newMemUploader() *memUploader {
	return &memUploader{objects: make(map[string]string)}
}

func (u *memUploader) Upload(_ context.Context, key, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.objects[key] = contentType + ":" + string(body)
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *memUploader) Delete(_ context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.objects, key)
	u.deleted = append(u.deleted, key)
	return nil
}

func (u *memUploader) GetPublicURL(key string) string {
	return "https://cdn.test/" + strings.TrimPrefix(key, "/")
}

type testEnv struct {
	store       *memStore
	notifier    *recordingNotifier
	uploader    *memUploader
	standings   StandingsService
	tournaments *tournamentService
	players     *playerService
	matches     *matchService
	scores      ScoreService
	users       UserService
	auth        AuthService
}

var fixedNow = time.Date(2024, 5, 18, 15, 30, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T, cfg config.Standings) *testEnv {
	t.Helper()
	store := newMemStore()
	notifier := &recordingNotifier{}
	uploader := newMemUploader()
	logger := discardLogger()

	tournamentRepo := memTournamentRepo{store}
	playerRepo := memPlayerRepo{store}
	rosterRepo := memRosterRepo{store}
	matchRepo := memMatchRepo{store}
	scoreRepo := memScoreRepo{store}
	userRepo := memUserRepo{store}
	tx := passThroughTx{}

	standings := NewStandingsService(tournamentRepo, rosterRepo, matchRepo, scoreRepo, tx, notifier, uploader, cfg, logger)

	tournaments := NewTournamentService(tournamentRepo, playerRepo, rosterRepo, matchRepo, standings, uploader, logger).(*tournamentService)
	tournaments.now = func() time.Time { return fixedNow }
	matches := NewMatchService(matchRepo, tournamentRepo, scoreRepo, standings, tx, logger).(*matchService)
	matches.now = func() time.Time { return fixedNow }

	return &testEnv{
		store:       store,
		notifier:    notifier,
		uploader:    uploader,
		standings:   standings,
		tournaments: tournaments,
		players:     NewPlayerService(playerRepo, tournamentRepo, uploader, logger).(*playerService),
		matches:     matches,
		scores:      NewScoreService(scoreRepo, matchRepo, tournamentRepo, rosterRepo, standings, tx, logger),
		users:       NewUserService(userRepo, logger),
		auth:        NewAuthService(userRepo, logger),
	}
}

func defaultStandingsConfig() config.Standings {
	return config.Standings{
		WinThreshold:    config.DefaultWinThreshold,
		TieBreak:        config.TieBreakPlayerID,
		ActiveSelection: config.ActiveLatest,
	}
}

func (e *testEnv) mustTournament(t *testing.T, name, date string) *models.Tournament {
	t.Helper()
	tournament, err := e.tournaments.Create(context.Background(), CreateTournamentInput{Name: name, Date: date})
	if err != nil {
		t.Fatalf("create tournament %q: %v", name, err)
	}
	return tournament
}

func (e *testEnv) mustPlayer(t *testing.T, name string, tournaments ...*models.Tournament) *models.Player {
	t.Helper()
	player, err := e.players.Create(context.Background(), PlayerInput{Name: name})
	if err != nil {
		t.Fatalf("create player %q: %v", name, err)
	}
	for _, tournament := range tournaments {
		if err := e.tournaments.RegisterPlayer(context.Background(), tournament.ID, player.ID); err != nil {
			t.Fatalf("register player %q: %v", name, err)
		}
	}
	return player
}

func (e *testEnv) mustMatch(t *testing.T, tournament *models.Tournament) *models.Match {
	t.Helper()
	match, err := e.matches.Create(context.Background(), tournament.ID, CreateMatchInput{})
	if err != nil {
		t.Fatalf("create match: %v", err)
	}
	return match
}

// mustSubmit records one match's scores, given as playerID -> score.
func (e *testEnv) mustSubmit(t *testing.T, match *models.Match, values map[int]int) *ScoreSubmission {
	t.Helper()
	form := ScoreForm{}
	for playerID, v := range values {
		v := v
		form[ScoreFieldName(playerID)] = &v
	}
	submission, err := e.scores.SubmitMatchScores(context.Background(), match.ID, form)
	if err != nil {
		t.Fatalf("submit scores for match %d: %v", match.ID, err)
	}
	return submission
}

func intPtr(v int) *int { return &v }

// seedScore writes a score straight into the store, skipping form validation.
func (e *testEnv) seedScore(t *testing.T, match *models.Match, player *models.Player, value int) {
	t.Helper()
	sc := &models.Score{PlayerID: player.ID, MatchID: match.ID, Score: value}
	if err := (memScoreRepo{e.store}).Upsert(context.Background(), nil, sc); err != nil {
		t.Fatalf("seed score: %v", err)
	}
}

func itoa(v int) string { return strconv.Itoa(v) }

// requireBefore fails unless first appears in log and precedes then.
func requireBefore(t *testing.T, log []string, first, then string) {
	t.Helper()
	firstAt, thenAt := -1, -1
	for i, entry := range log {
		if entry == first && firstAt < 0 {
			firstAt = i
		}
		if entry == then && thenAt < 0 {
			thenAt = i
		}
	}
	if firstAt < 0 || thenAt < 0 || firstAt > thenAt {
		t.Fatalf("expected %q before %q, got %v", first, then, log)
	}
}
