package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/vr-score-keeper/middleware"
	"github.com/Dosada05/vr-score-keeper/models"
	"github.com/Dosada05/vr-score-keeper/services"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
)

type fakeTournamentService struct {
	services.TournamentService
	create    func(ctx context.Context, input services.CreateTournamentInput) (*models.Tournament, error)
	getByID   func(ctx context.Context, id int) (*models.Tournament, error)
	getDetail func(ctx context.Context, id int) (*services.TournamentDetail, error)
	register  func(ctx context.Context, tournamentID, playerID int) error
}

func (f *fakeTournamentService) Create(ctx context.Context, input services.CreateTournamentInput) (*models.Tournament, error) {
	return f.create(ctx, input)
}

func (f *fakeTournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	return f.getByID(ctx, id)
}

func (f *fakeTournamentService) GetDetail(ctx context.Context, id int) (*services.TournamentDetail, error) {
	return f.getDetail(ctx, id)
}

func (f *fakeTournamentService) RegisterPlayer(ctx context.Context, tournamentID, playerID int) error {
	return f.register(ctx, tournamentID, playerID)
}

type fakeStandingsService struct {
	services.StandingsService
	compute   func(ctx context.Context, id int) ([]models.Standing, error)
	recompute func(ctx context.Context, id int) (*services.WinnerOutcome, error)
}

func (f *fakeStandingsService) ComputeStandings(ctx context.Context, id int) ([]models.Standing, error) {
	return f.compute(ctx, id)
}

func (f *fakeStandingsService) RecomputeWinner(ctx context.Context, id int) (*services.WinnerOutcome, error) {
	return f.recompute(ctx, id)
}

type fakeMatchService struct {
	services.MatchService
	create func(ctx context.Context, tournamentID int, input services.CreateMatchInput) (*models.Match, error)
	list   func(ctx context.Context, tournamentID *int) ([]models.Match, error)
}

func (f *fakeMatchService) Create(ctx context.Context, tournamentID int, input services.CreateMatchInput) (*models.Match, error) {
	return f.create(ctx, tournamentID, input)
}

func (f *fakeMatchService) List(ctx context.Context, tournamentID *int) ([]models.Match, error) {
	return f.list(ctx, tournamentID)
}

type fakeScoreService struct {
	services.ScoreService
	submit func(ctx context.Context, matchID int, form services.ScoreForm) (*services.ScoreSubmission, error)
}

func (f *fakeScoreService) SubmitMatchScores(ctx context.Context, matchID int, form services.ScoreForm) (*services.ScoreSubmission, error) {
	return f.submit(ctx, matchID, form)
}

type fakePlayerService struct {
	services.PlayerService
	upload func(ctx context.Context, id int, file io.Reader, contentType string) (*models.Player, error)
}

func (f *fakePlayerService) UploadAvatar(ctx context.Context, id int, file io.Reader, contentType string) (*models.Player, error) {
	return f.upload(ctx, id, file, contentType)
}

type fakeAuthService struct {
	login func(ctx context.Context, input services.LoginInput) (*models.User, error)
}

func (f *fakeAuthService) Login(ctx context.Context, input services.LoginInput) (*models.User, error) {
	return f.login(ctx, input)
}

type fakeUserService struct {
	services.UserService
	getProfile func(ctx context.Context, userID int) (*models.User, error)
}

func (f *fakeUserService) GetProfile(ctx context.Context, userID int) (*models.User, error) {
	return f.getProfile(ctx, userID)
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

func withURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var body map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not a JSON object: %v (%s)", err, rec.Body.String())
	}
	return body
}

func TestReadJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"name":"Cup"}`, ""},
		{"empty", ``, "body must not be empty"},
		{"malformed", `{"name":`, "badly-formed JSON"},
		{"wrong type", `{"name":5}`, `incorrect JSON type for field "name"`},
		{"unknown key", `{"nickname":"x"}`, `unknown key "nickname"`},
		{"two values", `{"name":"a"}{"name":"b"}`, "single JSON value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst payload
			err := readJSON(httptest.NewRecorder(), req, &dst)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", services.ErrTournamentNotFound, http.StatusNotFound},
		{"wrapped not found", errors.Join(errors.New("ctx"), services.ErrPlayerNotFound), http.StatusNotFound},
		{"validation", &services.ValidationError{Fields: map[string]string{"name": "bad"}}, http.StatusUnprocessableEntity},
		{"conflict", services.ErrUsernameConflict, http.StatusConflict},
		{"credentials", services.ErrAuthInvalidCredentials, http.StatusUnauthorized},
		{"forbidden", services.ErrForbiddenOperation, http.StatusForbidden},
		{"storage", services.ErrStorageUnavailable, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mapServiceErrorToHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestValidationErrorBodyIsFieldMap(t *testing.T) {
	rec := httptest.NewRecorder()
	mapServiceErrorToHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil),
		&services.ValidationError{Fields: map[string]string{"score_3": "Score must be between 0 and 2."}})

	var body struct {
		Error map[string]string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error["score_3"] != "Score must be between 0 and 2." {
		t.Fatalf("unexpected error body %s", rec.Body.String())
	}
}

func TestGetIDFromURL(t *testing.T) {
	tests := []struct {
		value   string
		want    int
		wantErr bool
	}{
		{"12", 12, false},
		{"0", 0, true},
		{"-1", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		req := withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"tournamentID": tt.value})
		got, err := getIDFromURL(req, "tournamentID")
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Fatalf("value %q: expected (%d, err=%v), got (%d, %v)", tt.value, tt.want, tt.wantErr, got, err)
		}
	}

	if _, err := getIDFromURL(httptest.NewRequest(http.MethodGet, "/", nil), "matchID"); err == nil {
		t.Fatal("expected error for missing parameter")
	}
}

func TestTournamentCreateHandler(t *testing.T) {
	var got services.CreateTournamentInput
	ts := &fakeTournamentService{
		create: func(_ context.Context, input services.CreateTournamentInput) (*models.Tournament, error) {
			got = input
			return &models.Tournament{ID: 1, Name: "Tournament 1"}, nil
		},
	}
	h := NewTournamentHandler(ts, nil, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tournaments", strings.NewReader(`{"date":"2024-05-18"}`))
	h.CreateHandler(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if got.Date != "2024-05-18" || got.Name != "" {
		t.Fatalf("unexpected input passed to service: %+v", got)
	}
	if _, ok := decodeBody(t, rec)["tournament"]; !ok {
		t.Fatalf("expected tournament envelope, got %s", rec.Body.String())
	}
}

func TestTournamentGetByIDHandlerNotFound(t *testing.T) {
	ts := &fakeTournamentService{
		getDetail: func(context.Context, int) (*services.TournamentDetail, error) {
			return nil, services.ErrTournamentNotFound
		},
	}
	h := NewTournamentHandler(ts, nil, nil)

	rec := httptest.NewRecorder()
	req := withURLParams(httptest.NewRequest(http.MethodGet, "/tournaments/9", nil), map[string]string{"tournamentID": "9"})
	h.GetByIDHandler(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestTournamentStandingsHandler(t *testing.T) {
	ts := &fakeTournamentService{
		getByID: func(_ context.Context, id int) (*models.Tournament, error) {
			return &models.Tournament{ID: id, Name: "Cup"}, nil
		},
	}
	ss := &fakeStandingsService{
		compute: func(context.Context, int) ([]models.Standing, error) {
			return []models.Standing{
				{Player: models.Player{ID: 1, Name: "Ann"}, Total: 31},
				{Player: models.Player{ID: 2, Name: "Bob"}, Total: 12},
			}, nil
		},
	}
	h := NewTournamentHandler(ts, ss, nil)

	rec := httptest.NewRecorder()
	req := withURLParams(httptest.NewRequest(http.MethodGet, "/tournaments/4/standings", nil), map[string]string{"tournamentID": "4"})
	h.StandingsHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body models.TournamentStandings
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Tournament.ID != 4 || len(body.Standings) != 2 || body.Standings[0].Total != 31 {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestRecomputeWinnerHandler(t *testing.T) {
	winner := "Ann"
	ss := &fakeStandingsService{
		recompute: func(_ context.Context, id int) (*services.WinnerOutcome, error) {
			return &services.WinnerOutcome{TournamentID: id, Winner: &winner, Changed: true}, nil
		},
	}
	h := NewTournamentHandler(nil, ss, nil)

	rec := httptest.NewRecorder()
	req := withURLParams(httptest.NewRequest(http.MethodPost, "/tournaments/2/winner", nil), map[string]string{"tournamentID": "2"})
	h.RecomputeWinnerHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Outcome services.WinnerOutcome `json:"outcome"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Outcome.Winner == nil || *body.Outcome.Winner != "Ann" || !body.Outcome.Changed {
		t.Fatalf("unexpected outcome %+v", body.Outcome)
	}
}

func TestRegisterPlayerHandler(t *testing.T) {
	var gotT, gotP int
	ts := &fakeTournamentService{
		register: func(_ context.Context, tournamentID, playerID int) error {
			gotT, gotP = tournamentID, playerID
			return nil
		},
	}
	h := NewTournamentHandler(ts, nil, nil)

	rec := httptest.NewRecorder()
	req := withURLParams(httptest.NewRequest(http.MethodPut, "/", nil), map[string]string{"tournamentID": "3", "playerID": "8"})
	h.RegisterPlayerHandler(rec, req)

	if rec.Code != http.StatusNoContent || gotT != 3 || gotP != 8 {
		t.Fatalf("expected 204 with ids (3, 8), got %d with (%d, %d)", rec.Code, gotT, gotP)
	}

	rec = httptest.NewRecorder()
	req = withURLParams(httptest.NewRequest(http.MethodPut, "/", nil), map[string]string{"tournamentID": "3", "playerID": "x"})
	h.RegisterPlayerHandler(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad player id, got %d", rec.Code)
	}
}

func TestCreateMatchHandlerAcceptsEmptyBody(t *testing.T) {
	var gotInput services.CreateMatchInput
	ms := &fakeMatchService{
		create: func(_ context.Context, tournamentID int, input services.CreateMatchInput) (*models.Match, error) {
			gotInput = input
			return &models.Match{ID: 5, TournamentID: tournamentID}, nil
		},
	}
	h := NewTournamentHandler(nil, nil, ms)

	rec := httptest.NewRecorder()
	req := withURLParams(httptest.NewRequest(http.MethodPost, "/tournaments/1/matches", nil), map[string]string{"tournamentID": "1"})
	h.CreateMatchHandler(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotInput.Date != nil {
		t.Fatalf("expected no date, got %v", gotInput.Date)
	}
}

func TestMatchListHandlerFilter(t *testing.T) {
	var gotFilter *int
	ms := &fakeMatchService{
		list: func(_ context.Context, tournamentID *int) ([]models.Match, error) {
			gotFilter = tournamentID
			return []models.Match{}, nil
		},
	}
	h := NewMatchHandler(ms, nil)

	rec := httptest.NewRecorder()
	h.ListHandler(rec, httptest.NewRequest(http.MethodGet, "/matches?tournament_id=6", nil))
	if rec.Code != http.StatusOK || gotFilter == nil || *gotFilter != 6 {
		t.Fatalf("expected filter 6, got status %d filter %v", rec.Code, gotFilter)
	}

	rec = httptest.NewRecorder()
	h.ListHandler(rec, httptest.NewRequest(http.MethodGet, "/matches?tournament_id=abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSubmitScoresHandler(t *testing.T) {
	var gotForm services.ScoreForm
	ss := &fakeScoreService{
		submit: func(_ context.Context, matchID int, form services.ScoreForm) (*services.ScoreSubmission, error) {
			gotForm = form
			if v := form["score_2"]; v != nil && *v > 1 {
				return nil, &services.ValidationError{Fields: map[string]string{"score_2": "Score must be between 0 and 1."}}
			}
			return &services.ScoreSubmission{Match: &models.Match{ID: matchID}}, nil
		},
	}
	h := NewMatchHandler(nil, ss)

	rec := httptest.NewRecorder()
	req := withURLParams(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"score_1":1,"score_2":null}`)),
		map[string]string{"matchID": "10"})
	h.SubmitScoresHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if v, ok := gotForm["score_2"]; !ok || v != nil {
		t.Fatalf("expected explicit null entry for score_2, got %v (present=%v)", v, ok)
	}

	rec = httptest.NewRecorder()
	req = withURLParams(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"score_2":5}`)),
		map[string]string{"matchID": "10"})
	h.SubmitScoresHandler(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	auth := &fakeAuthService{
		login: func(_ context.Context, input services.LoginInput) (*models.User, error) {
			if input.Password != "secret-pass" {
				return nil, services.ErrAuthInvalidCredentials
			}
			return &models.User{ID: 11, Username: input.Username, Role: models.RolePowerUser}, nil
		},
	}
	h := NewAuthHandler(auth, "signing-key", time.Hour)

	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"op","password":"nope"}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"op","password":"secret-pass"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}

	var gotID int
	var gotRole models.UserRole
	protected := middleware.Authenticate("signing-key")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = middleware.GetUserIDFromContext(r.Context())
		gotRole, _ = middleware.GetUserRoleFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+body.Token)
	protected.ServeHTTP(httptest.NewRecorder(), req)

	if gotID != 11 || gotRole != models.RolePowerUser {
		t.Fatalf("token claims did not round-trip: id=%d role=%q", gotID, gotRole)
	}
}

func TestGetProfileHandler(t *testing.T) {
	us := &fakeUserService{
		getProfile: func(_ context.Context, userID int) (*models.User, error) {
			return &models.User{ID: userID, Username: "op", PasswordHash: "hash"}, nil
		},
	}
	h := NewUserHandler(us)

	rec := httptest.NewRecorder()
	h.GetProfileHandler(rec, httptest.NewRequest(http.MethodGet, "/profile", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without claims, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req = req.WithContext(middleware.ContextWithClaims(req.Context(), jwt.MapClaims{"user_id": float64(5), "role": "operator"}))
	rec = httptest.NewRecorder()
	h.GetProfileHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "hash") {
		t.Fatalf("password hash leaked: %s", rec.Body.String())
	}
}

func TestUploadAvatarHandler(t *testing.T) {
	var gotType string
	var gotBytes []byte
	ps := &fakePlayerService{
		upload: func(_ context.Context, id int, file io.Reader, contentType string) (*models.Player, error) {
			gotType = contentType
			gotBytes, _ = io.ReadAll(file)
			return &models.Player{ID: id, Name: "Ann"}, nil
		},
	}
	h := NewPlayerHandler(ps)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="avatar"; filename="a.png"`)
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	_, _ = part.Write([]byte("png-bytes"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/players/1/avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = withURLParams(req, map[string]string{"playerID": "1"})
	rec := httptest.NewRecorder()
	h.UploadAvatarHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotType != "image/png" || string(gotBytes) != "png-bytes" {
		t.Fatalf("unexpected upload (%q, %q)", gotType, gotBytes)
	}

	req = httptest.NewRequest(http.MethodPost, "/players/1/avatar", strings.NewReader("plain"))
	req.Header.Set("Content-Type", "text/plain")
	req = withURLParams(req, map[string]string{"playerID": "1"})
	rec = httptest.NewRecorder()
	h.UploadAvatarHandler(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-multipart body, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(fakePinger{}).Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	NewHealthHandler(fakePinger{err: errors.New("down")}).Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
