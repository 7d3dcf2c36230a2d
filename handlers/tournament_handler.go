package handlers

import (
	"net/http"

	"github.com/Dosada05/vr-score-keeper/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
	standingsService  services.StandingsService
	matchService      services.MatchService
}

func NewTournamentHandler(
	ts services.TournamentService,
	ss services.StandingsService,
	ms services.MatchService,
) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: ts,
		standingsService:  ss,
		matchService:      ms,
	}
}

// CreateHandler godoc
// @Summary      Create a tournament
// @Description  Name defaults to "Tournament N" and date defaults to today.
// @Tags         tournaments
// @Accept       json
// @Produce      json
// @Param        input body services.CreateTournamentInput true "Tournament"
// @Success      201 {object} map[string]models.Tournament
// @Failure      400 {object} map[string]string
// @Failure      422 {object} map[string]map[string]string
// @Security     BearerAuth
// @Router       /tournaments [post]
func (h *TournamentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusCreated, jsonResponse{"tournament": tournament})
}

// GetByIDHandler godoc
// @Summary      Tournament detail
// @Description  Tournament with roster, matches and current standings.
// @Tags         tournaments
// @Produce      json
// @Param        tournamentID path int true "Tournament ID"
// @Success      200 {object} services.TournamentDetail
// @Failure      404 {object} map[string]string
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID} [get]
func (h *TournamentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	detail, err := h.tournamentService.GetDetail(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, detail)
}

// ListHandler godoc
// @Summary      List tournaments
// @Description  Newest first.
// @Tags         tournaments
// @Produce      json
// @Success      200 {object} map[string][]models.Tournament
// @Security     BearerAuth
// @Router       /tournaments [get]
func (h *TournamentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.tournamentService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{"tournaments": tournaments})
}

// UpdateHandler godoc
// @Summary      Update a tournament
// @Tags         tournaments
// @Accept       json
// @Produce      json
// @Param        tournamentID path int true "Tournament ID"
// @Param        input body services.UpdateTournamentInput true "Changed fields"
// @Success      200 {object} map[string]models.Tournament
// @Failure      404 {object} map[string]string
// @Failure      422 {object} map[string]map[string]string
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID} [put]
func (h *TournamentHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Update(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{"tournament": tournament})
}

// DeleteHandler godoc
// @Summary      Delete a tournament
// @Description  Removes the tournament with its roster, matches and scores.
// @Tags         tournaments
// @Param        tournamentID path int true "Tournament ID"
// @Success      204
// @Failure      404 {object} map[string]string
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID} [delete]
func (h *TournamentHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// StandingsHandler godoc
// @Summary      Tournament standings
// @Description  Roster players ordered by total score, highest first.
// @Tags         tournaments
// @Produce      json
// @Param        tournamentID path int true "Tournament ID"
// @Success      200 {object} models.TournamentStandings
// @Failure      404 {object} map[string]string
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID}/standings [get]
func (h *TournamentHandler) StandingsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	standings, err := h.standingsService.ComputeStandings(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{"tournament": tournament, "standings": standings})
}

// RecomputeWinnerHandler godoc
// @Summary      Recompute the winner
// @Description  Recomputes standings and stores the winner if a player reached the threshold.
// @Tags         tournaments
// @Produce      json
// @Param        tournamentID path int true "Tournament ID"
// @Success      200 {object} map[string]services.WinnerOutcome
// @Failure      404 {object} map[string]string
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID}/winner [post]
func (h *TournamentHandler) RecomputeWinnerHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	outcome, err := h.standingsService.RecomputeWinner(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{"outcome": outcome})
}

// ListRosterHandler godoc
// @Summary      Tournament roster
// @Tags         tournaments
// @Produce      json
// @Param        tournamentID path int true "Tournament ID"
// @Success      200 {object} map[string][]models.Player
// @Failure      404 {object} map[string]string
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID}/players [get]
func (h *TournamentHandler) ListRosterHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	players, err := h.tournamentService.ListRoster(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{"players": players})
}

// RegisterPlayerHandler godoc
// @Summary      Add a player to the roster
// @Description  Idempotent.
// @Tags         tournaments
// @Param        tournamentID path int true "Tournament ID"
// @Param        playerID path int true "Player ID"
// @Success      204
// @Failure      404 {object} map[string]string
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID}/players/{playerID} [put]
func (h *TournamentHandler) RegisterPlayerHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, playerID, ok := rosterIDs(w, r)
	if !ok {
		return
	}

	if err := h.tournamentService.RegisterPlayer(r.Context(), tournamentID, playerID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UnregisterPlayerHandler godoc
// @Summary      Remove a player from the roster
// @Tags         tournaments
// @Param        tournamentID path int true "Tournament ID"
// @Param        playerID path int true "Player ID"
// @Success      204
// @Failure      404 {object} map[string]string
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID}/players/{playerID} [delete]
func (h *TournamentHandler) UnregisterPlayerHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, playerID, ok := rosterIDs(w, r)
	if !ok {
		return
	}

	if err := h.tournamentService.UnregisterPlayer(r.Context(), tournamentID, playerID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateMatchHandler godoc
// @Summary      Start a match
// @Description  Date defaults to now and must not be in the future.
// @Tags         matches
// @Accept       json
// @Produce      json
// @Param        tournamentID path int true "Tournament ID"
// @Param        input body services.CreateMatchInput false "Match"
// @Success      201 {object} map[string]models.Match
// @Failure      404 {object} map[string]string
// @Failure      422 {object} map[string]map[string]string
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID}/matches [post]
func (h *TournamentHandler) CreateMatchHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreateMatchInput
	if r.ContentLength != 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	match, err := h.matchService.Create(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusCreated, jsonResponse{"match": match})
}

func rosterIDs(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, 0, false
	}
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, 0, false
	}
	return tournamentID, playerID, true
}
