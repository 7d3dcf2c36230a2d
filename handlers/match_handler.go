package handlers

import (
	"net/http"

	"github.com/Dosada05/vr-score-keeper/services"
)

type MatchHandler struct {
	matchService services.MatchService
	scoreService services.ScoreService
}

func NewMatchHandler(ms services.MatchService, ss services.ScoreService) *MatchHandler {
	return &MatchHandler{matchService: ms, scoreService: ss}
}

// ListHandler godoc
// @Summary      List matches
// @Tags         matches
// @Produce      json
// @Param        tournament_id query int false "Only matches of this tournament"
// @Success      200 {object} map[string][]models.Match
// @Failure      400 {object} map[string]string
// @Security     BearerAuth
// @Router       /matches [get]
func (h *MatchHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getOptionalIntQuery(r, "tournament_id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.List(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{"matches": matches})
}

// GetByIDHandler godoc
// @Summary      Get a match with its scores
// @Tags         matches
// @Produce      json
// @Param        matchID path int true "Match ID"
// @Success      200 {object} map[string]models.Match
// @Failure      404 {object} map[string]string
// @Security     BearerAuth
// @Router       /matches/{matchID} [get]
func (h *MatchHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{"match": match})
}

// UpdateHandler godoc
// @Summary      Update a match
// @Description  Moving a match to another tournament recomputes both winners.
// @Tags         matches
// @Accept       json
// @Produce      json
// @Param        matchID path int true "Match ID"
// @Param        input body services.UpdateMatchInput true "Changed fields"
// @Success      200 {object} map[string]models.Match
// @Failure      404 {object} map[string]string
// @Failure      422 {object} map[string]map[string]string
// @Security     BearerAuth
// @Router       /matches/{matchID} [put]
func (h *MatchHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.Update(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{"match": match})
}

// DeleteHandler godoc
// @Summary      Delete a match
// @Tags         matches
// @Param        matchID path int true "Match ID"
// @Success      204
// @Failure      404 {object} map[string]string
// @Security     BearerAuth
// @Router       /matches/{matchID} [delete]
func (h *MatchHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.matchService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SubmitScoresHandler godoc
// @Summary      Submit match scores
// @Description  Body maps score_<playerID> to a score. Every roster player's score_<playerID> is required,
// @Description  each between 0 and the roster size. The whole form is rejected if any entry is invalid.
// @Tags         matches
// @Accept       json
// @Produce      json
// @Param        matchID path int true "Match ID"
// @Param        input body map[string]int true "score_<playerID> → score"
// @Success      200 {object} services.ScoreSubmission
// @Failure      400 {object} map[string]string
// @Failure      401 {object} map[string]string
// @Failure      404 {object} map[string]string
// @Failure      422 {object} map[string]map[string]string
// @Security     BearerAuth
// @Router       /matches/{matchID}/scores [post]
func (h *MatchHandler) SubmitScoresHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var form services.ScoreForm
	if err := readJSON(w, r, &form); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	submission, err := h.scoreService.SubmitMatchScores(r.Context(), id, form)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, submission)
}
