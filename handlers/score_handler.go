package handlers

import (
	"net/http"

	"github.com/Dosada05/vr-score-keeper/services"
)

type ScoreHandler struct {
	scoreService services.ScoreService
}

func NewScoreHandler(ss services.ScoreService) *ScoreHandler {
	return &ScoreHandler{scoreService: ss}
}

// ListHandler godoc
// @Summary      List scores
// @Tags         scores
// @Produce      json
// @Param        match_id query int false "Only scores of this match"
// @Success      200 {object} map[string][]models.Score
// @Failure      400 {object} map[string]string
// @Security     BearerAuth
// @Router       /scores [get]
func (h *ScoreHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getOptionalIntQuery(r, "match_id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	scores, err := h.scoreService.List(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{"scores": scores})
}

// GetByIDHandler godoc
// @Summary      Get a score
// @Tags         scores
// @Produce      json
// @Param        scoreID path int true "Score ID"
// @Success      200 {object} map[string]models.Score
// @Failure      404 {object} map[string]string
// @Security     BearerAuth
// @Router       /scores/{scoreID} [get]
func (h *ScoreHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "scoreID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	score, err := h.scoreService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{"score": score})
}

// UpdateHandler godoc
// @Summary      Correct a score
// @Tags         scores
// @Accept       json
// @Produce      json
// @Param        scoreID path int true "Score ID"
// @Param        input body services.UpdateScoreInput true "New value"
// @Success      200 {object} map[string]models.Score
// @Failure      404 {object} map[string]string
// @Failure      422 {object} map[string]map[string]string
// @Security     BearerAuth
// @Router       /scores/{scoreID} [put]
func (h *ScoreHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "scoreID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateScoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	score, err := h.scoreService.Update(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{"score": score})
}

// DeleteHandler godoc
// @Summary      Delete a score
// @Tags         scores
// @Param        scoreID path int true "Score ID"
// @Success      204
// @Failure      404 {object} map[string]string
// @Security     BearerAuth
// @Router       /scores/{scoreID} [delete]
func (h *ScoreHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "scoreID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.scoreService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
