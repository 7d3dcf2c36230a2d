package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/vr-score-keeper/services"
)

const maxAvatarUploadBytes = 32 << 20

type PlayerHandler struct {
	playerService services.PlayerService
}

func NewPlayerHandler(ps services.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerService: ps}
}

// CreateHandler godoc
// @Summary      Create a player
// @Tags         players
// @Accept       json
// @Produce      json
// @Param        input body services.PlayerInput true "Player"
// @Success      201 {object} map[string]models.Player
// @Failure      422 {object} map[string]map[string]string
// @Security     BearerAuth
// @Router       /players [post]
func (h *PlayerHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.PlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusCreated, jsonResponse{"player": player})
}

// GetByIDHandler godoc
// @Summary      Get a player
// @Tags         players
// @Produce      json
// @Param        playerID path int true "Player ID"
// @Success      200 {object} map[string]models.Player
// @Failure      404 {object} map[string]string
// @Security     BearerAuth
// @Router       /players/{playerID} [get]
func (h *PlayerHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{"player": player})
}

// ListHandler godoc
// @Summary      List players
// @Tags         players
// @Produce      json
// @Success      200 {object} map[string][]models.Player
// @Security     BearerAuth
// @Router       /players [get]
func (h *PlayerHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	players, err := h.playerService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{"players": players})
}

// UpdateHandler godoc
// @Summary      Rename a player
// @Tags         players
// @Accept       json
// @Produce      json
// @Param        playerID path int true "Player ID"
// @Param        input body services.PlayerInput true "Player"
// @Success      200 {object} map[string]models.Player
// @Failure      404 {object} map[string]string
// @Failure      422 {object} map[string]map[string]string
// @Security     BearerAuth
// @Router       /players/{playerID} [put]
func (h *PlayerHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.PlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.Update(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{"player": player})
}

// DeleteHandler godoc
// @Summary      Delete a player
// @Tags         players
// @Param        playerID path int true "Player ID"
// @Success      204
// @Failure      404 {object} map[string]string
// @Security     BearerAuth
// @Router       /players/{playerID} [delete]
func (h *PlayerHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.playerService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadAvatarHandler godoc
// @Summary      Upload a player avatar
// @Tags         players
// @Accept       multipart/form-data
// @Produce      json
// @Param        playerID path int true "Player ID"
// @Param        avatar formData file true "Avatar image (jpeg, png, webp or gif)"
// @Success      200 {object} map[string]models.Player
// @Failure      400 {object} map[string]string
// @Failure      422 {object} map[string]map[string]string
// @Failure      503 {object} map[string]string
// @Security     BearerAuth
// @Router       /players/{playerID}/avatar [post]
func (h *PlayerHandler) UploadAvatarHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarUploadBytes)
	if err := r.ParseMultipartForm(maxAvatarUploadBytes); err != nil {
		badRequestResponse(w, r, errors.New("invalid multipart form or file too large"))
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		badRequestResponse(w, r, errors.New("avatar file is required in 'avatar' field"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		badRequestResponse(w, r, errors.New("could not determine file content type"))
		return
	}

	player, err := h.playerService.UploadAvatar(r.Context(), id, file, contentType)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{"player": player})
}
