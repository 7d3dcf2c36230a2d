package handlers

import (
	"net/http"

	"github.com/Dosada05/vr-score-keeper/middleware"
	"github.com/Dosada05/vr-score-keeper/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(us services.UserService) *UserHandler {
	return &UserHandler{userService: us}
}

// GetProfileHandler godoc
// @Summary      Current user profile
// @Tags         profile
// @Produce      json
// @Success      200 {object} map[string]models.User
// @Failure      401 {object} map[string]string
// @Security     BearerAuth
// @Router       /profile [get]
func (h *UserHandler) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	user, err := h.userService.GetProfile(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{"user": user})
}

// UpdateProfileHandler godoc
// @Summary      Update the current user's profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        input body services.ProfileInput true "Profile"
// @Success      200 {object} map[string]models.User
// @Failure      422 {object} map[string]map[string]string
// @Security     BearerAuth
// @Router       /profile [put]
func (h *UserHandler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input services.ProfileInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{"user": user})
}

// ChangePasswordHandler godoc
// @Summary      Change the current user's password
// @Tags         profile
// @Accept       json
// @Param        input body services.ChangePasswordInput true "Passwords"
// @Success      204
// @Failure      422 {object} map[string]map[string]string
// @Security     BearerAuth
// @Router       /profile/password [put]
func (h *UserHandler) ChangePasswordHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input services.ChangePasswordInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.userService.ChangePassword(r.Context(), userID, input); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListHandler godoc
// @Summary      List operator accounts
// @Tags         users
// @Produce      json
// @Success      200 {object} map[string][]models.User
// @Security     BearerAuth
// @Router       /users [get]
func (h *UserHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{"users": users})
}

// CreateHandler godoc
// @Summary      Create an operator account
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        input body services.CreateUserInput true "Account"
// @Success      201 {object} map[string]models.User
// @Failure      409 {object} map[string]string
// @Failure      422 {object} map[string]map[string]string
// @Security     BearerAuth
// @Router       /users [post]
func (h *UserHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.CreateUserInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, err := h.userService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusCreated, jsonResponse{"user": user})
}
