package handlers

import (
	"net/http"
	"time"

	"github.com/Dosada05/vr-score-keeper/models"
	"github.com/Dosada05/vr-score-keeper/services"
	"github.com/golang-jwt/jwt/v4"
)

type AuthHandler struct {
	authService services.AuthService
	jwtSecret   []byte
	tokenTTL    time.Duration
	now         func() time.Time
}

func NewAuthHandler(authService services.AuthService, jwtSecret string, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtSecret:   []byte(jwtSecret),
		tokenTTL:    tokenTTL,
		now:         time.Now,
	}
}

// Login godoc
// @Summary      Log in
// @Description  Exchanges operator credentials for a bearer token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body services.LoginInput true "Credentials"
// @Success      200 {object} map[string]interface{} "token and user"
// @Failure      400 {object} map[string]string
// @Failure      401 {object} map[string]string
// @Failure      422 {object} map[string]map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, err := h.authService.Login(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	token, expiresAt, err := h.signToken(user)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{
		"token":      token,
		"expires_at": expiresAt,
		"user":       user,
	})
}

func (h *AuthHandler) signToken(user *models.User) (string, time.Time, error) {
	issuedAt := h.now()
	expiresAt := issuedAt.Add(h.tokenTTL)

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    string(user.Role),
		"name":    user.Username,
		"exp":     expiresAt.Unix(),
		"iat":     issuedAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.jwtSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
