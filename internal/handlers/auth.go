package handlers

import (
	"dentalcms/internal/logger"
	"dentalcms/internal/middleware"
	"dentalcms/internal/models"
	"dentalcms/internal/security"
	"dentalcms/internal/services"
	"dentalcms/internal/utils/helpers"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *services.AuthService
	csrf        *security.CSRFGuard
	cookies     CookieSettings
}

func NewAuthHandler(authService *services.AuthService, csrf *security.CSRFGuard, cookies CookieSettings) *AuthHandler {
	return &AuthHandler{authService: authService, csrf: csrf, cookies: cookies}
}

type loginRequest struct {
	Identifier string `json:"identifier"` // email или username
	Password   string `json:"password"`
}

type loginResponse struct {
	User      *models.PublicUser `json:"user"`
	Token     string             `json:"token"`
	CSRFToken string             `json:"csrf_token"`
}

// Login godoc
// @Summary Авторизация пользователя
// @Description Ставит HttpOnly-куку сессии и куку с хешем CSRF-токена. Токен сессии также возвращается в теле для Bearer-клиентов.
// @Tags auth
// @Accept json
// @Produce json
// @Param input body loginRequest true "Данные для входа"
// @Success 200 {object} loginResponse
// @Failure 400 {object} helpers.Response
// @Failure 401 {object} helpers.Response "Неверный логин или пароль"
// @Failure 429 {object} helpers.Response
// @Router /api/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Identifier) == "" || req.Password == "" {
		log.Warn("Невалидный payload в Login")
		helpers.Error(w, http.StatusBadRequest, "invalid payload")
		return
	}

	user, token, err := h.authService.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			helpers.Error(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		log.Error("Ошибка входа", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	csrfToken, err := issueCSRF(w, h.csrf, h.cookies)
	if err != nil {
		log.Error("Ошибка генерации CSRF-токена", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.cookies.setSession(w, token)

	helpers.JSON(w, http.StatusOK, loginResponse{
		User:      user.Public(),
		Token:     token,
		CSRFToken: csrfToken,
	})
}

// Logout godoc
// @Summary Выход
// @Description Удаляет куки сессии и CSRF. Токены без состояния, отзывать на сервере нечего.
// @Tags auth
// @Produce json
// @Success 200 {object} helpers.Response
// @Router /api/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.clear(w)
	logger.WithCtx(r.Context()).Info("Выход выполнен")
	helpers.JSON(w, http.StatusOK, map[string]string{"message": "Logged out."})
}

// Profile godoc
// @Summary Профиль текущего пользователя
// @Tags profile
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} models.PublicUser
// @Failure 401 {object} helpers.Response
// @Router /api/profile [get]
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		helpers.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	helpers.JSON(w, http.StatusOK, user)
}
