package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"dentalcms/internal/logger"
	"dentalcms/internal/middleware"
	"dentalcms/internal/security"
	"dentalcms/internal/services"
	"dentalcms/internal/utils/helpers"

	"go.uber.org/zap"
)

type PasswordHandler struct {
	svc *services.PasswordService
}

func NewPasswordHandler(svc *services.PasswordService) *PasswordHandler {
	return &PasswordHandler{svc: svc}
}

type forgotReq struct {
	Email string `json:"email"`
}

type forgotResp struct {
	Message  string `json:"message"`
	DevToken string `json:"dev_token,omitempty"`
}

const forgotMessage = "If the email exists, a reset link has been sent."

// Forgot godoc
// @Summary Запрос восстановления пароля
// @Description Отправляет письмо со ссылкой для сброса пароля. Ответ всегда одинаковый, даже если e-mail не найден.
// @Tags password
// @Accept json
// @Produce json
// @Param input body forgotReq true "Email пользователя"
// @Success 200 {object} forgotResp
// @Failure 400 {object} helpers.Response
// @Failure 429 {object} helpers.Response
// @Router /api/password/forgot [post]
func (h *PasswordHandler) Forgot(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	var req forgotReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		log.Warn("Невалидный payload в Forgot")
		helpers.Error(w, http.StatusBadRequest, "invalid payload")
		return
	}

	devToken := h.svc.RequestReset(r.Context(), req.Email)
	log.Info("Запрошено восстановление пароля", zap.String("email_masked", services.MaskEmail(req.Email)))

	helpers.JSON(w, http.StatusOK, forgotResp{Message: forgotMessage, DevToken: devToken})
}

type resetReq struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// Reset godoc
// @Summary Сброс пароля по токену
// @Description Устанавливает новый пароль по токену из письма. Токен одноразовый.
// @Tags password
// @Accept json
// @Produce json
// @Param input body resetReq true "Токен и новый пароль"
// @Success 200 {object} helpers.Response
// @Failure 400 {object} helpers.Response
// @Failure 429 {object} helpers.Response
// @Router /api/password/reset [post]
func (h *PasswordHandler) Reset(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	var req resetReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Token) == "" || req.NewPassword == "" {
		log.Warn("Невалидный payload в Reset")
		helpers.Error(w, http.StatusBadRequest, "invalid payload")
		return
	}

	if err := h.svc.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, services.ErrPasswordTooShort):
			helpers.Error(w, http.StatusBadRequest, "password too short")
		case errors.Is(err, services.ErrInvalidResetToken):
			helpers.Error(w, http.StatusBadRequest, "invalid or expired token")
		default:
			log.Error("Ошибка сброса пароля", zap.Error(err))
			helpers.Error(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	helpers.JSON(w, http.StatusOK, map[string]string{"message": "Password has been reset."})
}

type changeReq struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Change godoc
// @Summary Смена пароля (авторизованный пользователь)
// @Description Смена пароля по старому паролю. Для куки-сессии нужен заголовок X-CSRF-Token.
// @Tags password
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body changeReq true "Старый и новый пароль"
// @Success 200 {object} helpers.Response
// @Failure 400 {object} helpers.Response
// @Failure 401 {object} helpers.Response
// @Failure 403 {object} helpers.Response
// @Router /api/password/change [post]
func (h *PasswordHandler) Change(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok || userID == 0 {
		helpers.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req changeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OldPassword == "" || req.NewPassword == "" {
		log.Warn("Невалидный payload в Change")
		helpers.Error(w, http.StatusBadRequest, "invalid payload")
		return
	}

	if err := h.svc.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, services.ErrPasswordTooShort):
			helpers.Error(w, http.StatusBadRequest, "password too short")
		case errors.Is(err, services.ErrOldPasswordWrong):
			helpers.Error(w, http.StatusBadRequest, "old password incorrect")
		case errors.Is(err, security.ErrInvalid):
			helpers.Error(w, http.StatusUnauthorized, "unauthorized")
		default:
			log.Error("Ошибка смены пароля", zap.Error(err))
			helpers.Error(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	helpers.JSON(w, http.StatusOK, map[string]string{"message": "Password changed."})
}
