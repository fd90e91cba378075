package handlers

import (
	"dentalcms/internal/logger"
	"dentalcms/internal/security"
	"dentalcms/internal/utils/helpers"
	"net/http"

	"go.uber.org/zap"
)

type CSRFHandler struct {
	guard   *security.CSRFGuard
	cookies CookieSettings
}

func NewCSRFHandler(guard *security.CSRFGuard, cookies CookieSettings) *CSRFHandler {
	return &CSRFHandler{guard: guard, cookies: cookies}
}

type csrfResponse struct {
	CSRFToken string `json:"csrf_token"`
}

// issueCSRF выпускает токен, кладёт его хеш в куку и возвращает открытый токен.
func issueCSRF(w http.ResponseWriter, guard *security.CSRFGuard, cookies CookieSettings) (string, error) {
	token, err := guard.Generate()
	if err != nil {
		return "", err
	}
	cookies.setCSRFHash(w, guard.Hash(token))
	return token, nil
}

// Issue godoc
// @Summary Получить CSRF-токен
// @Description Токен передаётся в заголовке X-CSRF-Token во всех изменяющих запросах с кукой сессии.
// @Tags auth
// @Produce json
// @Success 200 {object} csrfResponse
// @Failure 429 {object} helpers.Response
// @Router /api/csrf [get]
func (h *CSRFHandler) Issue(w http.ResponseWriter, r *http.Request) {
	token, err := issueCSRF(w, h.guard, h.cookies)
	if err != nil {
		logger.WithCtx(r.Context()).Error("Ошибка генерации CSRF-токена", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	helpers.JSON(w, http.StatusOK, csrfResponse{CSRFToken: token})
}
