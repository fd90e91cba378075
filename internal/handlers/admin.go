package handlers

import (
	"dentalcms/internal/logger"
	"dentalcms/internal/middleware"
	"dentalcms/internal/ratelimit"
	"dentalcms/internal/utils/helpers"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxUploadSize = 10 << 20 // 10MB

type AdminHandler struct {
	limiters  []*ratelimit.Limiter
	uploadDir string
}

func NewAdminHandler(uploadDir string, limiters ...*ratelimit.Limiter) *AdminHandler {
	return &AdminHandler{limiters: limiters, uploadDir: uploadDir}
}

type uploadResponse struct {
	File string `json:"file"`
	Size int64  `json:"size"`
}

// Upload godoc
// @Summary Загрузка файла (только для админа)
// @Tags admin
// @Security ApiKeyAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Файл"
// @Success 201 {object} uploadResponse
// @Failure 400 {object} helpers.Response
// @Failure 403 {object} helpers.Response
// @Failure 429 {object} helpers.Response
// @Router /api/admin/uploads [post]
func (h *AdminHandler) Upload(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		log.Warn("Ошибка разбора формы при загрузке", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		helpers.Error(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	if err := os.MkdirAll(h.uploadDir, 0o750); err != nil {
		log.Error("Не удалось создать каталог загрузок", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	name := fmt.Sprintf("%s_%s", uuid.NewString(), filepath.Base(header.Filename))
	dst, err := os.Create(filepath.Join(h.uploadDir, name))
	if err != nil {
		log.Error("Ошибка при сохранении файла", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	defer dst.Close()

	n, err := io.Copy(dst, file)
	if err != nil {
		log.Error("Ошибка записи файла", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	userID, _ := middleware.UserIDFromContext(r.Context())
	log.Info("Файл загружен", zap.String("file", name), zap.Int64("size", n), zap.Int("uploaded_by", userID))
	helpers.JSON(w, http.StatusCreated, uploadResponse{File: name, Size: n})
}

type limiterStats struct {
	Policy        string `json:"policy"`
	MaxRequests   int    `json:"max_requests"`
	WindowSeconds int    `json:"window_seconds"`
	TrackedKeys   int    `json:"tracked_keys"`
}

// RateLimitStats godoc
// @Summary Состояние лимитеров запросов
// @Tags admin
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {array} limiterStats
// @Failure 403 {object} helpers.Response
// @Router /api/admin/ratelimit [get]
func (h *AdminHandler) RateLimitStats(w http.ResponseWriter, r *http.Request) {
	out := make([]limiterStats, 0, len(h.limiters))
	for _, l := range h.limiters {
		p := l.Policy()
		out = append(out, limiterStats{
			Policy:        p.Name,
			MaxRequests:   p.MaxRequests,
			WindowSeconds: int(p.Window.Seconds()),
			TrackedKeys:   l.Len(),
		})
	}
	helpers.JSON(w, http.StatusOK, out)
}
