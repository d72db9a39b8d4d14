// Package storagesettings HTTP-обработчики ключей доступа к объектному хранилищу.
//
// Ключи только записываются; чтение отдаёт лишь признак, что они заданы.
package storagesettings

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/license-manager/internal/http/response"
	"github.com/magabrotheeeer/license-manager/internal/lib/sl"
)

// Request новые ключи доступа.
type Request struct {
	AccessKey string `json:"access_key" validate:"required"`
	SecretKey string `json:"secret_key" validate:"required"`
}

// Status ответ на запрос состояния настроек.
type Status struct {
	Configured bool   `json:"configured"`
	Notice     string `json:"notice,omitempty"`
}

// Service сохраняет и проверяет ключи доступа.
type Service interface {
	SetStorageCredentials(ctx context.Context, accessKey, secretKey string) error
	StorageConfigured(ctx context.Context) (bool, error)
}

// Handler обрабатывает /api/v1/admin/settings/storage.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// Put godoc
// @Summary Ключи доступа к объектному хранилищу
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Ключи"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка"
// @Router /api/v1/admin/settings/storage [put]
func (h *Handler) Put(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.storagesettings.Put"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if err := h.service.SetStorageCredentials(r.Context(), req.AccessKey, req.SecretKey); err != nil {
		log.Error("failed to save storage credentials", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("storage credentials updated")
	render.JSON(w, r, response.StatusOKWithData(Status{Configured: true}))
}

// Get godoc
// @Summary Состояние ключей доступа к объектному хранилищу
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка"
// @Router /api/v1/admin/settings/storage [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.storagesettings.Get"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	configured, err := h.service.StorageConfigured(r.Context())
	if err != nil {
		log.Error("failed to read storage credentials", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	status := Status{Configured: configured}
	if !configured {
		status.Notice = "object storage credentials are missing, downloads are unavailable"
	}
	render.JSON(w, r, response.StatusOKWithData(status))
}
