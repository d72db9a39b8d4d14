// Package licenses HTTP-обработчики выпуска и просмотра лицензий.
package licenses

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/license-manager/internal/http/response"
	"github.com/magabrotheeeer/license-manager/internal/lib/sl"
	"github.com/magabrotheeeer/license-manager/internal/models"
	"github.com/magabrotheeeer/license-manager/internal/services/admin"
)

// Service выпускает и перечисляет лицензии.
type Service interface {
	CreateLicense(ctx context.Context, req models.DummyLicense) (*models.License, error)
	ListLicenses(ctx context.Context, limit, offset int) ([]*models.License, error)
}

// View представление лицензии в ответах API.
type View struct {
	ID         int64     `json:"id"`
	ProductID  int64     `json:"product_id"`
	Email      string    `json:"email"`
	LicenseKey string    `json:"license_key"`
	ValidUntil *string   `json:"valid_until"`
	CreatedAt  time.Time `json:"created_at"`
}

func newView(l *models.License) View {
	v := View{
		ID:         l.ID,
		ProductID:  l.ProductID,
		Email:      l.Email,
		LicenseKey: l.LicenseKey,
		CreatedAt:  l.CreatedAt,
	}
	if l.ValidUntil != nil {
		s := l.ValidUntil.UTC().Format("2006-01-02")
		v.ValidUntil = &s
	}
	return v
}

// Handler обрабатывает /api/v1/admin/licenses.
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

// Create godoc
// @Summary Выпуск лицензии
// @Description Создаёт лицензию на продукт со сгенерированным ключом. Без valid_until лицензия бессрочная.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.DummyLicense true "Данные лицензии"
// @Success 201 {object} response.Response "Созданная лицензия"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка"
// @Router /api/v1/admin/licenses [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.licenses.Create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyLicense
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

	license, err := h.service.CreateLicense(r.Context(), req)
	switch {
	case errors.Is(err, admin.ErrInvalidValidUntil):
		log.Warn("invalid valid_until", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(admin.ErrInvalidValidUntil.Error()))
		return
	case errors.Is(err, admin.ErrUnknownProduct):
		log.Warn("unknown product", slog.Int64("product_id", req.ProductID))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(admin.ErrUnknownProduct.Error()))
		return
	case err != nil:
		log.Error("failed to create license", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("license created", slog.Int64("id", license.ID), slog.Int64("product_id", license.ProductID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(newView(license)))
}

// List godoc
// @Summary Список лицензий
// @Description Возвращает лицензии постранично, новые первыми.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Размер страницы (по умолчанию 50, максимум 500)"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response "Лицензии"
// @Failure 400 {object} response.ErrorResponse "Некорректные параметры"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка"
// @Router /api/v1/admin/licenses [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.licenses.List"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, err := intQuery(r, "limit")
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("limit must be an integer"))
		return
	}
	offset, err := intQuery(r, "offset")
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("offset must be an integer"))
		return
	}

	items, err := h.service.ListLicenses(r.Context(), limit, offset)
	if err != nil {
		log.Error("failed to list licenses", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	views := make([]View, 0, len(items))
	for _, l := range items {
		views = append(views, newView(l))
	}
	log.Info("licenses listed", slog.Int("count", len(views)))
	render.JSON(w, r, response.StatusOKWithData(views))
}

func intQuery(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
