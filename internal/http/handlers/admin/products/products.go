// Package products HTTP-обработчик ведения каталога продуктов.
package products

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/license-manager/internal/http/response"
	"github.com/magabrotheeeer/license-manager/internal/lib/sl"
	"github.com/magabrotheeeer/license-manager/internal/models"
	"github.com/magabrotheeeer/license-manager/internal/services/admin"
)

// Service сохраняет продукт.
type Service interface {
	UpsertProduct(ctx context.Context, slug string, req models.DummyProduct) (int64, error)
}

// Handler обрабатывает PUT /api/v1/admin/products/{slug}.
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

// ServeHTTP godoc
// @Summary Создание или обновление продукта
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Slug продукта"
// @Param request body models.DummyProduct true "Данные продукта"
// @Success 200 {object} response.Response "ID продукта"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка"
// @Router /api/v1/admin/products/{slug} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.products"

	slug := chi.URLParam(r, "slug")
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("slug", slug),
	)

	var req models.DummyProduct
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

	id, err := h.service.UpsertProduct(r.Context(), slug, req)
	switch {
	case errors.Is(err, admin.ErrInvalidVersion):
		log.Warn("product rejected", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(admin.ErrInvalidVersion.Error()))
		return
	case errors.Is(err, admin.ErrInvalidSlug):
		log.Warn("product rejected", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(admin.ErrInvalidSlug.Error()))
		return
	case err != nil:
		log.Error("failed to save product", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("product saved", slog.Int64("id", id), slog.String("version", req.Version))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"id": id, "slug": slug}))
}
