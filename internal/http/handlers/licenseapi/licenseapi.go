// Package licenseapi HTTP-обработчик публичного API лицензий
// GET /api/license-manager/{action}?p=&e=&l=.
//
// Ошибки предметной области отдаются со статусом 200 и телом {"error": ...},
// сбои инфраструктуры со статусом 503 и тем же общим сообщением.
// Действие get отвечает редиректом 302 без тела.
package licenseapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/license-manager/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/license-manager/internal/lib/sl"
	"github.com/magabrotheeeer/license-manager/internal/services/entitlement"
)

// параметры запроса, которые передаются диспетчеру
var queryParams = []string{"p", "e", "l"}

// Service обрабатывает действие API лицензий.
type Service interface {
	Handle(ctx context.Context, action string, params map[string]string) entitlement.Response
}

// EventPublisher публикует событие о выданной загрузке.
type EventPublisher interface {
	PublishDownload(ctx context.Context, event rabbitmq.DownloadEvent) error
}

// Handler обработчик API лицензий.
type Handler struct {
	log       *slog.Logger
	service   Service
	publisher EventPublisher
}

// New создаёт Handler.
func New(log *slog.Logger, service Service, publisher EventPublisher) *Handler {
	return &Handler{
		log:       log,
		service:   service,
		publisher: publisher,
	}
}

// ServeHTTP godoc
// @Summary Проверка лицензии и доступ к продукту
// @Description info возвращает метаданные продукта, get перенаправляет на подписанную ссылку загрузки (10 минут).
// @Tags License API
// @Produce json
// @Param action path string true "Действие" Enums(info, get)
// @Param p query string true "Slug продукта"
// @Param e query string true "Email покупателя"
// @Param l query string true "Лицензионный ключ"
// @Success 200 {object} entitlement.InfoPayload "Метаданные продукта или {\"error\": ...}"
// @Success 302 "Редирект на подписанную ссылку"
// @Failure 503 {object} entitlement.ErrorPayload "Сбой внешней зависимости"
// @Router /api/license-manager/{action} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.licenseapi"

	action := chi.URLParam(r, "action")
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("action", action),
	)

	params := make(map[string]string, len(queryParams))
	query := r.URL.Query()
	for _, key := range queryParams {
		if query.Has(key) {
			params[key] = query.Get(key)
		}
	}
	log = log.With(slog.String("product", params["p"]))

	resp := h.service.Handle(r.Context(), action, params)

	switch {
	case resp.Failed() && errors.Is(resp.Err, entitlement.ErrInternal):
		log.Error("api action failed", sl.Err(resp.Err))
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, resp.Payload)
	case resp.Failed():
		log.Info("api request rejected", slog.String("reason", resp.Err.Error()))
		render.JSON(w, r, resp.Payload)
	case resp.IsRedirect():
		w.Header().Set("Location", resp.Location)
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusFound)
		log.Info("download url issued", slog.Time("expires_at", resp.ExpiresAt))
		h.publishDownload(r, log, params["p"], resp)
	default:
		log.Info("product info returned")
		render.JSON(w, r, resp.Payload)
	}
}

func (h *Handler) publishDownload(r *http.Request, log *slog.Logger, product string, resp entitlement.Response) {
	if h.publisher == nil {
		return
	}
	event := rabbitmq.DownloadEvent{
		Product:   product,
		Action:    resp.Action.String(),
		IssuedAt:  resp.ExpiresAt.Add(-entitlement.DownloadURLTTL),
		ExpiresAt: resp.ExpiresAt,
		RequestID: middleware.GetReqID(r.Context()),
	}
	if err := h.publisher.PublishDownload(context.WithoutCancel(r.Context()), event); err != nil {
		log.Warn("failed to publish download event", sl.Err(err))
	}
}
