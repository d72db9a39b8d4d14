// Package entitlement реализует диспетчер API лицензий: разбирает действие
// и параметры запроса, проверяет лицензию и отдаёт метаданные продукта
// (info) либо редирект на подписанную ссылку загрузки (get).
//
// Проверка лицензии всегда предшествует раскрытию любых данных продукта.
// Все ошибки обрабатываются здесь же и превращаются в единый ответ {"error": ...}.
package entitlement

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/magabrotheeeer/license-manager/internal/models"
	"github.com/magabrotheeeer/license-manager/internal/services/license"
	"github.com/magabrotheeeer/license-manager/internal/storage"
)

const (
	// DownloadURLTTL срок действия подписанной ссылки на дистрибутив.
	DownloadURLTTL = 10 * time.Minute
	// APIPath путь API лицензий относительно публичного адреса сервиса.
	APIPath = "/api/license-manager"

	lastUpdatedLayout = "2006-01-02"
)

var responsesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "lm_api_responses_total",
		Help: "Количество ответов API лицензий по действию и исходу.",
	},
	[]string{"action", "outcome"},
)

// ProductCatalog ищет опубликованный продукт по slug.
// При отсутствии возвращает storage.ErrProductNotFound.
type ProductCatalog interface {
	PublishedProductBySlug(ctx context.Context, slug string) (*models.Product, error)
}

// LicenseValidator проверяет лицензию на момент now.
type LicenseValidator interface {
	Validate(ctx context.Context, productID int64, email, licenseKey string, now time.Time) (license.Result, error)
}

// SignedURLProvider выдаёт ссылку на объект, действующую ttl.
type SignedURLProvider interface {
	SignedURL(ctx context.Context, bucket, object string, ttl time.Duration) (string, error)
}

// Request параметры запроса к API лицензий.
type Request struct {
	Product string `validate:"required"` // p: slug продукта
	Email   string `validate:"required"` // e: email покупателя
	License string `validate:"required"` // l: лицензионный ключ
}

// Dispatcher обрабатывает запросы API лицензий. Состояния между запросами не хранит.
type Dispatcher struct {
	catalog     ProductCatalog
	licenses    LicenseValidator
	signer      SignedURLProvider
	validate    *validator.Validate
	publicURL   string
	callTimeout time.Duration
	now         func() time.Time
}

// New создаёт Dispatcher. callTimeout ограничивает каждый внешний вызов по отдельности;
// нулевое значение оставляет только дедлайн входящего контекста.
func New(catalog ProductCatalog, licenses LicenseValidator, signer SignedURLProvider, publicURL string, callTimeout time.Duration) *Dispatcher {
	return &Dispatcher{
		catalog:     catalog,
		licenses:    licenses,
		signer:      signer,
		validate:    validator.New(),
		publicURL:   strings.TrimRight(publicURL, "/"),
		callTimeout: callTimeout,
		now:         time.Now,
	}
}

// WithClock подменяет источник текущего времени.
func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	d.now = now
	return d
}

// Handle обрабатывает одно действие API с параметрами params (p, e, l).
//
// Порядок: действие → параметры → продукт → лицензия → действие.
// Первая неудача сразу даёт ответ с ошибкой, повторов нет.
func (d *Dispatcher) Handle(ctx context.Context, action string, params map[string]string) Response {
	act := ParseAction(action)
	resp := d.handle(ctx, act, params)
	resp.Action = act
	if resp.Err != nil {
		resp.Payload = ErrorPayload{Error: Message(resp.Err)}
		resp.Location = ""
	}
	responsesTotal.WithLabelValues(act.String(), outcome(resp.Err)).Inc()
	return resp
}

func (d *Dispatcher) handle(ctx context.Context, act Action, params map[string]string) Response {
	if act == ActionUnknown {
		return Response{Err: ErrUnknownAction}
	}

	req := Request{
		Product: params["p"],
		Email:   params["e"],
		License: params["l"],
	}
	if err := d.validate.Struct(req); err != nil {
		return Response{Err: fmt.Errorf("%w: %v", ErrMalformedRequest, err)}
	}

	product, err := d.resolveProduct(ctx, req.Product)
	if err != nil {
		return Response{Err: err}
	}

	if err := d.checkLicense(ctx, product.ID, req); err != nil {
		return Response{Err: err}
	}

	switch act {
	case ActionInfo:
		return d.info(product, req)
	case ActionGet:
		return d.get(ctx, product)
	default:
		return Response{Err: ErrActionFailed}
	}
}

func (d *Dispatcher) resolveProduct(ctx context.Context, slug string) (*models.Product, error) {
	const op = "entitlement.resolveProduct"
	callCtx, cancel := d.withTimeout(ctx)
	defer cancel()

	product, err := d.catalog.PublishedProductBySlug(callCtx, slug)
	if errors.Is(err, storage.ErrProductNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInternal, err)
	}
	return product, nil
}

func (d *Dispatcher) checkLicense(ctx context.Context, productID int64, req Request) error {
	const op = "entitlement.checkLicense"
	callCtx, cancel := d.withTimeout(ctx)
	defer cancel()

	result, err := d.licenses.Validate(callCtx, productID, req.Email, req.License, d.now())
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrInternal, err)
	}
	if result != license.Valid {
		return ErrUnauthorized
	}
	return nil
}

func (d *Dispatcher) info(product *models.Product, req Request) Response {
	var lastUpdated string
	if !product.LastUpdated.IsZero() {
		lastUpdated = product.LastUpdated.UTC().Format(lastUpdatedLayout)
	}

	return Response{Payload: InfoPayload{
		Name:           product.Title,
		Description:    product.Description,
		Version:        product.Version,
		Tested:         product.Tested,
		Author:         product.Author,
		LastUpdated:    lastUpdated,
		BannerLow:      product.BannerLow,
		BannerHigh:     product.BannerHigh,
		PackageURL:     d.packageURL(req),
		DescriptionURL: product.Permalink + "#v=" + product.Version,
	}}
}

// packageURL ссылка на действие get с той же тройкой. Все три значения
// экранируются, иначе "+" в email или ключе превратится в пробел.
func (d *Dispatcher) packageURL(req Request) string {
	return d.publicURL + APIPath + "/get?p=" + url.QueryEscape(req.Product) +
		"&e=" + url.QueryEscape(req.Email) +
		"&l=" + url.QueryEscape(req.License)
}

func (d *Dispatcher) get(ctx context.Context, product *models.Product) Response {
	const op = "entitlement.get"
	callCtx, cancel := d.withTimeout(ctx)
	defer cancel()

	issuedAt := d.now()
	location, err := d.signer.SignedURL(callCtx, product.FileBucket, product.FileName, DownloadURLTTL)
	if err != nil {
		return Response{Err: fmt.Errorf("%s: %w: %w", op, ErrInternal, err)}
	}
	if location == "" {
		return Response{Err: fmt.Errorf("%s: %w", op, ErrActionFailed)}
	}
	return Response{Location: location, ExpiresAt: issuedAt.Add(DownloadURLTTL)}
}

func (d *Dispatcher) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d.callTimeout)
}
