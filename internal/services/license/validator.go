// Package license принимает решение о действительности лицензии.
//
// Результат бинарный: отсутствие записи, чужой email и истёкший срок
// неразличимы для вызывающего кода. Ошибка возвращается только при сбое хранилища.
package license

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/magabrotheeeer/license-manager/internal/models"
	"github.com/magabrotheeeer/license-manager/internal/storage"
)

var validationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "lm_license_validations_total",
		Help: "Количество проверок лицензий по результату.",
	},
	[]string{"result"},
)

// Result итог проверки лицензии.
type Result int

const (
	// Invalid: лицензия не найдена или истекла.
	Invalid Result = iota
	// Valid: лицензия действует.
	Valid
)

func (r Result) String() string {
	if r == Valid {
		return "valid"
	}
	return "invalid"
}

// Store ищет лицензию по точному совпадению тройки.
// При отсутствии записи возвращает storage.ErrLicenseNotFound.
type Store interface {
	FindLicense(ctx context.Context, productID int64, email, licenseKey string) (*models.License, error)
}

// Validator проверяет лицензии. Только читает хранилище.
type Validator struct {
	store Store
}

// NewValidator создаёт Validator поверх хранилища лицензий.
func NewValidator(store Store) *Validator {
	return &Validator{store: store}
}

// Validate проверяет, действует ли лицензия (productID, email, licenseKey) в момент now.
func (v *Validator) Validate(ctx context.Context, productID int64, email, licenseKey string, now time.Time) (Result, error) {
	const op = "license.Validate"

	lic, err := v.store.FindLicense(ctx, productID, email, licenseKey)
	if errors.Is(err, storage.ErrLicenseNotFound) {
		validationsTotal.WithLabelValues(Invalid.String()).Inc()
		return Invalid, nil
	}
	if err != nil {
		validationsTotal.WithLabelValues("error").Inc()
		return Invalid, fmt.Errorf("%s: %w", op, err)
	}

	result := Invalid
	if lic.ActiveAt(now) {
		result = Valid
	}
	validationsTotal.WithLabelValues(result.String()).Inc()
	return result, nil
}
