// Package admin содержит бизнес-логику административного API: вход
// администратора, выпуск и просмотр лицензий, ведение каталога продуктов
// и ключей доступа к объектному хранилищу.
package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/mod/semver"

	"github.com/magabrotheeeer/license-manager/internal/config"
	"github.com/magabrotheeeer/license-manager/internal/lib/password"
	"github.com/magabrotheeeer/license-manager/internal/models"
	"github.com/magabrotheeeer/license-manager/internal/settings"
	"github.com/magabrotheeeer/license-manager/internal/storage"
)

const (
	validUntilLayout = "2006-01-02"

	defaultListLimit = 50
	maxListLimit     = 500
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLoginDisabled      = errors.New("admin password is not configured")
	ErrUnknownProduct     = errors.New("product does not exist")
	ErrInvalidValidUntil  = errors.New("valid_until must be a date after 1970-01-01 in format YYYY-MM-DD")
	ErrInvalidVersion     = errors.New("version must be a semantic version")
	ErrInvalidSlug        = errors.New("slug must not be empty")
)

// Repository хранилище лицензий и продуктов.
type Repository interface {
	ProductByID(ctx context.Context, id int64) (*models.Product, error)
	UpsertProduct(ctx context.Context, p models.Product) (int64, error)
	CreateLicense(ctx context.Context, license models.License) (int64, error)
	ListLicenses(ctx context.Context, limit, offset int) ([]*models.License, error)
}

// SettingsStore хранилище ключей доступа к объектному хранилищу.
type SettingsStore interface {
	StorageCredentials(ctx context.Context) (settings.StorageCredentials, error)
	SetStorageCredentials(ctx context.Context, creds settings.StorageCredentials) error
}

// TokenMaker выпускает токен администратора.
type TokenMaker interface {
	GenerateToken(username string) (string, error)
}

// Service реализует операции административного API.
type Service struct {
	repo         Repository
	settings     SettingsStore
	tokens       TokenMaker
	username     string
	passwordHash string
}

// New создаёт Service. Учётные данные администратора берутся из конфига.
func New(repo Repository, settingsStore SettingsStore, tokens TokenMaker, cfg config.Admin) *Service {
	return &Service{
		repo:         repo,
		settings:     settingsStore,
		tokens:       tokens,
		username:     cfg.Username,
		passwordHash: cfg.PasswordHash,
	}
}

// Login проверяет имя и пароль администратора и выпускает токен.
func (s *Service) Login(_ context.Context, username, pass string) (string, error) {
	const op = "admin.Login"
	if s.passwordHash == "" {
		return "", fmt.Errorf("%s: %w", op, ErrLoginDisabled)
	}

	// хеш сверяется и при неверном имени, время ответа от имени не зависит
	err := password.CompareHash(s.passwordHash, pass)
	if username != s.username || errors.Is(err, password.ErrMismatch) {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.tokens.GenerateToken(username)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// CreateLicense выпускает лицензию на существующий продукт со сгенерированным ключом.
// Пустой ValidUntil означает бессрочную лицензию; дата означает окончание
// действия в начале этого дня по UTC.
func (s *Service) CreateLicense(ctx context.Context, req models.DummyLicense) (*models.License, error) {
	const op = "admin.CreateLicense"

	validUntil, err := parseValidUntil(req.ValidUntil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.repo.ProductByID(ctx, req.ProductID); err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUnknownProduct)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	license := models.License{
		ProductID:  req.ProductID,
		Email:      strings.TrimSpace(req.Email),
		LicenseKey: GenerateLicenseKey(),
		ValidUntil: validUntil,
	}
	id, err := s.repo.CreateLicense(ctx, license)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	license.ID = id
	return &license, nil
}

// ListLicenses возвращает страницу лицензий, новые первыми.
func (s *Service) ListLicenses(ctx context.Context, limit, offset int) ([]*models.License, error) {
	const op = "admin.ListLicenses"
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)
	offset = max(offset, 0)

	licenses, err := s.repo.ListLicenses(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return licenses, nil
}

// UpsertProduct создаёт или обновляет продукт slug. Версия проверяется как semver,
// ведущая "v" допустима и сохраняется как есть.
func (s *Service) UpsertProduct(ctx context.Context, slug string, req models.DummyProduct) (int64, error) {
	const op = "admin.UpsertProduct"
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return 0, fmt.Errorf("%s: %w", op, ErrInvalidSlug)
	}
	if !ValidVersion(req.Version) {
		return 0, fmt.Errorf("%s: %w", op, ErrInvalidVersion)
	}

	id, err := s.repo.UpsertProduct(ctx, models.Product{
		Slug:        slug,
		Title:       req.Title,
		Description: req.Description,
		Author:      req.Author,
		Version:     req.Version,
		Tested:      req.Tested,
		Requires:    req.Requires,
		BannerLow:   req.BannerLow,
		BannerHigh:  req.BannerHigh,
		Permalink:   req.Permalink,
		FileBucket:  req.FileBucket,
		FileName:    req.FileName,
		Status:      req.Status,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// SetStorageCredentials сохраняет ключи доступа к объектному хранилищу.
func (s *Service) SetStorageCredentials(ctx context.Context, accessKey, secretKey string) error {
	const op = "admin.SetStorageCredentials"
	err := s.settings.SetStorageCredentials(ctx, settings.StorageCredentials{
		AccessKey: accessKey,
		SecretKey: secretKey,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// StorageConfigured сообщает, заданы ли ключи доступа к объектному хранилищу.
func (s *Service) StorageConfigured(ctx context.Context) (bool, error) {
	const op = "admin.StorageConfigured"
	_, err := s.settings.StorageCredentials(ctx)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, settings.ErrCredentialsMissing):
		return false, nil
	default:
		return false, fmt.Errorf("%s: %w", op, err)
	}
}

// GenerateLicenseKey возвращает новый ключ из 32 шестнадцатеричных символов.
func GenerateLicenseKey() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// ValidVersion проверяет, что v является semver с необязательной ведущей "v".
func ValidVersion(v string) bool {
	if v == "" {
		return false
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return semver.IsValid(v)
}

func parseValidUntil(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(validUntilLayout, s)
	if err != nil {
		return nil, ErrInvalidValidUntil
	}
	// Эпоха и более ранние даты в хранилище неотличимы от бессрочной лицензии.
	if !t.After(time.Unix(0, 0).UTC()) {
		return nil, ErrInvalidValidUntil
	}
	return &t, nil
}
