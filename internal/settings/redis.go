// Package settings хранит настройки сервиса в Redis.
// Сейчас это ключи доступа к объектному хранилищу, которые администратор
// задаёт через API, а выдача ссылок на загрузку читает при каждом запросе.
package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/license-manager/internal/config"
)

const (
	settingsKey    = "license-manager:settings"
	fieldAccessKey = "storage_access_key"
	fieldSecretKey = "storage_secret_key"
)

// ErrCredentialsMissing: ключи доступа к объектному хранилищу не заданы.
var ErrCredentialsMissing = errors.New("object storage credentials are not configured")

// StorageCredentials ключи доступа к S3-совместимому хранилищу.
type StorageCredentials struct {
	AccessKey string
	SecretKey string
}

// Store хранилище настроек поверх Redis hash.
type Store struct {
	Db *redis.Client
}

// InitServer подключается к Redis и проверяет соединение.
func InitServer(ctx context.Context, cfg config.RedisConnection) (*Store, error) {
	const op = "settings.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Store{Db: db}, nil
}

// StorageCredentials возвращает ключи доступа к хранилищу.
// Если хотя бы один ключ пуст, возвращает ErrCredentialsMissing.
func (s *Store) StorageCredentials(ctx context.Context) (StorageCredentials, error) {
	const op = "settings.StorageCredentials"
	vals, err := s.Db.HMGet(ctx, settingsKey, fieldAccessKey, fieldSecretKey).Result()
	if err != nil {
		return StorageCredentials{}, fmt.Errorf("%s: %w", op, err)
	}

	var creds StorageCredentials
	creds.AccessKey, _ = vals[0].(string)
	creds.SecretKey, _ = vals[1].(string)
	if creds.AccessKey == "" || creds.SecretKey == "" {
		return StorageCredentials{}, ErrCredentialsMissing
	}
	return creds, nil
}

// SetStorageCredentials сохраняет ключи доступа к хранилищу.
func (s *Store) SetStorageCredentials(ctx context.Context, creds StorageCredentials) error {
	const op = "settings.SetStorageCredentials"
	err := s.Db.HSet(ctx, settingsKey,
		fieldAccessKey, creds.AccessKey,
		fieldSecretKey, creds.SecretKey,
	).Err()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает соединение с Redis.
func (s *Store) Close() error {
	return s.Db.Close()
}
