// Package storage реализует хранилище лицензий и каталог продуктов
// на основе PostgreSQL. Ядро API только читает эти данные; методы
// записи используются административным API.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

var (
	// ErrLicenseNotFound: лицензия с указанной тройкой не найдена.
	ErrLicenseNotFound = errors.New("license not found")
	// ErrProductNotFound: опубликованный продукт с указанным slug не найден.
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidExpiry: дата окончания не позже начала эпохи и совпала бы с бессрочной.
	ErrInvalidExpiry = errors.New("license expiry must be after 1970-01-01")
)

// neverExpires: значение valid_until по умолчанию в таблице лицензий.
// За пределы пакета не выходит: в модели бессрочность выражается nil.
var neverExpires = time.Unix(0, 0).UTC()

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New открывает подключение к PostgreSQL и проверяет его доступность.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// Ping проверяет доступность базы данных.
func (s *Storage) Ping(ctx context.Context) error {
	const op = "storage.Ping"
	if err := s.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает пул соединений.
func (s *Storage) Close() error {
	return s.DB.Close()
}

// CheckDatabaseReady проверяет, что миграции применены.
func CheckDatabaseReady(ctx context.Context, storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRowContext(ctx, `SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'product_licenses'
    )`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("storage.CheckDatabaseReady: %w", err)
	}
	if !exists {
		return errors.New("storage.CheckDatabaseReady: required table product_licenses missing")
	}
	return nil
}

func expiryFromColumn(t time.Time) *time.Time {
	if t.Equal(neverExpires) {
		return nil
	}
	v := t
	return &v
}

func expiryToColumn(t *time.Time) (time.Time, error) {
	if t == nil {
		return neverExpires, nil
	}
	if !t.After(neverExpires) {
		return time.Time{}, ErrInvalidExpiry
	}
	return *t, nil
}
