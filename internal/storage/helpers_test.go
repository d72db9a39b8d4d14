package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/license-manager/internal/migrations"
)

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateProduct создает тестовый продукт с заданным статусом
func (f *TestDataFactory) CreateProduct(t *testing.T, slug, status string) int64 {
	var id int64
	err := f.storage.DB.QueryRow(`INSERT INTO products
		(slug, title, description, author, version, tested, requires, last_updated,
		 banner_low, banner_high, permalink, file_bucket, file_name, status)
		VALUES ($1, $2, 'desc', 'Author', '1.2.0', '6.5', '6.0', NOW(),
		 'low.png', 'high.png', $3, 'releases', $4, $5)
		RETURNING id`,
		slug, "Title "+slug, "https://example.com/products/"+slug, slug+".zip", status).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateLicense создает тестовую лицензию; validUntil == nil оставляет значение по умолчанию
func (f *TestDataFactory) CreateLicense(t *testing.T, productID int64, email, key string, validUntil *time.Time) int64 {
	var (
		id  int64
		err error
	)
	if validUntil == nil {
		err = f.storage.DB.QueryRow(`INSERT INTO product_licenses (product_id, email, license_key)
			VALUES ($1, $2, $3) RETURNING id`, productID, email, key).Scan(&id)
	} else {
		err = f.storage.DB.QueryRow(`INSERT INTO product_licenses (product_id, email, license_key, valid_until)
			VALUES ($1, $2, $3, $4) RETURNING id`, productID, email, key, *validUntil).Scan(&id)
	}
	require.NoError(t, err)
	return id
}

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Пробуем подключиться несколько раз с ретраями
	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	migrationsPath, err := filepath.Abs("../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))

	cleanup := func() {
		_ = storage.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return storage, cleanup
}
