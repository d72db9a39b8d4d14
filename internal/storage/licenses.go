package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/license-manager/internal/models"
)

// FindLicense возвращает лицензию, точно совпадающую по продукту, email и ключу.
// Если записи нет, возвращает ErrLicenseNotFound.
func (s *Storage) FindLicense(ctx context.Context, productID int64, email, licenseKey string) (*models.License, error) {
	const op = "storage.FindLicense"

	query := `SELECT id, product_id, email, license_key, valid_until, created_at, updated_at
			  FROM product_licenses
			  WHERE product_id = $1 AND email = $2 AND license_key = $3
			  ORDER BY id
			  LIMIT 1`
	row := s.DB.QueryRowContext(ctx, query, productID, email, licenseKey)

	var (
		result     models.License
		validUntil time.Time
	)
	err := row.Scan(&result.ID, &result.ProductID, &result.Email, &result.LicenseKey,
		&validUntil, &result.CreatedAt, &result.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLicenseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result.ValidUntil = expiryFromColumn(validUntil)
	return &result, nil
}

// CreateLicense вставляет новую лицензию и возвращает её ID.
func (s *Storage) CreateLicense(ctx context.Context, license models.License) (int64, error) {
	const op = "storage.CreateLicense"

	validUntil, err := expiryToColumn(license.ValidUntil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO product_licenses (product_id, email, license_key, valid_until, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, NOW(), NOW())
			  RETURNING id`
	var id int64
	err = s.DB.QueryRowContext(ctx, query,
		license.ProductID, license.Email, license.LicenseKey, validUntil,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ListLicenses возвращает лицензии с пагинацией, новые первыми.
func (s *Storage) ListLicenses(ctx context.Context, limit, offset int) ([]*models.License, error) {
	const op = "storage.ListLicenses"

	query := `SELECT id, product_id, email, license_key, valid_until, created_at, updated_at
			  FROM product_licenses
			  ORDER BY id DESC
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.License
	for rows.Next() {
		var (
			item       models.License
			validUntil time.Time
		)
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Email, &item.LicenseKey,
			&validUntil, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		item.ValidUntil = expiryFromColumn(validUntil)
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
