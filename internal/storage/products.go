package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/license-manager/internal/models"
)

const productColumns = `id, slug, title, description, author, version, tested, requires, last_updated,
	banner_low, banner_high, permalink, file_bucket, file_name, status`

// PublishedProductBySlug ищет опубликованный продукт по slug.
// Черновики не находятся: возвращается ErrProductNotFound.
func (s *Storage) PublishedProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	const op = "storage.PublishedProductBySlug"

	query := `SELECT ` + productColumns + `
			  FROM products
			  WHERE slug = $1 AND status = $2
			  LIMIT 1`
	p, err := scanProduct(s.DB.QueryRowContext(ctx, query, slug, models.ProductPublished))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// ProductByID ищет продукт по ID независимо от статуса.
func (s *Storage) ProductByID(ctx context.Context, id int64) (*models.Product, error) {
	const op = "storage.ProductByID"

	query := `SELECT ` + productColumns + `
			  FROM products
			  WHERE id = $1`
	p, err := scanProduct(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func scanProduct(row *sql.Row) (*models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.Description, &p.Author, &p.Version, &p.Tested,
		&p.Requires, &p.LastUpdated, &p.BannerLow, &p.BannerHigh, &p.Permalink, &p.FileBucket,
		&p.FileName, &p.Status)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpsertProduct создаёт или обновляет продукт по slug и возвращает его ID.
// last_updated выставляется при создании и при смене версии.
func (s *Storage) UpsertProduct(ctx context.Context, p models.Product) (int64, error) {
	const op = "storage.UpsertProduct"

	query := `INSERT INTO products (slug, title, description, author, version, tested, requires, last_updated,
				  banner_low, banner_high, permalink, file_bucket, file_name, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), $8, $9, $10, $11, $12, $13)
			  ON CONFLICT (slug) DO UPDATE SET
				  title = EXCLUDED.title,
				  description = EXCLUDED.description,
				  author = EXCLUDED.author,
				  version = EXCLUDED.version,
				  tested = EXCLUDED.tested,
				  requires = EXCLUDED.requires,
				  last_updated = CASE
					  WHEN products.version IS DISTINCT FROM EXCLUDED.version THEN EXCLUDED.last_updated
					  ELSE products.last_updated
				  END,
				  banner_low = EXCLUDED.banner_low,
				  banner_high = EXCLUDED.banner_high,
				  permalink = EXCLUDED.permalink,
				  file_bucket = EXCLUDED.file_bucket,
				  file_name = EXCLUDED.file_name,
				  status = EXCLUDED.status
			  RETURNING id`
	var id int64
	err := s.DB.QueryRowContext(ctx, query,
		p.Slug, p.Title, p.Description, p.Author, p.Version, p.Tested, p.Requires,
		p.BannerLow, p.BannerHigh, p.Permalink, p.FileBucket, p.FileName, p.Status,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}
