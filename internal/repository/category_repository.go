package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/marketgo/internal/apperr"
	"github.com/nikolayk812/marketgo/internal/domain"
	"github.com/nikolayk812/marketgo/internal/port"
)

var ErrCategoryNotFound = apperr.New(apperr.KindNotFound, "category not found")

type categoryRepository struct {
	db DBTX
}

func NewCategory(pool *pgxpool.Pool) port.CategoryRepository {
	return &categoryRepository{db: pool}
}

func (r *categoryRepository) GetCategory(ctx context.Context, categoryID uuid.UUID) (domain.Category, error) {
	var c domain.Category

	row := r.db.QueryRow(ctx,
		`SELECT id, name, status, created_at, updated_at
		 FROM categories WHERE id = $1 AND status = 'active'`, categoryID)

	var status string
	err := row.Scan(&c.ID, &c.Name, &status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c, fmt.Errorf("GetCategory: %w", ErrCategoryNotFound)
		}
		return c, fmt.Errorf("GetCategory: %w", err)
	}
	c.Status = domain.CategoryStatus(status)

	return c, nil
}

func (r *categoryRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, status, created_at, updated_at
		 FROM categories WHERE status = 'active' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("db.Query: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category

	for rows.Next() {
		var (
			c      domain.Category
			status string
		)
		if err := rows.Scan(&c.ID, &c.Name, &status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}
		c.Status = domain.CategoryStatus(status)
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return categories, nil
}

func (r *categoryRepository) InsertCategory(ctx context.Context, name string) (domain.Category, error) {
	var c domain.Category

	row := r.db.QueryRow(ctx,
		`INSERT INTO categories (name) VALUES ($1)
		 RETURNING id, name, status, created_at, updated_at`, name)

	var status string
	if err := row.Scan(&c.ID, &c.Name, &status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return c, fmt.Errorf("InsertCategory: %w", err)
	}
	c.Status = domain.CategoryStatus(status)

	return c, nil
}

func (r *categoryRepository) UpdateCategory(ctx context.Context, categoryID uuid.UUID, name string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE categories SET name = $2, updated_at = now()
		 WHERE id = $1 AND status = 'active'`, categoryID, name)
	if err != nil {
		return fmt.Errorf("UpdateCategory: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("UpdateCategory: %w", ErrCategoryNotFound)
	}

	return nil
}
