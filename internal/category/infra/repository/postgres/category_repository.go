package postgres

import (
	"context"
	"errors"

	"encheres/internal/category/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CategoryRepository resolves categories for the auction core.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// GetByID returns the category, or nil when the id is unknown.
func (r *CategoryRepository) GetByID(ctx context.Context, id int) (*domain.Category, error) {
	query := `SELECT id, label FROM categories WHERE id = $1`

	category := &domain.Category{}
	err := r.pool.QueryRow(ctx, query, id).Scan(&category.ID, &category.Label)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return category, nil
}

// ListAll returns every category, for the web layer's filter dropdown.
func (r *CategoryRepository) ListAll(ctx context.Context) ([]*domain.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, label FROM categories ORDER BY label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		category := &domain.Category{}
		if err := rows.Scan(&category.ID, &category.Label); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}

// ResolveCategory implements the auction core's category lookup contract.
func (r *CategoryRepository) ResolveCategory(ctx context.Context, id int) (bool, error) {
	category, err := r.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return category != nil, nil
}
