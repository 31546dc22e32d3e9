package postgres

import (
	"context"
	"errors"

	"encheres/internal/auction/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WithdrawalRepository implements domain.WithdrawalRepository on PostgreSQL,
// keyed on the article id.
type WithdrawalRepository struct {
	pool *pgxpool.Pool
}

func NewWithdrawalRepository(pool *pgxpool.Pool) *WithdrawalRepository {
	return &WithdrawalRepository{pool: pool}
}

func (r *WithdrawalRepository) GetByArticle(ctx context.Context, articleID int) (*domain.Withdrawal, error) {
	query := `
        SELECT article_id, street, zip_code, city, picked_up
        FROM withdrawals
        WHERE article_id = $1
    `
	w := &domain.Withdrawal{}
	err := r.pool.QueryRow(ctx, query, articleID).Scan(
		&w.ArticleID,
		&w.Address.Street,
		&w.Address.Zip,
		&w.Address.City,
		&w.PickedUp,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return w, nil
}

func (r *WithdrawalRepository) Upsert(ctx context.Context, w *domain.Withdrawal) error {
	query := `
        INSERT INTO withdrawals (article_id, street, zip_code, city, picked_up)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (article_id) DO UPDATE
        SET street = EXCLUDED.street,
            zip_code = EXCLUDED.zip_code,
            city = EXCLUDED.city,
            picked_up = EXCLUDED.picked_up
    `
	_, err := r.pool.Exec(ctx, query,
		w.ArticleID,
		w.Address.Street,
		w.Address.Zip,
		w.Address.City,
		w.PickedUp,
	)
	return err
}

func (r *WithdrawalRepository) Delete(ctx context.Context, articleID int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM withdrawals WHERE article_id = $1`, articleID)
	return err
}
