package postgres

import (
	"context"
	"errors"

	"encheres/internal/auction/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BidRepository implements domain.BidRepository on PostgreSQL. Bids are
// append-only: there is no update or single-row delete.
type BidRepository struct {
	pool *pgxpool.Pool
}

func NewBidRepository(pool *pgxpool.Pool) *BidRepository {
	return &BidRepository{pool: pool}
}

func (r *BidRepository) Insert(ctx context.Context, bid *domain.Bid) error {
	query := `
        INSERT INTO bids (article_id, bidder_id, amount, bid_date)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `
	return r.pool.QueryRow(ctx, query,
		bid.ArticleID,
		bid.BidderID,
		bid.Amount,
		bid.Date,
	).Scan(&bid.ID)
}

func (r *BidRepository) BestByArticle(ctx context.Context, articleID int) (*domain.Bid, error) {
	query := `
        SELECT id, article_id, bidder_id, amount, bid_date
        FROM bids
        WHERE article_id = $1
        ORDER BY amount DESC, bid_date ASC, id ASC
        LIMIT 1
    `
	bid := &domain.Bid{}
	err := r.pool.QueryRow(ctx, query, articleID).Scan(
		&bid.ID,
		&bid.ArticleID,
		&bid.BidderID,
		&bid.Amount,
		&bid.Date,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return bid, nil
}

func (r *BidRepository) ListByArticle(ctx context.Context, articleID int) ([]*domain.Bid, error) {
	query := `
        SELECT id, article_id, bidder_id, amount, bid_date
        FROM bids
        WHERE article_id = $1
        ORDER BY id ASC
    `
	rows, err := r.pool.Query(ctx, query, articleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []*domain.Bid
	for rows.Next() {
		bid := &domain.Bid{}
		err := rows.Scan(
			&bid.ID,
			&bid.ArticleID,
			&bid.BidderID,
			&bid.Amount,
			&bid.Date,
		)
		if err != nil {
			return nil, err
		}
		bids = append(bids, bid)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bids, nil
}
