package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"encheres/internal/auction/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const articleColumns = `id, name, description, starting_price, sale_price, start_date, end_date, category_id, seller_id, created_at, updated_at`

// ArticleRepository implements domain.ArticleRepository on PostgreSQL.
type ArticleRepository struct {
	pool *pgxpool.Pool
}

func NewArticleRepository(pool *pgxpool.Pool) *ArticleRepository {
	return &ArticleRepository{pool: pool}
}

func (r *ArticleRepository) GetByID(ctx context.Context, id int) (*domain.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE id = $1`
	article, err := scanArticle(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrArticleNotFound
		}
		return nil, err
	}
	return article, nil
}

func (r *ArticleRepository) Insert(ctx context.Context, a *domain.Article) error {
	query := `
        INSERT INTO articles (name, description, starting_price, sale_price, start_date, end_date, category_id, seller_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `
	return r.pool.QueryRow(ctx, query,
		a.Name,
		a.Description,
		a.StartingPrice,
		a.SalePrice,
		a.StartDate,
		a.EndDate,
		a.CategoryID,
		a.SellerID,
	).Scan(&a.ID)
}

func (r *ArticleRepository) Update(ctx context.Context, a *domain.Article) error {
	query := `
        UPDATE articles
        SET name = $2,
            description = $3,
            starting_price = $4,
            sale_price = $5,
            start_date = $6,
            end_date = $7,
            category_id = $8,
            seller_id = $9,
            updated_at = NOW()
        WHERE id = $1
    `
	tag, err := r.pool.Exec(ctx, query,
		a.ID,
		a.Name,
		a.Description,
		a.StartingPrice,
		a.SalePrice,
		a.StartDate,
		a.EndDate,
		a.CategoryID,
		a.SellerID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrArticleNotFound
	}
	return nil
}

func (r *ArticleRepository) UpdateSalePrice(ctx context.Context, id, amount int) error {
	query := `UPDATE articles SET sale_price = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrArticleNotFound
	}
	return nil
}

// Delete removes the article and its bids and withdrawal record in one
// transaction, so the cascade can never leave orphan child rows behind.
func (r *ArticleRepository) Delete(ctx context.Context, id int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin delete transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, query := range []string{
		`DELETE FROM bids WHERE article_id = $1`,
		`DELETE FROM withdrawals WHERE article_id = $1`,
		`DELETE FROM articles WHERE id = $1`,
	} {
		if _, err := tx.Exec(ctx, query, id); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *ArticleRepository) ListAll(ctx context.Context) ([]*domain.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles ORDER BY end_date, id`
	return r.queryArticles(ctx, query)
}

func (r *ArticleRepository) ListActive(ctx context.Context, today time.Time, f domain.ArticleFilter) ([]*domain.Article, error) {
	query := `
        SELECT ` + articleColumns + ` FROM articles
        WHERE $1::date BETWEEN start_date AND end_date` + filterClause(2) + `
        ORDER BY end_date, id`
	return r.queryArticles(ctx, query, today, f.CategoryID, f.Name)
}

func (r *ArticleRepository) ListActiveExcludingSeller(ctx context.Context, today time.Time, sellerID int, f domain.ArticleFilter) ([]*domain.Article, error) {
	query := `
        SELECT ` + articleColumns + ` FROM articles
        WHERE $1::date BETWEEN start_date AND end_date
          AND seller_id <> $2` + filterClause(3) + `
        ORDER BY end_date, id`
	return r.queryArticles(ctx, query, today, sellerID, f.CategoryID, f.Name)
}

func (r *ArticleRepository) ListActiveWithBidder(ctx context.Context, today time.Time, bidderID int, f domain.ArticleFilter) ([]*domain.Article, error) {
	query := `
        SELECT ` + articleColumns + ` FROM articles a
        WHERE $1::date BETWEEN a.start_date AND a.end_date
          AND EXISTS (SELECT 1 FROM bids b WHERE b.article_id = a.id AND b.bidder_id = $2)` + filterClause(3) + `
        ORDER BY a.end_date, a.id`
	return r.queryArticles(ctx, query, today, bidderID, f.CategoryID, f.Name)
}

func (r *ArticleRepository) ListWonByUser(ctx context.Context, today time.Time, bidderID int, f domain.ArticleFilter) ([]*domain.Article, error) {
	query := `
        SELECT ` + articleColumns + ` FROM articles a
        WHERE a.end_date < $1::date
          AND EXISTS (
              SELECT 1 FROM bids b
              WHERE b.article_id = a.id AND b.bidder_id = $2
                AND b.amount = (SELECT MAX(b2.amount) FROM bids b2 WHERE b2.article_id = a.id)
          )` + filterClause(3) + `
        ORDER BY a.end_date, a.id`
	return r.queryArticles(ctx, query, today, bidderID, f.CategoryID, f.Name)
}

func (r *ArticleRepository) ListSellingActiveByUser(ctx context.Context, today time.Time, sellerID int, f domain.ArticleFilter) ([]*domain.Article, error) {
	return r.listSelling(ctx, `$1::date BETWEEN start_date AND end_date`, today, sellerID, f)
}

func (r *ArticleRepository) ListSellingUpcomingByUser(ctx context.Context, today time.Time, sellerID int, f domain.ArticleFilter) ([]*domain.Article, error) {
	return r.listSelling(ctx, `start_date > $1::date`, today, sellerID, f)
}

func (r *ArticleRepository) ListSellingClosedByUser(ctx context.Context, today time.Time, sellerID int, f domain.ArticleFilter) ([]*domain.Article, error) {
	return r.listSelling(ctx, `end_date < $1::date`, today, sellerID, f)
}

func (r *ArticleRepository) listSelling(ctx context.Context, datePredicate string, today time.Time, sellerID int, f domain.ArticleFilter) ([]*domain.Article, error) {
	query := `
        SELECT ` + articleColumns + ` FROM articles
        WHERE ` + datePredicate + `
          AND seller_id = $2` + filterClause(3) + `
        ORDER BY end_date, id`
	return r.queryArticles(ctx, query, today, sellerID, f.CategoryID, f.Name)
}

// filterClause renders the shared category/name predicates with the category
// placeholder at position n and the name placeholder right after it. A zero
// category matches everything; a non-empty name is a case-insensitive
// substring match.
func filterClause(n int) string {
	return fmt.Sprintf(`
          AND ($%d = 0 OR category_id = $%d)
          AND ($%d = '' OR name ILIKE '%%' || $%d || '%%')`, n, n, n+1, n+1)
}

func (r *ArticleRepository) queryArticles(ctx context.Context, query string, args ...any) ([]*domain.Article, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []*domain.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return articles, nil
}

func scanArticle(row pgx.Row) (*domain.Article, error) {
	a := &domain.Article{}
	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Description,
		&a.StartingPrice,
		&a.SalePrice,
		&a.StartDate,
		&a.EndDate,
		&a.CategoryID,
		&a.SellerID,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}
