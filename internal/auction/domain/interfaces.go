package domain

import (
	"context"
	"time"
)

// ArticleFilter narrows the list queries. A zero CategoryID matches every
// category; a non-empty Name is a case-insensitive substring match on the
// article name.
type ArticleFilter struct {
	CategoryID int
	Name       string
}

type ArticleRepository interface {
	GetByID(ctx context.Context, id int) (*Article, error)
	Insert(ctx context.Context, article *Article) error
	Update(ctx context.Context, article *Article) error
	// UpdateSalePrice records the new best bid amount on the article without
	// touching any other column.
	UpdateSalePrice(ctx context.Context, id, amount int) error
	// Delete removes the article together with its bids and withdrawal record.
	Delete(ctx context.Context, id int) error

	ListAll(ctx context.Context) ([]*Article, error)
	ListActive(ctx context.Context, today time.Time, f ArticleFilter) ([]*Article, error)
	ListActiveExcludingSeller(ctx context.Context, today time.Time, sellerID int, f ArticleFilter) ([]*Article, error)
	ListActiveWithBidder(ctx context.Context, today time.Time, bidderID int, f ArticleFilter) ([]*Article, error)
	ListWonByUser(ctx context.Context, today time.Time, bidderID int, f ArticleFilter) ([]*Article, error)
	ListSellingActiveByUser(ctx context.Context, today time.Time, sellerID int, f ArticleFilter) ([]*Article, error)
	ListSellingUpcomingByUser(ctx context.Context, today time.Time, sellerID int, f ArticleFilter) ([]*Article, error)
	ListSellingClosedByUser(ctx context.Context, today time.Time, sellerID int, f ArticleFilter) ([]*Article, error)
}

type BidRepository interface {
	Insert(ctx context.Context, bid *Bid) error
	// BestByArticle returns the highest bid for the article, or nil when no
	// bid exists yet.
	BestByArticle(ctx context.Context, articleID int) (*Bid, error)
	ListByArticle(ctx context.Context, articleID int) ([]*Bid, error)
}

type WithdrawalRepository interface {
	// GetByArticle returns nil when no record was ever created.
	GetByArticle(ctx context.Context, articleID int) (*Withdrawal, error)
	// Upsert inserts or updates the record keyed on its article id.
	Upsert(ctx context.Context, w *Withdrawal) error
	// Delete removes the record; absence is not an error.
	Delete(ctx context.Context, articleID int) error
}

// UserLookup resolves a seller or bidder id. It reports found=false for an
// unknown id and an error only when the lookup itself fails.
type UserLookup interface {
	ResolveUser(ctx context.Context, id int) (found bool, err error)
}

// CategoryLookup resolves a category id the same way.
type CategoryLookup interface {
	ResolveCategory(ctx context.Context, id int) (found bool, err error)
}
