package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"encheres/internal/auction/domain"
)

// Store holds articles, bids and withdrawal records behind one lock. The
// Articles, Bids and Withdrawals views implement the three repository
// interfaces over the shared data, which keeps cross-entity queries (won
// auctions, cascade delete) consistent. It backs the service tests and makes
// the engine runnable without a database.
type Store struct {
	mu            sync.RWMutex
	articles      map[int]domain.Article
	bids          map[int][]domain.Bid // keyed by article id
	withdrawals   map[int]domain.Withdrawal
	nextArticleID int
	nextBidID     int
}

func NewStore() *Store {
	return &Store{
		articles:      make(map[int]domain.Article),
		bids:          make(map[int][]domain.Bid),
		withdrawals:   make(map[int]domain.Withdrawal),
		nextArticleID: 1,
		nextBidID:     1,
	}
}

func (s *Store) Articles() *ArticleRepo       { return &ArticleRepo{s: s} }
func (s *Store) Bids() *BidRepo               { return &BidRepo{s: s} }
func (s *Store) Withdrawals() *WithdrawalRepo { return &WithdrawalRepo{s: s} }

// ArticleRepo implements domain.ArticleRepository.
type ArticleRepo struct {
	s *Store
}

func (r *ArticleRepo) GetByID(_ context.Context, id int) (*domain.Article, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.articles[id]
	if !ok {
		return nil, domain.ErrArticleNotFound
	}
	return &a, nil
}

func (r *ArticleRepo) Insert(_ context.Context, article *domain.Article) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	article.ID = r.s.nextArticleID
	r.s.nextArticleID++
	r.s.articles[article.ID] = *article
	return nil
}

func (r *ArticleRepo) Update(_ context.Context, article *domain.Article) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.articles[article.ID]; !ok {
		return domain.ErrArticleNotFound
	}
	r.s.articles[article.ID] = *article
	return nil
}

func (r *ArticleRepo) UpdateSalePrice(_ context.Context, id, amount int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.articles[id]
	if !ok {
		return domain.ErrArticleNotFound
	}
	a.SalePrice = amount
	r.s.articles[id] = a
	return nil
}

// Delete removes the article together with its bids and withdrawal record
// under one lock.
func (r *ArticleRepo) Delete(_ context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.articles, id)
	delete(r.s.bids, id)
	delete(r.s.withdrawals, id)
	return nil
}

func (r *ArticleRepo) ListAll(_ context.Context) ([]*domain.Article, error) {
	return r.s.list(func(a *domain.Article) bool { return true })
}

func (r *ArticleRepo) ListActive(_ context.Context, today time.Time, f domain.ArticleFilter) ([]*domain.Article, error) {
	return r.s.list(func(a *domain.Article) bool {
		return a.StateAt(today) == domain.StateActive && matches(a, f)
	})
}

func (r *ArticleRepo) ListActiveExcludingSeller(_ context.Context, today time.Time, sellerID int, f domain.ArticleFilter) ([]*domain.Article, error) {
	return r.s.list(func(a *domain.Article) bool {
		return a.StateAt(today) == domain.StateActive && a.SellerID != sellerID && matches(a, f)
	})
}

func (r *ArticleRepo) ListActiveWithBidder(_ context.Context, today time.Time, bidderID int, f domain.ArticleFilter) ([]*domain.Article, error) {
	return r.s.list(func(a *domain.Article) bool {
		return a.StateAt(today) == domain.StateActive && r.s.hasBidFrom(a.ID, bidderID) && matches(a, f)
	})
}

func (r *ArticleRepo) ListWonByUser(_ context.Context, today time.Time, bidderID int, f domain.ArticleFilter) ([]*domain.Article, error) {
	return r.s.list(func(a *domain.Article) bool {
		if a.StateAt(today) != domain.StateClosed || !matches(a, f) {
			return false
		}
		best := r.s.best(a.ID)
		return best != nil && best.BidderID == bidderID
	})
}

func (r *ArticleRepo) ListSellingActiveByUser(_ context.Context, today time.Time, sellerID int, f domain.ArticleFilter) ([]*domain.Article, error) {
	return r.s.listSelling(today, sellerID, domain.StateActive, f)
}

func (r *ArticleRepo) ListSellingUpcomingByUser(_ context.Context, today time.Time, sellerID int, f domain.ArticleFilter) ([]*domain.Article, error) {
	return r.s.listSelling(today, sellerID, domain.StateUpcoming, f)
}

func (r *ArticleRepo) ListSellingClosedByUser(_ context.Context, today time.Time, sellerID int, f domain.ArticleFilter) ([]*domain.Article, error) {
	return r.s.listSelling(today, sellerID, domain.StateClosed, f)
}

// BidRepo implements domain.BidRepository.
type BidRepo struct {
	s *Store
}

func (r *BidRepo) Insert(_ context.Context, bid *domain.Bid) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.articles[bid.ArticleID]; !ok {
		return domain.ErrArticleNotFound
	}
	bid.ID = r.s.nextBidID
	r.s.nextBidID++
	r.s.bids[bid.ArticleID] = append(r.s.bids[bid.ArticleID], *bid)
	return nil
}

func (r *BidRepo) BestByArticle(_ context.Context, articleID int) (*domain.Bid, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.best(articleID), nil
}

func (r *BidRepo) ListByArticle(_ context.Context, articleID int) ([]*domain.Bid, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	bids := make([]*domain.Bid, 0, len(r.s.bids[articleID]))
	for i := range r.s.bids[articleID] {
		b := r.s.bids[articleID][i]
		bids = append(bids, &b)
	}
	return bids, nil
}

// WithdrawalRepo implements domain.WithdrawalRepository.
type WithdrawalRepo struct {
	s *Store
}

func (r *WithdrawalRepo) GetByArticle(_ context.Context, articleID int) (*domain.Withdrawal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	w, ok := r.s.withdrawals[articleID]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r *WithdrawalRepo) Upsert(_ context.Context, w *domain.Withdrawal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.withdrawals[w.ArticleID] = *w
	return nil
}

func (r *WithdrawalRepo) Delete(_ context.Context, articleID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.withdrawals, articleID)
	return nil
}

// best returns the highest bid, earliest one winning ties. Callers hold the
// lock.
func (s *Store) best(articleID int) *domain.Bid {
	bids := s.bids[articleID]
	if len(bids) == 0 {
		return nil
	}
	winning := bids[0]
	for _, b := range bids[1:] {
		if b.Amount > winning.Amount {
			winning = b
		}
	}
	return &winning
}

func (s *Store) hasBidFrom(articleID, bidderID int) bool {
	for _, b := range s.bids[articleID] {
		if b.BidderID == bidderID {
			return true
		}
	}
	return false
}

func (s *Store) listSelling(today time.Time, sellerID int, state domain.ArticleState, f domain.ArticleFilter) ([]*domain.Article, error) {
	return s.list(func(a *domain.Article) bool {
		return a.SellerID == sellerID && a.StateAt(today) == state && matches(a, f)
	})
}

func (s *Store) list(keep func(*domain.Article) bool) ([]*domain.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var articles []*domain.Article
	for id := range s.articles {
		a := s.articles[id]
		if keep(&a) {
			articles = append(articles, &a)
		}
	}
	sort.Slice(articles, func(i, j int) bool { return articles[i].ID < articles[j].ID })
	return articles, nil
}

func matches(a *domain.Article, f domain.ArticleFilter) bool {
	if f.CategoryID != 0 && a.CategoryID != f.CategoryID {
		return false
	}
	if f.Name != "" && !strings.Contains(strings.ToLower(a.Name), strings.ToLower(f.Name)) {
		return false
	}
	return true
}

// Directory is a fixed id set satisfying the user and category lookup
// contracts in tests and demos.
type Directory struct {
	ids map[int]bool
	err error
}

func NewDirectory(ids ...int) *Directory {
	d := &Directory{ids: make(map[int]bool)}
	for _, id := range ids {
		d.ids[id] = true
	}
	return d
}

// FailingDirectory always reports a lookup failure.
func FailingDirectory(err error) *Directory {
	return &Directory{err: err}
}

func (d *Directory) ResolveUser(_ context.Context, id int) (bool, error) {
	return d.resolve(id)
}

func (d *Directory) ResolveCategory(_ context.Context, id int) (bool, error) {
	return d.resolve(id)
}

func (d *Directory) resolve(id int) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	return d.ids[id], nil
}
