package application

import (
	"context"
	"fmt"

	"encheres/internal/auction/domain"
	"encheres/internal/shared/logger"

	"go.uber.org/zap"
)

var log = logger.GetLogger()

// ArticleService owns the article lifecycle: filtered listings, creation,
// update and deletion, with the validation engine run before every write.
type ArticleService struct {
	articles    domain.ArticleRepository
	validator   *domain.Validator
	withdrawals *WithdrawalService
	clock       domain.Clock
}

func NewArticleService(articles domain.ArticleRepository, validator *domain.Validator,
	withdrawals *WithdrawalService, clock domain.Clock) *ArticleService {

	return &ArticleService{
		articles:    articles,
		validator:   validator,
		withdrawals: withdrawals,
		clock:       clock,
	}
}

func (s *ArticleService) GetByID(ctx context.Context, id int) (*domain.Article, error) {
	return s.articles.GetByID(ctx, id)
}

func (s *ArticleService) ListAll(ctx context.Context) ([]*domain.Article, error) {
	return s.articles.ListAll(ctx)
}

// ListActive returns the auctions whose window contains today, optionally
// narrowed by category and name substring.
func (s *ArticleService) ListActive(ctx context.Context, f domain.ArticleFilter) ([]*domain.Article, error) {
	return s.articles.ListActive(ctx, s.clock.Today(), f)
}

// ListActiveExcludingSeller returns active auctions from every seller except
// the given user.
func (s *ArticleService) ListActiveExcludingSeller(ctx context.Context, userID int, f domain.ArticleFilter) ([]*domain.Article, error) {
	return s.articles.ListActiveExcludingSeller(ctx, s.clock.Today(), userID, f)
}

// ListActiveWithBidder returns active auctions in which the user has at least
// one bid.
func (s *ArticleService) ListActiveWithBidder(ctx context.Context, userID int, f domain.ArticleFilter) ([]*domain.Article, error) {
	return s.articles.ListActiveWithBidder(ctx, s.clock.Today(), userID, f)
}

// ListWonByUser returns closed auctions whose best bid belongs to the user.
func (s *ArticleService) ListWonByUser(ctx context.Context, userID int, f domain.ArticleFilter) ([]*domain.Article, error) {
	return s.articles.ListWonByUser(ctx, s.clock.Today(), userID, f)
}

func (s *ArticleService) ListSellingActiveByUser(ctx context.Context, userID int, f domain.ArticleFilter) ([]*domain.Article, error) {
	return s.articles.ListSellingActiveByUser(ctx, s.clock.Today(), userID, f)
}

func (s *ArticleService) ListSellingUpcomingByUser(ctx context.Context, userID int, f domain.ArticleFilter) ([]*domain.Article, error) {
	return s.articles.ListSellingUpcomingByUser(ctx, s.clock.Today(), userID, f)
}

func (s *ArticleService) ListSellingClosedByUser(ctx context.Context, userID int, f domain.ArticleFilter) ([]*domain.Article, error) {
	return s.articles.ListSellingClosedByUser(ctx, s.clock.Today(), userID, f)
}

// Create validates the candidate and persists it. A non-empty code list
// blocks the write and is returned verbatim as a *domain.ValidationError.
func (s *ArticleService) Create(ctx context.Context, article *domain.Article) error {
	if codes := s.validator.ValidateArticle(ctx, article); len(codes) > 0 {
		return domain.NewValidationError(codes)
	}
	if err := s.articles.Insert(ctx, article); err != nil {
		log.Error("failed to insert article",
			zap.String("name", article.Name),
			zap.Int("sellerID", article.SellerID),
			zap.Error(err),
		)
		return fmt.Errorf("article service: create: %w", err)
	}
	log.Info("article created",
		zap.Int("articleID", article.ID),
		zap.Int("sellerID", article.SellerID),
	)
	return nil
}

// Update runs the same validation as Create, then persists in place.
func (s *ArticleService) Update(ctx context.Context, article *domain.Article) error {
	if codes := s.validator.ValidateArticle(ctx, article); len(codes) > 0 {
		return domain.NewValidationError(codes)
	}
	if err := s.articles.Update(ctx, article); err != nil {
		log.Error("failed to update article",
			zap.Int("articleID", article.ID),
			zap.Error(err),
		)
		return fmt.Errorf("article service: update article %d: %w", article.ID, err)
	}
	return nil
}

// Delete removes an article whose auction has not started, then its
// withdrawal record. A failed withdrawal cleanup fails the whole operation.
func (s *ArticleService) Delete(ctx context.Context, id int) error {
	if codes := s.validator.ValidateDeletion(ctx, id); len(codes) > 0 {
		return domain.NewValidationError(codes)
	}
	if err := s.articles.Delete(ctx, id); err != nil {
		log.Error("failed to delete article",
			zap.Int("articleID", id),
			zap.Error(err),
		)
		return fmt.Errorf("article service: delete article %d: %w", id, err)
	}
	if err := s.withdrawals.Delete(ctx, id); err != nil {
		log.Error("article deleted but withdrawal cleanup failed",
			zap.Int("articleID", id),
			zap.Error(err),
		)
		return fmt.Errorf("article service: delete withdrawal of article %d: %w", id, err)
	}
	log.Info("article deleted", zap.Int("articleID", id))
	return nil
}

// RecordSalePrice stamps the accepted bid amount on the article. It bypasses
// article validation on purpose: the window is already checked by the caller.
func (s *ArticleService) RecordSalePrice(ctx context.Context, id, amount int) error {
	if err := s.articles.UpdateSalePrice(ctx, id, amount); err != nil {
		return fmt.Errorf("article service: record sale price of article %d: %w", id, err)
	}
	return nil
}
