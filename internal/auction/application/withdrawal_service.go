package application

import (
	"context"
	"fmt"

	"encheres/internal/auction/domain"

	"go.uber.org/zap"
)

// WithdrawalService owns the retrait state of closed auctions.
type WithdrawalService struct {
	withdrawals domain.WithdrawalRepository
	clock       domain.Clock
}

func NewWithdrawalService(withdrawals domain.WithdrawalRepository, clock domain.Clock) *WithdrawalService {
	return &WithdrawalService{withdrawals: withdrawals, clock: clock}
}

// Get returns the withdrawal record for the article, or nil when it was
// never created.
func (s *WithdrawalService) Get(ctx context.Context, articleID int) (*domain.Withdrawal, error) {
	w, err := s.withdrawals.GetByArticle(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("withdrawal service: get withdrawal of article %d: %w", articleID, err)
	}
	return w, nil
}

// MarkPickedUp records that the winner collected the article. The record is
// created on first call and updated afterwards, so the operation is
// idempotent.
func (s *WithdrawalService) MarkPickedUp(ctx context.Context, articleID int, addr domain.PickupAddress) (*domain.Withdrawal, error) {
	w, err := s.withdrawals.GetByArticle(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("withdrawal service: mark pickup of article %d: %w", articleID, err)
	}
	if w == nil {
		w = &domain.Withdrawal{ArticleID: articleID, Address: addr}
	}
	w.PickedUp = true
	if err := s.withdrawals.Upsert(ctx, w); err != nil {
		return nil, fmt.Errorf("withdrawal service: mark pickup of article %d: %w", articleID, err)
	}
	log.Info("withdrawal marked picked up", zap.Int("articleID", articleID))
	return w, nil
}

// Delete removes the record; a missing record is not an error.
func (s *WithdrawalService) Delete(ctx context.Context, articleID int) error {
	if err := s.withdrawals.Delete(ctx, articleID); err != nil {
		return fmt.Errorf("withdrawal service: delete withdrawal of article %d: %w", articleID, err)
	}
	return nil
}

// PickupPending reports whether the winner of a closed auction still has to
// collect the article. Callers use it to prompt the winner.
func (s *WithdrawalService) PickupPending(ctx context.Context, article *domain.Article, winner *domain.Bid) (bool, error) {
	w, err := s.Get(ctx, article.ID)
	if err != nil {
		return false, err
	}
	return domain.PickupPending(article.StateAt(s.clock.Today()), winner != nil, w), nil
}
