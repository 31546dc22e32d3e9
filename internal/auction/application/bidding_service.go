package application

import (
	"context"
	"fmt"
	"sync"

	"encheres/internal/auction/domain"

	"go.uber.org/zap"
)

// BiddingService owns bid placement and best-bid queries. The
// read-best/compare/insert sequence of PlaceBid runs under a per-article
// mutex so two concurrent bids can never both be accepted against the same
// stale best bid.
type BiddingService struct {
	bids     domain.BidRepository
	articles *ArticleService
	clock    domain.Clock

	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func NewBiddingService(bids domain.BidRepository, articles *ArticleService, clock domain.Clock) *BiddingService {
	return &BiddingService{
		bids:     bids,
		articles: articles,
		clock:    clock,
		locks:    make(map[int]*sync.Mutex),
	}
}

// CurrentBestBid returns the highest bid for the article, or nil when no bid
// exists yet.
func (s *BiddingService) CurrentBestBid(ctx context.Context, articleID int) (*domain.Bid, error) {
	bid, err := s.bids.BestByArticle(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("bidding service: best bid for article %d: %w", articleID, err)
	}
	return bid, nil
}

// ListBids returns every bid recorded against the article, oldest first.
func (s *BiddingService) ListBids(ctx context.Context, articleID int) ([]*domain.Bid, error) {
	bids, err := s.bids.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("bidding service: list bids for article %d: %w", articleID, err)
	}
	return bids, nil
}

// PlaceBid accepts a bid when the article exists, its window is open today,
// and the amount strictly exceeds the current best bid (or the starting
// price when no bid exists). Repeated self-raises are allowed; suppressing
// them is a presentation concern.
func (s *BiddingService) PlaceBid(ctx context.Context, articleID, bidderID, amount int) (*domain.Bid, error) {
	lock := s.lockFor(articleID)
	lock.Lock()
	defer lock.Unlock()

	article, err := s.articles.GetByID(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("bidding service: place bid on article %d: %w", articleID, err)
	}

	today := s.clock.Today()
	if article.StateAt(today) != domain.StateActive {
		log.Warn("bid rejected: auction not open",
			zap.Int("articleID", articleID),
			zap.Int("bidderID", bidderID),
			zap.Time("today", today),
		)
		return nil, fmt.Errorf("bidding service: place bid on article %d: %w", articleID, domain.ErrAuctionNotOpen)
	}

	floor := article.StartingPrice
	best, err := s.bids.BestByArticle(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("bidding service: best bid for article %d: %w", articleID, err)
	}
	if best != nil {
		floor = best.Amount
	}
	if amount <= floor {
		log.Warn("bid rejected: amount too low",
			zap.Int("articleID", articleID),
			zap.Int("bidderID", bidderID),
			zap.Int("amount", amount),
			zap.Int("floor", floor),
		)
		return nil, fmt.Errorf("bidding service: place bid on article %d: %w", articleID, domain.ErrBidTooLow)
	}

	bid := domain.NewBid(articleID, bidderID, amount, today)
	if err := s.bids.Insert(ctx, bid); err != nil {
		return nil, fmt.Errorf("bidding service: save bid on article %d: %w", articleID, err)
	}
	if err := s.articles.RecordSalePrice(ctx, articleID, amount); err != nil {
		return nil, fmt.Errorf("bidding service: place bid on article %d: %w", articleID, err)
	}

	log.Info("bid placed",
		zap.Int("articleID", articleID),
		zap.Int("bidderID", bidderID),
		zap.Int("amount", amount),
	)
	return bid, nil
}

// Winner returns the best bid of a closed auction, nil when the auction
// closed without bids, and ErrAuctionStillOpen while today has not passed
// the end date.
func (s *BiddingService) Winner(ctx context.Context, articleID int) (*domain.Bid, error) {
	article, err := s.articles.GetByID(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("bidding service: winner of article %d: %w", articleID, err)
	}
	if article.StateAt(s.clock.Today()) != domain.StateClosed {
		return nil, fmt.Errorf("bidding service: winner of article %d: %w", articleID, domain.ErrAuctionStillOpen)
	}
	return s.CurrentBestBid(ctx, articleID)
}

func (s *BiddingService) lockFor(articleID int) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[articleID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[articleID] = lock
	}
	return lock
}
