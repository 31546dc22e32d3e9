package application

import (
	"context"
	"sync"
	"testing"

	"encheres/internal/auction/domain"

	"github.com/stretchr/testify/require"
)

func TestBiddingServicePlaceBid(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown_article_is_rejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.bidding.PlaceBid(ctx, 404, 2, 500)
		require.ErrorIs(t, err, domain.ErrArticleNotFound)
	})

	t.Run("first_bid_must_strictly_exceed_starting_price", func(t *testing.T) {
		f := newFixture(t)
		article := validArticle() // starting price 100
		require.NoError(t, f.articles.Create(ctx, article))

		_, err := f.bidding.PlaceBid(ctx, article.ID, 2, 100)
		require.ErrorIs(t, err, domain.ErrBidTooLow)

		bid, err := f.bidding.PlaceBid(ctx, article.ID, 2, 101)
		require.NoError(t, err)
		require.Equal(t, 101, bid.Amount)
		require.Equal(t, today, bid.Date)

		best, err := f.bidding.CurrentBestBid(ctx, article.ID)
		require.NoError(t, err)
		require.Equal(t, bid.ID, best.ID)
	})

	t.Run("lower_second_bid_is_rejected", func(t *testing.T) {
		f := newFixture(t)
		article := validArticle()
		require.NoError(t, f.articles.Create(ctx, article))

		_, err := f.bidding.PlaceBid(ctx, article.ID, 2, 150)
		require.NoError(t, err)
		_, err = f.bidding.PlaceBid(ctx, article.ID, 3, 120)
		require.ErrorIs(t, err, domain.ErrBidTooLow)

		best, err := f.bidding.CurrentBestBid(ctx, article.ID)
		require.NoError(t, err)
		require.Equal(t, 150, best.Amount)
	})

	t.Run("bids_outside_the_window_are_rejected", func(t *testing.T) {
		f := newFixture(t)

		upcoming := validArticle()
		upcoming.StartDate = today.AddDate(0, 0, 1)
		upcoming.EndDate = today.AddDate(0, 0, 8)
		require.NoError(t, f.articles.Create(ctx, upcoming))

		_, err := f.bidding.PlaceBid(ctx, upcoming.ID, 2, 1_000_000)
		require.ErrorIs(t, err, domain.ErrAuctionNotOpen)

		// a closed auction rejects bids the same way; bypass creation-time
		// validation to seed one
		closed := validArticle()
		closed.StartDate = today.AddDate(0, 0, -10)
		closed.EndDate = today.AddDate(0, 0, -3)
		require.NoError(t, f.store.Articles().Insert(ctx, closed))

		_, err = f.bidding.PlaceBid(ctx, closed.ID, 2, 1_000_000)
		require.ErrorIs(t, err, domain.ErrAuctionNotOpen)
	})

	t.Run("self_raises_are_allowed", func(t *testing.T) {
		f := newFixture(t)
		article := validArticle()
		require.NoError(t, f.articles.Create(ctx, article))

		_, err := f.bidding.PlaceBid(ctx, article.ID, 2, 110)
		require.NoError(t, err)
		_, err = f.bidding.PlaceBid(ctx, article.ID, 2, 120)
		require.NoError(t, err)

		best, err := f.bidding.CurrentBestBid(ctx, article.ID)
		require.NoError(t, err)
		require.Equal(t, 120, best.Amount)
	})

	t.Run("accepted_bid_updates_the_sale_price", func(t *testing.T) {
		f := newFixture(t)
		article := validArticle()
		require.NoError(t, f.articles.Create(ctx, article))

		_, err := f.bidding.PlaceBid(ctx, article.ID, 2, 130)
		require.NoError(t, err)

		saved, err := f.articles.GetByID(ctx, article.ID)
		require.NoError(t, err)
		require.Equal(t, 130, saved.SalePrice)
	})
}

func TestBiddingServiceCurrentBestBid(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	article := validArticle()
	require.NoError(t, f.articles.Create(ctx, article))

	best, err := f.bidding.CurrentBestBid(ctx, article.ID)
	require.NoError(t, err)
	require.Nil(t, best)
}

func TestBiddingServiceWinner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	article := validArticle()
	require.NoError(t, f.articles.Create(ctx, article))
	_, err := f.bidding.PlaceBid(ctx, article.ID, 3, 200)
	require.NoError(t, err)

	// still open
	_, err = f.bidding.Winner(ctx, article.ID)
	require.ErrorIs(t, err, domain.ErrAuctionStillOpen)

	// close the window and ask again with a later clock
	lateClock := fixedClock{day: today.AddDate(0, 0, 30)}
	bidding := NewBiddingService(f.store.Bids(), f.articles, lateClock)
	winner, err := bidding.Winner(ctx, article.ID)
	require.NoError(t, err)
	require.Equal(t, 3, winner.BidderID)
	require.Equal(t, 200, winner.Amount)

	// a closed auction without bids has no winner
	quiet := validArticle()
	quiet.StartDate = today.AddDate(0, 0, -10)
	quiet.EndDate = today.AddDate(0, 0, -3)
	require.NoError(t, f.store.Articles().Insert(ctx, quiet))
	winner, err = bidding.Winner(ctx, quiet.ID)
	require.NoError(t, err)
	require.Nil(t, winner)
}

// N concurrent bids with strictly increasing amounts: every bid that loses
// the race may be rejected, but the highest amount must always end up as
// the best bid. This is the lost-update scenario the per-article lock
// closes.
func TestBiddingServiceConcurrentBids(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	article := validArticle()
	require.NoError(t, f.articles.Create(ctx, article))

	const bidders = 50
	var wg sync.WaitGroup
	for i := 1; i <= bidders; i++ {
		wg.Add(1)
		go func(amount int) {
			defer wg.Done()
			// errors are expected: a bid below an already-accepted higher
			// amount loses
			_, _ = f.bidding.PlaceBid(ctx, article.ID, 2, 100+amount)
		}(i)
	}
	wg.Wait()

	best, err := f.bidding.CurrentBestBid(ctx, article.ID)
	require.NoError(t, err)
	require.NotNil(t, best)
	require.Equal(t, 100+bidders, best.Amount)

	// no lost update: the recorded bids must be strictly increasing
	bids, err := f.bidding.ListBids(ctx, article.ID)
	require.NoError(t, err)
	for i := 1; i < len(bids); i++ {
		require.Greater(t, bids[i].Amount, bids[i-1].Amount)
	}
}
