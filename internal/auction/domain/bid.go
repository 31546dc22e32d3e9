package domain

import (
	"time"
)

// Bid is a monetary offer by a user against an article. Bids are append-only:
// once recorded they are never mutated or removed while their article exists.
type Bid struct {
	ID        int
	ArticleID int
	BidderID  int
	Amount    int
	Date      time.Time
}

// NewBid builds an unsaved bid stamped with the given day.
func NewBid(articleID, bidderID, amount int, date time.Time) *Bid {
	return &Bid{
		ArticleID: articleID,
		BidderID:  bidderID,
		Amount:    amount,
		Date:      DateOnly(date),
	}
}
