package domain

import (
	"time"
)

// ArticleState is the lifecycle state of an article's auction window.
// It is always derived from the dates, never stored.
type ArticleState string

const (
	StateUpcoming ArticleState = "upcoming"
	StateActive   ArticleState = "active"
	StateClosed   ArticleState = "closed"
)

// Article is a listing auctioned by a seller over a fixed date window.
// It is the aggregate root: bids and the withdrawal record are keyed on its id
// but persisted independently.
type Article struct {
	ID            int
	Name          string
	Description   string
	StartingPrice int
	SalePrice     int
	StartDate     time.Time
	EndDate       time.Time
	CategoryID    int
	SellerID      int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DateOnly truncates a timestamp to its calendar day. All auction window
// comparisons happen at day granularity.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StateAt derives the auction state for a given day.
func StateAt(today, start, end time.Time) ArticleState {
	today = DateOnly(today)
	switch {
	case today.Before(DateOnly(start)):
		return StateUpcoming
	case today.After(DateOnly(end)):
		return StateClosed
	default:
		return StateActive
	}
}

// StateAt derives the article's auction state for a given day.
func (a *Article) StateAt(today time.Time) ArticleState {
	return StateAt(today, a.StartDate, a.EndDate)
}

// Clock supplies the current day. It is injected everywhere dates are
// compared so window checks and validation are testable with fixed dates.
type Clock interface {
	Today() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Today() time.Time {
	return DateOnly(time.Now())
}
