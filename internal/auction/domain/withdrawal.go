package domain

// PickupAddress is where the winning bidder collects the article.
type PickupAddress struct {
	Street string
	Zip    string
	City   string
}

// Withdrawal is the post-auction pickup record for an article. At most one
// exists per article; it is created lazily, possibly only when the winner
// marks the article retrieved.
type Withdrawal struct {
	ArticleID int
	Address   PickupAddress
	PickedUp  bool
}

// PickupPending reports whether the winner still has to collect the article:
// the auction must be closed, and either a withdrawal record exists with its
// picked-up flag unset, or no record exists yet but a winner is resolved.
func PickupPending(state ArticleState, hasWinner bool, w *Withdrawal) bool {
	if state != StateClosed {
		return false
	}
	if w != nil {
		return !w.PickedUp
	}
	return hasWinner
}
